// Package common provides shared constants, types, utilities, and interfaces
// used throughout the Rig Panel application.
//
// This package holds the cross-cutting concerns:
//
//   - Constants: application id, file names, poll and debounce intervals
//   - Errors: sentinel errors checked with errors.Is across packages
//   - Interfaces: Logger and Notifier abstractions
//   - Logger: leveled logging to stdout and a rotated file
//   - Utils: config and log directory helpers
//
// # Usage
//
//	import "github.com/dysperse/rigpanel/common"
//
//	common.LogInfo("Polling %s every %v", url, common.StatusPollInterval)
//
//	log := common.GetLogger().With("power")
//	log.Warn("mute query failed: %v", err)
//
//	if errors.Is(err, common.ErrServerUnreachable) {
//	    // show offline
//	}
package common
