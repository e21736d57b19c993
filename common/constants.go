// Package common provides shared constants, types, and utilities
// used across the Rig Panel application.
package common

import "time"

// Application metadata.
const (
	// AppID is the unique identifier for the application. GTK registers it
	// on the session bus, which is what keeps the GUI single-instance.
	AppID = "com.dysperse.rigpanel"
	// AppName is the display name of the application.
	AppName = "Rig Panel"
	// ConfigDirName is the name of the configuration directory.
	ConfigDirName = "rigpanel"
	// BusName is the session bus name claimed by headless mode.
	BusName = "com.dysperse.rigpanel.Host"
)

// File names used by the application.
const (
	ConfigFileName      = "config.yaml"
	CredentialsFileName = ".credentials"
	LogFileName         = "rigpanel.log"
)

// Default timeouts and intervals.
const (
	// StatusPollInterval is how often the rig server status is probed.
	StatusPollInterval = 5 * time.Second
	// ColorDebounce is the quiet period after the last color change
	// before the color is sent.
	ColorDebounce = 500 * time.Millisecond
	// RequestTimeout bounds a single request to the rig server.
	RequestTimeout = 10 * time.Second
	// NotifyTimeout bounds the lock/unlock notification sent on power events.
	NotifyTimeout = 5 * time.Second
	// ShellTimeout bounds a single audio query or toggle command.
	ShellTimeout = 5 * time.Second
)

// UI constants.
const (
	DefaultWindowWidth  = 500
	DefaultWindowHeight = 700
	DialogMargin        = 24
	TrayIconSize        = 22
)

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)
