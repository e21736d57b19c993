// Package rig talks to the rig server, the local-network HTTP service that
// drives the lighting hardware.
//
// The server is an opaque collaborator. This package knows its endpoints and
// parameter formats and nothing about what the hardware does with them:
//
//	GET  /                      status probe, {"status": "ONLINE"}
//	POST /lock_event            {"event_type": "LOCK" | "UNLOCK"}
//	GET  /lock_event            ?eventType=LOCK|UNLOCK
//	GET  /set-rgb-color         ?value=rrggbb
//	GET  /set-rgb-style         ?value=breath|colorful|flow|raise_up|leap
//	GET  /ambient_lighting      ?value=<hex command>
//
// Control endpoints are fire-and-settle: their bodies are ignored and a
// rejection by the server is indistinguishable from a transport failure to
// callers that only check for a nil error.
//
// Poller keeps a connectivity flag current by probing the status endpoint
// on a fixed interval.
package rig
