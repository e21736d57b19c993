// Package ui provides the GTK4 front end of Rig Panel.
//
// The window is a remote control for the rig: color, style, ambient
// scenes and the manual lock/unlock override, plus a connectivity
// indicator. Closing the window hides it; the application keeps running
// in the system tray and only the tray's Quit item ends it.
//
// # Thread Safety
//
// GTK operations must execute on the main thread. Poller, gate and tray
// callbacks arrive on other goroutines and reach widgets only through
// glib.IdleAdd:
//
//	go func() {
//	    // Background work...
//	    glib.IdleAdd(func() {
//	        // Safe to update UI here
//	        label.SetText("Online")
//	    })
//	}()
//
// # File Organization
//
//   - app.go: Application lifecycle and service wiring
//   - main_window.go: Main window layout and controls
//   - tray.go: System tray indicator
//   - icons.go: Icon generation for tray
//   - styles.go: CSS styling and theme support
//   - notifications.go: Desktop notifications over D-Bus
//   - preferences.go: Settings dialog
package ui
