// Package ui provides the graphical user interface for Rig Panel.
// This file contains the system tray indicator functionality.
package ui

import (
	"sync"

	"fyne.io/systray"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/rig"
)

// Pre-generated icons for performance.
var (
	iconOnline  = GenerateOnlineIcon()
	iconOffline = GenerateOfflineIcon()
)

// TrayIndicator manages the system tray icon and menu. Its Quit item is the
// only way to end the application from the desktop.
type TrayIndicator struct {
	app        *Application
	mu         sync.Mutex
	ready      bool
	online     bool
	statusItem *systray.MenuItem
	serverItem *systray.MenuItem
	lockItem   *systray.MenuItem
	unlockItem *systray.MenuItem
	stopOnce   sync.Once
}

// NewTrayIndicator creates a new system tray indicator.
func NewTrayIndicator(app *Application) *TrayIndicator {
	return &TrayIndicator{app: app}
}

// Run starts the system tray indicator.
// This should be called from a goroutine as it blocks.
func (t *TrayIndicator) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Stop removes the tray icon.
func (t *TrayIndicator) Stop() {
	t.stopOnce.Do(systray.Quit)
}

// onReady is called when the systray is ready.
func (t *TrayIndicator) onReady() {
	systray.SetTitle(common.AppName)

	// ═══════════════════════════════════════════════════════════════════════
	// STATUS SECTION
	// ═══════════════════════════════════════════════════════════════════════
	t.statusItem = systray.AddMenuItem("", "Rig server status")
	t.statusItem.Disable()

	t.serverItem = systray.AddMenuItem("    "+t.app.config.Server.URL, "Rig server address")
	t.serverItem.Disable()

	systray.AddSeparator()

	// ═══════════════════════════════════════════════════════════════════════
	// QUICK ACTIONS SECTION
	// ═══════════════════════════════════════════════════════════════════════
	t.lockItem = systray.AddMenuItem("Lock now", "Send the lock override to the rig")
	go func() {
		for range t.lockItem.ClickedCh {
			t.app.host.Dispatcher().TriggerLock(rig.EventLock)
		}
	}()

	t.unlockItem = systray.AddMenuItem("Unlock now", "Send the unlock override to the rig")
	go func() {
		for range t.unlockItem.ClickedCh {
			t.app.host.Dispatcher().TriggerLock(rig.EventUnlock)
		}
	}()

	systray.AddSeparator()

	// ═══════════════════════════════════════════════════════════════════════
	// APP SECTION
	// ═══════════════════════════════════════════════════════════════════════
	showItem := systray.AddMenuItem("Open Rig Panel", "Show main window")
	go func() {
		for range showItem.ClickedCh {
			t.app.showWindow()
		}
	}()

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Close Rig Panel")
	go func() {
		for range quitItem.ClickedCh {
			t.app.Quit()
		}
	}()

	t.mu.Lock()
	t.ready = true
	online := t.online
	t.mu.Unlock()
	t.render(online)
}

// onExit is called when the systray is about to exit.
func (t *TrayIndicator) onExit() {
	common.LogInfo("Tray indicator cleanup completed")
}

// SetOnline updates the icon and status item. Safe to call from any
// goroutine, including before the tray is ready.
func (t *TrayIndicator) SetOnline(online bool) {
	t.mu.Lock()
	t.online = online
	ready := t.ready
	t.mu.Unlock()

	if ready {
		t.render(online)
	}
}

func (t *TrayIndicator) render(online bool) {
	if online {
		systray.SetIcon(iconOnline)
		systray.SetTooltip(common.AppName + " - Rig online")
		t.statusItem.SetTitle("●  Rig online")
		t.lockItem.Enable()
		t.unlockItem.Enable()
	} else {
		systray.SetIcon(iconOffline)
		systray.SetTooltip(common.AppName + " - Rig offline")
		t.statusItem.SetTitle("○  Rig offline")
		t.lockItem.Disable()
		t.unlockItem.Disable()
	}
	t.serverItem.SetTitle("    " + t.app.host.Config().Server.URL)
}
