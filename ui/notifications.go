// Package ui provides the graphical user interface for Rig Panel.
// This file contains desktop notifications for rig connectivity changes.
package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/dysperse/rigpanel/common"
	"github.com/godbus/dbus/v5"
)

const (
	notificationsDest  = "org.freedesktop.Notifications"
	notificationsPath  = "/org/freedesktop/Notifications"
	notificationsCall  = "org.freedesktop.Notifications.Notify"
	notificationsIcon  = "network-server"
	notificationExpiry = 5000 // ms
)

// Notifier posts desktop notifications through the freedesktop
// notification service on the session bus. Consecutive notifications
// replace each other so a flapping server leaves one bubble.
type Notifier struct {
	mu     sync.Mutex
	conn   *dbus.Conn
	lastID uint32
}

// NewNotifier creates a notifier. The bus is dialed on first use.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Notify implements common.Notifier.
func (n *Notifier) Notify(title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.conn == nil {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("connect session bus: %w", err)
		}
		n.conn = conn
	}

	ctx, cancel := context.WithTimeout(context.Background(), common.NotifyTimeout)
	defer cancel()

	obj := n.conn.Object(notificationsDest, notificationsPath)
	call := obj.CallWithContext(ctx, notificationsCall, 0,
		common.AppName,
		n.lastID,
		notificationsIcon,
		title,
		message,
		[]string{},
		map[string]dbus.Variant{},
		int32(notificationExpiry),
	)
	var id uint32
	if err := call.Store(&id); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	n.lastID = id
	return nil
}

// Close releases the bus connection.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.conn == nil {
		return nil
	}
	err := n.conn.Close()
	n.conn = nil
	return err
}

var _ common.Notifier = (*Notifier)(nil)
