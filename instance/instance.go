// Package instance keeps one lock event bridge per session by owning a
// well-known name on the session bus. Every mode claims it before bridging;
// the GUI window itself is kept unique by its GTK application id.
package instance

import (
	"fmt"
	"sync"

	"github.com/dysperse/rigpanel/common"
	"github.com/godbus/dbus/v5"
)

// Lock is an owned bus name.
type Lock struct {
	mu   sync.Mutex
	conn *dbus.Conn
	name string
}

// Acquire claims name on the session bus. It returns ErrAlreadyRunning when
// another process owns it; the request is never queued.
func Acquire(name string) (*Lock, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	l, err := acquireOn(conn, name)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return l, nil
}

func acquireOn(conn *dbus.Conn, name string) (*Lock, error) {
	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("request bus name %s: %w", name, err)
	}
	if err := checkReply(reply, name); err != nil {
		return nil, err
	}
	common.LogInfo("Acquired instance lock %s", name)
	return &Lock{conn: conn, name: name}, nil
}

func checkReply(reply dbus.RequestNameReply, name string) error {
	switch reply {
	case dbus.RequestNameReplyPrimaryOwner, dbus.RequestNameReplyAlreadyOwner:
		return nil
	case dbus.RequestNameReplyExists, dbus.RequestNameReplyInQueue:
		return fmt.Errorf("%w: %s is owned by another process", common.ErrAlreadyRunning, name)
	default:
		return fmt.Errorf("request bus name %s: unexpected reply %d", name, reply)
	}
}

// Name returns the owned bus name.
func (l *Lock) Name() string {
	return l.name
}

// Release gives the name back and closes the bus connection. It is safe to
// call more than once.
func (l *Lock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	_, err := l.conn.ReleaseName(l.name)
	closeErr := l.conn.Close()
	l.conn = nil
	if err != nil {
		return fmt.Errorf("release bus name %s: %w", l.name, err)
	}
	return closeErr
}
