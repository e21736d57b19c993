package power

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/rig"
	"github.com/godbus/dbus/v5"
)

// Source delivers lock events. The channel is closed once ctx is done.
type Source interface {
	Name() string
	Events(ctx context.Context) (<-chan rig.EventType, error)
}

const (
	screenSaverFreedesktop = "org.freedesktop.ScreenSaver"
	screenSaverGnome       = "org.gnome.ScreenSaver"
	activeChanged          = "ActiveChanged"

	login1Dest       = "org.freedesktop.login1"
	login1Path       = "/org/freedesktop/login1"
	login1Manager    = "org.freedesktop.login1.Manager"
	login1Session    = "org.freedesktop.login1.Session"
	login1SessionEnv = "XDG_SESSION_ID"
)

// NewSource returns the source named by the lock_on_leave.source setting.
func NewSource(name string) (Source, error) {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return nil, fmt.Errorf("%w: lock events on %s", common.ErrUnsupportedPlatform, runtime.GOOS)
	}
	switch name {
	case "", "screensaver":
		return &ScreenSaverSource{}, nil
	case "logind":
		return &LogindSource{}, nil
	default:
		return nil, fmt.Errorf("unknown lock event source %q", name)
	}
}

// ScreenSaverSource listens for ActiveChanged on the session bus. Desktops
// that emit the signal on both interfaces, or repeat it, still yield one
// event per transition.
type ScreenSaverSource struct{}

// Name implements Source.
func (s *ScreenSaverSource) Name() string { return "screensaver" }

// Events implements Source.
func (s *ScreenSaverSource) Events(ctx context.Context) (<-chan rig.EventType, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	for _, iface := range []string{screenSaverFreedesktop, screenSaverGnome} {
		if err := conn.AddMatchSignal(
			dbus.WithMatchInterface(iface),
			dbus.WithMatchMember(activeChanged),
		); err != nil {
			conn.Close()
			return nil, fmt.Errorf("subscribe %s.%s: %w", iface, activeChanged, err)
		}
	}
	return pump(ctx, conn, newCollapser(screenSaverEvent)), nil
}

// LogindSource listens for Lock/Unlock on the caller's logind session.
type LogindSource struct{}

// Name implements Source.
func (s *LogindSource) Name() string { return "logind" }

// Events implements Source.
func (s *LogindSource) Events(ctx context.Context) (<-chan rig.EventType, error) {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect system bus: %w", err)
	}

	session, err := sessionPath(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(session),
		dbus.WithMatchInterface(login1Session),
	); err != nil {
		conn.Close()
		return nil, fmt.Errorf("subscribe %s: %w", session, err)
	}
	return pump(ctx, conn, newCollapser(logindEvent)), nil
}

// sessionPath resolves the logind session object of this process.
func sessionPath(ctx context.Context, conn *dbus.Conn) (dbus.ObjectPath, error) {
	manager := conn.Object(login1Dest, login1Path)
	var path dbus.ObjectPath

	if id := os.Getenv(login1SessionEnv); id != "" {
		err := manager.CallWithContext(ctx, login1Manager+".GetSession", 0, id).Store(&path)
		if err == nil {
			return path, nil
		}
	}
	err := manager.CallWithContext(ctx, login1Manager+".GetSessionByPID", 0, uint32(os.Getpid())).Store(&path)
	if err != nil {
		return "", fmt.Errorf("resolve logind session: %w", err)
	}
	return path, nil
}

// pump forwards translated signals until ctx is done, then closes conn and
// the returned channel.
func pump(ctx context.Context, conn *dbus.Conn, translate func(*dbus.Signal) (rig.EventType, bool)) <-chan rig.EventType {
	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)

	out := make(chan rig.EventType, 4)
	go func() {
		defer close(out)
		defer conn.Close()
		defer conn.RemoveSignal(signals)

		for {
			select {
			case <-ctx.Done():
				return
			case sig, ok := <-signals:
				if !ok {
					return
				}
				ev, ok := translate(sig)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func screenSaverEvent(sig *dbus.Signal) (rig.EventType, bool) {
	if sig.Name != screenSaverFreedesktop+"."+activeChanged && sig.Name != screenSaverGnome+"."+activeChanged {
		return "", false
	}
	if len(sig.Body) != 1 {
		return "", false
	}
	active, ok := sig.Body[0].(bool)
	if !ok {
		return "", false
	}
	if active {
		return rig.EventLock, true
	}
	return rig.EventUnlock, true
}

func logindEvent(sig *dbus.Signal) (rig.EventType, bool) {
	switch sig.Name {
	case login1Session + ".Lock":
		return rig.EventLock, true
	case login1Session + ".Unlock":
		return rig.EventUnlock, true
	}
	return "", false
}

// newCollapser wraps translate so that an event equal to the previous one
// is dropped.
func newCollapser(translate func(*dbus.Signal) (rig.EventType, bool)) func(*dbus.Signal) (rig.EventType, bool) {
	var last rig.EventType
	return func(sig *dbus.Signal) (rig.EventType, bool) {
		ev, ok := translate(sig)
		if !ok || ev == last {
			return "", false
		}
		last = ev
		return ev, true
	}
}
