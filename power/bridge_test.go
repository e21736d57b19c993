package power

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/rig"
	"github.com/godbus/dbus/v5"
	"go.uber.org/goleak"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []rig.EventType
	err    error
	block  chan struct{}
}

func (f *fakeNotifier) NotifyLock(ctx context.Context, ev rig.EventType) error {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakeNotifier) Events() []rig.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]rig.EventType(nil), f.events...)
}

type fakeAudio struct {
	mu       sync.Mutex
	muted    bool
	queryErr error
	toggles  int
}

func (f *fakeAudio) Muted(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.muted, f.queryErr
}

func (f *fakeAudio) ToggleMute(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.muted = !f.muted
	f.toggles++
	return nil
}

func (f *fakeAudio) Toggles() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toggles
}

func allOn() Options {
	return Options{Enabled: true, NotifyServer: true, MuteAudio: true, Logger: common.NopLogger{}}
}

func TestBridge_Handle(t *testing.T) {
	tests := []struct {
		name        string
		event       rig.EventType
		muted       bool
		wantToggles int
		wantMuted   bool
	}{
		{"lock while unmuted mutes", rig.EventLock, false, 1, true},
		{"lock while muted leaves audio", rig.EventLock, true, 0, true},
		{"unlock while muted unmutes", rig.EventUnlock, true, 1, false},
		{"unlock while unmuted leaves audio", rig.EventUnlock, false, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &fakeNotifier{}
			snd := &fakeAudio{muted: tt.muted}
			b := NewBridge(notifier, snd, allOn())

			b.Handle(context.Background(), tt.event)
			b.Wait()

			if got := notifier.Events(); len(got) != 1 || got[0] != tt.event {
				t.Errorf("notified %v, want [%s]", got, tt.event)
			}
			if snd.Toggles() != tt.wantToggles {
				t.Errorf("toggles = %d, want %d", snd.Toggles(), tt.wantToggles)
			}
			if snd.muted != tt.wantMuted {
				t.Errorf("muted = %v, want %v", snd.muted, tt.wantMuted)
			}
		})
	}
}

func TestBridge_ServerDownStillMutes(t *testing.T) {
	notifier := &fakeNotifier{err: common.ErrServerUnreachable}
	snd := &fakeAudio{}
	b := NewBridge(notifier, snd, allOn())

	b.Handle(context.Background(), rig.EventLock)
	b.Wait()

	if snd.Toggles() != 1 {
		t.Errorf("toggles = %d, want 1", snd.Toggles())
	}
}

func TestBridge_MuteQueryFailureSkipsToggle(t *testing.T) {
	notifier := &fakeNotifier{}
	snd := &fakeAudio{queryErr: common.ErrMuteQuery}
	b := NewBridge(notifier, snd, allOn())

	b.Handle(context.Background(), rig.EventLock)
	b.Wait()

	if snd.Toggles() != 0 {
		t.Errorf("toggles = %d, want 0 when the state is unknown", snd.Toggles())
	}
	if len(notifier.Events()) != 1 {
		t.Error("server should still be notified")
	}
}

func TestBridge_ActionsAreIndependent(t *testing.T) {
	notifier := &fakeNotifier{block: make(chan struct{})}
	snd := &fakeAudio{}
	b := NewBridge(notifier, snd, allOn())

	b.Handle(context.Background(), rig.EventLock)

	deadline := time.Now().Add(2 * time.Second)
	for snd.Toggles() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("mute sync waited for the server notification")
		}
		time.Sleep(2 * time.Millisecond)
	}

	close(notifier.block)
	b.Wait()
}

func TestBridge_Options(t *testing.T) {
	t.Run("disabled drops events", func(t *testing.T) {
		notifier := &fakeNotifier{}
		snd := &fakeAudio{}
		opts := allOn()
		opts.Enabled = false
		b := NewBridge(notifier, snd, opts)

		b.Handle(context.Background(), rig.EventLock)
		b.Wait()

		if len(notifier.Events()) != 0 || snd.Toggles() != 0 {
			t.Error("a disabled bridge must do nothing")
		}
	})

	t.Run("mute only", func(t *testing.T) {
		notifier := &fakeNotifier{}
		snd := &fakeAudio{}
		b := NewBridge(notifier, snd, allOn())
		b.SetOptions(true, false, true)

		b.Handle(context.Background(), rig.EventLock)
		b.Wait()

		if len(notifier.Events()) != 0 {
			t.Error("server should not be notified")
		}
		if snd.Toggles() != 1 {
			t.Errorf("toggles = %d, want 1", snd.Toggles())
		}
	})

	t.Run("nil audio", func(t *testing.T) {
		notifier := &fakeNotifier{}
		b := NewBridge(notifier, nil, allOn())

		b.Handle(context.Background(), rig.EventUnlock)
		b.Wait()

		if len(notifier.Events()) != 1 {
			t.Error("server should be notified without an audio controller")
		}
	})
}

type chanSource struct {
	ch chan rig.EventType
}

func (s *chanSource) Name() string { return "test" }

func (s *chanSource) Events(ctx context.Context) (<-chan rig.EventType, error) {
	return s.ch, nil
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) Events(ctx context.Context) (<-chan rig.EventType, error) {
	return nil, errors.New("no bus")
}

func TestBridge_Run(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	notifier := &fakeNotifier{}
	snd := &fakeAudio{}
	b := NewBridge(notifier, snd, allOn())

	src := &chanSource{ch: make(chan rig.EventType)}
	done := make(chan error, 1)
	go func() { done <- b.Run(context.Background(), src) }()

	src.ch <- rig.EventLock
	src.ch <- rig.EventUnlock
	close(src.ch)

	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	b.Wait()

	if got := notifier.Events(); len(got) != 2 {
		t.Errorf("notified %v, want two events", got)
	}
	if snd.muted {
		t.Error("audio should end unmuted after LOCK then UNLOCK")
	}

	if err := b.Run(context.Background(), failingSource{}); err == nil {
		t.Error("Run() should return the source error")
	}
}

func TestBridge_RunStopsOnContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	b := NewBridge(&fakeNotifier{}, &fakeAudio{}, allOn())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, &chanSource{ch: make(chan rig.EventType)}) }()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

func TestScreenSaverEvent(t *testing.T) {
	tests := []struct {
		sig    *dbus.Signal
		want   rig.EventType
		wantOK bool
	}{
		{&dbus.Signal{Name: "org.freedesktop.ScreenSaver.ActiveChanged", Body: []interface{}{true}}, rig.EventLock, true},
		{&dbus.Signal{Name: "org.gnome.ScreenSaver.ActiveChanged", Body: []interface{}{false}}, rig.EventUnlock, true},
		{&dbus.Signal{Name: "org.freedesktop.ScreenSaver.ActiveChanged", Body: []interface{}{"yes"}}, "", false},
		{&dbus.Signal{Name: "org.freedesktop.ScreenSaver.ActiveChanged"}, "", false},
		{&dbus.Signal{Name: "org.freedesktop.DBus.NameAcquired", Body: []interface{}{"x"}}, "", false},
	}
	for _, tt := range tests {
		got, ok := screenSaverEvent(tt.sig)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("screenSaverEvent(%s %v) = %q, %v; want %q, %v", tt.sig.Name, tt.sig.Body, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLogindEvent(t *testing.T) {
	if ev, ok := logindEvent(&dbus.Signal{Name: "org.freedesktop.login1.Session.Lock"}); !ok || ev != rig.EventLock {
		t.Errorf("Lock -> %q, %v", ev, ok)
	}
	if ev, ok := logindEvent(&dbus.Signal{Name: "org.freedesktop.login1.Session.Unlock"}); !ok || ev != rig.EventUnlock {
		t.Errorf("Unlock -> %q, %v", ev, ok)
	}
	if _, ok := logindEvent(&dbus.Signal{Name: "org.freedesktop.login1.Session.PauseDevice"}); ok {
		t.Error("unrelated signal should be ignored")
	}
}

func TestCollapser(t *testing.T) {
	translate := newCollapser(screenSaverEvent)
	sig := func(active bool) *dbus.Signal {
		return &dbus.Signal{Name: "org.freedesktop.ScreenSaver.ActiveChanged", Body: []interface{}{active}}
	}

	var got []rig.EventType
	for _, active := range []bool{true, true, false, false, true} {
		if ev, ok := translate(sig(active)); ok {
			got = append(got, ev)
		}
	}

	want := []rig.EventType{rig.EventLock, rig.EventUnlock, rig.EventLock}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCollapser_Logind(t *testing.T) {
	translate := newCollapser(logindEvent)
	lock := &dbus.Signal{Name: "org.freedesktop.login1.Session.Lock"}
	unlock := &dbus.Signal{Name: "org.freedesktop.login1.Session.Unlock"}

	var got []rig.EventType
	for _, sig := range []*dbus.Signal{lock, lock, unlock, unlock, lock} {
		if ev, ok := translate(sig); ok {
			got = append(got, ev)
		}
	}

	want := []rig.EventType{rig.EventLock, rig.EventUnlock, rig.EventLock}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}
