// Package power bridges operating-system lock events to the rig server and
// the local audio mute state.
//
// Each event fans out into two independent actions: a POST to the server
// and a mute-state sync. Neither waits for the other and neither failure is
// reported back to the user.
package power

import (
	"context"
	"sync"
	"time"

	"github.com/dysperse/rigpanel/audio"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/rig"
)

// LockNotifier posts a power event to the server. *rig.Client implements it.
type LockNotifier interface {
	NotifyLock(ctx context.Context, event rig.EventType) error
}

// Options selects which actions a lock event triggers.
type Options struct {
	// Enabled drops every event when false.
	Enabled      bool
	NotifyServer bool
	MuteAudio    bool
	// Timeout bounds each action; zero uses NotifyTimeout.
	Timeout time.Duration
	Logger  common.Logger
}

// Bridge handles lock events.
type Bridge struct {
	notifier LockNotifier
	audio    audio.Controller
	log      common.Logger
	timeout  time.Duration

	mu   sync.RWMutex
	opts Options
	wg   sync.WaitGroup
}

// NewBridge creates a bridge. notifier or ctrl may be nil, which disables
// the corresponding action.
func NewBridge(notifier LockNotifier, ctrl audio.Controller, opts Options) *Bridge {
	if opts.Timeout <= 0 {
		opts.Timeout = common.NotifyTimeout
	}
	if opts.Logger == nil {
		opts.Logger = common.GetLogger().With("power")
	}
	return &Bridge{
		notifier: notifier,
		audio:    ctrl,
		log:      opts.Logger,
		timeout:  opts.Timeout,
		opts:     opts,
	}
}

// SetOptions replaces the enabled actions, e.g. after preferences change.
func (b *Bridge) SetOptions(enabled, notifyServer, muteAudio bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opts.Enabled = enabled
	b.opts.NotifyServer = notifyServer
	b.opts.MuteAudio = muteAudio
}

// Options returns the current options.
func (b *Bridge) Options() Options {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.opts
}

// Handle starts the actions for one event and returns immediately.
func (b *Bridge) Handle(ctx context.Context, event rig.EventType) {
	opts := b.Options()
	if !opts.Enabled {
		b.log.Debug("Lock event %s ignored: lock on leave is disabled", event)
		return
	}
	b.log.Info("Lock event: %s", event)

	if opts.NotifyServer && b.notifier != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.notify(ctx, event)
		}()
	}
	if opts.MuteAudio && b.audio != nil {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			b.syncMute(ctx, event)
		}()
	}
}

// Wait blocks until every action started so far has finished.
func (b *Bridge) Wait() {
	b.wg.Wait()
}

// notify posts the event. Failures are dropped.
func (b *Bridge) notify(ctx context.Context, event rig.EventType) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	if err := b.notifier.NotifyLock(ctx, event); err != nil {
		b.log.Debug("lock_event %s not delivered: %v", event, err)
		return
	}
	b.log.Debug("lock_event %s delivered", event)
}

// syncMute makes the mute state match the event: muted while locked,
// unmuted while unlocked. It toggles at most once and does nothing when the
// state already matches or cannot be read.
func (b *Bridge) syncMute(ctx context.Context, event rig.EventType) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	muted, err := b.audio.Muted(ctx)
	if err != nil {
		b.log.Warn("Mute sync skipped: %v", err)
		return
	}

	want := event == rig.EventLock
	if muted == want {
		b.log.Debug("Mute state already %v for %s", muted, event)
		return
	}
	if err := b.audio.ToggleMute(ctx); err != nil {
		b.log.Warn("Mute toggle failed: %v", err)
		return
	}
	if want {
		b.log.Info("Audio muted for %s", event)
	} else {
		b.log.Info("Audio unmuted for %s", event)
	}
}

// Run handles events from source until ctx is done or the source closes.
// Actions still running when it returns keep going; call Wait to join them.
func (b *Bridge) Run(ctx context.Context, source Source) error {
	events, err := source.Events(ctx)
	if err != nil {
		return err
	}
	b.log.Info("Listening for lock events (%s)", source.Name())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			b.Handle(ctx, ev)
		}
	}
}
