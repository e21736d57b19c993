package rig

import (
	"context"
	"sync"
	"time"

	"github.com/dysperse/rigpanel/common"
)

// Prober answers whether the server is online. *Client implements it.
type Prober interface {
	Online(ctx context.Context) bool
}

// PollState is a snapshot of the connectivity poller.
type PollState struct {
	Online           bool
	LastCheck        time.Time
	LastSuccess      time.Time
	ConsecutiveFails int
}

// Poller keeps a connectivity flag current by probing the server immediately
// on Start and then every interval until Stop. Probes never overlap: each one
// is bounded by the interval, so an unreachable server costs at most one
// outstanding request.
type Poller struct {
	mu       sync.RWMutex
	prober   Prober
	interval time.Duration
	log      common.Logger
	running  bool
	cancel   context.CancelFunc
	done     chan struct{}
	state    PollState
	onUpdate func(online bool)
	onChange func(oldOnline, newOnline bool)
}

// NewPoller creates a poller. A non-positive interval uses the default.
func NewPoller(prober Prober, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = common.StatusPollInterval
	}
	return &Poller{
		prober:   prober,
		interval: interval,
		log:      common.GetLogger().With("poller"),
	}
}

// SetOnUpdate sets a callback run after every probe with its result.
// Callbacks run on the poller goroutine; UI code must marshal to its own loop.
func (p *Poller) SetOnUpdate(callback func(online bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = callback
}

// SetOnChange sets a callback run when the online flag flips.
func (p *Poller) SetOnChange(callback func(oldOnline, newOnline bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = callback
}

// Start begins polling. Calling Start on a running poller does nothing.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	p.log.Info("Status poller started (interval: %v)", p.interval)

	go p.runLoop(ctx, done)
}

// Stop stops polling and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	done := p.done
	p.mu.Unlock()

	<-done
	p.log.Info("Status poller stopped")
}

// IsRunning returns whether the poller is currently running.
func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// Online returns the result of the most recent probe. It is false until
// the first probe succeeds.
func (p *Poller) Online() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Online
}

// State returns a copy of the poller state.
func (p *Poller) State() PollState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

func (p *Poller) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// PollNow runs one probe synchronously and records its result.
func (p *Poller) PollNow(ctx context.Context) bool {
	return p.poll(ctx)
}

func (p *Poller) poll(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.interval)
	online := p.prober.Online(probeCtx)
	cancel()

	if ctx.Err() != nil {
		// Stopped mid-probe; the result says nothing about the server.
		return p.Online()
	}

	p.mu.Lock()
	now := time.Now()
	old := p.state.Online
	p.state.Online = online
	p.state.LastCheck = now
	if online {
		p.state.LastSuccess = now
		p.state.ConsecutiveFails = 0
	} else {
		p.state.ConsecutiveFails++
	}
	fails := p.state.ConsecutiveFails
	onUpdate, onChange := p.onUpdate, p.onChange
	p.mu.Unlock()

	if old != online {
		p.log.Info("Rig server is now %s", onlineWord(online))
		if onChange != nil {
			onChange(old, online)
		}
	} else if !online && fails > 1 {
		p.log.Debug("Rig server still offline (%d consecutive probes)", fails)
	}
	if onUpdate != nil {
		onUpdate(online)
	}
	return online
}

func onlineWord(online bool) string {
	if online {
		return "online"
	}
	return "offline"
}
