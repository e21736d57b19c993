// Package host owns the background services every front end shares: the
// rig client, the control dispatcher, the status poller and the power
// bridge. Front ends subscribe to it and never build those themselves.
package host

import (
	"context"
	"errors"
	"sync"

	"github.com/dysperse/rigpanel/audio"
	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/config"
	"github.com/dysperse/rigpanel/control"
	"github.com/dysperse/rigpanel/instance"
	"github.com/dysperse/rigpanel/keyring"
	"github.com/dysperse/rigpanel/power"
	"github.com/dysperse/rigpanel/rig"
)

// TokenSource looks up the bearer token for a server. *keyring.Store
// implements it.
type TokenSource interface {
	GetToken(server string) (string, error)
}

// BridgeLock is held while a host bridges lock events. *instance.Lock
// implements it.
type BridgeLock interface {
	Release() error
}

// ClaimFunc claims the session-wide right to bridge lock events. It returns
// an error wrapping ErrAlreadyRunning when another process holds it.
type ClaimFunc func() (BridgeLock, error)

// ClaimBusName claims common.BusName on the session bus.
func ClaimBusName() (BridgeLock, error) {
	l, err := instance.Acquire(common.BusName)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Claimed is a ClaimFunc for callers that already hold the bus name for
// the life of the process.
func Claimed() (BridgeLock, error) {
	return heldLock{}, nil
}

type heldLock struct{}

func (heldLock) Release() error { return nil }

// Options overrides how a Host builds its parts. Zero values use the
// platform defaults.
type Options struct {
	Audio  audio.Controller
	Source power.Source
	Tokens TokenSource
	Logger common.Logger
	// NoLockEvents skips the lock event source, e.g. for one-shot commands.
	NoLockEvents bool
	// ClaimBridge guards the lock event bridge so only one process per
	// session mutes and notifies. Nil uses ClaimBusName.
	ClaimBridge ClaimFunc
}

// Host is the running set of services.
type Host struct {
	opts Options
	log  common.Logger

	mu         sync.RWMutex
	cfg        *config.Config
	client     *rig.Client
	dispatcher *control.Dispatcher
	poller     *rig.Poller
	bridge     *power.Bridge
	running    bool
	bridging   bool
	cancel     context.CancelFunc
	done       chan struct{}

	onChange func(oldOnline, newOnline bool)
	onBusy   func(key string, busy bool)
}

// New builds the services for cfg. The configuration must name a server.
func New(cfg *config.Config, opts Options) (*Host, error) {
	if err := cfg.RequireServer(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = common.GetLogger().With("host")
	}
	if opts.ClaimBridge == nil {
		opts.ClaimBridge = ClaimBusName
	}
	if opts.Tokens == nil && cfg.Server.UseToken {
		opts.Tokens = keyring.Default()
	}
	if opts.Audio == nil {
		ctrl, err := audio.New()
		if err != nil {
			opts.Logger.Warn("Audio control disabled: %v", err)
		} else {
			opts.Audio = ctrl
		}
	}

	h := &Host{opts: opts, log: opts.Logger}
	h.build(cfg)
	return h, nil
}

// build creates fresh services for cfg. Callers hold no lock; h is not
// running.
func (h *Host) build(cfg *config.Config) {
	clientOpts := []rig.Option{rig.WithTimeout(cfg.Server.Timeout)}
	if cfg.Server.UseToken && h.opts.Tokens != nil {
		token, err := h.opts.Tokens.GetToken(cfg.Server.URL)
		switch {
		case err == nil:
			clientOpts = append(clientOpts, rig.WithToken(token))
		case errors.Is(err, common.ErrCredentialsNotFound):
			h.log.Warn("No token stored for %s; sending requests without one", cfg.Server.URL)
		default:
			h.log.Warn("Could not read token: %v", err)
		}
	}
	client := rig.New(cfg.Server.URL, clientOpts...)

	dispatcher := control.NewDispatcher(client, control.Options{
		ColorDebounce:  cfg.ColorDebounce,
		RequestTimeout: cfg.Server.Timeout,
	})
	poller := rig.NewPoller(client, cfg.PollInterval)

	bridge := power.NewBridge(client, h.opts.Audio, power.Options{
		Enabled:      cfg.LockOnLeave.Enabled,
		NotifyServer: cfg.LockOnLeave.NotifyServer,
		MuteAudio:    cfg.LockOnLeave.MuteAudio,
	})

	h.mu.Lock()
	h.cfg = cfg
	h.client = client
	h.dispatcher = dispatcher
	h.poller = poller
	h.bridge = bridge
	onChange, onBusy := h.onChange, h.onBusy
	h.mu.Unlock()

	if onChange != nil {
		poller.SetOnChange(onChange)
	}
	if onBusy != nil {
		dispatcher.Gate().SetOnChange(onBusy)
	}
}

// SetOnChange sets the callback run when the server goes online or offline.
// It survives Reload.
func (h *Host) SetOnChange(callback func(oldOnline, newOnline bool)) {
	h.mu.Lock()
	h.onChange = callback
	poller := h.poller
	h.mu.Unlock()
	poller.SetOnChange(callback)
}

// SetOnBusy sets the callback run when a control group's in-flight flag
// flips. It survives Reload.
func (h *Host) SetOnBusy(callback func(key string, busy bool)) {
	h.mu.Lock()
	h.onBusy = callback
	dispatcher := h.dispatcher
	h.mu.Unlock()
	dispatcher.Gate().SetOnChange(callback)
}

// Config returns the configuration the services were built from.
func (h *Host) Config() *config.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Client returns the rig client.
func (h *Host) Client() *rig.Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.client
}

// Dispatcher returns the control dispatcher.
func (h *Host) Dispatcher() *control.Dispatcher {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dispatcher
}

// Poller returns the status poller.
func (h *Host) Poller() *rig.Poller {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.poller
}

// Bridge returns the power bridge.
func (h *Host) Bridge() *power.Bridge {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bridge
}

// Online reports the latest poll result.
func (h *Host) Online() bool {
	return h.Poller().Online()
}

// Start starts polling and, unless disabled, listening for lock events.
// It returns once both are running.
func (h *Host) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.running = true
	h.cancel = cancel
	h.done = make(chan struct{})
	done := h.done
	poller, bridge, cfg := h.poller, h.bridge, h.cfg
	h.mu.Unlock()

	poller.Start()

	source := h.opts.Source
	if source == nil && !h.opts.NoLockEvents {
		s, err := power.NewSource(cfg.LockOnLeave.Source)
		if err != nil {
			h.log.Warn("Lock events disabled: %v", err)
		} else {
			source = s
		}
	}
	if source == nil || h.opts.NoLockEvents {
		close(done)
		return
	}

	lock, err := h.opts.ClaimBridge()
	switch {
	case errors.Is(err, common.ErrAlreadyRunning):
		h.log.Warn("Lock events are bridged by another %s process; not bridging here", common.AppName)
		close(done)
		return
	case err != nil:
		h.log.Warn("Single-instance check unavailable, bridging anyway: %v", err)
		lock = heldLock{}
	}

	h.mu.Lock()
	h.bridging = true
	h.mu.Unlock()

	go func() {
		defer close(done)
		if err := bridge.Run(ctx, source); err != nil {
			h.log.Warn("Lock event source %s failed: %v", source.Name(), err)
		}
		// Actions already started still belong to this holder.
		bridge.Wait()
		if err := lock.Release(); err != nil {
			h.log.Debug("Releasing bridge lock: %v", err)
		}
		h.mu.Lock()
		h.bridging = false
		h.mu.Unlock()
	}()
}

// Bridging reports whether this host is the one bridging lock events.
func (h *Host) Bridging() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.bridging
}

// Stop stops every service and waits for work in flight, including lock
// event actions already started. A stopped host restarts only through Reload.
func (h *Host) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	cancel, done := h.cancel, h.done
	poller, dispatcher, bridge := h.poller, h.dispatcher, h.bridge
	h.mu.Unlock()

	cancel()
	poller.Stop()
	dispatcher.Close()
	<-done
	bridge.Wait()
}

// Reload rebuilds the services for a changed configuration. Settings that
// only affect the bridge are applied in place; anything touching the
// server restarts the services.
func (h *Host) Reload(cfg *config.Config) error {
	if err := cfg.RequireServer(); err != nil {
		return err
	}

	old := h.Config()
	if old != nil && sameServer(old, cfg) {
		h.Bridge().SetOptions(cfg.LockOnLeave.Enabled, cfg.LockOnLeave.NotifyServer, cfg.LockOnLeave.MuteAudio)
		h.mu.Lock()
		h.cfg = cfg
		h.mu.Unlock()
		return nil
	}

	h.mu.RLock()
	wasRunning := h.running
	h.mu.RUnlock()

	h.Stop()
	h.build(cfg)
	if wasRunning {
		h.Start()
	}
	h.log.Info("Services reloaded for %s", cfg.Server.URL)
	return nil
}

func sameServer(a, b *config.Config) bool {
	return a.Server == b.Server &&
		a.PollInterval == b.PollInterval &&
		a.ColorDebounce == b.ColorDebounce &&
		a.LockOnLeave.Source == b.LockOnLeave.Source
}

// Run starts the services and blocks until ctx is done.
func (h *Host) Run(ctx context.Context) error {
	h.Start()
	<-ctx.Done()
	h.Stop()
	return nil
}
