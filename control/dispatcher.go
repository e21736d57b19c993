// Package control turns panel interactions into rig server requests.
//
// Each control group has an in-flight flag in a Gate; front ends disable the
// bound widgets while the flag is set. Style buttons share one flag, every
// ambient command has its own, and the manual lock/unlock pair shares one.
// Color changes are debounced so a drag across the picker sends only the
// final color.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/dysperse/rigpanel/common"
	"github.com/dysperse/rigpanel/rig"
)

// Gate keys for the control groups.
const (
	KeyColor = "color"
	KeyStyle = "style"
	KeyLock  = "lock"
)

// AmbientKey is the gate key of one ambient command.
func AmbientKey(command string) string {
	return "ambient:" + command
}

// Remote is the subset of the rig client the dispatcher drives.
type Remote interface {
	SetColor(ctx context.Context, value string) error
	SetStyle(ctx context.Context, style rig.Style) error
	SendAmbient(ctx context.Context, command string) error
	TriggerLock(ctx context.Context, event rig.EventType) error
}

// Options tunes a Dispatcher.
type Options struct {
	// ColorDebounce is the quiet period before a color is sent.
	ColorDebounce time.Duration
	// RequestTimeout bounds each request.
	RequestTimeout time.Duration
	Logger         common.Logger
}

// Dispatcher issues one request per interaction and tracks in-flight flags.
type Dispatcher struct {
	remote   Remote
	gate     *Gate
	debounce *Debouncer
	timeout  time.Duration
	log      common.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	colorBusy bool
	nextColor string
	lastColor string
}

// NewDispatcher creates a dispatcher driving remote.
func NewDispatcher(remote Remote, opts Options) *Dispatcher {
	if opts.ColorDebounce <= 0 {
		opts.ColorDebounce = common.ColorDebounce
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = common.RequestTimeout
	}
	if opts.Logger == nil {
		opts.Logger = common.GetLogger().With("control")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		remote:   remote,
		gate:     NewGate(),
		debounce: NewDebouncer(opts.ColorDebounce),
		timeout:  opts.RequestTimeout,
		log:      opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Gate exposes the in-flight flags so front ends can bind widgets to them.
func (d *Dispatcher) Gate() *Gate {
	return d.gate
}

// Busy reports whether the group behind key has a request in flight.
func (d *Dispatcher) Busy(key string) bool {
	return d.gate.Busy(key)
}

// SelectColor records a color change. The request is sent once no other
// change arrives within the debounce window; only the last value is sent.
func (d *Dispatcher) SelectColor(value string) error {
	hex, err := rig.NormalizeColor(value)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.lastColor = hex
	d.mu.Unlock()

	d.debounce.Schedule(func() { d.fireColor(hex) })
	return nil
}

// ColorPending reports whether a color change is waiting out the debounce.
func (d *Dispatcher) ColorPending() bool {
	return d.debounce.Pending()
}

// LastColor returns the most recently selected color, without '#'.
func (d *Dispatcher) LastColor() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastColor
}

// fireColor sends hex, or parks it until the color request in flight
// settles. A parked color is replaced by any newer one.
func (d *Dispatcher) fireColor(hex string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.colorBusy {
		d.nextColor = hex
		d.mu.Unlock()
		return
	}
	d.colorBusy = true
	d.wg.Add(1)
	d.mu.Unlock()

	d.gate.Hold(KeyColor)
	go d.colorLoop(hex)
}

func (d *Dispatcher) colorLoop(hex string) {
	defer d.wg.Done()
	defer d.gate.Release(KeyColor)

	for {
		d.send("set color #"+hex, func(ctx context.Context) error {
			return d.remote.SetColor(ctx, hex)
		})

		d.mu.Lock()
		next := d.nextColor
		d.nextColor = ""
		if next == "" || d.closed {
			d.colorBusy = false
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
		hex = next
	}
}

// SetStyle sends a style change. It reports false without sending when a
// style request is already in flight.
func (d *Dispatcher) SetStyle(style rig.Style) bool {
	return d.start(KeyStyle, "set style "+string(style), func(ctx context.Context) error {
		return d.remote.SetStyle(ctx, style)
	})
}

// SendScene sends an ambient command. Commands gate independently.
func (d *Dispatcher) SendScene(command string) bool {
	return d.start(AmbientKey(command), "ambient "+command, func(ctx context.Context) error {
		return d.remote.SendAmbient(ctx, command)
	})
}

// TriggerLock sends the manual lock/unlock override.
func (d *Dispatcher) TriggerLock(event rig.EventType) bool {
	return d.start(KeyLock, "trigger "+string(event), func(ctx context.Context) error {
		return d.remote.TriggerLock(ctx, event)
	})
}

// start runs call in the background under key's in-flight flag.
func (d *Dispatcher) start(key, what string, call func(ctx context.Context) error) bool {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return false
	}
	d.wg.Add(1)
	d.mu.Unlock()

	if !d.gate.TryAcquire(key) {
		d.wg.Done()
		d.log.Debug("%s ignored: %s already in flight", what, key)
		return false
	}

	go func() {
		defer d.wg.Done()
		defer d.gate.Release(key)
		d.send(what, call)
	}()
	return true
}

// send runs one request. Success and failure settle identically; failures
// are only logged.
func (d *Dispatcher) send(what string, call func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	start := time.Now()
	if err := call(ctx); err != nil {
		d.log.Warn("%s failed: %v", what, err)
		return
	}
	d.log.Debug("%s ok (%v)", what, time.Since(start).Round(time.Millisecond))
}

// Close drops a pending color change, aborts requests in flight and waits
// for them to settle. Further interactions are ignored.
func (d *Dispatcher) Close() {
	d.debounce.Stop()

	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}
