package rig

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// scriptedProber returns results from a script, repeating the last one.
type scriptedProber struct {
	mu      sync.Mutex
	results []bool
	calls   int32
	block   chan struct{}
}

func (s *scriptedProber) Online(ctx context.Context) bool {
	atomic.AddInt32(&s.calls, 1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return false
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		return false
	}
	r := s.results[0]
	if len(s.results) > 1 {
		s.results = s.results[1:]
	}
	return r
}

func (s *scriptedProber) Calls() int {
	return int(atomic.LoadInt32(&s.calls))
}

func TestPoller_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	p := NewPoller(&scriptedProber{results: []bool{true}}, time.Hour)

	if p.IsRunning() {
		t.Error("Poller should not be running initially")
	}

	p.Start()
	p.Start() // second Start is a no-op
	if !p.IsRunning() {
		t.Error("Poller should be running after Start()")
	}

	p.Stop()
	p.Stop()
	if p.IsRunning() {
		t.Error("Poller should not be running after Stop()")
	}
}

func TestPoller_PollsImmediatelyOnStart(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	prober := &scriptedProber{results: []bool{true}}
	p := NewPoller(prober, time.Hour)

	updates := make(chan bool, 1)
	p.SetOnUpdate(func(online bool) { updates <- online })

	p.Start()
	defer p.Stop()

	select {
	case online := <-updates:
		if !online {
			t.Error("first probe should report online")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no probe on Start")
	}
	if !p.Online() {
		t.Error("Online() should be true after a successful probe")
	}
}

func TestPoller_TracksTransitions(t *testing.T) {
	p := NewPoller(&scriptedProber{results: []bool{false, true, true, false}}, time.Second)

	var changes [][2]bool
	p.SetOnChange(func(oldOnline, newOnline bool) {
		changes = append(changes, [2]bool{oldOnline, newOnline})
	})

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		p.PollNow(ctx)
	}

	want := [][2]bool{{false, true}, {true, false}}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, changes[i], want[i])
		}
	}

	st := p.State()
	if st.Online || st.ConsecutiveFails != 1 {
		t.Errorf("State() = %+v", st)
	}
	if st.LastSuccess.IsZero() {
		t.Error("LastSuccess should be set after a successful probe")
	}
}

func TestPoller_UnreachableStaysOffline(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	prober := &scriptedProber{results: []bool{false}}
	p := NewPoller(prober, 20*time.Millisecond)

	var flips int32
	p.SetOnChange(func(bool, bool) { atomic.AddInt32(&flips, 1) })

	var mu sync.Mutex
	var seen []bool
	p.SetOnUpdate(func(online bool) {
		mu.Lock()
		seen = append(seen, online)
		mu.Unlock()
	})

	p.Start()
	deadline := time.Now().Add(2 * time.Second)
	for prober.Calls() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	p.Stop()

	if prober.Calls() < 3 {
		t.Fatalf("expected at least 3 probes, got %d", prober.Calls())
	}
	if atomic.LoadInt32(&flips) != 0 {
		t.Error("an always-offline server should never flip the indicator")
	}
	mu.Lock()
	defer mu.Unlock()
	for i, online := range seen {
		if online {
			t.Errorf("update %d reported online", i)
		}
	}
	if p.State().ConsecutiveFails < 3 {
		t.Errorf("ConsecutiveFails = %d, want >= 3", p.State().ConsecutiveFails)
	}
}

func TestPoller_StopAbortsSlowProbe(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	prober := &scriptedProber{results: []bool{true}, block: make(chan struct{})}
	p := NewPoller(prober, time.Hour)

	p.Start()
	for prober.Calls() == 0 {
		time.Sleep(time.Millisecond)
	}

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() should cancel an outstanding probe")
	}
	if p.Online() {
		t.Error("a probe cut short by Stop must not mark the server online")
	}
}
