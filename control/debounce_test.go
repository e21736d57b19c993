package control

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_RunsOnlyLast(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var ran int32
	var last int32
	for i := 1; i <= 5; i++ {
		i := int32(i)
		d.Schedule(func() {
			atomic.AddInt32(&ran, 1)
			atomic.StoreInt32(&last, i)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&ran); got != 1 {
		t.Errorf("ran %d times, want 1", got)
	}
	if got := atomic.LoadInt32(&last); got != 5 {
		t.Errorf("ran schedule %d, want the last one (5)", got)
	}
	if d.Pending() {
		t.Error("Pending() should be false after the call ran")
	}
}

func TestDebouncer_WaitsFullDelayFromLastSchedule(t *testing.T) {
	d := NewDebouncer(60 * time.Millisecond)

	fired := make(chan time.Time, 1)
	d.Schedule(func() { fired <- time.Now() })
	time.Sleep(40 * time.Millisecond)

	second := time.Now()
	d.Schedule(func() { fired <- time.Now() })

	select {
	case at := <-fired:
		if at.Sub(second) < 60*time.Millisecond {
			t.Errorf("fired %v after the last schedule, want >= 60ms", at.Sub(second))
		}
	case <-time.After(time.Second):
		t.Fatal("debounced call never ran")
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var ran int32
	d.Schedule(func() { atomic.AddInt32(&ran, 1) })
	if !d.Pending() {
		t.Error("Pending() should be true after Schedule")
	}

	d.Cancel()
	if d.Pending() {
		t.Error("Pending() should be false after Cancel")
	}

	time.Sleep(60 * time.Millisecond)
	if atomic.LoadInt32(&ran) != 0 {
		t.Error("cancelled call should not run")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var ran int32
	d.Schedule(func() { atomic.AddInt32(&ran, 1) })
	d.Stop()

	if d.Schedule(func() { atomic.AddInt32(&ran, 1) }) {
		t.Error("Schedule after Stop should report false")
	}

	time.Sleep(40 * time.Millisecond)
	if atomic.LoadInt32(&ran) != 0 {
		t.Error("no call should run after Stop")
	}
}
