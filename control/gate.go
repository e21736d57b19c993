package control

import "sync"

// Gate holds one in-flight flag per key. A key is busy while at least one
// holder has acquired it and not released it yet.
type Gate struct {
	mu       sync.Mutex
	holders  map[string]int
	onChange func(key string, busy bool)
}

// NewGate creates an empty gate.
func NewGate() *Gate {
	return &Gate{holders: make(map[string]int)}
}

// SetOnChange sets a callback run whenever a key becomes busy or free.
// It runs on the goroutine that acquired or released the key.
func (g *Gate) SetOnChange(callback func(key string, busy bool)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = callback
}

// TryAcquire marks key busy. It reports false, and changes nothing, if key
// was already busy.
func (g *Gate) TryAcquire(key string) bool {
	g.mu.Lock()
	if g.holders[key] > 0 {
		g.mu.Unlock()
		return false
	}
	g.holders[key] = 1
	cb := g.onChange
	g.mu.Unlock()

	if cb != nil {
		cb(key, true)
	}
	return true
}

// Hold adds a holder to key whether or not it is already busy. Hand-offs
// between two holders of the same key therefore never show the key as free.
func (g *Gate) Hold(key string) {
	g.mu.Lock()
	g.holders[key]++
	first := g.holders[key] == 1
	cb := g.onChange
	g.mu.Unlock()

	if first && cb != nil {
		cb(key, true)
	}
}

// Release drops one holder of key. Releasing a free key does nothing.
func (g *Gate) Release(key string) {
	g.mu.Lock()
	n := g.holders[key]
	if n == 0 {
		g.mu.Unlock()
		return
	}
	if n == 1 {
		delete(g.holders, key)
	} else {
		g.holders[key] = n - 1
	}
	cb := g.onChange
	g.mu.Unlock()

	if n == 1 && cb != nil {
		cb(key, false)
	}
}

// Busy reports whether key is in flight.
func (g *Gate) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holders[key] > 0
}

// Keys returns the keys currently in flight.
func (g *Gate) Keys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	keys := make([]string, 0, len(g.holders))
	for k := range g.holders {
		keys = append(keys, k)
	}
	return keys
}
