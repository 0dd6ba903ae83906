package invites

import (
	"context"
	"sync"
)

type gateEntry struct {
	slot chan struct{}
	refs int
}

// Gate gives exclusive access per key. Callers for the same key queue up,
// callers for different keys never wait on each other.
type Gate struct {
	mutex   sync.Mutex
	entries map[string]*gateEntry
}

func NewGate() *Gate {
	return &Gate{entries: make(map[string]*gateEntry)}
}

// With runs fn while holding the key. If ctx is done before the key could be taken,
// fn is not run and ctx.Err() is returned.
func (g *Gate) With(ctx context.Context, key string, fn func() error) error {
	entry := g.acquire(key)
	defer g.release(key, entry)

	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case entry.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-entry.slot }()
	return fn()
}

func (g *Gate) acquire(key string) *gateEntry {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	entry, exists := g.entries[key]
	if !exists {
		entry = &gateEntry{slot: make(chan struct{}, 1)}
		g.entries[key] = entry
	}
	entry.refs++
	return entry
}

// release drops the entry once nobody holds or waits for it
func (g *Gate) release(key string, entry *gateEntry) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	entry.refs--
	if entry.refs == 0 {
		delete(g.entries, key)
	}
}

// active is the number of keys currently held or waited on
func (g *Gate) active() int {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	return len(g.entries)
}
