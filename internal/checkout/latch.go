package checkout

import (
	"sync"
	"sync/atomic"
)

// inflight holds one submit latch per session.
type inflight struct {
	mu      sync.Mutex
	latches map[string]*atomic.Bool
}

func newInflight() *inflight {
	return &inflight{latches: map[string]*atomic.Bool{}}
}

// acquire returns a release func when no submission is outstanding for the session.
// The latch is taken under mu so forget never drops one between lookup and swap.
func (f *inflight) acquire(sessionID string) (func(), bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latch, ok := f.latches[sessionID]
	if !ok {
		latch = &atomic.Bool{}
		f.latches[sessionID] = latch
	}
	if !latch.CompareAndSwap(false, true) {
		return nil, false
	}
	var once sync.Once
	return func() { once.Do(func() { latch.Store(false) }) }, true
}

func (f *inflight) held(sessionID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	latch, ok := f.latches[sessionID]
	return ok && latch.Load()
}

// forget drops an idle latch. A latch still held stays until its submission settles.
func (f *inflight) forget(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if latch, ok := f.latches[sessionID]; ok && !latch.Load() {
		delete(f.latches, sessionID)
	}
}
