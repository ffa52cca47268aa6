package kvfile

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// lockTable is the per-fingerprint mutual-exclusion table described in
// spec §4.4: a lazily-grown mapping from fingerprint to a reentrant-free
// mutex, backed by xsync.Map so that first access for a fingerprint creates
// its token atomically while subsequent accesses are lock-free reads. Like
// the teacher's persistMaps registry, entries persist for the lifetime of
// the store; unbounded growth is an accepted trade-off for O(1) lookup
// (spec §3, "bounded growth... eviction is a permitted extension").
type lockTable struct {
	locks *xsync.Map
}

func newLockTable() *lockTable {
	return &lockTable{locks: xsync.NewMap()}
}

func (lt *lockTable) mutexFor(fp string) *sync.Mutex {
	v, _ := lt.locks.LoadOrCompute(fp, func() interface{} {
		return &sync.Mutex{}
	})
	return v.(*sync.Mutex)
}

// acquire blocks the calling goroutine — not a platform thread pinned by
// the store — until the per-fingerprint lock is held, and returns a guard
// the caller releases exactly once.
func (lt *lockTable) acquire(fp string) *lockGuard {
	mu := lt.mutexFor(fp)
	mu.Lock()
	return &lockGuard{mu: mu}
}

// lockGuard is the reference-stable token returned by acquire. Releasing it
// hands the underlying mutex to the next waiter; Go's runtime mutex
// implementation is starvation-free under contention, satisfying the FIFO
// /fair-order requirement without a custom queue.
type lockGuard struct {
	mu       *sync.Mutex
	released bool
}

func (g *lockGuard) release() {
	if g.released {
		return
	}
	g.released = true
	g.mu.Unlock()
}
