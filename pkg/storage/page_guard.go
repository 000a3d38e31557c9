package storage

import "sync"

// BasicPageGuard owns one pin on a page for its lifetime. Drop releases
// the pin exactly once; calling it twice is a no-op, matching the
// buffer pool's own idempotent Unpin discipline.
//
// Guards are move-only in spirit: Go has no move constructor, so a
// guard that has been hand off to UpgradeRead/UpgradeWrite (or simply
// reassigned) must not be used again. Callers that need to pass
// ownership should do so by value and stop using the source variable.
type BasicPageGuard struct {
	pool    *BufferPool
	page    *Page
	dropped bool
}

func newBasicPageGuard(pool *BufferPool, page *Page) *BasicPageGuard {
	return &BasicPageGuard{pool: pool, page: page}
}

// Page exposes the underlying page. Callers must externally
// synchronize concurrent field access; BasicPageGuard grants no latch.
func (g *BasicPageGuard) Page() *Page { return g.page }

// Drop releases the guard's pin. Safe to call multiple times.
func (g *BasicPageGuard) Drop() {
	if g.dropped || g.page == nil {
		return
	}
	g.dropped = true
	g.pool.UnpinPage(g.page.ID, false)
}

// MarkDirty flags the page dirty so it is flushed on eviction.
func (g *BasicPageGuard) MarkDirty() {
	g.page.MarkDirty()
}

// UpgradeRead converts a basic guard into a read guard, taking the
// page's read latch. The basic guard must not be used afterward.
func (g *BasicPageGuard) UpgradeRead() *ReadPageGuard {
	page := g.page
	pool := g.pool
	g.dropped = true // ownership transferred, not released
	page.latch.RLock()
	return &ReadPageGuard{pool: pool, page: page}
}

// UpgradeWrite converts a basic guard into a write guard, taking the
// page's write latch. The basic guard must not be used afterward.
func (g *BasicPageGuard) UpgradeWrite() *WritePageGuard {
	page := g.page
	pool := g.pool
	g.dropped = true
	page.latch.Lock()
	return &WritePageGuard{pool: pool, page: page}
}

// ReadPageGuard holds a page's pin plus its shared (read) latch.
type ReadPageGuard struct {
	pool    *BufferPool
	page    *Page
	dropped bool
}

func (g *ReadPageGuard) Page() *Page { return g.page }

// Drop releases the read latch and the pin. Safe to call multiple times.
func (g *ReadPageGuard) Drop() {
	if g.dropped {
		return
	}
	g.dropped = true
	g.page.latch.RUnlock()
	g.pool.UnpinPage(g.page.ID, false)
}

// WritePageGuard holds a page's pin plus its exclusive (write) latch.
type WritePageGuard struct {
	pool    *BufferPool
	page    *Page
	dropped bool
}

func (g *WritePageGuard) Page() *Page { return g.page }

// MarkDirty flags the page dirty; the caller holds exclusive access.
func (g *WritePageGuard) MarkDirty() {
	g.page.MarkDirty()
}

// Drop releases the write latch and the pin. A write guard forces the
// page dirty unconditionally: holding exclusive access is itself
// grounds to assume the page was modified, regardless of whether the
// caller happened to call MarkDirty. Safe to call multiple times.
func (g *WritePageGuard) Drop() {
	if g.dropped {
		return
	}
	g.dropped = true
	g.page.MarkDirty()
	g.page.latch.Unlock()
	g.pool.UnpinPage(g.page.ID, true)
}

// pageLatch is embedded into Page so guards can take per-page
// shared/exclusive locks independent of the pool-wide mutex.
type pageLatch struct {
	mu sync.RWMutex
}

func (l *pageLatch) RLock()   { l.mu.RLock() }
func (l *pageLatch) RUnlock() { l.mu.RUnlock() }
func (l *pageLatch) Lock()    { l.mu.Lock() }
func (l *pageLatch) Unlock()  { l.mu.Unlock() }
