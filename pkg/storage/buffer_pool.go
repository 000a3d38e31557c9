package storage

import (
	"errors"
	"fmt"
	"sync"
)

// ErrFull is returned when the buffer pool cannot find any frame to
// reuse because every frame is pinned.
var ErrFull = errors.New("storage: buffer pool full, no unpinned frames")

// BufferPool is a fixed-size cache of pages backed by a disk scheduler
// and an LRU-K replacement policy. Every page currently resident lives
// in exactly one frame; frame slots are recycled, never grown.
type BufferPool struct {
	mu        sync.RWMutex
	capacity  int
	scheduler *DiskScheduler
	replacer  *LRUKReplacer

	frames    []*Page          // frames[frameID] == resident page, or nil
	pageTable map[PageID]FrameID
	freeList  []FrameID

	evictions int
	hits      int
	misses    int
}

// NewBufferPool creates a pool of the given frame capacity, performing
// I/O through scheduler and evicting per the LRU-K policy with the
// given k.
func NewBufferPool(capacity int, scheduler *DiskScheduler, k int) *BufferPool {
	free := make([]FrameID, capacity)
	for i := range free {
		free[i] = FrameID(i)
	}
	return &BufferPool{
		capacity:  capacity,
		scheduler: scheduler,
		replacer:  NewLRUKReplacer(capacity, k),
		frames:    make([]*Page, capacity),
		pageTable: make(map[PageID]FrameID, capacity),
		freeList:  free,
	}
}

// findVictim returns a frame to reuse, preferring the free list over
// eviction. Caller must hold bp.mu.
func (bp *BufferPool) findVictim() (FrameID, error) {
	if n := len(bp.freeList); n > 0 {
		frameID := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return frameID, nil
	}

	frameID, err := bp.replacer.Evict()
	if err != nil {
		return 0, ErrFull
	}

	victim := bp.frames[frameID]
	if victim != nil {
		if victim.IsDirty {
			if err := bp.scheduler.WritePageSync(victim); err != nil {
				return 0, fmt.Errorf("failed to flush page during eviction: %w", err)
			}
		}
		delete(bp.pageTable, victim.ID)
		bp.frames[frameID] = nil
	}
	bp.evictions++
	return frameID, nil
}

// FetchPage returns the page for pageID, loading it from disk if
// necessary, and pins it. Callers release the pin via UnpinPage or a
// page guard.
func (bp *BufferPool) FetchPage(pageID PageID) (*Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameID, ok := bp.pageTable[pageID]; ok {
		page := bp.frames[frameID]
		page.Pin()
		if err := bp.replacer.RecordAccess(frameID); err != nil {
			return nil, fmt.Errorf("failed to record frame access: %w", err)
		}
		bp.replacer.SetEvictable(frameID, false)
		bp.hits++
		return page, nil
	}

	bp.misses++

	frameID, err := bp.findVictim()
	if err != nil {
		return nil, err
	}

	page, err := bp.scheduler.ReadPageSync(pageID)
	if err != nil {
		bp.freeList = append(bp.freeList, frameID)
		return nil, fmt.Errorf("failed to read page from disk: %w", err)
	}

	bp.frames[frameID] = page
	bp.pageTable[pageID] = frameID
	page.Pin()
	if err := bp.replacer.RecordAccess(frameID); err != nil {
		return nil, fmt.Errorf("failed to record frame access: %w", err)
	}
	bp.replacer.SetEvictable(frameID, false)

	return page, nil
}

// NewPage allocates a fresh page on disk, installs it in a frame, and
// pins it.
func (bp *BufferPool) NewPage() (*Page, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, err := bp.findVictim()
	if err != nil {
		return nil, err
	}

	pageID, err := bp.scheduler.disk.AllocatePage()
	if err != nil {
		bp.freeList = append(bp.freeList, frameID)
		return nil, fmt.Errorf("failed to allocate page: %w", err)
	}

	page := NewPage(pageID, PageTypeData)
	page.MarkDirty()

	bp.frames[frameID] = page
	bp.pageTable[pageID] = frameID
	page.Pin()
	if err := bp.replacer.RecordAccess(frameID); err != nil {
		return nil, fmt.Errorf("failed to record frame access: %w", err)
	}
	bp.replacer.SetEvictable(frameID, false)

	return page, nil
}

// NewPageGuarded is NewPage wrapped in a BasicPageGuard.
func (bp *BufferPool) NewPageGuarded() (*BasicPageGuard, error) {
	page, err := bp.NewPage()
	if err != nil {
		return nil, err
	}
	return newBasicPageGuard(bp, page), nil
}

// FetchPageGuarded is FetchPage wrapped in a BasicPageGuard.
func (bp *BufferPool) FetchPageGuarded(pageID PageID) (*BasicPageGuard, error) {
	page, err := bp.FetchPage(pageID)
	if err != nil {
		return nil, err
	}
	return newBasicPageGuard(bp, page), nil
}

// UnpinPage decrements a page's pin count and, once unpinned, allows
// the replacer to consider it for eviction.
func (bp *BufferPool) UnpinPage(pageID PageID, isDirty bool) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return fmt.Errorf("page %d not in buffer pool", pageID)
	}

	page := bp.frames[frameID]
	page.Unpin()
	if isDirty {
		page.MarkDirty()
	}

	if !page.IsPinned() {
		bp.replacer.SetEvictable(frameID, true)
	}

	return nil
}

// FlushPage writes a resident page to disk if dirty.
func (bp *BufferPool) FlushPage(pageID PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	frameID, ok := bp.pageTable[pageID]
	if !ok {
		return fmt.Errorf("page %d not in buffer pool", pageID)
	}

	page := bp.frames[frameID]
	if page.IsDirty {
		if err := bp.scheduler.WritePageSync(page); err != nil {
			return fmt.Errorf("failed to write page to disk: %w", err)
		}
		page.IsDirty = false
	}

	return nil
}

// FlushAllPages writes every resident dirty page to disk.
func (bp *BufferPool) FlushAllPages() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	for pageID, frameID := range bp.pageTable {
		page := bp.frames[frameID]
		if page.IsDirty {
			if err := bp.scheduler.WritePageSync(page); err != nil {
				return fmt.Errorf("failed to write page %d to disk: %w", pageID, err)
			}
			page.IsDirty = false
		}
	}

	return nil
}

// DirtyPages returns every currently resident dirty page, for use by
// the checkpoint archiver. Pages are returned without being pinned;
// callers must not retain them past the next mutating buffer pool
// call.
func (bp *BufferPool) DirtyPages() []*Page {
	bp.mu.RLock()
	defer bp.mu.RUnlock()

	var dirty []*Page
	for _, page := range bp.frames {
		if page != nil && page.IsDirty {
			dirty = append(dirty, page)
		}
	}
	return dirty
}

// DeletePage removes a page from the buffer pool and frees it on disk.
// It fails if the page is currently pinned.
func (bp *BufferPool) DeletePage(pageID PageID) error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if frameID, ok := bp.pageTable[pageID]; ok {
		page := bp.frames[frameID]
		if page.IsPinned() {
			return fmt.Errorf("cannot delete pinned page %d", pageID)
		}
		bp.replacer.Remove(frameID)
		delete(bp.pageTable, pageID)
		bp.frames[frameID] = nil
		bp.freeList = append(bp.freeList, frameID)
	}

	return bp.scheduler.disk.DeallocatePage(pageID)
}

// Stats reports buffer pool hit/miss/eviction counters.
func (bp *BufferPool) Stats() map[string]interface{} {
	bp.mu.RLock()
	defer bp.mu.RUnlock()

	total := bp.hits + bp.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(bp.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"capacity":  bp.capacity,
		"size":      len(bp.pageTable),
		"hits":      bp.hits,
		"misses":    bp.misses,
		"evictions": bp.evictions,
		"hit_rate":  hitRate,
	}
}
