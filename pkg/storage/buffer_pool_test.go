package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestPool(t *testing.T, dir string, capacity int, k int) (*BufferPool, *DiskScheduler, *DiskManager) {
	t.Helper()
	os.MkdirAll(dir, 0755)
	diskMgr, err := NewDiskManager(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create disk manager: %v", err)
	}
	scheduler := NewDiskScheduler(diskMgr)
	bp := NewBufferPool(capacity, scheduler, k)
	return bp, scheduler, diskMgr
}

func TestBufferPoolEviction(t *testing.T) {
	dir := "./test_buffer_eviction"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 3, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page1, _ := bp.NewPage()
	page2, _ := bp.NewPage()
	page3, _ := bp.NewPage()

	bp.UnpinPage(page1.ID, false)
	bp.UnpinPage(page2.ID, false)
	bp.UnpinPage(page3.ID, false)

	page4, err := bp.NewPage()
	if err != nil {
		t.Fatalf("Failed to allocate page after buffer full: %v", err)
	}
	if page4 == nil {
		t.Fatal("Expected non-nil page")
	}

	stats := bp.Stats()
	if stats["evictions"].(int) == 0 {
		t.Error("Expected at least one eviction")
	}
}

func TestBufferPoolEvictionWithDirtyPage(t *testing.T) {
	dir := "./test_buffer_eviction_dirty"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 2, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page1, _ := bp.NewPage()
	page2, _ := bp.NewPage()

	copy(page1.Data, []byte("dirty data"))
	page1.MarkDirty()
	bp.UnpinPage(page1.ID, true)
	bp.UnpinPage(page2.ID, false)

	page3, err := bp.NewPage()
	if err != nil {
		t.Fatalf("Failed to allocate page: %v", err)
	}
	if page3 == nil {
		t.Fatal("Expected non-nil page")
	}

	fetchedPage, err := bp.FetchPage(page1.ID)
	if err != nil {
		t.Fatalf("Failed to fetch evicted page: %v", err)
	}
	fetchedData := fetchedPage.Data[:len("dirty data")]
	if string(fetchedData) != "dirty data" {
		t.Errorf("Expected 'dirty data', got '%s'", string(fetchedData))
	}
}

func TestBufferPoolFetchNonExistent(t *testing.T) {
	dir := "./test_buffer_fetch_missing"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page, err := bp.FetchPage(100)
	if err != nil {
		t.Fatalf("Failed to fetch non-existent page: %v", err)
	}
	if page.ID != 100 {
		t.Errorf("Expected page ID 100, got %d", page.ID)
	}
}

func TestBufferPoolFlushNonExistentPage(t *testing.T) {
	dir := "./test_buffer_flush_missing"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	if err := bp.FlushPage(999); err == nil {
		t.Error("Expected error when flushing non-existent page")
	}
}

func TestBufferPoolFlushCleanPage(t *testing.T) {
	dir := "./test_buffer_flush_clean"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page, _ := bp.NewPage()
	bp.UnpinPage(page.ID, false)

	if err := bp.FlushPage(page.ID); err != nil {
		t.Fatalf("Failed to flush clean page: %v", err)
	}
}

func TestBufferPoolDeletePageNotInPool(t *testing.T) {
	dir := "./test_buffer_delete_missing"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	if err := bp.DeletePage(999); err == nil {
		t.Fatal("Expected error when deleting non-existent page, got nil")
	}
}

func TestBufferPoolNewPageWhenFull(t *testing.T) {
	dir := "./test_buffer_new_full"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 2, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page1, _ := bp.NewPage()
	page2, _ := bp.NewPage()

	if page1.PinCount != 1 || page2.PinCount != 1 {
		t.Error("Expected pages to be pinned")
	}

	bp.UnpinPage(page1.ID, false)

	page3, err := bp.NewPage()
	if err != nil {
		t.Fatalf("Failed to allocate page: %v", err)
	}
	if page3 == nil {
		t.Fatal("Expected non-nil page")
	}
}

func TestBufferPoolFullWhenAllPinned(t *testing.T) {
	dir := "./test_buffer_full_pinned"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 2, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	bp.NewPage()
	bp.NewPage()

	if _, err := bp.NewPage(); err == nil {
		t.Error("Expected ErrFull when every frame is pinned")
	}
}

func TestBufferPoolUnpinNonExistentPage(t *testing.T) {
	dir := "./test_buffer_unpin_missing"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	if err := bp.UnpinPage(999, false); err == nil {
		t.Error("Expected error when unpinning non-existent page")
	}
}

func TestBufferPoolMultiplePinUnpin(t *testing.T) {
	dir := "./test_buffer_multi_pin"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page, _ := bp.NewPage()
	pageID := page.ID

	bp.FetchPage(pageID) // pin count = 2
	bp.FetchPage(pageID) // pin count = 3

	bp.UnpinPage(pageID, false) // pin count = 2

	frameID := bp.pageTable[pageID]
	if bp.frames[frameID].PinCount != 2 {
		t.Errorf("Expected pin count 2, got %d", bp.frames[frameID].PinCount)
	}

	bp.UnpinPage(pageID, false) // pin count = 1
	bp.UnpinPage(pageID, false) // pin count = 0

	if bp.frames[frameID].IsPinned() {
		t.Error("Expected page to be unpinned")
	}
}

func TestBufferPoolStatsHitRate(t *testing.T) {
	dir := "./test_buffer_hit_rate"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page, _ := bp.NewPage()
	pageID := page.ID
	bp.UnpinPage(pageID, false)

	bp.FetchPage(pageID)
	bp.UnpinPage(pageID, false)

	stats := bp.Stats()
	if stats["hits"].(int) == 0 {
		t.Error("Expected at least one cache hit")
	}
	if stats["hit_rate"].(float64) == 0.0 {
		t.Error("Expected non-zero hit rate")
	}
}

func TestBufferPoolLRUKOrdering(t *testing.T) {
	dir := "./test_buffer_lruk"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 3, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	page1, _ := bp.NewPage()
	page2, _ := bp.NewPage()
	page3, _ := bp.NewPage()

	bp.UnpinPage(page1.ID, false)
	bp.UnpinPage(page2.ID, false)
	bp.UnpinPage(page3.ID, false)

	// page1 gets a second access, giving it a finite (small) backward
	// k-distance; page2/page3 still have only one access each and sit
	// in the history list, evicted before anything in the cache list.
	bp.FetchPage(page1.ID)
	bp.UnpinPage(page1.ID, false)

	page4, _ := bp.NewPage()
	bp.UnpinPage(page4.ID, false)

	if _, exists := bp.pageTable[page2.ID]; exists {
		t.Error("Expected page2 to be evicted first (single access, history list)")
	}

	if _, exists := bp.pageTable[page1.ID]; !exists {
		t.Error("Expected page1 to survive eviction (two accesses)")
	}
}
