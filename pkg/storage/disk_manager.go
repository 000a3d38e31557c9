package storage

import (
	"fmt"
	"os"
	"sync"
)

// DiskManager is the reference external-collaborator implementation: a
// file-backed store of fixed-size pages. The rest of the package only
// depends on the DiskIO interface below; DiskManager satisfies it.
type DiskManager struct {
	dataFile    *os.File
	nextPageID  PageID
	freeList    []PageID
	mu          sync.Mutex
	totalReads  int64
	totalWrites int64
}

// DiskIO is the contract the buffer pool and disk scheduler depend on.
// A SQL engine embedding this package may supply its own implementation
// (e.g. an mmap-backed or network-backed one); only *DiskManager is
// provided here.
type DiskIO interface {
	ReadPage(id PageID) (*Page, error)
	WritePage(page *Page) error
	AllocatePage() (PageID, error)
	DeallocatePage(id PageID) error
}

// NewDiskManager opens (or creates) a data file and recovers nextPageID
// from its size.
func NewDiskManager(path string) (*DiskManager, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}

	return &DiskManager{
		dataFile:   file,
		nextPageID: PageID(fileInfo.Size() / PageSize),
	}, nil
}

// ReadPage reads a page from disk. Reading past the end of the file
// returns a fresh zero-valued page rather than an error, matching the
// "first touch allocates" convention pages rely on.
func (dm *DiskManager) ReadPage(pageID PageID) (*Page, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset := int64(pageID) * PageSize
	data := make([]byte, PageSize)

	n, err := dm.dataFile.ReadAt(data, offset)
	if err != nil && err.Error() != "EOF" {
		return nil, fmt.Errorf("failed to read page %d: %w", pageID, err)
	}

	if n < PageSize {
		return NewPage(pageID, PageTypeData), nil
	}

	page := NewPage(pageID, PageTypeData)
	if err := page.Deserialize(data); err != nil {
		return nil, fmt.Errorf("failed to deserialize page %d: %w", pageID, err)
	}

	dm.totalReads++
	return page, nil
}

// WritePage writes a page to disk at its offset.
func (dm *DiskManager) WritePage(page *Page) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	offset := int64(page.ID) * PageSize
	data := page.Serialize()

	if _, err := dm.dataFile.WriteAt(data, offset); err != nil {
		return fmt.Errorf("failed to write page %d: %w", page.ID, err)
	}

	dm.totalWrites++
	return nil
}

// AllocatePage returns a free page ID, reusing a deallocated one if
// available before growing the file.
func (dm *DiskManager) AllocatePage() (PageID, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if n := len(dm.freeList); n > 0 {
		pageID := dm.freeList[n-1]
		dm.freeList = dm.freeList[:n-1]
		return pageID, nil
	}

	pageID := dm.nextPageID
	dm.nextPageID++
	return pageID, nil
}

// DeallocatePage returns a page to the free list for future reuse.
func (dm *DiskManager) DeallocatePage(pageID PageID) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if pageID >= dm.nextPageID {
		return fmt.Errorf("invalid page ID: %d (next page ID: %d)", pageID, dm.nextPageID)
	}

	dm.freeList = append(dm.freeList, pageID)
	return nil
}

// Sync flushes all written data to stable storage.
func (dm *DiskManager) Sync() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	return dm.dataFile.Sync()
}

// Close syncs and closes the underlying data file.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if err := dm.dataFile.Sync(); err != nil {
		return err
	}

	return dm.dataFile.Close()
}

// Stats reports disk manager counters.
func (dm *DiskManager) Stats() map[string]interface{} {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	return map[string]interface{}{
		"next_page_id": dm.nextPageID,
		"free_pages":   len(dm.freeList),
		"total_reads":  dm.totalReads,
		"total_writes": dm.totalWrites,
	}
}
