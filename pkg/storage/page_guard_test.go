package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBasicPageGuardDropUnpins(t *testing.T) {
	dir := "./test_guard_basic"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	guard, err := bp.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded failed: %v", err)
	}
	pageID := guard.Page().ID

	guard.Drop()
	guard.Drop() // second Drop must be a no-op, not a double-unpin

	frameID := bp.pageTable[pageID]
	if bp.frames[frameID].IsPinned() {
		t.Error("expected page to be unpinned after guard Drop")
	}
}

func TestWritePageGuardForcesDirtyOnDrop(t *testing.T) {
	dir := "./test_guard_write_dirty"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	basic, err := bp.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded failed: %v", err)
	}
	pageID := basic.Page().ID

	write := basic.UpgradeWrite()
	if write.Page().IsDirty {
		t.Fatal("page should not start dirty")
	}
	// no MarkDirty call: exclusive access alone should be enough for
	// Drop to force the page dirty.
	write.Drop()

	frameID := bp.pageTable[pageID]
	if !bp.frames[frameID].IsDirty {
		t.Error("expected write guard Drop to force the page dirty")
	}
}

func TestReadWriteGuardUpgrade(t *testing.T) {
	dir := "./test_guard_upgrade"
	defer os.RemoveAll(dir)
	bp, scheduler, diskMgr := newTestPool(t, dir, 10, 2)
	defer scheduler.Shutdown()
	defer diskMgr.Close()

	basic, err := bp.NewPageGuarded()
	if err != nil {
		t.Fatalf("NewPageGuarded failed: %v", err)
	}

	write := basic.UpgradeWrite()
	write.MarkDirty()
	if !write.Page().IsDirty {
		t.Error("expected page marked dirty via write guard")
	}
	write.Drop()

	guard2, err := bp.FetchPageGuarded(write.Page().ID)
	if err != nil {
		t.Fatalf("FetchPageGuarded failed: %v", err)
	}
	read := guard2.UpgradeRead()
	defer read.Drop()

	if read.Page().ID != write.Page().ID {
		t.Error("expected same page ID across upgrade")
	}
}
