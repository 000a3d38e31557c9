package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskSchedulerReadWrite(t *testing.T) {
	dir := "./test_scheduler_rw"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	diskMgr, err := NewDiskManager(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create disk manager: %v", err)
	}
	defer diskMgr.Close()

	scheduler := NewDiskScheduler(diskMgr)
	defer scheduler.Shutdown()

	page := NewPage(0, PageTypeData)
	copy(page.Data, []byte("scheduled write"))

	if err := scheduler.WritePageSync(page); err != nil {
		t.Fatalf("WritePageSync failed: %v", err)
	}

	read, err := scheduler.ReadPageSync(0)
	if err != nil {
		t.Fatalf("ReadPageSync failed: %v", err)
	}
	got := read.Data[:len("scheduled write")]
	if string(got) != "scheduled write" {
		t.Errorf("expected 'scheduled write', got %q", got)
	}
}

func TestDiskSchedulerConcurrentRequests(t *testing.T) {
	dir := "./test_scheduler_concurrent"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	diskMgr, err := NewDiskManager(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create disk manager: %v", err)
	}
	defer diskMgr.Close()

	scheduler := NewDiskScheduler(diskMgr)
	defer scheduler.Shutdown()

	const n = 20
	chans := make([]<-chan schedulerResult, n)
	for i := 0; i < n; i++ {
		page := NewPage(PageID(i), PageTypeData)
		chans[i] = scheduler.ScheduleWrite(page)
	}
	for i := 0; i < n; i++ {
		res := <-chans[i]
		if res.err != nil {
			t.Fatalf("write %d failed: %v", i, res.err)
		}
	}
}

func TestDiskSchedulerShutdownIdempotent(t *testing.T) {
	dir := "./test_scheduler_shutdown"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	diskMgr, err := NewDiskManager(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create disk manager: %v", err)
	}
	defer diskMgr.Close()

	scheduler := NewDiskScheduler(diskMgr)
	scheduler.Shutdown()
	scheduler.Shutdown() // must not panic or block
}
