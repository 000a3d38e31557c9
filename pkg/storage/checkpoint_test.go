package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alderlake-db/alderdb/pkg/compression"
)

func TestCheckpointArchiveRestore(t *testing.T) {
	dir := "./test_checkpoint"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	diskMgr, err := NewDiskManager(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create disk manager: %v", err)
	}
	defer diskMgr.Close()

	ck, err := NewCheckpointer(&compression.Config{Algorithm: compression.AlgorithmZstd, Level: 3})
	if err != nil {
		t.Fatalf("Failed to create checkpointer: %v", err)
	}
	defer ck.Close()

	page1 := NewPage(0, PageTypeData)
	copy(page1.Data, []byte("page zero"))
	page2 := NewPage(1, PageTypeData)
	copy(page2.Data, []byte("page one"))

	archivePath := filepath.Join(dir, "snapshot.ckpt")
	if err := ck.Archive([]*Page{page1, page2}, archivePath); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	n, err := ck.Restore(archivePath, diskMgr)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 pages restored, got %d", n)
	}

	got, err := diskMgr.ReadPage(0)
	if err != nil {
		t.Fatalf("ReadPage failed: %v", err)
	}
	if string(got.Data[:len("page zero")]) != "page zero" {
		t.Errorf("expected 'page zero', got %q", got.Data[:len("page zero")])
	}
}

func TestCheckpointRestoreBadMagic(t *testing.T) {
	dir := "./test_checkpoint_bad_magic"
	defer os.RemoveAll(dir)
	os.MkdirAll(dir, 0755)

	path := filepath.Join(dir, "bad.ckpt")
	if err := os.WriteFile(path, []byte("not a checkpoint file"), 0644); err != nil {
		t.Fatalf("failed to write bad file: %v", err)
	}

	ck, err := NewCheckpointer(nil)
	if err != nil {
		t.Fatalf("Failed to create checkpointer: %v", err)
	}
	defer ck.Close()

	diskMgr, err := NewDiskManager(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create disk manager: %v", err)
	}
	defer diskMgr.Close()

	if _, err := ck.Restore(path, diskMgr); err == nil {
		t.Error("expected error restoring a file with bad magic")
	}
}
