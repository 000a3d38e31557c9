package storage

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/alderlake-db/alderdb/pkg/compression"
)

// checkpointMagic tags an archive file so Restore can refuse to load
// something else by mistake.
const checkpointMagic = "ADBCKPT1"

// Checkpointer archives a batch of resident dirty pages to a single
// compressed file, outside the buffer pool's normal page-at-a-time
// fetch/flush path. It exists for operator-triggered snapshots, not for
// the recovery path (this repository carries no log manager; restoring
// a checkpoint simply repopulates a DiskManager's pages).
type Checkpointer struct {
	compressor *compression.Compressor
}

// NewCheckpointer builds a checkpointer using cfg, or
// compression.DefaultConfig() (zstd) if cfg is nil.
func NewCheckpointer(cfg *compression.Config) (*Checkpointer, error) {
	compressor, err := compression.NewCompressor(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkpoint compressor: %w", err)
	}
	return &Checkpointer{compressor: compressor}, nil
}

// Archive compresses pages and writes them to path as:
//
//	[8-byte magic][4-byte page count]
//	  per page: [4-byte page ID][4-byte compressed size][compressed bytes]
func (c *Checkpointer) Archive(pages []*Page, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	copy(header[0:8], checkpointMagic)
	binary.LittleEndian.PutUint32(header[8:12], uint32(len(pages)))
	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("failed to write checkpoint header: %w", err)
	}

	for _, page := range pages {
		compressed, err := c.compressor.Compress(page.Serialize())
		if err != nil {
			return fmt.Errorf("failed to compress page %d: %w", page.ID, err)
		}

		entry := make([]byte, 8+len(compressed))
		binary.LittleEndian.PutUint32(entry[0:4], uint32(page.ID))
		binary.LittleEndian.PutUint32(entry[4:8], uint32(len(compressed)))
		copy(entry[8:], compressed)

		if _, err := f.Write(entry); err != nil {
			return fmt.Errorf("failed to write checkpoint entry for page %d: %w", page.ID, err)
		}
	}

	return nil
}

// Restore reads a checkpoint file and writes every archived page back
// through disk, by page ID, via the given DiskIO.
func (c *Checkpointer) Restore(path string, disk DiskIO) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read checkpoint file: %w", err)
	}
	if len(data) < 12 || string(data[0:8]) != checkpointMagic {
		return 0, fmt.Errorf("invalid checkpoint file: bad magic")
	}

	count := binary.LittleEndian.Uint32(data[8:12])
	offset := 12
	restored := 0

	for i := uint32(0); i < count; i++ {
		if offset+8 > len(data) {
			return restored, fmt.Errorf("truncated checkpoint entry %d", i)
		}
		pageID := PageID(binary.LittleEndian.Uint32(data[offset : offset+4]))
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		if offset+int(size) > len(data) {
			return restored, fmt.Errorf("truncated checkpoint payload for page %d", pageID)
		}
		compressed := data[offset : offset+int(size)]
		offset += int(size)

		raw, err := c.compressor.Decompress(compressed)
		if err != nil {
			return restored, fmt.Errorf("failed to decompress page %d: %w", pageID, err)
		}

		page := NewPage(pageID, PageTypeData)
		if err := page.Deserialize(raw); err != nil {
			return restored, fmt.Errorf("failed to deserialize page %d: %w", pageID, err)
		}

		if err := disk.WritePage(page); err != nil {
			return restored, fmt.Errorf("failed to restore page %d: %w", pageID, err)
		}
		restored++
	}

	return restored, nil
}

// Close releases the underlying compressor's resources.
func (c *Checkpointer) Close() error {
	return c.compressor.Close()
}
