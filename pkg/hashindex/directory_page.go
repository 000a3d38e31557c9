package hashindex

import (
	"encoding/binary"

	"github.com/alderlake-db/alderdb/pkg/storage"
)

// DirectoryMaxDepth is the maximum global depth a directory page can
// reach (max_depth_d in the spec): directory growth beyond this is
// rejected with ErrDirectoryFull rather than silently growing
// unbounded.
const DirectoryMaxDepth = 9

const directorySlots = 1 << DirectoryMaxDepth

// directoryPage maps the low globalDepth bits of a key's hash to a
// bucket page, tracking each bucket's local depth so splits and merges
// know when a directory resize is required.
//
// Layout within Page.Data:
//
//	[4-byte global_depth][4-byte max_depth_d]
//	[local_depths: directorySlots * 1 byte]
//	[bucket_page_ids: directorySlots * 4 bytes]
type directoryPage struct {
	maxDepth    uint32
	globalDepth uint32
	localDepths [directorySlots]uint8
	buckets     [directorySlots]storage.PageID
}

func newDirectoryPage() *directoryPage {
	d := &directoryPage{maxDepth: DirectoryMaxDepth}
	for i := range d.buckets {
		d.buckets[i] = invalidPageID
	}
	return d
}

func (d *directoryPage) serialize(data []byte) {
	binary.LittleEndian.PutUint32(data[0:4], d.globalDepth)
	binary.LittleEndian.PutUint32(data[4:8], d.maxDepth)
	offset := 8
	for _, ld := range d.localDepths {
		data[offset] = ld
		offset++
	}
	for _, id := range d.buckets {
		binary.LittleEndian.PutUint32(data[offset:offset+4], uint32(id))
		offset += 4
	}
}

func (d *directoryPage) deserialize(data []byte) {
	d.globalDepth = binary.LittleEndian.Uint32(data[0:4])
	d.maxDepth = binary.LittleEndian.Uint32(data[4:8])
	offset := 8
	for i := range d.localDepths {
		d.localDepths[i] = data[offset]
		offset++
	}
	for i := range d.buckets {
		d.buckets[i] = storage.PageID(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
	}
}

// index extracts the low globalDepth bits of hash.
func (d *directoryPage) index(hash uint32) uint32 {
	if d.globalDepth == 0 {
		return 0
	}
	return hash & ((1 << d.globalDepth) - 1)
}

// splitImageIndex returns the directory slot that shares every bit of
// idx except the newly-significant one at position localDepth-1: the
// "image bucket" that a split exchanges entries with.
func (d *directoryPage) splitImageIndex(idx uint32, localDepth uint32) uint32 {
	return idx ^ (1 << (localDepth - 1))
}

// grow doubles the directory, duplicating every existing slot's
// bucket pointer and local depth into its new high-bit twin. Returns
// ErrDirectoryFull if that would exceed maxDepth.
func (d *directoryPage) grow() error {
	if d.globalDepth >= d.maxDepth {
		return ErrDirectoryFull
	}
	oldSize := uint32(1) << d.globalDepth
	for i := uint32(0); i < oldSize; i++ {
		d.buckets[i+oldSize] = d.buckets[i]
		d.localDepths[i+oldSize] = d.localDepths[i]
	}
	d.globalDepth++
	return nil
}

// canShrink reports whether every bucket's local depth is strictly
// less than the global depth, meaning no slot actually needs the extra
// addressing bit and the directory can be halved.
func (d *directoryPage) canShrink() bool {
	if d.globalDepth == 0 {
		return false
	}
	size := uint32(1) << d.globalDepth
	for i := uint32(0); i < size; i++ {
		if d.localDepths[i] == uint8(d.globalDepth) {
			return false
		}
	}
	return true
}

func (d *directoryPage) shrink() {
	d.globalDepth--
}

// compile-time bit-exact size check.
const _ = uint(storage.PageSize - storage.PageHeaderSize - (8 + directorySlots + directorySlots*4))
