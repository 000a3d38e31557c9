package hashindex

import (
	"encoding/binary"

	"github.com/alderlake-db/alderdb/pkg/storage"
)

// HeaderMaxDepth bounds the number of directory page slots a header
// page can address: 2^HeaderMaxDepth entries. Chosen so the page
// layout fits comfortably inside one storage.Page, matching the
// bit-exact, offset-tracked (de)serialization technique the teacher
// uses for on-disk node layouts (pkg/index/btree_disk.go).
const HeaderMaxDepth = 9

// headerDirectorySlots is 2^HeaderMaxDepth.
const headerDirectorySlots = 1 << HeaderMaxDepth

// invalidPageID marks a directory/bucket slot that has never been
// allocated. storage.DiskManager's own page IDs start at 0, so 0 is
// not available as a sentinel.
const invalidPageID storage.PageID = 0xFFFFFFFF

// headerPage is the top level of the two-level directory: it maps the
// top HeaderMaxDepth bits of a key's hash to a directory page.
//
// Layout within Page.Data:
//
//	[directory_page_ids: headerDirectorySlots * 4 bytes][4-byte max_depth_h]
type headerPage struct {
	maxDepth  uint32
	directory [headerDirectorySlots]storage.PageID
}

func newHeaderPage() *headerPage {
	h := &headerPage{maxDepth: HeaderMaxDepth}
	for i := range h.directory {
		h.directory[i] = invalidPageID
	}
	return h
}

// hashToDirectoryIndex extracts the top HeaderMaxDepth bits of a
// 32-bit hash.
func hashToDirectoryIndex(hash uint32) uint32 {
	return hash >> (32 - HeaderMaxDepth)
}

func (h *headerPage) serialize(data []byte) {
	offset := 0
	for _, id := range h.directory {
		binary.LittleEndian.PutUint32(data[offset:offset+4], uint32(id))
		offset += 4
	}
	binary.LittleEndian.PutUint32(data[offset:offset+4], h.maxDepth)
}

func (h *headerPage) deserialize(data []byte) {
	offset := 0
	for i := range h.directory {
		h.directory[i] = storage.PageID(binary.LittleEndian.Uint32(data[offset : offset+4]))
		offset += 4
	}
	h.maxDepth = binary.LittleEndian.Uint32(data[offset : offset+4])
}

func (h *headerPage) directoryPageID(idx uint32) storage.PageID {
	return h.directory[idx]
}

func (h *headerPage) setDirectoryPageID(idx uint32, id storage.PageID) {
	h.directory[idx] = id
}

// compile-time bit-exact size check: HeaderMaxDepth must leave the
// serialized layout inside one page's usable data area.
const _ = uint(storage.PageSize - storage.PageHeaderSize - (4 + headerDirectorySlots*4))
