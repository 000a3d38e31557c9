package hashindex

import (
	"encoding/binary"

	"github.com/alderlake-db/alderdb/pkg/storage"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// bucketEntrySize is the on-disk width of one (key, rid) pair: an
// 8-byte int64 key followed by an 8-byte RID (4-byte PageID, 4-byte
// SlotID).
const bucketEntrySize = 16

// bucketEntry is the in-memory form of one slot.
type bucketEntry struct {
	key int64
	rid tuple.RID
}

// bucketPage holds the actual (key, RID) entries for one hash bucket.
// A bucket's local depth is tracked by its owning directoryPage slot,
// not persisted here; callers thread it through explicitly wherever
// split/merge decisions need it.
//
// Layout within Page.Data:
//
//	[4-byte size][4-byte max_size][entries: size * bucketEntrySize bytes]
type bucketPage struct {
	entries []bucketEntry
	maxSize int
}

func newBucketPage(dataLen int) *bucketPage {
	return &bucketPage{
		entries: nil,
		maxSize: (dataLen - 8) / bucketEntrySize,
	}
}

func (b *bucketPage) serialize(data []byte) {
	binary.LittleEndian.PutUint32(data[0:4], uint32(len(b.entries)))
	binary.LittleEndian.PutUint32(data[4:8], uint32(b.maxSize))
	offset := 8
	for _, e := range b.entries {
		binary.LittleEndian.PutUint64(data[offset:offset+8], uint64(e.key))
		binary.LittleEndian.PutUint32(data[offset+8:offset+12], e.rid.PageID)
		binary.LittleEndian.PutUint32(data[offset+12:offset+16], e.rid.SlotID)
		offset += bucketEntrySize
	}
}

func (b *bucketPage) deserialize(data []byte) {
	size := binary.LittleEndian.Uint32(data[0:4])
	b.maxSize = int(binary.LittleEndian.Uint32(data[4:8]))
	b.entries = make([]bucketEntry, 0, size)
	offset := 8
	for i := uint32(0); i < size; i++ {
		key := int64(binary.LittleEndian.Uint64(data[offset : offset+8]))
		pid := binary.LittleEndian.Uint32(data[offset+8 : offset+12])
		sid := binary.LittleEndian.Uint32(data[offset+12 : offset+16])
		b.entries = append(b.entries, bucketEntry{key: key, rid: tuple.RID{PageID: pid, SlotID: sid}})
		offset += bucketEntrySize
	}
}

func (b *bucketPage) find(key int64) (tuple.RID, bool) {
	for _, e := range b.entries {
		if e.key == key {
			return e.rid, true
		}
	}
	return tuple.RID{}, false
}

func (b *bucketPage) isFull() bool {
	return len(b.entries) >= b.maxSize
}

func (b *bucketPage) isEmpty() bool {
	return len(b.entries) == 0
}

// insert appends key/rid. Caller must check isFull and the absence of
// a duplicate key first.
func (b *bucketPage) insert(key int64, rid tuple.RID) {
	b.entries = append(b.entries, bucketEntry{key: key, rid: rid})
}

// remove deletes the entry for key, reporting whether one was found.
func (b *bucketPage) remove(key int64) bool {
	for i, e := range b.entries {
		if e.key == key {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			return true
		}
	}
	return false
}

// partition splits entries by whether the given hash bit (the newly
// significant bit after incrementing local depth) is set, used when a
// split redistributes a full bucket's entries between itself and its
// image bucket.
func partition(entries []bucketEntry, bit uint32, hashFn func(int64) uint32) (keep, move []bucketEntry) {
	for _, e := range entries {
		if hashFn(e.key)&bit != 0 {
			move = append(move, e)
		} else {
			keep = append(keep, e)
		}
	}
	return keep, move
}

// compile-time size check: fails to compile if the 8-byte bucket header
// (size, max_size) does not fit in a page's usable data length. The
// entry capacity (maxSize) is computed at runtime from that length.
const _ = uint(storage.PageSize - storage.PageHeaderSize - 8)
