// Package hashindex implements a disk-resident extendible hash index:
// a header page addressing up to 2^HeaderMaxDepth directory pages,
// each directory page addressing up to 2^DirectoryMaxDepth buckets.
// Buckets split on overflow and merge on emptiness, growing or
// shrinking their owning directory's global depth as needed.
package hashindex

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/alderlake-db/alderdb/pkg/storage"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// HashIndex is a single-key-column extendible hash index backed by a
// BufferPool. All durability and caching is delegated to the pool; the
// index itself only ever touches pages through guards.
type HashIndex struct {
	pool         *storage.BufferPool
	headerPageID storage.PageID
}

// NewHashIndex allocates a fresh header page and returns an index
// backed by it.
func NewHashIndex(pool *storage.BufferPool) (*HashIndex, error) {
	guard, err := pool.NewPageGuarded()
	if err != nil {
		return nil, fmt.Errorf("hashindex: allocate header page: %w", err)
	}
	hp := newHeaderPage()
	hp.serialize(guard.Page().Data)
	guard.MarkDirty()
	headerID := guard.Page().ID
	guard.Drop()

	return &HashIndex{pool: pool, headerPageID: headerID}, nil
}

// OpenHashIndex reattaches to an existing index given its header page
// ID, e.g. after restoring a checkpoint.
func OpenHashIndex(pool *storage.BufferPool, headerPageID storage.PageID) *HashIndex {
	return &HashIndex{pool: pool, headerPageID: headerPageID}
}

// HeaderPageID exposes the root page ID so it can be persisted in a
// catalog entry.
func (h *HashIndex) HeaderPageID() storage.PageID { return h.headerPageID }

func hashKey(key int64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))
	return uint32(xxhash.Sum64(buf[:]))
}

// Get looks up key, returning its RID if present.
func (h *HashIndex) Get(key int64) (tuple.RID, bool, error) {
	hash := hashKey(key)

	headerGuard, err := h.pool.FetchPageGuarded(h.headerPageID)
	if err != nil {
		return tuple.RID{}, false, fmt.Errorf("hashindex: fetch header page: %w", err)
	}
	defer headerGuard.Drop()

	hp := &headerPage{}
	hp.deserialize(headerGuard.Page().Data)

	dirID := hp.directoryPageID(hashToDirectoryIndex(hash))
	if dirID == invalidPageID {
		return tuple.RID{}, false, nil
	}

	dirGuard, err := h.pool.FetchPageGuarded(dirID)
	if err != nil {
		return tuple.RID{}, false, fmt.Errorf("hashindex: fetch directory page: %w", err)
	}
	defer dirGuard.Drop()

	dir := &directoryPage{}
	dir.deserialize(dirGuard.Page().Data)

	bucketID := dir.buckets[dir.index(hash)]
	if bucketID == invalidPageID {
		return tuple.RID{}, false, nil
	}

	bucketGuard, err := h.pool.FetchPageGuarded(bucketID)
	if err != nil {
		return tuple.RID{}, false, fmt.Errorf("hashindex: fetch bucket page: %w", err)
	}
	defer bucketGuard.Drop()

	bucket := newBucketPage(len(bucketGuard.Page().Data))
	bucket.deserialize(bucketGuard.Page().Data)

	rid, ok := bucket.find(key)
	return rid, ok, nil
}

// Insert adds key -> rid, splitting buckets and growing the directory
// as needed. Returns ErrDuplicate if key already has an entry, or
// ErrDirectoryFull if a split would need to exceed DirectoryMaxDepth.
func (h *HashIndex) Insert(key int64, rid tuple.RID) error {
	hash := hashKey(key)

	headerGuard, err := h.pool.FetchPageGuarded(h.headerPageID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch header page: %w", err)
	}
	hp := &headerPage{}
	hp.deserialize(headerGuard.Page().Data)

	headerIdx := hashToDirectoryIndex(hash)
	dirID := hp.directoryPageID(headerIdx)
	if dirID == invalidPageID {
		dirGuard, err := h.pool.NewPageGuarded()
		if err != nil {
			headerGuard.Drop()
			return fmt.Errorf("hashindex: allocate directory page: %w", err)
		}
		dir := newDirectoryPage()
		dir.serialize(dirGuard.Page().Data)
		dirGuard.MarkDirty()
		dirID = dirGuard.Page().ID
		dirGuard.Drop()

		hp.setDirectoryPageID(headerIdx, dirID)
		hp.serialize(headerGuard.Page().Data)
		headerGuard.MarkDirty()
	}
	headerGuard.Drop()

	return h.insertIntoDirectory(dirID, hash, key, rid)
}

func (h *HashIndex) insertIntoDirectory(dirID storage.PageID, hash uint32, key int64, rid tuple.RID) error {
	dirGuard, err := h.pool.FetchPageGuarded(dirID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch directory page: %w", err)
	}
	dir := &directoryPage{}
	dir.deserialize(dirGuard.Page().Data)

	dirIdx := dir.index(hash)
	bucketID := dir.buckets[dirIdx]

	if bucketID == invalidPageID {
		bucketGuard, err := h.pool.NewPageGuarded()
		if err != nil {
			dirGuard.Drop()
			return fmt.Errorf("hashindex: allocate bucket page: %w", err)
		}
		bucket := newBucketPage(len(bucketGuard.Page().Data))
		bucket.serialize(bucketGuard.Page().Data)
		bucketGuard.MarkDirty()
		bucketID = bucketGuard.Page().ID
		bucketGuard.Drop()

		dir.buckets[dirIdx] = bucketID
		dir.localDepths[dirIdx] = 0
		dir.serialize(dirGuard.Page().Data)
		dirGuard.MarkDirty()
	}
	localDepth := uint32(dir.localDepths[dirIdx])
	dirGuard.Drop()

	return h.insertIntoBucket(dirID, bucketID, localDepth, hash, key, rid)
}

func (h *HashIndex) insertIntoBucket(dirID, bucketID storage.PageID, localDepth uint32, hash uint32, key int64, rid tuple.RID) error {
	bucketGuard, err := h.pool.FetchPageGuarded(bucketID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch bucket page: %w", err)
	}
	bucket := newBucketPage(len(bucketGuard.Page().Data))
	bucket.deserialize(bucketGuard.Page().Data)

	if _, ok := bucket.find(key); ok {
		bucketGuard.Drop()
		return ErrDuplicate
	}

	if !bucket.isFull() {
		bucket.insert(key, rid)
		bucket.serialize(bucketGuard.Page().Data)
		bucketGuard.MarkDirty()
		bucketGuard.Drop()
		return nil
	}
	bucketGuard.Drop()

	if err := h.splitBucket(dirID, bucketID, localDepth); err != nil {
		return err
	}
	// retry: the directory now routes hash to one of the two post-split
	// buckets.
	return h.insertIntoDirectory(dirID, hash, key, rid)
}

// splitBucket grows the directory if the overflowing bucket's local
// depth has reached the global depth, allocates an image bucket, and
// redistributes entries between the two by the newly significant hash
// bit.
func (h *HashIndex) splitBucket(dirID, bucketID storage.PageID, localDepth uint32) error {
	dirGuard, err := h.pool.FetchPageGuarded(dirID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch directory page: %w", err)
	}
	dir := &directoryPage{}
	dir.deserialize(dirGuard.Page().Data)

	if localDepth == dir.globalDepth {
		if err := dir.grow(); err != nil {
			dirGuard.Drop()
			return err
		}
	}

	bucketGuard, err := h.pool.FetchPageGuarded(bucketID)
	if err != nil {
		dirGuard.Drop()
		return fmt.Errorf("hashindex: fetch bucket page: %w", err)
	}
	bucket := newBucketPage(len(bucketGuard.Page().Data))
	bucket.deserialize(bucketGuard.Page().Data)

	newLocalDepth := localDepth + 1
	bit := uint32(1) << (newLocalDepth - 1)

	keep, move := partition(bucket.entries, bit, hashKey)

	imageGuard, err := h.pool.NewPageGuarded()
	if err != nil {
		bucketGuard.Drop()
		dirGuard.Drop()
		return fmt.Errorf("hashindex: allocate image bucket: %w", err)
	}
	imageBucket := newBucketPage(len(imageGuard.Page().Data))
	imageBucket.entries = move
	imageBucket.serialize(imageGuard.Page().Data)
	imageGuard.MarkDirty()
	imageID := imageGuard.Page().ID
	imageGuard.Drop()

	bucket.entries = keep
	bucket.serialize(bucketGuard.Page().Data)
	bucketGuard.MarkDirty()
	bucketGuard.Drop()

	size := uint32(1) << dir.globalDepth
	for idx := uint32(0); idx < size; idx++ {
		if dir.buckets[idx] != bucketID {
			continue
		}
		dir.localDepths[idx] = uint8(newLocalDepth)
		if idx&bit != 0 {
			dir.buckets[idx] = imageID
		}
	}
	dir.serialize(dirGuard.Page().Data)
	dirGuard.MarkDirty()
	dirGuard.Drop()

	return nil
}

// Remove deletes key's entry, merging its bucket with its image bucket
// when doing so empties one side, and shrinking the directory when no
// bucket still needs the top bit.
func (h *HashIndex) Remove(key int64) error {
	hash := hashKey(key)

	headerGuard, err := h.pool.FetchPageGuarded(h.headerPageID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch header page: %w", err)
	}
	hp := &headerPage{}
	hp.deserialize(headerGuard.Page().Data)
	dirID := hp.directoryPageID(hashToDirectoryIndex(hash))
	headerGuard.Drop()

	if dirID == invalidPageID {
		return ErrNotFound
	}

	return h.removeFromDirectory(dirID, hash, key)
}

func (h *HashIndex) removeFromDirectory(dirID storage.PageID, hash uint32, key int64) error {
	dirGuard, err := h.pool.FetchPageGuarded(dirID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch directory page: %w", err)
	}
	dir := &directoryPage{}
	dir.deserialize(dirGuard.Page().Data)

	dirIdx := dir.index(hash)
	bucketID := dir.buckets[dirIdx]
	if bucketID == invalidPageID {
		dirGuard.Drop()
		return ErrNotFound
	}
	localDepth := uint32(dir.localDepths[dirIdx])
	dirGuard.Drop()

	bucketGuard, err := h.pool.FetchPageGuarded(bucketID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch bucket page: %w", err)
	}
	bucket := newBucketPage(len(bucketGuard.Page().Data))
	bucket.deserialize(bucketGuard.Page().Data)

	if !bucket.remove(key) {
		bucketGuard.Drop()
		return ErrNotFound
	}
	bucket.serialize(bucketGuard.Page().Data)
	bucketGuard.MarkDirty()
	empty := bucket.isEmpty()
	bucketGuard.Drop()

	if empty && localDepth > 0 {
		if err := h.tryMerge(dirID, bucketID, dirIdx, localDepth); err != nil {
			return err
		}
	}

	return nil
}

// tryMerge merges an emptied bucket into its image bucket when the
// image has the same local depth, then checks whether the surviving
// bucket is itself now empty and can cascade into a merge one level
// further up — repeating while local depth stays above zero — before
// shrinking the directory while no bucket needs the top addressing bit.
func (h *HashIndex) tryMerge(dirID, bucketID storage.PageID, dirIdx uint32, localDepth uint32) error {
	dirGuard, err := h.pool.FetchPageGuarded(dirID)
	if err != nil {
		return fmt.Errorf("hashindex: fetch directory page: %w", err)
	}
	dir := &directoryPage{}
	dir.deserialize(dirGuard.Page().Data)

	var toDelete []storage.PageID

	for localDepth > 0 {
		imageIdx := dir.splitImageIndex(dirIdx, localDepth)
		imageID := dir.buckets[imageIdx]
		imageLocalDepth := uint32(dir.localDepths[imageIdx])

		if imageID == invalidPageID || imageID == bucketID || imageLocalDepth != localDepth {
			break
		}

		newLocalDepth := localDepth - 1
		size := uint32(1) << dir.globalDepth
		for idx := uint32(0); idx < size; idx++ {
			if dir.buckets[idx] == bucketID {
				dir.buckets[idx] = imageID
				dir.localDepths[idx] = uint8(newLocalDepth)
			} else if dir.buckets[idx] == imageID {
				dir.localDepths[idx] = uint8(newLocalDepth)
			}
		}
		toDelete = append(toDelete, bucketID)

		empty, err := h.bucketIsEmpty(imageID)
		if err != nil {
			dirGuard.Drop()
			return err
		}
		if !empty {
			break
		}

		bucketID = imageID
		dirIdx = imageIdx
		localDepth = newLocalDepth
	}

	for dir.canShrink() {
		dir.shrink()
	}

	dir.serialize(dirGuard.Page().Data)
	dirGuard.MarkDirty()
	dirGuard.Drop()

	for _, id := range toDelete {
		if err := h.pool.DeletePage(id); err != nil {
			return err
		}
	}
	return nil
}

// bucketIsEmpty fetches bucketID and reports whether it holds no
// entries, used to decide whether a merge can cascade further.
func (h *HashIndex) bucketIsEmpty(bucketID storage.PageID) (bool, error) {
	guard, err := h.pool.FetchPageGuarded(bucketID)
	if err != nil {
		return false, fmt.Errorf("hashindex: fetch bucket page: %w", err)
	}
	defer guard.Drop()

	bucket := newBucketPage(len(guard.Page().Data))
	bucket.deserialize(guard.Page().Data)
	return bucket.isEmpty(), nil
}
