package storage

import (
	"container/list"
	"errors"
	"sync"

	"github.com/alderlake-db/alderdb/pkg/concurrent"
)

// FrameID identifies a buffer pool frame, distinct from the PageID of
// whatever page currently occupies it.
type FrameID int

// ErrInvalidFrame is returned for a frame ID outside the replacer's
// configured range.
var ErrInvalidFrame = errors.New("storage: invalid frame id")

// ErrNotEvictable is returned when Remove or Evict is asked to touch a
// frame that is currently pinned (non-evictable).
var ErrNotEvictable = errors.New("storage: frame is not evictable")

// ErrNoEvictableFrames is returned by Evict when every tracked frame is
// currently non-evictable.
var ErrNoEvictableFrames = errors.New("storage: no evictable frames")

type lruKNode struct {
	frameID    FrameID
	accessList *list.List // timestamps, oldest at Front
	evictable  bool
}

// LRUKReplacer selects a victim frame using the LRU-K policy: the frame
// whose K-th most recent access is furthest in the past is evicted.
// Frames with fewer than K accesses are treated as having infinite
// backward k-distance and are evicted first, in FIFO order of their
// earliest access (the "history list"). Frames with K or more accesses
// sit in the "cache list", ordered by K-th-most-recent access.
type LRUKReplacer struct {
	mu        sync.Mutex
	k         int
	numFrames int
	clock     uint64
	nodes     map[FrameID]*lruKNode
	history   *list.List // frames with < k accesses, FIFO by earliest access
	cache     *list.List // frames with >= k accesses, ordered oldest-kth-distance first
	historyEl map[FrameID]*list.Element
	cacheEl   map[FrameID]*list.Element
	size      *concurrent.Counter
}

// NewLRUKReplacer builds a replacer tracking up to numFrames frames with
// backward-k-distance parameter k.
func NewLRUKReplacer(numFrames int, k int) *LRUKReplacer {
	return &LRUKReplacer{
		k:         k,
		numFrames: numFrames,
		nodes:     make(map[FrameID]*lruKNode, numFrames),
		history:   list.New(),
		cache:     list.New(),
		historyEl: make(map[FrameID]*list.Element),
		cacheEl:   make(map[FrameID]*list.Element),
		size:      concurrent.NewCounter(),
	}
}

// RecordAccess registers that frameID was accessed at the current
// logical timestamp, creating tracking state for it if this is its
// first access. Returns ErrInvalidFrame if frameID falls outside the
// replacer's configured capacity.
func (r *LRUKReplacer) RecordAccess(frameID FrameID) error {
	if frameID < 0 || int(frameID) >= r.numFrames {
		return ErrInvalidFrame
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clock++

	node, ok := r.nodes[frameID]
	if !ok {
		node = &lruKNode{frameID: frameID, accessList: list.New()}
		r.nodes[frameID] = node
	} else {
		// already tracked: remove from whichever list it currently sits in
		// before re-inserting at its new position.
		if el, inHistory := r.historyEl[frameID]; inHistory {
			r.history.Remove(el)
			delete(r.historyEl, frameID)
		} else if el, inCache := r.cacheEl[frameID]; inCache {
			r.cache.Remove(el)
			delete(r.cacheEl, frameID)
		}
	}

	node.accessList.PushBack(r.clock)
	for node.accessList.Len() > r.k {
		node.accessList.Remove(node.accessList.Front())
	}

	if !node.evictable {
		return nil
	}
	r.reinsert(node)
	return nil
}

// reinsert places an evictable node's frame into the history or cache
// list per its current access count. Caller must hold r.mu.
func (r *LRUKReplacer) reinsert(node *lruKNode) {
	if node.accessList.Len() < r.k {
		r.historyEl[node.frameID] = r.history.PushBack(node.frameID)
		return
	}

	kDistance := node.accessList.Front().Value.(uint64)
	for el := r.cache.Front(); el != nil; el = el.Next() {
		other := r.nodes[el.Value.(FrameID)]
		if other.accessList.Front().Value.(uint64) > kDistance {
			r.cacheEl[node.frameID] = r.cache.InsertBefore(node.frameID, el)
			return
		}
	}
	r.cacheEl[node.frameID] = r.cache.PushBack(node.frameID)
}

// SetEvictable marks a frame evictable or pinned. Pinning a frame that
// is currently eligible for eviction removes it from consideration
// without discarding its access history.
func (r *LRUKReplacer) SetEvictable(frameID FrameID, evictable bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameID]
	if !ok {
		return ErrInvalidFrame
	}

	if node.evictable == evictable {
		return nil
	}

	if evictable {
		node.evictable = true
		r.reinsert(node)
		r.size.Inc()
		return nil
	}

	node.evictable = false
	if el, inHistory := r.historyEl[frameID]; inHistory {
		r.history.Remove(el)
		delete(r.historyEl, frameID)
	} else if el, inCache := r.cacheEl[frameID]; inCache {
		r.cache.Remove(el)
		delete(r.cacheEl, frameID)
	}
	r.size.Dec()
	return nil
}

// Evict selects a victim per the LRU-K policy, removes its tracking
// state, and returns its frame ID.
func (r *LRUKReplacer) Evict() (FrameID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var victim FrameID
	var found bool

	if r.history.Len() > 0 {
		victim = r.history.Front().Value.(FrameID)
		found = true
	} else if r.cache.Len() > 0 {
		victim = r.cache.Front().Value.(FrameID)
		found = true
	}

	if !found {
		return 0, ErrNoEvictableFrames
	}

	r.removeLocked(victim)
	r.size.Dec()
	return victim, nil
}

// Remove discards all tracking state for a frame. The frame must
// currently be evictable (callers first Unpin/SetEvictable it).
func (r *LRUKReplacer) Remove(frameID FrameID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	node, ok := r.nodes[frameID]
	if !ok {
		return nil
	}
	if !node.evictable {
		return ErrNotEvictable
	}

	r.removeLocked(frameID)
	r.size.Dec()
	return nil
}

func (r *LRUKReplacer) removeLocked(frameID FrameID) {
	if el, inHistory := r.historyEl[frameID]; inHistory {
		r.history.Remove(el)
		delete(r.historyEl, frameID)
	} else if el, inCache := r.cacheEl[frameID]; inCache {
		r.cache.Remove(el)
		delete(r.cacheEl, frameID)
	}
	delete(r.nodes, frameID)
}

// Size returns the number of frames currently eligible for eviction.
func (r *LRUKReplacer) Size() int {
	return int(r.size.Load())
}
