package exec

import (
	"fmt"
	"sort"

	"github.com/alderlake-db/alderdb/pkg/tableheap"
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

// memHeap is an in-memory tableheap.TableHeap stand-in for executor
// tests; no real table storage is exercised here.
type memHeap struct {
	rows     map[tuple.RID]*memRow
	nextSlot uint32
}

type memRow struct {
	meta  txn.TupleMeta
	tuple *tuple.Tuple
}

func newMemHeap() *memHeap {
	return &memHeap{rows: make(map[tuple.RID]*memRow)}
}

type memIterator struct {
	rids []tuple.RID
	pos  int
}

func (it *memIterator) Next() bool {
	it.pos++
	return it.pos < len(it.rids)
}

func (it *memIterator) Current() tuple.RID { return it.rids[it.pos] }

func (h *memHeap) MakeIterator() tableheap.Iterator {
	rids := make([]tuple.RID, 0, len(h.rows))
	for rid := range h.rows {
		rids = append(rids, rid)
	}
	sort.Slice(rids, func(i, j int) bool { return rids[i].SlotID < rids[j].SlotID })
	return &memIterator{rids: rids, pos: -1}
}

func (h *memHeap) GetTuple(rid tuple.RID) (txn.TupleMeta, *tuple.Tuple, error) {
	row, ok := h.rows[rid]
	if !ok {
		return txn.TupleMeta{}, nil, fmt.Errorf("memheap: rid %v not found", rid)
	}
	return row.meta, row.tuple, nil
}

func (h *memHeap) InsertTuple(meta txn.TupleMeta, t *tuple.Tuple) (*tuple.RID, error) {
	rid := tuple.RID{PageID: 0, SlotID: h.nextSlot}
	h.nextSlot++
	h.rows[rid] = &memRow{meta: meta, tuple: t}
	return &rid, nil
}

func (h *memHeap) UpdateTupleMeta(meta txn.TupleMeta, rid tuple.RID) error {
	row, ok := h.rows[rid]
	if !ok {
		return fmt.Errorf("memheap: rid %v not found", rid)
	}
	row.meta = meta
	return nil
}

// fakeIndex is an in-memory catalog.Index stand-in.
type fakeIndex struct {
	entries map[int64]tuple.RID
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{entries: make(map[int64]tuple.RID)}
}

func (f *fakeIndex) Get(key int64) (tuple.RID, bool, error) {
	rid, ok := f.entries[key]
	return rid, ok, nil
}

func (f *fakeIndex) Insert(key int64, rid tuple.RID) error {
	if _, ok := f.entries[key]; ok {
		return fmt.Errorf("fakeindex: duplicate key %d", key)
	}
	f.entries[key] = rid
	return nil
}

func (f *fakeIndex) Remove(key int64) error {
	if _, ok := f.entries[key]; !ok {
		return fmt.Errorf("fakeindex: key %d not found", key)
	}
	delete(f.entries, key)
	return nil
}

// sliceExecutor replays a fixed slice of tuples, standing in for
// whatever upstream operator a test doesn't need to exercise.
type sliceExecutor struct {
	schema *tuple.Schema
	rows   []*tuple.Tuple
	rids   []tuple.RID
	pos    int
}

func newSliceExecutor(schema *tuple.Schema, rows []*tuple.Tuple) *sliceExecutor {
	return &sliceExecutor{schema: schema, rows: rows, rids: make([]tuple.RID, len(rows))}
}

func (s *sliceExecutor) Schema() *tuple.Schema { return s.schema }
func (s *sliceExecutor) Init() error           { s.pos = 0; return nil }

func (s *sliceExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if s.pos >= len(s.rows) {
		return nil, tuple.RID{}, false, nil
	}
	t := s.rows[s.pos]
	rid := s.rids[s.pos]
	s.pos++
	return t, rid, true, nil
}
