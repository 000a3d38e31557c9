package main

import (
	"github.com/alderlake-db/alderdb/pkg/catalog"
	"github.com/alderlake-db/alderdb/pkg/tableheap"
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

// memTableHeap is a minimal in-memory tableheap.TableHeap: enough to
// drive the executor demo below without standing up catalog
// persistence, which is out of this substrate's scope. A real embedder
// supplies its own TableHeap backed by the trie store or a slotted
// page layout; this one just keeps slices in RAM.
type memTableHeap struct {
	rows []memRow
}

type memRow struct {
	meta  txn.TupleMeta
	tuple *tuple.Tuple
}

func newMemTableHeap() *memTableHeap {
	return &memTableHeap{}
}

func (h *memTableHeap) MakeIterator() tableheap.Iterator {
	return &memIterator{heap: h, pos: -1}
}

func (h *memTableHeap) GetTuple(rid tuple.RID) (txn.TupleMeta, *tuple.Tuple, error) {
	row := h.rows[rid.SlotID]
	return row.meta, row.tuple, nil
}

func (h *memTableHeap) InsertTuple(meta txn.TupleMeta, t *tuple.Tuple) (*tuple.RID, error) {
	rid := tuple.RID{PageID: 0, SlotID: uint32(len(h.rows))}
	h.rows = append(h.rows, memRow{meta: meta, tuple: t})
	return &rid, nil
}

func (h *memTableHeap) UpdateTupleMeta(meta txn.TupleMeta, rid tuple.RID) error {
	h.rows[rid.SlotID].meta = meta
	return nil
}

type memIterator struct {
	heap *memTableHeap
	pos  int
}

func (it *memIterator) Next() bool {
	it.pos++
	return it.pos < len(it.heap.rows)
}

func (it *memIterator) Current() tuple.RID {
	return tuple.RID{PageID: 0, SlotID: uint32(it.pos)}
}

// memCatalog is the demo's in-memory catalog.Catalog, tracking exactly
// the one table and one index the demo wires up.
type memCatalog struct {
	tables  map[string]*catalog.TableInfo
	indexes map[string][]*catalog.IndexInfo
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		tables:  make(map[string]*catalog.TableInfo),
		indexes: make(map[string][]*catalog.IndexInfo),
	}
}

func (c *memCatalog) TableByOID(oid catalog.TableOID) (*catalog.TableInfo, bool) {
	for _, t := range c.tables {
		if t.OID == oid {
			return t, true
		}
	}
	return nil, false
}

func (c *memCatalog) TableByName(name string) (*catalog.TableInfo, bool) {
	t, ok := c.tables[name]
	return t, ok
}

func (c *memCatalog) IndexesForTable(tableName string) []*catalog.IndexInfo {
	return c.indexes[tableName]
}
