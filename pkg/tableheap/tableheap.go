// Package tableheap describes the table-storage contract executors
// depend on. No concrete heap is implemented here: real row storage,
// slotted pages, and reclamation are outside this substrate's scope;
// this package only fixes the shape executors code against.
package tableheap

import (
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

// Iterator walks a table's resident tuples in heap order.
type Iterator interface {
	// Next advances to the next tuple, reporting whether one exists.
	Next() bool
	// Current returns the RID the iterator is positioned at. Valid
	// only after a Next call that returned true.
	Current() tuple.RID
}

// TableHeap is the tuple storage a SeqScan/Insert/Update/Delete
// executor operates against.
type TableHeap interface {
	MakeIterator() Iterator

	// GetTuple fetches a tuple and its metadata by RID.
	GetTuple(rid tuple.RID) (txn.TupleMeta, *tuple.Tuple, error)

	// InsertTuple appends a tuple, returning its assigned RID.
	InsertTuple(meta txn.TupleMeta, t *tuple.Tuple) (*tuple.RID, error)

	// UpdateTupleMeta rewrites a tuple's metadata in place (e.g. to
	// flip IsDeleted) without moving the tuple's RID.
	UpdateTupleMeta(meta txn.TupleMeta, rid tuple.RID) error
}
