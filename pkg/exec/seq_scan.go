package exec

import (
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tableheap"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// SeqScanExecutor walks every tuple in a table heap, skipping deleted
// rows and, if a predicate was pushed down, rows that fail it.
type SeqScanExecutor struct {
	heap      tableheap.TableHeap
	schema    *tuple.Schema
	predicate expr.Expression

	snapshot []tuple.RID
	pos      int
}

// NewSeqScanExecutor builds a scan over heap. predicate may be nil for
// an unfiltered scan.
func NewSeqScanExecutor(heap tableheap.TableHeap, schema *tuple.Schema, predicate expr.Expression) *SeqScanExecutor {
	return &SeqScanExecutor{heap: heap, schema: schema, predicate: predicate}
}

func (s *SeqScanExecutor) Schema() *tuple.Schema { return s.schema }

// Init snapshots the current set of RIDs so that the scan's view is
// stable even if the heap is mutated concurrently underneath it.
func (s *SeqScanExecutor) Init() error {
	s.snapshot = s.snapshot[:0]
	it := s.heap.MakeIterator()
	for it.Next() {
		s.snapshot = append(s.snapshot, it.Current())
	}
	s.pos = 0
	return nil
}

func (s *SeqScanExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for s.pos < len(s.snapshot) {
		rid := s.snapshot[s.pos]
		s.pos++

		meta, t, err := s.heap.GetTuple(rid)
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if meta.IsDeleted {
			continue
		}

		if s.predicate != nil {
			v, err := s.predicate.Evaluate(t, s.schema)
			if err != nil {
				return nil, tuple.RID{}, false, err
			}
			if v.IsNull() {
				continue
			}
			matches, err := v.AsBool()
			if err != nil {
				return nil, tuple.RID{}, false, err
			}
			if !matches {
				continue
			}
		}

		return t, rid, true, nil
	}
	return nil, tuple.RID{}, false, nil
}
