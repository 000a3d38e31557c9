package exec

import (
	"github.com/alderlake-db/alderdb/pkg/catalog"
	"github.com/alderlake-db/alderdb/pkg/tableheap"
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

// DeleteExecutor marks every tuple its child produces as deleted via a
// tuple-meta update, removes the corresponding index entries, and
// emits a single row holding the count deleted.
type DeleteExecutor struct {
	child   Executor
	heap    tableheap.TableHeap
	indexes []*catalog.IndexInfo
	txnID   txn.TxnID

	done bool
}

func NewDeleteExecutor(child Executor, heap tableheap.TableHeap, indexes []*catalog.IndexInfo, txnID txn.TxnID) *DeleteExecutor {
	return &DeleteExecutor{child: child, heap: heap, indexes: indexes, txnID: txnID}
}

func (e *DeleteExecutor) Schema() *tuple.Schema { return rowCountSchema }

func (e *DeleteExecutor) Init() error {
	e.done = false
	return e.child.Init()
}

func (e *DeleteExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if e.done {
		return nil, tuple.RID{}, false, nil
	}
	e.done = true

	var count int64
	for {
		t, rid, ok, err := e.child.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			break
		}

		meta := txn.TupleMeta{TxnID: e.txnID, IsDeleted: true}
		if err := e.heap.UpdateTupleMeta(meta, rid); err != nil {
			return nil, tuple.RID{}, false, err
		}

		for _, idx := range e.indexes {
			key, err := indexKey(t, idx)
			if err != nil {
				return nil, tuple.RID{}, false, err
			}
			if err := idx.Index.Remove(key); err != nil {
				return nil, tuple.RID{}, false, err
			}
		}

		count++
	}

	out, err := tuple.NewTuple(rowCountSchema, []*tuple.Value{tuple.NewValue(count)})
	if err != nil {
		return nil, tuple.RID{}, false, err
	}
	return out, tuple.RID{}, true, nil
}
