package exec

import (
	"fmt"

	"github.com/alderlake-db/alderdb/pkg/catalog"
	"github.com/alderlake-db/alderdb/pkg/tableheap"
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

// rowCountSchema is the single-column output schema Insert/Delete/Update
// all share: the number of rows the DML statement affected.
var rowCountSchema = tuple.NewSchema([]tuple.Column{{Name: "row_count", Type: tuple.TypeInt64}})

// indexKey extracts the int64 key an entry's index needs, per its
// KeyAttrs column position. Only single-column keys are supported,
// matching pkg/hashindex's concrete int64-keyed layout.
func indexKey(t *tuple.Tuple, idx *catalog.IndexInfo) (int64, error) {
	if len(idx.KeyAttrs) != 1 {
		return 0, fmt.Errorf("exec: index %q has unsupported key arity %d", idx.Name, len(idx.KeyAttrs))
	}
	v, err := t.GetValueAt(idx.KeyAttrs[0])
	if err != nil {
		return 0, err
	}
	return v.AsInt64()
}

// InsertExecutor reads every tuple its child produces into a table
// heap and its secondary indexes, then emits a single row holding the
// count inserted. Re-Next after that returns false, matching the
// spec's idempotent-on-exhaustion contract.
type InsertExecutor struct {
	child   Executor
	heap    tableheap.TableHeap
	indexes []*catalog.IndexInfo
	txnID   txn.TxnID

	done bool
}

func NewInsertExecutor(child Executor, heap tableheap.TableHeap, indexes []*catalog.IndexInfo, txnID txn.TxnID) *InsertExecutor {
	return &InsertExecutor{child: child, heap: heap, indexes: indexes, txnID: txnID}
}

func (e *InsertExecutor) Schema() *tuple.Schema { return rowCountSchema }

func (e *InsertExecutor) Init() error {
	e.done = false
	return e.child.Init()
}

func (e *InsertExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if e.done {
		return nil, tuple.RID{}, false, nil
	}
	e.done = true

	var count int64
	for {
		t, _, ok, err := e.child.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			break
		}

		meta := txn.TupleMeta{TxnID: e.txnID}
		rid, err := e.heap.InsertTuple(meta, t)
		if err != nil {
			return nil, tuple.RID{}, false, err
		}

		for _, idx := range e.indexes {
			key, err := indexKey(t, idx)
			if err != nil {
				return nil, tuple.RID{}, false, err
			}
			if err := idx.Index.Insert(key, *rid); err != nil {
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
