package exec

import (
	"github.com/alderlake-db/alderdb/pkg/catalog"
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tableheap"
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

// UpdateExecutor implements update as delete-then-insert: the original
// row is marked deleted, a new row is built from targetExprs, inserted
// under a fresh RID, and every index entry is rewritten (old key
// removed, new key added).
//
// A statement whose child scans the very table being updated (e.g.
// "UPDATE t SET x = x + 1") must not let its own inserts feed back
// into its own scan. SeqScanExecutor already snapshots RIDs at Init,
// but that snapshot is read lazily during Next, so UpdateExecutor
// additionally drains every child row into memory before issuing any
// write — the update's writes can never race its own read.
type UpdateExecutor struct {
	child       Executor
	heap        tableheap.TableHeap
	indexes     []*catalog.IndexInfo
	txnID       txn.TxnID
	targetExprs []expr.Expression
	newSchema   *tuple.Schema

	done bool
}

func NewUpdateExecutor(child Executor, heap tableheap.TableHeap, indexes []*catalog.IndexInfo, txnID txn.TxnID, targetExprs []expr.Expression, newSchema *tuple.Schema) *UpdateExecutor {
	return &UpdateExecutor{
		child:       child,
		heap:        heap,
		indexes:     indexes,
		txnID:       txnID,
		targetExprs: targetExprs,
		newSchema:   newSchema,
	}
}

func (e *UpdateExecutor) Schema() *tuple.Schema { return rowCountSchema }

func (e *UpdateExecutor) Init() error {
	e.done = false
	return e.child.Init()
}

type updateSource struct {
	tuple *tuple.Tuple
	rid   tuple.RID
}

func (e *UpdateExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if e.done {
		return nil, tuple.RID{}, false, nil
	}
	e.done = true

	var rows []updateSource
	for {
		t, rid, ok, err := e.child.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			break
		}
		rows = append(rows, updateSource{tuple: t, rid: rid})
	}

	var count int64
	for _, row := range rows {
		values := make([]*tuple.Value, len(e.targetExprs))
		for i, ex := range e.targetExprs {
			v, err := ex.Evaluate(row.tuple, row.tuple.Schema)
			if err != nil {
				return nil, tuple.RID{}, false, err
			}
			values[i] = v
		}
		newTuple, err := tuple.NewTuple(e.newSchema, values)
		if err != nil {
			return nil, tuple.RID{}, false, err
		}

		oldKeys := make([]int64, len(e.indexes))
		for i, idx := range e.indexes {
			key, err := indexKey(row.tuple, idx)
			if err != nil {
				return nil, tuple.RID{}, false, err
			}
			oldKeys[i] = key
		}

		deleteMeta := txn.TupleMeta{TxnID: e.txnID, IsDeleted: true}
		if err := e.heap.UpdateTupleMeta(deleteMeta, row.rid); err != nil {
			return nil, tuple.RID{}, false, err
		}

		insertMeta := txn.TupleMeta{TxnID: e.txnID}
		newRID, err := e.heap.InsertTuple(insertMeta, newTuple)
		if err != nil {
			return nil, tuple.RID{}, false, err
		}

		for i, idx := range e.indexes {
			if err := idx.Index.Remove(oldKeys[i]); err != nil {
				return nil, tuple.RID{}, false, err
			}
			newKey, err := indexKey(newTuple, idx)
			if err != nil {
				return nil, tuple.RID{}, false, err
			}
			if err := idx.Index.Insert(newKey, *newRID); err != nil {
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
