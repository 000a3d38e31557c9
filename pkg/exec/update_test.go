package exec

import (
	"testing"

	"github.com/alderlake-db/alderdb/pkg/catalog"
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tuple"
	"github.com/alderlake-db/alderdb/pkg/txn"
)

func TestUpdateExecutorDeleteThenInsert(t *testing.T) {
	heap := newMemHeap()
	idx := newFakeIndex()
	indexes := []*catalog.IndexInfo{{Name: "pk", KeyAttrs: []int{0}, Index: idx}}

	rid, _ := heap.InsertTuple(txn.TupleMeta{}, personTuple(1, "a"))
	idx.Insert(1, *rid)

	source := newSliceExecutor(personSchema(), []*tuple.Tuple{personTuple(1, "a")})
	source.rids[0] = *rid

	targetExprs := []expr.Expression{
		&expr.Arithmetic{
			Op:    expr.OpAdd,
			Left:  &expr.ColumnRef{ColumnIndex: 0, Type: tuple.TypeInt64},
			Right: &expr.Constant{Value: tuple.NewValue(int64(1))},
		},
		&expr.ColumnRef{ColumnIndex: 1, Type: tuple.TypeString},
	}

	upd := NewUpdateExecutor(source, heap, indexes, txn.TxnID(1), targetExprs, personSchema())
	if err := upd.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	row, _, ok, err := upd.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	n, _ := row.GetValueAt(0)
	count, _ := n.AsInt64()
	if count != 1 {
		t.Errorf("expected row_count 1, got %d", count)
	}

	oldMeta, _, _ := heap.GetTuple(*rid)
	if !oldMeta.IsDeleted {
		t.Error("expected original tuple marked deleted")
	}

	if _, ok, _ := idx.Get(1); ok {
		t.Error("expected old index key 1 removed")
	}
	newRID, ok, _ := idx.Get(2)
	if !ok {
		t.Fatal("expected new index key 2 to exist")
	}

	_, newTuple, err := heap.GetTuple(newRID)
	if err != nil {
		t.Fatalf("GetTuple: %v", err)
	}
	idVal, _ := newTuple.GetValueAt(0)
	idInt, _ := idVal.AsInt64()
	if idInt != 2 {
		t.Errorf("expected updated id 2, got %d", idInt)
	}
}
