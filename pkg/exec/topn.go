package exec

import (
	"container/heap"

	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// OrderKey is one ORDER BY term: an expression to sort by and its
// direction.
type OrderKey struct {
	Expr expr.Expression
	Desc bool
}

type rowWithRID struct {
	tuple *tuple.Tuple
	rid   tuple.RID
}

// compareRows orders a and b by orderBy, evaluated against schema,
// returning the first non-zero per-key comparison.
func compareRows(a, b *tuple.Tuple, schema *tuple.Schema, orderBy []OrderKey) (int, error) {
	for _, key := range orderBy {
		av, err := key.Expr.Evaluate(a, schema)
		if err != nil {
			return 0, err
		}
		bv, err := key.Expr.Evaluate(b, schema)
		if err != nil {
			return 0, err
		}
		cmp, err := av.Compare(bv)
		if err != nil {
			return 0, err
		}
		if key.Desc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp, nil
		}
	}
	return 0, nil
}

// topNHeap is a max-heap (by the final ascending order) of bounded
// size N: its root is always the current worst row, so pushing past
// capacity pops exactly that row.
type topNHeap struct {
	rows    []rowWithRID
	schema  *tuple.Schema
	orderBy []OrderKey
	err     error
}

func (h *topNHeap) Len() int { return len(h.rows) }

func (h *topNHeap) Less(i, j int) bool {
	cmp, err := compareRows(h.rows[i].tuple, h.rows[j].tuple, h.schema, h.orderBy)
	if err != nil {
		h.err = err
		return false
	}
	return cmp > 0
}

func (h *topNHeap) Swap(i, j int) { h.rows[i], h.rows[j] = h.rows[j], h.rows[i] }

func (h *topNHeap) Push(x interface{}) { h.rows = append(h.rows, x.(rowWithRID)) }

func (h *topNHeap) Pop() interface{} {
	old := h.rows
	n := len(old)
	item := old[n-1]
	h.rows = old[:n-1]
	return item
}

// TopNExecutor drains its child into a bounded max-heap of size N
// during Init, then emits the heap's contents in ascending order.
type TopNExecutor struct {
	child   Executor
	n       int
	orderBy []OrderKey

	results []rowWithRID
	pos     int
}

func NewTopNExecutor(child Executor, n int, orderBy []OrderKey) *TopNExecutor {
	return &TopNExecutor{child: child, n: n, orderBy: orderBy}
}

func (t *TopNExecutor) Schema() *tuple.Schema { return t.child.Schema() }

func (t *TopNExecutor) Init() error {
	if err := t.child.Init(); err != nil {
		return err
	}

	h := &topNHeap{schema: t.child.Schema(), orderBy: t.orderBy}
	for {
		row, rid, ok, err := t.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		heap.Push(h, rowWithRID{tuple: row, rid: rid})
		if h.err != nil {
			return h.err
		}
		if h.Len() > t.n {
			heap.Pop(h)
			if h.err != nil {
				return h.err
			}
		}
	}

	results := make([]rowWithRID, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(rowWithRID)
		if h.err != nil {
			return h.err
		}
	}

	t.results = results
	t.pos = 0
	return nil
}

func (t *TopNExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if t.pos >= len(t.results) {
		return nil, tuple.RID{}, false, nil
	}
	row := t.results[t.pos]
	t.pos++
	return row.tuple, row.rid, true, nil
}
