package exec

import "github.com/alderlake-db/alderdb/pkg/tuple"

// LimitExecutor passes the child's tuples through, stopping after N.
type LimitExecutor struct {
	child Executor
	n     int
	count int
}

func NewLimitExecutor(child Executor, n int) *LimitExecutor {
	return &LimitExecutor{child: child, n: n}
}

func (l *LimitExecutor) Schema() *tuple.Schema { return l.child.Schema() }

func (l *LimitExecutor) Init() error {
	l.count = 0
	return l.child.Init()
}

func (l *LimitExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if l.count >= l.n {
		return nil, tuple.RID{}, false, nil
	}
	t, rid, ok, err := l.child.Next()
	if err != nil || !ok {
		return nil, tuple.RID{}, false, err
	}
	l.count++
	return t, rid, true, nil
}
