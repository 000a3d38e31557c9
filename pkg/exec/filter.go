package exec

import (
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// FilterExecutor is a standalone predicate-only operator for plan
// shapes where the predicate sits above a non-scan child (SeqScan
// pushes its own predicate down instead of using this).
type FilterExecutor struct {
	child     Executor
	predicate expr.Expression
}

func NewFilterExecutor(child Executor, predicate expr.Expression) *FilterExecutor {
	return &FilterExecutor{child: child, predicate: predicate}
}

func (f *FilterExecutor) Schema() *tuple.Schema { return f.child.Schema() }

func (f *FilterExecutor) Init() error { return f.child.Init() }

func (f *FilterExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for {
		t, rid, ok, err := f.child.Next()
		if err != nil || !ok {
			return nil, tuple.RID{}, false, err
		}

		v, err := f.predicate.Evaluate(t, f.child.Schema())
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
		if matches {
			return t, rid, true, nil
		}
	}
}
