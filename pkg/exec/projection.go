package exec

import (
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// ProjectionExecutor evaluates each of exprs against the child's
// tuples, emitting the resulting row under outSchema.
type ProjectionExecutor struct {
	child     Executor
	exprs     []expr.Expression
	outSchema *tuple.Schema
}

func NewProjectionExecutor(child Executor, exprs []expr.Expression, outSchema *tuple.Schema) *ProjectionExecutor {
	return &ProjectionExecutor{child: child, exprs: exprs, outSchema: outSchema}
}

func (p *ProjectionExecutor) Schema() *tuple.Schema { return p.outSchema }

func (p *ProjectionExecutor) Init() error { return p.child.Init() }

func (p *ProjectionExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	t, _, ok, err := p.child.Next()
	if err != nil || !ok {
		return nil, tuple.RID{}, false, err
	}

	values := make([]*tuple.Value, len(p.exprs))
	for i, ex := range p.exprs {
		v, err := ex.Evaluate(t, p.child.Schema())
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		values[i] = v
	}

	out, err := tuple.NewTuple(p.outSchema, values)
	if err != nil {
		return nil, tuple.RID{}, false, err
	}
	return out, tuple.RID{}, true, nil
}
