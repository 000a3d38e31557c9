package exec

import (
	"fmt"
	"strings"

	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// AggregateType enumerates the supported aggregate functions.
type AggregateType int

const (
	AggCountStar AggregateType = iota
	AggCount
	AggSum
	AggMin
	AggMax
)

// AggregateSpec describes one aggregate column. Expr is nil for
// AggCountStar. ResultType picks the numeric representation (Int64 or
// Float64) the running total is kept and emitted in.
type AggregateSpec struct {
	Type       AggregateType
	Expr       expr.Expression
	ResultType tuple.Type
}

type aggGroup struct {
	keyValues []*tuple.Value
	states    []*tuple.Value
}

// AggregationExecutor drains its child into an in-memory hash table
// keyed by group-by tuple during Init, then emits one output row per
// group (or the single empty-input row, per the spec's special case).
type AggregationExecutor struct {
	child      Executor
	groupBy    []expr.Expression
	aggregates []AggregateSpec
	outSchema  *tuple.Schema

	groups map[string]*aggGroup
	order  []string
	pos    int
}

func NewAggregationExecutor(child Executor, groupBy []expr.Expression, aggregates []AggregateSpec, outSchema *tuple.Schema) *AggregationExecutor {
	return &AggregationExecutor{child: child, groupBy: groupBy, aggregates: aggregates, outSchema: outSchema}
}

func (a *AggregationExecutor) Schema() *tuple.Schema { return a.outSchema }

func initialState(spec AggregateSpec) *tuple.Value {
	if spec.Type == AggCountStar {
		return tuple.NewValue(int64(0))
	}
	return tuple.NullValue(spec.ResultType)
}

func groupKey(values []*tuple.Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%v", v.HashKey())
	}
	return strings.Join(parts, "\x00")
}

func combine(spec AggregateSpec, current, input *tuple.Value) (*tuple.Value, error) {
	switch spec.Type {
	case AggCountStar:
		n, _ := current.AsInt64()
		return tuple.NewValue(n + 1), nil

	case AggCount:
		if input.IsNull() {
			return current, nil
		}
		n, _ := current.AsInt64()
		if current.IsNull() {
			n = 0
		}
		return tuple.NewValue(n + 1), nil

	case AggSum:
		if input.IsNull() {
			return current, nil
		}
		return numericAdd(current, input, spec.ResultType)

	case AggMin:
		if input.IsNull() {
			return current, nil
		}
		if current.IsNull() {
			return input, nil
		}
		cmp, err := current.Compare(input)
		if err != nil {
			return nil, err
		}
		if cmp > 0 {
			return input, nil
		}
		return current, nil

	case AggMax:
		if input.IsNull() {
			return current, nil
		}
		if current.IsNull() {
			return input, nil
		}
		cmp, err := current.Compare(input)
		if err != nil {
			return nil, err
		}
		if cmp < 0 {
			return input, nil
		}
		return current, nil

	default:
		return nil, fmt.Errorf("exec: unknown aggregate type %d", spec.Type)
	}
}

func numericAdd(current, input *tuple.Value, resultType tuple.Type) (*tuple.Value, error) {
	if resultType == tuple.TypeFloat64 {
		a := 0.0
		if !current.IsNull() {
			v, err := current.AsFloat64()
			if err != nil {
				return nil, err
			}
			a = v
		}
		b, err := input.AsFloat64()
		if err != nil {
			return nil, err
		}
		return tuple.NewValue(a + b), nil
	}

	a := int64(0)
	if !current.IsNull() {
		v, err := current.AsInt64()
		if err != nil {
			return nil, err
		}
		a = v
	}
	b, err := input.AsInt64()
	if err != nil {
		return nil, err
	}
	return tuple.NewValue(a + b), nil
}

func (a *AggregationExecutor) Init() error {
	if err := a.child.Init(); err != nil {
		return err
	}

	a.groups = make(map[string]*aggGroup)
	a.order = nil
	sawAnyRow := false

	for {
		t, _, ok, err := a.child.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		sawAnyRow = true

		keyValues := make([]*tuple.Value, len(a.groupBy))
		for i, g := range a.groupBy {
			v, err := g.Evaluate(t, a.child.Schema())
			if err != nil {
				return err
			}
			keyValues[i] = v
		}
		key := groupKey(keyValues)

		grp, exists := a.groups[key]
		if !exists {
			states := make([]*tuple.Value, len(a.aggregates))
			for i, spec := range a.aggregates {
				states[i] = initialState(spec)
			}
			grp = &aggGroup{keyValues: keyValues, states: states}
			a.groups[key] = grp
			a.order = append(a.order, key)
		}

		for i, spec := range a.aggregates {
			var input *tuple.Value
			if spec.Type == AggCountStar {
				input = tuple.NewValue(true)
			} else {
				v, err := spec.Expr.Evaluate(t, a.child.Schema())
				if err != nil {
					return err
				}
				input = v
			}
			next, err := combine(spec, grp.states[i], input)
			if err != nil {
				return err
			}
			grp.states[i] = next
		}
	}

	if len(a.groupBy) == 0 && !sawAnyRow {
		states := make([]*tuple.Value, len(a.aggregates))
		for i, spec := range a.aggregates {
			states[i] = initialState(spec)
		}
		a.groups[""] = &aggGroup{states: states}
		a.order = append(a.order, "")
	}

	a.pos = 0
	return nil
}

func (a *AggregationExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if a.pos >= len(a.order) {
		return nil, tuple.RID{}, false, nil
	}
	grp := a.groups[a.order[a.pos]]
	a.pos++

	values := make([]*tuple.Value, 0, len(grp.keyValues)+len(grp.states))
	values = append(values, grp.keyValues...)
	values = append(values, grp.states...)

	out, err := tuple.NewTuple(a.outSchema, values)
	if err != nil {
		return nil, tuple.RID{}, false, err
	}
	return out, tuple.RID{}, true, nil
}
