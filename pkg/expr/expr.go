// Package expr provides the expression-tree contract executors
// evaluate predicates and projections against, plus the small set of
// concrete variants (column reference, constant, comparison,
// arithmetic, logic) a teaching substrate needs to exercise it. A full
// SQL binder that parses expressions out of query text is out of
// scope; these variants are built programmatically by the optimizer
// or by tests standing in for one.
package expr

import (
	"fmt"

	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// Expression is the polymorphic evaluation contract every operator in
// pkg/exec programs against.
type Expression interface {
	// Evaluate computes this expression's value against a single
	// tuple (e.g. a SeqScan predicate or a Projection column).
	Evaluate(t *tuple.Tuple, schema *tuple.Schema) (*tuple.Value, error)

	// EvaluateJoin computes this expression's value against a pair of
	// tuples from a join's two sides (e.g. a HashJoin condition).
	EvaluateJoin(left *tuple.Tuple, leftSchema *tuple.Schema, right *tuple.Tuple, rightSchema *tuple.Schema) (*tuple.Value, error)

	// CloneWithChildren returns a copy of this expression with its
	// child expressions replaced, used by optimizer rules that
	// rewrite a plan node's children without re-deriving its operator.
	CloneWithChildren(children []Expression) Expression

	// ReturnType reports the type this expression evaluates to.
	ReturnType() tuple.Type

	// Children returns this expression's operands, in evaluation
	// order.
	Children() []Expression
}

// TupleSide selects which side of a join a ColumnRef indexes into.
type TupleSide int

const (
	SideLeft TupleSide = iota
	SideRight
)

// ColumnRef reads one column out of a tuple by position.
type ColumnRef struct {
	Side        TupleSide
	ColumnIndex int
	Type        tuple.Type
}

func (c *ColumnRef) Evaluate(t *tuple.Tuple, _ *tuple.Schema) (*tuple.Value, error) {
	return t.GetValueAt(c.ColumnIndex)
}

func (c *ColumnRef) EvaluateJoin(left *tuple.Tuple, _ *tuple.Schema, right *tuple.Tuple, _ *tuple.Schema) (*tuple.Value, error) {
	if c.Side == SideLeft {
		return left.GetValueAt(c.ColumnIndex)
	}
	return right.GetValueAt(c.ColumnIndex)
}

func (c *ColumnRef) CloneWithChildren(_ []Expression) Expression {
	clone := *c
	return &clone
}

func (c *ColumnRef) ReturnType() tuple.Type   { return c.Type }
func (c *ColumnRef) Children() []Expression   { return nil }

// Constant always evaluates to the same value.
type Constant struct {
	Value *tuple.Value
}

func (c *Constant) Evaluate(_ *tuple.Tuple, _ *tuple.Schema) (*tuple.Value, error) {
	return c.Value, nil
}

func (c *Constant) EvaluateJoin(_ *tuple.Tuple, _ *tuple.Schema, _ *tuple.Tuple, _ *tuple.Schema) (*tuple.Value, error) {
	return c.Value, nil
}

func (c *Constant) CloneWithChildren(_ []Expression) Expression {
	clone := *c
	return &clone
}

func (c *Constant) ReturnType() tuple.Type { return c.Value.Type }
func (c *Constant) Children() []Expression { return nil }

// ComparisonOp enumerates the comparison operators SeqScan predicates
// and join conditions use.
type ComparisonOp int

const (
	OpEqual ComparisonOp = iota
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
)

// Comparison evaluates Left `Op` Right, always returning a Boolean
// value (or a null Boolean if either side is null, per three-valued
// logic).
type Comparison struct {
	Op          ComparisonOp
	Left, Right Expression
}

func (c *Comparison) compare(l, r *tuple.Value) (*tuple.Value, error) {
	if l.IsNull() || r.IsNull() {
		return tuple.NullValue(tuple.TypeBoolean), nil
	}
	if c.Op == OpEqual {
		return tuple.NewValue(l.Equals(r)), nil
	}
	if c.Op == OpNotEqual {
		return tuple.NewValue(!l.Equals(r)), nil
	}
	cmp, err := l.Compare(r)
	if err != nil {
		return nil, err
	}
	switch c.Op {
	case OpLess:
		return tuple.NewValue(cmp < 0), nil
	case OpLessEqual:
		return tuple.NewValue(cmp <= 0), nil
	case OpGreater:
		return tuple.NewValue(cmp > 0), nil
	case OpGreaterEqual:
		return tuple.NewValue(cmp >= 0), nil
	default:
		return nil, fmt.Errorf("expr: unknown comparison operator %d", c.Op)
	}
}

func (c *Comparison) Evaluate(t *tuple.Tuple, schema *tuple.Schema) (*tuple.Value, error) {
	l, err := c.Left.Evaluate(t, schema)
	if err != nil {
		return nil, err
	}
	r, err := c.Right.Evaluate(t, schema)
	if err != nil {
		return nil, err
	}
	return c.compare(l, r)
}

func (c *Comparison) EvaluateJoin(left *tuple.Tuple, leftSchema *tuple.Schema, right *tuple.Tuple, rightSchema *tuple.Schema) (*tuple.Value, error) {
	l, err := c.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return nil, err
	}
	r, err := c.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return nil, err
	}
	return c.compare(l, r)
}

func (c *Comparison) CloneWithChildren(children []Expression) Expression {
	if len(children) != 2 {
		panic("expr: Comparison.CloneWithChildren requires exactly 2 children")
	}
	return &Comparison{Op: c.Op, Left: children[0], Right: children[1]}
}

func (c *Comparison) ReturnType() tuple.Type { return tuple.TypeBoolean }
func (c *Comparison) Children() []Expression { return []Expression{c.Left, c.Right} }

// ArithmeticOp enumerates the binary arithmetic operators.
type ArithmeticOp int

const (
	OpAdd ArithmeticOp = iota
	OpSubtract
	OpMultiply
	OpDivide
)

// Arithmetic evaluates Left `Op` Right over Int64 or Float64 operands,
// promoting to Float64 if either side is Float64.
type Arithmetic struct {
	Op          ArithmeticOp
	Left, Right Expression
}

func (a *Arithmetic) apply(l, r *tuple.Value) (*tuple.Value, error) {
	if l.IsNull() || r.IsNull() {
		return tuple.NullValue(a.ReturnType()), nil
	}
	if l.Type == tuple.TypeFloat64 || r.Type == tuple.TypeFloat64 {
		lf, err := l.AsFloat64()
		if err != nil {
			return nil, err
		}
		rf, err := r.AsFloat64()
		if err != nil {
			return nil, err
		}
		return tuple.NewValue(a.computeFloat(lf, rf)), nil
	}
	li, err := l.AsInt64()
	if err != nil {
		return nil, err
	}
	ri, err := r.AsInt64()
	if err != nil {
		return nil, err
	}
	return tuple.NewValue(a.computeInt(li, ri)), nil
}

func (a *Arithmetic) computeFloat(l, r float64) float64 {
	switch a.Op {
	case OpAdd:
		return l + r
	case OpSubtract:
		return l - r
	case OpMultiply:
		return l * r
	case OpDivide:
		return l / r
	}
	return 0
}

func (a *Arithmetic) computeInt(l, r int64) int64 {
	switch a.Op {
	case OpAdd:
		return l + r
	case OpSubtract:
		return l - r
	case OpMultiply:
		return l * r
	case OpDivide:
		return l / r
	}
	return 0
}

func (a *Arithmetic) Evaluate(t *tuple.Tuple, schema *tuple.Schema) (*tuple.Value, error) {
	l, err := a.Left.Evaluate(t, schema)
	if err != nil {
		return nil, err
	}
	r, err := a.Right.Evaluate(t, schema)
	if err != nil {
		return nil, err
	}
	return a.apply(l, r)
}

func (a *Arithmetic) EvaluateJoin(left *tuple.Tuple, leftSchema *tuple.Schema, right *tuple.Tuple, rightSchema *tuple.Schema) (*tuple.Value, error) {
	l, err := a.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return nil, err
	}
	r, err := a.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return nil, err
	}
	return a.apply(l, r)
}

func (a *Arithmetic) CloneWithChildren(children []Expression) Expression {
	if len(children) != 2 {
		panic("expr: Arithmetic.CloneWithChildren requires exactly 2 children")
	}
	return &Arithmetic{Op: a.Op, Left: children[0], Right: children[1]}
}

func (a *Arithmetic) ReturnType() tuple.Type {
	if a.Left.ReturnType() == tuple.TypeFloat64 || a.Right.ReturnType() == tuple.TypeFloat64 {
		return tuple.TypeFloat64
	}
	return tuple.TypeInt64
}
func (a *Arithmetic) Children() []Expression { return []Expression{a.Left, a.Right} }

// LogicOp enumerates the boolean connectives.
type LogicOp int

const (
	OpAnd LogicOp = iota
	OpOr
)

// Logic evaluates Left `Op` Right over Boolean operands with
// three-valued-logic short circuiting (AND with a false operand is
// false even if the other is null; OR with a true operand is true
// even if the other is null).
type Logic struct {
	Op          LogicOp
	Left, Right Expression
}

func asBoolPtr(v *tuple.Value) (*bool, error) {
	if v.IsNull() {
		return nil, nil
	}
	b, err := v.AsBool()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (l *Logic) combine(lv, rv *tuple.Value) (*tuple.Value, error) {
	lb, err := asBoolPtr(lv)
	if err != nil {
		return nil, err
	}
	rb, err := asBoolPtr(rv)
	if err != nil {
		return nil, err
	}

	switch l.Op {
	case OpAnd:
		if (lb != nil && !*lb) || (rb != nil && !*rb) {
			return tuple.NewValue(false), nil
		}
		if lb == nil || rb == nil {
			return tuple.NullValue(tuple.TypeBoolean), nil
		}
		return tuple.NewValue(*lb && *rb), nil
	case OpOr:
		if (lb != nil && *lb) || (rb != nil && *rb) {
			return tuple.NewValue(true), nil
		}
		if lb == nil || rb == nil {
			return tuple.NullValue(tuple.TypeBoolean), nil
		}
		return tuple.NewValue(*lb || *rb), nil
	default:
		return nil, fmt.Errorf("expr: unknown logic operator %d", l.Op)
	}
}

func (l *Logic) Evaluate(t *tuple.Tuple, schema *tuple.Schema) (*tuple.Value, error) {
	lv, err := l.Left.Evaluate(t, schema)
	if err != nil {
		return nil, err
	}
	rv, err := l.Right.Evaluate(t, schema)
	if err != nil {
		return nil, err
	}
	return l.combine(lv, rv)
}

func (l *Logic) EvaluateJoin(left *tuple.Tuple, leftSchema *tuple.Schema, right *tuple.Tuple, rightSchema *tuple.Schema) (*tuple.Value, error) {
	lv, err := l.Left.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return nil, err
	}
	rv, err := l.Right.EvaluateJoin(left, leftSchema, right, rightSchema)
	if err != nil {
		return nil, err
	}
	return l.combine(lv, rv)
}

func (l *Logic) CloneWithChildren(children []Expression) Expression {
	if len(children) != 2 {
		panic("expr: Logic.CloneWithChildren requires exactly 2 children")
	}
	return &Logic{Op: l.Op, Left: children[0], Right: children[1]}
}

func (l *Logic) ReturnType() tuple.Type { return tuple.TypeBoolean }
func (l *Logic) Children() []Expression { return []Expression{l.Left, l.Right} }
