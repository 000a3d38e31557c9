// Package optimizer rewrites plan trees built from pkg/exec's operator
// vocabulary, applying cost-free structural simplifications before a
// plan is turned into a live Executor tree: Sort+Limit collapses into
// a bounded TopN, an equi-predicate nested-loop join becomes a
// HashJoin, and a single-equality scan with a matching index becomes
// an IndexScan.
package optimizer

import (
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/exec"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// PlanNode is a node in the unexecuted plan tree the optimizer
// rewrites. Unlike pkg/exec.Executor, plan nodes carry no iteration
// state; they are built, rewritten, then lowered into executors.
type PlanNode interface {
	Children() []PlanNode
	OutputSchema() *tuple.Schema
}

// SeqScanNode scans a table, optionally filtering by predicate.
type SeqScanNode struct {
	Table     string
	Schema    *tuple.Schema
	Predicate expr.Expression
}

func (n *SeqScanNode) Children() []PlanNode      { return nil }
func (n *SeqScanNode) OutputSchema() *tuple.Schema { return n.Schema }

// IndexScanNode probes a single-column index for an exact key match;
// Predicate is carried through for residual filtering if the index
// key isn't the whole predicate.
type IndexScanNode struct {
	Table     string
	IndexName string
	Schema    *tuple.Schema
	Predicate expr.Expression
	Key       int64
}

func (n *IndexScanNode) Children() []PlanNode      { return nil }
func (n *IndexScanNode) OutputSchema() *tuple.Schema { return n.Schema }

// FilterNode applies a predicate above a non-scan child.
type FilterNode struct {
	Child     PlanNode
	Predicate expr.Expression
}

func (n *FilterNode) Children() []PlanNode      { return []PlanNode{n.Child} }
func (n *FilterNode) OutputSchema() *tuple.Schema { return n.Child.OutputSchema() }

// ProjectionNode evaluates Exprs against its child.
type ProjectionNode struct {
	Child  PlanNode
	Exprs  []expr.Expression
	Schema *tuple.Schema
}

func (n *ProjectionNode) Children() []PlanNode      { return []PlanNode{n.Child} }
func (n *ProjectionNode) OutputSchema() *tuple.Schema { return n.Schema }

// SortNode orders its child's rows by OrderBy without bounding them.
type SortNode struct {
	Child   PlanNode
	OrderBy []exec.OrderKey
}

func (n *SortNode) Children() []PlanNode      { return []PlanNode{n.Child} }
func (n *SortNode) OutputSchema() *tuple.Schema { return n.Child.OutputSchema() }

// LimitNode caps its child's output at N rows.
type LimitNode struct {
	Child PlanNode
	N     int
}

func (n *LimitNode) Children() []PlanNode      { return []PlanNode{n.Child} }
func (n *LimitNode) OutputSchema() *tuple.Schema { return n.Child.OutputSchema() }

// TopNNode is Sort+Limit fused into a single bounded-heap operator.
type TopNNode struct {
	Child   PlanNode
	N       int
	OrderBy []exec.OrderKey
}

func (n *TopNNode) Children() []PlanNode      { return []PlanNode{n.Child} }
func (n *TopNNode) OutputSchema() *tuple.Schema { return n.Child.OutputSchema() }

// NestedLoopJoinNode joins Left and Right by evaluating Predicate
// against every pair of rows.
type NestedLoopJoinNode struct {
	Left, Right PlanNode
	Predicate   expr.Expression
	Schema      *tuple.Schema
}

func (n *NestedLoopJoinNode) Children() []PlanNode      { return []PlanNode{n.Left, n.Right} }
func (n *NestedLoopJoinNode) OutputSchema() *tuple.Schema { return n.Schema }

// HashJoinNode is an equi-join rewritten from a NestedLoopJoinNode:
// LeftKeys[i] and RightKeys[i] form one equality conjunct.
type HashJoinNode struct {
	Left, Right         PlanNode
	LeftKeys, RightKeys []expr.Expression
	Schema              *tuple.Schema
}

func (n *HashJoinNode) Children() []PlanNode      { return []PlanNode{n.Left, n.Right} }
func (n *HashJoinNode) OutputSchema() *tuple.Schema { return n.Schema }

// AggregationNode groups its child's rows and computes aggregates.
type AggregationNode struct {
	Child      PlanNode
	GroupBy    []expr.Expression
	Aggregates []exec.AggregateSpec
	Schema     *tuple.Schema
}

func (n *AggregationNode) Children() []PlanNode      { return []PlanNode{n.Child} }
func (n *AggregationNode) OutputSchema() *tuple.Schema { return n.Schema }
