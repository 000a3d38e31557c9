package optimizer

import (
	"github.com/alderlake-db/alderdb/pkg/catalog"
	"github.com/alderlake-db/alderdb/pkg/expr"
)

// Optimize rewrites node and its children post-order: children are
// optimized first, then each of the three rules is tried on the
// resulting node, each one only firing on the exact shape it targets.
func Optimize(node PlanNode, cat catalog.Catalog) PlanNode {
	node = rewriteChildren(node, cat)
	node = rewriteSortLimitToTopN(node)
	node = rewriteNLJToHashJoin(node)
	node = rewriteSeqScanToIndexScan(node, cat)
	return node
}

// rewriteChildren returns a copy of node with every child replaced by
// its optimized form, so rules on a parent always see already-rewritten
// children.
func rewriteChildren(node PlanNode, cat catalog.Catalog) PlanNode {
	switch n := node.(type) {
	case *SeqScanNode, *IndexScanNode:
		return node
	case *FilterNode:
		return &FilterNode{Child: Optimize(n.Child, cat), Predicate: n.Predicate}
	case *ProjectionNode:
		return &ProjectionNode{Child: Optimize(n.Child, cat), Exprs: n.Exprs, Schema: n.Schema}
	case *SortNode:
		return &SortNode{Child: Optimize(n.Child, cat), OrderBy: n.OrderBy}
	case *LimitNode:
		return &LimitNode{Child: Optimize(n.Child, cat), N: n.N}
	case *TopNNode:
		return &TopNNode{Child: Optimize(n.Child, cat), N: n.N, OrderBy: n.OrderBy}
	case *NestedLoopJoinNode:
		return &NestedLoopJoinNode{
			Left:      Optimize(n.Left, cat),
			Right:     Optimize(n.Right, cat),
			Predicate: n.Predicate,
			Schema:    n.Schema,
		}
	case *HashJoinNode:
		return &HashJoinNode{
			Left: Optimize(n.Left, cat), Right: Optimize(n.Right, cat),
			LeftKeys: n.LeftKeys, RightKeys: n.RightKeys, Schema: n.Schema,
		}
	case *AggregationNode:
		return &AggregationNode{
			Child: Optimize(n.Child, cat), GroupBy: n.GroupBy,
			Aggregates: n.Aggregates, Schema: n.Schema,
		}
	default:
		return node
	}
}

// rewriteSortLimitToTopN replaces Limit(N){Sort(order-by){child}} with
// TopN(N, order-by){child}.
func rewriteSortLimitToTopN(node PlanNode) PlanNode {
	limit, ok := node.(*LimitNode)
	if !ok {
		return node
	}
	sort, ok := limit.Child.(*SortNode)
	if !ok {
		return node
	}
	return &TopNNode{Child: sort.Child, N: limit.N, OrderBy: sort.OrderBy}
}

// collectEqualityConjuncts flattens an AND-tree of column=column
// equality comparisons into parallel left/right key vectors. Returns
// ok=false if any leaf isn't a pure cross-side equality.
func collectEqualityConjuncts(e expr.Expression) (leftKeys, rightKeys []expr.Expression, ok bool) {
	switch n := e.(type) {
	case *expr.Logic:
		if n.Op != expr.OpAnd {
			return nil, nil, false
		}
		ll, lr, lok := collectEqualityConjuncts(n.Left)
		rl, rr, rok := collectEqualityConjuncts(n.Right)
		if !lok || !rok {
			return nil, nil, false
		}
		return append(ll, rl...), append(lr, rr...), true

	case *expr.Comparison:
		if n.Op != expr.OpEqual {
			return nil, nil, false
		}
		lCol, lok := n.Left.(*expr.ColumnRef)
		rCol, rok := n.Right.(*expr.ColumnRef)
		if !lok || !rok || lCol.Side == rCol.Side {
			return nil, nil, false
		}
		if lCol.Side == expr.SideLeft {
			return []expr.Expression{lCol}, []expr.Expression{rCol}, true
		}
		return []expr.Expression{rCol}, []expr.Expression{lCol}, true

	default:
		return nil, nil, false
	}
}

// rewriteNLJToHashJoin replaces a nested-loop join whose predicate is
// a conjunction of column-equality comparisons with a HashJoin over
// the extracted key vectors.
func rewriteNLJToHashJoin(node PlanNode) PlanNode {
	nlj, ok := node.(*NestedLoopJoinNode)
	if !ok {
		return node
	}
	leftKeys, rightKeys, ok := collectEqualityConjuncts(nlj.Predicate)
	if !ok || len(leftKeys) == 0 {
		return node
	}
	return &HashJoinNode{
		Left: nlj.Left, Right: nlj.Right,
		LeftKeys: leftKeys, RightKeys: rightKeys,
		Schema: nlj.Schema,
	}
}

// rewriteSeqScanToIndexScan replaces a scan whose predicate is a
// single equality between a column and a constant with an IndexScan,
// provided an index exists over exactly that column.
func rewriteSeqScanToIndexScan(node PlanNode, cat catalog.Catalog) PlanNode {
	scan, ok := node.(*SeqScanNode)
	if !ok || scan.Predicate == nil || cat == nil {
		return node
	}
	cmp, ok := scan.Predicate.(*expr.Comparison)
	if !ok || cmp.Op != expr.OpEqual {
		return node
	}

	col, colOK := cmp.Left.(*expr.ColumnRef)
	constVal, constOK := cmp.Right.(*expr.Constant)
	if !colOK || !constOK {
		col, colOK = cmp.Right.(*expr.ColumnRef)
		constVal, constOK = cmp.Left.(*expr.Constant)
	}
	if !colOK || !constOK {
		return node
	}

	for _, idx := range cat.IndexesForTable(scan.Table) {
		if len(idx.KeyAttrs) == 1 && idx.KeyAttrs[0] == col.ColumnIndex {
			key, err := constVal.Value.AsInt64()
			if err != nil {
				return node
			}
			return &IndexScanNode{
				Table:     scan.Table,
				IndexName: idx.Name,
				Schema:    scan.Schema,
				Predicate: scan.Predicate,
				Key:       key,
			}
		}
	}
	return node
}
