package exec

import (
	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

// HashJoinExecutor is the minimal hash-build/probe executor the
// NLJ→HashJoin optimizer rule's output plan node requires. It builds
// a hash table from the right child keyed by rightKeys during Init,
// then probes it with each left tuple's leftKeys. Only inner-join
// semantics are implemented; left_keys/right_keys must agree in count
// and positional order per rule output.
type HashJoinExecutor struct {
	left, right         Executor
	leftKeys, rightKeys []expr.Expression
	outSchema           *tuple.Schema

	buildTable map[string][]*tuple.Tuple

	leftTuple *tuple.Tuple
	matches   []*tuple.Tuple
	matchPos  int
}

func NewHashJoinExecutor(left, right Executor, leftKeys, rightKeys []expr.Expression, outSchema *tuple.Schema) *HashJoinExecutor {
	return &HashJoinExecutor{left: left, right: right, leftKeys: leftKeys, rightKeys: rightKeys, outSchema: outSchema}
}

func (j *HashJoinExecutor) Schema() *tuple.Schema { return j.outSchema }

func joinKey(t *tuple.Tuple, schema *tuple.Schema, keys []expr.Expression) (string, error) {
	values := make([]*tuple.Value, len(keys))
	for i, k := range keys {
		v, err := k.Evaluate(t, schema)
		if err != nil {
			return "", err
		}
		if v.IsNull() {
			// null never joins, per three-valued-logic equality
			return "", nil
		}
		values[i] = v
	}
	return groupKey(values), nil
}

func (j *HashJoinExecutor) Init() error {
	if err := j.left.Init(); err != nil {
		return err
	}
	if err := j.right.Init(); err != nil {
		return err
	}

	j.buildTable = make(map[string][]*tuple.Tuple)
	for {
		t, _, ok, err := j.right.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		key, err := joinKey(t, j.right.Schema(), j.rightKeys)
		if err != nil {
			return err
		}
		if key == "" {
			continue
		}
		j.buildTable[key] = append(j.buildTable[key], t)
	}

	j.leftTuple = nil
	j.matches = nil
	j.matchPos = 0
	return nil
}

func (j *HashJoinExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	for {
		if j.matchPos < len(j.matches) {
			rightTuple := j.matches[j.matchPos]
			j.matchPos++
			return j.leftTuple.Concat(rightTuple), tuple.RID{}, true, nil
		}

		t, _, ok, err := j.left.Next()
		if err != nil {
			return nil, tuple.RID{}, false, err
		}
		if !ok {
			return nil, tuple.RID{}, false, nil
		}

		key, err := joinKey(t, j.left.Schema(), j.leftKeys)
		if err != nil {
			return nil, tuple.RID{}, false, err
		}

		j.leftTuple = t
		j.matches = j.buildTable[key]
		j.matchPos = 0
	}
}
