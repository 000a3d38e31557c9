package exec

import "github.com/alderlake-db/alderdb/pkg/tuple"

// ValuesExecutor replays a fixed set of tuples built in memory (an
// INSERT ... VALUES list, or a driver wiring up a scan-free source for
// a test). It carries no table heap of its own.
type ValuesExecutor struct {
	schema *tuple.Schema
	rows   []*tuple.Tuple
	pos    int
}

// NewValuesExecutor builds an executor that yields rows in order, each
// paired with the zero RID since the rows aren't backed by a heap.
func NewValuesExecutor(schema *tuple.Schema, rows []*tuple.Tuple) *ValuesExecutor {
	return &ValuesExecutor{schema: schema, rows: rows}
}

func (v *ValuesExecutor) Schema() *tuple.Schema { return v.schema }

func (v *ValuesExecutor) Init() error {
	v.pos = 0
	return nil
}

func (v *ValuesExecutor) Next() (*tuple.Tuple, tuple.RID, bool, error) {
	if v.pos >= len(v.rows) {
		return nil, tuple.RID{}, false, nil
	}
	row := v.rows[v.pos]
	v.pos++
	return row, tuple.RID{}, true, nil
}
