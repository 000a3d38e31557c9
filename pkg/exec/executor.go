// Package exec implements a minimal Volcano-style (iterator-model)
// executor set: each operator is its own struct exposing Init/Next,
// pulling one tuple at a time from its child rather than materializing
// intermediate results in bulk.
package exec

import "github.com/alderlake-db/alderdb/pkg/tuple"

// Executor is the pull-based iterator interface every operator
// implements. Next returning (false, nil) signals end-of-stream; rid
// is the table-heap RID of the returned row: SeqScan sets it, Filter,
// Limit and TopN pass their child's rid through, and operators that
// build new rows return the zero RID.
type Executor interface {
	Init() error
	Next() (*tuple.Tuple, tuple.RID, bool, error)
	Schema() *tuple.Schema
}
