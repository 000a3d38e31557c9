package tuple

import "fmt"

// Tuple is a schema-positioned row: an ordered slice of values, one
// per Schema column. Unlike the teacher's Document (a string-keyed,
// growable map of fields) a Tuple's shape is fixed by its Schema,
// matching the column-at-a-time access pattern executors need.
type Tuple struct {
	Schema *Schema
	Values []*Value
}

// NewTuple builds a tuple over schema; len(values) must equal
// schema.Len().
func NewTuple(schema *Schema, values []*Value) (*Tuple, error) {
	if len(values) != schema.Len() {
		return nil, fmt.Errorf("tuple: expected %d values, got %d", schema.Len(), len(values))
	}
	return &Tuple{Schema: schema, Values: values}, nil
}

// GetValue returns the value of a named column.
func (t *Tuple) GetValue(name string) (*Value, error) {
	i, ok := t.Schema.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("tuple: unknown column %q", name)
	}
	return t.Values[i], nil
}

// GetValueAt returns the value at a column position.
func (t *Tuple) GetValueAt(i int) (*Value, error) {
	if i < 0 || i >= len(t.Values) {
		return nil, fmt.Errorf("tuple: column index %d out of range", i)
	}
	return t.Values[i], nil
}

// Clone deep-copies the value slice so the clone can be mutated (e.g.
// by UpdateExecutor) without aliasing the original row.
func (t *Tuple) Clone() *Tuple {
	values := make([]*Value, len(t.Values))
	for i, v := range t.Values {
		clone := *v
		values[i] = &clone
	}
	return &Tuple{Schema: t.Schema, Values: values}
}

// Project builds a new tuple containing only the named columns, in
// the given order, for ProjectionExecutor.
func (t *Tuple) Project(names []string) (*Tuple, error) {
	schema, err := t.Schema.Project(names)
	if err != nil {
		return nil, err
	}
	values := make([]*Value, len(names))
	for i, name := range names {
		v, err := t.GetValue(name)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return &Tuple{Schema: schema, Values: values}, nil
}

// Concat builds the tuple that results from joining this tuple with
// other, for HashJoinExecutor and nested-loop join output.
func (t *Tuple) Concat(other *Tuple) *Tuple {
	schema := t.Schema.Concat(other.Schema)
	values := make([]*Value, 0, len(t.Values)+len(other.Values))
	values = append(values, t.Values...)
	values = append(values, other.Values...)
	return &Tuple{Schema: schema, Values: values}
}

// String renders the tuple for debugging/EXPLAIN output.
func (t *Tuple) String() string {
	parts := make([]string, len(t.Values))
	for i, v := range t.Values {
		if v.IsNull() {
			parts[i] = "NULL"
		} else {
			parts[i] = fmt.Sprintf("%v", v.Data)
		}
	}
	return fmt.Sprintf("%v", parts)
}
