// Package tuple defines the value and row currency shared by the trie
// store and the Volcano executors: a small typed-value system
// (generalized from a document store's field values down to the
// column types a relational row needs) plus the Tuple/Schema/RID types
// built on top of it.
package tuple

import "fmt"

// Type identifies the dynamic type carried by a Value.
type Type byte

const (
	TypeNull Type = iota
	TypeBoolean
	TypeInt64
	TypeFloat64
	TypeString
	TypeRID
)

// String returns the type's name for error messages and EXPLAIN-style
// output.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeInt64:
		return "int64"
	case TypeFloat64:
		return "float64"
	case TypeString:
		return "string"
	case TypeRID:
		return "rid"
	default:
		return "unknown"
	}
}

// RID (Record Identifier) locates a tuple within a table heap: the page
// it lives on and its slot within that page.
type RID struct {
	PageID uint32
	SlotID uint32
}

func (r RID) String() string {
	return fmt.Sprintf("%d:%d", r.PageID, r.SlotID)
}

// Value is a single typed datum. The zero Value is TypeNull.
type Value struct {
	Type Type
	Data interface{}
}

// NewValue infers a Value's Type from the Go type of data, mirroring
// the teacher's document.NewValue type switch but narrowed to the
// relational column types this engine supports.
func NewValue(data interface{}) *Value {
	v := &Value{Data: data}

	switch d := data.(type) {
	case nil:
		v.Type = TypeNull
	case bool:
		v.Type = TypeBoolean
	case int:
		v.Type = TypeInt64
		v.Data = int64(d)
	case int32:
		v.Type = TypeInt64
		v.Data = int64(d)
	case int64:
		v.Type = TypeInt64
	case float32:
		v.Type = TypeFloat64
		v.Data = float64(d)
	case float64:
		v.Type = TypeFloat64
	case string:
		v.Type = TypeString
	case RID:
		v.Type = TypeRID
	default:
		v.Type = TypeNull
		v.Data = nil
	}

	return v
}

// NullValue returns a typed null: a Value whose Type is the column's
// declared type but whose Data is nil.
func NullValue(t Type) *Value {
	return &Value{Type: t, Data: nil}
}

// IsNull reports whether the value carries no data.
func (v *Value) IsNull() bool {
	return v == nil || v.Data == nil
}

// AsInt64 returns the value as an int64, coercing from Float64 and
// Boolean where that is unambiguous (used by aggregates and arithmetic
// expressions).
func (v *Value) AsInt64() (int64, error) {
	switch d := v.Data.(type) {
	case int64:
		return d, nil
	case float64:
		return int64(d), nil
	case bool:
		if d {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("tuple: cannot convert %s to int64", v.Type)
	}
}

// AsFloat64 returns the value as a float64.
func (v *Value) AsFloat64() (float64, error) {
	switch d := v.Data.(type) {
	case float64:
		return d, nil
	case int64:
		return float64(d), nil
	default:
		return 0, fmt.Errorf("tuple: cannot convert %s to float64", v.Type)
	}
}

// AsString returns the value's underlying string.
func (v *Value) AsString() (string, error) {
	s, ok := v.Data.(string)
	if !ok {
		return "", fmt.Errorf("tuple: cannot convert %s to string", v.Type)
	}
	return s, nil
}

// AsBool returns the value's underlying boolean.
func (v *Value) AsBool() (bool, error) {
	b, ok := v.Data.(bool)
	if !ok {
		return false, fmt.Errorf("tuple: cannot convert %s to bool", v.Type)
	}
	return b, nil
}

// Equals reports whether two values are equal. Null never equals
// anything, including another null (SQL three-valued-logic convention
// the executors rely on for join/filter predicates).
func (v *Value) Equals(other *Value) bool {
	if v.IsNull() || other.IsNull() {
		return false
	}
	if v.Type != other.Type {
		return false
	}
	return v.Data == other.Data
}

// Compare orders two non-null values of the same type. Used by Sort,
// TopN, and equi-join key comparisons.
func (v *Value) Compare(other *Value) (int, error) {
	if v.Type != other.Type {
		return 0, fmt.Errorf("tuple: cannot compare %s with %s", v.Type, other.Type)
	}

	switch v.Type {
	case TypeInt64:
		a, b := v.Data.(int64), other.Data.(int64)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case TypeFloat64:
		a, b := v.Data.(float64), other.Data.(float64)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case TypeString:
		a, b := v.Data.(string), other.Data.(string)
		switch {
		case a < b:
			return -1, nil
		case a > b:
			return 1, nil
		default:
			return 0, nil
		}
	case TypeBoolean:
		a, b := v.Data.(bool), other.Data.(bool)
		if a == b {
			return 0, nil
		}
		if !a && b {
			return -1, nil
		}
		return 1, nil
	default:
		return 0, fmt.Errorf("tuple: type %s is not orderable", v.Type)
	}
}

// HashKey returns a value suitable for use as a Go map key, for hash
// join build sides and group-by aggregation.
func (v *Value) HashKey() interface{} {
	if v.IsNull() {
		return nil
	}
	return v.Data
}
