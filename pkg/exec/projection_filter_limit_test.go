package exec

import (
	"testing"

	"github.com/alderlake-db/alderdb/pkg/expr"
	"github.com/alderlake-db/alderdb/pkg/tuple"
)

func threePeople() *sliceExecutor {
	return newSliceExecutor(personSchema(), []*tuple.Tuple{
		personTuple(1, "a"),
		personTuple(2, "b"),
		personTuple(3, "c"),
	})
}

func TestProjectionExecutor(t *testing.T) {
	outSchema := tuple.NewSchema([]tuple.Column{{Name: "name", Type: tuple.TypeString}})
	proj := NewProjectionExecutor(threePeople(), []expr.Expression{
		&expr.ColumnRef{ColumnIndex: 1, Type: tuple.TypeString},
	}, outSchema)

	if err := proj.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var names []string
	for {
		row, _, ok, err := proj.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		v, _ := row.GetValueAt(0)
		s, _ := v.AsString()
		names = append(names, s)
	}
	if len(names) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(names))
	}
}

func TestFilterExecutor(t *testing.T) {
	pred := &expr.Comparison{
		Op:    expr.OpGreaterEqual,
		Left:  &expr.ColumnRef{ColumnIndex: 0, Type: tuple.TypeInt64},
		Right: &expr.Constant{Value: tuple.NewValue(int64(2))},
	}
	f := NewFilterExecutor(threePeople(), pred)
	if err := f.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var count int
	for {
		_, _, ok, err := f.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected 2 rows with id >= 2, got %d", count)
	}
}

func TestLimitExecutor(t *testing.T) {
	l := NewLimitExecutor(threePeople(), 2)
	if err := l.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}

	var count int
	for {
		_, _, ok, err := l.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 2 {
		t.Errorf("expected limit to cap at 2, got %d", count)
	}
}
