package builtins

import (
	"reflect"
	"testing"

	"tabular-hq/verdict/pkg/feel/errors"
)

func TestAggregatesAcceptListOrVariadic(t *testing.T) {
	reg := Default()

	asList, err := reg.Call(nil, "sum", []any{[]any{1.0, 2.0, 3.0}})
	if err != nil {
		t.Fatal(err)
	}
	variadic, err := reg.Call(nil, "sum", []any{1.0, 2.0, 3.0})
	if err != nil {
		t.Fatal(err)
	}
	if asList != 6.0 || variadic != 6.0 {
		t.Errorf("sum list form = %v, variadic form = %v, want 6", asList, variadic)
	}
}

func TestAggregates(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []any
		want any
	}{
		{"sum", "sum", []any{[]any{1.0, 2.0, 3.0}}, 6.0},
		{"sum empty list", "sum", []any{[]any{}}, nil},
		{"sum skips null", "sum", []any{[]any{1.0, nil, 2.0}}, 3.0},
		{"product", "product", []any{[]any{2.0, 3.0, 4.0}}, 24.0},
		{"mean", "mean", []any{[]any{1.0, 2.0, 3.0}}, 2.0},
		{"median odd", "median", []any{[]any{8.0, 2.0, 5.0}}, 5.0},
		{"median even", "median", []any{[]any{6.0, 1.0, 2.0, 3.0}}, 2.5},
		{"stddev", "stddev", []any{[]any{2.0, 4.0, 4.0, 4.0, 5.0, 5.0, 7.0, 9.0}}, 2.0},
		{"min", "min", []any{[]any{3.0, 1.0, 2.0}}, 1.0},
		{"max", "max", []any{[]any{3.0, 1.0, 2.0}}, 3.0},
		{"min skips null", "min", []any{[]any{nil, 4.0, 2.0}}, 2.0},
		{"min strings", "min", []any{[]any{"pear", "apple", "fig"}}, "apple"},
		{"count", "count", []any{[]any{1.0, nil, 3.0}}, 3.0},
		{"count empty", "count", []any{[]any{}}, 0.0},
		{"and all true", "and", []any{[]any{true, true}}, true},
		{"and one false", "and", []any{[]any{true, false}}, false},
		{"or one true", "or", []any{[]any{false, true}}, true},
		{"all alias", "all", []any{true, true, true}, true},
		{"any alias", "any", []any{false, false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Default().Call(nil, tt.fn, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("%s(%v) = %v, want %v", tt.fn, tt.args, got, tt.want)
			}
		})
	}
}

func TestMode(t *testing.T) {
	got, err := Default().Call(nil, "mode", []any{[]any{6.0, 3.0, 9.0, 6.0, 6.0}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{6.0}) {
		t.Errorf("mode = %v, want [6]", got)
	}

	// Ties are all reported, ascending.
	got, err = Default().Call(nil, "mode", []any{[]any{1.0, 2.0, 2.0, 1.0}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{1.0, 2.0}) {
		t.Errorf("mode with tie = %v, want [1 2]", got)
	}
}

func TestListManipulation(t *testing.T) {
	tests := []struct {
		name string
		fn   string
		args []any
		want []any
	}{
		{"sublist", "sublist", []any{[]any{1.0, 2.0, 3.0, 4.0}, 2.0}, []any{2.0, 3.0, 4.0}},
		{"sublist with length", "sublist", []any{[]any{1.0, 2.0, 3.0, 4.0}, 2.0, 2.0}, []any{2.0, 3.0}},
		{"sublist negative start", "sublist", []any{[]any{1.0, 2.0, 3.0}, -2.0}, []any{2.0, 3.0}},
		{"append", "append", []any{[]any{1.0}, 2.0, 3.0}, []any{1.0, 2.0, 3.0}},
		{"concatenate", "concatenate", []any{[]any{1.0, 2.0}, []any{3.0}}, []any{1.0, 2.0, 3.0}},
		{"insert before", "insert before", []any{[]any{1.0, 3.0}, 2.0, 2.0}, []any{1.0, 2.0, 3.0}},
		{"insert at head", "insert before", []any{[]any{2.0}, 1.0, 1.0}, []any{1.0, 2.0}},
		{"remove", "remove", []any{[]any{1.0, 2.0, 3.0}, 2.0}, []any{1.0, 3.0}},
		{"reverse", "reverse", []any{[]any{1.0, 2.0, 3.0}}, []any{3.0, 2.0, 1.0}},
		{"index of", "index of", []any{[]any{1.0, 2.0, 3.0, 2.0}, 2.0}, []any{2.0, 4.0}},
		{"index of miss", "index of", []any{[]any{1.0}, 9.0}, []any{}},
		{"union dedups", "union", []any{[]any{1.0, 2.0}, []any{2.0, 3.0}}, []any{1.0, 2.0, 3.0}},
		{"distinct values", "distinct values", []any{[]any{1.0, 2.0, 3.0, 2.0, 1.0}}, []any{1.0, 2.0, 3.0}},
		{"flatten", "flatten", []any{[]any{[]any{1.0, 2.0}, []any{[]any{3.0}}, 4.0}}, []any{1.0, 2.0, 3.0, 4.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Default().Call(nil, tt.fn, tt.args)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s(%v) = %v, want %v", tt.fn, tt.args, got, tt.want)
			}
		})
	}
}

func TestInsertBeforeOutOfRange(t *testing.T) {
	_, err := Default().Call(nil, "insert before", []any{[]any{1.0}, 5.0, 9.0})
	wantKind(t, err, errors.KindInvalidArguments)
}

func TestRemoveOutOfRange(t *testing.T) {
	_, err := Default().Call(nil, "remove", []any{[]any{1.0}, 0.0})
	wantKind(t, err, errors.KindInvalidArguments)
}

func TestListContains(t *testing.T) {
	tests := []struct {
		name string
		list []any
		item any
		want bool
	}{
		{"hit", []any{1.0, 2.0, 3.0}, 2.0, true},
		{"miss", []any{1.0, 2.0}, 9.0, false},
		{"null member", []any{1.0, nil}, nil, true},
		{"cross-type numeric", []any{1, 2, 3}, 2.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Default().Call(nil, "list contains", []any{tt.list, tt.item})
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("list contains(%v, %v) = %v, want %v", tt.list, tt.item, got, tt.want)
			}
		})
	}
}

// descending sorts larger numbers first; used to exercise the comparator path.
type descending struct{}

func (descending) Call(args []any) (any, error) {
	a, _ := ToNumber(args[0])
	b, _ := ToNumber(args[1])
	return a > b, nil
}

func TestSort(t *testing.T) {
	input := []any{3.0, 1.0, 2.0}

	got, err := Default().Call(nil, "sort", []any{input})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{1.0, 2.0, 3.0}) {
		t.Errorf("sort = %v", got)
	}

	got, err = Default().Call(nil, "sort", []any{input, descending{}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{3.0, 2.0, 1.0}) {
		t.Errorf("sort with comparator = %v", got)
	}

	// The input list is never mutated.
	if !reflect.DeepEqual(input, []any{3.0, 1.0, 2.0}) {
		t.Errorf("sort mutated its input: %v", input)
	}
}

func TestSortStrings(t *testing.T) {
	got, err := Default().Call(nil, "sort", []any{[]any{"pear", "apple", "fig"}})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{"apple", "fig", "pear"}) {
		t.Errorf("sort strings = %v", got)
	}
}

func TestJoin(t *testing.T) {
	got, err := Default().Call(nil, "join", []any{[]any{"a", "b", "c"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" {
		t.Errorf("join without delimiter = %q", got)
	}

	got, err = Default().Call(nil, "join", []any{[]any{"a", nil, "c"}, ", "})
	if err != nil {
		t.Fatal(err)
	}
	if got != "a, c" {
		t.Errorf("join with delimiter = %q", got)
	}
}
