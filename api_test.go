package parseas_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/reoring/parseas"
)

// TestValidateAs_ListOfIntegers covers the canonical coercion and failure
// paths for []int.
func TestValidateAs_ListOfIntegers(t *testing.T) {
	ctx := context.Background()

	got, err := parseas.ValidateAs[[]int](ctx, []any{"1", 2, "3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("got %v", got)
	}

	_, err = parseas.ValidateAs[[]int](ctx, []any{"a"})
	iss, ok := parseas.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected one issue, got %v", err)
	}
	if iss[0].Path != "/root/0" || iss[0].Dotted() != "root.0" {
		t.Fatalf("unexpected path: %q (%q)", iss[0].Path, iss[0].Dotted())
	}
	if iss[0].Code != parseas.CodeInvalidType {
		t.Fatalf("unexpected code: %s", iss[0].Code)
	}
}

func TestValidateAs_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	check := func(name string, shape reflect.Type, v any) {
		t.Helper()
		got, err := parseas.ValidateAsType(ctx, shape, v)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !reflect.DeepEqual(got, v) {
			t.Fatalf("%s: got %#v, want %#v", name, got, v)
		}
	}
	check("int", reflect.TypeFor[int](), 42)
	check("string", reflect.TypeFor[string](), "hello")
	check("map", reflect.TypeFor[map[string][]float64](), map[string][]float64{"a": {1.5, 2}})
	check("array", reflect.TypeFor[[2]bool](), [2]bool{true, false})
	check("time", reflect.TypeFor[time.Time](), ts)
	check("struct", reflect.TypeFor[namedUser](), namedUser{Name: "ann"})
	check("any", reflect.TypeFor[any](), map[string]any{"x": []any{1, "y"}})
}

func TestValidateAs_Coercions(t *testing.T) {
	ctx := context.Background()

	n, err := parseas.ValidateAs[int](ctx, "123")
	if err != nil || n != 123 {
		t.Fatalf("int from string: %v %v", n, err)
	}
	f, err := parseas.ValidateAs[float64](ctx, "2.5")
	if err != nil || f != 2.5 {
		t.Fatalf("float from string: %v %v", f, err)
	}
	b, err := parseas.ValidateAs[bool](ctx, "yes")
	if err != nil || !b {
		t.Fatalf("bool from word: %v %v", b, err)
	}
	s, err := parseas.ValidateAs[string](ctx, 7)
	if err != nil || s != "7" {
		t.Fatalf("string from int: %q %v", s, err)
	}
	m, err := parseas.ValidateAs[map[int]string](ctx, map[string]any{"2": "b", "1": "a"})
	if err != nil || !reflect.DeepEqual(m, map[int]string{1: "a", 2: "b"}) {
		t.Fatalf("map with int keys: %v %v", m, err)
	}
	d, err := parseas.ValidateAs[time.Duration](ctx, "1m30s")
	if err != nil || d != 90*time.Second {
		t.Fatalf("duration: %v %v", d, err)
	}
	p, err := parseas.ValidateAs[*int](ctx, nil)
	if err != nil || p != nil {
		t.Fatalf("nil pointer: %v %v", p, err)
	}
	p, err = parseas.ValidateAs[*int](ctx, "5")
	if err != nil || p == nil || *p != 5 {
		t.Fatalf("pointer: %v %v", p, err)
	}
}

func TestValidateAs_AggregatesIssuesInOrder(t *testing.T) {
	ctx := context.Background()
	_, err := parseas.ValidateAs[map[string][]int](ctx, map[string]any{
		"b": []any{1, "x"},
		"a": []any{"y", 2, "z"},
	})
	iss, ok := parseas.AsIssues(err)
	if !ok {
		t.Fatalf("expected issues, got %v", err)
	}
	var paths []string
	for _, it := range iss {
		paths = append(paths, it.Dotted())
	}
	want := []string{"root.a.0", "root.a.2", "root.b.1"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}

	_, err = parseas.ValidateAs[map[string][]int](ctx, map[string]any{"a": []any{"y", "z"}}, parseas.WithFailFast())
	iss, _ = parseas.AsIssues(err)
	if len(iss) != 1 {
		t.Fatalf("fail-fast should stop at one issue, got %v", iss)
	}
}

func TestValidateAs_RejectsLossyValues(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		shape reflect.Type
		v     any
		code  string
	}{
		{"fraction into int", reflect.TypeFor[int](), 1.5, parseas.CodeInvalidType},
		{"bool into int", reflect.TypeFor[int](), true, parseas.CodeInvalidType},
		{"int8 overflow", reflect.TypeFor[int8](), 300, parseas.CodeOverflow},
		{"negative uint", reflect.TypeFor[uint](), -1, parseas.CodeTooSmall},
		{"bool into string", reflect.TypeFor[string](), false, parseas.CodeInvalidType},
		{"null into int", reflect.TypeFor[int](), nil, parseas.CodeInvalidType},
		{"short array", reflect.TypeFor[[3]int](), []any{1}, parseas.CodeTooShort},
		{"long array", reflect.TypeFor[[1]int](), []any{1, 2}, parseas.CodeTooLong},
		{"bad time", reflect.TypeFor[time.Time](), "yesterday", parseas.CodeInvalidFormat},
		{"scalar into slice", reflect.TypeFor[[]int](), 3, parseas.CodeInvalidType},
		{"not an error", reflect.TypeFor[error](), 3, parseas.CodeInvalidType},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := parseas.ValidateAsType(ctx, c.shape, c.v)
			iss, ok := parseas.AsIssues(err)
			if !ok || len(iss) == 0 {
				t.Fatalf("expected issues, got %v", err)
			}
			if iss[0].Code != c.code {
				t.Fatalf("code = %s, want %s (%v)", iss[0].Code, c.code, iss)
			}
			if iss[0].Path != "/root" {
				t.Fatalf("path = %s", iss[0].Path)
			}
		})
	}
}

func TestValidateAs_UnsupportedShape(t *testing.T) {
	_, err := parseas.ValidateAs[func()](context.Background(), nil)
	if !errors.Is(err, parseas.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	_, err = parseas.ValidateAs[map[bool]int](context.Background(), nil)
	if !errors.Is(err, parseas.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType for bool keys, got %v", err)
	}
}

type treeNode struct {
	Value    int         `json:"value"`
	Children []*treeNode `json:"children,omitempty"`
}

func TestValidateAs_RecursiveType(t *testing.T) {
	got, err := parseas.ValidateAs[treeNode](context.Background(), map[string]any{
		"value": "1",
		"children": []any{
			map[string]any{"value": 2},
			map[string]any{"value": 3, "children": []any{map[string]any{"value": "4"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.Value != 1 || len(got.Children) != 2 || got.Children[1].Children[0].Value != 4 {
		t.Fatalf("unexpected tree: %+v", got)
	}

	_, err = parseas.ValidateAs[treeNode](context.Background(), map[string]any{
		"value":    1,
		"children": []any{map[string]any{"value": "x"}},
	})
	iss, _ := parseas.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/root/children/0/value" {
		t.Fatalf("unexpected issues: %v", iss)
	}
}

func TestValidateAs_IssueMessageLanguage(t *testing.T) {
	_, err := parseas.ValidateAs[int](context.Background(), "x")
	iss, _ := parseas.AsIssues(err)
	if len(iss) != 1 || iss[0].Message != "invalid type" || iss[0].Hint == "" {
		t.Fatalf("unexpected issue: %+v", iss)
	}
	if iss[0].Params["expected"] != "integer" || iss[0].Params["got"] != "string" {
		t.Fatalf("unexpected params: %v", iss[0].Params)
	}
}
