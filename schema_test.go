package parseas_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/reoring/parseas"
)

type Base struct {
	ID string `json:"id"`
}

type Account struct {
	Base
	Email    string   `json:"email"`
	Nick     *string  `json:"nick"`
	Age      int      `json:"age,omitempty"`
	Role     string   `parseas:"default=member"`
	Tags     []string `parseas:"name=labels,optional"`
	Internal string   `json:"-"`
	secret   string
}

func TestSchemaOf_StructRules(t *testing.T) {
	s, err := parseas.SchemaFor[Account]()
	if err != nil {
		t.Fatal(err)
	}
	if s.Name() != "parseas_test.Account" {
		t.Fatalf("name: %q", s.Name())
	}
	if s.GoType() != reflect.TypeFor[Account]() {
		t.Fatalf("go type: %v", s.GoType())
	}
	type want struct {
		required   bool
		hasDefault bool
	}
	expect := map[string]want{
		"id":     {true, false},
		"email":  {true, false},
		"nick":   {false, false},
		"age":    {false, false},
		"Role":   {false, true},
		"labels": {false, false},
	}
	fields := s.Fields()
	if len(fields) != len(expect) {
		t.Fatalf("fields: %+v", fields)
	}
	for _, f := range fields {
		w, ok := expect[f.Name]
		if !ok {
			t.Fatalf("unexpected field %q", f.Name)
		}
		if f.Required != w.required || f.HasDefault != w.hasDefault {
			t.Fatalf("field %q: required=%v default=%v", f.Name, f.Required, f.HasDefault)
		}
	}
	if fields[0].Name != "id" {
		t.Fatalf("embedded fields keep declaration order, got %q first", fields[0].Name)
	}
}

func TestSchema_ValidateAndDecode(t *testing.T) {
	ctx := context.Background()
	s := parseas.MustSchemaFor[Account]()

	dm, err := parseas.Decode[Account](ctx, s, map[string]any{
		"id":     "u1",
		"email":  "a@example.com",
		"nick":   nil,
		"labels": []any{"x"},
		"extra":  true,
	})
	if err != nil {
		t.Fatal(err)
	}
	a := dm.Value
	if a.ID != "u1" || a.Email != "a@example.com" || a.Nick != nil || a.Role != "member" || !reflect.DeepEqual(a.Tags, []string{"x"}) {
		t.Fatalf("unexpected value: %+v", a)
	}
	if !dm.Presence.Seen("/nick") || dm.Presence["/nick"]&parseas.PresenceWasNull == 0 {
		t.Fatalf("nick presence: %v", dm.Presence)
	}
	if dm.Presence["/Role"] != parseas.PresenceDefaultApplied {
		t.Fatalf("role presence: %v", dm.Presence)
	}
	if dm.Presence.Seen("/age") {
		t.Fatalf("age was not sent")
	}

	_, err = s.Validate(ctx, map[string]any{"email": true})
	iss, ok := parseas.AsIssues(err)
	if !ok || len(iss) != 2 {
		t.Fatalf("expected required id and invalid email, got %v", err)
	}
	if iss[0].Path != "/id" || iss[0].Code != parseas.CodeRequired {
		t.Fatalf("first issue: %+v", iss[0])
	}
	if iss[1].Path != "/email" {
		t.Fatalf("second issue: %+v", iss[1])
	}

	if _, err := s.Validate(ctx, []any{1}); err == nil {
		t.Fatalf("non-object input must fail")
	}
}

func TestSchema_ValidateAcceptsBoundStruct(t *testing.T) {
	s := parseas.MustSchemaFor[Account]()
	in, err := s.Validate(context.Background(), &Account{Base: Base{ID: "u"}, Email: "e"})
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := in.Get("id"); v != "u" {
		t.Fatalf("id: %v", v)
	}
}

type Extra struct {
	X int
}

type WithExtra struct {
	*Extra
	Y int
}

type SelfEmbed struct {
	*SelfEmbed
	V int
}

func TestSchema_PointerEmbeddedFields(t *testing.T) {
	ctx := context.Background()
	s := parseas.MustSchemaFor[WithExtra]()
	fields := s.Fields()
	if len(fields) != 2 || fields[0].Name != "X" || fields[1].Name != "Y" {
		t.Fatalf("promoted fields: %+v", fields)
	}
	if fields[0].Required || !fields[1].Required {
		t.Fatalf("fields behind a pointer embed are optional: %+v", fields)
	}

	got, err := parseas.ValidateAs[WithExtra](ctx, map[string]any{"X": 1, "Y": 2})
	if err != nil {
		t.Fatal(err)
	}
	if got.Extra == nil || got.X != 1 || got.Y != 2 {
		t.Fatalf("unexpected value: %+v", got)
	}

	got, err = parseas.ValidateAs[WithExtra](ctx, map[string]any{"Y": 3})
	if err != nil {
		t.Fatal(err)
	}
	if got.Extra != nil || got.Y != 3 {
		t.Fatalf("embedded pointer must stay nil: %+v", got)
	}

	in, err := s.Validate(ctx, &WithExtra{Y: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := in.Get("X"); ok {
		t.Fatalf("X is absent behind a nil embed")
	}

	_, err = parseas.ValidateAs[WithExtra](ctx, map[string]any{"X": "no", "Y": 2})
	iss, ok := parseas.AsIssues(err)
	if !ok || len(iss) != 1 || iss[0].Path != "/X" {
		t.Fatalf("promoted field must be validated: %v", err)
	}

	self, err := parseas.SchemaFor[SelfEmbed]()
	if err != nil {
		t.Fatal(err)
	}
	if f := self.Fields(); len(f) != 1 || f[0].Name != "V" {
		t.Fatalf("cyclic embed: %+v", f)
	}
}

func TestNewSchema_StrictUnknown(t *testing.T) {
	ctx := context.Background()
	s, err := parseas.NewSchema("Point", []parseas.Field{
		{Name: "x", Type: reflect.TypeFor[float64](), Required: true},
		{Name: "y", Type: reflect.TypeFor[float64](), Required: true},
		{Name: "label", Type: reflect.TypeFor[string](), Default: "origin", HasDefault: true},
	}, parseas.Config{Unknown: parseas.UnknownStrict})
	if err != nil {
		t.Fatal(err)
	}

	in, err := s.Validate(ctx, map[string]any{"x": "1", "y": 2})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"x": 1.0, "y": 2.0, "label": "origin"}
	if !reflect.DeepEqual(in.Map(), want) {
		t.Fatalf("map: %v", in.Map())
	}
	if !reflect.DeepEqual(in.FieldsSet(), []string{"x", "y"}) {
		t.Fatalf("fields set: %v", in.FieldsSet())
	}

	_, err = s.Validate(ctx, map[string]any{"x": 1, "y": 2, "zz": 1, "aa": 2})
	iss, _ := parseas.AsIssues(err)
	if len(iss) != 2 || iss[0].Path != "/aa" || iss[1].Path != "/zz" || iss[0].Code != parseas.CodeUnknownKey {
		t.Fatalf("unknown keys: %v", iss)
	}

	if _, err := parseas.Into[Account](in); !errors.Is(err, parseas.ErrTypeMismatch) {
		t.Fatalf("unbound schema into struct: %v", err)
	}
}

func TestNewSchema_Invalid(t *testing.T) {
	cases := map[string][]parseas.Field{
		"empty name":  {{Name: "", Type: reflect.TypeFor[int]()}},
		"nil type":    {{Name: "a"}},
		"duplicate":   {{Name: "a", Type: reflect.TypeFor[int]()}, {Name: "a", Type: reflect.TypeFor[int]()}},
		"bad default": {{Name: "a", Type: reflect.TypeFor[int](), Default: "x", HasDefault: true}},
	}
	for name, fields := range cases {
		if _, err := parseas.NewSchema("S", fields, parseas.Config{}); !errors.Is(err, parseas.ErrInvalidSchema) {
			t.Fatalf("%s: expected ErrInvalidSchema, got %v", name, err)
		}
	}
	_, err := parseas.NewSchema("S", []parseas.Field{{Name: "c", Type: reflect.TypeFor[chan int]()}}, parseas.Config{})
	if !errors.Is(err, parseas.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := parseas.SchemaFor[int](); !errors.Is(err, parseas.ErrUnsupportedType) {
		t.Fatalf("non-struct: %v", err)
	}
}

func TestRootSchema(t *testing.T) {
	s, err := parseas.RootSchema("Numbers", reflect.TypeFor[[]int]())
	if err != nil {
		t.Fatal(err)
	}
	fs := s.Fields()
	if s.Name() != "Numbers" || !s.Config().Root || len(fs) != 1 {
		t.Fatalf("unexpected root schema: %s %+v %+v", s.Name(), s.Config(), fs)
	}
	if fs[0].Name != parseas.RootField || !fs[0].Required || fs[0].HasDefault {
		t.Fatalf("root field: %+v", fs[0])
	}
	if _, err := s.Validate(context.Background(), map[string]any{}); err == nil {
		t.Fatalf("missing root must fail")
	}
}

type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r Range) Refine(context.Context) error {
	if r.Min > r.Max {
		return parseas.Issues{{Path: "/min", Code: "range", Message: "min exceeds max"}}
	}
	return nil
}

type Window struct {
	Name  string `json:"name"`
	Range Range  `json:"range"`
}

func (w *Window) Refine(context.Context) error {
	if w.Name == "forbidden" {
		return errors.New("name not allowed")
	}
	return nil
}

func TestRefine(t *testing.T) {
	ctx := context.Background()

	_, err := parseas.ValidateAs[[]Range](ctx, []any{
		map[string]any{"min": 1, "max": 2},
		map[string]any{"min": 5, "max": 2},
	})
	iss, _ := parseas.AsIssues(err)
	if len(iss) != 1 || iss[0].Path != "/root/1/min" || iss[0].Code != "range" {
		t.Fatalf("nested refine: %v", iss)
	}

	s := parseas.MustSchemaFor[Window]()
	_, err = s.Validate(ctx, map[string]any{"name": "forbidden", "range": map[string]any{"min": 0, "max": 0}})
	iss, _ = parseas.AsIssues(err)
	if len(iss) != 1 || iss[0].Code != parseas.CodeCustom || iss[0].Path != "/" || iss[0].Cause == nil {
		t.Fatalf("top-level refine: %v", iss)
	}
}
