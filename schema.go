package parseas

import (
	"context"
	"fmt"
	"reflect"
)

// RootField is the name of the single field of a schema built by RootSchema.
const RootField = "root"

// Field declares one named field of a Schema.
type Field struct {
	Name string
	// Type is the Go type values of the field are coerced into.
	Type     reflect.Type
	Required bool
	// Default is coerced like input and applied when the field is absent
	// (never in partial mode).
	Default    any
	HasDefault bool

	index []int // struct field index when the schema is bound to a struct
}

// Schema is a named, validated record shape. Schemas are immutable and safe
// for concurrent use.
type Schema struct {
	name   string
	fields []Field
	config Config
	plan   *objectPlan
}

// NewSchema builds an unbound schema from a field list. Field names must be
// unique and non-empty, and every type must be supported by the engine.
func NewSchema(name string, fields []Field, cfg Config) (*Schema, error) {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	for i := range fs {
		fs[i].index = nil
	}
	return buildSchema(name, nil, fs, cfg)
}

// SchemaFor derives a schema from struct type T. See SchemaOf.
func SchemaFor[T any]() (*Schema, error) {
	return SchemaOf(reflect.TypeFor[T]())
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() *Schema {
	s, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// SchemaOf derives a schema from struct type t (or *t). Fields are keyed by
// the parseas tag name, then the json tag name, then the Go field name.
// Pointer, interface, omitempty, optional and default fields are optional;
// all others are required.
func SchemaOf(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || isTextType(t) {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, t)
	}
	return buildSchema(DisplayType(t), t, structFields(t), Config{})
}

// RootSchema synthesizes the wrapper schema for shape: one required field
// named "root" of that type, with Config.Root set.
func RootSchema(name string, shape reflect.Type) (*Schema, error) {
	if shape == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	return buildSchema(name, nil, []Field{{Name: RootField, Type: shape, Required: true}}, Config{Root: true})
}

func buildSchema(name string, goType reflect.Type, fields []Field, cfg Config) (*Schema, error) {
	plan, err := newObjectPlan(goType, fields, cfg, coercerFor)
	if err != nil {
		return nil, err
	}
	if err := plan.checkDefaults(); err != nil {
		return nil, err
	}
	return &Schema{name: name, fields: fields, config: cfg, plan: plan}, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Fields returns a copy of the field declarations in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Config returns the schema configuration.
func (s *Schema) Config() Config { return s.config }

// GoType returns the struct type the schema is bound to, or nil.
func (s *Schema) GoType() reflect.Type { return s.plan.goType }

// Validate checks v, a mapping (or a value of the bound struct type),
// against the schema and returns the validated instance. On failure the
// error is Issues.
func (s *Schema) Validate(ctx context.Context, v any) (*Instance, error) {
	src, ok := s.plan.mapping(v)
	if !ok {
		return nil, typeIssue(RootPath(), "object", v)
	}
	fv, iss := s.plan.run(ctx, src, RootPath())
	if len(iss) > 0 {
		return nil, iss
	}
	in := &Instance{schema: s, values: fv.values, presence: fv.presence}
	if s.plan.goType != nil && !s.config.Partial && hasRefiner(s.plan.goType) {
		rv := s.plan.assemble(fv)
		if riss := applyRefine(ctx, rv, RootPath()); len(riss) > 0 {
			return nil, riss
		}
		in.bound = rv
	}
	return in, nil
}
