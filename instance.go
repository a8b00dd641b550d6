package parseas

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Instance is the result of a successful Schema.Validate.
type Instance struct {
	schema   *Schema
	values   []reflect.Value
	presence []Presence
	bound    reflect.Value // refined struct value, when a Refine hook ran
}

// Schema returns the schema the instance was validated against.
func (in *Instance) Schema() *Schema { return in.schema }

// Get returns the validated value of the named field. ok is false for
// unknown names and for fields left unset (absent in partial mode, or
// optional without a default).
func (in *Instance) Get(name string) (any, bool) {
	i, ok := in.schema.plan.byName[name]
	if !ok || !in.values[i].IsValid() {
		return nil, false
	}
	return in.values[i].Interface(), true
}

// FieldsSet lists the fields that appeared in the input, in declaration order.
func (in *Instance) FieldsSet() []string {
	var out []string
	for i, f := range in.schema.fields {
		if in.presence[i]&PresenceSeen != 0 {
			out = append(out, f.Name)
		}
	}
	return out
}

// Map returns the set fields as a generic map.
func (in *Instance) Map() map[string]any {
	out := make(map[string]any, len(in.values))
	for i, f := range in.schema.fields {
		if in.values[i].IsValid() {
			out[f.Name] = in.values[i].Interface()
		}
	}
	return out
}

// Presence returns the presence flags keyed by JSON Pointer. The document
// root is always recorded as seen.
func (in *Instance) Presence() PresenceMap {
	pm := PresenceMap{"/": PresenceSeen}
	for i, f := range in.schema.fields {
		if in.presence[i] != 0 {
			pm["/"+strings.ReplaceAll(strings.ReplaceAll(f.Name, "~", "~0"), "/", "~1")] = in.presence[i]
		}
	}
	return pm
}

// Into converts the instance into T: the bound struct type, a pointer to
// it, or map[string]any.
func Into[T any](in *Instance) (T, error) {
	var zero T
	tt := reflect.TypeFor[T]()
	gt := in.schema.plan.goType
	switch {
	case tt == reflect.TypeFor[map[string]any]():
		return any(in.Map()).(T), nil
	case gt == nil:
	case tt == gt:
		return in.structValue().Interface().(T), nil
	case tt == reflect.PointerTo(gt):
		p := reflect.New(gt)
		p.Elem().Set(in.structValue())
		return p.Interface().(T), nil
	}
	bound := "no type"
	if gt != nil {
		bound = gt.String()
	}
	return zero, fmt.Errorf("%w: schema %q is bound to %s, not %s", ErrTypeMismatch, in.schema.name, bound, tt)
}

func (in *Instance) structValue() reflect.Value {
	if in.bound.IsValid() {
		return in.bound
	}
	return in.schema.plan.assemble(fieldValues{values: in.values, presence: in.presence})
}

// Decode validates v against s and converts the result into T (see Into),
// together with the presence flags of the top-level fields.
func Decode[T any](ctx context.Context, s *Schema, v any) (Decoded[T], error) {
	var zero Decoded[T]
	in, err := s.Validate(ctx, v)
	if err != nil {
		return zero, err
	}
	val, err := Into[T](in)
	if err != nil {
		return zero, err
	}
	return Decoded[T]{Value: val, Presence: in.Presence()}, nil
}
