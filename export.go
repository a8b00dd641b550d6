package parseas

import (
	"context"
	"fmt"
	"reflect"
	"time"

	js "github.com/reoring/parseas/jsonschema"
)

var timeType = reflect.TypeFor[time.Time]()

// JSONSchema projects the schema into JSON Schema. Root schemas export the
// shape of their root field titled with the schema name; partial schemas
// list no required properties. Recursive references export as {}.
func (s *Schema) JSONSchema() (*js.Schema, error) {
	seen := map[reflect.Type]bool{}
	if s.config.Root && len(s.fields) == 1 {
		out, err := typeSchema(s.fields[0].Type, seen)
		if err != nil {
			return nil, err
		}
		out.Title = s.name
		return out, nil
	}
	if s.plan.goType != nil {
		seen[s.plan.goType] = true
	}
	out, err := objectSchema(s.plan, seen)
	if err != nil {
		return nil, err
	}
	out.Title = s.name
	return out, nil
}

func objectSchema(p *objectPlan, seen map[reflect.Type]bool) (*js.Schema, error) {
	out := &js.Schema{Type: "object", Properties: make(map[string]*js.Schema, len(p.fields))}
	for _, f := range p.fields {
		fs, err := typeSchema(f.Type, seen)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if f.HasDefault {
			if dv, iss := f.coerce(context.Background(), f.Default, RootPath()); len(iss) == 0 {
				fs.Default = dv.Interface()
			}
		}
		out.Properties[f.Name] = fs
		if f.Required && !f.HasDefault && !p.partial {
			out.Required = append(out.Required, f.Name)
		}
	}
	if p.unknown == UnknownStrict {
		out.AdditionalProperties = false
	}
	return out, nil
}

func typeSchema(t reflect.Type, seen map[reflect.Type]bool) (*js.Schema, error) {
	switch {
	case t == durationType:
		return &js.Schema{OneOf: []*js.Schema{{Type: "string", Format: "duration"}, {Type: "integer"}}}, nil
	case t == timeType:
		return &js.Schema{Type: "string", Format: "date-time"}, nil
	case isTextType(t):
		return &js.Schema{Type: "string"}, nil
	case t == numberType:
		return &js.Schema{Type: "number"}, nil
	}
	switch t.Kind() {
	case reflect.Bool:
		return &js.Schema{Type: "boolean"}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &js.Schema{Type: "integer"}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		zero := 0.0
		return &js.Schema{Type: "integer", Minimum: &zero}, nil
	case reflect.Float32, reflect.Float64:
		return &js.Schema{Type: "number"}, nil
	case reflect.String:
		return &js.Schema{Type: "string"}, nil
	case reflect.Interface:
		return &js.Schema{}, nil
	case reflect.Pointer:
		elem, err := typeSchema(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &js.Schema{OneOf: []*js.Schema{elem, {Type: "null"}}}, nil
	case reflect.Slice:
		if t.Elem() == byteType {
			return &js.Schema{Type: "string"}, nil
		}
		items, err := typeSchema(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "array", Items: items}, nil
	case reflect.Array:
		items, err := typeSchema(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		n := t.Len()
		return &js.Schema{Type: "array", Items: items, MinItems: &n, MaxItems: &n}, nil
	case reflect.Map:
		if !validMapKey(t.Key()) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
		}
		elem, err := typeSchema(t.Elem(), seen)
		if err != nil {
			return nil, err
		}
		return &js.Schema{Type: "object", AdditionalProperties: elem}, nil
	case reflect.Struct:
		if seen[t] {
			return &js.Schema{}, nil
		}
		seen[t] = true
		defer delete(seen, t)
		p, err := newObjectPlan(t, structFields(t), Config{}, coercerFor)
		if err != nil {
			return nil, err
		}
		return objectSchema(p, seen)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}
