package parseas

import (
	"context"
	"fmt"
	"reflect"
	"sort"
)

type fieldPlan struct {
	Field
	coerce coercer
}

// objectPlan is the compiled form of a field list. goType is nil for
// schemas that are not bound to a Go struct.
type objectPlan struct {
	goType  reflect.Type
	fields  []fieldPlan
	byName  map[string]int
	unknown UnknownPolicy
	partial bool
}

func newObjectPlan(goType reflect.Type, fields []Field, cfg Config, compile func(reflect.Type) (coercer, error)) (*objectPlan, error) {
	p := &objectPlan{
		goType:  goType,
		fields:  make([]fieldPlan, 0, len(fields)),
		byName:  make(map[string]int, len(fields)),
		unknown: cfg.Unknown,
		partial: cfg.Partial,
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: empty field name", ErrInvalidSchema)
		}
		if f.Type == nil {
			return nil, fmt.Errorf("%w: field %q has no type", ErrInvalidSchema, f.Name)
		}
		if _, dup := p.byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate field %q", ErrInvalidSchema, f.Name)
		}
		c, err := compile(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		p.byName[f.Name] = len(p.fields)
		p.fields = append(p.fields, fieldPlan{Field: f, coerce: c})
	}
	return p, nil
}

// checkDefaults coerces every declared default once. It runs after the
// whole type graph compiled, since recursive coercers are not callable
// while compilation is in progress.
func (p *objectPlan) checkDefaults() error {
	for _, f := range p.fields {
		if !f.HasDefault {
			continue
		}
		if _, iss := f.coerce(context.Background(), f.Default, RootPath().Field(f.Name)); len(iss) > 0 {
			return fmt.Errorf("%w: default of field %q: %v", ErrInvalidSchema, f.Name, iss)
		}
	}
	return nil
}

// withConfig returns a shallow copy of p reading cfg.
func (p *objectPlan) withConfig(cfg Config) *objectPlan {
	cp := *p
	cp.unknown = cfg.Unknown
	cp.partial = cfg.Partial
	return &cp
}

// mapping extracts the string-keyed view of v, or reports false when v is
// not object-shaped.
func (p *objectPlan) mapping(v any) (map[string]any, bool) {
	v = deref(v)
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		kt := rv.Type().Key()
		if kt.Kind() != reflect.String && kt.Kind() != reflect.Interface {
			return nil, false
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			if k.Kind() == reflect.Interface {
				k = k.Elem()
			}
			if k.Kind() != reflect.String {
				return nil, false
			}
			out[k.String()] = iter.Value().Interface()
		}
		return out, true
	case reflect.Struct:
		if p.goType == nil || rv.Type() != p.goType {
			return nil, false
		}
		out := make(map[string]any, len(p.fields))
		for _, f := range p.fields {
			// fields promoted through a nil embedded pointer are absent
			fv, err := rv.FieldByIndexErr(f.index)
			if err != nil {
				continue
			}
			out[f.Name] = fv.Interface()
		}
		return out, true
	}
	return nil, false
}

// fieldValues holds per-field results; an invalid Value marks an unset field.
type fieldValues struct {
	values   []reflect.Value
	presence []Presence
}

// run validates src against the plan: present fields are coerced, missing
// fields get their default or a required issue, and unknown keys follow
// the unknown-key policy.
func (p *objectPlan) run(ctx context.Context, src map[string]any, at PathRef) (fieldValues, Issues) {
	fv := fieldValues{
		values:   make([]reflect.Value, len(p.fields)),
		presence: make([]Presence, len(p.fields)),
	}
	var iss Issues
	add := func(more Issues) bool {
		iss = AppendIssues(iss, more...)
		return IsFailFast(ctx)
	}
	for i, f := range p.fields {
		fat := at.Field(f.Name)
		raw, ok := src[f.Name]
		switch {
		case ok:
			fv.presence[i] |= PresenceSeen
			if raw == nil {
				fv.presence[i] |= PresenceWasNull
			}
			val, fiss := f.coerce(ctx, raw, fat)
			if len(fiss) > 0 {
				if add(fiss) {
					return fv, iss
				}
				continue
			}
			fv.values[i] = val
		case p.partial:
		case f.HasDefault:
			val, fiss := f.coerce(ctx, f.Default, fat)
			if len(fiss) > 0 {
				if add(fiss) {
					return fv, iss
				}
				continue
			}
			fv.values[i] = val
			fv.presence[i] |= PresenceDefaultApplied
		case f.Required:
			if add(Issues{issueAt(fat, CodeRequired, "required property missing")}) {
				return fv, iss
			}
		}
	}
	if p.unknown == UnknownStrict {
		var extra []string
		for k := range src {
			if _, known := p.byName[k]; !known {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		for _, k := range extra {
			if add(Issues{issueAt(at.Field(k), CodeUnknownKey, "unknown property", "key", k)}) {
				return fv, iss
			}
		}
	}
	return fv, iss
}

// assemble builds the bound struct from validated values; unset fields
// keep their zero value.
func (p *objectPlan) assemble(fv fieldValues) reflect.Value {
	rv := reflect.New(p.goType).Elem()
	for i, f := range p.fields {
		if fv.values[i].IsValid() {
			fieldByIndexAlloc(rv, f.index).Set(fv.values[i])
		}
	}
	return rv
}

// fieldByIndexAlloc is reflect.Value.FieldByIndex that allocates nil
// embedded struct pointers on the way down.
func fieldByIndexAlloc(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v
}

func structCoercer(p *objectPlan) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		src, ok := p.mapping(v)
		if !ok {
			return reflect.Value{}, typeIssue(at, "object", v)
		}
		fv, iss := p.run(ctx, src, at)
		if len(iss) > 0 {
			return reflect.Value{}, iss
		}
		return p.assemble(fv), nil
	}
}
