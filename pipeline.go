package parseas

import (
	"context"
	"reflect"
)

// Refiner provides an optional hook run after a value of the implementing
// type was coerced, for cross-field validation. Implement it on the value or
// on the pointer receiver. A returned Issues value is rebased under the
// value's path; any other error becomes a single CodeCustom issue.
type Refiner interface {
	Refine(ctx context.Context) error
}

var refinerType = reflect.TypeFor[Refiner]()

// hasRefiner reports whether t or *t implements Refiner.
func hasRefiner(t reflect.Type) bool {
	if t.Kind() == reflect.Interface {
		return false
	}
	return t.Implements(refinerType) || reflect.PointerTo(t).Implements(refinerType)
}

// applyRefine calls the Refiner hook of rv when present. rv must be
// addressable for pointer-receiver hooks.
func applyRefine(ctx context.Context, rv reflect.Value, at PathRef) Issues {
	var r Refiner
	switch {
	case rv.Type().Implements(refinerType):
		r, _ = rv.Interface().(Refiner)
	case rv.CanAddr() && rv.Addr().Type().Implements(refinerType):
		r, _ = rv.Addr().Interface().(Refiner)
	}
	if r == nil {
		return nil
	}
	err := r.Refine(ctx)
	if err == nil {
		return nil
	}
	if iss, ok := AsIssues(err); ok {
		return rebase(at, iss)
	}
	it := at.Issue(CodeCustom, err.Error())
	it.Cause = err
	return Issues{it}
}

// ---- Validation context options ----

type contextKey int

const (
	_ctxKeyFailFast contextKey = iota
)

// ContextWithFailFast returns a child context that marks fail-fast validation.
// The engine stops at the first issue instead of aggregating.
func ContextWithFailFast(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, _ctxKeyFailFast, enabled)
}

// IsFailFast reports whether the current validation should stop on the first issue.
func IsFailFast(ctx context.Context) bool {
	v := ctx.Value(_ctxKeyFailFast)
	b, _ := v.(bool)
	return b
}
