package parseas

import (
	"context"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// coercer validates a generic value against one Go type and returns the
// coerced value, which always has exactly that type. at is the path of v.
type coercer func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues)

var (
	// coercers memoizes compiled coercers per type; compilation is pure so
	// concurrent duplicates are harmless and LoadOrStore keeps one.
	coercers sync.Map // reflect.Type -> coercer

	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	durationType        = reflect.TypeFor[time.Duration]()
	numberType          = reflect.TypeFor[json.Number]()
	byteType            = reflect.TypeFor[byte]()
)

// coercerFor returns the compiled coercer for t.
func coercerFor(t reflect.Type) (coercer, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnsupportedType)
	}
	if c, ok := coercers.Load(t); ok {
		return c.(coercer), nil
	}
	cp := &compiler{pending: map[reflect.Type]*coercer{}, done: map[reflect.Type]coercer{}}
	c, err := cp.compile(t)
	if err != nil {
		return nil, err
	}
	// Publish only once the whole graph compiled, so no stored coercer can
	// point at an unfilled recursion slot.
	for dt, dc := range cp.done {
		coercers.LoadOrStore(dt, dc)
	}
	actual, _ := coercers.LoadOrStore(t, c)
	return actual.(coercer), nil
}

// compiler holds per-call state for one type graph.
type compiler struct {
	pending map[reflect.Type]*coercer // types being compiled (recursion)
	done    map[reflect.Type]coercer
}

func (cp *compiler) compile(t reflect.Type) (coercer, error) {
	if c, ok := coercers.Load(t); ok {
		return c.(coercer), nil
	}
	if c, ok := cp.done[t]; ok {
		return c, nil
	}
	if slot, ok := cp.pending[t]; ok {
		return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
			return (*slot)(ctx, v, at)
		}, nil
	}
	slot := new(coercer)
	cp.pending[t] = slot
	c, err := cp.build(t)
	delete(cp.pending, t)
	if err != nil {
		return nil, err
	}
	if hasRefiner(t) {
		c = withRefine(c)
	}
	*slot = c
	cp.done[t] = c
	return c, nil
}

func (cp *compiler) build(t reflect.Type) (coercer, error) {
	switch {
	case t == durationType:
		return durationCoercer(), nil
	case isTextType(t):
		var fallback coercer
		if t.Kind() != reflect.Struct {
			fb, err := cp.buildKind(t)
			if err != nil {
				return nil, err
			}
			fallback = fb
		}
		return textCoercer(t, fallback), nil
	case t == numberType:
		return numberCoercer(), nil
	}
	return cp.buildKind(t)
}

func (cp *compiler) buildKind(t reflect.Type) (coercer, error) {
	switch t.Kind() {
	case reflect.Bool:
		return boolCoercer(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return intCoercer(t), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintCoercer(t), nil
	case reflect.Float32, reflect.Float64:
		return floatCoercer(t), nil
	case reflect.String:
		return stringCoercer(t), nil
	case reflect.Interface:
		return ifaceCoercer(t), nil
	case reflect.Pointer:
		elem, err := cp.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return ptrCoercer(t, elem), nil
	case reflect.Slice:
		elem, err := cp.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		if t.Elem() == byteType {
			return bytesCoercer(t, sliceCoercer(t, elem)), nil
		}
		return sliceCoercer(t, elem), nil
	case reflect.Array:
		elem, err := cp.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return arrayCoercer(t, elem), nil
	case reflect.Map:
		if !validMapKey(t.Key()) {
			return nil, fmt.Errorf("%w: map key %s in %s", ErrUnsupportedType, t.Key(), t)
		}
		key, err := cp.compile(t.Key())
		if err != nil {
			return nil, err
		}
		elem, err := cp.compile(t.Elem())
		if err != nil {
			return nil, err
		}
		return mapCoercer(t, key, elem), nil
	case reflect.Struct:
		p, err := newObjectPlan(t, structFields(t), Config{}, cp.compile)
		if err != nil {
			return nil, err
		}
		return structCoercer(p), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}

// isTextType reports whether t decodes itself from text (time.Time, net.IP...).
func isTextType(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		return false
	}
	return reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func validMapKey(t reflect.Type) bool {
	if isTextType(t) {
		return true
	}
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func withRefine(c coercer) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		rv, iss := c(ctx, v, at)
		if len(iss) > 0 {
			return rv, iss
		}
		if !rv.CanAddr() {
			cp := reflect.New(rv.Type()).Elem()
			cp.Set(rv)
			rv = cp
		}
		if riss := applyRefine(ctx, rv, at); len(riss) > 0 {
			return reflect.Value{}, riss
		}
		return rv, nil
	}
}
