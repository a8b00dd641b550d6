package parseas

import (
	"context"
	"fmt"
	"reflect"

	"github.com/reoring/parseas/load"
)

// Option configures a ValidateAs call.
type Option func(*options)

type options struct {
	naming   naming
	cache    *Cache
	failFast bool
	load     load.Options
}

func newOptions(opts []Option) options {
	o := options{cache: defaultCache}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithTypeName names the wrapper schema literally. An empty name means the
// default. It replaces a previous WithTypeNamer.
func WithTypeName(name string) Option {
	return func(o *options) { o.naming = naming{name: name} }
}

// WithTypeNamer names the wrapper schema with n. It replaces a previous
// WithTypeName.
func WithTypeNamer(n *Namer) Option {
	return func(o *options) { o.naming = naming{namer: n} }
}

// WithCache selects the schema cache; nil means DefaultCache.
func WithCache(c *Cache) Option {
	return func(o *options) {
		if c == nil {
			c = defaultCache
		}
		o.cache = c
	}
}

// WithFailFast stops validation at the first issue.
func WithFailFast() Option {
	return func(o *options) { o.failFast = true }
}

// WithContentType sets the media type of raw input ("application/json",
// "application/x-yaml; charset=latin1", "application/x-gob").
func WithContentType(ct string) Option {
	return func(o *options) { o.load.ContentType = ct }
}

// WithEncoding sets the character encoding of raw text input (default utf8).
func WithEncoding(enc string) Option {
	return func(o *options) { o.load.Encoding = enc }
}

// WithProtocol forces the decoding protocol of raw input.
func WithProtocol(p load.Protocol) Option {
	return func(o *options) { o.load.Protocol = p }
}

// WithAllowUnsafe permits protocols that can instantiate arbitrary
// registered types (gob). Only use it with trusted input.
func WithAllowUnsafe() Option {
	return func(o *options) { o.load.AllowUnsafe = true }
}

// WithJSONDecoder selects the JSON decoder for this call.
func WithJSONDecoder(d load.JSONDecoder) Option {
	return func(o *options) { o.load.JSON = d }
}

// ValidateAs validates v as a T without a predeclared schema. The wrapper
// schema for T (see RootSchema) is taken from the cache, v is validated as
// its root field, and the coerced value is returned.
//
//	ids, err := parseas.ValidateAs[[]int](ctx, []any{"1", 2, "3"}) // [1 2 3]
//
// Validation failures are returned as Issues with paths under /root.
func ValidateAs[T any](ctx context.Context, v any, opts ...Option) (T, error) {
	var zero T
	out, err := validateAs(ctx, reflect.TypeFor[T](), v, newOptions(opts))
	if err != nil {
		return zero, err
	}
	if out == nil {
		return zero, nil
	}
	return out.(T), nil
}

// ValidateAsType is ValidateAs for a shape known only at run time. The
// result has dynamic type shape (nil when shape is an interface and the
// value is null).
func ValidateAsType(ctx context.Context, shape reflect.Type, v any, opts ...Option) (any, error) {
	return validateAs(ctx, shape, v, newOptions(opts))
}

func validateAs(ctx context.Context, shape reflect.Type, v any, o options) (any, error) {
	s, err := o.cache.lookup(shape, o.naming)
	if err != nil {
		return nil, err
	}
	if o.failFast {
		ctx = ContextWithFailFast(ctx, true)
	}
	in, err := s.Validate(ctx, map[string]any{RootField: v})
	if err != nil {
		return nil, err
	}
	out, ok := in.Get(RootField)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no root value", ErrInvalidSchema, s.Name())
	}
	return out, nil
}
