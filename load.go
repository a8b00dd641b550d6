package parseas

import (
	"context"
	"reflect"

	"github.com/reoring/parseas/load"
)

// ValidateBytesAs decodes b (see package load for protocol and encoding
// selection) and validates the result as a T.
func ValidateBytesAs[T any](ctx context.Context, b []byte, opts ...Option) (T, error) {
	var zero T
	out, err := ValidateBytesAsType(ctx, reflect.TypeFor[T](), b, opts...)
	if err != nil || out == nil {
		return zero, err
	}
	return out.(T), nil
}

// ValidateStringAs is ValidateBytesAs for text that is already decoded;
// the encoding option is ignored.
func ValidateStringAs[T any](ctx context.Context, s string, opts ...Option) (T, error) {
	var zero T
	out, err := ValidateStringAsType(ctx, reflect.TypeFor[T](), s, opts...)
	if err != nil || out == nil {
		return zero, err
	}
	return out.(T), nil
}

// ValidateFileAs reads path, decodes it and validates the result as a T.
// The extension selects the protocol unless WithProtocol or
// WithContentType is given.
func ValidateFileAs[T any](ctx context.Context, path string, opts ...Option) (T, error) {
	var zero T
	out, err := ValidateFileAsType(ctx, reflect.TypeFor[T](), path, opts...)
	if err != nil || out == nil {
		return zero, err
	}
	return out.(T), nil
}

// ValidateBytesAsType is ValidateBytesAs for a run-time shape.
func ValidateBytesAsType(ctx context.Context, shape reflect.Type, b []byte, opts ...Option) (any, error) {
	o := newOptions(opts)
	v, err := load.Bytes(b, o.load)
	if err != nil {
		return nil, err
	}
	return validateAs(ctx, shape, v, o)
}

// ValidateStringAsType is ValidateStringAs for a run-time shape.
func ValidateStringAsType(ctx context.Context, shape reflect.Type, s string, opts ...Option) (any, error) {
	o := newOptions(opts)
	v, err := load.String(s, o.load)
	if err != nil {
		return nil, err
	}
	return validateAs(ctx, shape, v, o)
}

// ValidateFileAsType is ValidateFileAs for a run-time shape.
func ValidateFileAsType(ctx context.Context, shape reflect.Type, path string, opts ...Option) (any, error) {
	o := newOptions(opts)
	v, err := load.File(path, o.load)
	if err != nil {
		return nil, err
	}
	return validateAs(ctx, shape, v, o)
}
