// Package parseas validates and coerces untyped data into typed Go values.
//
// It provides:
//
// - ValidateAs[T]: validate an in-memory value (decoded JSON, YAML, form data) as
// any Go type without declaring a schema first
// - ValidateBytesAs / ValidateStringAs / ValidateFileAs: decode raw input
// (JSON, YAML, gob; see package load) and validate it the same way
// - Schema, SchemaFor and Partial: named record shapes and their
// all-optional variants for PATCH-style updates
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Behind ValidateAs sits a wrapper schema named "ParsingModel[<type>]" with a
// single required field "root". Wrapper schemas are memoized in a bounded LRU
// Cache keyed by the type and the naming override, so repeated calls reuse
// one compiled schema.
//
// Typical usage:
//
//	ids, err := parseas.ValidateAs[[]int](ctx, []any{"1", 2, "3"})
//	users, err := parseas.ValidateFileAs[[]User](ctx, "users.yaml")
//
//	patch := parseas.Partial(parseas.MustSchemaFor[User]())
//	dm, err := parseas.Decode[User](ctx, patch, body)
//	// dm.Presence tells which fields the client sent.
package parseas
