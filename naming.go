package parseas

import "reflect"

// DisplayType renders t the way Go source spells it ("[]int",
// "map[string]pkg.User", "*time.Time"). A nil type renders as "<nil>".
func DisplayType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// DefaultTypeName returns the wrapper schema name used when no naming
// override is given: "ParsingModel[" + DisplayType(t) + "]".
func DefaultTypeName(t reflect.Type) string {
	return "ParsingModel[" + DisplayType(t) + "]"
}

// NameFunc computes a wrapper schema name from its shape.
type NameFunc func(reflect.Type) string

// Namer is a comparable handle for a NameFunc. Wrapper schemas built with
// the same *Namer share cache entries; two Namers never do, even when they
// wrap the same function.
type Namer struct {
	fn NameFunc
}

// NewNamer wraps fn. Keep the returned handle and reuse it across calls to
// benefit from caching.
func NewNamer(fn NameFunc) *Namer { return &Namer{fn: fn} }

// Name applies the namer to t. An empty result means the default name.
// A panic in the wrapped function is not recovered. The function runs
// outside any cache lock, so it may call ValidateAs or Cache.Lookup.
func (n *Namer) Name(t reflect.Type) string {
	if n == nil || n.fn == nil {
		return DefaultTypeName(t)
	}
	if s := n.fn(t); s != "" {
		return s
	}
	return DefaultTypeName(t)
}

// naming is the override carried by options.
type naming struct {
	name  string
	namer *Namer
}

// resolve returns the schema name for shape.
func (n naming) resolve(shape reflect.Type) string {
	switch {
	case n.name != "":
		return n.name
	case n.namer != nil:
		return n.namer.Name(shape)
	}
	return DefaultTypeName(shape)
}
