// Package shapeexpr parses Go-like type expressions ("[]int",
// "map[string][]float64", "*time.Time") into reflect.Type values, so shapes
// can be chosen on the command line.
package shapeexpr

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("shapeexpr: syntax error")

var named = map[string]reflect.Type{
	"any":           reflect.TypeFor[any](),
	"interface{}":   reflect.TypeFor[any](),
	"object":        reflect.TypeFor[map[string]any](),
	"string":        reflect.TypeFor[string](),
	"bool":          reflect.TypeFor[bool](),
	"int":           reflect.TypeFor[int](),
	"int8":          reflect.TypeFor[int8](),
	"int16":         reflect.TypeFor[int16](),
	"int32":         reflect.TypeFor[int32](),
	"int64":         reflect.TypeFor[int64](),
	"uint":          reflect.TypeFor[uint](),
	"uint8":         reflect.TypeFor[uint8](),
	"uint16":        reflect.TypeFor[uint16](),
	"uint32":        reflect.TypeFor[uint32](),
	"uint64":        reflect.TypeFor[uint64](),
	"byte":          reflect.TypeFor[byte](),
	"rune":          reflect.TypeFor[rune](),
	"float32":       reflect.TypeFor[float32](),
	"float64":       reflect.TypeFor[float64](),
	"time.Time":     reflect.TypeFor[time.Time](),
	"time.Duration": reflect.TypeFor[time.Duration](),
	"json.Number":   reflect.TypeFor[json.Number](),
}

// Names lists the accepted type names.
func Names() []string {
	out := make([]string, 0, len(named))
	for k := range named {
		out = append(out, k)
	}
	return out
}

// Parse converts expr into a type. Whitespace is ignored.
func Parse(expr string) (reflect.Type, error) {
	s := strings.Join(strings.Fields(expr), "")
	if s == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrSyntax)
	}
	p := &parser{src: s}
	t, err := p.typ()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr string) reflect.Type {
	t, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) rest() string { return p.src[p.pos:] }

func (p *parser) typ() (reflect.Type, error) {
	switch r := p.rest(); {
	case strings.HasPrefix(r, "*"):
		p.pos++
		elem, err := p.typ()
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(r, "[]"):
		p.pos += 2
		elem, err := p.typ()
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(r, "["):
		end := strings.IndexByte(r, ']')
		if end < 0 {
			return nil, p.errorf("missing ]")
		}
		n, err := strconv.Atoi(r[1:end])
		if err != nil || n < 0 {
			return nil, p.errorf("bad array length %q", r[1:end])
		}
		p.pos += end + 1
		elem, err := p.typ()
		if err != nil {
			return nil, err
		}
		return reflect.ArrayOf(n, elem), nil
	case strings.HasPrefix(r, "map["):
		p.pos += len("map[")
		key, err := p.typ()
		if err != nil {
			return nil, err
		}
		if !strings.HasPrefix(p.rest(), "]") {
			return nil, p.errorf("missing ] after map key")
		}
		p.pos++
		val, err := p.typ()
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, p.errorf("map key %s is not comparable", key)
		}
		return reflect.MapOf(key, val), nil
	}
	return p.name()
}

func (p *parser) name() (reflect.Type, error) {
	r := p.rest()
	n := 0
	for n < len(r) && r[n] != ']' {
		n++
		if strings.HasSuffix(r[:n], "interface{}") {
			break
		}
	}
	word := r[:n]
	t, ok := named[word]
	if !ok {
		return nil, p.errorf("unknown type %q", word)
	}
	p.pos += n
	return t, nil
}
