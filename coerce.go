package parseas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// deref follows pointers in v; a nil pointer yields nil.
func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return v
	}
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func typeIssue(at PathRef, want string, v any) Issues {
	return Issues{issueAt(at, CodeInvalidType, "expected "+want, "expected", want, "got", kindName(v))}
}

// kindName names the generic kind of v for issue params.
func kindName(v any) string {
	if v == nil {
		return "null"
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// ---- numbers ----

func intCoercer(t reflect.Type) coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		if v != nil && reflect.TypeOf(v) == t {
			return reflect.ValueOf(v), nil
		}
		n, iss := toInt64(v, at)
		if len(iss) > 0 {
			return reflect.Value{}, iss
		}
		out := reflect.New(t).Elem()
		if out.OverflowInt(n) {
			return reflect.Value{}, Issues{issueAt(at, CodeOverflow, "value does not fit in "+t.String(), "got", n)}
		}
		out.SetInt(n)
		return out, nil
	}
}

func toInt64(v any, at PathRef) (int64, Issues) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, Issues{issueAt(at, CodeOverflow, "value does not fit in int64", "got", u)}
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return floatToInt(rv.Float(), at)
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		n, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return 0, Issues{issueAt(at, CodeOverflow, "value does not fit in int64", "got", s)}
		}
		// "3.0", "1e3" and json.Number exponents are integral too.
		if f, ferr := strconv.ParseFloat(s, 64); ferr == nil {
			return floatToInt(f, at)
		}
	}
	return 0, typeIssue(at, "integer", v)
}

func floatToInt(f float64, at PathRef) (int64, Issues) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, Issues{issueAt(at, CodeInvalidType, "expected integer, got fractional number", "expected", "integer", "got", f)}
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, Issues{issueAt(at, CodeOverflow, "value does not fit in int64", "got", f)}
	}
	return int64(f), nil
}

func uintCoercer(t reflect.Type) coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		if v != nil && reflect.TypeOf(v) == t {
			return reflect.ValueOf(v), nil
		}
		n, iss := toUint64(v, at)
		if len(iss) > 0 {
			return reflect.Value{}, iss
		}
		out := reflect.New(t).Elem()
		if out.OverflowUint(n) {
			return reflect.Value{}, Issues{issueAt(at, CodeOverflow, "value does not fit in "+t.String(), "got", n)}
		}
		out.SetUint(n)
		return out, nil
	}
}

func toUint64(v any, at PathRef) (uint64, Issues) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.String:
		s := strings.TrimSpace(rv.String())
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, nil
		} else if errors.Is(err, strconv.ErrRange) {
			return 0, Issues{issueAt(at, CodeOverflow, "value does not fit in uint64", "got", s)}
		}
	}
	if rv.Kind() == reflect.Float32 || rv.Kind() == reflect.Float64 {
		f := rv.Float()
		if f >= 0 && f == math.Trunc(f) && f < math.MaxUint64 {
			return uint64(f), nil
		}
	}
	n, iss := toInt64(v, at)
	if len(iss) > 0 {
		return 0, iss
	}
	if n < 0 {
		return 0, Issues{issueAt(at, CodeTooSmall, "must be >= 0", "min", 0, "got", n)}
	}
	return uint64(n), nil
}

func floatCoercer(t reflect.Type) coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		var f float64
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Float32, reflect.Float64:
			f = rv.Float()
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			f = float64(rv.Int())
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			f = float64(rv.Uint())
		case reflect.String:
			s := strings.TrimSpace(rv.String())
			pf, err := strconv.ParseFloat(s, 64)
			if err != nil {
				if errors.Is(err, strconv.ErrRange) {
					return reflect.Value{}, Issues{issueAt(at, CodeOverflow, "value does not fit in float64", "got", s)}
				}
				return reflect.Value{}, typeIssue(at, "number", v)
			}
			f = pf
		default:
			return reflect.Value{}, typeIssue(at, "number", v)
		}
		out := reflect.New(t).Elem()
		if out.OverflowFloat(f) {
			return reflect.Value{}, Issues{issueAt(at, CodeOverflow, "value does not fit in "+t.String(), "got", f)}
		}
		out.SetFloat(f)
		return out, nil
	}
}

func numberCoercer() coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		rv := reflect.ValueOf(v)
		var s string
		switch rv.Kind() {
		case reflect.String:
			s = strings.TrimSpace(rv.String())
			if _, err := strconv.ParseFloat(s, 64); err != nil && !errors.Is(err, strconv.ErrRange) {
				return reflect.Value{}, typeIssue(at, "number", v)
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			s = strconv.FormatInt(rv.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			s = strconv.FormatUint(rv.Uint(), 10)
		case reflect.Float32, reflect.Float64:
			s = strconv.FormatFloat(rv.Float(), 'g', -1, 64)
		default:
			return reflect.Value{}, typeIssue(at, "number", v)
		}
		return reflect.ValueOf(json.Number(s)), nil
	}
}

// ---- bool / string ----

func boolCoercer(t reflect.Type) coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		rv := reflect.ValueOf(v)
		var b bool
		ok := true
		switch rv.Kind() {
		case reflect.Bool:
			b = rv.Bool()
		case reflect.String:
			switch strings.ToLower(strings.TrimSpace(rv.String())) {
			case "true", "t", "yes", "y", "on", "1":
				b = true
			case "false", "f", "no", "n", "off", "0":
				b = false
			default:
				ok = false
			}
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n := rv.Int()
			b, ok = n == 1, n == 0 || n == 1
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			n := rv.Uint()
			b, ok = n == 1, n == 0 || n == 1
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			b, ok = f == 1, f == 0 || f == 1
		default:
			ok = false
		}
		if !ok {
			return reflect.Value{}, typeIssue(at, "boolean", v)
		}
		out := reflect.New(t).Elem()
		out.SetBool(b)
		return out, nil
	}
}

func stringCoercer(t reflect.Type) coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		if v != nil && reflect.TypeOf(v) == t {
			return reflect.ValueOf(v), nil
		}
		rv := reflect.ValueOf(v)
		var s string
		switch rv.Kind() {
		case reflect.String:
			s = rv.String()
		case reflect.Slice:
			if rv.Type().Elem().Kind() != reflect.Uint8 {
				return reflect.Value{}, typeIssue(at, "string", v)
			}
			s = string(rv.Bytes())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			s = strconv.FormatInt(rv.Int(), 10)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
			s = strconv.FormatUint(rv.Uint(), 10)
		case reflect.Float32, reflect.Float64:
			s = strconv.FormatFloat(rv.Float(), 'g', -1, 64)
		default:
			return reflect.Value{}, typeIssue(at, "string", v)
		}
		out := reflect.New(t).Elem()
		out.SetString(s)
		return out, nil
	}
}

// ---- text and durations ----

// textCoercer decodes string input through UnmarshalText; other input goes
// to fallback when t has a usable kind of its own.
func textCoercer(t reflect.Type, fallback coercer) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		if v != nil && reflect.TypeOf(v) == t {
			return reflect.ValueOf(v), nil
		}
		rv := reflect.ValueOf(v)
		var text []byte
		switch {
		case rv.Kind() == reflect.String:
			text = []byte(rv.String())
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			text = rv.Bytes()
		case fallback != nil:
			return fallback(ctx, v, at)
		default:
			return reflect.Value{}, typeIssue(at, "string", v)
		}
		p := reflect.New(t)
		if err := p.Interface().(interface{ UnmarshalText([]byte) error }).UnmarshalText(text); err != nil {
			it := issueAt(at, CodeInvalidFormat, "cannot parse as "+t.String(), "format", t.String())
			it.Cause = err
			return reflect.Value{}, Issues{it}
		}
		return p.Elem(), nil
	}
}

func durationCoercer() coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		v = deref(v)
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			d, err := time.ParseDuration(strings.TrimSpace(rv.String()))
			if err != nil {
				// json.Number and plain digit strings carry nanoseconds.
				if n, iss := toInt64(v, at); len(iss) == 0 {
					return reflect.ValueOf(time.Duration(n)), nil
				}
				it := issueAt(at, CodeInvalidFormat, "cannot parse as duration", "format", "duration")
				it.Cause = err
				return reflect.Value{}, Issues{it}
			}
			return reflect.ValueOf(d), nil
		}
		n, iss := toInt64(v, at)
		if len(iss) > 0 {
			return reflect.Value{}, iss
		}
		return reflect.ValueOf(time.Duration(n)), nil
	}
}

// ---- any / pointers ----

func ifaceCoercer(t reflect.Type) coercer {
	return func(_ context.Context, v any, at PathRef) (reflect.Value, Issues) {
		out := reflect.New(t).Elem()
		if v == nil {
			return out, nil
		}
		if !reflect.TypeOf(v).Implements(t) {
			return reflect.Value{}, Issues{issueAt(at, CodeInvalidType, "expected value implementing "+t.String(),
				"expected", t.String(), "got", kindName(v))}
		}
		out.Set(reflect.ValueOf(v))
		return out, nil
	}
}

func ptrCoercer(t reflect.Type, elem coercer) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		if isNil(v) {
			return reflect.Zero(t), nil
		}
		ev, iss := elem(ctx, v, at)
		if len(iss) > 0 {
			return reflect.Value{}, iss
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(ev)
		return p, nil
	}
}

// ---- sequences ----

func sequenceOf(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(deref(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}

// fill coerces every element of src into dst.
func fill(ctx context.Context, dst, src reflect.Value, elem coercer, at PathRef) Issues {
	var iss Issues
	for i := 0; i < src.Len(); i++ {
		ev, eiss := elem(ctx, src.Index(i).Interface(), at.Index(i))
		if len(eiss) > 0 {
			iss = AppendIssues(iss, eiss...)
			if IsFailFast(ctx) {
				return iss
			}
			continue
		}
		dst.Index(i).Set(ev)
	}
	return iss
}

func sliceCoercer(t reflect.Type, elem coercer) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		src, ok := sequenceOf(v)
		if !ok {
			return reflect.Value{}, typeIssue(at, "array", v)
		}
		out := reflect.MakeSlice(t, src.Len(), src.Len())
		if iss := fill(ctx, out, src, elem, at); len(iss) > 0 {
			return reflect.Value{}, iss
		}
		return out, nil
	}
}

// bytesCoercer also accepts strings and byte slices for []byte targets.
func bytesCoercer(t reflect.Type, elementwise coercer) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		rv := reflect.ValueOf(deref(v))
		var b []byte
		switch {
		case rv.Kind() == reflect.String:
			b = []byte(rv.String())
		case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
			b = rv.Bytes()
		default:
			return elementwise(ctx, v, at)
		}
		out := reflect.MakeSlice(t, len(b), len(b))
		reflect.Copy(out, reflect.ValueOf(b))
		return out, nil
	}
}

func arrayCoercer(t reflect.Type, elem coercer) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		src, ok := sequenceOf(v)
		if !ok {
			return reflect.Value{}, typeIssue(at, "array", v)
		}
		switch n := src.Len(); {
		case n < t.Len():
			return reflect.Value{}, Issues{issueAt(at, CodeTooShort, fmt.Sprintf("expected %d items", t.Len()), "len", t.Len(), "got", n)}
		case n > t.Len():
			return reflect.Value{}, Issues{issueAt(at, CodeTooLong, fmt.Sprintf("expected %d items", t.Len()), "len", t.Len(), "got", n)}
		}
		out := reflect.New(t).Elem()
		if iss := fill(ctx, out, src, elem, at); len(iss) > 0 {
			return reflect.Value{}, iss
		}
		return out, nil
	}
}

// ---- maps ----

func mapCoercer(t reflect.Type, key, elem coercer) coercer {
	return func(ctx context.Context, v any, at PathRef) (reflect.Value, Issues) {
		src := reflect.ValueOf(deref(v))
		if src.Kind() != reflect.Map {
			return reflect.Value{}, typeIssue(at, "object", v)
		}
		type entry struct {
			name string
			k    reflect.Value
		}
		entries := make([]entry, 0, src.Len())
		for _, k := range src.MapKeys() {
			entries = append(entries, entry{name: fmt.Sprint(k.Interface()), k: k})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

		out := reflect.MakeMapWithSize(t, len(entries))
		var iss Issues
		for _, e := range entries {
			kat := at.Field(e.name)
			kv, kiss := key(ctx, e.k.Interface(), kat)
			if len(kiss) > 0 {
				for i := range kiss {
					kiss[i].Hint = "invalid key: " + kiss[i].Hint
				}
				iss = AppendIssues(iss, kiss...)
				if IsFailFast(ctx) {
					return reflect.Value{}, iss
				}
				continue
			}
			vv, viss := elem(ctx, src.MapIndex(e.k).Interface(), kat)
			if len(viss) > 0 {
				iss = AppendIssues(iss, viss...)
				if IsFailFast(ctx) {
					return reflect.Value{}, iss
				}
				continue
			}
			out.SetMapIndex(kv, vv)
		}
		if len(iss) > 0 {
			return reflect.Value{}, iss
		}
		return out, nil
	}
}
