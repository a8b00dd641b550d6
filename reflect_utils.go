package parseas

import (
	"reflect"
	"strings"
)

// ResolveStructKey applies the repository-wide rule to resolve a struct field's
// external key used by the engine and PresenceMap.
// Priority: parseas:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if name, ok := parseTag(sf).name(); ok {
		return name
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			if jt[:i] != "" {
				return jt[:i]
			}
			return sf.Name
		}
		return jt
	}
	return sf.Name
}

// fieldTag holds the parsed parseas struct tag.
type fieldTag struct {
	rename     string
	required   bool
	optional   bool
	def        string
	hasDefault bool
	skip       bool
}

func (t fieldTag) name() (string, bool) {
	if t.skip {
		return "-", true
	}
	return t.rename, t.rename != ""
}

// parseTag reads `parseas:"name=id,required"`, `parseas:"optional"`,
// `parseas:"default=5"` and `parseas:"-"`. default= must come last because
// its value may contain commas.
func parseTag(sf reflect.StructField) fieldTag {
	var out fieldTag
	raw, ok := sf.Tag.Lookup("parseas")
	if !ok {
		return out
	}
	if raw == "-" {
		out.skip = true
		return out
	}
	for raw != "" {
		var part string
		if strings.HasPrefix(raw, "default=") {
			out.def, out.hasDefault = strings.TrimPrefix(raw, "default="), true
			break
		}
		part, raw, _ = strings.Cut(raw, ",")
		switch p := strings.TrimSpace(part); {
		case strings.HasPrefix(p, "name="):
			out.rename = strings.TrimPrefix(p, "name=")
		case p == "required":
			out.required = true
		case p == "optional":
			out.optional = true
		}
	}
	return out
}

func hasOmitEmpty(sf reflect.StructField) bool {
	jt := sf.Tag.Get("json")
	_, opts, _ := strings.Cut(jt, ",")
	for _, o := range strings.Split(opts, ",") {
		if o == "omitempty" || o == "omitzero" {
			return true
		}
	}
	return false
}

// structFields lists the wire fields of struct t in declaration order.
// Embedded structs without an explicit key are flattened; on key conflicts
// the shallower field wins, then the first declared.
func structFields(t reflect.Type) []Field {
	var out []Field
	pos := map[string]int{}
	depth := map[string]int{}

	// visiting guards against pointer-embedding cycles (type E struct{ *E }).
	visiting := map[reflect.Type]bool{t: true}
	var walk func(t reflect.Type, index []int, d int, viaPtr bool)
	walk = func(t reflect.Type, index []int, d int, viaPtr bool) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			idx := append(append([]int{}, index...), i)
			if et, ptr, ok := embeddedStruct(sf); ok {
				if visiting[et] {
					continue
				}
				visiting[et] = true
				walk(et, idx, d+1, viaPtr || ptr)
				delete(visiting, et)
				continue
			}
			if !sf.IsExported() {
				continue
			}
			key := ResolveStructKey(sf)
			if key == "-" || key == "" {
				continue
			}
			f := fieldFromStruct(sf, key, idx)
			if viaPtr && !parseTag(sf).required {
				f.Required = false
			}
			if j, ok := pos[key]; ok {
				if depth[key] <= d {
					continue
				}
				out[j] = f
				depth[key] = d
				continue
			}
			pos[key] = len(out)
			depth[key] = d
			out = append(out, f)
		}
	}
	walk(t, nil, 0, false)
	return out
}

// embeddedStruct reports whether sf is an untagged embedded struct (or
// pointer to struct) whose fields are promoted. Embedded pointers to
// unexported structs are skipped entirely since they cannot be allocated.
func embeddedStruct(sf reflect.StructField) (reflect.Type, bool, bool) {
	if !sf.Anonymous {
		return nil, false, false
	}
	if _, named := sf.Tag.Lookup("json"); named {
		return nil, false, false
	}
	if _, tagged := sf.Tag.Lookup("parseas"); tagged {
		return nil, false, false
	}
	t, ptr := sf.Type, false
	if t.Kind() == reflect.Pointer {
		t, ptr = t.Elem(), true
	}
	if t.Kind() != reflect.Struct || isTextType(t) {
		return nil, false, false
	}
	if ptr && !sf.IsExported() {
		return nil, false, false
	}
	return t, ptr, true
}

func fieldFromStruct(sf reflect.StructField, key string, idx []int) Field {
	tag := parseTag(sf)
	f := Field{Name: key, Type: sf.Type, index: idx}
	if tag.hasDefault {
		f.Default, f.HasDefault = tag.def, true
	}
	switch {
	case tag.required:
		f.Required = true
	case tag.optional, tag.hasDefault, hasOmitEmpty(sf):
		f.Required = false
	case sf.Type.Kind() == reflect.Pointer, sf.Type.Kind() == reflect.Interface:
		f.Required = false
	default:
		f.Required = true
	}
	return f
}
