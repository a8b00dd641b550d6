package parseas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/parseas/load"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeUnknownKey    = "unknown_key"
	CodeTooSmall      = "too_small"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeInvalidFormat = "invalid_format"
	CodeOverflow      = "overflow"
	CodeParseError    = "parse_error"
	// Raised by Refine hooks that return a plain error.
	CodeCustom = "custom"
)

var (
	// ErrUnsupportedType is returned when a shape cannot be compiled into a
	// coercer (channels, funcs, complex numbers, maps with unusable keys...).
	ErrUnsupportedType = errors.New("parseas: unsupported type")
	// ErrInvalidSchema reports a malformed field declaration list.
	ErrInvalidSchema = errors.New("parseas: invalid schema")
	// ErrTypeMismatch is returned by Decode when T does not match the schema's bound type.
	ErrTypeMismatch = errors.New("parseas: type mismatch")

	// ErrUnsafeProtocol is returned when an object-graph protocol was selected
	// without WithAllowUnsafe.
	ErrUnsafeProtocol = load.ErrUnsafeProtocol
)

type (
	// DecodeError wraps failures of the selected decoding protocol.
	DecodeError = load.DecodeError
	// FileError wraps failures to open or read an input file.
	FileError = load.FileError
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // JSON Pointer (for example: /root/items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected type, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"min":0, "got":-1})
	// for i18n and observability.
	Params map[string]any
}

// Dotted renders the issue path in dotted form ("/root/0/name" -> "root.0.name").
// The document root renders as an empty string.
func (it Issue) Dotted() string {
	p := strings.TrimPrefix(it.Path, "/")
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
	}
	return strings.Join(parts, ".")
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /root/0
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// rebase moves child issue paths under base. Child paths are relative
// pointers ("/" or "" meaning base itself).
func rebase(base PathRef, child Issues) Issues {
	out := make(Issues, 0, len(child))
	bp := base.Pointer()
	if bp == "/" {
		bp = ""
	}
	for _, it := range child {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base.Pointer()
		case p[0] == '/':
			p = bp + p
		default:
			p = bp + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}
