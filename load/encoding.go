package load

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is the character encoding assumed for text protocols.
const DefaultEncoding = "utf8"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func isUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf8", "utf-8", "unicode-1-1-utf-8":
		return true
	}
	return false
}

// decodeText converts b from the named character encoding to UTF-8. Labels
// follow the WHATWG Encoding Standard ("latin1", "shift_jis", "utf-16le"...).
func decodeText(b []byte, label string) ([]byte, error) {
	if isUTF8Label(label) {
		b = bytes.TrimPrefix(b, utf8BOM)
		if !utf8.Valid(b) {
			return nil, ErrInvalidUTF8
		}
		return b, nil
	}
	enc, err := htmlindex.Get(strings.TrimSpace(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return nil, err
	}
	return bytes.TrimPrefix(out, utf8BOM), nil
}
