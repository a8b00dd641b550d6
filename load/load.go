// Package load decodes raw bytes, strings and files into generic values
// (map[string]any, []any, json.Number, string, bool, nil) ready for
// validation. It selects the decoding protocol from an explicit choice, a
// content type or a file extension, and converts legacy character
// encodings to UTF-8 first.
package load

import (
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Protocol names a decoding format.
type Protocol string

const (
	ProtocolJSON Protocol = "json"
	ProtocolYAML Protocol = "yaml"
	// ProtocolGob is Go's object-graph format. Decoding it can instantiate
	// any registered type, so it requires Options.AllowUnsafe.
	ProtocolGob Protocol = "gob"
)

// Unsafe reports whether p must be explicitly allowed.
func (p Protocol) Unsafe() bool { return p == ProtocolGob }

// text reports whether p decodes character data (and so honors Encoding).
func (p Protocol) text() bool { return p != ProtocolGob }

// ParseProtocol resolves a protocol name, case-insensitively.
func ParseProtocol(s string) (Protocol, error) {
	switch p := Protocol(strings.ToLower(strings.TrimSpace(s))); p {
	case ProtocolJSON, ProtocolYAML, ProtocolGob:
		return p, nil
	case "yml":
		return ProtocolYAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
}

// Options controls how input is decoded. The zero value decodes UTF-8 JSON
// with the process-wide JSON decoder.
type Options struct {
	// Protocol forces the protocol. When empty it is inferred from
	// ContentType, then the file extension, then JSON.
	Protocol Protocol
	// ContentType is a media type such as "application/json; charset=latin1".
	ContentType string
	// Encoding is the character encoding of text input (default utf8).
	Encoding string
	// AllowUnsafe permits ProtocolGob.
	AllowUnsafe bool
	// JSON overrides the process-wide JSON decoder.
	JSON JSONDecoder
}

var (
	loggerMu sync.RWMutex
	logger   *slog.Logger
)

// SetLogger routes debug logs to l; nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	logger = l
	loggerMu.Unlock()
}

func log() *slog.Logger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Bytes decodes b.
func Bytes(b []byte, o Options) (any, error) {
	p, enc, err := resolve(o, "")
	if err != nil {
		return nil, err
	}
	if err := checkUnsafe(p, o); err != nil {
		return nil, err
	}
	if p.text() {
		if b, err = decodeText(b, enc); err != nil {
			return nil, &DecodeError{Protocol: p, Err: err}
		}
	}
	return decode(p, b, o)
}

// String decodes s. Text is already Unicode, so Encoding and any charset
// parameter are ignored.
func String(s string, o Options) (any, error) {
	p, _, err := resolve(o, "")
	if err != nil {
		return nil, err
	}
	if err := checkUnsafe(p, o); err != nil {
		return nil, err
	}
	return decode(p, []byte(s), o)
}

// File reads and decodes the file at path. When neither Protocol nor
// ContentType is set, the extension selects the protocol (.json/.js JSON,
// .yaml/.yml YAML, .gob gob). Unsafe protocols are refused before the file
// is opened.
func File(path string, o Options) (any, error) {
	p, enc, err := resolve(o, path)
	if err != nil {
		return nil, err
	}
	if err := checkUnsafe(p, o); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	if p.text() {
		if b, err = decodeText(b, enc); err != nil {
			return nil, &DecodeError{Protocol: p, Err: err}
		}
	}
	return decode(p, b, o)
}

func checkUnsafe(p Protocol, o Options) error {
	if p.Unsafe() && !o.AllowUnsafe {
		return fmt.Errorf("%w: %s", ErrUnsafeProtocol, p)
	}
	return nil
}

// resolve picks the protocol and character encoding for one input.
func resolve(o Options, path string) (Protocol, string, error) {
	enc := o.Encoding
	if o.Protocol != "" {
		p, err := ParseProtocol(string(o.Protocol))
		if err != nil {
			return "", "", err
		}
		if o.ContentType != "" && enc == "" {
			enc = charsetOf(o.ContentType)
		}
		return p, enc, nil
	}
	if o.ContentType != "" {
		p, charset, err := protocolForContentType(o.ContentType)
		if err != nil {
			return "", "", err
		}
		if enc == "" {
			enc = charset
		}
		log().Debug("load: protocol from content type", "content_type", o.ContentType, "protocol", p)
		return p, enc, nil
	}
	if path != "" {
		if p, ok := protocolForExt(filepath.Ext(path)); ok {
			log().Debug("load: protocol from file extension", "path", path, "protocol", p)
			return p, enc, nil
		}
	}
	return ProtocolJSON, enc, nil
}

func charsetOf(contentType string) string {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// protocolForContentType maps a media type to a protocol by its suffix:
// json, javascript and +json are JSON; yaml and yml are YAML; gob is gob.
func protocolForContentType(contentType string) (Protocol, string, error) {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch {
	case strings.HasSuffix(mt, "json"), strings.HasSuffix(mt, "javascript"):
		return ProtocolJSON, params["charset"], nil
	case strings.HasSuffix(mt, "yaml"), strings.HasSuffix(mt, "yml"):
		return ProtocolYAML, params["charset"], nil
	case strings.HasSuffix(mt, "gob"):
		return ProtocolGob, params["charset"], nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
}

func protocolForExt(ext string) (Protocol, bool) {
	switch strings.ToLower(ext) {
	case ".json", ".js":
		return ProtocolJSON, true
	case ".yaml", ".yml":
		return ProtocolYAML, true
	case ".gob":
		return ProtocolGob, true
	}
	return "", false
}

func decode(p Protocol, b []byte, o Options) (any, error) {
	var (
		v   any
		err error
	)
	switch p {
	case ProtocolJSON:
		d := o.JSON
		if d == nil {
			d = CurrentJSONDecoder()
		}
		v, err = d.Decode(b)
	case ProtocolYAML:
		v, err = decodeYAML(b)
	case ProtocolGob:
		v, err = decodeGob(b)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProtocol, p)
	}
	if err != nil {
		return nil, &DecodeError{Protocol: p, Err: err}
	}
	return v, nil
}
