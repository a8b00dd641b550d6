package load

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsafeProtocol is returned when a protocol that can materialize
	// arbitrary registered Go types (gob) is selected without AllowUnsafe.
	ErrUnsafeProtocol = errors.New("load: unsafe protocol refused; set AllowUnsafe to decode it")
	// ErrUnknownProtocol reports a protocol name outside the supported set.
	ErrUnknownProtocol = errors.New("load: unknown protocol")
	// ErrUnknownContentType reports a content type that maps to no protocol.
	ErrUnknownContentType = errors.New("load: unknown content type")
	// ErrUnknownEncoding reports a character encoding label that cannot be resolved.
	ErrUnknownEncoding = errors.New("load: unknown encoding")
	// ErrTrailingData is wrapped by DecodeError when a JSON document is
	// followed by more data.
	ErrTrailingData = errors.New("load: trailing data after document")
	// ErrInvalidUTF8 is wrapped by DecodeError for UTF-8 input that is not valid.
	ErrInvalidUTF8 = errors.New("load: invalid UTF-8")
)

// DecodeError wraps a failure of the selected protocol to decode the input.
type DecodeError struct {
	Protocol Protocol
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("load: decode %s: %v", e.Protocol, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FileError wraps a failure to open or read an input file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("load: read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
