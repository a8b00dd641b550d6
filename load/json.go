package load

import (
	"bytes"
	"encoding/json"
	"io"
	"sync"

	gojson "github.com/goccy/go-json"
)

// JSONDecoder turns one JSON document into a generic value. Numbers must be
// returned as json.Number and trailing data must be rejected.
type JSONDecoder interface {
	Decode(b []byte) (any, error)
	Name() string
}

// JSONDecoderFunc adapts a function to JSONDecoder.
type JSONDecoderFunc func(b []byte) (any, error)

func (f JSONDecoderFunc) Decode(b []byte) (any, error) { return f(b) }
func (JSONDecoderFunc) Name() string                   { return "func" }

var (
	jsonDecoderMu      sync.RWMutex
	currentJSONDecoder JSONDecoder = goJSONDecoder{}
)

// SetJSONDecoder replaces the process-wide JSON decoder; nil values are ignored.
func SetJSONDecoder(d JSONDecoder) {
	if d == nil {
		return
	}
	jsonDecoderMu.Lock()
	currentJSONDecoder = d
	jsonDecoderMu.Unlock()
}

// UseDefaultJSONDecoder restores the goccy/go-json decoder.
func UseDefaultJSONDecoder() {
	jsonDecoderMu.Lock()
	currentJSONDecoder = goJSONDecoder{}
	jsonDecoderMu.Unlock()
}

// CurrentJSONDecoder returns the process-wide JSON decoder.
func CurrentJSONDecoder() JSONDecoder {
	jsonDecoderMu.RLock()
	d := currentJSONDecoder
	jsonDecoderMu.RUnlock()
	return d
}

// GoJSON returns the default decoder, backed by goccy/go-json.
func GoJSON() JSONDecoder { return goJSONDecoder{} }

// StdJSON returns a decoder backed by encoding/json.
func StdJSON() JSONDecoder { return stdJSONDecoder{} }

// JSONDecoderByName resolves "go-json" or "encoding/json" (also "std").
func JSONDecoderByName(name string) (JSONDecoder, bool) {
	switch name {
	case "go-json", "gojson", "":
		return goJSONDecoder{}, true
	case "encoding/json", "std":
		return stdJSONDecoder{}, true
	}
	return nil, false
}

type goJSONDecoder struct{}

func (goJSONDecoder) Name() string { return "go-json" }

func (goJSONDecoder) Decode(b []byte) (any, error) {
	dec := gojson.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return v, nil
}

type stdJSONDecoder struct{}

func (stdJSONDecoder) Name() string { return "encoding/json" }

func (stdJSONDecoder) Decode(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}
	return v, nil
}
