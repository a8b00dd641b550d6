// Package middleware validates HTTP request bodies against parseas schemas.
package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"

	gojson "github.com/goccy/go-json"

	"github.com/reoring/parseas"
	"github.com/reoring/parseas/load"
)

// ctxKeyDecoded is a typed context key for storing Decoded[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyDecoded[T any] struct{}

// ContextWithDecoded attaches a Decoded[T] to the context.
func ContextWithDecoded[T any](ctx context.Context, db parseas.Decoded[T]) context.Context {
	return context.WithValue(ctx, ctxKeyDecoded[T]{}, db)
}

// DecodedFromContext retrieves a Decoded[T] from context.
func DecodedFromContext[T any](ctx context.Context) (parseas.Decoded[T], bool) {
	v, ok := ctx.Value(ctxKeyDecoded[T]{}).(parseas.Decoded[T])
	return v, ok
}

// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 1 << 20

// Options tunes Decode.
type Options struct {
	MaxBodyBytes int64
	FailFast     bool
	// Encoding is the fallback character encoding when the Content-Type
	// header carries no charset.
	Encoding string
}

// Decode returns middleware that validates the request body against s and
// stores the result as Decoded[T] in the request context. The Content-Type
// header selects JSON or YAML; gob is never accepted. Use
// parseas.Partial(s) for PATCH endpoints and read Decoded.Presence to learn
// which fields the client sent.
//
// Responses: 415 for unsupported media types, 400 for undecodable bodies,
// 413 for oversized bodies and 422 with ErrorPayload for validation issues.
func Decode[T any](s *parseas.Schema, opt Options) func(http.Handler) http.Handler {
	limit := opt.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
			if err != nil {
				var mbe *http.MaxBytesError
				if errors.As(err, &mbe) {
					writeError(w, http.StatusRequestEntityTooLarge, err)
					return
				}
				writeError(w, http.StatusBadRequest, err)
				return
			}
			v, err := load.Bytes(body, load.Options{
				ContentType: r.Header.Get("Content-Type"),
				Encoding:    opt.Encoding,
			})
			if err != nil {
				writeError(w, statusForLoad(err), err)
				return
			}
			ctx := r.Context()
			if opt.FailFast {
				ctx = parseas.ContextWithFailFast(ctx, true)
			}
			dm, err := parseas.Decode[T](ctx, s, v)
			if err != nil {
				if iss, ok := parseas.AsIssues(err); ok {
					writeJSON(w, http.StatusUnprocessableEntity, ErrorPayload(iss))
					return
				}
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithDecoded(ctx, dm)))
		})
	}
}

func statusForLoad(err error) int {
	switch {
	case errors.Is(err, load.ErrUnsafeProtocol),
		errors.Is(err, load.ErrUnknownContentType),
		errors.Is(err, load.ErrUnknownEncoding):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues parseas.Issues) map[string]any {
	out := make([]map[string]any, 0, len(issues))
	for _, it := range issues {
		out = append(out, map[string]any{
			"path":    it.Path,
			"loc":     it.Dotted(),
			"code":    it.Code,
			"message": it.Message,
		})
	}
	return map[string]any{"issues": out}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = gojson.NewEncoder(w).Encode(v)
}
