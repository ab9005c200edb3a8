package api

import (
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request UUID for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// TokenSource yields the current bearer token; "" means unauthenticated.
type TokenSource interface {
	Token() string
}

// bearerTransport reads the token immediately before each request.
type bearerTransport struct {
	next   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not mutate the caller's request.
	r := req.Clone(req.Context())
	if tok := t.tokens.Token(); tok != "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	if r.Header.Get(RequestIDHeader) == "" {
		if id, err := uuid.NewV4(); err == nil {
			r.Header.Set(RequestIDHeader, id.String())
		}
	}
	return t.next.RoundTrip(r)
}

// loggingTransport logs request metadata only, never payloads.
type loggingTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Duration("dur", time.Since(start)),
		zap.String("request_id", req.Header.Get(RequestIDHeader)),
	}
	if err != nil {
		t.log.Debug("http", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.log.Debug("http", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}
