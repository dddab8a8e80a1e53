package cache

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTTL matches the one-hour freshness the upstream rate limits
// make comfortable.
const DefaultTTL = time.Hour

// Transport is a read-through caching http.RoundTripper. Only successful
// GET responses are cached. Concurrent reads during a batch run are safe
// because writes are additive and idempotent per key.
type Transport struct {
	Base  http.RoundTripper
	Store Store
	TTL   time.Duration

	now func() time.Time
}

// NewTransport wraps base with a read-through cache. A nil base falls
// back to http.DefaultTransport.
func NewTransport(base http.RoundTripper, store Store, ttl time.Duration) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Transport{Base: base, Store: store, TTL: ttl, now: time.Now}
}

// RoundTrip serves fresh cached responses and delegates everything else
// to the base transport.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || t.Store == nil {
		return t.Base.RoundTrip(req)
	}

	key := req.Method + " " + req.URL.String()
	entry, err := t.Store.Get(req.Context(), key)
	if err != nil {
		slog.Warn("cache read failed, bypassing cache", "key", key, "error", err)
	} else if entry != nil && t.now().Sub(entry.CreatedAt) < t.TTL {
		return synthesize(req, entry), nil
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	entry = &Entry{
		Key:        key,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		CreatedAt:  t.now(),
	}
	if err := t.Store.Put(req.Context(), entry); err != nil {
		slog.Warn("cache write failed", "key", key, "error", err)
	}
	return resp, nil
}

func synthesize(req *http.Request, entry *Entry) *http.Response {
	header := make(http.Header, len(entry.Header))
	for k, v := range entry.Header {
		header[k] = v
	}
	return &http.Response{
		StatusCode:    entry.StatusCode,
		Status:        http.StatusText(entry.StatusCode),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
		Request:       req,
	}
}
