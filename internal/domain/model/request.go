// Package model defines the value types passed between a site's spider, the
// fetcher/renderer, and the storage pipeline: Request, Response, and Item.
// All three are immutable after construction.
package model

import (
	"fmt"
	"net/url"
)

// Request describes one HTTP operation a spider wants performed, plus
// spider-private metadata carried through to the parse step.
type Request struct {
	url        string
	method     string
	headers    map[string]string
	body       []byte
	useRender  bool
	metadata   map[string]any
}

// NewRequest builds a Request for method GET against absoluteURL. Use the
// With* methods to attach headers, a body, render hints, or metadata before
// the request is enqueued; Request is treated as immutable once built.
func NewRequest(absoluteURL string) (Request, error) {
	u, err := url.Parse(absoluteURL)
	if err != nil {
		return Request{}, fmt.Errorf("model: parse request url: %w", err)
	}
	if !u.IsAbs() {
		return Request{}, fmt.Errorf("model: request url %q is not absolute", absoluteURL)
	}
	return Request{
		url:    absoluteURL,
		method: "GET",
	}, nil
}

// WithMethod returns a copy of the request using the given HTTP method.
func (r Request) WithMethod(method string) Request {
	r.method = method
	return r
}

// WithHeaders returns a copy of the request with headers merged over any
// already present (the supplied headers win on key collision).
func (r Request) WithHeaders(headers map[string]string) Request {
	merged := make(map[string]string, len(r.headers)+len(headers))
	for k, v := range r.headers {
		merged[k] = v
	}
	for k, v := range headers {
		merged[k] = v
	}
	r.headers = merged
	return r
}

// WithBody returns a copy of the request carrying the given body bytes.
func (r Request) WithBody(body []byte) Request {
	r.body = body
	return r
}

// WithRender returns a copy of the request with the use-render flag set.
func (r Request) WithRender(useRender bool) Request {
	r.useRender = useRender
	return r
}

// WithMetadata returns a copy of the request with metadata merged over any
// already present (the supplied entries win on key collision).
func (r Request) WithMetadata(metadata map[string]any) Request {
	merged := make(map[string]any, len(r.metadata)+len(metadata))
	for k, v := range r.metadata {
		merged[k] = v
	}
	for k, v := range metadata {
		merged[k] = v
	}
	r.metadata = merged
	return r
}

// URL returns the absolute request URL.
func (r Request) URL() string { return r.url }

// Method returns the HTTP method, defaulting to GET.
func (r Request) Method() string { return r.method }

// Headers returns the per-request headers; nil if none were set.
func (r Request) Headers() map[string]string { return r.headers }

// Body returns the request body, or nil.
func (r Request) Body() []byte { return r.body }

// UseRender reports whether this request should be dispatched to the
// renderer instead of the plain HTTP fetcher.
func (r Request) UseRender() bool { return r.useRender }

// Metadata returns the spider-private metadata map; nil if none was set.
func (r Request) Metadata() map[string]any { return r.metadata }

// MetaBool reads a boolean metadata flag, returning false if absent or of a
// different type. Used for the well-known is_feed/fetch_full hints.
func (r Request) MetaBool(key string) bool {
	v, ok := r.metadata[key]
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// MetaString reads a string metadata value, returning "" if absent or of a
// different type. Used for the well-known "source" hint.
func (r Request) MetaString(key string) string {
	v, ok := r.metadata[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}
