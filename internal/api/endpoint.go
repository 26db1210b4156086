package api

import (
	"net/url"
	"strings"
)

// Endpoint describes one REST resource family rooted at Base.
type Endpoint struct {
	// Resource labels requests in logs and metrics.
	Resource string
	Base     string
	// TextFallback turns a non-JSON body into a single {message: text} record
	// instead of a parse failure.
	TextFallback bool
	// Envelope names an object key that wraps the list, e.g. {"locations": [...]}.
	Envelope string
}

// NewEndpoint joins host and path into an Endpoint.
func NewEndpoint(resource, host, path string) Endpoint {
	return Endpoint{
		Resource: resource,
		Base:     strings.TrimRight(host, "/") + "/" + strings.TrimLeft(path, "/"),
	}
}

// Item is the URL of one record.
func (e Endpoint) Item(id string) string {
	return strings.TrimRight(e.Base, "/") + "/" + url.PathEscape(id)
}

// StatusURL is the status-only update URL of one record.
func (e Endpoint) StatusURL(id string) string {
	return e.Item(id) + "/status"
}

// WithTextFallback returns a copy that accepts plain-text bodies.
func (e Endpoint) WithTextFallback() Endpoint {
	e.TextFallback = true
	return e
}

// WithEnvelope returns a copy that unwraps {key: [...]} list responses.
func (e Endpoint) WithEnvelope(key string) Endpoint {
	e.Envelope = key
	return e
}
