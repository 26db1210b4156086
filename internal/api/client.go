// Package api is the HTTP transport for the admin console. It issues list,
// detail and mutation requests against the EcoTrails admin endpoints and
// reports failures as FetchError or MutationError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/ecoadmin/internal/metrics"
	"github.com/harrylevesque/ecoadmin/internal/models"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

// Client issues admin API requests. It keeps no state between calls.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Collector
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records every request in m.
func WithMetrics(m *metrics.Collector) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client. The underlying http.Client has no timeout;
// callers bound requests through their context.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		logger:     utils.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// response is a fully read HTTP response.
type response struct {
	status int
	body   []byte
}

func (r response) ok() bool { return r.status >= 200 && r.status < 300 }

// ---- Internal helpers ----

func (c *Client) send(ctx context.Context, ep Endpoint, method, url string, payload any) (response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return response{}, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveClient(ep.Resource, method, "network_error", time.Since(start))
		c.logger.Warn("admin api request failed", "resource", ep.Resource, "method", method, "url", url, "request_id", reqID, "error", err)
		return response{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveClient(ep.Resource, method, "network_error", time.Since(start))
		return response{}, fmt.Errorf("reading response body: %w", err)
	}
	outcome := "ok"
	if resp.StatusCode >= 400 {
		outcome = "http_" + strconv.Itoa(resp.StatusCode)
	}
	c.metrics.ObserveClient(ep.Resource, method, outcome, time.Since(start))
	c.logger.Debug("admin api request", "resource", ep.Resource, "method", method, "url", url,
		"status", resp.StatusCode, "request_id", reqID, "duration", time.Since(start))
	return response{status: resp.StatusCode, body: b}, nil
}

func (c *Client) get(ctx context.Context, ep Endpoint, url string) (response, error) {
	resp, err := c.send(ctx, ep, http.MethodGet, url, nil)
	if err != nil {
		return response{}, &FetchError{Kind: FetchNetwork, Err: err}
	}
	if !resp.ok() {
		return response{}, &FetchError{
			Kind:       FetchHTTPStatus,
			StatusCode: resp.status,
			Message:    serverMessage(resp.status, resp.body),
		}
	}
	return resp, nil
}

func (c *Client) mutate(ctx context.Context, ep Endpoint, method, url string, payload any) (response, error) {
	resp, err := c.send(ctx, ep, method, url, payload)
	if err != nil {
		return response{}, &MutationError{Kind: MutationNetwork, Err: err}
	}
	if !resp.ok() {
		return response{}, &MutationError{
			Kind:       MutationRemote,
			StatusCode: resp.status,
			Message:    serverMessage(resp.status, resp.body),
		}
	}
	return resp, nil
}

// ---- Reads ----

// FetchList GETs the endpoint base and normalizes the body into a collection.
func (c *Client) FetchList(ctx context.Context, ep Endpoint) (models.Collection, error) {
	resp, err := c.get(ctx, ep, ep.Base)
	if err != nil {
		return nil, err
	}
	return decodeCollection(ep, resp.body)
}

// LoadDetail GETs one record by id.
func (c *Client) LoadDetail(ctx context.Context, ep Endpoint, id string) (models.Record, error) {
	resp, err := c.get(ctx, ep, ep.Item(id))
	if err != nil {
		return nil, err
	}
	return decodeRecord(ep, resp.body)
}

// ---- Writes ----

// Create POSTs payload to the endpoint base. When the server echoes the new
// record it is returned normalized; otherwise the record is empty.
func (c *Client) Create(ctx context.Context, ep Endpoint, payload any) (models.Record, error) {
	resp, err := c.mutate(ctx, ep, http.MethodPost, ep.Base, payload)
	if err != nil {
		return nil, err
	}
	// Some create endpoints answer with plain text like "Created".
	return decodeEcho(ep, resp.body), nil
}

// Update PUTs payload to the record URL.
func (c *Client) Update(ctx context.Context, ep Endpoint, id string, payload any) error {
	_, err := c.mutate(ctx, ep, http.MethodPut, ep.Item(id), payload)
	return err
}

// UpdateStatus PUTs payload to the record's status URL.
func (c *Client) UpdateStatus(ctx context.Context, ep Endpoint, id string, payload any) error {
	_, err := c.mutate(ctx, ep, http.MethodPut, ep.StatusURL(id), payload)
	return err
}

// Delete removes one record.
func (c *Client) Delete(ctx context.Context, ep Endpoint, id string) error {
	_, err := c.mutate(ctx, ep, http.MethodDelete, ep.Item(id), nil)
	return err
}
