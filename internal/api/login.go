package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/harrylevesque/ecoadmin/internal/models"
)

// LoginRequest is the login payload. The server names the password field
// PasswordHash even though it receives the plain password.
type LoginRequest struct {
	Email        string `json:"Email"`
	PasswordHash string `json:"PasswordHash"`
}

// LoginResponse is what the login endpoint reported, after text fallback.
type LoginResponse struct {
	OK      bool
	Status  int
	Success bool
	Message string
	Role    string
	Raw     string
	Record  models.Record
}

// Accepted reports whether the server considered the login successful: a 2xx
// status and either success=true or a message mentioning success.
func (r LoginResponse) Accepted() bool {
	return r.OK && (r.Success || strings.Contains(strings.ToLower(r.Message), "success"))
}

// Login posts credentials to url. Non-2xx answers are not errors here; the
// caller decides from the response. Only transport failures are returned.
func (c *Client) Login(ctx context.Context, url string, req LoginRequest) (LoginResponse, error) {
	ep := Endpoint{Resource: "login", Base: url, TextFallback: true}
	resp, err := c.send(ctx, ep, http.MethodPost, url, req)
	if err != nil {
		return LoginResponse{}, &MutationError{Kind: MutationNetwork, Err: err}
	}
	rec := decodeEcho(ep, resp.body)
	out := LoginResponse{
		OK:      resp.ok(),
		Status:  resp.status,
		Message: rec.String("message"),
		Role:    rec.String("role"),
		Raw:     string(resp.body),
		Record:  rec,
	}
	if b, ok := rec["success"].(bool); ok {
		out.Success = b
	}
	if out.Message == "" {
		out.Message = rec.String("error")
	}
	return out, nil
}
