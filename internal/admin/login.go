package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/harrylevesque/ecoadmin/internal/api"
	"github.com/harrylevesque/ecoadmin/internal/utils"
)

// AdminRole is the only role allowed into the console.
const AdminRole = "Admin"

var (
	// ErrRoleMissing is returned when a successful login carries no role.
	ErrRoleMissing = errors.New("role information missing from server response")
	// ErrNotAdmin is returned when the account is not an administrator.
	ErrNotAdmin = errors.New("you are not authorized as admin")
)

// LoginError is a login the server turned down.
type LoginError struct {
	Status  int
	Message string
}

func (e *LoginError) Error() string {
	return "login failed: " + e.Message
}

// Authenticator performs the login request.
type Authenticator interface {
	Login(ctx context.Context, url string, req api.LoginRequest) (api.LoginResponse, error)
}

// LoginFlow checks admin credentials and opens the dashboard on success.
type LoginFlow struct {
	auth   Authenticator
	url    string
	nav    Navigator
	logger *slog.Logger
}

// NewLoginFlow posts credentials to url. logger may be nil.
func NewLoginFlow(auth Authenticator, url string, nav Navigator, logger *slog.Logger) *LoginFlow {
	if logger == nil {
		logger = utils.Discard()
	}
	return &LoginFlow{auth: auth, url: url, nav: nav, logger: logger}
}

// Submit logs in. Empty fields fail validation without a request. The
// result is one of: nil (navigated to the dashboard), a validation
// *api.MutationError, a network *api.MutationError, *LoginError,
// ErrRoleMissing or ErrNotAdmin.
func (f *LoginFlow) Submit(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		field := "email"
		if strings.TrimSpace(email) != "" {
			field = "password"
		}
		return api.ValidationError(field, "Please enter both email and password")
	}
	resp, err := f.auth.Login(ctx, f.url, api.LoginRequest{Email: strings.TrimSpace(email), PasswordHash: password})
	if err != nil {
		f.logger.Warn("admin login request failed", "error", err)
		return err
	}
	if !resp.Accepted() {
		msg := resp.Message
		if msg == "" {
			msg = strings.TrimSpace(resp.Raw)
		}
		if msg == "" {
			msg = "Unknown error occurred."
		}
		f.logger.Info("admin login rejected", "status", resp.Status)
		return &LoginError{Status: resp.Status, Message: msg}
	}
	switch resp.Role {
	case "":
		return ErrRoleMissing
	case AdminRole:
	default:
		f.logger.Info("non-admin login refused", "role", resp.Role)
		return ErrNotAdmin
	}
	f.logger.Info("admin logged in")
	f.nav.NavigateTo(ScreenDashboard, nil)
	return nil
}
