package auth

import (
	"context"

	"github.com/odyssey-erp/masterdesk/internal/backend"
)

// Gateway defines the remote operations of the auth module.
type Gateway interface {
	Login(ctx context.Context, req backend.LoginRequest) (string, error)
	Logout(ctx context.Context, creds backend.Credentials) error
}

// CacheClearer drops per-session caches at sign-out.
type CacheClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// Credentials is the sign-in form.
type Credentials struct {
	Username  string `validate:"required,max=100"`
	Password  string `validate:"required,max=200"`
	CompanyID string `validate:"max=50"`
}

func (c Credentials) request() backend.LoginRequest {
	return backend.LoginRequest{Username: c.Username, Password: c.Password, CompanyID: c.CompanyID}
}
