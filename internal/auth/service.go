package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	gateway Gateway
	caches  []CacheClearer
	logger  *slog.Logger
}

// NewService constructs a new Service. Every cache is cleared at sign-out.
func NewService(gateway Gateway, logger *slog.Logger, caches ...CacheClearer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gateway: gateway, caches: caches, logger: logger}
}

// Authenticate exchanges credentials for a backend access token. Rejections
// map to shared.ErrInvalidCredentials; transport failures keep
// backend.ErrUnavailable.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (string, error) {
	token, err := s.gateway.Login(ctx, creds.request())
	if err == nil {
		return token, nil
	}
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, backend.ErrUnavailable):
		return "", err
	case errors.As(err, &apiErr):
		return "", fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, apiErr.Message)
	default:
		return "", err
	}
}

// SignOut ends the backend session and drops per-session caches. Both steps
// are best effort; the local session is destroyed by the caller regardless.
func (s *Service) SignOut(ctx context.Context, sessionID, token string) {
	if token != "" {
		if err := s.gateway.Logout(ctx, backend.Credentials{Token: token}); err != nil {
			s.logger.Warn("backend logout", slog.Any("error", err))
		}
	}
	s.ClearCaches(ctx, sessionID)
}

// ClearCaches drops cached collections and page states of a session.
func (s *Service) ClearCaches(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	for _, cache := range s.caches {
		if err := cache.Clear(ctx, sessionID); err != nil {
			s.logger.Warn("clear session cache", slog.String("session", sessionID), slog.Any("error", err))
		}
	}
}
