package service

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/dto"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type authBackend interface {
	Login(ctx context.Context, req models.LoginRequest) (*backend.Session, error)
	Logout(ctx context.Context, s *backend.Session) error
}

// AuthService exchanges operator credentials for backend sessions and
// tears them down again.
type AuthService struct {
	backend   authBackend
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(client authBackend, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{backend: client, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Login validates credentials with the backend and returns the token the
// console must present on later calls.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*dto.LoginResponse, *backend.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid login payload")
	}
	session, err := s.backend.Login(ctx, req)
	if err != nil {
		var mapped error
		if status := backendStatus(err); status == http.StatusUnauthorized || status == http.StatusBadRequest {
			mapped = appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid username or password")
		} else {
			mapped = upstreamError(err, "failed to sign in")
		}
		s.logger.Warn("login failed", zap.String("username", req.Username), zap.Error(err))
		return nil, nil, mapped
	}

	resp := &dto.LoginResponse{AccessToken: session.Token, TokenType: "Bearer", Subject: session.Subject}
	if !session.ExpiresAt.IsZero() {
		exp := session.ExpiresAt.Unix()
		resp.ExpiresAt = &exp
	}
	s.logger.Info("operator signed in", zap.String("operator", session.Subject))
	return resp, session, nil
}

// Authenticate turns a bearer token into a session, rejecting tokens
// that are already past their expiry.
func (s *AuthService) Authenticate(token string) (*backend.Session, error) {
	session := backend.NewSession(token)
	if session.Token == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token")
	}
	if !session.Valid(s.now()) {
		return nil, appErrors.ErrSessionExpired
	}
	return session, nil
}

// Logout ends the backend session and drops everything cached for it.
// Cache purge failures are logged, never returned.
func (s *AuthService) Logout(ctx context.Context, session *backend.Session) error {
	if err := requireSession(session); err != nil {
		return err
	}
	if err := s.cache.InvalidateSession(ctx, session); err != nil {
		s.logger.Warn("failed to purge session cache", zap.Error(err))
	}
	if err := s.backend.Logout(ctx, session); err != nil {
		if backendStatus(err) == http.StatusUnauthorized {
			return nil
		}
		return upstreamError(err, "failed to sign out")
	}
	return nil
}
