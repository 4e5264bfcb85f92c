package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/techskill-console/internal/backend"
	"github.com/noah-isme/techskill-console/internal/models"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
)

type mockAuthBackend struct {
	session   *backend.Session
	loginErr  error
	logoutErr error
	loggedOut []*backend.Session
	lastLogin models.LoginRequest
}

func (m *mockAuthBackend) Login(_ context.Context, req models.LoginRequest) (*backend.Session, error) {
	m.lastLogin = req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.session, nil
}

func (m *mockAuthBackend) Logout(_ context.Context, s *backend.Session) error {
	m.loggedOut = append(m.loggedOut, s)
	return m.logoutErr
}

func signedToken(t *testing.T, subject string, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestAuthServiceLoginSuccess(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	session := backend.NewSession(signedToken(t, "admin", exp))
	svc := NewAuthService(&mockAuthBackend{session: session}, nil, nil, nil)

	resp, got, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret"})
	require.NoError(t, err)
	assert.Same(t, session, got)
	assert.Equal(t, session.Token, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "admin", resp.Subject)
	require.NotNil(t, resp.ExpiresAt)
	assert.Equal(t, exp.Unix(), *resp.ExpiresAt)
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService(&mockAuthBackend{loginErr: &backend.APIError{Status: 401, Detail: "Incorrect username or password"}}, nil, nil, nil)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "nope"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.Equal(t, "invalid username or password", appErr.Message)

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Username: "admin"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLoginBackendDown(t *testing.T) {
	svc := NewAuthService(&mockAuthBackend{loginErr: fmt.Errorf("%w: connection refused", backend.ErrUnreachable)}, nil, nil, nil)

	_, _, err := svc.Login(context.Background(), models.LoginRequest{Username: "admin", Password: "secret"})
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUpstreamUnavailable.Code, appErr.Code)
	assert.Equal(t, 502, appErr.Status)
}

func TestAuthServiceAuthenticate(t *testing.T) {
	svc := NewAuthService(&mockAuthBackend{}, nil, nil, nil)
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	session, err := svc.Authenticate(signedToken(t, "admin", now.Add(time.Minute)))
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Subject)

	_, err = svc.Authenticate(signedToken(t, "admin", now.Add(-time.Minute)))
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)

	_, err = svc.Authenticate("  ")
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	opaque, err := svc.Authenticate("opaque-token")
	require.NoError(t, err)
	assert.True(t, opaque.ExpiresAt.IsZero())
}

func TestAuthServiceLogoutPurgesSessionCache(t *testing.T) {
	repo := newMemoryCache()
	cache := newTestCache(repo)
	mock := &mockAuthBackend{}
	svc := NewAuthService(mock, cache, nil, nil)
	other := &backend.Session{Token: "other"}

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, sessionCacheKey(testSession, "enquiry-sources"), "x", time.Minute))
	require.NoError(t, cache.Set(ctx, sessionCacheKey(other, "enquiry-sources"), "y", time.Minute))

	require.NoError(t, svc.Logout(ctx, testSession))
	assert.Equal(t, []string{sessionCacheKey(other, "enquiry-sources")}, repo.keys())
	require.Len(t, mock.loggedOut, 1)

	mock.logoutErr = &backend.APIError{Status: 401, Detail: "expired"}
	assert.NoError(t, svc.Logout(ctx, testSession))

	mock.logoutErr = &backend.APIError{Status: 500, Detail: "boom"}
	assert.Equal(t, appErrors.ErrUpstream.Code, appErrors.FromError(svc.Logout(ctx, testSession)).Code)
}
