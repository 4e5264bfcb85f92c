package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/techskill-console/internal/backend"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/logger"
	"github.com/noah-isme/techskill-console/pkg/middleware/requestid"
)

type stubAuthenticator struct {
	tokens []string
}

func (s *stubAuthenticator) Authenticate(token string) (*backend.Session, error) {
	s.tokens = append(s.tokens, token)
	if token == "stale" {
		return nil, appErrors.ErrSessionExpired
	}
	return &backend.Session{Token: token, Subject: "admin"}, nil
}

func sessionRouter(auth SessionAuthenticator, inspect func(c *gin.Context)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(requestid.Middleware())
	r.GET("/secure", Session(auth), func(c *gin.Context) {
		inspect(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestSessionAttachesSession(t *testing.T) {
	auth := &stubAuthenticator{}
	var (
		session *backend.Session
		subject string
	)
	r := sessionRouter(auth, func(c *gin.Context) {
		session = SessionFromContext(c)
		subject = c.GetString(logger.SubjectKey)
	})

	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "bearer  abc.def.ghi ")
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, session)
	assert.Equal(t, "abc.def.ghi", session.Token)
	assert.Equal(t, "admin", subject)
	assert.Equal(t, []string{"abc.def.ghi"}, auth.tokens)
}

func TestSessionRejectsMissingOrExpiredTokens(t *testing.T) {
	auth := &stubAuthenticator{}
	reached := false
	r := sessionRouter(auth, func(*gin.Context) { reached = true })

	cases := map[string]string{
		"missing": "",
		"scheme":  "Basic abc",
		"empty":   "Bearer ",
		"expired": "Bearer stale",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
	assert.False(t, reached)
	assert.Equal(t, []string{"stale"}, auth.tokens)
}

func TestAuditLogsSuccessfulWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(Session(&stubAuthenticator{}))
	group := r.Group("/courses", Audit(zap.New(core), "course"))
	group.GET("/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.PUT("/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	group.DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/courses/3", nil)
		req.Header.Set("Authorization", "Bearer tok")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "course", fields["resource"])
	assert.Equal(t, http.MethodPut, fields["action"])
	assert.Equal(t, "3", fields["resource_id"])
	assert.Equal(t, "admin", fields["operator"])
}
