package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/techskill-console/internal/backend"
	appErrors "github.com/noah-isme/techskill-console/pkg/errors"
	"github.com/noah-isme/techskill-console/pkg/logger"
	"github.com/noah-isme/techskill-console/pkg/middleware/requestid"
	"github.com/noah-isme/techskill-console/pkg/response"
)

// ContextSessionKey is the gin context key storing the operator session.
const ContextSessionKey = "backendSession"

// SessionAuthenticator turns a bearer token into a backend session.
type SessionAuthenticator interface {
	Authenticate(token string) (*backend.Session, error)
}

// Session requires a bearer token and attaches the resulting backend
// session to the request. The request id is copied into the request
// context so backend calls forward it.
func Session(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		session, err := auth.Authenticate(token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSessionKey, session)
		if session.Subject != "" {
			c.Set(logger.SubjectKey, session.Subject)
		}
		if id := requestid.Value(c); id != "" {
			c.Request = c.Request.WithContext(backend.ContextWithRequestID(c.Request.Context(), id))
		}
		c.Next()
	}
}

// SessionFromContext returns the session attached by Session, or nil.
func SessionFromContext(c *gin.Context) *backend.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, _ := value.(*backend.Session)
	return session
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
