package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/access"
	"github.com/nurpe/liftcare/internal/model"
)

const (
	principalKey = "principal"
	tokenKey     = "access_token"
)

// Authenticator resolves a bearer token to the caller it currently stands for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (model.Principal, error)
}

// Auth rejects requests without a valid, signed-in bearer token.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c, authn) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the principal when a valid token is sent and lets
// anonymous requests through.
func OptionalAuth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c, authn)
		c.Next()
	}
}

func authenticate(c *gin.Context, authn Authenticator) bool {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		return false
	}
	principal, err := authn.Authenticate(c.Request.Context(), token)
	if err != nil || !principal.IsAuthenticated() {
		return false
	}
	c.Set(principalKey, principal)
	c.Set(tokenKey, token)
	return true
}

// RequireRole rejects principals whose role is not listed.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := MustPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !access.Permits(principal.Role, roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":    "insufficient permissions",
				"redirect": access.LandingPath(principal.Role),
			})
			return
		}
		c.Next()
	}
}

func MustPrincipal(c *gin.Context) (model.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := value.(model.Principal)
	return principal, ok && principal.IsAuthenticated()
}

// Principal returns the signed-in principal or the zero principal.
func Principal(c *gin.Context) model.Principal {
	principal, _ := MustPrincipal(c)
	return principal
}

func Token(c *gin.Context) string {
	return c.GetString(tokenKey)
}

// RequestLogger logs method, path, status and latency of every request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// Recovery turns panics into 500 responses without exposing details.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			}
		}()
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
