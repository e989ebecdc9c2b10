package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"unievent/pkg/apperror"
	"unievent/pkg/jwt"
	"unievent/pkg/logger"
	"unievent/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	bearerPrefix = "Bearer "

	principalKey = "principal"
	subjectKey   = "subject"
	gateDoneKey  = "auth_gate_done"
)

type principalCtxKey struct{}

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// PrincipalResolver turns a token subject into the caller it names.
type PrincipalResolver[P any] interface {
	Resolve(ctx context.Context, subject string) (P, error)
}

// AuthGate authenticates the bearer token, if any, and applies the route's
// access policy. The resolved principal is stored in the gin context and the
// request context. Running it twice on one request is a no-op.
func AuthGate[P any](validator TokenValidator, resolver PrincipalResolver[P], policies *Policies, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(gateDoneKey) {
			c.Next()
			return
		}
		c.Set(gateDoneKey, true)

		access := policies.AccessFor(c.Request.Method, c.Request.URL.Path)

		subject, principal, err := authenticate(c, validator, resolver)
		if err == nil {
			SetPrincipal(c, principal)
			c.Set(subjectKey, subject)
			c.Next()
			return
		}

		if access == Public {
			c.Next()
			return
		}

		if !errors.Is(err, errNoToken) {
			log.Info("Rejected %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		// A storage failure while resolving is not the caller's fault.
		var appErr *apperror.Error
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindInternal {
			response.Error(c, log, err)
			return
		}
		response.Abort(c, http.StatusUnauthorized, "Authentication required")
	}
}

var errNoToken = errors.New("no bearer token")

func authenticate[P any](c *gin.Context, validator TokenValidator, resolver PrincipalResolver[P]) (string, P, error) {
	var zero P

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", zero, errNoToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", zero, errNoToken
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		return "", zero, err
	}
	principal, err := resolver.Resolve(c.Request.Context(), claims.Subject)
	if err != nil {
		return "", zero, err
	}
	return claims.Subject, principal, nil
}

// SetPrincipal attaches p to the gin context and the request context.
func SetPrincipal[P any](c *gin.Context, p P) {
	c.Set(principalKey, p)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), principalCtxKey{}, p))
}

// PrincipalFrom returns the principal AuthGate stored, if any.
func PrincipalFrom[P any](c *gin.Context) (P, bool) {
	var zero P
	v, ok := c.Get(principalKey)
	if !ok {
		return zero, false
	}
	p, ok := v.(P)
	return p, ok
}

func PrincipalFromContext[P any](ctx context.Context) (P, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(P)
	return p, ok
}
