package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/clinicdesk/clinic/internal/platform/apperr"
)

type contextKey string

const (
	subjectKey contextKey = "auth_subject"
	roleKey    contextKey = "auth_role"
)

// Require returns middleware that admits only requests carrying a valid
// bearer token for one of the given roles. The token is re-resolved against
// live account state on every request; results are never cached so account
// deletion takes effect immediately.
func Require(ts *TokenService, roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr, err := bearerToken(c)
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			for _, role := range roles {
				subject, err := ts.Validate(ctx, tokenStr, role)
				if err != nil {
					if apperr.KindOf(err) == apperr.KindUnauthorized {
						continue
					}
					return apperr.ToHTTP(err)
				}
				ctx = context.WithValue(ctx, subjectKey, subject)
				ctx = context.WithValue(ctx, roleKey, role)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization format")
	}
	return parts[1], nil
}

// SubjectFromContext returns the authenticated identifier (username or email)
// placed by Require.
func SubjectFromContext(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}

// RoleFromContext returns the role the request authenticated as.
func RoleFromContext(ctx context.Context) (Role, bool) {
	r, ok := ctx.Value(roleKey).(Role)
	return r, ok
}
