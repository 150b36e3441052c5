package http

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dreamslms/api/internal/domain"
	"github.com/dreamslms/api/internal/service"
	"github.com/dreamslms/api/internal/util"
)

const (
	contextAccountKey = "auth.account"
	contextTokenKey   = "auth.token"
)

func RequireAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if strings.TrimSpace(authHeader) == "" {
				return c.JSON(http.StatusUnauthorized, util.Error("missing authorization header"))
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid authorization header"))
			}
			token := strings.TrimSpace(parts[1])
			account, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, util.Error("invalid or expired token"))
			}
			c.Set(contextAccountKey, account)
			c.Set(contextTokenKey, token)
			return next(c)
		}
	}
}

// OptionalAuth attaches the account when a valid bearer token comes with
// the request, and lets the request through anonymously otherwise.
func OptionalAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
				token := strings.TrimSpace(parts[1])
				if account, err := auth.Authenticate(c.Request().Context(), token); err == nil {
					c.Set(contextAccountKey, account)
					c.Set(contextTokenKey, token)
				}
			}
			return next(c)
		}
	}
}

// RequireRole gates a route to the given roles. It must run after
// RequireAuth.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			account, ok := c.Get(contextAccountKey).(*domain.Account)
			if !ok || account == nil {
				return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
			}
			for _, role := range roles {
				if account.Role == role {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, util.Error("insufficient permissions"))
		}
	}
}

func CurrentAccount(c echo.Context) (*domain.Account, bool) {
	account, ok := c.Get(contextAccountKey).(*domain.Account)
	return account, ok
}

func currentToken(c echo.Context) string {
	token, _ := c.Get(contextTokenKey).(string)
	return token
}
