package middleware

import (
	"context"

	"github.com/labstack/echo/v4"

	"go-event-cms/core/constants"
	"go-event-cms/core/controller"
	"go-event-cms/core/errors"
	"go-event-cms/core/utils"
)

// PrivilegeChecker is the capability test the auth module implements.
type PrivilegeChecker interface {
	Can(ctx context.Context, userID string, privilege string) (bool, error)
}

type Middleware struct {
	checker PrivilegeChecker
	base    controller.BaseController
}

func NewMiddleware(checker PrivilegeChecker) *Middleware {
	return &Middleware{
		checker: checker,
		base:    controller.NewBaseController(),
	}
}

// AuthMiddleware validates the bearer token and stores its claims on the context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := utils.GetTokenFromHeader(c)
			if err != nil {
				return m.base.Unauthorized(errors.ErrMissingAuthorizationHeader, "Missing or malformed authorization header")
			}

			claims, err := utils.ValidateAndParseToken(tokenString)
			if err != nil {
				return m.base.Unauthorized(errors.ErrUnauthorized, "Invalid or expired token")
			}

			if claims.Scope != constants.ScopeTokenAccess {
				return m.base.Unauthorized(errors.ErrInvalidTokenFormat, "Access token required")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}

// RequirePrivilege gates a route on a user capability. Runs after AuthMiddleware.
func (m *Middleware) RequirePrivilege(privilege string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := TokenData(c)
			if claims == nil {
				return m.base.Unauthorized(errors.ErrUnauthorized, "Authentication required")
			}

			ok, err := m.checker.Can(c.Request().Context(), claims.UserID, privilege)
			if err != nil {
				return m.base.InternalServerError(errors.ErrInternalServer, "Privilege check failed")
			}
			if !ok {
				return m.base.Forbidden(errors.ErrForbidden, "Missing privilege: "+privilege)
			}

			return next(c)
		}
	}
}

// TokenData returns the claims set by AuthMiddleware, or nil.
func TokenData(c echo.Context) *utils.TokenClaims {
	claims, _ := c.Get(constants.ContextTokenData).(*utils.TokenClaims)
	return claims
}
