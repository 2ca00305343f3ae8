package authz

import (
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"blockfunders/internal/auth"
	"blockfunders/internal/errors"
)

// CurrentClaims extracts the validated JWT claims the echo-jwt middleware
// stored on the context.
func CurrentClaims(c echo.Context) (*auth.Claims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	return claims, ok
}

// CurrentUserID returns the acting user's ID or 0 when unauthenticated.
func CurrentUserID(c echo.Context) uint {
	claims, ok := CurrentClaims(c)
	if !ok {
		return 0
	}
	return claims.UserID
}

// Require gates a route on a permission name. The effective set is
// resolved per request; 403 when the permission is absent.
func (a *Authorizer) Require(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := CurrentUserID(c)
			if userID == 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "unauthenticated",
					Code:  "UNAUTHENTICATED",
				})
			}

			ok, err := a.HasPermission(c.Request().Context(), userID, permission)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, errors.ErrorResponse{
					Error: "permission check failed",
					Code:  "INTERNAL_ERROR",
				})
			}
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
					Error: "missing permission " + permission,
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
