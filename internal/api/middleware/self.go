package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireSelf restricts a route carrying a :username path parameter to the
// authenticated user it names. There are no roles beyond "is this the
// claimed identity", so a mismatch is a plain 403.
func RequireSelf() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, _ := c.Get("username").(string)
			if username == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
			}
			if c.Param("username") != username {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
