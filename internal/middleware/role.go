package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/nzeleniuk/contactbook/internal/auth"
)

// RequireAdmin returns a middleware that rejects non-admin users with a
// 403 Forbidden response.  It must run after BearerAuth; a route without
// a resolved user is treated as forbidden rather than falling through.
func RequireAdmin() echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            u := CurrentUser(c)
            if u == nil {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            if err := auth.RequireAdmin(u); err != nil {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
