package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/nzeleniuk/contactbook/internal/auth"
    "github.com/nzeleniuk/contactbook/internal/model"
)

// contextUserKey is where BearerAuth stores the resolved user on the
// Echo context.
const contextUserKey = "current_user"

// BearerAuth returns an Echo middleware that authenticates the Bearer
// access token on every request through the auth core: signature,
// expiry, type, denylist and subject lookup all happen in one place.
// Handlers downstream read the resolved user via CurrentUser(c).
func BearerAuth(svc *auth.Service) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the
            // token.  Anything else is rejected before touching the
            // auth core.
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(header, "Bearer ")

            u, err := svc.ResolveCurrentUser(c.Request().Context(), raw)
            if err != nil {
                switch {
                case errors.Is(err, auth.ErrTokenExpired):
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
                case errors.Is(err, auth.ErrTokenRevoked):
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token revoked"})
                case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
                }
                // Cache or storage outage in fail-closed mode: deny, but
                // as an infrastructure failure, not a credential one.
                return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "authentication unavailable"})
            }

            c.Set(contextUserKey, u)
            return next(c)
        }
    }
}

// CurrentUser returns the user resolved by BearerAuth, or nil when the
// middleware did not run on this route.
func CurrentUser(c echo.Context) *model.User {
    u, _ := c.Get(contextUserKey).(*model.User)
    return u
}
