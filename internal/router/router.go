package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/nzeleniuk/contactbook/internal/auth"
	"github.com/nzeleniuk/contactbook/internal/handler"
	"github.com/nzeleniuk/contactbook/internal/middleware"
)

// Register wires every route of the API onto the provided Echo instance.
// Unauthenticated operations live under /v1/auth; everything else runs
// behind the bearer gate, which resolves the current user through the
// auth core on each request.
func Register(e *echo.Echo, svc *auth.Service, a *handler.AuthHandler, u *handler.UserHandler, contacts *handler.ContactHandler) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Session establishment and recovery: nothing here requires an
	// existing session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/confirm/:token", a.ConfirmEmail)
	g.POST("/password-reset/request", a.RequestPasswordReset)
	g.POST("/password-reset/confirm", a.ConfirmPasswordReset)

	// Authenticated surface.  BearerAuth runs on every route in this
	// group and stores the resolved user on the context.
	v1 := e.Group("/v1")
	v1.Use(middleware.BearerAuth(svc))
	v1.GET("/me", a.Me)
	v1.POST("/auth/logout-all", a.LogoutAll)

	v1.POST("/contacts", contacts.Create)
	v1.GET("/contacts", contacts.List)
	v1.GET("/contacts/:id", contacts.Get)
	v1.PUT("/contacts/:id", contacts.Update)
	v1.DELETE("/contacts/:id", contacts.Delete)

	// Admin-only operations layer a role check over the bearer gate.
	admin := v1.Group("/users")
	admin.Use(middleware.RequireAdmin())
	admin.PATCH("/avatar", u.UpdateAvatar)
}
