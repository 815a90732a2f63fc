package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/handler"
	"github.com/iliyamo/football-club/internal/metrics"
	"github.com/iliyamo/football-club/internal/middleware"
)

// Prefix is the path every API route lives under.
const Prefix = "/api/v1"

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Health       echo.HandlerFunc
	Auth         *handler.AuthHandler
	Users        *handler.UserHandler
	Roles        *handler.RoleHandler
	Teams        *handler.TeamHandler
	Players      *handler.PlayerHandler
	Competitions *handler.CompetitionHandler
}

// RegisterRoutes registers routes that do not require authentication and
// sit outside the API prefix: the health check and the metrics scrape.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, m *metrics.Metrics) {
	e.GET("/healthz", health)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
}

// RegisterAuth registers register/login/refresh, which need no session,
// and the profile and administration routes, which do.
func RegisterAuth(api *echo.Group, h Handlers, g *middleware.Guard) {
	a := api.Group("/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/refresh", h.Auth.Refresh)

	me := api.Group("/users/me", g.Authenticate(), g.Require(auth.Authenticated()))
	me.GET("", h.Users.Me)
	me.PATCH("", h.Users.UpdateMe)

	// Everything below is superuser-only.
	su := []echo.MiddlewareFunc{g.Authenticate(), g.Require(auth.Superuser())}
	users := api.Group("/users", su...)
	users.GET("", h.Users.List)
	users.PATCH("/:id", h.Users.Update)
	users.PUT("/:id/roles/:role_id", h.Users.AssignRole)
	users.DELETE("/:id/roles/:role_id", h.Users.RemoveRole)

	roles := api.Group("/roles", su...)
	roles.GET("", h.Roles.List)
	roles.POST("", h.Roles.Create)
	roles.POST("/:id/permissions", h.Roles.AddPermission)
}

// Setup registers every route on e. cache may be nil.
func Setup(e *echo.Echo, h Handlers, g *middleware.Guard, cache *middleware.Cache, m *metrics.Metrics) {
	RegisterRoutes(e, h.Health, m)
	api := e.Group(Prefix)
	RegisterAuth(api, h, g)
	RegisterClub(api, h, g, cache)
}
