package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/middleware"
)

// RegisterClub registers teams, players and competitions. Reads are
// public and served through the response cache; every write needs the
// matching resource permission and drops the cached reads it affects.
func RegisterClub(api *echo.Group, h Handlers, g *middleware.Guard, cache *middleware.Cache) {
	read := cache.Read()
	write := func(resource, action string) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{
			g.Authenticate(),
			g.Require(auth.Permission(resource, action)),
			cache.InvalidateOnWrite(),
		}
	}

	teams := api.Group("/teams")
	teams.GET("", h.Teams.List, read)
	teams.GET("/:id", h.Teams.Get, read)
	teams.POST("", h.Teams.Create, write("team", "create")...)
	teams.PUT("/:id", h.Teams.Update, write("team", "update")...)
	teams.DELETE("/:id", h.Teams.Delete, write("team", "delete")...)

	players := api.Group("/players")
	players.GET("", h.Players.List, read)
	players.GET("/:id", h.Players.Get, read)
	players.POST("", h.Players.Create, write("player", "create")...)
	players.PUT("/:id", h.Players.Update, write("player", "update")...)
	players.DELETE("/:id", h.Players.Delete, write("player", "delete")...)

	comps := api.Group("/competitions")
	comps.GET("", h.Competitions.List, read)
	comps.GET("/:id", h.Competitions.Get, read)
	comps.POST("", h.Competitions.Create, write("competition", "create")...)
	comps.PUT("/:id", h.Competitions.Update, write("competition", "update")...)
	comps.DELETE("/:id", h.Competitions.Delete, write("competition", "delete")...)
	comps.GET("/:id/matches", h.Competitions.Matches, read)
	comps.POST("/:id/matches", h.Competitions.RecordMatch, write("match", "create")...)
	comps.GET("/:id/standings", h.Competitions.Standings, read)
}
