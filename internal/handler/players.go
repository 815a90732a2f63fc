package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/model"
)

// PlayerStore is the persistence the player endpoints use.
type PlayerStore interface {
	Create(ctx context.Context, p *model.Player) error
	Get(ctx context.Context, id uint64) (*model.Player, error)
	List(ctx context.Context, f model.PlayerFilter) ([]model.Player, error)
	Update(ctx context.Context, p *model.Player) error
	Delete(ctx context.Context, id uint64) error
}

type PlayerHandler struct {
	storeErrors
	players PlayerStore
}

func NewPlayerHandler(players PlayerStore, log logging.Logger) *PlayerHandler {
	return &PlayerHandler{storeErrors: storeErrors{log: log}, players: players}
}

// List supports ?team_id=, ?position=, ?skip= and ?limit=.
func (h *PlayerHandler) List(c echo.Context) error {
	f := model.PlayerFilter{Page: pageFrom(c)}
	if s := c.QueryParam("team_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid team_id"})
		}
		f.TeamID = id
	}
	if s := strings.ToLower(strings.TrimSpace(c.QueryParam("position"))); s != "" {
		if !model.Positions[s] {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid position"})
		}
		f.Position = s
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	players, err := h.players.List(ctx, f)
	if err != nil {
		return h.storeError(c, err, "player")
	}
	if players == nil {
		players = []model.Player{}
	}
	return c.JSON(http.StatusOK, players)
}

func (h *PlayerHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.players.Get(ctx, id)
	if err != nil {
		return h.storeError(c, err, "player")
	}
	return c.JSON(http.StatusOK, p)
}

// Create adds a player to an existing team. An unknown team_id is a
// foreign key failure and answers 400.
func (h *PlayerHandler) Create(c echo.Context) error {
	var p model.Player
	if err := c.Bind(&p); err != nil {
		return invalidBody(c)
	}
	p.ID = 0
	if err := p.Validate(); err != nil {
		return h.storeError(c, err, "player")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.players.Create(ctx, &p); err != nil {
		return h.storeError(c, err, "player")
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PlayerHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var patch model.PlayerPatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.players.Get(ctx, id)
	if err != nil {
		return h.storeError(c, err, "player")
	}
	if err := patch.Apply(p); err != nil {
		return h.storeError(c, err, "player")
	}
	if err := h.players.Update(ctx, p); err != nil {
		return h.storeError(c, err, "player")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PlayerHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.players.Delete(ctx, id); err != nil {
		return h.storeError(c, err, "player")
	}
	return c.NoContent(http.StatusNoContent)
}
