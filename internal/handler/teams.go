package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/model"
)

// TeamStore is the persistence the team endpoints use.
type TeamStore interface {
	Create(ctx context.Context, t *model.Team) error
	Get(ctx context.Context, id uint64) (*model.Team, error)
	List(ctx context.Context, page model.Page) ([]model.Team, error)
	Update(ctx context.Context, t *model.Team) error
	Delete(ctx context.Context, id uint64) error
}

type TeamHandler struct {
	storeErrors
	teams TeamStore
}

func NewTeamHandler(teams TeamStore, log logging.Logger) *TeamHandler {
	return &TeamHandler{storeErrors: storeErrors{log: log}, teams: teams}
}

func (h *TeamHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	teams, err := h.teams.List(ctx, pageFrom(c))
	if err != nil {
		return h.storeError(c, err, "team")
	}
	if teams == nil {
		teams = []model.Team{}
	}
	return c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	t, err := h.teams.Get(ctx, id)
	if err != nil {
		return h.storeError(c, err, "team")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *TeamHandler) Create(c echo.Context) error {
	var t model.Team
	if err := c.Bind(&t); err != nil {
		return invalidBody(c)
	}
	t.ID = 0
	if err := t.Validate(); err != nil {
		return h.storeError(c, err, "team")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.teams.Create(ctx, &t); err != nil {
		return h.storeError(c, err, "team")
	}
	return c.JSON(http.StatusCreated, t)
}

// Update applies a partial update; fields absent from the body keep
// their stored values.
func (h *TeamHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var patch model.TeamPatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.teams.Get(ctx, id)
	if err != nil {
		return h.storeError(c, err, "team")
	}
	if err := patch.Apply(t); err != nil {
		return h.storeError(c, err, "team")
	}
	if err := h.teams.Update(ctx, t); err != nil {
		return h.storeError(c, err, "team")
	}
	return c.JSON(http.StatusOK, t)
}

// Delete removes the team and, through the foreign key, its players.
func (h *TeamHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.teams.Delete(ctx, id); err != nil {
		return h.storeError(c, err, "team")
	}
	return c.NoContent(http.StatusNoContent)
}
