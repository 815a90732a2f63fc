package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/model"
)

// CompetitionStore is the persistence the competition endpoints use.
type CompetitionStore interface {
	Create(ctx context.Context, c *model.Competition) error
	Get(ctx context.Context, id uint64) (*model.Competition, error)
	List(ctx context.Context, page model.Page) ([]model.Competition, error)
	Update(ctx context.Context, c *model.Competition) error
	Delete(ctx context.Context, id uint64) error
}

// MatchLister reads the recorded matches of a competition.
type MatchLister interface {
	ListByCompetition(ctx context.Context, competitionID uint64) ([]model.MatchRecord, error)
}

// MatchRecorder validates, stores and announces a match record.
type MatchRecorder interface {
	Record(ctx context.Context, m *model.MatchRecord) error
}

// StandingLister reads a competition table ordered by rank.
type StandingLister interface {
	ListByCompetition(ctx context.Context, competitionID uint64) ([]model.Standing, error)
}

// CompetitionHandler serves competitions together with their match
// records and standings.
type CompetitionHandler struct {
	storeErrors
	competitions CompetitionStore
	matches      MatchLister
	recorder     MatchRecorder
	standings    StandingLister
}

func NewCompetitionHandler(cs CompetitionStore, ml MatchLister, mr MatchRecorder, sl StandingLister, log logging.Logger) *CompetitionHandler {
	return &CompetitionHandler{storeErrors: storeErrors{log: log}, competitions: cs, matches: ml, recorder: mr, standings: sl}
}

func (h *CompetitionHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	list, err := h.competitions.List(ctx, pageFrom(c))
	if err != nil {
		return h.storeError(c, err, "competition")
	}
	if list == nil {
		list = []model.Competition{}
	}
	return c.JSON(http.StatusOK, list)
}

func (h *CompetitionHandler) Get(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	comp, err := h.competitions.Get(ctx, id)
	if err != nil {
		return h.storeError(c, err, "competition")
	}
	return c.JSON(http.StatusOK, comp)
}

func (h *CompetitionHandler) Create(c echo.Context) error {
	var comp model.Competition
	if err := c.Bind(&comp); err != nil {
		return invalidBody(c)
	}
	comp.ID = 0
	if err := comp.Validate(); err != nil {
		return h.storeError(c, err, "competition")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.competitions.Create(ctx, &comp); err != nil {
		return h.storeError(c, err, "competition")
	}
	return c.JSON(http.StatusCreated, comp)
}

func (h *CompetitionHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var patch model.CompetitionPatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	comp, err := h.competitions.Get(ctx, id)
	if err != nil {
		return h.storeError(c, err, "competition")
	}
	if err := patch.Apply(comp); err != nil {
		return h.storeError(c, err, "competition")
	}
	if err := h.competitions.Update(ctx, comp); err != nil {
		return h.storeError(c, err, "competition")
	}
	return c.JSON(http.StatusOK, comp)
}

// Delete removes the competition with its match records and standings.
func (h *CompetitionHandler) Delete(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.competitions.Delete(ctx, id); err != nil {
		return h.storeError(c, err, "competition")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CompetitionHandler) Matches(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.competitions.Get(ctx, id); err != nil {
		return h.storeError(c, err, "competition")
	}
	list, err := h.matches.ListByCompetition(ctx, id)
	if err != nil {
		return h.storeError(c, err, "match")
	}
	if list == nil {
		list = []model.MatchRecord{}
	}
	return c.JSON(http.StatusOK, list)
}

// RecordMatch stores a match result for the competition in the path.
// Standings follow asynchronously.
func (h *CompetitionHandler) RecordMatch(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var m model.MatchRecord
	if err := c.Bind(&m); err != nil {
		return invalidBody(c)
	}
	m.ID = 0
	m.CompetitionID = id
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.recorder.Record(ctx, &m); err != nil {
		return h.storeError(c, err, "competition")
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *CompetitionHandler) Standings(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if _, err := h.competitions.Get(ctx, id); err != nil {
		return h.storeError(c, err, "competition")
	}
	table, err := h.standings.ListByCompetition(ctx, id)
	if err != nil {
		return h.storeError(c, err, "standings")
	}
	if table == nil {
		table = []model.Standing{}
	}
	return c.JSON(http.StatusOK, table)
}
