package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/repository"
)

// dbTimeout bounds every store call made by a handler.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func badID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
}

// pageFrom reads skip and limit query parameters. Values that do not
// parse fall back to the defaults.
func pageFrom(c echo.Context) model.Page {
	var p model.Page
	p.Skip, _ = strconv.Atoi(c.QueryParam("skip"))
	p.Limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return p.Normalize()
}

// storeErrors is embedded by the resource handlers. Failures that end in
// a 500 are written to log.
type storeErrors struct {
	log logging.Logger
}

// storeError answers a repository or validation error. what names the
// resource for 404 and duplicate messages, e.g. "team".
func (s storeErrors) storeError(c echo.Context, err error, what string) error {
	var ie *model.InputError
	switch {
	case errors.As(err, &ie):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ie.Msg})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": what + " not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": what + " name already exists"})
	case errors.Is(err, repository.ErrReference):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "referenced record does not exist or is still in use"})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "database timeout"})
	default:
		s.log.Error(c.Request().Context(), "store call failed",
			"resource", what, "method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}
