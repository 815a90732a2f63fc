package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/metrics"
	"github.com/iliyamo/football-club/internal/middleware"
	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/service"
)

// AuthHandler serves /auth/register, /auth/login and /auth/refresh.
type AuthHandler struct {
	svc     *service.AuthService
	log     logging.Logger
	metrics *metrics.Metrics
}

func NewAuthHandler(svc *service.AuthService, log logging.Logger, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{svc: svc, log: log, metrics: m}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates a regular account and returns a token pair (201).
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.Registration
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.svc.Register(ctx, req)
	if err != nil {
		var ie *model.InputError
		switch {
		case errors.As(err, &ie):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ie.Msg})
		case errors.Is(err, service.ErrUsernameTaken), errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		h.log.Error(ctx, "register failed", "error", err)
		return middleware.WriteAuthError(c, err)
	}
	return c.JSON(http.StatusCreated, pair)
}

// Login verifies username and password and returns a token pair. No token
// is issued on any failure.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.metrics.AuthDecision("login", auth.Reason(err))
		// The username is logged, the password never.
		h.log.Warn(ctx, "login failed", "username", req.Username, "reason", auth.Reason(err))
		return middleware.WriteAuthError(c, err)
	}
	h.metrics.AuthDecision("login", "allow")
	return c.JSON(http.StatusOK, pair)
}

// Refresh exchanges a refresh token for a new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.metrics.AuthDecision("refresh", auth.Reason(err))
		return middleware.WriteAuthError(c, err)
	}
	return c.JSON(http.StatusOK, pair)
}
