package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/metrics"
	"github.com/iliyamo/football-club/internal/model"
)

const (
	principalKey = "principal"
	challenge    = `Bearer realm="api"`
)

// Guard turns the auth core into echo middleware. Authenticate must run
// before any Require on the same route.
type Guard struct {
	authn   *auth.Authenticator
	log     logging.Logger
	metrics *metrics.Metrics
}

func NewGuard(authn *auth.Authenticator, log logging.Logger, m *metrics.Metrics) *Guard {
	return &Guard{authn: authn, log: log, metrics: m}
}

// Authenticate validates the Bearer access token, resolves its subject
// and stores the principal in the context. Any failure ends the request.
func (g *Guard) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearer(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				g.metrics.AuthDecision("token", "missing")
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			u, err := g.authn.Authenticate(c.Request().Context(), raw)
			if err != nil {
				stage := "principal"
				if errors.Is(err, auth.ErrInvalidToken) {
					stage = "token"
				}
				g.metrics.AuthDecision(stage, auth.Reason(err))
				g.log.Warn(c.Request().Context(), "authentication failed",
					"stage", stage, "reason", auth.Reason(err), "path", c.Path())
				return WriteAuthError(c, err)
			}
			c.Set(principalKey, u)
			return next(c)
		}
	}
}

// Require rejects the request with 403 unless the authenticated principal
// meets req. The decision is made per request; nothing is cached.
func (g *Guard) Require(req auth.Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := Principal(c)
			if err := auth.Authorize(u, req); err != nil {
				g.metrics.AuthDecision("privilege", auth.Reason(err))
				var uid uint64
				if u != nil {
					uid = u.ID
				}
				g.log.Warn(c.Request().Context(), "access denied",
					"user_id", uid, "requirement", req.String(), "path", c.Path())
				return WriteAuthError(c, err)
			}
			g.metrics.AuthDecision("privilege", "allow")
			return next(c)
		}
	}
}

// Principal returns the user stored by Authenticate, or nil.
func Principal(c echo.Context) *model.User {
	u, _ := c.Get(principalKey).(*model.User)
	return u
}

func bearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// StatusFor maps an auth core error onto the HTTP status the API answers
// with. Errors outside the taxonomy are 500.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "invalid token"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrPrincipalNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, auth.ErrAccountInactive):
		return http.StatusForbidden, "user is inactive"
	case errors.Is(err, auth.ErrInsufficientPrivilege):
		return http.StatusForbidden, "not enough permissions"
	case errors.Is(err, auth.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// WriteAuthError answers with the status and message of StatusFor. 401
// responses carry a WWW-Authenticate challenge.
func WriteAuthError(c echo.Context, err error) error {
	status, msg := StatusFor(err)
	if status == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
	}
	return c.JSON(status, echo.Map{"error": msg})
}
