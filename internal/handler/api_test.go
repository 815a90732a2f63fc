package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/handler"
	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/metrics"
	"github.com/iliyamo/football-club/internal/middleware"
	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/router"
	"github.com/iliyamo/football-club/internal/service"
)

type api struct {
	e     *echo.Echo
	users *memUsers
	codec *auth.Codec
}

func newAPI(t *testing.T) *api {
	t.Helper()
	log := logging.Discard()
	m := metrics.New(prometheus.NewRegistry())

	codec, err := auth.NewCodec(auth.CodecConfig{Secret: []byte("api-test-secret")})
	require.NoError(t, err)
	hasher := auth.NewHasher(bcrypt.MinCost)

	roles := newMemRoles()
	users := newMemUsers(roles)
	resolver := auth.NewResolver(users, true)
	guard := middleware.NewGuard(auth.NewAuthenticator(codec, resolver), log, m)

	teams := newMemTeams()
	matches := &memMatches{}
	standings := &memStandings{}
	matchSvc := service.NewMatchService(matches, nil, service.NewStandingsService(matches, standings), log)

	e := echo.New()
	router.Setup(e, router.Handlers{
		Health:       handler.Health(nil),
		Auth:         handler.NewAuthHandler(service.NewAuthService(users, hasher, codec, resolver, log), log, m),
		Users:        handler.NewUserHandler(users, log),
		Roles:        handler.NewRoleHandler(roles, log),
		Teams:        handler.NewTeamHandler(teams, log),
		Players:      handler.NewPlayerHandler(newMemPlayers(teams), log),
		Competitions: handler.NewCompetitionHandler(memCompetitions{}, matches, matchSvc, standings, log),
	}, guard, nil, m)

	return &api{e: e, users: users, codec: codec}
}

// superuser inserts an administrator directly into the store, the way
// clubctl create-superuser does, and returns an access token for it.
func (a *api) superuser(t *testing.T) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("root-pw"), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := a.users.InsertUser(context.Background(), model.NewUser{
		Username: "root", Email: "root@club.test", PasswordHash: string(hash), FullName: "Root", IsSuperuser: true,
	})
	require.NoError(t, err)
	tok, err := a.codec.IssueAccess(auth.Subject(id))
	require.NoError(t, err)
	return tok.Value
}

func (a *api) call(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *api) register(t *testing.T, username, password string) service.TokenPair {
	t.Helper()
	rec := a.call(http.MethodPost, "/api/v1/auth/register", "", echo.Map{
		"username": username, "email": username + "@club.test", "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[service.TokenPair](t, rec)
}

func TestRegisterAndLogin(t *testing.T) {
	a := newAPI(t)

	pair := a.register(t, "alice", "pw123")
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)

	rec := a.call(http.MethodPost, "/api/v1/auth/login", "", echo.Map{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "access_token")

	rec = a.call(http.MethodPost, "/api/v1/auth/login", "", echo.Map{"username": "nobody", "password": "pw123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/auth/login", "", echo.Map{"username": "alice", "password": "pw123"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[service.TokenPair](t, rec)

	rec = a.call(http.MethodGet, "/api/v1/users/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.NotNil(t, me["last_login"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_Duplicates(t *testing.T) {
	a := newAPI(t)
	a.register(t, "alice", "pw123")

	rec := a.call(http.MethodPost, "/api/v1/auth/register", "", echo.Map{
		"username": "alice", "email": "other@club.test", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/auth/register", "", echo.Map{
		"username": "alice2", "email": "alice@club.test", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/auth/register", "", echo.Map{
		"username": "bob", "email": "not-an-email", "password": "x",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuperuserOnlyRoutes(t *testing.T) {
	a := newAPI(t)
	alice := a.register(t, "alice", "pw123")
	root := a.superuser(t)

	rec := a.call(http.MethodGet, "/api/v1/users", alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = a.call(http.MethodGet, "/api/v1/users", root, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = a.call(http.MethodGet, "/api/v1/roles", alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMissingAndBadTokens(t *testing.T) {
	a := newAPI(t)
	alice := a.register(t, "alice", "pw123")

	rec := a.call(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))

	rec = a.call(http.MethodGet, "/api/v1/users/me", alice.AccessToken+"x", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Refresh tokens are not bearer credentials.
	rec = a.call(http.MethodGet, "/api/v1/users/me", alice.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefresh(t *testing.T) {
	a := newAPI(t)
	alice := a.register(t, "alice", "pw123")

	rec := a.call(http.MethodPost, "/api/v1/auth/refresh", "", echo.Map{"refresh_token": alice.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decode[service.TokenPair](t, rec)
	assert.NotEmpty(t, pair.AccessToken)

	rec = a.call(http.MethodPost, "/api/v1/auth/refresh", "", echo.Map{"refresh_token": alice.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/auth/refresh", "", echo.Map{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeactivatedAndDeletedPrincipals(t *testing.T) {
	a := newAPI(t)
	alice := a.register(t, "alice", "pw123")
	root := a.superuser(t)

	rec := a.call(http.MethodPatch, "/api/v1/users/1", root, echo.Map{"is_active": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, decode[map[string]any](t, rec)["is_active"])

	rec = a.call(http.MethodGet, "/api/v1/users/me", alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/auth/login", "", echo.Map{"username": "alice", "password": "pw123"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	a.users.delete(1)
	rec = a.call(http.MethodGet, "/api/v1/users/me", alice.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"user not found"}`, rec.Body.String())
}

func TestUpdateMe(t *testing.T) {
	a := newAPI(t)
	alice := a.register(t, "alice", "pw123")

	rec := a.call(http.MethodPatch, "/api/v1/users/me", alice.AccessToken, echo.Map{"full_name": "Alice Liddell"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice Liddell", decode[map[string]any](t, rec)["full_name"])

	rec = a.call(http.MethodPatch, "/api/v1/users/me", alice.AccessToken, echo.Map{"full_name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateMe_KeepsConcurrentDemotion(t *testing.T) {
	a := newAPI(t)
	root := a.superuser(t)
	bob := a.register(t, "bob", "pw123")
	bobID := uint64(2)

	rec := a.call(http.MethodPatch, fmt.Sprintf("/api/v1/users/%d", bobID), root, echo.Map{"is_superuser": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// bob's principal is resolved as a superuser, then the account is
	// demoted before the profile write lands.
	a.users.mu.Lock()
	a.users.afterFind = func(u *model.User) { u.IsSuperuser = false }
	a.users.mu.Unlock()

	rec = a.call(http.MethodPatch, "/api/v1/users/me", bob.AccessToken, echo.Map{"phone": "555-0101"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, false, body["is_superuser"])
	assert.Equal(t, "555-0101", body["phone"])

	stored, err := a.users.FindUserByID(context.Background(), bobID)
	require.NoError(t, err)
	assert.False(t, stored.IsSuperuser)
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.Phone)
	assert.Equal(t, "555-0101", *stored.Phone)
}

func TestPermissionGrantedThroughRole(t *testing.T) {
	a := newAPI(t)
	alice := a.register(t, "alice", "pw123")
	root := a.superuser(t)

	rec := a.call(http.MethodPost, "/api/v1/teams", alice.AccessToken, echo.Map{"name": "Rovers"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/roles", root, echo.Map{"name": "scout"})
	require.Equal(t, http.StatusCreated, rec.Code)
	role := decode[model.Role](t, rec)

	rec = a.call(http.MethodPost, fmt.Sprintf("/api/v1/roles/%d/permissions", role.ID), root,
		echo.Map{"resource": "Team", "action": "create"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "team:create", decode[model.Permission](t, rec).Name)

	rec = a.call(http.MethodPut, fmt.Sprintf("/api/v1/users/1/roles/%d", role.ID), root, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The grant is visible on the very next request.
	rec = a.call(http.MethodPost, "/api/v1/teams", alice.AccessToken, echo.Map{"name": "Rovers"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	team := decode[model.Team](t, rec)

	rec = a.call(http.MethodPost, "/api/v1/teams", alice.AccessToken, echo.Map{"name": "Rovers"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// create does not imply delete.
	rec = a.call(http.MethodDelete, fmt.Sprintf("/api/v1/teams/%d", team.ID), alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.call(http.MethodGet, "/api/v1/teams", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Team](t, rec), 1)

	rec = a.call(http.MethodDelete, fmt.Sprintf("/api/v1/users/1/roles/%d", role.ID), root, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.call(http.MethodPost, "/api/v1/teams", alice.AccessToken, echo.Map{"name": "United"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTeamCRUD(t *testing.T) {
	a := newAPI(t)
	root := a.superuser(t)

	rec := a.call(http.MethodPost, "/api/v1/teams", root, echo.Map{"name": "Rovers", "home_ground": "Old Park"})
	require.Equal(t, http.StatusCreated, rec.Code)
	team := decode[model.Team](t, rec)
	path := fmt.Sprintf("/api/v1/teams/%d", team.ID)

	rec = a.call(http.MethodPut, path, root, echo.Map{"founded_year": 1901})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Team](t, rec)
	assert.Equal(t, "Rovers", updated.Name)
	assert.Equal(t, "Old Park", *updated.HomeGround)
	assert.Equal(t, 1901, *updated.FoundedYear)

	rec = a.call(http.MethodPost, "/api/v1/teams", root, echo.Map{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.call(http.MethodGet, "/api/v1/teams/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.call(http.MethodDelete, path, root, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = a.call(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"team not found"}`, rec.Body.String())
}

func TestPlayerCRUDAndFilters(t *testing.T) {
	a := newAPI(t)
	root := a.superuser(t)

	for _, name := range []string{"Rovers", "United"} {
		rec := a.call(http.MethodPost, "/api/v1/teams", root, echo.Map{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	for _, p := range []echo.Map{
		{"team_id": 1, "name": "Ann", "position": "Forward", "jersey_number": 9},
		{"team_id": 1, "name": "Bo", "position": "goalkeeper"},
		{"team_id": 2, "name": "Cy", "position": "forward"},
	} {
		rec := a.call(http.MethodPost, "/api/v1/players", root, p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := a.call(http.MethodPost, "/api/v1/players", root, echo.Map{"team_id": 99, "name": "Dee", "position": "defender"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"referenced record does not exist or is still in use"}`, rec.Body.String())

	rec = a.call(http.MethodPost, "/api/v1/players", root, echo.Map{"team_id": 1, "name": "Dee", "position": "striker"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	names := func(path string) []string {
		t.Helper()
		rec := a.call(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var out []string
		for _, p := range decode[[]model.Player](t, rec) {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Ann", "Bo", "Cy"}, names("/api/v1/players"))
	assert.Equal(t, []string{"Ann", "Bo"}, names("/api/v1/players?team_id=1"))
	assert.Equal(t, []string{"Ann", "Cy"}, names("/api/v1/players?position=FORWARD"))
	assert.Equal(t, []string{"Ann"}, names("/api/v1/players?team_id=1&position=forward"))
	assert.Equal(t, []string{"Bo"}, names("/api/v1/players?skip=1&limit=1"))

	rec = a.call(http.MethodGet, "/api/v1/players?team_id=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	for _, q := range []string{"position=striker", "team_id=abc", "team_id=0"} {
		rec = a.call(http.MethodGet, "/api/v1/players?"+q, "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = a.call(http.MethodPut, "/api/v1/players/1", root, echo.Map{"jersey_number": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = a.call(http.MethodGet, "/api/v1/players/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ann := decode[model.Player](t, rec)
	require.NotNil(t, ann.JerseyNumber)
	assert.Equal(t, 10, *ann.JerseyNumber)
	assert.Equal(t, "forward", ann.Position)

	alice := a.register(t, "alice", "pw123")
	rec = a.call(http.MethodDelete, "/api/v1/players/1", alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.call(http.MethodDelete, "/api/v1/players/1", root, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = a.call(http.MethodGet, "/api/v1/players/1", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordMatchUpdatesStandings(t *testing.T) {
	a := newAPI(t)
	root := a.superuser(t)
	alice := a.register(t, "alice", "pw123")

	body := echo.Map{"home_team_id": 1, "away_team_id": 2, "home_goals": 2, "away_goals": 0}
	rec := a.call(http.MethodPost, "/api/v1/competitions/1/matches", alice.AccessToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/competitions/1/matches", root, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m := decode[model.MatchRecord](t, rec)
	assert.Equal(t, uint64(1), m.CompetitionID)
	assert.Equal(t, model.MatchFinished, m.Status)

	rec = a.call(http.MethodGet, "/api/v1/competitions/1/standings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	table := decode[[]model.Standing](t, rec)
	require.Len(t, table, 2)
	assert.Equal(t, uint64(1), table[0].TeamID)
	assert.Equal(t, 1, table[0].Rank)
	assert.Equal(t, 3, table[0].Points)
	assert.Equal(t, 0, table[1].Points)

	rec = a.call(http.MethodGet, "/api/v1/competitions/1/matches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.MatchRecord](t, rec), 1)

	rec = a.call(http.MethodGet, "/api/v1/competitions/9/standings", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.call(http.MethodPost, "/api/v1/competitions/1/matches", root,
		echo.Map{"home_team_id": 1, "away_team_id": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	a := newAPI(t)

	rec := a.call(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	a.call(http.MethodPost, "/api/v1/auth/login", "", echo.Map{"username": "x", "password": "y"})
	rec = a.call(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `club_auth_decisions_total{outcome="invalid_credentials",stage="login"} 1`)
}
