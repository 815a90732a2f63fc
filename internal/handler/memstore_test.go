package handler_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/repository"
)

// memRoles is shared by memUsers so that permissions granted to a role
// show up on the next principal resolution, as they do with MySQL.
type memRoles struct {
	mu    sync.Mutex
	roles map[uint64]*model.Role
	next  uint64
}

func newMemRoles() *memRoles { return &memRoles{roles: map[uint64]*model.Role{}} }

func (m *memRoles) List(context.Context) ([]model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, m.copyRole(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRoles) Create(_ context.Context, r *model.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.roles {
		if existing.Name == r.Name {
			return repository.ErrConflict
		}
	}
	m.next++
	r.ID = m.next
	r.CreatedAt = time.Now().UTC()
	r.Permissions = []model.Permission{}
	cp := *r
	m.roles[r.ID] = &cp
	return nil
}

func (m *memRoles) AddPermission(_ context.Context, roleID uint64, p model.Permission) (model.Permission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[roleID]
	if !ok {
		return model.Permission{}, repository.ErrNotFound
	}
	if p.Name == "" {
		p.Name = p.Resource + ":" + p.Action
	}
	p.ID = uint64(len(r.Permissions) + 1)
	r.Permissions = append(r.Permissions, p)
	return p, nil
}

func (m *memRoles) get(id uint64) (model.Role, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return model.Role{}, false
	}
	return m.copyRole(r), true
}

func (m *memRoles) copyRole(r *model.Role) model.Role {
	cp := *r
	cp.Permissions = append([]model.Permission{}, r.Permissions...)
	return cp
}

type memUsers struct {
	mu      sync.Mutex
	byID    map[uint64]*model.User
	roleIDs map[uint64][]uint64
	roles   *memRoles
	next    uint64

	// afterFind, when set, runs once against the stored row right after
	// FindUserByID has copied it out. Tests use it to change the row
	// between principal resolution and the handler's write.
	afterFind func(u *model.User)
}

func newMemUsers(roles *memRoles) *memUsers {
	return &memUsers{byID: map[uint64]*model.User{}, roleIDs: map[uint64][]uint64{}, roles: roles}
}

func (m *memUsers) load(u *model.User) *model.User {
	cp := *u
	cp.Roles = nil
	for _, rid := range m.roleIDs[u.ID] {
		if r, ok := m.roles.get(rid); ok {
			cp.Roles = append(cp.Roles, r)
		}
	}
	return &cp
}

func (m *memUsers) FindUserByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := m.load(u)
	if fn := m.afterFind; fn != nil {
		m.afterFind = nil
		fn(u)
	}
	return out, nil
}

func (m *memUsers) FindUserByUsername(_ context.Context, name string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == name {
			return m.load(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) TakenFields(_ context.Context, username, email string) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var un, em bool
	for _, u := range m.byID {
		un = un || u.Username == username
		em = em || u.Email == email
	}
	return un, em, nil
}

func (m *memUsers) InsertUser(_ context.Context, nu model.NewUser) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.byID[m.next] = &model.User{
		ID: m.next, Username: nu.Username, Email: nu.Email, PasswordHash: nu.PasswordHash,
		FullName: nu.FullName, Phone: nu.Phone, IsActive: true, IsSuperuser: nu.IsSuperuser,
		CreatedAt: time.Now().UTC(),
	}
	return m.next, nil
}

func (m *memUsers) TouchLastLogin(_ context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (m *memUsers) UpdateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	cp.Roles = nil
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id uint64, fullName string, phone, avatar *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FullName, u.Phone, u.Avatar = fullName, phone, avatar
	return nil
}

func (m *memUsers) ListUsers(_ context.Context, page model.Page) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.User, 0, len(m.byID))
	for _, u := range m.byID {
		out = append(out, *m.load(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if page.Skip >= len(out) {
		return nil, nil
	}
	out = out[page.Skip:]
	if len(out) > page.Limit {
		out = out[:page.Limit]
	}
	return out, nil
}

func (m *memUsers) AssignRole(_ context.Context, userID, roleID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[userID]; !ok {
		return repository.ErrReference
	}
	if _, ok := m.roles.get(roleID); !ok {
		return repository.ErrReference
	}
	for _, rid := range m.roleIDs[userID] {
		if rid == roleID {
			return nil
		}
	}
	m.roleIDs[userID] = append(m.roleIDs[userID], roleID)
	return nil
}

func (m *memUsers) RemoveRole(_ context.Context, userID, roleID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.roleIDs[userID]
	for i, rid := range ids {
		if rid == roleID {
			m.roleIDs[userID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) delete(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
}

type memTeams struct {
	mu    sync.Mutex
	teams map[uint64]model.Team
	next  uint64
}

func newMemTeams() *memTeams { return &memTeams{teams: map[uint64]model.Team{}} }

func (m *memTeams) Create(_ context.Context, t *model.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.teams {
		if existing.Name == t.Name {
			return repository.ErrConflict
		}
	}
	m.next++
	t.ID = m.next
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	m.teams[t.ID] = *t
	return nil
}

func (m *memTeams) Get(_ context.Context, id uint64) (*model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (m *memTeams) List(_ context.Context, _ model.Page) ([]model.Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Team, 0, len(m.teams))
	for _, t := range m.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTeams) Update(_ context.Context, t *model.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[t.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range m.teams {
		if id != t.ID && existing.Name == t.Name {
			return repository.ErrConflict
		}
	}
	m.teams[t.ID] = *t
	return nil
}

func (m *memTeams) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teams[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.teams, id)
	return nil
}

// memPlayers checks team_id against teams the way the players.team_id
// foreign key does.
type memPlayers struct {
	mu      sync.Mutex
	teams   *memTeams
	players map[uint64]model.Player
	next    uint64
}

func newMemPlayers(teams *memTeams) *memPlayers {
	return &memPlayers{teams: teams, players: map[uint64]model.Player{}}
}

func (m *memPlayers) Create(ctx context.Context, p *model.Player) error {
	if _, err := m.teams.Get(ctx, p.TeamID); err != nil {
		return repository.ErrReference
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	p.ID = m.next
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	m.players[p.ID] = *p
	return nil
}

func (m *memPlayers) Get(_ context.Context, id uint64) (*model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memPlayers) List(_ context.Context, f model.PlayerFilter) ([]model.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Player
	for _, p := range m.players {
		if f.TeamID != 0 && p.TeamID != f.TeamID {
			continue
		}
		if f.Position != "" && p.Position != f.Position {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if f.Skip >= len(out) {
		return nil, nil
	}
	out = out[f.Skip:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memPlayers) Update(_ context.Context, p *model.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[p.ID]; !ok {
		return repository.ErrNotFound
	}
	m.players[p.ID] = *p
	return nil
}

func (m *memPlayers) Delete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.players, id)
	return nil
}

// memCompetitions knows a single competition, id 1.
type memCompetitions struct{}

func (memCompetitions) Create(context.Context, *model.Competition) error { return repository.ErrConflict }

func (memCompetitions) Get(_ context.Context, id uint64) (*model.Competition, error) {
	if id != 1 {
		return nil, repository.ErrNotFound
	}
	return &model.Competition{ID: 1, Name: "League", CompetitionType: model.CompetitionLeague, Season: "2026"}, nil
}

func (c memCompetitions) List(ctx context.Context, _ model.Page) ([]model.Competition, error) {
	one, _ := c.Get(ctx, 1)
	return []model.Competition{*one}, nil
}

func (memCompetitions) Update(context.Context, *model.Competition) error { return nil }
func (memCompetitions) Delete(context.Context, uint64) error             { return repository.ErrNotFound }

type memMatches struct {
	mu      sync.Mutex
	matches []model.MatchRecord
}

func (m *memMatches) Create(_ context.Context, rec *model.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uint64(len(m.matches) + 1)
	m.matches = append(m.matches, *rec)
	return nil
}

func (m *memMatches) ListByCompetition(_ context.Context, id uint64) ([]model.MatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.MatchRecord
	for _, rec := range m.matches {
		if rec.CompetitionID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memStandings struct {
	mu     sync.Mutex
	tables map[uint64][]model.Standing
}

func (m *memStandings) ReplaceForCompetition(_ context.Context, id uint64, table []model.Standing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tables == nil {
		m.tables = map[uint64][]model.Standing{}
	}
	m.tables[id] = append([]model.Standing(nil), table...)
	return nil
}

func (m *memStandings) ListByCompetition(_ context.Context, id uint64) ([]model.Standing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tables[id], nil
}
