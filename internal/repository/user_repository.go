package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/football-club/internal/model"
)

// UserRepo reads and writes `users` and the `user_roles` link table.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// userWithRoles selects a user together with every role and permission it
// holds. One row per (role, permission) pair; users without roles come
// back as a single row with NULL role columns.
const userWithRoles = `
SELECT u.id, u.username, u.email, u.password_hash, u.full_name, u.phone, u.avatar,
       u.is_active, u.is_superuser, u.created_at, u.updated_at, u.last_login,
       r.id, r.name, r.description, r.is_system, r.created_at,
       p.id, p.name, p.resource, p.action, p.description
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id
LEFT JOIN role_permissions rp ON rp.role_id = r.id
LEFT JOIN permissions p ON p.id = rp.permission_id
`

// FindUserByID loads a user with roles and permissions in one query.
// It returns ErrNotFound when the id does not exist.
func (r *UserRepo) FindUserByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.findOne(ctx, userWithRoles+"WHERE u.id = ? ORDER BY r.id, p.id", id)
}

// FindUserByUsername is the login lookup. Usernames are matched exactly.
func (r *UserRepo) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, userWithRoles+"WHERE u.username = ? ORDER BY r.id, p.id", username)
}

func (r *UserRepo) findOne(ctx context.Context, q string, arg any) (*model.User, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var u *model.User
	for rows.Next() {
		var (
			cur  model.User
			role nullRole
			perm nullPermission
		)
		if err := rows.Scan(
			&cur.ID, &cur.Username, &cur.Email, &cur.PasswordHash, &cur.FullName, &cur.Phone, &cur.Avatar,
			&cur.IsActive, &cur.IsSuperuser, &cur.CreatedAt, &cur.UpdatedAt, &cur.LastLogin,
			&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt,
			&perm.ID, &perm.Name, &perm.Resource, &perm.Action, &perm.Description,
		); err != nil {
			return nil, err
		}
		if u == nil {
			u = &cur
		}
		u.Roles = appendRole(u.Roles, role, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}

// TakenFields reports which of username and email already belong to an
// account.
func (r *UserRepo) TakenFields(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error) {
	const q = `SELECT COALESCE(SUM(username = ?), 0), COALESCE(SUM(email = ?), 0)
	           FROM users WHERE username = ? OR email = ?`
	var nu, ne int
	if err := r.db.QueryRowContext(ctx, q, username, email, username, email).Scan(&nu, &ne); err != nil {
		return false, false, err
	}
	return nu > 0, ne > 0, nil
}

// InsertUser creates an active account and returns its id. A duplicate
// username or email yields ErrConflict.
func (r *UserRepo) InsertUser(ctx context.Context, nu model.NewUser) (uint64, error) {
	const q = `INSERT INTO users (username, email, password_hash, full_name, phone, is_active, is_superuser)
	           VALUES (?, ?, ?, ?, ?, TRUE, ?)`
	res, err := r.db.ExecContext(ctx, q,
		nu.Username, strings.ToLower(strings.TrimSpace(nu.Email)), nu.PasswordHash,
		nu.FullName, nu.Phone, nu.IsSuperuser)
	if err != nil {
		return 0, translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// UpdateUser writes the mutable profile and status columns of u.
func (r *UserRepo) UpdateUser(ctx context.Context, u *model.User) error {
	const q = `UPDATE users
	           SET full_name = ?, phone = ?, avatar = ?, is_active = ?, is_superuser = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, u.FullName, u.Phone, u.Avatar, u.IsActive, u.IsSuperuser, u.ID)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// UpdateProfile writes only the self-service columns. Status flags are
// left to UpdateUser so a profile edit never rewrites them.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, fullName string, phone, avatar *string) error {
	const q = `UPDATE users
	           SET full_name = ?, phone = ?, avatar = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, fullName, phone, avatar, id)
	if err != nil {
		return translate(err)
	}
	return affected(res)
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = ? WHERE id = ?", at.UTC(), id)
	return err
}

// ListUsers returns one page of users ordered by id. Roles are not
// loaded; use FindUserByID for the full principal.
func (r *UserRepo) ListUsers(ctx context.Context, page model.Page) ([]model.User, error) {
	page = page.Normalize()
	const q = `SELECT id, username, email, full_name, phone, avatar, is_active, is_superuser,
	                  created_at, updated_at, last_login
	           FROM users ORDER BY id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, page.Limit, page.Skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Phone, &u.Avatar,
			&u.IsActive, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt, &u.LastLogin); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// AssignRole links a role to a user. Assigning a role twice is a no-op;
// an unknown user or role yields ErrReference.
func (r *UserRepo) AssignRole(ctx context.Context, userID, roleID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE role_id = role_id`, userID, roleID)
	return translate(err)
}

// RemoveRole unlinks a role from a user. It returns ErrNotFound when the
// user did not hold the role.
func (r *UserRepo) RemoveRole(ctx context.Context, userID, roleID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id = ? AND role_id = ?", userID, roleID)
	if err != nil {
		return err
	}
	return affected(res)
}
