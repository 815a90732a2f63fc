package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/football-club/internal/model"
)

// RoleRepo manages `roles`, `permissions` and the `role_permissions` link.
type RoleRepo struct{ db *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

// List returns every role with its permissions, ordered by role id.
func (r *RoleRepo) List(ctx context.Context) ([]model.Role, error) {
	const q = `SELECT r.id, r.name, r.description, r.is_system, r.created_at,
	                  p.id, p.name, p.resource, p.action, p.description
	           FROM roles r
	           LEFT JOIN role_permissions rp ON rp.role_id = r.id
	           LEFT JOIN permissions p ON p.id = rp.permission_id
	           ORDER BY r.id, p.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Role{}
	for rows.Next() {
		var (
			role nullRole
			perm nullPermission
		)
		if err := rows.Scan(&role.ID, &role.Name, &role.Description, &role.IsSystem, &role.CreatedAt,
			&perm.ID, &perm.Name, &perm.Resource, &perm.Action, &perm.Description); err != nil {
			return nil, err
		}
		out = appendRole(out, role, perm)
	}
	return out, rows.Err()
}

// Create inserts a role. A duplicate name yields ErrConflict.
func (r *RoleRepo) Create(ctx context.Context, role *model.Role) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO roles (name, description, is_system) VALUES (?, ?, ?)",
		role.Name, role.Description, role.IsSystem)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	role.ID = uint64(id)
	if role.Permissions == nil {
		role.Permissions = []model.Permission{}
	}
	return nil
}

// AddPermission grants (p.Resource, p.Action) to the role. The permission
// row is created on first use and shared between roles afterwards. An
// unknown role yields ErrReference.
func (r *RoleRepo) AddPermission(ctx context.Context, roleID uint64, p model.Permission) (model.Permission, error) {
	if p.Name == "" {
		p.Name = p.Resource + ":" + p.Action
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Permission{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// LAST_INSERT_ID(id) makes the existing row's id visible on duplicate.
	res, err := tx.ExecContext(ctx,
		`INSERT INTO permissions (name, resource, action, description) VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE id = LAST_INSERT_ID(id)`,
		p.Name, p.Resource, p.Action, p.Description)
	if err != nil {
		return model.Permission{}, fmt.Errorf("upsert permission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Permission{}, err
	}
	p.ID = uint64(id)

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE role_id = role_id`,
		roleID, p.ID); err != nil {
		err = translate(err)
		return model.Permission{}, err
	}
	if err = tx.Commit(); err != nil {
		return model.Permission{}, err
	}
	return p, nil
}
