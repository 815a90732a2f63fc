package repository

import (
	"database/sql"

	"github.com/iliyamo/football-club/internal/model"
)

// nullRole and nullPermission receive the LEFT JOIN side of the
// user/role queries, where every column may be NULL.
type nullRole struct {
	ID          sql.NullInt64
	Name        sql.NullString
	Description *string
	IsSystem    sql.NullBool
	CreatedAt   sql.NullTime
}

type nullPermission struct {
	ID          sql.NullInt64
	Name        sql.NullString
	Resource    sql.NullString
	Action      sql.NullString
	Description *string
}

// appendRole folds one joined row into roles. Rows arrive ordered by role
// id, so a role already seen is always the last element.
func appendRole(roles []model.Role, r nullRole, p nullPermission) []model.Role {
	if !r.ID.Valid {
		return roles
	}
	if n := len(roles); n == 0 || roles[n-1].ID != uint64(r.ID.Int64) {
		roles = append(roles, model.Role{
			ID:          uint64(r.ID.Int64),
			Name:        r.Name.String,
			Description: r.Description,
			IsSystem:    r.IsSystem.Bool,
			CreatedAt:   r.CreatedAt.Time,
			Permissions: []model.Permission{},
		})
	}
	if p.ID.Valid {
		last := &roles[len(roles)-1]
		last.Permissions = append(last.Permissions, model.Permission{
			ID:          uint64(p.ID.Int64),
			Name:        p.Name.String,
			Resource:    p.Resource.String,
			Action:      p.Action.String,
			Description: p.Description,
		})
	}
	return roles
}
