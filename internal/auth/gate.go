package auth

import (
	"fmt"

	"github.com/iliyamo/football-club/internal/model"
)

type RequirementKind int

const (
	// RequireAuthenticated is met by any resolved principal.
	RequireAuthenticated RequirementKind = iota
	// RequireSuperuser is met only by principals with IsSuperuser.
	RequireSuperuser
	// RequirePermission is met by superusers and by principals holding a
	// role that grants (Resource, Action).
	RequirePermission
)

// Requirement is the capability an endpoint demands.
type Requirement struct {
	Kind     RequirementKind
	Resource string
	Action   string
}

func Authenticated() Requirement { return Requirement{Kind: RequireAuthenticated} }

func Superuser() Requirement { return Requirement{Kind: RequireSuperuser} }

func Permission(resource, action string) Requirement {
	return Requirement{Kind: RequirePermission, Resource: resource, Action: action}
}

func (r Requirement) String() string {
	switch r.Kind {
	case RequireAuthenticated:
		return "authenticated"
	case RequireSuperuser:
		return "superuser"
	case RequirePermission:
		return "permission:" + r.Resource + ":" + r.Action
	default:
		return "unknown"
	}
}

// Authorize decides whether u satisfies req.  It returns nil to allow and
// an error matching ErrInsufficientPrivilege to deny.  A nil principal is
// never allowed.
func Authorize(u *model.User, req Requirement) error {
	if u == nil {
		return fmt.Errorf("%w: no principal", ErrInsufficientPrivilege)
	}
	switch req.Kind {
	case RequireAuthenticated:
		return nil
	case RequireSuperuser:
		if u.IsSuperuser {
			return nil
		}
	case RequirePermission:
		if u.IsSuperuser || u.HasPermission(req.Resource, req.Action) {
			return nil
		}
	}
	return fmt.Errorf("%w: %s required", ErrInsufficientPrivilege, req)
}
