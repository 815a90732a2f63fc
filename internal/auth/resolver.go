package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/repository"
)

// UserStore is the one store operation resolution needs.  FindUserByID
// returns the user with roles and permissions loaded, or an error
// matching repository.ErrNotFound.
type UserStore interface {
	FindUserByID(ctx context.Context, id uint64) (*model.User, error)
}

// Resolver maps a verified token payload to the stored user.  It reads
// the store on every call; nothing is cached between requests.
type Resolver struct {
	users         UserStore
	enforceActive bool
}

// NewResolver returns a Resolver.  When enforceActive is true a
// deactivated user's outstanding tokens stop working immediately instead
// of at expiry.
func NewResolver(users UserStore, enforceActive bool) *Resolver {
	return &Resolver{users: users, enforceActive: enforceActive}
}

// Resolve loads the principal named by p.Subject.
func (r *Resolver) Resolve(ctx context.Context, p Payload) (*model.User, error) {
	id, err := ParseSubject(p.Subject)
	if err != nil {
		return nil, err
	}
	u, err := r.users.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrPrincipalNotFound, id)
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if r.enforceActive && !u.IsActive {
		return nil, fmt.Errorf("%w: user %d", ErrAccountInactive, id)
	}
	return u, nil
}

// Subject formats a user id as a token subject.
func Subject(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// ParseSubject accepts a positive decimal id only.
func ParseSubject(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %w: bad subject %q", ErrInvalidToken, ErrTokenMalformed, s)
	}
	return id, nil
}
