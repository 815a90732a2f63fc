// Package service holds the use cases that sit between the HTTP handlers
// and the repositories: registration and login, match recording and the
// standings table.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/iliyamo/football-club/internal/auth"
	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/model"
	"github.com/iliyamo/football-club/internal/repository"
)

// Users is the persistence surface the auth service needs.
type Users interface {
	FindUserByID(ctx context.Context, id uint64) (*model.User, error)
	FindUserByUsername(ctx context.Context, username string) (*model.User, error)
	TakenFields(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	InsertUser(ctx context.Context, nu model.NewUser) (uint64, error)
	TouchLastLogin(ctx context.Context, id uint64, at time.Time) error
}

// Validation failures surfaced to clients as 400.
var (
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
)

// Registration is the payload of POST /auth/register.
type Registration struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName string  `json:"full_name"`
	Phone    *string `json:"phone"`
}

// TokenPair is returned by register, login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthService issues tokens for credentials.
type AuthService struct {
	users    Users
	hasher   auth.Hasher
	codec    *auth.Codec
	resolver *auth.Resolver
	log      logging.Logger
	now      func() time.Time
}

func NewAuthService(users Users, hasher auth.Hasher, codec *auth.Codec, resolver *auth.Resolver, log logging.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, codec: codec, resolver: resolver, log: log, now: time.Now}
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,50}$`)

func (r *Registration) validate() error {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)
	if !usernameRe.MatchString(r.Username) {
		return &model.InputError{Msg: "username must be 3-50 letters, digits, '.', '_' or '-'"}
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		return &model.InputError{Msg: "email is not a valid address"}
	}
	if r.Password == "" {
		return &model.InputError{Msg: "password is required"}
	}
	if len(r.Password) > auth.MaxPasswordBytes {
		return &model.InputError{Msg: fmt.Sprintf("password must be at most %d bytes", auth.MaxPasswordBytes)}
	}
	if r.FullName == "" {
		r.FullName = r.Username
	}
	return nil
}

// Register creates a regular (non-superuser) account and logs it in.
func (s *AuthService) Register(ctx context.Context, reg Registration) (TokenPair, error) {
	if err := reg.validate(); err != nil {
		return TokenPair{}, err
	}
	userTaken, emailTaken, err := s.users.TakenFields(ctx, reg.Username, reg.Email)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %w", auth.ErrStoreUnavailable, err)
	}
	switch {
	case userTaken:
		return TokenPair{}, ErrUsernameTaken
	case emailTaken:
		return TokenPair{}, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.users.InsertUser(ctx, model.NewUser{
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hash,
		FullName:     reg.FullName,
		Phone:        reg.Phone,
	})
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, repository.ErrConflict) {
			return TokenPair{}, ErrUsernameTaken
		}
		return TokenPair{}, fmt.Errorf("%w: %w", auth.ErrStoreUnavailable, err)
	}
	s.log.Info(ctx, "user registered", "user_id", id)
	return s.issuePair(id)
}

// Login checks username and password. Unknown usernames and wrong
// passwords both yield auth.ErrInvalidCredentials and cost one bcrypt
// comparison each. A deactivated account yields auth.ErrAccountInactive
// only after the password has been verified.
func (s *AuthService) Login(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.hasher.Burn(password)
			return TokenPair{}, auth.ErrInvalidCredentials
		}
		return TokenPair{}, fmt.Errorf("%w: %w", auth.ErrStoreUnavailable, err)
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return TokenPair{}, auth.ErrInvalidCredentials
	}
	if !u.IsActive {
		return TokenPair{}, auth.ErrAccountInactive
	}
	if err := s.users.TouchLastLogin(ctx, u.ID, s.now()); err != nil {
		s.log.Warn(ctx, "record last login failed", "user_id", u.ID, "error", err)
	}
	return s.issuePair(u.ID)
}

// Refresh exchanges a valid refresh token for a new pair. The subject is
// resolved again, so deleted or deactivated accounts cannot refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	p, err := s.codec.VerifyKind(refreshToken, auth.KindRefresh)
	if err != nil {
		return TokenPair{}, err
	}
	u, err := s.resolver.Resolve(ctx, p)
	if err != nil {
		return TokenPair{}, err
	}
	return s.issuePair(u.ID)
}

func (s *AuthService) issuePair(id uint64) (TokenPair, error) {
	sub := auth.Subject(id)
	access, err := s.codec.IssueAccess(sub)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefresh(sub)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access.Value,
		RefreshToken: refresh.Value,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.codec.AccessTTL().Seconds()),
	}, nil
}
