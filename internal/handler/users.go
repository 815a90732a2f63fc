package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/middleware"
	"github.com/iliyamo/football-club/internal/model"
)

// UserStore is what the user endpoints need from persistence.
type UserStore interface {
	FindUserByID(ctx context.Context, id uint64) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	UpdateProfile(ctx context.Context, id uint64, fullName string, phone, avatar *string) error
	ListUsers(ctx context.Context, page model.Page) ([]model.User, error)
	AssignRole(ctx context.Context, userID, roleID uint64) error
	RemoveRole(ctx context.Context, userID, roleID uint64) error
}

// UserHandler serves the profile and user administration endpoints.
type UserHandler struct {
	storeErrors
	users UserStore
}

func NewUserHandler(users UserStore, log logging.Logger) *UserHandler {
	return &UserHandler{storeErrors: storeErrors{log: log}, users: users}
}

// userResp is the public view of a user. The password hash never leaves
// the service.
type userResp struct {
	ID          uint64       `json:"id"`
	Username    string       `json:"username"`
	Email       string       `json:"email"`
	FullName    string       `json:"full_name"`
	Phone       *string      `json:"phone"`
	Avatar      *string      `json:"avatar"`
	IsActive    bool         `json:"is_active"`
	IsSuperuser bool         `json:"is_superuser"`
	CreatedAt   time.Time    `json:"created_at"`
	LastLogin   *time.Time   `json:"last_login"`
	Roles       []model.Role `json:"roles"`
}

func toUserResp(u *model.User) userResp {
	roles := u.Roles
	if roles == nil {
		roles = []model.Role{}
	}
	return userResp{
		ID: u.ID, Username: u.Username, Email: u.Email, FullName: u.FullName,
		Phone: u.Phone, Avatar: u.Avatar, IsActive: u.IsActive, IsSuperuser: u.IsSuperuser,
		CreatedAt: u.CreatedAt, LastLogin: u.LastLogin, Roles: roles,
	}
}

// Me returns the authenticated principal.
func (h *UserHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, toUserResp(middleware.Principal(c)))
}

// UpdateMe applies a profile patch (full_name, phone, avatar) to the
// authenticated principal. Only the profile columns are written; the
// response is the row as stored afterwards, so a concurrent admin change
// to is_active or is_superuser is neither overwritten nor hidden.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var patch model.UserPatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody(c)
	}
	u := *middleware.Principal(c)
	if err := patch.Apply(&u); err != nil {
		return h.storeError(c, err, "user")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.users.UpdateProfile(ctx, u.ID, u.FullName, u.Phone, u.Avatar); err != nil {
		return h.storeError(c, err, "user")
	}
	fresh, err := h.users.FindUserByID(ctx, u.ID)
	if err != nil {
		return h.storeError(c, err, "user")
	}
	return c.JSON(http.StatusOK, toUserResp(fresh))
}

// List returns one page of users (superuser only).
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.users.ListUsers(ctx, pageFrom(c))
	if err != nil {
		return h.storeError(c, err, "user")
	}
	out := make([]userResp, 0, len(users))
	for i := range users {
		out = append(out, toUserResp(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Update applies an admin patch, which may also toggle is_active and
// is_superuser (superuser only). Deactivation takes effect on the user's
// next request.
func (h *UserHandler) Update(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var patch model.AdminUserPatch
	if err := c.Bind(&patch); err != nil {
		return invalidBody(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.users.FindUserByID(ctx, id)
	if err != nil {
		return h.storeError(c, err, "user")
	}
	if err := patch.Apply(u); err != nil {
		return h.storeError(c, err, "user")
	}
	if err := h.users.UpdateUser(ctx, u); err != nil {
		return h.storeError(c, err, "user")
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// AssignRole links a role to a user (superuser only).
func (h *UserHandler) AssignRole(c echo.Context) error {
	uid, ok1 := pathID(c, "id")
	rid, ok2 := pathID(c, "role_id")
	if !ok1 || !ok2 {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.users.AssignRole(ctx, uid, rid); err != nil {
		return h.storeError(c, err, "user or role")
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveRole unlinks a role from a user (superuser only).
func (h *UserHandler) RemoveRole(c echo.Context) error {
	uid, ok1 := pathID(c, "id")
	rid, ok2 := pathID(c, "role_id")
	if !ok1 || !ok2 {
		return badID(c)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.users.RemoveRole(ctx, uid, rid); err != nil {
		return h.storeError(c, err, "role assignment")
	}
	return c.NoContent(http.StatusNoContent)
}
