package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/football-club/internal/logging"
	"github.com/iliyamo/football-club/internal/model"
)

// RoleStore is what the role endpoints need from persistence.
type RoleStore interface {
	List(ctx context.Context) ([]model.Role, error)
	Create(ctx context.Context, r *model.Role) error
	AddPermission(ctx context.Context, roleID uint64, p model.Permission) (model.Permission, error)
}

// RoleHandler serves role and permission administration (superuser only).
type RoleHandler struct {
	storeErrors
	roles RoleStore
}

func NewRoleHandler(roles RoleStore, log logging.Logger) *RoleHandler {
	return &RoleHandler{storeErrors: storeErrors{log: log}, roles: roles}
}

type roleReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type permissionReq struct {
	Resource    string  `json:"resource"`
	Action      string  `json:"action"`
	Description *string `json:"description"`
}

func (h *RoleHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	roles, err := h.roles.List(ctx)
	if err != nil {
		return h.storeError(c, err, "role")
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) Create(c echo.Context) error {
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 50 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must be 1-50 characters"})
	}
	role := &model.Role{Name: name, Description: req.Description}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.roles.Create(ctx, role); err != nil {
		return h.storeError(c, err, "role")
	}
	return c.JSON(http.StatusCreated, role)
}

// AddPermission grants (resource, action) to a role.
func (h *RoleHandler) AddPermission(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badID(c)
	}
	var req permissionReq
	if err := c.Bind(&req); err != nil {
		return invalidBody(c)
	}
	res := strings.ToLower(strings.TrimSpace(req.Resource))
	act := strings.ToLower(strings.TrimSpace(req.Action))
	if res == "" || act == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "resource and action are required"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.roles.AddPermission(ctx, id, model.Permission{Resource: res, Action: act, Description: req.Description})
	if err != nil {
		return h.storeError(c, err, "role")
	}
	return c.JSON(http.StatusCreated, p)
}
