package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blockfunders/internal/authz"
	"blockfunders/internal/errors"
	"blockfunders/internal/service"
)

// RoleHandler handles role and permission endpoints.
type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RoleRequest carries a role name.
type RoleRequest struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

// PermissionsRequest carries a full permission-name set for a role.
type PermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

// List godoc
// @Summary List roles
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Param q query string false "Search by name"
// @Param with_paginate query int false "0 disables pagination"
// @Success 200 {object} ListResponse
// @Router /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	opts := parseListOptions(c)
	roles, total, err := h.roleService.List(c.Request().Context(), c.QueryParam("q"), opts)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, listResponse(roles, total, opts))
}

// Get godoc
// @Summary Get a role with its permissions
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} model.Role
// @Failure 404 {object} errors.ErrorResponse
// @Router /roles/{id} [get]
func (h *RoleHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	role, err := h.roleService.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, role)
}

// Create godoc
// @Summary Create a role
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body RoleRequest true "Role name"
// @Success 201 {object} model.Role
// @Failure 422 {object} errors.ValidationErrors
// @Router /roles [post]
func (h *RoleHandler) Create(c echo.Context) error {
	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	role, err := h.roleService.Create(c.Request().Context(), req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, role)
}

// Update godoc
// @Summary Rename a role
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Param request body RoleRequest true "New name"
// @Success 200 {object} model.Role
// @Failure 400 {object} errors.ErrorResponse "System roles cannot be modified"
// @Router /roles/{id} [put]
func (h *RoleHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req RoleRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	role, err := h.roleService.Rename(c.Request().Context(), id, req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, role)
}

// Delete godoc
// @Summary Delete a role
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse "System roles cannot be deleted"
// @Router /roles/{id} [delete]
func (h *RoleHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.roleService.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "role deleted successfully",
	})
}

// Permissions godoc
// @Summary List a role's permissions
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Param id path int true "Role ID"
// @Success 200 {array} model.Permission
// @Failure 404 {object} errors.ErrorResponse
// @Router /roles/{id}/permissions [get]
func (h *RoleHandler) Permissions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	perms, err := h.roleService.Permissions(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, perms)
}

// SetPermissions godoc
// @Summary Replace a role's permission set
// @Tags roles
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Role ID"
// @Param request body PermissionsRequest true "Permission names"
// @Success 200 {array} model.Permission
// @Failure 400 {object} errors.ErrorResponse "System roles cannot be modified"
// @Failure 422 {object} errors.ValidationErrors "Unknown permission name"
// @Router /roles/{id}/permissions [put]
func (h *RoleHandler) SetPermissions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req PermissionsRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	perms, err := h.roleService.SetPermissions(c.Request().Context(), id, req.Permissions)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, perms)
}

// AllPermissions godoc
// @Summary List every permission in the system
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Success 200 {array} model.Permission
// @Router /permissions [get]
func (h *RoleHandler) AllPermissions(c echo.Context) error {
	perms, err := h.roleService.AllPermissions(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, perms)
}

// MyPermissions godoc
// @Summary Effective permission names of the current user
// @Tags roles
// @Security BearerAuth
// @Produce json
// @Success 200 {array} string
// @Failure 401 {object} errors.ErrorResponse
// @Router /permissions/me [get]
func (h *RoleHandler) MyPermissions(c echo.Context) error {
	userID := authz.CurrentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "unauthenticated",
			Code:  "UNAUTHENTICATED",
		})
	}
	names, err := h.roleService.MyPermissions(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, names)
}
