package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"blockfunders/internal/repository"
	"blockfunders/internal/service"
)

// UserHandler handles admin-side user management endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserRequest represents user create/update fields. The profile picture
// arrives as a multipart file field named profile_picture.
type UserRequest struct {
	Username  string `json:"username" form:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name" validate:"required"`
	LastName  string `json:"last_name" form:"last_name" validate:"required"`
	RoleID    uint   `json:"role_id" form:"role_id" validate:"required"`
}

// List godoc
// @Summary List users
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param q query string false "Search by username, email or name"
// @Param role_id query int false "Filter by role"
// @Param with_paginate query int false "0 disables pagination"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} ListResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) List(c echo.Context) error {
	opts := parseListOptions(c)
	filter := repository.UserListFilter{Query: c.QueryParam("q")}
	if roleID, err := strconv.ParseUint(c.QueryParam("role_id"), 10, 32); err == nil {
		filter.RoleID = uint(roleID)
	}

	users, total, err := h.userService.List(c.Request().Context(), filter, opts)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, listResponse(users, total, opts))
}

// Get godoc
// @Summary Get a user with roles
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.userService.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Create godoc
// @Summary Create a user
// @Tags users
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param username formData string true "Username"
// @Param email formData string true "Email"
// @Param password formData string true "Password"
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param role_id formData int true "Role ID"
// @Param profile_picture formData file false "Profile picture"
// @Success 201 {object} model.User
// @Failure 422 {object} errors.ValidationErrors
// @Router /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	picture, ext, err := readUpload(c, "profile_picture")
	if err != nil {
		return invalidRequest()
	}

	user, err := h.userService.Create(c.Request().Context(), service.UserInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		RoleID:         req.RoleID,
		ProfilePicture: picture,
		PictureExt:     ext,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Update godoc
// @Summary Update a user
// @Tags users
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	picture, ext, err := readUpload(c, "profile_picture")
	if err != nil {
		return invalidRequest()
	}

	user, err := h.userService.Update(c.Request().Context(), id, service.UserInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		RoleID:         req.RoleID,
		ProfilePicture: picture,
		PictureExt:     ext,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// Delete godoc
// @Summary Delete a user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.userService.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "user deleted successfully",
	})
}
