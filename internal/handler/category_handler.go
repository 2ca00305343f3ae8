package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blockfunders/internal/service"
)

// CategoryHandler handles campaign category endpoints.
type CategoryHandler struct {
	categoryService service.CategoryService
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest carries a category name.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

// List godoc
// @Summary List campaign categories
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Param q query string false "Search by name"
// @Param with_paginate query int false "0 disables pagination"
// @Success 200 {object} ListResponse
// @Router /campaign-categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	opts := parseListOptions(c)
	categories, total, err := h.categoryService.List(c.Request().Context(), c.QueryParam("q"), opts)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, listResponse(categories, total, opts))
}

// Get godoc
// @Summary Get a category
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} model.CampaignCategory
// @Failure 404 {object} errors.ErrorResponse
// @Router /campaign-categories/{id} [get]
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	category, err := h.categoryService.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, category)
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CategoryRequest true "Category name"
// @Success 201 {object} model.CampaignCategory
// @Failure 422 {object} errors.ValidationErrors
// @Router /campaign-categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	category, err := h.categoryService.Create(c.Request().Context(), req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, category)
}

// Update godoc
// @Summary Rename a category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "New name"
// @Success 200 {object} model.CampaignCategory
// @Failure 404 {object} errors.ErrorResponse
// @Router /campaign-categories/{id} [put]
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	category, err := h.categoryService.Rename(c.Request().Context(), id, req.Name)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, category)
}

// Delete godoc
// @Summary Delete a category
// @Tags categories
// @Security BearerAuth
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse "Category still referenced by campaigns"
// @Router /campaign-categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.categoryService.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "category deleted successfully",
	})
}
