package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blockfunders/internal/authz"
	"blockfunders/internal/service"
)

// ClaimHandler handles NFT reward claim endpoints. All routes are scoped
// to the authenticated user; there is no admin view over claims.
type ClaimHandler struct {
	claimService service.ClaimService
}

// NewClaimHandler creates a new claim handler.
func NewClaimHandler(claimService service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimService: claimService}
}

// ClaimRequest carries the mint transaction hash.
type ClaimRequest struct {
	TxHash string `json:"tx_hash" validate:"required"`
}

// List godoc
// @Summary List the current user's reward claims
// @Tags claims
// @Security BearerAuth
// @Produce json
// @Param with_paginate query int false "0 disables pagination"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} ListResponse
// @Router /claims [get]
func (h *ClaimHandler) List(c echo.Context) error {
	opts := parseListOptions(c)
	claims, total, err := h.claimService.ListMine(c.Request().Context(), authz.CurrentUserID(c), opts)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, listResponse(claims, total, opts))
}

// Get godoc
// @Summary Get one of the current user's claims
// @Tags claims
// @Security BearerAuth
// @Produce json
// @Param id path int true "Claim ID"
// @Success 200 {object} model.Claim
// @Failure 403 {object} errors.ErrorResponse "Claim belongs to another user"
// @Failure 404 {object} errors.ErrorResponse
// @Router /claims/{id} [get]
func (h *ClaimHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	claim, err := h.claimService.GetMine(c.Request().Context(), authz.CurrentUserID(c), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, claim)
}

// Claim godoc
// @Summary Mark a pending claim as minted on-chain
// @Tags claims
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Claim ID"
// @Param request body ClaimRequest true "Mint transaction hash"
// @Success 200 {object} model.Claim
// @Failure 422 {object} errors.ErrorResponse "Invalid hash, hash already used or claim already fulfilled"
// @Router /claims/{id} [put]
func (h *ClaimHandler) Claim(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req ClaimRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	claim, err := h.claimService.Claim(c.Request().Context(), authz.CurrentUserID(c), id, req.TxHash)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, claim)
}
