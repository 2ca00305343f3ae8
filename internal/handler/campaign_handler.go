package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"blockfunders/internal/authz"
	"blockfunders/internal/errors"
	"blockfunders/internal/repository"
	"blockfunders/internal/service"
)

// CampaignHandler handles campaign lifecycle endpoints.
type CampaignHandler struct {
	campaignService service.CampaignService
}

// NewCampaignHandler creates a new campaign handler.
func NewCampaignHandler(campaignService service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService}
}

// CampaignRequest carries campaign creation fields. The image arrives as
// a multipart file field named image. Amounts are decimal strings so no
// precision is lost in transit.
type CampaignRequest struct {
	Title        string `json:"title" form:"title" validate:"required,min=3,max=255"`
	Description  string `json:"description" form:"description" validate:"required"`
	CategoryID   uint   `json:"category_id" form:"category_id" validate:"required"`
	TargetAmount string `json:"target_amount" form:"target_amount" validate:"required"`
	Deadline     string `json:"deadline" form:"deadline" validate:"required"`
}

// PublishRequest carries the on-chain creation transaction hash.
type PublishRequest struct {
	TxHash string `json:"tx_hash" validate:"required"`
}

// FundRequest carries a donation amount and its transaction hash.
type FundRequest struct {
	Amount string `json:"amount" validate:"required"`
	TxHash string `json:"tx_hash" validate:"required"`
}

// CampaignUpdateRequest carries a progress note.
type CampaignUpdateRequest struct {
	Content string `json:"content" validate:"required"`
}

// List godoc
// @Summary List campaigns
// @Tags campaigns
// @Produce json
// @Param q query string false "Search in title and description"
// @Param user_id query int false "Filter by owner"
// @Param category_id query int false "Filter by category"
// @Param with_paginate query int false "0 disables pagination"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} ListResponse
// @Router /campaigns [get]
func (h *CampaignHandler) List(c echo.Context) error {
	opts := parseListOptions(c)
	filter := repository.CampaignListFilter{Query: c.QueryParam("q")}
	if userID, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 32); err == nil {
		filter.UserID = uint(userID)
	}
	if categoryID, err := strconv.ParseUint(c.QueryParam("category_id"), 10, 32); err == nil {
		filter.CategoryID = uint(categoryID)
	}

	campaigns, total, err := h.campaignService.List(c.Request().Context(), filter, opts)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, listResponse(campaigns, total, opts))
}

// Get godoc
// @Summary Get a campaign with category, updates and funding ledger
// @Tags campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} model.Campaign
// @Failure 404 {object} errors.ErrorResponse
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	campaign, err := h.campaignService.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// Create godoc
// @Summary Create a draft campaign
// @Tags campaigns
// @Security BearerAuth
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category_id formData int true "Category ID"
// @Param target_amount formData string true "Target amount in ETH"
// @Param deadline formData string true "Deadline (RFC3339 or YYYY-MM-DD)"
// @Param image formData file false "Campaign image"
// @Success 201 {object} model.Campaign
// @Failure 422 {object} errors.ValidationErrors
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c echo.Context) error {
	var req CampaignRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	target, err := decimal.NewFromString(req.TargetAmount)
	if err != nil {
		return fail(errors.NewValidation("target_amount", "must be a decimal number"))
	}
	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return fail(errors.NewValidation("deadline", "must be an RFC3339 timestamp or YYYY-MM-DD date"))
	}

	image, ext, err := readUpload(c, "image")
	if err != nil {
		return invalidRequest()
	}

	campaign, err := h.campaignService.Create(c.Request().Context(), authz.CurrentUserID(c), service.CampaignInput{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   req.CategoryID,
		TargetAmount: target,
		Deadline:     deadline,
		Image:        image,
		ImageExt:     ext,
	})
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, campaign)
}

// Publish godoc
// @Summary Publish a draft campaign against its on-chain creation tx
// @Tags campaigns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param request body PublishRequest true "Creation transaction hash"
// @Success 200 {object} model.Campaign
// @Failure 403 {object} errors.ErrorResponse "Not the campaign owner"
// @Failure 422 {object} errors.ErrorResponse "Invalid or already used hash"
// @Router /campaigns/{id} [put]
func (h *CampaignHandler) Publish(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req PublishRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	campaign, err := h.campaignService.Publish(c.Request().Context(), authz.CurrentUserID(c), id, req.TxHash)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// Fund godoc
// @Summary Record a donation backed by an on-chain tx hash
// @Tags campaigns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param request body FundRequest true "Amount and transaction hash"
// @Success 200 {object} model.Campaign
// @Failure 422 {object} errors.ErrorResponse "Invalid amount, invalid hash or hash already used"
// @Router /campaigns/{id}/fund [post]
func (h *CampaignHandler) Fund(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req FundRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fail(errors.ErrInvalidAmount)
	}

	campaign, err := h.campaignService.Fund(c.Request().Context(), authz.CurrentUserID(c), id, amount, req.TxHash)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, campaign)
}

// Delete godoc
// @Summary Delete a campaign
// @Tags campaigns
// @Security BearerAuth
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.campaignService.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AddUpdate godoc
// @Summary Post a progress update to an owned campaign
// @Tags campaigns
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param request body CampaignUpdateRequest true "Update content"
// @Success 201 {object} model.CampaignUpdate
// @Failure 403 {object} errors.ErrorResponse "Not the campaign owner"
// @Router /campaigns/{id}/updates [post]
func (h *CampaignHandler) AddUpdate(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req CampaignUpdateRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	update, err := h.campaignService.AddUpdate(c.Request().Context(), authz.CurrentUserID(c), id, req.Content)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, update)
}

func parseDeadline(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
