package handler

import (
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"

	"blockfunders/internal/errors"
	"blockfunders/internal/repository"
)

// Meta carries pagination info alongside list payloads.
type Meta struct {
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

// ListResponse is the envelope for collection endpoints.
type ListResponse struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

func listResponse(data interface{}, total int64, opts repository.ListOptions) ListResponse {
	resp := ListResponse{Data: data}
	if opts.Paginate {
		page := opts.Page
		if page <= 0 {
			page = 1
		}
		per := opts.PerPage
		if per <= 0 {
			per = 10
		}
		resp.Meta = &Meta{Total: total, Page: page, PerPage: per}
	}
	return resp
}

// parseListOptions reads with_paginate, page and per_page query params.
// Pagination is on unless with_paginate=0 is passed explicitly.
func parseListOptions(c echo.Context) repository.ListOptions {
	opts := repository.ListOptions{Paginate: true}
	if c.QueryParam("with_paginate") == "0" {
		opts.Paginate = false
		return opts
	}
	opts.Page, _ = strconv.Atoi(c.QueryParam("page"))
	opts.PerPage, _ = strconv.Atoi(c.QueryParam("per_page"))
	return opts
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_REQUEST",
		})
	}
	return uint(id), nil
}

func invalidRequest() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid request body",
		Code:  "INVALID_REQUEST",
	})
}

// fail translates service-layer errors into HTTP responses. Validation
// errors keep their field map; everything else goes through the domain
// error mapping.
func fail(err error) *echo.HTTPError {
	var verrs *errors.ValidationErrors
	if stderrors.As(err, &verrs) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, verrs)
	}
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// readUpload pulls an optional multipart file field. A missing field is
// not an error; the caller gets empty bytes.
func readUpload(c echo.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", nil
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Ext(fh.Filename), nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
