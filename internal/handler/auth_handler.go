package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blockfunders/internal/authz"
	"blockfunders/internal/errors"
	"blockfunders/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username             string `json:"username" validate:"required,min=3,max=50"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
	FirstName            string `json:"first_name" validate:"required"`
	LastName             string `json:"last_name" validate:"required"`
}

// LoginRequest represents a user login request. Login accepts either a
// username or an email address.
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents an authentication response.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token,omitempty"`
	User         interface{} `json:"user,omitempty"`
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ValidationErrors
// @Router /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	user, tokens, err := h.authService.Register(c.Request().Context(), service.RegisterInput{
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
	})
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

// Login godoc
// @Summary Login by username or email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	user, tokens, err := h.authService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	})
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest()
	}
	if err := c.Validate(&req); err != nil {
		return fail(err)
	}

	accessToken, err := h.authService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, AuthResponse{AccessToken: accessToken})
}

// Logout godoc
// @Summary Logout and revoke all outstanding tokens
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body LogoutRequest false "Refresh token"
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	var req LogoutRequest
	_ = c.Bind(&req)

	userID := authz.CurrentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "unauthenticated",
			Code:  "UNAUTHENTICATED",
		})
	}

	if err := h.authService.Logout(c.Request().Context(), userID, req.RefreshToken); err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Profile godoc
// @Summary Current user's profile with roles and funding history
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	userID := authz.CurrentUserID(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: "unauthenticated",
			Code:  "UNAUTHENTICATED",
		})
	}

	user, err := h.authService.Profile(c.Request().Context(), userID)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}
