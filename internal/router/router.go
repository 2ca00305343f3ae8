package router

import (
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"blockfunders/internal/auth"
	"blockfunders/internal/authz"
	"blockfunders/internal/config"
	"blockfunders/internal/errors"
	"blockfunders/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authorizer *authz.Authorizer,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	roleHandler *handler.RoleHandler,
	categoryHandler *handler.CategoryHandler,
	campaignHandler *handler.CampaignHandler,
	claimHandler *handler.ClaimHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	e.Validator = NewValidator()

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Uploaded campaign images, NFT art and profile pictures.
	e.Static("/public", cfg.UploadDir)

	api := e.Group("/api")

	// Public routes. Campaign browsing needs no account; visitors see the
	// listing before they ever register.
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.GET("/campaigns", campaignHandler.List)
	api.GET("/campaigns/:id", campaignHandler.Get)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
	}), requireCurrentTokenVersion(tokenStore))

	secured.POST("/logout", authHandler.Logout)
	secured.GET("/profile", authHandler.Profile)

	// User management
	secured.GET("/users", userHandler.List, authorizer.Require("users.read"))
	secured.GET("/users/:id", userHandler.Get, authorizer.Require("users.read"))
	secured.POST("/users", userHandler.Create, authorizer.Require("users.write"))
	secured.PUT("/users/:id", userHandler.Update, authorizer.Require("users.write"))
	secured.DELETE("/users/:id", userHandler.Delete, authorizer.Require("users.delete"))

	// Roles and permissions
	secured.GET("/roles", roleHandler.List, authorizer.Require("roles.read"))
	secured.GET("/roles/:id", roleHandler.Get, authorizer.Require("roles.read"))
	secured.POST("/roles", roleHandler.Create, authorizer.Require("roles.write"))
	secured.PUT("/roles/:id", roleHandler.Update, authorizer.Require("roles.write"))
	secured.DELETE("/roles/:id", roleHandler.Delete, authorizer.Require("roles.delete"))
	secured.GET("/roles/:id/permissions", roleHandler.Permissions, authorizer.Require("roles.read"))
	secured.PUT("/roles/:id/permissions", roleHandler.SetPermissions, authorizer.Require("roles.write"))
	secured.GET("/permissions", roleHandler.AllPermissions, authorizer.Require("roles.read"))
	secured.GET("/permissions/me", roleHandler.MyPermissions)

	// Campaign categories
	secured.GET("/campaign-categories", categoryHandler.List, authorizer.Require("campaign_categories.read"))
	secured.GET("/campaign-categories/:id", categoryHandler.Get, authorizer.Require("campaign_categories.read"))
	secured.POST("/campaign-categories", categoryHandler.Create, authorizer.Require("campaign_categories.write"))
	secured.PUT("/campaign-categories/:id", categoryHandler.Update, authorizer.Require("campaign_categories.write"))
	secured.DELETE("/campaign-categories/:id", categoryHandler.Delete, authorizer.Require("campaign_categories.delete"))

	// Campaign mutations. Publish rides PUT and shares the write
	// permission with create; deletion is gated separately so delete-only
	// roles exist. Funding and progress updates are for any authenticated
	// user, with ownership enforced in the service where it applies.
	secured.POST("/campaigns", campaignHandler.Create, authorizer.Require("campaigns.write"))
	secured.PUT("/campaigns/:id", campaignHandler.Publish, authorizer.Require("campaigns.write"))
	secured.DELETE("/campaigns/:id", campaignHandler.Delete, authorizer.Require("campaigns.delete"))
	secured.POST("/campaigns/:id/fund", campaignHandler.Fund)
	secured.POST("/campaigns/:id/updates", campaignHandler.AddUpdate)

	// Reward claims. PUT fulfills a pending claim with its mint tx hash.
	secured.GET("/claims", claimHandler.List)
	secured.GET("/claims/:id", claimHandler.Get)
	secured.PUT("/claims/:id", claimHandler.Claim)
}

// requireCurrentTokenVersion rejects tokens minted before the user's
// last logout. The version lives in redis; when redis is unreachable the
// check fails open so a cache outage cannot lock everyone out.
func requireCurrentTokenVersion(tokenStore auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := authz.CurrentClaims(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "invalid token",
					Code:  "UNAUTHENTICATED",
				})
			}
			if ver, ok := tokenStore.TokenVersion(c.Request().Context(), claims.UserID); ok && ver != claims.TokenVersion {
				return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
					Error: "token revoked",
					Code:  "TOKEN_REVOKED",
				})
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo. Struct-tag failures come back
// as field-keyed ValidationErrors so request and business validation share
// one response shape.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the echo validator. Field names in error messages
// come from the json tag, not the Go field name.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return err
	}
	verrs := &errors.ValidationErrors{}
	for _, fe := range fieldErrs {
		verrs.Add(fe.Field(), validationMessage(fe))
	}
	return verrs
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
