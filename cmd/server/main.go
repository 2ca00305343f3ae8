package main

import (
	"time"

	"github.com/labstack/echo/v4"

	"blockfunders/internal/auth"
	"blockfunders/internal/authz"
	"blockfunders/internal/cache"
	"blockfunders/internal/config"
	"blockfunders/internal/db"
	"blockfunders/internal/handler"
	"blockfunders/internal/logger"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
	"blockfunders/internal/reward"
	"blockfunders/internal/router"
	"blockfunders/internal/scheduler"
	"blockfunders/internal/service"
	"blockfunders/internal/storage"
)

// @title BlockFunders API
// @version 1.0
// @description Crowdfunding platform backed by on-chain transactions, with role-based access control and AI-generated NFT rewards for funders.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFile)

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
		&model.CampaignCategory{},
		&model.Campaign{},
		&model.CampaignUpdate{},
		&model.FundingTransaction{},
		&model.Claim{},
	); err != nil {
		logger.Fatal("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)
	permRepo := repository.NewPermissionRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	campaignRepo := repository.NewCampaignRepository(gormDB)
	txRepo := repository.NewTransactionRepository(gormDB)
	claimRepo := repository.NewClaimRepository(gormDB)

	// Auth and authorization
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	authorizer := authz.NewAuthorizer(roleRepo, permRepo, userRepo, cacheClient)

	files, err := storage.NewFileStore(cfg.UploadDir, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal("file store init: %v", err)
	}

	// Reward pipeline
	aiClient := reward.NewClient(cfg.AIAPIKey, cfg.AIChatURL, cfg.AIImageURL)
	generator := reward.NewGenerator(aiClient, aiClient, userRepo, campaignRepo, txRepo, claimRepo, files)
	rewardWorker, err := reward.NewWorker(cfg.RewardWorkers, generator)
	if err != nil {
		logger.Fatal("reward worker init: %v", err)
	}
	defer rewardWorker.Shutdown()

	// Services
	authService := service.NewAuthService(userRepo, roleRepo, authorizer, jwtService, tokenStore, cfg.PublicBaseURL)
	userService := service.NewUserService(userRepo, roleRepo, authorizer, files)
	roleService := service.NewRoleService(roleRepo, permRepo, authorizer)
	categoryService := service.NewCategoryService(categoryRepo)
	campaignService := service.NewCampaignService(campaignRepo, categoryRepo, files, rewardWorker)
	claimService := service.NewClaimService(claimRepo)

	// Background jobs
	jobs, err := scheduler.New(
		campaignRepo,
		txRepo,
		time.Duration(cfg.LedgerAuditInterval)*time.Second,
		time.Duration(cfg.DeadlineSweepInterval)*time.Second,
	)
	if err != nil {
		logger.Fatal("scheduler init: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	campaignHandler := handler.NewCampaignHandler(campaignService)
	claimHandler := handler.NewClaimHandler(claimService)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, authorizer, tokenStore,
		authHandler, userHandler, roleHandler, categoryHandler, campaignHandler, claimHandler)

	logger.Info("listening on :%s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped: %v", err)
	}
}
