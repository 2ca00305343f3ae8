package main

import (
	"context"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blockfunders/internal/config"
	"blockfunders/internal/db"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

// Permission matrix: resource x action. Roles reference these by name.
var resources = []string{"users", "roles", "campaigns", "campaign_categories"}
var actions = []string{"read", "write", "delete"}

// The default user role can browse and run campaigns but cannot touch
// accounts, roles or categories.
var userRolePermissions = []string{
	"campaigns.read",
	"campaigns.write",
	"campaign_categories.read",
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Role{},
		&model.Permission{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	permRepo := repository.NewPermissionRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)

	// Permissions
	var all []model.Permission
	for _, resource := range resources {
		for _, action := range actions {
			perm, err := permRepo.FirstOrCreate(ctx, resource+"."+action)
			if err != nil {
				log.Fatalf("Failed to seed permission %s.%s: %v", resource, action, err)
			}
			all = append(all, *perm)
		}
	}
	log.Printf("Seeded %d permissions", len(all))

	// System roles
	adminRole, err := ensureRole(ctx, roleRepo, "admin")
	if err != nil {
		log.Fatalf("Failed to seed admin role: %v", err)
	}
	if err := roleRepo.ReplacePermissions(ctx, adminRole, all); err != nil {
		log.Fatalf("Failed to grant admin permissions: %v", err)
	}

	userRole, err := ensureRole(ctx, roleRepo, "user")
	if err != nil {
		log.Fatalf("Failed to seed user role: %v", err)
	}
	userPerms, err := permRepo.FindByNames(ctx, userRolePermissions)
	if err != nil {
		log.Fatalf("Failed to load user role permissions: %v", err)
	}
	if err := roleRepo.ReplacePermissions(ctx, userRole, userPerms); err != nil {
		log.Fatalf("Failed to grant user permissions: %v", err)
	}
	log.Println("Seeded system roles admin and user")

	// Initial admin account
	adminEmail := envOr("ADMIN_EMAIL", "admin@blockfunders.local")
	adminPassword := envOr("ADMIN_PASSWORD", "admin12345")

	if _, err := userRepo.FindByLogin(ctx, adminEmail); err == nil {
		log.Println("Admin user already exists, skipping")
		return
	} else if err != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to look up admin user: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}
	admin := &model.User{
		Username:     "admin",
		Email:        adminEmail,
		PasswordHash: string(hashed),
		FirstName:    "Platform",
		LastName:     "Admin",
		Verified:     true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	if err := userRepo.AppendRole(ctx, admin, adminRole); err != nil {
		log.Fatalf("Failed to assign admin role: %v", err)
	}
	log.Printf("Created admin user %s", adminEmail)
}

func ensureRole(ctx context.Context, roleRepo repository.RoleRepository, name string) (*model.Role, error) {
	role, err := roleRepo.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	role = &model.Role{Name: name, GuardName: "api", IsSystem: true}
	if err := roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
