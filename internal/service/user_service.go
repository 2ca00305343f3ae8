package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blockfunders/internal/authz"
	"blockfunders/internal/errors"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
	"blockfunders/internal/storage"
)

// UserInput carries admin-side user create/update fields.
type UserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	RoleID    uint
	// ProfilePicture holds uploaded image bytes; empty keeps the current one.
	ProfilePicture []byte
	PictureExt     string
}

// UserService handles admin-side user management.
type UserService interface {
	List(ctx context.Context, filter repository.UserListFilter, opts repository.ListOptions) ([]model.User, int64, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Create(ctx context.Context, in UserInput) (*model.User, error)
	Update(ctx context.Context, id uint, in UserInput) (*model.User, error)
	Delete(ctx context.Context, id uint) error
}

type userService struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	authorizer *authz.Authorizer
	files      *storage.FileStore
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	authorizer *authz.Authorizer,
	files *storage.FileStore,
) UserService {
	return &userService{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		authorizer: authorizer,
		files:      files,
	}
}

func (s *userService) List(ctx context.Context, filter repository.UserListFilter, opts repository.ListOptions) ([]model.User, int64, error) {
	return s.userRepo.List(ctx, filter, opts)
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByIDWithRoles(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) Create(ctx context.Context, in UserInput) (*model.User, error) {
	if !ValidatePassword(in.Password) {
		return nil, errors.NewValidation("password", "password must be at least 8 characters and contain letters and numbers")
	}

	role, err := s.roleRepo.FindByID(ctx, in.RoleID)
	if err != nil {
		return nil, errors.NewValidation("role_id", "role does not exist")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hashed),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
	}

	if len(in.ProfilePicture) > 0 {
		url, err := s.files.Save(in.ProfilePicture, "profile", in.PictureExt)
		if err != nil {
			return nil, fmt.Errorf("store profile picture: %w", err)
		}
		user.ProfilePicture = url
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.authorizer.AssignRole(ctx, user, role); err != nil {
		return nil, fmt.Errorf("assign role: %w", err)
	}
	return s.userRepo.FindByIDWithRoles(ctx, user.ID)
}

func (s *userService) Update(ctx context.Context, id uint, in UserInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}

	if in.Password != "" {
		if !ValidatePassword(in.Password) {
			return nil, errors.NewValidation("password", "password must be at least 8 characters and contain letters and numbers")
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}

	user.Username = strings.TrimSpace(in.Username)
	user.Email = strings.ToLower(strings.TrimSpace(in.Email))
	user.FirstName = in.FirstName
	user.LastName = in.LastName

	if len(in.ProfilePicture) > 0 {
		url, err := s.files.Save(in.ProfilePicture, "profile", in.PictureExt)
		if err != nil {
			return nil, fmt.Errorf("store profile picture: %w", err)
		}
		_ = s.files.Delete(user.ProfilePicture)
		user.ProfilePicture = url
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if err == gorm.ErrDuplicatedKey {
			return nil, errors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}

	if in.RoleID != 0 {
		role, err := s.roleRepo.FindByID(ctx, in.RoleID)
		if err != nil {
			return nil, errors.NewValidation("role_id", "role does not exist")
		}
		if err := s.authorizer.SyncRoles(ctx, user, []model.Role{*role}); err != nil {
			return nil, fmt.Errorf("sync roles: %w", err)
		}
	}
	return s.userRepo.FindByIDWithRoles(ctx, user.ID)
}

// Delete soft-deletes the user and removes their stored profile image.
func (s *userService) Delete(ctx context.Context, id uint) error {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.files.Delete(user.ProfilePicture)
	return nil
}
