package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"blockfunders/internal/auth"
	"blockfunders/internal/authz"
	"blockfunders/internal/errors"
	"blockfunders/internal/logger"
	"blockfunders/internal/model"
	"blockfunders/internal/repository"
)

const bcryptCost = 10

// defaultUserRole is assigned to every self-registered user.
const defaultUserRole = "user"

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Username             string
	Email                string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
}

// TokenPair bundles the issued access and refresh tokens.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, *TokenPair, error)
	Login(ctx context.Context, login, password string) (*model.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID uint, refreshToken string) error
	Profile(ctx context.Context, userID uint) (*model.User, error)
}

type authService struct {
	userRepo      repository.UserRepository
	roleRepo      repository.RoleRepository
	authorizer    *authz.Authorizer
	jwtService    *auth.JWTService
	tokenStore    auth.TokenStoreInterface
	publicBaseURL string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	authorizer *authz.Authorizer,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	publicBaseURL string,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		roleRepo:      roleRepo,
		authorizer:    authorizer,
		jwtService:    jwtService,
		tokenStore:    tokenStore,
		publicBaseURL: publicBaseURL,
	}
}

// ValidatePassword enforces the password policy: at least 8 characters
// containing both letters and numbers.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}

// Register creates a user, assigns the default role and issues tokens.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, *TokenPair, error) {
	verrs := &errors.ValidationErrors{}
	if in.Password != in.PasswordConfirmation {
		verrs.Add("password", "password confirmation does not match")
	}
	if !ValidatePassword(in.Password) {
		verrs.Add("password", "password must be at least 8 characters and contain letters and numbers")
	}
	if verrs.HasErrors() {
		return nil, nil, verrs
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:       strings.TrimSpace(in.Username),
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:   string(hashed),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		ProfilePicture: s.randomProfilePicture(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique indexes on username/email are the real guard; a
		// concurrent duplicate lands here, not in a pre-check.
		if err == gorm.ErrDuplicatedKey {
			return nil, nil, errors.ErrUserAlreadyExists
		}
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	// Registration is not rolled back when role assignment fails; an
	// admin can repair the role later. The failure still has to be
	// visible in the logs.
	if role, err := s.roleRepo.FindByName(ctx, defaultUserRole); err != nil {
		logger.Error("load default role %q for user %d: %v", defaultUserRole, user.ID, err)
	} else if err := s.authorizer.AssignRole(ctx, user, role); err != nil {
		logger.Error("assign default role to user %d: %v", user.ID, err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Login authenticates by username or email.
func (s *authService) Login(ctx context.Context, login, password string) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.FindByLogin(ctx, login)
	if err != nil {
		return nil, nil, errors.ErrWrongCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, errors.ErrWrongCredentials
	}

	user, err = s.userRepo.FindByIDWithRoles(ctx, user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load roles: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh validates a refresh token and returns a new access token.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", errors.ErrInvalidRefreshToken
	}

	storedUserID, storedUsername, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", errors.ErrInvalidRefreshToken
	}
	if storedUserID != claims.UserID || storedUsername != claims.Username {
		return "", errors.ErrInvalidRefreshToken
	}
	if ver, ok := s.tokenStore.TokenVersion(ctx, claims.UserID); ok && ver != claims.TokenVersion {
		return "", errors.ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.UserID, claims.Username, claims.TokenVersion)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout revokes every outstanding token of the caller by bumping the
// user's token version; the presented refresh token is dropped as well.
func (s *authService) Logout(ctx context.Context, userID uint, refreshToken string) error {
	if refreshToken != "" {
		if tokenID, err := s.jwtService.ExtractTokenID(refreshToken); err == nil {
			_ = s.tokenStore.DeleteRefreshToken(ctx, tokenID)
		}
	}
	return s.tokenStore.BumpTokenVersion(ctx, userID)
}

// Profile loads the caller with roles and funding history.
func (s *authService) Profile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByIDWithDetails(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	version, _ := s.tokenStore.TokenVersion(ctx, user.ID)

	accessToken, err := s.jwtService.GenerateAccessToken(user.ID, user.Username, version)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(user.ID, user.Username, version)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, user.Username, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Registration hands out one of the bundled placeholder avatars.
func (s *authService) randomProfilePicture() string {
	return fmt.Sprintf("%s/profile/%d.png", strings.TrimRight(s.publicBaseURL, "/"), rand.Intn(3)+1)
}
