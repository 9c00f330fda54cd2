// internal/domain/user/service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	passwordManager *auth.PasswordManager
	jwtManager      *auth.JWTManager
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		passwordManager: auth.NewPasswordManager(cfg),
		jwtManager:      auth.NewJWTManager(cfg),
	}
}

// RegisterRequest represents user registration data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

// LoginRequest represents user login data
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// FindOrCreateOutcome tags the result of FindOrCreateByEmail
type FindOrCreateOutcome int

const (
	OutcomeCreated FindOrCreateOutcome = iota
	OutcomeAlreadyExists
)

// Register creates a new user account
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrValidation)
	}

	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	hash, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := User{
		Email:     email,
		Password:  hash,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  true,
	}
	if err := s.db.Create(&u).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponse(&u)
}

// Login authenticates a user
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var u User
	if err := s.db.Where("email = ? AND is_active = ?", email, true).First(&u).Error; err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	now := time.Now().UTC()
	s.db.Model(&u).Update("last_login_at", now)

	return s.buildAuthResponse(&u)
}

// GetProfile retrieves a user's profile
func (s *Service) GetProfile(userID uint) (*User, error) {
	var u User
	if err := s.db.First(&u, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user %d: %w", userID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email
func (s *Service) GetUserByEmail(email string) (*User, error) {
	var u User
	if err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// FindOrCreateByEmail returns the user with the given email, creating one with
// a random password when absent. Used by the manual order importer. A race
// where another request creates the same email between our fetch and create
// surfaces as a unique violation; it is resolved by a single re-fetch rather
// than reported as an error.
func (s *Service) FindOrCreateByEmail(tx *gorm.DB, email, firstName, lastName string) (*User, FindOrCreateOutcome, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, 0, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}

	var u User
	err := tx.Where("email = ?", email).First(&u).Error
	if err == nil {
		return &u, OutcomeAlreadyExists, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, 0, fmt.Errorf("failed to look up user: %w", err)
	}

	tempPassword, err := s.passwordManager.GenerateTemporaryPassword()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := s.passwordManager.HashPassword(tempPassword)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to hash password: %w", err)
	}

	u = User{
		Email:     email,
		Password:  hash,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
	}
	if err := tx.Create(&u).Error; err != nil {
		// Unique violation from a concurrent create: re-fetch and reuse.
		var existing User
		if ferr := tx.Where("email = ?", email).First(&existing).Error; ferr == nil {
			return &existing, OutcomeAlreadyExists, nil
		}
		return nil, 0, fmt.Errorf("failed to create user: %w", err)
	}

	return &u, OutcomeCreated, nil
}

func (s *Service) buildAuthResponse(u *User) (*AuthResponse, error) {
	token, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:        u,
		AccessToken: token,
		ExpiresIn:   int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
