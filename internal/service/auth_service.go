package service

import (
	"context"
	"errors"
	"strings"

	"sweet-shop-api/internal/apperror"
	"sweet-shop-api/internal/logging"
	"sweet-shop-api/internal/model"
	"sweet-shop-api/internal/repository"
	"sweet-shop-api/pkg/jwt"
	"sweet-shop-api/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit. It counts bytes, not runes.
	MaxPasswordBytes = 72

	passwordTooLong = "Ensure this field has no more than 72 bytes."
)

var (
	ErrInvalidCredentials = apperror.Unauthenticated("Invalid credentials")
	ErrInvalidRefresh     = apperror.Unauthenticated("Token is invalid or expired")
	ErrMissingCredentials = apperror.Validation("", "Username and password are required")
)

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"omitempty,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   model.UserResponse `json:"user"`
	Tokens *jwt.Pair          `json:"tokens"`
}

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*jwt.Pair, error)
	Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error)
	// EnsureAdmin creates a staff account, or promotes and resets an existing one.
	EnsureAdmin(ctx context.Context, username, email, password string) (*model.User, bool, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *jwt.Manager
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	// 1. Field level checks
	verr := &apperror.ValidationError{}
	for _, e := range validator.ValidateStruct(req) {
		verr.Add(e.FailedField, e.Message())
	}
	if len(req.Password) > MaxPasswordBytes {
		verr.Add("password", passwordTooLong)
	}
	if req.PasswordConfirm != "" && req.Password != req.PasswordConfirm {
		verr.Add("password_confirm", "Passwords do not match")
	}

	// 2. Unique username
	if req.Username != "" {
		exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			verr.Add("username", "A user with that username already exists.")
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	// 3. Create with a hashed secret
	user := &model.User{Username: req.Username, Email: req.Email}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Validation("username", "A user with that username already exists.")
		}
		return nil, err
	}

	// 4. Issue tokens
	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	logging.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	return &AuthResponse{User: user.ToResponse(), Tokens: pair}, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		logging.FromContext(ctx).Warn("login failed", "username", username)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return &AuthResponse{User: user.ToResponse(), Tokens: pair}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*jwt.Pair, error) {
	if refreshToken == "" {
		return nil, apperror.Validation("refresh", "This field is required.")
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	// The account may have been removed since the token was issued
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	return pair, nil
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("User", userID.String())
		}
		return nil, err
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, username, email, password string) (*model.User, bool, error) {
	if username == "" {
		return nil, false, apperror.Validation("username", "This field is required.")
	}
	if len(password) < MinPasswordLength {
		return nil, false, apperror.Validation("password", "Ensure this field has at least 8 characters.")
	}
	if len(password) > MaxPasswordBytes {
		return nil, false, apperror.Validation("password", passwordTooLong)
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{Username: username}
		created = true
	case err != nil:
		return nil, false, err
	}

	user.IsStaff = true
	if email != "" {
		user.Email = email
	}
	if err := user.SetPassword(password); err != nil {
		return nil, false, errors.New("failed to hash password")
	}

	if created {
		err = s.userRepo.Create(ctx, user)
	} else {
		err = s.userRepo.Update(ctx, user)
	}
	if err != nil {
		return nil, false, err
	}
	return user, created, nil
}
