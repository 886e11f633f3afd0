package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/auth"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Issue(user *entity.User) (string, time.Time, error)
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *entity.User `json:"user"`
}

// CreateUserInput is an HR request for a new account
type CreateUserInput struct {
	Email      string
	FullName   string
	Role       entity.Role
	HourlyRate decimal.Decimal
	Password   string
}

// UpdateUserInput carries the editable profile fields
type UpdateUserInput struct {
	Email      string
	FullName   string
	HourlyRate decimal.Decimal
}

// UserService authenticates users and lets HR administer accounts
type UserService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, caller entity.Caller) (*entity.User, error)
	CheckActive(ctx context.Context, caller entity.Caller) error
	List(ctx context.Context) ([]*entity.User, error)
	Create(ctx context.Context, input CreateUserInput) (*entity.User, error)
	Update(ctx context.Context, id int64, input UpdateUserInput) (*entity.User, error)
	SetActive(ctx context.Context, id int64, active bool) (*entity.User, error)
}

type userServiceImpl struct {
	userRepo port.UserRepository
	tokens   TokenIssuer
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, tokens TokenIssuer, logger *zap.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login checks the credentials and issues a token. Unknown emails, wrong
// passwords and deactivated accounts all fail the same way.
func (s *userServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, fmt.Errorf("%w: invalid email or password", entity.ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		s.logger.Info("Login failed", zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("%w: invalid email or password", entity.ErrUnauthenticated)
	}
	if !user.IsActive {
		s.logger.Info("Login refused for deactivated account", zap.Int64("user_id", user.ID))
		return nil, fmt.Errorf("%w: invalid email or password", entity.ErrUnauthenticated)
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return &LoginResult{Token: token, ExpiresAt: expires, User: user}, nil
}

// Me returns the caller's own account
func (s *userServiceImpl) Me(ctx context.Context, caller entity.Caller) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, caller.UserID)
}

// CheckActive refuses callers whose account was removed or deactivated
// after their token was issued
func (s *userServiceImpl) CheckActive(ctx context.Context, caller entity.Caller) error {
	_, err := activeAccount(ctx, s.userRepo, caller)
	return err
}

// List returns every account ordered by name
func (s *userServiceImpl) List(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.List(ctx)
}

// Create validates and stores a new active account
func (s *userServiceImpl) Create(ctx context.Context, input CreateUserInput) (*entity.User, error) {
	user := &entity.User{
		Email:      strings.TrimSpace(input.Email),
		FullName:   strings.TrimSpace(input.FullName),
		Role:       input.Role,
		HourlyRate: input.HourlyRate,
		IsActive:   true,
	}

	verr := &entity.ValidationError{}
	validateProfile(verr, user)
	if !user.Role.IsValid() {
		verr.Add("role", "role must be HR, Lecturer, Coordinator or Manager")
	}
	if err := auth.ValidatePassword(input.Password); err != nil {
		var pwErr *entity.ValidationError
		if errors.As(err, &pwErr) {
			verr.Fields = append(verr.Fields, pwErr.Fields...)
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Update changes name, email and hourly rate; the role is fixed at creation
func (s *userServiceImpl) Update(ctx context.Context, id int64, input UpdateUserInput) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Email = strings.TrimSpace(input.Email)
	user.FullName = strings.TrimSpace(input.FullName)
	user.HourlyRate = input.HourlyRate

	verr := &entity.ValidationError{}
	validateProfile(verr, user)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User updated", zap.Int64("user_id", user.ID))
	return user, nil
}

// SetActive activates or deactivates an account
func (s *userServiceImpl) SetActive(ctx context.Context, id int64, active bool) (*entity.User, error) {
	if err := s.userRepo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}

	s.logger.Info("User active flag changed", zap.Int64("user_id", id), zap.Bool("active", active))
	return s.userRepo.GetByID(ctx, id)
}

func validateProfile(verr *entity.ValidationError, user *entity.User) {
	if user.FullName == "" {
		verr.Add("full_name", "full name is required")
	}
	if _, err := mail.ParseAddress(user.Email); err != nil || user.Email == "" {
		verr.Add("email", "a valid email address is required")
	}
	if user.IsLecturer() &&
		(user.HourlyRate.LessThan(entity.MinHourlyRate) || user.HourlyRate.GreaterThan(entity.MaxHourlyRate)) {
		verr.Add("hourly_rate", "hourly rate must be between 1 and 1000")
	}
	user.NormalizeRate()
}
