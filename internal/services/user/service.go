package user

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"canteen-system/internal/apperror"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

// InvalidCredentialsMessage is returned for any failed login
const InvalidCredentialsMessage = "No active account found with the given credentials"

// Repository stores users
type Repository interface {
	Create(ctx context.Context, u *models.User) error
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	Issue(u *models.User) (*models.TokenResponse, error)
}

// Service handles accounts and login
type Service struct {
	repo   Repository
	tokens TokenIssuer
	logger *logger.Logger
	cost   int
}

// NewService creates a new user service. tokens may be nil when only accounts are managed.
func NewService(repo Repository, tokens TokenIssuer, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		logger: log,
		cost:   bcrypt.DefaultCost,
	}
}

// Login verifies the credentials and issues a token
func (s *Service) Login(ctx context.Context, req *models.TokenRequest, requestID string) (*models.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.GetByUsername(ctx, req.Username)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			s.logger.Debug("login_failed", "Unknown username", requestID, map[string]interface{}{
				"username": req.Username,
			})
			return nil, apperror.Unauthorized(InvalidCredentialsMessage)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Debug("login_failed", "Password mismatch", requestID, map[string]interface{}{
			"user_id": u.ID,
		})
		return nil, apperror.Unauthorized(InvalidCredentialsMessage)
	}

	token, err := s.tokens.Issue(u)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("login_succeeded", "Token issued", requestID, map[string]interface{}{
		"user_id":  u.ID,
		"is_staff": u.IsStaff,
	})
	return token, nil
}

// CreateUser hashes the password and stores a new account
func (s *Service) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		IsStaff:      req.IsStaff,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user_created", "User created", "", map[string]interface{}{
		"user_id":  u.ID,
		"username": u.Username,
		"is_staff": u.IsStaff,
	})
	return u, nil
}
