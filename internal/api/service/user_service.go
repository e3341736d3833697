package service

import (
	"context"
	"errors"

	"kevdhev/personal-finance-api/internal/api/models"
	"kevdhev/personal-finance-api/internal/api/repository"
	"kevdhev/personal-finance-api/internal/auth"
)

// UserService defines the interface for registration and authentication.
type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.UserOut, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenIssuer
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, tokens *auth.TokenIssuer) UserService {
	return &userService{userRepo: userRepo, tokens: tokens}
}

// Register creates a new user with a hashed password and returns the public
// user view.
func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.UserOut, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, req.Username, req.Email, hash)
	if err != nil {
		// The pre-check races with concurrent registration; the UNIQUE
		// constraint is the authority.
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user.Public(), nil
}

// Login authenticates the user and returns a signed access token. Unknown
// usernames and wrong passwords fail with the same error.
func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return "", err
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.Issue(user.Username)
}

// GetByUsername resolves a token subject to a live user. A missing user
// returns (nil, nil).
func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userRepo.GetByUsername(ctx, username)
}
