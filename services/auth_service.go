package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/tennis-api/models"
	"github.com/courtside/tennis-api/repositories"
	"golang.org/x/crypto/bcrypt"
)

type SignUpInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

type AuthService interface {
	Register(ctx context.Context, input SignUpInput) (*models.User, error)
	Login(ctx context.Context, credentials models.Credentials) (*models.User, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Register регистрирует нового игрока. Публичная регистрация всегда создаёт
// роль player; остальные роли назначает администратор через UserService.
func (s *authService) Register(ctx context.Context, input SignUpInput) (*models.User, error) {
	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:           input.Username,
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       string(hash),
		Role:               models.RolePlayer,
		IsCompeting:        false,
		RegistrationStatus: models.RegistrationNone,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapUserRepoConflict(err)
	}
	return user, nil
}

func (s *authService) Login(ctx context.Context, credentials models.Credentials) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, credentials.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credentials.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	return user, nil
}
