package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/courtside/tennis-api/models"
	"github.com/courtside/tennis-api/repositories"
	"golang.org/x/crypto/bcrypt"
)

// UserInput — поля пользователя при добавлении/обновлении администратором.
type UserInput struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Role     models.UserRole `json:"role"`
}

// UpdateCredentialsInput — смена собственных учётных данных пользователем.
type UpdateCredentialsInput struct {
	Username    string `json:"username"`
	Name        string `json:"name"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UserFilter — предикаты поиска пользователей; применяются все заданные.
type UserFilter struct {
	Name        *string
	Username    *string
	IsCompeting *bool
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error)
	ListRegisteredPlayers(ctx context.Context) ([]*models.User, error)
	Filter(ctx context.Context, filter UserFilter) ([]*models.User, error)
	AddUser(ctx context.Context, input UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id int, input UserInput) (*models.User, error)
	UpdateCredentials(ctx context.Context, id int, input UpdateCredentialsInput) (*models.User, error)
	DeleteUser(ctx context.Context, id int) error
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	return s.getUser(ctx, id)
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, role)
}

// ListRegisteredPlayers возвращает принятых в турнир игроков.
func (s *userService) ListRegisteredPlayers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListRegistered(ctx)
}

func (s *userService) Filter(ctx context.Context, filter UserFilter) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.User, 0, len(users))
	for _, user := range users {
		if filter.Name != nil && !strings.EqualFold(user.Name, *filter.Name) {
			continue
		}
		if filter.Username != nil && !strings.EqualFold(user.Username, *filter.Username) {
			continue
		}
		if filter.IsCompeting != nil && user.IsCompeting != *filter.IsCompeting {
			continue
		}
		result = append(result, user)
	}
	return result, nil
}

// AddUser создаёт пользователя с произвольной ролью (операция администратора).
func (s *userService) AddUser(ctx context.Context, input UserInput) (*models.User, error) {
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
		Role:               input.Role,
		IsCompeting:        false,
		RegistrationStatus: models.RegistrationNone,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, mapUserRepoConflict(err)
	}
	return user, nil
}

// UpdateUser перезаписывает профиль пользователя, проверяя уникальность
// username и name среди остальных аккаунтов. Пароль перехешируется.
func (s *userService) UpdateUser(ctx context.Context, id int, input UserInput) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkUniqueness(ctx, id, input.Username, input.Name); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Username = input.Username
	user.Name = input.Name
	user.Email = input.Email
	user.PasswordHash = string(hash)
	user.Role = input.Role

	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, mapUserRepoConflict(err)
	}
	return user, nil
}

// UpdateCredentials меняет username/name/пароль самого пользователя после
// проверки старого пароля.
func (s *userService) UpdateCredentials(ctx context.Context, id int, input UpdateCredentialsInput) (*models.User, error) {
	user, err := s.getUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		return nil, ErrInvalidOldPassword
	}

	if err := s.checkUniqueness(ctx, id, input.Username, input.Name); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user.Username = input.Username
	user.Name = input.Name
	user.PasswordHash = string(hash)

	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, mapUserRepoConflict(err)
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int) error {
	err := s.userRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) getUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// checkUniqueness гарантирует, что username и name не принадлежат другому
// аккаунту.
func (s *userService) checkUniqueness(ctx context.Context, id int, username, name string) error {
	if existing, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		if existing.ID != id {
			return ErrUsernameExists
		}
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	if existing, err := s.userRepo.GetByName(ctx, name); err == nil {
		if existing.ID != id {
			return ErrNameExists
		}
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	return nil
}

func mapUserRepoConflict(err error) error {
	switch {
	case errors.Is(err, repositories.ErrUserUsernameConflict):
		return ErrUsernameExists
	case errors.Is(err, repositories.ErrUserNameConflict):
		return ErrNameExists
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	}
	return err
}
