package services

import (
	"context"

	"github.com/courtside/tennis-api/models"
	"github.com/courtside/tennis-api/repositories"
	"github.com/stretchr/testify/mock"
)

// stubTxManager выполняет колбэк без настоящей транзакции.
type stubTxManager struct{}

func (stubTxManager) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	args := m.Called(ctx, id)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByName(ctx context.Context, name string) (*models.User, error) {
	args := m.Called(ctx, name)
	if user := args.Get(0); user != nil {
		return user.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) ListByRole(ctx context.Context, role models.UserRole) ([]*models.User, error) {
	args := m.Called(ctx, role)
	if users := args.Get(0); users != nil {
		return users.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) ListRegistered(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if users := args.Get(0); users != nil {
		return users.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, exec repositories.SQLExecutor, user *models.User) error {
	args := m.Called(ctx, exec, user)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockUserRepo) ExistsByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockMatchRepo struct {
	mock.Mock
}

func (m *mockMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	args := m.Called(ctx, exec, match)
	return args.Error(0)
}

func (m *mockMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	args := m.Called(ctx, exec, id)
	if match := args.Get(0); match != nil {
		return match.(*models.Match), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchRepo) List(ctx context.Context) ([]*models.Match, error) {
	args := m.Called(ctx)
	if matches := args.Get(0); matches != nil {
		return matches.([]*models.Match), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMatchRepo) Update(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	args := m.Called(ctx, exec, match)
	return args.Error(0)
}

func (m *mockMatchRepo) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockMatchRepo) ExistsByID(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyUser(ctx context.Context, address, subject, body string) error {
	args := m.Called(ctx, address, subject, body)
	return args.Error(0)
}

func (m *mockNotifier) NotifyAdmins(ctx context.Context, subject, body string, addresses []string) error {
	args := m.Called(ctx, subject, body, addresses)
	return args.Error(0)
}
