package services

import (
	"context"
	"testing"

	"github.com/courtside/tennis-api/models"
	"github.com/courtside/tennis-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func boolPtr(v bool) *bool { return &v }

func TestUserService_AddUser(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)

	userRepo.On("GetByUsername", mock.Anything, "novak").Return(nil, repositories.ErrUserNotFound)
	userRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.User).ID = 5 }).
		Return(nil)

	user, err := svc.AddUser(context.Background(), UserInput{
		Username: "novak",
		Password: "secret123",
		Email:    "novak@example.com",
		Name:     "Novak",
		Role:     models.RolePlayer,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, user.ID)
	assert.Equal(t, models.RegistrationNone, user.RegistrationStatus)
	assert.False(t, user.IsCompeting)
	// пароль хранится только в виде bcrypt-хеша
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
}

func TestUserService_AddUser_DuplicateUsername(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)

	userRepo.On("GetByUsername", mock.Anything, "novak").Return(&models.User{ID: 2, Username: "novak"}, nil)

	_, err := svc.AddUser(context.Background(), UserInput{Username: "novak", Password: "x", Name: "Novak"})
	assert.ErrorIs(t, err, ErrUsernameExists)
	userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_UpdateUser_NameTakenByOtherAccount(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)

	userRepo.On("GetByID", mock.Anything, 5).Return(&models.User{ID: 5, Username: "novak", Name: "Novak"}, nil)
	userRepo.On("GetByUsername", mock.Anything, "novak").Return(&models.User{ID: 5, Username: "novak"}, nil)
	userRepo.On("GetByName", mock.Anything, "Rafael").Return(&models.User{ID: 7, Name: "Rafael"}, nil)

	_, err := svc.UpdateUser(context.Background(), 5, UserInput{Username: "novak", Name: "Rafael", Password: "x"})
	assert.ErrorIs(t, err, ErrNameExists)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateUser_OwnNamesAreNotConflicts(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)

	existing := &models.User{ID: 5, Username: "novak", Name: "Novak", Role: models.RolePlayer}

	userRepo.On("GetByID", mock.Anything, 5).Return(existing, nil)
	userRepo.On("GetByUsername", mock.Anything, "novak").Return(existing, nil)
	userRepo.On("GetByName", mock.Anything, "Novak").Return(existing, nil)
	userRepo.On("Update", mock.Anything, mock.Anything, existing).Return(nil)

	user, err := svc.UpdateUser(context.Background(), 5, UserInput{
		Username: "novak", Name: "Novak", Password: "newpass", Email: "n@example.com", Role: models.RoleReferee,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleReferee, user.Role)
}

func TestUserService_UpdateCredentials_WrongOldPassword(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)

	userRepo.On("GetByID", mock.Anything, 5).Return(&models.User{ID: 5, PasswordHash: string(hash)}, nil)

	_, err = svc.UpdateCredentials(context.Background(), 5, UpdateCredentialsInput{
		Username: "novak", Name: "Novak", OldPassword: "wrong", NewPassword: "next",
	})
	assert.ErrorIs(t, err, ErrInvalidOldPassword)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUserService_UpdateCredentials(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct"), bcrypt.MinCost)
	require.NoError(t, err)
	existing := &models.User{ID: 5, Username: "novak", Name: "Novak", PasswordHash: string(hash)}

	userRepo.On("GetByID", mock.Anything, 5).Return(existing, nil)
	userRepo.On("GetByUsername", mock.Anything, "nole").Return(nil, repositories.ErrUserNotFound)
	userRepo.On("GetByName", mock.Anything, "Nole").Return(nil, repositories.ErrUserNotFound)
	userRepo.On("Update", mock.Anything, mock.Anything, existing).Return(nil)

	user, err := svc.UpdateCredentials(context.Background(), 5, UpdateCredentialsInput{
		Username: "nole", Name: "Nole", OldPassword: "correct", NewPassword: "next",
	})
	require.NoError(t, err)
	assert.Equal(t, "nole", user.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("next")))
}

func TestUserService_Filter(t *testing.T) {
	users := []*models.User{
		{ID: 1, Username: "rafa", Name: "Rafael", IsCompeting: true},
		{ID: 2, Username: "novak", Name: "Novak", IsCompeting: false},
		{ID: 3, Username: "carlos", Name: "Carlos", IsCompeting: true},
	}

	tests := []struct {
		name    string
		filter  UserFilter
		wantIDs []int
	}{
		{"no predicates", UserFilter{}, []int{1, 2, 3}},
		{"by name is case-insensitive", UserFilter{Name: strPtr("RAFAEL")}, []int{1}},
		{"by username", UserFilter{Username: strPtr("novak")}, []int{2}},
		{"competing only", UserFilter{IsCompeting: boolPtr(true)}, []int{1, 3}},
		{"combined", UserFilter{Name: strPtr("Carlos"), IsCompeting: boolPtr(true)}, []int{3}},
		{"combined mismatch", UserFilter{Name: strPtr("Novak"), IsCompeting: boolPtr(true)}, []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			userRepo := new(mockUserRepo)
			svc := NewUserService(userRepo)
			userRepo.On("List", mock.Anything).Return(users, nil)

			result, err := svc.Filter(context.Background(), tc.filter)
			require.NoError(t, err)

			ids := make([]int, 0, len(result))
			for _, u := range result {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}

func TestUserService_DeleteUser_NotFound(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)

	userRepo.On("Delete", mock.Anything, 404).Return(repositories.ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), 404), ErrUserNotFound)
}
