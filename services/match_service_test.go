package services

import (
	"context"
	"testing"
	"time"

	"github.com/courtside/tennis-api/models"
	"github.com/courtside/tennis-api/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int              { return &v }
func strPtr(v string) *string        { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func futureDate() time.Time {
	return time.Now().AddDate(0, 0, 7)
}

func validMatchInput() MatchInput {
	return MatchInput{
		Name:      "Quarterfinal",
		MatchDate: futureDate(),
		MatchTime: "14:30",
		Location:  "Centre Court",
	}
}

func newTestMatchService(matchRepo *mockMatchRepo, userRepo *mockUserRepo) MatchService {
	return NewMatchService(stubTxManager{}, matchRepo, userRepo, nil, nil)
}

func TestMatchService_Create(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	input := validMatchInput()
	input.Player1ID = intPtr(7)
	input.Player2ID = intPtr(9)

	userRepo.On("GetByID", mock.Anything, 7).Return(&models.User{ID: 7, Role: models.RolePlayer}, nil)
	userRepo.On("GetByID", mock.Anything, 9).Return(&models.User{ID: 9, Role: models.RolePlayer}, nil)

	matchRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Match")).
		Run(func(args mock.Arguments) {
			args.Get(2).(*models.Match).ID = 42
		}).
		Return(nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 42).
		Return(&models.Match{ID: 42, Name: input.Name, MatchDate: input.MatchDate, MatchTime: input.MatchTime, Location: input.Location, Player1ID: intPtr(7), Player2ID: intPtr(9)}, nil)

	match, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 42, match.ID)
	assert.Equal(t, "Quarterfinal", match.Name)
	require.NotNil(t, match.Player1ID)
	require.NotNil(t, match.Player2ID)
	assert.Equal(t, 7, *match.Player1ID)
	assert.Equal(t, 9, *match.Player2ID)
	matchRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestMatchService_Create_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(input *MatchInput)
		wantErr error
	}{
		{"empty name", func(in *MatchInput) { in.Name = "  " }, ErrMatchNameRequired},
		{"empty location", func(in *MatchInput) { in.Location = "" }, ErrMatchLocationRequired},
		{"zero date", func(in *MatchInput) { in.MatchDate = time.Time{} }, ErrMatchDateRequired},
		{"empty time", func(in *MatchInput) { in.MatchTime = "" }, ErrMatchTimeRequired},
		{"past date", func(in *MatchInput) { in.MatchDate = time.Now().AddDate(0, 0, -1) }, ErrMatchDateInPast},
		{"same players", func(in *MatchInput) { in.Player1ID = intPtr(7); in.Player2ID = intPtr(7) }, ErrMatchSamePlayers},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestMatchService(new(mockMatchRepo), new(mockUserRepo))
			input := validMatchInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestMatchService_Create_TodayIsAllowed(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	input := validMatchInput()
	input.MatchDate = time.Now()

	matchRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Match")).
		Run(func(args mock.Arguments) { args.Get(2).(*models.Match).ID = 1 }).
		Return(nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).
		Return(&models.Match{ID: 1, Name: input.Name, MatchDate: input.MatchDate, MatchTime: input.MatchTime, Location: input.Location}, nil)

	_, err := svc.Create(context.Background(), input)
	assert.NoError(t, err)
}

func TestMatchService_Create_TodayUTCMidnightIsAllowed(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	// Дата в том виде, в каком её отдаёт разбор JSON: полночь UTC текущего
	// календарного дня. Проверка не должна зависеть от зоны сервера.
	date, err := time.Parse("2006-01-02", time.Now().UTC().Format("2006-01-02"))
	require.NoError(t, err)

	input := validMatchInput()
	input.MatchDate = date

	matchRepo.On("Create", mock.Anything, mock.Anything, mock.AnythingOfType("*models.Match")).
		Run(func(args mock.Arguments) { args.Get(2).(*models.Match).ID = 2 }).
		Return(nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 2).
		Return(&models.Match{ID: 2, Name: input.Name, MatchDate: input.MatchDate, MatchTime: input.MatchTime, Location: input.Location}, nil)

	_, err = svc.Create(context.Background(), input)
	assert.NoError(t, err)
}

func TestMatchService_Create_UnknownParticipant(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	input := validMatchInput()
	input.RefereeID = intPtr(99)

	userRepo.On("GetByID", mock.Anything, 99).Return(nil, repositories.ErrUserNotFound)

	_, err := svc.Create(context.Background(), input)
	assert.ErrorIs(t, err, ErrUserNotFound)
	matchRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_RegisterPlayer_FillsSlotsInOrder(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	match := &models.Match{ID: 1, Name: "Final", MatchDate: futureDate(), MatchTime: "12:00", Location: "Court 2"}

	userRepo.On("GetByID", mock.Anything, mock.AnythingOfType("int")).Return(&models.User{ID: 7, Role: models.RolePlayer}, nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)
	matchRepo.On("Update", mock.Anything, mock.Anything, match).Return(nil)

	updated, err := svc.RegisterPlayer(context.Background(), 1, 7)
	require.NoError(t, err)
	require.NotNil(t, updated.Player1ID)
	assert.Equal(t, 7, *updated.Player1ID)
	assert.Nil(t, updated.Player2ID)

	updated, err = svc.RegisterPlayer(context.Background(), 1, 9)
	require.NoError(t, err)
	require.NotNil(t, updated.Player2ID)
	assert.Equal(t, 7, *updated.Player1ID)
	assert.Equal(t, 9, *updated.Player2ID)
}

func TestMatchService_RegisterPlayer_AlreadyRegistered(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	match := &models.Match{ID: 1, Player1ID: intPtr(7)}

	userRepo.On("GetByID", mock.Anything, 7).Return(&models.User{ID: 7}, nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)

	_, err := svc.RegisterPlayer(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrPlayerAlreadyRegistered)
	matchRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_RegisterPlayer_MatchFull(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	match := &models.Match{ID: 1, Player1ID: intPtr(7), Player2ID: intPtr(9)}

	userRepo.On("GetByID", mock.Anything, 11).Return(&models.User{ID: 11}, nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)

	_, err := svc.RegisterPlayer(context.Background(), 1, 11)
	assert.ErrorIs(t, err, ErrMatchFull)
}

func TestMatchService_RegisterPlayer_MatchNotFound(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	userRepo.On("GetByID", mock.Anything, 7).Return(&models.User{ID: 7}, nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 5).Return(nil, repositories.ErrMatchNotFound)

	_, err := svc.RegisterPlayer(context.Background(), 5, 7)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchService_RemovePlayer_ClearsSlotAndScore(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	match := &models.Match{ID: 1, Player1ID: intPtr(7), Player1Score: intPtr(6), Player2ID: intPtr(9), Player2Score: intPtr(4)}

	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)
	matchRepo.On("Update", mock.Anything, mock.Anything, match).Return(nil)

	updated, err := svc.RemovePlayer(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Nil(t, updated.Player1ID)
	assert.Nil(t, updated.Player1Score)
	require.NotNil(t, updated.Player2ID)
	assert.Equal(t, 9, *updated.Player2ID)
	assert.Equal(t, 4, *updated.Player2Score)
}

func TestMatchService_RemovePlayer_AbsentPlayerIsNoop(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	match := &models.Match{ID: 1, Player1ID: intPtr(7), Player1Score: intPtr(6)}

	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)

	updated, err := svc.RemovePlayer(context.Background(), 1, 99)
	require.NoError(t, err)
	require.NotNil(t, updated.Player1ID)
	assert.Equal(t, 7, *updated.Player1ID)
	assert.Equal(t, 6, *updated.Player1Score)
	matchRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_UpdateScore_PartialUpdate(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	match := &models.Match{ID: 1, Player1ID: intPtr(7), Player1Score: intPtr(3), Player2ID: intPtr(9), Player2Score: intPtr(5)}

	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)
	matchRepo.On("Update", mock.Anything, mock.Anything, match).Return(nil)

	updated, err := svc.UpdateScore(context.Background(), 1, intPtr(6), nil)
	require.NoError(t, err)
	assert.Equal(t, 6, *updated.Player1Score)
	assert.Equal(t, 5, *updated.Player2Score)
}

func TestMatchService_UpdateScore_AllowsEmptySlot(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	match := &models.Match{ID: 1}

	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)
	matchRepo.On("Update", mock.Anything, mock.Anything, match).Return(nil)

	updated, err := svc.UpdateScore(context.Background(), 1, intPtr(2), intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 2, *updated.Player1Score)
	assert.Equal(t, 1, *updated.Player2Score)
	assert.Nil(t, updated.Player1ID)
}

func TestMatchService_Update_ClearingPlayerClearsScore(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	match := &models.Match{
		ID:        1,
		Name:      "Final",
		MatchDate: futureDate(),
		MatchTime: "12:00",
		Location:  "Court 2",
		Player1ID: intPtr(7), Player1Score: intPtr(6),
		Player2ID: intPtr(9), Player2Score: intPtr(4),
	}

	input := MatchInput{
		Name:      "Final",
		MatchDate: match.MatchDate,
		MatchTime: match.MatchTime,
		Location:  match.Location,
		Player1ID: intPtr(7), Player1Score: intPtr(6),
		// player2 убран из заявки
	}

	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)
	matchRepo.On("Update", mock.Anything, mock.Anything, match).Return(nil)

	updated, err := svc.Update(context.Background(), 1, input)
	require.NoError(t, err)
	assert.Nil(t, updated.Player2ID)
	assert.Nil(t, updated.Player2Score)
	require.NotNil(t, updated.Player1ID)
	assert.Equal(t, 7, *updated.Player1ID)
	// пользователь с id 7 уже привязан, повторного разрешения быть не должно
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestMatchService_Update_ResolvesNewReferee(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	userRepo := new(mockUserRepo)
	svc := newTestMatchService(matchRepo, userRepo)

	match := &models.Match{ID: 1, Name: "Final", MatchDate: futureDate(), MatchTime: "12:00", Location: "Court 2"}

	input := MatchInput{
		Name:      match.Name,
		MatchDate: match.MatchDate,
		MatchTime: match.MatchTime,
		Location:  match.Location,
		RefereeID: intPtr(3),
	}

	userRepo.On("GetByID", mock.Anything, 3).Return(&models.User{ID: 3, Role: models.RoleReferee}, nil)
	matchRepo.On("GetByID", mock.Anything, mock.Anything, 1).Return(match, nil)
	matchRepo.On("Update", mock.Anything, mock.Anything, match).Return(nil)

	updated, err := svc.Update(context.Background(), 1, input)
	require.NoError(t, err)
	require.NotNil(t, updated.RefereeID)
	assert.Equal(t, 3, *updated.RefereeID)
	userRepo.AssertExpectations(t)
}

func TestMatchService_Delete(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	matchRepo.On("Delete", mock.Anything, 1).Return(nil)

	assert.NoError(t, svc.Delete(context.Background(), 1))
}

func TestMatchService_Delete_NotFound(t *testing.T) {
	matchRepo := new(mockMatchRepo)
	svc := newTestMatchService(matchRepo, new(mockUserRepo))

	matchRepo.On("Delete", mock.Anything, 77).Return(repositories.ErrMatchNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 77), ErrMatchNotFound)
}

func filterFixtures() []*models.Match {
	day := func(offset int) time.Time {
		return time.Date(2026, time.September, 1+offset, 0, 0, 0, 0, time.UTC)
	}
	return []*models.Match{
		{ID: 1, Name: "A", MatchDate: day(0), Location: "Centre Court", RefereeID: intPtr(3), Player1ID: intPtr(7), Player2ID: intPtr(9)},
		{ID: 2, Name: "B", MatchDate: day(3), Location: "Court 2", RefereeID: intPtr(3), Player1ID: intPtr(11)},
		{ID: 3, Name: "C", MatchDate: day(6), Location: "centre court", RefereeID: intPtr(4), Player2ID: intPtr(7)},
	}
}

func TestMatchService_Filter(t *testing.T) {
	day := func(offset int) time.Time {
		return time.Date(2026, time.September, 1+offset, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name    string
		filter  MatchFilter
		wantIDs []int
	}{
		{"no predicates returns all", MatchFilter{}, []int{1, 2, 3}},
		{"location is case-insensitive", MatchFilter{Location: strPtr("CENTRE COURT")}, []int{1, 3}},
		{"referee", MatchFilter{RefereeID: intPtr(3)}, []int{1, 2}},
		{"player matches either slot", MatchFilter{PlayerID: intPtr(7)}, []int{1, 3}},
		{"date range is inclusive", MatchFilter{StartDate: timePtr(day(0)), EndDate: timePtr(day(3))}, []int{1, 2}},
		{"range and player intersect", MatchFilter{StartDate: timePtr(day(1)), PlayerID: intPtr(7)}, []int{3}},
		{"no matches", MatchFilter{Location: strPtr("Court 9")}, []int{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matchRepo := new(mockMatchRepo)
			svc := newTestMatchService(matchRepo, new(mockUserRepo))
			matchRepo.On("List", mock.Anything).Return(filterFixtures(), nil)

			result, err := svc.Filter(context.Background(), tc.filter)
			require.NoError(t, err)

			ids := make([]int, 0, len(result))
			for _, m := range result {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tc.wantIDs, ids)
		})
	}
}
