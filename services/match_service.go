package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/courtside/tennis-api/export"
	"github.com/courtside/tennis-api/models"
	"github.com/courtside/tennis-api/repositories"
	"github.com/courtside/tennis-api/storage"
)

var ErrUploaderNotConfigured = errors.New("file uploader is not configured")

// MatchInput — полный набор полей матча для Create/Update.
// nil в Update для referee/player означает очистку слота.
type MatchInput struct {
	Name         string     `json:"name"`
	MatchDate    time.Time  `json:"match_date"`
	MatchTime    string     `json:"match_time"`
	Location     string     `json:"location"`
	RefereeID    *int       `json:"referee_id"`
	Player1ID    *int       `json:"player1_id"`
	Player1Score *int       `json:"player1_score"`
	Player2ID    *int       `json:"player2_id"`
	Player2Score *int       `json:"player2_score"`
}

// MatchFilter — набор предикатов; применяются все заданные (логическое И).
type MatchFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Location  *string
	RefereeID *int
	PlayerID  *int
}

// EventPublisher рассылает события об изменениях матчей подписчикам
// (websocket-хаб). Реализация не должна блокировать вызывающего.
type EventPublisher interface {
	BroadcastMatch(eventType string, match *models.Match)
}

const (
	EventMatchUpdated = "MATCH_UPDATED"
	EventMatchDeleted = "MATCH_DELETED"
)

type MatchService interface {
	Create(ctx context.Context, input MatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	Update(ctx context.Context, id int, input MatchInput) (*models.Match, error)
	Delete(ctx context.Context, id int) error
	RegisterPlayer(ctx context.Context, matchID, playerID int) (*models.Match, error)
	RemovePlayer(ctx context.Context, matchID, playerID int) (*models.Match, error)
	UpdateScore(ctx context.Context, matchID int, player1Score, player2Score *int) (*models.Match, error)
	Filter(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	Export(ctx context.Context, filter MatchFilter, strategy export.MatchExportStrategy, w io.Writer) error
	ExportToStorage(ctx context.Context, filter MatchFilter, strategy export.MatchExportStrategy, key, contentType string) (*storage.UploadResult, error)
}

type matchService struct {
	txm       repositories.TxManager
	matchRepo repositories.MatchRepository
	userRepo  repositories.UserRepository
	uploader  storage.FileUploader
	events    EventPublisher
}

func NewMatchService(
	txm repositories.TxManager,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
	events EventPublisher,
) MatchService {
	return &matchService{
		txm:       txm,
		matchRepo: matchRepo,
		userRepo:  userRepo,
		uploader:  uploader,
		events:    events,
	}
}

func (s *matchService) Create(ctx context.Context, input MatchInput) (*models.Match, error) {
	if err := validateMatchInput(input); err != nil {
		return nil, err
	}
	if err := s.resolveParticipants(ctx, input); err != nil {
		return nil, err
	}

	match := &models.Match{
		Name:         input.Name,
		MatchDate:    input.MatchDate,
		MatchTime:    input.MatchTime,
		Location:     input.Location,
		RefereeID:    input.RefereeID,
		Player1ID:    input.Player1ID,
		Player1Score: input.Player1Score,
		Player2ID:    input.Player2ID,
		Player2Score: input.Player2Score,
	}

	if err := s.matchRepo.Create(ctx, nil, match); err != nil {
		return nil, err
	}

	created, err := s.matchRepo.GetByID(ctx, nil, match.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload created match: %w", err)
	}
	s.broadcast(EventMatchUpdated, created)
	return created, nil
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (s *matchService) List(ctx context.Context) ([]*models.Match, error) {
	return s.matchRepo.List(ctx)
}

// Update перезаписывает все поля матча и перевалидирует инварианты Create.
// referee/player перелинковываются только при смене идентификатора;
// nil очищает слот, для игроков — вместе со счётом.
func (s *matchService) Update(ctx context.Context, id int, input MatchInput) (*models.Match, error) {
	if err := validateMatchInput(input); err != nil {
		return nil, err
	}

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		existing, err := s.matchRepo.GetByID(ctx, exec, id)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		existing.Name = input.Name
		existing.MatchDate = input.MatchDate
		existing.MatchTime = input.MatchTime
		existing.Location = input.Location
		existing.Player1Score = input.Player1Score
		existing.Player2Score = input.Player2Score

		if err := s.relink(ctx, &existing.RefereeID, input.RefereeID, nil); err != nil {
			return err
		}
		if err := s.relink(ctx, &existing.Player1ID, input.Player1ID, &existing.Player1Score); err != nil {
			return err
		}
		if err := s.relink(ctx, &existing.Player2ID, input.Player2ID, &existing.Player2Score); err != nil {
			return err
		}

		return s.matchRepo.Update(ctx, exec, existing)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload updated match: %w", err)
	}
	s.broadcast(EventMatchUpdated, updated)
	return updated, nil
}

func (s *matchService) Delete(ctx context.Context, id int) error {
	err := s.matchRepo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return ErrMatchNotFound
		}
		return err
	}
	s.broadcast(EventMatchDeleted, &models.Match{ID: id})
	return nil
}

// RegisterPlayer заполняет первый свободный слот (сначала player1).
// Повторная запись того же игрока — конфликт, а не тихий no-op.
func (s *matchService) RegisterPlayer(ctx context.Context, matchID, playerID int) (*models.Match, error) {
	if _, err := s.resolveUser(ctx, playerID); err != nil {
		return nil, err
	}

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		if match.HasPlayer(playerID) {
			return ErrPlayerAlreadyRegistered
		}
		if match.Player1ID != nil && match.Player2ID != nil {
			return ErrMatchFull
		}

		id := playerID
		if match.Player1ID == nil {
			match.Player1ID = &id
		} else {
			match.Player2ID = &id
		}

		return s.matchRepo.Update(ctx, exec, match)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match after registration: %w", err)
	}
	s.broadcast(EventMatchUpdated, updated)
	return updated, nil
}

// RemovePlayer очищает слот игрока вместе со счётом. Если игрок не занимает
// ни один слот, матч возвращается без изменений и без ошибки.
func (s *matchService) RemovePlayer(ctx context.Context, matchID, playerID int) (*models.Match, error) {
	var changed bool

	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		changed = false
		if match.Player1ID != nil && *match.Player1ID == playerID {
			match.Player1ID = nil
			match.Player1Score = nil
			changed = true
		}
		if match.Player2ID != nil && *match.Player2ID == playerID {
			match.Player2ID = nil
			match.Player2Score = nil
			changed = true
		}

		if !changed {
			return nil
		}
		return s.matchRepo.Update(ctx, exec, match)
	})
	if err != nil {
		return nil, err
	}

	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match after player removal: %w", err)
	}
	if changed {
		s.broadcast(EventMatchUpdated, match)
	}
	return match, nil
}

// UpdateScore перезаписывает только переданные поля счёта. Наличие игрока в
// соответствующем слоте не проверяется: счёт можно выставить заранее.
func (s *matchService) UpdateScore(ctx context.Context, matchID int, player1Score, player2Score *int) (*models.Match, error) {
	err := s.txm.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByID(ctx, exec, matchID)
		if err != nil {
			if errors.Is(err, repositories.ErrMatchNotFound) {
				return ErrMatchNotFound
			}
			return err
		}

		if player1Score != nil {
			match.Player1Score = player1Score
		}
		if player2Score != nil {
			match.Player2Score = player2Score
		}

		return s.matchRepo.Update(ctx, exec, match)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match after score update: %w", err)
	}
	s.broadcast(EventMatchUpdated, updated)
	return updated, nil
}

// Filter возвращает матчи, удовлетворяющие всем заданным предикатам.
// Порядок стабилен и совпадает с порядком List (по id).
func (s *matchService) Filter(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Match, 0, len(matches))
	for _, match := range matches {
		if matchesFilter(match, filter) {
			result = append(result, match)
		}
	}
	return result, nil
}

func (s *matchService) Export(ctx context.Context, filter MatchFilter, strategy export.MatchExportStrategy, w io.Writer) error {
	matches, err := s.Filter(ctx, filter)
	if err != nil {
		return err
	}
	return strategy.Export(matches, w)
}

// ExportToStorage формирует отчёт и загружает его в объектное хранилище,
// возвращая публичный URL.
func (s *matchService) ExportToStorage(ctx context.Context, filter MatchFilter, strategy export.MatchExportStrategy, key, contentType string) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrUploaderNotConfigured
	}

	var buf bytes.Buffer
	if err := s.Export(ctx, filter, strategy, &buf); err != nil {
		return nil, err
	}

	result, err := s.uploader.Upload(ctx, key, contentType, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to upload export report: %w", err)
	}
	return result, nil
}

func (s *matchService) broadcast(eventType string, match *models.Match) {
	if s.events != nil {
		s.events.BroadcastMatch(eventType, match)
	}
}

func (s *matchService) resolveUser(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *matchService) resolveParticipants(ctx context.Context, input MatchInput) error {
	for _, id := range []*int{input.RefereeID, input.Player1ID, input.Player2ID} {
		if id == nil {
			continue
		}
		if _, err := s.resolveUser(ctx, *id); err != nil {
			return err
		}
	}
	return nil
}

// relink заменяет ссылку на пользователя, разрешая новый идентификатор
// только при его смене. nil очищает слот; score (если передан) очищается
// вместе со слотом.
func (s *matchService) relink(ctx context.Context, current **int, next *int, score **int) error {
	if next == nil {
		*current = nil
		if score != nil {
			*score = nil
		}
		return nil
	}
	if *current != nil && **current == *next {
		return nil
	}
	if _, err := s.resolveUser(ctx, *next); err != nil {
		return err
	}
	id := *next
	*current = &id
	return nil
}

func validateMatchInput(input MatchInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrMatchNameRequired
	}
	if strings.TrimSpace(input.Location) == "" {
		return ErrMatchLocationRequired
	}
	if input.MatchDate.IsZero() {
		return ErrMatchDateRequired
	}
	if strings.TrimSpace(input.MatchTime) == "" {
		return ErrMatchTimeRequired
	}
	// Дата приходит из JSON как полночь UTC; сравниваем календарные дни
	// в UTC, иначе на сервере западнее UTC сегодняшний матч был бы "в прошлом".
	if dateOnly(input.MatchDate.UTC()).Before(dateOnly(time.Now().UTC())) {
		return ErrMatchDateInPast
	}
	if input.Player1ID != nil && input.Player2ID != nil && *input.Player1ID == *input.Player2ID {
		return ErrMatchSamePlayers
	}
	return nil
}

func matchesFilter(match *models.Match, filter MatchFilter) bool {
	date := dateOnly(match.MatchDate)
	if filter.StartDate != nil && date.Before(dateOnly(*filter.StartDate)) {
		return false
	}
	if filter.EndDate != nil && date.After(dateOnly(*filter.EndDate)) {
		return false
	}
	if filter.Location != nil && !strings.EqualFold(match.Location, *filter.Location) {
		return false
	}
	if filter.RefereeID != nil && (match.RefereeID == nil || *match.RefereeID != *filter.RefereeID) {
		return false
	}
	if filter.PlayerID != nil && !match.HasPlayer(*filter.PlayerID) {
		return false
	}
	return true
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
