package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/courtside/tennis-api/models"
	"github.com/courtside/tennis-api/repositories"
)

// RegistrationService — машина состояний заявки игрока на участие в турнире:
// NONE|REJECTED -> PENDING -> ACCEPTED|REJECTED, выход в NONE из любого
// состояния. Переходы намеренно не проверяют исходный статус: повторный
// запрос или повторное принятие допустимы и лишь переотправляют уведомление.
type RegistrationService interface {
	RequestRegistration(ctx context.Context, userID int) (*models.User, error)
	AcceptRegistration(ctx context.Context, userID int) (*models.User, error)
	RejectRegistration(ctx context.Context, userID int) (*models.User, error)
	QuitTournament(ctx context.Context, userID int) (*models.User, error)
}

type registrationService struct {
	userRepo repositories.UserRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewRegistrationService(userRepo repositories.UserRepository, notifier Notifier, logger *slog.Logger) RegistrationService {
	return &registrationService{
		userRepo: userRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// RequestRegistration переводит заявку в PENDING и оповещает всех
// администраторов. Список адресов берётся из репозитория на каждый вызов,
// не кешируется.
func (s *registrationService) RequestRegistration(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.transition(ctx, userID, models.RegistrationPending, false)
	if err != nil {
		return nil, err
	}

	admins, err := s.userRepo.ListByRole(ctx, models.RoleAdministrator)
	if err != nil {
		// Переход уже сохранён; потеря уведомления не откатывает его.
		s.logger.Error("failed to list administrators for broadcast",
			slog.Int("user_id", userID), slog.Any("error", err))
		return user, nil
	}

	addresses := make([]string, 0, len(admins))
	for _, admin := range admins {
		addresses = append(addresses, admin.Email)
	}

	subject := "Tournament registration request"
	body := fmt.Sprintf("Player %s (username: %s) has requested to register for the tournament.", user.Name, user.Username)
	if err := s.notifier.NotifyAdmins(ctx, subject, body, addresses); err != nil {
		s.logger.Error("failed to notify administrators",
			slog.Int("user_id", userID), slog.Any("error", err))
	}

	return user, nil
}

// AcceptRegistration принимает заявку: статус ACCEPTED, флаг участия true,
// игроку уходит письмо на его адрес.
func (s *registrationService) AcceptRegistration(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.transition(ctx, userID, models.RegistrationAccepted, true)
	if err != nil {
		return nil, err
	}

	subject := "Tournament registration accepted"
	body := fmt.Sprintf("Hello %s, your tournament registration request has been accepted. You are now registered as a competitor.", user.Name)
	s.notifyUser(ctx, user, subject, body)

	return user, nil
}

// RejectRegistration отклоняет заявку: статус REJECTED, флаг участия false.
func (s *registrationService) RejectRegistration(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.transition(ctx, userID, models.RegistrationRejected, false)
	if err != nil {
		return nil, err
	}

	subject := "Tournament registration rejected"
	body := fmt.Sprintf("Hello %s, your tournament registration request has been rejected.", user.Name)
	s.notifyUser(ctx, user, subject, body)

	return user, nil
}

// QuitTournament сбрасывает заявку в NONE. Без уведомлений.
func (s *registrationService) QuitTournament(ctx context.Context, userID int) (*models.User, error) {
	return s.transition(ctx, userID, models.RegistrationNone, false)
}

func (s *registrationService) transition(ctx context.Context, userID int, status models.RegistrationStatus, competing bool) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.RegistrationStatus = status
	user.IsCompeting = competing

	if err := s.userRepo.Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to persist registration transition: %w", err)
	}
	return user, nil
}

func (s *registrationService) notifyUser(ctx context.Context, user *models.User, subject, body string) {
	if err := s.notifier.NotifyUser(ctx, user.Email, subject, body); err != nil {
		s.logger.Error("failed to notify user",
			slog.Int("user_id", user.ID), slog.String("email", user.Email), slog.Any("error", err))
	}
}
