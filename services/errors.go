package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrUserNotFound  = errors.New("user not found")
	ErrMatchNotFound = errors.New("match not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed      = errors.New("validation failed")
	ErrMatchNameRequired     = errors.New("match name is required")
	ErrMatchLocationRequired = errors.New("match location is required")
	ErrMatchDateRequired     = errors.New("match date is required")
	ErrMatchTimeRequired     = errors.New("match time is required")
	ErrMatchDateInPast       = errors.New("match date cannot be in the past")
	ErrMatchSamePlayers      = errors.New("player1 and player2 cannot be the same")
	ErrInvalidOldPassword    = errors.New("invalid old password")

	// Ошибки конфликтов
	ErrMatchFull               = errors.New("match already has two players")
	ErrPlayerAlreadyRegistered = errors.New("player already registered to this match")
	ErrUsernameExists          = errors.New("username already in use by another account")
	ErrNameExists              = errors.New("name already in use by another account")

	// Ошибки аутентификации
	ErrInvalidCredentials = errors.New("invalid username or password")
)
