package models

import "time"

// UserRole соответствует ENUM user_role в БД.
type UserRole string

const (
	RoleAdministrator UserRole = "administrator"
	RoleReferee       UserRole = "referee"
	RolePlayer        UserRole = "player"
)

// RegistrationStatus — статус заявки пользователя на участие в турнире.
// Ортогонален флагу IsCompeting: PENDING означает поданную, но ещё не
// рассмотренную заявку.
type RegistrationStatus string

const (
	RegistrationNone     RegistrationStatus = "NONE"
	RegistrationPending  RegistrationStatus = "PENDING"
	RegistrationAccepted RegistrationStatus = "ACCEPTED"
	RegistrationRejected RegistrationStatus = "REJECTED"
)

type User struct {
	ID                 int                `json:"id" db:"id"`
	Username           string             `json:"username" db:"username"`
	Name               string             `json:"name" db:"name"`
	Email              string             `json:"email" db:"email"`
	PasswordHash       string             `json:"-" db:"password_hash"`
	Role               UserRole           `json:"role" db:"role"`
	IsCompeting        bool               `json:"is_competing" db:"is_competing"`
	RegistrationStatus RegistrationStatus `json:"registration_status" db:"registration_status"`
	CreatedAt          time.Time          `json:"created_at" db:"created_at"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
