package models

import "time"

// Match — одиночный матч между двумя игроками.
// Судья и оба игрока опциональны; счёт может существовать только вместе
// с занятым слотом игрока (снятие игрока обнуляет его счёт).
type Match struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	MatchDate    time.Time `json:"match_date" db:"match_date"`
	MatchTime    string    `json:"match_time" db:"match_time"`
	Location     string    `json:"location" db:"location"`
	RefereeID    *int      `json:"referee_id,omitempty" db:"referee_id"`
	Player1ID    *int      `json:"player1_id,omitempty" db:"player1_id"`
	Player1Score *int      `json:"player1_score,omitempty" db:"player1_score"`
	Player2ID    *int      `json:"player2_id,omitempty" db:"player2_id"`
	Player2Score *int      `json:"player2_score,omitempty" db:"player2_score"`

	// Связанные сущности, подгружаются JOIN-ом (не мапятся напрямую)
	Referee *User `json:"referee,omitempty" db:"-"`
	Player1 *User `json:"player1,omitempty" db:"-"`
	Player2 *User `json:"player2,omitempty" db:"-"`
}

// HasPlayer сообщает, занимает ли игрок хотя бы один слот матча.
func (m *Match) HasPlayer(playerID int) bool {
	if m.Player1ID != nil && *m.Player1ID == playerID {
		return true
	}
	if m.Player2ID != nil && *m.Player2ID == playerID {
		return true
	}
	return false
}
