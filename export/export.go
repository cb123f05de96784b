package export

import (
	"io"

	"github.com/courtside/tennis-api/models"
)

// MatchExportStrategy записывает табличное представление матчей в w.
// Отсутствующий судья или игрок выводится как "N/A", отсутствующий счёт — 0.
type MatchExportStrategy interface {
	Export(matches []*models.Match, w io.Writer) error
}

const missingParticipant = "N/A"

const dateLayout = "2006-01-02"

func participantName(u *models.User) string {
	if u == nil {
		return missingParticipant
	}
	return u.Name
}

func scoreOrZero(score *int) int {
	if score == nil {
		return 0
	}
	return *score
}
