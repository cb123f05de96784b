package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/courtside/tennis-api/models"
)

// TXTStrategy — блочный формат: одно поле на строку, матчи разделены
// пустой строкой.
type TXTStrategy struct{}

func (TXTStrategy) Export(matches []*models.Match, w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, match := range matches {
		_, err := fmt.Fprintf(bw, "Match: %s\nDate: %s\nTime: %s\nLocation: %s\nReferee: %s\nPlayer 1: %s\nScore: %d\nPlayer 2: %s\nScore: %d\n\n",
			match.Name,
			match.MatchDate.Format(dateLayout),
			match.MatchTime,
			match.Location,
			participantName(match.Referee),
			participantName(match.Player1),
			scoreOrZero(match.Player1Score),
			participantName(match.Player2),
			scoreOrZero(match.Player2Score),
		)
		if err != nil {
			return err
		}
	}

	return bw.Flush()
}
