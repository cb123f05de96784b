package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/courtside/tennis-api/models"
)

// CSVStrategy — таблица с фиксированным заголовком, одна строка на матч.
// Строки пишутся как есть, без CSV-квотирования: формат файла задан
// построчно и не должен меняться.
type CSVStrategy struct{}

func (CSVStrategy) Export(matches []*models.Match, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("Name,Match Date,Match Time,Location,Referee,Player 1,Player 1 Score,Player 2,Player 2 Score\n"); err != nil {
		return err
	}

	for _, match := range matches {
		_, err := fmt.Fprintf(bw, "%s,%s,%s,%s,%s,%s,%d,%s,%d\n",
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
