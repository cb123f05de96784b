package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/courtside/tennis-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func exportFixtures() []*models.Match {
	return []*models.Match{
		{
			ID:           1,
			Name:         "Semifinal",
			MatchDate:    time.Date(2026, time.September, 12, 0, 0, 0, 0, time.UTC),
			MatchTime:    "14:30",
			Location:     "Centre Court",
			Referee:      &models.User{ID: 3, Name: "Carlos Ramos"},
			Player1:      &models.User{ID: 7, Name: "Rafael"},
			Player2:      &models.User{ID: 9, Name: "Novak"},
			Player1Score: intPtr(6),
			Player2Score: intPtr(4),
		},
		{
			ID:        2,
			Name:      "Qualifier",
			MatchDate: time.Date(2026, time.September, 14, 0, 0, 0, 0, time.UTC),
			MatchTime: "09:00",
			Location:  "Court 5",
			// судья и второй игрок ещё не назначены
			Player1: &models.User{ID: 11, Name: "Daniil"},
		},
	}
}

func TestCSVStrategy_Export(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVStrategy{}.Export(exportFixtures(), &buf))

	want := "Name,Match Date,Match Time,Location,Referee,Player 1,Player 1 Score,Player 2,Player 2 Score\n" +
		"Semifinal,2026-09-12,14:30,Centre Court,Carlos Ramos,Rafael,6,Novak,4\n" +
		"Qualifier,2026-09-14,09:00,Court 5,N/A,Daniil,0,N/A,0\n"

	assert.Equal(t, want, buf.String())
}

func TestCSVStrategy_Export_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVStrategy{}.Export(nil, &buf))

	assert.Equal(t, "Name,Match Date,Match Time,Location,Referee,Player 1,Player 1 Score,Player 2,Player 2 Score\n", buf.String())
}

func TestTXTStrategy_Export(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TXTStrategy{}.Export(exportFixtures(), &buf))

	want := "Match: Semifinal\n" +
		"Date: 2026-09-12\n" +
		"Time: 14:30\n" +
		"Location: Centre Court\n" +
		"Referee: Carlos Ramos\n" +
		"Player 1: Rafael\n" +
		"Score: 6\n" +
		"Player 2: Novak\n" +
		"Score: 4\n" +
		"\n" +
		"Match: Qualifier\n" +
		"Date: 2026-09-14\n" +
		"Time: 09:00\n" +
		"Location: Court 5\n" +
		"Referee: N/A\n" +
		"Player 1: Daniil\n" +
		"Score: 0\n" +
		"Player 2: N/A\n" +
		"Score: 0\n" +
		"\n"

	assert.Equal(t, want, buf.String())
}

func TestTXTStrategy_Export_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, TXTStrategy{}.Export(nil, &buf))

	assert.Empty(t, buf.String())
}
