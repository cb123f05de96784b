package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/courtside/tennis-api/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	List(ctx context.Context) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, id int) error
	ExistsByID(ctx context.Context, id int) (bool, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) executor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Запрос с тремя LEFT JOIN на users: судья и оба игрока нужны с именами
// для экспорта и ответов API.
const matchSelect = `
	SELECT
		m.id, m.name, m.match_date, m.match_time, m.location,
		m.referee_id, m.player1_id, m.player1_score, m.player2_id, m.player2_score,
		r.id, r.username, r.name,
		p1.id, p1.username, p1.name,
		p2.id, p2.username, p2.name
	FROM matches m
	LEFT JOIN users r ON m.referee_id = r.id
	LEFT JOIN users p1 ON m.player1_id = p1.id
	LEFT JOIN users p2 ON m.player2_id = p2.id`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (name, match_date, match_time, location, referee_id, player1_id, player1_score, player2_id, player2_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.executor(exec).QueryRowContext(ctx, query,
		match.Name,
		match.MatchDate,
		match.MatchTime,
		match.Location,
		match.RefereeID,
		match.Player1ID,
		match.Player1Score,
		match.Player2ID,
		match.Player2Score,
	).Scan(&match.ID)
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	row := r.executor(exec).QueryRowContext(ctx, matchSelect+` WHERE m.id = $1`, id)
	match, err := scanMatch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, matchSelect+` ORDER BY m.id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches SET
			name = $1,
			match_date = $2,
			match_time = $3,
			location = $4,
			referee_id = $5,
			player1_id = $6,
			player1_score = $7,
			player2_id = $8,
			player2_score = $9
		WHERE id = $10`

	result, err := r.executor(exec).ExecContext(ctx, query,
		match.Name,
		match.MatchDate,
		match.MatchTime,
		match.Location,
		match.RefereeID,
		match.Player1ID,
		match.Player1Score,
		match.Player2ID,
		match.Player2Score,
		match.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ExistsByID(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check match existence: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	match := &models.Match{}

	var refID, p1ID, p2ID sql.NullInt64
	var refUsername, refName sql.NullString
	var p1Username, p1Name sql.NullString
	var p2Username, p2Name sql.NullString

	err := row.Scan(
		&match.ID,
		&match.Name,
		&match.MatchDate,
		&match.MatchTime,
		&match.Location,
		&match.RefereeID,
		&match.Player1ID,
		&match.Player1Score,
		&match.Player2ID,
		&match.Player2Score,
		&refID, &refUsername, &refName,
		&p1ID, &p1Username, &p1Name,
		&p2ID, &p2Username, &p2Name,
	)
	if err != nil {
		return nil, err
	}

	if refID.Valid {
		match.Referee = &models.User{ID: int(refID.Int64), Username: refUsername.String, Name: refName.String, Role: models.RoleReferee}
	}
	if p1ID.Valid {
		match.Player1 = &models.User{ID: int(p1ID.Int64), Username: p1Username.String, Name: p1Name.String, Role: models.RolePlayer}
	}
	if p2ID.Valid {
		match.Player2 = &models.User{ID: int(p2ID.Int64), Username: p2Username.String, Name: p2Name.String, Role: models.RolePlayer}
	}

	return match, nil
}
