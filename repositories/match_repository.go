package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkopka/prediction-pool/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	FindByTeamPair(ctx context.Context, tournamentID string, homeTeamID, awayTeamID int) (*models.Match, error)
	FindByNumber(ctx context.Context, tournamentID string, matchNumber int) (*models.Match, error)
	UpdateSchedule(ctx context.Context, id int, scheduledTime time.Time, stage models.MatchStage, venue string, matchNumber int) error
	UpdateResult(ctx context.Context, id int, homeScore, awayScore int, status models.MatchStatus) error
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error)
	DeleteOrphanPlaceholders(ctx context.Context, tournamentID string, placeholderTeamID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `
	id, tournament_id, home_team_id, away_team_id, scheduled_time,
	venue, stage, status, is_playoff, home_score, away_score, match_number`

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches
		    (tournament_id, home_team_id, away_team_id, scheduled_time, venue, stage, status, is_playoff, match_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		match.TournamentID, match.HomeTeamID, match.AwayTeamID, match.ScheduledTime,
		match.Venue, match.Stage, match.Status, match.IsPlayoff, match.MatchNumber,
	).Scan(&match.ID)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresMatchRepository) FindByTeamPair(ctx context.Context, tournamentID string, homeTeamID, awayTeamID int) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND home_team_id = $2 AND away_team_id = $3`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, tournamentID, homeTeamID, awayTeamID))
}

func (r *postgresMatchRepository) FindByNumber(ctx context.Context, tournamentID string, matchNumber int) (*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1 AND match_number = $2`
	return r.scanMatch(r.db.QueryRowContext(ctx, query, tournamentID, matchNumber))
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, id int, scheduledTime time.Time, stage models.MatchStage, venue string, matchNumber int) error {
	query := `
		UPDATE matches SET
			scheduled_time = $1, stage = $2, venue = $3, match_number = $4, is_playoff = $5
		WHERE id = $6`

	result, err := r.db.ExecContext(ctx, query, scheduledTime, stage, venue, matchNumber, stage.IsPlayoff(), id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, id int, homeScore, awayScore int, status models.MatchStatus) error {
	query := `
		UPDATE matches SET home_score = $1, away_score = $2, status = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, homeScore, awayScore, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY scheduled_time ASC, match_number ASC NULLS LAST`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := r.scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// DeleteOrphanPlaceholders removes leftover placeholder-vs-placeholder
// matches that carry no match number, together with their guesses.
// Such rows come from older, differently shaped imports and cannot be
// matched by any current reconciliation key.
func (r *postgresMatchRepository) DeleteOrphanPlaceholders(ctx context.Context, tournamentID string, placeholderTeamID int) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM guesses
		WHERE match_id IN (
			SELECT id FROM matches
			WHERE tournament_id = $1 AND home_team_id = $2 AND away_team_id = $2 AND match_number IS NULL
		)`, tournamentID, placeholderTeamID)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM matches
		WHERE tournament_id = $1 AND home_team_id = $2 AND away_team_id = $2 AND match_number IS NULL`,
		tournamentID, placeholderTeamID)
	if err != nil {
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(deleted), tx.Commit()
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &m.ScheduledTime,
		&m.Venue, &m.Stage, &m.Status, &m.IsPlayoff, &m.HomeScore, &m.AwayScore, &m.MatchNumber,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return &m, nil
}
