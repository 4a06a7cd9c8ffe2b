package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mkopka/prediction-pool/models"
)

var (
	ErrGuessNotFound = errors.New("guess not found")
	ErrGuessConflict = errors.New("guess already exists for user and match")
)

type GuessRepository interface {
	Create(ctx context.Context, guess *models.Guess) error
	GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Guess, error)
	UpdatePrediction(ctx context.Context, id int, prediction models.Prediction) error
	UpdateScore(ctx context.Context, id int, score models.GuessScore) error
	ListByTournamentWithMatch(ctx context.Context, tournamentID string) ([]*models.Guess, error)
}

type postgresGuessRepository struct {
	db *sql.DB
}

func NewPostgresGuessRepository(db *sql.DB) GuessRepository {
	return &postgresGuessRepository{db: db}
}

func (r *postgresGuessRepository) Create(ctx context.Context, guess *models.Guess) error {
	query := `
		INSERT INTO guesses (user_id, match_id, home_score, away_score)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		guess.UserID, guess.MatchID, guess.HomeScore, guess.AwayScore,
	).Scan(&guess.ID, &guess.CreatedAt, &guess.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrGuessConflict
		}
		return err
	}
	return nil
}

func (r *postgresGuessRepository) GetByUserAndMatch(ctx context.Context, userID, matchID int) (*models.Guess, error) {
	query := `
		SELECT id, user_id, match_id, home_score, away_score,
		       points, is_exact_score, is_correct_winner, is_one_team_score,
		       created_at, updated_at
		FROM guesses
		WHERE user_id = $1 AND match_id = $2`

	var g models.Guess
	err := r.db.QueryRowContext(ctx, query, userID, matchID).Scan(
		&g.ID, &g.UserID, &g.MatchID, &g.HomeScore, &g.AwayScore,
		&g.Score.Points, &g.Score.ExactScore, &g.Score.CorrectWinner, &g.Score.OneTeamScore,
		&g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuessNotFound
		}
		return nil, err
	}
	return &g, nil
}

// UpdatePrediction overwrites the user-owned half of the guess only.
func (r *postgresGuessRepository) UpdatePrediction(ctx context.Context, id int, prediction models.Prediction) error {
	query := `
		UPDATE guesses SET home_score = $1, away_score = $2, updated_at = NOW()
		WHERE id = $3`

	result, err := r.db.ExecContext(ctx, query, prediction.HomeScore, prediction.AwayScore, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGuessNotFound)
}

// UpdateScore overwrites the engine-owned half of the guess only.
func (r *postgresGuessRepository) UpdateScore(ctx context.Context, id int, score models.GuessScore) error {
	query := `
		UPDATE guesses SET
			points = $1, is_exact_score = $2, is_correct_winner = $3, is_one_team_score = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query,
		score.Points, score.ExactScore, score.CorrectWinner, score.OneTeamScore, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGuessNotFound)
}

// ListByTournamentWithMatch loads every guess in the tournament along
// with the match fields the ranking engine needs.
func (r *postgresGuessRepository) ListByTournamentWithMatch(ctx context.Context, tournamentID string) ([]*models.Guess, error) {
	query := `
		SELECT g.id, g.user_id, g.match_id, g.home_score, g.away_score,
		       g.points, g.is_exact_score, g.is_correct_winner, g.is_one_team_score,
		       g.created_at, g.updated_at,
		       m.status, m.is_playoff, m.home_score, m.away_score
		FROM guesses g
		JOIN matches m ON g.match_id = m.id
		WHERE m.tournament_id = $1
		ORDER BY g.user_id ASC, g.match_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guesses := make([]*models.Guess, 0)
	for rows.Next() {
		var g models.Guess
		var m models.Match
		err := rows.Scan(
			&g.ID, &g.UserID, &g.MatchID, &g.HomeScore, &g.AwayScore,
			&g.Score.Points, &g.Score.ExactScore, &g.Score.CorrectWinner, &g.Score.OneTeamScore,
			&g.CreatedAt, &g.UpdatedAt,
			&m.Status, &m.IsPlayoff, &m.HomeScore, &m.AwayScore,
		)
		if err != nil {
			return nil, err
		}
		m.ID = g.MatchID
		m.TournamentID = tournamentID
		g.Match = &m
		guesses = append(guesses, &g)
	}
	return guesses, rows.Err()
}
