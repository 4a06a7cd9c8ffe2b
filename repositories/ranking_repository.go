package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkopka/prediction-pool/models"
)

var ErrRankingNotFound = errors.New("ranking not found")

type RankingRepository interface {
	Upsert(ctx context.Context, ranking *models.Ranking) error
	ListByTournament(ctx context.Context, tournamentID string) ([]*models.Ranking, error)
	GetByTournamentAndUser(ctx context.Context, tournamentID string, userID int) (*models.Ranking, error)
}

type postgresRankingRepository struct {
	db *sql.DB
}

func NewPostgresRankingRepository(db *sql.DB) RankingRepository {
	return &postgresRankingRepository{db: db}
}

// Upsert overwrites the ranking row keyed by (tournament, user). Every
// field is engine-derived, so a plain overwrite is always safe.
func (r *postgresRankingRepository) Upsert(ctx context.Context, ranking *models.Ranking) error {
	query := `
		INSERT INTO rankings
		    (tournament_id, user_id, place, total_points, total_guesses, accurate_guesses,
		     group_stage_points, playoff_points, last_calculated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (tournament_id, user_id) DO UPDATE SET
			place = EXCLUDED.place,
			total_points = EXCLUDED.total_points,
			total_guesses = EXCLUDED.total_guesses,
			accurate_guesses = EXCLUDED.accurate_guesses,
			group_stage_points = EXCLUDED.group_stage_points,
			playoff_points = EXCLUDED.playoff_points,
			last_calculated = EXCLUDED.last_calculated
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		ranking.TournamentID, ranking.UserID, ranking.Place, ranking.TotalPoints,
		ranking.TotalGuesses, ranking.AccurateGuesses, ranking.GroupStagePoints,
		ranking.PlayoffPoints, ranking.LastCalculated,
	).Scan(&ranking.ID)
}

func (r *postgresRankingRepository) ListByTournament(ctx context.Context, tournamentID string) ([]*models.Ranking, error) {
	query := `
		SELECT r.id, r.tournament_id, r.user_id, r.place, r.total_points, r.total_guesses,
		       r.accurate_guesses, r.group_stage_points, r.playoff_points, r.last_calculated,
		       u.email, u.name, u.country
		FROM rankings r
		JOIN users u ON r.user_id = u.id
		WHERE r.tournament_id = $1
		ORDER BY r.place ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rankings := make([]*models.Ranking, 0)
	for rows.Next() {
		var rk models.Ranking
		var u models.User
		err := rows.Scan(
			&rk.ID, &rk.TournamentID, &rk.UserID, &rk.Place, &rk.TotalPoints, &rk.TotalGuesses,
			&rk.AccurateGuesses, &rk.GroupStagePoints, &rk.PlayoffPoints, &rk.LastCalculated,
			&u.Email, &u.Name, &u.Country,
		)
		if err != nil {
			return nil, err
		}
		u.ID = rk.UserID
		rk.User = &u
		rankings = append(rankings, &rk)
	}
	return rankings, rows.Err()
}

func (r *postgresRankingRepository) GetByTournamentAndUser(ctx context.Context, tournamentID string, userID int) (*models.Ranking, error) {
	query := `
		SELECT id, tournament_id, user_id, place, total_points, total_guesses,
		       accurate_guesses, group_stage_points, playoff_points, last_calculated
		FROM rankings
		WHERE tournament_id = $1 AND user_id = $2`

	var rk models.Ranking
	err := r.db.QueryRowContext(ctx, query, tournamentID, userID).Scan(
		&rk.ID, &rk.TournamentID, &rk.UserID, &rk.Place, &rk.TotalPoints, &rk.TotalGuesses,
		&rk.AccurateGuesses, &rk.GroupStagePoints, &rk.PlayoffPoints, &rk.LastCalculated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRankingNotFound
		}
		return nil, err
	}
	return &rk, nil
}
