package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mkopka/prediction-pool/models"
)

var ErrRuleNotFound = errors.New("rule set not found")

type RuleRepository interface {
	GetByTournament(ctx context.Context, tournamentID string) (*models.Rule, error)
}

type postgresRuleRepository struct {
	db *sql.DB
}

func NewPostgresRuleRepository(db *sql.DB) RuleRepository {
	return &postgresRuleRepository{db: db}
}

func (r *postgresRuleRepository) GetByTournament(ctx context.Context, tournamentID string) (*models.Rule, error) {
	query := `
		SELECT id, tournament_id, points_exact, points_winner_only, points_winner_plus_one_team, playoff_bonus
		FROM rules
		WHERE tournament_id = $1`

	var rule models.Rule
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&rule.ID, &rule.TournamentID, &rule.PointsExact, &rule.PointsWinnerOnly,
		&rule.PointsWinnerPlusOneTeam, &rule.PlayoffBonus,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}
	return &rule, nil
}
