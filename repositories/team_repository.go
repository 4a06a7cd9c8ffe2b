package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mkopka/prediction-pool/models"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamCodeConflict = errors.New("team code conflict")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByCode(ctx context.Context, code string) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (code, name, flag_ref)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, team.Code, team.Name, team.FlagRef).
		Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamCodeConflict
		}
		return err
	}
	return nil
}

func (r *postgresTeamRepository) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	query := `
		SELECT id, code, name, flag_ref, created_at
		FROM teams
		WHERE code = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, code))
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `
		SELECT id, code, name, flag_ref, created_at
		FROM teams
		WHERE id = $1`
	return r.scanTeam(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, code, name, flag_ref, created_at
		FROM teams
		ORDER BY code ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.FlagRef, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) scanTeam(row *sql.Row) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.Code, &t.Name, &t.FlagRef, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}
