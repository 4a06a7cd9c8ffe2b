package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkopka/prediction-pool/models"
	"github.com/mkopka/prediction-pool/repositories"
)

type MatchService interface {
	GetMatch(ctx context.Context, id int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID string) ([]*models.Match, error)

	// EnterResult records the final score, marks the match completed
	// and triggers a full ranking recalculation for its tournament.
	EnterResult(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error)
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	rankingService RankingService
	logger         *slog.Logger
}

func NewMatchService(matchRepo repositories.MatchRepository, rankingService RankingService, logger *slog.Logger) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		rankingService: rankingService,
		logger:         logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("getting match %d: %w", id, err)
	}
	return match, nil
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) EnterResult(ctx context.Context, matchID, homeScore, awayScore int) (*models.Match, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrNegativeScore
	}

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchCancelled {
		return nil, fmt.Errorf("%w: match %d is cancelled", ErrValidationFailed, matchID)
	}

	if err := s.matchRepo.UpdateResult(ctx, matchID, homeScore, awayScore, models.MatchCompleted); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("updating result for match %d: %w", matchID, err)
	}

	match.HomeScore = &homeScore
	match.AwayScore = &awayScore
	match.Status = models.MatchCompleted

	if s.logger != nil {
		s.logger.InfoContext(ctx, "match result recorded",
			slog.Int("match_id", matchID),
			slog.Int("home_score", homeScore),
			slog.Int("away_score", awayScore),
		)
	}

	// Results change standings immediately, so recalculation is part
	// of the operation, not a background task the caller can forget.
	if s.rankingService != nil {
		if _, err := s.rankingService.Recalculate(ctx, match.TournamentID); err != nil {
			return nil, fmt.Errorf("recalculating rankings after match %d: %w", matchID, err)
		}
	}
	return match, nil
}
