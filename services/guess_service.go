package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mkopka/prediction-pool/models"
	"github.com/mkopka/prediction-pool/repositories"
)

type GuessService interface {
	// Submit upserts the caller's prediction for a match. Predictions
	// are accepted only while the match is still scheduled.
	Submit(ctx context.Context, userID, matchID, homeScore, awayScore int) (*models.Guess, error)

	GetGuess(ctx context.Context, userID, matchID int) (*models.Guess, error)
}

type guessService struct {
	guessRepo repositories.GuessRepository
	matchRepo repositories.MatchRepository
	logger    *slog.Logger
}

func NewGuessService(guessRepo repositories.GuessRepository, matchRepo repositories.MatchRepository, logger *slog.Logger) GuessService {
	return &guessService{
		guessRepo: guessRepo,
		matchRepo: matchRepo,
		logger:    logger,
	}
}

func (s *guessService) Submit(ctx context.Context, userID, matchID, homeScore, awayScore int) (*models.Guess, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, ErrNegativeScore
	}

	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("getting match %d: %w", matchID, err)
	}
	if match.Status != models.MatchScheduled {
		return nil, ErrMatchNotOpen
	}

	prediction := models.Prediction{HomeScore: homeScore, AwayScore: awayScore}

	existing, err := s.guessRepo.GetByUserAndMatch(ctx, userID, matchID)
	if err != nil {
		if !errors.Is(err, repositories.ErrGuessNotFound) {
			return nil, fmt.Errorf("looking up guess (user %d, match %d): %w", userID, matchID, err)
		}
		guess := &models.Guess{UserID: userID, MatchID: matchID, Prediction: prediction}
		if err := s.guessRepo.Create(ctx, guess); err != nil {
			return nil, fmt.Errorf("creating guess (user %d, match %d): %w", userID, matchID, err)
		}
		if s.logger != nil {
			s.logger.InfoContext(ctx, "guess submitted",
				slog.Int("user_id", userID), slog.Int("match_id", matchID))
		}
		return guess, nil
	}

	if existing.Prediction != prediction {
		if err := s.guessRepo.UpdatePrediction(ctx, existing.ID, prediction); err != nil {
			return nil, fmt.Errorf("updating guess %d: %w", existing.ID, err)
		}
		existing.Prediction = prediction
	}
	return existing, nil
}

func (s *guessService) GetGuess(ctx context.Context, userID, matchID int) (*models.Guess, error) {
	guess, err := s.guessRepo.GetByUserAndMatch(ctx, userID, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrGuessNotFound) {
			return nil, ErrGuessNotFound
		}
		return nil, fmt.Errorf("getting guess (user %d, match %d): %w", userID, matchID, err)
	}
	return guess, nil
}
