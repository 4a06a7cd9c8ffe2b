package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkopka/prediction-pool/models"
	"github.com/mkopka/prediction-pool/repositories"
	"github.com/mkopka/prediction-pool/scoring"
)

// aggregationWorkers bounds the per-user goroutines of one
// recomputation pass.
const aggregationWorkers = 8

// Notifier pushes recomputed standings to subscribed clients. The
// live WebSocket hub satisfies it; tests use a stub.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

type RankingService interface {
	// Recalculate re-derives every guess's score fields and every
	// user's ranking row for the tournament, persists them, and
	// returns the final standings in place order.
	//
	// Every write is a full overwrite keyed by its own identity, so a
	// failed or concurrent pass can simply be re-run. If a match
	// result is entered mid-pass the next pass converges; callers
	// should trigger recalculation again after any result change.
	Recalculate(ctx context.Context, tournamentID string) ([]*models.Ranking, error)

	ListRankings(ctx context.Context, tournamentID string) ([]*models.Ranking, error)
}

type rankingService struct {
	guessRepo   repositories.GuessRepository
	ruleRepo    repositories.RuleRepository
	rankingRepo repositories.RankingRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewRankingService(
	guessRepo repositories.GuessRepository,
	ruleRepo repositories.RuleRepository,
	rankingRepo repositories.RankingRepository,
	notifier Notifier,
	logger *slog.Logger,
) RankingService {
	return &rankingService{
		guessRepo:   guessRepo,
		ruleRepo:    ruleRepo,
		rankingRepo: rankingRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// userTotals is the running aggregate for one user within a pass.
type userTotals struct {
	userID           int
	totalPoints      int
	totalGuesses     int
	accurateGuesses  int
	groupStagePoints int
	playoffPoints    int
}

func (s *rankingService) Recalculate(ctx context.Context, tournamentID string) ([]*models.Ranking, error) {
	rules, err := s.loadRules(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecalculateFailed, err)
	}

	guesses, err := s.guessRepo.ListByTournamentWithMatch(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading guesses: %w", ErrRecalculateFailed, err)
	}

	// Group guesses per user, preserving first-seen order so exact
	// point ties resolve the same way on every run.
	perUser := make(map[int][]*models.Guess)
	var userOrder []int
	for _, g := range guesses {
		if _, seen := perUser[g.UserID]; !seen {
			userOrder = append(userOrder, g.UserID)
		}
		perUser[g.UserID] = append(perUser[g.UserID], g)
	}

	// Per-user aggregation is independent across users; the sort and
	// place assignment below waits for the full snapshot.
	totals := make([]*userTotals, len(userOrder))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(aggregationWorkers)
	for i, userID := range userOrder {
		i, userID := i, userID
		eg.Go(func() error {
			agg, err := s.aggregateUser(egCtx, userID, perUser[userID], rules)
			if err != nil {
				return err
			}
			totals[i] = agg
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRecalculateFailed, err)
	}

	// Place is assigned by points descending; ties break by accurate
	// guesses descending, then user ID ascending, so tied users get a
	// deterministic order everywhere, not just in the display layer.
	sort.SliceStable(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		if a.totalPoints != b.totalPoints {
			return a.totalPoints > b.totalPoints
		}
		if a.accurateGuesses != b.accurateGuesses {
			return a.accurateGuesses > b.accurateGuesses
		}
		return a.userID < b.userID
	})

	now := time.Now().UTC()
	rankings := make([]*models.Ranking, 0, len(totals))
	for i, agg := range totals {
		ranking := &models.Ranking{
			TournamentID:     tournamentID,
			UserID:           agg.userID,
			Place:            i + 1,
			TotalPoints:      agg.totalPoints,
			TotalGuesses:     agg.totalGuesses,
			AccurateGuesses:  agg.accurateGuesses,
			GroupStagePoints: agg.groupStagePoints,
			PlayoffPoints:    agg.playoffPoints,
			LastCalculated:   now,
		}
		if err := s.rankingRepo.Upsert(ctx, ranking); err != nil {
			return nil, fmt.Errorf("%w: upserting ranking for user %d: %w", ErrRecalculateFailed, agg.userID, err)
		}
		rankings = append(rankings, ranking)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "rankings recalculated",
			slog.String("tournament_id", tournamentID),
			slog.Int("users", len(rankings)),
			slog.Int("guesses", len(guesses)),
		)
	}

	if s.notifier != nil {
		s.notifier.BroadcastToRoom("tournament_"+tournamentID, map[string]interface{}{
			"type":    "RANKINGS_UPDATED",
			"payload": rankings,
		})
	}
	return rankings, nil
}

// aggregateUser scores one user's guesses and persists each guess's
// computed fields. Guesses on matches that are not completed (or have
// no recorded result) are skipped entirely: they contribute to neither
// totals nor counts.
func (s *rankingService) aggregateUser(ctx context.Context, userID int, guesses []*models.Guess, rules scoring.Rules) (*userTotals, error) {
	agg := &userTotals{userID: userID}
	for _, g := range guesses {
		m := g.Match
		if m == nil || m.Status != models.MatchCompleted || !m.HasResult() {
			continue
		}

		res := scoring.Evaluate(g.HomeScore, g.AwayScore, m.HomeScore, m.AwayScore, m.IsPlayoff, rules)

		agg.totalPoints += res.Points
		agg.totalGuesses++
		if res.ExactScore {
			agg.accurateGuesses++
		}
		if m.IsPlayoff {
			agg.playoffPoints += res.Points
		} else {
			agg.groupStagePoints += res.Points
		}

		score := models.GuessScore{
			Points:        res.Points,
			ExactScore:    res.ExactScore,
			CorrectWinner: res.CorrectWinner,
			OneTeamScore:  res.OneTeamScore,
		}
		if err := s.guessRepo.UpdateScore(ctx, g.ID, score); err != nil {
			return nil, fmt.Errorf("updating score for guess %d: %w", g.ID, err)
		}
	}
	return agg, nil
}

func (s *rankingService) loadRules(ctx context.Context, tournamentID string) (scoring.Rules, error) {
	rule, err := s.ruleRepo.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrRuleNotFound) {
			return scoring.DefaultRules(), nil
		}
		return scoring.Rules{}, fmt.Errorf("loading rules: %w", err)
	}
	return scoring.Rules{
		Exact:         rule.PointsExact,
		WinnerOnly:    rule.PointsWinnerOnly,
		WinnerPlusOne: rule.PointsWinnerPlusOneTeam,
		PlayoffBonus:  rule.PlayoffBonus,
	}, nil
}

func (s *rankingService) ListRankings(ctx context.Context, tournamentID string) ([]*models.Ranking, error) {
	rankings, err := s.rankingRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("listing rankings for tournament %s: %w", tournamentID, err)
	}
	return rankings, nil
}
