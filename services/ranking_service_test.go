package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkopka/prediction-pool/models"
)

func intPtr(v int) *int { return &v }

type rankingFixture struct {
	matchRepo   *fakeMatchRepo
	guessRepo   *fakeGuessRepo
	ruleRepo    *fakeRuleRepo
	rankingRepo *fakeRankingRepo
	notifier    *fakeNotifier
	service     RankingService
}

func newRankingFixture(t *testing.T, rule *models.Rule) *rankingFixture {
	t.Helper()
	f := &rankingFixture{
		matchRepo:   newFakeMatchRepo(),
		ruleRepo:    &fakeRuleRepo{rule: rule},
		rankingRepo: newFakeRankingRepo(),
		notifier:    &fakeNotifier{},
	}
	f.guessRepo = newFakeGuessRepo(f.matchRepo)
	f.service = NewRankingService(f.guessRepo, f.ruleRepo, f.rankingRepo, f.notifier, nil)
	return f
}

func (f *rankingFixture) addMatch(t *testing.T, status models.MatchStatus, isPlayoff bool, home, away *int) *models.Match {
	t.Helper()
	m := &models.Match{
		TournamentID: DefaultTournamentID,
		Status:       status,
		IsPlayoff:    isPlayoff,
		HomeScore:    home,
		AwayScore:    away,
	}
	require.NoError(t, f.matchRepo.Create(context.Background(), m))
	return m
}

func (f *rankingFixture) addGuess(t *testing.T, userID, matchID, home, away int) *models.Guess {
	t.Helper()
	g := &models.Guess{
		UserID:     userID,
		MatchID:    matchID,
		Prediction: models.Prediction{HomeScore: home, AwayScore: away},
	}
	require.NoError(t, f.guessRepo.Create(context.Background(), g))
	return g
}

func TestRecalculate_AggregatesAndAssignsPlaces(t *testing.T) {
	f := newRankingFixture(t, nil)

	group := f.addMatch(t, models.MatchCompleted, false, intPtr(3), intPtr(2))
	playoff := f.addMatch(t, models.MatchCompleted, true, intPtr(2), intPtr(1))
	open := f.addMatch(t, models.MatchScheduled, false, nil, nil)

	// User 1: exact on both completed matches (4 and 4+1 playoff bonus).
	f.addGuess(t, 1, group.ID, 3, 2)
	f.addGuess(t, 1, playoff.ID, 2, 1)
	f.addGuess(t, 1, open.ID, 1, 0)
	// User 2: correct winner only on the group match, miss on the playoff.
	f.addGuess(t, 2, group.ID, 1, 0)
	f.addGuess(t, 2, playoff.ID, 0, 2)

	rankings, err := f.service.Recalculate(context.Background(), DefaultTournamentID)
	require.NoError(t, err)
	require.Len(t, rankings, 2)

	first := rankings[0]
	assert.Equal(t, 1, first.UserID)
	assert.Equal(t, 1, first.Place)
	assert.Equal(t, 9, first.TotalPoints)
	assert.Equal(t, 2, first.TotalGuesses)
	assert.Equal(t, 2, first.AccurateGuesses)
	assert.Equal(t, 4, first.GroupStagePoints)
	assert.Equal(t, 5, first.PlayoffPoints)
	assert.False(t, first.LastCalculated.IsZero())

	second := rankings[1]
	assert.Equal(t, 2, second.UserID)
	assert.Equal(t, 2, second.Place)
	assert.Equal(t, 1, second.TotalPoints)
	assert.Equal(t, 2, second.TotalGuesses)
	assert.Equal(t, 0, second.AccurateGuesses)

	// Per-guess score fields are persisted by the pass.
	g, err := f.guessRepo.GetByUserAndMatch(context.Background(), 1, playoff.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, g.Score.Points)
	assert.True(t, g.Score.ExactScore)

	// The scheduled match contributes nothing, not even to counts.
	g, err = f.guessRepo.GetByUserAndMatch(context.Background(), 1, open.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Score.Points)

	require.Len(t, f.notifier.rooms, 1)
	assert.Equal(t, "tournament_"+DefaultTournamentID, f.notifier.rooms[0])
}

func TestRecalculate_TieBreakByAccurateThenUserID(t *testing.T) {
	f := newRankingFixture(t, nil)

	m1 := f.addMatch(t, models.MatchCompleted, false, intPtr(2), intPtr(0))
	m2 := f.addMatch(t, models.MatchCompleted, false, intPtr(3), intPtr(1))

	// User 1: 4 points with one exact score.
	f.addGuess(t, 1, m1.ID, 2, 0)
	f.addGuess(t, 1, m2.ID, 0, 1)
	// Users 2 and 3: 4 points each, no exact scores.
	f.addGuess(t, 2, m1.ID, 3, 0)
	f.addGuess(t, 2, m2.ID, 2, 1)
	f.addGuess(t, 3, m1.ID, 4, 0)
	f.addGuess(t, 3, m2.ID, 3, 2)

	rankings, err := f.service.Recalculate(context.Background(), DefaultTournamentID)
	require.NoError(t, err)
	require.Len(t, rankings, 3)

	for _, rk := range rankings {
		assert.Equal(t, 4, rk.TotalPoints, "user %d", rk.UserID)
	}
	assert.Equal(t, []int{1, 2, 3}, []int{rankings[0].UserID, rankings[1].UserID, rankings[2].UserID})
	assert.Equal(t, []int{1, 2, 3}, []int{rankings[0].Place, rankings[1].Place, rankings[2].Place})
}

func TestRecalculate_UsesTournamentRules(t *testing.T) {
	rule := &models.Rule{
		TournamentID:            DefaultTournamentID,
		PointsExact:             10,
		PointsWinnerOnly:        3,
		PointsWinnerPlusOneTeam: 5,
		PlayoffBonus:            2,
	}
	f := newRankingFixture(t, rule)

	m := f.addMatch(t, models.MatchCompleted, true, intPtr(1), intPtr(0))
	f.addGuess(t, 1, m.ID, 1, 0)

	rankings, err := f.service.Recalculate(context.Background(), DefaultTournamentID)
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, 12, rankings[0].TotalPoints)
}

func TestRecalculate_NoGuesses(t *testing.T) {
	f := newRankingFixture(t, nil)

	rankings, err := f.service.Recalculate(context.Background(), DefaultTournamentID)
	require.NoError(t, err)
	assert.Empty(t, rankings)
	assert.Equal(t, 0, f.rankingRepo.upserts)
}

func TestRecalculate_Rerun_IsIdempotent(t *testing.T) {
	f := newRankingFixture(t, nil)

	m := f.addMatch(t, models.MatchCompleted, false, intPtr(2), intPtr(1))
	f.addGuess(t, 1, m.ID, 2, 1)
	f.addGuess(t, 2, m.ID, 0, 3)

	first, err := f.service.Recalculate(context.Background(), DefaultTournamentID)
	require.NoError(t, err)
	second, err := f.service.Recalculate(context.Background(), DefaultTournamentID)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].UserID, second[i].UserID)
		assert.Equal(t, first[i].Place, second[i].Place)
		assert.Equal(t, first[i].TotalPoints, second[i].TotalPoints)
	}

	stored, err := f.rankingRepo.ListByTournament(context.Background(), DefaultTournamentID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}
