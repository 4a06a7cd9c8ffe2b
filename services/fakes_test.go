package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mkopka/prediction-pool/models"
	"github.com/mkopka/prediction-pool/repositories"
)

// In-memory repository fakes. They mimic the persistence contract the
// services rely on (sentinel not-found errors, conflict on duplicate
// identity keys) without a database.

type fakeTournamentRepo struct {
	tournaments map[string]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: make(map[string]*models.Tournament)}
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.tournaments[t.ID] = t
	return nil
}

type fakeTeamRepo struct {
	teams  []*models.Team
	nextID int
}

func newFakeTeamRepo() *fakeTeamRepo { return &fakeTeamRepo{} }

func (r *fakeTeamRepo) Create(_ context.Context, team *models.Team) error {
	for _, t := range r.teams {
		if t.Code == team.Code {
			return repositories.ErrTeamCodeConflict
		}
	}
	r.nextID++
	team.ID = r.nextID
	r.teams = append(r.teams, team)
	return nil
}

func (r *fakeTeamRepo) GetByCode(_ context.Context, code string) (*models.Team, error) {
	for _, t := range r.teams {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id int) (*models.Team, error) {
	for _, t := range r.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *fakeTeamRepo) List(_ context.Context) ([]*models.Team, error) {
	return r.teams, nil
}

type fakeUserRepo struct {
	users  []*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{} }

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int, name, country string) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Name = name
			u.Country = country
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

type fakeMatchRepo struct {
	matches   []*models.Match
	guessRepo *fakeGuessRepo
	nextID    int
}

func newFakeMatchRepo() *fakeMatchRepo { return &fakeMatchRepo{} }

func (r *fakeMatchRepo) Create(_ context.Context, match *models.Match) error {
	r.nextID++
	match.ID = r.nextID
	r.matches = append(r.matches, match)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) FindByTeamPair(_ context.Context, tournamentID string, homeTeamID, awayTeamID int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.HomeTeamID == homeTeamID && m.AwayTeamID == awayTeamID {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) FindByNumber(_ context.Context, tournamentID string, matchNumber int) (*models.Match, error) {
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.MatchNumber != nil && *m.MatchNumber == matchNumber {
			return m, nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) UpdateSchedule(ctx context.Context, id int, scheduledTime time.Time, stage models.MatchStage, venue string, matchNumber int) error {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.ScheduledTime = scheduledTime
	m.Stage = stage
	m.Venue = venue
	m.MatchNumber = &matchNumber
	m.IsPlayoff = stage.IsPlayoff()
	return nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, id int, homeScore, awayScore int, status models.MatchStatus) error {
	m, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.HomeScore = &homeScore
	m.AwayScore = &awayScore
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.Match, error) {
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledTime.Before(out[j].ScheduledTime)
	})
	return out, nil
}

func (r *fakeMatchRepo) DeleteOrphanPlaceholders(_ context.Context, tournamentID string, placeholderTeamID int) (int, error) {
	var kept []*models.Match
	deleted := 0
	for _, m := range r.matches {
		orphan := m.TournamentID == tournamentID &&
			m.HomeTeamID == placeholderTeamID && m.AwayTeamID == placeholderTeamID &&
			m.MatchNumber == nil
		if orphan {
			deleted++
			if r.guessRepo != nil {
				r.guessRepo.deleteByMatch(m.ID)
			}
			continue
		}
		kept = append(kept, m)
	}
	r.matches = kept
	return deleted, nil
}

type fakeGuessRepo struct {
	mu        sync.Mutex
	guesses   []*models.Guess
	matchRepo *fakeMatchRepo
	nextID    int
}

func newFakeGuessRepo(matchRepo *fakeMatchRepo) *fakeGuessRepo {
	r := &fakeGuessRepo{matchRepo: matchRepo}
	if matchRepo != nil {
		matchRepo.guessRepo = r
	}
	return r
}

func (r *fakeGuessRepo) Create(_ context.Context, guess *models.Guess) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.guesses {
		if g.UserID == guess.UserID && g.MatchID == guess.MatchID {
			return repositories.ErrGuessConflict
		}
	}
	r.nextID++
	guess.ID = r.nextID
	guess.CreatedAt = time.Now()
	guess.UpdatedAt = guess.CreatedAt
	r.guesses = append(r.guesses, guess)
	return nil
}

func (r *fakeGuessRepo) GetByUserAndMatch(_ context.Context, userID, matchID int) (*models.Guess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.guesses {
		if g.UserID == userID && g.MatchID == matchID {
			return g, nil
		}
	}
	return nil, repositories.ErrGuessNotFound
}

func (r *fakeGuessRepo) UpdatePrediction(_ context.Context, id int, prediction models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.guesses {
		if g.ID == id {
			g.Prediction = prediction
			g.UpdatedAt = time.Now()
			return nil
		}
	}
	return repositories.ErrGuessNotFound
}

func (r *fakeGuessRepo) UpdateScore(_ context.Context, id int, score models.GuessScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.guesses {
		if g.ID == id {
			g.Score = score
			return nil
		}
	}
	return repositories.ErrGuessNotFound
}

func (r *fakeGuessRepo) ListByTournamentWithMatch(ctx context.Context, tournamentID string) ([]*models.Guess, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Guess
	for _, g := range r.guesses {
		m, err := r.matchRepo.GetByID(ctx, g.MatchID)
		if err != nil || m.TournamentID != tournamentID {
			continue
		}
		g.Match = m
		out = append(out, g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].MatchID < out[j].MatchID
	})
	return out, nil
}

func (r *fakeGuessRepo) deleteByMatch(matchID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.Guess
	for _, g := range r.guesses {
		if g.MatchID != matchID {
			kept = append(kept, g)
		}
	}
	r.guesses = kept
}

type fakeRuleRepo struct {
	rule *models.Rule
}

func (r *fakeRuleRepo) GetByTournament(_ context.Context, _ string) (*models.Rule, error) {
	if r.rule == nil {
		return nil, repositories.ErrRuleNotFound
	}
	return r.rule, nil
}

type fakeRankingRepo struct {
	rankings map[string]map[int]*models.Ranking
	upserts  int
}

func newFakeRankingRepo() *fakeRankingRepo {
	return &fakeRankingRepo{rankings: make(map[string]map[int]*models.Ranking)}
}

func (r *fakeRankingRepo) Upsert(_ context.Context, ranking *models.Ranking) error {
	byUser, ok := r.rankings[ranking.TournamentID]
	if !ok {
		byUser = make(map[int]*models.Ranking)
		r.rankings[ranking.TournamentID] = byUser
	}
	if existing, ok := byUser[ranking.UserID]; ok {
		ranking.ID = existing.ID
	} else {
		ranking.ID = len(byUser) + 1
	}
	byUser[ranking.UserID] = ranking
	r.upserts++
	return nil
}

func (r *fakeRankingRepo) ListByTournament(_ context.Context, tournamentID string) ([]*models.Ranking, error) {
	var out []*models.Ranking
	for _, rk := range r.rankings[tournamentID] {
		out = append(out, rk)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Place < out[j].Place })
	return out, nil
}

func (r *fakeRankingRepo) GetByTournamentAndUser(_ context.Context, tournamentID string, userID int) (*models.Ranking, error) {
	if rk, ok := r.rankings[tournamentID][userID]; ok {
		return rk, nil
	}
	return nil, repositories.ErrRankingNotFound
}

type fakeNotifier struct {
	rooms    []string
	messages []interface{}
}

func (n *fakeNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.rooms = append(n.rooms, roomID)
	n.messages = append(n.messages, message)
}
