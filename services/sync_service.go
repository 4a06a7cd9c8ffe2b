package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkopka/prediction-pool/models"
	"github.com/mkopka/prediction-pool/repositories"
	"github.com/mkopka/prediction-pool/sheet"
	"github.com/mkopka/prediction-pool/storage"
)

// DefaultTournamentID is the tournament the operators' workbook feeds.
const DefaultTournamentID = "default"

const defaultVenue = "Milano/Cortina"

// teamNames maps the IIHF codes used in the sheet to display names.
// Unknown codes fall back to the code itself.
var teamNames = map[string]string{
	"CAN": "Canada",
	"CZE": "Czechia",
	"DEN": "Denmark",
	"FIN": "Finland",
	"FRA": "France",
	"GER": "Germany",
	"ITA": "Italy",
	"LAT": "Latvia",
	"SUI": "Switzerland",
	"SVK": "Slovakia",
	"SWE": "Sweden",
	"USA": "United States",

	models.PlaceholderTeamCode: "To Be Determined",
}

type SyncService interface {
	// SyncGrid reconciles persisted teams, matches, users and guesses
	// against the sheet grid. It favors partial success: malformed
	// cells are skipped (with warnings in the report) and only
	// persistence failures abort the pass.
	SyncGrid(ctx context.Context, grid sheet.Grid) (*models.SyncReport, error)

	// SyncWorkbook decodes an uploaded .xlsx workbook, runs SyncGrid,
	// and archives the workbook for audit when an uploader is
	// configured.
	SyncWorkbook(ctx context.Context, r io.Reader) (*models.SyncReport, error)
}

type syncService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	userRepo       repositories.UserRepository
	guessRepo      repositories.GuessRepository
	locator        *sheet.Locator
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewSyncService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	userRepo repositories.UserRepository,
	guessRepo repositories.GuessRepository,
	locator *sheet.Locator,
	uploader storage.FileUploader,
	logger *slog.Logger,
) SyncService {
	return &syncService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		userRepo:       userRepo,
		guessRepo:      guessRepo,
		locator:        locator,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *syncService) SyncWorkbook(ctx context.Context, r io.Reader) (*models.SyncReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading workbook: %w", ErrSyncFailed, err)
	}

	grid, err := sheet.DecodeWorkbook(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	report, err := s.SyncGrid(ctx, grid)
	if err != nil {
		return report, err
	}

	// Archiving is best effort: the sync already succeeded and the
	// operator has the report.
	if s.uploader != nil {
		key := fmt.Sprintf("imports/%s/guesses-%s.xlsx",
			DefaultTournamentID, time.Now().UTC().Format("20060102-150405"))
		contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if _, err := s.uploader.Upload(ctx, key, contentType, bytes.NewReader(raw)); err != nil {
			report.Warn(fmt.Sprintf("failed to archive workbook: %v", err))
			if s.logger != nil {
				s.logger.WarnContext(ctx, "workbook archive failed", slog.Any("error", err))
			}
		}
	}
	return report, nil
}

func (s *syncService) SyncGrid(ctx context.Context, grid sheet.Grid) (*models.SyncReport, error) {
	if grid.Rows() == 0 {
		return nil, fmt.Errorf("%w: %w", ErrSyncFailed, ErrEmptySpreadsheet)
	}

	report := &models.SyncReport{}

	if err := s.ensureTournament(ctx); err != nil {
		return report, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	descriptors, warnings := s.locator.Locate(grid)
	report.Warnings = append(report.Warnings, warnings...)

	teams, err := s.reconcileTeams(ctx, descriptors, report)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	if err := s.cleanupOrphanPlaceholders(ctx, teams); err != nil {
		return report, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	matchByColumn, err := s.reconcileMatches(ctx, descriptors, teams, report)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	if err := s.reconcileUsersAndGuesses(ctx, grid, descriptors, matchByColumn, report); err != nil {
		return report, fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "spreadsheet sync complete",
			slog.Int("matches_created", report.MatchesCreated),
			slog.Int("matches_updated", report.MatchesUpdated),
			slog.Int("users_created", report.UsersCreated),
			slog.Int("guesses_created", report.GuessesCreated),
			slog.Int("guesses_updated", report.GuessesUpdated),
			slog.Int("warnings", len(report.Warnings)),
		)
	}
	return report, nil
}

func (s *syncService) ensureTournament(ctx context.Context) error {
	_, err := s.tournamentRepo.GetByID(ctx, DefaultTournamentID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repositories.ErrTournamentNotFound) {
		return err
	}
	return s.tournamentRepo.Create(ctx, &models.Tournament{
		ID:        DefaultTournamentID,
		Name:      "Olympic Games 2026 - Ice Hockey Guessing Game",
		Location:  "Milano & Cortina, Italy",
		StartDate: time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.February, 22, 0, 0, 0, 0, time.UTC),
		Status:    models.TournamentUpcoming,
	})
}

// reconcileTeams lazily creates every team code referenced by a
// discovered match. Existing teams are never renamed or deleted.
func (s *syncService) reconcileTeams(ctx context.Context, descriptors []sheet.MatchDescriptor, report *models.SyncReport) (map[string]*models.Team, error) {
	var codes []string
	seen := make(map[string]bool)
	for _, d := range descriptors {
		for _, code := range []string{d.HomeCode, d.AwayCode} {
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	}

	teams := make(map[string]*models.Team, len(codes))
	for _, code := range codes {
		team, err := s.teamRepo.GetByCode(ctx, code)
		if err == nil {
			teams[code] = team
			continue
		}
		if !errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("looking up team %s: %w", code, err)
		}

		team = &models.Team{
			Code:    code,
			Name:    teamDisplayName(code),
			FlagRef: "/flags/" + strings.ToLower(code) + ".svg",
		}
		if err := s.teamRepo.Create(ctx, team); err != nil {
			return nil, fmt.Errorf("creating team %s: %w", code, err)
		}
		teams[code] = team
		report.TeamsCreated++
	}
	return teams, nil
}

// cleanupOrphanPlaceholders drops placeholder-vs-placeholder matches
// without a match number before new matches are written, so repeated
// imports with changing bracket shapes do not accumulate dead rows.
func (s *syncService) cleanupOrphanPlaceholders(ctx context.Context, teams map[string]*models.Team) error {
	placeholder, ok := teams[models.PlaceholderTeamCode]
	if !ok {
		var err error
		placeholder, err = s.teamRepo.GetByCode(ctx, models.PlaceholderTeamCode)
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	deleted, err := s.matchRepo.DeleteOrphanPlaceholders(ctx, DefaultTournamentID, placeholder.ID)
	if err != nil {
		return fmt.Errorf("cleaning up placeholder matches: %w", err)
	}
	if deleted > 0 && s.logger != nil {
		s.logger.InfoContext(ctx, "removed orphaned placeholder matches", slog.Int("count", deleted))
	}
	return nil
}

func (s *syncService) reconcileMatches(ctx context.Context, descriptors []sheet.MatchDescriptor, teams map[string]*models.Team, report *models.SyncReport) (map[int]*models.Match, error) {
	matchByColumn := make(map[int]*models.Match, len(descriptors))

	for _, d := range descriptors {
		home, homeOK := teams[d.HomeCode]
		away, awayOK := teams[d.AwayCode]
		if !homeOK || !awayOK {
			report.Warn(fmt.Sprintf("match %d (%s vs %s): team missing, skipped", d.Number, d.HomeCode, d.AwayCode))
			continue
		}

		existing, err := s.findMatch(ctx, d, home, away)
		if err != nil && !errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("looking up match %d: %w", d.Number, err)
		}

		if existing == nil {
			number := d.Number
			match := &models.Match{
				TournamentID:  DefaultTournamentID,
				HomeTeamID:    home.ID,
				AwayTeamID:    away.ID,
				ScheduledTime: d.Kickoff,
				Venue:         defaultVenue,
				Stage:         d.Stage,
				Status:        models.MatchScheduled,
				IsPlayoff:     d.Stage.IsPlayoff(),
				MatchNumber:   &number,
			}
			if err := s.matchRepo.Create(ctx, match); err != nil {
				return nil, fmt.Errorf("creating match %d (%s vs %s): %w", d.Number, d.HomeCode, d.AwayCode, err)
			}
			matchByColumn[d.Column] = match
			report.MatchesCreated++
			continue
		}

		if matchNeedsUpdate(existing, d) {
			if err := s.matchRepo.UpdateSchedule(ctx, existing.ID, d.Kickoff, d.Stage, existing.Venue, d.Number); err != nil {
				return nil, fmt.Errorf("updating match %d: %w", d.Number, err)
			}
			report.MatchesUpdated++
		}
		matchByColumn[d.Column] = existing
	}
	return matchByColumn, nil
}

// findMatch resolves the descriptor's tagged identity: the team pair
// for known teams, the ordinal number when a placeholder is involved.
func (s *syncService) findMatch(ctx context.Context, d sheet.MatchDescriptor, home, away *models.Team) (*models.Match, error) {
	key := d.Key()
	if key.IsOrdinal() {
		return s.matchRepo.FindByNumber(ctx, DefaultTournamentID, key.Ordinal)
	}
	return s.matchRepo.FindByTeamPair(ctx, DefaultTournamentID, home.ID, away.ID)
}

func matchNeedsUpdate(m *models.Match, d sheet.MatchDescriptor) bool {
	if !m.ScheduledTime.Equal(d.Kickoff) || m.Stage != d.Stage {
		return true
	}
	return m.MatchNumber == nil || *m.MatchNumber != d.Number
}

func (s *syncService) reconcileUsersAndGuesses(ctx context.Context, grid sheet.Grid, descriptors []sheet.MatchDescriptor, matchByColumn map[int]*models.Match, report *models.SyncReport) error {
	layout := sheet.DefaultLayout()

	for row := layout.UserStartRow; row < grid.Rows(); row++ {
		email := grid.Cell(row, layout.EmailCol)
		if email == "" || email == "Mail" || !strings.Contains(email, "@") {
			continue
		}

		user, err := s.reconcileUser(ctx, grid, layout, row, email, report)
		if err != nil {
			return err
		}

		for _, d := range descriptors {
			match, ok := matchByColumn[d.Column]
			if !ok {
				continue
			}
			if err := s.reconcileGuess(ctx, user, match, grid.Cell(row, d.Column), report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *syncService) reconcileUser(ctx context.Context, grid sheet.Grid, layout sheet.Layout, row int, email string, report *models.SyncReport) (*models.User, error) {
	name := grid.Cell(row, layout.NameCol)
	country := grid.Cell(row, layout.CountryCol)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		// Only touch the profile when the sheet actually differs.
		if name != "" && (user.Name != name || user.Country != country) {
			if err := s.userRepo.UpdateProfile(ctx, user.ID, name, country); err != nil {
				return nil, fmt.Errorf("updating user %s: %w", email, err)
			}
			user.Name = name
			user.Country = country
			report.UsersUpdated++
		}
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("looking up user %s: %w", email, err)
	}

	if name == "" {
		name = "Unknown User"
	}

	// Imported accounts start with a random temporary credential and
	// are marked verified: they come from the operators' sheet, not
	// from self-registration.
	hash, err := tempPasswordHash()
	if err != nil {
		return nil, fmt.Errorf("generating credentials for %s: %w", email, err)
	}

	user = &models.User{
		Email:        email,
		Name:         name,
		Country:      country,
		PasswordHash: hash,
		Verified:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user %s: %w", email, err)
	}
	report.UsersCreated++
	return user, nil
}

// reconcileGuess upserts one cell of the guess matrix. Blank and
// malformed cells mean "no prediction" and are skipped; the computed
// score fields are left for the ranking engine.
func (s *syncService) reconcileGuess(ctx context.Context, user *models.User, match *models.Match, raw string, report *models.SyncReport) error {
	home, away, ok := sheet.ParseScorePair(raw)
	if !ok {
		return nil
	}

	prediction := models.Prediction{HomeScore: home, AwayScore: away}

	existing, err := s.guessRepo.GetByUserAndMatch(ctx, user.ID, match.ID)
	if err != nil {
		if !errors.Is(err, repositories.ErrGuessNotFound) {
			return fmt.Errorf("looking up guess (user %d, match %d): %w", user.ID, match.ID, err)
		}
		guess := &models.Guess{UserID: user.ID, MatchID: match.ID, Prediction: prediction}
		if err := s.guessRepo.Create(ctx, guess); err != nil {
			return fmt.Errorf("creating guess (user %d, match %d): %w", user.ID, match.ID, err)
		}
		report.GuessesCreated++
		return nil
	}

	if existing.Prediction != prediction {
		if err := s.guessRepo.UpdatePrediction(ctx, existing.ID, prediction); err != nil {
			return fmt.Errorf("updating guess %d: %w", existing.ID, err)
		}
		report.GuessesUpdated++
	}
	return nil
}

func teamDisplayName(code string) string {
	if name, ok := teamNames[code]; ok {
		return name
	}
	return code
}

func tempPasswordHash() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(buf)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
