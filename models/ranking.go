package models

import "time"

// Ranking is one user's derived standing in one tournament. Rows are
// regenerated in full by the ranking engine and never hand-edited.
type Ranking struct {
	ID               int       `json:"id"`
	TournamentID     string    `json:"tournament_id"`
	UserID           int       `json:"user_id"`
	Place            int       `json:"place"`
	TotalPoints      int       `json:"total_points"`
	TotalGuesses     int       `json:"total_guesses"`
	AccurateGuesses  int       `json:"accurate_guesses"`
	GroupStagePoints int       `json:"group_stage_points"`
	PlayoffPoints    int       `json:"playoff_points"`
	LastCalculated   time.Time `json:"last_calculated"`

	User *User `json:"user,omitempty"`
}
