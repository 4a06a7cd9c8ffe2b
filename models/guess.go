package models

import "time"

// Prediction is the user-owned half of a guess: the predicted final
// score. It is written by guess submission and by spreadsheet import,
// never by the ranking engine.
type Prediction struct {
	HomeScore int `json:"home_score"`
	AwayScore int `json:"away_score"`
}

// GuessScore is the engine-owned half of a guess. Only the ranking
// recomputation pass writes these fields.
type GuessScore struct {
	Points        int  `json:"points"`
	ExactScore    bool `json:"is_exact_score"`
	CorrectWinner bool `json:"is_correct_winner"`
	OneTeamScore  bool `json:"is_one_team_score"`
}

// Guess composes the two halves into the persisted row. At most one
// guess exists per (user, match) pair.
type Guess struct {
	ID      int `json:"id"`
	UserID  int `json:"user_id"`
	MatchID int `json:"match_id"`
	Prediction
	Score     GuessScore `json:"score"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Match *Match `json:"match,omitempty"`
}
