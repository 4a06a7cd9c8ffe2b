package models

// SyncReport summarizes one spreadsheet reconciliation pass. Warnings
// collect recoverable per-cell problems; a report is returned even on
// partial success.
type SyncReport struct {
	TeamsCreated   int      `json:"teams_created"`
	MatchesCreated int      `json:"matches_created"`
	MatchesUpdated int      `json:"matches_updated"`
	UsersCreated   int      `json:"users_created"`
	UsersUpdated   int      `json:"users_updated"`
	GuessesCreated int      `json:"guesses_created"`
	GuessesUpdated int      `json:"guesses_updated"`
	Warnings       []string `json:"warnings,omitempty"`
}

func (r *SyncReport) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
