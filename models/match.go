package models

import "time"

type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchLive      MatchStatus = "live"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

type MatchStage string

const (
	StageGroup        MatchStage = "group_stage"
	StageQuarterfinal MatchStage = "quarterfinal"
	StageSemifinal    MatchStage = "semifinal"
	StageBronzeMatch  MatchStage = "bronze_match"
	StageFinal        MatchStage = "final"
)

// IsPlayoff reports whether the stage belongs to the knockout bracket.
func (s MatchStage) IsPlayoff() bool {
	return s != StageGroup && s != ""
}

type Match struct {
	ID            int         `json:"id"`
	TournamentID  string      `json:"tournament_id"`
	HomeTeamID    int         `json:"home_team_id"`
	AwayTeamID    int         `json:"away_team_id"`
	ScheduledTime time.Time   `json:"scheduled_time"`
	Venue         string      `json:"venue,omitempty"`
	Stage         MatchStage  `json:"stage"`
	Status        MatchStatus `json:"status"`
	IsPlayoff     bool        `json:"is_playoff"`
	HomeScore     *int        `json:"home_score,omitempty"`
	AwayScore     *int        `json:"away_score,omitempty"`
	MatchNumber   *int        `json:"match_number,omitempty"`

	HomeTeam *Team `json:"home_team,omitempty"`
	AwayTeam *Team `json:"away_team,omitempty"`
}

// HasResult reports whether both final scores have been recorded.
func (m *Match) HasResult() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}
