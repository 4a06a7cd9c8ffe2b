package models

// Rule is the per-tournament scoring configuration. Exactly one active
// rule set exists per tournament; defaults apply when none is stored.
type Rule struct {
	ID                      int    `json:"id"`
	TournamentID            string `json:"tournament_id"`
	PointsExact             int    `json:"points_exact"`
	PointsWinnerOnly        int    `json:"points_winner_only"`
	PointsWinnerPlusOneTeam int    `json:"points_winner_plus_one_team"`
	PlayoffBonus            int    `json:"playoff_bonus"`
}
