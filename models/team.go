package models

import "time"

// PlaceholderTeamCode marks a playoff fixture whose participants are
// not known yet. Matches where either side is the placeholder are
// identified by their ordinal match number instead of the team pair.
const PlaceholderTeamCode = "TBD"

type Team struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	FlagRef   string    `json:"flag_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Team) IsPlaceholder() bool {
	return t != nil && t.Code == PlaceholderTeamCode
}
