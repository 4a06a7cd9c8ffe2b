package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are the formats the sheet authors have actually used for
// the date marker row.
var dateLayouts = []string{
	"2-Jan-2006",
	"02-Jan-2006",
	"2006-01-02",
	"2.1.2006",
}

// ParseDate parses a date-marker cell. It returns false for anything
// that is not a recognizable date, which is how the locator tells date
// markers apart from other header noise in the same row.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, value); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// ParseClock parses a kickoff time cell like "16:40".
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q", value)
	}
	hour, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q", value)
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", value)
	}
	return hour, minute, nil
}

// At combines a date marker with a kickoff time into one UTC instant.
func At(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, time.UTC)
}

// ParseScorePair parses a guess cell of the form "H:A". Blank and
// malformed cells mean "no prediction" and are reported with ok=false,
// not as an error.
func ParseScorePair(value string) (home, away int, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || home < 0 {
		return 0, 0, false
	}
	away, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || away < 0 {
		return 0, 0, false
	}
	return home, away, true
}
