package sheet

import (
	"fmt"
	"time"

	"github.com/mkopka/prediction-pool/models"
)

// MatchDescriptor is one discovered match column, in discovery order.
type MatchDescriptor struct {
	Number   int
	Column   int
	HomeCode string
	AwayCode string
	Kickoff  time.Time
	Stage    models.MatchStage
}

// MatchKey is the tagged identity a descriptor resolves to before any
// persistence call. A match between two known teams is identified by
// the team-code pair; a fixture involving the placeholder team is
// identified by its ordinal number, because several undecided bracket
// matches share the placeholder/placeholder pairing.
type MatchKey struct {
	HomeCode string
	AwayCode string
	Ordinal  int
}

func ByTeams(home, away string) MatchKey {
	return MatchKey{HomeCode: home, AwayCode: away}
}

func ByOrdinal(n int) MatchKey {
	return MatchKey{Ordinal: n}
}

// IsOrdinal reports whether the key identifies a placeholder fixture.
func (k MatchKey) IsOrdinal() bool {
	return k.Ordinal > 0
}

// Key resolves the descriptor's reconciliation identity.
func (d MatchDescriptor) Key() MatchKey {
	if d.HomeCode == models.PlaceholderTeamCode || d.AwayCode == models.PlaceholderTeamCode {
		return ByOrdinal(d.Number)
	}
	return ByTeams(d.HomeCode, d.AwayCode)
}

// StageCalendar holds the tournament-phase boundary dates used to
// classify a match column by its date. Bronze match and final share
// the medal day and are told apart by column position.
type StageCalendar struct {
	Quarterfinals time.Time
	Semifinals    time.Time
	Medals        time.Time
}

// Milano2026Calendar is the men's ice hockey schedule of the 2026
// winter games, the tournament the pool was built for.
func Milano2026Calendar() StageCalendar {
	return StageCalendar{
		Quarterfinals: time.Date(2026, time.February, 17, 0, 0, 0, 0, time.UTC),
		Semifinals:    time.Date(2026, time.February, 18, 0, 0, 0, 0, time.UTC),
		Medals:        time.Date(2026, time.February, 20, 0, 0, 0, 0, time.UTC),
	}
}

func (c StageCalendar) classify(date time.Time) models.MatchStage {
	switch {
	case date.Before(c.Quarterfinals):
		return models.StageGroup
	case date.Before(c.Semifinals):
		return models.StageQuarterfinal
	case date.Before(c.Medals):
		return models.StageSemifinal
	default:
		// Medal day: refined to bronze vs final after the scan, once
		// column order across the day is known.
		return models.StageFinal
	}
}

// Locator discovers match columns in a grid. It is a pure function of
// its inputs: rerunning it on an unchanged grid yields identical
// descriptors in identical order.
type Locator struct {
	layout   Layout
	calendar StageCalendar
}

func NewLocator(layout Layout, calendar StageCalendar) *Locator {
	return &Locator{layout: layout, calendar: calendar}
}

type dateMarker struct {
	col  int
	date time.Time
}

// Locate scans the grid left to right and returns the ordered match
// descriptors plus warnings for columns it had to skip. Skipping one
// malformed column never aborts the scan.
func (l *Locator) Locate(g Grid) ([]MatchDescriptor, []string) {
	var (
		descriptors []MatchDescriptor
		warnings    []string
	)

	markers := l.dateMarkers(g)
	width := g.Width(l.layout.DateRow, l.layout.TimeRow, l.layout.HomeTeamRow, l.layout.AwayTeamRow)

	// Kickoff times are visually merged across adjacent matches in the
	// sheet, so a blank time cell inherits the last non-blank one seen.
	lastHour, lastMinute := -1, -1

	for col := l.layout.FirstMatchCol; col < width; col++ {
		home := g.Cell(l.layout.HomeTeamRow, col)
		away := g.Cell(l.layout.AwayTeamRow, col)
		if home == "" || away == "" || isSentinel(home) || isSentinel(away) {
			continue
		}

		if raw := g.Cell(l.layout.TimeRow, col); raw != "" {
			hour, minute, err := ParseClock(raw)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("column %d (%s vs %s): %v", col, home, away, err))
				continue
			}
			lastHour, lastMinute = hour, minute
		} else if lastHour < 0 {
			warnings = append(warnings, fmt.Sprintf("column %d (%s vs %s): no kickoff time available", col, home, away))
			continue
		}

		date, ok := dateFor(markers, col)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("column %d (%s vs %s): no date marker at or before column", col, home, away))
			continue
		}

		descriptors = append(descriptors, MatchDescriptor{
			Number:   len(descriptors) + 1,
			Column:   col,
			HomeCode: home,
			AwayCode: away,
			Kickoff:  At(date, lastHour, lastMinute),
			Stage:    l.calendar.classify(date),
		})
	}

	refineMedalDay(descriptors)
	return descriptors, warnings
}

// dateMarkers collects every recognizable date in the date row, in
// column order. A marker applies to all match columns at or after its
// position until the next marker.
func (l *Locator) dateMarkers(g Grid) []dateMarker {
	var markers []dateMarker
	width := g.Width(l.layout.DateRow)
	for col := 0; col < width; col++ {
		if d, ok := ParseDate(g.Cell(l.layout.DateRow, col)); ok {
			markers = append(markers, dateMarker{col: col, date: d})
		}
	}
	return markers
}

// dateFor returns the date of the rightmost marker whose column is at
// or before col.
func dateFor(markers []dateMarker, col int) (time.Time, bool) {
	for i := len(markers) - 1; i >= 0; i-- {
		if markers[i].col <= col {
			return markers[i].date, true
		}
	}
	return time.Time{}, false
}

// refineMedalDay distinguishes the bronze match from the final among
// medal-day columns: the later column is the later bracket stage, so
// only the rightmost medal-day match stays a final.
func refineMedalDay(descriptors []MatchDescriptor) {
	last := -1
	for i, d := range descriptors {
		if d.Stage == models.StageFinal {
			last = i
		}
	}
	for i := range descriptors {
		if descriptors[i].Stage == models.StageFinal && i != last {
			descriptors[i].Stage = models.StageBronzeMatch
		}
	}
}
