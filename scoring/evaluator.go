// Package scoring implements the pure guess-scoring rules of the
// prediction pool. It has no dependencies and performs no I/O.
package scoring

// Rules holds the point values for one tournament.
type Rules struct {
	Exact         int
	WinnerOnly    int
	WinnerPlusOne int
	PlayoffBonus  int
}

// DefaultRules returns the published game rules: 4 points for the
// exact score, 2 for the right winner plus one exact team score, 1 for
// the right winner alone, and a +1 bonus in playoff matches.
func DefaultRules() Rules {
	return Rules{Exact: 4, WinnerOnly: 1, WinnerPlusOne: 2, PlayoffBonus: 1}
}

// Result is the points breakdown for one (guess, result) pair.
type Result struct {
	Points        int
	ExactScore    bool
	CorrectWinner bool
	OneTeamScore  bool
}

type outcome int

const (
	homeWins outcome = iota
	awayWins
	draw
)

func outcomeOf(home, away int) outcome {
	switch {
	case home > away:
		return homeWins
	case home < away:
		return awayWins
	default:
		return draw
	}
}

// Evaluate scores a guessed result against the actual one. Actual
// scores are pointers because an incomplete match has none: if either
// is nil the guess earns zero points with all flags false.
//
// A drawn actual result never counts as a correct winner. Draws are
// not valid final outcomes in the game, but spreadsheet data can still
// contain them and they must score safely rather than fail.
func Evaluate(guessHome, guessAway int, actualHome, actualAway *int, isPlayoff bool, rules Rules) Result {
	var res Result
	if actualHome == nil || actualAway == nil {
		return res
	}

	guessed := outcomeOf(guessHome, guessAway)
	actual := outcomeOf(*actualHome, *actualAway)

	res.CorrectWinner = guessed == actual && actual != draw
	res.OneTeamScore = guessHome == *actualHome || guessAway == *actualAway
	res.ExactScore = guessHome == *actualHome && guessAway == *actualAway

	switch {
	case res.ExactScore:
		res.Points = rules.Exact
	case res.CorrectWinner && res.OneTeamScore:
		res.Points = rules.WinnerPlusOne
	case res.CorrectWinner:
		res.Points = rules.WinnerOnly
	}

	if isPlayoff && res.Points > 0 {
		res.Points += rules.PlayoffBonus
	}
	return res
}
