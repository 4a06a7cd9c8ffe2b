package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestEvaluate_PublishedScenarios(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name        string
		gh, ga      int
		ah, aa      int
		playoff     bool
		wantPoints  int
		wantExact   bool
		wantWinner  bool
		wantOneTeam bool
	}{
		{"exact score", 3, 2, 3, 2, false, 4, true, true, true},
		{"winner plus home score exact", 3, 1, 3, 2, false, 2, false, true, true},
		{"winner only", 2, 1, 4, 3, false, 1, false, true, false},
		{"wrong winner", 1, 2, 3, 1, false, 0, false, false, false},
		{"wrong winner in playoff stays zero", 1, 2, 3, 1, true, 0, false, false, false},
		{"exact score in playoff", 3, 2, 3, 2, true, 5, true, true, true},
		{"winner plus away score exact", 2, 1, 4, 1, false, 2, false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.gh, tt.ga, intPtr(tt.ah), intPtr(tt.aa), tt.playoff, rules)
			assert.Equal(t, tt.wantPoints, got.Points)
			assert.Equal(t, tt.wantExact, got.ExactScore)
			assert.Equal(t, tt.wantWinner, got.CorrectWinner)
			assert.Equal(t, tt.wantOneTeam, got.OneTeamScore)
		})
	}
}

func TestEvaluate_IncompleteMatchYieldsZero(t *testing.T) {
	rules := DefaultRules()

	for _, tc := range []struct {
		name   string
		ah, aa *int
	}{
		{"both missing", nil, nil},
		{"home missing", nil, intPtr(2)},
		{"away missing", intPtr(2), nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(3, 2, tc.ah, tc.aa, true, rules)
			assert.Zero(t, got.Points)
			assert.False(t, got.ExactScore)
			assert.False(t, got.CorrectWinner)
			assert.False(t, got.OneTeamScore)
		})
	}
}

func TestEvaluate_DrawNeverCorrectWinner(t *testing.T) {
	rules := DefaultRules()

	// Drawn guess against a drawn result: the winner flag stays false
	// even though the outcome matches.
	got := Evaluate(1, 1, intPtr(2), intPtr(2), false, rules)
	assert.False(t, got.CorrectWinner)
	assert.Zero(t, got.Points)

	// An exact drawn score still pays the exact tier but not the
	// winner flag.
	got = Evaluate(2, 2, intPtr(2), intPtr(2), false, rules)
	require.True(t, got.ExactScore)
	assert.False(t, got.CorrectWinner)
	assert.True(t, got.OneTeamScore)
	assert.Equal(t, rules.Exact, got.Points)

	// A drawn guess against a decided result earns nothing.
	got = Evaluate(1, 1, intPtr(3), intPtr(0), false, rules)
	assert.False(t, got.CorrectWinner)
	assert.Zero(t, got.Points)
}

func TestEvaluate_Deterministic(t *testing.T) {
	rules := DefaultRules()
	for gh := 0; gh <= 5; gh++ {
		for ga := 0; ga <= 5; ga++ {
			for ah := 0; ah <= 5; ah++ {
				for aa := 0; aa <= 5; aa++ {
					first := Evaluate(gh, ga, intPtr(ah), intPtr(aa), false, rules)
					second := Evaluate(gh, ga, intPtr(ah), intPtr(aa), false, rules)
					require.Equal(t, first, second, "guess %d:%d actual %d:%d", gh, ga, ah, aa)
				}
			}
		}
	}
}

func TestEvaluate_ExactImpliesLesserFlags(t *testing.T) {
	rules := DefaultRules()
	for gh := 0; gh <= 6; gh++ {
		for ga := 0; ga <= 6; ga++ {
			for ah := 0; ah <= 6; ah++ {
				for aa := 0; aa <= 6; aa++ {
					res := Evaluate(gh, ga, intPtr(ah), intPtr(aa), false, rules)
					if !res.ExactScore {
						continue
					}
					require.True(t, res.OneTeamScore)
					if ah != aa {
						require.True(t, res.CorrectWinner, "exact %d:%d must imply winner", ah, aa)
					} else {
						require.False(t, res.CorrectWinner, "drawn result %d:%d must not flag winner", ah, aa)
					}
				}
			}
		}
	}
}

func TestEvaluate_PlayoffBonusMonotonic(t *testing.T) {
	rules := DefaultRules()
	for gh := 0; gh <= 5; gh++ {
		for ga := 0; ga <= 5; ga++ {
			for ah := 0; ah <= 5; ah++ {
				for aa := 0; aa <= 5; aa++ {
					group := Evaluate(gh, ga, intPtr(ah), intPtr(aa), false, rules)
					playoff := Evaluate(gh, ga, intPtr(ah), intPtr(aa), true, rules)

					if group.Points > 0 {
						require.Equal(t, group.Points+rules.PlayoffBonus, playoff.Points)
					} else {
						require.Zero(t, playoff.Points)
					}
					// The bonus never changes the tier flags.
					require.Equal(t, group.ExactScore, playoff.ExactScore)
					require.Equal(t, group.CorrectWinner, playoff.CorrectWinner)
					require.Equal(t, group.OneTeamScore, playoff.OneTeamScore)
				}
			}
		}
	}
}

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	assert.Equal(t, 4, r.Exact)
	assert.Equal(t, 2, r.WinnerPlusOne)
	assert.Equal(t, 1, r.WinnerOnly)
	assert.Equal(t, 1, r.PlayoffBonus)
}
