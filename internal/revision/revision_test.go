package revision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/forgeworks/forge/internal/constants"
)

func TestParse_Tolerant(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Version
	}{
		{"full", "1.2.3", Version{1, 2, 3}},
		{"two components", "1.2", Version{1, 2, 0}},
		{"one component", "3", Version{3, 0, 0}},
		{"whitespace", " 2.0.1 ", Version{2, 0, 1}},
		{"garbage", "not-a-version", Version{1, 0, 0}},
		{"empty", "", Version{1, 0, 0}},
		{"negative", "1.-2.0", Version{1, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestIncrement(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		change constants.ChangeType
		want   string
	}{
		{"minor resets patch", "1.4.9", constants.ChangeMinor, "1.5.0"},
		{"major resets minor and patch", "1.4.9", constants.ChangeMajor, "2.0.0"},
		{"patch", "1.4.9", constants.ChangePatch, "1.4.10"},
		{"planner_regen behaves as major", "1.4.9", constants.ChangePlannerRegen, "2.0.0"},
		{"spec_regen behaves as minor", "1.4.9", constants.ChangeSpecRegen, "1.5.0"},
		{"unknown behaves as patch", "1.0.0", constants.ChangeType("bug_fix"), "1.0.1"},
		{"garbage current falls back", "junk", constants.ChangeMinor, "1.1.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Increment(tt.in, tt.change))
		})
	}
}

func TestIncrement_StrictlyIncreasing(t *testing.T) {
	current := "1.0.0"
	for _, change := range []constants.ChangeType{
		constants.ChangePatch,
		constants.ChangeMinor,
		constants.ChangePatch,
		constants.ChangeMajor,
		constants.ChangeMinor,
		constants.ChangeSpecRegen,
		constants.ChangePlannerRegen,
	} {
		next := Increment(current, change)
		assert.True(t, Parse(current).Less(Parse(next)),
			"%s -> %s (%s) should strictly increase", current, next, change)
		current = next
	}
}

func TestResetPhase(t *testing.T) {
	phase, ok := ResetPhase(constants.ChangeMajor)
	assert.True(t, ok)
	assert.Equal(t, constants.PhasePlanning, phase)

	phase, ok = ResetPhase(constants.ChangePlannerRegen)
	assert.True(t, ok)
	assert.Equal(t, constants.PhasePlanning, phase)

	phase, ok = ResetPhase(constants.ChangeSpecRegen)
	assert.True(t, ok)
	assert.Equal(t, constants.PhaseSpecGeneration, phase)

	_, ok = ResetPhase(constants.ChangePatch)
	assert.False(t, ok)
}

func TestNewRecord_UniqueIDs(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	a := NewRecord(now, "api_spec_generator", constants.ChangeMinor, "contract updated")
	b := NewRecord(now, "api_spec_generator", constants.ChangeMinor, "contract updated")

	assert.Equal(t, now, a.Timestamp)
	assert.Equal(t, "api_spec_generator", a.Actor)
	assert.Contains(t, a.RevisionID, "api_spec_generator_")
	assert.NotEqual(t, a.RevisionID, b.RevisionID, "revision IDs must be unique within a session")
}
