// Package revision provides semantic-version bookkeeping for the evolving
// API contract. A single major.minor.patch scalar lets downstream agents
// answer "has the contract changed since I last read it?" without diffing
// documents.
package revision

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
)

// Version is a parsed semantic version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// String renders the version as "major.minor.patch".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v orders before other under (major, minor, patch)
// lexicographic comparison.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}

// Parse tolerantly parses a version string. Missing components default to
// zero ("1.2" parses as 1.2.0); unparseable input falls back to 1.0.0.
// Parse never fails.
func Parse(text string) Version {
	fallback := Version{Major: 1, Minor: 0, Patch: 0}

	parts := strings.Split(strings.TrimSpace(text), ".")
	if len(parts) == 0 || parts[0] == "" {
		return fallback
	}

	out := Version{}
	for i, target := range []*int{&out.Major, &out.Minor, &out.Patch} {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 {
			return fallback
		}
		*target = n
	}
	return out
}

// Increment bumps a version according to the change type. The two domain
// aliases map onto semver levels: planner_regen behaves as major (full
// contract reset because upstream business requirements changed), spec_regen
// behaves as minor (API contract changed, business requirements did not).
// Any other change type is treated as patch.
//
// Incrementing major resets minor and patch to 0; incrementing minor resets
// patch to 0.
func Increment(current string, change constants.ChangeType) string {
	v := Parse(current)

	switch change {
	case constants.ChangeMajor, constants.ChangePlannerRegen:
		v.Major++
		v.Minor = 0
		v.Patch = 0
	case constants.ChangeMinor, constants.ChangeSpecRegen:
		v.Minor++
		v.Patch = 0
	default:
		v.Patch++
	}

	return v.String()
}

// ResetPhase returns the phase a revision of the given change type forces
// the workflow back to, or ok=false when no reset is required (patch-level
// changes).
func ResetPhase(change constants.ChangeType) (constants.Phase, bool) {
	switch change {
	case constants.ChangeMajor, constants.ChangePlannerRegen:
		return constants.PhasePlanning, true
	case constants.ChangeMinor, constants.ChangeSpecRegen:
		return constants.PhaseSpecGeneration, true
	default:
		return "", false
	}
}

// NewRecord creates revision audit metadata. The revision ID is the actor
// name joined with a UUID; uniqueness within a session is the only hard
// requirement.
func NewRecord(now time.Time, actor string, change constants.ChangeType, description string) domain.RevisionRecord {
	return domain.RevisionRecord{
		Timestamp:   now,
		Actor:       actor,
		ChangeType:  change,
		Description: description,
		RevisionID:  fmt.Sprintf("%s_%s", actor, uuid.NewString()),
	}
}
