package constants

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestStringerValues verifies every workflow enum implements fmt.Stringer
// and returns its raw snake_case value, so all of them log uniformly.
func TestStringerValues(t *testing.T) {
	tests := []struct {
		name  string
		value fmt.Stringer
		want  string
	}{
		{"phase", PhaseSpecGeneration, "spec_generation"},
		{"workflow status", StatusInProgress, "in_progress"},
		{"change type", ChangePlannerRegen, "planner_regen"},
		{"error type", ErrorValidationFailure, "validation_failure"},
		{"recovery action", RecoveryRegenerate, "regenerate"},
		{"agent role", RoleSpecGenerator, "api_spec_generator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}
