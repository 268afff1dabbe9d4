// Package workflow implements the phase state machine, the error/recovery
// coordinator, and the orchestrator that drives a full code-generation run.
package workflow

import (
	"context"
	"fmt"

	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
	"github.com/forgeworks/forge/internal/state"
)

// ValidTransitions returns the legal phase edges. Any edge not listed is
// rejected. VALIDATION may loop back to PLANNING for full regeneration,
// COMPLETED back to PLANNING for a manual restart, and ERROR re-enters only
// at PLANNING or SPEC_GENERATION.
func ValidTransitions() map[constants.Phase][]constants.Phase {
	return map[constants.Phase][]constants.Phase{
		constants.PhasePlanning:           {constants.PhaseSpecGeneration},
		constants.PhaseSpecGeneration:     {constants.PhaseBackendGeneration, constants.PhaseFrontendGeneration},
		constants.PhaseBackendGeneration:  {constants.PhaseFrontendGeneration, constants.PhaseValidation},
		constants.PhaseFrontendGeneration: {constants.PhaseValidation, constants.PhaseCompleted},
		constants.PhaseValidation:         {constants.PhaseCompleted, constants.PhasePlanning},
		constants.PhaseCompleted:          {constants.PhasePlanning},
		constants.PhaseError:              {constants.PhasePlanning, constants.PhaseSpecGeneration},
	}
}

// Machine enforces legal phase ordering over a run's shared state. All
// phase mutations flow through Transition or ForceTransition; both append a
// record to phase_history.
type Machine struct {
	store *state.Store
	clock clock.Clock
}

// NewMachine creates a Machine over the given store.
func NewMachine(store *state.Store, clk clock.Clock) *Machine {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Machine{store: store, clock: clk}
}

// Current returns the workflow's current phase.
func (m *Machine) Current() constants.Phase {
	return m.store.CurrentPhase()
}

// Transition moves the workflow to target after checking the edge table
// and the target's entry preconditions. On rejection the current phase is
// unchanged and no history is appended.
func (m *Machine) Transition(ctx context.Context, target constants.Phase) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	current := m.store.CurrentPhase()

	if !edgeAllowed(current, target) {
		return fmt.Errorf("no edge from %q to %q: %w", current, target, forgeerrors.ErrIllegalTransition)
	}

	if err := m.checkPrecondition(target); err != nil {
		return err
	}

	m.apply(current, target, constants.TransitionValidated)
	return nil
}

// ForceTransition bypasses the edge-table check for orchestrator-internal
// moves (recovery re-entry, revision-driven resets). The mutation and
// history append still happen; the record is marked automatic. Entry
// preconditions are not checked: a forced reset into PLANNING is legal even
// with no documents present.
func (m *Machine) ForceTransition(ctx context.Context, target constants.Phase) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	m.apply(m.store.CurrentPhase(), target, constants.TransitionAutomatic)
	return nil
}

// checkPrecondition verifies the target phase's required upstream document
// is present, independent of the edge table.
func (m *Machine) checkPrecondition(target constants.Phase) error {
	switch target {
	case constants.PhaseSpecGeneration:
		if !m.store.HasProjectPlan() {
			return fmt.Errorf("entering %q requires a project plan: %w",
				target, forgeerrors.ErrPreconditionUnmet)
		}
	case constants.PhaseBackendGeneration, constants.PhaseFrontendGeneration:
		if !m.store.HasAPISpec() {
			return fmt.Errorf("entering %q requires an API spec: %w",
				target, forgeerrors.ErrPreconditionUnmet)
		}
	}
	return nil
}

// apply records the transition in the store. Entering COMPLETED marks the
// run completed; every other accepted transition marks it in progress.
func (m *Machine) apply(from, to constants.Phase, tt constants.TransitionType) {
	status := constants.StatusInProgress
	if to == constants.PhaseCompleted {
		status = constants.StatusCompleted
	}

	m.store.ApplyTransition(domain.PhaseTransition{
		From:      from,
		To:        to,
		Timestamp: m.clock.Now().UTC(),
		Type:      tt,
	}, status)
}

// edgeAllowed reports whether from→to is in the legal-transition table.
func edgeAllowed(from, to constants.Phase) bool {
	for _, allowed := range ValidTransitions()[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
