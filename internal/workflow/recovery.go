package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/contract"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
	"github.com/forgeworks/forge/internal/revision"
	"github.com/forgeworks/forge/internal/state"
)

// Coordinator handles workflow errors and agent handoffs. Every error and
// every handoff attempt lands in the store's audit histories; nothing is
// silently swallowed.
type Coordinator struct {
	store   *state.Store
	machine *Machine
	clock   clock.Clock
	logger  zerolog.Logger
}

// NewCoordinator creates a Coordinator over the given store and machine.
func NewCoordinator(store *state.Store, machine *Machine, clk clock.Clock, logger zerolog.Logger) *Coordinator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Coordinator{store: store, machine: machine, clock: clk, logger: logger}
}

// HandleError records a workflow error and applies the chosen recovery.
// The error record is appended and workflow_status set to failed before
// any phase change; the next accepted transition returns the status to
// in_progress.
//
// Recovery behavior:
//   - retry: no phase change; the caller re-invokes the same phase's work.
//   - regenerate: force back to spec generation for validation failures
//     (contract-level issue), otherwise back to planning.
//   - rollback: return to the phase the workflow was in immediately before
//     its most recent transition; with fewer than two transitions on
//     record, fall back to planning.
func (c *Coordinator) HandleError(ctx context.Context, errType constants.ErrorType, message string, action constants.RecoveryAction) error {
	phase := c.store.CurrentPhase()

	c.store.AppendError(domain.ErrorRecord{
		Timestamp:      c.clock.Now().UTC(),
		Phase:          phase,
		Type:           errType,
		Message:        message,
		RecoveryAction: action,
	})

	c.logger.Error().
		Str("phase", phase.String()).
		Str("error_type", errType.String()).
		Str("recovery_action", action.String()).
		Msg(message)

	switch action {
	case constants.RecoveryRetry:
		return nil

	case constants.RecoveryRegenerate:
		target := constants.PhasePlanning
		if errType == constants.ErrorValidationFailure {
			target = constants.PhaseSpecGeneration
		}
		return c.machine.ForceTransition(ctx, target)

	case constants.RecoveryRollback:
		return c.machine.ForceTransition(ctx, c.rollbackTarget())

	default:
		return fmt.Errorf("unknown recovery action %q: %w", action, forgeerrors.ErrWorkflowFailed)
	}
}

// rollbackTarget picks the phase to roll back to from phase_history: the
// from_phase of the second-to-last transition, or planning when the history
// is too short to roll back through.
func (c *Coordinator) rollbackTarget() constants.Phase {
	history := c.store.PhaseHistory()
	if len(history) >= 2 {
		return history[len(history)-2].From
	}
	return constants.PhasePlanning
}

// CoordinateHandoff records an agent handoff. A non-empty payload must
// pass the JSON contract gate or the handoff is rejected; the attempt is
// appended to handoff_history either way.
func (c *Coordinator) CoordinateHandoff(from, to constants.AgentRole, payload string) error {
	accepted := true
	var reason string

	if payload != "" {
		if res := contract.ValidateJSON(payload); !res.Valid {
			accepted = false
			reason = res.Err
		}
	}

	c.store.AppendHandoff(domain.HandoffRecord{
		Timestamp:    c.clock.Now().UTC(),
		FromAgent:    from,
		ToAgent:      to,
		Phase:        c.store.CurrentPhase(),
		DataIncluded: payload != "",
		Accepted:     accepted,
	})

	c.logger.Info().
		Str("from_agent", from.String()).
		Str("to_agent", to.String()).
		Bool("accepted", accepted).
		Msg("agent handoff")

	if !accepted {
		return fmt.Errorf("handoff from %q to %q carried malformed data: %s: %w",
			from, to, reason, forgeerrors.ErrHandoffRejected)
	}
	return nil
}

// ApplyRevisionReset forces the workflow back to the phase a spec revision
// invalidates, if any: a major change (or planner regeneration) restarts
// planning, a minor change (or spec regeneration) restarts spec
// generation, a patch changes nothing.
func (c *Coordinator) ApplyRevisionReset(ctx context.Context, change constants.ChangeType) error {
	target, reset := revision.ResetPhase(change)
	if !reset {
		return nil
	}

	c.logger.Info().
		Str("change_type", change.String()).
		Str("reset_to", target.String()).
		Msg("spec revision invalidates downstream work")

	return c.machine.ForceTransition(ctx, target)
}
