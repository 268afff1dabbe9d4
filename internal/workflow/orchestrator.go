package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/forgeworks/forge/internal/agent"
	"github.com/forgeworks/forge/internal/artifact"
	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/contract"
	"github.com/forgeworks/forge/internal/domain"
	forgeerrors "github.com/forgeworks/forge/internal/errors"
	"github.com/forgeworks/forge/internal/state"
)

// Orchestrator drives one workflow run end to end: planning, spec
// generation, backend and frontend generation, validation, completion. One
// phase at a time, exactly one agent call outstanding.
type Orchestrator struct {
	store        *state.Store
	machine      *Machine
	coordinator  *Coordinator
	invoker      agent.Invoker
	materializer *artifact.Materializer
	runStore     state.RunStore
	clock        clock.Clock
	logger       zerolog.Logger

	maxRetries     int
	outputDir      string
	backendSubdir  string
	frontendSubdir string
}

// OrchestratorConfig carries the orchestrator's collaborators and knobs.
type OrchestratorConfig struct {
	// Store is the run's shared state store.
	Store *state.Store

	// Invoker produces agent responses.
	Invoker agent.Invoker

	// RunStore persists snapshots after every phase. Optional; nil disables
	// persistence.
	RunStore state.RunStore

	// Clock supplies timestamps. Nil falls back to the system clock.
	Clock clock.Clock

	// Logger receives structured progress events.
	Logger zerolog.Logger

	// MaxRetries bounds re-invocations of a failing phase. Zero or negative
	// falls back to the default.
	MaxRetries int

	// OutputDir is the base directory for materialized artifacts.
	OutputDir string

	// BackendSubdir and FrontendSubdir split the output tree by side.
	// Empty values fall back to the defaults.
	BackendSubdir  string
	FrontendSubdir string
}

// NewOrchestrator wires an Orchestrator from config.
func NewOrchestrator(cfg OrchestratorConfig) (*Orchestrator, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("orchestrator store %w", forgeerrors.ErrEmptyValue)
	}
	if cfg.Invoker == nil {
		return nil, fmt.Errorf("orchestrator invoker %w", forgeerrors.ErrEmptyValue)
	}
	if cfg.OutputDir == "" {
		return nil, fmt.Errorf("orchestrator output directory %w", forgeerrors.ErrEmptyValue)
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = constants.DefaultMaxRetries
	}

	backendSubdir := cfg.BackendSubdir
	if backendSubdir == "" {
		backendSubdir = constants.BackendSubdir
	}
	frontendSubdir := cfg.FrontendSubdir
	if frontendSubdir == "" {
		frontendSubdir = constants.FrontendSubdir
	}

	machine := NewMachine(cfg.Store, clk)

	return &Orchestrator{
		store:          cfg.Store,
		machine:        machine,
		coordinator:    NewCoordinator(cfg.Store, machine, clk, cfg.Logger),
		invoker:        cfg.Invoker,
		materializer:   artifact.NewMaterializer(clk),
		runStore:       cfg.RunStore,
		clock:          clk,
		logger:         cfg.Logger,
		maxRetries:     maxRetries,
		outputDir:      cfg.OutputDir,
		backendSubdir:  backendSubdir,
		frontendSubdir: frontendSubdir,
	}, nil
}

// Coordinator exposes the run's error/recovery coordinator.
func (o *Orchestrator) Coordinator() *Coordinator {
	return o.coordinator
}

// Machine exposes the run's phase state machine.
func (o *Orchestrator) Machine() *Machine {
	return o.machine
}

// Run executes the full workflow for a product request and returns the
// final snapshot. The store records every phase, error, and handoff along
// the way; on failure the returned snapshot still reflects everything that
// happened before the run stopped.
func (o *Orchestrator) Run(ctx context.Context, request string) (*domain.Snapshot, error) {
	if strings.TrimSpace(request) == "" {
		return nil, fmt.Errorf("product request %w", forgeerrors.ErrEmptyValue)
	}

	o.store.SetRequest(request)
	o.logger.Info().Str("run_id", o.store.RunID()).Msg("workflow run starting")

	if err := o.ensurePersisted(ctx); err != nil {
		return o.store.Snapshot(), err
	}

	steps := []func(context.Context) error{
		o.runPlanning,
		o.runSpecGeneration,
		o.runBackendGeneration,
		o.runFrontendGeneration,
		o.runValidation,
	}

	for _, step := range steps {
		if err := step(ctx); err != nil {
			o.persist(ctx)
			return o.store.Snapshot(), err
		}
		o.persist(ctx)
	}

	o.logger.Info().Str("run_id", o.store.RunID()).Msg("workflow run completed")
	return o.store.Snapshot(), nil
}

// runPlanning asks the planner for a project plan and advances to spec
// generation.
func (o *Orchestrator) runPlanning(ctx context.Context) error {
	err := o.invokeWithRetry(ctx, constants.RolePlanner, agent.PlannerPrompt(o.store.Request()),
		func(response string) error {
			return o.store.UpdateProjectPlan(response, constants.RolePlanner.String())
		})
	if err != nil {
		return err
	}

	plan, err := o.store.GetProjectPlan()
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(plan)
	if err := o.coordinator.CoordinateHandoff(constants.RolePlanner, constants.RoleSpecGenerator, string(payload)); err != nil {
		return err
	}

	return o.machine.Transition(ctx, constants.PhaseSpecGeneration)
}

// runSpecGeneration derives the API contract from the plan and advances to
// backend generation.
func (o *Orchestrator) runSpecGeneration(ctx context.Context) error {
	plan, err := o.store.GetProjectPlan()
	if err != nil {
		return err
	}

	err = o.invokeWithRetry(ctx, constants.RoleSpecGenerator, agent.SpecPrompt(plan),
		func(response string) error {
			rev, err := o.store.UpdateAPISpec(response, constants.ChangeMinor, constants.RoleSpecGenerator.String())
			if err != nil {
				return err
			}
			o.logger.Info().Str("revision", rev).Msg("api spec stored")
			return nil
		})
	if err != nil {
		return err
	}

	spec, err := o.store.GetAPISpec()
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(spec)
	if err := o.coordinator.CoordinateHandoff(constants.RoleSpecGenerator, constants.RoleBackend, string(payload)); err != nil {
		return err
	}

	return o.machine.Transition(ctx, constants.PhaseBackendGeneration)
}

// runBackendGeneration materializes backend artifacts and stores the
// synthesized backend report.
func (o *Orchestrator) runBackendGeneration(ctx context.Context) error {
	spec, err := o.store.GetAPISpec()
	if err != nil {
		return err
	}

	var result *artifact.Result
	err = o.invokeWithRetry(ctx, constants.RoleBackend, agent.CodePrompt(constants.RoleBackend, spec),
		func(response string) error {
			artifacts := artifact.Extract(response)
			if len(artifacts) == 0 {
				return fmt.Errorf("backend response contained no artifacts: %w", forgeerrors.ErrAgentInvocation)
			}
			result = o.materializer.Materialize(artifacts, filepath.Join(o.outputDir, o.backendSubdir), artifact.ModeUpdate)
			return nil
		})
	if err != nil {
		return err
	}

	report := synthesizeReport("implemented_endpoints", result)
	if err := o.store.UpdateBackendReport(report, constants.RoleBackend.String()); err != nil {
		return err
	}

	if err := o.coordinator.CoordinateHandoff(constants.RoleBackend, constants.RoleFrontend, report); err != nil {
		return err
	}

	return o.machine.Transition(ctx, constants.PhaseFrontendGeneration)
}

// runFrontendGeneration materializes frontend artifacts and stores the
// synthesized frontend report.
func (o *Orchestrator) runFrontendGeneration(ctx context.Context) error {
	spec, err := o.store.GetAPISpec()
	if err != nil {
		return err
	}

	var result *artifact.Result
	err = o.invokeWithRetry(ctx, constants.RoleFrontend, agent.CodePrompt(constants.RoleFrontend, spec),
		func(response string) error {
			artifacts := artifact.ExtractFrontend(response)
			if len(artifacts) == 0 {
				return fmt.Errorf("frontend response contained no artifacts: %w", forgeerrors.ErrAgentInvocation)
			}
			result = o.materializer.Materialize(artifacts, filepath.Join(o.outputDir, o.frontendSubdir), artifact.ModeUpdate)
			return nil
		})
	if err != nil {
		return err
	}

	report := synthesizeReport("implemented_components", result)
	if err := o.store.UpdateFrontendReport(report, constants.RoleFrontend.String()); err != nil {
		return err
	}

	if err := o.coordinator.CoordinateHandoff(constants.RoleFrontend, constants.RoleOrchestrator, report); err != nil {
		return err
	}

	return o.machine.Transition(ctx, constants.PhaseValidation)
}

// runValidation checks stored-state integrity, asks for a compliance
// review, and completes the run.
func (o *Orchestrator) runValidation(ctx context.Context) error {
	if report := CheckIntegrity(o.store); !report.Clean() {
		issues := strings.Join(report.DescribeIssues(), "; ")
		if err := o.coordinator.HandleError(ctx, constants.ErrorStateCorruption, issues, constants.RecoveryRegenerate); err != nil {
			return err
		}
		return fmt.Errorf("shared state failed integrity checks: %s: %w", issues, forgeerrors.ErrWorkflowFailed)
	}

	spec, err := o.store.GetAPISpec()
	if err != nil {
		return err
	}
	backendReport, err := o.store.GetBackendReport()
	if err != nil {
		return err
	}
	frontendReport, err := o.store.GetFrontendReport()
	if err != nil {
		return err
	}

	var verdict struct {
		Valid  bool     `json:"valid"`
		Issues []string `json:"issues"`
	}

	prompt := agent.ValidationPrompt(spec, backendReport, frontendReport)
	err = o.invokeWithRetry(ctx, constants.RoleOrchestrator, prompt,
		func(response string) error {
			res := contract.ValidateJSON(response)
			if !res.Valid {
				return fmt.Errorf("validation verdict was not JSON: %s: %w", res.Err, forgeerrors.ErrContractFormat)
			}
			data, _ := json.Marshal(res.Data)
			return json.Unmarshal(data, &verdict)
		})
	if err != nil {
		return err
	}

	if !verdict.Valid {
		issues := strings.Join(verdict.Issues, "; ")
		if err := o.coordinator.HandleError(ctx, constants.ErrorValidationFailure, issues, constants.RecoveryRegenerate); err != nil {
			return err
		}
		return fmt.Errorf("contract validation reported issues: %s: %w", issues, forgeerrors.ErrWorkflowFailed)
	}

	return o.machine.Transition(ctx, constants.PhaseCompleted)
}

// invokeWithRetry calls the agent and applies its response, retrying up to
// maxRetries times. Invocation failures are recorded as agent errors,
// rejected responses as validation failures; both use retry recovery so the
// phase stays put between attempts.
func (o *Orchestrator) invokeWithRetry(ctx context.Context, role constants.AgentRole, prompt string, apply func(string) error) error {
	var lastErr error

	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		response, err := o.invoker.Invoke(ctx, role, prompt)
		if err != nil {
			lastErr = err
			if herr := o.coordinator.HandleError(ctx, constants.ErrorAgentError, err.Error(), constants.RecoveryRetry); herr != nil {
				return herr
			}
			continue
		}

		if err := apply(response); err != nil {
			lastErr = err
			if herr := o.coordinator.HandleError(ctx, constants.ErrorValidationFailure, err.Error(), constants.RecoveryRetry); herr != nil {
				return herr
			}
			continue
		}

		return nil
	}

	return fmt.Errorf("agent %q failed after %d attempts: %v: %w",
		role, o.maxRetries+1, lastErr, forgeerrors.ErrWorkflowFailed)
}

// synthesizeReport builds a report document from a materialization batch.
// The orchestrator owns report synthesis because there is exactly one
// agent invocation per generation phase.
func synthesizeReport(itemsKey string, result *artifact.Result) string {
	items := make([]string, 0, len(result.Files))
	files := make([]map[string]string, 0, len(result.Files))
	for _, f := range result.Files {
		if f.Err != "" {
			continue
		}
		items = append(items, f.Filename)
		files = append(files, map[string]string{
			"filename": f.Filename,
			"type":     f.Type,
			"purpose":  f.Purpose,
		})
	}

	compliance := "full"
	if result.Failed() {
		compliance = "partial"
	}

	report := map[string]any{
		itemsKey:            items,
		"generated_files":   files,
		"compliance_status": compliance,
	}

	data, _ := json.Marshal(report)
	return string(data)
}

// ensurePersisted creates the run directory on first save.
func (o *Orchestrator) ensurePersisted(ctx context.Context) error {
	if o.runStore == nil {
		return nil
	}

	err := o.runStore.Create(ctx, o.store.Snapshot())
	if err != nil && !errors.Is(err, forgeerrors.ErrRunExists) {
		return err
	}
	return nil
}

// persist saves a snapshot after a phase. Persistence failures are logged,
// not fatal: losing a checkpoint must not kill a healthy run.
func (o *Orchestrator) persist(ctx context.Context) {
	if o.runStore == nil {
		return
	}

	if err := o.runStore.Update(ctx, o.store.Snapshot()); err != nil {
		o.logger.Warn().Err(err).Msg("failed to persist run snapshot")
	}
}
