// Package cli provides the command-line interface for forge.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgeworks/forge/internal/agent"
	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/config"
	"github.com/forgeworks/forge/internal/domain"
	"github.com/forgeworks/forge/internal/state"
	"github.com/forgeworks/forge/internal/workflow"
)

// RunFlags holds flags specific to the run command.
type RunFlags struct {
	// AgentCommand overrides the configured agent CLI.
	AgentCommand string
	// ScriptFile replays canned agent responses from a YAML file.
	ScriptFile string
	// OutputDir overrides the configured output directory.
	OutputDir string
	// MaxRetries overrides the configured retry budget.
	MaxRetries int
	// NoPersist disables run snapshot persistence.
	NoPersist bool
}

// AddRunCommand adds the run command to the root command.
func AddRunCommand(parent *cobra.Command) {
	flags := &RunFlags{}

	cmd := &cobra.Command{
		Use:   "run <request>",
		Short: "Run the full generation workflow for a product request",
		Long: `Execute the complete workflow for a natural-language product request:
planning, API spec generation, backend generation, frontend generation,
and validation. Generated code is materialized under the output directory
and a snapshot of the run is persisted under ~/.forge/runs.

Examples:
  forge run "a todo app with user accounts"
  forge run --script fixtures/todo.yaml "a todo app"
  forge run --out build/generated "an expense tracker"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd.Context(), cmd, args[0], flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&flags.AgentCommand, "agent-command", "", "agent CLI to invoke (overrides config)")
	cmd.Flags().StringVar(&flags.ScriptFile, "script", "", "YAML file of canned agent responses (replaces the live agent)")
	cmd.Flags().StringVar(&flags.OutputDir, "out", "", "output directory for generated code (overrides config)")
	cmd.Flags().IntVar(&flags.MaxRetries, "max-retries", 0, "phase retry budget (overrides config)")
	cmd.Flags().BoolVar(&flags.NoPersist, "no-persist", false, "do not persist the run snapshot")

	parent.AddCommand(cmd)
}

// runRun executes the run command.
func runRun(ctx context.Context, cmd *cobra.Command, request string, flags *RunFlags, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	request, err := readRequestFromStdinIfDash(request)
	if err != nil {
		return err
	}
	request = strings.TrimSpace(request)
	if request == "" {
		return fmt.Errorf("product request must not be empty")
	}

	logger := GetLogger()
	ctx = logger.WithContext(ctx)

	cfg, err := config.LoadWithOverrides(ctx, &config.Config{
		Agent: config.AgentConfig{
			Command:    flags.AgentCommand,
			ScriptFile: flags.ScriptFile,
		},
		Output: config.OutputConfig{
			Dir: flags.OutputDir,
		},
		Workflow: config.WorkflowConfig{
			MaxRetries: flags.MaxRetries,
		},
	})
	if err != nil {
		return err
	}

	invoker, err := buildInvoker(cfg)
	if err != nil {
		return err
	}

	var runStore state.RunStore
	if cfg.Workflow.Persist && !flags.NoPersist {
		fileStore, err := state.NewFileStore("")
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		runStore = fileStore
	}

	clk := clock.RealClock{}
	store := state.New(state.GenerateRunID(), clk)

	orch, err := workflow.NewOrchestrator(workflow.OrchestratorConfig{
		Store:          store,
		Invoker:        invoker,
		RunStore:       runStore,
		Clock:          clk,
		Logger:         logger,
		MaxRetries:     cfg.Workflow.MaxRetries,
		OutputDir:      cfg.Output.Dir,
		BackendSubdir:  cfg.Output.BackendSubdir,
		FrontendSubdir: cfg.Output.FrontendSubdir,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Str("run_id", store.RunID()).
		Str("output_dir", cfg.Output.Dir).
		Msg("starting workflow run")

	snap, runErr := orch.Run(ctx, request)

	output := cmd.Flag("output").Value.String()
	if output == OutputJSON {
		if err := writeSnapshotJSON(w, snap); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(w, store.Summary())
	}

	if runErr != nil {
		return fmt.Errorf("workflow run %s failed: %w", store.RunID(), runErr)
	}

	_, _ = fmt.Fprintf(w, "Run %s completed. Generated code is under %s.\n", store.RunID(), cfg.Output.Dir)
	return nil
}

// buildInvoker selects the agent invoker from config: a script replayer
// when agent.script_file is set, otherwise the external agent CLI.
func buildInvoker(cfg *config.Config) (agent.Invoker, error) {
	if cfg.Agent.ScriptFile != "" {
		invoker, err := agent.LoadScript(cfg.Agent.ScriptFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load agent script: %w", err)
		}
		return invoker, nil
	}

	if cfg.Agent.Command == "" {
		return nil, fmt.Errorf("no agent configured: set agent.command in %s or pass --agent-command", config.ProjectConfigPath())
	}

	return agent.NewCommandInvoker(cfg.Agent.Command, cfg.Agent.Args, cfg.Agent.Timeout, GetLogger()), nil
}

// writeSnapshotJSON renders the final snapshot as indented JSON.
func writeSnapshotJSON(w io.Writer, snap *domain.Snapshot) error {
	if snap == nil {
		_, _ = fmt.Fprintln(w, "null")
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// readRequestFromStdinIfDash supports `forge run -` reading the request
// from stdin.
func readRequestFromStdinIfDash(request string) (string, error) {
	if request != "-" {
		return request, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read request from stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
