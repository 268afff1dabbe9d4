// Package cli provides the command-line interface for forge.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/domain"
	"github.com/forgeworks/forge/internal/state"
	"github.com/forgeworks/forge/internal/tui"
)

// RunLister defines the interface for listing and fetching persisted runs.
// Used for dependency injection in tests.
type RunLister interface {
	List(ctx context.Context) ([]*domain.Snapshot, error)
	Get(ctx context.Context, runID string) (*domain.Snapshot, error)
}

// AddStatusCommand adds the status command to the root command.
func AddStatusCommand(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show persisted workflow runs",
		Long: `Display persisted workflow runs and their state.

Without arguments, lists all runs sorted newest first:
  • RUN     - Run identifier
  • PHASE   - Current workflow phase
  • STATUS  - Workflow status with icon
  • REV     - API spec revision
  • SAVED   - When the snapshot was last saved

With a run ID, prints the full shared-state summary for that run.

Examples:
  forge status                        # List all runs
  forge status run-20250601-120000    # Show one run in detail
  forge status --output json          # List runs as JSON`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd, args, os.Stdout)
		},
	}
	parent.AddCommand(cmd)
}

// runStatus executes the status command with production dependencies.
func runStatus(ctx context.Context, cmd *cobra.Command, args []string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	output := cmd.Flag("output").Value.String()

	tui.CheckNoColor()

	runStore, err := state.NewFileStore("")
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	if len(args) == 1 {
		return showRun(ctx, w, output, args[0], runStore)
	}
	return listRuns(ctx, w, output, runStore)
}

// listRuns renders all persisted runs as a table or JSON array.
func listRuns(ctx context.Context, w io.Writer, output string, store RunLister) error {
	snaps, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if output == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	if len(snaps) == 0 {
		_, _ = fmt.Fprintln(w, "No runs found. Start one with: forge run \"<request>\"")
		return nil
	}

	styles := tui.NewTableStyles()
	table := tui.NewTable(w, []tui.TableColumn{
		{Name: "RUN", Width: 24, Align: tui.AlignLeft},
		{Name: "PHASE", Width: 20, Align: tui.AlignLeft},
		{Name: "STATUS", Width: 18, Align: tui.AlignLeft},
		{Name: "REV", Width: 8, Align: tui.AlignLeft},
		{Name: "SAVED", Width: 20, Align: tui.AlignLeft},
	})

	table.WriteHeader()
	for _, snap := range snaps {
		phase := constants.PhasePlanning
		status := constants.StatusInitialized
		if snap.Workflow != nil {
			phase = snap.Workflow.CurrentPhase
			status = snap.Workflow.Status
		}

		plain := tui.StatusIcon(status) + " " + status.String()
		styled := plain
		if color, ok := styles.StatusColors[status]; ok {
			styled = styles.Cell.Foreground(color).Render(plain)
		}

		table.WriteStyledRow([]string{
			snap.RunID,
			phase.String(),
			plain,
			specRevisionOf(snap),
			snap.SavedAt.Format("2006-01-02 15:04:05"),
		}, 2, styled, plain)
	}

	return nil
}

// showRun prints one run's full shared-state summary.
func showRun(ctx context.Context, w io.Writer, output, runID string, store RunLister) error {
	snap, err := store.Get(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	if output == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	st := state.New(snap.RunID, clock.RealClock{})
	st.Restore(snap)
	_, _ = fmt.Fprintln(w, st.Summary())
	return nil
}

// specRevisionOf reads the latest spec revision out of a snapshot, or "-"
// when no spec has been written.
func specRevisionOf(snap *domain.Snapshot) string {
	if snap.APISpec == nil {
		return "-"
	}
	if rev, ok := snap.APISpec["revision"].(string); ok && rev != "" {
		return rev
	}
	return constants.InitialRevision
}
