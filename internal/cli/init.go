// Package cli provides the command-line interface for forge.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgeworks/forge/internal/config"
)

// AddInitCommand adds the init command to the root command.
func AddInitCommand(parent *cobra.Command) {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize forge configuration in the current directory",
		Long: `Create a starter .forge/config.yaml in the current directory.

The generated file documents the agent command, output directory, and
workflow settings. Edit it to point forge at your agent CLI, or set
agent.script_file to replay canned responses.

Examples:
  forge init            # Create .forge/config.yaml
  forge init --force    # Overwrite an existing config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.OutOrStdout(), force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing configuration")
	parent.AddCommand(cmd)
}

// runInit writes the starter project config, refusing to overwrite an
// existing file unless forced.
func runInit(w io.Writer, force bool) error {
	path := config.ProjectConfigPath()
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	written, err := config.WriteProjectConfig(".", config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	_, _ = fmt.Fprintf(w, "Created %s\n", written)
	_, _ = fmt.Fprintln(w, "Edit agent.command to point forge at your agent CLI.")
	return nil
}
