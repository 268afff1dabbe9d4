// Package cli provides the command-line interface for forge.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgeworks/forge/internal/artifact"
	"github.com/forgeworks/forge/internal/clock"
	"github.com/forgeworks/forge/internal/domain"
)

// ExtractFlags holds flags specific to the extract command.
type ExtractFlags struct {
	// Input is the file containing the agent response text ("-" for stdin).
	Input string
	// Frontend enables the frontend extraction fallbacks.
	Frontend bool
	// OutputDir materializes the artifacts under this directory when set.
	OutputDir string
	// Append switches materialization to append mode.
	Append bool
}

// AddExtractCommand adds the extract command to the root command.
func AddExtractCommand(parent *cobra.Command) {
	flags := &ExtractFlags{}

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract code artifacts from agent response text",
		Long: `Parse tagged code artifacts out of an agent response and either list
them or write them to disk.

By default only <codeartifact> tags are parsed. With --frontend, the
frontend fallbacks also apply: <file path="..."> tags and fenced code
blocks with a filename comment on the first line.

Examples:
  forge extract --input response.txt
  cat response.txt | forge extract --input -
  forge extract --input response.txt --frontend --out generated/frontend`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExtract(cmd, flags, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&flags.Input, "input", "i", "-", "response text file (- for stdin)")
	cmd.Flags().BoolVar(&flags.Frontend, "frontend", false, "apply frontend extraction fallbacks")
	cmd.Flags().StringVar(&flags.OutputDir, "out", "", "materialize artifacts under this directory")
	cmd.Flags().BoolVar(&flags.Append, "append", false, "append to existing files instead of overwriting")

	parent.AddCommand(cmd)
}

// runExtract executes the extract command.
func runExtract(cmd *cobra.Command, flags *ExtractFlags, w io.Writer) error {
	text, err := readInput(flags.Input)
	if err != nil {
		return err
	}

	var artifacts []domain.CodeArtifact
	if flags.Frontend {
		artifacts = artifact.ExtractFrontend(text)
	} else {
		artifacts = artifact.Extract(text)
	}

	if flags.OutputDir != "" {
		return materializeExtracted(w, artifacts, flags)
	}

	output := cmd.Flag("output").Value.String()
	if output == OutputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(artifacts)
	}

	if len(artifacts) == 0 {
		_, _ = fmt.Fprintln(w, "No artifacts found.")
		return nil
	}
	for _, a := range artifacts {
		_, _ = fmt.Fprintf(w, "%s (%s, %s, %d bytes)\n", a.Filename, a.Type, a.Complexity, len(a.Content))
	}
	return nil
}

// materializeExtracted writes the artifacts to disk and reports per-file
// results. A partial failure is reported but does not abort the rest.
func materializeExtracted(w io.Writer, artifacts []domain.CodeArtifact, flags *ExtractFlags) error {
	mode := artifact.ModeUpdate
	if flags.Append {
		mode = artifact.ModeAppend
	}

	m := artifact.NewMaterializer(clock.RealClock{})
	result := m.Materialize(artifacts, flags.OutputDir, mode)

	for _, fr := range result.Files {
		if fr.Err != "" {
			_, _ = fmt.Fprintf(w, "FAILED %s: %s\n", fr.Filename, fr.Err)
			continue
		}
		_, _ = fmt.Fprintf(w, "wrote %s\n", fr.Path)
	}

	if result.Failed() {
		return fmt.Errorf("some artifacts could not be written")
	}
	return nil
}

// readInput reads the response text from a file or stdin.
func readInput(input string) (string, error) {
	if input == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(input) // #nosec G304 -- user-supplied input path
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", input, err)
	}
	return string(data), nil
}
