package config

import (
	"github.com/spf13/viper"

	"github.com/forgeworks/forge/internal/constants"
)

// DefaultConfig returns a new Config with the built-in defaults. These form
// the base layer that config files, environment variables, and CLI flags
// override.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			// Command: empty means the operator must configure one.
			// Keeping the agent CLI out of defaults avoids silently
			// shelling out to a binary the user never chose.
			Command: "",

			// Timeout: generation calls routinely take minutes.
			Timeout: constants.DefaultAgentTimeout,
		},
		Output: OutputConfig{
			Dir:            constants.GeneratedDir,
			BackendSubdir:  constants.BackendSubdir,
			FrontendSubdir: constants.FrontendSubdir,
		},
		Workflow: WorkflowConfig{
			MaxRetries: constants.DefaultMaxRetries,
			Persist:    true,
		},
	}
}

// setDefaults configures all default values on the Viper instance.
// Keys must match the YAML tag names exactly for proper mapping.
func setDefaults(v *viper.Viper) {
	// Agent defaults
	v.SetDefault("agent.command", "")
	v.SetDefault("agent.args", []string{})
	v.SetDefault("agent.script_file", "")
	v.SetDefault("agent.timeout", constants.DefaultAgentTimeout.String())

	// Output defaults
	v.SetDefault("output.dir", constants.GeneratedDir)
	v.SetDefault("output.backend_subdir", constants.BackendSubdir)
	v.SetDefault("output.frontend_subdir", constants.FrontendSubdir)

	// Workflow defaults
	v.SetDefault("workflow.max_retries", constants.DefaultMaxRetries)
	v.SetDefault("workflow.persist", true)
}
