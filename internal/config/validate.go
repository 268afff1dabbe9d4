package config

import (
	"github.com/forgeworks/forge/internal/errors"
)

// Validate checks the configuration for invalid or inconsistent values.
// It returns an error describing the first validation failure found.
//
// Validation rules:
//   - Agent timeout must be positive
//   - Output dir and subdirs must not be empty
//   - Workflow max retries must be between 0 and 10
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateAgentConfig(&cfg.Agent); err != nil {
		return err
	}

	if err := validateOutputConfig(&cfg.Output); err != nil {
		return err
	}

	if err := validateWorkflowConfig(&cfg.Workflow); err != nil {
		return err
	}

	return nil
}

// validateAgentConfig checks agent-specific configuration values.
func validateAgentConfig(cfg *AgentConfig) error {
	if cfg.Timeout <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidAgent,
			"agent.timeout must be positive, got %s", cfg.Timeout)
	}

	return nil
}

// validateOutputConfig checks output-specific configuration values.
func validateOutputConfig(cfg *OutputConfig) error {
	if cfg.Dir == "" {
		return errors.Wrap(errors.ErrConfigInvalidOutput,
			"output.dir must not be empty")
	}

	if cfg.BackendSubdir == "" {
		return errors.Wrap(errors.ErrConfigInvalidOutput,
			"output.backend_subdir must not be empty")
	}

	if cfg.FrontendSubdir == "" {
		return errors.Wrap(errors.ErrConfigInvalidOutput,
			"output.frontend_subdir must not be empty")
	}

	return nil
}

// validateWorkflowConfig checks workflow-specific configuration values.
func validateWorkflowConfig(cfg *WorkflowConfig) error {
	if cfg.MaxRetries < 0 || cfg.MaxRetries > 10 {
		return errors.Wrapf(errors.ErrConfigInvalidWorkflow,
			"workflow.max_retries must be between 0 and 10, got %d", cfg.MaxRetries)
	}

	return nil
}
