// Package config provides configuration management for forge with layered
// precedence.
//
// Configuration sources are loaded in the following order (highest
// precedence first):
//  1. CLI flags (passed via LoadWithOverrides)
//  2. Environment variables (FORGE_* prefix)
//  3. Project config (.forge/config.yaml)
//  4. Global config (~/.forge/config.yaml)
//  5. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// This package may import internal/constants and internal/errors, but MUST
// NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for forge.
type Config struct {
	// Agent contains settings for external agent invocation.
	Agent AgentConfig `yaml:"agent" mapstructure:"agent"`

	// Output contains settings for where generated code is materialized.
	Output OutputConfig `yaml:"output" mapstructure:"output"`

	// Workflow contains settings for the orchestration loop.
	Workflow WorkflowConfig `yaml:"workflow" mapstructure:"workflow"`
}

// AgentConfig controls how forge calls the external LLM agent.
type AgentConfig struct {
	// Command is the CLI executed per agent call. The prompt goes to its
	// stdin; the role is appended to Args as "--role <name>".
	// Default: "" (must be set, unless ScriptFile is used)
	Command string `yaml:"command" mapstructure:"command"`

	// Args are passed to Command before the role flag.
	Args []string `yaml:"args" mapstructure:"args"`

	// ScriptFile replays canned responses from a YAML file instead of
	// calling a live agent. Takes precedence over Command when set.
	ScriptFile string `yaml:"script_file" mapstructure:"script_file"`

	// Timeout is the maximum duration for one agent call.
	// Default: 10 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// OutputConfig controls the materialized output tree.
type OutputConfig struct {
	// Dir is the base directory for generated code.
	// Default: "generated"
	Dir string `yaml:"dir" mapstructure:"dir"`

	// BackendSubdir holds backend artifacts under Dir.
	// Default: "backend"
	BackendSubdir string `yaml:"backend_subdir" mapstructure:"backend_subdir"`

	// FrontendSubdir holds frontend artifacts under Dir.
	// Default: "frontend"
	FrontendSubdir string `yaml:"frontend_subdir" mapstructure:"frontend_subdir"`
}

// WorkflowConfig controls the orchestration loop.
type WorkflowConfig struct {
	// MaxRetries bounds re-invocations of a failing phase.
	// Default: 2, valid range: 0-10
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`

	// Persist enables snapshot persistence under ~/.forge/runs.
	// Default: true
	Persist bool `yaml:"persist" mapstructure:"persist"`
}
