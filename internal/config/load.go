package config

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/errors"
)

// newViperInstance creates a Viper instance with standard forge
// configuration: defaults, FORGE_ env prefix, and key replacer.
func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// isConfigNotFoundError reports whether err is viper's missing-config-file
// error.
func isConfigNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var configNotFoundErr viper.ConfigFileNotFoundError
	return stderrors.As(err, &configNotFoundErr)
}

// unmarshalAndValidate unmarshals viper config into Config and validates it.
func unmarshalAndValidate(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

// Load reads configuration from all available sources with proper
// precedence. Missing config files are expected and not an error; only
// actual configuration problems are reported.
//
// The context parameter carries the logger; config file reads are fast
// local I/O and are not cancellable.
func Load(ctx context.Context) (*Config, error) {
	v := newViperInstance()

	// Global config provides user-wide defaults, overridden per-project.
	if err := loadGlobalConfig(v); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Dur("agent.timeout", cfg.Agent.Timeout).
		Int("workflow.max_retries", cfg.Workflow.MaxRetries).
		Str("output.dir", cfg.Output.Dir).
		Msg("configuration loaded and unmarshaled")

	if err := Validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &cfg, nil
}

// loadGlobalConfig attempts to load ~/.forge/config.yaml. A missing file or
// undeterminable home directory is skipped silently.
func loadGlobalConfig(v *viper.Viper) error {
	globalConfigPath, ok := getGlobalConfigPathIfExists()
	if !ok {
		return nil
	}

	v.SetConfigFile(globalConfigPath)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read global config file")
	}
	return nil
}

// getGlobalConfigPathIfExists returns the global config path if it exists.
func getGlobalConfigPathIfExists() (string, bool) {
	globalPath, err := GlobalConfigPath()
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(globalPath); err != nil {
		return "", false
	}
	return globalPath, true
}

// loadProjectConfig attempts to load .forge/config.yaml from the working
// directory. A missing file is skipped silently.
func loadProjectConfig(v *viper.Viper) error {
	projectConfigPath := ProjectConfigPath()
	if !fileExists(projectConfigPath) {
		return nil
	}

	v.SetConfigFile(projectConfigPath)
	if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) {
		return errors.Wrap(err, "failed to read project config file")
	}
	return nil
}

// fileExists returns true if the file at path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadWithOverrides loads configuration and applies CLI flag overrides,
// which have the highest precedence. Only non-zero override values are
// applied, allowing partial overrides.
func LoadWithOverrides(ctx context.Context, overrides *Config) (*Config, error) {
	cfg, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		applyOverrides(cfg, overrides)
	}

	if err := Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration after overrides")
	}

	return cfg, nil
}

// LoadFromPaths loads configuration from specific file paths for testing.
// Either path can be empty to skip that level; projectConfigPath has the
// higher priority.
func LoadFromPaths(_ context.Context, projectConfigPath, globalConfigPath string) (*Config, error) {
	v := newViperInstance()

	if globalConfigPath != "" {
		v.SetConfigFile(globalConfigPath)
		if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read global config: %s", globalConfigPath)
		}
	}

	if projectConfigPath != "" {
		v.SetConfigFile(projectConfigPath)
		if err := v.MergeInConfig(); err != nil && !isConfigNotFoundError(err) && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to read project config: %s", projectConfigPath)
		}
	}

	return unmarshalAndValidate(v)
}

// applyOverrides merges non-zero override values into the config.
//
// Boolean fields (Workflow.Persist) cannot be overridden to false here
// because Go's zero value for bool is false. CLI implementations handle
// boolean flags separately via Flags().Changed.
func applyOverrides(cfg, overrides *Config) {
	if overrides.Agent.Command != "" {
		cfg.Agent.Command = overrides.Agent.Command
	}
	if len(overrides.Agent.Args) > 0 {
		cfg.Agent.Args = overrides.Agent.Args
	}
	if overrides.Agent.ScriptFile != "" {
		cfg.Agent.ScriptFile = overrides.Agent.ScriptFile
	}
	if overrides.Agent.Timeout != 0 {
		cfg.Agent.Timeout = overrides.Agent.Timeout
	}

	if overrides.Output.Dir != "" {
		cfg.Output.Dir = overrides.Output.Dir
	}
	if overrides.Output.BackendSubdir != "" {
		cfg.Output.BackendSubdir = overrides.Output.BackendSubdir
	}
	if overrides.Output.FrontendSubdir != "" {
		cfg.Output.FrontendSubdir = overrides.Output.FrontendSubdir
	}

	if overrides.Workflow.MaxRetries != 0 {
		cfg.Workflow.MaxRetries = overrides.Workflow.MaxRetries
	}
}

// viperDecoderOption configures mapstructure to convert duration strings
// like "10m" into time.Duration.
func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// WriteProjectConfig writes a starter project config file at
// .forge/config.yaml under dir, for `forge init`.
func WriteProjectConfig(dir string, cfg *Config) (string, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	configDir := filepath.Join(dir, ProjectConfigDir())
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return "", errors.Wrap(err, "failed to create config directory")
	}

	path := filepath.Join(configDir, constants.ConfigFileName)
	content := starterConfigYAML(cfg)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return "", errors.Wrap(err, "failed to write config file")
	}
	return path, nil
}

// starterConfigYAML renders a commented starter config.
func starterConfigYAML(cfg *Config) string {
	var b strings.Builder
	b.WriteString("# forge configuration\n")
	b.WriteString("agent:\n")
	b.WriteString("  # CLI executed per agent call; the prompt arrives on stdin.\n")
	b.WriteString("  command: \"" + cfg.Agent.Command + "\"\n")
	b.WriteString("  timeout: " + cfg.Agent.Timeout.String() + "\n")
	b.WriteString("output:\n")
	b.WriteString("  dir: " + cfg.Output.Dir + "\n")
	b.WriteString("  backend_subdir: " + cfg.Output.BackendSubdir + "\n")
	b.WriteString("  frontend_subdir: " + cfg.Output.FrontendSubdir + "\n")
	b.WriteString("workflow:\n")
	b.WriteString("  max_retries: " + strconv.Itoa(cfg.Workflow.MaxRetries) + "\n")
	b.WriteString("  persist: true\n")
	return b.String()
}
