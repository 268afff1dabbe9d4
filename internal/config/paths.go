package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/forgeworks/forge/internal/constants"
	"github.com/forgeworks/forge/internal/errors"
)

// GlobalConfigDir returns the path to the global forge configuration
// directory. FORGE_HOME overrides the default of ~/.forge.
func GlobalConfigDir() (string, error) {
	if forgeHome := os.Getenv("FORGE_HOME"); forgeHome != "" {
		return forgeHome, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get home directory")
	}
	return filepath.Join(home, constants.ForgeHome), nil
}

// ProjectConfigDir returns the relative path to the project configuration
// directory, always .forge relative to the project root.
func ProjectConfigDir() string {
	return constants.ConfigDirName
}

// GlobalConfigPath returns the full path to the global configuration file,
// typically ~/.forge/config.yaml.
func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", fmt.Errorf("get global config path: %w", err)
	}
	return filepath.Join(dir, constants.ConfigFileName), nil
}

// ProjectConfigPath returns the relative path to the project configuration
// file, always .forge/config.yaml relative to the project root.
func ProjectConfigPath() string {
	return filepath.Join(ProjectConfigDir(), constants.ConfigFileName)
}
