package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Paintersrp/knot/internal/constants"
)

func GetConfigDir(homeDir string) string {
	return filepath.Join(homeDir, constants.ConfigDir)
}

func GetConfigPath(homeDir string) string {
	return filepath.Join(
		homeDir,
		constants.ConfigDir,
		constants.ConfigFile+"."+constants.ConfigFileType,
	)
}

// EnsureConfigExists creates the config directory and a default config file
// when missing, then checks that the file on disk loads.
func EnsureConfigExists(homeDir string) error {
	configPath := GetConfigPath(homeDir)

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := Default(homeDir).Save(homeDir); err != nil {
			return &ConfigInitError{msg: "could not create config file", err: err}
		}
	} else if err != nil {
		return fmt.Errorf("failed to check config file existence: %w", err)
	}

	if _, err := Load(homeDir); err != nil {
		return &ConfigInitError{
			msg: fmt.Sprintf("invalid config at %s (run `%s init` to rewrite it)", configPath, constants.AppName),
			err: err,
		}
	}
	return nil
}
