package state

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/Paintersrp/knot/internal/config"
	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/editor"
	"github.com/Paintersrp/knot/internal/storage"
	"github.com/Paintersrp/knot/internal/watcher"
)

// State is built once per invocation and shared by every command.
type State struct {
	Config   *config.Config
	Home     string
	Vault    string
	Store    storage.Store
	Launcher editor.Launcher
	Logger   *logrus.Logger
	Watcher  *watcher.VaultWatcher

	logFile io.Closer
}

// NewState loads configuration for the current user. Flags bound to the
// global viper instance and KNOT_* variables override the config file.
func NewState() (*State, error) {
	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStateFrom(home, viper.GetViper())
}

func NewStateFrom(home string, v *viper.Viper) (*State, error) {
	cfg, err := LoadConfig(home, v)
	if err != nil {
		return nil, err
	}

	vault, err := cfg.VaultPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(vault, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create notes root %s: %w", vault, err)
	}

	logger, logFile, err := newLogger(home, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var opts []storage.Option
	if cfg.DeleteMode == constants.DeleteModeTrash {
		opts = append(opts, storage.WithTrash())
	}
	store, err := storage.NewFS(vault, opts...)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("cannot open notes root: %w", err)
	}

	s := &State{
		Config:   cfg,
		Home:     home,
		Vault:    store.Root(),
		Store:    store,
		Launcher: editor.NewCommandLauncher(cfg, store.Root()),
		Logger:   logger,
		logFile:  logFile,
	}

	if cfg.Watch {
		w, err := watcher.New(s.Vault)
		if err != nil {
			// The TUI still works without live reload.
			logger.WithError(err).Warn("vault watcher disabled")
		} else {
			s.Watcher = w
		}
	}

	logger.WithFields(logrus.Fields{
		"vault":  s.Vault,
		"editor": cfg.Editor,
		"delete": cfg.DeleteMode,
		"watch":  s.Watcher != nil,
	}).Debug("state initialised")

	return s, nil
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

// LoadConfig reads ~/.knot/.env, binds KNOT_* variables, makes sure the
// config file exists and applies overrides from v.
func LoadConfig(home string, v *viper.Viper) (*config.Config, error) {
	envPath := filepath.Join(config.GetConfigDir(home), constants.EnvFile)
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := config.EnsureConfigExists(home); err != nil {
		return nil, err
	}

	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyOverrides(v); err != nil {
		return nil, fmt.Errorf("invalid override: %w", err)
	}
	return cfg, nil
}

func newLogger(home, level string) (*logrus.Logger, io.Closer, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, err
	}

	dir := config.GetConfigDir(home)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, constants.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(f)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return logger, f, nil
}

// Close releases the watcher and the log file.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Watcher != nil {
		if err := s.Watcher.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Watcher = nil
	}
	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			errs = append(errs, err)
		}
		s.logFile = nil
	}

	return errors.Join(errs...)
}
