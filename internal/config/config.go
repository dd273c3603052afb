package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/knot/internal/constants"
	"github.com/Paintersrp/knot/internal/pathutil"
)

// CommandTemplate wraps the editor invocation. Exec and Args may use the
// placeholders {file}, {vault}, {relative}, {filename}, {cmd}, {editor} and
// {args}.
type CommandTemplate struct {
	Exec string   `yaml:"exec,omitempty"`
	Args []string `yaml:"args,omitempty"`
	Wait *bool    `yaml:"wait,omitempty"`
}

// SyncConfig holds the object storage target for `knot sync`.
type SyncConfig struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	Concurrency     int    `yaml:"concurrency,omitempty"`
}

type Config struct {
	VaultDir       string          `yaml:"vaultdir"`
	Editor         string          `yaml:"editor"`
	EditorArgs     []string        `yaml:"editor_args,omitempty"`
	EditorTemplate CommandTemplate `yaml:"editor_template,omitempty"`
	Palette        []string        `yaml:"palette,omitempty"`
	ReadingWPM     int             `yaml:"reading_wpm"`
	FilterCommit   string          `yaml:"filter_commit"`
	DeleteMode     string          `yaml:"delete_mode"`
	Watch          bool            `yaml:"watch"`
	LogLevel       string          `yaml:"log_level"`
	Sync           SyncConfig      `yaml:"sync,omitempty"`
}

const defaultSyncConcurrency = 4

var validEditorNames = []string{"nvim", "vim", "nano", "helix", "code", "vscode", "custom"}

var ValidEditors = func() map[string]struct{} {
	editors := make(map[string]struct{}, len(validEditorNames))
	for _, name := range validEditorNames {
		editors[name] = struct{}{}
	}
	return editors
}()

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Default returns the configuration used when the file sets nothing.
func Default(home string) *Config {
	cfg := &Config{VaultDir: filepath.Join(home, constants.DefaultVaultDir)}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.ReadingWPM == 0 {
		c.ReadingWPM = constants.DefaultReadingWPM
	}
	if c.FilterCommit == "" {
		c.FilterCommit = constants.FilterCommitClear
	}
	if c.DeleteMode == "" {
		c.DeleteMode = constants.DeleteModeRemove
	}
	if c.LogLevel == "" {
		c.LogLevel = constants.DefaultLogLevel
	}
	if len(c.Palette) == 0 {
		c.Palette = append([]string(nil), constants.Palette[:]...)
	}
	if c.Sync.Concurrency == 0 {
		c.Sync.Concurrency = defaultSyncConcurrency
	}
}

// Load reads the config file below home. An empty file yields the defaults.
func Load(home string) (*Config, error) {
	data, err := os.ReadFile(GetConfigPath(home))
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if cfg.VaultDir == "" {
		cfg.VaultDir = filepath.Join(home, constants.DefaultVaultDir)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config file below home, creating the directory if needed.
func (c *Config) Save(home string) error {
	path := GetConfigPath(home)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyOverrides copies every key that v has explicitly set (bound flags,
// KNOT_* environment variables) over the file values, then validates again.
func (c *Config) ApplyOverrides(v *viper.Viper) error {
	fields := map[string]*string{
		"vaultdir":               &c.VaultDir,
		"editor":                 &c.Editor,
		"filter_commit":          &c.FilterCommit,
		"delete_mode":            &c.DeleteMode,
		"log_level":              &c.LogLevel,
		"sync.bucket":            &c.Sync.Bucket,
		"sync.prefix":            &c.Sync.Prefix,
		"sync.region":            &c.Sync.Region,
		"sync.endpoint":          &c.Sync.Endpoint,
		"sync.access_key_id":     &c.Sync.AccessKeyID,
		"sync.secret_access_key": &c.Sync.SecretAccessKey,
	}
	for key, dst := range fields {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	if v.IsSet("reading_wpm") {
		c.ReadingWPM = v.GetInt("reading_wpm")
	}
	if v.IsSet("sync.concurrency") {
		c.Sync.Concurrency = v.GetInt("sync.concurrency")
	}
	if v.IsSet("watch") {
		c.Watch = v.GetBool("watch")
	}

	c.applyDefaults()
	return c.Validate()
}

// VaultPath returns the absolute notes root with a leading "~" expanded.
func (c *Config) VaultPath() (string, error) {
	expanded, err := pathutil.ExpandHome(c.VaultDir)
	if err != nil {
		return "", fmt.Errorf("expand vault path: %w", err)
	}
	abs, err := filepath.Abs(pathutil.NormalizePath(expanded))
	if err != nil {
		return "", fmt.Errorf("resolve vault path: %w", err)
	}
	return abs, nil
}

// Validate checks every field that the TUI depends on. Sync settings are
// checked separately by SyncConfig.Validate when a sync is requested.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.VaultDir, validation.Required),
		validation.Field(&c.Editor, validation.By(func(value interface{}) error {
			editor, _ := value.(string)
			if editor == "" {
				return nil
			}
			return ValidateEditor(editor)
		})),
		validation.Field(&c.Palette,
			validation.Length(len(constants.Palette), len(constants.Palette)),
			validation.Each(validation.Match(hexColor).Error("must be a #RRGGBB color")),
		),
		validation.Field(&c.ReadingWPM, validation.Min(1)),
		validation.Field(&c.FilterCommit, validation.In(constants.FilterCommitClear, constants.FilterCommitRetain)),
		validation.Field(&c.DeleteMode, validation.In(constants.DeleteModeRemove, constants.DeleteModeTrash)),
		validation.Field(&c.LogLevel, validation.By(func(value interface{}) error {
			level, _ := value.(string)
			_, err := logrus.ParseLevel(level)
			return err
		})),
	)
	if err != nil {
		return err
	}

	if c.Editor == "custom" && strings.TrimSpace(c.EditorTemplate.Exec) == "" {
		return errors.New("editor_template.exec: required when editor is 'custom'")
	}
	return nil
}

// Validate checks that enough is configured to reach a bucket.
func (s SyncConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Bucket, validation.Required),
		validation.Field(&s.Region, validation.When(s.Endpoint == "", validation.Required)),
		validation.Field(&s.SecretAccessKey, validation.When(s.AccessKeyID != "", validation.Required)),
		validation.Field(&s.Concurrency, validation.Min(1), validation.Max(64)),
	)
}

func ValidateEditor(editor string) error {
	if _, valid := ValidEditors[editor]; valid {
		return nil
	}

	return fmt.Errorf(
		"invalid editor: %q. Please choose from %s.",
		editor,
		validEditorList(),
	)
}

func validEditorList() string {
	quoted := make([]string, len(validEditorNames))
	for i, name := range validEditorNames {
		quoted[i] = fmt.Sprintf("'%s'", name)
	}

	if len(quoted) == 1 {
		return quoted[0]
	}

	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}

// EditorNames lists the accepted editor values in display order.
func EditorNames() []string {
	return append([]string(nil), validEditorNames...)
}
