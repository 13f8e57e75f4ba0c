// provecase - Proof case test driver
// Author: Ariel Frischer
// Source: https://github.com/ariel-frischer/provecase

// Package config provides hierarchical configuration management for provecase using koanf.
// Configuration is loaded with priority: environment variables > project config (.provecase/config.yml)
// > user config (~/.config/provecase/config.yml) > defaults. A legacy JSON project config
// (.provecase/config.json) is read when no YAML project config exists.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/provecase/internal/notify"
	"github.com/ariel-frischer/provecase/internal/testsupport"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "PROVECASE_"

// Configuration represents the provecase CLI configuration
type Configuration struct {
	// GnatproveCmd is the gnatprove command prefix, split shell-style.
	// Can be set via PROVECASE_GNATPROVE_CMD env var.
	GnatproveCmd string `koanf:"gnatprove_cmd" validate:"required"`
	// ProjectFile is the GNAT project passed to gnatprove with -P.
	ProjectFile string `koanf:"project_file" validate:"required"`
	// WorkDir is the directory gnatprove runs in (empty = current directory).
	WorkDir string `koanf:"work_dir"`
	// Timeout in seconds for a single gnatprove run (0 = no timeout).
	Timeout int `koanf:"timeout" validate:"min=0,max=86400"`
	// CaptureOutput keeps gnatprove output off the terminal. The last stderr
	// line of a failed run is shown in the error instead.
	CaptureOutput bool `koanf:"capture_output"`

	StateDir string `koanf:"state_dir"`
	// MaxHistoryEntries sets the maximum number of run history entries to retain.
	MaxHistoryEntries int `koanf:"max_history_entries" validate:"min=0"`

	// Notifications configures desktop notifications when a case finishes.
	Notifications notify.NotificationConfig `koanf:"notifications"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .provecase/config.yml)
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (default: XDG config dir)
	UserConfigPath string
	// WarningWriter receives legacy config warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses legacy config warnings
	SkipWarnings bool
}

// LoadWithOptions loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k, opts.UserConfigPath); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config if present.
func loadUserConfig(k *koanf.Koanf, customPath string) error {
	path := customPath
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user YAML config: %w", err)
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// Supports custom path override (for testing).
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	projectYAMLPath := ProjectConfigPath()
	if customPath != "" {
		projectYAMLPath = customPath
	}
	legacyProjectPath := LegacyProjectConfigPath()
	if customPath != "" {
		legacyProjectPath = strings.TrimSuffix(customPath, filepath.Ext(customPath)) + ".json"
	}

	if fileExists(projectYAMLPath) {
		if err := loadYAMLConfig(k, projectYAMLPath, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		return nil
	}
	if fileExists(legacyProjectPath) {
		if err := loadLegacyJSONConfig(k, legacyProjectPath, warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := CheckYAMLFile(path); err != nil {
		return fmt.Errorf("checking %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about it
func loadLegacyJSONConfig(k *koanf.Koanf, path string, warningWriter io.Writer, skipWarnings bool) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy project config %s: %w", path, err)
	}
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Move its settings to %s.\n\n", ProjectConfigPath())
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := CheckValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.WorkDir = expandHomePath(cfg.WorkDir)

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// nestedEnvSections are config sections reachable as PROVECASE_<SECTION>_<KEY>.
var nestedEnvSections = []string{"notifications"}

// envTransform converts environment variable names to config keys
// Example: PROVECASE_GNATPROVE_CMD -> gnatprove_cmd
// Example: PROVECASE_NOTIFICATIONS_ENABLED -> notifications.enabled
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range nestedEnvSections {
		if rest, ok := strings.CutPrefix(key, section+"_"); ok {
			return section + "." + rest
		}
	}
	return key
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Configuration) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ProverOptions returns gnatprove options derived from the configuration.
// Output writers and logger are left for the caller to set.
func (c *Configuration) ProverOptions() testsupport.Options {
	return testsupport.Options{
		Command:     c.GnatproveCmd,
		ProjectFile: c.ProjectFile,
		WorkDir:     c.WorkDir,
		Timeout:     c.TimeoutDuration(),
	}
}
