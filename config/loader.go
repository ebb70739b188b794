package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "fmeakg.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/fmeakg"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
)

// Environment variables that override file configuration.
const (
	EnvOntologyPath = "FMEAKG_ONTOLOGY_PATH"
	EnvNamespace    = "FMEAKG_NAMESPACE"
	EnvHTTPAddr     = "FMEAKG_HTTP_ADDR"
	EnvNATSURL      = "FMEAKG_NATS_URL"
	EnvLogLevel     = "FMEAKG_LOG_LEVEL"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger    *slog.Logger
	lookupEnv func(string) (string, bool)
	workDir   string
	homeDir   string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, lookupEnv: os.LookupEnv}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/fmeakg/config.yaml)
// 3. Project config (fmeakg.yaml in current or parent directories)
// 4. Environment variables
//
// A non-empty explicit path replaces the user and project layers.
func (l *Loader) Load(explicit string) (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	if explicit != "" {
		fileConfig, err := LoadFromFile(explicit)
		if err != nil {
			return nil, err
		}
		l.logger.Debug("Loaded config", slog.String("path", explicit))
		config.Merge(fileConfig)
	} else {
		l.loadLayers(config)
	}

	l.applyEnv(config)

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) loadLayers(config *Config) {
	// Load user config
	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}
}

// applyEnv overrides config values from environment variables
func (l *Loader) applyEnv(config *Config) {
	override := func(name string, dst *string) {
		if v, ok := l.lookupEnv(name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
			l.logger.Debug("Config overridden from environment", slog.String("var", name))
		}
	}

	override(EnvOntologyPath, &config.Ontology.Path)
	override(EnvNamespace, &config.Ontology.Namespace)
	override(EnvHTTPAddr, &config.HTTP.Addr)
	override(EnvLogLevel, &config.Log.Level)
	if v, ok := l.lookupEnv(EnvNATSURL); ok && v != "" {
		config.NATS.URL = v
		config.NATS.Enabled = true
	}
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() (string, error) {
	userConfigPath := l.userConfigPath()

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return userConfigPath, nil // Already exists
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return "", err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return userConfigPath, nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	home := l.homeDir
	if home == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return ""
		}
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for fmeakg.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	dir := l.workDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = cwd
	}

	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
