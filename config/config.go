// Package config provides configuration loading and management for fmeakg.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/fmeakg/graph"
	"github.com/c360studio/fmeakg/ontology"
	"github.com/c360studio/fmeakg/vocabulary/fmea"
)

// Config represents the complete fmeakg configuration
type Config struct {
	Ontology OntologyConfig `yaml:"ontology"`
	Ingest   IngestConfig   `yaml:"ingest"`
	HTTP     HTTPConfig     `yaml:"http"`
	NATS     NATSConfig     `yaml:"nats"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

// OntologyConfig locates the persisted graph and its vocabulary
type OntologyConfig struct {
	// Namespace is the ontology base IRI
	Namespace string `yaml:"namespace"`
	// ClassPrefix is prepended to class local names (default: class_)
	ClassPrefix string `yaml:"class_prefix"`
	// ObjectPropertyPrefix is prepended to object property local names (default: op_)
	ObjectPropertyPrefix string `yaml:"object_property_prefix"`
	// DataPropertyPrefix is prepended to data property local names (default: dp_)
	DataPropertyPrefix string `yaml:"data_property_prefix"`
	// Path is the persisted graph (.ttl or .nt); relative paths resolve
	// against the directory of the config file that set them
	Path string `yaml:"path"`
	// DefaultMonitoringAction is the no-op action never recommended: a local
	// name in the namespace (default: checkParameters) or a full IRI
	DefaultMonitoringAction string `yaml:"default_monitoring_action"`
}

// IngestConfig configures failure event ingestion
type IngestConfig struct {
	// ValidateReferences rejects links to definitions missing from the graph
	ValidateReferences bool `yaml:"validate_references"`
}

// HTTPConfig configures the HTTP API
type HTTPConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`
	// Prefix is the URL prefix of the FMEA endpoints
	Prefix string `yaml:"prefix"`
}

// NATSConfig configures the NATS responder
type NATSConfig struct {
	// Enabled starts the NATS responder in serve mode
	Enabled bool `yaml:"enabled"`
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Embedded starts an in-process NATS server instead of connecting to URL
	Embedded bool `yaml:"embedded"`
	// SubjectPrefix is the first subject token (default: fmea)
	SubjectPrefix string `yaml:"subject_prefix"`
	// Stream is the JetStream stream storing ingestion events; empty
	// publishes them on core NATS only
	Stream string `yaml:"stream"`
}

// WatchConfig configures drift detection on the persisted graph
type WatchConfig struct {
	// Enabled starts the drift watcher in serve mode
	Enabled bool `yaml:"enabled"`
	// Debounce is how long to wait for more changes before checking
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ontology: OntologyConfig{
			Namespace:               fmea.DefaultNamespace,
			ClassPrefix:             fmea.ClassPrefix,
			ObjectPropertyPrefix:    fmea.ObjectPropertyPrefix,
			DataPropertyPrefix:      fmea.DataPropertyPrefix,
			Path:                    "FMEA_KG.ttl",
			DefaultMonitoringAction: fmea.DefaultMonitoringAction,
		},
		HTTP: HTTPConfig{
			Addr:   ":8080",
			Prefix: "/api/fmea/",
		},
		NATS: NATSConfig{
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "fmea",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Ontology.Namespace == "" {
		return fmt.Errorf("ontology.namespace is required")
	}
	if err := c.Namespace().Validate(); err != nil {
		return fmt.Errorf("ontology.namespace: %w", err)
	}
	if c.Ontology.Path == "" {
		return fmt.Errorf("ontology.path is required")
	}
	if _, err := c.DefaultActionIRI(); err != nil {
		return fmt.Errorf("ontology.default_monitoring_action: %w", err)
	}
	if !strings.HasPrefix(c.HTTP.Prefix, "/") {
		return fmt.Errorf("http.prefix must start with /")
	}
	if c.NATS.Enabled && !c.NATS.Embedded && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when nats is enabled")
	}
	if c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("nats.subject_prefix is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Namespace returns the configured ontology namespace
func (c *Config) Namespace() ontology.Namespace {
	return ontology.Namespace{
		Base:                 c.Ontology.Namespace,
		ClassPrefix:          c.Ontology.ClassPrefix,
		ObjectPropertyPrefix: c.Ontology.ObjectPropertyPrefix,
		DataPropertyPrefix:   c.Ontology.DataPropertyPrefix,
	}
}

// DefaultActionIRI returns the excluded monitoring action, or a zero IRI if
// none is configured. A local name is resolved against the configured
// namespace; a value with a scheme is taken as a full IRI.
func (c *Config) DefaultActionIRI() (graph.IRI, error) {
	action := c.Ontology.DefaultMonitoringAction
	if action == "" {
		return graph.IRI{}, nil
	}
	if strings.Contains(action, ":") {
		return graph.NewIRI(action)
	}
	return c.Namespace().Individual(action)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if p := config.Ontology.Path; p != "" && !filepath.IsAbs(p) {
		config.Ontology.Path = filepath.Join(filepath.Dir(path), p)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Ontology
	mergeString(&c.Ontology.Namespace, other.Ontology.Namespace)
	mergeString(&c.Ontology.ClassPrefix, other.Ontology.ClassPrefix)
	mergeString(&c.Ontology.ObjectPropertyPrefix, other.Ontology.ObjectPropertyPrefix)
	mergeString(&c.Ontology.DataPropertyPrefix, other.Ontology.DataPropertyPrefix)
	mergeString(&c.Ontology.Path, other.Ontology.Path)
	mergeString(&c.Ontology.DefaultMonitoringAction, other.Ontology.DefaultMonitoringAction)

	// Ingest
	if other.Ingest.ValidateReferences {
		c.Ingest.ValidateReferences = true
	}

	// HTTP
	mergeString(&c.HTTP.Addr, other.HTTP.Addr)
	mergeString(&c.HTTP.Prefix, other.HTTP.Prefix)

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
		c.NATS.Enabled = true
	}
	if other.NATS.Enabled {
		c.NATS.Enabled = true
	}
	if other.NATS.Embedded {
		c.NATS.Embedded = true
	}
	mergeString(&c.NATS.SubjectPrefix, other.NATS.SubjectPrefix)
	mergeString(&c.NATS.Stream, other.NATS.Stream)

	// Watch
	if other.Watch.Enabled {
		c.Watch.Enabled = true
	}
	if other.Watch.Debounce != 0 {
		c.Watch.Debounce = other.Watch.Debounce
	}

	// Log
	mergeString(&c.Log.Level, other.Log.Level)
}

func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
