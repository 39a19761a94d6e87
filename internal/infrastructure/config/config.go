// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ersonp/genepredictor/internal/domain/entities"
)

const (
	// DefaultConfigDir is the directory name for genepredictor configuration.
	DefaultConfigDir = ".genepredictor"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Model backends.
const (
	BackendHashing = "hashing"
	BackendRemote  = "remote"
)

// Environment variables that override file values.
const (
	EnvListenAddr       = "GENEPREDICTOR_LISTEN_ADDR"
	EnvLogLevel         = "GENEPREDICTOR_LOG_LEVEL"
	EnvModelEndpoint    = "GENEPREDICTOR_MODEL_ENDPOINT"
	EnvModelAPIKey      = "GENEPREDICTOR_MODEL_API_KEY"
	EnvInferenceTimeout = "GENEPREDICTOR_INFERENCE_TIMEOUT"
)

// Config holds static service configuration (read-only after load).
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Validation ValidationConfig `yaml:"validation"`
	Inference  InferenceConfig  `yaml:"inference"`
	Model      ModelConfig      `yaml:"model"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	ListenAddr      string        `yaml:"listen_addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`
}

// ValidationConfig holds the accepted sequence length bounds.
type ValidationConfig struct {
	MinLength int `yaml:"min_length"`
	MaxLength int `yaml:"max_length"`
}

// InferenceConfig holds per-request pipeline settings.
type InferenceConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	Strategies []string      `yaml:"strategies,omitempty"`
}

// ModelConfig holds configuration for the model backend.
type ModelConfig struct {
	// Backend is "hashing" (local, deterministic) or "remote" (v2 inference server).
	Backend   string `yaml:"backend"`
	ID        string `yaml:"id"`
	KmerSize  int    `yaml:"kmer_size"`
	VocabPath string `yaml:"vocab_path,omitempty"`
	// Dimension is the hidden size. Zero lets the remote backend discover it.
	Dimension int    `yaml:"dimension"`
	Seed      uint64 `yaml:"seed,omitempty"`

	Endpoint       string        `yaml:"endpoint,omitempty"`
	APIKey         string        `yaml:"api_key,omitempty"`
	OutputName     string        `yaml:"output_name,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:      ":4000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Validation: ValidationConfig{
			MinLength: 6,
			MaxLength: 5000,
		},
		Inference: InferenceConfig{
			Timeout:    30 * time.Second,
			Strategies: []string{"mean", "max"},
		},
		Model: ModelConfig{
			Backend:   BackendHashing,
			ID:        "dnabert-6",
			KmerSize:  6,
			Dimension: 768,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty path
// means the default location under the working directory, which may be
// absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = ConfigFilePath(".")
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// Defaults only.
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("config file not found: %s", path)
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvModelEndpoint); v != "" {
		c.Model.Endpoint = v
	}
	if v := os.Getenv(EnvModelAPIKey); v != "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv(EnvInferenceTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvInferenceTimeout, err)
		}
		c.Inference.Timeout = d
	}
	return nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	v := c.Validation
	if v.MinLength < 1 {
		return fmt.Errorf("validation.min_length must be at least 1, got %d", v.MinLength)
	}
	if v.MaxLength < v.MinLength {
		return fmt.Errorf("validation.max_length (%d) is less than min_length (%d)", v.MaxLength, v.MinLength)
	}

	if c.Inference.Timeout <= 0 {
		return fmt.Errorf("inference.timeout must be positive, got %s", c.Inference.Timeout)
	}
	if wt := c.Server.WriteTimeout; wt > 0 && c.Inference.Timeout >= wt {
		return fmt.Errorf("inference.timeout (%s) must be less than server.write_timeout (%s)", c.Inference.Timeout, wt)
	}
	if _, err := entities.ParseStrategies(c.Inference.Strategies); err != nil {
		return fmt.Errorf("inference.strategies: %w", err)
	}

	switch c.Model.Backend {
	case BackendHashing:
	case BackendRemote:
		if c.Model.Endpoint == "" {
			return errors.New("model.endpoint is required for the remote backend")
		}
	default:
		return fmt.Errorf("unknown model.backend %q (want %s or %s)", c.Model.Backend, BackendHashing, BackendRemote)
	}
	if c.Model.ID == "" {
		return errors.New("model.id is required")
	}
	if c.Model.KmerSize < 1 {
		return fmt.Errorf("model.kmer_size must be at least 1, got %d", c.Model.KmerSize)
	}
	if c.Model.Dimension < 0 {
		return fmt.Errorf("model.dimension must not be negative, got %d", c.Model.Dimension)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log.format %q (want json or console)", c.Log.Format)
	}

	return nil
}

// ConfigDir returns the path to the .genepredictor config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a config file exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
