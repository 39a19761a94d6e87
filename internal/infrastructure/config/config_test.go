package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":4000", cfg.Server.ListenAddr)
	assert.Equal(t, 6, cfg.Validation.MinLength)
	assert.Equal(t, 5000, cfg.Validation.MaxLength)
	assert.Equal(t, 30*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, []string{"mean", "max"}, cfg.Inference.Strategies)
	assert.Equal(t, BackendHashing, cfg.Model.Backend)
	assert.Equal(t, 6, cfg.Model.KmerSize)
	assert.Equal(t, 768, cfg.Model.Dimension)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfigYAML_MatchesDefault(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, yaml.Unmarshal([]byte(DefaultConfigYAML), cfg))
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  listen_addr: ":9000"
validation:
  max_length: 100
inference:
  timeout: 2s
  strategies: [max]
model:
  backend: remote
  endpoint: http://triton:8000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, 6, cfg.Validation.MinLength, "unset keys keep defaults")
	assert.Equal(t, 100, cfg.Validation.MaxLength)
	assert.Equal(t, 2*time.Second, cfg.Inference.Timeout)
	assert.Equal(t, []string{"max"}, cfg.Inference.Strategies)
	assert.Equal(t, BackendRemote, cfg.Model.Backend)
	assert.Equal(t, "http://triton:8000", cfg.Model.Endpoint)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvListenAddr, "127.0.0.1:8080")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvModelEndpoint, "http://models:8000")
	t.Setenv(EnvModelAPIKey, "secret")
	t.Setenv(EnvInferenceTimeout, "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.ListenAddr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "http://models:8000", cfg.Model.Endpoint)
	assert.Equal(t, "secret", cfg.Model.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Inference.Timeout)
}

func TestLoad_BadEnvTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvInferenceTimeout, "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvInferenceTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "min below one",
			mutate: func(c *Config) { c.Validation.MinLength = 0 },
			errMsg: "min_length",
		},
		{
			name:   "min above max",
			mutate: func(c *Config) { c.Validation.MinLength, c.Validation.MaxLength = 10, 5 },
			errMsg: "max_length",
		},
		{
			name:   "zero timeout",
			mutate: func(c *Config) { c.Inference.Timeout = 0 },
			errMsg: "inference.timeout",
		},
		{
			name:   "timeout not below write timeout",
			mutate: func(c *Config) { c.Inference.Timeout = c.Server.WriteTimeout },
			errMsg: "server.write_timeout",
		},
		{
			name:   "unknown strategy",
			mutate: func(c *Config) { c.Inference.Strategies = []string{"median"} },
			errMsg: "inference.strategies",
		},
		{
			name:   "unknown backend",
			mutate: func(c *Config) { c.Model.Backend = "onnx" },
			errMsg: "unknown model.backend",
		},
		{
			name:   "remote without endpoint",
			mutate: func(c *Config) { c.Model.Backend = BackendRemote },
			errMsg: "model.endpoint",
		},
		{
			name:   "missing model id",
			mutate: func(c *Config) { c.Model.ID = "" },
			errMsg: "model.id",
		},
		{
			name:   "bad kmer size",
			mutate: func(c *Config) { c.Model.KmerSize = 0 },
			errMsg: "kmer_size",
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.Log.Format = "xml" },
			errMsg: "log.format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_TimeoutWithoutWriteDeadline(t *testing.T) {
	cfg := Default()
	cfg.Server.WriteTimeout = 0
	cfg.Inference.Timeout = 5 * time.Minute

	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvTimeoutBeyondWriteTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(EnvInferenceTimeout, "90s")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.write_timeout")
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, WriteDefault(dir))
	assert.True(t, Exists(dir))

	cfg, err := Load(ConfigFilePath(dir))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	err = WriteDefault(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestConfigFilePath(t *testing.T) {
	assert.Equal(t, "/srv/app/.genepredictor", ConfigDir("/srv/app"))
	assert.Equal(t, "/srv/app/.genepredictor/config.yaml", ConfigFilePath("/srv/app"))
}
