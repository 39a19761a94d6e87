package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# genepredictor configuration

server:
  listen_addr: ":4000"
  read_timeout: 15s
  write_timeout: 60s
  shutdown_timeout: 10s
  max_body_bytes: 1048576

validation:
  min_length: 6
  max_length: 5000

inference:
  timeout: 30s
  strategies: [mean, max]

model:
  # hashing runs locally without weights; remote calls a v2 inference server
  backend: hashing
  id: dnabert-6
  kmer_size: 6
  dimension: 768
  # vocab_path: vocab.txt (one token per line, id = line number)
  # endpoint: http://localhost:8000 (or set GENEPREDICTOR_MODEL_ENDPOINT)
  # api_key: your-api-key (or set GENEPREDICTOR_MODEL_API_KEY)

log:
  level: info
  format: json
`

// WriteDefault creates the .genepredictor directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := filepath.Join(configDir, DefaultConfigFile)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
