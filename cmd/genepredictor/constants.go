package main

import "github.com/ersonp/genepredictor/internal/infrastructure/config"

// Defaults for CLI commands.
const (
	DefaultConcurrency = 4
	defaultConfigHint  = config.DefaultConfigDir + "/" + config.DefaultConfigFile
)

// Valid input formats for embed.
var validFormats = []string{"auto", "fasta", "txt", "csv", "json"}
