// Package config loads sporkfish's typed configuration from YAML (the
// ambient stack's config layer): a single Config struct assembled from each
// component's own Options record, decoded with gopkg.in/yaml.v3 the way the
// rest of the retrieval pack's config-driven services do. Unknown keys are
// a hard error (Decoder.KnownFields(true)) so a typo in a config file fails
// fast at startup instead of silently keeping a default.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/KYLChiu/sporkfish/internal/search"
)

// Config is the root configuration document.
type Config struct {
	Search      search.Options            `yaml:"search"`
	TimeManager search.TimeManagerOptions `yaml:"time_manager"`
	Book        BookConfig                `yaml:"book"`
	Tablebase   TablebaseConfig           `yaml:"tablebase"`
	Logging     LoggingConfig             `yaml:"logging"`
}

// BookConfig configures the opening book (spec §6).
type BookConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TablebaseMode selects which tablebase backend to use, mirroring
// endgame_tablebase_config.py's EndgameTablebaseMode enum.
type TablebaseMode string

const (
	TablebaseModeNone TablebaseMode = "none"
	TablebaseModeLila TablebaseMode = "lila"
)

// TablebaseConfig configures endgame tablebase probing (spec §6).
type TablebaseConfig struct {
	Mode TablebaseMode `yaml:"mode"`
}

// LoggingConfig configures the zerolog-based ambient logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns a fully-populated Config using every component's
// recommended defaults (spec §9's resolved open questions).
func Default() Config {
	return Config{
		Search:      search.DefaultOptions(),
		TimeManager: search.DefaultTimeManagerOptions(),
		Book:        BookConfig{Enabled: false, Path: "data/opening.bin"},
		Tablebase:   TablebaseConfig{Mode: TablebaseModeNone},
		Logging:     LoggingConfig{Level: "info", Pretty: false},
	}
}

// Load reads and parses a YAML config file, starting from Default() so a
// file only needs to specify the fields it wants to override.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: opening %q: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return cfg, nil
}
