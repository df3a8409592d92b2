// Package config loads the bot's tunable weights from a JSON file on
// disk, falling back to the compiled-in default.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tetriscore/core/internal/heuristic"
)

// Config is the on-disk shape of a bot configuration file.
type Config struct {
	FreestyleWeights heuristic.Weights `json:"freestyle_weights"`
}

// Default returns a Config built from the compiled-in default weights.
func Default() Config {
	return Config{FreestyleWeights: heuristic.DefaultWeights()}
}

// Load reads and decodes a Config from path. An empty path returns
// Default() without touching the filesystem; cmd/tetriscore passes an
// empty path when neither -config nor CONFIG is set.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	return cfg, nil
}
