package pivotsql

import (
	"os"

	"gopkg.in/yaml.v2"

	"pivotsql/pkg/cache"
)

// Config holds the tunables an embedder can set before opening an Engine:
// how many query results to cache. CaseSensitive round-trips through YAML
// but NewFromConfig does not apply it; identifiers are always compared
// case-insensitively. It is YAML-backed so a deployment can ship one
// pivotsql.yaml alongside its data rather than wiring flags through every
// call site.
type Config struct {
	CacheCapacity int  `yaml:"cache_capacity"`
	CaseSensitive bool `yaml:"case_sensitive"`
}

// DefaultConfig returns the Config that New() implies.
func DefaultConfig() Config {
	return Config{CacheCapacity: cache.DefaultQueryCacheCapacity}
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (cfg Config) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NewFromConfig builds an Engine using cfg's cache capacity.
func NewFromConfig(cfg Config) *Engine {
	return NewWithCacheCapacity(cfg.CacheCapacity)
}
