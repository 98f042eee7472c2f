package bench

import (
	"errors"
	"time"
)

// Config holds the parameters of a bench run.
type Config struct {
	// Entries is the number of entries prefilled before the run.
	Entries int `koanf:"entries"`

	// Readers is the number of reader goroutines.
	Readers int `koanf:"readers"`

	// Writers is the number of writer goroutines.
	Writers int `koanf:"writers"`

	// Duration is how long the run lasts.
	Duration time.Duration `koanf:"duration"`

	// Keyspace is the number of distinct keys touched by the run.
	Keyspace int `koanf:"keyspace"`

	// WriteRate limits each writer to this many operations per second.
	// Zero means unlimited.
	WriteRate float64 `koanf:"write_rate"`

	// BatchSize is the number of entries per SetAll batch. Writers issue
	// one batch write for every batch_size single writes.
	BatchSize int `koanf:"batch_size"`

	// Ordered selects the insertion-order-preserving copy strategy.
	Ordered bool `koanf:"ordered"`

	// Output is the report format: table or json.
	Output string `koanf:"output"`
}

// DefaultConfig returns the default bench configuration.
func DefaultConfig() Config {
	return Config{
		Entries:   10000,
		Readers:   8,
		Writers:   2,
		Duration:  10 * time.Second,
		Keyspace:  20000,
		WriteRate: 100,
		BatchSize: 26,
		Output:    "table",
	}
}

// Defaults returns the default configuration as a koanf-shaped map,
// suitable for confloader.LoadMap.
func Defaults() map[string]any {
	cfg := DefaultConfig()
	return map[string]any{
		"bench.entries":    cfg.Entries,
		"bench.readers":    cfg.Readers,
		"bench.writers":    cfg.Writers,
		"bench.duration":   cfg.Duration.String(),
		"bench.keyspace":   cfg.Keyspace,
		"bench.write_rate": cfg.WriteRate,
		"bench.batch_size": cfg.BatchSize,
		"bench.ordered":    cfg.Ordered,
		"bench.output":     cfg.Output,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Entries < 0 {
		return errors.New("bench.entries must not be negative")
	}
	if c.Readers < 1 {
		return errors.New("bench.readers must be at least 1")
	}
	if c.Writers < 0 {
		return errors.New("bench.writers must not be negative")
	}
	if c.Duration <= 0 {
		return errors.New("bench.duration must be positive")
	}
	if c.Keyspace < 1 {
		return errors.New("bench.keyspace must be at least 1")
	}
	if c.WriteRate < 0 {
		return errors.New("bench.write_rate must not be negative")
	}
	if c.BatchSize < 1 {
		return errors.New("bench.batch_size must be at least 1")
	}
	switch c.Output {
	case "table", "json":
	default:
		return errors.New("bench.output must be table or json")
	}
	return nil
}
