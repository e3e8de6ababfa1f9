package extension

import "time"

// Config holds the Stampcard extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.stampcard" or "stampcard" keys).
type Config struct {
	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// MaxRetries is the number of times the engine re-reads and re-applies
	// a card mutation after a version conflict (default: 3).
	MaxRetries int `json:"max_retries" mapstructure:"max_retries" yaml:"max_retries"`

	// DedupWindow is how long a scan session treats a repeated identical
	// payload as a duplicate (default: 3s).
	DedupWindow time.Duration `json:"dedup_window" mapstructure:"dedup_window" yaml:"dedup_window"`

	// CommitTimeout bounds how long a scan session waits for a commit to
	// finish before abandoning its result (default: 30s).
	CommitTimeout time.Duration `json:"commit_timeout" mapstructure:"commit_timeout" yaml:"commit_timeout"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		DedupWindow:   3 * time.Second,
		CommitTimeout: 30 * time.Second,
	}
}
