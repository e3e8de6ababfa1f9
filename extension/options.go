package extension

import (
	"time"

	"github.com/xraph/grove"

	stampcard "github.com/xraph/stampcard"
	"github.com/xraph/stampcard/plugin"
	"github.com/xraph/stampcard/store"
)

// Option configures the Stampcard Forge extension.
type Option func(*Extension)

// WithStore sets the store for the stampcard engine.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithEngineOption passes a stampcard.Option through to the underlying engine.
func WithEngineOption(opt stampcard.Option) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, opt)
	}
}

// WithPlugin registers a stampcard plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.engineOpts = append(e.engineOpts, stampcard.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDisableMigrate prevents auto-migration on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}

// WithMaxRetries sets the version-conflict retry budget for card mutations.
func WithMaxRetries(n int) Option {
	return func(e *Extension) { e.config.MaxRetries = n }
}

// WithDedupWindow sets the scan session duplicate-payload window.
func WithDedupWindow(d time.Duration) Option {
	return func(e *Extension) { e.config.DedupWindow = d }
}

// WithCommitTimeout sets the scan session commit watchdog timeout.
func WithCommitTimeout(d time.Duration) Option {
	return func(e *Extension) { e.config.CommitTimeout = d }
}

// WithGroveDB sets a grove.DB to back the store. The extension
// auto-constructs the appropriate store backend (postgres/sqlite/mongo)
// based on the grove driver type. Takes precedence over WithStore.
func WithGroveDB(db *grove.DB) Option {
	return func(e *Extension) {
		e.groveDB = db
	}
}
