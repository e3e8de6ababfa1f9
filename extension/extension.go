// Package extension provides the Forge extension adapter for Stampcard.
//
// It implements the forge.Extension interface to integrate Stampcard
// into a Forge application with automatic dependency discovery,
// DI registration, and lifecycle management.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.stampcard" or
// "stampcard" keys.
package extension

import (
	"context"
	"errors"

	"github.com/xraph/forge"
	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/vessel"

	stampcard "github.com/xraph/stampcard"
	"github.com/xraph/stampcard/store"
	"github.com/xraph/stampcard/store/memory"
	"github.com/xraph/stampcard/store/mongo"
	"github.com/xraph/stampcard/store/postgres"
	"github.com/xraph/stampcard/store/sqlite"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "stampcard"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Loyalty stamp card engine"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Stampcard as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config     Config
	engine     *stampcard.Engine
	store      store.Store
	groveDB    *grove.DB
	engineOpts []stampcard.Option
}

// New creates a new Stampcard Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Stampcard engine.
// This is nil until Register is called.
func (e *Extension) Engine() *stampcard.Engine { return e.engine }

// SessionOptions returns scan session options derived from the resolved
// configuration, for use with Engine.NewSession.
func (e *Extension) SessionOptions() []stampcard.SessionOption {
	var opts []stampcard.SessionOption
	if e.config.DedupWindow > 0 {
		opts = append(opts, stampcard.WithDedupWindow(e.config.DedupWindow))
	}
	if e.config.CommitTimeout > 0 {
		opts = append(opts, stampcard.WithCommitTimeout(e.config.CommitTimeout))
	}
	return opts
}

// Register implements [forge.Extension]. It loads configuration,
// initializes the stampcard engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.groveDB != nil {
		s, err := storeForGroveDB(e.groveDB)
		if err != nil {
			return err
		}
		e.store = s
	}

	// Use memory store if no store was provided programmatically.
	if e.store == nil {
		e.store = memory.New()
	}

	opts := e.buildEngineOpts()

	eng := stampcard.New(e.store, opts...)
	e.engine = eng

	return vessel.Provide(fapp.Container(), func() (*stampcard.Engine, error) {
		return e.engine, nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("stampcard: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("stampcard: store not initialized")
	}
	return e.store.Ping(ctx)
}

// storeForGroveDB constructs the store backend matching the grove driver.
func storeForGroveDB(db *grove.DB) (store.Store, error) {
	if mdb := mongodriver.Unwrap(db); mdb != nil {
		return mongo.New(db), nil
	}
	if pg := pgdriver.Unwrap(db); pg != nil {
		return postgres.New(db), nil
	}
	if sdb := sqlitedriver.Unwrap(db); sdb != nil {
		return sqlite.New(db), nil
	}
	return nil, errors.New("stampcard: unsupported grove driver")
}

// buildEngineOpts constructs stampcard.Option values from the resolved config.
func (e *Extension) buildEngineOpts() []stampcard.Option {
	opts := make([]stampcard.Option, 0, len(e.engineOpts)+1)

	if e.config.MaxRetries > 0 {
		opts = append(opts, stampcard.WithMaxRetries(e.config.MaxRetries))
	}

	// Append any pass-through engine options.
	opts = append(opts, e.engineOpts...)

	return opts
}

// --- Config Loading (mirrors grove/shield extension pattern) ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	// Try loading from config file.
	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("stampcard: configuration is required but not found in config files; " +
				"ensure 'extensions.stampcard' or 'stampcard' key exists in your config")
		}

		// Use programmatic config merged with defaults.
		e.config = e.mergeWithDefaults(programmaticConfig)
	} else {
		// Config loaded from YAML -- merge with programmatic options.
		e.config = e.mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("stampcard: configuration loaded",
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("max_retries", e.config.MaxRetries),
		forge.F("dedup_window", e.config.DedupWindow),
		forge.F("commit_timeout", e.config.CommitTimeout),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()
	var cfg Config

	// Try "extensions.stampcard" first (namespaced pattern).
	if cm.IsSet("extensions.stampcard") {
		if err := cm.Bind("extensions.stampcard", &cfg); err == nil {
			e.Logger().Debug("stampcard: loaded config from file",
				forge.F("key", "extensions.stampcard"),
			)
			return cfg, true
		}
		e.Logger().Warn("stampcard: failed to bind extensions.stampcard config",
			forge.F("error", "bind failed"),
		)
	}

	// Try legacy "stampcard" key.
	if cm.IsSet("stampcard") {
		if err := cm.Bind("stampcard", &cfg); err == nil {
			e.Logger().Debug("stampcard: loaded config from file",
				forge.F("key", "stampcard"),
			)
			return cfg, true
		}
		e.Logger().Warn("stampcard: failed to bind stampcard config",
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func (e *Extension) mergeWithDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.DedupWindow == 0 {
		cfg.DedupWindow = defaults.DedupWindow
	}
	if cfg.CommitTimeout == 0 {
		cfg.CommitTimeout = defaults.CommitTimeout
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func (e *Extension) mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	// Programmatic bool flags override when true.
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}

	// Duration/int fields: YAML takes precedence, programmatic fills gaps.
	if yamlConfig.MaxRetries == 0 && programmaticConfig.MaxRetries != 0 {
		yamlConfig.MaxRetries = programmaticConfig.MaxRetries
	}
	if yamlConfig.DedupWindow == 0 && programmaticConfig.DedupWindow != 0 {
		yamlConfig.DedupWindow = programmaticConfig.DedupWindow
	}
	if yamlConfig.CommitTimeout == 0 && programmaticConfig.CommitTimeout != 0 {
		yamlConfig.CommitTimeout = programmaticConfig.CommitTimeout
	}

	// Fill remaining zeros with defaults.
	return e.mergeWithDefaults(yamlConfig)
}
