package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit           []OnInit
	onShutdown       []OnShutdown
	onCardCreated    []OnCardCreated
	onCardPinned     []OnCardPinned
	onStampsAdded    []OnStampsAdded
	onRewardEarned   []OnRewardEarned
	onRewardRedeemed []OnRewardRedeemed
	onScanDeduped    []OnScanDeduped
	onScanFailed     []OnScanFailed
	onCommitConflict []OnCommitConflict
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnCardCreated); ok {
		r.onCardCreated = append(r.onCardCreated, v)
	}
	if v, ok := p.(OnCardPinned); ok {
		r.onCardPinned = append(r.onCardPinned, v)
	}
	if v, ok := p.(OnStampsAdded); ok {
		r.onStampsAdded = append(r.onStampsAdded, v)
	}
	if v, ok := p.(OnRewardEarned); ok {
		r.onRewardEarned = append(r.onRewardEarned, v)
	}
	if v, ok := p.(OnRewardRedeemed); ok {
		r.onRewardRedeemed = append(r.onRewardRedeemed, v)
	}
	if v, ok := p.(OnScanDeduped); ok {
		r.onScanDeduped = append(r.onScanDeduped, v)
	}
	if v, ok := p.(OnScanFailed); ok {
		r.onScanFailed = append(r.onScanFailed, v)
	}
	if v, ok := p.(OnCommitConflict); ok {
		r.onCommitConflict = append(r.onCommitConflict, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnCardCreated)(nil)).Elem(), "OnCardCreated")
	checkInterface(reflect.TypeOf((*OnCardPinned)(nil)).Elem(), "OnCardPinned")
	checkInterface(reflect.TypeOf((*OnStampsAdded)(nil)).Elem(), "OnStampsAdded")
	checkInterface(reflect.TypeOf((*OnRewardEarned)(nil)).Elem(), "OnRewardEarned")
	checkInterface(reflect.TypeOf((*OnRewardRedeemed)(nil)).Elem(), "OnRewardRedeemed")
	checkInterface(reflect.TypeOf((*OnScanDeduped)(nil)).Elem(), "OnScanDeduped")
	checkInterface(reflect.TypeOf((*OnScanFailed)(nil)).Elem(), "OnScanFailed")
	checkInterface(reflect.TypeOf((*OnCommitConflict)(nil)).Elem(), "OnCommitConflict")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCardCreated emits a card created event.
func (r *Registry) EmitCardCreated(ctx context.Context, card interface{}) {
	r.mu.RLock()
	plugins := r.onCardCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCardCreated(ctx, card)
		}); err != nil {
			r.logger.Warn("plugin OnCardCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCardPinned emits a card pinned event.
func (r *Registry) EmitCardPinned(ctx context.Context, cardID string, pinned bool) {
	r.mu.RLock()
	plugins := r.onCardPinned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCardPinned(ctx, cardID, pinned)
		}); err != nil {
			r.logger.Warn("plugin OnCardPinned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitStampsAdded emits a stamps added event.
func (r *Registry) EmitStampsAdded(ctx context.Context, card interface{}, count int) {
	r.mu.RLock()
	plugins := r.onStampsAdded
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStampsAdded(ctx, card, count)
		}); err != nil {
			r.logger.Warn("plugin OnStampsAdded failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRewardEarned emits a reward earned event.
func (r *Registry) EmitRewardEarned(ctx context.Context, card interface{}, earned int) {
	r.mu.RLock()
	plugins := r.onRewardEarned
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRewardEarned(ctx, card, earned)
		}); err != nil {
			r.logger.Warn("plugin OnRewardEarned failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRewardRedeemed emits a reward redeemed event.
func (r *Registry) EmitRewardRedeemed(ctx context.Context, card interface{}) {
	r.mu.RLock()
	plugins := r.onRewardRedeemed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRewardRedeemed(ctx, card)
		}); err != nil {
			r.logger.Warn("plugin OnRewardRedeemed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitScanDeduped emits a scan deduplicated event.
func (r *Registry) EmitScanDeduped(ctx context.Context, payload string) {
	r.mu.RLock()
	plugins := r.onScanDeduped
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnScanDeduped(ctx, payload)
		}); err != nil {
			r.logger.Warn("plugin OnScanDeduped failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitScanFailed emits a scan failed event.
func (r *Registry) EmitScanFailed(ctx context.Context, payload string, scanErr error) {
	r.mu.RLock()
	plugins := r.onScanFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnScanFailed(ctx, payload, scanErr)
		}); err != nil {
			r.logger.Warn("plugin OnScanFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCommitConflict emits a commit conflict event.
func (r *Registry) EmitCommitConflict(ctx context.Context, cardID string, attempt int) {
	r.mu.RLock()
	plugins := r.onCommitConflict
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCommitConflict(ctx, cardID, attempt)
		}); err != nil {
			r.logger.Warn("plugin OnCommitConflict failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the scan pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
