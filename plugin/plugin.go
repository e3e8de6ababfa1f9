// Package plugin provides an extensible plugin system for Stampcard.
// Plugins can hook into lifecycle events to extend functionality.
package plugin

import "context"

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Card lifecycle hooks
// ──────────────────────────────────────────────────

// OnCardCreated is called when a new loyalty card is created.
type OnCardCreated interface {
	Plugin
	OnCardCreated(ctx context.Context, card interface{}) error
}

// OnCardPinned is called when a card's pinned preference changes.
type OnCardPinned interface {
	Plugin
	OnCardPinned(ctx context.Context, cardID string, pinned bool) error
}

// ──────────────────────────────────────────────────
// Stamp / reward hooks
// ──────────────────────────────────────────────────

// OnStampsAdded is called when stamps are issued to a card.
type OnStampsAdded interface {
	Plugin
	OnStampsAdded(ctx context.Context, card interface{}, count int) error
}

// OnRewardEarned is called when a stamp addition earns one or more rewards.
type OnRewardEarned interface {
	Plugin
	OnRewardEarned(ctx context.Context, card interface{}, earned int) error
}

// OnRewardRedeemed is called when a reward is redeemed from a card.
type OnRewardRedeemed interface {
	Plugin
	OnRewardRedeemed(ctx context.Context, card interface{}) error
}

// ──────────────────────────────────────────────────
// Scan session hooks
// ──────────────────────────────────────────────────

// OnScanDeduped is called when a repeated scan frame is discarded.
type OnScanDeduped interface {
	Plugin
	OnScanDeduped(ctx context.Context, payload string) error
}

// OnScanFailed is called when a scan commit fails.
type OnScanFailed interface {
	Plugin
	OnScanFailed(ctx context.Context, payload string, err error) error
}

// ──────────────────────────────────────────────────
// Store hooks
// ──────────────────────────────────────────────────

// OnCommitConflict is called when a card write loses a compare-and-swap race
// and is about to be retried.
type OnCommitConflict interface {
	Plugin
	OnCommitConflict(ctx context.Context, cardID string, attempt int) error
}
