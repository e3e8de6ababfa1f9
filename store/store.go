package store

import (
	"context"

	"github.com/xraph/stampcard/card"
)

// Store is the unified storage interface for Stampcard.
//
// Update is a compare-and-swap: drivers match the card's Version and bump it
// atomically. An update whose Version no longer matches the stored record
// fails with stampcard.ErrVersionConflict so the caller can re-read and
// reapply its delta instead of silently clobbering a concurrent write.
type Store interface {
	// Card methods
	CreateCard(ctx context.Context, c *card.Card) error
	GetCard(ctx context.Context, cardID string) (*card.Card, error)
	GetCardByCustomerAndCafe(ctx context.Context, customerID, cafeUserID string) (*card.Card, error)
	ListCardsByCafe(ctx context.Context, cafeUserID string, opts card.ListOpts) ([]*card.Card, error)
	ListCardsByCustomer(ctx context.Context, customerID string, opts card.ListOpts) ([]*card.Card, error)
	UpdateCard(ctx context.Context, c *card.Card) error

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
