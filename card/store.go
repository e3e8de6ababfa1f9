package card

import "context"

// Store is the narrow card persistence contract, for components that only
// touch cards and don't need the full store.Store surface.
type Store interface {
	Create(ctx context.Context, c *Card) error
	Get(ctx context.Context, cardID string) (*Card, error)
	GetByCustomerAndCafe(ctx context.Context, customerID, cafeUserID string) (*Card, error)
	ListByCafe(ctx context.Context, cafeUserID string, opts ListOpts) ([]*Card, error)
	ListByCustomer(ctx context.Context, customerID string, opts ListOpts) ([]*Card, error)
	Update(ctx context.Context, c *Card) error
}

// ListOpts controls card list queries.
type ListOpts struct {
	// PinnedFirst orders pinned cards ahead of unpinned ones; within each
	// group cards are ordered by most recent stamp activity.
	PinnedFirst bool
	Limit       int
	Offset      int
}
