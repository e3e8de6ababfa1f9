package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/xraph/stampcard"
	"github.com/xraph/stampcard/card"
)

// Store is an in-memory store implementation. It is primarily intended for
// tests and demos; all reads and writes deep-copy cards so callers can never
// alias stored state.
type Store struct {
	mu sync.RWMutex

	// Card storage keyed by card ID, with a (customerID, cafeUserID)
	// composite index for the staff-side lookup path.
	cards   map[string]*card.Card
	byOwner map[ownerKey]string

	closed bool
}

type ownerKey struct {
	customerID string
	cafeUserID string
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		cards:   make(map[string]*card.Card),
		byOwner: make(map[ownerKey]string),
	}
}

func (s *Store) CreateCard(_ context.Context, c *card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return stampcard.ErrStoreClosed
	}
	if _, exists := s.cards[c.ID]; exists {
		return stampcard.ErrCardExists
	}

	key := ownerKey{c.CustomerID, c.CafeUserID}
	if _, exists := s.byOwner[key]; exists {
		return stampcard.ErrCardExists
	}

	s.cards[c.ID] = c.Clone()
	s.byOwner[key] = c.ID
	return nil
}

func (s *Store) GetCard(_ context.Context, cardID string) (*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, stampcard.ErrStoreClosed
	}
	if c, ok := s.cards[cardID]; ok {
		return c.Clone(), nil
	}
	return nil, stampcard.ErrCardNotFound
}

func (s *Store) GetCardByCustomerAndCafe(_ context.Context, customerID, cafeUserID string) (*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, stampcard.ErrStoreClosed
	}
	if cardID, ok := s.byOwner[ownerKey{customerID, cafeUserID}]; ok {
		return s.cards[cardID].Clone(), nil
	}
	return nil, stampcard.ErrCardNotFound
}

func (s *Store) ListCardsByCafe(_ context.Context, cafeUserID string, opts card.ListOpts) ([]*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, stampcard.ErrStoreClosed
	}

	result := make([]*card.Card, 0)
	for _, c := range s.cards {
		if c.CafeUserID == cafeUserID {
			result = append(result, c.Clone())
		}
	}
	return page(orderCards(result, opts), opts), nil
}

func (s *Store) ListCardsByCustomer(_ context.Context, customerID string, opts card.ListOpts) ([]*card.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, stampcard.ErrStoreClosed
	}

	result := make([]*card.Card, 0)
	for _, c := range s.cards {
		if c.CustomerID == customerID {
			result = append(result, c.Clone())
		}
	}
	return page(orderCards(result, opts), opts), nil
}

func (s *Store) UpdateCard(_ context.Context, c *card.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return stampcard.ErrStoreClosed
	}

	existing, ok := s.cards[c.ID]
	if !ok {
		return stampcard.ErrCardNotFound
	}
	if existing.Version != c.Version {
		return stampcard.ErrVersionConflict
	}

	updated := c.Clone()
	updated.Version++
	updated.Touch()
	s.cards[c.ID] = updated

	// Reflect the bumped version back to the caller, matching what the
	// database drivers return.
	c.Version = updated.Version
	c.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *Store) Migrate(_ context.Context) error { return nil }

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return stampcard.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// orderCards sorts most-recent-stamp-first, with pinned cards ahead when
// requested.
func orderCards(cards []*card.Card, opts card.ListOpts) []*card.Card {
	sort.SliceStable(cards, func(i, j int) bool {
		if opts.PinnedFirst && cards[i].Pinned != cards[j].Pinned {
			return cards[i].Pinned
		}
		return cards[i].LastStampDate.After(cards[j].LastStampDate)
	})
	return cards
}

func page(cards []*card.Card, opts card.ListOpts) []*card.Card {
	start := opts.Offset
	if start > len(cards) {
		start = len(cards)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(cards) {
		end = len(cards)
	}
	return cards[start:end]
}
