package stampcard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xraph/stampcard/card"
	"github.com/xraph/stampcard/id"
	"github.com/xraph/stampcard/plugin"
	"github.com/xraph/stampcard/store"
	"github.com/xraph/stampcard/types"
)

// MaxStampsPerScan bounds how many stamps a single confirmed scan may apply.
const MaxStampsPerScan = 10

// Engine is the loyalty stamp-card engine. It owns the card repository rules:
// lazy card creation, delta-based stamp accrual, reward redemption, and the
// optimistic-concurrency retry loop around every mutation.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	// Configuration
	maxRetries   int
	pollInterval time.Duration
	now          func() time.Time
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:      s,
		plugins:    plugin.NewRegistry(),
		logger:     slog.Default(),
		maxRetries:   3,
		pollInterval: DefaultPollInterval,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithMaxRetries sets how many times a mutation is reapplied after a
// concurrent-update conflict before giving up.
func WithMaxRetries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithPollInterval sets how often WatchRedemption re-reads the card.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Start migrates the store and initializes plugins.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	e.logger.Info("stampcard engine started",
		"max_retries", e.maxRetries,
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// Store returns the underlying store. Useful for wiring diagnostics.
func (e *Engine) Store() store.Store { return e.store }

// ──────────────────────────────────────────────────
// Card Repository
// ──────────────────────────────────────────────────

// FindCard looks up the card for a (customer, cafe) pair. Absent cards and
// permission failures both surface as ErrCardNotFound so callers can branch
// uniformly on presence.
func (e *Engine) FindCard(ctx context.Context, customerID, cafeUserID string) (*card.Card, error) {
	if err := requireIDs(customerID, cafeUserID); err != nil {
		return nil, err
	}

	c, err := e.store.GetCardByCustomerAndCafe(ctx, customerID, cafeUserID)
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetCard retrieves a card by its identifier.
func (e *Engine) GetCard(ctx context.Context, cardID string) (*card.Card, error) {
	if cardID == "" {
		return nil, ValidationError{Field: "card_id", Message: "required"}
	}
	return e.store.GetCard(ctx, cardID)
}

// CreateCard creates a new card owned by the given cafe. Progress fields are
// seeded from TotalStamps; the ID is minted when the caller left it empty.
func (e *Engine) CreateCard(ctx context.Context, c *card.Card) (*card.Card, error) {
	if err := requireIDs(c.CustomerID, c.CafeUserID); err != nil {
		return nil, err
	}

	if c.ID == "" {
		c.ID = id.NewCardID().String()
	}
	c.Entity = types.NewEntity()
	c.CurrentStamps, c.AvailableRewards = card.CalculateRewards(c.TotalStamps)
	if c.TotalStamps < 0 {
		c.TotalStamps = 0
	}

	now := e.now()
	if c.IssueDate.IsZero() {
		c.IssueDate = now
	}
	c.LastStampDate = now
	if c.History == "" {
		c.History = card.EmptyHistory
	}
	c.Schema = card.SchemaV1
	c.Version = 0

	if err := e.store.CreateCard(ctx, c); err != nil {
		return nil, err
	}

	e.plugins.EmitCardCreated(ctx, c)
	return c, nil
}

// AddStamps issues count stamps to the customer's card at the given cafe,
// creating the card when none exists yet. Rewards are accrued by delta
// arithmetic: every StampsPerReward stamps crossed adds one available reward.
// The write is a compare-and-swap retried against concurrent mutations.
func (e *Engine) AddStamps(ctx context.Context, customerID, cafeUserID string, count int) (*card.Card, error) {
	if err := requireIDs(customerID, cafeUserID); err != nil {
		return nil, err
	}
	if count < 1 || count > MaxStampsPerScan {
		return nil, ErrInvalidStampCount
	}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		c, err := e.store.GetCardByCustomerAndCafe(ctx, customerID, cafeUserID)
		if err != nil {
			if !IsNotFound(err) {
				return nil, err
			}

			created, createErr := e.createForStamps(ctx, customerID, cafeUserID, count)
			if errors.Is(createErr, ErrCardExists) {
				// Lost a create race with another device; re-read and
				// apply the stamps as a normal update.
				continue
			}
			if createErr != nil {
				return nil, createErr
			}
			return created, nil
		}

		if c.IsLegacy() {
			return nil, ErrLegacyCard
		}

		now := e.now()
		earned := c.AddStamps(count)
		c.History = card.AppendHistory(c.History, card.NewHistoryEntry(now, card.ActionStampAdded, cafeUserID, count))
		c.LastStampDate = now

		if err := e.store.UpdateCard(ctx, c); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				e.plugins.EmitCommitConflict(ctx, c.ID, attempt+1)
				continue
			}
			return nil, err
		}

		e.plugins.EmitStampsAdded(ctx, c, count)
		if earned > 0 {
			e.plugins.EmitRewardEarned(ctx, c, earned)
		}

		e.logger.Debug("stamps added",
			"card_id", c.ID,
			"count", count,
			"rewards_earned", earned,
		)
		return c, nil
	}

	return nil, ErrVersionConflict
}

// createForStamps lazily creates a card seeded with the first stamp batch.
func (e *Engine) createForStamps(ctx context.Context, customerID, cafeUserID string, count int) (*card.Card, error) {
	now := e.now()
	c := &card.Card{
		ID:            id.NewCardID().String(),
		CustomerID:    customerID,
		CafeUserID:    cafeUserID,
		TotalStamps:   count,
		IssueDate:     now,
		LastStampDate: now,
		History:       card.AppendHistory(card.EmptyHistory, card.NewHistoryEntry(now, card.ActionStampAdded, cafeUserID, count)),
		Schema:        card.SchemaV1,
	}
	c.Entity = types.NewEntity()
	c.CurrentStamps, c.AvailableRewards = card.CalculateRewards(count)

	if err := e.store.CreateCard(ctx, c); err != nil {
		return nil, err
	}

	e.plugins.EmitCardCreated(ctx, c)
	e.plugins.EmitStampsAdded(ctx, c, count)
	if c.AvailableRewards > 0 {
		e.plugins.EmitRewardEarned(ctx, c, c.AvailableRewards)
	}

	e.logger.Debug("card created",
		"card_id", c.ID,
		"initial_stamps", count,
	)
	return c, nil
}

// RedeemReward consumes exactly one available reward from the customer's card
// at the given cafe. A missing card is a hard failure here: a reward cannot
// be redeemed against a card that does not exist. Stamp progress is never
// touched by redemption.
func (e *Engine) RedeemReward(ctx context.Context, customerID, cafeUserID string) (*card.Card, error) {
	if err := requireIDs(customerID, cafeUserID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		c, err := e.store.GetCardByCustomerAndCafe(ctx, customerID, cafeUserID)
		if err != nil {
			return nil, err
		}

		if c.IsLegacy() {
			return nil, ErrLegacyCard
		}
		if !c.Redeem() {
			return nil, ErrNoRewards
		}

		now := e.now()
		c.History = card.AppendHistory(c.History, card.NewHistoryEntry(now, card.ActionRewardRedeemed, cafeUserID, 0))
		c.LastStampDate = now

		if err := e.store.UpdateCard(ctx, c); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				e.plugins.EmitCommitConflict(ctx, c.ID, attempt+1)
				continue
			}
			return nil, err
		}

		e.plugins.EmitRewardRedeemed(ctx, c)

		e.logger.Debug("reward redeemed",
			"card_id", c.ID,
			"remaining", c.AvailableRewards,
		)
		return c, nil
	}

	return nil, ErrVersionConflict
}

// SetPinned updates the customer's display preference for a card. It also
// refreshes LastStampDate, so pin toggling perturbs recency ordering.
func (e *Engine) SetPinned(ctx context.Context, cardID string, pinned bool) (*card.Card, error) {
	if cardID == "" {
		return nil, ValidationError{Field: "card_id", Message: "required"}
	}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		c, err := e.store.GetCard(ctx, cardID)
		if err != nil {
			return nil, err
		}

		c.Pinned = pinned
		c.LastStampDate = e.now()

		if err := e.store.UpdateCard(ctx, c); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		e.plugins.EmitCardPinned(ctx, c.ID, pinned)
		return c, nil
	}

	return nil, ErrVersionConflict
}

// ListByCafe returns all cards owned by a cafe. Store failures degrade to an
// empty list so callers stay usable against a partially provisioned backend.
func (e *Engine) ListByCafe(ctx context.Context, cafeUserID string, opts card.ListOpts) []*card.Card {
	cards, err := e.store.ListCardsByCafe(ctx, cafeUserID, opts)
	if err != nil {
		e.logger.Warn("list cards by cafe failed",
			"cafe_user_id", cafeUserID,
			"error", err,
		)
		return []*card.Card{}
	}
	return cards
}

// ListByCustomer returns a customer's cards across all cafes. Store failures
// degrade to an empty list.
func (e *Engine) ListByCustomer(ctx context.Context, customerID string, opts card.ListOpts) []*card.Card {
	cards, err := e.store.ListCardsByCustomer(ctx, customerID, opts)
	if err != nil {
		e.logger.Warn("list cards by customer failed",
			"customer_id", customerID,
			"error", err,
		)
		return []*card.Card{}
	}
	return cards
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func requireIDs(customerID, cafeUserID string) error {
	if customerID == "" {
		return ValidationError{Field: "customer_id", Message: "required"}
	}
	if cafeUserID == "" {
		return ValidationError{Field: "cafe_user_id", Message: "required"}
	}
	return nil
}
