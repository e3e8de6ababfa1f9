package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	stampcard "github.com/xraph/stampcard"
	"github.com/xraph/stampcard/card"
	cardstore "github.com/xraph/stampcard/store"
)

// Collection name constants.
const (
	colCards = "stampcard_cards"
)

// compile-time interface check
var _ cardstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for the card collection.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("stampcard/mongo: migrate %s indexes: %w", col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Card Store ====================

func (s *Store) CreateCard(ctx context.Context, c *card.Card) error {
	m := toCardModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return stampcard.ErrCardExists
		}
		return fmt.Errorf("stampcard/mongo: create card: %w", err)
	}
	return nil
}

func (s *Store) GetCard(ctx context.Context, cardID string) (*card.Card, error) {
	var m cardModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": cardID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, stampcard.ErrCardNotFound
		}
		return nil, fmt.Errorf("stampcard/mongo: get card: %w", err)
	}
	return fromCardModel(&m), nil
}

func (s *Store) GetCardByCustomerAndCafe(ctx context.Context, customerID, cafeUserID string) (*card.Card, error) {
	var m cardModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{
			"customer_id":  customerID,
			"cafe_user_id": cafeUserID,
		}).
		Scan(ctx)
	if err != nil {
		// Missing collections and authorization failures surface as
		// not-found so the lookup contract stays uniform for callers.
		if isNoDocuments(err) || isUnauthorized(err) {
			return nil, stampcard.ErrCardNotFound
		}
		return nil, fmt.Errorf("stampcard/mongo: get card by customer and cafe: %w", err)
	}
	return fromCardModel(&m), nil
}

func (s *Store) ListCardsByCafe(ctx context.Context, cafeUserID string, opts card.ListOpts) ([]*card.Card, error) {
	return s.listCards(ctx, bson.M{"cafe_user_id": cafeUserID}, opts)
}

func (s *Store) ListCardsByCustomer(ctx context.Context, customerID string, opts card.ListOpts) ([]*card.Card, error) {
	return s.listCards(ctx, bson.M{"customer_id": customerID}, opts)
}

func (s *Store) listCards(ctx context.Context, filter bson.M, opts card.ListOpts) ([]*card.Card, error) {
	var models []cardModel

	sortSpec := bson.D{{Key: "last_stamp_date", Value: -1}}
	if opts.PinnedFirst {
		sortSpec = bson.D{{Key: "pinned", Value: -1}, {Key: "last_stamp_date", Value: -1}}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(sortSpec)

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("stampcard/mongo: list cards: %w", err)
	}

	result := make([]*card.Card, len(models))
	for i := range models {
		result[i] = fromCardModel(&models[i])
	}
	return result, nil
}

// UpdateCard writes the card guarded by a compare-and-swap on its version.
// The filter matches both the id and the caller's version; a miss on an
// existing card means another writer got there first.
func (s *Store) UpdateCard(ctx context.Context, c *card.Card) error {
	t := now()
	res, err := s.mdb.NewUpdate((*cardModel)(nil)).
		Filter(bson.M{"_id": c.ID, "version": c.Version}).
		Set("customer_name", c.CustomerName).
		Set("customer_email", c.CustomerEmail).
		Set("current_stamps", c.CurrentStamps).
		Set("total_stamps", c.TotalStamps).
		Set("available_rewards", c.AvailableRewards).
		Set("total_redeemed", c.TotalRedeemed).
		Set("pinned", c.Pinned).
		Set("last_stamp_date", c.LastStampDate).
		Set("history", c.History).
		Set("schema", c.Schema).
		Set("version", c.Version+1).
		Set("updated_at", t).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("stampcard/mongo: update card: %w", err)
	}
	if res.MatchedCount() == 0 {
		// Distinguish a stale version from a missing card.
		if _, getErr := s.GetCard(ctx, c.ID); getErr != nil {
			return getErr
		}
		return stampcard.ErrVersionConflict
	}

	c.Version++
	c.UpdatedAt = t
	return nil
}

// ==================== Helpers ====================

func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colCards: {
			{
				Keys:    bson.D{{Key: "customer_id", Value: 1}, {Key: "cafe_user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "cafe_user_id", Value: 1}, {Key: "last_stamp_date", Value: -1}}},
			{Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "last_stamp_date", Value: -1}}},
		},
	}
}

func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// isUnauthorized matches server-side authorization failures (code 13).
func isUnauthorized(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == 13
	}
	return false
}

func now() time.Time {
	return time.Now().UTC()
}
