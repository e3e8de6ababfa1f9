// Package sqlite provides a SQLite-backed implementation of the
// stampcard store, suitable for local development and embedded use.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	stampcard "github.com/xraph/stampcard"
	"github.com/xraph/stampcard/card"
	cardstore "github.com/xraph/stampcard/store"
)

// compile-time interface check
var _ cardstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("stampcard/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("stampcard/sqlite: migration failed: %w", err)
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
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return stampcard.ErrCardExists
		}
		return err
	}
	c.CreatedAt = m.CreatedAt
	c.UpdatedAt = m.UpdatedAt
	return nil
}

func (s *Store) GetCard(ctx context.Context, cardID string) (*card.Card, error) {
	m := new(cardModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", cardID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, stampcard.ErrCardNotFound
		}
		return nil, err
	}
	return fromCardModel(m), nil
}

func (s *Store) GetCardByCustomerAndCafe(ctx context.Context, customerID, cafeUserID string) (*card.Card, error) {
	m := new(cardModel)
	err := s.sdb.NewSelect(m).
		Where("customer_id = ?", customerID).
		Where("cafe_user_id = ?", cafeUserID).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, stampcard.ErrCardNotFound
		}
		return nil, err
	}
	return fromCardModel(m), nil
}

func (s *Store) ListCardsByCafe(ctx context.Context, cafeUserID string, opts card.ListOpts) ([]*card.Card, error) {
	var models []cardModel
	q := s.sdb.NewSelect(&models).Where("cafe_user_id = ?", cafeUserID)
	if opts.PinnedFirst {
		q = q.OrderExpr("pinned DESC, last_stamp_date DESC")
	} else {
		q = q.OrderExpr("last_stamp_date DESC")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return collect(models), nil
}

func (s *Store) ListCardsByCustomer(ctx context.Context, customerID string, opts card.ListOpts) ([]*card.Card, error) {
	var models []cardModel
	q := s.sdb.NewSelect(&models).Where("customer_id = ?", customerID)
	if opts.PinnedFirst {
		q = q.OrderExpr("pinned DESC, last_stamp_date DESC")
	} else {
		q = q.OrderExpr("last_stamp_date DESC")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return collect(models), nil
}

// UpdateCard persists the card guarded by its version: the write only
// lands when the stored version still matches the one the caller read.
func (s *Store) UpdateCard(ctx context.Context, c *card.Card) error {
	updatedAt := now()
	res, err := s.sdb.NewUpdate((*cardModel)(nil)).
		Set("customer_name = ?", c.CustomerName).
		Set("customer_email = ?", c.CustomerEmail).
		Set("current_stamps = ?", c.CurrentStamps).
		Set("total_stamps = ?", c.TotalStamps).
		Set("available_rewards = ?", c.AvailableRewards).
		Set("total_redeemed = ?", c.TotalRedeemed).
		Set("pinned = ?", c.Pinned).
		Set("last_stamp_date = ?", c.LastStampDate).
		Set("history = ?", c.History).
		Set("schema = ?", c.Schema).
		Set("version = ?", c.Version+1).
		Set("updated_at = ?", updatedAt).
		Where("id = ?", c.ID).
		Where("version = ?", c.Version).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a missing card from a stale version.
		if _, err := s.GetCard(ctx, c.ID); err != nil {
			return err
		}
		return stampcard.ErrVersionConflict
	}
	c.Version++
	c.UpdatedAt = updatedAt
	return nil
}

// ==================== Helpers ====================

func collect(models []cardModel) []*card.Card {
	result := make([]*card.Card, len(models))
	for i := range models {
		result[i] = fromCardModel(&models[i])
	}
	return result
}

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports whether err is a unique-constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
