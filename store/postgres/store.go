// Package postgres provides a PostgreSQL-backed implementation of the
// stampcard store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	stampcard "github.com/xraph/stampcard"
	"github.com/xraph/stampcard/card"
	cardstore "github.com/xraph/stampcard/store"
)

// compile-time interface check
var _ cardstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("stampcard/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("stampcard/postgres: migration failed: %w", err)
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
	_, err := s.pg.NewInsert(m).Exec(ctx)
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
	err := s.pg.NewSelect(m).
		Where("id = $1", cardID).
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
	err := s.pg.NewSelect(m).
		Where("customer_id = $1", customerID).
		Where("cafe_user_id = $2", cafeUserID).
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
	q := s.pg.NewSelect(&models).Where("cafe_user_id = $1", cafeUserID)
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
	q := s.pg.NewSelect(&models).Where("customer_id = $1", customerID)
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
	res, err := s.pg.NewUpdate((*cardModel)(nil)).
		Set("customer_name = $1", c.CustomerName).
		Set("customer_email = $2", c.CustomerEmail).
		Set("current_stamps = $3", c.CurrentStamps).
		Set("total_stamps = $4", c.TotalStamps).
		Set("available_rewards = $5", c.AvailableRewards).
		Set("total_redeemed = $6", c.TotalRedeemed).
		Set("pinned = $7", c.Pinned).
		Set("last_stamp_date = $8", c.LastStampDate).
		Set("history = $9", c.History).
		Set("schema = $10", c.Schema).
		Set("version = $11", c.Version+1).
		Set("updated_at = $12", updatedAt).
		Where("id = $13", c.ID).
		Where("version = $14", c.Version).
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

// isUniqueViolation reports whether err is a unique-constraint failure
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}
