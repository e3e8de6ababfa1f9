package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Stampcard store.
var Migrations = migrate.NewGroup("stampcard")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_stampcard_cards",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stampcard_cards (
    id                TEXT PRIMARY KEY,
    customer_id       TEXT NOT NULL DEFAULT '',
    customer_name     TEXT NOT NULL DEFAULT '',
    customer_email    TEXT NOT NULL DEFAULT '',
    cafe_user_id      TEXT NOT NULL DEFAULT '',
    current_stamps    INTEGER NOT NULL DEFAULT 0,
    total_stamps      INTEGER NOT NULL DEFAULT 0,
    available_rewards INTEGER NOT NULL DEFAULT 0,
    total_redeemed    INTEGER NOT NULL DEFAULT 0,
    pinned            INTEGER NOT NULL DEFAULT 0,
    issue_date        TIMESTAMP,
    last_stamp_date   TIMESTAMP,
    history           TEXT NOT NULL DEFAULT '[]',
    schema            INTEGER NOT NULL DEFAULT 0,
    version           INTEGER NOT NULL DEFAULT 0,
    created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_stampcard_cards_owner ON stampcard_cards (customer_id, cafe_user_id);
CREATE INDEX IF NOT EXISTS idx_stampcard_cards_cafe ON stampcard_cards (cafe_user_id, last_stamp_date);
CREATE INDEX IF NOT EXISTS idx_stampcard_cards_customer ON stampcard_cards (customer_id, last_stamp_date);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS stampcard_cards`)
				return err
			},
		},
	)
}
