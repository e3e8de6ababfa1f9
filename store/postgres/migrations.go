package postgres

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
    current_stamps    INT NOT NULL DEFAULT 0,
    total_stamps      INT NOT NULL DEFAULT 0,
    available_rewards INT NOT NULL DEFAULT 0,
    total_redeemed    INT NOT NULL DEFAULT 0,
    pinned            BOOLEAN NOT NULL DEFAULT FALSE,
    issue_date        TIMESTAMPTZ,
    last_stamp_date   TIMESTAMPTZ,
    history           TEXT NOT NULL DEFAULT '[]',
    schema            INT NOT NULL DEFAULT 0,
    version           BIGINT NOT NULL DEFAULT 0,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
