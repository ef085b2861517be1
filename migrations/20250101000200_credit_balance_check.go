package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `ALTER TABLE users
			ADD CONSTRAINT users_credit_balance_non_negative CHECK (credit_balance >= 0)`)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.ExecContext(ctx, `ALTER TABLE users
			DROP CONSTRAINT IF EXISTS users_credit_balance_non_negative`)
		return err
	})
}
