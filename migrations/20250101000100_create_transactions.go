package migrations

import (
	"context"
	"fmt"

	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewCreateTable().
			Model((*models.TransactionDB)(nil)).
			IfNotExists().
			ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create transactions: %w", err)
		}

		_, err = db.NewCreateIndex().
			Model((*models.TransactionDB)(nil)).
			Index("transactions_user_id_created_at_idx").
			Column("user_id", "created_at").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create transactions index: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewDropTable().
			Model((*models.TransactionDB)(nil)).
			IfExists().
			Exec(ctx)
		return err
	})
}
