package fundingdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/chainsafe/canton-backing/pkg/fundingstore"
	mghelper "github.com/chainsafe/canton-backing/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating backings table...")
		if err := mghelper.CreateSchema(ctx, db, &fundingstore.BackingDao{}); err != nil {
			return err
		}
		// A converted interest or invite backs at most one backing.
		if err := mghelper.CreateModelUniqueIndexes(ctx, db, &fundingstore.BackingDao{},
			"source_interest_id", "source_invite_id"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &fundingstore.BackingDao{},
			"user_id", "entity_id", "campaign_id", "status", "unlock_effective_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping backings table...")
		return mghelper.DropTables(ctx, db, &fundingstore.BackingDao{})
	})
}
