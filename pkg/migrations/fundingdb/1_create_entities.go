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
		log.Println("creating entities table...")
		if err := mghelper.CreateSchema(ctx, db, &fundingstore.EntityDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &fundingstore.EntityDao{}, "claim_status", "owner_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping entities table...")
		return mghelper.DropTables(ctx, db, &fundingstore.EntityDao{})
	})
}
