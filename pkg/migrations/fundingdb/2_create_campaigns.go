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
		log.Println("creating campaigns table...")
		if err := mghelper.CreateSchema(ctx, db, &fundingstore.CampaignDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &fundingstore.CampaignDao{}, "entity_id", "status", "ends_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping campaigns table...")
		return mghelper.DropTables(ctx, db, &fundingstore.CampaignDao{})
	})
}
