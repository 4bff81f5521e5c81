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
		log.Println("creating interests table...")
		if err := mghelper.CreateSchema(ctx, db, &fundingstore.InterestDao{}); err != nil {
			return err
		}
		// One interest per backer per campaign.
		if _, err := db.NewCreateIndex().
			Model(&fundingstore.InterestDao{}).
			Index("idx_interests_user_id_campaign_id").
			Column("user_id", "campaign_id").
			Unique().
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &fundingstore.InterestDao{}, "campaign_id", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping interests table...")
		return mghelper.DropTables(ctx, db, &fundingstore.InterestDao{})
	})
}
