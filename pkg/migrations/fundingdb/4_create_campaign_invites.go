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
		log.Println("creating campaign_invites table...")
		if err := mghelper.CreateSchema(ctx, db, &fundingstore.InviteDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &fundingstore.InviteDao{}, "campaign_id", "recipient_user_id", "status")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping campaign_invites table...")
		return mghelper.DropTables(ctx, db, &fundingstore.InviteDao{})
	})
}
