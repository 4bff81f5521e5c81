package fundingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/chainsafe/canton-backing/pkg/backing"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the funding store
func NewStore(db *bun.DB) Store {
	return &pgStore{db: db}
}

// activeStatuses are the backing statuses that count toward aggregates.
var activeStatuses = []string{string(backing.StatusPledged), string(backing.StatusLocked)}

// sqlState extracts the PostgreSQL error code, if any.
func sqlState(err error) string {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return sqlState(err) == "23505"
}

// isSerializationFailure covers serialization failures and deadlocks, both
// of which are safe to retry.
func isSerializationFailure(err error) bool {
	code := sqlState(err)
	return code == "40001" || code == "40P01"
}

func mapTxErr(err error) error {
	if isSerializationFailure(err) {
		return fmt.Errorf("%w: %s", ErrSerialization, err.Error())
	}
	return err
}

func (s *pgStore) CreateEntity(ctx context.Context, e *entity.Entity) error {
	dao := toEntityDao(e)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateParty
		}
		return fmt.Errorf("failed to create entity: %w", err)
	}

	return nil
}

func (s *pgStore) GetEntity(ctx context.Context, id string) (*entity.Entity, error) {
	dao := new(EntityDao)
	err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return toEntity(dao)
}

func (s *pgStore) GetEntityByPartyID(ctx context.Context, partyID string) (*entity.Entity, error) {
	dao := new(EntityDao)
	err := s.db.NewSelect().Model(dao).Where("party_id = ?", partyID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntityNotFound
		}
		return nil, fmt.Errorf("failed to get entity by party: %w", err)
	}
	return toEntity(dao)
}

func (s *pgStore) ListEntities(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error) {
	var daos []EntityDao
	query := s.db.NewSelect().Model(&daos).Order("created_at DESC")
	if entityType != "" {
		query = query.Where("type = ?", string(entityType))
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	entities := make([]*entity.Entity, len(daos))
	for i := range daos {
		e, err := toEntity(&daos[i])
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}

func (s *pgStore) ClaimEntity(ctx context.Context, id, ownerID string, claimedAt time.Time) (*entity.Entity, error) {
	var out *entity.Entity
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(EntityDao)
		err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrEntityNotFound
			}
			return fmt.Errorf("failed to lock entity: %w", err)
		}

		if !entity.ClaimStatus(dao.ClaimStatus).Claimable() {
			return ErrStaleStatus
		}

		dao.ClaimStatus = string(entity.ClaimClaimed)
		dao.OwnerID = &ownerID
		dao.ClaimedAt = &claimedAt
		dao.UpdatedAt = claimedAt

		_, err = tx.NewUpdate().
			Model(dao).
			Column("claim_status", "owner_id", "claimed_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to claim entity: %w", err)
		}

		out, err = toEntity(dao)
		return err
	})
	if err != nil {
		return nil, mapTxErr(err)
	}
	return out, nil
}

func (s *pgStore) UpdateEntity(ctx context.Context, e *entity.Entity) error {
	dao := toEntityDao(e)
	dao.UpdatedAt = time.Now().UTC()

	res, err := s.db.NewUpdate().
		Model(dao).
		Column("name", "description", "target_amount", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return ErrEntityNotFound
	}
	return nil
}

// recomputeEntityAmountTx re-derives the entity aggregate inside the given
// transaction, holding a row lock on the entity for the duration so
// concurrent recomputations on the same scope serialize.
func recomputeEntityAmountTx(ctx context.Context, tx bun.IDB, id string) (string, error) {
	exists, err := tx.NewSelect().
		Model((*EntityDao)(nil)).
		Where("id = ?", id).
		For("UPDATE").
		Exists(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to lock entity: %w", err)
	}
	if !exists {
		return "", ErrEntityNotFound
	}

	var sum string
	err = tx.NewSelect().
		Model((*BackingDao)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)::TEXT").
		Where("entity_id = ?", id).
		Where("status IN (?)", bun.In(activeStatuses)).
		Scan(ctx, &sum)
	if err != nil {
		return "", fmt.Errorf("failed to sum entity backings: %w", err)
	}

	_, err = tx.NewUpdate().
		Model((*EntityDao)(nil)).
		Set("current_amount = ?::DECIMAL", sum).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to write entity aggregate: %w", err)
	}

	return sum, nil
}

// recomputeCampaignAmountTx mirrors recomputeEntityAmountTx for a campaign scope.
func recomputeCampaignAmountTx(ctx context.Context, tx bun.IDB, id string) (string, error) {
	exists, err := tx.NewSelect().
		Model((*CampaignDao)(nil)).
		Where("id = ?", id).
		For("UPDATE").
		Exists(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to lock campaign: %w", err)
	}
	if !exists {
		return "", ErrCampaignNotFound
	}

	var sum string
	err = tx.NewSelect().
		Model((*BackingDao)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)::TEXT").
		Where("campaign_id = ?", id).
		Where("status IN (?)", bun.In(activeStatuses)).
		Scan(ctx, &sum)
	if err != nil {
		return "", fmt.Errorf("failed to sum campaign backings: %w", err)
	}

	_, err = tx.NewUpdate().
		Model((*CampaignDao)(nil)).
		Set("current_amount = ?::DECIMAL", sum).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to write campaign aggregate: %w", err)
	}

	return sum, nil
}

func (s *pgStore) RecomputeEntityAmount(ctx context.Context, id string) (string, error) {
	var sum string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		sum, err = recomputeEntityAmountTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return "", mapTxErr(err)
	}
	return sum, nil
}

func (s *pgStore) RecomputeCampaignAmount(ctx context.Context, id string) (string, error) {
	var sum string
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		sum, err = recomputeCampaignAmountTx(ctx, tx, id)
		return err
	})
	if err != nil {
		return "", mapTxErr(err)
	}
	return sum, nil
}

func (s *pgStore) CreateCampaign(ctx context.Context, c *campaign.Campaign) error {
	dao := toCampaignDao(c)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return nil
}

func (s *pgStore) GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	dao := new(CampaignDao)
	err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return toCampaign(dao)
}

func (s *pgStore) ListCampaignsByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error) {
	var daos []CampaignDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("entity_id = ?", entityID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}

	campaigns := make([]*campaign.Campaign, len(daos))
	for i := range daos {
		c, err := toCampaign(&daos[i])
		if err != nil {
			return nil, err
		}
		campaigns[i] = c
	}
	return campaigns, nil
}

func (s *pgStore) TransitionCampaign(ctx context.Context, id string, from, to campaign.Status, startsAt *time.Time) (*campaign.Campaign, error) {
	var out *campaign.Campaign
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(CampaignDao)
		err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCampaignNotFound
			}
			return fmt.Errorf("failed to lock campaign: %w", err)
		}

		if campaign.Status(dao.Status) != from {
			return ErrStaleStatus
		}

		dao.Status = string(to)
		if startsAt != nil {
			dao.StartsAt = startsAt
		}
		dao.UpdatedAt = time.Now().UTC()

		_, err = tx.NewUpdate().
			Model(dao).
			Column("status", "starts_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to transition campaign: %w", err)
		}

		out, err = toCampaign(dao)
		return err
	})
	if err != nil {
		return nil, mapTxErr(err)
	}
	return out, nil
}

func (s *pgStore) CloseCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	var out *campaign.Campaign
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(CampaignDao)
		err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCampaignNotFound
			}
			return fmt.Errorf("failed to lock campaign: %w", err)
		}

		if campaign.Status(dao.Status).Terminal() {
			return ErrStaleStatus
		}

		dao.Status = string(campaign.StatusClosed)
		dao.UpdatedAt = time.Now().UTC()

		_, err = tx.NewUpdate().
			Model(dao).
			Column("status", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to close campaign: %w", err)
		}

		out, err = toCampaign(dao)
		return err
	})
	if err != nil {
		return nil, mapTxErr(err)
	}
	return out, nil
}

func (s *pgStore) CloseDueCampaigns(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	err := s.db.NewUpdate().
		Model((*CampaignDao)(nil)).
		Set("status = ?", string(campaign.StatusClosed)).
		Set("updated_at = NOW()").
		Where("status = ?", string(campaign.StatusOpen)).
		Where("ends_at IS NOT NULL AND ends_at <= ?", now).
		Returning("id").
		Scan(ctx, &ids)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to close due campaigns: %w", err)
	}
	return ids, nil
}
