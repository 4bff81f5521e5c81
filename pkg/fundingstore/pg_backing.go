package fundingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/canton-backing/pkg/backing"
	"github.com/chainsafe/canton-backing/pkg/interest"
	"github.com/chainsafe/canton-backing/pkg/invite"
)

// convertInterestTx flips the source interest to CONVERTED. The interest
// must currently be ACCEPTED; the row is locked first so a concurrent
// conversion of the same source serializes and exactly one wins.
func convertInterestTx(ctx context.Context, tx bun.Tx, interestID string, at time.Time) error {
	dao := new(InterestDao)
	err := tx.NewSelect().Model(dao).Where("id = ?", interestID).For("UPDATE").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInterestNotFound
		}
		return fmt.Errorf("failed to lock source interest: %w", err)
	}

	if interest.Status(dao.Status) != interest.StatusAccepted {
		return ErrSourceNotConvertible
	}

	_, err = tx.NewUpdate().
		Model((*InterestDao)(nil)).
		Set("status = ?", string(interest.StatusConverted)).
		Set("updated_at = ?", at).
		Where("id = ?", interestID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to convert interest: %w", err)
	}
	return nil
}

// convertInviteTx mirrors convertInterestTx for an invite source.
func convertInviteTx(ctx context.Context, tx bun.Tx, inviteID string, at time.Time) error {
	dao := new(InviteDao)
	err := tx.NewSelect().Model(dao).Where("id = ?", inviteID).For("UPDATE").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInviteNotFound
		}
		return fmt.Errorf("failed to lock source invite: %w", err)
	}

	if invite.Status(dao.Status) != invite.StatusAccepted {
		return ErrSourceNotConvertible
	}

	_, err = tx.NewUpdate().
		Model((*InviteDao)(nil)).
		Set("status = ?", string(invite.StatusConverted)).
		Set("updated_at = ?", at).
		Where("id = ?", inviteID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to convert invite: %w", err)
	}
	return nil
}

func (s *pgStore) CreateBacking(ctx context.Context, b *backing.Backing) error {
	dao := toBackingDao(b)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		switch b.Origin.Kind() {
		case backing.OriginInterest:
			if err := convertInterestTx(ctx, tx, b.Origin.SourceID(), b.CreatedAt); err != nil {
				return err
			}
		case backing.OriginInvite:
			if err := convertInviteTx(ctx, tx, b.Origin.SourceID(), b.CreatedAt); err != nil {
				return err
			}
		}

		if _, err := tx.NewInsert().Model(dao).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create backing: %w", err)
		}

		// Recompute inside the same transaction so invariants hold on commit,
		// not eventually.
		if _, err := recomputeEntityAmountTx(ctx, tx, b.EntityID); err != nil {
			return err
		}
		if b.CampaignID != "" {
			if _, err := recomputeCampaignAmountTx(ctx, tx, b.CampaignID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return mapTxErr(err)
	}
	return nil
}

func (s *pgStore) GetBacking(ctx context.Context, id string) (*backing.Backing, error) {
	dao := new(BackingDao)
	err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBackingNotFound
		}
		return nil, fmt.Errorf("failed to get backing: %w", err)
	}
	return toBacking(dao)
}

func (s *pgStore) ListBackings(ctx context.Context, opts ...BackingQueryOption) ([]*backing.Backing, error) {
	options := &BackingQueryOptions{}
	for _, opt := range opts {
		opt(options)
	}

	var daos []BackingDao
	query := s.db.NewSelect().Model(&daos).Order("created_at ASC")

	if options.UserID != nil {
		query = query.Where("user_id = ?", *options.UserID)
	}
	if options.EntityID != nil {
		query = query.Where("entity_id = ?", *options.EntityID)
	}
	if options.CampaignID != nil {
		query = query.Where("campaign_id = ?", *options.CampaignID)
	}
	if len(options.Statuses) > 0 {
		statuses := make([]string, len(options.Statuses))
		for i, st := range options.Statuses {
			statuses[i] = string(st)
		}
		query = query.Where("status IN (?)", bun.In(statuses))
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list backings: %w", err)
	}

	backings := make([]*backing.Backing, len(daos))
	for i := range daos {
		b, err := toBacking(&daos[i])
		if err != nil {
			return nil, err
		}
		backings[i] = b
	}
	return backings, nil
}

func (s *pgStore) TransitionBacking(ctx context.Context, id string, from []backing.Status, to backing.Status, times BackingTimes) (*backing.Backing, error) {
	var out *backing.Backing
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(BackingDao)
		err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBackingNotFound
			}
			return fmt.Errorf("failed to lock backing: %w", err)
		}

		current := backing.Status(dao.Status)
		if !slices.Contains(from, current) {
			return ErrStaleStatus
		}

		dao.Status = string(to)
		dao.UpdatedAt = time.Now().UTC()
		if times.UnlockRequestedAt != nil {
			dao.UnlockRequestedAt = times.UnlockRequestedAt
		}
		if times.UnlockEffectiveAt != nil {
			dao.UnlockEffectiveAt = times.UnlockEffectiveAt
		}
		if times.UnlockedAt != nil {
			dao.UnlockedAt = times.UnlockedAt
		}

		_, err = tx.NewUpdate().
			Model(dao).
			Column("status", "unlock_requested_at", "unlock_effective_at", "unlocked_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to transition backing: %w", err)
		}

		// Aggregates only change when the backing enters or leaves the
		// active set.
		if current.Active() != to.Active() {
			if _, err := recomputeEntityAmountTx(ctx, tx, dao.EntityID); err != nil {
				return err
			}
			if dao.CampaignID != nil {
				if _, err := recomputeCampaignAmountTx(ctx, tx, *dao.CampaignID); err != nil {
					return err
				}
			}
		}

		out, err = toBacking(dao)
		return err
	})
	if err != nil {
		return nil, mapTxErr(err)
	}
	return out, nil
}

func (s *pgStore) ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error) {
	var daos []BackingDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("status = ?", string(backing.StatusUnlocking)).
		Where("unlock_effective_at IS NOT NULL AND unlock_effective_at <= ?", now).
		Order("unlock_effective_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unlocking backings: %w", err)
	}

	backings := make([]*backing.Backing, len(daos))
	for i := range daos {
		b, err := toBacking(&daos[i])
		if err != nil {
			return nil, err
		}
		backings[i] = b
	}
	return backings, nil
}
