package fundingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/canton-backing/pkg/interest"
)

func (s *pgStore) CreateInterest(ctx context.Context, i *interest.Interest) error {
	dao := toInterestDao(i)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateInterest
		}
		return fmt.Errorf("failed to create interest: %w", err)
	}

	return nil
}

func (s *pgStore) GetInterest(ctx context.Context, id string) (*interest.Interest, error) {
	dao := new(InterestDao)
	err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInterestNotFound
		}
		return nil, fmt.Errorf("failed to get interest: %w", err)
	}
	return toInterest(dao)
}

func (s *pgStore) GetInterestByUserAndCampaign(ctx context.Context, userID, campaignID string) (*interest.Interest, error) {
	dao := new(InterestDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Where("campaign_id = ?", campaignID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInterestNotFound
		}
		return nil, fmt.Errorf("failed to get interest by user and campaign: %w", err)
	}
	return toInterest(dao)
}

func (s *pgStore) ListInterestsByCampaign(ctx context.Context, campaignID string) ([]*interest.Interest, error) {
	var daos []InterestDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}

	interests := make([]*interest.Interest, len(daos))
	for i := range daos {
		it, err := toInterest(&daos[i])
		if err != nil {
			return nil, err
		}
		interests[i] = it
	}
	return interests, nil
}

func (s *pgStore) TransitionInterest(ctx context.Context, id string, from []interest.Status, to interest.Status, note string, at time.Time) (*interest.Interest, error) {
	var out *interest.Interest
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(InterestDao)
		err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInterestNotFound
			}
			return fmt.Errorf("failed to lock interest: %w", err)
		}

		if !slices.Contains(from, interest.Status(dao.Status)) {
			return ErrStaleStatus
		}

		dao.Status = string(to)
		dao.UpdatedAt = at
		if to == interest.StatusAccepted || to == interest.StatusDeclined {
			dao.ReviewNote = strPtr(note)
			dao.ReviewedAt = &at
		}

		_, err = tx.NewUpdate().
			Model(dao).
			Column("status", "review_note", "reviewed_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to transition interest: %w", err)
		}

		out, err = toInterest(dao)
		return err
	})
	if err != nil {
		return nil, mapTxErr(err)
	}
	return out, nil
}
