package fundingstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/canton-backing/pkg/invite"
)

func (s *pgStore) CreateInvite(ctx context.Context, inv *invite.Invite) error {
	dao := toInviteDao(inv)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}

	return nil
}

func (s *pgStore) GetInvite(ctx context.Context, id string) (*invite.Invite, error) {
	dao := new(InviteDao)
	err := s.db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return toInvite(dao)
}

func (s *pgStore) ListInvitesByCampaign(ctx context.Context, campaignID string) ([]*invite.Invite, error) {
	var daos []InviteDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}

	invites := make([]*invite.Invite, len(daos))
	for i := range daos {
		inv, err := toInvite(&daos[i])
		if err != nil {
			return nil, err
		}
		invites[i] = inv
	}
	return invites, nil
}

func (s *pgStore) TransitionInvite(ctx context.Context, id string, from []invite.Status, to invite.Status, at time.Time) (*invite.Invite, error) {
	var out *invite.Invite
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		dao := new(InviteDao)
		err := tx.NewSelect().Model(dao).Where("id = ?", id).For("UPDATE").Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrInviteNotFound
			}
			return fmt.Errorf("failed to lock invite: %w", err)
		}

		if !slices.Contains(from, invite.Status(dao.Status)) {
			return ErrStaleStatus
		}

		dao.Status = string(to)
		dao.UpdatedAt = at
		if to == invite.StatusAccepted || to == invite.StatusDeclined {
			dao.RespondedAt = &at
		}

		_, err = tx.NewUpdate().
			Model(dao).
			Column("status", "responded_at", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to transition invite: %w", err)
		}

		out, err = toInvite(dao)
		return err
	})
	if err != nil {
		return nil, mapTxErr(err)
	}
	return out, nil
}
