// Package service implements the backing lifecycle: direct pledges,
// conversion of accepted interests and invites, locking, and the timed
// unlock flow.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/internal/metrics"
	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	"github.com/chainsafe/canton-backing/pkg/backing"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
	"github.com/chainsafe/canton-backing/pkg/interest"
	"github.com/chainsafe/canton-backing/pkg/invite"
)

var (
	ErrCampaignNotOpen   = errors.New("campaign does not accept backings")
	ErrOwnerBacking      = errors.New("entity owner cannot back own entity")
	ErrSourceNotAccepted = errors.New("conversion source is not accepted")
	ErrSourceMismatch    = errors.New("conversion source does not belong to caller")
	ErrNotBacker         = errors.New("caller does not own backing")
	ErrNotLockable       = errors.New("backing is not in a lockable status")
	ErrNotUnlockable     = errors.New("backing is not in an unlockable status")
	ErrUnlockNotDue      = errors.New("unlock period has not elapsed")
	ErrNotUnlocking      = errors.New("backing is not unlocking")
)

// Store is the narrow data-access interface for the backing service.
type Store interface {
	GetEntity(ctx context.Context, id string) (*entity.Entity, error)
	GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
	GetInterest(ctx context.Context, id string) (*interest.Interest, error)
	GetInvite(ctx context.Context, id string) (*invite.Invite, error)
	CreateBacking(ctx context.Context, b *backing.Backing) error
	GetBacking(ctx context.Context, id string) (*backing.Backing, error)
	ListBackings(ctx context.Context, opts ...fundingstore.BackingQueryOption) ([]*backing.Backing, error)
	TransitionBacking(ctx context.Context, id string, from []backing.Status, to backing.Status, times fundingstore.BackingTimes) (*backing.Backing, error)
	ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error)
}

// CreateRequest carries the fields for creating a backing. For a direct
// pledge set EntityID (and optionally CampaignID) plus Amount. To convert
// an accepted interest or invite set exactly one of InterestID or
// InviteID; the pledge scope is taken from the source record.
type CreateRequest struct {
	EntityID   string
	CampaignID string
	Amount     decimal.Decimal
	InterestID string
	InviteID   string
}

// ListFilter narrows List results. Zero-valued fields do not filter.
type ListFilter struct {
	UserID     string
	EntityID   string
	CampaignID string
	Statuses   []backing.Status
}

// Service defines the backing lifecycle operations.
type Service interface {
	Create(ctx context.Context, userID string, req *CreateRequest) (*backing.Backing, error)
	Lock(ctx context.Context, backingID, userID string) (*backing.Backing, error)
	RequestUnlock(ctx context.Context, backingID, userID string) (*backing.Backing, error)
	// CompleteWithdrawal finalizes an unlock whose effective time has
	// passed. Invoked by the sweeper; idempotent against concurrent sweeps.
	CompleteWithdrawal(ctx context.Context, backingID string) (*backing.Backing, error)
	ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error)
	Get(ctx context.Context, backingID string) (*backing.Backing, error)
	List(ctx context.Context, filter ListFilter) ([]*backing.Backing, error)
}

type backingService struct {
	store        Store
	unlockPeriod time.Duration
	logger       *zap.Logger
}

// NewService creates a new backing service. unlockPeriod is the delay
// between an unlock request and the withdrawal becoming effective.
func NewService(store Store, unlockPeriod time.Duration, logger *zap.Logger) Service {
	return &backingService{
		store:        store,
		unlockPeriod: unlockPeriod,
		logger:       logger,
	}
}

func (s *backingService) Create(ctx context.Context, userID string, req *CreateRequest) (*backing.Backing, error) {
	if req.InterestID != "" && req.InviteID != "" {
		return nil, apperrors.ValidationError(nil, "backing cannot convert both an interest and an invite")
	}

	switch {
	case req.InterestID != "":
		return s.createFromInterest(ctx, userID, req.InterestID)
	case req.InviteID != "":
		return s.createFromInvite(ctx, userID, req.InviteID, req.Amount)
	default:
		return s.createDirect(ctx, userID, req)
	}
}

func (s *backingService) createDirect(ctx context.Context, userID string, req *CreateRequest) (*backing.Backing, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ValidationError(nil, "backing amount must be positive")
	}
	if req.EntityID == "" && req.CampaignID == "" {
		return nil, apperrors.ValidationError(nil, "backing requires an entity or campaign")
	}

	entityID := req.EntityID
	if req.CampaignID != "" {
		c, err := s.loadCampaign(ctx, req.CampaignID)
		if err != nil {
			return nil, err
		}
		if c.Status != campaign.StatusOpen {
			return nil, apperrors.InvalidStateError(ErrCampaignNotOpen, "campaign is not open")
		}
		if !c.AcceptsPledge(req.Amount) {
			return nil, apperrors.ValidationError(nil, "amount is outside campaign contribution bounds")
		}
		if entityID != "" && entityID != c.EntityID {
			return nil, apperrors.ValidationError(nil, "campaign does not belong to entity")
		}
		entityID = c.EntityID
	}

	e, err := s.loadEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	if e.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError(ErrOwnerBacking, "entity owner cannot back own entity")
	}

	return s.insert(ctx, userID, entityID, req.CampaignID, req.Amount, backing.Direct())
}

func (s *backingService) createFromInterest(ctx context.Context, userID, interestID string) (*backing.Backing, error) {
	i, err := s.store.GetInterest(ctx, interestID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrInterestNotFound) {
			return nil, apperrors.NotFoundError(err, "interest not found")
		}
		return nil, fmt.Errorf("failed to load interest: %w", err)
	}

	if i.UserID != userID {
		return nil, apperrors.ForbiddenError(ErrSourceMismatch, "interest does not belong to caller")
	}
	if i.Status != interest.StatusAccepted {
		return nil, apperrors.InvalidStateError(ErrSourceNotAccepted, "interest is not accepted")
	}

	c, err := s.loadCampaign(ctx, i.CampaignID)
	if err != nil {
		return nil, err
	}

	return s.insert(ctx, userID, c.EntityID, c.ID, i.PledgeAmount, backing.FromInterest(i.ID))
}

func (s *backingService) createFromInvite(ctx context.Context, userID, inviteID string, amount decimal.Decimal) (*backing.Backing, error) {
	inv, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrInviteNotFound) {
			return nil, apperrors.NotFoundError(err, "invite not found")
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}

	if inv.RecipientUserID != userID {
		return nil, apperrors.ForbiddenError(ErrSourceMismatch, "invite was not sent to caller")
	}
	if inv.Status != invite.StatusAccepted {
		return nil, apperrors.InvalidStateError(ErrSourceNotAccepted, "invite is not accepted")
	}

	if amount.IsZero() && inv.SuggestedAmount != nil {
		amount = *inv.SuggestedAmount
	}
	if !amount.IsPositive() {
		return nil, apperrors.ValidationError(nil, "backing amount must be positive")
	}

	c, err := s.loadCampaign(ctx, inv.CampaignID)
	if err != nil {
		return nil, err
	}
	if !c.AcceptsPledge(amount) {
		return nil, apperrors.ValidationError(nil, "amount is outside campaign contribution bounds")
	}

	return s.insert(ctx, userID, c.EntityID, c.ID, amount, backing.FromInvite(inv.ID))
}

func (s *backingService) insert(ctx context.Context, userID, entityID, campaignID string, amount decimal.Decimal, origin backing.Origin) (*backing.Backing, error) {
	now := time.Now().UTC()
	b := &backing.Backing{
		ID:         uuid.NewString(),
		UserID:     userID,
		EntityID:   entityID,
		CampaignID: campaignID,
		Amount:     amount,
		Status:     backing.StatusPledged,
		Origin:     origin,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateBacking(ctx, b); err != nil {
		if errors.Is(err, fundingstore.ErrSourceNotConvertible) {
			return nil, apperrors.InvalidStateError(err, "source has already been converted")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "backing creation conflicted with a concurrent update")
		}
		return nil, fmt.Errorf("failed to save backing: %w", err)
	}

	metrics.BackingsCreated.WithLabelValues(origin.Kind().String()).Inc()
	metrics.BackingAmount.Observe(amount.InexactFloat64())

	return b, nil
}

func (s *backingService) Lock(ctx context.Context, backingID, userID string) (*backing.Backing, error) {
	b, err := s.load(ctx, backingID)
	if err != nil {
		return nil, err
	}

	e, err := s.loadEntity(ctx, b.EntityID)
	if err != nil {
		return nil, err
	}
	if !e.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError(ErrNotBacker, "entity is not owned by caller")
	}

	if b.Status != backing.StatusPledged {
		return nil, apperrors.InvalidStateError(ErrNotLockable, "only pledged backings can be locked")
	}

	locked, err := s.store.TransitionBacking(ctx, backingID,
		[]backing.Status{backing.StatusPledged}, backing.StatusLocked,
		fundingstore.BackingTimes{})
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrNotLockable, "only pledged backings can be locked")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "backing was updated concurrently")
		}
		return nil, fmt.Errorf("failed to lock backing: %w", err)
	}

	metrics.BackingTransitions.WithLabelValues(string(backing.StatusLocked)).Inc()
	return locked, nil
}

func (s *backingService) RequestUnlock(ctx context.Context, backingID, userID string) (*backing.Backing, error) {
	b, err := s.load(ctx, backingID)
	if err != nil {
		return nil, err
	}

	if b.UserID != userID {
		return nil, apperrors.ForbiddenError(ErrNotBacker, "backing does not belong to caller")
	}
	if !b.Status.Active() {
		return nil, apperrors.InvalidStateError(ErrNotUnlockable, "backing is not active")
	}

	now := time.Now().UTC()
	effective := now.Add(s.unlockPeriod)

	unlocking, err := s.store.TransitionBacking(ctx, backingID,
		[]backing.Status{backing.StatusPledged, backing.StatusLocked},
		backing.StatusUnlocking,
		fundingstore.BackingTimes{
			UnlockRequestedAt: &now,
			UnlockEffectiveAt: &effective,
		})
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrNotUnlockable, "backing is not active")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "backing was updated concurrently")
		}
		return nil, fmt.Errorf("failed to request unlock: %w", err)
	}

	metrics.BackingTransitions.WithLabelValues(string(backing.StatusUnlocking)).Inc()
	return unlocking, nil
}

func (s *backingService) CompleteWithdrawal(ctx context.Context, backingID string) (*backing.Backing, error) {
	b, err := s.load(ctx, backingID)
	if err != nil {
		return nil, err
	}

	if b.Status != backing.StatusUnlocking {
		return nil, apperrors.InvalidStateError(ErrNotUnlocking, "backing is not unlocking")
	}
	now := time.Now().UTC()
	if b.UnlockEffectiveAt == nil || now.Before(*b.UnlockEffectiveAt) {
		return nil, apperrors.InvalidStateError(ErrUnlockNotDue, "unlock period has not elapsed")
	}

	withdrawn, err := s.store.TransitionBacking(ctx, backingID,
		[]backing.Status{backing.StatusUnlocking}, backing.StatusWithdrawn,
		fundingstore.BackingTimes{UnlockedAt: &now})
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrNotUnlocking, "backing is not unlocking")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "backing was updated concurrently")
		}
		return nil, fmt.Errorf("failed to complete withdrawal: %w", err)
	}

	metrics.BackingTransitions.WithLabelValues(string(backing.StatusWithdrawn)).Inc()
	return withdrawn, nil
}

func (s *backingService) ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error) {
	ready, err := s.store.ListUnlockingReady(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list ready unlocks: %w", err)
	}
	return ready, nil
}

func (s *backingService) Get(ctx context.Context, backingID string) (*backing.Backing, error) {
	return s.load(ctx, backingID)
}

func (s *backingService) List(ctx context.Context, filter ListFilter) ([]*backing.Backing, error) {
	var opts []fundingstore.BackingQueryOption
	if filter.UserID != "" {
		opts = append(opts, fundingstore.WithUserID(filter.UserID))
	}
	if filter.EntityID != "" {
		opts = append(opts, fundingstore.WithEntityID(filter.EntityID))
	}
	if filter.CampaignID != "" {
		opts = append(opts, fundingstore.WithCampaignID(filter.CampaignID))
	}
	if len(filter.Statuses) > 0 {
		opts = append(opts, fundingstore.WithStatuses(filter.Statuses...))
	}

	backings, err := s.store.ListBackings(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to list backings: %w", err)
	}
	return backings, nil
}

func (s *backingService) load(ctx context.Context, backingID string) (*backing.Backing, error) {
	b, err := s.store.GetBacking(ctx, backingID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrBackingNotFound) {
			return nil, apperrors.NotFoundError(err, "backing not found")
		}
		return nil, fmt.Errorf("failed to load backing: %w", err)
	}
	return b, nil
}

func (s *backingService) loadEntity(ctx context.Context, id string) (*entity.Entity, error) {
	e, err := s.store.GetEntity(ctx, id)
	if err != nil {
		if errors.Is(err, fundingstore.ErrEntityNotFound) {
			return nil, apperrors.NotFoundError(err, "entity not found")
		}
		return nil, fmt.Errorf("failed to load entity: %w", err)
	}
	return e, nil
}

func (s *backingService) loadCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	c, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		if errors.Is(err, fundingstore.ErrCampaignNotFound) {
			return nil, apperrors.NotFoundError(err, "campaign not found")
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	return c, nil
}
