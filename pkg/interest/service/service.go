// Package service implements the interest workflow: backers register
// pledges against open campaigns, entity owners review them, and
// submitters may withdraw while review is still possible.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
	"github.com/chainsafe/canton-backing/pkg/interest"
)

var (
	ErrCampaignNotOpen  = errors.New("campaign is not open for interests")
	ErrOwnerInterest    = errors.New("entity owner cannot register interest in own campaign")
	ErrNotReviewable    = errors.New("interest is not pending review")
	ErrNotWithdrawable  = errors.New("interest can no longer be withdrawn")
	ErrNotSubmitter     = errors.New("caller did not submit interest")
	ErrNotCampaignOwner = errors.New("caller does not own campaign entity")
)

// Store is the narrow data-access interface for the interest service.
type Store interface {
	GetEntity(ctx context.Context, id string) (*entity.Entity, error)
	GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
	CreateInterest(ctx context.Context, i *interest.Interest) error
	GetInterest(ctx context.Context, id string) (*interest.Interest, error)
	GetInterestByUserAndCampaign(ctx context.Context, userID, campaignID string) (*interest.Interest, error)
	ListInterestsByCampaign(ctx context.Context, campaignID string) ([]*interest.Interest, error)
	TransitionInterest(ctx context.Context, id string, from []interest.Status, to interest.Status, note string, at time.Time) (*interest.Interest, error)
}

// RegisterRequest carries the fields for registering an interest.
type RegisterRequest struct {
	CampaignID   string
	PledgeAmount decimal.Decimal
	Message      string
}

// ReviewDecision is the entity owner's verdict on a pending interest.
type ReviewDecision string

const (
	DecisionAccept  ReviewDecision = "ACCEPT"
	DecisionDecline ReviewDecision = "DECLINE"
)

// Service defines the interest workflow operations.
type Service interface {
	Register(ctx context.Context, userID string, req *RegisterRequest) (*interest.Interest, error)
	Review(ctx context.Context, interestID, reviewerID string, decision ReviewDecision, note string) (*interest.Interest, error)
	Withdraw(ctx context.Context, interestID, userID string) (*interest.Interest, error)
	Get(ctx context.Context, interestID string) (*interest.Interest, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*interest.Interest, error)
}

type interestService struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new interest service
func NewService(store Store, logger *zap.Logger) Service {
	return &interestService{
		store:  store,
		logger: logger,
	}
}

func (s *interestService) Register(ctx context.Context, userID string, req *RegisterRequest) (*interest.Interest, error) {
	if !req.PledgeAmount.IsPositive() {
		return nil, apperrors.ValidationError(nil, "pledge amount must be positive")
	}

	c, err := s.store.GetCampaign(ctx, req.CampaignID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrCampaignNotFound) {
			return nil, apperrors.NotFoundError(err, "campaign not found")
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if c.Status != campaign.StatusOpen {
		return nil, apperrors.InvalidStateError(ErrCampaignNotOpen, "campaign is not open")
	}

	e, err := s.store.GetEntity(ctx, c.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign entity: %w", err)
	}
	if e.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError(ErrOwnerInterest, "entity owner cannot back own campaign")
	}

	if !c.AcceptsPledge(req.PledgeAmount) {
		return nil, apperrors.ValidationError(nil, "pledge amount is outside campaign contribution bounds")
	}

	// The unique index still backstops a racing insert.
	if _, err := s.store.GetInterestByUserAndCampaign(ctx, userID, c.ID); err == nil {
		return nil, apperrors.ValidationError(fundingstore.ErrDuplicateInterest, "interest already registered for campaign")
	} else if !errors.Is(err, fundingstore.ErrInterestNotFound) {
		return nil, fmt.Errorf("failed to check existing interest: %w", err)
	}

	now := time.Now().UTC()
	i := &interest.Interest{
		ID:           uuid.NewString(),
		UserID:       userID,
		CampaignID:   c.ID,
		PledgeAmount: req.PledgeAmount,
		Status:       interest.StatusPending,
		Message:      req.Message,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateInterest(ctx, i); err != nil {
		if errors.Is(err, fundingstore.ErrDuplicateInterest) {
			return nil, apperrors.ValidationError(err, "interest already registered for campaign")
		}
		return nil, fmt.Errorf("failed to save interest: %w", err)
	}

	return i, nil
}

func (s *interestService) Review(ctx context.Context, interestID, reviewerID string, decision ReviewDecision, note string) (*interest.Interest, error) {
	var to interest.Status
	switch decision {
	case DecisionAccept:
		to = interest.StatusAccepted
	case DecisionDecline:
		to = interest.StatusDeclined
	default:
		return nil, apperrors.ValidationError(nil, "unknown review decision")
	}

	i, err := s.load(ctx, interestID)
	if err != nil {
		return nil, err
	}

	if err := s.requireCampaignOwner(ctx, i.CampaignID, reviewerID); err != nil {
		return nil, err
	}

	if i.Status != interest.StatusPending {
		return nil, apperrors.InvalidStateError(ErrNotReviewable, "interest has already been reviewed")
	}

	reviewed, err := s.store.TransitionInterest(ctx, interestID,
		[]interest.Status{interest.StatusPending}, to, note, time.Now().UTC())
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrNotReviewable, "interest has already been reviewed")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "interest was updated concurrently")
		}
		return nil, fmt.Errorf("failed to review interest: %w", err)
	}

	return reviewed, nil
}

func (s *interestService) Withdraw(ctx context.Context, interestID, userID string) (*interest.Interest, error) {
	i, err := s.load(ctx, interestID)
	if err != nil {
		return nil, err
	}

	if i.UserID != userID {
		return nil, apperrors.ForbiddenError(ErrNotSubmitter, "interest was not submitted by caller")
	}
	if !i.Status.Withdrawable() {
		return nil, apperrors.InvalidStateError(ErrNotWithdrawable, "interest can no longer be withdrawn")
	}

	withdrawn, err := s.store.TransitionInterest(ctx, interestID,
		[]interest.Status{interest.StatusPending, interest.StatusAccepted},
		interest.StatusWithdrawn, "", time.Now().UTC())
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrNotWithdrawable, "interest can no longer be withdrawn")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "interest was updated concurrently")
		}
		return nil, fmt.Errorf("failed to withdraw interest: %w", err)
	}

	return withdrawn, nil
}

func (s *interestService) Get(ctx context.Context, interestID string) (*interest.Interest, error) {
	return s.load(ctx, interestID)
}

func (s *interestService) ListByCampaign(ctx context.Context, campaignID string) ([]*interest.Interest, error) {
	interests, err := s.store.ListInterestsByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	return interests, nil
}

func (s *interestService) load(ctx context.Context, interestID string) (*interest.Interest, error) {
	i, err := s.store.GetInterest(ctx, interestID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrInterestNotFound) {
			return nil, apperrors.NotFoundError(err, "interest not found")
		}
		return nil, fmt.Errorf("failed to load interest: %w", err)
	}
	return i, nil
}

func (s *interestService) requireCampaignOwner(ctx context.Context, campaignID, userID string) error {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("failed to load campaign: %w", err)
	}
	e, err := s.store.GetEntity(ctx, c.EntityID)
	if err != nil {
		return fmt.Errorf("failed to load campaign entity: %w", err)
	}
	if !e.OwnedBy(userID) {
		return apperrors.ForbiddenError(ErrNotCampaignOwner, "entity is not owned by caller")
	}
	return nil
}
