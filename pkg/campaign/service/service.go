// Package service implements the campaign workflow: creation, publishing
// and closing of funding rounds scoped to an entity.
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
)

var (
	ErrNotEntityOwner  = errors.New("caller does not own campaign entity")
	ErrNotPublishable  = errors.New("campaign is not in draft")
	ErrAlreadyTerminal = errors.New("campaign already closed or cancelled")
)

// Store is the narrow data-access interface for the campaign service.
type Store interface {
	GetEntity(ctx context.Context, id string) (*entity.Entity, error)
	CreateCampaign(ctx context.Context, c *campaign.Campaign) error
	GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
	ListCampaignsByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error)
	TransitionCampaign(ctx context.Context, id string, from, to campaign.Status, startsAt *time.Time) (*campaign.Campaign, error)
	CloseCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
}

// CreateRequest carries the fields for creating a draft campaign.
type CreateRequest struct {
	EntityID        string
	Name            string
	Description     string
	TargetAmount    decimal.Decimal
	MinContribution *decimal.Decimal
	MaxContribution *decimal.Decimal
	EndsAt          *time.Time
}

// Service defines the campaign workflow operations.
type Service interface {
	Create(ctx context.Context, userID string, req *CreateRequest) (*campaign.Campaign, error)
	Publish(ctx context.Context, campaignID, userID string) (*campaign.Campaign, error)
	Close(ctx context.Context, campaignID, userID string) (*campaign.Campaign, error)
	Get(ctx context.Context, campaignID string) (*campaign.Campaign, error)
	ListByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error)
}

type campaignService struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new campaign service
func NewService(store Store, logger *zap.Logger) Service {
	return &campaignService{
		store:  store,
		logger: logger,
	}
}

func (s *campaignService) Create(ctx context.Context, userID string, req *CreateRequest) (*campaign.Campaign, error) {
	if req.Name == "" {
		return nil, apperrors.ValidationError(nil, "campaign name is required")
	}
	if !req.TargetAmount.IsPositive() {
		return nil, apperrors.ValidationError(nil, "target amount must be positive")
	}
	if req.MinContribution != nil && !req.MinContribution.IsPositive() {
		return nil, apperrors.ValidationError(nil, "minimum contribution must be positive")
	}
	if req.MaxContribution != nil && !req.MaxContribution.IsPositive() {
		return nil, apperrors.ValidationError(nil, "maximum contribution must be positive")
	}
	if req.MinContribution != nil && req.MaxContribution != nil &&
		req.MinContribution.GreaterThan(*req.MaxContribution) {
		return nil, apperrors.ValidationError(nil, "minimum contribution exceeds maximum")
	}
	if req.EndsAt != nil && !req.EndsAt.After(time.Now()) {
		return nil, apperrors.ValidationError(nil, "campaign end must be in the future")
	}

	e, err := s.store.GetEntity(ctx, req.EntityID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrEntityNotFound) {
			return nil, apperrors.NotFoundError(err, "entity not found")
		}
		return nil, fmt.Errorf("failed to load entity: %w", err)
	}
	if !e.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError(ErrNotEntityOwner, "entity is not owned by caller")
	}

	now := time.Now().UTC()
	c := &campaign.Campaign{
		ID:              uuid.NewString(),
		EntityID:        e.ID,
		Name:            req.Name,
		Description:     req.Description,
		Status:          campaign.StatusDraft,
		TargetAmount:    req.TargetAmount,
		CurrentAmount:   decimal.Zero,
		MinContribution: req.MinContribution,
		MaxContribution: req.MaxContribution,
		EndsAt:          req.EndsAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.store.CreateCampaign(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	return c, nil
}

func (s *campaignService) Publish(ctx context.Context, campaignID, userID string) (*campaign.Campaign, error) {
	c, err := s.loadOwned(ctx, campaignID, userID)
	if err != nil {
		return nil, err
	}
	if c.Status != campaign.StatusDraft {
		return nil, apperrors.InvalidStateError(ErrNotPublishable, "only draft campaigns can be published")
	}

	startsAt := c.StartsAt
	if startsAt == nil {
		now := time.Now().UTC()
		startsAt = &now
	}

	published, err := s.store.TransitionCampaign(ctx, campaignID, campaign.StatusDraft, campaign.StatusOpen, startsAt)
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrNotPublishable, "only draft campaigns can be published")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "campaign was updated concurrently")
		}
		return nil, fmt.Errorf("failed to publish campaign: %w", err)
	}

	return published, nil
}

func (s *campaignService) Close(ctx context.Context, campaignID, userID string) (*campaign.Campaign, error) {
	c, err := s.loadOwned(ctx, campaignID, userID)
	if err != nil {
		return nil, err
	}
	if c.Status.Terminal() {
		return nil, apperrors.InvalidStateError(ErrAlreadyTerminal, "campaign is already closed")
	}

	closed, err := s.store.CloseCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrAlreadyTerminal, "campaign is already closed")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "campaign was updated concurrently")
		}
		return nil, fmt.Errorf("failed to close campaign: %w", err)
	}

	return closed, nil
}

func (s *campaignService) Get(ctx context.Context, campaignID string) (*campaign.Campaign, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrCampaignNotFound) {
			return nil, apperrors.NotFoundError(err, "campaign not found")
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	return c, nil
}

func (s *campaignService) ListByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error) {
	campaigns, err := s.store.ListCampaignsByEntity(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

// loadOwned loads a campaign and verifies the caller owns its entity.
func (s *campaignService) loadOwned(ctx context.Context, campaignID, userID string) (*campaign.Campaign, error) {
	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrCampaignNotFound) {
			return nil, apperrors.NotFoundError(err, "campaign not found")
		}
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}

	e, err := s.store.GetEntity(ctx, c.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign entity: %w", err)
	}
	if !e.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError(ErrNotEntityOwner, "entity is not owned by caller")
	}

	return c, nil
}
