// Package service implements the invite workflow: entity owners solicit
// specific backers for a campaign and recipients accept or decline.
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
	"github.com/chainsafe/canton-backing/pkg/invite"
)

var (
	ErrCampaignNotOpen = errors.New("campaign is not open for invites")
	ErrNotOwner        = errors.New("caller does not own campaign entity")
	ErrNotRecipient    = errors.New("caller is not the invite recipient")
	ErrNotSender       = errors.New("caller did not send invite")
	ErrAlreadyResolved = errors.New("invite has already been responded to")
	ErrNoRecipient     = errors.New("invite recipient could not be identified")
)

// Store is the narrow data-access interface for the invite service.
type Store interface {
	GetEntity(ctx context.Context, id string) (*entity.Entity, error)
	GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error)
	CreateInvite(ctx context.Context, inv *invite.Invite) error
	GetInvite(ctx context.Context, id string) (*invite.Invite, error)
	ListInvitesByCampaign(ctx context.Context, campaignID string) ([]*invite.Invite, error)
	TransitionInvite(ctx context.Context, id string, from []invite.Status, to invite.Status, at time.Time) (*invite.Invite, error)
}

// Directory resolves invite recipients against the ledger user registry.
// Implemented by the canton client.
type Directory interface {
	ResolveUserByPartyID(ctx context.Context, partyID string) (string, error)
	ResolveUserByEmail(ctx context.Context, email string) (string, error)
}

// SendRequest carries the fields for sending an invite. Exactly one of
// RecipientUserID, RecipientEmail or RecipientPartyID should identify the
// recipient; the others may be empty.
type SendRequest struct {
	CampaignID       string
	RecipientUserID  string
	RecipientEmail   string
	RecipientPartyID string
	SuggestedAmount  *decimal.Decimal
	Message          string
}

// ResponseDecision is the recipient's answer to an invite.
type ResponseDecision string

const (
	DecisionAccept  ResponseDecision = "ACCEPT"
	DecisionDecline ResponseDecision = "DECLINE"
)

// Service defines the invite workflow operations.
type Service interface {
	Send(ctx context.Context, senderID string, req *SendRequest) (*invite.Invite, error)
	Respond(ctx context.Context, inviteID, userID string, decision ResponseDecision) (*invite.Invite, error)
	Cancel(ctx context.Context, inviteID, userID string) (*invite.Invite, error)
	Get(ctx context.Context, inviteID string) (*invite.Invite, error)
	ListByCampaign(ctx context.Context, campaignID, userID string) ([]*invite.Invite, error)
}

type inviteService struct {
	store     Store
	directory Directory
	logger    *zap.Logger
}

// NewService creates a new invite service
func NewService(store Store, directory Directory, logger *zap.Logger) Service {
	return &inviteService{
		store:     store,
		directory: directory,
		logger:    logger,
	}
}

func (s *inviteService) Send(ctx context.Context, senderID string, req *SendRequest) (*invite.Invite, error) {
	if req.RecipientUserID == "" && req.RecipientEmail == "" && req.RecipientPartyID == "" {
		return nil, apperrors.ValidationError(nil, "invite recipient is required")
	}
	if req.SuggestedAmount != nil && !req.SuggestedAmount.IsPositive() {
		return nil, apperrors.ValidationError(nil, "suggested amount must be positive")
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
	if !e.OwnedBy(senderID) {
		return nil, apperrors.ForbiddenError(ErrNotOwner, "entity is not owned by caller")
	}

	recipientID := req.RecipientUserID
	if recipientID == "" && req.RecipientPartyID != "" {
		recipientID, err = s.directory.ResolveUserByPartyID(ctx, req.RecipientPartyID)
		if err != nil {
			s.logger.Warn("could not resolve invite recipient by party",
				zap.String("party_id", req.RecipientPartyID),
				zap.Error(err))
		}
	}
	if recipientID == "" && req.RecipientEmail != "" {
		recipientID, err = s.directory.ResolveUserByEmail(ctx, req.RecipientEmail)
		if err != nil {
			s.logger.Warn("could not resolve invite recipient by email",
				zap.String("email", req.RecipientEmail),
				zap.Error(err))
		}
	}

	now := time.Now().UTC()
	inv := &invite.Invite{
		ID:               uuid.NewString(),
		CampaignID:       c.ID,
		SenderID:         senderID,
		RecipientUserID:  recipientID,
		RecipientEmail:   req.RecipientEmail,
		RecipientPartyID: req.RecipientPartyID,
		SuggestedAmount:  req.SuggestedAmount,
		Status:           invite.StatusPending,
		Message:          req.Message,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.store.CreateInvite(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invite: %w", err)
	}

	return inv, nil
}

func (s *inviteService) Respond(ctx context.Context, inviteID, userID string, decision ResponseDecision) (*invite.Invite, error) {
	var to invite.Status
	switch decision {
	case DecisionAccept:
		to = invite.StatusAccepted
	case DecisionDecline:
		to = invite.StatusDeclined
	default:
		return nil, apperrors.ValidationError(nil, "unknown response decision")
	}

	inv, err := s.load(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	if !inv.Resolved() {
		return nil, apperrors.ForbiddenError(ErrNoRecipient, "invite has no resolved recipient")
	}
	if inv.RecipientUserID != userID {
		return nil, apperrors.ForbiddenError(ErrNotRecipient, "invite was not sent to caller")
	}
	if inv.Status != invite.StatusPending {
		return nil, apperrors.InvalidStateError(ErrAlreadyResolved, "invite has already been responded to")
	}

	responded, err := s.store.TransitionInvite(ctx, inviteID,
		[]invite.Status{invite.StatusPending}, to, time.Now().UTC())
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrAlreadyResolved, "invite has already been responded to")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "invite was updated concurrently")
		}
		return nil, fmt.Errorf("failed to respond to invite: %w", err)
	}

	return responded, nil
}

func (s *inviteService) Cancel(ctx context.Context, inviteID, userID string) (*invite.Invite, error) {
	inv, err := s.load(ctx, inviteID)
	if err != nil {
		return nil, err
	}

	if inv.SenderID != userID {
		return nil, apperrors.ForbiddenError(ErrNotSender, "invite was not sent by caller")
	}
	if inv.Status != invite.StatusPending {
		return nil, apperrors.InvalidStateError(ErrAlreadyResolved, "only pending invites can be cancelled")
	}

	cancelled, err := s.store.TransitionInvite(ctx, inviteID,
		[]invite.Status{invite.StatusPending}, invite.StatusWithdrawn, time.Now().UTC())
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrAlreadyResolved, "only pending invites can be cancelled")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "invite was updated concurrently")
		}
		return nil, fmt.Errorf("failed to cancel invite: %w", err)
	}

	return cancelled, nil
}

func (s *inviteService) Get(ctx context.Context, inviteID string) (*invite.Invite, error) {
	return s.load(ctx, inviteID)
}

func (s *inviteService) ListByCampaign(ctx context.Context, campaignID, userID string) ([]*invite.Invite, error) {
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
		return nil, apperrors.ForbiddenError(ErrNotOwner, "entity is not owned by caller")
	}

	invites, err := s.store.ListInvitesByCampaign(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	return invites, nil
}

func (s *inviteService) load(ctx context.Context, inviteID string) (*invite.Invite, error) {
	inv, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrInviteNotFound) {
			return nil, apperrors.NotFoundError(err, "invite not found")
		}
		return nil, fmt.Errorf("failed to load invite: %w", err)
	}
	return inv, nil
}
