// Package service implements the entity workflow: registration, claim
// verification, and owner edits.
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
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
)

var (
	ErrAlreadyClaimed    = errors.New("entity already claimed")
	ErrOwnershipRejected = errors.New("ledger did not attest ownership")
	ErrNotOwner          = errors.New("caller does not own entity")
	ErrNotEditable       = errors.New("entity claim status does not allow edits")
)

// Store is the narrow data-access interface for the entity service.
type Store interface {
	CreateEntity(ctx context.Context, e *entity.Entity) error
	GetEntity(ctx context.Context, id string) (*entity.Entity, error)
	ListEntities(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error)
	ClaimEntity(ctx context.Context, id, ownerID string, claimedAt time.Time) (*entity.Entity, error)
	UpdateEntity(ctx context.Context, e *entity.Entity) error
}

// OwnershipVerifier checks on the ledger that a user party controls an
// entity party. Implemented by the canton client.
type OwnershipVerifier interface {
	VerifyOwnership(ctx context.Context, userParty, entityParty string) (bool, error)
}

// CreateRequest carries the fields for registering an entity.
type CreateRequest struct {
	Type         entity.Type
	Name         string
	Description  string
	PartyID      string
	TargetAmount decimal.Decimal
	// OwnerID, when set, registers the entity as SELF_REGISTERED with the
	// caller as owner.
	OwnerID string
}

// UpdateRequest carries the owner-editable fields. Nil fields are left unchanged.
type UpdateRequest struct {
	Name         *string
	Description  *string
	TargetAmount *decimal.Decimal
}

// Service defines the entity workflow operations.
type Service interface {
	Create(ctx context.Context, req *CreateRequest) (*entity.Entity, error)
	Claim(ctx context.Context, entityID, userID, userParty string) (*entity.Entity, error)
	Update(ctx context.Context, entityID, userID string, req *UpdateRequest) (*entity.Entity, error)
	Get(ctx context.Context, entityID string) (*entity.Entity, error)
	List(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error)
}

type entityService struct {
	store    Store
	verifier OwnershipVerifier
	logger   *zap.Logger
}

// NewService creates a new entity service
func NewService(store Store, verifier OwnershipVerifier, logger *zap.Logger) Service {
	return &entityService{
		store:    store,
		verifier: verifier,
		logger:   logger,
	}
}

func (s *entityService) Create(ctx context.Context, req *CreateRequest) (*entity.Entity, error) {
	if !req.Type.Valid() {
		return nil, apperrors.ValidationError(nil, "unknown entity type")
	}
	if req.Name == "" {
		return nil, apperrors.ValidationError(nil, "entity name is required")
	}
	if req.PartyID == "" {
		return nil, apperrors.ValidationError(nil, "entity party id is required")
	}
	if req.TargetAmount.IsNegative() {
		return nil, apperrors.ValidationError(nil, "target amount cannot be negative")
	}

	now := time.Now().UTC()
	e := &entity.Entity{
		ID:            uuid.NewString(),
		Type:          req.Type,
		Name:          req.Name,
		Description:   req.Description,
		PartyID:       req.PartyID,
		ClaimStatus:   entity.ClaimUnclaimed,
		TargetAmount:  req.TargetAmount,
		CurrentAmount: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.OwnerID != "" {
		e.ClaimStatus = entity.ClaimSelfRegistered
		e.OwnerID = req.OwnerID
	}

	if err := s.store.CreateEntity(ctx, e); err != nil {
		if errors.Is(err, fundingstore.ErrDuplicateParty) {
			return nil, apperrors.ConflictError(err, "entity already registered for party")
		}
		return nil, fmt.Errorf("failed to save entity: %w", err)
	}

	return e, nil
}

func (s *entityService) Claim(ctx context.Context, entityID, userID, userParty string) (*entity.Entity, error) {
	e, err := s.store.GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrEntityNotFound) {
			return nil, apperrors.NotFoundError(err, "entity not found")
		}
		return nil, fmt.Errorf("failed to load entity: %w", err)
	}

	if !e.ClaimStatus.Claimable() {
		return nil, apperrors.InvalidStateError(ErrAlreadyClaimed, "entity is not claimable")
	}

	verified, err := s.verifier.VerifyOwnership(ctx, userParty, e.PartyID)
	if err != nil {
		return nil, apperrors.DependencyError(err, "ownership verification unavailable")
	}
	if !verified {
		return nil, apperrors.ForbiddenError(ErrOwnershipRejected, "ownership verification failed")
	}

	claimed, err := s.store.ClaimEntity(ctx, entityID, userID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, fundingstore.ErrStaleStatus) {
			return nil, apperrors.InvalidStateError(ErrAlreadyClaimed, "entity is not claimable")
		}
		if errors.Is(err, fundingstore.ErrEntityNotFound) {
			return nil, apperrors.NotFoundError(err, "entity not found")
		}
		if errors.Is(err, fundingstore.ErrSerialization) {
			return nil, apperrors.ConcurrencyConflictError(err, "claim conflicted with a concurrent update")
		}
		return nil, fmt.Errorf("failed to claim entity: %w", err)
	}

	return claimed, nil
}

func (s *entityService) Update(ctx context.Context, entityID, userID string, req *UpdateRequest) (*entity.Entity, error) {
	e, err := s.store.GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrEntityNotFound) {
			return nil, apperrors.NotFoundError(err, "entity not found")
		}
		return nil, fmt.Errorf("failed to load entity: %w", err)
	}

	if !e.OwnedBy(userID) {
		return nil, apperrors.ForbiddenError(ErrNotOwner, "caller does not own entity")
	}
	if !e.ClaimStatus.Editable() {
		return nil, apperrors.InvalidStateError(ErrNotEditable, "entity claim status does not allow edits")
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, apperrors.ValidationError(nil, "entity name cannot be empty")
		}
		e.Name = *req.Name
	}
	if req.Description != nil {
		e.Description = *req.Description
	}
	if req.TargetAmount != nil {
		if req.TargetAmount.IsNegative() {
			return nil, apperrors.ValidationError(nil, "target amount cannot be negative")
		}
		e.TargetAmount = *req.TargetAmount
	}

	if err := s.store.UpdateEntity(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update entity: %w", err)
	}

	return e, nil
}

func (s *entityService) Get(ctx context.Context, entityID string) (*entity.Entity, error) {
	e, err := s.store.GetEntity(ctx, entityID)
	if err != nil {
		if errors.Is(err, fundingstore.ErrEntityNotFound) {
			return nil, apperrors.NotFoundError(err, "entity not found")
		}
		return nil, fmt.Errorf("failed to load entity: %w", err)
	}
	return e, nil
}

func (s *entityService) List(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error) {
	if entityType != "" && !entityType.Valid() {
		return nil, apperrors.ValidationError(nil, "unknown entity type")
	}
	entities, err := s.store.ListEntities(ctx, entityType)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	return entities, nil
}
