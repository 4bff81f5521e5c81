package service

import (
	"context"
	"time"

	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
)

// MockStore implements Store with overridable function fields.
type MockStore struct {
	CreateEntityFunc func(ctx context.Context, e *entity.Entity) error
	GetEntityFunc    func(ctx context.Context, id string) (*entity.Entity, error)
	ListEntitiesFunc func(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error)
	ClaimEntityFunc  func(ctx context.Context, id, ownerID string, claimedAt time.Time) (*entity.Entity, error)
	UpdateEntityFunc func(ctx context.Context, e *entity.Entity) error
}

func (m *MockStore) CreateEntity(ctx context.Context, e *entity.Entity) error {
	if m.CreateEntityFunc != nil {
		return m.CreateEntityFunc(ctx, e)
	}
	return nil
}

func (m *MockStore) GetEntity(ctx context.Context, id string) (*entity.Entity, error) {
	if m.GetEntityFunc != nil {
		return m.GetEntityFunc(ctx, id)
	}
	return nil, fundingstore.ErrEntityNotFound
}

func (m *MockStore) ListEntities(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error) {
	if m.ListEntitiesFunc != nil {
		return m.ListEntitiesFunc(ctx, entityType)
	}
	return nil, nil
}

func (m *MockStore) ClaimEntity(ctx context.Context, id, ownerID string, claimedAt time.Time) (*entity.Entity, error) {
	if m.ClaimEntityFunc != nil {
		return m.ClaimEntityFunc(ctx, id, ownerID, claimedAt)
	}
	return nil, fundingstore.ErrEntityNotFound
}

func (m *MockStore) UpdateEntity(ctx context.Context, e *entity.Entity) error {
	if m.UpdateEntityFunc != nil {
		return m.UpdateEntityFunc(ctx, e)
	}
	return nil
}

// MockVerifier implements OwnershipVerifier with an overridable function field.
type MockVerifier struct {
	VerifyOwnershipFunc func(ctx context.Context, userParty, entityParty string) (bool, error)
}

func (m *MockVerifier) VerifyOwnership(ctx context.Context, userParty, entityParty string) (bool, error) {
	if m.VerifyOwnershipFunc != nil {
		return m.VerifyOwnershipFunc(ctx, userParty, entityParty)
	}
	return false, nil
}
