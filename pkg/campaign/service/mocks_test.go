package service

import (
	"context"
	"time"

	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
)

// MockStore implements Store with overridable function fields.
type MockStore struct {
	GetEntityFunc             func(ctx context.Context, id string) (*entity.Entity, error)
	CreateCampaignFunc        func(ctx context.Context, c *campaign.Campaign) error
	GetCampaignFunc           func(ctx context.Context, id string) (*campaign.Campaign, error)
	ListCampaignsByEntityFunc func(ctx context.Context, entityID string) ([]*campaign.Campaign, error)
	TransitionCampaignFunc    func(ctx context.Context, id string, from, to campaign.Status, startsAt *time.Time) (*campaign.Campaign, error)
	CloseCampaignFunc         func(ctx context.Context, id string) (*campaign.Campaign, error)
}

func (m *MockStore) GetEntity(ctx context.Context, id string) (*entity.Entity, error) {
	if m.GetEntityFunc != nil {
		return m.GetEntityFunc(ctx, id)
	}
	return nil, fundingstore.ErrEntityNotFound
}

func (m *MockStore) CreateCampaign(ctx context.Context, c *campaign.Campaign) error {
	if m.CreateCampaignFunc != nil {
		return m.CreateCampaignFunc(ctx, c)
	}
	return nil
}

func (m *MockStore) GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	if m.GetCampaignFunc != nil {
		return m.GetCampaignFunc(ctx, id)
	}
	return nil, fundingstore.ErrCampaignNotFound
}

func (m *MockStore) ListCampaignsByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error) {
	if m.ListCampaignsByEntityFunc != nil {
		return m.ListCampaignsByEntityFunc(ctx, entityID)
	}
	return nil, nil
}

func (m *MockStore) TransitionCampaign(ctx context.Context, id string, from, to campaign.Status, startsAt *time.Time) (*campaign.Campaign, error) {
	if m.TransitionCampaignFunc != nil {
		return m.TransitionCampaignFunc(ctx, id, from, to, startsAt)
	}
	return nil, fundingstore.ErrCampaignNotFound
}

func (m *MockStore) CloseCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	if m.CloseCampaignFunc != nil {
		return m.CloseCampaignFunc(ctx, id)
	}
	return nil, fundingstore.ErrCampaignNotFound
}
