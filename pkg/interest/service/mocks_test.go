package service

import (
	"context"
	"time"

	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
	"github.com/chainsafe/canton-backing/pkg/interest"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	GetEntityFunc                    func(ctx context.Context, id string) (*entity.Entity, error)
	GetCampaignFunc                  func(ctx context.Context, id string) (*campaign.Campaign, error)
	CreateInterestFunc               func(ctx context.Context, i *interest.Interest) error
	GetInterestFunc                  func(ctx context.Context, id string) (*interest.Interest, error)
	GetInterestByUserAndCampaignFunc func(ctx context.Context, userID, campaignID string) (*interest.Interest, error)
	ListInterestsByCampaignFunc      func(ctx context.Context, campaignID string) ([]*interest.Interest, error)
	TransitionInterestFunc           func(ctx context.Context, id string, from []interest.Status, to interest.Status, note string, at time.Time) (*interest.Interest, error)
}

func (m *MockStore) GetEntity(ctx context.Context, id string) (*entity.Entity, error) {
	if m.GetEntityFunc != nil {
		return m.GetEntityFunc(ctx, id)
	}
	return nil, fundingstore.ErrEntityNotFound
}

func (m *MockStore) GetCampaign(ctx context.Context, id string) (*campaign.Campaign, error) {
	if m.GetCampaignFunc != nil {
		return m.GetCampaignFunc(ctx, id)
	}
	return nil, fundingstore.ErrCampaignNotFound
}

func (m *MockStore) CreateInterest(ctx context.Context, i *interest.Interest) error {
	if m.CreateInterestFunc != nil {
		return m.CreateInterestFunc(ctx, i)
	}
	return nil
}

func (m *MockStore) GetInterest(ctx context.Context, id string) (*interest.Interest, error) {
	if m.GetInterestFunc != nil {
		return m.GetInterestFunc(ctx, id)
	}
	return nil, fundingstore.ErrInterestNotFound
}

func (m *MockStore) GetInterestByUserAndCampaign(ctx context.Context, userID, campaignID string) (*interest.Interest, error) {
	if m.GetInterestByUserAndCampaignFunc != nil {
		return m.GetInterestByUserAndCampaignFunc(ctx, userID, campaignID)
	}
	return nil, fundingstore.ErrInterestNotFound
}

func (m *MockStore) ListInterestsByCampaign(ctx context.Context, campaignID string) ([]*interest.Interest, error) {
	if m.ListInterestsByCampaignFunc != nil {
		return m.ListInterestsByCampaignFunc(ctx, campaignID)
	}
	return nil, nil
}

func (m *MockStore) TransitionInterest(ctx context.Context, id string, from []interest.Status, to interest.Status, note string, at time.Time) (*interest.Interest, error) {
	if m.TransitionInterestFunc != nil {
		return m.TransitionInterestFunc(ctx, id, from, to, note, at)
	}
	return nil, fundingstore.ErrInterestNotFound
}
