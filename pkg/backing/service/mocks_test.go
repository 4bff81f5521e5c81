package service

import (
	"context"
	"time"

	"github.com/chainsafe/canton-backing/pkg/backing"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
	"github.com/chainsafe/canton-backing/pkg/interest"
	"github.com/chainsafe/canton-backing/pkg/invite"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	GetEntityFunc          func(ctx context.Context, id string) (*entity.Entity, error)
	GetCampaignFunc        func(ctx context.Context, id string) (*campaign.Campaign, error)
	GetInterestFunc        func(ctx context.Context, id string) (*interest.Interest, error)
	GetInviteFunc          func(ctx context.Context, id string) (*invite.Invite, error)
	CreateBackingFunc      func(ctx context.Context, b *backing.Backing) error
	GetBackingFunc         func(ctx context.Context, id string) (*backing.Backing, error)
	ListBackingsFunc       func(ctx context.Context, opts ...fundingstore.BackingQueryOption) ([]*backing.Backing, error)
	TransitionBackingFunc  func(ctx context.Context, id string, from []backing.Status, to backing.Status, times fundingstore.BackingTimes) (*backing.Backing, error)
	ListUnlockingReadyFunc func(ctx context.Context, now time.Time) ([]*backing.Backing, error)
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

func (m *MockStore) GetInterest(ctx context.Context, id string) (*interest.Interest, error) {
	if m.GetInterestFunc != nil {
		return m.GetInterestFunc(ctx, id)
	}
	return nil, fundingstore.ErrInterestNotFound
}

func (m *MockStore) GetInvite(ctx context.Context, id string) (*invite.Invite, error) {
	if m.GetInviteFunc != nil {
		return m.GetInviteFunc(ctx, id)
	}
	return nil, fundingstore.ErrInviteNotFound
}

func (m *MockStore) CreateBacking(ctx context.Context, b *backing.Backing) error {
	if m.CreateBackingFunc != nil {
		return m.CreateBackingFunc(ctx, b)
	}
	return nil
}

func (m *MockStore) GetBacking(ctx context.Context, id string) (*backing.Backing, error) {
	if m.GetBackingFunc != nil {
		return m.GetBackingFunc(ctx, id)
	}
	return nil, fundingstore.ErrBackingNotFound
}

func (m *MockStore) ListBackings(ctx context.Context, opts ...fundingstore.BackingQueryOption) ([]*backing.Backing, error) {
	if m.ListBackingsFunc != nil {
		return m.ListBackingsFunc(ctx, opts...)
	}
	return nil, nil
}

func (m *MockStore) TransitionBacking(ctx context.Context, id string, from []backing.Status, to backing.Status, times fundingstore.BackingTimes) (*backing.Backing, error) {
	if m.TransitionBackingFunc != nil {
		return m.TransitionBackingFunc(ctx, id, from, to, times)
	}
	return nil, fundingstore.ErrBackingNotFound
}

func (m *MockStore) ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error) {
	if m.ListUnlockingReadyFunc != nil {
		return m.ListUnlockingReadyFunc(ctx, now)
	}
	return nil, nil
}
