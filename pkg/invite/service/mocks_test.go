package service

import (
	"context"
	"time"

	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
	"github.com/chainsafe/canton-backing/pkg/invite"
)

// MockStore implements Store with overridable function fields.
type MockStore struct {
	GetEntityFunc             func(ctx context.Context, id string) (*entity.Entity, error)
	GetCampaignFunc           func(ctx context.Context, id string) (*campaign.Campaign, error)
	CreateInviteFunc          func(ctx context.Context, inv *invite.Invite) error
	GetInviteFunc             func(ctx context.Context, id string) (*invite.Invite, error)
	ListInvitesByCampaignFunc func(ctx context.Context, campaignID string) ([]*invite.Invite, error)
	TransitionInviteFunc      func(ctx context.Context, id string, from []invite.Status, to invite.Status, at time.Time) (*invite.Invite, error)
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

func (m *MockStore) CreateInvite(ctx context.Context, inv *invite.Invite) error {
	if m.CreateInviteFunc != nil {
		return m.CreateInviteFunc(ctx, inv)
	}
	return nil
}

func (m *MockStore) GetInvite(ctx context.Context, id string) (*invite.Invite, error) {
	if m.GetInviteFunc != nil {
		return m.GetInviteFunc(ctx, id)
	}
	return nil, fundingstore.ErrInviteNotFound
}

func (m *MockStore) ListInvitesByCampaign(ctx context.Context, campaignID string) ([]*invite.Invite, error) {
	if m.ListInvitesByCampaignFunc != nil {
		return m.ListInvitesByCampaignFunc(ctx, campaignID)
	}
	return nil, nil
}

func (m *MockStore) TransitionInvite(ctx context.Context, id string, from []invite.Status, to invite.Status, at time.Time) (*invite.Invite, error) {
	if m.TransitionInviteFunc != nil {
		return m.TransitionInviteFunc(ctx, id, from, to, at)
	}
	return nil, fundingstore.ErrInviteNotFound
}

// MockDirectory implements Directory with overridable function fields.
type MockDirectory struct {
	ResolveUserByPartyIDFunc func(ctx context.Context, partyID string) (string, error)
	ResolveUserByEmailFunc   func(ctx context.Context, email string) (string, error)
}

func (m *MockDirectory) ResolveUserByPartyID(ctx context.Context, partyID string) (string, error) {
	if m.ResolveUserByPartyIDFunc != nil {
		return m.ResolveUserByPartyIDFunc(ctx, partyID)
	}
	return "", nil
}

func (m *MockDirectory) ResolveUserByEmail(ctx context.Context, email string) (string, error) {
	if m.ResolveUserByEmailFunc != nil {
		return m.ResolveUserByEmailFunc(ctx, email)
	}
	return "", nil
}
