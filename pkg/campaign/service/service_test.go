package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
)

func ownedEntity(ownerID string) *entity.Entity {
	return &entity.Entity{
		ID:          "entity-1",
		Type:        entity.TypeFeaturedApp,
		Name:        "app-one",
		PartyID:     "party::app-one",
		ClaimStatus: entity.ClaimClaimed,
		OwnerID:     ownerID,
	}
}

func storedCampaign(status campaign.Status) *campaign.Campaign {
	return &campaign.Campaign{
		ID:           "campaign-1",
		EntityID:     "entity-1",
		Name:         "round-one",
		Status:       status,
		TargetAmount: decimal.NewFromInt(1_000_000),
	}
}

func TestCampaignService_Create(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
	}
	svc := NewService(store, zap.NewNop())

	endsAt := time.Now().Add(30 * 24 * time.Hour)
	c, err := svc.Create(ctx, "owner-1", &CreateRequest{
		EntityID:     "entity-1",
		Name:         "round-one",
		TargetAmount: decimal.NewFromInt(1_000_000),
		EndsAt:       &endsAt,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if c.Status != campaign.StatusDraft {
		t.Fatalf("expected DRAFT, got %s", c.Status)
	}
	if !c.CurrentAmount.IsZero() {
		t.Fatalf("expected zero current amount, got %s", c.CurrentAmount)
	}
}

func TestCampaignService_Create_NotOwner(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
	}
	svc := NewService(store, zap.NewNop())

	_, err := svc.Create(ctx, "intruder", &CreateRequest{
		EntityID:     "entity-1",
		Name:         "round-one",
		TargetAmount: decimal.NewFromInt(1_000_000),
	})
	if !errors.Is(err, ErrNotEntityOwner) {
		t.Fatalf("expected ErrNotEntityOwner, got %v", err)
	}
}

func TestCampaignService_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockStore{}, zap.NewNop())

	minC := decimal.NewFromInt(100_000)
	maxC := decimal.NewFromInt(10_000)
	past := time.Now().Add(-time.Hour)

	cases := []struct {
		name string
		req  *CreateRequest
	}{
		{"missing name", &CreateRequest{EntityID: "entity-1", TargetAmount: decimal.NewFromInt(1)}},
		{"zero target", &CreateRequest{EntityID: "entity-1", Name: "r"}},
		{"min above max", &CreateRequest{EntityID: "entity-1", Name: "r", TargetAmount: decimal.NewFromInt(1), MinContribution: &minC, MaxContribution: &maxC}},
		{"ends in past", &CreateRequest{EntityID: "entity-1", Name: "r", TargetAmount: decimal.NewFromInt(1), EndsAt: &past}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, "owner-1", tc.req); !apperrors.Is(err, apperrors.CategoryValidation) {
			t.Fatalf("%s: expected CategoryValidation, got %v", tc.name, err)
		}
	}
}

func TestCampaignService_Publish(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetCampaignFunc: func(_ context.Context, _ string) (*campaign.Campaign, error) {
			return storedCampaign(campaign.StatusDraft), nil
		},
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
		TransitionCampaignFunc: func(_ context.Context, id string, from, to campaign.Status, startsAt *time.Time) (*campaign.Campaign, error) {
			if from != campaign.StatusDraft || to != campaign.StatusOpen {
				t.Fatalf("unexpected transition %s -> %s", from, to)
			}
			if startsAt == nil {
				t.Fatal("expected starts_at to be defaulted")
			}
			c := storedCampaign(to)
			c.StartsAt = startsAt
			return c, nil
		},
	}
	svc := NewService(store, zap.NewNop())

	published, err := svc.Publish(ctx, "campaign-1", "owner-1")
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}
	if published.Status != campaign.StatusOpen {
		t.Fatalf("expected OPEN, got %s", published.Status)
	}
}

func TestCampaignService_Publish_ConcurrentConflict(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetCampaignFunc: func(_ context.Context, _ string) (*campaign.Campaign, error) {
			return storedCampaign(campaign.StatusDraft), nil
		},
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
		TransitionCampaignFunc: func(_ context.Context, _ string, _, _ campaign.Status, _ *time.Time) (*campaign.Campaign, error) {
			return nil, fundingstore.ErrSerialization
		},
	}
	svc := NewService(store, zap.NewNop())

	_, err := svc.Publish(ctx, "campaign-1", "owner-1")
	if !apperrors.Is(err, apperrors.CategoryConcurrencyConflict) {
		t.Fatalf("expected CategoryConcurrencyConflict, got %v", err)
	}
	if !apperrors.IsRetryable(err) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
}

func TestCampaignService_Publish_NotDraft(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetCampaignFunc: func(_ context.Context, _ string) (*campaign.Campaign, error) {
			return storedCampaign(campaign.StatusOpen), nil
		},
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
	}
	svc := NewService(store, zap.NewNop())

	_, err := svc.Publish(ctx, "campaign-1", "owner-1")
	if !errors.Is(err, ErrNotPublishable) {
		t.Fatalf("expected ErrNotPublishable, got %v", err)
	}
	if !apperrors.Is(err, apperrors.CategoryInvalidState) {
		t.Fatalf("expected CategoryInvalidState, got %v", err)
	}
}

func TestCampaignService_Close(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetCampaignFunc: func(_ context.Context, _ string) (*campaign.Campaign, error) {
			return storedCampaign(campaign.StatusOpen), nil
		},
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
		CloseCampaignFunc: func(_ context.Context, id string) (*campaign.Campaign, error) {
			return storedCampaign(campaign.StatusClosed), nil
		},
	}
	svc := NewService(store, zap.NewNop())

	closed, err := svc.Close(ctx, "campaign-1", "owner-1")
	if err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if closed.Status != campaign.StatusClosed {
		t.Fatalf("expected CLOSED, got %s", closed.Status)
	}
}

func TestCampaignService_Close_AlreadyTerminal(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetCampaignFunc: func(_ context.Context, _ string) (*campaign.Campaign, error) {
			return storedCampaign(campaign.StatusCancelled), nil
		},
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
	}
	svc := NewService(store, zap.NewNop())

	_, err := svc.Close(ctx, "campaign-1", "owner-1")
	if !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestCampaignService_Close_NotOwner(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetCampaignFunc: func(_ context.Context, _ string) (*campaign.Campaign, error) {
			return storedCampaign(campaign.StatusOpen), nil
		},
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return ownedEntity("owner-1"), nil
		},
	}
	svc := NewService(store, zap.NewNop())

	_, err := svc.Close(ctx, "campaign-1", "intruder")
	if !errors.Is(err, ErrNotEntityOwner) {
		t.Fatalf("expected ErrNotEntityOwner, got %v", err)
	}
}
