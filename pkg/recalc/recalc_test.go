package recalc

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
)

type mockStore struct {
	ListEntitiesFunc            func(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error)
	ListCampaignsByEntityFunc   func(ctx context.Context, entityID string) ([]*campaign.Campaign, error)
	RecomputeEntityAmountFunc   func(ctx context.Context, id string) (string, error)
	RecomputeCampaignAmountFunc func(ctx context.Context, id string) (string, error)
}

func (m *mockStore) ListEntities(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error) {
	if m.ListEntitiesFunc != nil {
		return m.ListEntitiesFunc(ctx, entityType)
	}
	return nil, nil
}

func (m *mockStore) ListCampaignsByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error) {
	if m.ListCampaignsByEntityFunc != nil {
		return m.ListCampaignsByEntityFunc(ctx, entityID)
	}
	return nil, nil
}

func (m *mockStore) RecomputeEntityAmount(ctx context.Context, id string) (string, error) {
	if m.RecomputeEntityAmountFunc != nil {
		return m.RecomputeEntityAmountFunc(ctx, id)
	}
	return "0", nil
}

func (m *mockStore) RecomputeCampaignAmount(ctx context.Context, id string) (string, error) {
	if m.RecomputeCampaignAmountFunc != nil {
		return m.RecomputeCampaignAmountFunc(ctx, id)
	}
	return "0", nil
}

func TestRecalculator_RecomputeEntity_RetriesSerializationFailure(t *testing.T) {
	var calls int
	store := &mockStore{
		RecomputeEntityAmountFunc: func(_ context.Context, _ string) (string, error) {
			calls++
			if calls < 3 {
				return "", fundingstore.ErrSerialization
			}
			return "750000", nil
		},
	}

	r := New(store, zap.NewNop())
	sum, err := r.RecomputeEntity(context.Background(), "entity-1")
	if err != nil {
		t.Fatalf("RecomputeEntity() failed: %v", err)
	}
	if sum != "750000" {
		t.Fatalf("expected 750000, got %s", sum)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRecalculator_RecomputeEntity_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	store := &mockStore{
		RecomputeEntityAmountFunc: func(_ context.Context, _ string) (string, error) {
			calls++
			return "", fundingstore.ErrSerialization
		},
	}

	r := New(store, zap.NewNop())
	_, err := r.RecomputeEntity(context.Background(), "entity-1")
	if !errors.Is(err, fundingstore.ErrSerialization) {
		t.Fatalf("expected serialization error, got %v", err)
	}
	if calls != maxAttempts {
		t.Fatalf("expected %d attempts, got %d", maxAttempts, calls)
	}
}

func TestRecalculator_RecomputeCampaign_NoRetryOnOtherErrors(t *testing.T) {
	storeErr := errors.New("campaign gone")
	var calls int
	store := &mockStore{
		RecomputeCampaignAmountFunc: func(_ context.Context, _ string) (string, error) {
			calls++
			return "", storeErr
		},
	}

	r := New(store, zap.NewNop())
	_, err := r.RecomputeCampaign(context.Background(), "campaign-1")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRecalculator_RecomputeAll(t *testing.T) {
	var entityRuns, campaignRuns []string
	store := &mockStore{
		ListEntitiesFunc: func(_ context.Context, entityType entity.Type) ([]*entity.Entity, error) {
			if entityType != "" {
				t.Fatalf("expected unfiltered listing, got %s", entityType)
			}
			return []*entity.Entity{{ID: "entity-1"}, {ID: "entity-2"}}, nil
		},
		ListCampaignsByEntityFunc: func(_ context.Context, entityID string) ([]*campaign.Campaign, error) {
			if entityID == "entity-1" {
				return []*campaign.Campaign{{ID: "campaign-1"}, {ID: "campaign-2"}}, nil
			}
			return nil, nil
		},
		RecomputeEntityAmountFunc: func(_ context.Context, id string) (string, error) {
			entityRuns = append(entityRuns, id)
			return "0", nil
		},
		RecomputeCampaignAmountFunc: func(_ context.Context, id string) (string, error) {
			campaignRuns = append(campaignRuns, id)
			return "0", nil
		},
	}

	r := New(store, zap.NewNop())
	if err := r.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("RecomputeAll() failed: %v", err)
	}
	if len(entityRuns) != 2 {
		t.Fatalf("expected 2 entity recomputes, got %v", entityRuns)
	}
	if len(campaignRuns) != 2 {
		t.Fatalf("expected 2 campaign recomputes, got %v", campaignRuns)
	}
}

func TestRecalculator_RecomputeAll_ContinuesPastFailures(t *testing.T) {
	var campaignRuns int
	store := &mockStore{
		ListEntitiesFunc: func(_ context.Context, _ entity.Type) ([]*entity.Entity, error) {
			return []*entity.Entity{{ID: "entity-1"}, {ID: "entity-2"}}, nil
		},
		ListCampaignsByEntityFunc: func(_ context.Context, _ string) ([]*campaign.Campaign, error) {
			return []*campaign.Campaign{{ID: "campaign-1"}}, nil
		},
		RecomputeEntityAmountFunc: func(_ context.Context, id string) (string, error) {
			if id == "entity-1" {
				return "", errors.New("broken row")
			}
			return "0", nil
		},
		RecomputeCampaignAmountFunc: func(_ context.Context, _ string) (string, error) {
			campaignRuns++
			return "0", nil
		},
	}

	r := New(store, zap.NewNop())
	if err := r.RecomputeAll(context.Background()); err != nil {
		t.Fatalf("RecomputeAll() failed: %v", err)
	}
	// entity-1 failed before its campaigns were reached; entity-2's ran.
	if campaignRuns != 1 {
		t.Fatalf("expected 1 campaign recompute, got %d", campaignRuns)
	}
}
