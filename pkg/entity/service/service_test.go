package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
)

func unclaimedEntity() *entity.Entity {
	return &entity.Entity{
		ID:          "entity-1",
		Type:        entity.TypeValidator,
		Name:        "validator-one",
		PartyID:     "party::validator-one",
		ClaimStatus: entity.ClaimUnclaimed,
	}
}

func TestEntityService_Create(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockStore{}, &MockVerifier{}, zap.NewNop())

	e, err := svc.Create(ctx, &CreateRequest{
		Type:         entity.TypeFeaturedApp,
		Name:         "app-one",
		PartyID:      "party::app-one",
		TargetAmount: decimal.NewFromInt(1_000_000),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if e.ClaimStatus != entity.ClaimUnclaimed {
		t.Fatalf("expected UNCLAIMED, got %s", e.ClaimStatus)
	}
	if e.ID == "" {
		t.Fatal("expected id to be assigned")
	}
}

func TestEntityService_Create_SelfRegistered(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockStore{}, &MockVerifier{}, zap.NewNop())

	e, err := svc.Create(ctx, &CreateRequest{
		Type:    entity.TypeFeaturedApp,
		Name:    "app-one",
		PartyID: "party::app-one",
		OwnerID: "owner-1",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if e.ClaimStatus != entity.ClaimSelfRegistered {
		t.Fatalf("expected SELF_REGISTERED, got %s", e.ClaimStatus)
	}
	if e.OwnerID != "owner-1" {
		t.Fatalf("expected owner-1, got %s", e.OwnerID)
	}
}

func TestEntityService_Create_DuplicateParty(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		CreateEntityFunc: func(_ context.Context, _ *entity.Entity) error {
			return fundingstore.ErrDuplicateParty
		},
	}
	svc := NewService(store, &MockVerifier{}, zap.NewNop())

	_, err := svc.Create(ctx, &CreateRequest{
		Type:    entity.TypeFeaturedApp,
		Name:    "app-one",
		PartyID: "party::app-one",
	})
	if !apperrors.Is(err, apperrors.CategoryConflict) {
		t.Fatalf("expected CategoryConflict, got %v", err)
	}
}

func TestEntityService_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockStore{}, &MockVerifier{}, zap.NewNop())

	cases := []struct {
		name string
		req  *CreateRequest
	}{
		{"unknown type", &CreateRequest{Type: "WIDGET", Name: "a", PartyID: "p"}},
		{"missing name", &CreateRequest{Type: entity.TypeValidator, PartyID: "p"}},
		{"missing party", &CreateRequest{Type: entity.TypeValidator, Name: "a"}},
		{"negative target", &CreateRequest{Type: entity.TypeValidator, Name: "a", PartyID: "p", TargetAmount: decimal.NewFromInt(-1)}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.req); !apperrors.Is(err, apperrors.CategoryValidation) {
			t.Fatalf("%s: expected CategoryValidation, got %v", tc.name, err)
		}
	}
}

func TestEntityService_Claim(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return unclaimedEntity(), nil
		},
		ClaimEntityFunc: func(_ context.Context, id, ownerID string, claimedAt time.Time) (*entity.Entity, error) {
			e := unclaimedEntity()
			e.ClaimStatus = entity.ClaimClaimed
			e.OwnerID = ownerID
			e.ClaimedAt = &claimedAt
			return e, nil
		},
	}
	verifier := &MockVerifier{
		VerifyOwnershipFunc: func(_ context.Context, userParty, entityParty string) (bool, error) {
			if entityParty != "party::validator-one" {
				t.Fatalf("unexpected entity party %s", entityParty)
			}
			return true, nil
		},
	}
	svc := NewService(store, verifier, zap.NewNop())

	claimed, err := svc.Claim(ctx, "entity-1", "user-1", "party::user-1")
	if err != nil {
		t.Fatalf("Claim() failed: %v", err)
	}
	if claimed.ClaimStatus != entity.ClaimClaimed {
		t.Fatalf("expected CLAIMED, got %s", claimed.ClaimStatus)
	}
	if claimed.OwnerID != "user-1" {
		t.Fatalf("expected user-1, got %s", claimed.OwnerID)
	}
	if claimed.ClaimedAt == nil {
		t.Fatal("expected claimed_at to be set")
	}
}

func TestEntityService_Claim_AlreadyClaimed(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			e := unclaimedEntity()
			e.ClaimStatus = entity.ClaimClaimed
			e.OwnerID = "someone-else"
			return e, nil
		},
	}
	svc := NewService(store, &MockVerifier{}, zap.NewNop())

	_, err := svc.Claim(ctx, "entity-1", "user-1", "party::user-1")
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
	if !apperrors.Is(err, apperrors.CategoryInvalidState) {
		t.Fatalf("expected CategoryInvalidState, got %v", err)
	}
}

func TestEntityService_Claim_OwnershipRejected(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return unclaimedEntity(), nil
		},
	}
	verifier := &MockVerifier{
		VerifyOwnershipFunc: func(_ context.Context, _, _ string) (bool, error) {
			return false, nil
		},
	}
	svc := NewService(store, verifier, zap.NewNop())

	_, err := svc.Claim(ctx, "entity-1", "user-1", "party::user-1")
	if !errors.Is(err, ErrOwnershipRejected) {
		t.Fatalf("expected ErrOwnershipRejected, got %v", err)
	}
	if !apperrors.Is(err, apperrors.CategoryForbidden) {
		t.Fatalf("expected CategoryForbidden, got %v", err)
	}
}

func TestEntityService_Claim_VerifierUnavailable(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return unclaimedEntity(), nil
		},
	}
	verifier := &MockVerifier{
		VerifyOwnershipFunc: func(_ context.Context, _, _ string) (bool, error) {
			return false, errors.New("ledger unreachable")
		},
	}
	svc := NewService(store, verifier, zap.NewNop())

	_, err := svc.Claim(ctx, "entity-1", "user-1", "party::user-1")
	if !apperrors.Is(err, apperrors.CategoryDependencyFailure) {
		t.Fatalf("expected CategoryDependencyFailure, got %v", err)
	}
}

func TestEntityService_Claim_RaceLosesToStore(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return unclaimedEntity(), nil
		},
		ClaimEntityFunc: func(_ context.Context, _, _ string, _ time.Time) (*entity.Entity, error) {
			return nil, fundingstore.ErrStaleStatus
		},
	}
	verifier := &MockVerifier{
		VerifyOwnershipFunc: func(_ context.Context, _, _ string) (bool, error) {
			return true, nil
		},
	}
	svc := NewService(store, verifier, zap.NewNop())

	_, err := svc.Claim(ctx, "entity-1", "user-1", "party::user-1")
	if !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestEntityService_Claim_ConcurrentConflict(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			return unclaimedEntity(), nil
		},
		ClaimEntityFunc: func(_ context.Context, _, _ string, _ time.Time) (*entity.Entity, error) {
			return nil, fundingstore.ErrSerialization
		},
	}
	verifier := &MockVerifier{
		VerifyOwnershipFunc: func(_ context.Context, _, _ string) (bool, error) {
			return true, nil
		},
	}
	svc := NewService(store, verifier, zap.NewNop())

	_, err := svc.Claim(ctx, "entity-1", "user-1", "party::user-1")
	if !apperrors.Is(err, apperrors.CategoryConcurrencyConflict) {
		t.Fatalf("expected CategoryConcurrencyConflict, got %v", err)
	}
	if !apperrors.IsRetryable(err) {
		t.Fatalf("expected a retryable error, got %v", err)
	}
}

func TestEntityService_Update(t *testing.T) {
	ctx := context.Background()
	var saved *entity.Entity
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			e := unclaimedEntity()
			e.ClaimStatus = entity.ClaimClaimed
			e.OwnerID = "user-1"
			return e, nil
		},
		UpdateEntityFunc: func(_ context.Context, e *entity.Entity) error {
			saved = e
			return nil
		},
	}
	svc := NewService(store, &MockVerifier{}, zap.NewNop())

	name := "validator-renamed"
	target := decimal.NewFromInt(2_000_000)
	updated, err := svc.Update(ctx, "entity-1", "user-1", &UpdateRequest{Name: &name, TargetAmount: &target})
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.Name != "validator-renamed" {
		t.Fatalf("expected renamed entity, got %s", updated.Name)
	}
	if saved == nil || !saved.TargetAmount.Equal(target) {
		t.Fatalf("expected target amount persisted, got %+v", saved)
	}
}

func TestEntityService_Update_NotOwner(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{
		GetEntityFunc: func(_ context.Context, _ string) (*entity.Entity, error) {
			e := unclaimedEntity()
			e.ClaimStatus = entity.ClaimClaimed
			e.OwnerID = "user-1"
			return e, nil
		},
	}
	svc := NewService(store, &MockVerifier{}, zap.NewNop())

	name := "hijacked"
	_, err := svc.Update(ctx, "entity-1", "intruder", &UpdateRequest{Name: &name})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestEntityService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&MockStore{}, &MockVerifier{}, zap.NewNop())

	_, err := svc.Get(ctx, "missing")
	if !apperrors.Is(err, apperrors.CategoryNotFound) {
		t.Fatalf("expected CategoryNotFound, got %v", err)
	}
}
