package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	"github.com/chainsafe/canton-backing/pkg/backing"
)

type mockBackings struct {
	ListUnlockingReadyFunc func(ctx context.Context, now time.Time) ([]*backing.Backing, error)
	CompleteWithdrawalFunc func(ctx context.Context, backingID string) (*backing.Backing, error)
}

func (m *mockBackings) ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error) {
	if m.ListUnlockingReadyFunc != nil {
		return m.ListUnlockingReadyFunc(ctx, now)
	}
	return nil, nil
}

func (m *mockBackings) CompleteWithdrawal(ctx context.Context, backingID string) (*backing.Backing, error) {
	if m.CompleteWithdrawalFunc != nil {
		return m.CompleteWithdrawalFunc(ctx, backingID)
	}
	return &backing.Backing{ID: backingID, Status: backing.StatusWithdrawn}, nil
}

type mockCampaigns struct {
	CloseDueCampaignsFunc func(ctx context.Context, now time.Time) ([]string, error)
}

func (m *mockCampaigns) CloseDueCampaigns(ctx context.Context, now time.Time) ([]string, error) {
	if m.CloseDueCampaignsFunc != nil {
		return m.CloseDueCampaignsFunc(ctx, now)
	}
	return nil, nil
}

func TestSweeper_SweepOnce(t *testing.T) {
	var withdrawn []string
	backings := &mockBackings{
		ListUnlockingReadyFunc: func(_ context.Context, _ time.Time) ([]*backing.Backing, error) {
			return []*backing.Backing{
				{ID: "backing-1", Status: backing.StatusUnlocking},
				{ID: "backing-2", Status: backing.StatusUnlocking},
			}, nil
		},
		CompleteWithdrawalFunc: func(_ context.Context, backingID string) (*backing.Backing, error) {
			withdrawn = append(withdrawn, backingID)
			return &backing.Backing{ID: backingID, Status: backing.StatusWithdrawn}, nil
		},
	}
	var closedAt time.Time
	campaigns := &mockCampaigns{
		CloseDueCampaignsFunc: func(_ context.Context, now time.Time) ([]string, error) {
			closedAt = now
			return []string{"campaign-1"}, nil
		},
	}

	s := New(backings, campaigns, zap.NewNop())
	if err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() failed: %v", err)
	}
	if len(withdrawn) != 2 {
		t.Fatalf("expected 2 withdrawals, got %v", withdrawn)
	}
	if closedAt.IsZero() {
		t.Fatal("expected campaigns closed with sweep timestamp")
	}
}

func TestSweeper_SweepOnce_SkipsAlreadyFinalized(t *testing.T) {
	backings := &mockBackings{
		ListUnlockingReadyFunc: func(_ context.Context, _ time.Time) ([]*backing.Backing, error) {
			return []*backing.Backing{
				{ID: "backing-1", Status: backing.StatusUnlocking},
				{ID: "backing-2", Status: backing.StatusUnlocking},
			}, nil
		},
		CompleteWithdrawalFunc: func(_ context.Context, backingID string) (*backing.Backing, error) {
			if backingID == "backing-1" {
				// Another sweep got there first.
				return nil, apperrors.InvalidStateError(nil, "backing is not unlocking")
			}
			return &backing.Backing{ID: backingID, Status: backing.StatusWithdrawn}, nil
		},
	}

	s := New(backings, &mockCampaigns{}, zap.NewNop())
	if err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() failed: %v", err)
	}
}

func TestSweeper_SweepOnce_DefersLostRaces(t *testing.T) {
	backings := &mockBackings{
		ListUnlockingReadyFunc: func(_ context.Context, _ time.Time) ([]*backing.Backing, error) {
			return []*backing.Backing{
				{ID: "backing-1", Status: backing.StatusUnlocking},
			}, nil
		},
		CompleteWithdrawalFunc: func(_ context.Context, _ string) (*backing.Backing, error) {
			// The row lock went to someone else; the next pass retries.
			return nil, apperrors.ConcurrencyConflictError(nil, "backing was updated concurrently")
		},
	}

	s := New(backings, &mockCampaigns{}, zap.NewNop())
	if err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() failed: %v", err)
	}
}

func TestSweeper_SweepOnce_ListError(t *testing.T) {
	listErr := errors.New("db down")
	backings := &mockBackings{
		ListUnlockingReadyFunc: func(_ context.Context, _ time.Time) ([]*backing.Backing, error) {
			return nil, listErr
		},
	}

	s := New(backings, &mockCampaigns{}, zap.NewNop())
	if err := s.SweepOnce(context.Background()); !errors.Is(err, listErr) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestSweeper_SweepOnce_WithdrawalErrorDoesNotAbort(t *testing.T) {
	var attempted []string
	backings := &mockBackings{
		ListUnlockingReadyFunc: func(_ context.Context, _ time.Time) ([]*backing.Backing, error) {
			return []*backing.Backing{
				{ID: "backing-1", Status: backing.StatusUnlocking},
				{ID: "backing-2", Status: backing.StatusUnlocking},
			}, nil
		},
		CompleteWithdrawalFunc: func(_ context.Context, backingID string) (*backing.Backing, error) {
			attempted = append(attempted, backingID)
			if backingID == "backing-1" {
				return nil, errors.New("transient failure")
			}
			return &backing.Backing{ID: backingID, Status: backing.StatusWithdrawn}, nil
		},
	}

	s := New(backings, &mockCampaigns{}, zap.NewNop())
	if err := s.SweepOnce(context.Background()); err != nil {
		t.Fatalf("SweepOnce() failed: %v", err)
	}
	if len(attempted) != 2 {
		t.Fatalf("expected both withdrawals attempted, got %v", attempted)
	}
}

func TestSweeper_StartStop(t *testing.T) {
	s := New(&mockBackings{}, &mockCampaigns{}, zap.NewNop())
	s.Start(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	s.Stop()
}
