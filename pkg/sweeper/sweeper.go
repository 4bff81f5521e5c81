// Package sweeper finalizes timed state: it completes withdrawals whose
// unlock period has elapsed and closes campaigns past their deadline.
package sweeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/internal/metrics"
	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	"github.com/chainsafe/canton-backing/pkg/backing"
)

// BackingService is the slice of the backing service the sweeper drives.
type BackingService interface {
	ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error)
	CompleteWithdrawal(ctx context.Context, backingID string) (*backing.Backing, error)
}

// CampaignCloser closes campaigns whose deadline has passed.
type CampaignCloser interface {
	CloseDueCampaigns(ctx context.Context, now time.Time) ([]string, error)
}

// Sweeper periodically finalizes due unlocks and expired campaigns.
type Sweeper struct {
	backings  BackingService
	campaigns CampaignCloser
	logger    *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Sweeper
func New(backings BackingService, campaigns CampaignCloser, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		backings:  backings,
		campaigns: campaigns,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// SweepOnce runs a single pass: completes every due withdrawal and closes
// every campaign past its deadline. Individual failures are logged and do
// not abort the pass, so overlapping sweeps stay safe.
func (s *Sweeper) SweepOnce(ctx context.Context) error {
	now := time.Now().UTC()

	ready, err := s.backings.ListUnlockingReady(ctx, now)
	if err != nil {
		metrics.SweepErrors.Inc()
		return err
	}

	var completed int
	for _, b := range ready {
		if _, err := s.backings.CompleteWithdrawal(ctx, b.ID); err != nil {
			// A concurrent sweep or caller already finished this one.
			if apperrors.Is(err, apperrors.CategoryInvalidState) {
				continue
			}
			// Lost a row race; the next pass picks it up.
			if apperrors.IsRetryable(err) {
				continue
			}
			metrics.SweepErrors.Inc()
			s.logger.Error("failed to complete withdrawal",
				zap.String("backing_id", b.ID),
				zap.Error(err))
			continue
		}
		completed++
		metrics.SweepsCompleted.Inc()
	}

	closed, err := s.campaigns.CloseDueCampaigns(ctx, now)
	if err != nil {
		metrics.SweepErrors.Inc()
		return err
	}
	metrics.CampaignsAutoClosed.Add(float64(len(closed)))

	if completed > 0 || len(closed) > 0 {
		s.logger.Info("sweep pass completed",
			zap.Int("withdrawals_completed", completed),
			zap.Int("campaigns_closed", len(closed)))
	}
	return nil
}

// Start runs sweep passes on the given interval until Stop is called.
func (s *Sweeper) Start(interval time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.logger.Info("started unlock sweeper", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
				if err := s.SweepOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
					s.logger.Error("sweep pass failed", zap.Error(err))
				}
				cancel()
			case <-s.stopCh:
				s.logger.Info("stopping unlock sweeper")
				return
			}
		}
	}()
}

// Stop terminates the sweeper and waits for the current pass to finish.
func (s *Sweeper) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}
