// Package recalc re-derives entity and campaign current amounts from the
// backing ledger. Aggregates are normally maintained transactionally by the
// store; the periodic pass here is a backstop that corrects any drift, for
// example after a manual data fix.
package recalc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/internal/metrics"
	"github.com/chainsafe/canton-backing/pkg/campaign"
	"github.com/chainsafe/canton-backing/pkg/entity"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
)

const maxAttempts = 3

// Store provides the aggregate recomputation operations.
type Store interface {
	ListEntities(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error)
	ListCampaignsByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error)
	RecomputeEntityAmount(ctx context.Context, id string) (string, error)
	RecomputeCampaignAmount(ctx context.Context, id string) (string, error)
}

// Recalculator recomputes derived amounts with bounded retry on lock races.
type Recalculator struct {
	store  Store
	logger *zap.Logger

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a new Recalculator
func New(store Store, logger *zap.Logger) *Recalculator {
	return &Recalculator{
		store:  store,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// RecomputeEntity re-derives one entity's current amount, retrying lost
// lock races a bounded number of times.
func (r *Recalculator) RecomputeEntity(ctx context.Context, entityID string) (string, error) {
	sum, err := r.withRetry(ctx, func() (string, error) {
		return r.store.RecomputeEntityAmount(ctx, entityID)
	})
	if err != nil {
		metrics.RecomputeRuns.WithLabelValues("entity", "error").Inc()
		return "", err
	}
	metrics.RecomputeRuns.WithLabelValues("entity", "ok").Inc()
	return sum, nil
}

// RecomputeCampaign re-derives one campaign's current amount.
func (r *Recalculator) RecomputeCampaign(ctx context.Context, campaignID string) (string, error) {
	sum, err := r.withRetry(ctx, func() (string, error) {
		return r.store.RecomputeCampaignAmount(ctx, campaignID)
	})
	if err != nil {
		metrics.RecomputeRuns.WithLabelValues("campaign", "error").Inc()
		return "", err
	}
	metrics.RecomputeRuns.WithLabelValues("campaign", "ok").Inc()
	return sum, nil
}

// RecomputeAll walks every entity and its campaigns and re-derives their
// amounts. Errors on individual records are logged and do not abort the
// pass.
func (r *Recalculator) RecomputeAll(ctx context.Context) error {
	start := time.Now()

	entities, err := r.store.ListEntities(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to list entities: %w", err)
	}

	var failed int
	for _, e := range entities {
		if _, err := r.RecomputeEntity(ctx, e.ID); err != nil {
			failed++
			r.logger.Warn("entity recompute failed",
				zap.String("entity_id", e.ID),
				zap.Error(err))
			continue
		}

		campaigns, err := r.store.ListCampaignsByEntity(ctx, e.ID)
		if err != nil {
			failed++
			r.logger.Warn("failed to list campaigns for recompute",
				zap.String("entity_id", e.ID),
				zap.Error(err))
			continue
		}
		for _, c := range campaigns {
			if _, err := r.RecomputeCampaign(ctx, c.ID); err != nil {
				failed++
				r.logger.Warn("campaign recompute failed",
					zap.String("campaign_id", c.ID),
					zap.Error(err))
			}
		}
	}

	r.logger.Info("aggregate recompute pass completed",
		zap.Int("entities", len(entities)),
		zap.Int("failed", failed),
		zap.Duration("duration", time.Since(start)))
	return nil
}

// StartPeriodic starts a background goroutine that runs RecomputeAll on the
// given interval until Stop is called.
func (r *Recalculator) StartPeriodic(interval time.Duration) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		r.logger.Info("started periodic aggregate recompute", zap.Duration("interval", interval))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				if err := r.RecomputeAll(ctx); err != nil {
					r.logger.Error("periodic recompute failed", zap.Error(err))
				}
				cancel()
			case <-r.stopCh:
				r.logger.Info("stopping periodic aggregate recompute")
				return
			}
		}
	}()
}

// Stop terminates the periodic recompute and waits for it to finish.
func (r *Recalculator) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

func (r *Recalculator) withRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		sum, err := fn()
		if err == nil {
			return sum, nil
		}
		lastErr = err
		if !errors.Is(err, fundingstore.ErrSerialization) {
			return "", err
		}
		metrics.RecomputeRetries.Inc()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return "", fmt.Errorf("recompute failed after %d attempts: %w", maxAttempts, lastErr)
}
