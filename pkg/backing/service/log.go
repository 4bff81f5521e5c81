package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/pkg/backing"
)

type log struct {
	service Service
	logger  *zap.Logger
}

// NewLog decorates the backing service with request logging.
func NewLog(service Service, logger *zap.Logger) Service {
	return &log{service: service, logger: logger}
}

func (l *log) Create(ctx context.Context, userID string, req *CreateRequest) (*backing.Backing, error) {
	b, err := l.service.Create(ctx, userID, req)
	if err != nil {
		l.logger.Error("failed to create backing",
			zap.String("user_id", userID),
			zap.String("interest_id", req.InterestID),
			zap.String("invite_id", req.InviteID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("backing created",
		zap.String("backing_id", b.ID),
		zap.String("entity_id", b.EntityID),
		zap.String("campaign_id", b.CampaignID),
		zap.String("origin", b.Origin.Kind().String()),
		zap.String("amount", b.Amount.String()))
	return b, nil
}

func (l *log) Lock(ctx context.Context, backingID, userID string) (*backing.Backing, error) {
	b, err := l.service.Lock(ctx, backingID, userID)
	if err != nil {
		l.logger.Error("failed to lock backing",
			zap.String("backing_id", backingID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("backing locked", zap.String("backing_id", b.ID))
	return b, nil
}

func (l *log) RequestUnlock(ctx context.Context, backingID, userID string) (*backing.Backing, error) {
	b, err := l.service.RequestUnlock(ctx, backingID, userID)
	if err != nil {
		l.logger.Error("failed to request unlock",
			zap.String("backing_id", backingID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("unlock requested",
		zap.String("backing_id", b.ID),
		zap.Timep("effective_at", b.UnlockEffectiveAt))
	return b, nil
}

func (l *log) CompleteWithdrawal(ctx context.Context, backingID string) (*backing.Backing, error) {
	b, err := l.service.CompleteWithdrawal(ctx, backingID)
	if err != nil {
		l.logger.Error("failed to complete withdrawal",
			zap.String("backing_id", backingID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("withdrawal completed", zap.String("backing_id", b.ID))
	return b, nil
}

func (l *log) ListUnlockingReady(ctx context.Context, now time.Time) ([]*backing.Backing, error) {
	return l.service.ListUnlockingReady(ctx, now)
}

func (l *log) Get(ctx context.Context, backingID string) (*backing.Backing, error) {
	return l.service.Get(ctx, backingID)
}

func (l *log) List(ctx context.Context, filter ListFilter) ([]*backing.Backing, error) {
	return l.service.List(ctx, filter)
}
