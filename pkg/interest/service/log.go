package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/pkg/interest"
)

type log struct {
	service Service
	logger  *zap.Logger
}

// NewLog decorates the interest service with request logging.
func NewLog(service Service, logger *zap.Logger) Service {
	return &log{service: service, logger: logger}
}

func (l *log) Register(ctx context.Context, userID string, req *RegisterRequest) (*interest.Interest, error) {
	i, err := l.service.Register(ctx, userID, req)
	if err != nil {
		l.logger.Error("failed to register interest",
			zap.String("campaign_id", req.CampaignID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("interest registered",
		zap.String("interest_id", i.ID),
		zap.String("campaign_id", i.CampaignID),
		zap.String("amount", i.PledgeAmount.String()))
	return i, nil
}

func (l *log) Review(ctx context.Context, interestID, reviewerID string, decision ReviewDecision, note string) (*interest.Interest, error) {
	i, err := l.service.Review(ctx, interestID, reviewerID, decision, note)
	if err != nil {
		l.logger.Error("failed to review interest",
			zap.String("interest_id", interestID),
			zap.String("decision", string(decision)),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("interest reviewed",
		zap.String("interest_id", i.ID),
		zap.String("status", string(i.Status)))
	return i, nil
}

func (l *log) Withdraw(ctx context.Context, interestID, userID string) (*interest.Interest, error) {
	i, err := l.service.Withdraw(ctx, interestID, userID)
	if err != nil {
		l.logger.Error("failed to withdraw interest",
			zap.String("interest_id", interestID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("interest withdrawn", zap.String("interest_id", i.ID))
	return i, nil
}

func (l *log) Get(ctx context.Context, interestID string) (*interest.Interest, error) {
	return l.service.Get(ctx, interestID)
}

func (l *log) ListByCampaign(ctx context.Context, campaignID string) ([]*interest.Interest, error) {
	return l.service.ListByCampaign(ctx, campaignID)
}
