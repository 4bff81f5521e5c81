package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/pkg/campaign"
)

type log struct {
	service Service
	logger  *zap.Logger
}

// NewLog decorates the campaign service with request logging.
func NewLog(service Service, logger *zap.Logger) Service {
	return &log{service: service, logger: logger}
}

func (l *log) Create(ctx context.Context, userID string, req *CreateRequest) (*campaign.Campaign, error) {
	c, err := l.service.Create(ctx, userID, req)
	if err != nil {
		l.logger.Error("failed to create campaign",
			zap.String("entity_id", req.EntityID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("campaign created",
		zap.String("campaign_id", c.ID),
		zap.String("entity_id", c.EntityID))
	return c, nil
}

func (l *log) Publish(ctx context.Context, campaignID, userID string) (*campaign.Campaign, error) {
	c, err := l.service.Publish(ctx, campaignID, userID)
	if err != nil {
		l.logger.Error("failed to publish campaign",
			zap.String("campaign_id", campaignID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("campaign published", zap.String("campaign_id", c.ID))
	return c, nil
}

func (l *log) Close(ctx context.Context, campaignID, userID string) (*campaign.Campaign, error) {
	c, err := l.service.Close(ctx, campaignID, userID)
	if err != nil {
		l.logger.Error("failed to close campaign",
			zap.String("campaign_id", campaignID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("campaign closed", zap.String("campaign_id", c.ID))
	return c, nil
}

func (l *log) Get(ctx context.Context, campaignID string) (*campaign.Campaign, error) {
	return l.service.Get(ctx, campaignID)
}

func (l *log) ListByEntity(ctx context.Context, entityID string) ([]*campaign.Campaign, error) {
	return l.service.ListByEntity(ctx, entityID)
}
