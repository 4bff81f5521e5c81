package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/pkg/invite"
)

type log struct {
	service Service
	logger  *zap.Logger
}

// NewLog decorates the invite service with request logging.
func NewLog(service Service, logger *zap.Logger) Service {
	return &log{service: service, logger: logger}
}

func (l *log) Send(ctx context.Context, senderID string, req *SendRequest) (*invite.Invite, error) {
	inv, err := l.service.Send(ctx, senderID, req)
	if err != nil {
		l.logger.Error("failed to send invite",
			zap.String("campaign_id", req.CampaignID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("invite sent",
		zap.String("invite_id", inv.ID),
		zap.String("campaign_id", inv.CampaignID),
		zap.Bool("resolved", inv.Resolved()))
	return inv, nil
}

func (l *log) Respond(ctx context.Context, inviteID, userID string, decision ResponseDecision) (*invite.Invite, error) {
	inv, err := l.service.Respond(ctx, inviteID, userID, decision)
	if err != nil {
		l.logger.Error("failed to respond to invite",
			zap.String("invite_id", inviteID),
			zap.String("decision", string(decision)),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("invite responded",
		zap.String("invite_id", inv.ID),
		zap.String("status", string(inv.Status)))
	return inv, nil
}

func (l *log) Cancel(ctx context.Context, inviteID, userID string) (*invite.Invite, error) {
	inv, err := l.service.Cancel(ctx, inviteID, userID)
	if err != nil {
		l.logger.Error("failed to cancel invite",
			zap.String("invite_id", inviteID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("invite cancelled", zap.String("invite_id", inv.ID))
	return inv, nil
}

func (l *log) Get(ctx context.Context, inviteID string) (*invite.Invite, error) {
	return l.service.Get(ctx, inviteID)
}

func (l *log) ListByCampaign(ctx context.Context, campaignID, userID string) ([]*invite.Invite, error) {
	return l.service.ListByCampaign(ctx, campaignID, userID)
}
