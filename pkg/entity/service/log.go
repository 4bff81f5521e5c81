package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/chainsafe/canton-backing/pkg/entity"
)

type log struct {
	service Service
	logger  *zap.Logger
}

// NewLog decorates the entity service with request logging.
func NewLog(service Service, logger *zap.Logger) Service {
	return &log{service: service, logger: logger}
}

func (l *log) Create(ctx context.Context, req *CreateRequest) (*entity.Entity, error) {
	e, err := l.service.Create(ctx, req)
	if err != nil {
		l.logger.Error("failed to create entity",
			zap.String("party_id", req.PartyID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("entity created",
		zap.String("entity_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.String("claim_status", string(e.ClaimStatus)))
	return e, nil
}

func (l *log) Claim(ctx context.Context, entityID, userID, userParty string) (*entity.Entity, error) {
	e, err := l.service.Claim(ctx, entityID, userID, userParty)
	if err != nil {
		l.logger.Error("failed to claim entity",
			zap.String("entity_id", entityID),
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("entity claimed",
		zap.String("entity_id", e.ID),
		zap.String("user_id", userID))
	return e, nil
}

func (l *log) Update(ctx context.Context, entityID, userID string, req *UpdateRequest) (*entity.Entity, error) {
	e, err := l.service.Update(ctx, entityID, userID, req)
	if err != nil {
		l.logger.Error("failed to update entity",
			zap.String("entity_id", entityID),
			zap.Error(err))
		return nil, err
	}
	l.logger.Info("entity updated", zap.String("entity_id", e.ID))
	return e, nil
}

func (l *log) Get(ctx context.Context, entityID string) (*entity.Entity, error) {
	return l.service.Get(ctx, entityID)
}

func (l *log) List(ctx context.Context, entityType entity.Type) ([]*entity.Entity, error) {
	return l.service.List(ctx, entityType)
}
