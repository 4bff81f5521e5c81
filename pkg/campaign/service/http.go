package service

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	apphttp "github.com/chainsafe/canton-backing/pkg/app/http"
	"github.com/chainsafe/canton-backing/pkg/auth"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type createCampaignRequest struct {
	EntityID        string           `json:"entity_id" validate:"required"`
	Name            string           `json:"name" validate:"required"`
	Description     string           `json:"description"`
	TargetAmount    decimal.Decimal  `json:"target_amount"`
	MinContribution *decimal.Decimal `json:"min_contribution"`
	MaxContribution *decimal.Decimal `json:"max_contribution"`
	EndsAt          *time.Time       `json:"ends_at"`
}

// RegisterRoutes registers campaign endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.create))
		r.Get("/{campaignID}", apphttp.HandleError(h.get))
		r.Post("/{campaignID}/publish", apphttp.HandleError(h.publish))
		r.Post("/{campaignID}/close", apphttp.HandleError(h.close))
	})
	r.Get("/entities/{entityID}/campaigns", apphttp.HandleError(h.listByEntity))
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req createCampaignRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	c, err := h.service.Create(r.Context(), userID, &CreateRequest{
		EntityID:        req.EntityID,
		Name:            req.Name,
		Description:     req.Description,
		TargetAmount:    req.TargetAmount,
		MinContribution: req.MinContribution,
		MaxContribution: req.MaxContribution,
		EndsAt:          req.EndsAt,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, c)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, c)
	return nil
}

func (h *HTTP) publish(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	c, err := h.service.Publish(r.Context(), chi.URLParam(r, "campaignID"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, c)
	return nil
}

func (h *HTTP) close(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	c, err := h.service.Close(r.Context(), chi.URLParam(r, "campaignID"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, c)
	return nil
}

func (h *HTTP) listByEntity(w http.ResponseWriter, r *http.Request) error {
	campaigns, err := h.service.ListByEntity(r.Context(), chi.URLParam(r, "entityID"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, campaigns)
	return nil
}
