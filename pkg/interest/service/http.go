package service

import (
	"net/http"

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

type registerInterestRequest struct {
	CampaignID   string          `json:"campaign_id" validate:"required"`
	PledgeAmount decimal.Decimal `json:"pledge_amount"`
	Message      string          `json:"message"`
}

type reviewInterestRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPT DECLINE"`
	Note     string `json:"note"`
}

// RegisterRoutes registers interest endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/interests", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.register))
		r.Get("/{interestID}", apphttp.HandleError(h.get))
		r.Post("/{interestID}/review", apphttp.HandleError(h.review))
		r.Post("/{interestID}/withdraw", apphttp.HandleError(h.withdraw))
	})
	r.Get("/campaigns/{campaignID}/interests", apphttp.HandleError(h.listByCampaign))
}

func (h *HTTP) register(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req registerInterestRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	i, err := h.service.Register(r.Context(), userID, &RegisterRequest{
		CampaignID:   req.CampaignID,
		PledgeAmount: req.PledgeAmount,
		Message:      req.Message,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, i)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	i, err := h.service.Get(r.Context(), chi.URLParam(r, "interestID"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, i)
	return nil
}

func (h *HTTP) review(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req reviewInterestRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	i, err := h.service.Review(r.Context(), chi.URLParam(r, "interestID"),
		userID, ReviewDecision(req.Decision), req.Note)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, i)
	return nil
}

func (h *HTTP) withdraw(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	i, err := h.service.Withdraw(r.Context(), chi.URLParam(r, "interestID"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, i)
	return nil
}

func (h *HTTP) listByCampaign(w http.ResponseWriter, r *http.Request) error {
	interests, err := h.service.ListByCampaign(r.Context(), chi.URLParam(r, "campaignID"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, interests)
	return nil
}
