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

type sendInviteRequest struct {
	CampaignID       string           `json:"campaign_id" validate:"required"`
	RecipientUserID  string           `json:"recipient_user_id"`
	RecipientEmail   string           `json:"recipient_email" validate:"omitempty,email"`
	RecipientPartyID string           `json:"recipient_party_id"`
	SuggestedAmount  *decimal.Decimal `json:"suggested_amount"`
	Message          string           `json:"message"`
}

type respondInviteRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPT DECLINE"`
}

// RegisterRoutes registers invite endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/invites", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.send))
		r.Get("/{inviteID}", apphttp.HandleError(h.get))
		r.Post("/{inviteID}/respond", apphttp.HandleError(h.respond))
		r.Post("/{inviteID}/cancel", apphttp.HandleError(h.cancel))
	})
	r.Get("/campaigns/{campaignID}/invites", apphttp.HandleError(h.listByCampaign))
}

func (h *HTTP) send(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req sendInviteRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	inv, err := h.service.Send(r.Context(), userID, &SendRequest{
		CampaignID:       req.CampaignID,
		RecipientUserID:  req.RecipientUserID,
		RecipientEmail:   req.RecipientEmail,
		RecipientPartyID: req.RecipientPartyID,
		SuggestedAmount:  req.SuggestedAmount,
		Message:          req.Message,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, inv)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	inv, err := h.service.Get(r.Context(), chi.URLParam(r, "inviteID"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, inv)
	return nil
}

func (h *HTTP) respond(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req respondInviteRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	inv, err := h.service.Respond(r.Context(), chi.URLParam(r, "inviteID"),
		userID, ResponseDecision(req.Decision))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, inv)
	return nil
}

func (h *HTTP) cancel(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	inv, err := h.service.Cancel(r.Context(), chi.URLParam(r, "inviteID"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, inv)
	return nil
}

func (h *HTTP) listByCampaign(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	invites, err := h.service.ListByCampaign(r.Context(), chi.URLParam(r, "campaignID"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, invites)
	return nil
}
