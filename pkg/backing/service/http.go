package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	apphttp "github.com/chainsafe/canton-backing/pkg/app/http"
	"github.com/chainsafe/canton-backing/pkg/auth"
	"github.com/chainsafe/canton-backing/pkg/backing"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type createBackingRequest struct {
	EntityID   string          `json:"entity_id"`
	CampaignID string          `json:"campaign_id"`
	Amount     decimal.Decimal `json:"amount"`
	InterestID string          `json:"interest_id"`
	InviteID   string          `json:"invite_id"`
}

// RegisterRoutes registers backing endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/backings", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.create))
		r.Get("/", apphttp.HandleError(h.list))
		r.Get("/{backingID}", apphttp.HandleError(h.get))
		r.Post("/{backingID}/lock", apphttp.HandleError(h.lock))
		r.Post("/{backingID}/unlock", apphttp.HandleError(h.requestUnlock))
	})
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req createBackingRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	b, err := h.service.Create(r.Context(), userID, &CreateRequest{
		EntityID:   req.EntityID,
		CampaignID: req.CampaignID,
		Amount:     req.Amount,
		InterestID: req.InterestID,
		InviteID:   req.InviteID,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, b)
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()
	filter := ListFilter{
		UserID:     q.Get("user_id"),
		EntityID:   q.Get("entity_id"),
		CampaignID: q.Get("campaign_id"),
	}
	for _, s := range q["status"] {
		filter.Statuses = append(filter.Statuses, backing.Status(s))
	}

	backings, err := h.service.List(r.Context(), filter)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, backings)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	b, err := h.service.Get(r.Context(), chi.URLParam(r, "backingID"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, b)
	return nil
}

func (h *HTTP) lock(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	b, err := h.service.Lock(r.Context(), chi.URLParam(r, "backingID"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, b)
	return nil
}

func (h *HTTP) requestUnlock(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	b, err := h.service.RequestUnlock(r.Context(), chi.URLParam(r, "backingID"), userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, b)
	return nil
}
