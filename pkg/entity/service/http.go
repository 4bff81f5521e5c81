package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/canton-backing/pkg/app/errors"
	apphttp "github.com/chainsafe/canton-backing/pkg/app/http"
	"github.com/chainsafe/canton-backing/pkg/auth"
	"github.com/chainsafe/canton-backing/pkg/entity"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

type createEntityRequest struct {
	Type         string          `json:"type" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	Description  string          `json:"description"`
	PartyID      string          `json:"party_id" validate:"required"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SelfRegister bool            `json:"self_register"`
}

type updateEntityRequest struct {
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	TargetAmount *decimal.Decimal `json:"target_amount"`
}

// RegisterRoutes registers entity endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Route("/entities", func(r chi.Router) {
		r.Post("/", apphttp.HandleError(h.create))
		r.Get("/", apphttp.HandleError(h.list))
		r.Get("/{entityID}", apphttp.HandleError(h.get))
		r.Post("/{entityID}/claim", apphttp.HandleError(h.claim))
		r.Patch("/{entityID}", apphttp.HandleError(h.update))
	})
}

func (h *HTTP) create(w http.ResponseWriter, r *http.Request) error {
	var req createEntityRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	svcReq := &CreateRequest{
		Type:         entity.Type(req.Type),
		Name:         req.Name,
		Description:  req.Description,
		PartyID:      req.PartyID,
		TargetAmount: req.TargetAmount,
	}
	if req.SelfRegister {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			return apperrors.UnAuthorizedError(nil, "authentication required")
		}
		svcReq.OwnerID = userID
	}

	e, err := h.service.Create(r.Context(), svcReq)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, e)
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	entityType := entity.Type(r.URL.Query().Get("type"))

	entities, err := h.service.List(r.Context(), entityType)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, entities)
	return nil
}

func (h *HTTP) get(w http.ResponseWriter, r *http.Request) error {
	e, err := h.service.Get(r.Context(), chi.URLParam(r, "entityID"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, e)
	return nil
}

func (h *HTTP) claim(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}
	partyID, ok := auth.PartyIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "caller has no ledger party")
	}

	e, err := h.service.Claim(r.Context(), chi.URLParam(r, "entityID"), userID, partyID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, e)
	return nil
}

func (h *HTTP) update(w http.ResponseWriter, r *http.Request) error {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return apperrors.UnAuthorizedError(nil, "authentication required")
	}

	var req updateEntityRequest
	if err := apphttp.DecodeAndValidate(r, &req); err != nil {
		return err
	}

	e, err := h.service.Update(r.Context(), chi.URLParam(r, "entityID"), userID, &UpdateRequest{
		Name:         req.Name,
		Description:  req.Description,
		TargetAmount: req.TargetAmount,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, e)
	return nil
}
