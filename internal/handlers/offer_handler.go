package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/services"
	"github.com/b2bquote/rfq-service/internal/utils"
)

// OfferHandler - структура для обработки HTTP-запросов к предложениям.
type OfferHandler struct {
	Service *services.OfferService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewOfferHandler создает новый экземпляр OfferHandler.
func NewOfferHandler(service *services.OfferService, logger *log.Logger, timeout time.Duration) *OfferHandler {
	return &OfferHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// SubmitOffer обрабатывает подачу предложения поставщиком.
func (h *OfferHandler) SubmitOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var offerReq models.OfferRequest
	if err := json.NewDecoder(r.Body).Decode(&offerReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	offer, err := h.Service.SubmitOffer(ctx, actor, offerReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, offer)
}

// GetOffers обрабатывает запросы на получение списка предложений.
func (h *OfferHandler) GetOffers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	offers, err := h.Service.ListOffers(ctx, actor)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	utils.SendJSON(w, http.StatusOK, offers)
}

// GetOffersForRFQ обрабатывает запросы на предложения по одному RFQ.
func (h *OfferHandler) GetOffersForRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	offers, err := h.Service.ListOffersForRFQ(ctx, actor, r.PathValue("rfqId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	if offers == nil {
		offers = []models.Offer{}
	}
	utils.SendJSON(w, http.StatusOK, offers)
}

// DeleteOffer обрабатывает удаление предложения.
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	if err := h.Service.DeleteOffer(ctx, actor, r.PathValue("offerId")); err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RejectFinalOffer обрабатывает отклонение финального предложения клиентом.
func (h *OfferHandler) RejectFinalOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	if err := h.Service.RejectFinalOffer(ctx, actor, r.PathValue("offerId")); err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
