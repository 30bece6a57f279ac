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

// NegotiationHandler - структура для обработки HTTP-запросов к переговорам.
type NegotiationHandler struct {
	Service *services.NegotiationService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewNegotiationHandler создает новый экземпляр NegotiationHandler.
func NewNegotiationHandler(service *services.NegotiationService, logger *log.Logger, timeout time.Duration) *NegotiationHandler {
	return &NegotiationHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// StartNegotiation обрабатывает начало переговоров администратором.
func (h *NegotiationHandler) StartNegotiation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var startReq models.StartNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&startReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	negotiation, err := h.Service.StartNegotiation(ctx, actor, startReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, negotiation)
}

// GetNegotiation обрабатывает запросы на получение переговоров с историей.
func (h *NegotiationHandler) GetNegotiation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	view, err := h.Service.GetNegotiation(ctx, actor, r.PathValue("negotiationId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, view)
}

// GetNegotiationByOffer обрабатывает запросы на получение переговоров по предложению.
func (h *NegotiationHandler) GetNegotiationByOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	view, err := h.Service.GetNegotiationByOffer(ctx, actor, r.PathValue("offerId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, view)
}

// SupplierRespond обрабатывает ответ поставщика: встречное предложение
// или финальное согласие.
func (h *NegotiationHandler) SupplierRespond(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var respondReq models.RespondNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&respondReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	negotiation, err := h.Service.SupplierRespond(ctx, actor, r.PathValue("negotiationId"), respondReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, negotiation)
}

// AdminRespond обрабатывает встречное предложение администратора.
func (h *NegotiationHandler) AdminRespond(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var respondReq models.RespondNegotiationRequest
	if err := json.NewDecoder(r.Body).Decode(&respondReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	negotiation, err := h.Service.AdminRespond(ctx, actor, r.PathValue("negotiationId"), respondReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, negotiation)
}

// SupplierReject обрабатывает явный отказ поставщика.
func (h *NegotiationHandler) SupplierReject(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	// Сообщение при отказе необязательно: пустое тело допускается.
	var body struct {
		Message string `json:"message"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if err := h.Service.SupplierReject(ctx, actor, r.PathValue("negotiationId"), body.Message); err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelNegotiation обрабатывает отмену переговоров администратором.
func (h *NegotiationHandler) CancelNegotiation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	if err := h.Service.CancelNegotiation(ctx, actor, r.PathValue("negotiationId")); err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
