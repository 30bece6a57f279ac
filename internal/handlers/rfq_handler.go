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

// RFQHandler - структура для обработки HTTP-запросов к запросам котировок.
type RFQHandler struct {
	Service *services.RFQService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewRFQHandler создает новый экземпляр RFQHandler.
func NewRFQHandler(service *services.RFQService, logger *log.Logger, timeout time.Duration) *RFQHandler {
	return &RFQHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateRFQ обрабатывает запросы на создание черновика RFQ.
func (h *RFQHandler) CreateRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var rfqReq models.RFQRequest
	if err := json.NewDecoder(r.Body).Decode(&rfqReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	rfq, err := h.Service.CreateRFQ(ctx, actor, rfqReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, rfq)
}

// GetRFQs обрабатывает запросы на получение списка RFQ.
func (h *RFQHandler) GetRFQs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")

	rfqs, err := h.Service.ListRFQs(ctx, actor, limitStr, offsetStr)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	if rfqs == nil {
		rfqs = []models.RFQ{}
	}
	utils.SendJSON(w, http.StatusOK, rfqs)
}

// GetRFQ обрабатывает запросы на получение одного RFQ с предложениями.
func (h *RFQHandler) GetRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	view, err := h.Service.GetRFQ(ctx, actor, r.PathValue("rfqId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, view)
}

// PublishRFQ обрабатывает запросы на публикацию черновика.
func (h *RFQHandler) PublishRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	rfq, err := h.Service.PublishRFQ(ctx, actor, r.PathValue("rfqId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, rfq)
}

// SendToClient обрабатывает запросы на отправку финального предложения клиенту.
func (h *RFQHandler) SendToClient(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var body struct {
		OfferID string `json:"offerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	rfq, err := h.Service.SendToClient(ctx, actor, r.PathValue("rfqId"), body.OfferID)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, rfq)
}

// DeleteRFQ обрабатывает запросы на удаление черновика.
func (h *RFQHandler) DeleteRFQ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	if err := h.Service.DeleteRFQ(ctx, actor, r.PathValue("rfqId")); err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetGatekeeperStatus обрабатывает вердикт внешнего фильтра рисков.
func (h *RFQHandler) SetGatekeeperStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var body struct {
		Status models.GatekeeperStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	if err := h.Service.SetGatekeeperStatus(ctx, actor, r.PathValue("rfqId"), body.Status); err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
