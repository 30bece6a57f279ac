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

// OrderHandler - структура для обработки HTTP-запросов к заказам.
type OrderHandler struct {
	Service *services.OrderService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewOrderHandler создает новый экземпляр OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *log.Logger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// CreateOrder обрабатывает принятие финального предложения клиентом.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var createReq models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&createReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	order, err := h.Service.CreateOrder(ctx, actor, createReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusCreated, order)
}

// GetOrders обрабатывает запросы на получение списка заказов.
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	orders, err := h.Service.ListOrders(ctx, actor)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	utils.SendJSON(w, http.StatusOK, orders)
}

// GetOrder обрабатывает запросы на получение одного заказа.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	order, err := h.Service.GetOrder(ctx, actor, r.PathValue("orderId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, order)
}

// UpdatePayment обрабатывает смену статуса оплаты.
func (h *OrderHandler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var paymentReq models.UpdatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&paymentReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	order, err := h.Service.UpdatePayment(ctx, actor, r.PathValue("orderId"), paymentReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, order)
}

// UpdateDelivery обрабатывает смену статуса доставки.
func (h *OrderHandler) UpdateDelivery(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	var deliveryReq models.UpdateDeliveryRequest
	if err := json.NewDecoder(r.Body).Decode(&deliveryReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, models.KindValidation, "invalid request body")
		return
	}

	order, err := h.Service.UpdateDelivery(ctx, actor, r.PathValue("orderId"), deliveryReq)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, order)
}

// FinalizeOrder обрабатывает финализацию заказа администратором.
func (h *OrderHandler) FinalizeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	order, err := h.Service.FinalizeOrder(ctx, actor, r.PathValue("orderId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, order)
}

// ArchiveOrder обрабатывает архивацию финализированного заказа.
func (h *OrderHandler) ArchiveOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	order, err := h.Service.ArchiveOrder(ctx, actor, r.PathValue("orderId"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, order)
}

// DeleteOrder обрабатывает удаление заказа до подтверждения оплаты.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	if err := h.Service.DeleteOrder(ctx, actor, r.PathValue("orderId")); err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
