package services

import (
	"context"
	"time"

	"github.com/b2bquote/rfq-service/internal/events"
	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/repository"

	"github.com/google/uuid"
)

// OrderService управляет заказами от создания до архивации. Статус заказа
// не назначается напрямую: это проекция осей оплаты и доставки, а также
// финализации и архивации.
type OrderService struct {
	Repo       repository.OrderRepository
	OfferRepo  repository.OfferRepository
	RFQRepo    repository.RFQRepository
	Dispatcher events.Dispatcher
}

// NewOrderService создает новый экземпляр OrderService.
func NewOrderService(repo repository.OrderRepository, offerRepo repository.OfferRepository, rfqRepo repository.RFQRepository, dispatcher events.Dispatcher) *OrderService {
	return &OrderService{Repo: repo, OfferRepo: offerRepo, RFQRepo: rfqRepo, Dispatcher: dispatcher}
}

// CreateOrder создает заказ по утвержденному клиентом предложению.
// Условия копируются из предложения в момент создания и дальше не меняются.
func (s *OrderService) CreateOrder(ctx context.Context, actor models.Actor, createReq models.CreateOrderRequest) (*models.Order, error) {
	if actor.Role != models.RoleClient {
		return nil, models.NewForbidden("only clients can accept offers")
	}

	offer, err := s.OfferRepo.GetOffer(ctx, createReq.OfferID)
	if err != nil {
		return nil, err
	}

	rfq, err := s.RFQRepo.GetRFQ(ctx, offer.RFQID)
	if err != nil {
		return nil, err
	}
	if rfq.ClientID != actor.UserID {
		return nil, models.NewForbidden("you do not own this rfq")
	}
	if err := ensureOfferTransition(offer.Status, models.AcceptedOffer); err != nil {
		return nil, err
	}
	if err := ensureRFQTransition(rfq.Status, models.ClosedRFQ); err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindOrderByOffer(ctx, createReq.OfferID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflict("order already exists for this offer")
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:                uuid.New().String(),
		RFQID:             offer.RFQID,
		OfferID:           offer.ID,
		ClientID:          actor.UserID,
		SupplierID:        offer.SupplierID,
		FinalPrice:        offer.Price,
		FinalTerms:        offer.Terms,
		Status:            models.CreatedOrder,
		IsLocked:          true,
		PaymentMockStatus: models.PendingPayment,
		DeliveryStatus:    models.PendingDelivery,
		CreatedAt:         now,
	}
	if err := s.Repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.OrderCreatedEvent,
		RFQID:      order.RFQID,
		OfferID:    order.OfferID,
		EntityID:   order.ID,
		ActorID:    actor.UserID,
		OccurredAt: now,
	})
	return order, nil
}

// ListOrders возвращает список заказов с фильтром по роли.
func (s *OrderService) ListOrders(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	filter := repository.OrderFilter{}
	switch actor.Role {
	case models.RoleClient:
		filter.ClientID = actor.UserID
	case models.RoleSupplier:
		filter.SupplierID = actor.UserID
	}
	return s.Repo.ListOrders(ctx, filter)
}

// GetOrder получает заказ. Доступен администратору и сторонам заказа.
func (s *OrderService) GetOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.UserID != order.ClientID && actor.UserID != order.SupplierID {
		return nil, models.NewForbidden("you are not a party to this order")
	}
	return order, nil
}

// UpdatePayment меняет статус оплаты. Обратных переходов нет:
// подтвержденная оплата остается подтвержденной.
func (s *OrderService) UpdatePayment(ctx context.Context, actor models.Actor, orderID string, paymentReq models.UpdatePaymentRequest) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can update the payment status")
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.FinalizedOrder || order.Status == models.ArchivedOrder {
		return nil, models.NewInvalidState("order is already finalized")
	}

	switch paymentReq.Status {
	case models.InitiatedPayment:
		if order.PaymentMockStatus != models.PendingPayment {
			return nil, models.NewInvalidState("payment has already been initiated")
		}
	case models.ConfirmedPayment:
		if order.PaymentMockStatus != models.InitiatedPayment {
			return nil, models.NewInvalidState("payment must be initiated before confirmation")
		}
	default:
		return nil, models.NewValidationError("unknown payment status")
	}

	from := order.Status
	order.PaymentMockStatus = paymentReq.Status
	order.Status = models.DeriveOrderStatus(order.PaymentMockStatus, order.DeliveryStatus)
	if err := s.Repo.UpdateOrderProgress(ctx, order, from); err != nil {
		return nil, err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.PaymentUpdatedEvent,
		RFQID:      order.RFQID,
		OfferID:    order.OfferID,
		EntityID:   order.ID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	})
	return order, nil
}

// UpdateDelivery меняет статус доставки. Начало и завершение доставки
// доступны администратору и поставщику, приемка - администратору и клиенту.
func (s *OrderService) UpdateDelivery(ctx context.Context, actor models.Actor, orderID string, deliveryReq models.UpdateDeliveryRequest) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.FinalizedOrder || order.Status == models.ArchivedOrder {
		return nil, models.NewInvalidState("order is already finalized")
	}

	switch deliveryReq.Status {
	case models.InProgressDelivery:
		if !actor.IsAdmin() && actor.UserID != order.SupplierID {
			return nil, models.NewForbidden("only the supplier can start the delivery")
		}
		if order.PaymentMockStatus != models.ConfirmedPayment {
			return nil, models.NewInvalidState("payment must be confirmed before delivery starts")
		}
		if order.DeliveryStatus != models.PendingDelivery {
			return nil, models.NewInvalidState("delivery has already started")
		}
	case models.DeliveredDelivery:
		if !actor.IsAdmin() && actor.UserID != order.SupplierID {
			return nil, models.NewForbidden("only the supplier can mark the delivery complete")
		}
		if order.DeliveryStatus != models.InProgressDelivery {
			return nil, models.NewInvalidState("delivery is not in progress")
		}
	case models.ReceivedDelivery:
		if !actor.IsAdmin() && actor.UserID != order.ClientID {
			return nil, models.NewForbidden("only the client can confirm receipt")
		}
		if order.DeliveryStatus != models.DeliveredDelivery {
			return nil, models.NewInvalidState("delivery has not been completed yet")
		}
	default:
		return nil, models.NewValidationError("unknown delivery status")
	}

	from := order.Status
	order.DeliveryStatus = deliveryReq.Status
	order.Status = models.DeriveOrderStatus(order.PaymentMockStatus, order.DeliveryStatus)
	if err := s.Repo.UpdateOrderProgress(ctx, order, from); err != nil {
		return nil, err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.DeliveryUpdatedEvent,
		RFQID:      order.RFQID,
		OfferID:    order.OfferID,
		EntityID:   order.ID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	})
	return order, nil
}

// FinalizeOrder финализирует принятый клиентом заказ.
func (s *OrderService) FinalizeOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can finalize orders")
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.ReceivedOrder {
		return nil, models.NewInvalidState("order must be received before finalization")
	}

	now := time.Now().UTC()
	order.Status = models.FinalizedOrder
	order.FinalizedAt = &now
	order.IsLocked = true
	if err := s.Repo.UpdateOrderProgress(ctx, order, models.ReceivedOrder); err != nil {
		return nil, err
	}
	return order, nil
}

// ArchiveOrder архивирует финализированный заказ.
func (s *OrderService) ArchiveOrder(ctx context.Context, actor models.Actor, orderID string) (*models.Order, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can archive orders")
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.FinalizedOrder {
		return nil, models.NewInvalidState("only finalized orders can be archived")
	}

	now := time.Now().UTC()
	order.Status = models.ArchivedOrder
	order.ArchivedAt = &now
	if err := s.Repo.UpdateOrderProgress(ctx, order, models.FinalizedOrder); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder удаляет заказ до подтверждения оплаты. RFQ возвращается
// клиенту, предложение разблокируется.
func (s *OrderService) DeleteOrder(ctx context.Context, actor models.Actor, orderID string) error {
	if !actor.IsAdmin() {
		return models.NewForbidden("only admins can delete orders")
	}

	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Deletable() {
		return models.NewInvalidState("order cannot be deleted after payment confirmation")
	}

	rfq, err := s.RFQRepo.GetRFQ(ctx, order.RFQID)
	if err != nil {
		return err
	}
	if err := ensureRFQTransition(rfq.Status, models.SentToClientRFQ); err != nil {
		return err
	}

	if err := s.Repo.DeleteOrder(ctx, orderID, order.RFQID, order.OfferID); err != nil {
		return err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.OrderDeletedEvent,
		RFQID:      order.RFQID,
		OfferID:    order.OfferID,
		EntityID:   order.ID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
