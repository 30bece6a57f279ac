package models

import "time"

type (
	OrderStatus    string // Статус заказа (проекция, не назначается напрямую)
	PaymentStatus  string // Статус оплаты
	DeliveryStatus string // Статус доставки
)

const (
	CreatedOrder            OrderStatus = "created"
	PaymentInitiatedOrder   OrderStatus = "payment_initiated"
	PaymentConfirmedOrder   OrderStatus = "payment_confirmed"
	DeliveryInProgressOrder OrderStatus = "delivery_in_progress"
	DeliveredOrder          OrderStatus = "delivered"
	ReceivedOrder           OrderStatus = "received"
	FinalizedOrder          OrderStatus = "finalized"
	ArchivedOrder           OrderStatus = "archived"

	PendingPayment   PaymentStatus = "pending"
	InitiatedPayment PaymentStatus = "initiated"
	ConfirmedPayment PaymentStatus = "confirmed"

	PendingDelivery    DeliveryStatus = "pending"
	InProgressDelivery DeliveryStatus = "in_progress"
	DeliveredDelivery  DeliveryStatus = "delivered"
	ReceivedDelivery   DeliveryStatus = "received"
)

// Order представляет коммерческое обязательство, созданное принятием предложения.
type Order struct {
	ID                string         `json:"id"`
	RFQID             string         `json:"rfqId"`
	OfferID           string         `json:"offerId"`
	ClientID          string         `json:"clientId"`
	SupplierID        string         `json:"supplierId"`
	FinalPrice        float64        `json:"finalPrice"`
	FinalTerms        string         `json:"finalTerms"`
	Status            OrderStatus    `json:"status"`
	IsLocked          bool           `json:"isLocked"`
	PaymentMockStatus PaymentStatus  `json:"paymentMockStatus"`
	DeliveryStatus    DeliveryStatus `json:"deliveryStatus"`
	CreatedAt         time.Time      `json:"createdAt"`
	FinalizedAt       *time.Time     `json:"finalizedAt,omitempty"`
	ArchivedAt        *time.Time     `json:"archivedAt,omitempty"`
}

// CreateOrderRequest представляет запрос клиента на создание заказа.
type CreateOrderRequest struct {
	OfferID string `json:"offerId"`
}

// UpdatePaymentRequest представляет запрос на смену статуса оплаты.
type UpdatePaymentRequest struct {
	Status PaymentStatus `json:"status"`
}

// UpdateDeliveryRequest представляет запрос на смену статуса доставки.
type UpdateDeliveryRequest struct {
	Status DeliveryStatus `json:"status"`
}

// DeriveOrderStatus вычисляет статус заказа как чистую проекцию двух осей.
// Ось доставки имеет приоритет: как только доставка началась, именно она
// определяет статус. Поле status никогда не назначается напрямую.
func DeriveOrderStatus(payment PaymentStatus, delivery DeliveryStatus) OrderStatus {
	switch delivery {
	case InProgressDelivery:
		return DeliveryInProgressOrder
	case DeliveredDelivery:
		return DeliveredOrder
	case ReceivedDelivery:
		return ReceivedOrder
	}
	switch payment {
	case InitiatedPayment:
		return PaymentInitiatedOrder
	case ConfirmedPayment:
		return PaymentConfirmedOrder
	}
	return CreatedOrder
}

// Deletable сообщает, можно ли удалить заказ.
// После подтверждения оплаты или начала доставки заказ не удаляется.
func (o *Order) Deletable() bool {
	return o.Status == CreatedOrder || o.Status == PaymentInitiatedOrder
}

// Completed сообщает, учитывается ли заказ в отчетах о заработке.
func (o *Order) Completed() bool {
	return o.Status == FinalizedOrder || o.Status == ArchivedOrder
}
