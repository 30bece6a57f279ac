package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveOrderStatus(t *testing.T) {
	assert.Equal(t, CreatedOrder, DeriveOrderStatus(PendingPayment, PendingDelivery))
	assert.Equal(t, PaymentInitiatedOrder, DeriveOrderStatus(InitiatedPayment, PendingDelivery))
	assert.Equal(t, PaymentConfirmedOrder, DeriveOrderStatus(ConfirmedPayment, PendingDelivery))
	assert.Equal(t, DeliveryInProgressOrder, DeriveOrderStatus(ConfirmedPayment, InProgressDelivery))
	assert.Equal(t, DeliveredOrder, DeriveOrderStatus(ConfirmedPayment, DeliveredDelivery))
	assert.Equal(t, ReceivedOrder, DeriveOrderStatus(ConfirmedPayment, ReceivedDelivery))
}

func TestDeriveOrderStatusDeliveryAxisWins(t *testing.T) {
	// Как только доставка началась, ось оплаты статус не определяет.
	assert.Equal(t, DeliveryInProgressOrder, DeriveOrderStatus(InitiatedPayment, InProgressDelivery))
	assert.Equal(t, DeliveredOrder, DeriveOrderStatus(PendingPayment, DeliveredDelivery))
}

func TestOrderDeletable(t *testing.T) {
	order := Order{Status: CreatedOrder}
	assert.True(t, order.Deletable())

	order.Status = PaymentInitiatedOrder
	assert.True(t, order.Deletable())

	order.Status = PaymentConfirmedOrder
	assert.False(t, order.Deletable())

	order.Status = DeliveryInProgressOrder
	assert.False(t, order.Deletable())

	order.Status = FinalizedOrder
	assert.False(t, order.Deletable())
}

func TestOrderCompleted(t *testing.T) {
	order := Order{Status: FinalizedOrder}
	assert.True(t, order.Completed())

	order.Status = ArchivedOrder
	assert.True(t, order.Completed())

	order.Status = ReceivedOrder
	assert.False(t, order.Completed())
}
