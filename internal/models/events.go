package models

import "time"

type EventType string // Тип доменного события для внешнего нотификатора

const (
	OfferSubmittedEvent          EventType = "OfferSubmitted"
	NegotiationStartedEvent      EventType = "NegotiationStarted"
	NegotiationMessageAddedEvent EventType = "NegotiationMessageAdded"
	NegotiationCompletedEvent    EventType = "NegotiationCompleted"
	NegotiationCancelledEvent    EventType = "NegotiationCancelled"
	OrderCreatedEvent            EventType = "OrderCreated"
	PaymentUpdatedEvent          EventType = "PaymentUpdated"
	DeliveryUpdatedEvent         EventType = "DeliveryUpdated"
	OrderDeletedEvent            EventType = "OrderDeleted"
)

// Event - доменное событие, отправляемое внешнему нотификатору.
// Доставка best-effort: ядро не зависит от её успеха.
type Event struct {
	Type       EventType `json:"type"`
	RFQID      string    `json:"rfqId,omitempty"`
	OfferID    string    `json:"offerId,omitempty"`
	EntityID   string    `json:"entityId"`
	ActorID    string    `json:"actorId"`
	OccurredAt time.Time `json:"occurredAt"`
}
