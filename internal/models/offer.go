package models

import "time"

type OfferStatus string // Статус предложения поставщика

const (
	SubmittedOffer      OfferStatus = "submitted"       // Предложение подано
	UnderReviewOffer    OfferStatus = "under_review"    // Предложение на рассмотрении администратора
	InNegotiationOffer  OfferStatus = "in_negotiation"  // По предложению идут переговоры
	FinalConfirmedOffer OfferStatus = "final_confirmed" // Финальные условия подтверждены поставщиком
	AcceptedOffer       OfferStatus = "accepted"        // Предложение принято клиентом, создан заказ
	RejectedOffer       OfferStatus = "rejected"        // Предложение отклонено
	WithdrawnOffer      OfferStatus = "withdrawn"       // Предложение отозвано (зарезервировано)
)

// Offer представляет предложение поставщика по одному RFQ.
type Offer struct {
	ID           string      `json:"id"`
	RFQID        string      `json:"rfqId"`
	SupplierID   string      `json:"supplierId"`
	Price        float64     `json:"price"`
	DeliveryTime string      `json:"deliveryTime"`
	Description  string      `json:"description"`
	Terms        string      `json:"terms"`
	Status       OfferStatus `json:"status"`
	IsLocked     bool        `json:"isLocked"`
	SubmittedAt  time.Time   `json:"submittedAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// OfferRequest представляет структуру запроса для подачи предложения.
type OfferRequest struct {
	RFQID        string  `json:"rfqId"`
	Price        float64 `json:"price"`
	DeliveryTime string  `json:"deliveryTime"`
	Description  string  `json:"description"`
	Terms        string  `json:"terms"`
}

// OfferStatusTransitions - таблица допустимых переходов статуса предложения.
var OfferStatusTransitions = map[OfferStatus][]OfferStatus{
	SubmittedOffer:      {UnderReviewOffer, InNegotiationOffer, RejectedOffer, WithdrawnOffer},
	UnderReviewOffer:    {InNegotiationOffer, RejectedOffer},
	InNegotiationOffer:  {FinalConfirmedOffer, UnderReviewOffer, RejectedOffer},
	FinalConfirmedOffer: {AcceptedOffer, RejectedOffer},
	AcceptedOffer:       {},
	RejectedOffer:       {},
	WithdrawnOffer:      {},
}

// CanTransitionOffer проверяет переход по таблице статусов предложения.
func CanTransitionOffer(from, to OfferStatus) bool {
	for _, next := range OfferStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NegotiableOffer сообщает, можно ли начать переговоры по предложению.
func (o *Offer) Negotiable() bool {
	return !o.IsLocked && o.Status != RejectedOffer && o.Status != WithdrawnOffer
}

// Deletable сообщает, можно ли удалить предложение.
// Заблокированные и участвующие в переговорах или принятые предложения не удаляются.
func (o *Offer) Deletable() bool {
	if o.IsLocked {
		return false
	}
	switch o.Status {
	case InNegotiationOffer, FinalConfirmedOffer, AcceptedOffer:
		return false
	}
	return true
}
