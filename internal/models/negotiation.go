package models

import "time"

type (
	NegotiationStatus string // Статус переговоров
	SenderRole        string // Роль отправителя сообщения
)

const (
	ActiveNegotiation    NegotiationStatus = "active"    // Переговоры идут
	CompletedNegotiation NegotiationStatus = "completed" // Поставщик принял финальные условия
	CancelledNegotiation NegotiationStatus = "cancelled" // Отмена администратором или отказ поставщика

	AdminSender    SenderRole = "admin"
	SupplierSender SenderRole = "supplier"
)

// MaxNegotiationRounds - предельное число раундов, после которого принимаются
// только финальное согласие или явный отказ.
const MaxNegotiationRounds = 3

// Negotiation представляет ограниченный торг по одному предложению.
type Negotiation struct {
	ID          string            `json:"id"`
	OfferID     string            `json:"offerId"`
	RFQID       string            `json:"rfqId"`
	AdminID     string            `json:"adminId"`
	SupplierID  string            `json:"supplierId"`
	Rounds      int               `json:"rounds"`
	Status      NegotiationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

// NegotiationMessage представляет один ход в переговорах. Сообщения неизменяемы.
type NegotiationMessage struct {
	ID                   string     `json:"id"`
	NegotiationID        string     `json:"negotiationId"`
	SenderID             string     `json:"senderId"`
	SenderRole           SenderRole `json:"senderRole"`
	RoundNumber          int        `json:"roundNumber"`
	Message              string     `json:"message"`
	ProposedPrice        *float64   `json:"proposedPrice,omitempty"`
	ProposedDeliveryTime *string    `json:"proposedDeliveryTime,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
}

// StartNegotiationRequest представляет запрос администратора на начало переговоров.
type StartNegotiationRequest struct {
	OfferID              string   `json:"offerId"`
	Message              string   `json:"message"`
	ProposedPrice        *float64 `json:"proposedPrice,omitempty"`
	ProposedDeliveryTime *string  `json:"proposedDeliveryTime,omitempty"`
}

// RespondNegotiationRequest представляет ответ в переговорах.
type RespondNegotiationRequest struct {
	Message              string   `json:"message"`
	ProposedPrice        *float64 `json:"proposedPrice,omitempty"`
	ProposedDeliveryTime *string  `json:"proposedDeliveryTime,omitempty"`
	AcceptFinal          bool     `json:"acceptFinal,omitempty"`
}

// Terms - пара цена/срок поставки, находящаяся на столе переговоров.
type Terms struct {
	Price        float64 `json:"price"`
	DeliveryTime string  `json:"deliveryTime"`
}

// CurrentTerms выводит актуальные условия: значения из последнего сообщения,
// по каждому полю отдельно с откатом к сохраненным значениям предложения.
// Единственный источник истины для "что сейчас на столе".
func CurrentTerms(offer *Offer, messages []NegotiationMessage) Terms {
	terms := Terms{Price: offer.Price, DeliveryTime: offer.DeliveryTime}
	if len(messages) == 0 {
		return terms
	}
	last := messages[len(messages)-1]
	if last.ProposedPrice != nil {
		terms.Price = *last.ProposedPrice
	}
	if last.ProposedDeliveryTime != nil {
		terms.DeliveryTime = *last.ProposedDeliveryTime
	}
	return terms
}
