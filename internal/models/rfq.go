package models

import "time"

type (
	RFQStatus        string // Статус запроса котировок
	GatekeeperStatus string // Вспомогательный статус внешнего фильтра рисков
)

const (
	DraftRFQ          RFQStatus = "draft"           // Черновик, виден только клиенту и администратору
	PublishedRFQ      RFQStatus = "published"       // Опубликован, открыт для предложений
	OffersReceivedRFQ RFQStatus = "offers_received" // Получено хотя бы одно предложение
	NegotiationRFQ    RFQStatus = "negotiation"     // Идут переговоры по предложению
	SentToClientRFQ   RFQStatus = "sent_to_client"  // Финальное предложение отправлено клиенту
	ClosedRFQ         RFQStatus = "closed"          // Закрыт созданием заказа

	GatekeeperPending      GatekeeperStatus = "pending"
	GatekeeperApproved     GatekeeperStatus = "approved"
	GatekeeperAutoRejected GatekeeperStatus = "auto_rejected"
)

// RFQ представляет запрос котировок клиента.
type RFQ struct {
	ID               string           `json:"id"`
	ClientID         string           `json:"clientId"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Requirements     string           `json:"requirements"`
	Deadline         time.Time        `json:"deadline"`
	Budget           *float64         `json:"budget,omitempty"`
	Status           RFQStatus        `json:"status"`
	GatekeeperStatus GatekeeperStatus `json:"gatekeeperStatus"`
	CreatedAt        time.Time        `json:"createdAt"`
	PublishedAt      *time.Time       `json:"publishedAt,omitempty"`
	ClosedAt         *time.Time       `json:"closedAt,omitempty"`
}

// RFQRequest представляет структуру запроса для создания RFQ.
type RFQRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements string   `json:"requirements"`
	Deadline     string   `json:"deadline"`
	Budget       *float64 `json:"budget,omitempty"`
}

// RFQStatusTransitions - таблица допустимых переходов статуса RFQ.
// Единственное обратное ребро: sent_to_client -> negotiation при отклонении клиентом.
var RFQStatusTransitions = map[RFQStatus][]RFQStatus{
	DraftRFQ:          {PublishedRFQ},
	PublishedRFQ:      {OffersReceivedRFQ},
	OffersReceivedRFQ: {NegotiationRFQ},
	NegotiationRFQ:    {SentToClientRFQ},
	SentToClientRFQ:   {ClosedRFQ, NegotiationRFQ},
	ClosedRFQ:         {SentToClientRFQ},
}

// CanTransitionRFQ проверяет переход по таблице статусов RFQ.
func CanTransitionRFQ(from, to RFQStatus) bool {
	for _, next := range RFQStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OpenForSuppliers сообщает, виден ли RFQ поставщикам.
func (r *RFQ) OpenForSuppliers() bool {
	return r.Status == PublishedRFQ || r.Status == OffersReceivedRFQ || r.Status == NegotiationRFQ
}

// AcceptsOffers сообщает, принимает ли RFQ новые предложения.
func (r *RFQ) AcceptsOffers() bool {
	return r.Status == PublishedRFQ || r.Status == OffersReceivedRFQ
}
