package services

import (
	"context"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/repository"
)

// fakeStore - хранилище в памяти, повторяющее семантику Postgres-репозиториев,
// включая сопутствующие переходы статусов и защитные предикаты записей
// внутри одной "транзакции".
type fakeStore struct {
	rfqs         map[string]*models.RFQ
	offers       map[string]*models.Offer
	negotiations map[string]*models.Negotiation
	messages     map[string][]models.NegotiationMessage
	orders       map[string]*models.Order

	// beforeWrite срабатывает один раз перед следующей защищенной записью.
	// Тесты подменяют им состояние между снимком сервиса и самой записью,
	// воспроизводя конкурентную фиксацию.
	beforeWrite func()
}

func (s *fakeStore) fireBeforeWrite() {
	if s.beforeWrite != nil {
		hook := s.beforeWrite
		s.beforeWrite = nil
		hook()
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rfqs:         make(map[string]*models.RFQ),
		offers:       make(map[string]*models.Offer),
		negotiations: make(map[string]*models.Negotiation),
		messages:     make(map[string][]models.NegotiationMessage),
		orders:       make(map[string]*models.Order),
	}
}

var (
	_ repository.RFQRepository         = (*fakeStore)(nil)
	_ repository.OfferRepository       = (*fakeStore)(nil)
	_ repository.NegotiationRepository = (*fakeStore)(nil)
	_ repository.OrderRepository       = (*fakeStore)(nil)
)

func (s *fakeStore) CreateRFQ(_ context.Context, rfq *models.RFQ) error {
	copied := *rfq
	s.rfqs[rfq.ID] = &copied
	return nil
}

func (s *fakeStore) GetRFQ(_ context.Context, rfqID string) (*models.RFQ, error) {
	rfq, ok := s.rfqs[rfqID]
	if !ok {
		return nil, models.NewNotFound("rfq not found")
	}
	copied := *rfq
	return &copied, nil
}

func (s *fakeStore) ListRFQs(_ context.Context, filter repository.RFQFilter) ([]models.RFQ, error) {
	var result []models.RFQ
	for _, rfq := range s.rfqs {
		if filter.ClientID != "" && rfq.ClientID != filter.ClientID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsRFQStatus(filter.Statuses, rfq.Status) {
			continue
		}
		if filter.ExcludeGatekeeper != "" && rfq.GatekeeperStatus == filter.ExcludeGatekeeper {
			continue
		}
		result = append(result, *rfq)
	}
	return result, nil
}

func containsRFQStatus(statuses []models.RFQStatus, status models.RFQStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func (s *fakeStore) PublishRFQ(_ context.Context, rfqID string, publishedAt time.Time) error {
	rfq := s.rfqs[rfqID]
	rfq.Status = models.PublishedRFQ
	rfq.PublishedAt = &publishedAt
	return nil
}

func (s *fakeStore) SetRFQStatus(_ context.Context, rfqID string, status models.RFQStatus) error {
	rfq := s.rfqs[rfqID]
	rfq.Status = status
	if status == models.ClosedRFQ {
		now := time.Now().UTC()
		rfq.ClosedAt = &now
	}
	return nil
}

func (s *fakeStore) SetGatekeeperStatus(_ context.Context, rfqID string, status models.GatekeeperStatus) error {
	s.rfqs[rfqID].GatekeeperStatus = status
	return nil
}

func (s *fakeStore) DeleteRFQ(_ context.Context, rfqID string) error {
	delete(s.rfqs, rfqID)
	return nil
}

func (s *fakeStore) CreateOffer(_ context.Context, offer *models.Offer) error {
	for _, existing := range s.offers {
		if existing.RFQID == offer.RFQID && existing.SupplierID == offer.SupplierID && existing.Status != models.WithdrawnOffer {
			return models.NewConflict("active offer already exists for this rfq")
		}
	}
	copied := *offer
	s.offers[offer.ID] = &copied
	if rfq, ok := s.rfqs[offer.RFQID]; ok && rfq.Status == models.PublishedRFQ {
		rfq.Status = models.OffersReceivedRFQ
	}
	return nil
}

func (s *fakeStore) GetOffer(_ context.Context, offerID string) (*models.Offer, error) {
	offer, ok := s.offers[offerID]
	if !ok {
		return nil, models.NewNotFound("offer not found")
	}
	copied := *offer
	return &copied, nil
}

func (s *fakeStore) FindActiveOffer(_ context.Context, rfqID, supplierID string) (*models.Offer, error) {
	for _, offer := range s.offers {
		if offer.RFQID == rfqID && offer.SupplierID == supplierID && offer.Status != models.WithdrawnOffer {
			copied := *offer
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListOffers(_ context.Context, filter repository.OfferFilter) ([]models.Offer, error) {
	var result []models.Offer
	for _, offer := range s.offers {
		if filter.RFQID != "" && offer.RFQID != filter.RFQID {
			continue
		}
		if filter.SupplierID != "" && offer.SupplierID != filter.SupplierID {
			continue
		}
		if filter.ClientID != "" {
			rfq, ok := s.rfqs[offer.RFQID]
			if !ok || rfq.ClientID != filter.ClientID {
				continue
			}
		}
		result = append(result, *offer)
	}
	return result, nil
}

func (s *fakeStore) DeleteOffer(_ context.Context, offerID string) error {
	delete(s.offers, offerID)
	return nil
}

func (s *fakeStore) RejectFinalOffer(_ context.Context, offerID, rfqID string) error {
	s.offers[offerID].Status = models.RejectedOffer
	s.rfqs[rfqID].Status = models.NegotiationRFQ
	return nil
}

func (s *fakeStore) StartNegotiation(_ context.Context, negotiation *models.Negotiation, opening *models.NegotiationMessage) error {
	for _, existing := range s.negotiations {
		if existing.OfferID == negotiation.OfferID && existing.Status == models.ActiveNegotiation {
			return models.NewConflict("active negotiation already exists for this offer")
		}
	}
	copied := *negotiation
	s.negotiations[negotiation.ID] = &copied
	s.messages[negotiation.ID] = append(s.messages[negotiation.ID], *opening)
	s.offers[negotiation.OfferID].Status = models.InNegotiationOffer
	s.rfqs[negotiation.RFQID].Status = models.NegotiationRFQ
	return nil
}

func (s *fakeStore) GetNegotiation(_ context.Context, negotiationID string) (*models.Negotiation, error) {
	negotiation, ok := s.negotiations[negotiationID]
	if !ok {
		return nil, models.NewNotFound("negotiation not found")
	}
	copied := *negotiation
	return &copied, nil
}

func (s *fakeStore) GetNegotiationByOffer(_ context.Context, offerID string) (*models.Negotiation, error) {
	var latest *models.Negotiation
	for _, negotiation := range s.negotiations {
		if negotiation.OfferID != offerID {
			continue
		}
		if latest == nil || negotiation.CreatedAt.After(latest.CreatedAt) {
			latest = negotiation
		}
	}
	if latest == nil {
		return nil, models.NewNotFound("negotiation not found")
	}
	copied := *latest
	return &copied, nil
}

func (s *fakeStore) FindActiveByOffer(_ context.Context, offerID string) (*models.Negotiation, error) {
	for _, negotiation := range s.negotiations {
		if negotiation.OfferID == offerID && negotiation.Status == models.ActiveNegotiation {
			copied := *negotiation
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListMessages(_ context.Context, negotiationID string) ([]models.NegotiationMessage, error) {
	return append([]models.NegotiationMessage(nil), s.messages[negotiationID]...), nil
}

func (s *fakeStore) AddMessageAndAdvance(_ context.Context, negotiationID string, message *models.NegotiationMessage) error {
	s.fireBeforeWrite()
	negotiation := s.negotiations[negotiationID]
	if negotiation.Status != models.ActiveNegotiation {
		return models.NewInvalidState("negotiation is no longer active")
	}
	if negotiation.Rounds >= models.MaxNegotiationRounds {
		return models.NewRoundLimitExceeded("maximum number of negotiation rounds reached")
	}
	s.messages[negotiationID] = append(s.messages[negotiationID], *message)
	negotiation.Rounds++
	return nil
}

func (s *fakeStore) CompleteNegotiation(_ context.Context, negotiationID string, message *models.NegotiationMessage, offerID string, finalPrice float64, finalDeliveryTime string, completedAt time.Time) error {
	s.fireBeforeWrite()
	negotiation := s.negotiations[negotiationID]
	if negotiation.Status != models.ActiveNegotiation {
		return models.NewInvalidState("negotiation is no longer active")
	}
	s.messages[negotiationID] = append(s.messages[negotiationID], *message)
	negotiation.Status = models.CompletedNegotiation
	negotiation.CompletedAt = &completedAt

	offer := s.offers[offerID]
	offer.Status = models.FinalConfirmedOffer
	offer.IsLocked = true
	offer.Price = finalPrice
	offer.DeliveryTime = finalDeliveryTime
	return nil
}

func (s *fakeStore) RejectNegotiation(_ context.Context, negotiationID string, message *models.NegotiationMessage, offerID string, completedAt time.Time) error {
	s.fireBeforeWrite()
	negotiation := s.negotiations[negotiationID]
	if negotiation.Status != models.ActiveNegotiation {
		return models.NewInvalidState("negotiation is no longer active")
	}
	if message != nil {
		s.messages[negotiationID] = append(s.messages[negotiationID], *message)
	}
	negotiation.Status = models.CancelledNegotiation
	negotiation.CompletedAt = &completedAt
	s.offers[offerID].Status = models.RejectedOffer
	return nil
}

func (s *fakeStore) CancelNegotiation(_ context.Context, negotiationID, offerID string) error {
	s.fireBeforeWrite()
	negotiation := s.negotiations[negotiationID]
	if negotiation.Status != models.ActiveNegotiation {
		return models.NewInvalidState("negotiation is no longer active")
	}
	negotiation.Status = models.CancelledNegotiation
	s.offers[offerID].Status = models.UnderReviewOffer
	return nil
}

func (s *fakeStore) CreateOrder(_ context.Context, order *models.Order) error {
	for _, existing := range s.orders {
		if existing.OfferID == order.OfferID {
			return models.NewConflict("order already exists for this offer")
		}
	}
	copied := *order
	s.orders[order.ID] = &copied
	s.rfqs[order.RFQID].Status = models.ClosedRFQ
	s.offers[order.OfferID].Status = models.AcceptedOffer
	return nil
}

func (s *fakeStore) GetOrder(_ context.Context, orderID string) (*models.Order, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, models.NewNotFound("order not found")
	}
	copied := *order
	return &copied, nil
}

func (s *fakeStore) FindOrderByOffer(_ context.Context, offerID string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OfferID == offerID {
			copied := *order
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ListOrders(_ context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	var result []models.Order
	for _, order := range s.orders {
		if filter.ClientID != "" && order.ClientID != filter.ClientID {
			continue
		}
		if filter.SupplierID != "" && order.SupplierID != filter.SupplierID {
			continue
		}
		result = append(result, *order)
	}
	return result, nil
}

func (s *fakeStore) UpdateOrderProgress(_ context.Context, order *models.Order, from models.OrderStatus) error {
	s.fireBeforeWrite()
	if s.orders[order.ID].Status != from {
		return models.NewInvalidState("order is no longer in the expected state")
	}
	copied := *order
	s.orders[order.ID] = &copied
	return nil
}

func (s *fakeStore) DeleteOrder(_ context.Context, orderID, rfqID, offerID string) error {
	if rfq, ok := s.rfqs[rfqID]; ok && rfq.Status == models.ClosedRFQ {
		rfq.Status = models.SentToClientRFQ
		rfq.ClosedAt = nil
	}
	s.offers[offerID].IsLocked = false
	delete(s.orders, orderID)
	return nil
}

// fakeDispatcher накапливает отправленные события.
type fakeDispatcher struct {
	events []models.Event
}

func (d *fakeDispatcher) Dispatch(_ context.Context, event models.Event) {
	d.events = append(d.events, event)
}

func (d *fakeDispatcher) lastEvent() *models.Event {
	if len(d.events) == 0 {
		return nil
	}
	return &d.events[len(d.events)-1]
}

var (
	adminActor    = models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	clientActor   = models.Actor{UserID: "client-1", Role: models.RoleClient}
	supplierActor = models.Actor{UserID: "supplier-1", Role: models.RoleSupplier}
)

func seedRFQ(store *fakeStore, id string, status models.RFQStatus) *models.RFQ {
	rfq := &models.RFQ{
		ID:               id,
		ClientID:         clientActor.UserID,
		Title:            "Industrial fasteners",
		Description:      "Bulk order of stainless fasteners",
		Requirements:     "ISO 3506 compliant, batch certificates",
		Deadline:         time.Now().Add(30 * 24 * time.Hour),
		Status:           status,
		GatekeeperStatus: models.GatekeeperApproved,
		CreatedAt:        time.Now().UTC(),
	}
	store.rfqs[id] = rfq
	return rfq
}

func seedOffer(store *fakeStore, id, rfqID string, status models.OfferStatus) *models.Offer {
	offer := &models.Offer{
		ID:           id,
		RFQID:        rfqID,
		SupplierID:   supplierActor.UserID,
		Price:        50000,
		DeliveryTime: "30 days",
		Description:  "Full batch from stock",
		Terms:        "Prepayment 30%, delivery DAP",
		Status:       status,
		SubmittedAt:  time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	store.offers[id] = offer
	return offer
}

func seedNegotiation(store *fakeStore, id, offerID, rfqID string, rounds int) *models.Negotiation {
	negotiation := &models.Negotiation{
		ID:         id,
		OfferID:    offerID,
		RFQID:      rfqID,
		AdminID:    adminActor.UserID,
		SupplierID: supplierActor.UserID,
		Rounds:     rounds,
		Status:     models.ActiveNegotiation,
		CreatedAt:  time.Now().UTC(),
	}
	store.negotiations[id] = negotiation
	return negotiation
}

func seedOrder(store *fakeStore, id, rfqID, offerID string) *models.Order {
	order := &models.Order{
		ID:                id,
		RFQID:             rfqID,
		OfferID:           offerID,
		ClientID:          clientActor.UserID,
		SupplierID:        supplierActor.UserID,
		FinalPrice:        50000,
		FinalTerms:        "Prepayment 30%, delivery DAP",
		Status:            models.CreatedOrder,
		IsLocked:          true,
		PaymentMockStatus: models.PendingPayment,
		DeliveryStatus:    models.PendingDelivery,
		CreatedAt:         time.Now().UTC(),
	}
	store.orders[id] = order
	return order
}

func floatPtr(f float64) *float64 { return &f }
func stringPtr(s string) *string  { return &s }
