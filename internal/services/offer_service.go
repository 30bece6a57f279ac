package services

import (
	"context"
	"time"

	"github.com/b2bquote/rfq-service/internal/events"
	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/repository"

	"github.com/google/uuid"
)

// OfferService управляет жизненным циклом предложений поставщиков.
type OfferService struct {
	Repo       repository.OfferRepository
	RFQRepo    repository.RFQRepository
	Dispatcher events.Dispatcher
}

// NewOfferService создает новый экземпляр OfferService.
func NewOfferService(repo repository.OfferRepository, rfqRepo repository.RFQRepository, dispatcher events.Dispatcher) *OfferService {
	return &OfferService{Repo: repo, RFQRepo: rfqRepo, Dispatcher: dispatcher}
}

// SubmitOffer подает предложение по открытому RFQ. Первое предложение
// переводит RFQ в offers_received.
func (s *OfferService) SubmitOffer(ctx context.Context, actor models.Actor, offerReq models.OfferRequest) (*models.Offer, error) {
	if actor.Role != models.RoleSupplier {
		return nil, models.NewForbidden("only suppliers can submit offers")
	}
	if offerReq.Price <= 0 {
		return nil, models.NewValidationError("price must be positive")
	}
	if len(offerReq.DeliveryTime) < 3 {
		return nil, models.NewValidationError("delivery time must be at least 3 characters")
	}
	if len(offerReq.Description) < 10 {
		return nil, models.NewValidationError("description must be at least 10 characters")
	}
	if len(offerReq.Terms) < 10 {
		return nil, models.NewValidationError("terms must be at least 10 characters")
	}

	rfq, err := s.RFQRepo.GetRFQ(ctx, offerReq.RFQID)
	if err != nil {
		return nil, err
	}
	if !rfq.AcceptsOffers() {
		return nil, models.NewInvalidState("this rfq is not open for offers")
	}

	existing, err := s.Repo.FindActiveOffer(ctx, offerReq.RFQID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflict("you already submitted an offer for this rfq")
	}

	now := time.Now().UTC()
	offer := &models.Offer{
		ID:           uuid.New().String(),
		RFQID:        offerReq.RFQID,
		SupplierID:   actor.UserID,
		Price:        offerReq.Price,
		DeliveryTime: offerReq.DeliveryTime,
		Description:  offerReq.Description,
		Terms:        offerReq.Terms,
		Status:       models.SubmittedOffer,
		IsLocked:     false,
		SubmittedAt:  now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.OfferSubmittedEvent,
		RFQID:      offer.RFQID,
		OfferID:    offer.ID,
		EntityID:   offer.ID,
		ActorID:    actor.UserID,
		OccurredAt: now,
	})
	return offer, nil
}

// ListOffers возвращает список предложений с фильтром по роли:
// поставщик видит свои, клиент - предложения по своим RFQ, администратор - все.
func (s *OfferService) ListOffers(ctx context.Context, actor models.Actor) ([]models.Offer, error) {
	filter := repository.OfferFilter{}
	switch actor.Role {
	case models.RoleSupplier:
		filter.SupplierID = actor.UserID
	case models.RoleClient:
		filter.ClientID = actor.UserID
	}
	return s.Repo.ListOffers(ctx, filter)
}

// ListOffersForRFQ возвращает предложения по одному RFQ.
// Поставщик видит только собственное предложение.
func (s *OfferService) ListOffersForRFQ(ctx context.Context, actor models.Actor, rfqID string) ([]models.Offer, error) {
	rfq, err := s.RFQRepo.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleClient && rfq.ClientID != actor.UserID {
		return nil, models.NewForbidden("you do not own this rfq")
	}

	filter := repository.OfferFilter{RFQID: rfqID}
	if actor.Role == models.RoleSupplier {
		filter.SupplierID = actor.UserID
	}
	return s.Repo.ListOffers(ctx, filter)
}

// DeleteOffer удаляет предложение. Заблокированные, участвующие в переговорах
// и принятые предложения не удаляются.
func (s *OfferService) DeleteOffer(ctx context.Context, actor models.Actor, offerID string) error {
	if actor.Role == models.RoleClient {
		return models.NewForbidden("clients cannot delete offers")
	}

	offer, err := s.Repo.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}
	if actor.Role == models.RoleSupplier && offer.SupplierID != actor.UserID {
		return models.NewForbidden("you do not own this offer")
	}
	if !offer.Deletable() {
		return models.NewInvalidState("offer is locked or already in negotiation")
	}
	return s.Repo.DeleteOffer(ctx, offerID)
}

// RejectFinalOffer отклоняет финальное предложение клиентом и возвращает
// RFQ в переговоры.
func (s *OfferService) RejectFinalOffer(ctx context.Context, actor models.Actor, offerID string) error {
	offer, err := s.Repo.GetOffer(ctx, offerID)
	if err != nil {
		return err
	}

	rfq, err := s.RFQRepo.GetRFQ(ctx, offer.RFQID)
	if err != nil {
		return err
	}
	if actor.Role != models.RoleClient || rfq.ClientID != actor.UserID {
		return models.NewForbidden("only the rfq owner can reject this offer")
	}
	if offer.Status != models.FinalConfirmedOffer {
		return models.NewInvalidState("only final confirmed offers can be rejected")
	}
	if rfq.Status != models.SentToClientRFQ {
		return models.NewInvalidState("the offer has not been sent for approval")
	}
	if err := ensureOfferTransition(offer.Status, models.RejectedOffer); err != nil {
		return err
	}
	if err := ensureRFQTransition(rfq.Status, models.NegotiationRFQ); err != nil {
		return err
	}

	return s.Repo.RejectFinalOffer(ctx, offerID, offer.RFQID)
}
