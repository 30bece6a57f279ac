package services

import (
	"context"
	"time"

	"github.com/b2bquote/rfq-service/internal/events"
	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/repository"

	"github.com/google/uuid"
)

// NegotiationService управляет ограниченным торгом между администратором и
// поставщиком по одному предложению. Встречные предложения принимаются,
// пока rounds < MaxNegotiationRounds; финальное согласие или явный отказ
// принимаются на любом раунде, чтобы переговоры всегда могли завершиться.
type NegotiationService struct {
	Repo       repository.NegotiationRepository
	OfferRepo  repository.OfferRepository
	RFQRepo    repository.RFQRepository
	Dispatcher events.Dispatcher
}

// NewNegotiationService создает новый экземпляр NegotiationService.
func NewNegotiationService(repo repository.NegotiationRepository, offerRepo repository.OfferRepository, rfqRepo repository.RFQRepository, dispatcher events.Dispatcher) *NegotiationService {
	return &NegotiationService{Repo: repo, OfferRepo: offerRepo, RFQRepo: rfqRepo, Dispatcher: dispatcher}
}

// StartNegotiation начинает переговоры по предложению. Первое сообщение
// администратора открывает раунд 1.
func (s *NegotiationService) StartNegotiation(ctx context.Context, actor models.Actor, startReq models.StartNegotiationRequest) (*models.Negotiation, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can initiate negotiations")
	}
	if len(startReq.Message) < 10 {
		return nil, models.NewValidationError("opening message must be at least 10 characters")
	}
	if startReq.ProposedPrice != nil && *startReq.ProposedPrice <= 0 {
		return nil, models.NewValidationError("proposed price must be positive")
	}

	offer, err := s.OfferRepo.GetOffer(ctx, startReq.OfferID)
	if err != nil {
		return nil, err
	}
	if !offer.Negotiable() {
		return nil, models.NewInvalidState("offer is not eligible for negotiation")
	}

	existing, err := s.Repo.FindActiveByOffer(ctx, startReq.OfferID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflict("active negotiation already exists for this offer")
	}

	if err := ensureOfferTransition(offer.Status, models.InNegotiationOffer); err != nil {
		return nil, err
	}

	rfq, err := s.RFQRepo.GetRFQ(ctx, offer.RFQID)
	if err != nil {
		return nil, err
	}
	// RFQ, уже находящийся в переговорах, остается в том же статусе.
	if rfq.Status != models.NegotiationRFQ {
		if err := ensureRFQTransition(rfq.Status, models.NegotiationRFQ); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	negotiation := &models.Negotiation{
		ID:         uuid.New().String(),
		OfferID:    offer.ID,
		RFQID:      offer.RFQID,
		AdminID:    actor.UserID,
		SupplierID: offer.SupplierID,
		Rounds:     1,
		Status:     models.ActiveNegotiation,
		CreatedAt:  now,
	}
	opening := &models.NegotiationMessage{
		ID:                   uuid.New().String(),
		NegotiationID:        negotiation.ID,
		SenderID:             actor.UserID,
		SenderRole:           models.AdminSender,
		RoundNumber:          1,
		Message:              startReq.Message,
		ProposedPrice:        startReq.ProposedPrice,
		ProposedDeliveryTime: startReq.ProposedDeliveryTime,
		CreatedAt:            now,
	}
	if err := s.Repo.StartNegotiation(ctx, negotiation, opening); err != nil {
		return nil, err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.NegotiationStartedEvent,
		RFQID:      offer.RFQID,
		OfferID:    offer.ID,
		EntityID:   negotiation.ID,
		ActorID:    actor.UserID,
		OccurredAt: now,
	})
	return negotiation, nil
}

// GetNegotiation получает переговоры с сообщениями и актуальными условиями.
// Доступно администратору, владеющему поставщику и клиенту RFQ.
func (s *NegotiationService) GetNegotiation(ctx context.Context, actor models.Actor, negotiationID string) (*models.NegotiationView, error) {
	negotiation, err := s.Repo.GetNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, actor, negotiation)
}

// GetNegotiationByOffer получает переговоры по предложению.
func (s *NegotiationService) GetNegotiationByOffer(ctx context.Context, actor models.Actor, offerID string) (*models.NegotiationView, error) {
	negotiation, err := s.Repo.GetNegotiationByOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, actor, negotiation)
}

func (s *NegotiationService) buildView(ctx context.Context, actor models.Actor, negotiation *models.Negotiation) (*models.NegotiationView, error) {
	rfq, err := s.RFQRepo.GetRFQ(ctx, negotiation.RFQID)
	if err != nil {
		return nil, err
	}
	isParty := actor.IsAdmin() || actor.UserID == negotiation.SupplierID || actor.UserID == rfq.ClientID
	if !isParty {
		return nil, models.NewForbidden("you are not a party to this negotiation")
	}

	offer, err := s.OfferRepo.GetOffer(ctx, negotiation.OfferID)
	if err != nil {
		return nil, err
	}
	messages, err := s.Repo.ListMessages(ctx, negotiation.ID)
	if err != nil {
		return nil, err
	}
	return &models.NegotiationView{
		Negotiation:  *negotiation,
		Messages:     messages,
		CurrentTerms: models.CurrentTerms(offer, messages),
	}, nil
}

// SupplierRespond обрабатывает ответ поставщика: встречное предложение
// (с проверкой лимита раундов) или финальное согласие, которое фиксирует
// условия и блокирует предложение.
func (s *NegotiationService) SupplierRespond(ctx context.Context, actor models.Actor, negotiationID string, respondReq models.RespondNegotiationRequest) (*models.Negotiation, error) {
	if actor.Role != models.RoleSupplier {
		return nil, models.NewForbidden("only suppliers can respond to negotiations")
	}
	if len(respondReq.Message) < 1 {
		return nil, models.NewValidationError("message is required")
	}
	if respondReq.ProposedPrice != nil && *respondReq.ProposedPrice <= 0 {
		return nil, models.NewValidationError("proposed price must be positive")
	}

	negotiation, err := s.Repo.GetNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if negotiation.SupplierID != actor.UserID {
		return nil, models.NewForbidden("you are not a party to this negotiation")
	}
	if negotiation.Status != models.ActiveNegotiation {
		return nil, models.NewInvalidState("negotiation is no longer active")
	}
	// Лимит раундов не распространяется на финальное согласие.
	if !respondReq.AcceptFinal && negotiation.Rounds >= models.MaxNegotiationRounds {
		return nil, models.NewRoundLimitExceeded("maximum number of negotiation rounds reached")
	}

	now := time.Now().UTC()
	message := &models.NegotiationMessage{
		ID:                   uuid.New().String(),
		NegotiationID:        negotiationID,
		SenderID:             actor.UserID,
		SenderRole:           models.SupplierSender,
		RoundNumber:          negotiation.Rounds,
		Message:              respondReq.Message,
		ProposedPrice:        respondReq.ProposedPrice,
		ProposedDeliveryTime: respondReq.ProposedDeliveryTime,
		CreatedAt:            now,
	}

	if respondReq.AcceptFinal {
		offer, err := s.OfferRepo.GetOffer(ctx, negotiation.OfferID)
		if err != nil {
			return nil, err
		}
		if err := ensureOfferTransition(offer.Status, models.FinalConfirmedOffer); err != nil {
			return nil, err
		}
		finalPrice := offer.Price
		if respondReq.ProposedPrice != nil {
			finalPrice = *respondReq.ProposedPrice
		}
		finalDeliveryTime := offer.DeliveryTime
		if respondReq.ProposedDeliveryTime != nil {
			finalDeliveryTime = *respondReq.ProposedDeliveryTime
		}

		if err := s.Repo.CompleteNegotiation(ctx, negotiationID, message, negotiation.OfferID, finalPrice, finalDeliveryTime, now); err != nil {
			return nil, err
		}
		negotiation.Status = models.CompletedNegotiation
		negotiation.CompletedAt = &now

		s.Dispatcher.Dispatch(ctx, models.Event{
			Type:       models.NegotiationCompletedEvent,
			RFQID:      negotiation.RFQID,
			OfferID:    negotiation.OfferID,
			EntityID:   negotiation.ID,
			ActorID:    actor.UserID,
			OccurredAt: now,
		})
		return negotiation, nil
	}

	if err := s.Repo.AddMessageAndAdvance(ctx, negotiationID, message); err != nil {
		return nil, err
	}
	negotiation.Rounds++

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.NegotiationMessageAddedEvent,
		RFQID:      negotiation.RFQID,
		OfferID:    negotiation.OfferID,
		EntityID:   negotiation.ID,
		ActorID:    actor.UserID,
		OccurredAt: now,
	})
	return negotiation, nil
}

// AdminRespond обрабатывает встречное предложение администратора.
// Допустим только в свой ход: последнее сообщение должно быть от поставщика.
// У администратора нет пути финализации - завершить может только поставщик.
func (s *NegotiationService) AdminRespond(ctx context.Context, actor models.Actor, negotiationID string, respondReq models.RespondNegotiationRequest) (*models.Negotiation, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can send responses")
	}
	if len(respondReq.Message) < 1 {
		return nil, models.NewValidationError("message is required")
	}
	if respondReq.ProposedPrice != nil && *respondReq.ProposedPrice <= 0 {
		return nil, models.NewValidationError("proposed price must be positive")
	}

	negotiation, err := s.Repo.GetNegotiation(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if negotiation.Status != models.ActiveNegotiation {
		return nil, models.NewInvalidState("negotiation is no longer active")
	}
	if negotiation.Rounds >= models.MaxNegotiationRounds {
		return nil, models.NewRoundLimitExceeded("maximum number of negotiation rounds reached")
	}

	messages, err := s.Repo.ListMessages(ctx, negotiationID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 || messages[len(messages)-1].SenderRole != models.SupplierSender {
		return nil, models.NewInvalidState("it is not the admin's turn to respond")
	}

	now := time.Now().UTC()
	message := &models.NegotiationMessage{
		ID:                   uuid.New().String(),
		NegotiationID:        negotiationID,
		SenderID:             actor.UserID,
		SenderRole:           models.AdminSender,
		RoundNumber:          negotiation.Rounds + 1,
		Message:              respondReq.Message,
		ProposedPrice:        respondReq.ProposedPrice,
		ProposedDeliveryTime: respondReq.ProposedDeliveryTime,
		CreatedAt:            now,
	}
	if err := s.Repo.AddMessageAndAdvance(ctx, negotiationID, message); err != nil {
		return nil, err
	}
	negotiation.Rounds++

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.NegotiationMessageAddedEvent,
		RFQID:      negotiation.RFQID,
		OfferID:    negotiation.OfferID,
		EntityID:   negotiation.ID,
		ActorID:    actor.UserID,
		OccurredAt: now,
	})
	return negotiation, nil
}

// SupplierReject - явный отказ поставщика. Допустим на любом раунде.
func (s *NegotiationService) SupplierReject(ctx context.Context, actor models.Actor, negotiationID, messageText string) error {
	if actor.Role != models.RoleSupplier {
		return models.NewForbidden("only suppliers can reject offers")
	}

	negotiation, err := s.Repo.GetNegotiation(ctx, negotiationID)
	if err != nil {
		return err
	}
	if negotiation.SupplierID != actor.UserID {
		return models.NewForbidden("you are not a party to this negotiation")
	}
	if negotiation.Status != models.ActiveNegotiation {
		return models.NewInvalidState("negotiation is no longer active")
	}

	offer, err := s.OfferRepo.GetOffer(ctx, negotiation.OfferID)
	if err != nil {
		return err
	}
	if err := ensureOfferTransition(offer.Status, models.RejectedOffer); err != nil {
		return err
	}

	now := time.Now().UTC()
	var message *models.NegotiationMessage
	if messageText != "" {
		message = &models.NegotiationMessage{
			ID:            uuid.New().String(),
			NegotiationID: negotiationID,
			SenderID:      actor.UserID,
			SenderRole:    models.SupplierSender,
			RoundNumber:   negotiation.Rounds,
			Message:       messageText,
			CreatedAt:     now,
		}
	}
	if err := s.Repo.RejectNegotiation(ctx, negotiationID, message, negotiation.OfferID, now); err != nil {
		return err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.NegotiationCancelledEvent,
		RFQID:      negotiation.RFQID,
		OfferID:    negotiation.OfferID,
		EntityID:   negotiation.ID,
		ActorID:    actor.UserID,
		OccurredAt: now,
	})
	return nil
}

// CancelNegotiation отменяет переговоры администратором. Предложение
// возвращается на рассмотрение и снова доступно.
func (s *NegotiationService) CancelNegotiation(ctx context.Context, actor models.Actor, negotiationID string) error {
	if !actor.IsAdmin() {
		return models.NewForbidden("only admins can cancel negotiations")
	}

	negotiation, err := s.Repo.GetNegotiation(ctx, negotiationID)
	if err != nil {
		return err
	}
	if negotiation.Status != models.ActiveNegotiation {
		return models.NewInvalidState("negotiation is not active")
	}

	offer, err := s.OfferRepo.GetOffer(ctx, negotiation.OfferID)
	if err != nil {
		return err
	}
	if err := ensureOfferTransition(offer.Status, models.UnderReviewOffer); err != nil {
		return err
	}

	if err := s.Repo.CancelNegotiation(ctx, negotiationID, negotiation.OfferID); err != nil {
		return err
	}

	s.Dispatcher.Dispatch(ctx, models.Event{
		Type:       models.NegotiationCancelledEvent,
		RFQID:      negotiation.RFQID,
		OfferID:    negotiation.OfferID,
		EntityID:   negotiation.ID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}
