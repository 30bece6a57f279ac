package services

import (
	"context"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/repository"
	"github.com/b2bquote/rfq-service/internal/utils"

	"github.com/google/uuid"
)

// RFQService управляет жизненным циклом запросов котировок.
// Переходы статуса инициируются событиями от предложений, переговоров и
// заказов; напрямую доступны только publish и send-to-client.
type RFQService struct {
	Repo      repository.RFQRepository
	OfferRepo repository.OfferRepository
}

// NewRFQService создает новый экземпляр RFQService.
func NewRFQService(repo repository.RFQRepository, offerRepo repository.OfferRepository) *RFQService {
	return &RFQService{Repo: repo, OfferRepo: offerRepo}
}

// CreateRFQ создает запрос котировок в статусе черновика.
func (s *RFQService) CreateRFQ(ctx context.Context, actor models.Actor, rfqReq models.RFQRequest) (*models.RFQ, error) {
	if actor.Role != models.RoleClient {
		return nil, models.NewForbidden("only clients can create rfqs")
	}
	if len(rfqReq.Title) < 3 {
		return nil, models.NewValidationError("title must be at least 3 characters")
	}
	if len(rfqReq.Description) < 10 {
		return nil, models.NewValidationError("description must be at least 10 characters")
	}
	if len(rfqReq.Requirements) < 10 {
		return nil, models.NewValidationError("requirements must be at least 10 characters")
	}
	deadline, err := time.Parse(time.RFC3339, rfqReq.Deadline)
	if err != nil {
		return nil, models.NewValidationError("deadline must be an RFC3339 timestamp")
	}
	if rfqReq.Budget != nil && *rfqReq.Budget <= 0 {
		return nil, models.NewValidationError("budget must be positive")
	}

	rfq := &models.RFQ{
		ID:               uuid.New().String(),
		ClientID:         actor.UserID,
		Title:            rfqReq.Title,
		Description:      rfqReq.Description,
		Requirements:     rfqReq.Requirements,
		Deadline:         deadline,
		Budget:           rfqReq.Budget,
		Status:           models.DraftRFQ,
		GatekeeperStatus: models.GatekeeperPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.Repo.CreateRFQ(ctx, rfq); err != nil {
		return nil, err
	}
	return rfq, nil
}

// ListRFQs возвращает список запросов котировок с фильтром по роли:
// клиент видит свои, поставщик - открытые, администратор - все,
// кроме автоматически отклоненных внешним фильтром.
func (s *RFQService) ListRFQs(ctx context.Context, actor models.Actor, limitStr, offsetStr string) ([]models.RFQ, error) {
	limit, offset, err := parseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, err
	}

	filter := repository.RFQFilter{Limit: limit, Offset: offset}
	switch actor.Role {
	case models.RoleClient:
		filter.ClientID = actor.UserID
	case models.RoleSupplier:
		filter.Statuses = []models.RFQStatus{models.PublishedRFQ, models.OffersReceivedRFQ, models.NegotiationRFQ}
	case models.RoleAdmin:
		filter.ExcludeGatekeeper = models.GatekeeperAutoRejected
	}
	return s.Repo.ListRFQs(ctx, filter)
}

// GetRFQ получает запрос котировок с предложениями.
func (s *RFQService) GetRFQ(ctx context.Context, actor models.Actor, rfqID string) (*models.RFQView, error) {
	rfq, err := s.Repo.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}

	if actor.Role == models.RoleClient && rfq.ClientID != actor.UserID {
		return nil, models.NewForbidden("you do not own this rfq")
	}
	if actor.Role == models.RoleSupplier && !rfq.OpenForSuppliers() {
		return nil, models.NewForbidden("this rfq is not open to suppliers")
	}

	offerFilter := repository.OfferFilter{RFQID: rfqID}
	if actor.Role == models.RoleSupplier {
		offerFilter.SupplierID = actor.UserID
	}
	offers, err := s.OfferRepo.ListOffers(ctx, offerFilter)
	if err != nil {
		return nil, err
	}
	return &models.RFQView{RFQ: *rfq, Offers: offers}, nil
}

// PublishRFQ публикует черновик.
func (s *RFQService) PublishRFQ(ctx context.Context, actor models.Actor, rfqID string) (*models.RFQ, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can publish rfqs")
	}

	rfq, err := s.Repo.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	if err := ensureRFQTransition(rfq.Status, models.PublishedRFQ); err != nil {
		return nil, err
	}

	publishedAt := time.Now().UTC()
	if err := s.Repo.PublishRFQ(ctx, rfqID, publishedAt); err != nil {
		return nil, err
	}
	rfq.Status = models.PublishedRFQ
	rfq.PublishedAt = &publishedAt
	return rfq, nil
}

// SendToClient отправляет финальное предложение клиенту на утверждение.
func (s *RFQService) SendToClient(ctx context.Context, actor models.Actor, rfqID, offerID string) (*models.RFQ, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can send offers to the client")
	}

	rfq, err := s.Repo.GetRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}

	offer, err := s.OfferRepo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.RFQID != rfqID {
		return nil, models.NewValidationError("offer does not belong to this rfq")
	}
	if offer.Status != models.FinalConfirmedOffer {
		return nil, models.NewInvalidState("only final confirmed offers can be sent to the client")
	}
	if err := ensureRFQTransition(rfq.Status, models.SentToClientRFQ); err != nil {
		return nil, err
	}

	if err := s.Repo.SetRFQStatus(ctx, rfqID, models.SentToClientRFQ); err != nil {
		return nil, err
	}
	rfq.Status = models.SentToClientRFQ
	return rfq, nil
}

// DeleteRFQ удаляет запрос котировок. Удалять можно только черновики.
func (s *RFQService) DeleteRFQ(ctx context.Context, actor models.Actor, rfqID string) error {
	if actor.Role == models.RoleSupplier {
		return models.NewForbidden("suppliers cannot delete rfqs")
	}

	rfq, err := s.Repo.GetRFQ(ctx, rfqID)
	if err != nil {
		return err
	}
	if actor.Role == models.RoleClient && rfq.ClientID != actor.UserID {
		return models.NewForbidden("you do not own this rfq")
	}
	if rfq.Status != models.DraftRFQ {
		return models.NewInvalidState("only draft rfqs can be deleted")
	}
	return s.Repo.DeleteRFQ(ctx, rfqID)
}

// SetGatekeeperStatus записывает вердикт внешнего фильтра рисков.
// Информационное поле: переходы ядра от него не зависят.
func (s *RFQService) SetGatekeeperStatus(ctx context.Context, actor models.Actor, rfqID string, status models.GatekeeperStatus) error {
	if !actor.IsAdmin() {
		return models.NewForbidden("only admins can set the gatekeeper status")
	}
	switch status {
	case models.GatekeeperPending, models.GatekeeperApproved, models.GatekeeperAutoRejected:
	default:
		return models.NewValidationError("unknown gatekeeper status")
	}

	if _, err := s.Repo.GetRFQ(ctx, rfqID); err != nil {
		return err
	}
	return s.Repo.SetGatekeeperStatus(ctx, rfqID, status)
}

func parseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return 0, 0, models.NewValidationError(err.Error())
	}
	return limit, offset, nil
}
