package services

import (
	"context"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"
	"github.com/b2bquote/rfq-service/internal/repository"
)

// Dashboard - сводка по роли. Набор счетчиков зависит от роли, поэтому
// пустые значения опускаются.
type Dashboard struct {
	ActiveRFQs      *int `json:"activeRfqs,omitempty"`
	OffersReceived  *int `json:"offersReceived,omitempty"`
	RFQsPosted      *int `json:"rfqsPosted,omitempty"`
	FinalOffers     *int `json:"finalOffers,omitempty"`
	AvailableRFQs   *int `json:"availableRfqs,omitempty"`
	OffersSubmitted *int `json:"offersSubmitted,omitempty"`
	OrdersWon       *int `json:"ordersWon,omitempty"`
	ActiveOrders    *int `json:"activeOrders,omitempty"`
}

// EarningsReport - отчет о заработке платформы за период: сводка по
// завершенным заказам плюс счетчики конверсии воронки.
type EarningsReport struct {
	Period                string                   `json:"period"`
	CompletedOrders       int                      `json:"completedOrders"`
	TotalVolume           float64                  `json:"totalVolume"`
	TotalCommission       float64                  `json:"totalCommission"`
	AverageOrderValue     float64                  `json:"averageOrderValue"`
	AverageCommissionRate float64                  `json:"averageCommissionRate"`
	Funnel                *repository.FunnelCounts `json:"funnel"`
}

// StatisticsService строит отчетные сводки поверх основных хранилищ.
type StatisticsService struct {
	Repo repository.StatisticsRepository
}

// NewStatisticsService создает новый экземпляр StatisticsService.
func NewStatisticsService(repo repository.StatisticsRepository) *StatisticsService {
	return &StatisticsService{Repo: repo}
}

// CalculateCommission возвращает комиссию платформы по ступенчатой шкале.
func CalculateCommission(amount float64) float64 {
	switch {
	case amount >= 1000000:
		return amount * 0.05
	case amount >= 500000:
		return amount * 0.07
	case amount >= 100000:
		return amount * 0.08
	default:
		return amount * 0.10
	}
}

// GetDashboard собирает сводку, соответствующую роли актора.
func (s *StatisticsService) GetDashboard(ctx context.Context, actor models.Actor) (*Dashboard, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return s.adminDashboard(ctx)
	case models.RoleClient:
		return s.clientDashboard(ctx, actor.UserID)
	case models.RoleSupplier:
		return s.supplierDashboard(ctx, actor.UserID)
	default:
		return nil, models.NewForbidden("unknown role")
	}
}

func (s *StatisticsService) adminDashboard(ctx context.Context) (*Dashboard, error) {
	activeRFQs, err := s.Repo.CountRFQs(ctx, "", []models.RFQStatus{
		models.PublishedRFQ, models.OffersReceivedRFQ, models.NegotiationRFQ, models.SentToClientRFQ,
	})
	if err != nil {
		return nil, err
	}
	offersReceived, err := s.Repo.CountOffers(ctx, "", "", nil)
	if err != nil {
		return nil, err
	}
	activeOrders, err := s.Repo.CountActiveOrders(ctx, "", "")
	if err != nil {
		return nil, err
	}
	return &Dashboard{ActiveRFQs: &activeRFQs, OffersReceived: &offersReceived, ActiveOrders: &activeOrders}, nil
}

func (s *StatisticsService) clientDashboard(ctx context.Context, clientID string) (*Dashboard, error) {
	rfqsPosted, err := s.Repo.CountRFQs(ctx, clientID, nil)
	if err != nil {
		return nil, err
	}
	finalOffers, err := s.Repo.CountOffers(ctx, "", clientID, []models.OfferStatus{models.FinalConfirmedOffer})
	if err != nil {
		return nil, err
	}
	activeOrders, err := s.Repo.CountActiveOrders(ctx, clientID, "")
	if err != nil {
		return nil, err
	}
	return &Dashboard{RFQsPosted: &rfqsPosted, FinalOffers: &finalOffers, ActiveOrders: &activeOrders}, nil
}

func (s *StatisticsService) supplierDashboard(ctx context.Context, supplierID string) (*Dashboard, error) {
	availableRFQs, err := s.Repo.CountRFQs(ctx, "", []models.RFQStatus{
		models.PublishedRFQ, models.OffersReceivedRFQ,
	})
	if err != nil {
		return nil, err
	}
	offersSubmitted, err := s.Repo.CountOffers(ctx, supplierID, "", nil)
	if err != nil {
		return nil, err
	}
	ordersWon, err := s.Repo.CountOrders(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	return &Dashboard{AvailableRFQs: &availableRFQs, OffersSubmitted: &offersSubmitted, OrdersWon: &ordersWon}, nil
}

// GetEarnings строит отчет о заработке платформы за период.
// Учитываются только финализированные и заархивированные заказы.
func (s *StatisticsService) GetEarnings(ctx context.Context, actor models.Actor, period string) (*EarningsReport, error) {
	if !actor.IsAdmin() {
		return nil, models.NewForbidden("only admins can view the earnings report")
	}

	since, err := periodStart(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	orders, err := s.Repo.ListCompletedOrders(ctx, since)
	if err != nil {
		return nil, err
	}

	report := &EarningsReport{Period: period}
	if period == "" {
		report.Period = "all"
	}
	for _, order := range orders {
		report.CompletedOrders++
		report.TotalVolume += order.FinalPrice
		report.TotalCommission += CalculateCommission(order.FinalPrice)
	}
	if report.CompletedOrders > 0 {
		report.AverageOrderValue = report.TotalVolume / float64(report.CompletedOrders)
	}
	if report.TotalVolume > 0 {
		report.AverageCommissionRate = report.TotalCommission / report.TotalVolume
	}

	report.Funnel, err = s.Repo.GetFunnelCounts(ctx, since)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// periodStart превращает именованный период в начальную отметку времени.
// Пустой период и "all" означают выборку без нижней границы.
func periodStart(period string, now time.Time) (*time.Time, error) {
	switch period {
	case "", "all":
		return nil, nil
	case "today":
		start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return &start, nil
	case "week":
		start := now.AddDate(0, 0, -7)
		return &start, nil
	case "month":
		start := now.AddDate(0, -1, 0)
		return &start, nil
	case "year":
		start := now.AddDate(-1, 0, 0)
		return &start, nil
	default:
		return nil, models.NewValidationError("unknown period")
	}
}
