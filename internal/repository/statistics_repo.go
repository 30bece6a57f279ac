package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// FunnelCounts - счетчики воронки RFQ -> предложение -> переговоры -> заказ.
type FunnelCounts struct {
	TotalRFQs             int `json:"totalRfqs"`
	PublishedRFQs         int `json:"publishedRfqs"`
	ClosedRFQs            int `json:"closedRfqs"`
	TotalOffers           int `json:"totalOffers"`
	AcceptedOffers        int `json:"acceptedOffers"`
	TotalNegotiations     int `json:"totalNegotiations"`
	CompletedNegotiations int `json:"completedNegotiations"`
}

// StatisticsRepository - интерфейс для отчетных выборок. Только чтение,
// логика переходов сюда не попадает.
type StatisticsRepository interface {
	CountRFQs(ctx context.Context, clientID string, statuses []models.RFQStatus) (int, error)
	CountOffers(ctx context.Context, supplierID, clientID string, statuses []models.OfferStatus) (int, error)
	CountActiveOrders(ctx context.Context, clientID, supplierID string) (int, error)
	CountOrders(ctx context.Context, supplierID string) (int, error)
	ListCompletedOrders(ctx context.Context, since *time.Time) ([]models.Order, error)
	GetFunnelCounts(ctx context.Context, since *time.Time) (*FunnelCounts, error)
}

// PostgresStatisticsRepository - реализация StatisticsRepository для базы данных.
type PostgresStatisticsRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresStatisticsRepository создает новый экземпляр PostgresStatisticsRepository.
func NewPostgresStatisticsRepository(db *pgxpool.Pool) *PostgresStatisticsRepository {
	return &PostgresStatisticsRepository{DB: db}
}

// CountRFQs считает запросы котировок по владельцу и статусам.
func (r *PostgresStatisticsRepository) CountRFQs(ctx context.Context, clientID string, statuses []models.RFQStatus) (int, error) {
	query := `SELECT COUNT(*) FROM rfq WHERE 1=1`
	var args []interface{}
	argIndex := 1

	if clientID != "" {
		query += fmt.Sprintf(" AND client_id = $%d", argIndex)
		args = append(args, clientID)
		argIndex++
	}
	if len(statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, statuses)
	}

	var count int
	err := r.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// CountOffers считает предложения по поставщику, клиенту RFQ и статусам.
func (r *PostgresStatisticsRepository) CountOffers(ctx context.Context, supplierID, clientID string, statuses []models.OfferStatus) (int, error) {
	query := `SELECT COUNT(*) FROM offer WHERE 1=1`
	var args []interface{}
	argIndex := 1

	if supplierID != "" {
		query += fmt.Sprintf(" AND supplier_id = $%d", argIndex)
		args = append(args, supplierID)
		argIndex++
	}
	if clientID != "" {
		query += fmt.Sprintf(" AND rfq_id IN (SELECT id FROM rfq WHERE client_id = $%d)", argIndex)
		args = append(args, clientID)
		argIndex++
	}
	if len(statuses) > 0 {
		query += fmt.Sprintf(" AND status = ANY($%d)", argIndex)
		args = append(args, statuses)
	}

	var count int
	err := r.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// CountActiveOrders считает незаархивированные заказы.
func (r *PostgresStatisticsRepository) CountActiveOrders(ctx context.Context, clientID, supplierID string) (int, error) {
	query := `SELECT COUNT(*) FROM orders WHERE status <> $1`
	args := []interface{}{models.ArchivedOrder}
	argIndex := 2

	if clientID != "" {
		query += fmt.Sprintf(" AND client_id = $%d", argIndex)
		args = append(args, clientID)
		argIndex++
	}
	if supplierID != "" {
		query += fmt.Sprintf(" AND supplier_id = $%d", argIndex)
		args = append(args, supplierID)
	}

	var count int
	err := r.DB.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

// CountOrders считает все заказы поставщика.
func (r *PostgresStatisticsRepository) CountOrders(ctx context.Context, supplierID string) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE supplier_id = $1`, supplierID).Scan(&count)
	return count, err
}

// ListCompletedOrders возвращает завершенные заказы за период.
func (r *PostgresStatisticsRepository) ListCompletedOrders(ctx context.Context, since *time.Time) ([]models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE status = ANY($1)`, orderColumns)
	args := []interface{}{[]models.OrderStatus{models.FinalizedOrder, models.ArchivedOrder}}
	if since != nil {
		query += " AND created_at >= $2"
		args = append(args, *since)
	}
	query += " ORDER BY created_at"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// GetFunnelCounts собирает счетчики конверсии за период одним запросом на таблицу.
func (r *PostgresStatisticsRepository) GetFunnelCounts(ctx context.Context, since *time.Time) (*FunnelCounts, error) {
	from := time.Time{}
	if since != nil {
		from = *since
	}

	var counts FunnelCounts
	rfqQuery := `SELECT COUNT(*),
	                    COUNT(*) FILTER (WHERE status = ANY($2)),
	                    COUNT(*) FILTER (WHERE status = $3)
	             FROM rfq WHERE created_at >= $1`
	err := r.DB.QueryRow(ctx, rfqQuery, from,
		[]models.RFQStatus{models.PublishedRFQ, models.OffersReceivedRFQ, models.NegotiationRFQ},
		models.ClosedRFQ).Scan(&counts.TotalRFQs, &counts.PublishedRFQs, &counts.ClosedRFQs)
	if err != nil {
		return nil, err
	}

	offerQuery := `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2) FROM offer WHERE submitted_at >= $1`
	err = r.DB.QueryRow(ctx, offerQuery, from, models.AcceptedOffer).Scan(&counts.TotalOffers, &counts.AcceptedOffers)
	if err != nil {
		return nil, err
	}

	negotiationQuery := `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2) FROM negotiation WHERE created_at >= $1`
	err = r.DB.QueryRow(ctx, negotiationQuery, from, models.CompletedNegotiation).Scan(&counts.TotalNegotiations, &counts.CompletedNegotiations)
	if err != nil {
		return nil, err
	}

	return &counts, nil
}
