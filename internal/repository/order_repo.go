package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderFilter ограничивает выборку заказов.
type OrderFilter struct {
	ClientID   string
	SupplierID string
}

// OrderRepository - интерфейс для работы с заказами.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
	FindOrderByOffer(ctx context.Context, offerID string) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	UpdateOrderProgress(ctx context.Context, order *models.Order, from models.OrderStatus) error
	DeleteOrder(ctx context.Context, orderID, rfqID, offerID string) error
}

// PostgresOrderRepository - реализация OrderRepository для базы данных.
type PostgresOrderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOrderRepository создает новый экземпляр PostgresOrderRepository.
func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

const orderColumns = `id, rfq_id, offer_id, client_id, supplier_id, final_price, final_terms, status, is_locked, payment_mock_status, delivery_status, created_at, finalized_at, archived_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.RFQID,
		&order.OfferID,
		&order.ClientID,
		&order.SupplierID,
		&order.FinalPrice,
		&order.FinalTerms,
		&order.Status,
		&order.IsLocked,
		&order.PaymentMockStatus,
		&order.DeliveryStatus,
		&order.CreatedAt,
		&order.FinalizedAt,
		&order.ArchivedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateOrder вставляет заказ и в той же транзакции закрывает RFQ и
// принимает предложение. Уникальный индекс по offer_id превращает гонку
// двух созданий в conflict.
func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertQuery := `INSERT INTO orders (id, rfq_id, offer_id, client_id, supplier_id, final_price, final_terms, status, is_locked, payment_mock_status, delivery_status, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.Exec(
		ctx,
		insertQuery,
		order.ID,
		order.RFQID,
		order.OfferID,
		order.ClientID,
		order.SupplierID,
		order.FinalPrice,
		order.FinalTerms,
		order.Status,
		order.IsLocked,
		order.PaymentMockStatus,
		order.DeliveryStatus,
		order.CreatedAt)
	if isUniqueViolation(err) {
		return models.NewConflict("order already exists for this offer")
	}
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `UPDATE rfq SET status = $1, closed_at = now() WHERE id = $2`,
		models.ClosedRFQ, order.RFQID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE offer SET status = $1, updated_at = now() WHERE id = $2`,
		models.AcceptedOffer, order.OfferID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetOrder получает заказ по ID.
func (r *PostgresOrderRepository) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)
	order, err := scanOrder(r.DB.QueryRow(ctx, query, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FindOrderByOffer ищет заказ по предложению.
// Возвращает nil без ошибки, когда заказа нет.
func (r *PostgresOrderRepository) FindOrderByOffer(ctx context.Context, offerID string) (*models.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE offer_id = $1`, orderColumns)
	order, err := scanOrder(r.DB.QueryRow(ctx, query, offerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders возвращает список заказов по фильтру.
func (r *PostgresOrderRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var query string
	var args []interface{}

	switch {
	case filter.ClientID != "":
		query = fmt.Sprintf(`SELECT %s FROM orders WHERE client_id = $1 ORDER BY created_at DESC`, orderColumns)
		args = append(args, filter.ClientID)
	case filter.SupplierID != "":
		query = fmt.Sprintf(`SELECT %s FROM orders WHERE supplier_id = $1 ORDER BY created_at DESC`, orderColumns)
		args = append(args, filter.SupplierID)
	default:
		query = fmt.Sprintf(`SELECT %s FROM orders ORDER BY created_at DESC`, orderColumns)
	}

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

// UpdateOrderProgress сохраняет пересчитанную проекцию статуса вместе с
// осями оплаты и доставки. Единственная точка записи прогресса заказа.
// Предикат по прежнему статусу отсекает гонку с параллельным обновлением.
func (r *PostgresOrderRepository) UpdateOrderProgress(ctx context.Context, order *models.Order, from models.OrderStatus) error {
	updateQuery := `UPDATE orders
	                SET status = $1, is_locked = $2, payment_mock_status = $3, delivery_status = $4, finalized_at = $5, archived_at = $6
	                WHERE id = $7 AND status = $8`
	tag, err := r.DB.Exec(
		ctx,
		updateQuery,
		order.Status,
		order.IsLocked,
		order.PaymentMockStatus,
		order.DeliveryStatus,
		order.FinalizedAt,
		order.ArchivedAt,
		order.ID,
		from)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewInvalidState("order is no longer in the expected state")
	}
	return nil
}

// DeleteOrder удаляет заказ и откатывает побочные эффекты создания:
// RFQ возвращается клиенту, предложение разблокируется. Единственный
// путь снятия блокировки с предложения.
func (r *PostgresOrderRepository) DeleteOrder(ctx context.Context, orderID, rfqID, offerID string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `UPDATE rfq SET status = $1, closed_at = NULL WHERE id = $2 AND status = $3`,
		models.SentToClientRFQ, rfqID, models.ClosedRFQ); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE offer SET is_locked = FALSE, updated_at = now() WHERE id = $1`, offerID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
