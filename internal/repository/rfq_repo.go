package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RFQFilter ограничивает выборку запросов котировок.
type RFQFilter struct {
	ClientID         string
	Statuses         []models.RFQStatus
	ExcludeGatekeeper models.GatekeeperStatus
	Limit            int
	Offset           int
}

// RFQRepository - интерфейс для работы с запросами котировок.
type RFQRepository interface {
	CreateRFQ(ctx context.Context, rfq *models.RFQ) error
	GetRFQ(ctx context.Context, rfqID string) (*models.RFQ, error)
	ListRFQs(ctx context.Context, filter RFQFilter) ([]models.RFQ, error)
	PublishRFQ(ctx context.Context, rfqID string, publishedAt time.Time) error
	SetRFQStatus(ctx context.Context, rfqID string, status models.RFQStatus) error
	SetGatekeeperStatus(ctx context.Context, rfqID string, status models.GatekeeperStatus) error
	DeleteRFQ(ctx context.Context, rfqID string) error
}

// PostgresRFQRepository - реализация RFQRepository для базы данных.
type PostgresRFQRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresRFQRepository создает новый экземпляр PostgresRFQRepository.
func NewPostgresRFQRepository(db *pgxpool.Pool) *PostgresRFQRepository {
	return &PostgresRFQRepository{DB: db}
}

const rfqColumns = `id, client_id, title, description, requirements, deadline, budget, status, gatekeeper_status, created_at, published_at, closed_at`

func scanRFQ(row pgx.Row) (*models.RFQ, error) {
	var rfq models.RFQ
	err := row.Scan(
		&rfq.ID,
		&rfq.ClientID,
		&rfq.Title,
		&rfq.Description,
		&rfq.Requirements,
		&rfq.Deadline,
		&rfq.Budget,
		&rfq.Status,
		&rfq.GatekeeperStatus,
		&rfq.CreatedAt,
		&rfq.PublishedAt,
		&rfq.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

// CreateRFQ создает новый запрос котировок в статусе черновика.
func (r *PostgresRFQRepository) CreateRFQ(ctx context.Context, rfq *models.RFQ) error {
	insertQuery := `INSERT INTO rfq (id, client_id, title, description, requirements, deadline, budget, status, gatekeeper_status, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		rfq.ID,
		rfq.ClientID,
		rfq.Title,
		rfq.Description,
		rfq.Requirements,
		rfq.Deadline,
		rfq.Budget,
		rfq.Status,
		rfq.GatekeeperStatus,
		rfq.CreatedAt)
	return err
}

// GetRFQ получает запрос котировок по ID.
func (r *PostgresRFQRepository) GetRFQ(ctx context.Context, rfqID string) (*models.RFQ, error) {
	query := fmt.Sprintf(`SELECT %s FROM rfq WHERE id = $1`, rfqColumns)
	rfq, err := scanRFQ(r.DB.QueryRow(ctx, query, rfqID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("rfq not found")
	}
	if err != nil {
		return nil, err
	}
	return rfq, nil
}

// ListRFQs возвращает список запросов котировок по фильтру.
func (r *PostgresRFQRepository) ListRFQs(ctx context.Context, filter RFQFilter) ([]models.RFQ, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.ClientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argIndex))
		args = append(args, filter.ClientID)
		argIndex++
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, status := range filter.Statuses {
			placeholders = append(placeholders, fmt.Sprintf("$%d", argIndex))
			args = append(args, status)
			argIndex++
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.ExcludeGatekeeper != "" {
		conditions = append(conditions, fmt.Sprintf("gatekeeper_status <> $%d", argIndex))
		args = append(args, filter.ExcludeGatekeeper)
		argIndex++
	}

	query := fmt.Sprintf(`SELECT %s FROM rfq`, rfqColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rfqs []models.RFQ
	for rows.Next() {
		rfq, err := scanRFQ(rows)
		if err != nil {
			return nil, err
		}
		rfqs = append(rfqs, *rfq)
	}
	return rfqs, rows.Err()
}

// PublishRFQ переводит черновик в опубликованный статус.
func (r *PostgresRFQRepository) PublishRFQ(ctx context.Context, rfqID string, publishedAt time.Time) error {
	updateQuery := `UPDATE rfq SET status = $1, published_at = $2 WHERE id = $3`
	_, err := r.DB.Exec(ctx, updateQuery, models.PublishedRFQ, publishedAt, rfqID)
	return err
}

// SetRFQStatus меняет статус запроса котировок.
func (r *PostgresRFQRepository) SetRFQStatus(ctx context.Context, rfqID string, status models.RFQStatus) error {
	if status == models.ClosedRFQ {
		updateQuery := `UPDATE rfq SET status = $1, closed_at = now() WHERE id = $2`
		_, err := r.DB.Exec(ctx, updateQuery, status, rfqID)
		return err
	}
	updateQuery := `UPDATE rfq SET status = $1 WHERE id = $2`
	_, err := r.DB.Exec(ctx, updateQuery, status, rfqID)
	return err
}

// SetGatekeeperStatus записывает вердикт внешнего фильтра рисков.
// Машина состояний ядра это поле не читает.
func (r *PostgresRFQRepository) SetGatekeeperStatus(ctx context.Context, rfqID string, status models.GatekeeperStatus) error {
	updateQuery := `UPDATE rfq SET gatekeeper_status = $1 WHERE id = $2`
	_, err := r.DB.Exec(ctx, updateQuery, status, rfqID)
	return err
}

// DeleteRFQ удаляет запрос котировок.
func (r *PostgresRFQRepository) DeleteRFQ(ctx context.Context, rfqID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM rfq WHERE id = $1`, rfqID)
	return err
}
