package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OfferFilter ограничивает выборку предложений.
type OfferFilter struct {
	RFQID      string
	SupplierID string
	ClientID   string // Предложения по RFQ данного клиента
}

// OfferRepository - интерфейс для работы с предложениями.
type OfferRepository interface {
	CreateOffer(ctx context.Context, offer *models.Offer) error
	GetOffer(ctx context.Context, offerID string) (*models.Offer, error)
	FindActiveOffer(ctx context.Context, rfqID, supplierID string) (*models.Offer, error)
	ListOffers(ctx context.Context, filter OfferFilter) ([]models.Offer, error)
	DeleteOffer(ctx context.Context, offerID string) error
	RejectFinalOffer(ctx context.Context, offerID, rfqID string) error
}

// PostgresOfferRepository - реализация OfferRepository для базы данных.
type PostgresOfferRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOfferRepository создает новый экземпляр PostgresOfferRepository.
func NewPostgresOfferRepository(db *pgxpool.Pool) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db}
}

const offerColumns = `id, rfq_id, supplier_id, price, delivery_time, description, terms, status, is_locked, submitted_at, updated_at`

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var offer models.Offer
	err := row.Scan(
		&offer.ID,
		&offer.RFQID,
		&offer.SupplierID,
		&offer.Price,
		&offer.DeliveryTime,
		&offer.Description,
		&offer.Terms,
		&offer.Status,
		&offer.IsLocked,
		&offer.SubmittedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// CreateOffer вставляет предложение и в той же транзакции переводит RFQ
// из published в offers_received при первом предложении.
func (r *PostgresOfferRepository) CreateOffer(ctx context.Context, offer *models.Offer) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertQuery := `INSERT INTO offer (id, rfq_id, supplier_id, price, delivery_time, description, terms, status, is_locked, submitted_at, updated_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.Exec(
		ctx,
		insertQuery,
		offer.ID,
		offer.RFQID,
		offer.SupplierID,
		offer.Price,
		offer.DeliveryTime,
		offer.Description,
		offer.Terms,
		offer.Status,
		offer.IsLocked,
		offer.SubmittedAt,
		offer.UpdatedAt)
	if isUniqueViolation(err) {
		return models.NewConflict("supplier already submitted an offer for this rfq")
	}
	if err != nil {
		return err
	}

	updateRFQQuery := `UPDATE rfq SET status = $1 WHERE id = $2 AND status = $3`
	_, err = tx.Exec(ctx, updateRFQQuery, models.OffersReceivedRFQ, offer.RFQID, models.PublishedRFQ)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetOffer получает предложение по ID.
func (r *PostgresOfferRepository) GetOffer(ctx context.Context, offerID string) (*models.Offer, error) {
	query := fmt.Sprintf(`SELECT %s FROM offer WHERE id = $1`, offerColumns)
	offer, err := scanOffer(r.DB.QueryRow(ctx, query, offerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("offer not found")
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// FindActiveOffer ищет неотозванное предложение поставщика по данному RFQ.
// Возвращает nil без ошибки, когда такого предложения нет.
func (r *PostgresOfferRepository) FindActiveOffer(ctx context.Context, rfqID, supplierID string) (*models.Offer, error) {
	query := fmt.Sprintf(`SELECT %s FROM offer WHERE rfq_id = $1 AND supplier_id = $2 AND status <> $3`, offerColumns)
	offer, err := scanOffer(r.DB.QueryRow(ctx, query, rfqID, supplierID, models.WithdrawnOffer))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return offer, nil
}

// ListOffers возвращает список предложений по фильтру.
func (r *PostgresOfferRepository) ListOffers(ctx context.Context, filter OfferFilter) ([]models.Offer, error) {
	var query string
	var args []interface{}

	switch {
	case filter.RFQID != "" && filter.SupplierID != "":
		query = fmt.Sprintf(`SELECT %s FROM offer WHERE rfq_id = $1 AND supplier_id = $2 ORDER BY submitted_at DESC`, offerColumns)
		args = append(args, filter.RFQID, filter.SupplierID)
	case filter.RFQID != "":
		query = fmt.Sprintf(`SELECT %s FROM offer WHERE rfq_id = $1 ORDER BY submitted_at DESC`, offerColumns)
		args = append(args, filter.RFQID)
	case filter.SupplierID != "":
		query = fmt.Sprintf(`SELECT %s FROM offer WHERE supplier_id = $1 ORDER BY submitted_at DESC`, offerColumns)
		args = append(args, filter.SupplierID)
	case filter.ClientID != "":
		query = fmt.Sprintf(`SELECT %s FROM offer WHERE rfq_id IN (SELECT id FROM rfq WHERE client_id = $1) ORDER BY submitted_at DESC`,
			offerColumns)
		args = append(args, filter.ClientID)
	default:
		query = fmt.Sprintf(`SELECT %s FROM offer ORDER BY submitted_at DESC`, offerColumns)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, *offer)
	}
	return offers, rows.Err()
}

// DeleteOffer удаляет предложение.
func (r *PostgresOfferRepository) DeleteOffer(ctx context.Context, offerID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM offer WHERE id = $1`, offerID)
	return err
}

// RejectFinalOffer отклоняет финальное предложение клиентом и возвращает
// RFQ в переговоры одной транзакцией.
func (r *PostgresOfferRepository) RejectFinalOffer(ctx context.Context, offerID, rfqID string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, `UPDATE offer SET status = $1, updated_at = now() WHERE id = $2`, models.RejectedOffer, offerID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE rfq SET status = $1 WHERE id = $2`, models.NegotiationRFQ, rfqID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
