package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/b2bquote/rfq-service/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NegotiationRepository - интерфейс для работы с переговорами.
// Каждый мутирующий метод выполняет все записи одной транзакцией.
type NegotiationRepository interface {
	StartNegotiation(ctx context.Context, negotiation *models.Negotiation, opening *models.NegotiationMessage) error
	GetNegotiation(ctx context.Context, negotiationID string) (*models.Negotiation, error)
	GetNegotiationByOffer(ctx context.Context, offerID string) (*models.Negotiation, error)
	FindActiveByOffer(ctx context.Context, offerID string) (*models.Negotiation, error)
	ListMessages(ctx context.Context, negotiationID string) ([]models.NegotiationMessage, error)
	AddMessageAndAdvance(ctx context.Context, negotiationID string, message *models.NegotiationMessage) error
	CompleteNegotiation(ctx context.Context, negotiationID string, message *models.NegotiationMessage, offerID string, finalPrice float64, finalDeliveryTime string, completedAt time.Time) error
	RejectNegotiation(ctx context.Context, negotiationID string, message *models.NegotiationMessage, offerID string, completedAt time.Time) error
	CancelNegotiation(ctx context.Context, negotiationID, offerID string) error
}

// PostgresNegotiationRepository - реализация NegotiationRepository для базы данных.
type PostgresNegotiationRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresNegotiationRepository создает новый экземпляр PostgresNegotiationRepository.
func NewPostgresNegotiationRepository(db *pgxpool.Pool) *PostgresNegotiationRepository {
	return &PostgresNegotiationRepository{DB: db}
}

const negotiationColumns = `id, offer_id, rfq_id, admin_id, supplier_id, rounds, status, created_at, completed_at`

func scanNegotiation(row pgx.Row) (*models.Negotiation, error) {
	var negotiation models.Negotiation
	err := row.Scan(
		&negotiation.ID,
		&negotiation.OfferID,
		&negotiation.RFQID,
		&negotiation.AdminID,
		&negotiation.SupplierID,
		&negotiation.Rounds,
		&negotiation.Status,
		&negotiation.CreatedAt,
		&negotiation.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &negotiation, nil
}

func insertMessage(ctx context.Context, tx pgx.Tx, message *models.NegotiationMessage) error {
	insertQuery := `INSERT INTO negotiation_message (id, negotiation_id, sender_id, sender_role, round_number, message, proposed_price, proposed_delivery_time, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := tx.Exec(
		ctx,
		insertQuery,
		message.ID,
		message.NegotiationID,
		message.SenderID,
		message.SenderRole,
		message.RoundNumber,
		message.Message,
		message.ProposedPrice,
		message.ProposedDeliveryTime,
		message.CreatedAt)
	return err
}

// StartNegotiation создает переговоры, первое сообщение администратора и
// переводит предложение и RFQ в переговорные статусы одной транзакцией.
// Частичный уникальный индекс превращает гонку двух стартов в conflict.
func (r *PostgresNegotiationRepository) StartNegotiation(ctx context.Context, negotiation *models.Negotiation, opening *models.NegotiationMessage) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertQuery := `INSERT INTO negotiation (id, offer_id, rfq_id, admin_id, supplier_id, rounds, status, created_at)
	                VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = tx.Exec(
		ctx,
		insertQuery,
		negotiation.ID,
		negotiation.OfferID,
		negotiation.RFQID,
		negotiation.AdminID,
		negotiation.SupplierID,
		negotiation.Rounds,
		negotiation.Status,
		negotiation.CreatedAt)
	if isUniqueViolation(err) {
		return models.NewConflict("active negotiation already exists for this offer")
	}
	if err != nil {
		return err
	}

	if err = insertMessage(ctx, tx, opening); err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `UPDATE offer SET status = $1, updated_at = now() WHERE id = $2`,
		models.InNegotiationOffer, negotiation.OfferID); err != nil {
		return err
	}
	if _, err = tx.Exec(ctx, `UPDATE rfq SET status = $1 WHERE id = $2`,
		models.NegotiationRFQ, negotiation.RFQID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetNegotiation получает переговоры по ID.
func (r *PostgresNegotiationRepository) GetNegotiation(ctx context.Context, negotiationID string) (*models.Negotiation, error) {
	query := fmt.Sprintf(`SELECT %s FROM negotiation WHERE id = $1`, negotiationColumns)
	negotiation, err := scanNegotiation(r.DB.QueryRow(ctx, query, negotiationID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("negotiation not found")
	}
	if err != nil {
		return nil, err
	}
	return negotiation, nil
}

// GetNegotiationByOffer получает последние переговоры по предложению.
func (r *PostgresNegotiationRepository) GetNegotiationByOffer(ctx context.Context, offerID string) (*models.Negotiation, error) {
	query := fmt.Sprintf(`SELECT %s FROM negotiation WHERE offer_id = $1 ORDER BY created_at DESC LIMIT 1`, negotiationColumns)
	negotiation, err := scanNegotiation(r.DB.QueryRow(ctx, query, offerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.NewNotFound("no negotiation exists for this offer")
	}
	if err != nil {
		return nil, err
	}
	return negotiation, nil
}

// FindActiveByOffer ищет активные переговоры по предложению.
// Возвращает nil без ошибки, когда активных переговоров нет.
func (r *PostgresNegotiationRepository) FindActiveByOffer(ctx context.Context, offerID string) (*models.Negotiation, error) {
	query := fmt.Sprintf(`SELECT %s FROM negotiation WHERE offer_id = $1 AND status = $2`, negotiationColumns)
	negotiation, err := scanNegotiation(r.DB.QueryRow(ctx, query, offerID, models.ActiveNegotiation))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return negotiation, nil
}

// ListMessages возвращает сообщения переговоров в порядке создания.
func (r *PostgresNegotiationRepository) ListMessages(ctx context.Context, negotiationID string) ([]models.NegotiationMessage, error) {
	query := `SELECT id, negotiation_id, sender_id, sender_role, round_number, message, proposed_price, proposed_delivery_time, created_at
	          FROM negotiation_message WHERE negotiation_id = $1 ORDER BY created_at`
	rows, err := r.DB.Query(ctx, query, negotiationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.NegotiationMessage
	for rows.Next() {
		var message models.NegotiationMessage
		if err := rows.Scan(
			&message.ID,
			&message.NegotiationID,
			&message.SenderID,
			&message.SenderRole,
			&message.RoundNumber,
			&message.Message,
			&message.ProposedPrice,
			&message.ProposedDeliveryTime,
			&message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

// AddMessageAndAdvance записывает сообщение и увеличивает счетчик раундов
// одной транзакцией. Предикаты статуса и лимита раундов в UPDATE отсекают
// гонки с завершением переговоров и с параллельным встречным предложением.
func (r *PostgresNegotiationRepository) AddMessageAndAdvance(ctx context.Context, negotiationID string, message *models.NegotiationMessage) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err = insertMessage(ctx, tx, message); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE negotiation SET rounds = rounds + 1 WHERE id = $1 AND status = $2 AND rounds < $3`,
		negotiationID, models.ActiveNegotiation, models.MaxNegotiationRounds)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var status models.NegotiationStatus
		if err := tx.QueryRow(ctx, `SELECT status FROM negotiation WHERE id = $1`, negotiationID).Scan(&status); err != nil {
			return err
		}
		if status != models.ActiveNegotiation {
			return models.NewInvalidState("negotiation is no longer active")
		}
		return models.NewRoundLimitExceeded("maximum number of negotiation rounds reached")
	}

	return tx.Commit(ctx)
}

// CompleteNegotiation фиксирует согласие поставщика: сообщение, завершение
// переговоров и блокировка предложения с финальными условиями.
func (r *PostgresNegotiationRepository) CompleteNegotiation(ctx context.Context, negotiationID string, message *models.NegotiationMessage, offerID string, finalPrice float64, finalDeliveryTime string, completedAt time.Time) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err = insertMessage(ctx, tx, message); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE negotiation SET status = $1, completed_at = $2 WHERE id = $3 AND status = $4`,
		models.CompletedNegotiation, completedAt, negotiationID, models.ActiveNegotiation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewInvalidState("negotiation is no longer active")
	}
	if _, err = tx.Exec(ctx, `UPDATE offer SET status = $1, is_locked = TRUE, price = $2, delivery_time = $3, updated_at = now() WHERE id = $4`,
		models.FinalConfirmedOffer, finalPrice, finalDeliveryTime, offerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RejectNegotiation фиксирует отказ поставщика: необязательное сообщение,
// отмена переговоров и отклонение предложения.
func (r *PostgresNegotiationRepository) RejectNegotiation(ctx context.Context, negotiationID string, message *models.NegotiationMessage, offerID string, completedAt time.Time) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if message != nil {
		if err = insertMessage(ctx, tx, message); err != nil {
			return err
		}
	}
	tag, err := tx.Exec(ctx, `UPDATE negotiation SET status = $1, completed_at = $2 WHERE id = $3 AND status = $4`,
		models.CancelledNegotiation, completedAt, negotiationID, models.ActiveNegotiation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewInvalidState("negotiation is no longer active")
	}
	if _, err = tx.Exec(ctx, `UPDATE offer SET status = $1, updated_at = now() WHERE id = $2`,
		models.RejectedOffer, offerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CancelNegotiation отменяет переговоры администратором и возвращает
// предложение на рассмотрение.
func (r *PostgresNegotiationRepository) CancelNegotiation(ctx context.Context, negotiationID, offerID string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE negotiation SET status = $1 WHERE id = $2 AND status = $3`,
		models.CancelledNegotiation, negotiationID, models.ActiveNegotiation)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewInvalidState("negotiation is no longer active")
	}
	if _, err = tx.Exec(ctx, `UPDATE offer SET status = $1, updated_at = now() WHERE id = $2`,
		models.UnderReviewOffer, offerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
