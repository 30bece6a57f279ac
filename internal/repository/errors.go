package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

// isUniqueViolation сообщает, нарушил ли запрос уникальный индекс.
// Частичные уникальные индексы страхуют инварианты эксклюзивности от гонок.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
