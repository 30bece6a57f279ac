package models

import "net/http"

type ErrorKind string // Вид доменной ошибки

const (
	KindNotFound     ErrorKind = "not_found"            // Сущность не найдена
	KindForbidden    ErrorKind = "forbidden"            // Нет прав на операцию
	KindInvalidState ErrorKind = "invalid_state"        // Переход недопустим для текущего статуса
	KindConflict     ErrorKind = "conflict"             // Нарушение уникальности/эксклюзивности
	KindRoundLimit   ErrorKind = "round_limit_exceeded" // Превышен лимит раундов переговоров
	KindValidation   ErrorKind = "validation_error"     // Некорректные входные данные
	KindInternal     ErrorKind = "internal"             // Внутренняя ошибка
)

// ErrorResponse описывает ошибку с кодом, видом и сообщением.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, kind ErrorKind, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message}
}

// NewNotFound - запрошенная сущность не существует.
func NewNotFound(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusNotFound, KindNotFound, message)
}

// NewForbidden - у пользователя нет роли или владения для операции.
func NewForbidden(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusForbidden, KindForbidden, message)
}

// NewInvalidState - операция недопустима в текущем статусе сущности.
func NewInvalidState(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindInvalidState, message)
}

// NewConflict - нарушен инвариант уникальности.
func NewConflict(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindConflict, message)
}

// NewRoundLimitExceeded - встречное предложение после предельного раунда.
func NewRoundLimitExceeded(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusConflict, KindRoundLimit, message)
}

// NewValidationError - некорректное тело или параметры запроса.
func NewValidationError(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusBadRequest, KindValidation, message)
}

// NewInternal - внутренняя ошибка сервиса.
func NewInternal(message string) *ErrorResponse {
	return NewErrorResponse(http.StatusInternalServerError, KindInternal, message)
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}
