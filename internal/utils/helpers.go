package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/b2bquote/rfq-service/internal/models"
)

// SendErrorResponse отправляет ошибку в формате JSON.
func SendErrorResponse(w http.ResponseWriter, statusCode int, kind models.ErrorKind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Kind:       kind,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// SendDomainError отправляет доменную ошибку, подменяя неизвестные на 500.
func SendDomainError(w http.ResponseWriter, err error) {
	if errorResponse, ok := err.(*models.ErrorResponse); ok {
		SendErrorResponse(w, errorResponse.StatusCode, errorResponse.Kind, errorResponse.Message)
		return
	}
	SendErrorResponse(w, http.StatusInternalServerError, models.KindInternal, "internal server error")
}

// SendJSON отправляет успешный ответ в формате JSON.
func SendJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Println(err)
	}
}

// ActorFromRequest извлекает личность пользователя из заголовков,
// выставленных внешним слоем аутентификации.
func ActorFromRequest(r *http.Request) (models.Actor, error) {
	userID := r.Header.Get("X-User-Id")
	role := models.Role(r.Header.Get("X-User-Role"))

	if userID == "" {
		return models.Actor{}, models.NewForbidden("missing X-User-Id header")
	}
	if !models.ValidRole(role) {
		return models.Actor{}, models.NewForbidden(fmt.Sprintf("unknown role %q", role))
	}
	return models.Actor{UserID: userID, Role: role}, nil
}

// ParseLimitOffset обрабатывает limit и offset.
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 20
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}
