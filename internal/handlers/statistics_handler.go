package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/b2bquote/rfq-service/internal/services"
	"github.com/b2bquote/rfq-service/internal/utils"
)

// StatisticsHandler - структура для обработки HTTP-запросов к отчетам.
type StatisticsHandler struct {
	Service *services.StatisticsService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewStatisticsHandler создает новый экземпляр StatisticsHandler.
func NewStatisticsHandler(service *services.StatisticsService, logger *log.Logger, timeout time.Duration) *StatisticsHandler {
	return &StatisticsHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetDashboard обрабатывает запросы на сводку по роли.
func (h *StatisticsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	dashboard, err := h.Service.GetDashboard(ctx, actor)
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, dashboard)
}

// GetEarnings обрабатывает запросы на отчет о заработке платформы.
func (h *StatisticsHandler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	actor, err := utils.ActorFromRequest(r)
	if err != nil {
		utils.SendDomainError(w, err)
		return
	}

	report, err := h.Service.GetEarnings(ctx, actor, r.URL.Query().Get("period"))
	if err != nil {
		h.Logger.Println(err)
		utils.SendDomainError(w, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, report)
}
