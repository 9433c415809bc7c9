package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// BaseInfoHandler отдаёт общую статистику площадки.
type BaseInfoHandler struct {
	Service  *services.BaseInfoService
	Subjects SubjectResolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewBaseInfoHandler создаёт новый экземпляр BaseInfoHandler.
func NewBaseInfoHandler(service *services.BaseInfoService, subjects SubjectResolver, logger *log.Logger, timeout time.Duration) *BaseInfoHandler {
	return &BaseInfoHandler{
		Service:  service,
		Subjects: subjects,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// GetBaseInfo обрабатывает GET запрос к /api/base-info/
func (h *BaseInfoHandler) GetBaseInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	info, err := h.Service.GetBaseInfo(ctx, subject)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch base info")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, info)
}
