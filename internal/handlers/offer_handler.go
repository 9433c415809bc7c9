package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// OfferHandler - структура для обработки HTTP-запросов к предложениям.
type OfferHandler struct {
	Service     *services.OfferService
	Subjects    SubjectResolver
	Logger      *log.Logger
	Timeout     time.Duration
	PageSize    int
	MaxPageSize int
}

// NewOfferHandler создаёт новый экземпляр OfferHandler.
func NewOfferHandler(service *services.OfferService, subjects SubjectResolver, logger *log.Logger, timeout time.Duration, pageSize, maxPageSize int) *OfferHandler {
	return &OfferHandler{
		Service:     service,
		Subjects:    subjects,
		Logger:      logger,
		Timeout:     timeout,
		PageSize:    pageSize,
		MaxPageSize: maxPageSize,
	}
}

// ListOffers обрабатывает запросы для получения списка предложений.
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	limit, offset, err := utils.ParsePage(query.Get("page"), query.Get("page_size"), h.PageSize, h.MaxPageSize)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	filter := models.OfferFilter{
		CreatorID: query.Get("creator_id"),
		Search:    query.Get("search"),
		Ordering:  models.OfferOrdering(query.Get("ordering")),
		Limit:     limit,
		Offset:    offset,
	}
	if filter.CreatorID != "" && !utils.IsValidID(filter.CreatorID) {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid creator_id parameter, must be a UUID")
		return
	}
	if filter.MinPrice, err = utils.ParseOptionalInt("min_price", query.Get("min_price")); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if filter.MaxDeliveryTime, err = utils.ParseOptionalInt("max_delivery_time", query.Get("max_delivery_time")); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	offers, total, err := h.Service.ListOffers(ctx, subject, filter)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch offers")
		return
	}

	next, previous := utils.PageLinks(r, limit, offset, total)
	utils.SendJSON(w, h.Logger, http.StatusOK, models.Page[models.OfferSummary]{
		Count:    total,
		Next:     next,
		Previous: previous,
		Results:  offers,
	})
}

// CreateOffer обрабатывает запросы для создания предложения.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	offer, err := h.Service.CreateOffer(ctx, subject, body)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create offer")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusCreated, offer)
}

// GetOffer обрабатывает запросы для получения предложения.
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID, ok := pathID(w, r, "id", "offer not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	offer, err := h.Service.GetOffer(ctx, subject, offerID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch offer")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, offer)
}

// UpdateOffer обрабатывает запросы для частичного изменения предложения.
func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID, ok := pathID(w, r, "id", "offer not found")
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	offer, err := h.Service.UpdateOffer(ctx, subject, offerID, body)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to update offer")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, offer)
}

// DeleteOffer обрабатывает запросы для удаления предложения.
func (h *OfferHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	offerID, ok := pathID(w, r, "id", "offer not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	if err := h.Service.DeleteOffer(ctx, subject, offerID); err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to delete offer")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetOfferDetail обрабатывает запросы для получения одного тарифа.
func (h *OfferHandler) GetOfferDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	detailID, ok := pathID(w, r, "id", "offer detail not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	detail, err := h.Service.GetOfferDetail(ctx, subject, detailID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch offer detail")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, detail)
}
