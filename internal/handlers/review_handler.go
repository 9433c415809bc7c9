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

// ReviewHandler - структура для обработки HTTP-запросов к отзывам.
type ReviewHandler struct {
	Service  *services.ReviewService
	Subjects SubjectResolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewReviewHandler создаёт новый экземпляр ReviewHandler.
func NewReviewHandler(service *services.ReviewService, subjects SubjectResolver, logger *log.Logger, timeout time.Duration) *ReviewHandler {
	return &ReviewHandler{
		Service:  service,
		Subjects: subjects,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// ListReviews обрабатывает запросы для получения списка отзывов.
func (h *ReviewHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	query := r.URL.Query()
	filter := models.ReviewFilter{
		BusinessUserID: query.Get("business_user_id"),
		ReviewerID:     query.Get("reviewer_id"),
		Ordering:       query.Get("ordering"),
	}
	for name, id := range map[string]string{"business_user_id": filter.BusinessUserID, "reviewer_id": filter.ReviewerID} {
		if id != "" && !utils.IsValidID(id) {
			utils.SendErrorResponse(w, http.StatusBadRequest, "invalid "+name+" parameter, must be a UUID")
			return
		}
	}

	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	reviews, err := h.Service.ListReviews(ctx, subject, filter)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch reviews")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, reviews)
}

// CreateReview обрабатывает запросы для создания отзыва.
func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
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

	review, err := h.Service.CreateReview(ctx, subject, body)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create review")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusCreated, review)
}

// GetReview обрабатывает запросы для получения отзыва.
func (h *ReviewHandler) GetReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	reviewID, ok := pathID(w, r, "id", "review not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	review, err := h.Service.GetReview(ctx, subject, reviewID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch review")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, review)
}

// UpdateReview обрабатывает запросы для изменения отзыва.
func (h *ReviewHandler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	reviewID, ok := pathID(w, r, "id", "review not found")
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

	review, err := h.Service.UpdateReview(ctx, subject, reviewID, body)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to update review")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, review)
}

// DeleteReview обрабатывает запросы для удаления отзыва.
func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	reviewID, ok := pathID(w, r, "id", "review not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	if err := h.Service.DeleteReview(ctx, subject, reviewID); err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to delete review")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
