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

// ProfileHandler - структура для обработки HTTP-запросов к профилям.
type ProfileHandler struct {
	Service *services.ProfileService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewProfileHandler создаёт новый экземпляр ProfileHandler.
func NewProfileHandler(service *services.ProfileService, logger *log.Logger, timeout time.Duration) *ProfileHandler {
	return &ProfileHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// GetProfile обрабатывает запросы для получения профиля.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	profileID, ok := pathID(w, r, "id", "profile not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Service)
	if !ok {
		return
	}

	profile, err := h.Service.GetProfile(ctx, subject, profileID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch profile")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, profile)
}

// EditProfile обрабатывает запросы для изменения собственного профиля.
func (h *ProfileHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	profileID, ok := pathID(w, r, "id", "profile not found")
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Service)
	if !ok {
		return
	}

	profile, err := h.Service.EditProfile(ctx, subject, profileID, body)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to update profile")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, profile)
}

// ListProfiles возвращает обработчик списка профилей одного типа.
func (h *ProfileHandler) ListProfiles(profileType models.ProfileType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
		defer cancel()

		subject, ok := resolveSubject(ctx, w, h.Logger, h.Service)
		if !ok {
			return
		}

		profiles, err := h.Service.ListProfiles(ctx, subject, profileType)
		if err != nil {
			utils.HandleServiceError(w, h.Logger, err, "failed to fetch profiles")
			return
		}

		utils.SendJSON(w, h.Logger, http.StatusOK, profiles)
	}
}
