package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/permissions"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

// ProfileService реализует чтение и изменение профилей.
type ProfileService struct {
	Repo repository.ProfileRepository
}

// NewProfileService создаёт новый экземпляр ProfileService.
func NewProfileService(repo repository.ProfileRepository) *ProfileService {
	return &ProfileService{Repo: repo}
}

// ResolveSubject находит профиль пользователя из токена.
// Пользователь без профиля остаётся аутентифицированным, но с пустым Profile.
func (s *ProfileService) ResolveSubject(ctx context.Context, userID string, isStaff bool) (permissions.Subject, error) {
	subject := permissions.Subject{UserID: userID, IsStaff: isStaff}
	if userID == "" {
		return subject, nil
	}

	profile, err := s.Repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return subject, nil
		}
		return subject, fmt.Errorf("failed to resolve caller profile: %w", err)
	}
	subject.Profile = profile
	return subject, nil
}

// GetProfile возвращает профиль по идентификатору.
func (s *ProfileService) GetProfile(ctx context.Context, subject permissions.Subject, profileID string) (*models.Profile, error) {
	if err := permissions.Check(permissions.ProfileRetrieve, subject, nil); err != nil {
		return nil, err
	}
	profile, err := s.Repo.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, notFoundOr(err, "profile not found")
	}
	return profile, nil
}

// ListProfiles возвращает профили одного типа.
func (s *ProfileService) ListProfiles(ctx context.Context, subject permissions.Subject, profileType models.ProfileType) ([]models.Profile, error) {
	if err := permissions.Check(permissions.ProfileList, subject, nil); err != nil {
		return nil, err
	}
	profiles, err := s.Repo.ListProfilesByType(ctx, profileType)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// EditProfile меняет поля собственного профиля.
func (s *ProfileService) EditProfile(ctx context.Context, subject permissions.Subject, profileID string, payload []byte) (*models.Profile, error) {
	profile, err := s.Repo.GetProfileByID(ctx, profileID)
	if err != nil {
		return nil, notFoundOr(err, "profile not found")
	}
	if err := permissions.Check(permissions.ProfileUpdate, subject, profile); err != nil {
		return nil, err
	}

	updateFields, err := parseProfileFields(payload)
	if err != nil {
		return nil, err
	}

	updated, err := s.Repo.EditProfile(ctx, profileID, updateFields)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewKindError(models.KindInvalidPayload, "email is already in use")
		}
		return nil, notFoundOr(err, "profile not found")
	}
	return updated, nil
}

func parseProfileFields(payload []byte) (map[string]string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, models.NewKindError(models.KindInvalidPayload, "invalid request body")
	}
	if len(raw) == 0 {
		return nil, models.NewKindError(models.KindInvalidPayload, "no fields to update")
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	updateFields := make(map[string]string, len(raw))
	for _, key := range keys {
		if !repository.ProfileFields[key] {
			return nil, models.NewKindError(models.KindInvalidPayload, fmt.Sprintf("unsupported field: %s", key))
		}
		var value string
		if err := json.Unmarshal(raw[key], &value); err != nil {
			return nil, models.NewKindError(models.KindInvalidPayload, fmt.Sprintf("%s must be a string", key))
		}
		updateFields[key] = value
	}
	return updateFields, nil
}
