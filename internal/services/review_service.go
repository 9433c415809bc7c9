package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/permissions"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

// ReviewService реализует работу с отзывами.
type ReviewService struct {
	Repo     repository.ReviewRepository
	Profiles repository.ProfileRepository
}

// NewReviewService создаёт новый экземпляр ReviewService.
func NewReviewService(repo repository.ReviewRepository, profiles repository.ProfileRepository) *ReviewService {
	return &ReviewService{Repo: repo, Profiles: profiles}
}

// ListReviews возвращает отзывы с учётом фильтров.
func (s *ReviewService) ListReviews(ctx context.Context, subject permissions.Subject, filter models.ReviewFilter) ([]models.Review, error) {
	if err := permissions.Check(permissions.ReviewList, subject, nil); err != nil {
		return nil, err
	}
	if filter.Ordering != "" && !repository.ReviewOrderingAllowed(filter.Ordering) {
		return nil, models.NewKindError(models.KindInvalidQuery, fmt.Sprintf("unsupported ordering: %s", filter.Ordering))
	}

	reviews, err := s.Repo.ListReviews(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// CreateReview создаёт отзыв заказчика; один отзыв на пару заказчик-исполнитель.
func (s *ReviewService) CreateReview(ctx context.Context, subject permissions.Subject, payload []byte) (*models.Review, error) {
	if err := permissions.Check(permissions.ReviewCreate, subject, nil); err != nil {
		return nil, err
	}

	req, err := parseReviewRequest(payload)
	if err != nil {
		return nil, err
	}
	if req.BusinessUserID == "" {
		return nil, models.NewKindError(models.KindInvalidPayload, "business_user, rating and description are required")
	}

	business, err := s.Profiles.GetProfileByID(ctx, req.BusinessUserID)
	if err != nil {
		return nil, notFoundOr(err, "business user not found")
	}
	if !permissions.IsBusinessProfile(business) {
		return nil, models.NewKindError(models.KindNotFound, "business user not found")
	}

	exists, err := s.Repo.ReviewExists(ctx, business.ID, subject.Profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if exists {
		return nil, models.NewKindError(models.KindConflict, "you have already reviewed this business user")
	}

	review := &models.Review{
		BusinessUserID: business.ID,
		ReviewerID:     subject.Profile.ID,
		Rating:         *req.Rating,
		Description:    *req.Description,
	}
	if err := s.Repo.CreateReview(ctx, review); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewKindError(models.KindConflict, "you have already reviewed this business user")
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return review, nil
}

// GetReview возвращает отзыв по идентификатору.
func (s *ReviewService) GetReview(ctx context.Context, subject permissions.Subject, reviewID string) (*models.Review, error) {
	if err := permissions.Check(permissions.ReviewRetrieve, subject, nil); err != nil {
		return nil, err
	}

	review, err := s.Repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, notFoundOr(err, "review not found")
	}
	return review, nil
}

// UpdateReview меняет оценку и текст собственного отзыва.
func (s *ReviewService) UpdateReview(ctx context.Context, subject permissions.Subject, reviewID string, payload []byte) (*models.Review, error) {
	review, err := s.Repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, notFoundOr(err, "review not found")
	}
	if err := permissions.Check(permissions.ReviewUpdate, subject, review); err != nil {
		return nil, err
	}

	req, err := parseReviewRequest(payload)
	if err != nil {
		return nil, err
	}

	review.Rating = *req.Rating
	review.Description = *req.Description
	if err := s.Repo.UpdateReview(ctx, review); err != nil {
		return nil, notFoundOr(err, "review not found")
	}
	return review, nil
}

// DeleteReview удаляет собственный отзыв.
func (s *ReviewService) DeleteReview(ctx context.Context, subject permissions.Subject, reviewID string) error {
	review, err := s.Repo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return notFoundOr(err, "review not found")
	}
	if err := permissions.Check(permissions.ReviewDelete, subject, review); err != nil {
		return err
	}
	if err := s.Repo.DeleteReview(ctx, reviewID); err != nil {
		return notFoundOr(err, "review not found")
	}
	return nil
}

// parseReviewRequest требует rating и description и проверяет диапазон оценки.
func parseReviewRequest(payload []byte) (*models.ReviewRequest, error) {
	var req models.ReviewRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, models.NewKindError(models.KindInvalidPayload, "invalid request body")
	}
	if req.Rating == nil || req.Description == nil {
		return nil, models.NewKindError(models.KindInvalidPayload, "rating and description are required")
	}
	if *req.Rating < models.MinRating || *req.Rating > models.MaxRating {
		return nil, models.NewKindError(models.KindInvalidPayload,
			fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}
	return &req, nil
}
