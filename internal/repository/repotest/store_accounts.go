package repotest

import (
	"context"
	"fmt"
	"sort"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (s *Store) GetProfileByID(ctx context.Context, profileID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("failed to select profile: %w", repository.ErrNotFound)
	}
	return &profile, nil
}

func (s *Store) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, profile := range s.profiles {
		if profile.UserID == userID {
			return &profile, nil
		}
	}
	return nil, fmt.Errorf("failed to select profile: %w", repository.ErrNotFound)
}

func (s *Store) ListProfilesByType(ctx context.Context, profileType models.ProfileType) ([]models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles := []models.Profile{}
	for _, profile := range s.profiles {
		if profile.Type == profileType {
			profiles = append(profiles, profile)
		}
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].CreatedAt.Before(profiles[j].CreatedAt) })
	return profiles, nil
}

func (s *Store) EditProfile(ctx context.Context, profileID string, updateFields map[string]string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[profileID]
	if !ok {
		return nil, fmt.Errorf("failed to update profile: %w", repository.ErrNotFound)
	}
	targets := map[string]*string{
		"first_name":    &profile.FirstName,
		"last_name":     &profile.LastName,
		"email":         &profile.Email,
		"file":          &profile.File,
		"location":      &profile.Location,
		"tel":           &profile.Tel,
		"description":   &profile.Description,
		"working_hours": &profile.WorkingHours,
	}
	for field, value := range updateFields {
		target, ok := targets[field]
		if !ok {
			return nil, fmt.Errorf("field %s cannot be updated", field)
		}
		*target = value
	}
	s.profiles[profileID] = profile
	return &profile, nil
}

func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := s.now()
	stored := *order
	stored.CreatedAt, stored.UpdatedAt = now, now
	s.orders[order.ID] = stored
	return s.assembleOrder(stored), nil
}

func (s *Store) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("failed to select order: %w", repository.ErrNotFound)
	}
	return s.assembleOrder(order), nil
}

func (s *Store) ListOrders(ctx context.Context, profileID string) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listOrders(func(order models.Order) bool { return order.HasParty(profileID) }), nil
}

func (s *Store) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.listOrders(func(models.Order) bool { return true }), nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("failed to update order status: %w", repository.ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = s.now()
	s.orders[orderID] = order
	return s.assembleOrder(order), nil
}

func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[orderID]; !ok {
		return fmt.Errorf("failed to delete order: %w", repository.ErrNotFound)
	}
	delete(s.orders, orderID)
	return nil
}

func (s *Store) CountOrders(ctx context.Context, businessProfileID string, status models.OrderStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, order := range s.orders {
		if order.BusinessUserID == businessProfileID && order.Status == status {
			count++
		}
	}
	return count, nil
}

func (s *Store) listOrders(match func(models.Order) bool) []models.Order {
	orders := []models.Order{}
	for _, order := range s.orders {
		if match(order) {
			orders = append(orders, *s.assembleOrder(order))
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders
}

// assembleOrder подставляет поля тарифа, как это делает LEFT JOIN в PostgreSQL-реализации.
func (s *Store) assembleOrder(order models.Order) *models.Order {
	order.Features = []string{}
	if order.OfferDetailID != nil {
		if detail, ok := s.details[*order.OfferDetailID]; ok {
			detail = s.assembleDetail(detail)
			order.Title = detail.Title
			order.Revisions = detail.Revisions
			order.DeliveryTimeInDays = detail.DeliveryTimeInDays
			order.Price = detail.Price
			order.OfferType = detail.OfferType
			order.Features = detail.Features
		}
	}
	return &order
}

func (s *Store) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reviews := []models.Review{}
	for _, review := range s.reviews {
		if filter.BusinessUserID != "" && review.BusinessUserID != filter.BusinessUserID {
			continue
		}
		if filter.ReviewerID != "" && review.ReviewerID != filter.ReviewerID {
			continue
		}
		reviews = append(reviews, review)
	}

	sort.Slice(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		switch filter.Ordering {
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "-updated_at":
			return a.UpdatedAt.After(b.UpdatedAt)
		case "rating":
			if a.Rating != b.Rating {
				return a.Rating < b.Rating
			}
		case "-rating":
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return reviews, nil
}

func (s *Store) ReviewExists(ctx context.Context, businessProfileID, reviewerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, review := range s.reviews {
		if review.BusinessUserID == businessProfileID && review.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.reviews {
		if existing.BusinessUserID == review.BusinessUserID && existing.ReviewerID == review.ReviewerID {
			return fmt.Errorf("failed to insert review: %w", repository.ErrConflict)
		}
	}
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	now := s.now()
	review.CreatedAt, review.UpdatedAt = now, now
	s.reviews[review.ID] = *review
	return nil
}

func (s *Store) GetReviewByID(ctx context.Context, reviewID string) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	review, ok := s.reviews[reviewID]
	if !ok {
		return nil, fmt.Errorf("failed to select review: %w", repository.ErrNotFound)
	}
	return &review, nil
}

func (s *Store) UpdateReview(ctx context.Context, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.reviews[review.ID]
	if !ok {
		return fmt.Errorf("failed to update review: %w", repository.ErrNotFound)
	}
	stored.Rating = review.Rating
	stored.Description = review.Description
	stored.UpdatedAt = s.now()
	s.reviews[review.ID] = stored
	review.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) DeleteReview(ctx context.Context, reviewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reviews[reviewID]; !ok {
		return fmt.Errorf("failed to delete review: %w", repository.ErrNotFound)
	}
	delete(s.reviews, reviewID)
	return nil
}

func (s *Store) CountReviews(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reviews), nil
}

func (s *Store) AverageRating(ctx context.Context) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reviews) == 0 {
		return 0, nil
	}
	total := 0
	for _, review := range s.reviews {
		total += review.Rating
	}
	return float64(total) / float64(len(s.reviews)), nil
}

func (s *Store) CountProfiles(ctx context.Context, profileType models.ProfileType) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, profile := range s.profiles {
		if profile.Type == profileType {
			count++
		}
	}
	return count, nil
}

func (s *Store) CountOffers(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.offers), nil
}

func (s *Store) SaveHistoryStatus(ctx context.Context, doc *models.HistoryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.HistoryErr != nil {
		return s.HistoryErr
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}
	s.history = append(s.history, *doc)
	return nil
}

func (s *Store) ListHistory(ctx context.Context, relatedType, relatedID string) ([]models.HistoryStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := []models.HistoryStatus{}
	for _, doc := range s.history {
		if doc.RelatedType == relatedType && doc.RelatedID == relatedID {
			history = append(history, doc)
		}
	}
	return history, nil
}
