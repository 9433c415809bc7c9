// Package repotest содержит хранилище в памяти, реализующее интерфейсы репозиториев, для тестов.
package repotest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/repository/mongodb"

	"github.com/google/uuid"
)

var (
	_ repository.OfferRepository   = (*Store)(nil)
	_ repository.ProfileRepository = (*Store)(nil)
	_ repository.OrderRepository   = (*Store)(nil)
	_ repository.ReviewRepository  = (*Store)(nil)
	_ repository.StatsRepository   = (*Store)(nil)
	_ mongodb.HistoryRepository    = (*Store)(nil)
)

// Store хранит все сущности в памяти. Нулевое значение не готово к работе, используйте NewStore.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	profiles       map[string]models.Profile
	offers         map[string]models.Offer
	details        map[string]models.OfferDetail
	features       map[string]models.Feature
	featureByTitle map[string]string
	detailFeatures map[string][]string
	orders         map[string]models.Order
	reviews        map[string]models.Review
	history        []models.HistoryStatus

	// HistoryErr, если задан, возвращается из SaveHistoryStatus.
	HistoryErr error

	clock time.Time
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		profiles:       map[string]models.Profile{},
		offers:         map[string]models.Offer{},
		details:        map[string]models.OfferDetail{},
		features:       map[string]models.Feature{},
		featureByTitle: map[string]string{},
		detailFeatures: map[string][]string{},
		orders:         map[string]models.Order{},
		reviews:        map[string]models.Review{},
		clock:          time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// now возвращает монотонно растущее время, чтобы сортировка по updated_at была детерминированной.
func (s *Store) now() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// AddProfile добавляет профиль и возвращает его копию с заполненными идентификаторами.
func (s *Store) AddProfile(profile models.Profile) models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	if profile.UserID == "" {
		profile.UserID = uuid.New().String()
	}
	if profile.Username == "" {
		profile.Username = "user-" + profile.ID[:8]
	}
	profile.CreatedAt = s.now()
	s.profiles[profile.ID] = profile
	return profile
}

// FeatureCount возвращает число тегов в хранилище.
func (s *Store) FeatureCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.features)
}

// DetailCount возвращает число тарифов в хранилище.
func (s *Store) DetailCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.details)
}

type snapshot struct {
	offers         map[string]models.Offer
	details        map[string]models.OfferDetail
	features       map[string]models.Feature
	featureByTitle map[string]string
	detailFeatures map[string][]string
	orders         map[string]models.Order
}

func (s *Store) takeSnapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		offers:         copyMap(s.offers),
		details:        copyMap(s.details),
		features:       copyMap(s.features),
		featureByTitle: copyMap(s.featureByTitle),
		detailFeatures: make(map[string][]string, len(s.detailFeatures)),
		orders:         copyMap(s.orders),
	}
	for id, ids := range s.detailFeatures {
		snap.detailFeatures[id] = append([]string(nil), ids...)
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offers = snap.offers
	s.details = snap.details
	s.features = snap.features
	s.featureByTitle = snap.featureByTitle
	s.detailFeatures = snap.detailFeatures
	s.orders = snap.orders
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RunInTx выполняет fn; при ошибке все изменения предложений откатываются.
func (s *Store) RunInTx(ctx context.Context, fn func(repo repository.OfferRepository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.takeSnapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) CreateOffer(ctx context.Context, offer *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	now := s.now()
	offer.CreatedAt, offer.UpdatedAt = now, now

	stored := *offer
	stored.Details = nil
	stored.UserDetails = nil
	s.offers[offer.ID] = stored
	return nil
}

func (s *Store) CreateOfferDetail(ctx context.Context, detail *models.OfferDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.offers[detail.OfferID]; !ok {
		return fmt.Errorf("failed to insert offer detail: unknown offer %s", detail.OfferID)
	}
	for _, existing := range s.details {
		if existing.OfferID == detail.OfferID && existing.OfferType == detail.OfferType {
			return fmt.Errorf("failed to insert offer detail: %w", repository.ErrConflict)
		}
	}
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	stored := *detail
	stored.Features = nil
	s.details[detail.ID] = stored
	return nil
}

func (s *Store) GetOrCreateFeatures(ctx context.Context, titles []string) ([]models.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	features := []models.Feature{}
	seen := map[string]bool{}
	for _, title := range titles {
		if seen[title] {
			continue
		}
		seen[title] = true

		id, ok := s.featureByTitle[title]
		if !ok {
			id = uuid.New().String()
			s.features[id] = models.Feature{ID: id, Title: title}
			s.featureByTitle[title] = id
		}
		features = append(features, s.features[id])
	}
	return features, nil
}

func (s *Store) SetDetailFeatures(ctx context.Context, detailID string, featureIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.details[detailID]; !ok {
		return fmt.Errorf("failed to link features: %w", repository.ErrNotFound)
	}
	s.detailFeatures[detailID] = append([]string(nil), featureIDs...)
	return nil
}

func (s *Store) GetOfferByID(ctx context.Context, offerID string) (*models.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offer, ok := s.offers[offerID]
	if !ok {
		return nil, fmt.Errorf("failed to select offer: %w", repository.ErrNotFound)
	}
	return s.assembleOffer(offer), nil
}

func (s *Store) LockOffer(ctx context.Context, offerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.offers[offerID]; !ok {
		return fmt.Errorf("failed to lock offer: %w", repository.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateOffer(ctx context.Context, offer *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.offers[offer.ID]
	if !ok {
		return fmt.Errorf("failed to update offer: %w", repository.ErrNotFound)
	}
	stored.Title = offer.Title
	stored.Image = offer.Image
	stored.Description = offer.Description
	stored.MinPrice = offer.MinPrice
	stored.MinDeliveryTime = offer.MinDeliveryTime
	stored.UpdatedAt = s.now()
	s.offers[offer.ID] = stored
	offer.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Store) GetDetailByType(ctx context.Context, offerID, offerType string) (*models.OfferDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, detail := range s.details {
		if detail.OfferID == offerID && detail.OfferType == offerType {
			d := s.assembleDetail(detail)
			return &d, nil
		}
	}
	return nil, fmt.Errorf("failed to select offer detail: %w", repository.ErrNotFound)
}

func (s *Store) UpdateOfferDetail(ctx context.Context, detail *models.OfferDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.details[detail.ID]
	if !ok {
		return fmt.Errorf("failed to update offer detail: %w", repository.ErrNotFound)
	}
	stored.Title = detail.Title
	stored.Revisions = detail.Revisions
	stored.DeliveryTimeInDays = detail.DeliveryTimeInDays
	stored.Price = detail.Price
	stored.OfferType = detail.OfferType
	s.details[detail.ID] = stored
	return nil
}

func (s *Store) ListOfferDetails(ctx context.Context, offerID string) ([]models.OfferDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offerDetails(offerID), nil
}

func (s *Store) GetOfferDetailByID(ctx context.Context, detailID string) (*models.OfferDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	detail, ok := s.details[detailID]
	if !ok {
		return nil, fmt.Errorf("failed to select offer detail: %w", repository.ErrNotFound)
	}
	d := s.assembleDetail(detail)
	return &d, nil
}

func (s *Store) ListOffers(ctx context.Context, filter models.OfferFilter) ([]models.Offer, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.Offer
	for _, offer := range s.offers {
		if filter.CreatorID != "" && offer.UserID != filter.CreatorID {
			continue
		}
		if filter.MinPrice != nil && offer.MinPrice < *filter.MinPrice {
			continue
		}
		if filter.MaxDeliveryTime != nil && offer.MinDeliveryTime > *filter.MaxDeliveryTime {
			continue
		}
		if filter.Search != "" && !containsFold(offer.Title, filter.Search) && !containsFold(offer.Description, filter.Search) {
			continue
		}
		matched = append(matched, offer)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch filter.Ordering {
		case models.OrderByUpdatedAtDesc:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		case models.OrderByMinPrice:
			if a.MinPrice != b.MinPrice {
				return a.MinPrice < b.MinPrice
			}
		case models.OrderByMinPriceDesc:
			if a.MinPrice != b.MinPrice {
				return a.MinPrice > b.MinPrice
			}
		default:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.Before(b.UpdatedAt)
			}
		}
		return a.ID < b.ID
	})

	total := len(matched)
	start := min(filter.Offset, total)
	end := total
	if filter.Limit > 0 {
		end = min(start+filter.Limit, total)
	}

	offers := []models.Offer{}
	for _, offer := range matched[start:end] {
		offers = append(offers, *s.assembleOffer(offer))
	}
	return offers, total, nil
}

func (s *Store) DeleteOffer(ctx context.Context, offerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.offers[offerID]; !ok {
		return fmt.Errorf("failed to delete offer: %w", repository.ErrNotFound)
	}
	delete(s.offers, offerID)
	for id, detail := range s.details {
		if detail.OfferID != offerID {
			continue
		}
		delete(s.details, id)
		delete(s.detailFeatures, id)
		for orderID, order := range s.orders {
			if order.OfferDetailID != nil && *order.OfferDetailID == id {
				delete(s.orders, orderID)
			}
		}
	}
	return nil
}

func (s *Store) assembleOffer(offer models.Offer) *models.Offer {
	if profile, ok := s.profiles[offer.UserID]; ok {
		details := profile.Details()
		offer.UserDetails = &details
	}
	offer.Details = s.offerDetails(offer.ID)
	return &offer
}

// offerDetails возвращает тарифы в порядке цены, как и PostgreSQL-реализация.
func (s *Store) offerDetails(offerID string) []models.OfferDetail {
	details := []models.OfferDetail{}
	for _, detail := range s.details {
		if detail.OfferID == offerID {
			details = append(details, s.assembleDetail(detail))
		}
	}
	sort.Slice(details, func(i, j int) bool {
		if details[i].Price != details[j].Price {
			return details[i].Price < details[j].Price
		}
		return details[i].OfferType < details[j].OfferType
	})
	return details
}

func (s *Store) assembleDetail(detail models.OfferDetail) models.OfferDetail {
	detail.Features = []string{}
	for _, id := range s.detailFeatures[detail.ID] {
		detail.Features = append(detail.Features, s.features[id].Title)
	}
	return detail
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
