package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/permissions"
	"github.com/senyabanana/marketplace-service/internal/repository"
)

// OfferDetailCount - количество тарифов у каждого предложения.
const OfferDetailCount = 3

// OfferService реализует создание, изменение и выборку предложений.
type OfferService struct {
	Repo repository.OfferRepository
	// RequireListFilter запрещает список предложений без единого фильтра.
	RequireListFilter bool
}

// NewOfferService создаёт новый экземпляр OfferService.
func NewOfferService(repo repository.OfferRepository, requireListFilter bool) *OfferService {
	return &OfferService{Repo: repo, RequireListFilter: requireListFilter}
}

// CreateOffer создаёт предложение с тремя тарифами в одной транзакции.
// Права проверяются до разбора тела, так что не-исполнитель всегда получает Forbidden.
func (s *OfferService) CreateOffer(ctx context.Context, subject permissions.Subject, payload []byte) (*models.Offer, error) {
	if err := permissions.Check(permissions.OfferCreate, subject, nil); err != nil {
		return nil, err
	}

	req, detailReqs, err := parseOfferRequest(payload)
	if err != nil {
		return nil, err
	}

	details := make([]models.OfferDetail, 0, len(detailReqs))
	for _, d := range detailReqs {
		details = append(details, models.OfferDetail{
			Title:              d.Title,
			Revisions:          d.Revisions,
			DeliveryTimeInDays: *d.DeliveryTimeInDays,
			Price:              *d.Price,
			Features:           d.Features,
			OfferType:          d.OfferType,
		})
	}
	minPrice, minDeliveryTime, _ := minimums(details)

	offer := &models.Offer{
		UserID:          subject.Profile.ID,
		Title:           req.Title,
		Image:           req.Image,
		Description:     req.Description,
		MinPrice:        minPrice,
		MinDeliveryTime: minDeliveryTime,
	}

	err = s.Repo.RunInTx(ctx, func(repo repository.OfferRepository) error {
		if err := repo.CreateOffer(ctx, offer); err != nil {
			return err
		}
		for i := range details {
			details[i].OfferID = offer.ID
			if err := repo.CreateOfferDetail(ctx, &details[i]); err != nil {
				return err
			}
			if err := linkFeatures(ctx, repo, details[i].ID, details[i].Features); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, models.NewKindError(models.KindInvalidPayload, "offer_type must be unique within an offer")
		}
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}

	created, err := s.Repo.GetOfferByID(ctx, offer.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created offer: %w", err)
	}
	return created, nil
}

// UpdateOffer частично меняет предложение и его тарифы.
// Тело проверяется целиком до первой записи; все изменения применяются в одной транзакции.
func (s *OfferService) UpdateOffer(ctx context.Context, subject permissions.Subject, offerID string, payload []byte) (*models.Offer, error) {
	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}
	if err := permissions.Check(permissions.OfferUpdate, subject, offer); err != nil {
		return nil, err
	}

	patch, err := ParseOfferPatch(payload)
	if err != nil {
		return nil, err
	}

	err = s.Repo.RunInTx(ctx, func(repo repository.OfferRepository) error {
		if err := repo.LockOffer(ctx, offerID); err != nil {
			return err
		}
		current, err := repo.GetOfferByID(ctx, offerID)
		if err != nil {
			return err
		}
		applyOfferPatch(current, patch)

		for _, detailPatch := range patch.Details {
			if err := updateDetail(ctx, repo, offerID, detailPatch); err != nil {
				return err
			}
		}

		details, err := repo.ListOfferDetails(ctx, offerID)
		if err != nil {
			return err
		}
		if minPrice, minDeliveryTime, ok := minimums(details); ok {
			current.MinPrice = minPrice
			current.MinDeliveryTime = minDeliveryTime
		}
		return repo.UpdateOffer(ctx, current)
	})
	if err != nil {
		var errorResponse *models.ErrorResponse
		if errors.As(err, &errorResponse) {
			return nil, err
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewKindError(models.KindNotFound, "offer not found")
		}
		return nil, fmt.Errorf("failed to update offer: %w", err)
	}

	updated, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load updated offer: %w", err)
	}
	return updated, nil
}

// GetOffer возвращает предложение со всеми тарифами.
func (s *OfferService) GetOffer(ctx context.Context, subject permissions.Subject, offerID string) (*models.Offer, error) {
	if err := permissions.Check(permissions.OfferRetrieve, subject, nil); err != nil {
		return nil, err
	}
	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}
	return offer, nil
}

// GetOfferDetail возвращает один тариф.
func (s *OfferService) GetOfferDetail(ctx context.Context, subject permissions.Subject, detailID string) (*models.OfferDetail, error) {
	if err := permissions.Check(permissions.OfferDetailRetrieve, subject, nil); err != nil {
		return nil, err
	}
	detail, err := s.Repo.GetOfferDetailByID(ctx, detailID)
	if err != nil {
		return nil, notFoundOr(err, "offer detail not found")
	}
	return detail, nil
}

// ListOffers возвращает страницу предложений и общее число подходящих записей.
func (s *OfferService) ListOffers(ctx context.Context, subject permissions.Subject, filter models.OfferFilter) ([]models.OfferSummary, int, error) {
	if err := permissions.Check(permissions.OfferList, subject, nil); err != nil {
		return nil, 0, err
	}
	if filter.Ordering != "" && !validOrdering(filter.Ordering) {
		return nil, 0, models.NewKindError(models.KindInvalidQuery, fmt.Sprintf("unsupported ordering: %s", filter.Ordering))
	}
	if s.RequireListFilter && !hasListFilter(filter) {
		return nil, 0, models.NewKindError(models.KindInvalidQuery, "at least one valid request parameter must be passed")
	}
	if filter.Ordering == "" {
		filter.Ordering = models.OrderByUpdatedAt
	}

	offers, total, err := s.Repo.ListOffers(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list offers: %w", err)
	}

	summaries := make([]models.OfferSummary, 0, len(offers))
	for i := range offers {
		summaries = append(summaries, offers[i].Summary())
	}
	return summaries, total, nil
}

// DeleteOffer удаляет предложение владельца.
func (s *OfferService) DeleteOffer(ctx context.Context, subject permissions.Subject, offerID string) error {
	offer, err := s.Repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return notFoundOr(err, "offer not found")
	}
	if err := permissions.Check(permissions.OfferDelete, subject, offer); err != nil {
		return err
	}
	if err := s.Repo.DeleteOffer(ctx, offerID); err != nil {
		return notFoundOr(err, "offer not found")
	}
	return nil
}

func updateDetail(ctx context.Context, repo repository.OfferRepository, offerID string, patch models.OfferDetailPatch) error {
	if patch.OfferType == nil {
		return models.NewKindError(models.KindDetailNotFound, "detail was not found")
	}

	detail, err := repo.GetDetailByType(ctx, offerID, *patch.OfferType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewKindError(models.KindDetailNotFound, fmt.Sprintf("detail with offer_type %q was not found", *patch.OfferType))
		}
		return err
	}

	applyDetailPatch(detail, patch)
	if err := repo.UpdateOfferDetail(ctx, detail); err != nil {
		return err
	}

	if patch.ReplaceFeatures {
		return linkFeatures(ctx, repo, detail.ID, patch.Features)
	}
	return nil
}

// linkFeatures находит или создаёт теги по названиям и заменяет ими набор тегов тарифа.
func linkFeatures(ctx context.Context, repo repository.OfferRepository, detailID string, titles []string) error {
	features, err := repo.GetOrCreateFeatures(ctx, titles)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(features))
	for _, feature := range features {
		ids = append(ids, feature.ID)
	}
	return repo.SetDetailFeatures(ctx, detailID, ids)
}

func applyOfferPatch(offer *models.Offer, patch *models.OfferPatch) {
	if patch.Title != nil {
		offer.Title = *patch.Title
	}
	if patch.Image != nil {
		offer.Image = *patch.Image
	}
	if patch.Description != nil {
		offer.Description = *patch.Description
	}
}

func applyDetailPatch(detail *models.OfferDetail, patch models.OfferDetailPatch) {
	if patch.Title != nil {
		detail.Title = *patch.Title
	}
	if patch.Revisions != nil {
		detail.Revisions = *patch.Revisions
	}
	if patch.DeliveryTimeInDays != nil {
		detail.DeliveryTimeInDays = *patch.DeliveryTimeInDays
	}
	if patch.Price != nil {
		detail.Price = *patch.Price
	}
	if patch.OfferType != nil {
		detail.OfferType = *patch.OfferType
	}
}

// minimums возвращает минимальные цену и срок среди тарифов; ok=false для пустого набора.
func minimums(details []models.OfferDetail) (minPrice, minDeliveryTime int, ok bool) {
	if len(details) == 0 {
		return 0, 0, false
	}
	minPrice, minDeliveryTime = details[0].Price, details[0].DeliveryTimeInDays
	for _, detail := range details[1:] {
		minPrice = min(minPrice, detail.Price)
		minDeliveryTime = min(minDeliveryTime, detail.DeliveryTimeInDays)
	}
	return minPrice, minDeliveryTime, true
}

func validOrdering(ordering models.OfferOrdering) bool {
	switch ordering {
	case models.OrderByUpdatedAt, models.OrderByUpdatedAtDesc, models.OrderByMinPrice, models.OrderByMinPriceDesc:
		return true
	}
	return false
}

func hasListFilter(filter models.OfferFilter) bool {
	return filter.CreatorID != "" ||
		filter.MinPrice != nil ||
		filter.MaxDeliveryTime != nil ||
		filter.Search != "" ||
		filter.Ordering != ""
}

// notFoundOr превращает ErrNotFound репозитория в ошибку NotFound с сообщением message.
func notFoundOr(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewKindError(models.KindNotFound, message)
	}
	return err
}
