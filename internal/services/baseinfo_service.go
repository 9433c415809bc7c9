package services

import (
	"context"
	"fmt"
	"math"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/permissions"
	"github.com/senyabanana/marketplace-service/internal/repository"

	"golang.org/x/sync/errgroup"
)

// BaseInfoService собирает общую статистику площадки.
type BaseInfoService struct {
	Repo repository.StatsRepository
}

// NewBaseInfoService создаёт новый экземпляр BaseInfoService.
func NewBaseInfoService(repo repository.StatsRepository) *BaseInfoService {
	return &BaseInfoService{Repo: repo}
}

// GetBaseInfo параллельно считает отзывы, рейтинг, исполнителей и предложения.
func (s *BaseInfoService) GetBaseInfo(ctx context.Context, subject permissions.Subject) (*models.BaseInfo, error) {
	if err := permissions.Check(permissions.BaseInfoRetrieve, subject, nil); err != nil {
		return nil, err
	}

	var info models.BaseInfo
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.Repo.CountReviews(gctx)
		info.ReviewCount = count
		return err
	})
	g.Go(func() error {
		avg, err := s.Repo.AverageRating(gctx)
		info.AverageRating = math.Round(avg*10) / 10
		return err
	})
	g.Go(func() error {
		count, err := s.Repo.CountProfiles(gctx, models.BusinessProfile)
		info.BusinessProfileCount = count
		return err
	})
	g.Go(func() error {
		count, err := s.Repo.CountOffers(gctx)
		info.OfferCount = count
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to collect base info: %w", err)
	}
	return &info, nil
}
