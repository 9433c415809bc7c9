package repository

import (
	"context"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StatsRepository - интерфейс для общей статистики площадки.
type StatsRepository interface {
	CountReviews(ctx context.Context) (int, error)
	AverageRating(ctx context.Context) (float64, error)
	CountProfiles(ctx context.Context, profileType models.ProfileType) (int, error)
	CountOffers(ctx context.Context) (int, error)
}

// PostgresStatsRepository - реализация StatsRepository для базы данных.
type PostgresStatsRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresStatsRepository создаёт новый экземпляр PostgresStatsRepository.
func NewPostgresStatsRepository(db *pgxpool.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{DB: db}
}

func (r *PostgresStatsRepository) CountReviews(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM review`).Scan(&count)
	return count, wrapError("failed to count reviews", err)
}

func (r *PostgresStatsRepository) AverageRating(ctx context.Context) (float64, error) {
	var avg float64
	err := r.DB.QueryRow(ctx, `SELECT COALESCE(AVG(rating), 0)::float8 FROM review`).Scan(&avg)
	return avg, wrapError("failed to average ratings", err)
}

func (r *PostgresStatsRepository) CountProfiles(ctx context.Context, profileType models.ProfileType) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM profile WHERE type = $1`, profileType).Scan(&count)
	return count, wrapError("failed to count profiles", err)
}

func (r *PostgresStatsRepository) CountOffers(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM offer`).Scan(&count)
	return count, wrapError("failed to count offers", err)
}
