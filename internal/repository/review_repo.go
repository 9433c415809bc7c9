package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewRepository - интерфейс для работы с отзывами.
type ReviewRepository interface {
	ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error)
	ReviewExists(ctx context.Context, businessProfileID, reviewerID string) (bool, error)
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, reviewID string) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, reviewID string) error
}

// PostgresReviewRepository - реализация ReviewRepository для базы данных.
type PostgresReviewRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresReviewRepository создаёт новый экземпляр PostgresReviewRepository.
func NewPostgresReviewRepository(db *pgxpool.Pool) *PostgresReviewRepository {
	return &PostgresReviewRepository{DB: db}
}

const selectReview = `
	SELECT id, business_profile_id, reviewer_profile_id, rating, description, created_at, updated_at
	FROM review`

var reviewOrderings = map[string]string{
	"updated_at":  "updated_at ASC",
	"-updated_at": "updated_at DESC",
	"rating":      "rating ASC",
	"-rating":     "rating DESC",
}

// ReviewOrderingAllowed сообщает, поддерживается ли значение ordering.
func ReviewOrderingAllowed(ordering string) bool {
	_, ok := reviewOrderings[ordering]
	return ok
}

// ListReviews возвращает отзывы с учётом фильтров.
func (r *PostgresReviewRepository) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.Review, error) {
	var filters []string
	var args []interface{}
	argIndex := 1

	if filter.BusinessUserID != "" {
		filters = append(filters, fmt.Sprintf("business_profile_id = $%d", argIndex))
		args = append(args, filter.BusinessUserID)
		argIndex++
	}

	if filter.ReviewerID != "" {
		filters = append(filters, fmt.Sprintf("reviewer_profile_id = $%d", argIndex))
		args = append(args, filter.ReviewerID)
		argIndex++
	}

	query := selectReview
	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	orderBy, ok := reviewOrderings[filter.Ordering]
	if !ok {
		orderBy = "created_at ASC"
	}
	query += " ORDER BY " + orderBy + ", id"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError("failed to select reviews", err)
	}
	defer rows.Close()

	reviews := []models.Review{}
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}
	return reviews, rows.Err()
}

// ReviewExists проверяет, оставлял ли заказчик отзыв исполнителю.
func (r *PostgresReviewRepository) ReviewExists(ctx context.Context, businessProfileID, reviewerID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM review WHERE business_profile_id = $1 AND reviewer_profile_id = $2)`,
		businessProfileID, reviewerID).Scan(&exists)
	return exists, wrapError("failed to check review", err)
}

// CreateReview создаёт отзыв.
func (r *PostgresReviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	review.CreatedAt, review.UpdatedAt = now, now

	_, err := r.DB.Exec(ctx, `
		INSERT INTO review (id, business_profile_id, reviewer_profile_id, rating, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		review.ID,
		review.BusinessUserID,
		review.ReviewerID,
		review.Rating,
		review.Description,
		review.CreatedAt,
		review.UpdatedAt)
	return wrapError("failed to insert review", err)
}

// GetReviewByID возвращает отзыв по идентификатору.
func (r *PostgresReviewRepository) GetReviewByID(ctx context.Context, reviewID string) (*models.Review, error) {
	review, err := scanReview(r.DB.QueryRow(ctx, selectReview+` WHERE id = $1`, reviewID))
	if err != nil {
		return nil, wrapError("failed to select review", err)
	}
	return review, nil
}

// UpdateReview сохраняет оценку и текст отзыва.
func (r *PostgresReviewRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	err := r.DB.QueryRow(ctx, `
		UPDATE review SET rating = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at`,
		review.Rating, review.Description, review.ID).Scan(&review.UpdatedAt)
	return wrapError("failed to update review", err)
}

// DeleteReview удаляет отзыв.
func (r *PostgresReviewRepository) DeleteReview(ctx context.Context, reviewID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM review WHERE id = $1`, reviewID)
	if err != nil {
		return wrapError("failed to delete review", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete review: %w", ErrNotFound)
	}
	return nil
}

func scanReview(row pgx.Row) (*models.Review, error) {
	var review models.Review
	err := row.Scan(
		&review.ID,
		&review.BusinessUserID,
		&review.ReviewerID,
		&review.Rating,
		&review.Description,
		&review.CreatedAt,
		&review.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &review, nil
}
