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
	"github.com/lib/pq"
)

// OfferRepository - интерфейс для работы с предложениями, тарифами и тегами.
type OfferRepository interface {
	RunInTx(ctx context.Context, fn func(repo OfferRepository) error) error
	CreateOffer(ctx context.Context, offer *models.Offer) error
	CreateOfferDetail(ctx context.Context, detail *models.OfferDetail) error
	GetOrCreateFeatures(ctx context.Context, titles []string) ([]models.Feature, error)
	SetDetailFeatures(ctx context.Context, detailID string, featureIDs []string) error
	GetOfferByID(ctx context.Context, offerID string) (*models.Offer, error)
	LockOffer(ctx context.Context, offerID string) error
	UpdateOffer(ctx context.Context, offer *models.Offer) error
	GetDetailByType(ctx context.Context, offerID, offerType string) (*models.OfferDetail, error)
	UpdateOfferDetail(ctx context.Context, detail *models.OfferDetail) error
	ListOfferDetails(ctx context.Context, offerID string) ([]models.OfferDetail, error)
	GetOfferDetailByID(ctx context.Context, detailID string) (*models.OfferDetail, error)
	ListOffers(ctx context.Context, filter models.OfferFilter) ([]models.Offer, int, error)
	DeleteOffer(ctx context.Context, offerID string) error
}

// PostgresOfferRepository - реализация OfferRepository для базы данных.
type PostgresOfferRepository struct {
	DB *pgxpool.Pool
	q  querier
	tx beginner
}

// NewPostgresOfferRepository создаёт новый экземпляр PostgresOfferRepository.
func NewPostgresOfferRepository(db *pgxpool.Pool) *PostgresOfferRepository {
	return &PostgresOfferRepository{DB: db, q: db, tx: db}
}

const selectOffer = `
	SELECT o.id, o.profile_id, o.title, o.image, o.description, o.created_at, o.updated_at,
	       o.min_price, o.min_delivery_time, u.first_name, u.last_name, u.username
	FROM offer o
	JOIN profile p ON p.id = o.profile_id
	JOIN users u ON u.id = p.user_id`

const selectDetail = `
	SELECT d.id, d.offer_id, d.title, d.revisions, d.delivery_time_in_days, d.price, d.offer_type
	FROM offer_detail d`

var offerOrderings = map[models.OfferOrdering]string{
	models.OrderByUpdatedAt:     "o.updated_at ASC",
	models.OrderByUpdatedAtDesc: "o.updated_at DESC",
	models.OrderByMinPrice:      "o.min_price ASC",
	models.OrderByMinPriceDesc:  "o.min_price DESC",
}

// RunInTx выполняет fn в одной транзакции; внутри транзакции открывается savepoint.
func (r *PostgresOfferRepository) RunInTx(ctx context.Context, fn func(repo OfferRepository) error) error {
	return pgx.BeginFunc(ctx, r.tx, func(tx pgx.Tx) error {
		return fn(&PostgresOfferRepository{DB: r.DB, q: tx, tx: tx})
	})
}

// CreateOffer создаёт запись предложения без тарифов.
func (r *PostgresOfferRepository) CreateOffer(ctx context.Context, offer *models.Offer) error {
	if offer.ID == "" {
		offer.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	offer.CreatedAt, offer.UpdatedAt = now, now

	_, err := r.q.Exec(ctx, `
		INSERT INTO offer (id, profile_id, title, image, description, created_at, updated_at, min_price, min_delivery_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		offer.ID,
		offer.UserID,
		offer.Title,
		offer.Image,
		offer.Description,
		offer.CreatedAt,
		offer.UpdatedAt,
		offer.MinPrice,
		offer.MinDeliveryTime)
	return wrapError("failed to insert offer", err)
}

// CreateOfferDetail создаёт тариф предложения.
func (r *PostgresOfferRepository) CreateOfferDetail(ctx context.Context, detail *models.OfferDetail) error {
	if detail.ID == "" {
		detail.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO offer_detail (id, offer_id, title, revisions, delivery_time_in_days, price, offer_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		detail.ID,
		detail.OfferID,
		detail.Title,
		detail.Revisions,
		detail.DeliveryTimeInDays,
		detail.Price,
		detail.OfferType)
	return wrapError("failed to insert offer detail", err)
}

// GetOrCreateFeatures возвращает теги по названиям, создавая недостающие.
// Повторы схлопываются, порядок первого упоминания сохраняется.
func (r *PostgresOfferRepository) GetOrCreateFeatures(ctx context.Context, titles []string) ([]models.Feature, error) {
	unique := uniqueTitles(titles)
	if len(unique) == 0 {
		return []models.Feature{}, nil
	}

	ids := make([]string, len(unique))
	for i := range unique {
		ids[i] = uuid.New().String()
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO feature (id, title)
		SELECT * FROM unnest($1::uuid[], $2::text[])
		ON CONFLICT (title) DO NOTHING`,
		pq.Array(ids), pq.Array(unique))
	if err != nil {
		return nil, wrapError("failed to insert features", err)
	}

	rows, err := r.q.Query(ctx, `SELECT id, title FROM feature WHERE title = ANY($1)`, pq.Array(unique))
	if err != nil {
		return nil, wrapError("failed to select features", err)
	}
	defer rows.Close()

	byTitle := make(map[string]models.Feature, len(unique))
	for rows.Next() {
		var feature models.Feature
		if err := rows.Scan(&feature.ID, &feature.Title); err != nil {
			return nil, err
		}
		byTitle[feature.Title] = feature
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	features := make([]models.Feature, 0, len(unique))
	for _, title := range unique {
		feature, ok := byTitle[title]
		if !ok {
			return nil, fmt.Errorf("feature %q was not created", title)
		}
		features = append(features, feature)
	}
	return features, nil
}

// SetDetailFeatures заменяет набор тегов тарифа.
func (r *PostgresOfferRepository) SetDetailFeatures(ctx context.Context, detailID string, featureIDs []string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM offer_detail_feature WHERE offer_detail_id = $1`, detailID)
	if err != nil {
		return wrapError("failed to clear detail features", err)
	}
	if len(featureIDs) == 0 {
		return nil
	}

	_, err = r.q.Exec(ctx, `
		INSERT INTO offer_detail_feature (offer_detail_id, feature_id, position)
		SELECT $1::uuid, f.id, f.ord FROM unnest($2::uuid[]) WITH ORDINALITY AS f(id, ord)
		ON CONFLICT DO NOTHING`,
		detailID, pq.Array(featureIDs))
	return wrapError("failed to link detail features", err)
}

// GetOfferByID возвращает предложение вместе с тарифами и тегами.
func (r *PostgresOfferRepository) GetOfferByID(ctx context.Context, offerID string) (*models.Offer, error) {
	offer, err := scanOffer(r.q.QueryRow(ctx, selectOffer+` WHERE o.id = $1`, offerID))
	if err != nil {
		return nil, wrapError("failed to select offer", err)
	}

	details, err := r.loadDetails(ctx, []string{offer.ID})
	if err != nil {
		return nil, err
	}
	offer.Details = details[offer.ID]
	if offer.Details == nil {
		offer.Details = []models.OfferDetail{}
	}
	return offer, nil
}

// LockOffer блокирует строку предложения до конца транзакции.
func (r *PostgresOfferRepository) LockOffer(ctx context.Context, offerID string) error {
	var id string
	err := r.q.QueryRow(ctx, `SELECT id FROM offer WHERE id = $1 FOR UPDATE`, offerID).Scan(&id)
	return wrapError("failed to lock offer", err)
}

// UpdateOffer сохраняет поля предложения и минимальные значения.
func (r *PostgresOfferRepository) UpdateOffer(ctx context.Context, offer *models.Offer) error {
	err := r.q.QueryRow(ctx, `
		UPDATE offer
		SET title = $1, image = $2, description = $3, min_price = $4, min_delivery_time = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`,
		offer.Title,
		offer.Image,
		offer.Description,
		offer.MinPrice,
		offer.MinDeliveryTime,
		offer.ID).Scan(&offer.UpdatedAt)
	return wrapError("failed to update offer", err)
}

// GetDetailByType ищет тариф предложения по offer_type.
func (r *PostgresOfferRepository) GetDetailByType(ctx context.Context, offerID, offerType string) (*models.OfferDetail, error) {
	detail, err := scanDetail(r.q.QueryRow(ctx, selectDetail+` WHERE d.offer_id = $1 AND d.offer_type = $2 FOR UPDATE`, offerID, offerType))
	if err != nil {
		return nil, wrapError("failed to select offer detail", err)
	}
	return detail, nil
}

// UpdateOfferDetail сохраняет скалярные поля тарифа.
func (r *PostgresOfferRepository) UpdateOfferDetail(ctx context.Context, detail *models.OfferDetail) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE offer_detail
		SET title = $1, revisions = $2, delivery_time_in_days = $3, price = $4, offer_type = $5
		WHERE id = $6`,
		detail.Title,
		detail.Revisions,
		detail.DeliveryTimeInDays,
		detail.Price,
		detail.OfferType,
		detail.ID)
	if err != nil {
		return wrapError("failed to update offer detail", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update offer detail: %w", ErrNotFound)
	}
	return nil
}

// ListOfferDetails возвращает текущие тарифы предложения.
func (r *PostgresOfferRepository) ListOfferDetails(ctx context.Context, offerID string) ([]models.OfferDetail, error) {
	details, err := r.loadDetails(ctx, []string{offerID})
	if err != nil {
		return nil, err
	}
	return details[offerID], nil
}

// GetOfferDetailByID возвращает тариф по идентификатору.
func (r *PostgresOfferRepository) GetOfferDetailByID(ctx context.Context, detailID string) (*models.OfferDetail, error) {
	detail, err := scanDetail(r.q.QueryRow(ctx, selectDetail+` WHERE d.id = $1`, detailID))
	if err != nil {
		return nil, wrapError("failed to select offer detail", err)
	}

	features, err := r.loadFeatures(ctx, []string{detail.ID})
	if err != nil {
		return nil, err
	}
	detail.Features = featuresOrEmpty(features[detail.ID])
	return detail, nil
}

// ListOffers возвращает страницу предложений и общее количество подходящих записей.
func (r *PostgresOfferRepository) ListOffers(ctx context.Context, filter models.OfferFilter) ([]models.Offer, int, error) {
	var filters []string
	var args []interface{}
	argIndex := 1

	if filter.CreatorID != "" {
		filters = append(filters, fmt.Sprintf("o.profile_id = $%d", argIndex))
		args = append(args, filter.CreatorID)
		argIndex++
	}

	if filter.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("o.min_price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxDeliveryTime != nil {
		filters = append(filters, fmt.Sprintf("o.min_delivery_time <= $%d", argIndex))
		args = append(args, *filter.MaxDeliveryTime)
		argIndex++
	}

	if filter.Search != "" {
		filters = append(filters, fmt.Sprintf("(o.title ILIKE $%d OR o.description ILIKE $%d)", argIndex, argIndex))
		args = append(args, likePattern(filter.Search))
		argIndex++
	}

	where := ""
	if len(filters) > 0 {
		where = " WHERE " + strings.Join(filters, " AND ")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM offer o`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapError("failed to count offers", err)
	}

	orderBy, ok := offerOrderings[filter.Ordering]
	if !ok {
		orderBy = offerOrderings[models.OrderByUpdatedAt]
	}

	query := selectOffer + where + fmt.Sprintf(" ORDER BY %s, o.id LIMIT $%d OFFSET $%d", orderBy, argIndex, argIndex+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapError("failed to select offers", err)
	}
	defer rows.Close()

	offers := []models.Offer{}
	var ids []string
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, *offer)
		ids = append(ids, offer.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	details, err := r.loadDetails(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range offers {
		offers[i].Details = details[offers[i].ID]
		if offers[i].Details == nil {
			offers[i].Details = []models.OfferDetail{}
		}
	}
	return offers, total, nil
}

// DeleteOffer удаляет предложение; тарифы и связи с тегами удаляются каскадно.
func (r *PostgresOfferRepository) DeleteOffer(ctx context.Context, offerID string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM offer WHERE id = $1`, offerID)
	if err != nil {
		return wrapError("failed to delete offer", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete offer: %w", ErrNotFound)
	}
	return nil
}

func (r *PostgresOfferRepository) loadDetails(ctx context.Context, offerIDs []string) (map[string][]models.OfferDetail, error) {
	result := make(map[string][]models.OfferDetail, len(offerIDs))
	if len(offerIDs) == 0 {
		return result, nil
	}

	rows, err := r.q.Query(ctx, selectDetail+` WHERE d.offer_id = ANY($1) ORDER BY d.price, d.offer_type`, pq.Array(offerIDs))
	if err != nil {
		return nil, wrapError("failed to select offer details", err)
	}
	defer rows.Close()

	var details []*models.OfferDetail
	for rows.Next() {
		detail, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	detailIDs := make([]string, 0, len(details))
	for _, detail := range details {
		detailIDs = append(detailIDs, detail.ID)
	}
	features, err := r.loadFeatures(ctx, detailIDs)
	if err != nil {
		return nil, err
	}

	for _, detail := range details {
		detail.Features = featuresOrEmpty(features[detail.ID])
		result[detail.OfferID] = append(result[detail.OfferID], *detail)
	}
	return result, nil
}

func (r *PostgresOfferRepository) loadFeatures(ctx context.Context, detailIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(detailIDs))
	if len(detailIDs) == 0 {
		return result, nil
	}

	rows, err := r.q.Query(ctx, `
		SELECT odf.offer_detail_id, f.title
		FROM offer_detail_feature odf
		JOIN feature f ON f.id = odf.feature_id
		WHERE odf.offer_detail_id = ANY($1)
		ORDER BY odf.position`,
		pq.Array(detailIDs))
	if err != nil {
		return nil, wrapError("failed to select detail features", err)
	}
	defer rows.Close()

	for rows.Next() {
		var detailID, title string
		if err := rows.Scan(&detailID, &title); err != nil {
			return nil, err
		}
		result[detailID] = append(result[detailID], title)
	}
	return result, rows.Err()
}

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var offer models.Offer
	var user models.UserDetails
	err := row.Scan(
		&offer.ID,
		&offer.UserID,
		&offer.Title,
		&offer.Image,
		&offer.Description,
		&offer.CreatedAt,
		&offer.UpdatedAt,
		&offer.MinPrice,
		&offer.MinDeliveryTime,
		&user.FirstName,
		&user.LastName,
		&user.Username)
	if err != nil {
		return nil, err
	}
	offer.UserDetails = &user
	return &offer, nil
}

func scanDetail(row pgx.Row) (*models.OfferDetail, error) {
	var detail models.OfferDetail
	err := row.Scan(
		&detail.ID,
		&detail.OfferID,
		&detail.Title,
		&detail.Revisions,
		&detail.DeliveryTimeInDays,
		&detail.Price,
		&detail.OfferType)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func uniqueTitles(titles []string) []string {
	seen := make(map[string]bool, len(titles))
	unique := make([]string, 0, len(titles))
	for _, title := range titles {
		if seen[title] {
			continue
		}
		seen[title] = true
		unique = append(unique, title)
	}
	return unique
}

func featuresOrEmpty(features []string) []string {
	if features == nil {
		return []string{}
	}
	return features
}
