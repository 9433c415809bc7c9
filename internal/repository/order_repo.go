package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OrderRepository - интерфейс для работы с заказами.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, profileID string) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) error
	CountOrders(ctx context.Context, businessProfileID string, status models.OrderStatus) (int, error)
}

// PostgresOrderRepository - реализация OrderRepository для базы данных.
type PostgresOrderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresOrderRepository создаёт новый экземпляр PostgresOrderRepository.
func NewPostgresOrderRepository(db *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

// Поля тарифа читаются из связанной записи; если тариф удалён, поля пустые.
const selectOrder = `
	SELECT o.id, o.customer_profile_id, o.business_profile_id, o.offer_detail_id,
	       COALESCE(d.title, ''), COALESCE(d.revisions, 0), COALESCE(d.delivery_time_in_days, 0),
	       COALESCE(d.price, 0), COALESCE(d.offer_type, ''),
	       ARRAY(
	           SELECT f.title FROM offer_detail_feature odf
	           JOIN feature f ON f.id = odf.feature_id
	           WHERE odf.offer_detail_id = o.offer_detail_id
	           ORDER BY odf.position
	       ),
	       o.status, o.created_at, o.updated_at
	FROM orders o
	LEFT JOIN offer_detail d ON d.id = o.offer_detail_id`

// CreateOrder создаёт заказ и возвращает его вместе с полями тарифа.
func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO orders (id, customer_profile_id, business_profile_id, offer_detail_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID,
		order.CustomerUserID,
		order.BusinessUserID,
		order.OfferDetailID,
		order.Status,
		now,
		now)
	if err != nil {
		return nil, wrapError("failed to insert order", err)
	}
	return r.GetOrderByID(ctx, order.ID)
}

// GetOrderByID возвращает заказ по идентификатору.
func (r *PostgresOrderRepository) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := scanOrder(r.DB.QueryRow(ctx, selectOrder+` WHERE o.id = $1`, orderID))
	if err != nil {
		return nil, wrapError("failed to select order", err)
	}
	return order, nil
}

// ListOrders возвращает заказы, где профиль - заказчик или исполнитель.
func (r *PostgresOrderRepository) ListOrders(ctx context.Context, profileID string) ([]models.Order, error) {
	return r.queryOrders(ctx, selectOrder+`
		WHERE o.customer_profile_id = $1 OR o.business_profile_id = $1
		ORDER BY o.created_at DESC`, profileID)
}

// ListAllOrders возвращает все заказы.
func (r *PostgresOrderRepository) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	return r.queryOrders(ctx, selectOrder+` ORDER BY o.created_at DESC`)
}

// UpdateOrderStatus меняет статус заказа.
func (r *PostgresOrderRepository) UpdateOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	tag, err := r.DB.Exec(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	if err != nil {
		return nil, wrapError("failed to update order status", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("failed to update order status: %w", ErrNotFound)
	}
	return r.GetOrderByID(ctx, orderID)
}

// DeleteOrder удаляет заказ.
func (r *PostgresOrderRepository) DeleteOrder(ctx context.Context, orderID string) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return wrapError("failed to delete order", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete order: %w", ErrNotFound)
	}
	return nil
}

// CountOrders считает заказы исполнителя в заданном статусе.
func (r *PostgresOrderRepository) CountOrders(ctx context.Context, businessProfileID string, status models.OrderStatus) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE business_profile_id = $1 AND status = $2`,
		businessProfileID, status).Scan(&count)
	return count, wrapError("failed to count orders", err)
}

func (r *PostgresOrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError("failed to select orders", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	err := row.Scan(
		&order.ID,
		&order.CustomerUserID,
		&order.BusinessUserID,
		&order.OfferDetailID,
		&order.Title,
		&order.Revisions,
		&order.DeliveryTimeInDays,
		&order.Price,
		&order.OfferType,
		&order.Features,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if order.Features == nil {
		order.Features = []string{}
	}
	return &order, nil
}
