package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/permissions"
	"github.com/senyabanana/marketplace-service/internal/repository"
	"github.com/senyabanana/marketplace-service/internal/repository/mongodb"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// HistoryTypeOrder - тип объекта в журнале статусов для заказов.
const HistoryTypeOrder = "order"

// OrderService реализует жизненный цикл заказов.
type OrderService struct {
	Repo     repository.OrderRepository
	Offers   repository.OfferRepository
	Profiles repository.ProfileRepository
	History  mongodb.HistoryRepository
	Logger   *log.Logger
}

// NewOrderService создаёт новый экземпляр OrderService.
func NewOrderService(repo repository.OrderRepository, offers repository.OfferRepository, profiles repository.ProfileRepository,
	history mongodb.HistoryRepository, logger *log.Logger) *OrderService {
	return &OrderService{
		Repo:     repo,
		Offers:   offers,
		Profiles: profiles,
		History:  history,
		Logger:   logger,
	}
}

// ListOrders возвращает заказы вызывающего; сотрудник видит все заказы.
func (s *OrderService) ListOrders(ctx context.Context, subject permissions.Subject) ([]models.Order, error) {
	if err := permissions.Check(permissions.OrderList, subject, nil); err != nil {
		return nil, err
	}

	var orders []models.Order
	var err error
	switch {
	case subject.IsStaff:
		orders, err = s.Repo.ListAllOrders(ctx)
	case subject.Profile != nil:
		orders, err = s.Repo.ListOrders(ctx, subject.Profile.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrder возвращает заказ его участнику или сотруднику.
func (s *OrderService) GetOrder(ctx context.Context, subject permissions.Subject, orderID string) (*models.Order, error) {
	if err := permissions.Check(permissions.OrderList, subject, nil); err != nil {
		return nil, err
	}
	order, err := s.Repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	if err := permissions.Check(permissions.OrderRetrieve, subject, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrder оформляет заказ тарифа от имени заказчика.
func (s *OrderService) CreateOrder(ctx context.Context, subject permissions.Subject, payload []byte) (*models.Order, error) {
	if err := permissions.Check(permissions.OrderCreate, subject, nil); err != nil {
		return nil, err
	}

	var req models.OrderRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, models.NewKindError(models.KindInvalidPayload, "invalid request body")
	}
	if req.OfferDetailID == "" {
		return nil, models.NewKindError(models.KindInvalidPayload, "offer_detail_id is required")
	}
	if !utils.IsValidID(req.OfferDetailID) {
		return nil, models.NewKindError(models.KindInvalidPayload, "offer_detail_id must be a valid UUID")
	}

	detail, err := s.Offers.GetOfferDetailByID(ctx, req.OfferDetailID)
	if err != nil {
		return nil, notFoundOr(err, "offer detail not found")
	}
	offer, err := s.Offers.GetOfferByID(ctx, detail.OfferID)
	if err != nil {
		return nil, notFoundOr(err, "offer not found")
	}

	order, err := s.Repo.CreateOrder(ctx, &models.Order{
		CustomerUserID: subject.Profile.ID,
		BusinessUserID: offer.UserID,
		OfferDetailID:  &detail.ID,
		Status:         models.OrderInProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.recordHistory(ctx, order.ID, "", order.Status, subject.UserID, "order created")
	return order, nil
}

// UpdateOrderStatus меняет статус заказа; доступно только исполнителю заказа.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, subject permissions.Subject, orderID string, payload []byte) (*models.Order, error) {
	order, err := s.Repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	if err := permissions.Check(permissions.OrderUpdate, subject, order); err != nil {
		return nil, err
	}

	var req models.OrderStatusRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, models.NewKindError(models.KindInvalidPayload, "invalid request body")
	}
	if !req.Status.Valid() {
		return nil, models.NewKindError(models.KindInvalidPayload,
			fmt.Sprintf("status must be one of %s, %s, %s", models.OrderInProgress, models.OrderCompleted, models.OrderCancelled))
	}

	updated, err := s.Repo.UpdateOrderStatus(ctx, orderID, req.Status)
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}

	if order.Status != updated.Status {
		s.recordHistory(ctx, orderID, order.Status, updated.Status, subject.UserID, "")
	}
	return updated, nil
}

// DeleteOrder удаляет заказ; доступно только сотрудникам.
func (s *OrderService) DeleteOrder(ctx context.Context, subject permissions.Subject, orderID string) error {
	if err := permissions.Check(permissions.OrderDelete, subject, nil); err != nil {
		return err
	}
	if err := s.Repo.DeleteOrder(ctx, orderID); err != nil {
		return notFoundOr(err, "order not found")
	}
	return nil
}

// OrderHistory возвращает журнал смены статусов заказа.
func (s *OrderService) OrderHistory(ctx context.Context, subject permissions.Subject, orderID string) ([]models.HistoryStatus, error) {
	order, err := s.Repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "order not found")
	}
	if err := permissions.Check(permissions.OrderHistory, subject, order); err != nil {
		return nil, err
	}

	history, err := s.History.ListHistory(ctx, HistoryTypeOrder, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order history: %w", err)
	}
	if history == nil {
		history = []models.HistoryStatus{}
	}
	return history, nil
}

// CountOrders считает заказы исполнителя в заданном статусе.
func (s *OrderService) CountOrders(ctx context.Context, subject permissions.Subject, businessProfileID string, status models.OrderStatus) (int, error) {
	if err := permissions.Check(permissions.OrderCount, subject, nil); err != nil {
		return 0, err
	}

	profile, err := s.Profiles.GetProfileByID(ctx, businessProfileID)
	if err != nil {
		return 0, notFoundOr(err, "business user not found")
	}
	if !permissions.IsBusinessProfile(profile) {
		return 0, models.NewKindError(models.KindNotFound, "business user not found")
	}

	count, err := s.Repo.CountOrders(ctx, businessProfileID, status)
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// recordHistory пишет запись журнала. Ошибка журнала не отменяет операцию над заказом.
func (s *OrderService) recordHistory(ctx context.Context, orderID string, oldStatus, newStatus models.OrderStatus, changedBy, note string) {
	doc := &models.HistoryStatus{
		RelatedID:   orderID,
		RelatedType: HistoryTypeOrder,
		OldStatus:   string(oldStatus),
		NewStatus:   string(newStatus),
		ChangedBy:   changedBy,
		Timestamp:   time.Now().UTC(),
		Note:        note,
	}
	if err := s.History.SaveHistoryStatus(ctx, doc); err != nil {
		s.Logger.Printf("WARNING: failed to record history for order %s: %v", orderID, err)
	}
}
