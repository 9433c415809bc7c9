package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"
	"github.com/senyabanana/marketplace-service/internal/services"
	"github.com/senyabanana/marketplace-service/internal/utils"
)

// OrderHandler - структура для обработки HTTP-запросов к заказам.
type OrderHandler struct {
	Service  *services.OrderService
	Subjects SubjectResolver
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewOrderHandler создаёт новый экземпляр OrderHandler.
func NewOrderHandler(service *services.OrderService, subjects SubjectResolver, logger *log.Logger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		Service:  service,
		Subjects: subjects,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// ListOrders обрабатывает запросы для получения заказов вызывающего.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	orders, err := h.Service.ListOrders(ctx, subject)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch orders")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, orders)
}

// CreateOrder обрабатывает запросы для оформления заказа.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	body, ok := readBody(w, r)
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	order, err := h.Service.CreateOrder(ctx, subject, body)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to create order")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusCreated, order)
}

// GetOrder обрабатывает запросы для получения заказа.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orderID, ok := pathID(w, r, "id", "order not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	order, err := h.Service.GetOrder(ctx, subject, orderID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch order")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, order)
}

// UpdateOrderStatus обрабатывает запросы для смены статуса заказа.
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orderID, ok := pathID(w, r, "id", "order not found")
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	order, err := h.Service.UpdateOrderStatus(ctx, subject, orderID, body)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to update order status")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, order)
}

// DeleteOrder обрабатывает запросы для удаления заказа.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orderID, ok := pathID(w, r, "id", "order not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	if err := h.Service.DeleteOrder(ctx, subject, orderID); err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// OrderHistory обрабатывает запросы для получения журнала статусов заказа.
func (h *OrderHandler) OrderHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	orderID, ok := pathID(w, r, "id", "order not found")
	if !ok {
		return
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return
	}

	history, err := h.Service.OrderHistory(ctx, subject, orderID)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to fetch order history")
		return
	}

	utils.SendJSON(w, h.Logger, http.StatusOK, history)
}

// OrderCount обрабатывает запросы для подсчёта заказов исполнителя в работе.
func (h *OrderHandler) OrderCount(w http.ResponseWriter, r *http.Request) {
	count, ok := h.countOrders(w, r, models.OrderInProgress)
	if !ok {
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, models.OrderCount{OrderCount: count})
}

// CompletedOrderCount обрабатывает запросы для подсчёта выполненных заказов исполнителя.
func (h *OrderHandler) CompletedOrderCount(w http.ResponseWriter, r *http.Request) {
	count, ok := h.countOrders(w, r, models.OrderCompleted)
	if !ok {
		return
	}
	utils.SendJSON(w, h.Logger, http.StatusOK, models.CompletedOrderCount{CompletedOrderCount: count})
}

func (h *OrderHandler) countOrders(w http.ResponseWriter, r *http.Request, status models.OrderStatus) (int, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	businessID, ok := pathID(w, r, "business_user_id", "business user not found")
	if !ok {
		return 0, false
	}
	subject, ok := resolveSubject(ctx, w, h.Logger, h.Subjects)
	if !ok {
		return 0, false
	}

	count, err := h.Service.CountOrders(ctx, subject, businessID, status)
	if err != nil {
		utils.HandleServiceError(w, h.Logger, err, "failed to count orders")
		return 0, false
	}
	return count, true
}
