package models

import "time"

// OrderStatus - статус заказа.
type OrderStatus string

const (
	OrderInProgress OrderStatus = "in_progress" // Заказ выполняется
	OrderCompleted  OrderStatus = "completed"   // Заказ выполнен
	OrderCancelled  OrderStatus = "cancelled"   // Заказ отменён
)

// Valid сообщает, входит ли статус в допустимый набор.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// Order представляет заказ тарифа; поля тарифа берутся из связанной записи.
type Order struct {
	ID                 string      `json:"id"`
	CustomerUserID     string      `json:"customer_user"`
	BusinessUserID     string      `json:"business_user"`
	OfferDetailID      *string     `json:"-"`
	Title              string      `json:"title"`
	Revisions          int         `json:"revisions"`
	DeliveryTimeInDays int         `json:"delivery_time_in_days"`
	Price              int         `json:"price"`
	Features           []string    `json:"features"`
	OfferType          string      `json:"offer_type"`
	Status             OrderStatus `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// OwnerProfileID возвращает исполнителя: только он меняет статус заказа.
func (o *Order) OwnerProfileID() string {
	return o.BusinessUserID
}

// HasParty сообщает, участвует ли профиль в заказе.
func (o *Order) HasParty(profileID string) bool {
	return o.CustomerUserID == profileID || o.BusinessUserID == profileID
}

// OrderRequest представляет тело запроса на создание заказа.
type OrderRequest struct {
	OfferDetailID string `json:"offer_detail_id"`
}

// OrderStatusRequest представляет тело запроса на смену статуса.
type OrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}

// OrderCount - количество заказов исполнителя в статусе in_progress.
type OrderCount struct {
	OrderCount int `json:"order_count"`
}

// CompletedOrderCount - количество выполненных заказов исполнителя.
type CompletedOrderCount struct {
	CompletedOrderCount int `json:"completed_order_count"`
}
