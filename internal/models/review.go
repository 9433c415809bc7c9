package models

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review представляет отзыв заказчика об исполнителе.
type Review struct {
	ID             string    `json:"id"`
	BusinessUserID string    `json:"business_user"`
	ReviewerID     string    `json:"reviewer"`
	Rating         int       `json:"rating"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OwnerProfileID возвращает автора отзыва.
func (r *Review) OwnerProfileID() string {
	return r.ReviewerID
}

// ReviewRequest представляет тело запроса на создание или изменение отзыва.
type ReviewRequest struct {
	BusinessUserID string  `json:"business_user"`
	Rating         *int    `json:"rating"`
	Description    *string `json:"description"`
}

// ReviewFilter - параметры выборки отзывов.
type ReviewFilter struct {
	BusinessUserID string
	ReviewerID     string
	Ordering       string
}
