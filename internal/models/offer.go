package models

import (
	"encoding/json"
	"time"
)

// Offer представляет предложение исполнителя с тремя тарифами.
type Offer struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user"`
	Title           string        `json:"title"`
	Image           string        `json:"image"`
	Description     string        `json:"description"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Details         []OfferDetail `json:"details"`
	MinPrice        int           `json:"min_price"`
	MinDeliveryTime int           `json:"min_delivery_time"`
	UserDetails     *UserDetails  `json:"user_details,omitempty"`
}

// OwnerProfileID возвращает профиль-владелец предложения.
func (o *Offer) OwnerProfileID() string {
	return o.UserID
}

// OfferDetail представляет один тариф предложения.
type OfferDetail struct {
	ID                 string   `json:"id"`
	OfferID            string   `json:"-"`
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays int      `json:"delivery_time_in_days"`
	Price              int      `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

// Feature - общий тег, который можно привязать к любому тарифу.
type Feature struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// OfferDetailLink - ссылка на тариф в списке предложений.
type OfferDetailLink struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// OfferSummary - представление предложения в списке.
type OfferSummary struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user"`
	Title           string            `json:"title"`
	Image           string            `json:"image"`
	Description     string            `json:"description"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Details         []OfferDetailLink `json:"details"`
	MinPrice        int               `json:"min_price"`
	MinDeliveryTime int               `json:"min_delivery_time"`
	UserDetails     *UserDetails      `json:"user_details,omitempty"`
}

// Summary сворачивает тарифы предложения в ссылки.
func (o *Offer) Summary() OfferSummary {
	links := make([]OfferDetailLink, 0, len(o.Details))
	for _, detail := range o.Details {
		links = append(links, OfferDetailLink{
			ID:  detail.ID,
			URL: "/offerdetails/" + detail.ID + "/",
		})
	}
	return OfferSummary{
		ID:              o.ID,
		UserID:          o.UserID,
		Title:           o.Title,
		Image:           o.Image,
		Description:     o.Description,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Details:         links,
		MinPrice:        o.MinPrice,
		MinDeliveryTime: o.MinDeliveryTime,
		UserDetails:     o.UserDetails,
	}
}

// OfferRequest представляет тело запроса на создание предложения.
// Details разбирается отдельно: до проверки количества тарифов это произвольный JSON.
type OfferRequest struct {
	Title       string          `json:"title"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Details     json.RawMessage `json:"details"`
}

// OfferDetailRequest представляет тариф в запросе на создание.
type OfferDetailRequest struct {
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays *int     `json:"delivery_time_in_days"`
	Price              *int     `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

// OfferPatch - проверенное тело PATCH-запроса. nil означает "поле не менять".
type OfferPatch struct {
	Title       *string
	Image       *string
	Description *string
	Details     []OfferDetailPatch
}

// OfferDetailPatch - изменение одного тарифа, тариф ищется по OfferType.
type OfferDetailPatch struct {
	OfferType          *string
	Title              *string
	Revisions          *int
	DeliveryTimeInDays *int
	Price              *int
	Features           []string
	ReplaceFeatures    bool
}

// OfferOrdering - допустимые значения параметра ordering.
type OfferOrdering string

const (
	OrderByUpdatedAt     OfferOrdering = "updated_at"
	OrderByUpdatedAtDesc OfferOrdering = "-updated_at"
	OrderByMinPrice      OfferOrdering = "min_price"
	OrderByMinPriceDesc  OfferOrdering = "-min_price"
)

// OfferFilter - параметры выборки списка предложений.
type OfferFilter struct {
	CreatorID       string
	MinPrice        *int
	MaxDeliveryTime *int
	Search          string
	Ordering        OfferOrdering
	Limit           int
	Offset          int
}
