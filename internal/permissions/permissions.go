// Package permissions содержит проверки ролей и владения и таблицу прав по действиям.
package permissions

import (
	"fmt"

	"github.com/senyabanana/marketplace-service/internal/models"
)

// Action - действие над ресурсом API.
type Action string

const (
	OfferList           Action = "offer.list"
	OfferRetrieve       Action = "offer.retrieve"
	OfferCreate         Action = "offer.create"
	OfferUpdate         Action = "offer.update"
	OfferDelete         Action = "offer.delete"
	OfferDetailRetrieve Action = "offerdetail.retrieve"

	ProfileRetrieve Action = "profile.retrieve"
	ProfileList     Action = "profile.list"
	ProfileUpdate   Action = "profile.update"

	OrderList     Action = "order.list"
	OrderRetrieve Action = "order.retrieve"
	OrderCreate   Action = "order.create"
	OrderUpdate   Action = "order.update"
	OrderDelete   Action = "order.delete"
	OrderHistory  Action = "order.history"
	OrderCount    Action = "order.count"

	ReviewList     Action = "review.list"
	ReviewRetrieve Action = "review.retrieve"
	ReviewCreate   Action = "review.create"
	ReviewUpdate   Action = "review.update"
	ReviewDelete   Action = "review.delete"

	BaseInfoRetrieve Action = "baseinfo.retrieve"
)

// Capability - требование к вызывающему.
type Capability string

const (
	Authenticated Capability = "authenticated"  // Есть действительный токен
	Business      Capability = "business"       // Профиль исполнителя
	Customer      Capability = "customer"       // Профиль заказчика
	Staff         Capability = "staff"          // Сотрудник площадки
	Owner         Capability = "owner"          // Владелец объекта
	PartyOrStaff  Capability = "party_or_staff" // Участник заказа или сотрудник
)

var policy = map[Action][]Capability{
	OfferList:           {},
	OfferRetrieve:       {Authenticated},
	OfferCreate:         {Authenticated, Business},
	OfferUpdate:         {Authenticated, Owner},
	OfferDelete:         {Authenticated, Owner},
	OfferDetailRetrieve: {Authenticated},

	ProfileRetrieve: {Authenticated},
	ProfileList:     {Authenticated},
	ProfileUpdate:   {Authenticated, Owner},

	OrderList:     {Authenticated},
	OrderRetrieve: {Authenticated, PartyOrStaff},
	OrderCreate:   {Authenticated, Customer},
	OrderUpdate:   {Authenticated, Business, Owner},
	OrderDelete:   {Authenticated, Staff},
	OrderHistory:  {Authenticated, PartyOrStaff},
	OrderCount:    {Authenticated},

	ReviewList:     {Authenticated},
	ReviewRetrieve: {Authenticated},
	ReviewCreate:   {Authenticated, Customer},
	ReviewUpdate:   {Authenticated, Owner},
	ReviewDelete:   {Authenticated, Owner},

	BaseInfoRetrieve: {},
}

// Subject - вызывающий пользователь. Profile равен nil, если профиль не найден.
type Subject struct {
	UserID  string
	IsStaff bool
	Profile *models.Profile
}

// Resource - объект, у которого есть профиль-владелец.
type Resource interface {
	OwnerProfileID() string
}

type partyResource interface {
	HasParty(profileID string) bool
}

// Required возвращает набор требований для действия.
func Required(action Action) ([]Capability, bool) {
	capabilities, ok := policy[action]
	return capabilities, ok
}

// Check проверяет все требования действия. resource нужен только для объектных требований.
func Check(action Action, subject Subject, resource Resource) error {
	capabilities, ok := policy[action]
	if !ok {
		return models.NewKindError(models.KindForbidden, fmt.Sprintf("action %s is not allowed", action))
	}

	for _, capability := range capabilities {
		if err := check(capability, subject, resource); err != nil {
			return err
		}
	}
	return nil
}

func check(capability Capability, subject Subject, resource Resource) error {
	switch capability {
	case Authenticated:
		if subject.UserID == "" {
			return models.NewKindError(models.KindUnauthorized, "authentication credentials were not provided")
		}
	case Business:
		if !IsBusinessProfile(subject.Profile) {
			return models.NewKindError(models.KindForbidden, "only business profiles are allowed")
		}
	case Customer:
		if subject.Profile == nil {
			return models.NewKindError(models.KindUnauthorized, "profile was not found")
		}
		if subject.Profile.Type != models.CustomerProfile {
			return models.NewKindError(models.KindForbidden, "only customer profiles are allowed")
		}
	case Staff:
		if !subject.IsStaff {
			return models.NewKindError(models.KindForbidden, "only staff members are allowed")
		}
	case Owner:
		if subject.Profile == nil || resource == nil || resource.OwnerProfileID() != subject.Profile.ID {
			return models.NewKindError(models.KindForbidden, "you are not the owner of this resource")
		}
	case PartyOrStaff:
		if subject.IsStaff {
			return nil
		}
		party, ok := resource.(partyResource)
		if subject.Profile == nil || !ok || !party.HasParty(subject.Profile.ID) {
			return models.NewKindError(models.KindForbidden, "you have no permission")
		}
	}
	return nil
}

// IsBusinessProfile сообщает, является ли профиль профилем исполнителя.
func IsBusinessProfile(profile *models.Profile) bool {
	return profile != nil && profile.Type == models.BusinessProfile
}

// IsOfferOwner сообщает, принадлежит ли предложение профилю.
func IsOfferOwner(profile *models.Profile, offer *models.Offer) bool {
	return profile != nil && offer != nil && offer.UserID == profile.ID
}
