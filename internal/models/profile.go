package models

import "time"

// ProfileType - роль профиля.
type ProfileType string

const (
	BusinessProfile ProfileType = "business" // Профиль исполнителя
	CustomerProfile ProfileType = "customer" // Профиль заказчика
)

// Profile представляет профиль пользователя вместе с полями учётной записи.
type Profile struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user"`
	Username     string      `json:"username"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	File         string      `json:"file"`
	Location     string      `json:"location"`
	Tel          string      `json:"tel"`
	Description  string      `json:"description"`
	WorkingHours string      `json:"working_hours"`
	Type         ProfileType `json:"type"`
	CreatedAt    time.Time   `json:"created_at"`
}

// OwnerProfileID возвращает профиль-владелец записи.
func (p *Profile) OwnerProfileID() string {
	return p.ID
}

// UserDetails - краткие сведения о владельце предложения.
type UserDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// Details возвращает краткие сведения о профиле.
func (p *Profile) Details() UserDetails {
	return UserDetails{
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Username:  p.Username,
	}
}
