package models

import "time"

// UserRole определяет роль аккаунта.
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// Valid сообщает, является ли роль одной из известных.
func (r UserRole) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account — локальная запись пользователя, созданная по claims провайдера идентичности.
type Account struct {
	ID          int       `json:"id" db:"id"`
	UID         string    `json:"uid" db:"uid"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Role        UserRole  `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
