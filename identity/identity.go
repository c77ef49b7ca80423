// Package identity проверяет bearer-токены внешнего провайдера идентичности
// и превращает их в Identity.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken — подпись, срок действия или claims токена не прошли проверку.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNotConfigured — провайдер не настроен.
	ErrNotConfigured = errors.New("identity provider is not configured")
	// ErrCertsUnavailable — не удалось получить ключи подписи провайдера.
	ErrCertsUnavailable = errors.New("signing keys are unavailable")
)

// Identity — проверенные claims пользователя.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
	// Ready сообщает, может ли верификатор проверять токены.
	Ready() bool
}

// Disabled используется, когда ни Firebase, ни dev-секрет не заданы.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) (Identity, error) {
	return Identity{}, ErrNotConfigured
}

func (Disabled) Ready() bool { return false }
