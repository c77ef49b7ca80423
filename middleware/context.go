package middleware

import (
	"context"

	"github.com/Dosada05/spikezone/identity"
	"github.com/Dosada05/spikezone/models"
)

type contextKey string

const (
	identityContextKey contextKey = "identity"
	accountContextKey  contextKey = "account"
)

// WithIdentity кладёт проверенную личность в контекст.
func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext возвращает личность, установленную Authenticate.
func IdentityFromContext(ctx context.Context) (identity.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(identity.Identity)
	return id, ok && id.UID != ""
}

func withAccount(ctx context.Context, account *models.Account) context.Context {
	return context.WithValue(ctx, accountContextKey, account)
}

// AccountFromContext возвращает аккаунт администратора, установленный RequireAdmin.
func AccountFromContext(ctx context.Context) (*models.Account, bool) {
	account, ok := ctx.Value(accountContextKey).(*models.Account)
	return account, ok && account != nil
}
