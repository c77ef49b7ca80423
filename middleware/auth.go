package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Dosada05/spikezone/identity"
	"github.com/Dosada05/spikezone/services"
)

// Authenticate проверяет bearer-токен и кладёт identity.Identity в контекст.
//
// 503 — верификатор не настроен или недоступны ключи провайдера, 401 UNAUTHENTICATED — токена нет,
// 401 UNAUTHORIZED — токен не прошёл проверку.
func Authenticate(verifier identity.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil || !verifier.Ready() {
				writeError(w, http.StatusServiceUnavailable, services.ErrIdentityUnavailable)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, services.ErrUnauthenticated)
				return
			}

			id, err := verifier.Verify(r.Context(), token)
			if err != nil {
				if errors.Is(err, identity.ErrNotConfigured) {
					writeError(w, http.StatusServiceUnavailable, services.ErrIdentityUnavailable)
					return
				}
				if errors.Is(err, identity.ErrCertsUnavailable) {
					logger.ErrorContext(r.Context(), "identity provider keys unavailable", slog.Any("error", err))
					writeError(w, http.StatusServiceUnavailable, services.ErrIdentityUnavailable)
					return
				}
				if !errors.Is(err, identity.ErrInvalidToken) {
					logger.ErrorContext(r.Context(), "token verification failed", slog.Any("error", err))
				}
				writeError(w, http.StatusUnauthorized, services.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin пропускает только аккаунты с ролью admin. Ставится после Authenticate.
func RequireAdmin(accounts services.AccountService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, services.ErrUnauthenticated)
				return
			}

			account, err := accounts.RequireAdmin(r.Context(), id.UID)
			if err != nil {
				switch services.ErrorCode(err) {
				case services.CodeUnauthorized:
					writeError(w, http.StatusUnauthorized, err)
				case services.CodeForbidden:
					writeError(w, http.StatusForbidden, err)
				default:
					logger.ErrorContext(r.Context(), "admin check failed", slog.String("uid", id.UID), slog.Any("error", err))
					writeJSON(w, http.StatusInternalServerError, map[string]string{
						"error": "the server encountered a problem and could not process your request",
						"code":  "INTERNAL",
					})
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(withAccount(r.Context(), account)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  string(services.ErrorCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
