package handlers

import (
	"net/http"

	"github.com/Dosada05/spikezone/middleware"
	"github.com/Dosada05/spikezone/services"
)

type AuthHandler struct {
	accountService services.AccountService
}

func NewAuthHandler(accountService services.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// Me godoc
// @Summary Синхронизировать аккаунт
// @Tags auth
// @Description Создаёт или обновляет локальный аккаунт по данным токена. Роль не меняется.
// @Produce json
// @Success 200 {object} models.Account
// @Failure 401 {object} map[string]string "Нет или неверный токен"
// @Failure 503 {object} map[string]string "Провайдер идентичности не настроен"
// @Security BearerAuth
// @Router /auth/me [post]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	account, err := h.accountService.Sync(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, account, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
