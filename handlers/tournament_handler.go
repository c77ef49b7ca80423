package handlers

import (
	"net/http"

	"github.com/Dosada05/spikezone/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService   services.TournamentService
	registrationService services.RegistrationService
}

func NewTournamentHandler(ts services.TournamentService, rs services.RegistrationService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:   ts,
		registrationService: rs,
	}
}

// ListTournaments godoc
// @Summary Опубликованные турниры
// @Tags tournaments
// @Description Только турниры в статусе published, ближайшие первыми.
// @Produce json
// @Success 200 {array} models.Tournament
// @Router /tournaments [get]
func (h *TournamentHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListPublished(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournaments, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournamentBySlug godoc
// @Summary Опубликованный турнир по slug
// @Tags tournaments
// @Produce json
// @Param slug path string true "Slug турнира"
// @Success 200 {object} models.Tournament
// @Failure 404 {object} map[string]string
// @Router /tournaments/{slug} [get]
func (h *TournamentHandler) GetTournamentBySlug(w http.ResponseWriter, r *http.Request) {
	tournament, err := h.tournamentService.GetPublishedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Register godoc
// @Summary Зарегистрировать свою команду в турнире
// @Tags tournaments
// @Description Повторный вызов обновляет снимок команды и возвращает 200.
// @Produce json
// @Param slug path string true "Slug турнира"
// @Success 201 {object} services.RegisterResult "Регистрация создана"
// @Success 200 {object} services.RegisterResult "Регистрация обновлена"
// @Failure 403 {object} map[string]string "TEAM_NOT_APPROVED"
// @Failure 404 {object} map[string]string "TOURNAMENT_NOT_FOUND или NEED_TEAM"
// @Failure 409 {object} map[string]string "REGISTRATION_NOT_STARTED, REGISTRATION_CLOSED, TOURNAMENT_FULL, ALREADY_REGISTERED"
// @Security BearerAuth
// @Router /tournaments/{slug}/register [post]
func (h *TournamentHandler) Register(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	result, err := h.registrationService.Register(r.Context(), uid, chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	if err := writeJSON(w, status, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRegistrations godoc
// @Summary Зарегистрированные команды турнира
// @Tags tournaments
// @Produce json
// @Param slug path string true "Slug турнира"
// @Success 200 {object} models.RegistrationList
// @Failure 404 {object} map[string]string
// @Router /tournaments/{slug}/registrations [get]
func (h *TournamentHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	list, err := h.registrationService.ListRegistrations(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, list, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
