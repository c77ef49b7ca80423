package handlers

import (
	"net/http"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/services"
)

// AdminHandler обслуживает /admin/*. Все маршруты закрыты RequireAdmin.
type AdminHandler struct {
	teamService       services.TeamService
	tournamentService services.TournamentService
	accountService    services.AccountService
}

func NewAdminHandler(ts services.TeamService, trs services.TournamentService, as services.AccountService) *AdminHandler {
	return &AdminHandler{
		teamService:       ts,
		tournamentService: trs,
		accountService:    as,
	}
}

type moderationInput struct {
	Status    models.TeamStatus `json:"status"`
	AdminNote string            `json:"admin_note"`
}

type roleInput struct {
	Role models.UserRole `json:"role"`
}

// ListTeams godoc
// @Summary Все команды
// @Tags admin
// @Produce json
// @Success 200 {array} models.Team
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Security BearerAuth
// @Router /admin/teams [get]
func (h *AdminHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, teams, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetTeamStatus godoc
// @Summary Решение модерации
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param body body moderationInput true "status: pending, approved или rejected"
// @Success 200 {object} models.Team
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/teams/{id}/status [patch]
func (h *AdminHandler) SetTeamStatus(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input moderationInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.SetModeration(r.Context(), teamID, input.Status, input.AdminNote)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateTeam godoc
// @Summary Правка команды администратором
// @Tags admin
// @Description Статус модерации не меняется.
// @Accept json
// @Produce json
// @Param id path int true "Team ID"
// @Param body body services.AdminTeamPatch true "Изменяемые поля"
// @Success 200 {object} models.Team
// @Failure 409 {object} map[string]string "Имя или slug заняты"
// @Security BearerAuth
// @Router /admin/teams/{id} [patch]
func (h *AdminHandler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var patch services.AdminTeamPatch
	if err := readJSON(w, r, &patch); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.AdminUpdate(r.Context(), teamID, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListTournaments godoc
// @Summary Все турниры, включая черновики
// @Tags admin
// @Produce json
// @Success 200 {array} models.Tournament
// @Security BearerAuth
// @Router /admin/tournaments [get]
func (h *AdminHandler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.ListAll(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournaments, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTournament godoc
// @Summary Турнир по ID
// @Tags admin
// @Produce json
// @Param id path int true "Tournament ID"
// @Success 200 {object} models.Tournament
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/tournaments/{id} [get]
func (h *AdminHandler) GetTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateTournament godoc
// @Summary Создать турнир
// @Tags admin
// @Accept json
// @Produce json
// @Param body body services.CreateTournamentInput true "Даты в RFC 3339"
// @Success 201 {object} models.Tournament
// @Failure 409 {object} map[string]string "Slug занят"
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/tournaments [post]
func (h *AdminHandler) CreateTournament(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), uid, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateTournament godoc
// @Summary Изменить турнир
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Tournament ID"
// @Param body body services.UpdateTournamentInput true "Изменяемые поля"
// @Success 200 {object} models.Tournament
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/tournaments/{id} [patch]
func (h *AdminHandler) UpdateTournament(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Update(r.Context(), uid, id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, tournament, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteTournament godoc
// @Summary Удалить турнир вместе с регистрациями
// @Tags admin
// @Param id path int true "Tournament ID"
// @Success 204 "No Content"
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/tournaments/{id} [delete]
func (h *AdminHandler) DeleteTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListUsers godoc
// @Summary Все аккаунты
// @Tags admin
// @Produce json
// @Success 200 {array} models.Account
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accountService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, accounts, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetUserRole godoc
// @Summary Сменить роль аккаунта
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "Account ID"
// @Param body body roleInput true "role: user или admin"
// @Success 200 {object} models.Account
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/users/{id}/role [patch]
func (h *AdminHandler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "id")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input roleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	account, err := h.accountService.SetRole(r.Context(), id, input.Role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, account, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
