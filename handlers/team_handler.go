package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/services"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead — запас на заголовки и границы multipart сверх размера файла.
const multipartOverhead = 64 << 10

type TeamHandler struct {
	teamService  services.TeamService
	mediaService services.MediaService
}

func NewTeamHandler(ts services.TeamService, ms services.MediaService) *TeamHandler {
	return &TeamHandler{
		teamService:  ts,
		mediaService: ms,
	}
}

// ListTeams godoc
// @Summary Список одобренных команд
// @Tags teams
// @Produce json
// @Success 200 {array} models.PublicTeam
// @Router /teams [get]
func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListApproved(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	public := make([]models.PublicTeam, 0, len(teams))
	for i := range teams {
		public = append(public, teams[i].Public())
	}

	if err := writeJSON(w, http.StatusOK, public, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CheckName godoc
// @Summary Проверить, свободно ли имя команды
// @Tags teams
// @Produce json
// @Param name query string true "Имя команды"
// @Success 200 {object} map[string]bool
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Router /teams/check-name [get]
func (h *TeamHandler) CheckName(w http.ResponseWriter, r *http.Request) {
	available, err := h.teamService.CheckNameAvailable(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"available": available}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetTeamBySlug godoc
// @Summary Публичная карточка команды
// @Tags teams
// @Produce json
// @Param slug path string true "Slug команды"
// @Success 200 {object} models.PublicTeam
// @Failure 404 {object} map[string]string
// @Router /teams/{slug} [get]
func (h *TeamHandler) GetTeamBySlug(w http.ResponseWriter, r *http.Request) {
	team, err := h.teamService.GetApprovedBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team.Public(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateTeam godoc
// @Summary Создать свою команду
// @Tags team
// @Description Команда создаётся в статусе pending. У пользователя может быть только одна команда.
// @Accept json
// @Produce json
// @Param body body services.CreateTeamInput true "Данные команды"
// @Success 201 {object} models.Team
// @Failure 400 {object} map[string]string "Некорректный JSON"
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string "Команда уже есть или имя занято"
// @Failure 422 {object} map[string]interface{} "Ошибка валидации"
// @Security BearerAuth
// @Router /team [post]
func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), uid, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMyTeam godoc
// @Summary Моя команда
// @Tags team
// @Produce json
// @Success 200 {object} models.Team "null, если команды нет"
// @Security BearerAuth
// @Router /team/me [get]
func (h *TeamHandler) GetMyTeam(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	team, err := h.teamService.GetMyTeam(r.Context(), uid)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateMyTeam godoc
// @Summary Изменить свою команду
// @Tags team
// @Description Любое изменение содержимого возвращает команду на модерацию. Во время модерации можно менять только логотип и баннер.
// @Accept json
// @Produce json
// @Param body body services.TeamPatch true "Изменяемые поля"
// @Success 200 {object} models.Team
// @Failure 403 {object} map[string]string "Команда на модерации"
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]interface{}
// @Security BearerAuth
// @Router /team/me [patch]
func (h *TeamHandler) UpdateMyTeam(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	var patch services.TeamPatch
	if err := readJSON(w, r, &patch); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.UpdateSelf(r.Context(), uid, patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteMyTeam godoc
// @Summary Удалить свою команду
// @Tags teams
// @Description Удаляет команду и все её регистрации в турнирах.
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /teams/me [delete]
func (h *TeamHandler) DeleteMyTeam(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	if err := h.teamService.DeleteSelf(r.Context(), uid); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ok": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogo godoc
// @Summary Загрузить логотип команды
// @Tags team
// @Accept multipart/form-data
// @Produce json
// @Param logo formData file true "JPG, PNG или WEBP до 5 МБ"
// @Success 200 {object} models.Team
// @Failure 422 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /team/upload/logo [post]
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, services.ImageLogo)
}

// UploadBanner godoc
// @Summary Загрузить баннер команды
// @Tags team
// @Accept multipart/form-data
// @Produce json
// @Param banner formData file true "JPG, PNG или WEBP до 5 МБ"
// @Success 200 {object} models.Team
// @Failure 422 {object} map[string]interface{}
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /team/upload/banner [post]
func (h *TeamHandler) UploadBanner(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, services.ImageBanner)
}

// uploadImage читает файл из поля формы с именем kind ("logo" или "banner").
func (h *TeamHandler) uploadImage(w http.ResponseWriter, r *http.Request, kind services.ImageKind) {
	uid, ok := currentUID(r)
	if !ok {
		unauthorizedResponse(w, r)
		return
	}

	field := string(kind)
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageSize+multipartOverhead)

	file, header, err := r.FormFile(field)
	if err != nil {
		var maxBytesError *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesError):
			failedValidationResponse(w, r, map[string]string{field: "file is too large (max 5 MB)"})
		case errors.Is(err, http.ErrMissingFile):
			failedValidationResponse(w, r, map[string]string{field: "file is required"})
		default:
			badRequestResponse(w, r, fmt.Errorf("invalid multipart body: %w", err))
		}
		return
	}
	defer file.Close()

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))

	team, err := h.mediaService.UploadTeamImage(r.Context(), uid, kind, contentType, header.Size, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, team, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
