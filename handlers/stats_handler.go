package handlers

import (
	"net/http"

	"github.com/Dosada05/spikezone/services"
)

type StatsHandler struct {
	statsService services.StatsService
}

func NewStatsHandler(s services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: s}
}

// PublicStats godoc
// @Summary Счётчики для главной страницы
// @Tags public
// @Produce json
// @Success 200 {object} models.PublicStats
// @Router /public/stats [get]
func (h *StatsHandler) PublicStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.statsService.PublicStats(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Health godoc
// @Summary Проверка живости
// @Tags public
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /health [get]
func Health(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"ok": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
