package models

// PublicStats — агрегированные счётчики для главной страницы.
type PublicStats struct {
	TournamentsTotal    int `json:"tournaments_total"`
	TournamentsUpcoming int `json:"tournaments_upcoming"`
	TeamsTotal          int `json:"teams_total"`
	TeamsApproved       int `json:"teams_approved"`
}
