package models

import "time"

// Registration — денормализованная связь "команда участвует в турнире".
// Поля Team* — снимок команды на момент (пере)регистрации.
type Registration struct {
	ID             int       `json:"id" db:"id"`
	TournamentID   int       `json:"tournament_id" db:"tournament_id"`
	TournamentSlug string    `json:"tournament_slug" db:"tournament_slug"`
	TeamID         int       `json:"team_id" db:"team_id"`
	OwnerUID       string    `json:"owner_uid" db:"owner_uid"`
	TeamName       string    `json:"team_name" db:"team_name"`
	TeamSlug       string    `json:"team_slug" db:"team_slug"`
	TeamLogoURL    string    `json:"team_logo_url" db:"team_logo_url"`
	TeamBannerURL  string    `json:"team_banner_url" db:"team_banner_url"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// SetSnapshot копирует отображаемые поля команды в регистрацию.
func (r *Registration) SetSnapshot(team *Team) {
	r.TeamID = team.ID
	r.TeamName = team.Name
	r.TeamSlug = team.Slug
	r.TeamLogoURL = team.LogoURL
	r.TeamBannerURL = team.BannerURL
}

// RegistrationItem — публичный элемент списка (без team_id).
type RegistrationItem struct {
	TeamName      string    `json:"team_name"`
	TeamSlug      string    `json:"team_slug"`
	TeamLogoURL   string    `json:"team_logo_url"`
	TeamBannerURL string    `json:"team_banner_url"`
	CreatedAt     time.Time `json:"created_at"`
}

type RegistrationStats struct {
	Count int `json:"count"`
	Limit int `json:"limit"`
}

type RegistrationList struct {
	Stats RegistrationStats  `json:"stats"`
	Items []RegistrationItem `json:"items"`
}
