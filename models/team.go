package models

import "time"

// TeamStatus — статус модерации команды.
type TeamStatus string

const (
	TeamStatusPending  TeamStatus = "pending"
	TeamStatusApproved TeamStatus = "approved"
	TeamStatusRejected TeamStatus = "rejected"
)

func (s TeamStatus) Valid() bool {
	switch s {
	case TeamStatusPending, TeamStatusApproved, TeamStatusRejected:
		return true
	}
	return false
}

// Member — игрок в составе команды.
type Member struct {
	FullName string `json:"full_name"`
}

// Team представляет команду одного пользователя.
type Team struct {
	ID          int        `json:"id" db:"id"`
	OwnerUID    string     `json:"owner_uid" db:"owner_uid"`
	Name        string     `json:"name" db:"name"`
	NameLower   string     `json:"-" db:"name_lower"`
	Slug        string     `json:"slug" db:"slug"`
	LogoURL     string     `json:"logo_url" db:"logo_url"`
	BannerURL   string     `json:"banner_url" db:"banner_url"`
	Description string     `json:"description" db:"description"`
	Members     []Member   `json:"members" db:"members"`
	Status      TeamStatus `json:"status" db:"status"`
	AdminNote   string     `json:"admin_note" db:"admin_note"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// PublicTeam — проекция команды для неаутентифицированных клиентов.
type PublicTeam struct {
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Members     []Member   `json:"members"`
	LogoURL     string     `json:"logo_url"`
	BannerURL   string     `json:"banner_url"`
	Status      TeamStatus `json:"status"`
}

func (t *Team) Public() PublicTeam {
	members := t.Members
	if members == nil {
		members = []Member{}
	}
	return PublicTeam{
		Name:        t.Name,
		Slug:        t.Slug,
		Description: t.Description,
		Members:     members,
		LogoURL:     t.LogoURL,
		BannerURL:   t.BannerURL,
		Status:      t.Status,
	}
}
