package models

import "time"

// TournamentStatus представляет статусы турнира.
type TournamentStatus string

const (
	TournamentStatusDraft     TournamentStatus = "draft"
	TournamentStatusPublished TournamentStatus = "published"
	TournamentStatusArchived  TournamentStatus = "archived"
)

const DefaultTeamLimit = 16

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentStatusDraft, TournamentStatusPublished, TournamentStatusArchived:
		return true
	}
	return false
}

// Tournament представляет турнир.
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Title        string           `json:"title" db:"title"`
	Slug         string           `json:"slug" db:"slug"`
	Status       TournamentStatus `json:"status" db:"status"`
	City         string           `json:"city" db:"city"`
	Venue        string           `json:"venue" db:"venue"`
	Description  string           `json:"description" db:"description"`
	RegStartAt   time.Time        `json:"reg_start_at" db:"reg_start_at"`
	RegEndAt     time.Time        `json:"reg_end_at" db:"reg_end_at"`
	EventStartAt time.Time        `json:"event_start_at" db:"event_start_at"`
	EventEndAt   *time.Time       `json:"event_end_at,omitempty" db:"event_end_at"`
	TeamLimit    int              `json:"team_limit" db:"team_limit"`
	EntryFee     int              `json:"entry_fee" db:"entry_fee"`
	CreatedByUID string           `json:"created_by_uid" db:"created_by_uid"`
	UpdatedByUID string           `json:"updated_by_uid" db:"updated_by_uid"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

func (t *Tournament) IsPublished() bool {
	return t != nil && t.Status == TournamentStatusPublished
}

// Limit возвращает лимит команд с учётом значения по умолчанию.
func (t *Tournament) Limit() int {
	if t.TeamLimit <= 0 {
		return DefaultTeamLimit
	}
	return t.TeamLimit
}
