package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/spikezone/models"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	// ErrRegistrationConflict — нарушен один из уникальных индексов
	// (tournament_id, team_id) или (tournament_id, owner_uid).
	ErrRegistrationConflict = errors.New("registration conflict: team or owner already registered for this tournament")
)

const (
	constraintRegistrationTeam  = "registrations_tournament_team_key"
	constraintRegistrationOwner = "registrations_tournament_owner_key"
)

type RegistrationRepository interface {
	Create(ctx context.Context, reg *models.Registration) error
	FindByTournamentAndOwner(ctx context.Context, tournamentID int, ownerUID string) (*models.Registration, error)
	// UpdateSnapshot перезаписывает ссылку на команду, снимок и slug турнира.
	UpdateSnapshot(ctx context.Context, reg *models.Registration) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
	// ListByTournament возвращает регистрации в порядке создания.
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error)
	DeleteByTournament(ctx context.Context, tournamentID int) (int64, error)
	DeleteByTeam(ctx context.Context, teamID int) (int64, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

const registrationColumns = `
	id, tournament_id, tournament_slug, team_id, owner_uid,
	team_name, team_slug, team_logo_url, team_banner_url, created_at, updated_at`

func scanRegistration(row rowScanner, reg *models.Registration) error {
	return row.Scan(
		&reg.ID, &reg.TournamentID, &reg.TournamentSlug, &reg.TeamID, &reg.OwnerUID,
		&reg.TeamName, &reg.TeamSlug, &reg.TeamLogoURL, &reg.TeamBannerURL, &reg.CreatedAt, &reg.UpdatedAt,
	)
}

func (r *postgresRegistrationRepository) Create(ctx context.Context, reg *models.Registration) error {
	query := `
		INSERT INTO registrations (
			tournament_id, tournament_slug, team_id, owner_uid,
			team_name, team_slug, team_logo_url, team_banner_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TournamentID, reg.TournamentSlug, reg.TeamID, reg.OwnerUID,
		reg.TeamName, reg.TeamSlug, reg.TeamLogoURL, reg.TeamBannerURL,
	).Scan(&reg.ID, &reg.CreatedAt, &reg.UpdatedAt)

	return r.handleRegistrationError(err)
}

func (r *postgresRegistrationRepository) FindByTournamentAndOwner(ctx context.Context, tournamentID int, ownerUID string) (*models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1 AND owner_uid = $2`

	reg := &models.Registration{}
	err := scanRegistration(r.db.QueryRowContext(ctx, query, tournamentID, ownerUID), reg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to find registration: %w", err)
	}
	return reg, nil
}

func (r *postgresRegistrationRepository) UpdateSnapshot(ctx context.Context, reg *models.Registration) error {
	query := `
		UPDATE registrations SET
			tournament_slug = $1,
			team_id = $2,
			team_name = $3,
			team_slug = $4,
			team_logo_url = $5,
			team_banner_url = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.TournamentSlug, reg.TeamID, reg.TeamName, reg.TeamSlug,
		reg.TeamLogoURL, reg.TeamBannerURL, reg.ID,
	).Scan(&reg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRegistrationNotFound
	}
	return r.handleRegistrationError(err)
}

func (r *postgresRegistrationRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registrations WHERE tournament_id = $1`, tournamentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return count, nil
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations WHERE tournament_id = $1 ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations by tournament: %w", err)
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var reg models.Registration
		if err := scanRegistration(rows, &reg); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return regs, nil
}

func (r *postgresRegistrationRepository) DeleteByTournament(ctx context.Context, tournamentID int) (int64, error) {
	return r.deleteWhere(ctx, `DELETE FROM registrations WHERE tournament_id = $1`, tournamentID)
}

func (r *postgresRegistrationRepository) DeleteByTeam(ctx context.Context, teamID int) (int64, error) {
	return r.deleteWhere(ctx, `DELETE FROM registrations WHERE team_id = $1`, teamID)
}

func (r *postgresRegistrationRepository) deleteWhere(ctx context.Context, query string, id int) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registrations: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

func (r *postgresRegistrationRepository) handleRegistrationError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := uniqueConstraint(err); ok {
		switch constraint {
		case constraintRegistrationTeam, constraintRegistrationOwner:
			return ErrRegistrationConflict
		}
	}
	return fmt.Errorf("registration query failed: %w", err)
}
