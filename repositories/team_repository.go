package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/spikezone/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamOwnerConflict = errors.New("owner already has a team")
	ErrTeamNameConflict  = errors.New("team name conflict")
	ErrTeamSlugConflict  = errors.New("team slug conflict")
)

// Имена ограничений из db/schema.sql.
const (
	constraintTeamOwner = "teams_owner_uid_key"
	constraintTeamName  = "teams_name_lower_key"
	constraintTeamSlug  = "teams_slug_key"
)

type ListTeamsFilter struct {
	Status *models.TeamStatus
	// IDs ограничивает выборку; nil — без ограничения, пустой срез — пустой результат.
	IDs []int
}

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	GetByOwner(ctx context.Context, ownerUID string) (*models.Team, error)
	GetBySlug(ctx context.Context, slug string) (*models.Team, error)
	ExistsByNameLower(ctx context.Context, nameLower string) (bool, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID int) (bool, error)
	List(ctx context.Context, filter ListTeamsFilter) ([]models.Team, error)
	Count(ctx context.Context, filter ListTeamsFilter) (int, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateModeration(ctx context.Context, id int, status models.TeamStatus, adminNote string) (*models.Team, error)
	Delete(ctx context.Context, id int) error
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

const teamColumns = `id, owner_uid, name, name_lower, slug, logo_url, banner_url, description, members, status, admin_note, created_at, updated_at`

func scanTeam(row rowScanner, t *models.Team) error {
	var members []byte
	err := row.Scan(
		&t.ID, &t.OwnerUID, &t.Name, &t.NameLower, &t.Slug,
		&t.LogoURL, &t.BannerURL, &t.Description, &members,
		&t.Status, &t.AdminNote, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	t.Members = make([]models.Member, 0)
	if len(members) > 0 {
		if err := json.Unmarshal(members, &t.Members); err != nil {
			return fmt.Errorf("failed to decode team members: %w", err)
		}
	}
	return nil
}

func encodeMembers(members []models.Member) ([]byte, error) {
	if members == nil {
		members = []models.Member{}
	}
	return json.Marshal(members)
}

func (r *postgresTeamRepository) Create(ctx context.Context, t *models.Team) error {
	members, err := encodeMembers(t.Members)
	if err != nil {
		return fmt.Errorf("failed to encode team members: %w", err)
	}

	query := `
		INSERT INTO teams (owner_uid, name, name_lower, slug, logo_url, banner_url, description, members, status, admin_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		t.OwnerUID, t.Name, t.NameLower, t.Slug, t.LogoURL, t.BannerURL,
		t.Description, members, t.Status, t.AdminNote,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	return r.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id)
}

func (r *postgresTeamRepository) GetByOwner(ctx context.Context, ownerUID string) (*models.Team, error) {
	return r.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE owner_uid = $1`, ownerUID)
}

func (r *postgresTeamRepository) GetBySlug(ctx context.Context, slug string) (*models.Team, error) {
	return r.findOne(ctx, `SELECT `+teamColumns+` FROM teams WHERE slug = $1`, slug)
}

func (r *postgresTeamRepository) ExistsByNameLower(ctx context.Context, nameLower string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE name_lower = $1)`, nameLower).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check team name: %w", err)
	}
	return exists, nil
}

func (r *postgresTeamRepository) ExistsBySlug(ctx context.Context, slug string, excludeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM teams WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check team slug: %w", err)
	}
	return exists, nil
}

func buildTeamWhere(filter ListTeamsFilter) (string, []interface{}) {
	var conds []string
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.IDs != nil {
		args = append(args, pq.Array(filter.IDs))
		conds = append(conds, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *postgresTeamRepository) List(ctx context.Context, filter ListTeamsFilter) ([]models.Team, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return []models.Team{}, nil
	}

	where, args := buildTeamWhere(filter)
	query := `SELECT ` + teamColumns + ` FROM teams` + where + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := scanTeam(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *postgresTeamRepository) Count(ctx context.Context, filter ListTeamsFilter) (int, error) {
	if filter.IDs != nil && len(filter.IDs) == 0 {
		return 0, nil
	}

	where, args := buildTeamWhere(filter)
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (r *postgresTeamRepository) Update(ctx context.Context, t *models.Team) error {
	members, err := encodeMembers(t.Members)
	if err != nil {
		return fmt.Errorf("failed to encode team members: %w", err)
	}

	query := `
		UPDATE teams SET
			name = $1,
			name_lower = $2,
			slug = $3,
			logo_url = $4,
			banner_url = $5,
			description = $6,
			members = $7,
			status = $8,
			admin_note = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		t.Name, t.NameLower, t.Slug, t.LogoURL, t.BannerURL,
		t.Description, members, t.Status, t.AdminNote, t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTeamNotFound
	}
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) UpdateModeration(ctx context.Context, id int, status models.TeamStatus, adminNote string) (*models.Team, error) {
	query := `UPDATE teams SET status = $1, admin_note = $2, updated_at = NOW() WHERE id = $3 RETURNING ` + teamColumns
	return r.findOne(ctx, query, status, adminNote, id)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Team, error) {
	t := &models.Team{}
	err := scanTeam(r.db.QueryRowContext(ctx, query, args...), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return t, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := uniqueConstraint(err); ok {
		switch constraint {
		case constraintTeamOwner:
			return ErrTeamOwnerConflict
		case constraintTeamName:
			return ErrTeamNameConflict
		case constraintTeamSlug:
			return ErrTeamSlugConflict
		}
	}
	return fmt.Errorf("team query failed: %w", err)
}
