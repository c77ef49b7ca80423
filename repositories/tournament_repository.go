package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/spikezone/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentSlugConflict = errors.New("tournament slug conflict")
)

const constraintTournamentSlug = "tournaments_slug_key"

// TournamentOrder задаёт сортировку списка турниров.
type TournamentOrder int

const (
	// OrderEventStartDesc — сначала самые поздние (админка).
	OrderEventStartDesc TournamentOrder = iota
	// OrderEventStartAsc — ближайшие первыми (публичный список).
	OrderEventStartAsc
)

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	// EventStartFrom оставляет турниры, начинающиеся не раньше указанного момента.
	EventStartFrom *time.Time
	Order          TournamentOrder
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tournament, error)
	ExistsBySlug(ctx context.Context, slug string, excludeID int) (bool, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Count(ctx context.Context, filter ListTournamentsFilter) (int, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `
	id, title, slug, status, city, venue, description,
	reg_start_at, reg_end_at, event_start_at, event_end_at,
	team_limit, entry_fee, created_by_uid, updated_by_uid, created_at, updated_at`

func scanTournament(row rowScanner, t *models.Tournament) error {
	var eventEnd sql.NullTime
	err := row.Scan(
		&t.ID, &t.Title, &t.Slug, &t.Status, &t.City, &t.Venue, &t.Description,
		&t.RegStartAt, &t.RegEndAt, &t.EventStartAt, &eventEnd,
		&t.TeamLimit, &t.EntryFee, &t.CreatedByUID, &t.UpdatedByUID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if eventEnd.Valid {
		end := eventEnd.Time
		t.EventEndAt = &end
	} else {
		t.EventEndAt = nil
	}
	return nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (
			title, slug, status, city, venue, description,
			reg_start_at, reg_end_at, event_start_at, event_end_at,
			team_limit, entry_fee, created_by_uid, updated_by_uid
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Slug, t.Status, t.City, t.Venue, t.Description,
		t.RegStartAt, t.RegEndAt, t.EventStartAt, t.EventEndAt,
		t.TeamLimit, t.EntryFee, t.CreatedByUID, t.UpdatedByUID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	return r.findOne(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

func (r *postgresTournamentRepository) GetBySlug(ctx context.Context, slug string) (*models.Tournament, error) {
	return r.findOne(ctx, `SELECT `+tournamentColumns+` FROM tournaments WHERE slug = $1`, slug)
}

func (r *postgresTournamentRepository) ExistsBySlug(ctx context.Context, slug string, excludeID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM tournaments WHERE slug = $1 AND id <> $2)`, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check tournament slug: %w", err)
	}
	return exists, nil
}

func buildTournamentWhere(filter ListTournamentsFilter) (string, []interface{}) {
	var conds []string
	args := []interface{}{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.EventStartFrom != nil {
		args = append(args, *filter.EventStartFrom)
		conds = append(conds, fmt.Sprintf("event_start_at >= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	where, args := buildTournamentWhere(filter)

	query := `SELECT ` + tournamentColumns + ` FROM tournaments` + where
	if filter.Order == OrderEventStartAsc {
		query += " ORDER BY event_start_at ASC, id ASC"
	} else {
		query += " ORDER BY event_start_at DESC, created_at DESC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := scanTournament(rows, &t); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Count(ctx context.Context, filter ListTournamentsFilter) (int, error) {
	where, args := buildTournamentWhere(filter)
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tournaments`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tournaments: %w", err)
	}
	return count, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, t *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			title = $1,
			slug = $2,
			status = $3,
			city = $4,
			venue = $5,
			description = $6,
			reg_start_at = $7,
			reg_end_at = $8,
			event_start_at = $9,
			event_end_at = $10,
			team_limit = $11,
			entry_fee = $12,
			updated_by_uid = $13,
			updated_at = NOW()
		WHERE id = $14
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		t.Title, t.Slug, t.Status, t.City, t.Venue, t.Description,
		t.RegStartAt, t.RegEndAt, t.EventStartAt, t.EventEndAt,
		t.TeamLimit, t.EntryFee, t.UpdatedByUID, t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = $1`, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Tournament, error) {
	t := &models.Tournament{}
	err := scanTournament(r.db.QueryRowContext(ctx, query, args...), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to find tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if constraint, ok := uniqueConstraint(err); ok && constraint == constraintTournamentSlug {
		return ErrTournamentSlugConflict
	}
	return fmt.Errorf("tournament query failed: %w", err)
}
