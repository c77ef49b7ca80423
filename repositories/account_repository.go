package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/spikezone/models"
)

var ErrAccountNotFound = errors.New("account not found")

type AccountRepository interface {
	// Upsert создаёт аккаунт по uid или обновляет непустые email/display_name.
	// Роль при этом не меняется.
	Upsert(ctx context.Context, account *models.Account) error
	GetByUID(ctx context.Context, uid string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	UpdateRole(ctx context.Context, id int, role models.UserRole) (*models.Account, error)
	UpdateRoleByUID(ctx context.Context, uid string, role models.UserRole) (*models.Account, error)
}

type postgresAccountRepository struct {
	db *sql.DB
}

func NewPostgresAccountRepository(db *sql.DB) AccountRepository {
	return &postgresAccountRepository{db: db}
}

const accountColumns = `id, uid, email, display_name, role, created_at, updated_at`

func scanAccount(row rowScanner, a *models.Account) error {
	return row.Scan(&a.ID, &a.UID, &a.Email, &a.DisplayName, &a.Role, &a.CreatedAt, &a.UpdatedAt)
}

func (r *postgresAccountRepository) Upsert(ctx context.Context, a *models.Account) error {
	query := `
		INSERT INTO accounts (uid, email, display_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (uid) DO UPDATE SET
			email = COALESCE(NULLIF(EXCLUDED.email, ''), accounts.email),
			display_name = COALESCE(NULLIF(EXCLUDED.display_name, ''), accounts.display_name),
			updated_at = CASE
				WHEN COALESCE(NULLIF(EXCLUDED.email, ''), accounts.email) IS DISTINCT FROM accounts.email
				  OR COALESCE(NULLIF(EXCLUDED.display_name, ''), accounts.display_name) IS DISTINCT FROM accounts.display_name
				THEN NOW() ELSE accounts.updated_at END
		RETURNING ` + accountColumns

	role := a.Role
	if !role.Valid() {
		role = models.RoleUser
	}

	err := scanAccount(r.db.QueryRowContext(ctx, query, a.UID, a.Email, a.DisplayName, role), a)
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

func (r *postgresAccountRepository) GetByUID(ctx context.Context, uid string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE uid = $1`
	return r.findOne(ctx, query, uid)
}

func (r *postgresAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var a models.Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

func (r *postgresAccountRepository) UpdateRole(ctx context.Context, id int, role models.UserRole) (*models.Account, error) {
	query := `UPDATE accounts SET role = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + accountColumns
	return r.findOne(ctx, query, role, id)
}

func (r *postgresAccountRepository) UpdateRoleByUID(ctx context.Context, uid string, role models.UserRole) (*models.Account, error) {
	query := `UPDATE accounts SET role = $1, updated_at = NOW() WHERE uid = $2 RETURNING ` + accountColumns
	return r.findOne(ctx, query, role, uid)
}

func (r *postgresAccountRepository) findOne(ctx context.Context, query string, args ...interface{}) (*models.Account, error) {
	a := &models.Account{}
	err := scanAccount(r.db.QueryRowContext(ctx, query, args...), a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return a, nil
}
