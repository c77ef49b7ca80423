package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/spikezone/identity"
	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

type AccountService interface {
	Sync(ctx context.Context, id identity.Identity) (*models.Account, error)
	GetByUID(ctx context.Context, uid string) (*models.Account, error)
	RequireAdmin(ctx context.Context, uid string) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	SetRole(ctx context.Context, accountID int, role models.UserRole) (*models.Account, error)
	GrantAdmin(ctx context.Context, uid string) (*models.Account, error)
}

type accountService struct {
	accountRepo repositories.AccountRepository
	logger      *slog.Logger
}

func NewAccountService(accountRepo repositories.AccountRepository, logger *slog.Logger) AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &accountService{accountRepo: accountRepo, logger: logger}
}

// Sync создаёт аккаунт при первом входе; повторные вызовы обновляют
// только непустые email и имя. Роль не меняется.
func (s *accountService) Sync(ctx context.Context, id identity.Identity) (*models.Account, error) {
	uid := strings.TrimSpace(id.UID)
	if uid == "" {
		return nil, ErrUnauthorized
	}

	account := &models.Account{
		UID:         uid,
		Email:       strings.TrimSpace(id.Email),
		DisplayName: strings.TrimSpace(id.DisplayName),
		Role:        models.RoleUser,
	}
	if err := s.accountRepo.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to sync account %s: %w", uid, err)
	}
	return account, nil
}

func (s *accountService) GetByUID(ctx context.Context, uid string) (*models.Account, error) {
	account, err := s.accountRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account %s: %w", uid, err)
	}
	return account, nil
}

func (s *accountService) RequireAdmin(ctx context.Context, uid string) (*models.Account, error) {
	account, err := s.accountRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountMissing
		}
		return nil, fmt.Errorf("failed to get account %s: %w", uid, err)
	}
	if !account.IsAdmin() {
		return nil, ErrAdminRequired
	}
	return account, nil
}

func (s *accountService) List(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.accountRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []models.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) SetRole(ctx context.Context, accountID int, role models.UserRole) (*models.Account, error) {
	if !role.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"role": "role must be user or admin"}}
	}

	account, err := s.accountRepo.UpdateRole(ctx, accountID, role)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update role of account %d: %w", accountID, err)
	}

	s.logger.InfoContext(ctx, "account role changed", slog.Int("account_id", account.ID), slog.String("role", string(role)))
	return account, nil
}

func (s *accountService) GrantAdmin(ctx context.Context, uid string) (*models.Account, error) {
	uid = strings.TrimSpace(uid)
	if uid == "" {
		return nil, &ValidationError{Fields: map[string]string{"uid": "uid is required"}}
	}

	account, err := s.accountRepo.UpdateRoleByUID(ctx, uid, models.RoleAdmin)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to grant admin to %s: %w", uid, err)
	}

	s.logger.InfoContext(ctx, "admin role granted", slog.String("uid", uid))
	return account, nil
}
