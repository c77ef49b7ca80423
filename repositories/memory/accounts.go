package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

type accountRepository struct {
	s *Store
}

func (r *accountRepository) Upsert(_ context.Context, a *models.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.accounts {
		if existing.UID != a.UID {
			continue
		}
		changed := false
		if a.Email != "" && a.Email != existing.Email {
			existing.Email = a.Email
			changed = true
		}
		if a.DisplayName != "" && a.DisplayName != existing.DisplayName {
			existing.DisplayName = a.DisplayName
			changed = true
		}
		if changed {
			existing.UpdatedAt = r.s.timestamp()
		}
		*a = *existing
		return nil
	}

	role := a.Role
	if !role.Valid() {
		role = models.RoleUser
	}
	now := r.s.timestamp()
	stored := &models.Account{
		ID:          r.s.id(),
		UID:         a.UID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.s.accounts[stored.ID] = stored
	*a = *stored
	return nil
}

func (r *accountRepository) GetByUID(_ context.Context, uid string) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, a := range r.s.accounts {
		if a.UID == uid {
			c := *a
			return &c, nil
		}
	}
	return nil, repositories.ErrAccountNotFound
}

func (r *accountRepository) List(_ context.Context) ([]models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	accounts := make([]models.Account, 0, len(r.s.accounts))
	for _, id := range sortedIDs(r.s.accounts) {
		accounts = append(accounts, *r.s.accounts[id])
	}
	sort.SliceStable(accounts, func(i, j int) bool {
		return accounts[i].ID > accounts[j].ID
	})
	return accounts, nil
}

func (r *accountRepository) UpdateRole(_ context.Context, id int, role models.UserRole) (*models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	a.Role = role
	a.UpdatedAt = r.s.timestamp()
	c := *a
	return &c, nil
}

func (r *accountRepository) UpdateRoleByUID(ctx context.Context, uid string, role models.UserRole) (*models.Account, error) {
	a, err := r.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	return r.UpdateRole(ctx, a.ID, role)
}
