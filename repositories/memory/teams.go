package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

type teamRepository struct {
	s *Store
}

// checkUnique повторяет уникальные индексы teams_owner_uid_key,
// teams_name_lower_key и teams_slug_key. Вызывается под мьютексом.
func (r *teamRepository) checkUnique(t *models.Team) error {
	for id, other := range r.s.teams {
		if id == t.ID {
			continue
		}
		switch {
		case other.OwnerUID == t.OwnerUID:
			return repositories.ErrTeamOwnerConflict
		case other.NameLower == t.NameLower:
			return repositories.ErrTeamNameConflict
		case other.Slug == t.Slug:
			return repositories.ErrTeamSlugConflict
		}
	}
	return nil
}

func (r *teamRepository) Create(_ context.Context, t *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.ID = 0
	if err := r.checkUnique(t); err != nil {
		return err
	}

	now := r.s.timestamp()
	t.ID = r.s.id()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.s.teams[t.ID] = copyTeam(t)
	return nil
}

func (r *teamRepository) find(match func(*models.Team) bool) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range sortedIDs(r.s.teams) {
		if t := r.s.teams[id]; match(t) {
			return copyTeam(t), nil
		}
	}
	return nil, repositories.ErrTeamNotFound
}

func (r *teamRepository) GetByID(_ context.Context, id int) (*models.Team, error) {
	return r.find(func(t *models.Team) bool { return t.ID == id })
}

func (r *teamRepository) GetByOwner(_ context.Context, ownerUID string) (*models.Team, error) {
	return r.find(func(t *models.Team) bool { return t.OwnerUID == ownerUID })
}

func (r *teamRepository) GetBySlug(_ context.Context, slug string) (*models.Team, error) {
	return r.find(func(t *models.Team) bool { return t.Slug == slug })
}

func (r *teamRepository) ExistsByNameLower(_ context.Context, nameLower string) (bool, error) {
	_, err := r.find(func(t *models.Team) bool { return t.NameLower == nameLower })
	return err == nil, nil
}

func (r *teamRepository) ExistsBySlug(_ context.Context, slug string, excludeID int) (bool, error) {
	_, err := r.find(func(t *models.Team) bool { return t.Slug == slug && t.ID != excludeID })
	return err == nil, nil
}

func matchTeam(t *models.Team, filter repositories.ListTeamsFilter, ids map[int]bool) bool {
	if filter.Status != nil && t.Status != *filter.Status {
		return false
	}
	if filter.IDs != nil && !ids[t.ID] {
		return false
	}
	return true
}

func (r *teamRepository) List(_ context.Context, filter repositories.ListTeamsFilter) ([]models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make(map[int]bool, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = true
	}

	teams := make([]models.Team, 0)
	for _, id := range sortedIDs(r.s.teams) {
		if t := r.s.teams[id]; matchTeam(t, filter, ids) {
			teams = append(teams, *copyTeam(t))
		}
	}
	// created_at DESC, id DESC
	sort.SliceStable(teams, func(i, j int) bool {
		if !teams[i].CreatedAt.Equal(teams[j].CreatedAt) {
			return teams[i].CreatedAt.After(teams[j].CreatedAt)
		}
		return teams[i].ID > teams[j].ID
	})
	return teams, nil
}

func (r *teamRepository) Count(ctx context.Context, filter repositories.ListTeamsFilter) (int, error) {
	teams, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(teams), nil
}

func (r *teamRepository) Update(_ context.Context, t *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.teams[t.ID]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	t.OwnerUID = stored.OwnerUID
	if err := r.checkUnique(t); err != nil {
		return err
	}

	t.CreatedAt = stored.CreatedAt
	t.UpdatedAt = r.s.timestamp()
	r.s.teams[t.ID] = copyTeam(t)
	return nil
}

func (r *teamRepository) UpdateModeration(_ context.Context, id int, status models.TeamStatus, adminNote string) (*models.Team, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	t.Status = status
	t.AdminNote = adminNote
	t.UpdatedAt = r.s.timestamp()
	return copyTeam(t), nil
}

func (r *teamRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.s.teams, id)
	return nil
}
