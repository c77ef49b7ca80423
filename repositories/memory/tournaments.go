package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

type tournamentRepository struct {
	s *Store
}

func (r *tournamentRepository) slugTaken(slug string, excludeID int) bool {
	for id, t := range r.s.tournaments {
		if id != excludeID && t.Slug == slug {
			return true
		}
	}
	return false
}

func (r *tournamentRepository) Create(_ context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slugTaken(t.Slug, 0) {
		return repositories.ErrTournamentSlugConflict
	}
	now := r.s.timestamp()
	t.ID = r.s.id()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.s.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r *tournamentRepository) find(match func(*models.Tournament) bool) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range sortedIDs(r.s.tournaments) {
		if t := r.s.tournaments[id]; match(t) {
			return copyTournament(t), nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *tournamentRepository) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	return r.find(func(t *models.Tournament) bool { return t.ID == id })
}

func (r *tournamentRepository) GetBySlug(_ context.Context, slug string) (*models.Tournament, error) {
	return r.find(func(t *models.Tournament) bool { return t.Slug == slug })
}

func (r *tournamentRepository) ExistsBySlug(_ context.Context, slug string, excludeID int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.slugTaken(slug, excludeID), nil
}

func (r *tournamentRepository) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	tournaments := make([]models.Tournament, 0)
	for _, id := range sortedIDs(r.s.tournaments) {
		t := r.s.tournaments[id]
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.EventStartFrom != nil && t.EventStartAt.Before(*filter.EventStartFrom) {
			continue
		}
		tournaments = append(tournaments, *copyTournament(t))
	}

	sort.SliceStable(tournaments, func(i, j int) bool {
		a, b := tournaments[i], tournaments[j]
		if filter.Order == repositories.OrderEventStartAsc {
			if !a.EventStartAt.Equal(b.EventStartAt) {
				return a.EventStartAt.Before(b.EventStartAt)
			}
			return a.ID < b.ID
		}
		if !a.EventStartAt.Equal(b.EventStartAt) {
			return a.EventStartAt.After(b.EventStartAt)
		}
		return a.ID > b.ID
	})
	return tournaments, nil
}

func (r *tournamentRepository) Count(ctx context.Context, filter repositories.ListTournamentsFilter) (int, error) {
	list, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func (r *tournamentRepository) Update(_ context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.tournaments[t.ID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if r.slugTaken(t.Slug, t.ID) {
		return repositories.ErrTournamentSlugConflict
	}
	t.CreatedAt = stored.CreatedAt
	t.CreatedByUID = stored.CreatedByUID
	t.UpdatedAt = r.s.timestamp()
	r.s.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r *tournamentRepository) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	return nil
}
