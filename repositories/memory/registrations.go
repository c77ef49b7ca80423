package memory

import (
	"context"
	"sort"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

type registrationRepository struct {
	s *Store
}

// conflicts повторяет индексы (tournament_id, team_id) и (tournament_id, owner_uid).
func (r *registrationRepository) conflicts(reg *models.Registration) bool {
	for id, other := range r.s.registrations {
		if id == reg.ID || other.TournamentID != reg.TournamentID {
			continue
		}
		if other.TeamID == reg.TeamID || other.OwnerUID == reg.OwnerUID {
			return true
		}
	}
	return false
}

func (r *registrationRepository) Create(_ context.Context, reg *models.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	reg.ID = 0
	if r.conflicts(reg) {
		return repositories.ErrRegistrationConflict
	}
	now := r.s.timestamp()
	reg.ID = r.s.id()
	reg.CreatedAt = now
	reg.UpdatedAt = now
	c := *reg
	r.s.registrations[reg.ID] = &c
	return nil
}

func (r *registrationRepository) FindByTournamentAndOwner(_ context.Context, tournamentID int, ownerUID string) (*models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range sortedIDs(r.s.registrations) {
		reg := r.s.registrations[id]
		if reg.TournamentID == tournamentID && reg.OwnerUID == ownerUID {
			c := *reg
			return &c, nil
		}
	}
	return nil, repositories.ErrRegistrationNotFound
}

func (r *registrationRepository) UpdateSnapshot(_ context.Context, reg *models.Registration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.registrations[reg.ID]
	if !ok {
		return repositories.ErrRegistrationNotFound
	}

	next := *stored
	next.TournamentSlug = reg.TournamentSlug
	next.TeamID = reg.TeamID
	next.TeamName = reg.TeamName
	next.TeamSlug = reg.TeamSlug
	next.TeamLogoURL = reg.TeamLogoURL
	next.TeamBannerURL = reg.TeamBannerURL
	if r.conflicts(&next) {
		return repositories.ErrRegistrationConflict
	}
	next.UpdatedAt = r.s.timestamp()
	r.s.registrations[reg.ID] = &next
	reg.UpdatedAt = next.UpdatedAt
	return nil
}

func (r *registrationRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	regs, err := r.ListByTournament(ctx, tournamentID)
	if err != nil {
		return 0, err
	}
	return len(regs), nil
}

func (r *registrationRepository) ListByTournament(_ context.Context, tournamentID int) ([]models.Registration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	regs := make([]models.Registration, 0)
	for _, id := range sortedIDs(r.s.registrations) {
		if reg := r.s.registrations[id]; reg.TournamentID == tournamentID {
			regs = append(regs, *reg)
		}
	}
	sort.SliceStable(regs, func(i, j int) bool {
		if !regs[i].CreatedAt.Equal(regs[j].CreatedAt) {
			return regs[i].CreatedAt.Before(regs[j].CreatedAt)
		}
		return regs[i].ID < regs[j].ID
	})
	return regs, nil
}

func (r *registrationRepository) deleteWhere(match func(*models.Registration) bool) int64 {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, reg := range r.s.registrations {
		if match(reg) {
			delete(r.s.registrations, id)
			n++
		}
	}
	return n
}

func (r *registrationRepository) DeleteByTournament(_ context.Context, tournamentID int) (int64, error) {
	return r.deleteWhere(func(reg *models.Registration) bool { return reg.TournamentID == tournamentID }), nil
}

func (r *registrationRepository) DeleteByTeam(_ context.Context, teamID int) (int64, error) {
	return r.deleteWhere(func(reg *models.Registration) bool { return reg.TeamID == teamID }), nil
}
