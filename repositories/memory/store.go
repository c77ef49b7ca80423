// Package memory — хранилище в памяти с теми же уникальными индексами,
// что и схема Postgres. Используется для локального запуска и в тестах.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/spikezone/models"
	"github.com/Dosada05/spikezone/repositories"
)

// Store держит все четыре коллекции под одним мьютексом, поэтому каждая
// запись атомарна, а проверки уникальности выполняются в момент записи.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	nextID int

	accounts      map[int]*models.Account
	teams         map[int]*models.Team
	tournaments   map[int]*models.Tournament
	registrations map[int]*models.Registration
}

func NewStore() *Store {
	return &Store{
		now:           time.Now,
		accounts:      make(map[int]*models.Account),
		teams:         make(map[int]*models.Team),
		tournaments:   make(map[int]*models.Tournament),
		registrations: make(map[int]*models.Registration),
	}
}

// SetClock подменяет источник времени для created_at/updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Accounts() repositories.AccountRepository {
	return &accountRepository{s: s}
}

func (s *Store) Teams() repositories.TeamRepository {
	return &teamRepository{s: s}
}

func (s *Store) Tournaments() repositories.TournamentRepository {
	return &tournamentRepository{s: s}
}

func (s *Store) Registrations() repositories.RegistrationRepository {
	return &registrationRepository{s: s}
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC()
}

func copyTeam(t *models.Team) *models.Team {
	c := *t
	c.Members = append([]models.Member{}, t.Members...)
	return &c
}

func copyTournament(t *models.Tournament) *models.Tournament {
	c := *t
	if t.EventEndAt != nil {
		end := *t.EventEndAt
		c.EventEndAt = &end
	}
	return &c
}

func sortedIDs[T any](m map[int]T) []int {
	ids := make([]int, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
