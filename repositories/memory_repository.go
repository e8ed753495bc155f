package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dosada05/tennis-roundrobin/models"
)

// memoryTournamentRepository keeps tournaments in process memory. It is used
// when no DATABASE_URL is configured and in tests.
type memoryTournamentRepository struct {
	mu          sync.RWMutex
	tournaments map[string]*models.Tournament
}

func NewMemoryTournamentRepository() TournamentRepository {
	return &memoryTournamentRepository{tournaments: make(map[string]*models.Tournament)}
}

func copyTournament(t *models.Tournament) *models.Tournament {
	out := *t
	out.Roster = append([]string(nil), t.Roster...)
	out.Schedule = t.Schedule.Clone()
	out.Results = make([]models.MatchResult, len(t.Results))
	for i, r := range t.Results {
		r.Sets = append([]models.SetScore(nil), r.Sets...)
		out.Results[i] = r
	}
	return &out
}

func (r *memoryTournamentRepository) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[t.ID]; ok {
		return fmt.Errorf("%w: %s", ErrTournamentConflict, t.ID)
	}
	r.tournaments[t.ID] = copyTournament(t)
	return nil
}

func (r *memoryTournamentRepository) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return copyTournament(t), nil
}

func (r *memoryTournamentRepository) UpdateRoster(_ context.Context, id string, roster []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.Roster = append([]string(nil), roster...)
	return nil
}

func (r *memoryTournamentRepository) SaveSchedule(_ context.Context, id string, schedule *models.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	t.Schedule = schedule.Clone()
	return nil
}

func (r *memoryTournamentRepository) AddResult(_ context.Context, id string, res *models.MatchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return ErrTournamentNotFound
	}
	key := res.Pairing().Key()
	for _, existing := range t.Results {
		if existing.Pairing().Key() == key {
			return fmt.Errorf("%w: %s vs %s", ErrResultConflict, res.Player1, res.Player2)
		}
	}
	stored := *res
	stored.Sets = append([]models.SetScore(nil), res.Sets...)
	t.Results = append(t.Results, stored)
	return nil
}
