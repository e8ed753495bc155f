package services

import (
	"fmt"
	"time"

	"github.com/Dosada05/tennis-roundrobin/models"
	"github.com/Dosada05/tennis-roundrobin/scoring"
)

// ResultStore holds recorded match results keyed by unordered pairing, in
// recording order. It is not safe for concurrent use.
type ResultStore struct {
	rules   scoring.Rules
	results []models.MatchResult
	index   map[models.PairKey]int
	now     func() time.Time
}

func NewResultStore(rules scoring.Rules) *ResultStore {
	return &ResultStore{
		rules:   rules,
		results: make([]models.MatchResult, 0),
		index:   make(map[models.PairKey]int),
		now:     time.Now,
	}
}

// Check validates a result against the schedule and the scoring rules without
// storing it. Errors come in a fixed order: duplicate, not scheduled, format,
// illegal set, no unique winner.
func (s *ResultStore) Check(schedule *models.Schedule, p1, p2, score string) (models.MatchResult, error) {
	key := models.KeyOf(p1, p2)
	if _, ok := s.index[key]; ok {
		return models.MatchResult{}, fmt.Errorf("%w: %s vs %s", ErrDuplicateResult, p1, p2)
	}
	if p1 == p2 || !schedule.Contains(key) {
		return models.MatchResult{}, fmt.Errorf("%w: %s vs %s", ErrPairingNotScheduled, p1, p2)
	}

	sets, err := scoring.Parse(score, s.rules)
	if err != nil {
		return models.MatchResult{}, err
	}

	return models.MatchResult{
		Player1:    p1,
		Player2:    p2,
		Score:      score,
		Sets:       sets,
		RecordedAt: s.now().UTC(),
	}, nil
}

// Record validates and stores a result.
func (s *ResultStore) Record(schedule *models.Schedule, p1, p2, score string) (models.MatchResult, error) {
	result, err := s.Check(schedule, p1, p2, score)
	if err != nil {
		return models.MatchResult{}, err
	}
	if err := s.Add(result); err != nil {
		return models.MatchResult{}, err
	}
	return result, nil
}

// Add stores an already validated result. Only the at-most-once rule is enforced.
func (s *ResultStore) Add(result models.MatchResult) error {
	key := result.Pairing().Key()
	if _, ok := s.index[key]; ok {
		return fmt.Errorf("%w: %s vs %s", ErrDuplicateResult, result.Player1, result.Player2)
	}
	s.index[key] = len(s.results)
	s.results = append(s.results, result)
	return nil
}

// Lookup finds the result for a pairing regardless of argument order.
func (s *ResultStore) Lookup(p1, p2 string) (models.MatchResult, bool) {
	idx, ok := s.index[models.KeyOf(p1, p2)]
	if !ok {
		return models.MatchResult{}, false
	}
	return s.results[idx], true
}

func (s *ResultStore) Played(key models.PairKey) bool {
	_, ok := s.index[key]
	return ok
}

func (s *ResultStore) Len() int {
	return len(s.results)
}

// All returns a copy of the results in recording order.
func (s *ResultStore) All() []models.MatchResult {
	out := make([]models.MatchResult, len(s.results))
	copy(out, s.results)
	return out
}

// PlayerMatches lists every recorded match of the player from their side.
func (s *ResultStore) PlayerMatches(player string) []models.PlayerMatch {
	matches := make([]models.PlayerMatch, 0)
	for _, r := range s.results {
		p := r.Pairing()
		if !p.Involves(player) {
			continue
		}
		matches = append(matches, models.PlayerMatch{Opponent: p.Opponent(player), Result: r.Score})
	}
	return matches
}

func (s *ResultStore) Clone() *ResultStore {
	out := &ResultStore{
		rules:   s.rules,
		results: s.All(),
		index:   make(map[models.PairKey]int, len(s.index)),
		now:     s.now,
	}
	for k, v := range s.index {
		out.index[k] = v
	}
	return out
}
