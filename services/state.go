package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/Dosada05/tennis-roundrobin/brackets"
	"github.com/Dosada05/tennis-roundrobin/models"
	"github.com/Dosada05/tennis-roundrobin/scoring"
	"github.com/Dosada05/tennis-roundrobin/standings"
)

// TournamentState is everything one tournament session mutates: the roster, the
// schedule and the recorded results. It is not safe for concurrent use; the
// service serializes access per tournament.
type TournamentState struct {
	ID        string
	Name      string
	Roster    []string
	Rules     scoring.Rules
	Schedule  *models.Schedule
	Results   *ResultStore
	CreatedAt time.Time
}

func NewTournamentState(id, name string, roster []string, rules scoring.Rules) (*TournamentState, error) {
	if err := validateRoster(roster, rules); err != nil {
		return nil, err
	}
	return &TournamentState{
		ID:        id,
		Name:      name,
		Roster:    append([]string(nil), roster...),
		Rules:     rules,
		Results:   NewResultStore(rules),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// StateFromTournament rebuilds a session from its persisted form. Stored results
// were validated when recorded and are only re-indexed here.
func StateFromTournament(t *models.Tournament, rules scoring.Rules) (*TournamentState, error) {
	state := &TournamentState{
		ID:        t.ID,
		Name:      t.Name,
		Roster:    append([]string(nil), t.Roster...),
		Rules:     rules,
		Schedule:  t.Schedule,
		Results:   NewResultStore(rules),
		CreatedAt: t.CreatedAt,
	}
	for _, r := range t.Results {
		if err := state.Results.Add(r); err != nil {
			return nil, fmt.Errorf("tournament %s: corrupt result history: %w", t.ID, err)
		}
	}
	return state, nil
}

func validateRoster(roster []string, rules scoring.Rules) error {
	if len(roster) < rules.MinPlayers || len(roster) > rules.MaxPlayers {
		return fmt.Errorf("%w: need between %d and %d players, got %d", ErrRosterInvalid, rules.MinPlayers, rules.MaxPlayers, len(roster))
	}
	seen := make(map[string]bool, len(roster))
	for _, p := range roster {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: empty player name", ErrRosterInvalid)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate player %q", ErrRosterInvalid, p)
		}
		seen[p] = true
	}
	return nil
}

func (t *TournamentState) HasPlayer(player string) bool {
	return lo.Contains(t.Roster, player)
}

// AddPlayer extends the roster; only allowed before a schedule exists.
func (t *TournamentState) AddPlayer(name string) error {
	if t.Schedule != nil {
		return ErrRosterLocked
	}
	if len(t.Roster) >= t.Rules.MaxPlayers {
		return fmt.Errorf("%w: limit is %d", ErrRosterFull, t.Rules.MaxPlayers)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty player name", ErrRosterInvalid)
	}
	if t.HasPlayer(name) {
		return fmt.Errorf("%w: %s", ErrPlayerExists, name)
	}
	t.Roster = append(t.Roster, name)
	return nil
}

// GenerateSchedule replaces the schedule wholesale. Recorded results stay valid
// because the roster, and so the pairing set, cannot change once scheduled.
func (t *TournamentState) GenerateSchedule(gen brackets.ScheduleGenerator) error {
	schedule, err := gen.GenerateSchedule(brackets.GenerateScheduleParams{Players: t.Roster})
	if err != nil {
		return err
	}
	t.Schedule = schedule
	return nil
}

func (t *TournamentState) requireSchedule() error {
	if t.Schedule == nil {
		return ErrScheduleNotGenerated
	}
	return nil
}

func (t *TournamentState) RecordResult(p1, p2, score string) (models.MatchResult, error) {
	return t.Results.Record(t.Schedule, p1, p2, score)
}

func (t *TournamentState) LookupResult(p1, p2 string) (models.MatchResult, bool) {
	return t.Results.Lookup(p1, p2)
}

// Reschedule moves an unplayed pairing to another day.
func (t *TournamentState) Reschedule(p1, p2 string, targetDay int) error {
	if err := t.requireSchedule(); err != nil {
		return err
	}
	key := models.KeyOf(p1, p2)
	if t.Results.Played(key) {
		return fmt.Errorf("%w: %s vs %s", ErrPairingAlreadyPlayed, p1, p2)
	}
	days, err := brackets.Reschedule(t.Schedule.Days, key, targetDay)
	if err != nil {
		return err
	}
	t.Schedule.Days = days
	return nil
}

func (t *TournamentState) MarkDayCompleted(day int) error {
	if err := t.requireSchedule(); err != nil {
		return err
	}
	return brackets.MarkDayCompleted(t.Schedule.Days, day)
}

func (t *TournamentState) NextIncompleteDay() (*models.Day, bool) {
	if t.Schedule == nil {
		return nil, false
	}
	return brackets.NextIncompleteDay(t.Schedule.Days)
}

func (t *TournamentState) Standings() []models.StandingEntry {
	return standings.Calculate(t.Roster, t.Results.All())
}

// CompleteRanking ranks the players in the order they first appear in the schedule.
func (t *TournamentState) CompleteRanking() []models.StandingEntry {
	return standings.Calculate(t.Schedule.Players(), t.Results.All())
}

func (t *TournamentState) PlayerRanking(player string) int {
	scheduled := false
	if t.Schedule != nil {
		scheduled = lo.Contains(t.Schedule.Players(), player)
	}
	return standings.Rank(t.Standings(), player, scheduled)
}

func (t *TournamentState) PlayerStatistics(player string) models.PlayerStats {
	return standings.PlayerStats(player, t.Results.All())
}

func (t *TournamentState) PlayerMatches(player string) []models.PlayerMatch {
	return t.Results.PlayerMatches(player)
}

func (t *TournamentState) Fairness() []brackets.PlayerFairness {
	if t.Schedule == nil {
		return []brackets.PlayerFairness{}
	}
	return brackets.Fairness(t.Schedule.Rounds, t.Roster)
}

func (t *TournamentState) matchesTotal() int {
	n := len(t.Roster)
	return n * (n - 1) / 2
}

func (t *TournamentState) Status() models.TournamentStatus {
	switch {
	case t.Schedule == nil:
		return models.StatusRegistration
	case t.Results.Len() >= t.matchesTotal():
		return models.StatusCompleted
	default:
		return models.StatusActive
	}
}

func (t *TournamentState) Summary() models.TournamentSummary {
	summary := models.TournamentSummary{
		ID:            t.ID,
		Name:          t.Name,
		Roster:        append([]string(nil), t.Roster...),
		Status:        t.Status(),
		MatchesTotal:  t.matchesTotal(),
		MatchesPlayed: t.Results.Len(),
		CreatedAt:     t.CreatedAt,
	}
	if t.Schedule != nil {
		summary.DaysTotal = len(t.Schedule.Days)
		if day, ok := t.NextIncompleteDay(); ok {
			n := day.Number
			summary.NextDay = &n
		}
	}
	return summary
}

// Clone returns a deep copy so a mutation can be prepared without touching the live state.
func (t *TournamentState) Clone() *TournamentState {
	return &TournamentState{
		ID:        t.ID,
		Name:      t.Name,
		Roster:    append([]string(nil), t.Roster...),
		Rules:     t.Rules,
		Schedule:  t.Schedule.Clone(),
		Results:   t.Results.Clone(),
		CreatedAt: t.CreatedAt,
	}
}

// Snapshot converts the state into its persisted form.
func (t *TournamentState) Snapshot() *models.Tournament {
	return &models.Tournament{
		ID:        t.ID,
		Name:      t.Name,
		Roster:    append([]string(nil), t.Roster...),
		Status:    t.Status(),
		CreatedAt: t.CreatedAt,
		Schedule:  t.Schedule.Clone(),
		Results:   t.Results.All(),
	}
}
