package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Dosada05/tennis-roundrobin/brackets"
	"github.com/Dosada05/tennis-roundrobin/metrics"
	"github.com/Dosada05/tennis-roundrobin/models"
	"github.com/Dosada05/tennis-roundrobin/repositories"
	"github.com/Dosada05/tennis-roundrobin/scoring"
	"github.com/Dosada05/tennis-roundrobin/storage"
)

// Notifier receives tournament events after a change has been persisted.
type Notifier interface {
	Publish(tournamentID, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(string, string, interface{}) {}

type CreateTournamentInput struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Players []string `json:"players" validate:"required,dive,required,max=64"`
}

type AddPlayerInput struct {
	Name string `json:"name" validate:"required,max=64"`
}

type RecordResultInput struct {
	Player1 string `json:"player1" validate:"required"`
	Player2 string `json:"player2" validate:"required"`
	Score   string `json:"score"`
}

type RescheduleInput struct {
	Player1 string `json:"player1" validate:"required"`
	Player2 string `json:"player2" validate:"required"`
	Day     int    `json:"day"`
}

// StandingsExport is the document uploaded by ExportStandings.
type StandingsExport struct {
	Tournament models.TournamentSummary `json:"tournament"`
	Standings  []models.StandingEntry   `json:"standings"`
	Results    []models.MatchResult     `json:"results"`
	ExportedAt time.Time                `json:"exported_at"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.TournamentSummary, error)
	GetTournament(ctx context.Context, id string) (*models.TournamentSummary, error)
	AddPlayer(ctx context.Context, id string, input AddPlayerInput) (*models.TournamentSummary, error)

	GenerateSchedule(ctx context.Context, id string) (*models.Schedule, error)
	GetSchedule(ctx context.Context, id string) (*models.Schedule, error)
	GetFairness(ctx context.Context, id string) ([]brackets.PlayerFairness, error)
	// NextIncompleteDay returns nil when every day is completed.
	NextIncompleteDay(ctx context.Context, id string) (*models.Day, error)
	MarkDayCompleted(ctx context.Context, id string, day int) error
	Reschedule(ctx context.Context, id string, input RescheduleInput) (*models.Schedule, error)

	RecordResult(ctx context.Context, id string, input RecordResultInput) (*models.MatchResult, error)
	LookupResult(ctx context.Context, id, player1, player2 string) (*models.MatchResult, error)

	Standings(ctx context.Context, id string) ([]models.StandingEntry, error)
	CompleteRanking(ctx context.Context, id string) ([]models.StandingEntry, error)
	PlayerStatistics(ctx context.Context, id, player string) (*models.PlayerStats, error)
	PlayerMatches(ctx context.Context, id, player string) ([]models.PlayerMatch, error)
	PlayerRanking(ctx context.Context, id, player string) (int, error)
	ExportStandings(ctx context.Context, id string) (*storage.UploadResult, error)
}

type session struct {
	mu    sync.Mutex
	state *TournamentState
}

type tournamentService struct {
	repo      repositories.TournamentRepository
	generator brackets.ScheduleGenerator
	notifier  Notifier
	uploader  storage.FileUploader
	metrics   *metrics.Metrics
	rules     scoring.Rules
	logger    *slog.Logger
	validate  *validator.Validate
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewTournamentService wires the service. notifier, uploader and m may be nil:
// events are dropped, export is disabled and counters go unregistered.
func NewTournamentService(
	repo repositories.TournamentRepository,
	generator brackets.ScheduleGenerator,
	notifier Notifier,
	uploader storage.FileUploader,
	m *metrics.Metrics,
	rules scoring.Rules,
	logger *slog.Logger,
) TournamentService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &tournamentService{
		repo:      repo,
		generator: generator,
		notifier:  notifier,
		uploader:  uploader,
		metrics:   m,
		rules:     rules,
		logger:    logger,
		validate:  NewValidator(),
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

func (s *tournamentService) validateInput(input interface{}) error {
	return validationError(s.validate.Struct(input))
}

// session returns the live session for id, loading it from the repository on first use.
func (s *tournamentService) session(ctx context.Context, id string) (*session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
		}
		return nil, fmt.Errorf("failed to load tournament %s: %w", id, err)
	}
	state, err := StateFromTournament(t, s.rules)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Другая горутина могла загрузить сессию раньше
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	sess = &session{state: state}
	s.sessions[id] = sess
	return sess, nil
}

// view runs fn against the live state under the session lock.
func (s *tournamentService) view(ctx context.Context, id string, fn func(st *TournamentState) error) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return fn(sess.state)
}

// mutate applies a change to a copy of the state, persists it and only then
// swaps it in. A failure at any step leaves the live state untouched.
func (s *tournamentService) mutate(
	ctx context.Context,
	id string,
	apply func(next *TournamentState) error,
	persist func(ctx context.Context, next *TournamentState) error,
) (*TournamentState, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	next := sess.state.Clone()
	if err := apply(next); err != nil {
		return nil, err
	}
	if err := persist(ctx, next); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist tournament change", slog.String("tournament_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("failed to persist tournament %s: %w", id, err)
	}
	sess.state = next
	return next, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.TournamentSummary, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	state, err := NewTournamentState(uuid.NewString(), input.Name, input.Players, s.rules)
	if err != nil {
		return nil, err
	}
	state.CreatedAt = s.now().UTC()

	if err := s.repo.Create(ctx, state.Snapshot()); err != nil {
		return nil, fmt.Errorf("failed to store tournament: %w", err)
	}

	s.mu.Lock()
	s.sessions[state.ID] = &session{state: state}
	s.mu.Unlock()

	s.metrics.TournamentsCreated.Inc()
	s.logger.InfoContext(ctx, "tournament created", slog.String("tournament_id", state.ID), slog.Int("players", len(state.Roster)))

	summary := state.Summary()
	return &summary, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, id string) (*models.TournamentSummary, error) {
	var summary models.TournamentSummary
	err := s.view(ctx, id, func(st *TournamentState) error {
		summary = st.Summary()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *tournamentService) AddPlayer(ctx context.Context, id string, input AddPlayerInput) (*models.TournamentSummary, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	next, err := s.mutate(ctx, id,
		func(next *TournamentState) error { return next.AddPlayer(input.Name) },
		func(ctx context.Context, next *TournamentState) error {
			return s.repo.UpdateRoster(ctx, id, next.Roster)
		},
	)
	if err != nil {
		return nil, err
	}
	summary := next.Summary()
	return &summary, nil
}

func (s *tournamentService) GenerateSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	next, err := s.mutate(ctx, id,
		func(next *TournamentState) error { return next.GenerateSchedule(s.generator) },
		func(ctx context.Context, next *TournamentState) error {
			return s.repo.SaveSchedule(ctx, id, next.Schedule)
		},
	)
	if err != nil {
		return nil, err
	}

	schedule := next.Schedule.Clone()
	s.metrics.SchedulesGenerated.Inc()
	s.logger.InfoContext(ctx, "schedule generated",
		slog.String("tournament_id", id),
		slog.String("generator", s.generator.GetName()),
		slog.Int("rounds", len(schedule.Rounds)),
		slog.Int("days", len(schedule.Days)),
	)
	s.notifier.Publish(id, brackets.EventScheduleGenerated, schedule)
	return schedule, nil
}

func (s *tournamentService) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	var schedule *models.Schedule
	err := s.view(ctx, id, func(st *TournamentState) error {
		if err := st.requireSchedule(); err != nil {
			return err
		}
		schedule = st.Schedule.Clone()
		return nil
	})
	return schedule, err
}

func (s *tournamentService) GetFairness(ctx context.Context, id string) ([]brackets.PlayerFairness, error) {
	var report []brackets.PlayerFairness
	err := s.view(ctx, id, func(st *TournamentState) error {
		if err := st.requireSchedule(); err != nil {
			return err
		}
		report = st.Fairness()
		return nil
	})
	return report, err
}

func (s *tournamentService) NextIncompleteDay(ctx context.Context, id string) (*models.Day, error) {
	var day *models.Day
	err := s.view(ctx, id, func(st *TournamentState) error {
		if err := st.requireSchedule(); err != nil {
			return err
		}
		if d, ok := st.NextIncompleteDay(); ok {
			copied := *d
			copied.Matches = append([]models.Pairing(nil), d.Matches...)
			day = &copied
		}
		return nil
	})
	return day, err
}

func (s *tournamentService) MarkDayCompleted(ctx context.Context, id string, day int) error {
	next, err := s.mutate(ctx, id,
		func(next *TournamentState) error { return next.MarkDayCompleted(day) },
		func(ctx context.Context, next *TournamentState) error {
			return s.repo.SaveSchedule(ctx, id, next.Schedule)
		},
	)
	if err != nil {
		return err
	}
	s.metrics.DaysCompleted.Inc()
	s.notifier.Publish(id, brackets.EventDayCompleted, next.Schedule.Day(day))
	return nil
}

func (s *tournamentService) Reschedule(ctx context.Context, id string, input RescheduleInput) (*models.Schedule, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	next, err := s.mutate(ctx, id,
		func(next *TournamentState) error { return next.Reschedule(input.Player1, input.Player2, input.Day) },
		func(ctx context.Context, next *TournamentState) error {
			return s.repo.SaveSchedule(ctx, id, next.Schedule)
		},
	)
	s.metrics.Reschedules.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.WarnContext(ctx, "reschedule rejected",
			slog.String("tournament_id", id),
			slog.String("player1", input.Player1),
			slog.String("player2", input.Player2),
			slog.Int("day", input.Day),
			slog.Any("error", err),
		)
		return nil, err
	}

	schedule := next.Schedule.Clone()
	s.notifier.Publish(id, brackets.EventMatchRescheduled, map[string]interface{}{
		"pairing": models.NewPairing(input.Player1, input.Player2),
		"day":     input.Day,
		"days":    schedule.Days,
	})
	return schedule, nil
}

func (s *tournamentService) RecordResult(ctx context.Context, id string, input RecordResultInput) (*models.MatchResult, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}
	var recorded models.MatchResult
	next, err := s.mutate(ctx, id,
		func(next *TournamentState) error {
			var err error
			recorded, err = next.RecordResult(input.Player1, input.Player2, input.Score)
			return err
		},
		func(ctx context.Context, next *TournamentState) error {
			err := s.repo.AddResult(ctx, id, &recorded)
			if errors.Is(err, repositories.ErrResultConflict) {
				return fmt.Errorf("%w: %w", ErrDuplicateResult, err)
			}
			return err
		},
	)
	s.metrics.ResultsRecorded.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "result recorded",
		slog.String("tournament_id", id),
		slog.String("player1", recorded.Player1),
		slog.String("player2", recorded.Player2),
		slog.String("score", recorded.Score),
	)
	s.notifier.Publish(id, brackets.EventResultRecorded, recorded)
	s.notifier.Publish(id, brackets.EventStandingsUpdated, next.Standings())
	return &recorded, nil
}

func (s *tournamentService) LookupResult(ctx context.Context, id, player1, player2 string) (*models.MatchResult, error) {
	var result models.MatchResult
	err := s.view(ctx, id, func(st *TournamentState) error {
		r, ok := st.LookupResult(player1, player2)
		if !ok {
			return fmt.Errorf("%w: %s vs %s", ErrResultNotFound, player1, player2)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *tournamentService) Standings(ctx context.Context, id string) ([]models.StandingEntry, error) {
	var entries []models.StandingEntry
	err := s.view(ctx, id, func(st *TournamentState) error {
		entries = st.Standings()
		return nil
	})
	return entries, err
}

func (s *tournamentService) CompleteRanking(ctx context.Context, id string) ([]models.StandingEntry, error) {
	var entries []models.StandingEntry
	err := s.view(ctx, id, func(st *TournamentState) error {
		entries = st.CompleteRanking()
		return nil
	})
	return entries, err
}

// withPlayer runs fn only for players on the roster.
func (s *tournamentService) withPlayer(ctx context.Context, id, player string, fn func(st *TournamentState)) error {
	return s.view(ctx, id, func(st *TournamentState) error {
		if !st.HasPlayer(player) {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
		}
		fn(st)
		return nil
	})
}

func (s *tournamentService) PlayerStatistics(ctx context.Context, id, player string) (*models.PlayerStats, error) {
	var stats models.PlayerStats
	err := s.withPlayer(ctx, id, player, func(st *TournamentState) {
		stats = st.PlayerStatistics(player)
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *tournamentService) PlayerMatches(ctx context.Context, id, player string) ([]models.PlayerMatch, error) {
	var matches []models.PlayerMatch
	err := s.withPlayer(ctx, id, player, func(st *TournamentState) {
		matches = st.PlayerMatches(player)
	})
	return matches, err
}

func (s *tournamentService) PlayerRanking(ctx context.Context, id, player string) (int, error) {
	var rank int
	err := s.withPlayer(ctx, id, player, func(st *TournamentState) {
		rank = st.PlayerRanking(player)
	})
	return rank, err
}

func (s *tournamentService) ExportStandings(ctx context.Context, id string) (*storage.UploadResult, error) {
	if s.uploader == nil {
		return nil, ErrExportUnavailable
	}

	exportedAt := s.now().UTC()
	var doc StandingsExport
	err := s.view(ctx, id, func(st *TournamentState) error {
		doc = StandingsExport{
			Tournament: st.Summary(),
			Standings:  st.Standings(),
			Results:    st.Results.All(),
			ExportedAt: exportedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings export: %w", err)
	}

	key := fmt.Sprintf("tournaments/%s/standings-%s.json", id, exportedAt.Format("20060102T150405Z"))
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	s.metrics.Exports.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		s.logger.ErrorContext(ctx, "standings export failed", slog.String("tournament_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("failed to upload standings export: %w", err)
	}

	s.logger.InfoContext(ctx, "standings exported", slog.String("tournament_id", id), slog.String("key", result.Key))
	return result, nil
}
