package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-roundrobin/brackets"
	"github.com/Dosada05/tennis-roundrobin/metrics"
	"github.com/Dosada05/tennis-roundrobin/models"
	"github.com/Dosada05/tennis-roundrobin/repositories"
	"github.com/Dosada05/tennis-roundrobin/scoring"
	"github.com/Dosada05/tennis-roundrobin/storage"
)

type recordedEvent struct {
	tournamentID string
	eventType    string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (n *recordingNotifier) Publish(tournamentID, eventType string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, recordedEvent{tournamentID: tournamentID, eventType: eventType})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.eventType
	}
	return out
}

// flakyRepository fails AddResult while failResults is set.
type flakyRepository struct {
	repositories.TournamentRepository
	failResults bool
}

func (r *flakyRepository) AddResult(ctx context.Context, id string, res *models.MatchResult) error {
	if r.failResults {
		return errors.New("connection reset")
	}
	return r.TournamentRepository.AddResult(ctx, id, res)
}

type memoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (u *memoryUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = make(map[string][]byte)
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://files.example.com/" + key
}

type serviceFixture struct {
	svc      TournamentService
	repo     repositories.TournamentRepository
	notifier *recordingNotifier
	metrics  *metrics.Metrics
}

func newFixture(t *testing.T, repo repositories.TournamentRepository, uploader storage.FileUploader) serviceFixture {
	t.Helper()
	if repo == nil {
		repo = repositories.NewMemoryTournamentRepository()
	}
	notifier := &recordingNotifier{}
	m := metrics.New(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewTournamentService(repo, brackets.NewRoundRobinGenerator(), notifier, uploader, m, scoring.DefaultRules(), logger)
	return serviceFixture{svc: svc, repo: repo, notifier: notifier, metrics: m}
}

func (f serviceFixture) scheduledTournament(t *testing.T, players ...string) string {
	t.Helper()
	ctx := context.Background()
	summary, err := f.svc.CreateTournament(ctx, CreateTournamentInput{Name: "Club Cup", Players: players})
	require.NoError(t, err)
	_, err = f.svc.GenerateSchedule(ctx, summary.ID)
	require.NoError(t, err)
	return summary.ID
}

func TestTournamentServiceFlow(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	created, err := f.svc.CreateTournament(ctx, CreateTournamentInput{Name: "Club Cup", Players: []string{"Anna", "Max"}})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRegistration, created.Status)
	assert.NotEmpty(t, created.ID)

	_, err = f.svc.GetSchedule(ctx, created.ID)
	assert.ErrorIs(t, err, ErrScheduleNotGenerated)

	summary, err := f.svc.AddPlayer(ctx, created.ID, AddPlayerInput{Name: "Tom"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Anna", "Max", "Tom"}, summary.Roster)

	schedule, err := f.svc.GenerateSchedule(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, schedule.Rounds, 3)

	_, err = f.svc.AddPlayer(ctx, created.ID, AddPlayerInput{Name: "Lisa"})
	assert.ErrorIs(t, err, ErrRosterLocked)

	for _, in := range []RecordResultInput{
		{Player1: "Anna", Player2: "Max", Score: "6:4,6:3"},
		{Player1: "Anna", Player2: "Tom", Score: "6:2,6:4"},
		{Player1: "Max", Player2: "Tom", Score: "6:4,4:6,6:3"},
	} {
		_, err := f.svc.RecordResult(ctx, created.ID, in)
		require.NoError(t, err)
	}

	standings, err := f.svc.Standings(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, standings, 3)
	assert.Equal(t, "Anna", standings[0].Player)
	assert.Equal(t, "Max", standings[1].Player)
	assert.Equal(t, "Tom", standings[2].Player)

	got, err := f.svc.LookupResult(ctx, created.ID, "Tom", "Max")
	require.NoError(t, err)
	assert.Equal(t, "6:4,4:6,6:3", got.Score)

	rank, err := f.svc.PlayerRanking(ctx, created.ID, "Tom")
	require.NoError(t, err)
	assert.Equal(t, 3, rank)

	matches, err := f.svc.PlayerMatches(ctx, created.ID, "Max")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	final, err := f.svc.GetTournament(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, final.Status)
	assert.Equal(t, 3, final.MatchesPlayed)

	assert.Equal(t, []string{
		brackets.EventScheduleGenerated,
		brackets.EventResultRecorded, brackets.EventStandingsUpdated,
		brackets.EventResultRecorded, brackets.EventStandingsUpdated,
		brackets.EventResultRecorded, brackets.EventStandingsUpdated,
	}, f.notifier.types())
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.ResultsRecorded.WithLabelValues(metrics.OutcomeAccepted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.TournamentsCreated))
}

func TestTournamentServiceErrors(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	id := f.scheduledTournament(t, "Anna", "Max", "Tom")

	_, err := f.svc.GetTournament(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	_, err = f.svc.CreateTournament(ctx, CreateTournamentInput{Players: []string{"Anna", "Max"}})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "name")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.CreateTournament(ctx, CreateTournamentInput{Name: "Solo", Players: []string{"Anna"}})
	assert.ErrorIs(t, err, ErrRosterInvalid)

	_, err = f.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Anna", Player2: "Zoe", Score: "6:1,6:1"})
	assert.ErrorIs(t, err, ErrPairingNotScheduled)
	_, err = f.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Anna", Player2: "Max", Score: "6:1,1:6"})
	assert.ErrorIs(t, err, scoring.ErrNoUniqueWinner)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.ResultsRecorded.WithLabelValues(metrics.OutcomeRejected)))

	_, err = f.svc.LookupResult(ctx, id, "Anna", "Max")
	assert.ErrorIs(t, err, ErrResultNotFound)

	_, err = f.svc.PlayerStatistics(ctx, id, "Zoe")
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = f.svc.Reschedule(ctx, id, RescheduleInput{Player1: "Anna", Player2: "Max", Day: 0})
	assert.ErrorIs(t, err, brackets.ErrInvalidDayNumber)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Reschedules.WithLabelValues(metrics.OutcomeRejected)))

	assert.ErrorIs(t, f.svc.MarkDayCompleted(ctx, id, 42), brackets.ErrDayNotFound)

	_, err = f.svc.ExportStandings(ctx, id)
	assert.ErrorIs(t, err, ErrExportUnavailable)
}

func TestTournamentServiceDays(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	id := f.scheduledTournament(t, "Anna", "Max", "Tom", "Lisa")

	day, err := f.svc.NextIncompleteDay(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, 1, day.Number)

	schedule, err := f.svc.Reschedule(ctx, id, RescheduleInput{Player1: "Lisa", Player2: "Tom", Day: 4})
	require.NoError(t, err)
	require.NotNil(t, schedule.Day(4))

	for _, d := range schedule.Days {
		require.NoError(t, f.svc.MarkDayCompleted(ctx, id, d.Number))
	}
	day, err = f.svc.NextIncompleteDay(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, day)

	// изменения сохранены в репозитории
	stored, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, stored.Schedule.Day(4))
	assert.True(t, stored.Schedule.Day(4).Completed)

	fairness, err := f.svc.GetFairness(ctx, id)
	require.NoError(t, err)
	assert.Len(t, fairness, 4)
}

func TestTournamentServiceFailedPersistenceLeavesStateUntouched(t *testing.T) {
	repo := &flakyRepository{TournamentRepository: repositories.NewMemoryTournamentRepository()}
	f := newFixture(t, repo, nil)
	ctx := context.Background()
	id := f.scheduledTournament(t, "Anna", "Max", "Tom")

	repo.failResults = true
	_, err := f.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Anna", Player2: "Max", Score: "6:4,6:3"})
	require.Error(t, err)

	_, err = f.svc.LookupResult(ctx, id, "Anna", "Max")
	assert.ErrorIs(t, err, ErrResultNotFound)
	summary, err := f.svc.GetTournament(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, summary.MatchesPlayed)
	assert.NotContains(t, f.notifier.types(), brackets.EventResultRecorded)

	repo.failResults = false
	_, err = f.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Anna", Player2: "Max", Score: "6:4,6:3"})
	require.NoError(t, err)
}

func TestTournamentServiceReloadsFromRepository(t *testing.T) {
	repo := repositories.NewMemoryTournamentRepository()
	first := newFixture(t, repo, nil)
	ctx := context.Background()
	id := first.scheduledTournament(t, "Anna", "Max", "Tom")
	_, err := first.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Anna", Player2: "Max", Score: "6:4,6:3"})
	require.NoError(t, err)

	second := newFixture(t, repo, nil)
	got, err := second.svc.LookupResult(ctx, id, "Max", "Anna")
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Winner())

	_, err = second.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Max", Player2: "Anna", Score: "6:0,6:0"})
	assert.ErrorIs(t, err, ErrDuplicateResult)
}

func TestTournamentServiceConcurrentDuplicateResults(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	id := f.scheduledTournament(t, "Anna", "Max", "Tom")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Anna", Player2: "Max", Score: "6:4,6:3"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrDuplicateResult)
	}
	assert.Equal(t, 1, succeeded)
}

func TestTournamentServiceExport(t *testing.T) {
	uploader := &memoryUploader{}
	f := newFixture(t, nil, uploader)
	ctx := context.Background()
	id := f.scheduledTournament(t, "Anna", "Max")
	_, err := f.svc.RecordResult(ctx, id, RecordResultInput{Player1: "Max", Player2: "Anna", Score: "6:4,6:3"})
	require.NoError(t, err)

	upload, err := f.svc.ExportStandings(ctx, id)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(upload.Key, "tournaments/"+id+"/standings-"))
	assert.True(t, strings.HasSuffix(upload.Key, ".json"))

	var doc StandingsExport
	require.NoError(t, json.NewDecoder(bytes.NewReader(uploader.objects[upload.Key])).Decode(&doc))
	require.Len(t, doc.Standings, 2)
	assert.Equal(t, "Max", doc.Standings[0].Player)
	assert.Equal(t, id, doc.Tournament.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Exports.WithLabelValues(metrics.OutcomeAccepted)))
}
