package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-roundrobin/brackets"
	"github.com/Dosada05/tennis-roundrobin/models"
	"github.com/Dosada05/tennis-roundrobin/scoring"
)

func newState(t *testing.T, players ...string) *TournamentState {
	t.Helper()
	st, err := NewTournamentState("t1", "Club Cup", players, scoring.DefaultRules())
	require.NoError(t, err)
	return st
}

func TestNewTournamentStateValidatesRoster(t *testing.T) {
	eleven := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K"}
	tests := []struct {
		name   string
		roster []string
	}{
		{name: "single player", roster: []string{"Anna"}},
		{name: "too many players", roster: eleven},
		{name: "duplicate", roster: []string{"Anna", "Max", "Anna"}},
		{name: "blank name", roster: []string{"Anna", "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTournamentState("t1", "Cup", tt.roster, scoring.DefaultRules())
			assert.ErrorIs(t, err, ErrRosterInvalid)
		})
	}

	st := newState(t, "Anna", "Max")
	assert.Equal(t, models.StatusRegistration, st.Status())
}

func TestAddPlayer(t *testing.T) {
	st := newState(t, "Anna", "Max")

	require.NoError(t, st.AddPlayer("Tom"))
	assert.ErrorIs(t, st.AddPlayer("Tom"), ErrPlayerExists)
	assert.ErrorIs(t, st.AddPlayer(" "), ErrRosterInvalid)

	require.NoError(t, st.GenerateSchedule(brackets.NewRoundRobinGenerator()))
	assert.ErrorIs(t, st.AddPlayer("Lisa"), ErrRosterLocked)

	rules := scoring.DefaultRules()
	rules.MaxPlayers = 2
	full, err := NewTournamentState("t2", "Cup", []string{"Anna", "Max"}, rules)
	require.NoError(t, err)
	assert.ErrorIs(t, full.AddPlayer("Tom"), ErrRosterFull)
}

func TestStateLifecycle(t *testing.T) {
	st := newState(t, "Anna", "Max", "Tom", "Lisa")
	assert.ErrorIs(t, st.Reschedule("Anna", "Max", 2), ErrScheduleNotGenerated)
	assert.ErrorIs(t, st.MarkDayCompleted(1), ErrScheduleNotGenerated)
	for _, player := range []string{"Anna", "Max", "Tom", "Lisa"} {
		assert.Equal(t, 1, st.PlayerRanking(player), "nobody is scheduled yet: %s", player)
	}

	require.NoError(t, st.GenerateSchedule(brackets.NewRoundRobinGenerator()))
	assert.Equal(t, models.StatusActive, st.Status())
	assert.Equal(t, []string{"Anna", "Max", "Tom", "Lisa"}, st.Schedule.Players())

	summary := st.Summary()
	assert.Equal(t, 6, summary.MatchesTotal)
	assert.Equal(t, 3, summary.DaysTotal)
	require.NotNil(t, summary.NextDay)
	assert.Equal(t, 1, *summary.NextDay)

	_, err := st.RecordResult("Anna", "Max", "6:4,6:3")
	require.NoError(t, err)

	err = st.Reschedule("Max", "Anna", 5)
	assert.ErrorIs(t, err, ErrPairingAlreadyPlayed)
	assert.ErrorIs(t, err, brackets.ErrRescheduleConflict)

	require.NoError(t, st.Reschedule("Tom", "Lisa", 5))
	assert.NotNil(t, st.Schedule.Day(5))

	require.NoError(t, st.MarkDayCompleted(1))
	next, ok := st.NextIncompleteDay()
	require.True(t, ok)
	assert.Equal(t, 2, next.Number)

	for _, m := range [][3]string{
		{"Tom", "Lisa", "6:1,6:1"},
		{"Anna", "Tom", "6:2,6:2"},
		{"Max", "Lisa", "6:3,6:3"},
		{"Anna", "Lisa", "6:4,6:4"},
		{"Max", "Tom", "4:6,6:4,7:5"},
	} {
		_, err := st.RecordResult(m[0], m[1], m[2])
		require.NoError(t, err, m)
	}
	assert.Equal(t, models.StatusCompleted, st.Status())

	ranking := st.CompleteRanking()
	require.Len(t, ranking, 4)
	assert.Equal(t, "Anna", ranking[0].Player)
	assert.Equal(t, 3, ranking[0].Points)
	assert.Equal(t, 1, st.PlayerRanking("Anna"))
	assert.Equal(t, 3, st.PlayerStatistics("Anna").MatchesWon)
}

func TestStateCloneIsIndependent(t *testing.T) {
	st := newState(t, "Anna", "Max", "Tom")
	require.NoError(t, st.GenerateSchedule(brackets.NewRoundRobinGenerator()))

	clone := st.Clone()
	_, err := clone.RecordResult("Anna", "Max", "6:4,6:3")
	require.NoError(t, err)
	require.NoError(t, clone.MarkDayCompleted(1))

	assert.Equal(t, 0, st.Results.Len())
	assert.False(t, st.Schedule.Days[0].Completed)
}

func TestStateFromTournamentRoundTrip(t *testing.T) {
	st := newState(t, "Anna", "Max", "Tom")
	require.NoError(t, st.GenerateSchedule(brackets.NewRoundRobinGenerator()))
	_, err := st.RecordResult("Anna", "Max", "6:4,6:3")
	require.NoError(t, err)

	restored, err := StateFromTournament(st.Snapshot(), scoring.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, st.Standings(), restored.Standings())
	_, ok := restored.LookupResult("Max", "Anna")
	assert.True(t, ok)

	_, err = restored.RecordResult("Max", "Anna", "6:1,6:1")
	assert.ErrorIs(t, err, ErrDuplicateResult)
}
