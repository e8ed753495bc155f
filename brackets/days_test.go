package brackets

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/tennis-roundrobin/models"
)

func pair(a, b string) models.Pairing {
	return models.NewPairing(a, b)
}

func TestPackDaysProperties(t *testing.T) {
	for n := 2; n <= 10; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			rounds := ScheduleRounds(GeneratePairings(roster(n)))
			ordered := make([]models.Pairing, 0, len(rounds))
			for _, r := range rounds {
				ordered = append(ordered, r.Matches...)
			}

			days, err := PackDays(ordered, Capacity(n))
			require.NoError(t, err)

			total := 0
			for i, d := range days {
				assert.Equal(t, i+1, d.Number)
				assert.LessOrEqual(t, len(d.Matches), Capacity(n))
				assert.NotEmpty(t, d.Matches)

				booked := make(map[string]bool)
				for _, m := range d.Matches {
					assert.False(t, booked[m.Player1], "day %d books %s twice", d.Number, m.Player1)
					assert.False(t, booked[m.Player2], "day %d books %s twice", d.Number, m.Player2)
					booked[m.Player1], booked[m.Player2] = true, true
				}
				total += len(d.Matches)
			}
			assert.Equal(t, n*(n-1)/2, total)
		})
	}
}

func TestPackDaysFourPlayers(t *testing.T) {
	ordered := []models.Pairing{
		pair("A", "B"), pair("C", "D"), pair("A", "C"),
		pair("B", "D"), pair("A", "D"), pair("B", "C"),
	}
	days, err := PackDays(ordered, 2)
	require.NoError(t, err)

	want := []*models.Day{
		{Number: 1, Matches: []models.Pairing{pair("A", "B"), pair("C", "D")}},
		{Number: 2, Matches: []models.Pairing{pair("A", "C"), pair("B", "D")}},
		{Number: 3, Matches: []models.Pairing{pair("A", "D"), pair("B", "C")}},
	}
	if diff := cmp.Diff(want, days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}
}

func TestPackDaysSkipsBookedPlayers(t *testing.T) {
	ordered := []models.Pairing{pair("A", "B"), pair("A", "C"), pair("D", "E")}
	days, err := PackDays(ordered, 2)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, []models.Pairing{pair("A", "B"), pair("D", "E")}, days[0].Matches)
	assert.Equal(t, []models.Pairing{pair("A", "C")}, days[1].Matches)
}

func TestPackDaysZeroCapacity(t *testing.T) {
	_, err := PackDays([]models.Pairing{pair("A", "B")}, 0)
	assert.ErrorIs(t, err, ErrDayPackingContradiction)
}

func TestNextIncompleteDayAndMarkCompleted(t *testing.T) {
	days := []*models.Day{
		{Number: 1, Matches: []models.Pairing{pair("A", "B")}},
		{Number: 2, Matches: []models.Pairing{pair("A", "C")}},
	}

	next, ok := NextIncompleteDay(days)
	require.True(t, ok)
	assert.Equal(t, 1, next.Number)

	require.NoError(t, MarkDayCompleted(days, 1))
	next, ok = NextIncompleteDay(days)
	require.True(t, ok)
	assert.Equal(t, 2, next.Number)

	require.NoError(t, MarkDayCompleted(days, 2))
	_, ok = NextIncompleteDay(days)
	assert.False(t, ok)

	assert.ErrorIs(t, MarkDayCompleted(days, 9), ErrDayNotFound)
}

func fourPlayerDays() []*models.Day {
	return []*models.Day{
		{Number: 1, Matches: []models.Pairing{pair("A", "B"), pair("C", "D")}},
		{Number: 2, Matches: []models.Pairing{pair("A", "C"), pair("B", "D")}},
		{Number: 3, Matches: []models.Pairing{pair("A", "D")}},
	}
}

func TestReschedule(t *testing.T) {
	t.Run("moves to a new day and keeps days sorted", func(t *testing.T) {
		days, err := Reschedule(fourPlayerDays(), models.KeyOf("D", "C"), 5)
		require.NoError(t, err)
		require.Len(t, days, 4)
		assert.Equal(t, []int{1, 2, 3, 5}, dayNumbers(days))
		assert.Equal(t, []models.Pairing{pair("A", "B")}, days[0].Matches)
		assert.Equal(t, []models.Pairing{pair("C", "D")}, days[3].Matches)
	})

	t.Run("removes a day that becomes empty", func(t *testing.T) {
		days, err := Reschedule(fourPlayerDays(), models.KeyOf("A", "D"), 4)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 4}, dayNumbers(days))
	})

	t.Run("moves into an existing day without collision", func(t *testing.T) {
		days := []*models.Day{
			{Number: 1, Matches: []models.Pairing{pair("A", "B")}},
			{Number: 2, Matches: []models.Pairing{pair("C", "D")}},
		}
		days, err := Reschedule(days, models.KeyOf("C", "D"), 1)
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.Equal(t, []models.Pairing{pair("A", "B"), pair("C", "D")}, days[0].Matches)
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		days, err := Reschedule(fourPlayerDays(), models.KeyOf("A", "B"), 1)
		require.NoError(t, err)
		if diff := cmp.Diff(fourPlayerDays(), days); diff != "" {
			t.Errorf("days changed (-want +got):\n%s", diff)
		}
	})

	t.Run("collision on target day", func(t *testing.T) {
		days := fourPlayerDays()
		_, err := Reschedule(days, models.KeyOf("A", "D"), 1)
		assert.ErrorIs(t, err, ErrTargetDayCollision)
		assert.ErrorIs(t, err, ErrRescheduleConflict)
		assert.Len(t, days[2].Matches, 1, "days untouched on rejection")
	})

	t.Run("unknown pairing", func(t *testing.T) {
		_, err := Reschedule(fourPlayerDays(), models.KeyOf("A", "Z"), 2)
		assert.ErrorIs(t, err, ErrPairingNotFound)
		assert.ErrorIs(t, err, ErrRescheduleConflict)
	})

	t.Run("invalid day number", func(t *testing.T) {
		_, err := Reschedule(fourPlayerDays(), models.KeyOf("A", "B"), 0)
		assert.ErrorIs(t, err, ErrInvalidDayNumber)
	})
}

func dayNumbers(days []*models.Day) []int {
	out := make([]int, len(days))
	for i, d := range days {
		out[i] = d.Number
	}
	return out
}
