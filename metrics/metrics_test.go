package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TournamentsCreated.Inc()
	m.ResultsRecorded.WithLabelValues(Outcome(nil)).Inc()
	m.ResultsRecorded.WithLabelValues(Outcome(errors.New("boom"))).Inc()
	m.ResultsRecorded.WithLabelValues(Outcome(errors.New("boom"))).Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TournamentsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ResultsRecorded.WithLabelValues(OutcomeAccepted)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResultsRecorded.WithLabelValues(OutcomeRejected)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "roundrobin_tournaments_created_total")
	assert.Contains(t, names, "roundrobin_results_total")
}

func TestNewWithoutRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		m := New(nil)
		m.SchedulesGenerated.Inc()
	})
}
