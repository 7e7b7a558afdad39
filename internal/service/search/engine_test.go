package search

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/ayusutra-api/internal/directory"
	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

func newTestEngine(t *testing.T, sinks ...ResultSink) *Engine {
	t.Helper()
	dir, err := directory.New(directory.SampleDoctors())
	require.NoError(t, err)
	return NewEngine(dir, sinks...)
}

func TestEngineUpdateNotifiesSinkEveryTime(t *testing.T) {
	var seen []Result
	engine := newTestEngine(t, SinkFunc(func(_ context.Context, r Result) {
		seen = append(seen, r)
	}))

	c := model.SearchCriteria{Query: "card"}
	first := engine.Update(context.Background(), c)
	second := engine.Update(context.Background(), c)

	require.Len(t, seen, 2)
	assert.Equal(t, first.Doctors, second.Doctors)
	assert.Equal(t, 6, first.Total)
	assert.Equal(t, `Showing 1 of 6 doctors for "card"`, first.Summary)
}

func TestEngineMemoIsNotShared(t *testing.T) {
	engine := newTestEngine(t)

	c := model.SearchCriteria{Sort: model.SortName}
	first := engine.Update(context.Background(), c)
	first.Doctors[0].Name = "tampered"

	second := engine.Update(context.Background(), c)
	assert.NotEqual(t, "tampered", second.Doctors[0].Name)
}

func TestEngineSpecialties(t *testing.T) {
	engine := newTestEngine(t)
	assert.Len(t, engine.Specialties(), 6)
}

func TestMetricsSink(t *testing.T) {
	m := metrics.New("test")
	engine := newTestEngine(t, NewMetricsSink(m), NewLogSink(logger.Nop()))

	engine.Update(context.Background(), model.SearchCriteria{})
	engine.Update(context.Background(), model.SearchCriteria{Query: "nobody"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.SearchRequests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SearchEmpty))
}
