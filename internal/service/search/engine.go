package search

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/ayusutra-api/internal/model"
	"github.com/jwalitptl/ayusutra-api/pkg/logger"
	"github.com/jwalitptl/ayusutra-api/pkg/metrics"
)

// Source is the read side of the directory.
type Source interface {
	All() []model.Doctor
}

// Result is one evaluated view of the directory.
type Result struct {
	Doctors  []model.Doctor       `json:"doctors"`
	Total    int                  `json:"total"`
	Criteria model.SearchCriteria `json:"criteria"`
	Summary  string               `json:"summary"`

	// Elapsed is the evaluation time; zero for memoised results.
	Elapsed time.Duration `json:"-"`
}

// ResultSink is told about every recomputed view.
type ResultSink interface {
	Publish(ctx context.Context, r Result)
}

type SinkFunc func(ctx context.Context, r Result)

func (f SinkFunc) Publish(ctx context.Context, r Result) { f(ctx, r) }

// Engine recomputes the directory view whenever criteria change.
type Engine struct {
	source Source
	sinks  []ResultSink
	memo   *cache.Cache
}

func NewEngine(source Source, sinks ...ResultSink) *Engine {
	return &Engine{
		source: source,
		sinks:  sinks,
		// The directory never changes, so entries only expire to bound memory.
		memo: cache.New(10*time.Minute, 20*time.Minute),
	}
}

// Update evaluates c against the full directory and reports the result to
// every sink. Sinks are notified even when the result comes from the memo.
func (e *Engine) Update(ctx context.Context, c model.SearchCriteria) Result {
	key := memoKey(c)

	var result Result
	if cached, ok := e.memo.Get(key); ok {
		result = cloneResult(cached.(Result))
	} else {
		start := time.Now()
		all := e.source.All()
		doctors := Apply(all, c)
		result = Result{
			Doctors:  doctors,
			Total:    len(all),
			Criteria: c,
			Summary:  Summary(len(doctors), len(all), c),
			Elapsed:  time.Since(start),
		}
		memoised := cloneResult(result)
		memoised.Elapsed = 0
		e.memo.Set(key, memoised, cache.DefaultExpiration)
	}

	for _, sink := range e.sinks {
		sink.Publish(ctx, result)
	}
	return result
}

// Specialties lists the specialty filter options for the full directory.
func (e *Engine) Specialties() []string {
	return Specialties(e.source.All())
}

func memoKey(c model.SearchCriteria) string {
	return fmt.Sprintf("%q|%q|%q", c.Query, c.Specialty, c.Sort)
}

func cloneResult(r Result) Result {
	docs := make([]model.Doctor, len(r.Doctors))
	copy(docs, r.Doctors)
	r.Doctors = docs
	return r
}

// MetricsSink records search counters.
type MetricsSink struct {
	metrics *metrics.Metrics
}

func NewMetricsSink(m *metrics.Metrics) *MetricsSink {
	return &MetricsSink{metrics: m}
}

func (s *MetricsSink) Publish(_ context.Context, r Result) {
	s.metrics.SearchRequests.Inc()
	s.metrics.SearchResults.Observe(float64(len(r.Doctors)))
	if len(r.Doctors) == 0 {
		s.metrics.SearchEmpty.Inc()
	}
	if r.Elapsed > 0 {
		s.metrics.SearchLatency.Observe(r.Elapsed.Seconds())
	}
}

// LogSink writes each view at debug level.
type LogSink struct {
	logger *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log.Component("search")}
}

func (s *LogSink) Publish(_ context.Context, r Result) {
	s.logger.Debug("Directory view updated",
		"query", r.Criteria.Query,
		"specialty", r.Criteria.Specialty,
		"sort", string(r.Criteria.Sort),
		"shown", len(r.Doctors),
		"total", r.Total,
	)
}
