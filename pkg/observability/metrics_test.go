package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	b := dsl.New()
	b.Add("start").Say("hi").When("end", "bye")
	b.Add("end").Terminal()

	ctx := context.Background()
	eng, err := parley.New(ctx, b, parley.WithLifecycleHooks(metrics.Hooks()))
	require.NoError(t, err)

	state, _, err := eng.Start(ctx, "s")
	require.NoError(t, err)
	state, _, err = eng.Navigate(ctx, state, "bye")
	require.ErrorIs(t, err, domain.ErrNoAnswer)
	_, _, err = eng.Navigate(ctx, state, "again")
	require.NoError(t, err)

	assert.Equal(t, 2.0, counterValue(t, reg, "parley_node_visits_total", "start"))
	assert.Equal(t, 1.0, counterValue(t, reg, "parley_node_visits_total", "end"))
	assert.Equal(t, 1.0, counterValue(t, reg, "parley_fallbacks_total", "end"))
	assert.Equal(t, 1.0, counterValue(t, reg, "parley_no_answer_total", "end"))

	count, err := testutil.GatherAndCount(reg, "parley_matches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// counterValue reads the series of a single-label counter back from the registry.
func counterValue(t *testing.T, reg *prometheus.Registry, name, label string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if m.GetLabel()[0].GetValue() == label {
				return m.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("series %s{%s} not found", name, label)
	return 0
}

func TestMetrics_DoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	observability.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "parley_match_cost")
}

func TestChain(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{OnNodeEnter: func(context.Context, *domain.NodeEvent) { calls = append(calls, "a") }}
	b := domain.LifecycleHooks{
		OnNodeEnter: func(context.Context, *domain.NodeEvent) { calls = append(calls, "b") },
		OnMatch:     func(context.Context, *domain.MatchEvent) { calls = append(calls, "match") },
	}

	chained := observability.Chain(a, domain.LifecycleHooks{}, b)
	chained.OnNodeEnter(context.Background(), &domain.NodeEvent{})
	chained.OnMatch(context.Background(), &domain.MatchEvent{})

	assert.Equal(t, []string{"a", "b", "match"}, calls)
	assert.Nil(t, chained.OnFallback)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, logging.FormatJSON)

	hooks := observability.LoggingHooks(logger)
	hooks.OnMatch(context.Background(), &domain.MatchEvent{From: "a", To: "b", Keyword: "go", Cost: 1})
	hooks.OnNoAnswer(context.Background(), &domain.NodeEvent{NodeName: "b"})

	out := buf.String()
	assert.Contains(t, out, `"msg":"match"`)
	assert.Contains(t, out, `"keyword":"go"`)
	assert.Contains(t, out, `"msg":"no_answer"`)
}
