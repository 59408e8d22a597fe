package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewService(reg)

	s.IncBracketsGenerated("points")
	s.IncBracketsGenerated("points")
	s.IncBracketsGenerated("signup")
	s.ObserveGenerationDuration(0.02)
	s.IncMatchesCompleted()
	s.IncAdvancementConflicts()
	s.IncSeedingFallbacks()

	assert.Equal(t, 2.0, testutil.ToFloat64(s.BracketsGenerated.WithLabelValues("points")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.BracketsGenerated.WithLabelValues("signup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.MatchesCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.AdvancementConflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.SeedingFallbacks))
	assert.Equal(t, 1, testutil.CollectAndCount(s.GenerationDuration))

	rr := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `brackets_generated_total{method="points"} 2`)
	assert.Contains(t, string(body), "bracket_generation_duration_seconds_count 1")
}

func TestNewService_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewService(reg)
	assert.Panics(t, func() { NewService(reg) })
}

func TestNop(t *testing.T) {
	var m Metrics = Nop{}
	m.IncBracketsGenerated("random")
	m.ObserveGenerationDuration(1)
	m.IncMatchesCompleted()
	m.IncAdvancementConflicts()
	m.IncSeedingFallbacks()
}
