package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is what the bracket service reports.
type Metrics interface {
	IncBracketsGenerated(method string)
	ObserveGenerationDuration(seconds float64)
	IncMatchesCompleted()
	IncAdvancementConflicts()
	IncSeedingFallbacks()
}

var _ Metrics = (*Service)(nil)

type Service struct {
	BracketsGenerated    *prometheus.CounterVec
	GenerationDuration   prometheus.Histogram
	MatchesCompleted     prometheus.Counter
	AdvancementConflicts prometheus.Counter
	SeedingFallbacks     prometheus.Counter
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the bracket metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		BracketsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brackets_generated_total",
			Help: "The total number of single elimination brackets generated, by seed method.",
		}, []string{"method"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bracket_generation_duration_seconds",
			Help:    "Time spent seeding, building and persisting a bracket.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_matches_completed_total",
			Help: "The total number of match winners recorded.",
		}),
		AdvancementConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_advancement_conflicts_total",
			Help: "Winners that could not advance because the next match was already full.",
		}),
		SeedingFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bracket_seeding_fallbacks_total",
			Help: "Points seeding requests that fell back to signup order.",
		}),
	}

	reg.MustRegister(
		s.BracketsGenerated,
		s.GenerationDuration,
		s.MatchesCompleted,
		s.AdvancementConflicts,
		s.SeedingFallbacks,
	)

	return s
}

func (s *Service) IncBracketsGenerated(method string) {
	s.BracketsGenerated.WithLabelValues(method).Inc()
}

func (s *Service) ObserveGenerationDuration(seconds float64) {
	s.GenerationDuration.Observe(seconds)
}

func (s *Service) IncMatchesCompleted() {
	s.MatchesCompleted.Inc()
}

func (s *Service) IncAdvancementConflicts() {
	s.AdvancementConflicts.Inc()
}

func (s *Service) IncSeedingFallbacks() {
	s.SeedingFallbacks.Inc()
}

// Nop discards all measurements.
type Nop struct{}

func (Nop) IncBracketsGenerated(string)       {}
func (Nop) ObserveGenerationDuration(float64) {}
func (Nop) IncMatchesCompleted()              {}
func (Nop) IncAdvancementConflicts()          {}
func (Nop) IncSeedingFallbacks()              {}
