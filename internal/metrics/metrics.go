package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "macros"

var (
	once sync.Once

	macroUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Count of macro tally updates by outcome.",
		},
		[]string{"outcome"},
	)

	recipeRemovals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipe_removals_total",
			Help:      "Count of saved recipe removal calls by outcome.",
		},
		[]string{"outcome"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)
)

// Outcomes of a macro update.
const (
	OutcomeAccumulated = "accumulated"
	OutcomeReset       = "reset"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
	OutcomeOK          = "ok"
)

// Register registers metrics with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(macroUpdates, recipeRemovals, httpDuration)
	})
}

func IncMacroUpdate(outcome string) {
	macroUpdates.WithLabelValues(outcome).Inc()
}

func IncRecipeRemoval(outcome string) {
	recipeRemovals.WithLabelValues(outcome).Inc()
}

func ObserveRequest(route string, code int, elapsed time.Duration) {
	httpDuration.WithLabelValues(route, strconv.Itoa(code)).Observe(elapsed.Seconds())
}
