package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	commandExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adlytica",
			Subsystem: "toolkit",
			Name:      "command_executions_total",
			Help:      "Total number of toolkit command executions",
		},
		[]string{"command", "status"},
	)

	commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "adlytica",
			Subsystem: "toolkit",
			Name:      "command_duration_seconds",
			Help:      "Toolkit command execution duration in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"command"},
	)

	preflightBlocksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "adlytica",
			Subsystem: "toolkit",
			Name:      "preflight_blocks_total",
			Help:      "Total number of commands blocked by the schema-parity preflight",
		},
	)

	throttleRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "adlytica",
			Subsystem: "toolkit",
			Name:      "throttle_rejections_total",
			Help:      "Total number of commands rejected by the concurrency throttle",
		},
	)

	commandsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "adlytica",
			Subsystem: "toolkit",
			Name:      "commands_in_flight",
			Help:      "Number of toolkit commands currently executing",
		},
	)
)

// RecordCommandExecution records a completed command execution
func RecordCommandExecution(command, status string, duration time.Duration) {
	commandExecutionsTotal.WithLabelValues(command, status).Inc()
	commandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordPreflightBlock records a schema-parity preflight block
func RecordPreflightBlock() {
	preflightBlocksTotal.Inc()
}

// RecordThrottleRejection records a throttle rejection
func RecordThrottleRejection() {
	throttleRejectionsTotal.Inc()
}

// CommandStarted increments the in-flight gauge
func CommandStarted() {
	commandsInFlight.Inc()
}

// CommandFinished decrements the in-flight gauge
func CommandFinished() {
	commandsInFlight.Dec()
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Push sends the collected metrics to a Pushgateway. One-shot command
// runs have no scrape window, so they push at process end instead.
func Push(gatewayURL, job string) error {
	return push.New(gatewayURL, job).Gatherer(prometheus.DefaultGatherer).Push()
}
