// Package metrics exports check and feedback observations as Prometheus
// metrics.
//
// Metrics exported:
//
//   - kraftgate_gate_duration_seconds: histogram by gate and status
//   - kraftgate_gate_results_total: counter by gate and status
//   - kraftgate_gate_score: gauge by gate, last run
//   - kraftgate_policy_passed: gauge, 1 when the last verdict passed
//   - kraftgate_violations: gauge by severity, active violations of the last run
//   - kraftgate_health_score: gauge, last snapshot
//   - kraftgate_feedback_actions_total: counter by action and reason
//   - kraftgate_detectors_disabled: gauge, detectors disabled by feedback
//
// A CLI process is short-lived, so the registry is written to a node
// exporter textfile rather than served.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abdidvp/kraftgate/internal/domain"
)

const namespace = "kraftgate"

// Recorder is a domain.MetricsRecorder backed by its own registry.
type Recorder struct {
	registry *prometheus.Registry

	gateDuration     *prometheus.HistogramVec
	gateResults      *prometheus.CounterVec
	gateScore        *prometheus.GaugeVec
	policyPassed     prometheus.Gauge
	violations       *prometheus.GaugeVec
	healthScore      prometheus.Gauge
	feedbackActions  *prometheus.CounterVec
	disabledDetector prometheus.Gauge

	mu       sync.Mutex
	disabled map[string]bool
}

var _ domain.MetricsRecorder = (*Recorder)(nil)

// New creates a recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		gateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "duration_seconds",
				Help:      "Gate evaluation time in seconds",
				Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"gate", "status"},
		),
		gateResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "results_total",
				Help:      "Gate results by gate and status",
			},
			[]string{"gate", "status"},
		),
		gateScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "score",
				Help:      "Gate score of the last run",
			},
			[]string{"gate"},
		),
		policyPassed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "policy",
			Name:      "passed",
			Help:      "1 when the last policy verdict passed",
		}),
		violations: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "violations",
				Help:      "Active violations of the last run by severity",
			},
			[]string{"severity"},
		),
		healthScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "health_score",
			Help:      "Health score of the last snapshot",
		}),
		feedbackActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "feedback",
				Name:      "actions_total",
				Help:      "Recorded feedback actions by action and reason",
			},
			[]string{"action", "reason"},
		),
		disabledDetector: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "detectors_disabled",
			Help:      "Detectors disabled by sustained false positives",
		}),
		disabled: make(map[string]bool),
	}
	r.registry.MustRegister(
		r.gateDuration, r.gateResults, r.gateScore, r.policyPassed,
		r.violations, r.healthScore, r.feedbackActions, r.disabledDetector,
	)
	return r
}

// Registry exposes the registry for gathering and tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) ObserveCheck(report *domain.CheckReport) {
	for _, g := range report.Gates {
		gate, status := string(g.GateID), string(g.Status)
		r.gateDuration.WithLabelValues(gate, status).Observe(g.ExecutionTime.Seconds())
		r.gateResults.WithLabelValues(gate, status).Inc()
		r.gateScore.WithLabelValues(gate).Set(g.Score)
	}

	if report.Passed() {
		r.policyPassed.Set(1)
	} else {
		r.policyPassed.Set(0)
	}

	counts := map[domain.Severity]int{}
	for _, v := range report.ActiveViolations() {
		counts[v.Severity]++
	}
	for s := domain.SeverityHint; s <= domain.SeverityError; s++ {
		r.violations.WithLabelValues(s.String()).Set(float64(counts[s]))
	}

	r.healthScore.Set(report.Health.HealthScore)
}

func (r *Recorder) ObserveFeedback(o domain.FeedbackOutcome) {
	if o.Duplicate {
		return
	}
	r.feedbackActions.WithLabelValues(string(o.Record.Action), string(o.Record.DismissalReason)).Inc()

	if !o.Disabled {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := o.Record.DetectorID
	if id == "" {
		id = o.Record.PatternID
	}
	r.disabled[id] = true
	r.disabledDetector.Set(float64(len(r.disabled)))
}

// WriteTextfile writes the registry in text exposition format, atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
