package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// CandidatesAttempted counts password candidates verified against a
	// handshake, labelled by job so concurrent jobs stay distinguishable.
	CandidatesAttempted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wpacrack",
			Name:      "candidates_attempted_total",
			Help:      "Total number of password candidates verified",
		},
		[]string{"job_id", "source"},
	)

	// JobsStarted counts crack jobs that began running.
	JobsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wpacrack",
			Name:      "jobs_started_total",
			Help:      "Total number of crack jobs started",
		},
		[]string{"source"},
	)

	// JobsFinished counts crack jobs by terminal status.
	JobsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wpacrack",
			Name:      "jobs_finished_total",
			Help:      "Total number of crack jobs that reached a terminal state",
		},
		[]string{"status"},
	)

	// CrackRate tracks the live candidates/sec throughput of a running job.
	CrackRate = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "wpacrack",
			Name:      "crack_rate_candidates_per_second",
			Help:      "Current candidate verification rate",
		},
		[]string{"job_id"},
	)

	// HandshakesAssembled counts completed M1+M2 handshake sessions produced
	// by the assembler.
	HandshakesAssembled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wpacrack",
			Name:      "handshakes_assembled_total",
			Help:      "Total number of 4-way handshakes fully assembled",
		},
		[]string{"bssid"},
	)

	// DeauthFramesSent counts provocation frames injected.
	DeauthFramesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wpacrack",
			Name:      "deauth_frames_sent_total",
			Help:      "Total number of deauthentication frames injected",
		},
		[]string{"interface", "kind"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(CandidatesAttempted)
		prometheus.DefaultRegisterer.Register(JobsStarted)
		prometheus.DefaultRegisterer.Register(JobsFinished)
		prometheus.DefaultRegisterer.Register(CrackRate)
		prometheus.DefaultRegisterer.Register(HandshakesAssembled)
		prometheus.DefaultRegisterer.Register(DeauthFramesSent)
	})
}
