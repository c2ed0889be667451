// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wires per-subsystem Prometheus collectors for the
// Connector, grounded on the teacher's metrics/metrics.go Registerer
// wrapper.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every counter/gauge/histogram the Connector exposes,
// registered against a single Registerer at construction time.
type Metrics struct {
	Registry prometheus.Registerer

	HolonsFormed       prometheus.Counter
	HolonsActive       prometheus.Gauge
	RFPRoundsStarted   *prometheus.CounterVec
	IRVRoundsPerDecision prometheus.Histogram
	VotesCast          prometheus.Counter
	ResultsAccepted    prometheus.Counter
	ResultsRejected    *prometheus.CounterVec
	ReplayRejections   prometheus.Counter
	RateLimitRejections prometheus.Counter
	RPCRequestDuration *prometheus.HistogramVec
}

// New constructs and registers every Connector collector against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registry: reg,
		HolonsFormed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "holons_formed_total",
			Help:      "Total holons that completed board formation.",
		}),
		HolonsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "swarm",
			Name:      "holons_active",
			Help:      "Holons currently in any non-terminal status.",
		}),
		RFPRoundsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "rfp_rounds_started_total",
			Help:      "RFP coordinator rounds started, labeled by phase.",
		}, []string{"phase"}),
		IRVRoundsPerDecision: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "swarm",
			Name:      "irv_rounds_per_decision",
			Help:      "Number of IRV elimination rounds needed to reach a winner.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "votes_cast_total",
			Help:      "Ballots accepted by the voting engine.",
		}),
		ResultsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "results_accepted_total",
			Help:      "Submitted subtask results accepted after validation.",
		}),
		ResultsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "results_rejected_total",
			Help:      "Submitted subtask results rejected, labeled by reason.",
		}, []string{"reason"}),
		ReplayRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "replay_rejections_total",
			Help:      "Inbound messages rejected as replays.",
		}),
		RateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swarm",
			Name:      "rate_limit_rejections_total",
			Help:      "Inbound RPC calls rejected by the rate limiter.",
		}),
		RPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "swarm",
			Name:      "rpc_request_duration_seconds",
			Help:      "JSON-RPC handler latency, labeled by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	for _, c := range []prometheus.Collector{
		m.HolonsFormed, m.HolonsActive, m.RFPRoundsStarted, m.IRVRoundsPerDecision,
		m.VotesCast, m.ResultsAccepted, m.ResultsRejected, m.ReplayRejections,
		m.RateLimitRejections, m.RPCRequestDuration,
	} {
		_ = m.Register(c)
	}
	return m
}

// Register registers a prometheus collector against m's Registerer,
// matching the teacher's Metrics.Register signature.
func (m *Metrics) Register(collector prometheus.Collector) error {
	return m.Registry.Register(collector)
}
