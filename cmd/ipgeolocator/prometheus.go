package main

import "github.com/prometheus/client_golang/prometheus"

var (
	pipelineCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ipgeolocator",
			Name:      "pipeline_events",
			Help:      "Number of candidate pipeline events sliced by stage.",
		},
		[]string{"stage"},
	)
	detectRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ipgeolocator",
			Name:      "detect_runs",
			Help:      "Number of detection runs sliced by trigger.",
		},
		[]string{"trigger"},
	)
	panelClientsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ipgeolocator",
			Name:      "panel_clients",
			Help:      "Number of currently connected panel WebSocket clients.",
		},
	)
)

func init() {
	prometheus.MustRegister(pipelineCounter)
	prometheus.MustRegister(detectRuns)
	prometheus.MustRegister(panelClientsGauge)
}

func countEvent(stage string) {
	pipelineCounter.WithLabelValues(stage).Inc()
}
