// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the simulation runtime:
// - Orchestrator step cadence and the Timeline's depth
// - Model connector call latency and failures
// - Data mask / pub-sub matrix fan-out size
// - Update-Data Service store size and request latency
// - Transport (NATS) publish/consume counts

var (
	// Orchestrator metrics

	StepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simcore_step_duration_seconds",
			Help:    "Wall-clock duration of one orchestrator step (dispatch through all RESULTs)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"scenario"},
	)

	TimelineDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simcore_timeline_depth",
			Help: "Number of models currently holding a Timeline entry",
		},
		[]string{"scenario"},
	)

	StepsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_steps_completed_total",
			Help: "Total number of orchestrator steps completed",
		},
		[]string{"scenario"},
	)

	RunQuiescent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simcore_run_quiescent",
			Help: "1 if the run has reached quiescence (empty Timeline), 0 otherwise",
		},
		[]string{"scenario"},
	)

	// Model connector metrics

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simcore_model_call_duration_seconds",
			Help:    "Duration of a single Model interface call (Initialize/Update/Shutdown)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"model_id", "call"},
	)

	ModelCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_model_call_errors_total",
			Help: "Total number of Model interface calls that returned an error",
		},
		[]string{"model_id", "call"},
	)

	ModelCircuitState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simcore_model_circuit_state",
			Help: "Circuit breaker state for a model connector (0=closed, 1=half-open, 2=open)",
		},
		[]string{"model_id"},
	)

	// Data mask / pub-sub matrix metrics

	PubSubFanout = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simcore_pubsub_fanout",
			Help: "Number of subscriber models notified per publisher model's update",
		},
		[]string{"publisher_model_id"},
	)

	MaskNormalizeWarnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_mask_normalize_warnings_total",
			Help: "Total number of soft warnings raised while normalizing pub/sub masks (e.g. multi-publisher)",
		},
		[]string{"reason"},
	)

	// Update-Data Service metrics

	UpdateDataRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simcore_updatedata_request_duration_seconds",
			Help:    "Duration of an Update-Data Service PUT or GET request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // "put", "get"
	)

	UpdateDataStoreSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "simcore_updatedata_store_bytes",
			Help: "Approximate size in bytes of the Update-Data Service's backing store",
		},
	)

	UpdateDataKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "simcore_updatedata_keys",
			Help: "Current number of keys held by the Update-Data Service",
		},
	)

	// Init-Data Service metrics

	InitDataResolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simcore_initdata_resolve_duration_seconds",
			Help:    "Duration of an Init-Data Service path resolution request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dataset"},
	)

	InitDataResolveErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_initdata_resolve_errors_total",
			Help: "Total number of Init-Data Service resolution requests that failed",
		},
		[]string{"dataset", "reason"},
	)

	// Transport (NATS) metrics

	TransportPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_transport_published_total",
			Help: "Total number of envelopes published to a subject",
		},
		[]string{"subject"},
	)

	TransportConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_transport_consumed_total",
			Help: "Total number of envelopes consumed from a subject",
		},
		[]string{"subject"},
	)

	TransportProtocolViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_transport_protocol_violations_total",
			Help: "Total number of malformed or out-of-sequence envelopes observed",
		},
		[]string{"model_id"},
	)

	TransportTimeouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_transport_timeouts_total",
			Help: "Total number of requests that exceeded their deadline waiting on a peer",
		},
		[]string{"model_id", "waiting"},
	)

	// Supervisor metrics

	SupervisedServices = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "simcore_supervised_services",
			Help: "Current number of services running under a supervisor tree layer",
		},
		[]string{"layer"},
	)

	ServiceRestarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_service_restarts_total",
			Help: "Total number of times suture restarted a supervised service",
		},
		[]string{"layer", "service"},
	)

	// Status API metrics

	StatusAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simcore_status_api_requests_total",
			Help: "Total number of status API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	StatusAPIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simcore_status_api_request_duration_seconds",
			Help:    "Duration of status API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	StatusAPIActiveWebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "simcore_status_api_websocket_clients",
			Help: "Current number of connected status WebSocket clients",
		},
	)
)

// RecordStep records one completed orchestrator step.
func RecordStep(scenario string, duration time.Duration) {
	StepDuration.WithLabelValues(scenario).Observe(duration.Seconds())
	StepsCompleted.WithLabelValues(scenario).Inc()
}

// SetTimelineDepth updates the Timeline depth gauge after a push/pop.
func SetTimelineDepth(scenario string, depth int) {
	TimelineDepth.WithLabelValues(scenario).Set(float64(depth))
}

// SetQuiescent flips the run-quiescent gauge.
func SetQuiescent(scenario string, quiescent bool) {
	v := 0.0
	if quiescent {
		v = 1.0
	}
	RunQuiescent.WithLabelValues(scenario).Set(v)
}

// RecordModelCall records the outcome of a single Model interface call.
func RecordModelCall(modelID, call string, duration time.Duration, err error) {
	ModelCallDuration.WithLabelValues(modelID, call).Observe(duration.Seconds())
	if err != nil {
		ModelCallErrors.WithLabelValues(modelID, call).Inc()
	}
}

// SetCircuitState records a model connector's circuit breaker state.
// Use 0 for closed, 1 for half-open, 2 for open.
func SetCircuitState(modelID string, state float64) {
	ModelCircuitState.WithLabelValues(modelID).Set(state)
}

// RecordFanout records how many subscriber models a publisher's update reached.
func RecordFanout(publisherModelID string, subscriberCount int) {
	PubSubFanout.WithLabelValues(publisherModelID).Set(float64(subscriberCount))
}

// RecordMaskWarning records a soft mask-normalization warning (e.g. a
// dataset/group/attribute with more than one publisher).
func RecordMaskWarning(reason string) {
	MaskNormalizeWarnings.WithLabelValues(reason).Inc()
}

// RecordUpdateDataRequest records one Update-Data Service PUT or GET.
func RecordUpdateDataRequest(operation string, duration time.Duration) {
	UpdateDataRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetUpdateDataSize updates the store-size and key-count gauges.
func SetUpdateDataSize(bytes int64, keys int64) {
	UpdateDataStoreSize.Set(float64(bytes))
	UpdateDataKeys.Set(float64(keys))
}

// RecordInitDataResolve records one Init-Data Service resolution request.
// reason is a short, low-cardinality label (e.g. "not_found", "io") and is
// ignored when the request succeeded.
func RecordInitDataResolve(dataset string, duration time.Duration, reason string) {
	InitDataResolveDuration.WithLabelValues(dataset).Observe(duration.Seconds())
	if reason != "" {
		InitDataResolveErrors.WithLabelValues(dataset, reason).Inc()
	}
}

// RecordPublish records an envelope published to a subject.
func RecordPublish(subject string) {
	TransportPublished.WithLabelValues(subject).Inc()
}

// RecordConsume records an envelope consumed from a subject.
func RecordConsume(subject string) {
	TransportConsumed.WithLabelValues(subject).Inc()
}

// RecordProtocolViolation records a malformed or out-of-sequence envelope from a peer.
func RecordProtocolViolation(modelID string) {
	TransportProtocolViolations.WithLabelValues(modelID).Inc()
}

// RecordTimeout records a request that exceeded its deadline.
func RecordTimeout(modelID, waiting string) {
	TransportTimeouts.WithLabelValues(modelID, waiting).Inc()
}

// SetSupervisedServices updates the per-layer supervised service count.
func SetSupervisedServices(layer string, count int) {
	SupervisedServices.WithLabelValues(layer).Set(float64(count))
}

// RecordServiceRestart records suture restarting a supervised service.
func RecordServiceRestart(layer, service string) {
	ServiceRestarts.WithLabelValues(layer, service).Inc()
}

// RecordStatusAPIRequest records one status API request.
func RecordStatusAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	StatusAPIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	StatusAPIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackWebsocketClient increments or decrements the connected-client gauge.
func TrackWebsocketClient(inc bool) {
	if inc {
		StatusAPIActiveWebsocketClients.Inc()
	} else {
		StatusAPIActiveWebsocketClients.Dec()
	}
}

