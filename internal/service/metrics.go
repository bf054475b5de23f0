package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for the processing pipeline.
type Observer interface {
	RecordWorkspaceCreated()
	RecordWorkspaceRemoved(err error)
	RecordOperation(operation string, duration time.Duration, outcome string)
}

// PrometheusObserver exports pipeline metrics to Prometheus.
type PrometheusObserver struct {
	workspacesCreated prometheus.Counter
	workspacesRemoved prometheus.Counter
	cleanupFailures   prometheus.Counter
	workspacesActive  prometheus.Gauge
	operationDuration *prometheus.HistogramVec
	operationsTotal   *prometheus.CounterVec
}

// NewPrometheusObserver registers workspace and operation metrics.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "pdftools"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	o := &PrometheusObserver{
		workspacesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workspaces_created_total",
			Help:      "Scratch workspaces created.",
		}),
		workspacesRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workspaces_removed_total",
			Help:      "Scratch workspaces removed.",
		}),
		cleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workspace_cleanup_failures_total",
			Help:      "Scratch workspaces that could not be removed.",
		}),
		workspacesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "workspaces_active",
			Help:      "Scratch workspaces currently on disk.",
		}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Latency of pipeline invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Pipeline invocations by outcome.",
		}, []string{"operation", "outcome"}),
	}

	var err error
	if o.workspacesCreated, err = register(reg, o.workspacesCreated); err != nil {
		return nil, err
	}
	if o.workspacesRemoved, err = register(reg, o.workspacesRemoved); err != nil {
		return nil, err
	}
	if o.cleanupFailures, err = register(reg, o.cleanupFailures); err != nil {
		return nil, err
	}
	if o.workspacesActive, err = register(reg, o.workspacesActive); err != nil {
		return nil, err
	}
	if o.operationDuration, err = register(reg, o.operationDuration); err != nil {
		return nil, err
	}
	if o.operationsTotal, err = register(reg, o.operationsTotal); err != nil {
		return nil, err
	}
	return o, nil
}

// register adds c to reg. When an identical collector is already registered,
// that one is returned so updates reach the exported series.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register pipeline metric: %w", err)
	}
	return c, nil
}

func (o *PrometheusObserver) RecordWorkspaceCreated() {
	if o == nil {
		return
	}
	o.workspacesCreated.Inc()
	o.workspacesActive.Inc()
}

func (o *PrometheusObserver) RecordWorkspaceRemoved(err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.cleanupFailures.Inc()
		return
	}
	o.workspacesRemoved.Inc()
	o.workspacesActive.Dec()
}

func (o *PrometheusObserver) RecordOperation(operation string, duration time.Duration, outcome string) {
	if o == nil {
		return
	}
	o.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	o.operationsTotal.WithLabelValues(operation, outcome).Inc()
}

// NopObserver discards all telemetry.
type NopObserver struct{}

func (NopObserver) RecordWorkspaceCreated() {}

func (NopObserver) RecordWorkspaceRemoved(error) {}

func (NopObserver) RecordOperation(string, time.Duration, string) {}
