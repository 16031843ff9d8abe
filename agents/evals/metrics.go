/*
Copyright 2025 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"reflect"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opper_evaluations_total",
			Help: "Total number of call evaluations performed",
		},
		[]string{"result_type", "namespace"},
	)

	failureCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "opper_evaluation_failures_total",
			Help: "Total number of failed call evaluations",
		},
		[]string{"result_type", "namespace"},
	)

	gradeGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "opper_evaluation_grade",
			Help: "Most recent evaluation grade (0.0-1.0)",
		},
		[]string{"result_type", "namespace"},
	)
)

// MetricsObserver exports evaluation verdicts as Prometheus metrics,
// labelled with the result type and the namespace.
type MetricsObserver struct {
	resultType string
	namespace  string

	evalCounter prometheus.Counter
	failCounter prometheus.Counter
	gradeGauge  prometheus.Gauge
}

// NewMetricsObserver creates a metrics observer for results of type T.
// It fits NewNamespacedObserver as a factory.
func NewMetricsObserver[T any](namespace string) *MetricsObserver {
	labels := prometheus.Labels{
		"result_type": reflect.TypeFor[T]().String(),
		"namespace":   namespace,
	}
	return &MetricsObserver{
		resultType:  labels["result_type"],
		namespace:   namespace,
		evalCounter: evaluationCounter.With(labels),
		failCounter: failureCounter.With(labels),
		gradeGauge:  gradeGauge.With(labels),
	}
}

func (m *MetricsObserver) Increment() { m.evalCounter.Inc() }

func (m *MetricsObserver) Fail(string) { m.failCounter.Inc() }

func (m *MetricsObserver) Grade(score float64, _ string) { m.gradeGauge.Set(score) }

// Log is a no-op.
func (m *MetricsObserver) Log(string) {}

// Total always reports 0; read the counter instead.
func (m *MetricsObserver) Total() int64 { return 0 }
