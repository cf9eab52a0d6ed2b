/*
Copyright 2026 the MediaWiki api-testing Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package jobs

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultNoneReady = "none_ready"
	resultRan       = "ran"
	resultError     = "error"
)

// Metrics records job runner activity.
type Metrics struct {
	registry *prometheus.Registry

	// BatchesTotal counts batches by result.
	BatchesTotal *prometheus.CounterVec
	// BatchDuration observes the round trip of each batch.
	BatchDuration prometheus.Histogram
	// JobsTotal counts jobs the wiki reports having run.
	JobsTotal prometheus.Counter
	// DrainsTotal counts completed and failed drains.
	DrainsTotal *prometheus.CounterVec
}

// NewMetrics creates job runner metrics on a private registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	batchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediawiki_runjobs_batches_total",
			Help: "Total number of job runner batches by result",
		},
		[]string{"result"},
	)

	batchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediawiki_runjobs_batch_duration_seconds",
			Help:    "Job runner batch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	jobsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mediawiki_runjobs_jobs_total",
			Help: "Total number of jobs reported as run",
		},
	)

	drainsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediawiki_runjobs_drains_total",
			Help: "Total number of queue drains by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(batchesTotal, batchDuration, jobsTotal, drainsTotal)

	return &Metrics{
		registry:      registry,
		BatchesTotal:  batchesTotal,
		BatchDuration: batchDuration,
		JobsTotal:     jobsTotal,
		DrainsTotal:   drainsTotal,
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) recordBatch(result string, seconds float64, jobs int) {
	if m == nil {
		return
	}

	m.BatchesTotal.WithLabelValues(result).Inc()
	m.BatchDuration.Observe(seconds)
	m.JobsTotal.Add(float64(jobs))
}

func (m *Metrics) recordDrain(err error) {
	if m == nil {
		return
	}

	result := "drained"
	if err != nil {
		result = resultError
	}

	m.DrainsTotal.WithLabelValues(result).Inc()
}
