/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package metrics

import (
	"context"
	"time"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus"
)

type KeystoreProxyMetrics interface {
	IncRequest(method string)
	IncQueueFull(method string)
	IncResponseDiscarded(method string)
	SetInflight(count int)
	ObserveOperation(method string, duration time.Duration)
}

var METRICS_SUBSYSTEM = "keystore_proxy"

type keystoreProxyMetrics struct {
	requests           *prometheus.CounterVec
	queueFull          *prometheus.CounterVec
	responsesDiscarded *prometheus.CounterVec
	inflight           prometheus.Gauge
	duration           *prometheus.HistogramVec
}

// InitMetrics registers the collectors on registry. Registering twice on one registry
// fails, so each registry serves one proxy.
func InitMetrics(ctx context.Context, registry *prometheus.Registry) (*keystoreProxyMetrics, error) {
	metrics := &keystoreProxyMetrics{}

	labels := []string{"method"}
	metrics.requests = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests_total",
		Help: "Keystore requests submitted to the proxy", Subsystem: METRICS_SUBSYSTEM}, labels)
	metrics.queueFull = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "queue_full_total",
		Help: "Keystore requests rejected because the queue was full", Subsystem: METRICS_SUBSYSTEM}, labels)
	metrics.responsesDiscarded = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "responses_discarded_total",
		Help: "Responses discarded because the caller stopped waiting", Subsystem: METRICS_SUBSYSTEM}, labels)
	metrics.inflight = prometheus.NewGauge(prometheus.GaugeOpts{Name: "inflight_operations",
		Help: "Keystore operations dispatched by the receiver and not yet delivered", Subsystem: METRICS_SUBSYSTEM})
	metrics.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "operation_duration_seconds",
		Help: "Time from dispatch to response delivery", Subsystem: METRICS_SUBSYSTEM,
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10)}, labels)

	for _, c := range []prometheus.Collector{metrics.requests, metrics.queueFull, metrics.responsesDiscarded, metrics.inflight, metrics.duration} {
		if err := registry.Register(c); err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgMetricsRegistrationFailed)
		}
	}
	return metrics, nil
}

func (m *keystoreProxyMetrics) IncRequest(method string) {
	m.requests.With(prometheus.Labels{"method": method}).Inc()
}

func (m *keystoreProxyMetrics) IncQueueFull(method string) {
	m.queueFull.With(prometheus.Labels{"method": method}).Inc()
}

func (m *keystoreProxyMetrics) IncResponseDiscarded(method string) {
	m.responsesDiscarded.With(prometheus.Labels{"method": method}).Inc()
}

func (m *keystoreProxyMetrics) SetInflight(count int) {
	m.inflight.Set(float64(count))
}

func (m *keystoreProxyMetrics) ObserveOperation(method string, duration time.Duration) {
	m.duration.With(prometheus.Labels{"method": method}).Observe(duration.Seconds())
}
