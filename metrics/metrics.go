// Copyright 2025 The reqguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package metrics holds the Prometheus collectors of the request guard.
//
// All recorder methods are safe to call on a nil *Metrics, so components can
// run without metrics in tests and tools.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a CSRF check.
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
)

// Metrics holds all Prometheus metrics for the request guard.
type Metrics struct {
	csrfChecks     *prometheus.CounterVec
	apiErrors      *prometheus.CounterVec
	httpsRedirects prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a metrics instance registered on its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		csrfChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqguard_csrf_checks_total",
				Help: "Total number of CSRF checks by outcome and rejection reason",
			},
			[]string{"outcome", "reason"},
		),
		apiErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqguard_api_errors_total",
				Help: "Total number of normalised API error responses by code and status",
			},
			[]string{"code", "status"},
		),
		httpsRedirects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reqguard_https_redirects_total",
				Help: "Total number of plain HTTP requests redirected to HTTPS",
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reqguard_http_requests_total",
				Help: "Total number of HTTP requests by method and status code",
			},
			[]string{"method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reqguard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.csrfChecks,
		m.apiErrors,
		m.httpsRedirects,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// RecordCSRFCheck counts a CSRF decision. reason is empty for allowed
// requests.
func (m *Metrics) RecordCSRFCheck(outcome, reason string) {
	if m == nil {
		return
	}
	m.csrfChecks.WithLabelValues(outcome, reason).Inc()
}

// RecordAPIError counts a normalised error response.
func (m *Metrics) RecordAPIError(code string, status int) {
	if m == nil {
		return
	}
	m.apiErrors.WithLabelValues(code, strconv.Itoa(status)).Inc()
}

// RecordHTTPSRedirect counts a redirect from HTTP to HTTPS.
func (m *Metrics) RecordHTTPSRedirect() {
	if m == nil {
		return
	}
	m.httpsRedirects.Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware records request counts and durations for next.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		m.RecordHTTPRequest(r.Method, wrapped.statusCode, time.Since(start))
	})
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
