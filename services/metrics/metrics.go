// Package metricsvc collects and exposes operational telemetry.
package metricsvc

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/terakoya-app/terakoya/core/audit"
	"github.com/terakoya-app/terakoya/core/locale"
	"github.com/terakoya-app/terakoya/core/session"
)

// Collector gathers ingress-layer counters: session refresh outcomes, locale
// redirects, audit write failures and HTTP statuses.
type Collector struct {
	sessionOutcome *prometheus.CounterVec
	localeRedirect *prometheus.CounterVec
	auditFailure   *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
}

var _ audit.Metrics = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessionOutcome: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terakoya_session_refresh_total",
			Help: "Session refresh passes by outcome (valid, rotated, anonymous).",
		}, []string{"outcome"}),
		localeRedirect: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terakoya_locale_redirect_total",
			Help: "Locale canonicalization redirects by target locale.",
		}, []string{"locale"}),
		auditFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terakoya_audit_write_failure_total",
			Help: "Audit log writes that failed after a committed mutation.",
		}, []string{"action"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terakoya_http_status_total",
			Help: "Responses by HTTP status code.",
		}, []string{"status_code"}),
	}
	reg.MustRegister(c.sessionOutcome, c.localeRedirect, c.auditFailure, c.httpStatus)
	return c
}

func (c *Collector) RecordSessionOutcome(status session.Status) {
	c.sessionOutcome.WithLabelValues(status.String()).Inc()
}

func (c *Collector) RecordLocaleRedirect(loc locale.Locale) {
	c.localeRedirect.WithLabelValues(loc.String()).Inc()
}

func (c *Collector) RecordAuditFailure(action audit.Action) {
	c.auditFailure.WithLabelValues(string(action)).Inc()
}

func (c *Collector) RecordHTTPStatus(code int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(code)).Inc()
}
