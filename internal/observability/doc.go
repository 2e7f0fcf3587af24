// Package observability records the topic audit trail as JSON Lines, derives
// activity counts from it, evaluates alert rules over the current topics and
// exposes the dashboard metrics to Prometheus.
package observability
