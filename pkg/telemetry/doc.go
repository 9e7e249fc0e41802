// Package telemetry provides observability for Prism.
//
// The telemetry package implements structured logging and Prometheus
// metrics. Logging is active in every mode; metrics are only served in
// watch mode, where a long-lived process makes a scrape endpoint
// meaningful.
//
//   - logging: structured logging built on log/slog
//   - metrics: Prometheus metrics collection
package telemetry
