// Package metrics exposes the state of the dead man's switch to Prometheus.
//
// Gauges are read from the countdown on every scrape, so the exported values
// are never staler than the scrape itself. Kick outcomes are counted as they
// happen.
package metrics
