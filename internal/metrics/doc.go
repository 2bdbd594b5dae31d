// Package metrics defines the Prometheus collectors exported by lightbooru.
package metrics
