// Package middleware provides HTTP middleware for request logging,
// Prometheus metrics and response compression.
package middleware
