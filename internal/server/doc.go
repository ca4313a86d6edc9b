/*
Package server exposes the rule engine as an HTTP audit service.

# Routes

	GET  /health    service status and running totals
	GET  /rules     active rule definitions
	POST /audit     audit inline HTML or a URL
	GET  /metrics   Prometheus exposition

An audit request carries exactly one of html or url, plus an optional list
of rule names to restrict the run:

	{"url": "https://example.com", "rules": ["head-title", "h1-limit"]}

# Middleware

Recovery, request IDs (X-Request-ID), access logging, metrics, CORS and an
optional per-IP rate limit are installed in that order.
*/
package server
