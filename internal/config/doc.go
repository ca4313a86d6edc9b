// Package config provides 12-factor configuration for seolint.
//
// Configuration is loaded from environment variables with defaults; the CLI
// flags override what the environment provides.
//
// Configuration Sections:
//   - Server: audit service listen address and shutdown grace period
//   - Fetch: timeout, retries, rate and user agent for live pages
//   - Audit: rule file and checker concurrency
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting of the audit service
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_RPS, FETCH_USER_AGENT
//   - RULES_FILE, AUDIT_CONCURRENCY
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
