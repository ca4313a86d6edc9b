// Package main is the seolint command.
//
// seolint checks HTML pages against a set of SEO rules and reports every
// defect it finds. Pages can be files, directories (searched recursively),
// http(s) URLs or "-" for standard input. Compressed pages (.gz, .zst) are
// inflated transparently.
//
// Usage:
//
//	# Audit a built site with the default rules
//	seolint ./public
//
//	# Only some rules, JSON output to a file
//	seolint -rules head-title,h1-limit -format json -o report.json ./public
//
//	# Custom rules merged over the defaults
//	seolint -rules-file seo.yaml https://example.com
//
//	# Run the HTTP audit service
//	seolint -serve -port 9000
//
// Configuration:
//   - Environment variables (PORT, LOG_LEVEL, FETCH_*, RULES_FILE, ...)
//   - CLI flags (override env vars)
//
// Exit status is 0 when every page is clean, 1 when defects were found and
// 2 when a page could not be checked or the command failed.
//
// Signals:
//   - SIGINT, SIGTERM: cancel the run, or shut the server down gracefully
package main
