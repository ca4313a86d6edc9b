/*
Package monitoring collects Prometheus metrics for audits and the HTTP service.

# Overview

Metrics live on a private registry owned by each Metrics value, so several
collectors can coexist in one process (tests, CLI plus server).

# Usage

	metrics := monitoring.NewMetrics()

	// Feed the checker
	c := checker.New(rules, checker.WithRecorder(metrics))

	// Instrument a gin router and expose the registry
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
