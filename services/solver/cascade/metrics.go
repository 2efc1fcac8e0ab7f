// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cascade

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("aleutian.arc.cascade")

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	// stageRuns counts stage executions by outcome.
	// Labels: stage, outcome ("accepted", "rejected", "no_candidate", "skipped")
	stageRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_stage_runs_total",
		Help: "Total cascade stage runs by outcome",
	}, []string{"stage", "outcome"})

	stageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arc_stage_duration_seconds",
		Help:    "Cascade stage duration",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 5, 10},
	}, []string{"stage"})

	// tasksTotal counts solved and unsolved tasks.
	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_tasks_total",
		Help: "Total tasks attempted by result",
	}, []string{"solved"})
)
