// Copyright (C) 2020-2026, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package health aggregates component health for connectord's /health
// HTTP endpoint, grounded on the teacher's api/health
// Checker/Checkable/Report shape.
package health

import (
	"context"
	"time"
)

// Checker performs a health check and reports a caller-defined detail
// value alongside any error.
type Checker interface {
	HealthCheck(context.Context) (interface{}, error)
}

// Check is one named component's health check outcome.
type Check struct {
	Name     string                 `json:"name"`
	Healthy  bool                   `json:"healthy"`
	Error    string                 `json:"error,omitempty"`
	Details  interface{}            `json:"details,omitempty"`
	Duration time.Duration          `json:"duration"`
}

// Report aggregates every registered Checker's outcome.
type Report struct {
	Healthy  bool          `json:"healthy"`
	Checks   []Check       `json:"checks,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Registry holds the named Checkers the Connector aggregates into one
// Report, e.g. "transport", "store", "identity".
type Registry struct {
	checkers map[string]Checker
	order    []string
}

// NewRegistry constructs an empty health Registry.
func NewRegistry() *Registry {
	return &Registry{checkers: make(map[string]Checker)}
}

// Register adds a named Checker. Re-registering a name replaces it in
// place, preserving its original position in Report.Checks.
func (r *Registry) Register(name string, c Checker) {
	if _, exists := r.checkers[name]; !exists {
		r.order = append(r.order, name)
	}
	r.checkers[name] = c
}

// Check runs every registered Checker and aggregates the results. A
// Report is Healthy only if every Check is.
func (r *Registry) Check(ctx context.Context) Report {
	start := time.Now()
	report := Report{Healthy: true}
	for _, name := range r.order {
		checkStart := time.Now()
		details, err := r.checkers[name].HealthCheck(ctx)
		check := Check{
			Name:     name,
			Healthy:  err == nil,
			Details:  details,
			Duration: time.Since(checkStart),
		}
		if err != nil {
			check.Error = err.Error()
			report.Healthy = false
		}
		report.Checks = append(report.Checks, check)
	}
	report.Duration = time.Since(start)
	return report
}
