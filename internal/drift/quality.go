package drift

import (
	"context"
	"fmt"

	"docdrift/internal/analyzer"
	"docdrift/internal/quality"
	"docdrift/internal/report"
)

// qualityCheck scores docstrings with an LLM backend. A backend that
// cannot be constructed downgrades to a single warning so the rest of
// the run is unaffected.
type qualityCheck struct {
	walker  *analyzer.Walker
	modules []string
	ignores []string
	backend quality.Options
	sample  float64
	verbose bool
}

func (c *qualityCheck) Name() string { return "quality" }

func (c *qualityCheck) Check(ctx context.Context, r *report.Report) {
	backend, err := quality.NewBackend(ctx, c.backend)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("Quality checks skipped: %v", err))
		return
	}
	r.LLMBackend = backend.Name()
	r.LLMModel = backend.Model()

	checker := quality.NewChecker(backend)
	checker.SampleRate = c.sample
	checker.Verbose = c.verbose

	if c.verbose {
		fmt.Printf("LLM quality checks (%s, %s)...\n", backend.Name(), backend.Model())
	}

	for _, module := range c.modules {
		// An unimportable module yields no records; the checker turns
		// that into its own per-module issue.
		apis, _, _ := c.walker.AllPublicAPIs(module, c.ignores)
		r.QualityIssues = append(r.QualityIssues, checker.CheckModule(ctx, apis, module)...)
	}
}
