// Package drift composes the documentation checks into one run that
// fills a shared report.
package drift

import (
	"context"
	"path/filepath"
	"time"

	"docdrift/internal/analyzer"
	"docdrift/internal/docscan"
	"docdrift/internal/linkcheck"
	"docdrift/internal/nav"
	"docdrift/internal/quality"
	"docdrift/internal/report"
)

// Options configure one detection run. Toggles select which check
// groups execute; nothing is enabled by default.
type Options struct {
	ProjectRoot string
	DocsDir     string // relative to ProjectRoot unless absolute
	MkdocsFile  string // relative to ProjectRoot unless absolute

	Modules          []string
	IgnoreSubmodules []string
	SkipReexports    []string // names documented upstream, excluded from coverage

	Basic         bool
	ExternalLinks bool
	Quality       bool

	LinkTimeout     time.Duration
	LinkConcurrency int
	SkipDomains     []string

	LLMBackend    string
	LLMModel      string
	LLMAPIKey     string
	LLMBaseURL    string
	QualitySample float64

	Verbose bool
}

// Checker is one drift check. Checks append findings to the shared
// report and never abort the run.
type Checker interface {
	Name() string
	Check(ctx context.Context, r *report.Report)
}

// Detector wires the shared walker, scanner, and nav validator into
// the configured sequence of checks. The components memoize their
// filesystem work, so every check sees the same view of the project.
type Detector struct {
	opts     Options
	docsRoot string

	walker  *analyzer.Walker
	scanner *docscan.Scanner
	nav     *nav.Validator
	surface *Surface
}

func NewDetector(opts Options) *Detector {
	docsRoot := resolveUnder(opts.ProjectRoot, opts.DocsDir, "docs")
	mkdocsFile := resolveUnder(opts.ProjectRoot, opts.MkdocsFile, "mkdocs.yml")

	walker := analyzer.NewWalker(opts.ProjectRoot)
	return &Detector{
		opts:     opts,
		docsRoot: docsRoot,
		walker:   walker,
		scanner:  docscan.NewScanner(docsRoot, opts.ProjectRoot),
		nav:      nav.NewValidator(mkdocsFile, docsRoot),
		surface:  NewSurface(walker, opts.Modules, opts.IgnoreSubmodules),
	}
}

// Run executes every enabled check against one fresh report, then
// surfaces the non-fatal warnings collected by the shared components.
func (d *Detector) Run(ctx context.Context) *report.Report {
	r := report.New()
	for _, check := range d.checkers() {
		check.Check(ctx, r)
	}

	if d.opts.Basic {
		r.Warnings = append(r.Warnings, d.surface.Warnings()...)
		r.Warnings = append(r.Warnings, d.nav.Warnings()...)
	}
	if d.opts.Basic || d.opts.ExternalLinks {
		r.Warnings = append(r.Warnings, d.scanner.Warnings()...)
	}
	return r
}

func (d *Detector) checkers() []Checker {
	checks := []Checker{}
	if d.opts.Basic {
		checks = append(checks,
			&coverageCheck{
				surface: d.surface,
				scanner: d.scanner,
				modules: d.opts.Modules,
				skip:    stringSet(d.opts.SkipReexports),
			},
			&referencesCheck{walker: d.walker, scanner: d.scanner},
			&paramsCheck{surface: d.surface},
			&localLinksCheck{
				scanner:     d.scanner,
				nav:         d.nav,
				docsRoot:    d.docsRoot,
				projectRoot: d.opts.ProjectRoot,
			},
			&docstringLinksCheck{
				surface:     d.surface,
				scanner:     d.scanner,
				docsRoot:    d.docsRoot,
				projectRoot: d.opts.ProjectRoot,
			},
			&navPathsCheck{nav: d.nav},
		)
	}
	if d.opts.ExternalLinks {
		prober := linkcheck.NewChecker()
		if d.opts.LinkTimeout > 0 {
			prober.Timeout = d.opts.LinkTimeout
		}
		if d.opts.LinkConcurrency > 0 {
			prober.Concurrency = d.opts.LinkConcurrency
		}
		prober.SkipDomains = d.opts.SkipDomains
		prober.Verbose = d.opts.Verbose
		checks = append(checks, &externalLinksCheck{
			scanner: d.scanner,
			prober:  prober,
			verbose: d.opts.Verbose,
		})
	}
	if d.opts.Quality {
		checks = append(checks, &qualityCheck{
			walker:  d.walker,
			modules: d.opts.Modules,
			ignores: d.opts.IgnoreSubmodules,
			backend: quality.Options{
				Backend: d.opts.LLMBackend,
				Model:   d.opts.LLMModel,
				APIKey:  d.opts.LLMAPIKey,
				BaseURL: d.opts.LLMBaseURL,
			},
			sample:  d.opts.QualitySample,
			verbose: d.opts.Verbose,
		})
	}
	return checks
}

func resolveUnder(root, path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
