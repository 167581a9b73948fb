package drift

import (
	"context"
	"strings"

	"docdrift/internal/analyzer"
	"docdrift/internal/docscan"
	"docdrift/internal/report"
)

// coverageCheck flags public APIs that no documentation page
// references.
type coverageCheck struct {
	surface *Surface
	scanner *docscan.Scanner
	modules []string
	skip    map[string]bool
}

func (c *coverageCheck) Name() string { return "api coverage" }

func (c *coverageCheck) Check(_ context.Context, r *report.Report) {
	documented, names := c.indexReferences()

	for _, api := range c.surface.APIs() {
		if c.skip[api.Name] {
			continue
		}
		if isDocumented(api, documented, names) {
			continue
		}
		r.MissingInDocs = append(r.MissingInDocs, api.Module+"."+api.Name)
	}
}

// indexReferences builds the documented-target set plus a per-module
// name index: every reference rooted at a configured module registers
// both its full dotted path and its trailing segment there.
func (c *coverageCheck) indexReferences() (map[string]bool, map[string]map[string]bool) {
	documented := make(map[string]bool)
	names := make(map[string]map[string]bool, len(c.modules))
	for _, m := range c.modules {
		names[m] = make(map[string]bool)
	}

	for _, ref := range c.scanner.CrossReferences() {
		documented[ref.Target] = true

		parts := strings.Split(ref.Target, ".")
		if len(parts) < 2 {
			continue
		}
		if set, ok := names[parts[0]]; ok {
			set[parts[len(parts)-1]] = true
			set[ref.Target] = true
		}
	}
	return documented, names
}

// isDocumented applies three naming conventions: the bare name indexed
// under the API's top-level package, the exact dotted path, and any
// reference sharing the trailing segment. The suffix rule is loose on
// purpose so symbols re-exported under shallow paths still count.
func isDocumented(api analyzer.API, documented map[string]bool, names map[string]map[string]bool) bool {
	base := strings.Split(api.Module, ".")[0]
	if names[base][api.Name] {
		return true
	}
	if documented[api.Module+"."+api.Name] {
		return true
	}
	suffix := "." + api.Name
	for target := range documented {
		if strings.HasSuffix(target, suffix) {
			return true
		}
	}
	return false
}
