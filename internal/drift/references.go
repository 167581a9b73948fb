package drift

import (
	"context"
	"fmt"
	"strings"

	"docdrift/internal/analyzer"
	"docdrift/internal/docscan"
	"docdrift/internal/report"
)

// referencesCheck verifies that every cross-reference target resolves
// to a real symbol.
type referencesCheck struct {
	walker  *analyzer.Walker
	scanner *docscan.Scanner
}

func (c *referencesCheck) Name() string { return "references" }

func (c *referencesCheck) Check(_ context.Context, r *report.Report) {
	for _, ref := range c.scanner.CrossReferences() {
		// References into packages outside the tree cannot be checked
		// statically and are skipped.
		if !c.walker.HasModule(strings.Split(ref.Target, ".")[0]) {
			continue
		}
		if c.walker.ResolveReference(ref.Target) {
			continue
		}
		r.BrokenReferences = append(r.BrokenReferences,
			fmt.Sprintf("%s in %s:%d", ref.Target, ref.File, ref.Line))
	}
}
