package drift

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"docdrift/internal/docscan"
	"docdrift/internal/nav"
	"docdrift/internal/report"
	"docdrift/internal/resolver"
)

// localLinksCheck resolves every documentation link against the
// filesystem and flags site routing-convention violations.
type localLinksCheck struct {
	scanner     *docscan.Scanner
	nav         *nav.Validator
	docsRoot    string
	projectRoot string
}

func (c *localLinksCheck) Name() string { return "local links" }

func (c *localLinksCheck) Check(_ context.Context, r *report.Report) {
	navFiles := c.nav.FileSet()
	for _, link := range c.scanner.LocalLinks() {
		c.validate(link, navFiles, r)
	}
}

func (c *localLinksCheck) validate(link docscan.LocalLink, navFiles map[string]bool, r *report.Report) {
	path := strings.TrimRight(strings.SplitN(link.Path, "#", 2)[0], "/")
	resolved, ok := resolver.Resolve(resolver.Request{
		Path:         path,
		Dir:          filepath.Dir(link.File),
		SourceFile:   link.File,
		FromNotebook: link.FromNotebook,
		DocsRoot:     c.docsRoot,
		ProjectRoot:  c.projectRoot,
	})
	location := fmt.Sprintf("%s:%d", link.File, link.Line)

	switch {
	case !ok:
		r.BrokenLocalLinks = append(r.BrokenLocalLinks, report.BrokenLocalLink{
			Path:     path,
			Location: location,
			Text:     link.Text,
		})
	case link.FromNotebook && strings.HasSuffix(path, ".ipynb"):
		// The site routes notebooks by stem, so a notebook-to-notebook
		// link carrying the extension 404s even when the file exists.
		r.BrokenLocalLinks = append(r.BrokenLocalLinks, report.BrokenLocalLink{
			Path:     path,
			Location: location,
			Text:     link.Text,
			Reason:   "notebook links should omit .ipynb",
		})
	case strings.HasSuffix(path, ".md") && len(navFiles) > 0:
		rel, err := filepath.Rel(c.docsRoot, resolved)
		if err != nil || rel == ".." || strings.HasPrefix(rel, "../") {
			return
		}
		if !navFiles[rel] {
			r.BrokenLocalLinks = append(r.BrokenLocalLinks, report.BrokenLocalLink{
				Path:     link.Path,
				Location: location,
				Text:     link.Text,
				Reason:   ".md file not in mkdocs nav",
			})
		}
	}
}
