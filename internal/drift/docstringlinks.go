package drift

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"docdrift/internal/docscan"
	"docdrift/internal/report"
	"docdrift/internal/resolver"
)

// docstringLinksCheck verifies relative links written inside
// docstrings. Such links render on whichever page carries the API's
// cross-reference, so resolution starts from that page's directory.
type docstringLinksCheck struct {
	surface     *Surface
	scanner     *docscan.Scanner
	docsRoot    string
	projectRoot string
}

func (c *docstringLinksCheck) Name() string { return "docstring links" }

func (c *docstringLinksCheck) Check(_ context.Context, r *report.Report) {
	dirs := c.renderDirs()

	for _, api := range c.surface.APIs() {
		if api.Docstring == "" {
			continue
		}
		fqn := api.Module + "." + api.Name
		base, ok := dirs[fqn]
		if !ok {
			base = c.docsRoot
		}

		for _, link := range docscan.ScanText(api.Docstring, fqn+" (docstring)") {
			path := strings.SplitN(link.Path, "#", 2)[0]
			if _, ok := resolver.Resolve(resolver.Request{
				Path:        path,
				Dir:         base,
				DocsRoot:    c.docsRoot,
				ProjectRoot: c.projectRoot,
			}); ok {
				continue
			}
			r.BrokenLocalLinks = append(r.BrokenLocalLinks, report.BrokenLocalLink{
				Path:     link.Path,
				Location: fmt.Sprintf("%s:%d", link.File, link.Line),
				Text:     link.Text,
			})
		}
	}
}

// renderDirs maps each cross-reference target to the directory of the
// page carrying it. A shortened first-segment.last-segment alias is
// added so deep symbols re-exported at package level still find their
// page; the first page to claim an alias keeps it.
func (c *docstringLinksCheck) renderDirs() map[string]string {
	dirs := make(map[string]string)
	order := []string{}
	for _, ref := range c.scanner.CrossReferences() {
		if _, ok := dirs[ref.Target]; !ok {
			order = append(order, ref.Target)
		}
		dirs[ref.Target] = filepath.Dir(ref.File)
	}

	for _, target := range order {
		parts := strings.Split(target, ".")
		short := parts[0] + "." + parts[len(parts)-1]
		if short == target {
			continue
		}
		if _, ok := dirs[short]; !ok {
			dirs[short] = dirs[target]
		}
	}
	return dirs
}
