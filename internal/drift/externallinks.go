package drift

import (
	"context"
	"fmt"

	"docdrift/internal/docscan"
	"docdrift/internal/linkcheck"
	"docdrift/internal/report"
)

// externalLinksCheck probes every external URL for liveness.
type externalLinksCheck struct {
	scanner *docscan.Scanner
	prober  *linkcheck.Checker
	verbose bool
}

func (c *externalLinksCheck) Name() string { return "external links" }

func (c *externalLinksCheck) Check(ctx context.Context, r *report.Report) {
	if c.verbose {
		fmt.Println("Finding external links...")
	}
	links := c.scanner.ExternalLinks()
	if c.verbose {
		fmt.Printf("Found %d links, checking...\n", len(links))
	}

	// The total counts every occurrence; the prober reports per unique URL.
	r.TotalExternalLinks = len(links)

	for _, result := range c.prober.Check(ctx, links) {
		if !result.Broken {
			continue
		}
		var status any = result.StatusCode
		if result.StatusCode == 0 {
			status = result.Err
		}
		r.BrokenExternalLinks = append(r.BrokenExternalLinks, report.BrokenExternalLink{
			URL:      result.Link.URL,
			Status:   status,
			Location: fmt.Sprintf("%s:%d", result.Link.File, result.Link.Line),
			Text:     result.Link.Text,
		})
	}
}
