// Package linkcheck probes external links over HTTP.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/errgroup"

	"docdrift/internal/docscan"
)

// userAgent mirrors a desktop browser; several documentation hosts refuse
// requests from obvious bots.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// acceptableStatus lists codes that mean blocked but existing.
var acceptableStatus = map[int]bool{
	http.StatusForbidden:        true,
	http.StatusMethodNotAllowed: true,
	http.StatusTooManyRequests:  true,
}

// Result is the verdict for one probed link.
type Result struct {
	Link       docscan.ExternalLink
	StatusCode int
	Err        string
	Broken     bool
}

// Checker probes links with bounded concurrency. Identical URLs are
// probed once, keeping the first occurrence's location.
type Checker struct {
	Timeout     time.Duration
	Concurrency int
	SkipDomains []string
	Verbose     bool
}

// NewChecker creates a checker with the default timeout and concurrency.
func NewChecker() *Checker {
	return &Checker{Timeout: 10 * time.Second, Concurrency: 5}
}

// Check probes every link and returns one result per unique, unskipped URL.
// Result order matches input order; a probe failure is a broken result,
// never an error.
func (c *Checker) Check(ctx context.Context, links []docscan.ExternalLink) []Result {
	unique := deduplicate(links)
	filtered := make([]docscan.ExternalLink, 0, len(unique))
	for _, link := range unique {
		if c.shouldSkip(link.URL) {
			continue
		}
		filtered = append(filtered, link)
	}

	client := &http.Client{Timeout: c.timeout()}
	results := make([]Result, len(filtered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency())
	for i, link := range filtered {
		g.Go(func() error {
			// Index per goroutine is unique, no mutex needed.
			results[i] = c.checkOne(gctx, client, link)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (c *Checker) checkOne(ctx context.Context, client *http.Client, link docscan.ExternalLink) Result {
	if c.Verbose {
		fmt.Printf("  Checking %s...\n", link.URL)
	}
	status, err := probe(ctx, client, http.MethodHead, link.URL)
	if err == nil && status == http.StatusMethodNotAllowed {
		// Some hosts reject HEAD outright; retry once as GET.
		status, err = probe(ctx, client, http.MethodGet, link.URL)
	}
	if err != nil {
		return Result{Link: link, Err: errorText(err), Broken: true}
	}
	return Result{
		Link:       link,
		StatusCode: status,
		Broken:     status >= 400 && !acceptableStatus[status],
	}
}

func probe(ctx context.Context, client *http.Client, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// errorText collapses timeouts to a stable label.
func errorText(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return "Timeout"
	}
	return err.Error()
}

func (c *Checker) shouldSkip(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, domain := range c.SkipDomains {
		if parsed.Host == domain {
			if c.Verbose {
				fmt.Printf("  Skipping %s (domain in skip list)\n", rawURL)
			}
			return true
		}
	}
	return false
}

// deduplicate keeps the first occurrence of each URL.
func deduplicate(links []docscan.ExternalLink) []docscan.ExternalLink {
	seen := make(map[string]bool, len(links))
	unique := make([]docscan.ExternalLink, 0, len(links))
	for _, link := range links {
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true
		unique = append(unique, link)
	}
	return unique
}

func (c *Checker) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 10 * time.Second
}

func (c *Checker) concurrency() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return 5
}
