package drift

import (
	"context"

	"docdrift/internal/nav"
	"docdrift/internal/report"
)

// navPathsCheck flags navigation entries whose files do not exist.
type navPathsCheck struct {
	nav *nav.Validator
}

func (c *navPathsCheck) Name() string { return "nav paths" }

func (c *navPathsCheck) Check(_ context.Context, r *report.Report) {
	for _, broken := range c.nav.Check() {
		r.BrokenNavPaths = append(r.BrokenNavPaths, report.BrokenNavPath{
			Path:     broken.Path,
			Location: broken.Location,
		})
	}
}
