// Package report defines the drift report and its serialized forms.
package report

import "encoding/json"

// SignatureMismatch is reserved for comparing code signatures against the
// signatures shown in rendered docs.
type SignatureMismatch struct {
	Name  string `json:"name"`
	Issue string `json:"issue"`
}

// BrokenExternalLink records an unreachable URL. Status carries the final
// HTTP status code, or the error string when no response arrived.
type BrokenExternalLink struct {
	URL      string `json:"url"`
	Status   any    `json:"status"`
	Location string `json:"location"`
	Text     string `json:"text"`
}

// BrokenLocalLink records a file link that does not resolve, or resolves
// but violates a site convention named in Reason.
type BrokenLocalLink struct {
	Path     string `json:"path"`
	Location string `json:"location"`
	Text     string `json:"text"`
	Reason   string `json:"reason,omitempty"`
}

// BrokenNavPath records a nav entry pointing at a missing file.
type BrokenNavPath struct {
	Path     string `json:"path"`
	Location string `json:"location"`
}

// UndocumentedParams records one API whose docstring never mentions the
// listed parameters.
type UndocumentedParams struct {
	Name   string `json:"name"`
	Params string `json:"params"`
}

// QualityIssue is one docstring problem reported by the quality scorer.
type QualityIssue struct {
	APIName       string `json:"api_name"`
	Severity      string `json:"severity"`
	Category      string `json:"category"`
	Message       string `json:"message"`
	Suggestion    string `json:"suggestion"`
	LineReference string `json:"line_reference"`
}

// Report accumulates every finding from a drift run. Each check appends to
// its own field, so check ordering never changes the content.
type Report struct {
	MissingInDocs       []string
	SignatureMismatches []SignatureMismatch
	BrokenReferences    []string
	BrokenExternalLinks []BrokenExternalLink
	BrokenLocalLinks    []BrokenLocalLink
	BrokenNavPaths      []BrokenNavPath
	UndocumentedParams  []UndocumentedParams
	QualityIssues       []QualityIssue
	Warnings            []string

	// Run metadata shown by the text formatter but kept out of the
	// serialized report.
	LLMBackend         string
	LLMModel           string
	TotalExternalLinks int
}

// New returns an empty report whose list fields serialize as [] rather
// than null.
func New() *Report {
	return &Report{
		MissingInDocs:       []string{},
		SignatureMismatches: []SignatureMismatch{},
		BrokenReferences:    []string{},
		BrokenExternalLinks: []BrokenExternalLink{},
		BrokenLocalLinks:    []BrokenLocalLink{},
		BrokenNavPaths:      []BrokenNavPath{},
		UndocumentedParams:  []UndocumentedParams{},
		QualityIssues:       []QualityIssue{},
		Warnings:            []string{},
	}
}

// HasIssues reports whether any check found drift. Warnings alone do not
// count.
func (r *Report) HasIssues() bool {
	return len(r.MissingInDocs) > 0 ||
		len(r.SignatureMismatches) > 0 ||
		len(r.BrokenReferences) > 0 ||
		len(r.BrokenExternalLinks) > 0 ||
		len(r.BrokenLocalLinks) > 0 ||
		len(r.BrokenNavPaths) > 0 ||
		len(r.UndocumentedParams) > 0 ||
		len(r.QualityIssues) > 0
}

// MarshalJSON emits snake_case keys plus a computed has_issues field.
func (r *Report) MarshalJSON() ([]byte, error) {
	type wire struct {
		MissingInDocs       []string             `json:"missing_in_docs"`
		SignatureMismatches []SignatureMismatch  `json:"signature_mismatches"`
		BrokenReferences    []string             `json:"broken_references"`
		BrokenExternalLinks []BrokenExternalLink `json:"broken_external_links"`
		BrokenLocalLinks    []BrokenLocalLink    `json:"broken_local_links"`
		BrokenNavPaths      []BrokenNavPath      `json:"broken_mkdocs_paths"`
		UndocumentedParams  []UndocumentedParams `json:"undocumented_params"`
		QualityIssues       []QualityIssue       `json:"quality_issues"`
		Warnings            []string             `json:"warnings"`
		HasIssues           bool                 `json:"has_issues"`
	}
	return json.Marshal(wire{
		MissingInDocs:       r.MissingInDocs,
		SignatureMismatches: r.SignatureMismatches,
		BrokenReferences:    r.BrokenReferences,
		BrokenExternalLinks: r.BrokenExternalLinks,
		BrokenLocalLinks:    r.BrokenLocalLinks,
		BrokenNavPaths:      r.BrokenNavPaths,
		UndocumentedParams:  r.UndocumentedParams,
		QualityIssues:       r.QualityIssues,
		Warnings:            r.Warnings,
		HasIssues:           r.HasIssues(),
	})
}
