package quality

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"docdrift/internal/analyzer"
	"docdrift/internal/report"
)

// Checker scores public API docstrings with an LLM backend.
type Checker struct {
	backend Backend
	prompts *PromptBuilder

	// SampleRate bounds how many APIs per module are sent to the
	// backend. Values outside (0, 1) mean check everything.
	SampleRate float64
	Verbose    bool
}

func NewChecker(backend Backend) *Checker {
	return &Checker{
		backend:    backend,
		prompts:    &PromptBuilder{},
		SampleRate: 1.0,
	}
}

// CheckAPI reviews one API. A missing docstring is reported directly
// without consulting the backend.
func (c *Checker) CheckAPI(ctx context.Context, api analyzer.API) []report.QualityIssue {
	fqn := api.Module + "." + api.Name

	if api.Docstring == "" {
		return []report.QualityIssue{{
			APIName:    fqn,
			Severity:   "critical",
			Category:   "completeness",
			Message:    "No docstring found",
			Suggestion: "Add docstring explaining what this API does",
		}}
	}

	if c.Verbose {
		fmt.Printf("  Checking %s...\n", fqn)
	}

	prompt := c.prompts.BuildQualityPrompt(signatureOf(api), api.Docstring, fqn)
	eval, err := GenerateJSON(ctx, c.backend, prompt)
	if err != nil {
		return []report.QualityIssue{{
			APIName:    fqn,
			Severity:   "warning",
			Category:   "error",
			Message:    fmt.Sprintf("LLM check failed: %v", err),
			Suggestion: "Check LLM backend connection",
		}}
	}

	issues := make([]report.QualityIssue, 0, len(eval.Issues))
	for _, issue := range eval.Issues {
		issues = append(issues, report.QualityIssue{
			APIName:       fqn,
			Severity:      defaultString(issue.Severity, "warning"),
			Category:      defaultString(issue.Category, "unknown"),
			Message:       defaultString(issue.Message, "No message"),
			Suggestion:    defaultString(issue.Suggestion, "No suggestion"),
			LineReference: issue.LineReference,
		})
	}

	if c.Verbose {
		fmt.Printf("    Found %d issues (score: %v)\n", len(issues), eval.Score)
	}
	return issues
}

// CheckModule reviews every API of one module, sampling when a rate
// below 1.0 is configured.
func (c *Checker) CheckModule(ctx context.Context, apis []analyzer.API, module string) []report.QualityIssue {
	if len(apis) == 0 {
		return []report.QualityIssue{{
			APIName:    module,
			Severity:   "warning",
			Category:   "error",
			Message:    fmt.Sprintf("No public APIs found in module %s", module),
			Suggestion: "Check module name or ensure it is installed",
		}}
	}

	if c.SampleRate > 0 && c.SampleRate < 1 {
		apis = sample(apis, c.SampleRate)
	}

	if c.Verbose {
		fmt.Printf("Checking %d APIs in %s...\n", len(apis), module)
	}

	var issues []report.QualityIssue
	for _, api := range apis {
		issues = append(issues, c.CheckAPI(ctx, api)...)
	}
	return issues
}

// sample keeps a random subset of at least one API, preserving the
// original order.
func sample(apis []analyzer.API, rate float64) []analyzer.API {
	n := int(float64(len(apis)) * rate)
	if n < 1 {
		n = 1
	}
	picked := rand.Perm(len(apis))[:n]
	sort.Ints(picked)

	out := make([]analyzer.API, 0, n)
	for _, i := range picked {
		out = append(out, apis[i])
	}
	return out
}

func signatureOf(api analyzer.API) string {
	sig := fmt.Sprintf("def %s(%s)", api.Name, strings.Join(api.Parameters, ", "))
	if api.ReturnAnnotation != "" {
		sig += " -> " + api.ReturnAnnotation
	}
	return sig
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
