package report

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	titleColor      = color.New(color.Bold)
	sectionColor    = color.New(color.FgYellow, color.Bold)
	okColor         = color.New(color.FgGreen, color.Bold)
	criticalColor   = color.New(color.FgRed, color.Bold)
	warningColor    = color.New(color.FgYellow, color.Bold)
	suggestionColor = color.New(color.FgCyan, color.Bold)
)

var rule = strings.Repeat("=", 60)

// Format renders the report as terminal text. Colors degrade to plain
// text when stdout is not a TTY.
func Format(r *Report) string {
	lines := []string{rule, titleColor.Sprint("DOCUMENTATION DRIFT REPORT"), rule}
	if r.LLMBackend != "" && r.LLMModel != "" {
		lines = append(lines, fmt.Sprintf("LLM: %s / %s", r.LLMBackend, r.LLMModel))
	}
	lines = append(lines, "")

	if len(r.MissingInDocs) > 0 {
		lines = append(lines, sectionColor.Sprintf("Missing from docs (%d):", len(r.MissingInDocs)))
		for _, item := range r.MissingInDocs {
			lines = append(lines, fmt.Sprintf("  - %s", item))
		}
		lines = append(lines, "")
	}

	if len(r.SignatureMismatches) > 0 {
		lines = append(lines, sectionColor.Sprintf("Signature mismatches (%d):", len(r.SignatureMismatches)))
		for _, mismatch := range r.SignatureMismatches {
			lines = append(lines, fmt.Sprintf("  - %s: %s", mismatch.Name, mismatch.Issue))
		}
		lines = append(lines, "")
	}

	if len(r.BrokenReferences) > 0 {
		lines = append(lines, sectionColor.Sprintf("Broken references (%d):", len(r.BrokenReferences)))
		for _, ref := range r.BrokenReferences {
			lines = append(lines, fmt.Sprintf("  - %s", ref))
		}
		lines = append(lines, "")
	}

	if r.TotalExternalLinks > 0 {
		lines = append(lines, sectionColor.Sprintf("External links: %d/%d broken",
			len(r.BrokenExternalLinks), r.TotalExternalLinks))
	}
	if len(r.BrokenExternalLinks) > 0 {
		for _, link := range r.BrokenExternalLinks {
			lines = append(lines, fmt.Sprintf("  %s: %s (status: %v)", link.Location, link.URL, link.Status))
		}
		lines = append(lines, "")
	}

	if len(r.BrokenLocalLinks) > 0 {
		lines = append(lines, sectionColor.Sprintf("Broken local links (%d):", len(r.BrokenLocalLinks)))
		for _, link := range r.BrokenLocalLinks {
			if link.Reason != "" {
				lines = append(lines, fmt.Sprintf("  %s: %s (%s)", link.Location, link.Path, link.Reason))
			} else {
				lines = append(lines, fmt.Sprintf("  %s: %s", link.Location, link.Path))
			}
		}
		lines = append(lines, "")
	}

	if len(r.BrokenNavPaths) > 0 {
		lines = append(lines, sectionColor.Sprintf("Broken mkdocs.yml paths (%d):", len(r.BrokenNavPaths)))
		for _, nav := range r.BrokenNavPaths {
			lines = append(lines, fmt.Sprintf("  %s: %s", nav.Location, nav.Path))
		}
		lines = append(lines, "")
	}

	if len(r.UndocumentedParams) > 0 {
		lines = append(lines, sectionColor.Sprintf("Undocumented parameters (%d):", len(r.UndocumentedParams)))
		for _, entry := range r.UndocumentedParams {
			lines = append(lines, fmt.Sprintf("  - %s: %s", entry.Name, entry.Params))
		}
		lines = append(lines, "")
	}

	if len(r.QualityIssues) > 0 {
		lines = append(lines, sectionColor.Sprintf("Quality issues (%d):", len(r.QualityIssues)))
		lines = append(lines, "")
		lines = append(lines, qualityLines(r.QualityIssues)...)
	}

	if len(r.Warnings) > 0 {
		lines = append(lines, sectionColor.Sprintf("Warnings (%d):", len(r.Warnings)))
		for _, item := range r.Warnings {
			lines = append(lines, fmt.Sprintf("  - %s", item))
		}
		lines = append(lines, "")
	}

	if !r.HasIssues() {
		lines = append(lines, okColor.Sprint("No documentation drift detected."))
	}

	lines = append(lines, rule)
	return strings.Join(lines, "\n")
}

// qualityLines groups issues by severity, most severe first.
func qualityLines(issues []QualityIssue) []string {
	bySeverity := make(map[string][]QualityIssue)
	for _, issue := range issues {
		bySeverity[issue.Severity] = append(bySeverity[issue.Severity], issue)
	}

	var lines []string
	for _, severity := range []string{"critical", "warning", "suggestion"} {
		group := bySeverity[severity]
		if len(group) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s %s (%d):", severityIcon(severity), strings.ToUpper(severity), len(group)))
		for _, issue := range group {
			lines = append(lines, fmt.Sprintf("    %s [%s]", issue.APIName, issue.Category))
			lines = append(lines, fmt.Sprintf("      Issue: %s", issue.Message))
			lines = append(lines, fmt.Sprintf("      Fix: %s", issue.Suggestion))
			if issue.LineReference != "" {
				lines = append(lines, fmt.Sprintf("      Text: %s", issue.LineReference))
			}
			lines = append(lines, "")
		}
	}
	return lines
}

func severityIcon(severity string) string {
	switch severity {
	case "critical":
		return criticalColor.Sprint("✘")
	case "warning":
		return warningColor.Sprint("⚠")
	case "suggestion":
		return suggestionColor.Sprint("ℹ")
	}
	return "-"
}
