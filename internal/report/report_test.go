package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestReportHasIssues(t *testing.T) {
	r := New()
	assert.False(t, r.HasIssues())

	r.Warnings = append(r.Warnings, "Could not parse mkdocs.yml: yaml error")
	assert.False(t, r.HasIssues(), "warnings alone are not drift")

	r.MissingInDocs = append(r.MissingInDocs, "pkg.bar")
	assert.True(t, r.HasIssues())
}

func TestReportJSON(t *testing.T) {
	r := New()
	r.BrokenReferences = append(r.BrokenReferences, "pkg.Gone in docs/api.md:12")
	r.BrokenLocalLinks = append(r.BrokenLocalLinks, BrokenLocalLink{
		Path: "x.md", Location: "docs/index.md:3", Text: "x",
	})
	r.BrokenNavPaths = append(r.BrokenNavPaths, BrokenNavPath{
		Path: "missing.md", Location: "mkdocs.yml",
	})
	r.LLMBackend = "ollama"
	r.TotalExternalLinks = 7

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, true, decoded["has_issues"])
	assert.Contains(t, decoded, "broken_mkdocs_paths")
	assert.Contains(t, decoded, "signature_mismatches")

	t.Run("run metadata stays out of the wire format", func(t *testing.T) {
		assert.NotContains(t, decoded, "llm_backend")
		assert.NotContains(t, decoded, "total_external_links")
	})

	t.Run("empty lists serialize as arrays", func(t *testing.T) {
		data, err := json.Marshal(New())
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, []any{}, decoded["missing_in_docs"])
		assert.Equal(t, []any{}, decoded["quality_issues"])
		assert.Equal(t, false, decoded["has_issues"])
	})

	t.Run("reason key only appears when set", func(t *testing.T) {
		assert.NotContains(t, string(data), `"reason"`)

		r := New()
		r.BrokenLocalLinks = append(r.BrokenLocalLinks, BrokenLocalLink{
			Path: "n.ipynb", Reason: "notebook links should omit .ipynb",
		})
		withReason, err := json.Marshal(r)
		require.NoError(t, err)
		assert.Contains(t, string(withReason), `"reason":"notebook links should omit .ipynb"`)
	})
}

func TestFormat(t *testing.T) {
	r := New()
	r.LLMBackend = "ollama"
	r.LLMModel = "qwen2.5:3b"
	r.MissingInDocs = []string{"pkg.bar"}
	r.BrokenReferences = []string{"pkg.Gone in docs/api.md:12"}
	r.TotalExternalLinks = 5
	r.BrokenExternalLinks = []BrokenExternalLink{
		{URL: "https://dead.example.com", Status: 404, Location: "docs/index.md:3", Text: "dead"},
	}
	r.BrokenLocalLinks = []BrokenLocalLink{
		{Path: "missing.md", Location: "docs/index.md:7", Text: "m"},
		{Path: "other.ipynb", Location: "docs/nb.ipynb:2", Text: "o", Reason: "notebook links should omit .ipynb"},
	}
	r.BrokenNavPaths = []BrokenNavPath{{Path: "gone.md", Location: "mkdocs.yml"}}
	r.UndocumentedParams = []UndocumentedParams{{Name: "pkg.run", Params: "steps, verbose"}}
	r.QualityIssues = []QualityIssue{
		{APIName: "pkg.run", Severity: "critical", Category: "accuracy", Message: "wrong default", Suggestion: "say 100", LineReference: "steps: Number"},
		{APIName: "pkg.Engine", Severity: "suggestion", Category: "clarity", Message: "terse", Suggestion: "expand"},
	}
	r.Warnings = []string{`Could not import pkg.gone: no module named "pkg.gone"`}

	out := Format(r)

	assert.Contains(t, out, "DOCUMENTATION DRIFT REPORT")
	assert.Contains(t, out, "LLM: ollama / qwen2.5:3b")
	assert.Contains(t, out, "Missing from docs (1):")
	assert.Contains(t, out, "  - pkg.bar")
	assert.Contains(t, out, "Broken references (1):")
	assert.Contains(t, out, "  - pkg.Gone in docs/api.md:12")
	assert.Contains(t, out, "External links: 1/5 broken")
	assert.Contains(t, out, "  docs/index.md:3: https://dead.example.com (status: 404)")
	assert.Contains(t, out, "Broken local links (2):")
	assert.Contains(t, out, "  docs/index.md:7: missing.md")
	assert.Contains(t, out, "  docs/nb.ipynb:2: other.ipynb (notebook links should omit .ipynb)")
	assert.Contains(t, out, "Broken mkdocs.yml paths (1):")
	assert.Contains(t, out, "  mkdocs.yml: gone.md")
	assert.Contains(t, out, "Undocumented parameters (1):")
	assert.Contains(t, out, "  - pkg.run: steps, verbose")
	assert.Contains(t, out, "Quality issues (2):")
	assert.Contains(t, out, "✘ CRITICAL (1):")
	assert.Contains(t, out, "    pkg.run [accuracy]")
	assert.Contains(t, out, "      Issue: wrong default")
	assert.Contains(t, out, "      Fix: say 100")
	assert.Contains(t, out, "      Text: steps: Number")
	assert.Contains(t, out, "ℹ SUGGESTION (1):")
	assert.Contains(t, out, "Warnings (1):")
	assert.NotContains(t, out, "No documentation drift detected.")

	t.Run("critical appears before suggestion", func(t *testing.T) {
		assert.Less(t, strings.Index(out, "CRITICAL"), strings.Index(out, "SUGGESTION"))
	})
}

func TestFormatCleanReport(t *testing.T) {
	out := Format(New())
	assert.Contains(t, out, "No documentation drift detected.")
	assert.NotContains(t, out, "Missing from docs")
	assert.NotContains(t, out, "External links:")
}
