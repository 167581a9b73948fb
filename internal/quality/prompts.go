package quality

import (
	"fmt"
	"strings"
)

// PromptBuilder constructs the review prompts sent to a backend.
type PromptBuilder struct{}

// BuildQualityPrompt asks for one combined review covering language
// quality, code alignment, completeness, and technical accuracy.
func (pb *PromptBuilder) BuildQualityPrompt(signature, docstring, apiName string) string {
	var sb strings.Builder

	sb.WriteString("Think longer. You are a senior technical writer reviewing Python library documentation with 15 years of experience.\n\n")
	fmt.Fprintf(&sb, "Task: Comprehensive quality review of `%s` documentation.\n\n", apiName)

	sb.WriteString("Signature:\n```python\n")
	sb.WriteString(signature)
	sb.WriteString("\n```\n\n")

	sb.WriteString("Docstring:\n```\n")
	sb.WriteString(docstring)
	sb.WriteString("\n```\n\n")

	sb.WriteString("Check ALL of:\n")
	sb.WriteString("1. **English Quality**: grammar, spelling, clarity, style\n")
	sb.WriteString("2. **Code Alignment**: docstring matches signature and implementation\n")
	sb.WriteString("3. **Completeness**: all parameters, returns, exceptions documented\n")
	sb.WriteString("4. **Technical Accuracy**: correct terminology, accurate descriptions\n\n")

	sb.WriteString("CRITICAL: Use simple, clear language. Provide concrete before/after examples for every issue.\n\n")

	sb.WriteString("Respond ONLY with valid JSON (no markdown):\n")
	sb.WriteString(`{
  "issues": [
    {
      "severity": "critical|warning|suggestion",
      "category": "grammar|clarity|style|params|returns|exceptions|completeness|accuracy",
      "message": "Simple explanation anyone can understand",
      "suggestion": "Specific fix with before/after example",
      "line_reference": "exact problematic text or null"
    }
  ],
  "score": 0-100,
  "summary": "One sentence overall assessment"
}
`)

	sb.WriteString("\nExample issue formats:\n\n")
	sb.WriteString("Grammar issue:\n")
	sb.WriteString(`{
  "message": "Missing article 'the' makes sentence unclear",
  "suggestion": "Change 'Evolves state' to 'Evolves the state'",
  "line_reference": "Evolves state"
}
`)
	sb.WriteString("\nMissing parameter:\n")
	sb.WriteString(`{
  "message": "Parameter 'dt' is not documented",
  "suggestion": "Add: 'dt (float): Time step in nanoseconds. Default: 10'",
  "line_reference": null
}
`)

	sb.WriteString("\nSeverity guide:\n")
	sb.WriteString("- critical: Wrong info, missing required docs, major grammar errors\n")
	sb.WriteString("- warning: Unclear phrasing, minor inconsistencies, missing nice-to-haves\n")
	sb.WriteString("- suggestion: Style improvements, additional examples\n\n")
	sb.WriteString("Score guide: 90-100 excellent, 70-89 good, 50-69 needs improvement, <50 poor")

	return sb.String()
}
