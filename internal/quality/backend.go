// Package quality scores docstring quality through an LLM backend.
package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Backend generates one completion per prompt.
type Backend interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Model   string
	APIKey  string
	BaseURL string
}

// NewBackend builds the configured backend, defaulting to a local ollama.
func NewBackend(ctx context.Context, opts Options) (Backend, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = "ollama"
	}

	switch backend {
	case "ollama":
		model := opts.Model
		if model == "" {
			model = "qwen2.5:3b"
		}
		return NewOllamaBackend(model, opts.BaseURL), nil
	case "openai":
		model := opts.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAIBackend(opts.APIKey, model, opts.BaseURL), nil
	case "gemini":
		model := opts.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		return NewGeminiBackend(ctx, opts.APIKey, model)
	default:
		return nil, fmt.Errorf("unsupported llm backend: %s (choose from: ollama, openai, gemini)", opts.Backend)
	}
}

// Evaluation is the JSON envelope every backend is asked to produce.
type Evaluation struct {
	Issues  []EvaluationIssue `json:"issues"`
	Score   float64           `json:"score"`
	Summary string            `json:"summary"`
}

// EvaluationIssue is one finding inside an Evaluation.
type EvaluationIssue struct {
	Severity      string `json:"severity"`
	Category      string `json:"category"`
	Message       string `json:"message"`
	Suggestion    string `json:"suggestion"`
	LineReference string `json:"line_reference"`
}

// GenerateJSON runs the prompt and decodes the reply, tolerating markdown
// fences around the JSON body. An unparseable reply is not an error; it
// scores zero and carries no issues.
func GenerateJSON(ctx context.Context, b Backend, prompt string) (*Evaluation, error) {
	response, err := b.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var eval Evaluation
	if err := json.Unmarshal([]byte(extractJSON(response)), &eval); err != nil {
		return &Evaluation{Summary: "Failed to parse LLM response"}, nil
	}
	return &eval, nil
}

// extractJSON strips a ```json or plain ``` fence when the model wraps its
// reply in one.
func extractJSON(response string) string {
	for _, fence := range []string{"```json", "```"} {
		i := strings.Index(response, fence)
		if i < 0 {
			continue
		}
		rest := response[i+len(fence):]
		if j := strings.Index(rest, "```"); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest)
	}
	return response
}
