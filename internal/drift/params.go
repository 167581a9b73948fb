package drift

import (
	"context"
	"strings"

	"docdrift/internal/analyzer"
	"docdrift/internal/report"
)

// ignoreParams are names the substring check would flag constantly
// without signal: enum-machinery parameters and the class binding.
var ignoreParams = map[string]bool{
	"value":    true,
	"names":    true,
	"module":   true,
	"qualname": true,
	"type":     true,
	"start":    true,
	"boundary": true,
	"cls":      true,
}

// paramsCheck flags parameters that a docstring never mentions.
type paramsCheck struct {
	surface *Surface
}

func (c *paramsCheck) Name() string { return "parameter docs" }

func (c *paramsCheck) Check(_ context.Context, r *report.Report) {
	for _, api := range c.surface.APIs() {
		if api.Docstring == "" || len(api.Parameters) == 0 {
			continue
		}

		undocumented := []string{}
		for _, param := range api.Parameters {
			name := analyzer.ParamName(param)
			if ignoreParams[name] || strings.Contains(api.Docstring, name) {
				continue
			}
			undocumented = append(undocumented, name)
		}

		if len(undocumented) > 0 {
			r.UndocumentedParams = append(r.UndocumentedParams, report.UndocumentedParams{
				Name:   api.Module + "." + api.Name,
				Params: strings.Join(undocumented, ", "),
			})
		}
	}
}
