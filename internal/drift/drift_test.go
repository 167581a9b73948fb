package drift

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const pkgInit = `"""Example package."""

__all__ = ["Engine", "bar", "Result"]

from .core import Engine, bar
from .extras import Result
`

const pkgCore = `class Engine:
    """Engine powers the simulation.

    See [the changelog](../CHANGELOG.md) for history.

    Args:
        capacity: How many jobs fit.
    """

    def __init__(self, capacity: int = 4):
        self.capacity = capacity


def bar(x: int, y: int = 10) -> int:
    """bar. Args: x: desc"""
    return x + y
`

const pkgExtras = `class Result:
    """Holds run output.

    See [the schema](schemas/result.json) for field meanings.
    """

    def __init__(self):
        self.values = []
`

const pkgHelpers = `__all__ = ["helper_fn"]


def helper_fn(data):
    """Transforms data."""
    return data
`

const pkgInternal = `__all__ = ["secret"]


def secret():
    return 1
`

const mkdocsConfig = `site_name: Example
nav:
  - Home: index.md
  - API:
      - Reference: api/reference.md
  - Examples:
      - Demo: examples/demo.ipynb
  - Guides:
      - B: a/b.md
      - C: a/c.md
  - Missing: missing_page.md
`

const indexPage = `# Project

::: pkg.Engine

::: pkg.Result

::: pkg.helpers.helper_fn

Read [the guide](guide/off_nav.md) first.
`

const referencePage = `# Reference

::: pkg.DoesNotExist

::: pkg.Engine

See [the missing page](../missing.md) and [the demo](../examples/demo.ipynb).
`

const demoNotebook = `{
 "cells": [
  {
   "cell_type": "markdown",
   "source": ["See [link](other.ipynb) for more."]
  }
 ]
}
`

// writeProject lays out a Python package plus a documentation tree
// carrying one instance of every issue the basic checks detect.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	write(t, root, "CHANGELOG.md", "# Changelog\n")
	write(t, root, "mkdocs.yml", mkdocsConfig)

	write(t, root, "pkg/__init__.py", pkgInit)
	write(t, root, "pkg/core.py", pkgCore)
	write(t, root, "pkg/extras.py", pkgExtras)
	write(t, root, "pkg/helpers/__init__.py", pkgHelpers)
	write(t, root, "pkg/internal_stuff/__init__.py", pkgInternal)

	write(t, root, "docs/index.md", indexPage)
	write(t, root, "docs/api/reference.md", referencePage)
	write(t, root, "docs/guide/off_nav.md", "# Off Nav\n\nBack to [index](../index.md).\n")
	write(t, root, "docs/a/b.md", "# B\n\nGo to [c page](../c.md).\n")
	write(t, root, "docs/a/c.md", "# C\n")
	write(t, root, "docs/examples/demo.ipynb", demoNotebook)
	write(t, root, "docs/examples/other.ipynb", `{"cells": []}`)

	return root
}

func TestDetectorBasicChecks(t *testing.T) {
	root := writeProject(t)
	docs := filepath.Join(root, "docs")

	d := NewDetector(Options{
		ProjectRoot:      root,
		Modules:          []string{"pkg", "missingpkg"},
		IgnoreSubmodules: []string{"pkg.internal_stuff", "pkg.nonexistent"},
		Basic:            true,
	})
	r := d.Run(context.Background())

	assert.True(t, r.HasIssues())

	t.Run("undocumented api is missing from docs", func(t *testing.T) {
		assert.Equal(t, []string{"pkg.bar"}, r.MissingInDocs)
	})

	t.Run("dead reference is reported with its location", func(t *testing.T) {
		require.Len(t, r.BrokenReferences, 1)
		assert.Equal(t,
			fmt.Sprintf("pkg.DoesNotExist in %s:3", filepath.Join(docs, "api", "reference.md")),
			r.BrokenReferences[0])
	})

	t.Run("parameter absent from the docstring", func(t *testing.T) {
		require.Len(t, r.UndocumentedParams, 1)
		assert.Equal(t, "pkg.bar", r.UndocumentedParams[0].Name)
		assert.Equal(t, "y", r.UndocumentedParams[0].Params)
	})

	t.Run("local link findings", func(t *testing.T) {
		require.Len(t, r.BrokenLocalLinks, 4)

		missing := r.BrokenLocalLinks[0]
		assert.Equal(t, "../missing.md", missing.Path)
		assert.Equal(t, fmt.Sprintf("%s:7", filepath.Join(docs, "api", "reference.md")), missing.Location)
		assert.Equal(t, "the missing page", missing.Text)
		assert.Empty(t, missing.Reason)

		offNav := r.BrokenLocalLinks[1]
		assert.Equal(t, "guide/off_nav.md", offNav.Path)
		assert.Equal(t, fmt.Sprintf("%s:9", filepath.Join(docs, "index.md")), offNav.Location)
		assert.Equal(t, ".md file not in mkdocs nav", offNav.Reason)

		notebook := r.BrokenLocalLinks[2]
		assert.Equal(t, "other.ipynb", notebook.Path)
		assert.Equal(t, fmt.Sprintf("%s:1", filepath.Join(docs, "examples", "demo.ipynb")), notebook.Location)
		assert.Equal(t, "notebook links should omit .ipynb", notebook.Reason)

		docstring := r.BrokenLocalLinks[3]
		assert.Equal(t, "schemas/result.json", docstring.Path)
		assert.Equal(t, "pkg.Result (docstring):3", docstring.Location)
		assert.Equal(t, "the schema", docstring.Text)
	})

	t.Run("relative link resolving through the page directory is fine", func(t *testing.T) {
		for _, broken := range r.BrokenLocalLinks {
			assert.NotEqual(t, "../c.md", broken.Path)
		}
	})

	t.Run("nav entry without a file", func(t *testing.T) {
		require.Len(t, r.BrokenNavPaths, 1)
		assert.Equal(t, "missing_page.md", r.BrokenNavPaths[0].Path)
		assert.Equal(t, "mkdocs.yml", r.BrokenNavPaths[0].Location)
	})

	t.Run("warnings cover stale ignores and import failures", func(t *testing.T) {
		require.Len(t, r.Warnings, 2)
		assert.Contains(t, r.Warnings[0], "pkg.nonexistent")
		assert.Contains(t, r.Warnings[1], "Could not import missingpkg")
	})

	t.Run("disabled check groups stay silent", func(t *testing.T) {
		assert.Empty(t, r.BrokenExternalLinks)
		assert.Empty(t, r.QualityIssues)
		assert.Zero(t, r.TotalExternalLinks)
	})
}

func TestDetectorCleanProject(t *testing.T) {
	root := t.TempDir()
	write(t, root, "mkdocs.yml", "site_name: Clean\nnav:\n  - Home: index.md\n  - B: a/b.md\n  - C: a/c.md\n")
	write(t, root, "pkg/__init__.py", `__all__ = ["Engine"]

from .core import Engine
`)
	write(t, root, "pkg/core.py", `class Engine:
    """Engine powers the simulation.

    Args:
        capacity: How many jobs fit.
    """

    def __init__(self, capacity: int = 4):
        self.capacity = capacity
`)
	write(t, root, "docs/index.md", "# Clean\n\n::: pkg.Engine\n\nSee [the b page](a/b.md).\n")
	write(t, root, "docs/a/b.md", "# B\n\nGo to [c page](../c.md).\n")
	write(t, root, "docs/a/c.md", "# C\n")

	d := NewDetector(Options{
		ProjectRoot: root,
		Modules:     []string{"pkg"},
		Basic:       true,
	})
	r := d.Run(context.Background())

	assert.False(t, r.HasIssues())
	assert.Empty(t, r.MissingInDocs)
	assert.Empty(t, r.BrokenReferences)
	assert.Empty(t, r.BrokenLocalLinks)
	assert.Empty(t, r.BrokenNavPaths)
	assert.Empty(t, r.UndocumentedParams)
	assert.Empty(t, r.Warnings)
}

func TestCoverageSuffixMatchAcrossModules(t *testing.T) {
	root := t.TempDir()
	write(t, root, "pkg/__init__.py", `__all__ = ["Widget"]


class Widget:
    """A widget."""
`)
	write(t, root, "docs/index.md", "::: other.deep.Widget\n")
	write(t, root, "mkdocs.yml", "nav:\n  - Home: index.md\n")

	d := NewDetector(Options{
		ProjectRoot: root,
		Modules:     []string{"pkg"},
		Basic:       true,
	})
	r := d.Run(context.Background())

	// The trailing-segment rule accepts a reference from an unrelated
	// module. The match is loose on purpose: documentation tools
	// re-export deep symbols under shallow paths.
	assert.Empty(t, r.MissingInDocs)

	// References into packages outside the tree are not validated.
	assert.Empty(t, r.BrokenReferences)
}

func TestDetectorExternalLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	root := t.TempDir()
	page := fmt.Sprintf("# Links\n\n[ok](%s/ok) and [gone](%s/missing)\n\n[forbidden](%s/forbidden)\n\n%s/ok\n",
		srv.URL, srv.URL, srv.URL, srv.URL)
	write(t, root, "docs/links.md", page)

	d := NewDetector(Options{
		ProjectRoot:   root,
		ExternalLinks: true,
	})
	r := d.Run(context.Background())

	assert.Equal(t, 4, r.TotalExternalLinks)
	require.Len(t, r.BrokenExternalLinks, 1)
	entry := r.BrokenExternalLinks[0]
	assert.Equal(t, srv.URL+"/missing", entry.URL)
	assert.Equal(t, 404, entry.Status)
	assert.Equal(t, "gone", entry.Text)
	assert.Equal(t, fmt.Sprintf("%s:3", filepath.Join(root, "docs", "links.md")), entry.Location)

	assert.True(t, r.HasIssues())
	assert.Empty(t, r.MissingInDocs, "basic checks should not run")
}

func TestDetectorQualityCheck(t *testing.T) {
	root := t.TempDir()
	write(t, root, "pkg/__init__.py", `__all__ = ["describe"]


def describe(thing):
    """Describe a thing in words."""
    return str(thing)
`)

	evaluation := `{"issues": [{"severity": "suggestion", "category": "style", "message": "Add an example", "suggestion": "Show usage", "line_reference": ""}], "score": 82, "summary": "good"}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, err := json.Marshal(map[string]string{"response": evaluation})
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	d := NewDetector(Options{
		ProjectRoot: root,
		Modules:     []string{"pkg"},
		Quality:     true,
		LLMBackend:  "ollama",
		LLMModel:    "tiny",
		LLMBaseURL:  srv.URL,
	})
	r := d.Run(context.Background())

	assert.Equal(t, "ollama", r.LLMBackend)
	assert.Equal(t, "tiny", r.LLMModel)
	require.Len(t, r.QualityIssues, 1)
	assert.Equal(t, "pkg.describe", r.QualityIssues[0].APIName)
	assert.Equal(t, "suggestion", r.QualityIssues[0].Severity)
	assert.Equal(t, "Add an example", r.QualityIssues[0].Message)

	t.Run("backend construction failure is a warning", func(t *testing.T) {
		d := NewDetector(Options{
			ProjectRoot: root,
			Modules:     []string{"pkg"},
			Quality:     true,
			LLMBackend:  "bard",
		})
		r := d.Run(context.Background())

		require.Len(t, r.Warnings, 1)
		assert.Contains(t, r.Warnings[0], "Quality checks skipped")
		assert.Empty(t, r.QualityIssues)
		assert.False(t, r.HasIssues(), "warnings alone are not drift")
	})
}

func TestDetectorReportIsFreshPerRun(t *testing.T) {
	root := writeProject(t)

	d := NewDetector(Options{
		ProjectRoot:      root,
		Modules:          []string{"pkg"},
		IgnoreSubmodules: []string{"pkg.internal_stuff"},
		Basic:            true,
	})

	first := d.Run(context.Background())
	second := d.Run(context.Background())

	assert.Equal(t, first.MissingInDocs, second.MissingInDocs)
	assert.Equal(t, first.BrokenReferences, second.BrokenReferences)
	assert.Equal(t, len(first.BrokenLocalLinks), len(second.BrokenLocalLinks))
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestDetectorReportSerializes(t *testing.T) {
	root := writeProject(t)

	d := NewDetector(Options{
		ProjectRoot:      root,
		Modules:          []string{"pkg"},
		IgnoreSubmodules: []string{"pkg.internal_stuff"},
		Basic:            true,
	})
	r := d.Run(context.Background())

	raw, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["has_issues"])
	assert.Equal(t, []any{"pkg.bar"}, decoded["missing_in_docs"])
}
