// Package docscan extracts cross-references and links from documentation files.
package docscan

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// CrossReference is a symbol directive found on a documentation page.
type CrossReference struct {
	Target string
	File   string
	Line   int
}

// ExternalLink is an http or https hyperlink found in documentation.
// Line is 1-based; for notebooks it is the cell ordinal instead.
type ExternalLink struct {
	URL  string
	Text string
	File string
	Line int
}

// LocalLink is a link to a file on disk found in documentation.
type LocalLink struct {
	Path         string
	Text         string
	File         string
	Line         int
	FromNotebook bool
}

var (
	// Two or three colons, whitespace, then a dotted identifier.
	crossRefPattern = regexp.MustCompile(`^:::?\s+([\w.]+)`)

	markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)]+)\)`)

	// A URL not preceded by "(" or "[" so links already captured in
	// markdown form are not counted twice. The URL is group 2.
	bareURLPattern = regexp.MustCompile(`(^|[^(\[])(https?://[^\s)>\]"']+)`)

	localLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]+?(?:\.py|\.ipynb|\.md|\.txt|\.yml|\.yaml|\.json|\.toml)(?:#[^)]*)?|\.\.?/[^)]+)\)`)
)

// Scanner walks a documentation tree once and caches everything it finds.
// Pages are scanned line by line; notebook cells are scanned as single
// units of text with the cell ordinal standing in for a line number.
type Scanner struct {
	docsRoot    string
	projectRoot string
	ignorer     *ignore.GitIgnore

	scanned  bool
	refs     []CrossReference
	external []ExternalLink
	local    []LocalLink
	warnings []string
}

// NewScanner creates a scanner for the documentation tree under docsRoot.
// Files matched by the project's .gitignore are skipped.
func NewScanner(docsRoot, projectRoot string) *Scanner {
	return &Scanner{
		docsRoot:    docsRoot,
		projectRoot: projectRoot,
		ignorer:     loadGitignore(projectRoot),
		refs:        []CrossReference{},
		external:    []ExternalLink{},
		local:       []LocalLink{},
	}
}

// CrossReferences returns every symbol directive found on documentation pages.
func (s *Scanner) CrossReferences() []CrossReference {
	s.scan()
	return s.refs
}

// ExternalLinks returns every http and https link found in pages and notebooks.
func (s *Scanner) ExternalLinks() []ExternalLink {
	s.scan()
	return s.external
}

// LocalLinks returns every file link found in pages and notebooks.
func (s *Scanner) LocalLinks() []LocalLink {
	s.scan()
	return s.local
}

// Warnings returns one entry per file that could not be read or parsed.
func (s *Scanner) Warnings() []string {
	s.scan()
	return s.warnings
}

// ScanText extracts local links from arbitrary text, such as a docstring,
// tagging each result with the given source location.
func ScanText(text, source string) []LocalLink {
	links := []LocalLink{}
	for i, line := range strings.Split(text, "\n") {
		links = append(links, localLinks(line, source, i+1, false)...)
	}
	return links
}

func (s *Scanner) scan() {
	if s.scanned {
		return
	}
	s.scanned = true

	info, err := os.Stat(s.docsRoot)
	if err != nil || !info.IsDir() {
		return
	}

	pages, notebooks := s.collectFiles()
	for _, path := range pages {
		s.scanPage(path)
	}
	for _, path := range notebooks {
		s.scanNotebook(path)
	}
}

// collectFiles gathers page and notebook paths in walk order.
func (s *Scanner) collectFiles() (pages, notebooks []string) {
	_ = filepath.WalkDir(s.docsRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == s.docsRoot {
				return nil
			}
			if d.Name() == ".git" || s.ignored(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if s.ignored(path) {
			return nil
		}
		switch {
		case strings.HasSuffix(d.Name(), ".md"):
			pages = append(pages, path)
		case strings.HasSuffix(d.Name(), ".ipynb"):
			notebooks = append(notebooks, path)
		}
		return nil
	})
	return pages, notebooks
}

func (s *Scanner) scanPage(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("Could not read %s: %v", path, err))
		return
	}
	for i, line := range strings.Split(string(data), "\n") {
		no := i + 1
		if m := crossRefPattern.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			s.refs = append(s.refs, CrossReference{Target: m[1], File: path, Line: no})
		}
		s.external = append(s.external, externalLinks(line, path, no)...)
		s.local = append(s.local, localLinks(line, path, no, false)...)
	}
}

type notebookFile struct {
	Cells []notebookCell `json:"cells"`
}

type notebookCell struct {
	Source json.RawMessage `json:"source"`
}

// text joins the cell source, which notebooks store either as a single
// string or as a list of fragments.
func (c notebookCell) text() string {
	var parts []string
	if err := json.Unmarshal(c.Source, &parts); err == nil {
		return strings.Join(parts, "")
	}
	var whole string
	if err := json.Unmarshal(c.Source, &whole); err == nil {
		return whole
	}
	return ""
}

func (s *Scanner) scanNotebook(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("Could not read notebook %s: %v", path, err))
		return
	}
	var nb notebookFile
	if err := json.Unmarshal(data, &nb); err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("Could not read notebook %s: %v", path, err))
		return
	}
	for i, cell := range nb.Cells {
		ordinal := i + 1
		text := cell.text()
		s.external = append(s.external, externalLinks(text, path, ordinal)...)
		s.local = append(s.local, localLinks(text, path, ordinal, true)...)
	}
}

// externalLinks extracts http and https links from one unit of text.
// A URL captured in markdown form is not reported again in bare form.
func externalLinks(text, file string, line int) []ExternalLink {
	var links []ExternalLink
	seen := make(map[string]bool)
	for _, m := range markdownLinkPattern.FindAllStringSubmatch(text, -1) {
		links = append(links, ExternalLink{URL: m[2], Text: m[1], File: file, Line: line})
		seen[m[2]] = true
	}
	for _, m := range bareURLPattern.FindAllStringSubmatch(text, -1) {
		url := m[2]
		if seen[url] {
			continue
		}
		seen[url] = true
		links = append(links, ExternalLink{URL: url, File: file, Line: line})
	}
	return links
}

func localLinks(text, file string, line int, fromNotebook bool) []LocalLink {
	var links []LocalLink
	for _, m := range localLinkPattern.FindAllStringSubmatch(text, -1) {
		target := m[2]
		if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
			continue
		}
		links = append(links, LocalLink{Path: target, Text: m[1], File: file, Line: line, FromNotebook: fromNotebook})
	}
	return links
}

func (s *Scanner) ignored(path string) bool {
	if s.ignorer == nil {
		return false
	}
	rel, err := filepath.Rel(s.projectRoot, path)
	if err != nil {
		return false
	}
	return s.ignorer.MatchesPath(rel)
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
