// Package resolver maps local documentation links onto files on disk.
package resolver

import (
	"os"
	"path/filepath"
	"strings"
)

// Request describes one local link to resolve. Path carries the link target
// with any #fragment and trailing slashes already stripped by the caller.
type Request struct {
	Path         string
	Dir          string // directory of the file containing the link
	SourceFile   string // file containing the link; empty for docstring text
	FromNotebook bool
	DocsRoot     string
	ProjectRoot  string
}

// Resolve tries each strategy in a fixed order and returns the first
// existing path: (1) direct relative from the link's directory, (2) parent
// traversals retried from the docs root, (3) leading-slash paths joined
// under the project root, (4) URL-style rendering where each page acts as
// its own directory, with extension probing for bare targets.
//
// A miss is the normal broken-link signal, not an error.
func Resolve(req Request) (string, bool) {
	if p, ok := probe(join(req.Dir, req.Path)); ok {
		return p, true
	}
	if strings.HasPrefix(req.Path, "..") {
		if p, ok := probe(join(req.DocsRoot, req.Path)); ok {
			return p, true
		}
	}
	if strings.HasPrefix(req.Path, "/") {
		if p, ok := probe(filepath.Join(req.ProjectRoot, strings.TrimLeft(req.Path, "/"))); ok {
			return p, true
		}
	}
	if strings.HasPrefix(req.Path, "..") {
		candidate := join(filepath.Join(req.Dir, req.stem()), req.Path)
		if p, ok := probe(candidate); ok {
			return p, true
		}
		if filepath.Ext(candidate) == "" {
			for _, ext := range req.probeExtensions() {
				if p, ok := probe(candidate + ext); ok {
					return p, true
				}
			}
		}
	}
	return "", false
}

// stem names the virtual directory a rendered page occupies. Without a
// source file, fall back to the first sibling with the source extension,
// then to the directory name itself.
func (r Request) stem() string {
	if r.SourceFile != "" {
		base := filepath.Base(r.SourceFile)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	entries, err := os.ReadDir(r.Dir)
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == r.sourceExt() {
				return strings.TrimSuffix(entry.Name(), r.sourceExt())
			}
		}
	}
	return filepath.Base(r.Dir)
}

func (r Request) sourceExt() string {
	if r.FromNotebook {
		return ".ipynb"
	}
	return ".md"
}

// probeExtensions lists extensions tried for a bare target. Page links
// never probe the notebook extension, so a page linking a notebook must
// spell it out.
func (r Request) probeExtensions() []string {
	if r.FromNotebook {
		return []string{".md", ".ipynb"}
	}
	return []string{".md"}
}

// join resolves path against dir; an absolute path ignores the base.
func join(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func probe(path string) (string, bool) {
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	return "", false
}
