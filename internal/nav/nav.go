// Package nav validates the navigation section of an mkdocs configuration.
package nav

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BrokenPath is a nav entry that does not exist under the docs root.
type BrokenPath struct {
	Path     string
	Location string
}

// Validator loads the nav section once and answers membership and
// existence questions about the paths it names.
type Validator struct {
	mkdocsPath string
	docsRoot   string

	loaded   bool
	files    []string
	warnings []string
}

// NewValidator creates a validator for the given mkdocs config file.
func NewValidator(mkdocsPath, docsRoot string) *Validator {
	return &Validator{mkdocsPath: mkdocsPath, docsRoot: docsRoot}
}

// Files returns every path named in the nav section in document order.
// A missing config file, a missing nav section, or a parse failure all
// yield nil; duplicates in the document are kept.
func (v *Validator) Files() []string {
	v.load()
	return v.files
}

// FileSet returns the nav paths as a set, nil when Files is nil.
func (v *Validator) FileSet() map[string]bool {
	v.load()
	if v.files == nil {
		return nil
	}
	set := make(map[string]bool, len(v.files))
	for _, p := range v.files {
		set[p] = true
	}
	return set
}

// Check reports every nav path that does not exist under the docs root.
func (v *Validator) Check() []BrokenPath {
	v.load()
	broken := []BrokenPath{}
	for _, p := range v.files {
		if _, err := os.Stat(filepath.Join(v.docsRoot, p)); err != nil {
			broken = append(broken, BrokenPath{Path: p, Location: filepath.Base(v.mkdocsPath)})
		}
	}
	return broken
}

// Warnings returns one entry per config file that could not be parsed.
func (v *Validator) Warnings() []string {
	v.load()
	return v.warnings
}

func (v *Validator) load() {
	if v.loaded {
		return
	}
	v.loaded = true

	data, err := os.ReadFile(v.mkdocsPath)
	if err != nil {
		return
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		v.warnings = append(v.warnings, fmt.Sprintf("Could not parse %s: %v", v.mkdocsPath, err))
		return
	}
	navNode := findNav(&doc)
	if navNode == nil {
		return
	}
	v.files = collectPaths(navNode)
}

func findNav(doc *yaml.Node) *yaml.Node {
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "nav" {
			return root.Content[i+1]
		}
	}
	return nil
}

// collectPaths gathers every string leaf under a nav node. Section titles
// are mapping keys, so only mapping values are walked.
func collectPaths(node *yaml.Node) []string {
	paths := []string{}
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!str" {
			paths = append(paths, node.Value)
		}
	case yaml.MappingNode:
		for i := 1; i < len(node.Content); i += 2 {
			paths = append(paths, collectPaths(node.Content[i])...)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			paths = append(paths, collectPaths(item)...)
		}
	case yaml.AliasNode:
		paths = append(paths, collectPaths(node.Alias)...)
	}
	return paths
}
