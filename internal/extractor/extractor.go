// Package extractor parses Python source files into a structured module
// surface using tree-sitter.
package extractor

import (
	"context"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Parser turns Python source files into Module descriptions. It is not
// safe for concurrent use; construct one per goroutine.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a parser configured for the Python grammar.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(python.GetLanguage())
	return &Parser{parser: p}
}

// ParseFile reads and parses a single Python file. The module argument is
// the dotted import path the file is reachable under.
func (p *Parser) ParseFile(path, module string) (*Module, error) {
	sourceCode, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(sourceCode, path, module)
}

// Parse parses Python source held in memory.
func (p *Parser) Parse(sourceCode []byte, path, module string) (*Module, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}

	mod := &Module{
		Path: path,
		Name: module,
	}
	extractModule(mod, tree.RootNode(), sourceCode)
	return mod, nil
}
