package extractor

// Module is the parsed top-level surface of one Python source file.
type Module struct {
	Path      string
	Name      string // dotted import path, e.g. "emu.core"
	IsPackage bool   // parsed from an __init__.py
	Docstring string

	// All holds the names declared in __all__, in declaration order.
	// HasAll distinguishes an absent __all__ from an empty one.
	All    []string
	HasAll bool

	Functions   []*Function
	Classes     []*Class
	Assignments []*Assignment
	Imports     []*Import
	StarImports []*StarImport
}

// Function is a function or method definition.
type Function struct {
	Name       string
	Parameters []string // formatted as "name: type = default", splat markers stripped
	Returns    string
	Docstring  string
	Line       int
}

// Class is a class definition with the members needed for attribute lookup.
type Class struct {
	Name      string
	Bases     []string
	Docstring string
	Line      int
	Methods   []*Function
	Fields    []string
	Classes   []*Class
}

// Assignment is a module-level or class-level name binding.
type Assignment struct {
	Name  string
	Value string
	Line  int

	// Strings holds the element values when the right-hand side is a
	// list or tuple made purely of string literals, as in __all__.
	Strings []string
}

// Import is one name binding introduced by an import statement.
// A plain "import a.b" binds the top segment and leaves Name empty;
// "from .m import x as y" records Dots=1, Module="m", Name="x", Alias="y".
type Import struct {
	Module string
	Dots   int
	Name   string
	Alias  string
}

// StarImport is a "from module import *" statement.
type StarImport struct {
	Module string
	Dots   int
}
