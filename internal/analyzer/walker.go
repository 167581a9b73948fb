// Package analyzer discovers the public API surface of Python package
// trees and resolves dotted references against them.
package analyzer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"docdrift/internal/extractor"
)

// API is one discovered public symbol.
type API struct {
	Name             string
	Module           string // module the symbol was discovered in, not where it is defined
	Parameters       []string
	ReturnAnnotation string
	Docstring        string
	IsPublic         bool
	Kind             string // "class" or "function"
}

// Walker locates Python modules under a project root and extracts
// their public APIs. Results are memoized for the lifetime of the
// walker, so one instance should be shared by all checks of a run.
type Walker struct {
	root    string
	parser  *extractor.Parser
	modules map[string]*moduleEntry
	indexes map[string]map[string]binding
	apis    map[string]*surfaceEntry
}

type moduleEntry struct {
	mod *extractor.Module
	err error
}

type surfaceEntry struct {
	apis      []API
	unmatched []string
}

// binding is one name bound at module or class scope. Exactly one
// field is set.
type binding struct {
	fn  *extractor.Function
	cls *extractor.Class
	asg *extractor.Assignment
	imp *extractor.Import
}

// object is the static stand-in for a runtime attribute lookup result.
type object struct {
	kind   objectKind
	fn     *extractor.Function
	cls    *extractor.Class
	module *extractor.Module // defining module, or the module itself for kindModule
}

type objectKind int

const (
	kindFunction objectKind = iota
	kindClass
	kindModule
	kindValue
)

// NewWalker creates a walker rooted at the directory that top-level
// packages are imported from.
func NewWalker(root string) *Walker {
	return &Walker{
		root:    root,
		parser:  extractor.NewParser(),
		modules: make(map[string]*moduleEntry),
		indexes: make(map[string]map[string]binding),
		apis:    make(map[string]*surfaceEntry),
	}
}

// HasModule reports whether a dotted path corresponds to a module file
// under the walker's root.
func (w *Walker) HasModule(name string) bool {
	_, err := w.loadModule(name)
	return err == nil
}

// PublicAPIs extracts the public surface of a single module, without
// descending into subpackages. The export list is the module's
// __all__ when declared, otherwise every non-underscore bound name in
// sorted order. A conventional __version__ entry is always skipped, as
// are names that resolve to something other than a class or function.
func (w *Walker) PublicAPIs(module string) ([]API, error) {
	mod, err := w.loadModule(module)
	if err != nil {
		return nil, err
	}

	names := mod.All
	if !mod.HasAll {
		names = w.defaultExports(mod)
	}

	apis := []API{}
	for _, name := range names {
		if name == "__version__" {
			continue
		}
		obj, ok := w.resolveName(mod, name, map[string]bool{})
		if !ok {
			continue
		}
		switch obj.kind {
		case kindClass:
			apis = append(apis, w.classAPI(name, module, obj))
		case kindFunction:
			apis = append(apis, functionAPI(name, module, obj.fn))
		}
		// modules and plain values produce no record
	}
	return apis, nil
}

// AllPublicAPIs walks a module and every subpackage beneath it in
// sorted depth-first order, collecting the combined public surface.
// Ignore entries are dotted paths; an entry excludes its package and
// everything nested under it. The returned unmatched list holds the
// ignore entries scoped to this module that never matched a discovered
// subpackage, so callers can warn about stale configuration.
func (w *Walker) AllPublicAPIs(module string, ignore []string) ([]API, []string, error) {
	key := surfaceKey(module, ignore)
	if e, ok := w.apis[key]; ok {
		return e.apis, e.unmatched, nil
	}

	mod, err := w.loadModule(module)
	if err != nil {
		return nil, nil, err
	}

	rootAPIs, err := w.PublicAPIs(module)
	if err != nil {
		return nil, nil, err
	}
	all := []API{}
	seen := make(map[string]bool)
	for _, a := range rootAPIs {
		k := a.Module + ":" + a.Name
		if seen[k] {
			continue
		}
		seen[k] = true
		all = append(all, a)
	}

	if !mod.IsPackage {
		return all, nil, nil
	}

	moduleIgnores := []string{}
	for _, ig := range ignore {
		if strings.HasPrefix(ig, module+".") {
			moduleIgnores = append(moduleIgnores, ig)
		}
	}

	matched := make(map[string]bool)
	w.walkSubpackages(module, moduleIgnores, matched, func(sub string) {
		subAPIs, err := w.PublicAPIs(sub)
		if err != nil {
			return
		}
		for _, a := range subAPIs {
			k := a.Module + ":" + a.Name
			if seen[k] {
				continue
			}
			seen[k] = true
			all = append(all, a)
		}
	})

	unmatched := []string{}
	for _, ig := range moduleIgnores {
		if !matched[ig] {
			unmatched = append(unmatched, ig)
		}
	}
	sort.Strings(unmatched)

	w.apis[key] = &surfaceEntry{apis: all, unmatched: unmatched}
	return all, unmatched, nil
}

// ResolveReference reports whether a dotted reference names something
// real: the longest importable module prefix is located first, then
// the remaining segments are resolved as attribute lookups, shrinking
// the prefix by one segment after each failure.
func (w *Walker) ResolveReference(target string) bool {
	parts := strings.Split(target, ".")
	for i := len(parts); i >= 1; i-- {
		mod, err := w.loadModule(strings.Join(parts[:i], "."))
		if err != nil {
			continue
		}
		obj := object{kind: kindModule, module: mod}
		ok := true
		visited := map[string]bool{}
		for _, attr := range parts[i:] {
			obj, ok = w.attr(obj, attr, visited)
			if !ok {
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// ParamName strips the annotation and default from a formatted
// parameter string, leaving the bare name.
func ParamName(param string) string {
	name := strings.SplitN(param, ":", 2)[0]
	name = strings.SplitN(name, "=", 2)[0]
	return strings.TrimSpace(name)
}

// Module loading

func (w *Walker) loadModule(name string) (*extractor.Module, error) {
	if e, ok := w.modules[name]; ok {
		return e.mod, e.err
	}
	mod, err := w.readModule(name)
	w.modules[name] = &moduleEntry{mod: mod, err: err}
	return mod, err
}

// readModule parses the module named by a dotted path, trying package
// form (a directory with __init__.py) before a flat file.
func (w *Walker) readModule(name string) (*extractor.Module, error) {
	if name == "" {
		return nil, fmt.Errorf("no module named %q", name)
	}
	rel := filepath.Join(strings.Split(name, ".")...)
	initPath := filepath.Join(w.root, rel, "__init__.py")
	if fileExists(initPath) {
		mod, err := w.parser.ParseFile(initPath, name)
		if err != nil {
			return nil, err
		}
		mod.IsPackage = true
		return mod, nil
	}
	filePath := filepath.Join(w.root, rel+".py")
	if fileExists(filePath) {
		return w.parser.ParseFile(filePath, name)
	}
	return nil, fmt.Errorf("no module named %q", name)
}

func (w *Walker) walkSubpackages(module string, ignores []string, matched map[string]bool, visit func(string)) {
	dir := filepath.Join(w.root, filepath.Join(strings.Split(module, ".")...))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() || !fileExists(filepath.Join(dir, e.Name(), "__init__.py")) {
			continue
		}
		sub := module + "." + e.Name()
		skipped := false
		for _, ig := range ignores {
			if sub == ig || strings.HasPrefix(sub, ig+".") {
				matched[ig] = true
				skipped = true
			}
		}
		if skipped {
			continue
		}
		visit(sub)
		w.walkSubpackages(sub, ignores, matched, visit)
	}
}

// Name resolution

// resolveName looks a name up in a module's scope the way a runtime
// attribute access would: local bindings first, then child modules,
// then star imports. The visited set breaks import cycles.
func (w *Walker) resolveName(mod *extractor.Module, name string, visited map[string]bool) (object, bool) {
	key := mod.Name + ":" + name
	if visited[key] {
		return object{}, false
	}
	visited[key] = true

	if b, ok := w.indexOf(mod)[name]; ok {
		switch {
		case b.cls != nil:
			return object{kind: kindClass, cls: b.cls, module: mod}, true
		case b.fn != nil:
			return object{kind: kindFunction, fn: b.fn, module: mod}, true
		case b.asg != nil:
			// an alias like "Simulator = _SimulatorImpl" follows the identifier
			if isIdentifier(b.asg.Value) {
				if o, ok := w.resolveName(mod, b.asg.Value, visited); ok {
					return o, true
				}
			}
			return object{kind: kindValue, module: mod}, true
		case b.imp != nil:
			return w.resolveImport(mod, b.imp, visited)
		}
	}

	// a child module becomes an attribute of its package once imported
	if mod.IsPackage {
		if m, err := w.loadModule(mod.Name + "." + name); err == nil {
			return object{kind: kindModule, module: m}, true
		}
	}

	for _, star := range mod.StarImports {
		target, err := w.loadModule(w.importTarget(mod, star.Dots, star.Module))
		if err != nil {
			continue
		}
		if !w.exportsName(target, name) {
			continue
		}
		if o, ok := w.resolveName(target, name, visited); ok {
			return o, true
		}
	}
	return object{}, false
}

func (w *Walker) resolveImport(mod *extractor.Module, imp *extractor.Import, visited map[string]bool) (object, bool) {
	if imp.Name == "" {
		// plain "import a.b" binds a module object
		if m, err := w.loadModule(imp.Module); err == nil {
			return object{kind: kindModule, module: m}, true
		}
		return object{kind: kindValue}, true
	}
	targetName := w.importTarget(mod, imp.Dots, imp.Module)
	target, err := w.loadModule(targetName)
	if err != nil {
		if imp.Dots == 0 {
			// absolute import from outside the tree: real at runtime
			// but opaque to static analysis
			return object{kind: kindValue}, true
		}
		return object{}, false
	}
	if o, ok := w.resolveName(target, imp.Name, visited); ok {
		return o, true
	}
	// "from pkg import child" can name a module rather than an attribute
	if child, err := w.loadModule(targetName + "." + imp.Name); err == nil {
		return object{kind: kindModule, module: child}, true
	}
	return object{}, false
}

// attr performs one attribute step on a resolved object.
func (w *Walker) attr(obj object, name string, visited map[string]bool) (object, bool) {
	switch obj.kind {
	case kindModule:
		return w.resolveName(obj.module, name, visited)
	case kindClass:
		for _, m := range obj.cls.Methods {
			if m.Name == name {
				return object{kind: kindFunction, fn: m, module: obj.module}, true
			}
		}
		for _, nested := range obj.cls.Classes {
			if nested.Name == name {
				return object{kind: kindClass, cls: nested, module: obj.module}, true
			}
		}
		for _, f := range obj.cls.Fields {
			if f == name {
				return object{kind: kindValue, module: obj.module}, true
			}
		}
		for _, base := range obj.cls.Bases {
			bo, ok := w.resolvePath(obj.module, base, visited)
			if !ok || bo.kind != kindClass {
				continue
			}
			if o, ok := w.attr(bo, name, visited); ok {
				return o, true
			}
		}
	}
	return object{}, false
}

// resolvePath resolves a dotted expression relative to a module scope.
func (w *Walker) resolvePath(mod *extractor.Module, expr string, visited map[string]bool) (object, bool) {
	parts := strings.Split(expr, ".")
	obj, ok := w.resolveName(mod, parts[0], visited)
	if !ok {
		return object{}, false
	}
	for _, attrName := range parts[1:] {
		obj, ok = w.attr(obj, attrName, visited)
		if !ok {
			return object{}, false
		}
	}
	return obj, true
}

// importTarget expands a possibly-relative import to a dotted path.
func (w *Walker) importTarget(mod *extractor.Module, dots int, module string) string {
	if dots == 0 {
		return module
	}
	parts := strings.Split(mod.Name, ".")
	if !mod.IsPackage {
		parts = parts[:len(parts)-1]
	}
	drop := dots - 1
	if drop >= len(parts) {
		parts = nil
	} else if drop > 0 {
		parts = parts[:len(parts)-drop]
	}
	base := strings.Join(parts, ".")
	switch {
	case module == "":
		return base
	case base == "":
		return module
	}
	return base + "." + module
}

func (w *Walker) exportsName(mod *extractor.Module, name string) bool {
	if mod.HasAll {
		for _, n := range mod.All {
			if n == name {
				return true
			}
		}
		return false
	}
	if strings.HasPrefix(name, "_") {
		return false
	}
	_, ok := w.indexOf(mod)[name]
	return ok
}

// defaultExports mirrors the "no __all__" convention: every bound name
// not starting with an underscore, in sorted order.
func (w *Walker) defaultExports(mod *extractor.Module) []string {
	seen := make(map[string]bool)
	for name := range w.indexOf(mod) {
		seen[name] = true
	}
	for _, star := range mod.StarImports {
		target, err := w.loadModule(w.importTarget(mod, star.Dots, star.Module))
		if err != nil {
			continue
		}
		if target.HasAll {
			for _, n := range target.All {
				seen[n] = true
			}
		} else {
			for n := range w.indexOf(target) {
				seen[n] = true
			}
		}
	}
	names := []string{}
	for name := range seen {
		if !strings.HasPrefix(name, "_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// indexOf builds (once) the name-to-binding map of a module. Later
// binding kinds shadow earlier ones for a reused name, approximating
// execution order.
func (w *Walker) indexOf(mod *extractor.Module) map[string]binding {
	if idx, ok := w.indexes[mod.Name]; ok {
		return idx
	}
	idx := make(map[string]binding)
	for _, im := range mod.Imports {
		idx[im.Alias] = binding{imp: im}
	}
	for _, a := range mod.Assignments {
		idx[a.Name] = binding{asg: a}
	}
	for _, fn := range mod.Functions {
		idx[fn.Name] = binding{fn: fn}
	}
	for _, cls := range mod.Classes {
		idx[cls.Name] = binding{cls: cls}
	}
	w.indexes[mod.Name] = idx
	return idx
}

// Record construction

func functionAPI(name, module string, fn *extractor.Function) API {
	params := []string{}
	for _, p := range fn.Parameters {
		if n := ParamName(p); n == "self" || n == "cls" {
			continue
		}
		params = append(params, p)
	}
	return API{
		Name:             name,
		Module:           module,
		Parameters:       params,
		ReturnAnnotation: fn.Returns,
		Docstring:        fn.Docstring,
		IsPublic:         !strings.HasPrefix(name, "_"),
		Kind:             "function",
	}
}

func (w *Walker) classAPI(name, module string, obj object) API {
	params := []string{}
	if init := w.findInit(obj.cls, obj.module, map[string]bool{}); init != nil {
		for _, p := range init.Parameters {
			if ParamName(p) == "self" {
				continue
			}
			params = append(params, p)
		}
	}
	return API{
		Name:       name,
		Module:     module,
		Parameters: params,
		Docstring:  w.classDoc(obj.cls, obj.module, map[string]bool{}),
		IsPublic:   !strings.HasPrefix(name, "_"),
		Kind:       "class",
	}
}

// findInit walks a class and then its bases in declaration order until
// a constructor is found, approximating method resolution order.
func (w *Walker) findInit(cls *extractor.Class, mod *extractor.Module, visited map[string]bool) *extractor.Function {
	key := mod.Name + ":" + cls.Name
	if visited[key] {
		return nil
	}
	visited[key] = true
	for _, m := range cls.Methods {
		if m.Name == "__init__" {
			return m
		}
	}
	for _, base := range cls.Bases {
		bo, ok := w.resolvePath(mod, base, map[string]bool{})
		if !ok || bo.kind != kindClass {
			continue
		}
		if init := w.findInit(bo.cls, bo.module, visited); init != nil {
			return init
		}
	}
	return nil
}

// classDoc returns a class docstring, inheriting from the first base
// that has one when the class itself does not.
func (w *Walker) classDoc(cls *extractor.Class, mod *extractor.Module, visited map[string]bool) string {
	key := mod.Name + ":" + cls.Name
	if visited[key] {
		return ""
	}
	visited[key] = true
	if cls.Docstring != "" {
		return cls.Docstring
	}
	for _, base := range cls.Bases {
		bo, ok := w.resolvePath(mod, base, map[string]bool{})
		if !ok || bo.kind != kindClass {
			continue
		}
		if doc := w.classDoc(bo.cls, bo.module, visited); doc != "" {
			return doc
		}
	}
	return ""
}

// Helpers

func surfaceKey(module string, ignore []string) string {
	sorted := append([]string{}, ignore...)
	sort.Strings(sorted)
	return module + "|" + strings.Join(sorted, ",")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
