package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Top-level statement walk. Only statements at module scope are
// inspected; definitions nested inside conditionals or try blocks are
// not part of the extracted surface.

func extractModule(mod *Module, root *sitter.Node, sourceCode []byte) {
	first := true
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if first {
			first = false
			if stmt.Type() == "expression_statement" {
				if s := docstringOf(stmt, sourceCode); s != "" {
					mod.Docstring = s
					continue
				}
			}
		}
		switch stmt.Type() {
		case "expression_statement":
			if a := extractAssignment(stmt, sourceCode); a != nil {
				mod.Assignments = append(mod.Assignments, a)
				if a.Name == "__all__" && a.Strings != nil {
					mod.All = a.Strings
					mod.HasAll = true
				}
			}
		case "function_definition":
			if fn := extractFunction(stmt, sourceCode); fn != nil {
				mod.Functions = append(mod.Functions, fn)
			}
		case "class_definition":
			if cls := extractClass(stmt, sourceCode); cls != nil {
				mod.Classes = append(mod.Classes, cls)
			}
		case "decorated_definition":
			def := stmt.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			switch def.Type() {
			case "function_definition":
				if fn := extractFunction(def, sourceCode); fn != nil {
					mod.Functions = append(mod.Functions, fn)
				}
			case "class_definition":
				if cls := extractClass(def, sourceCode); cls != nil {
					mod.Classes = append(mod.Classes, cls)
				}
			}
		case "import_statement":
			mod.Imports = append(mod.Imports, extractPlainImports(stmt, sourceCode)...)
		case "import_from_statement":
			imports, star := extractFromImport(stmt, sourceCode)
			mod.Imports = append(mod.Imports, imports...)
			if star != nil {
				mod.StarImports = append(mod.StarImports, star)
			}
		}
	}
}

// Definitions

func extractFunction(node *sitter.Node, sourceCode []byte) *Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	fn := &Function{
		Name: nameNode.Content(sourceCode),
		Line: int(node.StartPoint().Row + 1),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		fn.Parameters = extractParams(params, sourceCode)
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = ret.Content(sourceCode)
	}
	if body := node.ChildByFieldName("body"); body != nil {
		fn.Docstring = blockDocstring(body, sourceCode)
	}
	return fn
}

func extractParams(params *sitter.Node, sourceCode []byte) []string {
	out := []string{}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		var name, typ, def string
		switch p.Type() {
		case "identifier":
			name = p.Content(sourceCode)
		case "typed_parameter":
			name = splatName(p.NamedChild(0), sourceCode)
			if t := p.ChildByFieldName("type"); t != nil {
				typ = t.Content(sourceCode)
			}
		case "default_parameter":
			name = splatName(p.ChildByFieldName("name"), sourceCode)
			if v := p.ChildByFieldName("value"); v != nil {
				def = v.Content(sourceCode)
			}
		case "typed_default_parameter":
			name = splatName(p.ChildByFieldName("name"), sourceCode)
			if t := p.ChildByFieldName("type"); t != nil {
				typ = t.Content(sourceCode)
			}
			if v := p.ChildByFieldName("value"); v != nil {
				def = v.Content(sourceCode)
			}
		case "list_splat_pattern", "dictionary_splat_pattern":
			name = splatName(p, sourceCode)
		default:
			// positional and keyword separators carry no name
			continue
		}
		if name == "" {
			continue
		}
		out = append(out, formatParam(name, typ, def))
	}
	return out
}

func splatName(node *sitter.Node, sourceCode []byte) string {
	if node == nil {
		return ""
	}
	switch node.Type() {
	case "identifier":
		return node.Content(sourceCode)
	case "list_splat_pattern", "dictionary_splat_pattern":
		if inner := node.NamedChild(0); inner != nil {
			return inner.Content(sourceCode)
		}
	}
	return ""
}

func formatParam(name, typ, def string) string {
	s := name
	if typ != "" {
		s += ": " + typ
	}
	if def != "" {
		s += " = " + def
	}
	return s
}

func extractClass(node *sitter.Node, sourceCode []byte) *Class {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	cls := &Class{
		Name: nameNode.Content(sourceCode),
		Line: int(node.StartPoint().Row + 1),
	}
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			arg := supers.NamedChild(i)
			switch arg.Type() {
			case "identifier", "attribute":
				cls.Bases = append(cls.Bases, arg.Content(sourceCode))
			}
		}
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return cls
	}
	cls.Docstring = blockDocstring(body, sourceCode)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		switch stmt.Type() {
		case "function_definition":
			if fn := extractFunction(stmt, sourceCode); fn != nil {
				cls.Methods = append(cls.Methods, fn)
			}
		case "class_definition":
			if nested := extractClass(stmt, sourceCode); nested != nil {
				cls.Classes = append(cls.Classes, nested)
			}
		case "decorated_definition":
			def := stmt.ChildByFieldName("definition")
			if def == nil {
				continue
			}
			switch def.Type() {
			case "function_definition":
				if fn := extractFunction(def, sourceCode); fn != nil {
					cls.Methods = append(cls.Methods, fn)
				}
			case "class_definition":
				if nested := extractClass(def, sourceCode); nested != nil {
					cls.Classes = append(cls.Classes, nested)
				}
			}
		case "expression_statement":
			if a := extractAssignment(stmt, sourceCode); a != nil {
				cls.Fields = append(cls.Fields, a.Name)
			}
		}
	}
	return cls
}

func extractAssignment(stmt *sitter.Node, sourceCode []byte) *Assignment {
	expr := stmt.NamedChild(0)
	if expr == nil || expr.Type() != "assignment" {
		return nil
	}
	left := expr.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return nil
	}
	right := expr.ChildByFieldName("right")
	if right == nil {
		// bare annotation like "x: int" binds nothing at runtime
		return nil
	}
	return &Assignment{
		Name:    left.Content(sourceCode),
		Value:   right.Content(sourceCode),
		Line:    int(expr.StartPoint().Row + 1),
		Strings: stringElements(right, sourceCode),
	}
}

func stringElements(node *sitter.Node, sourceCode []byte) []string {
	if node.Type() != "list" && node.Type() != "tuple" {
		return nil
	}
	out := []string{}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		el := node.NamedChild(i)
		if el.Type() != "string" {
			return nil
		}
		out = append(out, stringLiteral(el, sourceCode))
	}
	return out
}

// Imports

func extractPlainImports(stmt *sitter.Node, sourceCode []byte) []*Import {
	imports := []*Import{}
	for i := 0; i < int(stmt.ChildCount()); i++ {
		if stmt.FieldNameForChild(i) != "name" {
			continue
		}
		child := stmt.Child(i)
		switch child.Type() {
		case "dotted_name":
			full := child.Content(sourceCode)
			top := full
			if idx := strings.IndexByte(full, '.'); idx >= 0 {
				top = full[:idx]
			}
			// "import a.b" binds the top-level name "a"
			imports = append(imports, &Import{Module: full, Alias: top})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			imports = append(imports, &Import{
				Module: nameNode.Content(sourceCode),
				Alias:  aliasNode.Content(sourceCode),
			})
		}
	}
	return imports
}

func extractFromImport(stmt *sitter.Node, sourceCode []byte) ([]*Import, *StarImport) {
	var module string
	var dots int
	if mn := stmt.ChildByFieldName("module_name"); mn != nil {
		switch mn.Type() {
		case "dotted_name":
			module = mn.Content(sourceCode)
		case "relative_import":
			for i := 0; i < int(mn.NamedChildCount()); i++ {
				c := mn.NamedChild(i)
				switch c.Type() {
				case "import_prefix":
					dots = len(c.Content(sourceCode))
				case "dotted_name":
					module = c.Content(sourceCode)
				}
			}
		}
	}

	imports := []*Import{}
	for i := 0; i < int(stmt.ChildCount()); i++ {
		child := stmt.Child(i)
		if child.Type() == "wildcard_import" {
			return imports, &StarImport{Module: module, Dots: dots}
		}
		if stmt.FieldNameForChild(i) != "name" {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			name := child.Content(sourceCode)
			imports = append(imports, &Import{Module: module, Dots: dots, Name: name, Alias: name})
		case "aliased_import":
			nameNode := child.ChildByFieldName("name")
			aliasNode := child.ChildByFieldName("alias")
			if nameNode == nil || aliasNode == nil {
				continue
			}
			imports = append(imports, &Import{
				Module: module,
				Dots:   dots,
				Name:   nameNode.Content(sourceCode),
				Alias:  aliasNode.Content(sourceCode),
			})
		}
	}
	return imports, nil
}

// Docstrings

func docstringOf(stmt *sitter.Node, sourceCode []byte) string {
	expr := stmt.NamedChild(0)
	if expr == nil || expr.Type() != "string" {
		return ""
	}
	return cleanDocstring(stringLiteral(expr, sourceCode))
}

func blockDocstring(body *sitter.Node, sourceCode []byte) string {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != "expression_statement" {
			return ""
		}
		return docstringOf(child, sourceCode)
	}
	return ""
}

// stringLiteral returns the value of a string node with prefix letters
// and quote delimiters removed. Escape sequences are kept as written
// since docstrings are treated as opaque text.
func stringLiteral(node *sitter.Node, sourceCode []byte) string {
	s := node.Content(sourceCode)
	for len(s) > 0 {
		switch s[0] {
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
			s = s[1:]
			continue
		}
		break
	}
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return s[len(q) : len(s)-len(q)]
		}
	}
	return s
}

// cleanDocstring normalizes indentation: the first line keeps only its
// own content, the common leading whitespace of the remaining lines is
// removed, and leading and trailing blank lines are dropped.
func cleanDocstring(raw string) string {
	lines := strings.Split(raw, "\n")
	margin := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if margin < 0 || indent < margin {
			margin = indent
		}
	}
	lines[0] = strings.TrimLeft(lines[0], " \t")
	if margin > 0 {
		for i, line := range lines[1:] {
			if len(line) >= margin {
				lines[1+i] = line[margin:]
			} else {
				lines[1+i] = strings.TrimLeft(line, " \t")
			}
		}
	}
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}
