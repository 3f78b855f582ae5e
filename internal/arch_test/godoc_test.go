package arch_test

import (
	"go/ast"
	"strings"
	"testing"
)

// docExemptions lists exported names whose type carries the documentation.
var docExemptions = map[string][]string{
	"cargo": {
		"Basic", "Heavy", "Refrigerated", "Liquid",
		"ItemSmall", "ItemHeavy", "ItemRefrigerated", "ItemLiquid",
	},
	"scenario": {
		"ActionLoad", "ActionUnload", "ActionSail", "ActionRefuel",
		"FormatJSON", "FormatTOML",
		"KindDefinition", "KindCommand", "KindUnknown",
	},
}

// documented reports whether doc is a Go doc comment for name.
func documented(doc *ast.CommentGroup, name string) bool {
	return doc != nil && strings.HasPrefix(strings.TrimSpace(doc.Text()), name)
}

// exportedReceiver reports whether a method belongs to an exported type.
func exportedReceiver(recv *ast.FieldList) bool {
	expr := recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	id, ok := expr.(*ast.Ident)
	return ok && id.IsExported()
}

// TestExportedSymbolsHaveGoDoc requires a doc comment that starts with the
// name on every exported declaration. Inside a grouped const or var block a
// comment on the group or a trailing line comment also counts.
func TestExportedSymbolsHaveGoDoc(t *testing.T) {
	t.Parallel()

	for _, pkg := range packages(t) {
		exempt := make(map[string]bool)
		for _, name := range docExemptions[pkg] {
			exempt[name] = true
		}
		for _, f := range parsePackage(t, pkg, false) {
			for _, decl := range f.ast.Decls {
				switch d := decl.(type) {
				case *ast.FuncDecl:
					if !d.Name.IsExported() || exempt[d.Name.Name] {
						continue
					}
					if d.Recv != nil && !exportedReceiver(d.Recv) {
						continue
					}
					if !documented(d.Doc, d.Name.Name) {
						t.Errorf("%s: %s has no doc comment", f.pos(d), d.Name.Name)
					}
				case *ast.GenDecl:
					checkGenDoc(t, f, d, exempt)
				}
			}
		}
	}
}

func checkGenDoc(t *testing.T, f sourceFile, d *ast.GenDecl, exempt map[string]bool) {
	t.Helper()

	grouped := len(d.Specs) > 1
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			if !s.Name.IsExported() || exempt[s.Name.Name] {
				continue
			}
			doc := s.Doc
			if doc == nil {
				doc = d.Doc
			}
			if !documented(doc, s.Name.Name) {
				t.Errorf("%s: type %s has no doc comment", f.pos(s), s.Name.Name)
			}
		case *ast.ValueSpec:
			for _, name := range s.Names {
				if !name.IsExported() || exempt[name.Name] {
					continue
				}
				if documented(s.Doc, name.Name) {
					continue
				}
				if grouped && (d.Doc != nil || s.Comment != nil) {
					continue
				}
				if !grouped && documented(d.Doc, name.Name) {
					continue
				}
				t.Errorf("%s: %s has no doc comment", f.pos(name), name.Name)
			}
		}
	}
}
