package arch_test

import (
	"go/ast"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
)

// allowedGlobals names package-level vars that hold state a run never
// writes but that the checks below cannot recognise as constant.
var allowedGlobals = map[string][]string{
	// Filled by go:embed at build time.
	"billing": {"defaultScript"},
}

// constantLike reports whether a package-level var initialised with val is
// effectively a constant: an error sentinel, a literal, or a lookup table
// written inline.
func constantLike(typ, val ast.Expr) bool {
	if id, ok := typ.(*ast.Ident); ok && id.Name == "error" {
		return true
	}
	switch v := val.(type) {
	case *ast.BasicLit, *ast.CompositeLit:
		return true
	case *ast.CallExpr:
		sel, ok := v.Fun.(*ast.SelectorExpr)
		if !ok {
			return false
		}
		pkg, ok := sel.X.(*ast.Ident)
		return ok && ((pkg.Name == "errors" && sel.Sel.Name == "New") ||
			(pkg.Name == "fmt" && sel.Sel.Name == "Errorf"))
	}
	return false
}

// packageVars calls fn for every package-level var declared in files.
func packageVars(files []sourceFile, fn func(f sourceFile, vs *ast.ValueSpec, i int)) {
	for _, f := range files {
		for _, decl := range f.ast.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.VAR {
				continue
			}
			for _, spec := range gd.Specs {
				vs := spec.(*ast.ValueSpec)
				for i := range vs.Names {
					fn(f, vs, i)
				}
			}
		}
	}
}

// TestNoMutableGlobalState keeps run state out of package scope: ports,
// ships and bills live in values passed down from the command.
func TestNoMutableGlobalState(t *testing.T) {
	t.Parallel()

	for _, pkg := range packages(t) {
		allowed := make(map[string]bool)
		for _, name := range allowedGlobals[pkg] {
			allowed[name] = true
		}
		packageVars(parsePackage(t, pkg, false), func(f sourceFile, vs *ast.ValueSpec, i int) {
			name := vs.Names[i].Name
			if name == "_" || allowed[name] {
				return
			}
			var val ast.Expr
			if i < len(vs.Values) {
				val = vs.Values[i]
			}
			if !constantLike(vs.Type, val) {
				t.Errorf("%s: package-level var %s holds mutable state", f.pos(vs.Names[i]), name)
			}
		})
	}
}

func TestAllowedGlobalsExist(t *testing.T) {
	t.Parallel()

	for pkg, names := range allowedGlobals {
		declared := make(map[string]bool)
		packageVars(parsePackage(t, pkg, false), func(_ sourceFile, vs *ast.ValueSpec, i int) {
			declared[vs.Names[i].Name] = true
		})
		for _, name := range names {
			assert.True(t, declared[name], "allowedGlobals[%q] lists %s, which is not declared", pkg, name)
		}
	}
}
