// Package arch_test holds structural checks over the internal packages:
// import layering, package-level state, doc comments, interface placement
// and file size. It parses source only and never imports harbor code.
package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const internalImport = "github.com/papapumpkin/harbor/internal/"

// sourceFile is one parsed .go file of an internal package.
type sourceFile struct {
	path  string // relative to the repository root
	lines int
	ast   *ast.File
	fset  *token.FileSet
}

// internalDir returns the absolute path of internal/, found relative to
// this file so the tests work from any working directory.
func internalDir(t *testing.T) string {
	t.Helper()
	_, self, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller")
	return filepath.Dir(filepath.Dir(self))
}

// packages lists the directories under internal/ that hold Go code, sorted.
func packages(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(internalDir(t))
	require.NoError(t, err)

	var pkgs []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		if len(parsePackage(t, e.Name(), false)) > 0 {
			pkgs = append(pkgs, e.Name())
		}
	}
	return pkgs
}

// parsePackage parses the .go files of pkg with comments, sorted by name.
// Test files are included only when withTests is set.
func parsePackage(t *testing.T, pkg string, withTests bool) []sourceFile {
	t.Helper()
	dir := filepath.Join(internalDir(t), pkg)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var files []sourceFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if !withTests && strings.HasSuffix(name, "_test.go") {
			continue
		}
		full := filepath.Join(dir, name)
		src, err := os.ReadFile(full)
		require.NoError(t, err)

		fset := token.NewFileSet()
		node, err := parser.ParseFile(fset, full, src, parser.ParseComments|parser.SkipObjectResolution)
		require.NoError(t, err, "parsing %s", full)

		files = append(files, sourceFile{
			path:  filepath.Join("internal", pkg, name),
			lines: strings.Count(strings.TrimSuffix(string(src), "\n"), "\n") + 1,
			ast:   node,
			fset:  fset,
		})
	}
	slices.SortFunc(files, func(a, b sourceFile) int { return strings.Compare(a.path, b.path) })
	return files
}

// internalImports returns the internal packages imported by files, sorted
// and deduplicated.
func internalImports(files []sourceFile) []string {
	var out []string
	for _, f := range files {
		for _, imp := range f.ast.Imports {
			path := strings.Trim(imp.Path.Value, `"`)
			rel, ok := strings.CutPrefix(path, internalImport)
			if !ok {
				continue
			}
			rel, _, _ = strings.Cut(rel, "/")
			out = append(out, rel)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// pos formats a node position as path:line for failure messages.
func (f sourceFile) pos(n ast.Node) string {
	return f.path + ":" + strconv.Itoa(f.fset.Position(n.Pos()).Line)
}
