// Package hotparse reports parsing done on hot paths: era and date parsing
// inside sort comparators, and regexp compilation inside loops or
// comparators.
package hotparse

import (
	"go/ast"
	"go/types"
	"path"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports parse calls that run once per comparison or iteration.
var Analyzer = &analysis.Analyzer{
	Name:     "hotparse",
	Doc:      "reports era/date parsing inside sort comparators and regexp compilation inside loops",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// comparatorFuncs are calls that should not run once per comparison.
var comparatorFuncs = map[string]map[string]bool{
	"chrono": {
		"ParseEraConfig": true,
		"EraNames":       true,
		"ParseEventDate": true,
	},
	"regexp": regexpFuncs,
}

// regexpFuncs are also reported inside loop bodies.
var regexpFuncs = map[string]bool{
	"Compile":          true,
	"MustCompile":      true,
	"CompilePOSIX":     true,
	"MustCompilePOSIX": true,
}

// sortFuncs take a comparator or less function.
var sortFuncs = map[string]map[string]bool{
	"slices": {
		"SortFunc":         true,
		"SortStableFunc":   true,
		"IsSortedFunc":     true,
		"BinarySearchFunc": true,
		"MinFunc":          true,
		"MaxFunc":          true,
	},
	"sort": {
		"Slice":         true,
		"SliceStable":   true,
		"SliceIsSorted": true,
	},
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	insp.WithStack(nodeFilter, func(n ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		call := n.(*ast.CallExpr)

		pkg, name, ok := packageCall(pass, call)
		if !ok || !comparatorFuncs[pkg][name] {
			return true
		}

		switch where := enclosing(pass, stack); {
		case where == "sort comparator":
			pass.Reportf(call.Pos(), "%s.%s called inside sort comparator - compute it once before sorting", pkg, name)
		case where == "loop" && pkg == "regexp":
			pass.Reportf(call.Pos(), "regexp.%s called inside loop - compile once outside loop", name)
		}
		return true
	})

	return nil, nil
}

// packageCall returns the base import path and function name of a
// package-qualified call such as chrono.ParseEventDate(s).
func packageCall(pass *analysis.Pass, call *ast.CallExpr) (string, string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", "", false
	}
	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return "", "", false
	}
	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return "", "", false
	}
	return path.Base(pkgName.Imported().Path()), sel.Sel.Name, true
}

// enclosing reports the nearest hot context of the node on top of stack:
// "sort comparator", "loop", or "" when the enclosing function is reached
// first.
func enclosing(pass *analysis.Pass, stack []ast.Node) string {
	for i := len(stack) - 2; i >= 0; i-- {
		child := stack[i+1]
		switch s := stack[i].(type) {
		case *ast.FuncDecl:
			return ""
		case *ast.RangeStmt:
			if child == ast.Node(s.Body) {
				return "loop"
			}
		case *ast.ForStmt:
			if child == ast.Node(s.Body) {
				return "loop"
			}
		case *ast.CallExpr:
			lit, ok := child.(*ast.FuncLit)
			if !ok {
				continue
			}
			if pkg, name, ok := packageCall(pass, s); ok && sortFuncs[pkg][name] && isArg(s, lit) {
				return "sort comparator"
			}
		}
	}
	return ""
}

func isArg(call *ast.CallExpr, lit *ast.FuncLit) bool {
	for _, arg := range call.Args {
		if arg == ast.Expr(lit) {
			return true
		}
	}
	return false
}
