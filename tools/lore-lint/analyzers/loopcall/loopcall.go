// Package loopcall reports single-item embedder and event index calls made
// inside loops.
package loopcall

import (
	"go/ast"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer reports calls inside loops that have a batch counterpart.
var Analyzer = &analysis.Analyzer{
	Name:     "loopcall",
	Doc:      "reports embedder and event index calls inside loops that should be batched",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// batchable maps a per-item method to the call that should replace the loop.
var batchable = map[string]string{
	"Embed":            "EmbedBatch",
	"Save":             "SaveBatch",
	"Search":           "one Search with a larger limit",
	"SearchByTimeline": "one SearchByTimeline with a larger limit",
}

func run(pass *analysis.Pass) (any, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.RangeStmt)(nil),
		(*ast.ForStmt)(nil),
	}

	insp.Preorder(nodeFilter, func(n ast.Node) {
		var body *ast.BlockStmt
		switch stmt := n.(type) {
		case *ast.RangeStmt:
			body = stmt.Body
		case *ast.ForStmt:
			body = stmt.Body
		}
		if body == nil {
			return
		}

		ast.Inspect(body, func(n ast.Node) bool {
			// Nested loops are visited on their own.
			switch n.(type) {
			case *ast.RangeStmt, *ast.ForStmt:
				return false
			}

			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}

			if instead, ok := batchable[sel.Sel.Name]; ok {
				pass.Reportf(call.Pos(), "%s called inside loop - use %s", sel.Sel.Name, instead)
			}
			return true
		})
	})

	return nil, nil
}
