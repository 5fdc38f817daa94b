package main

import (
	"go/ast"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// SleepAnalyzer reports time.Sleep in non-test files.
var SleepAnalyzer = &analysis.Analyzer{
	Name:     "sleeplint",
	Doc:      "reports time.Sleep outside tests; use a context-aware sleep",
	Run:      runSleep,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runSleep(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if generated(pass, call.Pos()) {
			return
		}
		if strings.HasSuffix(pass.Fset.File(call.Pos()).Name(), "_test.go") {
			return
		}
		if calledPkgFunc(pass, call, "time", "Sleep") {
			pass.Reportf(call.Pos(), "time.Sleep ignores cancellation, use remote.SleepWithContext: %s", render(pass.Fset, call))
		}
	})

	return nil, nil
}
