// Package slogkeys provides a linter that checks log/slog attribute keys are snake_case.
//
// Keys are checked where they are string literals in key/value position of
// the slog package functions and *slog.Logger methods, and in slog.String,
// slog.Int, slog.Any and the other attribute constructors.
//
//	slog.InfoContext(ctx, "todo created", "todo_id", id) // Good
//	slog.InfoContext(ctx, "todo created", "todoID", id)  // Bad
//
// The linter respects //nolint and //nolint:slogkeys comments.
package slogkeys

import (
	"go/ast"
	"go/constant"
	"go/types"
	"regexp"
	"strings"

	"golang.org/x/tools/go/analysis"
)

// Analyzer reports slog keys that are not snake_case.
var Analyzer = &analysis.Analyzer{
	Name: "slogkeys",
	Doc:  "checks that log/slog attribute keys are snake_case",
	Run:  run,
}

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// messageIndex is the position of the message argument of each logging call.
// Key/value pairs start right after it.
var messageIndex = map[string]int{
	"Debug": 0, "Info": 0, "Warn": 0, "Error": 0,
	"DebugContext": 1, "InfoContext": 1, "WarnContext": 1, "ErrorContext": 1,
	"Log": 2,
}

// attrConstructors take the key as their first argument.
var attrConstructors = map[string]bool{
	"String": true, "Int": true, "Int64": true, "Uint64": true, "Float64": true,
	"Bool": true, "Time": true, "Duration": true, "Any": true, "Group": true,
}

func run(pass *analysis.Pass) (any, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}

			name, ok := slogCallee(pass, call)
			if !ok {
				return true
			}

			switch {
			case attrConstructors[name] && len(call.Args) > 0:
				checkKey(pass, file, call.Args[0])
			case name == "With":
				checkPairs(pass, file, call.Args)
			default:
				if idx, ok := messageIndex[name]; ok && len(call.Args) > idx {
					checkPairs(pass, file, call.Args[idx+1:])
				}
			}
			return true
		})
	}

	return nil, nil
}

// slogCallee returns the function or method name when call targets log/slog.
func slogCallee(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}

	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "log/slog" {
		return "", false
	}
	return fn.Name(), true
}

// checkPairs walks alternating key/value arguments. A slog.Attr argument
// occupies a single slot.
func checkPairs(pass *analysis.Pass, file *ast.File, args []ast.Expr) {
	for i := 0; i < len(args); i++ {
		if isAttr(pass, args[i]) {
			continue
		}
		checkKey(pass, file, args[i])
		i++
	}
}

func isAttr(pass *analysis.Pass, expr ast.Expr) bool {
	named, ok := pass.TypesInfo.TypeOf(expr).(*types.Named)
	if !ok {
		return false
	}
	obj := named.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == "log/slog" && obj.Name() == "Attr"
}

func checkKey(pass *analysis.Pass, file *ast.File, expr ast.Expr) {
	tv, ok := pass.TypesInfo.Types[expr]
	if !ok || tv.Value == nil || tv.Value.Kind() != constant.String {
		return
	}

	key := constant.StringVal(tv.Value)
	if snakeCase.MatchString(key) || hasNolintComment(pass, file, expr) {
		return
	}
	pass.Reportf(expr.Pos(), "slog key %q should be snake_case", key)
}

// hasNolintComment reports a //nolint comment on the line of expr or the line before.
func hasNolintComment(pass *analysis.Pass, file *ast.File, expr ast.Expr) bool {
	line := pass.Fset.Position(expr.Pos()).Line

	for _, cg := range file.Comments {
		for _, comment := range cg.List {
			commentLine := pass.Fset.Position(comment.Pos()).Line
			if commentLine != line && commentLine != line-1 {
				continue
			}

			directive, found := strings.CutPrefix(comment.Text, "//nolint")
			if !found {
				continue
			}
			if directive == "" || !strings.HasPrefix(directive, ":") || strings.Contains(directive, "slogkeys") {
				return true
			}
		}
	}

	return false
}
