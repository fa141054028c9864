// Package buildutil extracts call arguments from buildtools Starlark syntax
// trees for the specification document reader.
package buildutil

import (
	"fmt"
	"strconv"

	"github.com/bazelbuild/buildtools/build"
)

// Keyword returns the value expression of the keyword argument name, or nil.
func Keyword(call *build.CallExpr, name string) build.Expr {
	for _, arg := range call.List {
		assign, ok := arg.(*build.AssignExpr)
		if !ok {
			continue
		}
		if lhs, ok := assign.LHS.(*build.Ident); ok && lhs.Name == name {
			return assign.RHS
		}
	}
	return nil
}

// String extracts a keyword string argument.
// Returns empty string if the argument is missing or not a string.
func String(call *build.CallExpr, name string) string {
	if str, ok := Keyword(call, name).(*build.StringExpr); ok {
		return str.Value
	}
	return ""
}

// Int extracts a keyword integer argument.
// Returns 0 if the argument is missing or not a valid integer.
func Int(call *build.CallExpr, name string) int {
	lit, ok := Keyword(call, name).(*build.LiteralExpr)
	if !ok {
		return 0
	}
	val, err := strconv.Atoi(lit.Token)
	if err != nil {
		return 0
	}
	return val
}

// StringDict extracts a keyword dict mapping strings to strings. A missing
// argument yields a nil map; any other shape, or a repeated key, is an error.
func StringDict(call *build.CallExpr, name string) (map[string]string, error) {
	expr := Keyword(call, name)
	if expr == nil {
		return nil, nil
	}
	dict, ok := expr.(*build.DictExpr)
	if !ok {
		return nil, fmt.Errorf("%s must be a dict", name)
	}
	out := make(map[string]string, len(dict.List))
	for _, kv := range dict.List {
		k, kok := kv.Key.(*build.StringExpr)
		v, vok := kv.Value.(*build.StringExpr)
		if !kok || !vok {
			return nil, fmt.Errorf("%s entries must map strings to strings", name)
		}
		if _, dup := out[k.Value]; dup {
			return nil, fmt.Errorf("%s: duplicate key %q", name, k.Value)
		}
		out[k.Value] = v.Value
	}
	return out, nil
}

// PositionalStrings returns the positional string arguments of a call in
// order. Keyword arguments are skipped.
func PositionalStrings(call *build.CallExpr) []string {
	var out []string
	for _, arg := range call.List {
		if str, ok := arg.(*build.StringExpr); ok {
			out = append(out, str.Value)
		}
	}
	return out
}

// Positional returns the i-th positional string argument, or "".
func Positional(call *build.CallExpr, i int) string {
	if strs := PositionalStrings(call); i < len(strs) {
		return strs[i]
	}
	return ""
}

// FuncName returns the function name from a CallExpr.
// Returns empty string if the call is not a simple function call
// (e.g., method calls like foo.bar()).
func FuncName(call *build.CallExpr) string {
	if ident, ok := call.X.(*build.Ident); ok {
		return ident.Name
	}
	return ""
}

// Line returns the 1-based line on which expr starts.
func Line(expr build.Expr) int {
	start, _ := expr.Span()
	return start.Line
}
