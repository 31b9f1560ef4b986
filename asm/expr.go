package asm

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// evalExpr evaluates a .equ or $(...) expression at assembly time.
// Equates and resolved labels are in scope as integer names.
func (a *Assembler) evalExpr(expr string) (int64, error) {
	env := starlark.StringDict{}
	for name, v := range a.equates {
		env[name] = starlark.MakeInt64(v)
	}
	for name, addr := range a.labels {
		env[name] = starlark.MakeInt64(int64(addr))
	}

	thread := &starlark.Thread{Name: "asm"}
	opts := &syntax.FileOptions{}
	value, err := starlark.EvalOptions(opts, thread, "expr", expr, env)
	if err != nil {
		return 0, ErrBadExpression(expr)
	}

	intValue, ok := value.(starlark.Int)
	if !ok {
		return 0, ErrBadExpression(expr)
	}
	v64, ok := intValue.Int64()
	if !ok {
		return 0, ErrBadExpression(expr)
	}
	return v64, nil
}
