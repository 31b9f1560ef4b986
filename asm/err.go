package asm

import (
	"errors"
	"fmt"
)

var (
	ErrLabelDuplicate  = errors.New("label duplicated")
	ErrEquateSyntax    = errors.New(".equ syntax")
	ErrEquateDuplicate = errors.New(".equ duplicated")
	ErrOperandCount    = errors.New("wrong operand count")
	ErrOddOffset       = errors.New("branch offset must be even")
)

// ErrUnknownMnemonic reports a mnemonic outside the supported set.
type ErrUnknownMnemonic string

func (e ErrUnknownMnemonic) Error() string {
	return fmt.Sprintf("unknown mnemonic %q", string(e))
}

// ErrLabelMissing reports a reference to a label that was never defined.
type ErrLabelMissing string

func (e ErrLabelMissing) Error() string {
	return fmt.Sprintf("label %q missing", string(e))
}

// ErrBadRegister reports an operand that is not a register name.
type ErrBadRegister string

func (e ErrBadRegister) Error() string {
	return fmt.Sprintf("%q is not a register", string(e))
}

// ErrBadImmediate reports an operand that is not a number.
type ErrBadImmediate string

func (e ErrBadImmediate) Error() string {
	return fmt.Sprintf("%q is not a number", string(e))
}

// ErrBadExpression reports a $(...) or .equ expression that failed to
// evaluate.
type ErrBadExpression string

func (e ErrBadExpression) Error() string {
	return fmt.Sprintf("$(%v) is not a valid expression", string(e))
}

// ErrImmRange reports an immediate that does not fit its encoding field.
type ErrImmRange struct {
	Value    int64
	Min, Max int64
}

func (e ErrImmRange) Error() string {
	return fmt.Sprintf("immediate %d out of range [%d, %d]", e.Value, e.Min, e.Max)
}

// ErrSyntax tags any per-line cause with the source line it occurred on.
// It wraps exactly once, at the line boundary.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (e ErrSyntax) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.LineNo, e.Line, e.Err)
}

func (e ErrSyntax) Unwrap() error {
	return e.Err
}
