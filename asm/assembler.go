// Package asm provides a two-pass assembler for the RV32I subset
// implemented by the emulator.
//
// Pass one strips comments, collects label definitions and .equ constants,
// and expands pseudo-instructions so every label resolves to an exact byte
// address. Pass two encodes each instruction to its 32-bit machine word,
// turning label operands into PC-relative byte offsets. Any error aborts
// assembly before a single word is emitted.
package asm

import (
	"encoding/binary"
	"strconv"
	"strings"

	"github.com/sarchlab/rvsim/insts"
)

// statement is one encodable line surviving pass one. Pseudo-instruction
// expansion may produce several statements sharing a source line.
type statement struct {
	lineNo int    // 1-based source line number
	text   string // source text, kept for error tags
	mnem   string
	args   []string
	addr   uint32
}

// Assembler translates RV32I assembly text into a binary word image.
// Labels and equates are scoped to a single Assemble call.
type Assembler struct {
	base    uint32
	labels  map[string]uint32
	equates map[string]int64
}

// NewAssembler creates an assembler that resolves labels relative to the
// given load base address.
func NewAssembler(base uint32) *Assembler {
	return &Assembler{base: base}
}

// Assemble translates source into little-endian machine words loaded at
// base address 0.
func Assemble(source string) ([]byte, error) {
	return NewAssembler(0).Assemble(source)
}

// Assemble runs both passes over source and returns the binary image.
// On error, no partial binary is returned.
func (a *Assembler) Assemble(source string) ([]byte, error) {
	a.labels = map[string]uint32{}
	a.equates = map[string]int64{}

	stmts, err := a.passOne(source)
	if err != nil {
		return nil, err
	}

	code := make([]byte, 0, len(stmts)*4)
	for _, st := range stmts {
		word, err := a.encodeStatement(st)
		if err != nil {
			return nil, ErrSyntax{LineNo: st.lineNo, Line: st.text, Err: err}
		}
		code = binary.LittleEndian.AppendUint32(code, word)
	}
	return code, nil
}

// Labels returns the label table built by the last Assemble call. The
// debugger uses it to render symbolic addresses.
func (a *Assembler) Labels() map[string]uint32 {
	return a.labels
}

// passOne collects labels and equates and expands pseudo-instructions.
func (a *Assembler) passOne(source string) ([]statement, error) {
	var stmts []statement
	pc := a.base

	for no, raw := range strings.Split(source, "\n") {
		lineNo := no + 1
		line := raw
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// A label definition may share its line with an instruction.
		if idx := strings.IndexByte(line, ':'); idx >= 0 {
			label := strings.TrimSpace(line[:idx])
			if !isIdent(label) {
				return nil, ErrSyntax{LineNo: lineNo, Line: raw, Err: ErrBadImmediate(label)}
			}
			if _, ok := a.labels[label]; ok {
				return nil, ErrSyntax{LineNo: lineNo, Line: raw, Err: ErrLabelDuplicate}
			}
			a.labels[label] = pc
			line = strings.TrimSpace(line[idx+1:])
			if line == "" {
				continue
			}
		}

		if strings.HasPrefix(line, ".equ") {
			if err := a.defineEquate(line); err != nil {
				return nil, ErrSyntax{LineNo: lineNo, Line: raw, Err: err}
			}
			continue
		}

		mnem, args := splitOperands(line)
		expanded, err := a.expand(mnem, args)
		if err != nil {
			return nil, ErrSyntax{LineNo: lineNo, Line: raw, Err: err}
		}
		for _, ex := range expanded {
			stmts = append(stmts, statement{
				lineNo: lineNo,
				text:   strings.TrimSpace(raw),
				mnem:   ex.mnem,
				args:   ex.args,
				addr:   pc,
			})
			pc += 4
		}
	}
	return stmts, nil
}

// defineEquate handles `.equ NAME = expr`.
func (a *Assembler) defineEquate(line string) error {
	rest := strings.TrimSpace(strings.TrimPrefix(line, ".equ"))
	name, expr, ok := strings.Cut(rest, "=")
	if !ok {
		return ErrEquateSyntax
	}
	name = strings.TrimSpace(name)
	if !isIdent(name) {
		return ErrEquateSyntax
	}
	if _, dup := a.equates[name]; dup {
		return ErrEquateDuplicate
	}
	value, err := a.evalExpr(strings.TrimSpace(expr))
	if err != nil {
		return err
	}
	a.equates[name] = value
	return nil
}

// splitOperands separates the mnemonic from its comma-separated operands.
func splitOperands(line string) (string, []string) {
	mnem, rest, _ := strings.Cut(line, " ")
	mnem = strings.ToLower(strings.TrimSpace(mnem))
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return mnem, nil
	}
	parts := strings.Split(rest, ",")
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, strings.TrimSpace(p))
	}
	return mnem, args
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := r == '_' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !alpha && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// encodeStatement produces the machine word for one statement (pass two).
func (a *Assembler) encodeStatement(st statement) (uint32, error) {
	switch st.mnem {
	case ".word":
		if len(st.args) != 1 {
			return 0, ErrOperandCount
		}
		value, err := a.operandValue(st.args[0])
		if err != nil {
			return 0, err
		}
		return uint32(value), nil

	case "add", "sub", "and", "or", "xor", "sll", "srl", "sra":
		return a.encodeRType(st)
	case "addi", "andi", "ori", "xori":
		return a.encodeIType(st)
	case "slli", "srli", "srai":
		return a.encodeShift(st)
	case "lw":
		return a.encodeMem(st, insts.OpLW)
	case "sw":
		return a.encodeMem(st, insts.OpSW)
	case "beq", "bne", "blt", "bge":
		return a.encodeBranch(st)
	case "lui", "auipc":
		return a.encodeUpper(st)
	case "jal":
		return a.encodeJAL(st)
	case "jalr":
		return a.encodeJALR(st)
	default:
		return 0, ErrUnknownMnemonic(st.mnem)
	}
}

var rTypeOps = map[string]insts.Op{
	"add": insts.OpADD, "sub": insts.OpSUB,
	"and": insts.OpAND, "or": insts.OpOR, "xor": insts.OpXOR,
	"sll": insts.OpSLL, "srl": insts.OpSRL, "sra": insts.OpSRA,
}

var iTypeOps = map[string]insts.Op{
	"addi": insts.OpADDI, "andi": insts.OpANDI,
	"ori": insts.OpORI, "xori": insts.OpXORI,
}

var shiftOps = map[string]insts.Op{
	"slli": insts.OpSLLI, "srli": insts.OpSRLI, "srai": insts.OpSRAI,
}

var branchOps = map[string]insts.Op{
	"beq": insts.OpBEQ, "bne": insts.OpBNE,
	"blt": insts.OpBLT, "bge": insts.OpBGE,
}

func (a *Assembler) encodeRType(st statement) (uint32, error) {
	if len(st.args) != 3 {
		return 0, ErrOperandCount
	}
	rd, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	rs1, err := parseReg(st.args[1])
	if err != nil {
		return 0, err
	}
	rs2, err := parseReg(st.args[2])
	if err != nil {
		return 0, err
	}
	return insts.Encode(&insts.Instruction{
		Op: rTypeOps[st.mnem], Format: insts.FormatR,
		Rd: rd, Rs1: rs1, Rs2: rs2,
	}), nil
}

func (a *Assembler) encodeIType(st statement) (uint32, error) {
	if len(st.args) != 3 {
		return 0, ErrOperandCount
	}
	rd, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	rs1, err := parseReg(st.args[1])
	if err != nil {
		return 0, err
	}
	imm, err := a.immOperand(st.args[2], -2048, 2047)
	if err != nil {
		return 0, err
	}
	return insts.Encode(&insts.Instruction{
		Op: iTypeOps[st.mnem], Format: insts.FormatI,
		Rd: rd, Rs1: rs1, Imm: int32(imm),
	}), nil
}

func (a *Assembler) encodeShift(st statement) (uint32, error) {
	if len(st.args) != 3 {
		return 0, ErrOperandCount
	}
	rd, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	rs1, err := parseReg(st.args[1])
	if err != nil {
		return 0, err
	}
	shamt, err := a.immOperand(st.args[2], 0, 31)
	if err != nil {
		return 0, err
	}
	return insts.Encode(&insts.Instruction{
		Op: shiftOps[st.mnem], Format: insts.FormatI,
		Rd: rd, Rs1: rs1, Shamt: uint8(shamt),
	}), nil
}

// encodeMem handles `lw rd, off(rs1)` and `sw rs2, off(rs1)`.
func (a *Assembler) encodeMem(st statement, op insts.Op) (uint32, error) {
	if len(st.args) != 2 {
		return 0, ErrOperandCount
	}
	reg, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	off, rs1, err := a.memOperand(st.args[1])
	if err != nil {
		return 0, err
	}
	inst := &insts.Instruction{Op: op, Rs1: rs1, Imm: int32(off)}
	if op == insts.OpLW {
		inst.Format = insts.FormatI
		inst.Rd = reg
	} else {
		inst.Format = insts.FormatS
		inst.Rs2 = reg
	}
	return insts.Encode(inst), nil
}

func (a *Assembler) encodeBranch(st statement) (uint32, error) {
	if len(st.args) != 3 {
		return 0, ErrOperandCount
	}
	rs1, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	rs2, err := parseReg(st.args[1])
	if err != nil {
		return 0, err
	}
	offset, err := a.controlOffset(st.args[2], st.addr, -4096, 4094)
	if err != nil {
		return 0, err
	}
	return insts.Encode(&insts.Instruction{
		Op: branchOps[st.mnem], Format: insts.FormatB,
		Rs1: rs1, Rs2: rs2, Offset: int32(offset),
	}), nil
}

func (a *Assembler) encodeUpper(st statement) (uint32, error) {
	if len(st.args) != 2 {
		return 0, ErrOperandCount
	}
	rd, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	imm20, err := a.immOperand(st.args[1], -(1 << 19), (1<<20)-1)
	if err != nil {
		return 0, err
	}
	op := insts.OpLUI
	if st.mnem == "auipc" {
		op = insts.OpAUIPC
	}
	return insts.Encode(&insts.Instruction{
		Op: op, Format: insts.FormatU,
		Rd: rd, Imm: int32(uint32(imm20) << 12),
	}), nil
}

func (a *Assembler) encodeJAL(st statement) (uint32, error) {
	if len(st.args) != 2 {
		return 0, ErrOperandCount
	}
	rd, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	offset, err := a.controlOffset(st.args[1], st.addr, -(1 << 20), (1<<20)-2)
	if err != nil {
		return 0, err
	}
	return insts.Encode(&insts.Instruction{
		Op: insts.OpJAL, Format: insts.FormatJ,
		Rd: rd, Offset: int32(offset),
	}), nil
}

// encodeJALR handles `jalr rd, off(rs1)`.
func (a *Assembler) encodeJALR(st statement) (uint32, error) {
	if len(st.args) != 2 {
		return 0, ErrOperandCount
	}
	rd, err := parseReg(st.args[0])
	if err != nil {
		return 0, err
	}
	off, rs1, err := a.memOperand(st.args[1])
	if err != nil {
		return 0, err
	}
	return insts.Encode(&insts.Instruction{
		Op: insts.OpJALR, Format: insts.FormatI,
		Rd: rd, Rs1: rs1, Imm: int32(off),
	}), nil
}

// controlOffset resolves a branch or jump target operand. A label resolves
// to (label address - instruction address); a numeric operand is already a
// PC-relative byte offset, so `jal x0, 0` assembles a self-jump.
func (a *Assembler) controlOffset(operand string, pc uint32, min, max int64) (int64, error) {
	var offset int64
	if target, ok := a.labels[operand]; ok {
		offset = int64(int32(target - pc))
	} else if isIdent(operand) {
		if _, isEqu := a.equates[operand]; !isEqu {
			return 0, ErrLabelMissing(operand)
		}
		offset = a.equates[operand]
	} else {
		var err error
		offset, err = a.operandValue(operand)
		if err != nil {
			return 0, err
		}
	}
	if offset < min || offset > max {
		return 0, ErrImmRange{Value: offset, Min: min, Max: max}
	}
	if offset%2 != 0 {
		return 0, ErrOddOffset
	}
	return offset, nil
}

// memOperand parses `off(reg)` where off may be empty, a number, an
// equate, or a $(...) expression.
func (a *Assembler) memOperand(s string) (int64, uint8, error) {
	open := strings.LastIndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return 0, 0, ErrBadImmediate(s)
	}
	rs1, err := parseReg(s[open+1 : len(s)-1])
	if err != nil {
		return 0, 0, err
	}
	offStr := strings.TrimSpace(s[:open])
	if offStr == "" {
		return 0, rs1, nil
	}
	off, err := a.immOperand(offStr, -2048, 2047)
	if err != nil {
		return 0, 0, err
	}
	return off, rs1, nil
}

// immOperand resolves an immediate operand and checks its range.
func (a *Assembler) immOperand(s string, min, max int64) (int64, error) {
	value, err := a.operandValue(s)
	if err != nil {
		return 0, err
	}
	if value < min || value > max {
		return 0, ErrImmRange{Value: value, Min: min, Max: max}
	}
	return value, nil
}

// operandValue resolves a numeric operand: a literal, an equate, a label
// address, or a $(...) expression.
func (a *Assembler) operandValue(s string) (int64, error) {
	if expr, ok := cutExpr(s); ok {
		return a.evalExpr(expr)
	}
	if v, ok := a.equates[s]; ok {
		return v, nil
	}
	if addr, ok := a.labels[s]; ok {
		return int64(addr), nil
	}
	return parseNumber(s)
}

// parseNumber accepts decimal and 0x hex literals with an optional sign.
func parseNumber(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 0, 64)
	if err != nil {
		return 0, ErrBadImmediate(s)
	}
	return v, nil
}

// cutExpr recognizes the $(expr) operand form.
func cutExpr(s string) (string, bool) {
	if strings.HasPrefix(s, "$(") && strings.HasSuffix(s, ")") {
		return s[2 : len(s)-1], true
	}
	return "", false
}
