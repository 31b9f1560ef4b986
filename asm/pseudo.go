package asm

import (
	"fmt"
	"strconv"
)

// expansion is one concrete instruction produced from a source statement.
type expansion struct {
	mnem string
	args []string
}

// baseMnemonics are the instructions that encode directly, one word each.
var baseMnemonics = map[string]bool{
	"add": true, "sub": true, "and": true, "or": true, "xor": true,
	"sll": true, "srl": true, "sra": true,
	"addi": true, "andi": true, "ori": true, "xori": true,
	"slli": true, "srli": true, "srai": true,
	"lw": true, "sw": true,
	"beq": true, "bne": true, "blt": true, "bge": true,
	"lui": true, "auipc": true, "jal": true, "jalr": true,
	".word": true,
}

// expand rewrites pseudo-instructions into base instructions during pass
// one, so that every statement occupies exactly one word and label
// addresses stay exact.
func (a *Assembler) expand(mnem string, args []string) ([]expansion, error) {
	if baseMnemonics[mnem] {
		return []expansion{{mnem: mnem, args: args}}, nil
	}

	switch mnem {
	case "nop":
		if len(args) != 0 {
			return nil, ErrOperandCount
		}
		return []expansion{{mnem: "addi", args: []string{"x0", "x0", "0"}}}, nil

	case "mv":
		if len(args) != 2 {
			return nil, ErrOperandCount
		}
		return []expansion{{mnem: "addi", args: []string{args[0], args[1], "0"}}}, nil

	case "li":
		return a.expandLI(args)

	case "j":
		if len(args) != 1 {
			return nil, ErrOperandCount
		}
		return []expansion{{mnem: "jal", args: []string{"x0", args[0]}}}, nil

	case "ret":
		if len(args) != 0 {
			return nil, ErrOperandCount
		}
		return []expansion{{mnem: "jalr", args: []string{"x0", "0(x1)"}}}, nil

	case "beqz":
		if len(args) != 2 {
			return nil, ErrOperandCount
		}
		return []expansion{{mnem: "beq", args: []string{args[0], "x0", args[1]}}}, nil

	case "bnez":
		if len(args) != 2 {
			return nil, ErrOperandCount
		}
		return []expansion{{mnem: "bne", args: []string{args[0], "x0", args[1]}}}, nil
	}

	return nil, ErrUnknownMnemonic(mnem)
}

// expandLI expands `li rd, imm` to one ADDI when the value fits 12 signed
// bits, otherwise to a LUI/ADDI pair. The immediate must be resolvable in
// pass one (a literal, a previously defined equate, or an expression over
// them); labels are not usable here because their addresses are still
// being assigned.
func (a *Assembler) expandLI(args []string) ([]expansion, error) {
	if len(args) != 2 {
		return nil, ErrOperandCount
	}
	value, err := a.operandValue(args[1])
	if err != nil {
		return nil, err
	}
	if value < -(1<<31) || value > (1<<32)-1 {
		return nil, ErrImmRange{Value: value, Min: -(1 << 31), Max: (1 << 32) - 1}
	}
	v := int32(value)

	if v >= -2048 && v <= 2047 {
		return []expansion{
			{mnem: "addi", args: []string{args[0], "x0", itoa(v)}},
		}, nil
	}

	// The ADDI sign-extends its low 12 bits, so round the upper part up
	// when bit 11 of the value is set.
	hi := (uint32(v) + 0x800) >> 12
	lo := v - int32(hi<<12)
	return []expansion{
		{mnem: "lui", args: []string{args[0], fmt.Sprintf("0x%X", hi)}},
		{mnem: "addi", args: []string{args[0], args[0], itoa(lo)}},
	}, nil
}

func itoa(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
