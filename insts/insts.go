// Package insts provides RV32I instruction definitions, decoding, and
// encoding.
//
// This package implements decoding of RV32I machine code into structured
// instruction representations, the inverse encoding used by the assembler,
// and rendering back to mnemonic form. It supports:
//   - Register ALU: ADD, SUB, AND, OR, XOR, SLL, SRL, SRA
//   - Immediate ALU: ADDI, ANDI, ORI, XORI, SLLI, SRLI, SRAI
//   - Memory: LW, SW
//   - Control flow: BEQ, BNE, BLT, BGE, JAL, JALR
//   - Upper immediates: LUI, AUIPC
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0x02A10093) // ADDI x1, x2, 42
//	if err == nil {
//		fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Imm: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Imm)
//	}
package insts

import "fmt"

// Op represents an RV32I opcode.
type Op uint16

// RV32I opcodes.
const (
	OpUnknown Op = iota
	OpADD
	OpSUB
	OpAND
	OpOR
	OpXOR
	OpSLL
	OpSRL
	OpSRA
	OpADDI
	OpANDI
	OpORI
	OpXORI
	OpSLLI
	OpSRLI
	OpSRAI
	OpLW
	OpSW
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
)

var opNames = map[Op]string{
	OpADD:   "add",
	OpSUB:   "sub",
	OpAND:   "and",
	OpOR:    "or",
	OpXOR:   "xor",
	OpSLL:   "sll",
	OpSRL:   "srl",
	OpSRA:   "sra",
	OpADDI:  "addi",
	OpANDI:  "andi",
	OpORI:   "ori",
	OpXORI:  "xori",
	OpSLLI:  "slli",
	OpSRLI:  "srli",
	OpSRAI:  "srai",
	OpLW:    "lw",
	OpSW:    "sw",
	OpBEQ:   "beq",
	OpBNE:   "bne",
	OpBLT:   "blt",
	OpBGE:   "bge",
	OpLUI:   "lui",
	OpAUIPC: "auipc",
	OpJAL:   "jal",
	OpJALR:  "jalr",
}

// String returns the assembly mnemonic for the opcode.
func (o Op) String() string {
	if name, ok := opNames[o]; ok {
		return name
	}
	return "unknown"
}

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR             // Register-register ALU
	FormatI             // Immediate ALU, shifts, LW, JALR
	FormatS             // Store
	FormatB             // Conditional branch
	FormatU             // Upper immediate (LUI, AUIPC)
	FormatJ             // JAL
)

// Instruction represents a decoded RV32I instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Encoding format

	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register

	// Imm is the sign-extended immediate for I and S formats. For U format
	// it holds the full upper-immediate value (imm20 << 12).
	Imm int32

	// Offset is the signed PC-relative byte offset for B and J formats.
	Offset int32

	// Shamt is the 5-bit shift amount for SLLI, SRLI, and SRAI.
	Shamt uint8
}

// String renders the instruction in assembly syntax.
func (i *Instruction) String() string {
	switch i.Format {
	case FormatR:
		return fmt.Sprintf("%v x%d, x%d, x%d", i.Op, i.Rd, i.Rs1, i.Rs2)
	case FormatI:
		switch i.Op {
		case OpSLLI, OpSRLI, OpSRAI:
			return fmt.Sprintf("%v x%d, x%d, %d", i.Op, i.Rd, i.Rs1, i.Shamt)
		case OpLW:
			return fmt.Sprintf("%v x%d, %d(x%d)", i.Op, i.Rd, i.Imm, i.Rs1)
		case OpJALR:
			return fmt.Sprintf("%v x%d, %d(x%d)", i.Op, i.Rd, i.Imm, i.Rs1)
		default:
			return fmt.Sprintf("%v x%d, x%d, %d", i.Op, i.Rd, i.Rs1, i.Imm)
		}
	case FormatS:
		return fmt.Sprintf("%v x%d, %d(x%d)", i.Op, i.Rs2, i.Imm, i.Rs1)
	case FormatB:
		return fmt.Sprintf("%v x%d, x%d, %d", i.Op, i.Rs1, i.Rs2, i.Offset)
	case FormatU:
		return fmt.Sprintf("%v x%d, 0x%x", i.Op, i.Rd, uint32(i.Imm)>>12)
	case FormatJ:
		return fmt.Sprintf("%v x%d, %d", i.Op, i.Rd, i.Offset)
	default:
		return "unknown"
	}
}
