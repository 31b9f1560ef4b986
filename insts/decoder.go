// Package insts provides RV32I instruction definitions, decoding, and
// encoding.
package insts

import "fmt"

// Primary opcode values (bits [6:0] of the instruction word).
const (
	opcodeOP     = 0x33 // register-register ALU
	opcodeOPImm  = 0x13 // immediate ALU and shifts
	opcodeLoad   = 0x03 // LW
	opcodeStore  = 0x23 // SW
	opcodeBranch = 0x63 // BEQ, BNE, BLT, BGE
	opcodeLUI    = 0x37
	opcodeAUIPC  = 0x17
	opcodeJAL    = 0x6F
	opcodeJALR   = 0x67
)

// DecodeError describes a word that does not decode to a supported
// instruction.
type DecodeError struct {
	// Word is the raw instruction word that failed to decode.
	Word uint32
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unsupported instruction word 0x%08X", e.Word)
}

// Decoder decodes RV32I machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new RV32I instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit RV32I instruction word. Words outside the
// supported subset return a *DecodeError carrying the raw word.
func (d *Decoder) Decode(word uint32) (*Instruction, error) {
	inst := &Instruction{Op: OpUnknown, Format: FormatUnknown}

	opcode := word & 0x7F // bits [6:0]

	var ok bool
	switch opcode {
	case opcodeOP:
		ok = d.decodeR(word, inst)
	case opcodeOPImm:
		ok = d.decodeIALU(word, inst)
	case opcodeLoad:
		ok = d.decodeLoad(word, inst)
	case opcodeStore:
		ok = d.decodeStore(word, inst)
	case opcodeBranch:
		ok = d.decodeBranch(word, inst)
	case opcodeLUI, opcodeAUIPC:
		ok = d.decodeUpper(word, inst)
	case opcodeJAL:
		ok = d.decodeJAL(word, inst)
	case opcodeJALR:
		ok = d.decodeJALR(word, inst)
	}

	if !ok {
		return nil, &DecodeError{Word: word}
	}
	return inst, nil
}

// rd extracts the destination register field, bits [11:7].
func rd(word uint32) uint8 {
	return uint8((word >> 7) & 0x1F)
}

// rs1 extracts the first source register field, bits [19:15].
func rs1(word uint32) uint8 {
	return uint8((word >> 15) & 0x1F)
}

// rs2 extracts the second source register field, bits [24:20].
func rs2(word uint32) uint8 {
	return uint8((word >> 20) & 0x1F)
}

// funct3 extracts bits [14:12].
func funct3(word uint32) uint32 {
	return (word >> 12) & 0x7
}

// funct7 extracts bits [31:25].
func funct7(word uint32) uint32 {
	return (word >> 25) & 0x7F
}

// immI extracts the I-format immediate, bits [31:20] sign-extended.
func immI(word uint32) int32 {
	return int32(word) >> 20
}

// immS extracts the S-format immediate from bits [31:25] and [11:7],
// sign-extended.
func immS(word uint32) int32 {
	return (int32(word)>>25)<<5 | int32((word>>7)&0x1F)
}

// immB extracts the B-format immediate: bit 31 is imm[12], bit 7 is
// imm[11], bits [30:25] are imm[10:5], bits [11:8] are imm[4:1]. Bit 0 is
// implicit zero. Sign-extended.
func immB(word uint32) int32 {
	return (int32(word)>>31)<<12 |
		int32((word>>7)&0x1)<<11 |
		int32((word>>25)&0x3F)<<5 |
		int32((word>>8)&0xF)<<1
}

// immU extracts the U-format immediate, bits [31:12] with the low 12 bits
// zero.
func immU(word uint32) int32 {
	return int32(word & 0xFFFFF000)
}

// immJ extracts the J-format immediate: bit 31 is imm[20], bits [19:12]
// are imm[19:12], bit 20 is imm[11], bits [30:21] are imm[10:1]. Bit 0 is
// implicit zero. Sign-extended.
func immJ(word uint32) int32 {
	return (int32(word)>>31)<<20 |
		int32((word>>12)&0xFF)<<12 |
		int32((word>>20)&0x1)<<11 |
		int32((word>>21)&0x3FF)<<1
}

// decodeR decodes register-register ALU instructions.
// Format: funct7 | rs2 | rs1 | funct3 | rd | 0110011
func (d *Decoder) decodeR(word uint32, inst *Instruction) bool {
	inst.Format = FormatR
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)

	switch {
	case funct3(word) == 0x0 && funct7(word) == 0x00:
		inst.Op = OpADD
	case funct3(word) == 0x0 && funct7(word) == 0x20:
		inst.Op = OpSUB
	case funct3(word) == 0x1 && funct7(word) == 0x00:
		inst.Op = OpSLL
	case funct3(word) == 0x4 && funct7(word) == 0x00:
		inst.Op = OpXOR
	case funct3(word) == 0x5 && funct7(word) == 0x00:
		inst.Op = OpSRL
	case funct3(word) == 0x5 && funct7(word) == 0x20:
		inst.Op = OpSRA
	case funct3(word) == 0x6 && funct7(word) == 0x00:
		inst.Op = OpOR
	case funct3(word) == 0x7 && funct7(word) == 0x00:
		inst.Op = OpAND
	default:
		return false
	}
	return true
}

// decodeIALU decodes immediate ALU and shift instructions.
// Format: imm[11:0] | rs1 | funct3 | rd | 0010011
func (d *Decoder) decodeIALU(word uint32, inst *Instruction) bool {
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)

	switch funct3(word) {
	case 0x0:
		inst.Op = OpADDI
		inst.Imm = immI(word)
	case 0x1:
		// Shift amount is rs2 position; upper bits must be zero.
		if funct7(word) != 0x00 {
			return false
		}
		inst.Op = OpSLLI
		inst.Shamt = rs2(word)
	case 0x4:
		inst.Op = OpXORI
		inst.Imm = immI(word)
	case 0x5:
		switch funct7(word) {
		case 0x00:
			inst.Op = OpSRLI
		case 0x20:
			inst.Op = OpSRAI
		default:
			return false
		}
		inst.Shamt = rs2(word)
	case 0x6:
		inst.Op = OpORI
		inst.Imm = immI(word)
	case 0x7:
		inst.Op = OpANDI
		inst.Imm = immI(word)
	default:
		return false
	}
	return true
}

// decodeLoad decodes LW.
// Format: imm[11:0] | rs1 | 010 | rd | 0000011
func (d *Decoder) decodeLoad(word uint32, inst *Instruction) bool {
	if funct3(word) != 0x2 {
		return false
	}
	inst.Op = OpLW
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)
	return true
}

// decodeStore decodes SW.
// Format: imm[11:5] | rs2 | rs1 | 010 | imm[4:0] | 0100011
func (d *Decoder) decodeStore(word uint32, inst *Instruction) bool {
	if funct3(word) != 0x2 {
		return false
	}
	inst.Op = OpSW
	inst.Format = FormatS
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Imm = immS(word)
	return true
}

// decodeBranch decodes conditional branches.
// Format: imm[12|10:5] | rs2 | rs1 | funct3 | imm[4:1|11] | 1100011
func (d *Decoder) decodeBranch(word uint32, inst *Instruction) bool {
	switch funct3(word) {
	case 0x0:
		inst.Op = OpBEQ
	case 0x1:
		inst.Op = OpBNE
	case 0x4:
		inst.Op = OpBLT
	case 0x5:
		inst.Op = OpBGE
	default:
		return false
	}
	inst.Format = FormatB
	inst.Rs1 = rs1(word)
	inst.Rs2 = rs2(word)
	inst.Offset = immB(word)
	return true
}

// decodeUpper decodes LUI and AUIPC.
// Format: imm[31:12] | rd | opcode
func (d *Decoder) decodeUpper(word uint32, inst *Instruction) bool {
	if word&0x7F == opcodeLUI {
		inst.Op = OpLUI
	} else {
		inst.Op = OpAUIPC
	}
	inst.Format = FormatU
	inst.Rd = rd(word)
	inst.Imm = immU(word)
	return true
}

// decodeJAL decodes JAL.
// Format: imm[20|10:1|11|19:12] | rd | 1101111
func (d *Decoder) decodeJAL(word uint32, inst *Instruction) bool {
	inst.Op = OpJAL
	inst.Format = FormatJ
	inst.Rd = rd(word)
	inst.Offset = immJ(word)
	return true
}

// decodeJALR decodes JALR.
// Format: imm[11:0] | rs1 | 000 | rd | 1100111
func (d *Decoder) decodeJALR(word uint32, inst *Instruction) bool {
	if funct3(word) != 0x0 {
		return false
	}
	inst.Op = OpJALR
	inst.Format = FormatI
	inst.Rd = rd(word)
	inst.Rs1 = rs1(word)
	inst.Imm = immI(word)
	return true
}
