// Package insts provides RV32I instruction definitions, decoding, and
// encoding.
package insts

// Encode produces the 32-bit machine word for an instruction. It is the
// inverse of Decode: immediates are truncated to their field widths, so
// callers validate ranges first. Unknown operations encode to zero, which
// does not decode.
func Encode(inst *Instruction) uint32 {
	switch inst.Op {
	case OpADD:
		return encodeR(0x00, inst.Rs2, inst.Rs1, 0x0, inst.Rd)
	case OpSUB:
		return encodeR(0x20, inst.Rs2, inst.Rs1, 0x0, inst.Rd)
	case OpSLL:
		return encodeR(0x00, inst.Rs2, inst.Rs1, 0x1, inst.Rd)
	case OpXOR:
		return encodeR(0x00, inst.Rs2, inst.Rs1, 0x4, inst.Rd)
	case OpSRL:
		return encodeR(0x00, inst.Rs2, inst.Rs1, 0x5, inst.Rd)
	case OpSRA:
		return encodeR(0x20, inst.Rs2, inst.Rs1, 0x5, inst.Rd)
	case OpOR:
		return encodeR(0x00, inst.Rs2, inst.Rs1, 0x6, inst.Rd)
	case OpAND:
		return encodeR(0x00, inst.Rs2, inst.Rs1, 0x7, inst.Rd)
	case OpADDI:
		return encodeI(inst.Imm, inst.Rs1, 0x0, inst.Rd, opcodeOPImm)
	case OpXORI:
		return encodeI(inst.Imm, inst.Rs1, 0x4, inst.Rd, opcodeOPImm)
	case OpORI:
		return encodeI(inst.Imm, inst.Rs1, 0x6, inst.Rd, opcodeOPImm)
	case OpANDI:
		return encodeI(inst.Imm, inst.Rs1, 0x7, inst.Rd, opcodeOPImm)
	case OpSLLI:
		return encodeShift(0x00, inst.Shamt, inst.Rs1, 0x1, inst.Rd)
	case OpSRLI:
		return encodeShift(0x00, inst.Shamt, inst.Rs1, 0x5, inst.Rd)
	case OpSRAI:
		return encodeShift(0x20, inst.Shamt, inst.Rs1, 0x5, inst.Rd)
	case OpLW:
		return encodeI(inst.Imm, inst.Rs1, 0x2, inst.Rd, opcodeLoad)
	case OpJALR:
		return encodeI(inst.Imm, inst.Rs1, 0x0, inst.Rd, opcodeJALR)
	case OpSW:
		return encodeS(inst.Imm, inst.Rs2, inst.Rs1, 0x2)
	case OpBEQ:
		return encodeB(inst.Offset, inst.Rs2, inst.Rs1, 0x0)
	case OpBNE:
		return encodeB(inst.Offset, inst.Rs2, inst.Rs1, 0x1)
	case OpBLT:
		return encodeB(inst.Offset, inst.Rs2, inst.Rs1, 0x4)
	case OpBGE:
		return encodeB(inst.Offset, inst.Rs2, inst.Rs1, 0x5)
	case OpLUI:
		return encodeU(inst.Imm, inst.Rd, opcodeLUI)
	case OpAUIPC:
		return encodeU(inst.Imm, inst.Rd, opcodeAUIPC)
	case OpJAL:
		return encodeJ(inst.Offset, inst.Rd)
	default:
		return 0
	}
}

// encodeR builds: funct7 | rs2 | rs1 | funct3 | rd | 0110011
func encodeR(funct7 uint32, rs2, rs1 uint8, funct3 uint32, rd uint8) uint32 {
	return funct7<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		uint32(rd&0x1F)<<7 |
		opcodeOP
}

// encodeI builds: imm[11:0] | rs1 | funct3 | rd | opcode
func encodeI(imm int32, rs1 uint8, funct3 uint32, rd uint8, opcode uint32) uint32 {
	return (uint32(imm)&0xFFF)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		uint32(rd&0x1F)<<7 |
		opcode
}

// encodeShift builds: funct7 | shamt | rs1 | funct3 | rd | 0010011
func encodeShift(funct7 uint32, shamt, rs1 uint8, funct3 uint32, rd uint8) uint32 {
	return funct7<<25 |
		uint32(shamt&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		uint32(rd&0x1F)<<7 |
		opcodeOPImm
}

// encodeS builds: imm[11:5] | rs2 | rs1 | funct3 | imm[4:0] | 0100011
func encodeS(imm int32, rs2, rs1 uint8, funct3 uint32) uint32 {
	uimm := uint32(imm)
	return (uimm>>5&0x7F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		(uimm&0x1F)<<7 |
		opcodeStore
}

// encodeB builds: imm[12] | imm[10:5] | rs2 | rs1 | funct3 | imm[4:1] | imm[11] | 1100011
func encodeB(offset int32, rs2, rs1 uint8, funct3 uint32) uint32 {
	uimm := uint32(offset)
	return (uimm>>12&0x1)<<31 |
		(uimm>>5&0x3F)<<25 |
		uint32(rs2&0x1F)<<20 |
		uint32(rs1&0x1F)<<15 |
		funct3<<12 |
		(uimm>>1&0xF)<<8 |
		(uimm>>11&0x1)<<7 |
		opcodeBranch
}

// encodeU builds: imm[31:12] | rd | opcode
func encodeU(imm int32, rd uint8, opcode uint32) uint32 {
	return uint32(imm)&0xFFFFF000 |
		uint32(rd&0x1F)<<7 |
		opcode
}

// encodeJ builds: imm[20] | imm[10:1] | imm[11] | imm[19:12] | rd | 1101111
func encodeJ(offset int32, rd uint8) uint32 {
	uimm := uint32(offset)
	return (uimm>>20&0x1)<<31 |
		(uimm>>1&0x3FF)<<21 |
		(uimm>>11&0x1)<<20 |
		(uimm>>12&0xFF)<<12 |
		uint32(rd&0x1F)<<7 |
		opcodeJAL
}
