// Package emu provides functional RV32I emulation.
package emu

// ALU implements RV32I arithmetic and logic operations. All operations are
// 32-bit two's complement with silent wraparound on overflow.
type ALU struct {
	regFile *RegFile
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile) *ALU {
	return &ALU{regFile: regFile}
}

// ADD performs rd = rs1 + rs2.
func (a *ALU) ADD(rd, rs1, rs2 uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)+a.regFile.ReadReg(rs2))
}

// SUB performs rd = rs1 - rs2.
func (a *ALU) SUB(rd, rs1, rs2 uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)-a.regFile.ReadReg(rs2))
}

// AND performs rd = rs1 & rs2.
func (a *ALU) AND(rd, rs1, rs2 uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)&a.regFile.ReadReg(rs2))
}

// OR performs rd = rs1 | rs2.
func (a *ALU) OR(rd, rs1, rs2 uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)|a.regFile.ReadReg(rs2))
}

// XOR performs rd = rs1 ^ rs2.
func (a *ALU) XOR(rd, rs1, rs2 uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)^a.regFile.ReadReg(rs2))
}

// SLL performs rd = rs1 << (rs2 & 0x1F).
func (a *ALU) SLL(rd, rs1, rs2 uint8) {
	shift := a.regFile.ReadReg(rs2) & 0x1F
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)<<shift)
}

// SRL performs a logical right shift: rd = rs1 >> (rs2 & 0x1F).
func (a *ALU) SRL(rd, rs1, rs2 uint8) {
	shift := a.regFile.ReadReg(rs2) & 0x1F
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)>>shift)
}

// SRA performs an arithmetic right shift: rd = rs1 >> (rs2 & 0x1F) with
// sign replication.
func (a *ALU) SRA(rd, rs1, rs2 uint8) {
	shift := a.regFile.ReadReg(rs2) & 0x1F
	a.regFile.WriteReg(rd, uint32(int32(a.regFile.ReadReg(rs1))>>shift))
}

// ADDI performs rd = rs1 + imm.
func (a *ALU) ADDI(rd, rs1 uint8, imm int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)+uint32(imm))
}

// ANDI performs rd = rs1 & imm.
func (a *ALU) ANDI(rd, rs1 uint8, imm int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)&uint32(imm))
}

// ORI performs rd = rs1 | imm.
func (a *ALU) ORI(rd, rs1 uint8, imm int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)|uint32(imm))
}

// XORI performs rd = rs1 ^ imm.
func (a *ALU) XORI(rd, rs1 uint8, imm int32) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)^uint32(imm))
}

// SLLI performs rd = rs1 << shamt.
func (a *ALU) SLLI(rd, rs1, shamt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)<<(shamt&0x1F))
}

// SRLI performs a logical right shift: rd = rs1 >> shamt.
func (a *ALU) SRLI(rd, rs1, shamt uint8) {
	a.regFile.WriteReg(rd, a.regFile.ReadReg(rs1)>>(shamt&0x1F))
}

// SRAI performs an arithmetic right shift: rd = rs1 >> shamt with sign
// replication.
func (a *ALU) SRAI(rd, rs1, shamt uint8) {
	a.regFile.WriteReg(rd, uint32(int32(a.regFile.ReadReg(rs1))>>(shamt&0x1F)))
}

// LUI places the upper immediate in rd: rd = imm (imm already shifted into
// bits 31..12).
func (a *ALU) LUI(rd uint8, imm int32) {
	a.regFile.WriteReg(rd, uint32(imm))
}

// AUIPC adds the upper immediate to the PC: rd = PC + imm.
func (a *ALU) AUIPC(rd uint8, imm int32) {
	a.regFile.WriteReg(rd, a.regFile.PC+uint32(imm))
}
