// Package emu provides functional RV32I emulation.
package emu

// BranchUnit implements RV32I control-flow operations.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// branch moves the PC to PC + offset when taken, otherwise to the next
// instruction.
func (b *BranchUnit) branch(taken bool, offset int32) {
	if taken {
		b.regFile.PC = uint32(int32(b.regFile.PC) + offset)
	} else {
		b.regFile.PC += 4
	}
}

// BEQ branches to PC + offset if rs1 == rs2. Returns whether the branch
// was taken.
func (b *BranchUnit) BEQ(rs1, rs2 uint8, offset int32) bool {
	taken := b.regFile.ReadReg(rs1) == b.regFile.ReadReg(rs2)
	b.branch(taken, offset)
	return taken
}

// BNE branches to PC + offset if rs1 != rs2. Returns whether the branch
// was taken.
func (b *BranchUnit) BNE(rs1, rs2 uint8, offset int32) bool {
	taken := b.regFile.ReadReg(rs1) != b.regFile.ReadReg(rs2)
	b.branch(taken, offset)
	return taken
}

// BLT branches to PC + offset if rs1 < rs2, comparing as signed values.
// Returns whether the branch was taken.
func (b *BranchUnit) BLT(rs1, rs2 uint8, offset int32) bool {
	taken := int32(b.regFile.ReadReg(rs1)) < int32(b.regFile.ReadReg(rs2))
	b.branch(taken, offset)
	return taken
}

// BGE branches to PC + offset if rs1 >= rs2, comparing as signed values.
// Returns whether the branch was taken.
func (b *BranchUnit) BGE(rs1, rs2 uint8, offset int32) bool {
	taken := int32(b.regFile.ReadReg(rs1)) >= int32(b.regFile.ReadReg(rs2))
	b.branch(taken, offset)
	return taken
}

// JAL saves PC + 4 to rd and jumps to PC + offset. Returns the jump
// target.
func (b *BranchUnit) JAL(rd uint8, offset int32) uint32 {
	target := uint32(int32(b.regFile.PC) + offset)
	b.regFile.WriteReg(rd, b.regFile.PC+4)
	b.regFile.PC = target
	return target
}

// JALR saves PC + 4 to rd and jumps to (rs1 + offset) with bit 0 cleared.
// Returns the jump target. The source register is read before the link
// write so rd == rs1 behaves correctly.
func (b *BranchUnit) JALR(rd, rs1 uint8, offset int32) uint32 {
	target := uint32(int32(b.regFile.ReadReg(rs1))+offset) &^ 1
	b.regFile.WriteReg(rd, b.regFile.PC+4)
	b.regFile.PC = target
	return target
}
