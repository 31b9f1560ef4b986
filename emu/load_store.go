// Package emu provides functional RV32I emulation.
package emu

// LoadStoreUnit implements RV32I load and store operations.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// LW loads a word: rd = mem[rs1 + offset]. The effective address is
// returned for observers even when the access fails.
func (lsu *LoadStoreUnit) LW(rd, rs1 uint8, offset int32) (uint32, error) {
	addr := uint32(int32(lsu.regFile.ReadReg(rs1)) + offset)
	value, err := lsu.memory.ReadWord(addr)
	if err != nil {
		return addr, err
	}
	lsu.regFile.WriteReg(rd, value)
	return addr, nil
}

// SW stores a word: mem[rs1 + offset] = rs2. The effective address is
// returned for observers even when the access fails.
func (lsu *LoadStoreUnit) SW(rs2, rs1 uint8, offset int32) (uint32, error) {
	addr := uint32(int32(lsu.regFile.ReadReg(rs1)) + offset)
	if err := lsu.memory.WriteWord(addr, lsu.regFile.ReadReg(rs2)); err != nil {
		return addr, err
	}
	return addr, nil
}
