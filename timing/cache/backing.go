package cache

import (
	"encoding/binary"

	"github.com/sarchlab/rvsim/emu"
)

// MemoryBacking adapts emu.Memory as a BackingStore. Transfers happen a
// word at a time since the emulator memory exposes only word access;
// addresses past the end of memory read as zero and drop writes, so the
// cache model never aborts a run the functional emulator allows.
type MemoryBacking struct {
	memory *emu.Memory
}

// NewMemoryBacking creates a BackingStore over the emulator memory.
func NewMemoryBacking(memory *emu.Memory) *MemoryBacking {
	return &MemoryBacking{memory: memory}
}

// Read fetches size bytes starting at the word-aligned addr.
func (m *MemoryBacking) Read(addr uint32, size int) []byte {
	data := make([]byte, size)
	for i := 0; i+4 <= size; i += 4 {
		word, err := m.memory.ReadWord(addr + uint32(i))
		if err != nil {
			continue
		}
		binary.LittleEndian.PutUint32(data[i:], word)
	}
	return data
}

// Write stores data starting at the word-aligned addr.
func (m *MemoryBacking) Write(addr uint32, data []byte) {
	for i := 0; i+4 <= len(data); i += 4 {
		word := binary.LittleEndian.Uint32(data[i:])
		_ = m.memory.WriteWord(addr+uint32(i), word)
	}
}
