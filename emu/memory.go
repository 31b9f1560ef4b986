// Package emu provides functional RV32I emulation.
package emu

import (
	"encoding/binary"
	"fmt"
)

// MemorySize is the default size of the flat memory, in bytes.
const MemorySize = 1 << 20 // 1 MiB

// MemoryError describes an invalid memory access.
type MemoryError struct {
	// Addr is the faulting address.
	Addr uint32

	// Misaligned is true when the address is not word-aligned. Otherwise
	// the access fell outside the memory bounds.
	Misaligned bool
}

func (e *MemoryError) Error() string {
	if e.Misaligned {
		return fmt.Sprintf("misaligned word access at 0x%08X", e.Addr)
	}
	return fmt.Sprintf("memory access out of bounds at 0x%08X", e.Addr)
}

// Memory is a flat little-endian byte store with word-granular access.
type Memory struct {
	data []byte
}

// NewMemory creates a memory of the default size.
func NewMemory() *Memory {
	return NewMemorySized(MemorySize)
}

// NewMemorySized creates a memory of the given size in bytes.
func NewMemorySized(size uint32) *Memory {
	return &Memory{data: make([]byte, size)}
}

// Size returns the memory size in bytes.
func (m *Memory) Size() uint32 {
	return uint32(len(m.data))
}

// check validates a word access at addr.
func (m *Memory) check(addr uint32) error {
	if addr%4 != 0 {
		return &MemoryError{Addr: addr, Misaligned: true}
	}
	if uint64(addr)+4 > uint64(len(m.data)) {
		return &MemoryError{Addr: addr}
	}
	return nil
}

// ReadWord reads the little-endian word at addr. The address must be
// word-aligned and in bounds.
func (m *Memory) ReadWord(addr uint32) (uint32, error) {
	if err := m.check(addr); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[addr : addr+4]), nil
}

// WriteWord writes a little-endian word at addr. The address must be
// word-aligned and in bounds.
func (m *Memory) WriteWord(addr, value uint32) error {
	if err := m.check(addr); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[addr:addr+4], value)
	return nil
}

// LoadBytes copies data into memory starting at base. It is used for
// program loading and fails if the data does not fit.
func (m *Memory) LoadBytes(base uint32, data []byte) error {
	if uint64(base)+uint64(len(data)) > uint64(len(m.data)) {
		return &MemoryError{Addr: base}
	}
	copy(m.data[base:], data)
	return nil
}
