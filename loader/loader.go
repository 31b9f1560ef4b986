// Package loader reads RV32I programs for the emulator. It accepts raw
// little-endian word images and assembly source, which it assembles on the
// fly.
package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/rvsim/asm"
)

// Program is a binary image ready for emu.LoadProgram.
type Program struct {
	// Code is the little-endian word image.
	Code []byte

	// Base is the load address; the entry point is the first word.
	Base uint32

	// Labels maps label names to addresses for programs built from
	// source. It is nil for raw images.
	Labels map[string]uint32
}

// Load reads a program file. Files ending in .s or .asm are assembled;
// anything else is treated as a raw word image.
func Load(path string, base uint32) (*Program, error) {
	switch filepath.Ext(path) {
	case ".s", ".asm":
		return LoadSource(path, base)
	default:
		return LoadRaw(path, base)
	}
}

// LoadRaw reads a prebuilt little-endian word image.
func LoadRaw(path string, base uint32) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("program %s: size %d is not a whole number of words", path, len(data))
	}
	return &Program{Code: data, Base: base}, nil
}

// LoadSource assembles an assembly source file.
func LoadSource(path string, base uint32) (*Program, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	assembler := asm.NewAssembler(base)
	code, err := assembler.Assemble(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Program{
		Code:   code,
		Base:   base,
		Labels: assembler.Labels(),
	}, nil
}
