package asm

import (
	"strconv"
	"strings"
)

// abiNames maps RISC-V ABI register aliases to register indices.
var abiNames = map[string]uint8{
	"zero": 0, "ra": 1, "sp": 2, "gp": 3, "tp": 4,
	"t0": 5, "t1": 6, "t2": 7,
	"s0": 8, "fp": 8, "s1": 9,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13,
	"a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"s8": 24, "s9": 25, "s10": 26, "s11": 27,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// parseReg resolves a register operand: x0-x31 or an ABI alias.
func parseReg(s string) (uint8, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if idx, ok := abiNames[s]; ok {
		return idx, nil
	}
	if rest, ok := strings.CutPrefix(s, "x"); ok {
		n, err := strconv.ParseUint(rest, 10, 8)
		if err == nil && n < 32 {
			return uint8(n), nil
		}
	}
	return 0, ErrBadRegister(s)
}

// regNames holds the canonical ABI name per register index. s0 wins over
// its fp alias.
var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegName returns the canonical ABI name for a register index, used by
// the debugger when rendering register dumps.
func RegName(idx uint8) string {
	if idx < 32 {
		return regNames[idx]
	}
	return "x" + strconv.Itoa(int(idx))
}

// ParseReg resolves a register name for callers outside the assembler,
// such as the debugger command surface.
func ParseReg(s string) (uint8, error) {
	return parseReg(s)
}
