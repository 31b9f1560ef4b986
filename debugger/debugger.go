// Package debugger provides stepped execution with breakpoints and
// read-only inspection on top of the emulator.
//
// Every command returns a structured result or an error; rendering is left
// to the front-end. A failed command never mutates emulator state, so the
// session always continues past it.
package debugger

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sarchlab/rvsim/asm"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// Causes recovered at the command boundary.
var (
	ErrBadAddress     = errors.New("address must be word-aligned and in bounds")
	ErrBadCount       = errors.New("count must be positive")
	ErrNoBreakpoint   = errors.New("no breakpoint at address")
	ErrUnknownRegName = errors.New("unknown register name")
)

// CommandError tags a failed debugger command with its name. The session
// is unaffected; only the offending command fails.
type CommandError struct {
	Cmd string
	Err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Cmd, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// RegValue is one entry of a register dump.
type RegValue struct {
	Name  string
	Index uint8
	Value uint32
}

// DisLine is one line of disassembly output.
type DisLine struct {
	Addr uint32
	Word uint32
	Text string
	// Current marks the line the PC points at.
	Current bool
}

// Debugger wraps one emulator session with breakpoints and inspection.
type Debugger struct {
	emulator    *emu.Emulator
	decoder     *insts.Decoder
	breakpoints map[uint32]struct{}
}

// New creates a debugger around an emulator session.
func New(emulator *emu.Emulator) *Debugger {
	return &Debugger{
		emulator:    emulator,
		decoder:     insts.NewDecoder(),
		breakpoints: map[uint32]struct{}{},
	}
}

// Emulator returns the wrapped session.
func (d *Debugger) Emulator() *emu.Emulator {
	return d.emulator
}

// PC returns the current program counter.
func (d *Debugger) PC() uint32 {
	return d.emulator.RegFile().PC
}

// AddBreakpoint registers a pause address. Execution stops before the
// instruction at that address runs.
func (d *Debugger) AddBreakpoint(addr uint32) error {
	if addr%4 != 0 {
		return &CommandError{Cmd: "break", Err: ErrBadAddress}
	}
	d.breakpoints[addr] = struct{}{}
	return nil
}

// RemoveBreakpoint clears a previously set breakpoint.
func (d *Debugger) RemoveBreakpoint(addr uint32) error {
	if _, ok := d.breakpoints[addr]; !ok {
		return &CommandError{Cmd: "delete", Err: ErrNoBreakpoint}
	}
	delete(d.breakpoints, addr)
	return nil
}

// Breakpoints lists the breakpoint addresses in ascending order.
func (d *Debugger) Breakpoints() []uint32 {
	addrs := make([]uint32, 0, len(d.breakpoints))
	for addr := range d.breakpoints {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// Step executes exactly one instruction.
func (d *Debugger) Step() emu.StepResult {
	return d.emulator.Step()
}

// Continue steps until the PC lands on a breakpoint, the program halts, or
// an error occurs. The instruction under a breakpoint the session is
// currently stopped at executes first, so Continue always makes progress.
func (d *Debugger) Continue() emu.StepResult {
	for {
		result := d.emulator.Step()
		if result.Halted || result.Err != nil {
			return result
		}
		if _, ok := d.breakpoints[d.emulator.RegFile().PC]; ok {
			return result
		}
	}
}

// Registers dumps all 32 general-purpose registers.
func (d *Debugger) Registers() []RegValue {
	regFile := d.emulator.RegFile()
	dump := make([]RegValue, 32)
	for i := uint8(0); i < 32; i++ {
		dump[i] = RegValue{
			Name:  asm.RegName(i),
			Index: i,
			Value: regFile.ReadReg(i),
		}
	}
	return dump
}

// Register reads one register by name: x0-x31, an ABI alias, or "pc".
func (d *Debugger) Register(name string) (uint32, error) {
	if strings.EqualFold(name, "pc") {
		return d.emulator.RegFile().PC, nil
	}
	idx, err := asm.ParseReg(name)
	if err != nil {
		return 0, &CommandError{Cmd: "reg", Err: ErrUnknownRegName}
	}
	return d.emulator.RegFile().ReadReg(idx), nil
}

// ReadMemory reads count words starting at addr without mutating state.
func (d *Debugger) ReadMemory(addr uint32, count int) ([]uint32, error) {
	if count <= 0 {
		return nil, &CommandError{Cmd: "mem", Err: ErrBadCount}
	}
	words := make([]uint32, 0, count)
	for i := 0; i < count; i++ {
		word, err := d.emulator.Memory().ReadWord(addr + uint32(i)*4)
		if err != nil {
			return nil, &CommandError{Cmd: "mem", Err: err}
		}
		words = append(words, word)
	}
	return words, nil
}

// Disassemble decodes count instructions forward from addr without
// mutating state. Words that do not decode render as raw data.
func (d *Debugger) Disassemble(addr uint32, count int) ([]DisLine, error) {
	if addr%4 != 0 {
		return nil, &CommandError{Cmd: "dis", Err: ErrBadAddress}
	}
	if count <= 0 {
		return nil, &CommandError{Cmd: "dis", Err: ErrBadCount}
	}

	pc := d.emulator.RegFile().PC
	lines := make([]DisLine, 0, count)
	for i := 0; i < count; i++ {
		lineAddr := addr + uint32(i)*4
		word, err := d.emulator.Memory().ReadWord(lineAddr)
		if err != nil {
			return nil, &CommandError{Cmd: "dis", Err: err}
		}

		text := ""
		if inst, err := d.decoder.Decode(word); err == nil {
			text = inst.String()
		} else {
			text = fmt.Sprintf(".word 0x%08X", word)
		}

		lines = append(lines, DisLine{
			Addr:    lineAddr,
			Word:    word,
			Text:    text,
			Current: lineAddr == pc,
		})
	}
	return lines, nil
}
