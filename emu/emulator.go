// Package emu provides functional RV32I emulation.
package emu

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/rvsim/insts"
)

// ErrMaxInstructions is returned by Step when the configured instruction
// limit is reached before the program halts.
var ErrMaxInstructions = errors.New("instruction limit reached")

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true if the program reached the halt condition.
	Halted bool

	// Err is set if an error occurred during execution.
	Err error
}

// InstEvent describes one successfully executed instruction.
type InstEvent struct {
	// PC is the address of the executed instruction.
	PC uint32

	// Inst is the decoded instruction.
	Inst *insts.Instruction

	// Taken reports whether a conditional branch diverged.
	Taken bool

	// MemAddr is the effective data address for loads and stores.
	MemAddr uint32

	// MemValue is the word transferred by a load or store.
	MemValue uint32
}

// Observer is notified after each successfully executed instruction.
type Observer interface {
	InstructionExecuted(ev InstEvent)
}

// Emulator executes RV32I instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// I/O
	stdout io.Writer
	stderr io.Writer
	trace  bool

	observers []Observer

	// Loaded program, kept for Reset
	program []byte
	entry   uint32

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
	memSize          uint32
	halted           bool
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithTrace enables a one-line execution trace per instruction on stdout.
func WithTrace() EmulatorOption {
	return func(e *Emulator) {
		e.trace = true
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithMemorySize sets the memory size in bytes.
func WithMemorySize(size uint32) EmulatorOption {
	return func(e *Emulator) {
		e.memSize = size
	}
}

// WithObserver attaches an observer notified after each executed
// instruction. Observers are invoked in attachment order.
func WithObserver(o Observer) EmulatorOption {
	return func(e *Emulator) {
		e.observers = append(e.observers, o)
	}
}

// NewEmulator creates a new RV32I emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		decoder: insts.NewDecoder(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		memSize: MemorySize,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.regFile = &RegFile{}
	e.memory = NewMemorySized(e.memSize)

	// Create execution units
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory)
	e.branchUnit = NewBranchUnit(e.regFile)

	return e
}

// AttachObserver adds an observer after construction. It is useful when
// the observer needs the emulator's memory, such as a cache model.
func (e *Emulator) AttachObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted reports whether the program reached the halt condition.
func (e *Emulator) Halted() bool {
	return e.halted
}

// LoadProgram loads a program into memory at base and sets the PC there.
// The base address must be word-aligned.
func (e *Emulator) LoadProgram(base uint32, program []byte) error {
	if base%4 != 0 {
		return &MemoryError{Addr: base, Misaligned: true}
	}
	if err := e.memory.LoadBytes(base, program); err != nil {
		return err
	}
	e.program = program
	e.entry = base
	e.regFile.PC = base
	return nil
}

// Reset returns the emulator to its initial state and reloads the program
// loaded last, so an identical run can start from scratch.
func (e *Emulator) Reset() {
	e.regFile = &RegFile{}
	e.memory = NewMemorySized(e.memSize)
	e.instructionCount = 0
	e.halted = false

	// Recreate execution units
	e.alu = NewALU(e.regFile)
	e.lsu = NewLoadStoreUnit(e.regFile, e.memory)
	e.branchUnit = NewBranchUnit(e.regFile)

	if e.program != nil {
		// Reload cannot fail: it succeeded with the same arguments before.
		_ = e.memory.LoadBytes(e.entry, e.program)
		e.regFile.PC = e.entry
	}
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	// 1. Fetch: read the word at PC
	word, err := e.memory.ReadWord(e.regFile.PC)
	if err != nil {
		return StepResult{Err: fmt.Errorf("fetch at PC=0x%08X: %w", e.regFile.PC, err)}
	}

	// 2. Decode
	inst, err := e.decoder.Decode(word)
	if err != nil {
		return StepResult{Err: fmt.Errorf("at PC=0x%08X: %w", e.regFile.PC, err)}
	}

	if e.trace {
		_, _ = fmt.Fprintf(e.stdout, "0x%08X: %08X  %v\n", e.regFile.PC, word, inst)
	}

	// 3. Execute
	ev := InstEvent{PC: e.regFile.PC, Inst: inst}
	result := e.execute(inst, &ev)
	if result.Err != nil {
		return result
	}
	// The halting jump makes no progress; it is not counted and
	// observers never see it.
	if result.Halted {
		return result
	}

	e.instructionCount++
	for _, obs := range e.observers {
		obs.InstructionExecuted(ev)
	}

	return result
}

// Run executes instructions until the program halts or an error occurs.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		if result.Halted {
			return nil
		}
		if result.Err != nil {
			_, _ = fmt.Fprintf(e.stderr, "emulation error: %v\n", result.Err)
			return result.Err
		}
	}
}

// execute dispatches and executes a decoded instruction.
//
// An unconditional jump whose target is its own address means the program
// can make no further progress; that is the halt condition. A conditional
// branch to itself or a backward loop does not halt.
func (e *Emulator) execute(inst *insts.Instruction, ev *InstEvent) StepResult {
	// Loads, stores, and jumps carry their own memory and PC handling.
	switch inst.Op {
	case insts.OpLW:
		addr, err := e.lsu.LW(inst.Rd, inst.Rs1, inst.Imm)
		ev.MemAddr = addr
		if err != nil {
			return StepResult{Err: fmt.Errorf("at PC=0x%08X: %w", e.regFile.PC, err)}
		}
		ev.MemValue = e.regFile.ReadReg(inst.Rd)
		e.regFile.PC += 4
		return StepResult{}
	case insts.OpSW:
		addr, err := e.lsu.SW(inst.Rs2, inst.Rs1, inst.Imm)
		ev.MemAddr = addr
		if err != nil {
			return StepResult{Err: fmt.Errorf("at PC=0x%08X: %w", e.regFile.PC, err)}
		}
		ev.MemValue = e.regFile.ReadReg(inst.Rs2)
		e.regFile.PC += 4
		return StepResult{}
	case insts.OpJAL:
		target := e.branchUnit.JAL(inst.Rd, inst.Offset)
		if target == ev.PC {
			e.halted = true
			return StepResult{Halted: true}
		}
		return StepResult{} // PC already updated
	case insts.OpJALR:
		target := e.branchUnit.JALR(inst.Rd, inst.Rs1, inst.Imm)
		if target == ev.PC {
			e.halted = true
			return StepResult{Halted: true}
		}
		return StepResult{} // PC already updated
	}

	switch inst.Format {
	case insts.FormatR:
		e.executeR(inst)
	case insts.FormatI:
		e.executeImm(inst)
	case insts.FormatB:
		ev.Taken = e.executeBranch(inst)
		return StepResult{} // PC already updated by branch
	case insts.FormatU:
		e.executeUpper(inst)
	default:
		return StepResult{
			Err: fmt.Errorf("unimplemented format %d at PC=0x%08X", inst.Format, e.regFile.PC),
		}
	}

	// Advance PC by 4 (for non-branch instructions)
	e.regFile.PC += 4

	return StepResult{}
}

// executeR executes register-register ALU instructions.
func (e *Emulator) executeR(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpADD:
		e.alu.ADD(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSUB:
		e.alu.SUB(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpAND:
		e.alu.AND(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpOR:
		e.alu.OR(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpXOR:
		e.alu.XOR(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSLL:
		e.alu.SLL(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRL:
		e.alu.SRL(inst.Rd, inst.Rs1, inst.Rs2)
	case insts.OpSRA:
		e.alu.SRA(inst.Rd, inst.Rs1, inst.Rs2)
	}
}

// executeImm executes immediate ALU and shift instructions.
func (e *Emulator) executeImm(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpADDI:
		e.alu.ADDI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpANDI:
		e.alu.ANDI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpORI:
		e.alu.ORI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpXORI:
		e.alu.XORI(inst.Rd, inst.Rs1, inst.Imm)
	case insts.OpSLLI:
		e.alu.SLLI(inst.Rd, inst.Rs1, inst.Shamt)
	case insts.OpSRLI:
		e.alu.SRLI(inst.Rd, inst.Rs1, inst.Shamt)
	case insts.OpSRAI:
		e.alu.SRAI(inst.Rd, inst.Rs1, inst.Shamt)
	}
}

// executeBranch executes conditional branch instructions. Returns whether
// the branch was taken.
func (e *Emulator) executeBranch(inst *insts.Instruction) bool {
	switch inst.Op {
	case insts.OpBEQ:
		return e.branchUnit.BEQ(inst.Rs1, inst.Rs2, inst.Offset)
	case insts.OpBNE:
		return e.branchUnit.BNE(inst.Rs1, inst.Rs2, inst.Offset)
	case insts.OpBLT:
		return e.branchUnit.BLT(inst.Rs1, inst.Rs2, inst.Offset)
	case insts.OpBGE:
		return e.branchUnit.BGE(inst.Rs1, inst.Rs2, inst.Offset)
	}
	return false
}

// executeUpper executes LUI and AUIPC.
func (e *Emulator) executeUpper(inst *insts.Instruction) {
	switch inst.Op {
	case insts.OpLUI:
		e.alu.LUI(inst.Rd, inst.Imm)
	case insts.OpAUIPC:
		e.alu.AUIPC(inst.Rd, inst.Imm)
	}
}
