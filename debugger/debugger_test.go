package debugger_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/asm"
	"github.com/sarchlab/rvsim/debugger"
	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("Debugger", func() {
	var (
		emulator *emu.Emulator
		dbg      *debugger.Debugger
	)

	load := func(source string) {
		code, err := asm.Assemble(source)
		Expect(err).NotTo(HaveOccurred())
		Expect(emulator.LoadProgram(0, code)).To(Succeed())
	}

	BeforeEach(func() {
		emulator = emu.NewEmulator()
		dbg = debugger.New(emulator)

		load(`
			addi x1, x0, 1
			addi x2, x0, 2
			add x3, x1, x2
			addi x4, x0, 4
			jal x0, 0
		`)
	})

	Describe("breakpoints", func() {
		It("should list breakpoints in ascending order", func() {
			Expect(dbg.AddBreakpoint(0x8)).To(Succeed())
			Expect(dbg.AddBreakpoint(0x0)).To(Succeed())
			Expect(dbg.AddBreakpoint(0x4)).To(Succeed())

			Expect(dbg.Breakpoints()).To(Equal([]uint32{0x0, 0x4, 0x8}))
		})

		It("should reject unaligned addresses", func() {
			err := dbg.AddBreakpoint(0x6)

			Expect(err).To(MatchError(debugger.ErrBadAddress))
			Expect(dbg.Breakpoints()).To(BeEmpty())
		})

		It("should remove a breakpoint", func() {
			Expect(dbg.AddBreakpoint(0x8)).To(Succeed())
			Expect(dbg.RemoveBreakpoint(0x8)).To(Succeed())

			Expect(dbg.Breakpoints()).To(BeEmpty())
		})

		It("should refuse to remove a breakpoint that is not set", func() {
			err := dbg.RemoveBreakpoint(0x8)

			Expect(err).To(MatchError(debugger.ErrNoBreakpoint))
		})

		It("should tag failed commands with their name", func() {
			err := dbg.AddBreakpoint(0x6)

			var cmdErr *debugger.CommandError
			Expect(err).To(BeAssignableToTypeOf(cmdErr))
			cmdErr = err.(*debugger.CommandError)
			Expect(cmdErr.Cmd).To(Equal("break"))
		})
	})

	Describe("stepping", func() {
		It("should execute exactly one instruction per step", func() {
			result := dbg.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Halted).To(BeFalse())
			Expect(dbg.PC()).To(Equal(uint32(4)))
			Expect(emulator.RegFile().ReadReg(1)).To(Equal(uint32(1)))
		})

		It("should continue to the next breakpoint", func() {
			Expect(dbg.AddBreakpoint(0x8)).To(Succeed())

			result := dbg.Continue()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Halted).To(BeFalse())
			Expect(dbg.PC()).To(Equal(uint32(0x8)))
			Expect(emulator.RegFile().ReadReg(3)).To(BeZero(),
				"instruction under the breakpoint has not run yet")
		})

		It("should make progress when stopped on a breakpoint", func() {
			Expect(dbg.AddBreakpoint(0x0)).To(Succeed())

			result := dbg.Continue()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(dbg.PC()).NotTo(Equal(uint32(0x0)))
		})

		It("should continue to halt when no breakpoint is hit", func() {
			result := dbg.Continue()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Halted).To(BeTrue())
			Expect(emulator.RegFile().ReadReg(3)).To(Equal(uint32(3)))
			Expect(emulator.RegFile().ReadReg(4)).To(Equal(uint32(4)))
		})

		It("should surface execution errors from continue", func() {
			Expect(emulator.Memory().WriteWord(0x10, 0xFFFFFFFF)).To(Succeed())

			result := dbg.Continue()

			Expect(result.Err).To(HaveOccurred())
		})
	})

	Describe("register inspection", func() {
		BeforeEach(func() {
			dbg.Step()
			dbg.Step()
		})

		It("should dump all 32 registers with ABI names", func() {
			dump := dbg.Registers()

			Expect(dump).To(HaveLen(32))
			Expect(dump[0].Name).To(Equal("zero"))
			Expect(dump[1].Value).To(Equal(uint32(1)))
			Expect(dump[2].Name).To(Equal("sp"))
		})

		It("should read a register by x-name", func() {
			Expect(dbg.Register("x2")).To(Equal(uint32(2)))
		})

		It("should read a register by ABI alias", func() {
			Expect(dbg.Register("sp")).To(Equal(uint32(2)))
		})

		It("should read the program counter", func() {
			Expect(dbg.Register("pc")).To(Equal(uint32(8)))
		})

		It("should reject unknown register names", func() {
			_, err := dbg.Register("x99")

			Expect(err).To(MatchError(debugger.ErrUnknownRegName))
		})
	})

	Describe("memory inspection", func() {
		It("should read consecutive words", func() {
			Expect(emulator.Memory().WriteWord(0x100, 0x11111111)).To(Succeed())
			Expect(emulator.Memory().WriteWord(0x104, 0x22222222)).To(Succeed())

			words, err := dbg.ReadMemory(0x100, 2)

			Expect(err).NotTo(HaveOccurred())
			Expect(words).To(Equal([]uint32{0x11111111, 0x22222222}))
		})

		It("should reject a non-positive count", func() {
			_, err := dbg.ReadMemory(0x100, 0)

			Expect(err).To(MatchError(debugger.ErrBadCount))
		})

		It("should propagate memory errors without mutating state", func() {
			pcBefore := dbg.PC()

			_, err := dbg.ReadMemory(0x102, 1)

			Expect(err).To(HaveOccurred())
			Expect(dbg.PC()).To(Equal(pcBefore))
			Expect(emulator.Halted()).To(BeFalse())
		})
	})

	Describe("disassembly", func() {
		It("should render decoded instructions", func() {
			lines, err := dbg.Disassemble(0, 3)

			Expect(err).NotTo(HaveOccurred())
			Expect(lines).To(HaveLen(3))
			Expect(lines[0].Text).To(ContainSubstring("addi"))
			Expect(lines[2].Text).To(ContainSubstring("add"))
		})

		It("should mark the current PC", func() {
			dbg.Step()

			lines, err := dbg.Disassemble(0, 3)

			Expect(err).NotTo(HaveOccurred())
			Expect(lines[0].Current).To(BeFalse())
			Expect(lines[1].Current).To(BeTrue())
			Expect(lines[2].Current).To(BeFalse())
		})

		It("should render undecodable words as raw data", func() {
			// opcode 0x7F does not decode
			Expect(emulator.Memory().WriteWord(0x40, 0xFFFFFFFF)).To(Succeed())

			lines, err := dbg.Disassemble(0x40, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(lines[0].Text).To(Equal(".word 0xFFFFFFFF"))
		})

		It("should not advance execution", func() {
			countBefore := emulator.InstructionCount()

			_, err := dbg.Disassemble(0, 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(emulator.InstructionCount()).To(Equal(countBefore))
		})

		It("should reject unaligned addresses", func() {
			_, err := dbg.Disassemble(0x2, 1)

			Expect(err).To(MatchError(debugger.ErrBadAddress))
		})
	})
})
