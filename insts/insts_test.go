package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("Instruction rendering", func() {
	It("should render R-type instructions", func() {
		inst := &insts.Instruction{
			Op: insts.OpADD, Format: insts.FormatR, Rd: 3, Rs1: 1, Rs2: 2,
		}
		Expect(inst.String()).To(Equal("add x3, x1, x2"))
	})

	It("should render loads in offset(base) form", func() {
		inst := &insts.Instruction{
			Op: insts.OpLW, Format: insts.FormatI, Rd: 6, Rs1: 5, Imm: -8,
		}
		Expect(inst.String()).To(Equal("lw x6, -8(x5)"))
	})

	It("should render stores in offset(base) form", func() {
		inst := &insts.Instruction{
			Op: insts.OpSW, Format: insts.FormatS, Rs1: 5, Rs2: 4, Imm: 0,
		}
		Expect(inst.String()).To(Equal("sw x4, 0(x5)"))
	})

	It("should render branches with their byte offset", func() {
		inst := &insts.Instruction{
			Op: insts.OpBEQ, Format: insts.FormatB, Rs1: 4, Rs2: 6, Offset: 8,
		}
		Expect(inst.String()).To(Equal("beq x4, x6, 8"))
	})

	It("should render LUI with the 20-bit immediate in hex", func() {
		inst := &insts.Instruction{
			Op: insts.OpLUI, Format: insts.FormatU, Rd: 5, Imm: 0x10000,
		}
		Expect(inst.String()).To(Equal("lui x5, 0x10"))
	})

	It("should render shifts with the shift amount", func() {
		inst := &insts.Instruction{
			Op: insts.OpSRAI, Format: insts.FormatI, Rd: 1, Rs1: 2, Shamt: 3,
		}
		Expect(inst.String()).To(Equal("srai x1, x2, 3"))
	})

	It("should name every supported opcode", func() {
		for op := insts.OpADD; op <= insts.OpJALR; op++ {
			Expect(op.String()).NotTo(Equal("unknown"))
		}
		Expect(insts.OpUnknown.String()).To(Equal("unknown"))
	})
})
