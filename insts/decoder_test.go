package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("R-type ALU", func() {
		// add x3, x1, x2 -> 0x002081B3
		It("should decode ADD x3, x1, x2", func() {
			inst, err := decoder.Decode(0x002081B3)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
		})

		// sub x4, x3, x1 -> 0x40118233 (funct7 bit 5 set)
		It("should decode SUB x4, x3, x1", func() {
			inst, err := decoder.Decode(0x40118233)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSUB))
			Expect(inst.Rd).To(Equal(uint8(4)))
			Expect(inst.Rs1).To(Equal(uint8(3)))
			Expect(inst.Rs2).To(Equal(uint8(1)))
		})

		It("should distinguish SRL from SRA by funct7", func() {
			srl := insts.Encode(&insts.Instruction{Op: insts.OpSRL, Rd: 1, Rs1: 2, Rs2: 3})
			sra := insts.Encode(&insts.Instruction{Op: insts.OpSRA, Rd: 1, Rs1: 2, Rs2: 3})

			instSRL, err := decoder.Decode(srl)
			Expect(err).NotTo(HaveOccurred())
			Expect(instSRL.Op).To(Equal(insts.OpSRL))

			instSRA, err := decoder.Decode(sra)
			Expect(err).NotTo(HaveOccurred())
			Expect(instSRA.Op).To(Equal(insts.OpSRA))
		})

		It("should reject an R-type word with an unsupported funct7", func() {
			// ADD encoding with funct7=0x01 (an M-extension MUL)
			_, err := decoder.Decode(0x022081B3)

			var decodeErr *insts.DecodeError
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(decodeErr))
		})
	})

	Describe("I-type ALU", func() {
		// addi x1, x0, 42 -> 0x02A00093
		It("should decode ADDI x1, x0, 42", func() {
			inst, err := decoder.Decode(0x02A00093)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(0)))
			Expect(inst.Imm).To(Equal(int32(42)))
		})

		// addi x1, x0, -2048 -> 0x80000093 (most negative 12-bit value)
		It("should sign-extend ADDI with immediate -2048", func() {
			inst, err := decoder.Decode(0x80000093)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Imm).To(Equal(int32(-2048)))
		})

		It("should decode ANDI, ORI, and XORI", func() {
			for _, op := range []insts.Op{insts.OpANDI, insts.OpORI, insts.OpXORI} {
				word := insts.Encode(&insts.Instruction{Op: op, Rd: 5, Rs1: 6, Imm: -7})
				inst, err := decoder.Decode(word)

				Expect(err).NotTo(HaveOccurred())
				Expect(inst.Op).To(Equal(op))
				Expect(inst.Imm).To(Equal(int32(-7)))
			}
		})
	})

	Describe("I-type shifts", func() {
		// srai x1, x2, 3 -> 0x40315093
		It("should decode SRAI x1, x2, 3", func() {
			inst, err := decoder.Decode(0x40315093)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Shamt).To(Equal(uint8(3)))
		})

		It("should distinguish SRLI from SRAI by the upper immediate bits", func() {
			srli := insts.Encode(&insts.Instruction{Op: insts.OpSRLI, Rd: 1, Rs1: 2, Shamt: 31})
			inst, err := decoder.Decode(srli)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSRLI))
			Expect(inst.Shamt).To(Equal(uint8(31)))
		})

		It("should reject SLLI with nonzero upper bits", func() {
			// slli with funct7=0x20 is not a valid encoding
			word := insts.Encode(&insts.Instruction{Op: insts.OpSLLI, Rd: 1, Rs1: 2, Shamt: 1})
			word |= 0x20 << 25

			_, err := decoder.Decode(word)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Loads and stores", func() {
		// lw x6, 0(x5) -> 0x0002A303
		It("should decode LW x6, 0(x5)", func() {
			inst, err := decoder.Decode(0x0002A303)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Rd).To(Equal(uint8(6)))
			Expect(inst.Rs1).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(0)))
		})

		// sw x4, 0(x5) -> 0x0042A023
		It("should decode SW x4, 0(x5)", func() {
			inst, err := decoder.Decode(0x0042A023)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Format).To(Equal(insts.FormatS))
			Expect(inst.Rs1).To(Equal(uint8(5)))
			Expect(inst.Rs2).To(Equal(uint8(4)))
			Expect(inst.Imm).To(Equal(int32(0)))
		})

		It("should reassemble negative split S-type immediates", func() {
			word := insts.Encode(&insts.Instruction{
				Op: insts.OpSW, Rs1: 2, Rs2: 3, Imm: -4,
			})
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Imm).To(Equal(int32(-4)))
		})

		It("should reject byte and halfword loads", func() {
			// lb x1, 0(x2) uses funct3=0, outside the supported subset
			_, err := decoder.Decode(0x00010083)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Branches", func() {
		// beq x4, x6, +8 -> 0x00620463
		It("should decode BEQ x4, x6, 8", func() {
			inst, err := decoder.Decode(0x00620463)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Format).To(Equal(insts.FormatB))
			Expect(inst.Rs1).To(Equal(uint8(4)))
			Expect(inst.Rs2).To(Equal(uint8(6)))
			Expect(inst.Offset).To(Equal(int32(8)))
		})

		// bne x1, x2, -4 -> 0xFE209EE3
		It("should decode BNE x1, x2, -4 with a negative offset", func() {
			inst, err := decoder.Decode(0xFE209EE3)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Offset).To(Equal(int32(-4)))
		})

		It("should reject unsigned branch variants", func() {
			// bltu uses funct3=6
			word := uint32(6)<<12 | 0x63
			_, err := decoder.Decode(word)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Upper immediates", func() {
		// lui x5, 0x10 -> 0x000102B7
		It("should decode LUI x5, 0x10", func() {
			inst, err := decoder.Decode(0x000102B7)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Format).To(Equal(insts.FormatU))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Imm).To(Equal(int32(0x10000)))
		})

		It("should decode AUIPC with the low 12 bits zero", func() {
			// -4096 carries the bit pattern 0xFFFFF000
			word := insts.Encode(&insts.Instruction{
				Op: insts.OpAUIPC, Rd: 7, Imm: -4096,
			})
			inst, err := decoder.Decode(word)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpAUIPC))
			Expect(uint32(inst.Imm)).To(Equal(uint32(0xFFFFF000)))
		})
	})

	Describe("Jumps", func() {
		// jal x0, 0 -> 0x0000006F (the canonical halt)
		It("should decode JAL x0, 0", func() {
			inst, err := decoder.Decode(0x0000006F)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Format).To(Equal(insts.FormatJ))
			Expect(inst.Rd).To(Equal(uint8(0)))
			Expect(inst.Offset).To(Equal(int32(0)))
		})

		// jalr x1, 4(x2) -> 0x004100E7
		It("should decode JALR x1, 4(x2)", func() {
			inst, err := decoder.Decode(0x004100E7)

			Expect(err).NotTo(HaveOccurred())
			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(uint8(1)))
			Expect(inst.Rs1).To(Equal(uint8(2)))
			Expect(inst.Imm).To(Equal(int32(4)))
		})

		It("should reject JALR with a nonzero funct3", func() {
			word := uint32(1)<<12 | 0x67
			_, err := decoder.Decode(word)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Decode errors", func() {
		It("should fail on an all-zero word", func() {
			_, err := decoder.Decode(0x00000000)

			var decodeErr *insts.DecodeError
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(decodeErr))
		})

		It("should carry the raw word in the error", func() {
			// opcode 0x7F is outside the supported set
			_, err := decoder.Decode(0xFFFFFFFF)

			var decodeErr *insts.DecodeError
			Expect(err).To(BeAssignableToTypeOf(decodeErr))
			Expect(err.(*insts.DecodeError).Word).To(Equal(uint32(0xFFFFFFFF)))
		})

		It("should fail on a CSR system instruction", func() {
			// csrrw x0, mstatus, x0 -> opcode 0x73
			_, err := decoder.Decode(0x30001073)
			Expect(err).To(HaveOccurred())
		})
	})
})
