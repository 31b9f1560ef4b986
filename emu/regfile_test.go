package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/emu"
)

var _ = Describe("RegFile", func() {
	var regFile *emu.RegFile

	BeforeEach(func() {
		regFile = &emu.RegFile{}
	})

	It("should read back written values", func() {
		for reg := uint8(1); reg < 32; reg++ {
			regFile.WriteReg(reg, uint32(reg)*100)
		}
		for reg := uint8(1); reg < 32; reg++ {
			Expect(regFile.ReadReg(reg)).To(Equal(uint32(reg) * 100))
		}
	})

	It("should discard writes to x0", func() {
		regFile.WriteReg(0, 0xDEADBEEF)

		Expect(regFile.ReadReg(0)).To(Equal(uint32(0)))
	})

	It("should keep x0 at zero across repeated writes", func() {
		for i := 0; i < 3; i++ {
			regFile.WriteReg(0, uint32(i)+1)
			Expect(regFile.ReadReg(0)).To(Equal(uint32(0)))
		}
	})
})
