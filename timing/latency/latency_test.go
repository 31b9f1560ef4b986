package latency_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/latency"
)

var _ = Describe("Table", func() {
	var table *latency.Table

	BeforeEach(func() {
		table = latency.NewTable()
	})

	It("should use default timing values", func() {
		config := table.Config()

		Expect(config.ALULatency).To(Equal(uint64(1)))
		Expect(config.LoadLatency).To(Equal(uint64(2)))
		Expect(config.BranchTakenPenalty).To(Equal(uint64(2)))
		Expect(config.MemoryLatency).To(Equal(uint64(20)))
	})

	DescribeTable("instruction class lookups",
		func(op insts.Op, want uint64) {
			Expect(table.Latency(&insts.Instruction{Op: op})).To(Equal(want))
		},
		Entry("add is an ALU op", insts.OpADD, uint64(1)),
		Entry("lui is an ALU op", insts.OpLUI, uint64(1)),
		Entry("slli is a shift", insts.OpSLLI, uint64(1)),
		Entry("lw is a load", insts.OpLW, uint64(2)),
		Entry("sw is a store", insts.OpSW, uint64(1)),
		Entry("beq is a branch", insts.OpBEQ, uint64(1)),
		Entry("jal is a jump", insts.OpJAL, uint64(1)),
		Entry("jalr is a jump", insts.OpJALR, uint64(1)),
	)

	It("should charge one cycle for a nil instruction", func() {
		Expect(table.Latency(nil)).To(Equal(uint64(1)))
	})

	It("should expose the redirect penalty", func() {
		Expect(table.RedirectPenalty()).To(Equal(uint64(2)))
	})

	It("should honor a custom configuration", func() {
		config := latency.DefaultTimingConfig()
		config.LoadLatency = 5
		config.BranchTakenPenalty = 7
		table = latency.NewTableWithConfig(config)

		Expect(table.Latency(&insts.Instruction{Op: insts.OpLW})).To(Equal(uint64(5)))
		Expect(table.RedirectPenalty()).To(Equal(uint64(7)))
	})
})

var _ = Describe("TimingConfig", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "latency_test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("should round-trip through JSON", func() {
		path := filepath.Join(dir, "timing.json")
		config := DefaultModified()

		Expect(config.SaveConfig(path)).To(Succeed())
		loaded, err := latency.LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(Equal(config))
	})

	It("should keep defaults for fields absent from the file", func() {
		path := filepath.Join(dir, "timing.json")
		Expect(os.WriteFile(path, []byte(`{"load_latency": 9}`), 0644)).To(Succeed())

		loaded, err := latency.LoadConfig(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.LoadLatency).To(Equal(uint64(9)))
		Expect(loaded.MemoryLatency).To(Equal(uint64(20)))
	})

	It("should report unreadable files", func() {
		_, err := latency.LoadConfig(filepath.Join(dir, "nope.json"))

		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should report malformed JSON", func() {
		path := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

		_, err := latency.LoadConfig(path)

		Expect(err).To(MatchError(ContainSubstring("parse")))
	})

	It("should validate default values", func() {
		Expect(latency.DefaultTimingConfig().Validate()).To(Succeed())
	})

	It("should reject zero latencies", func() {
		config := latency.DefaultTimingConfig()
		config.LoadLatency = 0

		Expect(config.Validate()).To(MatchError(ContainSubstring("load_latency")))
	})

	It("should clone without sharing", func() {
		config := latency.DefaultTimingConfig()
		clone := config.Clone()
		clone.ALULatency = 99

		Expect(config.ALULatency).To(Equal(uint64(1)))
	})
})

// DefaultModified builds a config with every field changed from its
// default, so the round-trip test covers each one.
func DefaultModified() *latency.TimingConfig {
	return &latency.TimingConfig{
		ALULatency:         2,
		ShiftLatency:       3,
		LoadLatency:        4,
		StoreLatency:       5,
		BranchLatency:      6,
		BranchTakenPenalty: 7,
		JumpLatency:        8,
		MemoryLatency:      40,
	}
}
