// Package latency provides instruction timing lookups for the cycle
// estimator. Latency values come from a TimingConfig, which can be loaded
// from a JSON file.
package latency

import (
	"github.com/sarchlab/rvsim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a latency table with a custom configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// Config returns the table's timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}

// Latency returns the base execution latency in cycles for the given
// instruction, not including cache or redirect penalties.
func (t *Table) Latency(inst *insts.Instruction) uint64 {
	if inst == nil {
		return 1
	}

	switch inst.Op {
	case insts.OpADD, insts.OpSUB, insts.OpAND, insts.OpOR, insts.OpXOR,
		insts.OpADDI, insts.OpANDI, insts.OpORI, insts.OpXORI,
		insts.OpLUI, insts.OpAUIPC:
		return t.config.ALULatency

	case insts.OpSLL, insts.OpSRL, insts.OpSRA,
		insts.OpSLLI, insts.OpSRLI, insts.OpSRAI:
		return t.config.ShiftLatency

	case insts.OpLW:
		return t.config.LoadLatency

	case insts.OpSW:
		return t.config.StoreLatency

	case insts.OpBEQ, insts.OpBNE, insts.OpBLT, insts.OpBGE:
		return t.config.BranchLatency

	case insts.OpJAL, insts.OpJALR:
		return t.config.JumpLatency
	}

	return 1
}

// RedirectPenalty returns the extra cycles charged when control flow
// diverges from the fall-through path.
func (t *Table) RedirectPenalty() uint64 {
	return t.config.BranchTakenPenalty
}
