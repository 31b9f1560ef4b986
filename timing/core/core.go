// Package core estimates execution cycles for a functional run. It
// observes the emulator's executed-instruction trace, charges per-class
// latencies and cache penalties, and reports aggregate statistics. The
// estimate is purely observational; functional results never depend on it.
package core

import (
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/latency"
)

// Statistics holds the cycle estimator's counters.
type Statistics struct {
	// Cycles is the total estimated cycle count.
	Cycles uint64
	// Instructions is the number of instructions charged.
	Instructions uint64
	// Redirects is the number of taken branches and jumps that paid the
	// redirect penalty.
	Redirects uint64
	// ICacheStallCycles is the total fetch stall from I-cache misses.
	ICacheStallCycles uint64
	// DCacheStallCycles is the total data stall from D-cache misses.
	DCacheStallCycles uint64
}

// CPI returns cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core is the cycle estimator. It implements emu.Observer and is attached
// to one emulator session via emu.WithObserver.
type Core struct {
	table  *latency.Table
	icache *cache.Cache
	dcache *cache.Cache

	stats Statistics
}

// CoreOption is a functional option for configuring the Core.
type CoreOption func(*Core)

// WithLatencyTable overrides the default latency table.
func WithLatencyTable(table *latency.Table) CoreOption {
	return func(c *Core) {
		c.table = table
	}
}

// WithICache attaches an instruction cache. Fetch misses add the miss
// latency as stall cycles.
func WithICache(ic *cache.Cache) CoreOption {
	return func(c *Core) {
		c.icache = ic
	}
}

// WithDCache attaches a data cache. Load and store misses add the miss
// latency as stall cycles.
func WithDCache(dc *cache.Cache) CoreOption {
	return func(c *Core) {
		c.dcache = dc
	}
}

// NewCore creates a cycle estimator with default latencies and no caches.
func NewCore(opts ...CoreOption) *Core {
	c := &Core{
		table: latency.NewTable(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stats returns the statistics accumulated so far.
func (c *Core) Stats() Statistics {
	return c.stats
}

// Reset clears the statistics and invalidates attached caches.
func (c *Core) Reset() {
	c.stats = Statistics{}
	if c.icache != nil {
		c.icache.Reset()
	}
	if c.dcache != nil {
		c.dcache.Reset()
	}
}

// InstructionExecuted charges one executed instruction: its base latency,
// fetch and data stalls from the caches, and the redirect penalty when
// control flow diverged.
func (c *Core) InstructionExecuted(ev emu.InstEvent) {
	c.stats.Instructions++
	cycles := c.table.Latency(ev.Inst)

	if c.icache != nil {
		if r := c.icache.Read(ev.PC); !r.Hit {
			c.stats.ICacheStallCycles += r.Latency
			cycles += r.Latency
		}
	}

	if c.dcache != nil {
		switch ev.Inst.Op {
		case insts.OpLW:
			if r := c.dcache.Read(ev.MemAddr); !r.Hit {
				c.stats.DCacheStallCycles += r.Latency
				cycles += r.Latency
			}
		case insts.OpSW:
			if r := c.dcache.Write(ev.MemAddr, ev.MemValue); !r.Hit {
				c.stats.DCacheStallCycles += r.Latency
				cycles += r.Latency
			}
		}
	}

	if redirected(ev) {
		c.stats.Redirects++
		cycles += c.table.RedirectPenalty()
	}

	c.stats.Cycles += cycles
}

// redirected reports whether the instruction moved the PC off the
// fall-through path.
func redirected(ev emu.InstEvent) bool {
	switch ev.Inst.Format {
	case insts.FormatB:
		return ev.Taken
	case insts.FormatJ:
		return true
	}
	return ev.Inst.Op == insts.OpJALR
}
