// Package metrics collects execution statistics from the emulator.
//
// A Collector is attached to one emulator session through the observer
// hook and accumulates instruction counts, an opcode histogram, and branch
// outcomes. It is never shared between sessions.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/insts"
)

// Collector accumulates per-session execution statistics. It implements
// emu.Observer.
type Collector struct {
	total          uint64
	perOp          map[insts.Op]uint64
	branchTaken    uint64
	branchNotTaken uint64

	started   bool
	startTime time.Time
	lastTime  time.Time

	// now is replaceable for tests.
	now func() time.Time
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		perOp: map[insts.Op]uint64{},
		now:   time.Now,
	}
}

// InstructionExecuted records one executed instruction. The wall clock
// starts on the first observation, so program load time is never counted
// toward throughput. Conditional branches contribute to the taken and
// not-taken totals; jumps count only in the totals and the histogram.
func (c *Collector) InstructionExecuted(ev emu.InstEvent) {
	t := c.now()
	if !c.started {
		c.started = true
		c.startTime = t
	}
	c.lastTime = t

	c.total++
	c.perOp[ev.Inst.Op]++

	if ev.Inst.Format == insts.FormatB {
		if ev.Taken {
			c.branchTaken++
		} else {
			c.branchNotTaken++
		}
	}
}

// Reset clears all accumulated state for a fresh run.
func (c *Collector) Reset() {
	c.total = 0
	c.perOp = map[insts.Op]uint64{}
	c.branchTaken = 0
	c.branchNotTaken = 0
	c.started = false
}

// OpCount is one opcode histogram row.
type OpCount struct {
	Op      string  `json:"op"`
	Count   uint64  `json:"count"`
	Percent float64 `json:"percent"`
}

// Report is a point-in-time snapshot of the collected statistics.
type Report struct {
	Instructions   uint64    `json:"instructions"`
	MIPS           float64   `json:"mips"`
	BranchTaken    uint64    `json:"branch_taken"`
	BranchNotTaken uint64    `json:"branch_not_taken"`
	TakenPercent   float64   `json:"taken_percent"`
	Histogram      []OpCount `json:"histogram"`
}

// Report builds a snapshot of the statistics collected so far. The opcode
// histogram is sorted by descending count, then by mnemonic for stable
// output.
func (c *Collector) Report() Report {
	r := Report{
		Instructions:   c.total,
		BranchTaken:    c.branchTaken,
		BranchNotTaken: c.branchNotTaken,
	}

	if c.started {
		elapsed := c.lastTime.Sub(c.startTime).Seconds()
		if elapsed > 0 {
			r.MIPS = float64(c.total) / elapsed / 1e6
		}
	}

	if branches := c.branchTaken + c.branchNotTaken; branches > 0 {
		r.TakenPercent = float64(c.branchTaken) / float64(branches) * 100
	}

	for op, count := range c.perOp {
		r.Histogram = append(r.Histogram, OpCount{
			Op:      op.String(),
			Count:   count,
			Percent: float64(count) / float64(c.total) * 100,
		})
	}
	sort.Slice(r.Histogram, func(i, j int) bool {
		if r.Histogram[i].Count != r.Histogram[j].Count {
			return r.Histogram[i].Count > r.Histogram[j].Count
		}
		return r.Histogram[i].Op < r.Histogram[j].Op
	})

	return r
}

// String renders the report for terminal output.
func (r Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "performance metrics:\n")
	fmt.Fprintf(&b, "  instructions executed: %d\n", r.Instructions)
	fmt.Fprintf(&b, "  mips: %.2f\n", r.MIPS)

	if r.BranchTaken+r.BranchNotTaken > 0 {
		fmt.Fprintf(&b, "\nbranch statistics:\n")
		fmt.Fprintf(&b, "  taken: %d (%.1f%%)\n", r.BranchTaken, r.TakenPercent)
		fmt.Fprintf(&b, "  not taken: %d (%.1f%%)\n", r.BranchNotTaken, 100-r.TakenPercent)
	}

	if len(r.Histogram) > 0 {
		fmt.Fprintf(&b, "\ninstruction mix:\n")
		for _, row := range r.Histogram {
			fmt.Fprintf(&b, "  %-8s %8d (%.1f%%)\n", row.Op, row.Count, row.Percent)
		}
	}

	return b.String()
}
