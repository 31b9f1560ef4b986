// Package benchmarks provides a harness for running small RV32I programs
// end to end: assemble, execute, and estimate cycles. The acceptance tests
// in this package pin down the architectural results of the reference
// programs.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/rvsim/asm"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/metrics"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/core"
)

// Benchmark is one program to run through the harness.
type Benchmark struct {
	// Name identifies the benchmark.
	Name string

	// Description explains what the benchmark exercises.
	Description string

	// Source is the RV32I assembly text.
	Source string

	// Setup prepares emulator state before the run.
	Setup func(regFile *emu.RegFile, memory *emu.Memory)
}

// Result holds the outcome of a single benchmark run.
type Result struct {
	// Name identifies the benchmark.
	Name string `json:"name"`

	// Err is non-nil when assembly or execution failed.
	Err error `json:"-"`

	// Instructions is the number of instructions executed.
	Instructions uint64 `json:"instructions"`

	// Cycles is the estimated cycle count.
	Cycles uint64 `json:"cycles"`

	// CPI is cycles per instruction.
	CPI float64 `json:"cpi"`

	// Redirects counts taken branches and jumps.
	Redirects uint64 `json:"redirects"`

	// ICacheStalls and DCacheStalls are total stall cycles.
	ICacheStalls uint64 `json:"icache_stalls"`
	DCacheStalls uint64 `json:"dcache_stalls"`

	// BranchTakenPercent is the fraction of conditional branches taken.
	BranchTakenPercent float64 `json:"branch_taken_percent"`

	// WallTime is the host time the run took.
	WallTime time.Duration `json:"wall_time_ns"`

	// Registers is the final register file state.
	Registers [32]uint32 `json:"-"`

	// Memory is the emulator memory after the run, for result checks.
	Memory *emu.Memory `json:"-"`
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// EnableICache attaches an instruction cache to the cycle estimator.
	EnableICache bool

	// EnableDCache attaches a data cache to the cycle estimator.
	EnableDCache bool

	// MaxInstructions bounds each run. Zero means the default limit.
	MaxInstructions uint64

	// Output is where PrintResults writes. Default: os.Stdout.
	Output io.Writer
}

// DefaultConfig returns the default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		EnableICache:    true,
		EnableDCache:    true,
		MaxInstructions: 10_000_000,
		Output:          os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.MaxInstructions == 0 {
		config.MaxInstructions = 10_000_000
	}
	return &Harness{config: config}
}

// AddBenchmark adds one benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns their results.
func (h *Harness) RunAll() []Result {
	results := make([]Result, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		results = append(results, h.runBenchmark(bench))
	}
	return results
}

// runBenchmark assembles and executes one benchmark on a fresh session.
func (h *Harness) runBenchmark(bench Benchmark) Result {
	result := Result{Name: bench.Name}

	code, err := asm.Assemble(bench.Source)
	if err != nil {
		result.Err = fmt.Errorf("%s: %w", bench.Name, err)
		return result
	}

	collector := metrics.NewCollector()
	emulator := emu.NewEmulator(
		emu.WithMaxInstructions(h.config.MaxInstructions),
		emu.WithObserver(collector),
	)

	estimatorOpts := []core.CoreOption{}
	if h.config.EnableICache {
		ic := cache.New(cache.DefaultIConfig(), cache.NewMemoryBacking(emulator.Memory()))
		estimatorOpts = append(estimatorOpts, core.WithICache(ic))
	}
	if h.config.EnableDCache {
		dc := cache.New(cache.DefaultDConfig(), cache.NewMemoryBacking(emulator.Memory()))
		estimatorOpts = append(estimatorOpts, core.WithDCache(dc))
	}
	estimator := core.NewCore(estimatorOpts...)
	emulator.AttachObserver(estimator)

	if bench.Setup != nil {
		bench.Setup(emulator.RegFile(), emulator.Memory())
	}
	if err := emulator.LoadProgram(0, code); err != nil {
		result.Err = fmt.Errorf("%s: %w", bench.Name, err)
		return result
	}

	start := time.Now()
	runErr := emulator.Run()
	result.WallTime = time.Since(start)

	if runErr != nil {
		result.Err = fmt.Errorf("%s: %w", bench.Name, runErr)
		return result
	}

	stats := estimator.Stats()
	report := collector.Report()
	result.Instructions = emulator.InstructionCount()
	result.Cycles = stats.Cycles
	result.CPI = stats.CPI()
	result.Redirects = stats.Redirects
	result.ICacheStalls = stats.ICacheStallCycles
	result.DCacheStalls = stats.DCacheStallCycles
	result.BranchTakenPercent = report.TakenPercent
	result.Registers = emulator.RegFile().X
	result.Memory = emulator.Memory()
	return result
}

// PrintResults writes a human-readable result table.
func (h *Harness) PrintResults(results []Result) {
	for _, r := range results {
		fmt.Fprintf(h.config.Output, "benchmark: %s\n", r.Name)
		if r.Err != nil {
			fmt.Fprintf(h.config.Output, "  error: %v\n", r.Err)
			continue
		}
		fmt.Fprintf(h.config.Output, "  instructions: %d\n", r.Instructions)
		fmt.Fprintf(h.config.Output, "  cycles:       %d\n", r.Cycles)
		fmt.Fprintf(h.config.Output, "  cpi:          %.3f\n", r.CPI)
		fmt.Fprintf(h.config.Output, "  redirects:    %d\n", r.Redirects)
		fmt.Fprintf(h.config.Output, "  wall time:    %v\n", r.WallTime)
	}
}

// WriteJSON writes results as a JSON array.
func (h *Harness) WriteJSON(w io.Writer, results []Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
