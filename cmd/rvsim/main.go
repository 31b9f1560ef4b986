// Package main provides the RVSim command-line interface.
//
// The CLI marshals files into the core's load and run entry points:
//
//	rvsim run [options] <prog.bin|prog.s>    run a program to completion
//	rvsim asm [options] <prog.s>             assemble to a word image
//	rvsim debug [options] <prog.bin|prog.s>  interactive debugging REPL
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/rvsim/asm"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/loader"
	"github.com/sarchlab/rvsim/metrics"
	"github.com/sarchlab/rvsim/statsview"
	"github.com/sarchlab/rvsim/timing/cache"
	"github.com/sarchlab/rvsim/timing/core"
	"github.com/sarchlab/rvsim/timing/latency"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "asm":
		os.Exit(cmdAsm(os.Args[2:]))
	case "debug":
		os.Exit(cmdDebug(os.Args[2:]))
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: rvsim <command> [options] <program>\n")
	fmt.Fprintf(os.Stderr, "\nCommands:\n")
	fmt.Fprintf(os.Stderr, "  run      Load a program and run it to completion\n")
	fmt.Fprintf(os.Stderr, "  asm      Assemble a source file into a word image\n")
	fmt.Fprintf(os.Stderr, "  debug    Start an interactive debugging session\n")
	fmt.Fprintf(os.Stderr, "\nRun 'rvsim <command> -h' for command options.\n")
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	base := fs.Uint("base", 0, "Load base address")
	maxSteps := fs.Uint64("max-steps", 1_000_000, "Instruction limit, 0 for none")
	showMetrics := fs.Bool("metrics", false, "Print execution metrics")
	timing := fs.Bool("timing", false, "Estimate cycles with the timing model")
	configPath := fs.String("config", "", "Path to timing configuration JSON file")
	trace := fs.Bool("trace", false, "Print a disassembly line per executed instruction")
	verbose := fs.Bool("v", false, "Verbose output")
	stats := fs.Bool("statsview", false, "Launch the runtime stats server (statsview builds only)")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim run [options] <prog.bin|prog.s>\n")
		fs.PrintDefaults()
		return 1
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stderr)
		} else {
			fmt.Fprintf(os.Stderr, "statsview not compiled in; build with -tags statsview\n")
		}
	}

	prog, err := loader.Load(fs.Arg(0), uint32(*base))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	collector := metrics.NewCollector()
	opts := []emu.EmulatorOption{
		emu.WithMaxInstructions(*maxSteps),
		emu.WithObserver(collector),
	}
	if *trace {
		opts = append(opts, emu.WithTrace())
	}
	e := emu.NewEmulator(opts...)

	var estimator *core.Core
	if *timing {
		estimator, err = buildEstimator(e, *configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		e.AttachObserver(estimator)
	}

	if err := e.LoadProgram(prog.Base, prog.Code); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	if err := e.Run(); err != nil {
		if errors.Is(err, emu.ErrMaxInstructions) {
			fmt.Fprintf(os.Stderr, "Stopped: instruction limit of %d reached before halt\n", *maxSteps)
		} else {
			fmt.Fprintf(os.Stderr, "Execution error: %v\n", err)
		}
		return 1
	}

	fmt.Printf("Program halted after %d instructions\n", e.InstructionCount())
	if *verbose {
		printRegisters(e)
	}
	if *showMetrics {
		fmt.Println()
		fmt.Print(collector.Report())
	}
	if estimator != nil {
		fmt.Println()
		printTiming(estimator.Stats())
	}
	return 0
}

// buildEstimator wires a cycle estimator with I/D caches backed by the
// emulator's memory.
func buildEstimator(e *emu.Emulator, configPath string) (*core.Core, error) {
	config := latency.DefaultTimingConfig()
	if configPath != "" {
		var err error
		config, err = latency.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if err := config.Validate(); err != nil {
			return nil, err
		}
	}

	backing := cache.NewMemoryBacking(e.Memory())
	icfg := cache.DefaultIConfig()
	dcfg := cache.DefaultDConfig()
	icfg.MissLatency = config.MemoryLatency
	dcfg.MissLatency = config.MemoryLatency

	return core.NewCore(
		core.WithLatencyTable(latency.NewTableWithConfig(config)),
		core.WithICache(cache.New(icfg, backing)),
		core.WithDCache(cache.New(dcfg, backing)),
	), nil
}

func printRegisters(e *emu.Emulator) {
	regFile := e.RegFile()
	fmt.Printf("pc  = 0x%08X\n", regFile.PC)
	for i := uint8(0); i < 32; i++ {
		fmt.Printf("%-4s= 0x%08X", asm.RegName(i), regFile.ReadReg(i))
		if i%4 == 3 {
			fmt.Println()
		} else {
			fmt.Print("  ")
		}
	}
}

func printTiming(stats core.Statistics) {
	fmt.Printf("timing estimate:\n")
	fmt.Printf("  cycles:       %d\n", stats.Cycles)
	fmt.Printf("  instructions: %d\n", stats.Instructions)
	fmt.Printf("  cpi:          %.2f\n", stats.CPI())
	fmt.Printf("  redirects:    %d\n", stats.Redirects)
	fmt.Printf("  icache stall: %d cycles\n", stats.ICacheStallCycles)
	fmt.Printf("  dcache stall: %d cycles\n", stats.DCacheStallCycles)
}

func cmdAsm(args []string) int {
	fs := flag.NewFlagSet("asm", flag.ExitOnError)
	out := fs.String("o", "", "Output file (default: source with .bin extension)")
	base := fs.Uint("base", 0, "Load base address for label resolution")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim asm [options] <prog.s>\n")
		fs.PrintDefaults()
		return 1
	}
	path := fs.Arg(0)

	prog, err := loader.LoadSource(path, uint32(*base))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(path, ".s")
		outPath = strings.TrimSuffix(outPath, ".asm") + ".bin"
	}

	if err := os.WriteFile(outPath, prog.Code, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		return 1
	}

	fmt.Printf("Wrote %d words to %s\n", len(prog.Code)/4, outPath)
	return 0
}

func cmdDebug(args []string) int {
	fs := flag.NewFlagSet("debug", flag.ExitOnError)
	base := fs.Uint("base", 0, "Load base address")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvsim debug [options] <prog.bin|prog.s>\n")
		fs.PrintDefaults()
		return 1
	}

	prog, err := loader.Load(fs.Arg(0), uint32(*base))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	collector := metrics.NewCollector()
	e := emu.NewEmulator(emu.WithObserver(collector))
	if err := e.LoadProgram(prog.Base, prog.Code); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		return 1
	}

	repl := newREPL(e, collector, os.Stdin, os.Stdout)
	repl.run()
	return 0
}
