package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/rvsim/debugger"
	"github.com/sarchlab/rvsim/emu"
	"github.com/sarchlab/rvsim/metrics"
)

// repl is the line-oriented debugger front-end. All emulator access goes
// through the debugger's command surface; the REPL only parses input and
// renders structured results.
type repl struct {
	dbg       *debugger.Debugger
	collector *metrics.Collector
	in        io.Reader
	out       io.Writer
}

func newREPL(e *emu.Emulator, collector *metrics.Collector, in io.Reader, out io.Writer) *repl {
	return &repl{
		dbg:       debugger.New(e),
		collector: collector,
		in:        in,
		out:       out,
	}
}

func (r *repl) run() {
	fmt.Fprintf(r.out, "debugger started. type 'help' for commands\n")

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprintf(r.out, "(dbg) ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := fields[0], fields[1:]; cmd {
		case "help", "h":
			r.printHelp()
		case "step", "s":
			r.step(args)
		case "continue", "c":
			r.report(r.dbg.Continue())
		case "break", "b":
			r.breakpoint(args)
		case "delete", "d":
			r.delete(args)
		case "breaks":
			for _, addr := range r.dbg.Breakpoints() {
				fmt.Fprintf(r.out, "  0x%08X\n", addr)
			}
		case "regs", "r":
			r.dumpRegs()
		case "reg":
			r.readReg(args)
		case "mem", "m":
			r.dumpMem(args)
		case "dis":
			r.disassemble(args)
		case "pc":
			fmt.Fprintf(r.out, "pc = 0x%08X\n", r.dbg.PC())
		case "metrics":
			fmt.Fprint(r.out, r.collector.Report())
		case "reset":
			r.dbg.Emulator().Reset()
			r.collector.Reset()
			fmt.Fprintf(r.out, "reset; pc = 0x%08X\n", r.dbg.PC())
		case "quit", "q":
			return
		default:
			fmt.Fprintf(r.out, "unknown command: %s\n", cmd)
		}
	}
}

func (r *repl) printHelp() {
	fmt.Fprint(r.out, `commands:
  step (s) [n]       - execute one (or n) instructions
  continue (c)       - run until breakpoint or halt
  break (b) <addr>   - set breakpoint at address
  delete (d) <addr>  - remove breakpoint at address
  breaks             - list breakpoints
  regs (r)           - dump register file
  reg <name>         - read one register (x5, t0, pc, ...)
  mem (m) <addr> [n] - dump n memory words at address
  dis [addr] [n]     - disassemble n instructions from address
  pc                 - show program counter
  metrics            - show execution metrics
  reset              - restart the loaded program
  quit (q)           - exit debugger
`)
}

func (r *repl) step(args []string) {
	n := 1
	if len(args) > 0 {
		parsed, err := strconv.Atoi(args[0])
		if err != nil || parsed < 1 {
			fmt.Fprintf(r.out, "bad step count: %s\n", args[0])
			return
		}
		n = parsed
	}
	for i := 0; i < n; i++ {
		pc := r.dbg.PC()
		result := r.dbg.Step()
		if result.Err != nil || result.Halted {
			r.report(result)
			return
		}
		if lines, err := r.dbg.Disassemble(pc, 1); err == nil {
			fmt.Fprintf(r.out, "0x%08X: %s\n", pc, lines[0].Text)
		}
	}
}

func (r *repl) report(result emu.StepResult) {
	switch {
	case result.Err != nil:
		fmt.Fprintf(r.out, "error: %v\n", result.Err)
	case result.Halted:
		fmt.Fprintf(r.out, "program halted at 0x%08X\n", r.dbg.PC())
	default:
		fmt.Fprintf(r.out, "stopped at breakpoint 0x%08X\n", r.dbg.PC())
	}
}

func (r *repl) breakpoint(args []string) {
	addr, ok := r.parseAddr(args, "break <addr>")
	if !ok {
		return
	}
	if err := r.dbg.AddBreakpoint(addr); err != nil {
		fmt.Fprintf(r.out, "%v\n", err)
		return
	}
	fmt.Fprintf(r.out, "breakpoint set at 0x%08X\n", addr)
}

func (r *repl) delete(args []string) {
	addr, ok := r.parseAddr(args, "delete <addr>")
	if !ok {
		return
	}
	if err := r.dbg.RemoveBreakpoint(addr); err != nil {
		fmt.Fprintf(r.out, "%v\n", err)
		return
	}
	fmt.Fprintf(r.out, "breakpoint removed at 0x%08X\n", addr)
}

func (r *repl) dumpRegs() {
	fmt.Fprintf(r.out, "pc  = 0x%08X\n", r.dbg.PC())
	for _, reg := range r.dbg.Registers() {
		fmt.Fprintf(r.out, "%-4s= 0x%08X (%d)\n", reg.Name, reg.Value, int32(reg.Value))
	}
}

func (r *repl) readReg(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "usage: reg <name>\n")
		return
	}
	value, err := r.dbg.Register(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%v\n", err)
		return
	}
	fmt.Fprintf(r.out, "%s = 0x%08X (%d)\n", args[0], value, int32(value))
}

func (r *repl) dumpMem(args []string) {
	if len(args) < 1 {
		fmt.Fprintf(r.out, "usage: mem <addr> [n]\n")
		return
	}
	addr, ok := r.parseAddr(args[:1], "mem <addr> [n]")
	if !ok {
		return
	}
	count := 4
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(r.out, "bad count: %s\n", args[1])
			return
		}
		count = parsed
	}
	words, err := r.dbg.ReadMemory(addr, count)
	if err != nil {
		fmt.Fprintf(r.out, "%v\n", err)
		return
	}
	for i, word := range words {
		fmt.Fprintf(r.out, "0x%08X: 0x%08X\n", addr+uint32(i)*4, word)
	}
}

func (r *repl) disassemble(args []string) {
	addr := r.dbg.PC()
	if len(args) > 0 {
		parsed, ok := r.parseAddr(args[:1], "dis [addr] [n]")
		if !ok {
			return
		}
		addr = parsed
	}
	count := 8
	if len(args) > 1 {
		parsed, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintf(r.out, "bad count: %s\n", args[1])
			return
		}
		count = parsed
	}
	lines, err := r.dbg.Disassemble(addr, count)
	if err != nil {
		fmt.Fprintf(r.out, "%v\n", err)
		return
	}
	for _, line := range lines {
		marker := "  "
		if line.Current {
			marker = "=>"
		}
		fmt.Fprintf(r.out, "%s 0x%08X: %08X  %s\n", marker, line.Addr, line.Word, line.Text)
	}
}

func (r *repl) parseAddr(args []string, usage string) (uint32, bool) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "usage: %s\n", usage)
		return 0, false
	}
	addr, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		fmt.Fprintf(r.out, "bad address: %s\n", args[0])
		return 0, false
	}
	return uint32(addr), true
}
