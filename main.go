// Package main provides the entry point for RVSim.
// RVSim is an RV32I emulator with an assembler, debugger, and timing model.
//
// For the full CLI, use: go run ./cmd/rvsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("RVSim - RV32I Emulator")
	fmt.Println("")
	fmt.Println("Usage: rvsim <command> [options] <program>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run      Load a program and run it to completion")
	fmt.Println("  asm      Assemble a source file into a word image")
	fmt.Println("  debug    Start an interactive debugging session")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/rvsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/rvsim' instead.")
	}
}
