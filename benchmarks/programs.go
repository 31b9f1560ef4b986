package benchmarks

import "strconv"

// StorePattern exercises the full instruction mix: ALU, upper immediates,
// a store/load round trip, and a conditional branch that decides the
// result register.
func StorePattern() Benchmark {
	return Benchmark{
		Name:        "store_pattern",
		Description: "ALU chain, store/load round trip, branch on equality",
		Source: `
			addi x1, x0, 42
			addi x2, x1, 8
			add  x3, x1, x2
			sub  x4, x3, x1
			lui  x5, 0x10
			sw   x4, 0(x5)
			lw   x6, 0(x5)
			beq  x4, x6, success
			jal  x0, 0
			success: addi x10, x0, 1
			jal  x0, 0
		`,
	}
}

// Fibonacci computes fib(n) iteratively into x10.
func Fibonacci(n int) Benchmark {
	return Benchmark{
		Name:        "fibonacci",
		Description: "iterative fibonacci, loop with a backward jump",
		Source: `
			.equ N = ` + itoa(n) + `
			addi x10, x0, 0
			addi x11, x0, 1
			addi x5, x0, N
			addi x6, x0, 0
			loop: bge x6, x5, done
			add  x12, x10, x11
			mv   x10, x11
			mv   x11, x12
			addi x6, x6, 1
			jal  x0, loop
			done: jal x0, 0
		`,
	}
}

// SumBelow sums the integers 1..n-1 into x10. The exit test runs before
// the add, so the terminal value n is never accumulated.
func SumBelow(n int) Benchmark {
	return Benchmark{
		Name:        "sum_below",
		Description: "counting loop with an exclusive upper bound",
		Source: `
			.equ N = ` + itoa(n) + `
			addi x10, x0, 0
			addi x5, x0, N
			addi x6, x0, 1
			loop: bge x6, x5, done
			add  x10, x10, x6
			addi x6, x6, 1
			jal  x0, loop
			done: jal x0, 0
		`,
	}
}

// ArithmeticChain is a dependency chain of ALU operations, one result
// feeding the next.
func ArithmeticChain() Benchmark {
	return Benchmark{
		Name:        "arithmetic_chain",
		Description: "serial ALU dependency chain",
		Source: `
			addi x1, x0, 1
			add  x2, x1, x1
			add  x3, x2, x2
			add  x4, x3, x3
			add  x5, x4, x4
			slli x6, x5, 4
			srai x7, x6, 2
			xor  x8, x7, x5
			jal  x0, 0
		`,
	}
}

// MemoryWalk stores and reloads a sequence of words, stressing the data
// cache model with a striding access pattern.
func MemoryWalk(words int) Benchmark {
	return Benchmark{
		Name:        "memory_walk",
		Description: "striding store/load walk over a buffer",
		Source: `
			.equ COUNT = ` + itoa(words) + `
			lui  x5, 0x10
			addi x7, x0, COUNT
			addi x6, x0, 0
			store: bge x6, x7, reload
			slli x8, x6, 2
			add  x9, x5, x8
			sw   x6, 0(x9)
			addi x6, x6, 1
			jal  x0, store
			reload: addi x6, x0, 0
			addi x10, x0, 0
			load: bge x6, x7, done
			slli x8, x6, 2
			add  x9, x5, x8
			lw   x11, 0(x9)
			add  x10, x10, x11
			addi x6, x6, 1
			jal  x0, load
			done: jal x0, 0
		`,
	}
}

// Standard returns the default benchmark set.
func Standard() []Benchmark {
	return []Benchmark{
		StorePattern(),
		Fibonacci(10),
		SumBelow(100),
		ArithmeticChain(),
		MemoryWalk(64),
	}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
