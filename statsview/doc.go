// Package statsview launches a runtime statistics server for profiling
// the simulator itself during long runs. It is only active when the
// binary is built with the statsview tag:
//
//	go build -tags statsview ./cmd/rvsim
//
// Without the tag, Launch is a no-op and Available reports false.
package statsview
