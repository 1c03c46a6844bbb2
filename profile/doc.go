// Package profile provides optional runtime profiling for the derap
// application.
//
// Profiling wraps [github.com/pkg/profile] and must be enabled at build time
// using the "pprof" build tag. Without the tag, [Modes] is empty and
// [Profiler.Start] returns a no-op.
//
// # Modes
//
// The following profiling modes are supported when built with the pprof tag:
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Usage
//
//	p := profile.Make(profile.WithMode("cpu"), profile.WithPath(dir))
//	defer p.Start().Stop()
//
// From the command line:
//
//	go build -tags pprof .
//	./derap --pprof-mode cpu classes
//	go tool pprof -http=: ~/.cache/derap/pprof/cpu.pprof
//
// Decoding large batches is dominated by the cursor's primitive reads and the
// per-class allocations of the decoder, so cpu and allocs are the modes worth
// starting with.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
