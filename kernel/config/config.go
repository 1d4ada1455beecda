// Package config collects the scheduler/timer tunables spec.md §6 and
// original_source/axconfig fix as build-time constants, the same way
// gopher-os keeps arch tunables as typed constants rather than a config
// file or flag set: there is nothing to parse at boot, only numbers the
// linker/hardware already agree on.
package config

import "rvkernel/kernel/mem"

// TaskStackSize is the default kernel stack size for a spawned task.
const TaskStackSize = mem.Size(0x40000) // 256 KiB

// MaxTimeSlice is the number of timer ticks a task runs before being
// marked for preemption (spec.md §4.10).
const MaxTimeSlice = 5

// TicksPerSec is the scheduler's logical tick rate.
const TicksPerSec = 100

// TimerFreqHz is the platform timer frequency (spec.md §6: 10 MHz).
const TimerFreqHz = 10_000_000

// NanosPerTick is the wall-clock duration of one platform timer tick.
const NanosPerTick = 100

// NanosPerSec is used to derive the periodic rearm interval.
const NanosPerSec = 1_000_000_000

// PeriodicIntervalNanos is the timer rearm interval: NANOS_PER_SEC / TICKS_PER_SEC.
const PeriodicIntervalNanos = NanosPerSec / TicksPerSec

// BuddySeedChunk is the initial heap handed to the buddy allocator during
// the phase transition (spec.md §4.5 step 2).
const BuddySeedChunk = mem.Size(32 * 1024)

// MaxExternalIRQ bounds the external IRQ handler table (spec.md §4.12).
const MaxExternalIRQ = 1024

// INTCMask is the bit that distinguishes an interrupt cause from an
// exception cause in scause (RISC-V: the top bit of the XLEN-wide value).
const INTCMask = uint64(1) << 63
