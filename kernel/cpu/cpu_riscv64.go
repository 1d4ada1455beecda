// Package cpu declares the RISC-V 64 primitives the kernel core needs:
// supervisor CSR access, interrupt masking, TLB maintenance and halting
// (the context-switch leaf call is kernel/task's Switch). Every function
// below has no Go body — it is
// implemented in the architecture's assembly support file, exactly as
// gopher-os declares archAcquireSpinlock and friends for amd64.
package cpu

// Supervisor CSR addresses, named the way other_examples' rv64 CSR table
// names them (CSRSstatus, CSRSie, ...).
const (
	CSRSstatus = 0x100
	CSRSie     = 0x104
	CSRStvec   = 0x105
	CSRSscratch = 0x140
	CSRSepc    = 0x141
	CSRScause  = 0x142
	CSRStval   = 0x143
	CSRSip     = 0x144
	CSRSatp    = 0x180
)

// sstatus.SIE is bit 1: the supervisor interrupt-enable bit.
const SstatusSIE = uint64(1) << 1

// sie/sip bit positions for the three interrupt classes this kernel cares
// about.
const (
	SIESSIE = uint64(1) << 1 // supervisor software interrupt enable
	SIESTIE = uint64(1) << 5 // supervisor timer interrupt enable
	SIESEIE = uint64(1) << 9 // supervisor external interrupt enable
)

// satp modes (Sv39 occupies the top 4 bits).
const SatpModeSv39 = uint64(8) << 60

// ReadSstatus returns the current sstatus CSR value.
func ReadSstatus() uint64

// WriteSstatus writes the sstatus CSR.
func WriteSstatus(v uint64)

// ReadSie returns the sie CSR value.
func ReadSie() uint64

// WriteSie writes the sie CSR.
func WriteSie(v uint64)

// ReadSatp returns the satp CSR value.
func ReadSatp() uint64

// WriteSatp writes the satp CSR and issues an sfence.vma covering the
// whole address space.
func WriteSatp(v uint64)

// WriteStvec installs the trap vector base address (direct mode).
func WriteStvec(addr uintptr)

// DisableInterrupts clears sstatus.SIE and returns the previous value of
// the bit (1 if it was set). Used by kernel/sync's IrqSave guard.
func DisableInterrupts() uint64

// RestoreInterrupts restores sstatus.SIE to the value returned by a prior
// DisableInterrupts call.
func RestoreInterrupts(prev uint64)

// EnableInterrupts unconditionally sets sstatus.SIE. Called once after
// scheduler and device init complete (spec.md §4.12).
func EnableInterrupts()

// FlushTLBAll issues sfence.vma with no operands, flushing every TLB entry.
func FlushTLBAll()

// FlushTLBPage issues sfence.vma for a single virtual address.
func FlushTLBPage(virtAddr uintptr)

// ReadTime returns the unprivileged `time` CSR: the platform timer's free-
// running counter, used to compute the next rearm deadline (spec.md
// §4.12, §6's TICKS_PER_SEC/NANOS_PER_TICK timer geometry).
func ReadTime() uint64

// ReadScause returns the supervisor cause CSR: the trap vector's dispatch
// key (spec.md §4.8 "Trap vector"), read inside the trap handler before
// interrupts are ever re-enabled.
func ReadScause() uint64

// ReadStval returns the supervisor trap value CSR (the faulting address
// or instruction bits, depending on cause).
func ReadStval() uint64

// Halt parks the hart in an infinite wfi loop. Used by klog.Panic (its
// default haltFn).
func Halt()

// WFI executes a single wait-for-interrupt instruction.
func WFI()

// Mhartid (really read once at boot and threaded through as an argument,
// kept here for symmetry with the CSR set above) is not exposed: hartid
// arrives as _start's a0 register per spec.md §6 and is passed explicitly.
