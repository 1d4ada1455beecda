package cpu

// SBI extension and function IDs used by this kernel, named after the
// encoding other_examples' riscv/rv64/sbi.go table documents on the
// hypervisor side of the same `ecall`.
const (
	sbiExtTimer         = 0x54494D45 // "TIME"
	sbiExtSRST          = 0x53525354 // "SRST"
	sbiExtLegacyPutchar = 0x01

	sbiTimerSetTimer = 0

	sbiSRSTTypeShutdown   = 0
	sbiSRSTReasonNoReason = 0
)

// sbiCall issues an `ecall` with the given extension/function ID and up to
// three arguments, returning the SBI error code and value (a0, a1).
// Implemented in assembly; it is the only place this kernel crosses into
// M-mode/firmware territory.
func sbiCall(ext, fid, arg0, arg1, arg2 uint64) (int64, uint64)

// SBISetTimer arms the next timer interrupt to fire at absolute time
// stopTime (in the platform's timer ticks, per spec.md §6: 10 MHz,
// NANOS_PER_TICK = 100).
func SBISetTimer(stopTime uint64) {
	sbiCall(sbiExtTimer, sbiTimerSetTimer, stopTime, 0, 0)
}

// SBIConsolePutchar writes a single byte via the legacy SBI console
// extension. Used by the default console.Sink (kernel/console is the
// out-of-scope collaborator; this is its simplest real implementation).
func SBIConsolePutchar(b byte) {
	sbiCall(sbiExtLegacyPutchar, 0, uint64(b), 0, 0)
}

// SBIShutdown performs a system reset (Shutdown, NoReason) per spec.md §6's
// process-exit behaviour. Does not return.
func SBIShutdown() {
	sbiCall(sbiExtSRST, 0, sbiSRSTTypeShutdown, sbiSRSTReasonNoReason, 0)
	for {
		WFI()
	}
}
