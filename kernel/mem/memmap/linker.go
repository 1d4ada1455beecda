package memmap

// Linker-provided symbols (spec.md §6). Each is declared as a zero-size
// byte so that &sym yields the address the linker script assigned it;
// none of these have Go-visible storage.
var (
	Stext, Etext     byte
	Srodata, Erodata byte
	Sdata, Edata     byte
	Sbss, Ebss       byte
	Skernel, Ekernel byte
	BootStack        byte
	BootStackTop     byte
	BootPageTableSym byte
	TrapVectorBase   byte
)
