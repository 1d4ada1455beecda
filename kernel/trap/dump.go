package trap

import "rvkernel/kernel/klog"

// Dump renders the frame to the console, implementing klog.FrameDumper so
// a panic triggered from trap context shows the registers it failed on
// (spec.md §4.8 "Anything else: panic with the frame dumped").
func (f *Frame) Dump() {
	klog.Printf("epc=%x ra=%x sp=%x\n", f.Epc, f.RA, f.SP)
	klog.Printf("a0=%x a1=%x a2=%x a3=%x a4=%x a5=%x a6=%x a7=%x\n",
		f.A0, f.A1, f.A2, f.A3, f.A4, f.A5, f.A6, f.A7)
	klog.Printf("s0=%x s1=%x s2=%x s3=%x s4=%x s5=%x s6=%x s7=%x\n",
		f.S0, f.S1, f.S2, f.S3, f.S4, f.S5, f.S6, f.S7)
	klog.Printf("s8=%x s9=%x s10=%x s11=%x t0=%x t1=%x t2=%x\n",
		f.S8, f.S9, f.S10, f.S11, f.T0, f.T1, f.T2)
	klog.Printf("t3=%x t4=%x t5=%x t6=%x gp=%x tp=%x\n",
		f.T3, f.T4, f.T5, f.T6, f.GP, f.TP)
}
