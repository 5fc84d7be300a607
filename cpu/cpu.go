package cpu

import (
	"fmt"

	"xtcore/memory"
)

// SegmentRegister names one of the four real-mode segment registers, used
// to track an active one-shot segment-override prefix.
type SegmentRegister int

const (
	SegNone SegmentRegister = iota
	SegCS
	SegDS
	SegES
	SegSS
)

// PortBus is the I/O-port side of the machine: IN/OUT instructions read
// and write through it. devices.IOBus satisfies this interface.
type PortBus interface {
	In(port uint16, size uint8) uint32
	Out(port uint16, size uint8, val uint32)
}

// InterruptIntercept is supplied by the BIOS service layer. It is
// consulted on every INT n before the CPU falls back to a real IVT-based
// transfer; returning handled=false lets the normal IVT path proceed.
type InterruptIntercept func(c *CPU, n byte) (handled bool, err error)

// ErrIllegalOpcode is returned (and also halts the CPU) when the fetched
// opcode has no handler.
type ErrIllegalOpcode struct {
	Opcode byte
	CS, IP uint16
}

func (e *ErrIllegalOpcode) Error() string {
	return fmt.Sprintf("illegal opcode 0x%02x at %04x:%04x", e.Opcode, e.CS, e.IP)
}

// ErrDivideByZero is returned by DIV/IDIV and AAM on a zero divisor.
var ErrDivideByZero = fmt.Errorf("cpu: divide by zero")

// ErrDivisionOverflow is returned by DIV/IDIV when the quotient does not
// fit in the destination register. A real CPU signals both this and a
// zero divisor with the same #DE fault; this core keeps them as distinct
// sentinels so host-side diagnostics can tell the two apart.
var ErrDivisionOverflow = fmt.Errorf("cpu: division overflow")

// ErrNotReady is returned by Step when the CPU's boot-time gating checks
// (ROM validity, MBR presence, boot sector presence) have not passed.
type ErrNotReady struct {
	Reason string
}

func (e *ErrNotReady) Error() string { return "cpu: not ready: " + e.Reason }

// CPU is the 8086-class real-mode interpreter. It owns the register file
// and tracks halted/override/gating state; it borrows the memory fabric
// and port bus rather than owning them, since those are shared with the
// BIOS service layer and the host driver.
type CPU struct {
	Regs *Registers
	Mem  *memory.Fabric
	IO   PortBus

	Halted bool

	segOverride SegmentRegister
	repPrefix   byte // 0, 0xF2 (REPNE), or 0xF3 (REP/REPE)

	RetiredInstructions uint64

	mbrPresent         bool
	bootSectorPresent  bool

	Intercept InterruptIntercept
}

// New constructs a CPU wired to the given memory fabric and port bus. The
// two presence flags are computed once by the caller (typically by reading
// LBA 0 and LBA 63 of the virtual disk before the CPU ever runs) and gate
// every subsequent Step call.
func New(mem *memory.Fabric, io PortBus, mbrPresent, bootSectorPresent bool) *CPU {
	c := &CPU{
		Regs: &Registers{},
		Mem:  mem,
		IO:   io,
		mbrPresent:        mbrPresent,
		bootSectorPresent: bootSectorPresent,
	}
	c.Reset()
	return c
}

// Reset restores the power-on register state (CS:IP = F000:FFF0) and
// clears the halted flag, matching the real 8086 reset vector.
func (c *CPU) Reset() {
	*c.Regs = Registers{CS: 0xF000, IP: 0xFFF0}
	c.Halted = false
	c.segOverride = SegNone
	c.repPrefix = 0
}

// ready reports whether the gating checks required before the first
// instruction have passed.
func (c *CPU) ready() error {
	if !c.Mem.ROMValid() {
		return &ErrNotReady{Reason: "no ROM image loaded"}
	}
	if !c.mbrPresent {
		return &ErrNotReady{Reason: "no valid MBR on the boot disk"}
	}
	if !c.bootSectorPresent {
		return &ErrNotReady{Reason: "no valid boot sector on the boot disk"}
	}
	return nil
}

// physicalIP returns the linear address of the next byte to fetch.
func (c *CPU) physicalIP() uint32 {
	return memory.PhysicalAddress(c.Regs.CS, c.Regs.IP)
}

func (c *CPU) fetchByte() byte {
	b := c.Mem.ReadByte(c.physicalIP())
	c.Regs.IP++
	return b
}

func (c *CPU) fetchWord() uint16 {
	lo := c.fetchByte()
	hi := c.fetchByte()
	return uint16(lo) | uint16(hi)<<8
}

// Step executes exactly one instruction, including any prefixes attached
// to it. It is the sole entry point the host driver's cooperative loop
// calls between I/O polls.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}
	if err := c.ready(); err != nil {
		return err
	}

	c.segOverride = SegNone
	c.repPrefix = 0

	for {
		opcode := c.fetchByte()
		switch opcode {
		case 0x26:
			c.segOverride = SegES
			continue
		case 0x2E:
			c.segOverride = SegCS
			continue
		case 0x36:
			c.segOverride = SegSS
			continue
		case 0x3E:
			c.segOverride = SegDS
			continue
		case 0xF0:
			continue // LOCK: no-op, single-core model
		case 0xF2, 0xF3:
			c.repPrefix = opcode
			continue
		default:
			if err := c.execute(opcode); err != nil {
				c.Halted = true
				return err
			}
			c.RetiredInstructions++
			return nil
		}
	}
}

// segmentFor resolves the effective segment to use for a memory operand,
// applying an active override when present and otherwise falling back to
// defaultSeg, the register the addressing mode itself implies (SS for
// BP-based forms, DS otherwise). This is the one true (segment-aware)
// effective-address rule; a duplicate implementation that instead treated
// a ModR/M-computed offset as an already-physical address would silently
// ignore segmentation entirely and must not be replicated.
func (c *CPU) segmentFor(defaultSeg uint16) uint16 {
	switch c.segOverride {
	case SegCS:
		return c.Regs.CS
	case SegDS:
		return c.Regs.DS
	case SegES:
		return c.Regs.ES
	case SegSS:
		return c.Regs.SS
	default:
		return defaultSeg
	}
}

func (c *CPU) readMem8(seg, off uint16) byte {
	return c.Mem.ReadByte(memory.PhysicalAddress(seg, off))
}

func (c *CPU) writeMem8(seg, off uint16, v byte) {
	c.Mem.WriteByte(memory.PhysicalAddress(seg, off), v)
}

func (c *CPU) readMem16(seg, off uint16) uint16 {
	return c.Mem.ReadWord(memory.PhysicalAddress(seg, off))
}

func (c *CPU) writeMem16(seg, off uint16, v uint16) {
	c.Mem.WriteWord(memory.PhysicalAddress(seg, off), v)
}

func (c *CPU) push16(v uint16) {
	c.Regs.SP -= 2
	c.writeMem16(c.Regs.SS, c.Regs.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.readMem16(c.Regs.SS, c.Regs.SP)
	c.Regs.SP += 2
	return v
}

// RaiseSoftwareInterrupt performs the documented INT n transfer: push
// FLAGS, CS, IP, clear IF and TF, then either hand off to the intercept
// (for the host-emulated BIOS interrupts) or load CS:IP from the real IVT.
func (c *CPU) RaiseSoftwareInterrupt(n byte) error {
	c.push16(c.Regs.Flags)
	c.push16(c.Regs.CS)
	c.push16(c.Regs.IP)
	c.Regs.SetIF(false)
	c.Regs.SetTF(false)

	if c.Intercept != nil {
		handled, err := c.Intercept(c, n)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}

	vectorAddr := uint32(n) * 4
	ip := c.Mem.ReadWord(vectorAddr)
	cs := c.Mem.ReadWord(vectorAddr + 2)
	c.Regs.IP = ip
	c.Regs.CS = cs
	return nil
}

// IRET pops IP, CS, FLAGS in that order, the inverse of RaiseSoftwareInterrupt.
func (c *CPU) iret() {
	c.Regs.IP = c.pop16()
	c.Regs.CS = c.pop16()
	c.Regs.SetFlagsWord(c.pop16())
}
