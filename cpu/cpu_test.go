package cpu

import (
	"errors"
	"testing"

	"xtcore/memory"
)

// nullBus satisfies PortBus for tests that never touch I/O ports.
type nullBus struct{}

func (nullBus) In(port uint16, size uint8) uint32        { return 0xFFFFFFFF }
func (nullBus) Out(port uint16, size uint8, val uint32)   {}

func newTestCPU(t *testing.T) *CPU {
	t.Helper()
	mem := memory.New()
	if err := mem.LoadROM(nil); err != nil {
		t.Fatalf("loading empty rom: %v", err)
	}
	return New(mem, nullBus{}, true, true)
}

// load writes code at 1000:0000 and points CS:IP there, a plain RAM segment
// away from the ROM aperture where Reset leaves CS:IP (F000:FFF0).
func load(t *testing.T, c *CPU, code []byte) {
	t.Helper()
	c.Regs.CS = 0x1000
	c.Regs.IP = 0x0000
	c.Mem.WriteBlock(memory.PhysicalAddress(0x1000, 0x0000), code)
}

func TestPushPopRoundTripRegister(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.SS = 0x2000
	c.Regs.SP = 0x1000
	c.Regs.BX = 0xBEEF

	spBefore := c.Regs.SP
	c.push16(c.Regs.BX)
	if c.Regs.SP == spBefore {
		t.Fatal("expected SP to move after push16")
	}
	c.Regs.BX = 0
	c.Regs.BX = c.pop16()
	if c.Regs.BX != 0xBEEF {
		t.Fatalf("expected BX=0xBEEF after pop16, got 0x%04x", c.Regs.BX)
	}
	if c.Regs.SP != spBefore {
		t.Fatalf("expected SP restored to 0x%04x, got 0x%04x", spBefore, c.Regs.SP)
	}
}

func TestPushfPopfRoundTrip(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.SS = 0x2000
	c.Regs.SP = 0x1000
	c.Regs.SetCF(true)
	c.Regs.SetZF(true)
	c.Regs.SetOF(false)

	before := c.Regs.Flags
	c.push16(before)
	c.Regs.SetFlagsWord(c.pop16())
	if c.Regs.Flags != before {
		t.Fatalf("expected FLAGS round-trip: before=0x%04x after=0x%04x", before, c.Regs.Flags)
	}
}

func TestXorRegSelfClearsAndSetsZF(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.AX = 0x1234
	res := c.alu16(aluXor, c.Regs.AX, c.Regs.AX)
	c.Regs.AX = res
	if c.Regs.AX != 0 {
		t.Fatalf("expected AX=0, got 0x%04x", c.Regs.AX)
	}
	if !c.Regs.ZF() {
		t.Fatal("expected ZF set")
	}
	if c.Regs.CF() || c.Regs.OF() {
		t.Fatal("expected CF and OF clear after XOR r,r")
	}
	if !c.Regs.PF() {
		t.Fatal("expected PF set (even parity of zero byte)")
	}
}

func TestIPWraparoundAcrossSegment(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.CS = 0x1000
	c.Regs.IP = 0xFFFF
	c.Mem.WriteByte(memory.PhysicalAddress(0x1000, 0xFFFF), 0x90) // NOP at CS:FFFF
	c.Mem.WriteByte(memory.PhysicalAddress(0x1000, 0x0000), 0xF4) // HLT at CS:0000

	if err := c.Step(); err != nil {
		t.Fatalf("unexpected error stepping NOP: %v", err)
	}
	if c.Regs.IP != 0x0000 {
		t.Fatalf("expected IP to wrap to 0x0000, got 0x%04x", c.Regs.IP)
	}
	if err := c.Step(); err != nil {
		t.Fatalf("unexpected error stepping HLT: %v", err)
	}
	if !c.Halted {
		t.Fatal("expected CPU halted after wrapped fetch of HLT")
	}
}

func TestMulAXAXOverflow(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.AX = 0xFFFF
	load(t, c, []byte{0xF7, 0xE0}) // MUL AX (mod=11 reg=100 rm=000)
	if err := c.Step(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Regs.DX != 0xFFFE || c.Regs.AX != 0x0001 {
		t.Fatalf("expected DX:AX = 0xFFFE0001, got 0x%04x%04x", c.Regs.DX, c.Regs.AX)
	}
	if !c.Regs.CF() || !c.Regs.OF() {
		t.Fatal("expected CF and OF set on MUL overflow")
	}
}

func TestAdditiveOverflowFlagSignMismatch(t *testing.T) {
	c := newTestCPU(t)
	// 0x7FFF + 0x0001 = 0x8000: positive + positive = negative => OF set.
	res := c.alu16(aluAdd, 0x7FFF, 0x0001)
	if res != 0x8000 {
		t.Fatalf("expected 0x8000, got 0x%04x", res)
	}
	if !c.Regs.OF() {
		t.Fatal("expected OF set for signed overflow 0x7FFF+1")
	}
	if c.Regs.CF() {
		t.Fatal("expected CF clear: no unsigned carry out of 0x7FFF+1")
	}
}

func TestShiftSetsCarryToLastBitShiftedOut(t *testing.T) {
	c := newTestCPU(t)
	res := c.shift8(srShl, 0x80, 1)
	if res != 0x00 {
		t.Fatalf("expected 0, got 0x%02x", res)
	}
	if !c.Regs.CF() {
		t.Fatal("expected CF set to the bit shifted out of 0x80<<1")
	}
}

func TestDivByZeroReturnsErrDivideByZero(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.AX = 10
	c.Regs.CX = 0x0000
	load(t, c, []byte{0xF6, 0xF1}) // DIV CL (mod=11 reg=110 rm=001), CL=0
	err := c.Step()
	if !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("expected ErrDivideByZero, got %v", err)
	}
	if errors.Is(err, ErrDivisionOverflow) {
		t.Fatal("zero divisor must not also match ErrDivisionOverflow")
	}
}

func TestDivQuotientOverflowReturnsErrDivisionOverflow(t *testing.T) {
	c := newTestCPU(t)
	// AX=0x0100, CL=1: quotient 256 does not fit in AL.
	c.Regs.AX = 0x0100
	c.Regs.CX = 0x0001
	load(t, c, []byte{0xF6, 0xF1}) // DIV CL
	err := c.Step()
	if !errors.Is(err, ErrDivisionOverflow) {
		t.Fatalf("expected ErrDivisionOverflow, got %v", err)
	}
	if errors.Is(err, ErrDivideByZero) {
		t.Fatal("quotient overflow must not also match ErrDivideByZero")
	}
}

func TestAbortSoftwareInterruptRewindsIP(t *testing.T) {
	c := newTestCPU(t)
	c.Regs.SS = 0x2000
	c.Regs.SP = 0x1000
	c.Regs.CS = 0x1000
	// IP as Step leaves it after fetching a 2-byte INT at 1000:0010.
	startIP := uint16(0x0010)
	c.Regs.IP = startIP + 2

	if err := c.RaiseSoftwareInterrupt(0x16); err != nil {
		t.Fatalf("unexpected error raising interrupt: %v", err)
	}
	c.AbortSoftwareInterrupt(2)
	if c.Regs.IP != startIP {
		t.Fatalf("expected IP rewound to 0x%04x, got 0x%04x", startIP, c.Regs.IP)
	}
	if c.Regs.SP != 0x1000 {
		t.Fatalf("expected SP restored to 0x1000, got 0x%04x", c.Regs.SP)
	}
}
