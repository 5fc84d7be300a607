package bios

import "xtcore/cpu"

// system15 implements INT 15h: miscellaneous system services. This
// machine supports none of the extended-memory or APM functions real
// BIOSes expose; only AH=0x88 (get extended memory size) returns a
// defined result, AX=0, since no extended memory exists. Every other
// function fails with CF set.
func (s *Services) system15(c *cpu.CPU) {
	if c.Regs.AH() == 0x88 {
		c.Regs.AX = 0
		c.Regs.SetCF(false)
		return
	}
	c.Regs.SetCF(true)
}

// time1A implements INT 1Ah: time-of-day services. AH=0x00 reads the
// system tick counter derived from retired instructions, calibrated to
// approximate the real 18.2 Hz BIOS tick rate; AH=0x02 reads the host
// wall-clock hour and minute.
func (s *Services) time1A(c *cpu.CPU) {
	switch c.Regs.AH() {
	case 0x00:
		ticks := uint32(c.RetiredInstructions / instructionsPerTick)
		c.Regs.SetAL(0)
		c.Regs.CX = uint16(ticks >> 16)
		c.Regs.DX = uint16(ticks)
		c.Regs.SetCF(false)
	case 0x02:
		now := s.now()
		c.Regs.SetCH(byte(now.Hour()))
		c.Regs.SetCL(byte(now.Minute()))
		c.Regs.SetCF(false)
	default:
		c.Regs.SetCF(true)
	}
}
