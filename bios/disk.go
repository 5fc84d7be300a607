package bios

import (
	"xtcore/cpu"
	"xtcore/memory"
)

// disk13 implements INT 13h: disk services. AH=0x00 resets the controller
// (always succeeds), AH=0x02 reads AL sectors starting at the CHS address
// in CL/CH/DH/DL into ES:BX, and AH=0xC0 reports the drive's fixed
// geometry for DL=0x80. Every other function fails with CF set, matching
// a real BIOS's response to an unsupported disk function.
func (s *Services) disk13(c *cpu.CPU) {
	switch c.Regs.AH() {
	case 0x00:
		c.Regs.SetCF(false)
	case 0x02:
		s.readSectorsCHS(c)
	case 0xC0:
		s.driveParameters(c)
	default:
		c.Regs.SetCF(true)
	}
}

func (s *Services) readSectorsCHS(c *cpu.CPU) {
	sector := c.Regs.CL() & 0x3F
	cylinderHi := uint32(c.Regs.CL()&0xC0) >> 6
	cylinder := cylinderHi<<8 | uint32(c.Regs.CH())
	head := uint32(c.Regs.DH())
	count := c.Regs.AL()

	if sector == 0 {
		c.Regs.SetAH(0x01)
		c.Regs.SetCF(true)
		return
	}

	lba := (cylinder*headsPerCylinder + head) * sectorsPerTrack + uint32(sector-1)

	bufSeg := c.Regs.ES
	bufOff := c.Regs.BX
	for i := uint16(0); i < uint16(count); i++ {
		data := s.Disk.ReadSector(lba + uint32(i))
		dest := memory.PhysicalAddress(bufSeg, bufOff+i*512)
		c.Mem.WriteBlock(dest, data)
	}

	c.Regs.SetAL(count)
	c.Regs.SetCF(false)
}

func (s *Services) driveParameters(c *cpu.CPU) {
	if c.Regs.DL() != 0x80 {
		c.Regs.SetAH(0x01)
		c.Regs.SetCF(true)
		return
	}
	cylinders, heads, spt := s.Disk.Geometry()
	maxCylinder := uint16(cylinders - 1)

	c.Regs.SetAH(0x00)
	c.Regs.SetAL(0x00)
	c.Regs.SetBL(0x04) // drive type: fixed disk
	c.Regs.SetCH(byte(maxCylinder))
	c.Regs.SetCL(byte(maxCylinder>>8)<<6 | spt)
	c.Regs.SetDH(heads - 1)
	c.Regs.SetDL(0x01) // one fixed disk present
	c.Regs.SetCF(false)
}
