package cpu

// cbw implements CBW (0x98): sign-extend AL into AX.
func (c *CPU) cbw() {
	c.Regs.AX = uint16(int16(int8(byte(c.Regs.AX))))
}

// cwd implements CWD (0x99): sign-extend AX into DX:AX.
func (c *CPU) cwd() {
	if c.Regs.AX&0x8000 != 0 {
		c.Regs.DX = 0xFFFF
	} else {
		c.Regs.DX = 0x0000
	}
}

// aam implements AAM imm8 (0xD4): unpack AL into unpacked BCD in AH:AL by
// dividing by the instruction's base (almost always 10).
func (c *CPU) aam() error {
	base := c.fetchByte()
	if base == 0 {
		return ErrDivideByZero
	}
	al := byte(c.Regs.AX)
	ah := al / base
	al = al % base
	c.Regs.AX = uint16(ah)<<8 | uint16(al)
	c.updateLogical8(al)
	return nil
}

// salc implements SALC (0xD6, undocumented): AL <- 0xFF if CF else 0x00.
func (c *CPU) salc() {
	if c.Regs.CF() {
		c.Regs.setReg8(0, 0xFF)
	} else {
		c.Regs.setReg8(0, 0x00)
	}
}

// hlt implements HLT (0xF4): stop instruction execution until the next
// reset. Step becomes a no-op while Halted is set.
func (c *CPU) hlt() {
	c.Halted = true
}
