package cpu

// inByte/inWord/outByte/outWord implement the IN/OUT opcode family
// (0xE4/0xE5 imm8 port, 0xEC/0xED DX port, 0xE6/0xE7 imm8 port, 0xEE/0xEF
// DX port) by delegating to the port bus.

func (c *CPU) inByteImm() {
	port := uint16(c.fetchByte())
	c.Regs.setReg8(0, byte(c.IO.In(port, 1)))
}

func (c *CPU) inWordImm() {
	port := uint16(c.fetchByte())
	c.Regs.AX = uint16(c.IO.In(port, 2))
}

func (c *CPU) inByteDX() {
	c.Regs.setReg8(0, byte(c.IO.In(c.Regs.DX, 1)))
}

func (c *CPU) inWordDX() {
	c.Regs.AX = uint16(c.IO.In(c.Regs.DX, 2))
}

func (c *CPU) outByteImm() {
	port := uint16(c.fetchByte())
	c.IO.Out(port, 1, uint32(c.Regs.reg8(0)))
}

func (c *CPU) outWordImm() {
	port := uint16(c.fetchByte())
	c.IO.Out(port, 2, uint32(c.Regs.AX))
}

func (c *CPU) outByteDX() {
	c.IO.Out(c.Regs.DX, 1, uint32(c.Regs.reg8(0)))
}

func (c *CPU) outWordDX() {
	c.IO.Out(c.Regs.DX, 2, uint32(c.Regs.AX))
}
