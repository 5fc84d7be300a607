package cpu

// int3/intImm8/into implement the software-interrupt opcodes: INT 3
// (0xCC, the one-byte breakpoint form, vector 3), INT imm8 (0xCD), and
// INTO (0xCE, trap into vector 4 only when OF is set).
func (c *CPU) int3() error {
	return c.RaiseSoftwareInterrupt(3)
}

func (c *CPU) intImm8() error {
	n := c.fetchByte()
	return c.RaiseSoftwareInterrupt(n)
}

func (c *CPU) into() error {
	if c.Regs.OF() {
		return c.RaiseSoftwareInterrupt(4)
	}
	return nil
}

// AbortSoftwareInterrupt undoes the FLAGS/CS/IP push RaiseSoftwareInterrupt
// just performed and rewinds IP by instrLen so the same INT instruction is
// fetched again on the CPU's next Step. An intercept handler calls this
// instead of completing the interrupt when it wants to cooperatively block
// on an external condition (such as a BIOS keyboard read with nothing yet
// in the UART's ingress FIFO): rather than suspending execution, control
// returns to the host driver, which gets another chance to feed input
// before the instruction is retried.
func (c *CPU) AbortSoftwareInterrupt(instrLen uint16) {
	ip := c.pop16()
	cs := c.pop16()
	flags := c.pop16()
	c.Regs.IP = ip - instrLen
	c.Regs.CS = cs
	c.Regs.SetFlagsWord(flags)
}
