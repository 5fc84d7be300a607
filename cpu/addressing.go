package cpu

// modrm is a decoded ModR/M byte: mod (addressing mode), reg (register
// field, used as either a register operand or a group opcode selector),
// and rm (the r/m field selecting a register or an addressing form).
type modrm struct {
	mod, reg, rm byte
}

func (c *CPU) fetchModRM() modrm {
	b := c.fetchByte()
	return modrm{mod: b >> 6, reg: (b >> 3) & 0x07, rm: b & 0x07}
}

// effectiveAddress computes the offset and segment for a memory operand
// per standard 8086 ModR/M rules: mod=00/rm=110 is a direct 16-bit
// displacement (always DS-relative, never BP-based); all other rm values
// combine one or two base/index registers with an optional disp8/disp16.
// BP-based forms default to SS; everything else defaults to DS. An active
// segment-override prefix replaces whichever default would otherwise
// apply — the correct, segment-aware behavior. A sibling implementation
// that instead used the raw ModR/M offset as an already-physical address
// would skip this segment selection entirely and is not the one to trust.
func (c *CPU) effectiveAddress(m modrm) (offset, segment uint16) {
	if m.mod == 0 && m.rm == 6 {
		disp := c.fetchWord()
		return disp, c.segmentFor(c.Regs.DS)
	}

	var base uint16
	usesBP := false
	switch m.rm {
	case 0:
		base = c.Regs.BX + c.Regs.SI
	case 1:
		base = c.Regs.BX + c.Regs.DI
	case 2:
		base = c.Regs.BP + c.Regs.SI
		usesBP = true
	case 3:
		base = c.Regs.BP + c.Regs.DI
		usesBP = true
	case 4:
		base = c.Regs.SI
	case 5:
		base = c.Regs.DI
	case 6:
		base = c.Regs.BP
		usesBP = true
	case 7:
		base = c.Regs.BX
	}

	switch m.mod {
	case 1:
		disp := int16(int8(c.fetchByte()))
		base += uint16(disp)
	case 2:
		disp := c.fetchWord()
		base += disp
	}

	defaultSeg := c.Regs.DS
	if usesBP {
		defaultSeg = c.Regs.SS
	}
	return base, c.segmentFor(defaultSeg)
}

// getRM8 reads an 8-bit r/m operand: a register when mod==3, otherwise a
// memory byte at the computed effective address.
func (c *CPU) getRM8(m modrm) byte {
	if m.mod == 3 {
		return c.Regs.reg8(m.rm)
	}
	off, seg := c.effectiveAddress(m)
	return c.readMem8(seg, off)
}

func (c *CPU) setRM8(m modrm, v byte) {
	if m.mod == 3 {
		c.Regs.setReg8(m.rm, v)
		return
	}
	off, seg := c.effectiveAddress(m)
	c.writeMem8(seg, off, v)
}

func (c *CPU) getRM16(m modrm) uint16 {
	if m.mod == 3 {
		return c.Regs.reg16(m.rm)
	}
	off, seg := c.effectiveAddress(m)
	return c.readMem16(seg, off)
}

func (c *CPU) setRM16(m modrm, v uint16) {
	if m.mod == 3 {
		c.Regs.setReg16(m.rm, v)
		return
	}
	off, seg := c.effectiveAddress(m)
	c.writeMem16(seg, off, v)
}

// rmAddr returns the linear memory offset/segment pair for m, regardless
// of mod — used by instructions (LEA, LES/LDS, far CALL/JMP through
// memory) that need the address itself rather than the value it holds.
// It is only valid to call when mod != 3.
func (c *CPU) rmAddr(m modrm) (offset, segment uint16) {
	return c.effectiveAddress(m)
}
