package cpu

// condition evaluates one of the sixteen Jcc condition codes (the low
// nibble of opcodes 0x70-0x7F and 0x0F 0x80-0x8F) against the current
// flags.
func (c *CPU) condition(code byte) bool {
	r := c.Regs
	switch code & 0x0F {
	case 0x0: // JO
		return r.OF()
	case 0x1: // JNO
		return !r.OF()
	case 0x2: // JB/JC/JNAE
		return r.CF()
	case 0x3: // JAE/JNB/JNC
		return !r.CF()
	case 0x4: // JE/JZ
		return r.ZF()
	case 0x5: // JNE/JNZ
		return !r.ZF()
	case 0x6: // JBE/JNA
		return r.CF() || r.ZF()
	case 0x7: // JA/JNBE
		return !r.CF() && !r.ZF()
	case 0x8: // JS
		return r.SF()
	case 0x9: // JNS
		return !r.SF()
	case 0xA: // JP/JPE
		return r.PF()
	case 0xB: // JNP/JPO
		return !r.PF()
	case 0xC: // JL/JNGE
		return r.SF() != r.OF()
	case 0xD: // JGE/JNL
		return r.SF() == r.OF()
	case 0xE: // JLE/JNG
		return r.ZF() || (r.SF() != r.OF())
	default: // JG/JNLE
		return !r.ZF() && (r.SF() == r.OF())
	}
}

// jccShort implements the short (rel8) conditional jump opcode 0x70-0x7F.
func (c *CPU) jccShort(code byte) {
	rel := int16(int8(c.fetchByte()))
	if c.condition(code) {
		c.Regs.IP = uint16(int32(c.Regs.IP) + int32(rel))
	}
}

// jmpShort implements JMP rel8 (opcode 0xEB).
func (c *CPU) jmpShort() {
	rel := int16(int8(c.fetchByte()))
	c.Regs.IP = uint16(int32(c.Regs.IP) + int32(rel))
}

// jmpNear implements JMP rel16 (opcode 0xE9).
func (c *CPU) jmpNear() {
	rel := int16(c.fetchWord())
	c.Regs.IP = uint16(int32(c.Regs.IP) + int32(rel))
}

// jmpFar implements JMP ptr16:16 (opcode 0xEA): an absolute far jump with
// the destination CS:IP encoded directly in the instruction.
func (c *CPU) jmpFar() {
	newIP := c.fetchWord()
	newCS := c.fetchWord()
	c.Regs.IP = newIP
	c.Regs.CS = newCS
}

// callNear implements CALL rel16 (opcode 0xE8).
func (c *CPU) callNear() {
	rel := int16(c.fetchWord())
	c.push16(c.Regs.IP)
	c.Regs.IP = uint16(int32(c.Regs.IP) + int32(rel))
}

// callFar implements CALL ptr16:16 (opcode 0x9A).
func (c *CPU) callFar() {
	newIP := c.fetchWord()
	newCS := c.fetchWord()
	c.push16(c.Regs.CS)
	c.push16(c.Regs.IP)
	c.Regs.CS = newCS
	c.Regs.IP = newIP
}

// retNear implements RET (0xC3) and RET imm16 (0xC2), popping IP and
// optionally releasing extraBytes of caller-supplied stack arguments.
func (c *CPU) retNear(extraBytes uint16) {
	c.Regs.IP = c.pop16()
	c.Regs.SP += extraBytes
}

// retFar implements RETF (0xCB) and RETF imm16 (0xCA).
func (c *CPU) retFar(extraBytes uint16) {
	c.Regs.IP = c.pop16()
	c.Regs.CS = c.pop16()
	c.Regs.SP += extraBytes
}

// loop implements LOOP/LOOPE/LOOPNE (0xE0-0xE2): decrement CX, then branch
// on CX != 0 (and, for the E/NE forms, on ZF).
func (c *CPU) loop(opcode byte) {
	rel := int16(int8(c.fetchByte()))
	c.Regs.CX--
	take := c.Regs.CX != 0
	switch opcode {
	case 0xE0: // LOOPNE/LOOPNZ
		take = take && !c.Regs.ZF()
	case 0xE1: // LOOPE/LOOPZ
		take = take && c.Regs.ZF()
	}
	if take {
		c.Regs.IP = uint16(int32(c.Regs.IP) + int32(rel))
	}
}

// jcxz implements JCXZ rel8 (0xE3): branch when CX == 0.
func (c *CPU) jcxz() {
	rel := int16(int8(c.fetchByte()))
	if c.Regs.CX == 0 {
		c.Regs.IP = uint16(int32(c.Regs.IP) + int32(rel))
	}
}

// The single-byte flag instructions: CLC/STC/CMC (0xF8/0xF9/0xF5),
// CLI/STI (0xFA/0xFB), CLD/STD (0xFC/0xFD).
func (c *CPU) clc() { c.Regs.SetCF(false) }
func (c *CPU) stc() { c.Regs.SetCF(true) }
func (c *CPU) cmc() { c.Regs.SetCF(!c.Regs.CF()) }
func (c *CPU) cli() { c.Regs.SetIF(false) }
func (c *CPU) sti() { c.Regs.SetIF(true) }
func (c *CPU) cld() { c.Regs.SetDF(false) }
func (c *CPU) std() { c.Regs.SetDF(true) }
