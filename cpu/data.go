package cpu

// movRmR8/movRmR16 implement `MOV rm, r` (opcodes 0x88/0x89).
func (c *CPU) movRmR8() {
	m := c.fetchModRM()
	c.setRM8(m, c.Regs.reg8(m.reg))
}

func (c *CPU) movRmR16() {
	m := c.fetchModRM()
	c.setRM16(m, c.Regs.reg16(m.reg))
}

// movRR8/movRR16 implement `MOV r, rm` (opcodes 0x8A/0x8B).
func (c *CPU) movRR8() {
	m := c.fetchModRM()
	c.Regs.setReg8(m.reg, c.getRM8(m))
}

func (c *CPU) movRR16() {
	m := c.fetchModRM()
	c.Regs.setReg16(m.reg, c.getRM16(m))
}

// movRmSreg/movSregRm implement `MOV rm16, sreg` and `MOV sreg, rm16`
// (opcodes 0x8C/0x8E). The ModR/M reg field selects the segment register
// in both forms.
func (c *CPU) movRmSreg() {
	m := c.fetchModRM()
	c.setRM16(m, c.Regs.sreg(m.reg))
}

func (c *CPU) movSregRm() {
	m := c.fetchModRM()
	c.Regs.setSreg(m.reg, c.getRM16(m))
}

// movRegImm8/movRegImm16 implement the single-byte `MOV reg, imm` opcodes
// (0xB0-0xB7 / 0xB8-0xBF), where the register is encoded in the opcode's
// low three bits rather than a ModR/M byte.
func (c *CPU) movRegImm8(reg byte) {
	c.Regs.setReg8(reg, c.fetchByte())
}

func (c *CPU) movRegImm16(reg byte) {
	c.Regs.setReg16(reg, c.fetchWord())
}

// movRmImm8/movRmImm16 implement `MOV rm, imm` (opcodes 0xC6/0xC7). The
// ModR/M reg field is always 0 for this form; it is not used to select an
// operation the way it is in the group opcodes.
func (c *CPU) movRmImm8() {
	m := c.fetchModRM()
	imm := c.fetchByte()
	c.setRM8(m, imm)
}

func (c *CPU) movRmImm16() {
	m := c.fetchModRM()
	imm := c.fetchWord()
	c.setRM16(m, imm)
}

// movALMoffs/movMoffsAL and the word forms implement the direct-address
// accumulator opcodes 0xA0-0xA3: AL/AX loaded from or stored to a 16-bit
// displacement within the default (or overridden) data segment.
func (c *CPU) movALMoffs() {
	off := c.fetchWord()
	v := c.readMem8(c.segmentFor(c.Regs.DS), off)
	c.Regs.setReg8(0, v)
}

func (c *CPU) movAXMoffs() {
	off := c.fetchWord()
	c.Regs.AX = c.readMem16(c.segmentFor(c.Regs.DS), off)
}

func (c *CPU) movMoffsAL() {
	off := c.fetchWord()
	c.writeMem8(c.segmentFor(c.Regs.DS), off, byte(c.Regs.AX))
}

func (c *CPU) movMoffsAX() {
	off := c.fetchWord()
	c.writeMem16(c.segmentFor(c.Regs.DS), off, c.Regs.AX)
}

// xchgRmR8/xchgRmR16 implement XCHG rm, r (opcodes 0x86/0x87).
func (c *CPU) xchgRmR8() {
	m := c.fetchModRM()
	a := c.getRM8(m)
	b := c.Regs.reg8(m.reg)
	c.setRM8(m, b)
	c.Regs.setReg8(m.reg, a)
}

func (c *CPU) xchgRmR16() {
	m := c.fetchModRM()
	a := c.getRM16(m)
	b := c.Regs.reg16(m.reg)
	c.setRM16(m, b)
	c.Regs.setReg16(m.reg, a)
}

// xchgAXReg implements the single-byte XCHG AX, r16 opcodes (0x91-0x97).
func (c *CPU) xchgAXReg(reg byte) {
	a := c.Regs.AX
	b := c.Regs.reg16(reg)
	c.Regs.AX = b
	c.Regs.setReg16(reg, a)
}

// lea implements LEA r16, m (opcode 0x8D): load the computed effective
// address itself, not the value it refers to.
func (c *CPU) lea() {
	m := c.fetchModRM()
	off, _ := c.rmAddr(m)
	c.Regs.setReg16(m.reg, off)
}

// lds/les implement LDS/LES r16, m32 (opcodes 0xC5/0xC4): load a 32-bit
// far pointer from memory, placing the offset in the named register and
// the segment in DS or ES respectively.
func (c *CPU) ldsLes(toES bool) {
	m := c.fetchModRM()
	off, seg := c.rmAddr(m)
	offset := c.readMem16(seg, off)
	segment := c.readMem16(seg, off+2)
	c.Regs.setReg16(m.reg, offset)
	if toES {
		c.Regs.ES = segment
	} else {
		c.Regs.DS = segment
	}
}
