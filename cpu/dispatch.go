package cpu

// execute dispatches a single fetched opcode byte (with any prefixes
// already consumed by Step) to its handler. Every opcode from the
// documented instruction set has an entry; anything else surfaces as an
// illegal-opcode error and halts the CPU, matching real 8086 behavior for
// a fetch it cannot decode.
func (c *CPU) execute(opcode byte) error {
	switch opcode {
	// 0x00-0x3D: the eight ALU operations, six opcode forms each.
	case 0x00, 0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38:
		c.aluRmR8(aluOp(opcode >> 3))
	case 0x01, 0x09, 0x11, 0x19, 0x21, 0x29, 0x31, 0x39:
		c.aluRmR16(aluOp(opcode >> 3))
	case 0x02, 0x0A, 0x12, 0x1A, 0x22, 0x2A, 0x32, 0x3A:
		c.aluRR8(aluOp(opcode >> 3))
	case 0x03, 0x0B, 0x13, 0x1B, 0x23, 0x2B, 0x33, 0x3B:
		c.aluRR16(aluOp(opcode >> 3))
	case 0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C:
		c.aluALImm8(aluOp(opcode >> 3))
	case 0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D:
		c.aluAXImm16(aluOp(opcode >> 3))

	case 0x06:
		c.pushSeg(SegES)
	case 0x07:
		c.popSeg(SegES)
	case 0x0E:
		c.pushSeg(SegCS)
	case 0x16:
		c.pushSeg(SegSS)
	case 0x17:
		c.popSeg(SegSS)
	case 0x1E:
		c.pushSeg(SegDS)
	case 0x1F:
		c.popSeg(SegDS)

	case 0x40, 0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47:
		c.incReg16(opcode - 0x40)
	case 0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F:
		c.decReg16(opcode - 0x48)
	case 0x50, 0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57:
		c.pushReg16(opcode - 0x50)
	case 0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F:
		c.popReg16(opcode - 0x58)

	case 0x70, 0x71, 0x72, 0x73, 0x74, 0x75, 0x76, 0x77,
		0x78, 0x79, 0x7A, 0x7B, 0x7C, 0x7D, 0x7E, 0x7F:
		c.jccShort(opcode)

	case 0x80, 0x82:
		c.group1Imm8()
	case 0x81:
		c.group1Imm16()
	case 0x83:
		c.group1Imm8SignExtend()

	case 0x84:
		m := c.fetchModRM()
		c.updateLogical8(c.getRM8(m) & c.Regs.reg8(m.reg))
	case 0x85:
		m := c.fetchModRM()
		c.updateLogical16(c.getRM16(m) & c.Regs.reg16(m.reg))
	case 0x86:
		c.xchgRmR8()
	case 0x87:
		c.xchgRmR16()

	case 0x88:
		c.movRmR8()
	case 0x89:
		c.movRmR16()
	case 0x8A:
		c.movRR8()
	case 0x8B:
		c.movRR16()
	case 0x8C:
		c.movRmSreg()
	case 0x8D:
		c.lea()
	case 0x8E:
		c.movSregRm()
	case 0x8F:
		m := c.fetchModRM()
		c.setRM16(m, c.pop16())

	case 0x90, 0x91, 0x92, 0x93, 0x94, 0x95, 0x96, 0x97:
		c.xchgAXReg(opcode - 0x90)

	case 0x98:
		c.cbw()
	case 0x99:
		c.cwd()
	case 0x9A:
		c.callFar()
	case 0x9C:
		c.pushf()
	case 0x9D:
		c.popf()
	case 0x9E:
		c.sahf()
	case 0x9F:
		c.lahf()

	case 0xA0:
		c.movALMoffs()
	case 0xA1:
		c.movAXMoffs()
	case 0xA2:
		c.movMoffsAL()
	case 0xA3:
		c.movMoffsAX()
	case 0xA4:
		c.movsb()
	case 0xA5:
		c.movsw()
	case 0xA6:
		c.cmpsb()
	case 0xA7:
		c.cmpsw()
	case 0xA8:
		imm := c.fetchByte()
		c.updateLogical8(byte(c.Regs.AX) & imm)
	case 0xA9:
		imm := c.fetchWord()
		c.updateLogical16(c.Regs.AX & imm)
	case 0xAA:
		c.stosb()
	case 0xAB:
		c.stosw()
	case 0xAC:
		c.lodsb()
	case 0xAD:
		c.lodsw()
	case 0xAE:
		c.scasb()
	case 0xAF:
		c.scasw()

	case 0xB0, 0xB1, 0xB2, 0xB3, 0xB4, 0xB5, 0xB6, 0xB7:
		c.movRegImm8(opcode - 0xB0)
	case 0xB8, 0xB9, 0xBA, 0xBB, 0xBC, 0xBD, 0xBE, 0xBF:
		c.movRegImm16(opcode - 0xB8)

	case 0xC0:
		c.shiftGroup8(0)
	case 0xC1:
		c.shiftGroup16(0)
	case 0xC2:
		c.retNear(c.fetchWord())
	case 0xC3:
		c.retNear(0)
	case 0xC4:
		c.ldsLes(true)
	case 0xC5:
		c.ldsLes(false)
	case 0xC6:
		c.movRmImm8()
	case 0xC7:
		c.movRmImm16()
	case 0xC8:
		c.enter()
	case 0xC9:
		c.leave()
	case 0xCA:
		c.retFar(c.fetchWord())
	case 0xCB:
		c.retFar(0)
	case 0xCC:
		return c.int3()
	case 0xCD:
		return c.intImm8()
	case 0xCE:
		return c.into()
	case 0xCF:
		c.iret()

	case 0xD0:
		c.shiftGroup8(1)
	case 0xD1:
		c.shiftGroup16(1)
	case 0xD2:
		c.shiftGroup8(2)
	case 0xD3:
		c.shiftGroup16(2)
	case 0xD4:
		return c.aam()
	case 0xD6:
		c.salc()

	case 0xE0:
		c.loop(opcode)
	case 0xE1:
		c.loop(opcode)
	case 0xE2:
		c.loop(opcode)
	case 0xE3:
		c.jcxz()
	case 0xE4:
		c.inByteImm()
	case 0xE5:
		c.inWordImm()
	case 0xE6:
		c.outByteImm()
	case 0xE7:
		c.outWordImm()
	case 0xE8:
		c.callNear()
	case 0xE9:
		c.jmpNear()
	case 0xEA:
		c.jmpFar()
	case 0xEB:
		c.jmpShort()
	case 0xEC:
		c.inByteDX()
	case 0xED:
		c.inWordDX()
	case 0xEE:
		c.outByteDX()
	case 0xEF:
		c.outWordDX()

	case 0xF4:
		c.hlt()
	case 0xF5:
		c.cmc()
	case 0xF6:
		return c.group3Byte()
	case 0xF7:
		return c.group3Word()
	case 0xF8:
		c.clc()
	case 0xF9:
		c.stc()
	case 0xFA:
		c.cli()
	case 0xFB:
		c.sti()
	case 0xFC:
		c.cld()
	case 0xFD:
		c.std()
	case 0xFE:
		c.group4Byte()
	case 0xFF:
		return c.group5Word()

	default:
		c.Halted = true
		return &ErrIllegalOpcode{Opcode: opcode, CS: c.Regs.CS, IP: c.Regs.IP}
	}
	return nil
}
