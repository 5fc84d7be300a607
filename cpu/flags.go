package cpu

// updateArith8 sets CF/PF/AF/ZF/SF/OF for an 8-bit arithmetic result.
// isSub distinguishes subtractive ops (SUB/CMP/NEG) from additive ones
// (ADD) for carry and overflow direction.
func (c *CPU) updateArith8(a, b, result byte, isSub bool) {
	r := c.Regs
	r.SetZF(result == 0)
	r.SetSF(result&0x80 != 0)
	r.SetPF(parity8(result))
	if isSub {
		r.SetCF(a < b)
		r.SetAF((a & 0x0F) < (b & 0x0F))
		r.SetOF(((a ^ b) & (a ^ result) & 0x80) != 0)
	} else {
		r.SetCF(uint16(a)+uint16(b) > 0xFF)
		r.SetAF((a&0x0F)+(b&0x0F) > 0x0F)
		r.SetOF(((a ^ result) & (b ^ result) & 0x80) != 0)
	}
}

// updateArith16 is the 16-bit counterpart of updateArith8. Overflow is the
// canonical sign-mismatch formula, ((a^result)&(b^result)&0x8000)!=0 for
// addition — not a cast-to-i16 range check, which is always false because
// every 16-bit result already fits in the signed 16-bit range and so can
// never signal an overflow condition.
func (c *CPU) updateArith16(a, b, result uint16, isSub bool) {
	r := c.Regs
	r.SetZF(result == 0)
	r.SetSF(result&0x8000 != 0)
	r.SetPF(parity8(byte(result)))
	if isSub {
		r.SetCF(a < b)
		r.SetAF((a & 0x0F) < (b & 0x0F))
		r.SetOF(((a ^ b) & (a ^ result) & 0x8000) != 0)
	} else {
		r.SetCF(uint32(a)+uint32(b) > 0xFFFF)
		r.SetAF((a&0x0F)+(b&0x0F) > 0x0F)
		r.SetOF(((a ^ result) & (b ^ result) & 0x8000) != 0)
	}
}

// updateLogical8/16 implement AND/OR/XOR/TEST semantics: CF and OF are
// always cleared, ZF/SF/PF reflect the result.
func (c *CPU) updateLogical8(result byte) {
	r := c.Regs
	r.SetZF(result == 0)
	r.SetSF(result&0x80 != 0)
	r.SetPF(parity8(result))
	r.SetCF(false)
	r.SetOF(false)
}

func (c *CPU) updateLogical16(result uint16) {
	r := c.Regs
	r.SetZF(result == 0)
	r.SetSF(result&0x8000 != 0)
	r.SetPF(parity8(byte(result)))
	r.SetCF(false)
	r.SetOF(false)
}

// incDecFlags8/16 update everything but CF, matching INC/DEC's documented
// behavior of leaving carry untouched.
func (c *CPU) incDecFlags8(a, result byte, isDec bool) {
	r := c.Regs
	r.SetZF(result == 0)
	r.SetSF(result&0x80 != 0)
	r.SetPF(parity8(result))
	if isDec {
		r.SetAF((a & 0x0F) == 0x00)
		r.SetOF(a == 0x80)
	} else {
		r.SetAF((a & 0x0F) == 0x0F)
		r.SetOF(a == 0x7F)
	}
}

func (c *CPU) incDecFlags16(a, result uint16, isDec bool) {
	r := c.Regs
	r.SetZF(result == 0)
	r.SetSF(result&0x8000 != 0)
	r.SetPF(parity8(byte(result)))
	if isDec {
		r.SetAF((a & 0x0F) == 0x00)
		r.SetOF(a == 0x8000)
	} else {
		r.SetAF((a & 0x0F) == 0x0F)
		r.SetOF(a == 0x7FFF)
	}
}
