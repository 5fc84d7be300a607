package cpu

// stringStep returns +1 or -1 depending on DF, the per-iteration index
// adjustment every string primitive applies to SI/DI.
func (c *CPU) stringStep() uint16 {
	if c.Regs.DF() {
		return 0xFFFF // -1 as uint16
	}
	return 1
}

// repeat drives the REP/REPE/REPNE iteration model: with no active prefix
// the primitive body runs exactly once; with a prefix active it runs while
// CX != 0, decrementing CX after each step, and for REPE/REPNE additionally
// stops as soon as ZF no longer matches (checked after body has compared).
func (c *CPU) repeat(body func(), checksZF bool) {
	if c.repPrefix == 0 {
		body()
		return
	}
	for c.Regs.CX != 0 {
		body()
		c.Regs.CX--
		if checksZF {
			wantZF := c.repPrefix == 0xF3 // REPE/REPZ
			if c.Regs.ZF() != wantZF {
				break
			}
		}
	}
}

func (c *CPU) movsb() {
	step := c.stringStep()
	c.repeat(func() {
		v := c.readMem8(c.segmentFor(c.Regs.DS), c.Regs.SI)
		c.writeMem8(c.Regs.ES, c.Regs.DI, v)
		c.Regs.SI += step
		c.Regs.DI += step
	}, false)
}

func (c *CPU) movsw() {
	step := c.stringStep() * 2
	c.repeat(func() {
		v := c.readMem16(c.segmentFor(c.Regs.DS), c.Regs.SI)
		c.writeMem16(c.Regs.ES, c.Regs.DI, v)
		c.Regs.SI += step
		c.Regs.DI += step
	}, false)
}

func (c *CPU) cmpsb() {
	step := c.stringStep()
	c.repeat(func() {
		a := c.readMem8(c.segmentFor(c.Regs.DS), c.Regs.SI)
		b := c.readMem8(c.Regs.ES, c.Regs.DI)
		c.alu8(aluCmp, a, b)
		c.Regs.SI += step
		c.Regs.DI += step
	}, true)
}

func (c *CPU) cmpsw() {
	step := c.stringStep() * 2
	c.repeat(func() {
		a := c.readMem16(c.segmentFor(c.Regs.DS), c.Regs.SI)
		b := c.readMem16(c.Regs.ES, c.Regs.DI)
		c.alu16(aluCmp, a, b)
		c.Regs.SI += step
		c.Regs.DI += step
	}, true)
}

func (c *CPU) scasb() {
	step := c.stringStep()
	c.repeat(func() {
		b := c.readMem8(c.Regs.ES, c.Regs.DI)
		c.alu8(aluCmp, byte(c.Regs.AX), b)
		c.Regs.DI += step
	}, true)
}

func (c *CPU) scasw() {
	step := c.stringStep() * 2
	c.repeat(func() {
		b := c.readMem16(c.Regs.ES, c.Regs.DI)
		c.alu16(aluCmp, c.Regs.AX, b)
		c.Regs.DI += step
	}, true)
}

func (c *CPU) lodsb() {
	step := c.stringStep()
	c.repeat(func() {
		v := c.readMem8(c.segmentFor(c.Regs.DS), c.Regs.SI)
		c.Regs.setReg8(0, v)
		c.Regs.SI += step
	}, false)
}

func (c *CPU) lodsw() {
	step := c.stringStep() * 2
	c.repeat(func() {
		v := c.readMem16(c.segmentFor(c.Regs.DS), c.Regs.SI)
		c.Regs.AX = v
		c.Regs.SI += step
	}, false)
}

func (c *CPU) stosb() {
	step := c.stringStep()
	c.repeat(func() {
		c.writeMem8(c.Regs.ES, c.Regs.DI, byte(c.Regs.AX))
		c.Regs.DI += step
	}, false)
}

func (c *CPU) stosw() {
	step := c.stringStep() * 2
	c.repeat(func() {
		c.writeMem16(c.Regs.ES, c.Regs.DI, c.Regs.AX)
		c.Regs.DI += step
	}, false)
}
