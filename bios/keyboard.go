package bios

import "xtcore/cpu"

// keyboardIntLength is the byte length of the `INT 16h` encoding (opcode
// 0xCD plus its immediate vector byte), needed to rewind IP when the
// read-character function cooperatively blocks.
const keyboardIntLength = 2

// keyboard16 implements INT 16h: keyboard services, sourced from the UART
// ingress FIFO rather than a real keyboard controller. AH=0x00 reads one
// character, blocking — cooperatively, by aborting and rewinding the
// interrupt so the same instruction is retried on the CPU's next Step —
// until a byte is available, rather than fabricating a carriage return
// when the FIFO is empty. AH=0x01 polls without consuming: ZF set means
// nothing is pending. AH=0x02 reports an always-clear shift state.
func (s *Services) keyboard16(c *cpu.CPU) (bool, error) {
	switch c.Regs.AH() {
	case 0x00:
		b, ok := s.UART.PopIngress()
		if !ok {
			c.AbortSoftwareInterrupt(keyboardIntLength)
			return true, nil
		}
		c.Regs.SetAL(b)
		c.Regs.SetAH(0x00)
	case 0x01:
		b, ok := s.UART.PeekIngress()
		c.Regs.SetZF(!ok)
		if ok {
			c.Regs.SetAL(b)
			c.Regs.SetAH(0x00)
		}
	case 0x02:
		c.Regs.SetAL(0x00)
	default:
		c.Regs.SetCF(true)
	}
	return true, nil
}
