package bios

import (
	"xtcore/cpu"
	"xtcore/devices"
)

// serial14 implements INT 14h: serial port services against COM1. AH=0x00
// initializes the port (a cooperative no-op, since the UART has no real
// baud/parity state machine to program), AH=0x01 sends AL, AH=0x02
// receives into AL, and AH=0x03 reports line/modem status.
func (s *Services) serial14(c *cpu.CPU) {
	switch c.Regs.AH() {
	case 0x00:
		c.Regs.SetAH(0x00)
	case 0x01:
		s.UART.HandleIO(devices.COM1_PORT_BASE, devices.IODirectionOut, 1, []byte{c.Regs.AL()})
		c.Regs.SetAH(0x00)
	case 0x02:
		b, ok := s.UART.PopIngress()
		if !ok {
			b = 0
		}
		c.Regs.SetAL(b)
		c.Regs.SetAH(0x00)
	case 0x03:
		data := []byte{0}
		s.UART.HandleIO(devices.COM1_PORT_BASE+5, devices.IODirectionIn, 1, data)
		c.Regs.SetAH(data[0])
		s.UART.HandleIO(devices.COM1_PORT_BASE+devices.MSR, devices.IODirectionIn, 1, data)
		c.Regs.SetAL(data[0])
	}
}
