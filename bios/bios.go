// Package bios implements the host-intercepted BIOS service layer: the
// eight software interrupts (10h, 11h, 12h, 13h, 14h, 15h, 16h, 1Ah) the
// CPU core hands off to a registered InterruptIntercept rather than
// dispatching through a real interrupt vector table. It is the headless
// replacement for video/keyboard/disk/clock firmware, reading and writing
// the CPU's own register file the way real BIOS firmware would.
package bios

import (
	"time"

	"xtcore/cpu"
	"xtcore/devices"
	"xtcore/disk"
)

// equipmentWord is returned by INT 11h: the serial-port count is encoded
// in bits 9-11, and bit 0 (diskette drives present) is clear, since there
// is no diskette. This machine reports exactly one serial port and no
// display adapter, matching its headless, UART-driven console.
const equipmentWord = 0x0200

// conventionalMemoryKB is returned by INT 12h.
const conventionalMemoryKB = 640

// instructionsPerTick is the number of instructions retired per timer tick,
// calibrated so that a CPU retiring roughly one million instructions per
// second of wall-clock time produces the standard 18.2 Hz BIOS tick rate.
const instructionsPerTick = 54945

// headsPerCylinder/sectorsPerTrack mirror the fixed CHS geometry of the
// virtual disk; INT 13h, AH=0x02 uses them to translate CHS to LBA.
const (
	headsPerCylinder  = 16
	sectorsPerTrack   = 63
)

// Services owns the two host-side resources the intercepted interrupts
// touch: the COM1 UART (serial console, also doubling as the BIOS
// keyboard source) and the virtual disk.
type Services struct {
	UART *devices.SerialUART
	Disk *disk.Disk

	now func() time.Time // overridable for tests
}

// New constructs a Services bound to the given UART and disk.
func New(uart *devices.SerialUART, d *disk.Disk) *Services {
	return &Services{UART: uart, Disk: d, now: time.Now}
}

// Dispatch is installed as a CPU's InterruptIntercept. It handles the
// eight documented BIOS interrupt numbers and declines (handled=false)
// every other vector so the CPU falls back to a real IVT-based transfer.
func (s *Services) Dispatch(c *cpu.CPU, n byte) (bool, error) {
	switch n {
	case 0x10:
		s.video(c)
	case 0x11:
		c.Regs.AX = equipmentWord
	case 0x12:
		c.Regs.AX = conventionalMemoryKB
	case 0x13:
		s.disk13(c)
	case 0x14:
		s.serial14(c)
	case 0x15:
		s.system15(c)
	case 0x16:
		return s.keyboard16(c)
	case 0x1A:
		s.time1A(c)
	default:
		return false, nil
	}
	return true, nil
}

// video implements INT 10h. Only the AH=0x0E teletype-output function has
// an observable effect — it enqueues AL onto the UART egress FIFO for the
// host driver to forward to its terminal — every other video function
// succeeds without doing anything, since this machine never drives a
// display adapter. INT 10h's use of CF is undocumented, so unlike disk13/
// system15 this handler leaves it untouched rather than clobbering
// whatever the caller had set.
func (s *Services) video(c *cpu.CPU) {
	ah := byte(c.Regs.AX >> 8)
	if ah == 0x0E {
		al := byte(c.Regs.AX)
		s.UART.HandleIO(devices.COM1_PORT_BASE, devices.IODirectionOut, 1, []byte{al})
	}
}
