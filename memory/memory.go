// Package memory implements the flat 1MiB address fabric of the emulated
// machine: conventional RAM, the F0000-FFFFF ROM aperture, and the A20 gate
// that controls whether address bit 20 is honored or wrapped.
package memory

import "fmt"

const (
	// Size is the total addressable span of the real-mode fabric.
	Size = 1024 * 1024

	// ROMBase is the first physical address of the ROM aperture.
	ROMBase = 0xF0000
	// ROMSize is the size in bytes of the ROM aperture.
	ROMSize = Size - ROMBase

	a20Bit = 1 << 20
)

// Fabric is the 1MiB byte-addressable memory space shared by the CPU, the
// BIOS service layer, and any device that performs DMA-style reads.
// Bytes at or above ROMBase are backed by romImage and are read-only from
// the bus's point of view; writes into that range are silently dropped, the
// way real ROM sockets behave when a decoder asserts /CS without an
// accompanying /WE path.
type Fabric struct {
	ram      [Size]byte
	romImage [ROMSize]byte
	romValid bool
	a20      bool
}

// New returns a zeroed Fabric with the A20 gate disabled, matching the
// power-on state of an 8086-class machine before the BIOS enables the gate.
func New() *Fabric {
	return &Fabric{}
}

// LoadROM copies image into the ROM aperture. image must fit within
// ROMSize; a shorter image is placed at the start of the aperture and the
// remainder is left zeroed. LoadROM marks the fabric's ROM as valid.
func (f *Fabric) LoadROM(image []byte) error {
	if len(image) > ROMSize {
		return fmt.Errorf("memory: ROM image of %d bytes exceeds %d byte aperture", len(image), ROMSize)
	}
	copy(f.romImage[:], image)
	f.romValid = true
	return nil
}

// ROMValid reports whether a ROM image has been loaded into the aperture.
func (f *Fabric) ROMValid() bool {
	return f.romValid
}

// SetA20 enables or disables the A20 gate. While disabled, bit 20 of every
// effective address is forced low, wrapping accesses at 1MiB boundaries the
// way the 8042 keyboard controller's output port behaved before A20 was
// wired through the chipset.
func (f *Fabric) SetA20(enabled bool) {
	f.a20 = enabled
}

// A20Enabled reports the current state of the A20 gate.
func (f *Fabric) A20Enabled() bool {
	return f.a20
}

func (f *Fabric) effective(addr uint32) uint32 {
	if f.a20 {
		return addr
	}
	return addr &^ a20Bit
}

// ReadByte returns the byte at the given 20-bit physical address, applying
// the A20 gate and routing reads in [ROMBase, Size) to the ROM image.
// Addresses at or above Size (reachable only with A20 enabled) read as 0xFF.
func (f *Fabric) ReadByte(addr uint32) byte {
	addr = f.effective(addr)
	if addr >= Size {
		return 0xFF
	}
	if addr >= ROMBase {
		return f.romImage[addr-ROMBase]
	}
	return f.ram[addr]
}

// WriteByte stores val at the given 20-bit physical address. Writes that
// land in the ROM aperture are dropped, matching real ROM hardware.
func (f *Fabric) WriteByte(addr uint32, val byte) {
	addr = f.effective(addr)
	if addr >= ROMBase {
		return
	}
	f.ram[addr] = val
}

// ReadWord returns the little-endian 16-bit word at addr.
func (f *Fabric) ReadWord(addr uint32) uint16 {
	lo := f.ReadByte(addr)
	hi := f.ReadByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8
}

// WriteWord stores val as a little-endian 16-bit word at addr.
func (f *Fabric) WriteWord(addr uint32, val uint16) {
	f.WriteByte(addr, byte(val))
	f.WriteByte(addr+1, byte(val>>8))
}

// ReadBlock copies n bytes starting at addr into a freshly allocated slice.
// Used by the disk and BIOS layers to move whole sectors across the bus.
func (f *Fabric) ReadBlock(addr uint32, n int) []byte {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = f.ReadByte(addr + uint32(i))
	}
	return out
}

// WriteBlock copies data into memory starting at addr.
func (f *Fabric) WriteBlock(addr uint32, data []byte) {
	for i, b := range data {
		f.WriteByte(addr+uint32(i), b)
	}
}

// PhysicalAddress computes the 20-bit physical address for a real-mode
// segment:offset pair, the canonical (segment<<4)+offset formula used
// throughout the CPU core.
func PhysicalAddress(segment, offset uint16) uint32 {
	return (uint32(segment) << 4) + uint32(offset)
}
