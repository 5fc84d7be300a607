// Package xtcore wires together the memory fabric, CPU core, serial UART,
// virtual disk, and BIOS service layer into a single bootable machine, and
// exposes the lifecycle surface (Run/Step/Stop/Close) a host driver uses
// to run it.
package xtcore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"xtcore/bios"
	"xtcore/cpu"
	"xtcore/devices"
	"xtcore/disk"
	"xtcore/memory"
	"xtcore/rom"
)

// Machine owns every component of the emulated PC and the wiring between
// them: the CPU reads/writes Mem and IOBus, IOBus routes port accesses to
// UART, and BIOS is installed as the CPU's software-interrupt intercept.
type Machine struct {
	Mem   *memory.Fabric
	IOBus *devices.IOBus
	UART  *devices.SerialUART
	Disk  *disk.Disk
	BIOS  *bios.Services
	CPU   *cpu.CPU

	Debug bool

	stopCh chan struct{}
}

// NewMachine constructs a Machine rooted at driveDir (created if absent),
// synthesizes and loads the fixed ROM image, registers the UART on the
// I/O bus, computes the boot-gating flags from the disk's own MBR and
// boot sector, and copies the disk's MBR (LBA 0) to the conventional 0x7C00
// load address, where the ROM's init sequence jumps.
func NewMachine(driveDir string, debug bool) (*Machine, error) {
	mem := memory.New()
	if err := mem.LoadROM(rom.Build(nil)); err != nil {
		return nil, fmt.Errorf("xtcore: building rom image: %w", err)
	}

	d, err := disk.New(driveDir)
	if err != nil {
		return nil, fmt.Errorf("xtcore: opening drive %s: %w", driveDir, err)
	}

	ioBus := devices.NewIOBus()
	uart := devices.NewSerialUART()
	ioBus.RegisterDevice(devices.COM1_PORT_BASE, devices.COM1_PORT_END, uart)

	mbrPresent := sectorPresent(d.ReadSector(0))
	bootSectorPresent := sectorPresent(d.ReadSector(disk.BootSectorLBA))

	c := cpu.New(mem, ioBus, mbrPresent, bootSectorPresent)
	services := bios.New(uart, d)
	c.Intercept = services.Dispatch

	m := &Machine{
		Mem:    mem,
		IOBus:  ioBus,
		UART:   uart,
		Disk:   d,
		BIOS:   services,
		CPU:    c,
		Debug:  debug,
		stopCh: make(chan struct{}),
	}

	mem.WriteBlock(memory.PhysicalAddress(0, 0x7C00), d.ReadSector(0))

	if debug {
		log.Printf("xtcore: machine ready at %s (mbr_present=%v boot_sector_present=%v)",
			driveDir, mbrPresent, bootSectorPresent)
	}
	return m, nil
}

// sectorPresent reports whether a sector holds any nonzero byte; an
// all-zero read is the signal this package uses for "nothing there" — a
// freshly built default MBR/boot sector always carries a nonzero
// signature byte, so an all-zero read only happens when the host drive
// directory supplies an mbr.bin or boot_sector.bin of 512 zero bytes.
func sectorPresent(data []byte) bool {
	return !bytes.Equal(data, make([]byte, len(data)))
}

// LoadBinary copies image into the memory fabric at the given physical
// address, for tests that want to drop a hand-assembled program directly
// into RAM rather than going through the disk boot path.
func (m *Machine) LoadBinary(image []byte, address uint32) error {
	if address+uint32(len(image)) > memory.Size {
		return fmt.Errorf("xtcore: binary of %d bytes at 0x%x overruns the address space", len(image), address)
	}
	m.Mem.WriteBlock(address, image)
	return nil
}

// Step executes exactly one CPU instruction. It is the unit of work the
// cooperative driver loop calls between polling the host for serial input
// and draining serial output. ctx is threaded through only so a canceled
// context reaches the instruction currently executing; no instruction in
// this design actually blocks inside Step (INT 16h/AH=00 retries from
// outside via AbortSoftwareInterrupt instead), so ctx has no effect beyond
// what the caller's own loop does with it between calls.
func (m *Machine) Step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.CPU.Step()
}

// Run drives the machine until ctx is canceled, Stop is called, the CPU
// halts, or Step returns an error. pollIngress is invoked once per
// iteration before the CPU steps, and drainEgress once per iteration
// after — the host driver supplies these to bridge the UART's FIFOs to its
// actual terminal without this package needing to know anything about
// stdin/stdout framing.
func (m *Machine) Run(ctx context.Context, pollIngress func(*devices.SerialUART), drainEgress func(byte), tick time.Duration) error {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.stopCh:
			return nil
		case <-ticker.C:
		}

		if pollIngress != nil {
			pollIngress(m.UART)
		}
		if drainEgress != nil {
			for {
				b, ok := m.UART.PopEgress()
				if !ok {
					break
				}
				drainEgress(b)
			}
		}

		if m.CPU.Halted {
			return nil
		}
		if err := m.Step(ctx); err != nil {
			return err
		}
	}
}

// Stop ends a Run loop at the next instruction boundary.
func (m *Machine) Stop() {
	close(m.stopCh)
}

// Close releases the machine's resources. The virtual disk holds no open
// file descriptors between operations, so there is nothing further to
// release today; the method exists so callers have a stable lifecycle
// method to defer regardless of how the disk layer evolves.
func (m *Machine) Close() error {
	return nil
}
