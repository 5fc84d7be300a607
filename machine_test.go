package xtcore_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"xtcore"
	"xtcore/devices"
	"xtcore/disk"
	"xtcore/memory"
)

// newTestMachine builds a Machine rooted at a fresh temp directory, writing
// mbr.bin first when the caller supplies one so disk.New picks it up as the
// override instead of synthesizing its own default.
func newTestMachine(t *testing.T, mbrOverride []byte) *xtcore.Machine {
	t.Helper()
	driveDir := t.TempDir()
	if mbrOverride != nil {
		if err := os.WriteFile(filepath.Join(driveDir, "mbr.bin"), mbrOverride, 0o644); err != nil {
			t.Fatalf("writing mbr.bin override: %v", err)
		}
	}
	m, err := xtcore.NewMachine(driveDir, false)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	return m
}

// runUntilHalt steps the machine, draining egress after each step, until it
// halts, an error occurs, or the step budget is exhausted.
func runUntilHalt(t *testing.T, m *xtcore.Machine, budget int) (egress []byte, err error) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < budget; i++ {
		if m.CPU.Halted {
			break
		}
		if stepErr := m.Step(ctx); stepErr != nil {
			return egress, stepErr
		}
		for {
			b, ok := m.UART.PopEgress()
			if !ok {
				break
			}
			egress = append(egress, b)
		}
	}
	return egress, nil
}

// TestColdBootStubMBR reproduces §8 scenario 1: a 1-byte HLT MBR, after
// reset the ROM's init sequence far-jumps to 0000:7C00 and the CPU halts
// immediately with no error.
func TestColdBootStubMBR(t *testing.T) {
	stub := make([]byte, 512)
	stub[0] = 0xF4 // HLT
	stub[510] = 0x55
	stub[511] = 0xAA

	m := newTestMachine(t, stub)
	_, err := runUntilHalt(t, m, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.CPU.Halted {
		t.Fatal("expected CPU to be halted after executing the stub MBR")
	}
}

// TestTTYPrintViaInt10 reproduces §8 scenario 2.
func TestTTYPrintViaInt10(t *testing.T) {
	boot := make([]byte, 512)
	code := []byte{
		0xB4, 0x0E, // MOV AH, 0x0E
		0xB0, 'A', // MOV AL, 'A'
		0xCD, 0x10, // INT 10h
		0xF4, // HLT
	}
	copy(boot, code)
	boot[510] = 0x55
	boot[511] = 0xAA

	m := newTestMachine(t, boot)
	egress, err := runUntilHalt(t, m, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.CPU.Halted {
		t.Fatal("expected CPU to be halted")
	}
	if !bytes.Equal(egress, []byte{'A'}) {
		t.Fatalf("expected egress [A], got %v", egress)
	}
}

// TestSerialEchoLoop reproduces §8 scenario 3: ingress "HI\n" is echoed back
// byte for byte via INT 14h until a linefeed is seen.
func TestSerialEchoLoop(t *testing.T) {
	boot := make([]byte, 512)
	// loop: MOV AH,2; INT 14h; MOV AH,1; INT 14h; CMP AL,10; JNE loop; HLT
	code := []byte{
		0xB4, 0x02, // MOV AH, 2
		0xCD, 0x14, // INT 14h
		0xB4, 0x01, // MOV AH, 1
		0xCD, 0x14, // INT 14h
		0x3C, 0x0A, // CMP AL, 10
		0x75, 0xF4, // JNE loop (back to MOV AH,2)
		0xF4, // HLT
	}
	copy(boot, code)
	boot[510] = 0x55
	boot[511] = 0xAA

	m := newTestMachine(t, boot)
	for _, b := range []byte("HI\n") {
		m.UART.PushIngress(b)
	}

	egress, err := runUntilHalt(t, m, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.CPU.Halted {
		t.Fatalf("expected CPU to be halted, egress so far: %v", egress)
	}
	want := []byte{'H', 'I', 0x0A}
	if !bytes.Equal(egress, want) {
		t.Fatalf("expected egress %v, got %v", want, egress)
	}
}

// TestDiskReadViaInt13 reproduces §8 scenario 4.
func TestDiskReadViaInt13(t *testing.T) {
	boot := make([]byte, 512)
	code := []byte{
		0xB8, 0x00, 0x20, // MOV AX, 0x2000
		0x8E, 0xC0, // MOV ES, AX
		0xBB, 0x00, 0x00, // MOV BX, 0x0000
		0xB9, 0x01, 0x00, // MOV CX, 0x0001 (cylinder 0, sector 1)
		0xB6, 0x00, // MOV DH, 0x00
		0xB2, 0x80, // MOV DL, 0x80
		0xB0, 0x01, // MOV AL, 1
		0xB4, 0x02, // MOV AH, 2
		0xCD, 0x13, // INT 13h
		0xF4, // HLT
	}
	copy(boot, code)
	boot[510] = 0x55
	boot[511] = 0xAA

	m := newTestMachine(t, boot)
	want := m.Disk.ReadSector(0)

	_, err := runUntilHalt(t, m, 10000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.CPU.Regs.CF() {
		t.Fatal("expected CF=0 after a successful read")
	}
	if m.CPU.Regs.AL() != 1 {
		t.Fatalf("expected AL=1 (one sector read), got %d", m.CPU.Regs.AL())
	}

	got := m.Mem.ReadBlock(memory.PhysicalAddress(0x2000, 0x0000), disk.SectorSize)
	if !bytes.Equal(got, want) {
		t.Fatalf("sector read into memory does not match disk.ReadSector(0)")
	}
}

// TestDivisionByZeroHalts reproduces §8 scenario 6.
func TestDivisionByZeroHalts(t *testing.T) {
	boot := make([]byte, 512)
	code := []byte{
		0xB8, 0x0A, 0x00, // MOV AX, 10
		0xB1, 0x00, // MOV CL, 0
		0xF6, 0xF1, // DIV CL
	}
	copy(boot, code)
	boot[510] = 0x55
	boot[511] = 0xAA

	m := newTestMachine(t, boot)

	// Step through the ROM init sequence and the two MOVs so flagsBefore is
	// the state the DIV at 0000:7C05 starts from.
	ctx := context.Background()
	for i := 0; m.CPU.Regs.CS != 0 || m.CPU.Regs.IP != 0x7C05; i++ {
		if i == 1000 {
			t.Fatal("never reached the DIV at 0000:7C05")
		}
		if err := m.Step(ctx); err != nil {
			t.Fatalf("unexpected error before the DIV: %v", err)
		}
	}
	flagsBefore := m.CPU.Regs.Flags

	_, err := runUntilHalt(t, m, 1000)
	if err == nil {
		t.Fatal("expected a division-by-zero error")
	}
	if !m.CPU.Halted {
		t.Fatal("expected the CPU to be halted by the division fault")
	}
	if m.CPU.Regs.Flags != flagsBefore {
		t.Fatalf("expected FLAGS untouched by the faulting instruction: before=%#x after=%#x", flagsBefore, m.CPU.Regs.Flags)
	}
}

// TestRunRespectsContextCancellation exercises the cancellation path §5
// requires: Run must return promptly once its context is canceled, without
// the CPU ever having halted on its own.
func TestRunRespectsContextCancellation(t *testing.T) {
	boot := make([]byte, 512)
	// An infinite loop: JMP $ (two-byte short jump back to itself).
	boot[0] = 0xEB
	boot[1] = 0xFE
	boot[510] = 0x55
	boot[511] = 0xAA

	m := newTestMachine(t, boot)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := m.Run(ctx, func(*devices.SerialUART) {}, func(byte) {}, time.Microsecond)
	if err == nil {
		t.Fatal("expected Run to return the context's cancellation error")
	}
	if m.CPU.Halted {
		t.Fatal("CPU should not have halted on its own in an infinite loop")
	}
}
