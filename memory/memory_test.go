package memory

import "testing"

func TestPhysicalAddressFormula(t *testing.T) {
	if got := PhysicalAddress(0x1000, 0x0020); got != 0x10020 {
		t.Fatalf("expected 0x10020, got 0x%05x", got)
	}
}

func TestROMWriteProtected(t *testing.T) {
	f := New()
	image := make([]byte, ROMSize)
	for i := range image {
		image[i] = byte(i)
	}
	if err := f.LoadROM(image); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	f.SetA20(true)

	for _, addr := range []uint32{ROMBase, ROMBase + 1, ROMBase + ROMSize/2, Size - 1} {
		before := f.ReadByte(addr)
		f.WriteByte(addr, before^0xFF)
		if got := f.ReadByte(addr); got != before {
			t.Fatalf("write to ROM address 0x%05x was not dropped: before=0x%02x after=0x%02x", addr, before, got)
		}
	}
}

func TestRAMReadWriteRoundTrip(t *testing.T) {
	f := New()
	f.SetA20(true)
	f.WriteByte(0x1234, 0x42)
	if got := f.ReadByte(0x1234); got != 0x42 {
		t.Fatalf("expected 0x42, got 0x%02x", got)
	}
	f.WriteWord(0x2000, 0xBEEF)
	if got := f.ReadWord(0x2000); got != 0xBEEF {
		t.Fatalf("expected 0xBEEF, got 0x%04x", got)
	}
}

func TestA20GateWrapsAddressesWhenDisabled(t *testing.T) {
	f := New()
	f.SetA20(false)
	f.WriteByte(0x000FF, 0x11)
	if got := f.ReadByte(0x1000FF); got != 0x11 {
		t.Fatalf("expected A20-disabled access at 0x1000FF to alias 0x000FF (got 0x%02x)", got)
	}

	f.SetA20(true)
	f.WriteByte(0x1000FF, 0x22)
	if got := f.ReadByte(0x000FF); got == 0x22 {
		t.Fatal("expected A20-enabled access at 0x1000FF to no longer alias 0x000FF")
	}
}

func TestBlockReadWriteRoundTrip(t *testing.T) {
	f := New()
	f.SetA20(true)
	data := []byte{1, 2, 3, 4, 5}
	f.WriteBlock(0x500, data)
	got := f.ReadBlock(0x500, len(data))
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("byte %d: expected %d, got %d", i, data[i], got[i])
		}
	}
}

func TestROMValidReflectsLoadROMCall(t *testing.T) {
	f := New()
	if f.ROMValid() {
		t.Fatal("expected ROMValid false before LoadROM")
	}
	if err := f.LoadROM(nil); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if !f.ROMValid() {
		t.Fatal("expected ROMValid true after LoadROM, even with a zeroed image")
	}
}
