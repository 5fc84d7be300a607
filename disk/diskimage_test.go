package disk

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestCHSLBARoundTrip(t *testing.T) {
	for cylinder := 0; cylinder < Cylinders; cylinder += 137 {
		for head := uint8(0); head < Heads; head++ {
			for sector := uint8(1); sector <= SectorsPerTrack; sector += 17 {
				lba := CHSToLBA(cylinder, head, sector)
				gotCyl, gotHead, gotSector := LBAToCHS(lba)
				if gotCyl != cylinder || gotHead != head || gotSector != sector {
					t.Fatalf("CHS(%d,%d,%d) -> LBA %d -> CHS(%d,%d,%d), not invertible",
						cylinder, head, sector, lba, gotCyl, gotHead, gotSector)
				}
			}
		}
	}
}

func TestReadSectorAlwaysReturns512Bytes(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, lba := range []uint32{0, 1, 63, 64, 319, 320, 575, 576, 607, 608, 1000, TotalSectors - 1, TotalSectors, TotalSectors + 100} {
		data := d.ReadSector(lba)
		if len(data) != SectorSize {
			t.Fatalf("ReadSector(%d) returned %d bytes, want %d", lba, len(data), SectorSize)
		}
	}
}

func TestMBRSignature(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mbr := d.ReadSector(0)
	if mbr[510] != 0x55 || mbr[511] != 0xAA {
		t.Fatalf("expected MBR signature 0x55 0xAA at offset 510-511, got 0x%02x 0x%02x", mbr[510], mbr[511])
	}
}

func TestOutOfRangeSectorReadsZero(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := d.ReadSector(TotalSectors + 1)
	if !bytes.Equal(data, make([]byte, SectorSize)) {
		t.Fatal("expected an out-of-range sector read to return all zeros")
	}
}

func TestFormatDetectionWipesOnceThenNoOp(t *testing.T) {
	driveDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(driveDir, "fs"), 0o755); err != nil {
		t.Fatalf("mkdir fs: %v", err)
	}
	if err := os.WriteFile(filepath.Join(driveDir, "fs", "keep.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed host file: %v", err)
	}

	d, err := New(driveDir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	current := d.ReadSector(BootSectorLBA)
	different := make([]byte, SectorSize)
	copy(different, current)
	different[3] ^= 0xFF // perturb an OEM-name byte so it differs from current

	if err := d.WriteSector(BootSectorLBA, different); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(driveDir, "fs", "keep.txt")); !os.IsNotExist(err) {
		t.Fatal("expected the first differing boot-sector write to wipe the host fs")
	}

	if err := os.WriteFile(filepath.Join(driveDir, "fs", "marker.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("reseed marker file: %v", err)
	}
	if err := d.WriteSector(BootSectorLBA, different); err != nil {
		t.Fatalf("second identical write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(driveDir, "fs", "marker.txt")); err != nil {
		t.Fatal("expected a repeated identical boot-sector write to be a no-op and not wipe the host fs again")
	}
}

func TestFAT16MediaDescriptorAndEndOfChain(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fat1 := d.ReadSector(64)
	if fat1[0] != MediaDescriptorFixedDisk {
		t.Fatalf("expected FAT[0] media descriptor 0xF8, got 0x%02x", fat1[0])
	}
	if fat1[1] != 0xFF {
		t.Fatalf("expected FAT[0] high byte 0xFF, got 0x%02x", fat1[1])
	}
	if fat1[2] != 0xFF || fat1[3] != 0xFF {
		t.Fatalf("expected FAT[1] end-of-chain marker 0xFFFF, got 0x%02x%02x", fat1[3], fat1[2])
	}
}

func TestFAT2MirrorsFAT1(t *testing.T) {
	d, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := uint32(0); i < fatSectors; i++ {
		a := d.ReadSector(fat1StartLBA + i)
		b := d.ReadSector(fat2StartLBA + i)
		if !bytes.Equal(a, b) {
			t.Fatalf("FAT mirror mismatch at sector offset %d", i)
		}
	}
}
