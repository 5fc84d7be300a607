package disk

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// clusterTarget is where a data cluster's bytes actually live on the host.
type clusterTarget struct {
	path   string
	offset int64
}

// Disk is the virtualized FAT16 block device. A Disk owns a drive_c/
// directory on the host: drive_c/mbr.bin and drive_c/boot_sector.bin, when
// present, override the synthesized MBR and boot sector (they are written
// only when the guest changes LBA 0 or LBA 63), and drive_c/fs/ holds the
// guest-visible files backing the data area.
type Disk struct {
	driveDir string
	fsPath   string

	mbr        [SectorSize]byte
	bootSector [SectorSize]byte
	bpb        BiosParameterBlock

	fatTable []uint16
	rootDir  []DirEntry
	clusters map[uint32]clusterTarget

	writeProtected bool
}

// New opens (or initializes) a Disk rooted at driveDir. driveDir is created
// if absent, along with driveDir/fs. An existing mbr.bin/boot_sector.bin is
// reused verbatim so a volume survives across process restarts; otherwise
// both are synthesized fresh.
func New(driveDir string) (*Disk, error) {
	fsPath := filepath.Join(driveDir, "fs")
	if err := os.MkdirAll(fsPath, 0o755); err != nil {
		return nil, fmt.Errorf("disk: creating fs directory: %w", err)
	}

	d := &Disk{
		driveDir: driveDir,
		fsPath:   fsPath,
		clusters: make(map[uint32]clusterTarget),
	}

	if data, err := os.ReadFile(filepath.Join(driveDir, "mbr.bin")); err == nil && len(data) == SectorSize {
		copy(d.mbr[:], data)
	} else {
		d.mbr = buildDefaultMBR()
	}

	if data, err := os.ReadFile(filepath.Join(driveDir, "boot_sector.bin")); err == nil && len(data) == SectorSize {
		copy(d.bootSector[:], data)
	} else {
		d.bootSector = buildDefaultBootSector()
	}
	d.bpb = bpbFromBootSector(d.bootSector[:])

	if err := d.rebuildFromHost(); err != nil {
		return nil, fmt.Errorf("disk: scanning host filesystem: %w", err)
	}
	return d, nil
}

// rebuildFromHost scans fsPath and rebuilds the FAT chain, root directory,
// and cluster map from scratch, allocating a contiguous cluster run per
// file starting at cluster 2.
func (d *Disk) rebuildFromHost() error {
	d.fatTable = d.fatTable[:0]
	d.rootDir = d.rootDir[:0]
	d.clusters = make(map[uint32]clusterTarget)

	entries, err := os.ReadDir(d.fsPath)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	bytesPerCluster := uint32(SectorSize) * sectorsPerCluster
	next := uint32(firstDataCluster)

	for _, name := range names {
		path := filepath.Join(d.fsPath, name)
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		size := uint32(info.Size())
		entry := dirEntryFromHostName(name, size)
		entry.StartCluster = uint16(next)
		d.rootDir = append(d.rootDir, entry)

		clustersNeeded := (size + bytesPerCluster - 1) / bytesPerCluster
		if clustersNeeded == 0 {
			clustersNeeded = 1
		}
		for i := uint32(0); i < clustersNeeded; i++ {
			cluster := next + i
			nextEntry := uint16(cluster + 1)
			if i == clustersNeeded-1 {
				nextEntry = 0xFFFF
			}
			d.setFAT(cluster, nextEntry)
			d.clusters[cluster] = clusterTarget{path: path, offset: int64(i) * int64(bytesPerCluster)}
		}
		next += clustersNeeded
	}
	return nil
}

func (d *Disk) setFAT(cluster uint32, value uint16) {
	if int(cluster) >= len(d.fatTable) {
		grown := make([]uint16, cluster+1)
		copy(grown, d.fatTable)
		d.fatTable = grown
	}
	d.fatTable[cluster] = value
}

func (d *Disk) fatBytes() []byte {
	buf := make([]byte, fatSectors*SectorSize)
	buf[0] = MediaDescriptorFixedDisk
	buf[1] = 0xFF
	buf[2] = 0xFF
	buf[3] = 0xFF
	for cluster, val := range d.fatTable {
		if cluster < firstDataCluster {
			continue // FAT[0] and FAT[1] keep the reserved words set above
		}
		off := cluster * 2
		if off+2 > len(buf) {
			continue
		}
		putLE16(buf[off:off+2], val)
	}
	return buf
}

func (d *Disk) rootDirBytes() []byte {
	buf := make([]byte, rootDirEntries*dirEntrySize)
	for i, e := range d.rootDir {
		if i >= rootDirEntries {
			break
		}
		b := e.bytes()
		copy(buf[i*dirEntrySize:], b[:])
	}
	return buf
}

// ReadSector returns the 512 bytes at the given logical block address,
// resolving across MBR / boot sector / FAT / root directory / data area
// the way a real FAT16 volume lays them out.
func (d *Disk) ReadSector(lba uint32) []byte {
	switch {
	case lba == 0:
		return append([]byte(nil), d.mbr[:]...)
	case lba == BootSectorLBA:
		return append([]byte(nil), d.bootSector[:]...)
	case lba >= fat1StartLBA && lba < fat1EndLBA:
		return sliceSector(d.fatBytes(), lba-fat1StartLBA)
	case lba >= fat2StartLBA && lba < fat2EndLBA:
		return sliceSector(d.fatBytes(), lba-fat2StartLBA)
	case lba >= rootDirStartLBA && lba < rootDirEndLBA:
		return sliceSector(d.rootDirBytes(), lba-rootDirStartLBA)
	case lba >= dataStartLBA && lba < TotalSectors:
		return d.readDataSector(lba)
	default:
		return make([]byte, SectorSize)
	}
}

func sliceSector(region []byte, sectorIndex uint32) []byte {
	out := make([]byte, SectorSize)
	off := int(sectorIndex) * SectorSize
	if off >= len(region) {
		return out
	}
	n := copy(out, region[off:])
	_ = n
	return out
}

func (d *Disk) readDataSector(lba uint32) []byte {
	cluster := firstDataCluster + (lba-dataStartLBA)/sectorsPerCluster
	sectorInCluster := (lba - dataStartLBA) % sectorsPerCluster

	out := make([]byte, SectorSize)
	target, ok := d.clusters[cluster]
	if !ok {
		return out
	}
	f, err := os.Open(target.path)
	if err != nil {
		return out
	}
	defer f.Close()
	offset := target.offset + int64(sectorInCluster)*SectorSize
	n, _ := f.ReadAt(out, offset)
	_ = n
	return out
}

// WriteSector applies a guest write to the given LBA, implementing the
// FDISK/FORMAT detection heuristics and write-through to host files.
// Writes are ignored entirely when the volume is write-protected.
func (d *Disk) WriteSector(lba uint32, data []byte) error {
	if d.writeProtected {
		return nil
	}
	if len(data) != SectorSize {
		return fmt.Errorf("disk: write of %d bytes is not a whole sector", len(data))
	}

	switch {
	case lba == 0:
		if !bytes.Equal(d.mbr[:], data) {
			copy(d.mbr[:], data)
			_ = os.WriteFile(filepath.Join(d.driveDir, "mbr.bin"), data, 0o644)
		}
		return nil
	case lba == BootSectorLBA:
		if !bytes.Equal(d.bootSector[:], data) {
			copy(d.bootSector[:], data)
			d.bpb = bpbFromBootSector(d.bootSector[:])
			_ = os.WriteFile(filepath.Join(d.driveDir, "boot_sector.bin"), data, 0o644)
			return d.wipeFilesystem()
		}
		return nil
	case lba >= fat1StartLBA && lba < fat1EndLBA:
		return d.writeFATSector(lba-fat1StartLBA, data)
	case lba >= fat2StartLBA && lba < fat2EndLBA:
		return d.writeFATSector(lba-fat2StartLBA, data)
	case lba >= rootDirStartLBA && lba < rootDirEndLBA:
		return d.writeRootDirSector(lba-rootDirStartLBA, data)
	case lba >= dataStartLBA && lba < TotalSectors:
		return d.writeDataSector(lba, data)
	default:
		return nil
	}
}

func (d *Disk) writeFATSector(sectorIndex uint32, data []byte) error {
	baseCluster := sectorIndex * (SectorSize / 2)
	for i := 0; i+2 <= len(data); i += 2 {
		cluster := baseCluster + uint32(i/2)
		d.setFAT(cluster, getLE16(data[i:i+2]))
	}
	return nil
}

// writeRootDirSector diffs incoming 32-byte slots against the current root
// directory and translates each change into a host filesystem effect:
// a new non-zero first byte over a previously free slot creates a host
// file, a first byte of 0xE5 over a live slot deletes it.
func (d *Disk) writeRootDirSector(sectorIndex uint32, data []byte) error {
	entriesPerSector := SectorSize / dirEntrySize
	baseIndex := int(sectorIndex) * entriesPerSector

	for i := 0; i < entriesPerSector; i++ {
		slotIndex := baseIndex + i
		off := i * dirEntrySize
		newBytes := data[off : off+dirEntrySize]
		newEntry := dirEntryFromBytes(newBytes)

		var oldEntry DirEntry
		hadOld := slotIndex < len(d.rootDir)
		if hadOld {
			oldEntry = d.rootDir[slotIndex]
		}

		switch {
		case newBytes[0] == FreeMarker:
			// slot cleared, nothing to do beyond dropping it below
		case newBytes[0] == DeletedMarker && hadOld && oldEntry.Name[0] != FreeMarker:
			path := filepath.Join(d.fsPath, oldEntry.hostFilename())
			_ = os.Remove(path)
		case !hadOld || oldEntry.Name[0] == FreeMarker || oldEntry.Name[0] == DeletedMarker:
			path := filepath.Join(d.fsPath, newEntry.hostFilename())
			if _, err := os.Stat(path); os.IsNotExist(err) {
				_ = os.WriteFile(path, nil, 0o644)
			}
		}

		for len(d.rootDir) <= slotIndex {
			d.rootDir = append(d.rootDir, newDirEntry())
		}
		d.rootDir[slotIndex] = newEntry
	}
	return d.rebuildFromHost()
}

func (d *Disk) writeDataSector(lba uint32, data []byte) error {
	cluster := firstDataCluster + (lba-dataStartLBA)/sectorsPerCluster
	sectorInCluster := (lba - dataStartLBA) % sectorsPerCluster

	target, ok := d.clusters[cluster]
	if !ok {
		return nil
	}
	f, err := os.OpenFile(target.path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("disk: writing data cluster: %w", err)
	}
	defer f.Close()
	offset := target.offset + int64(sectorInCluster)*SectorSize
	_, err = f.WriteAt(data, offset)
	return err
}

// wipeFilesystem implements the simulated FORMAT C: side effect: every
// regular file under fs/ is removed and the in-memory FAT/root/cluster
// state is cleared.
func (d *Disk) wipeFilesystem() error {
	entries, err := os.ReadDir(d.fsPath)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			_ = os.Remove(filepath.Join(d.fsPath, e.Name()))
		}
	}
	d.fatTable = nil
	d.rootDir = nil
	d.clusters = make(map[uint32]clusterTarget)
	return nil
}

// SetWriteProtected toggles write protection; while set, WriteSector is a
// silent no-op as the design allows.
func (d *Disk) SetWriteProtected(protected bool) {
	d.writeProtected = protected
}

// Geometry reports the fixed CHS geometry this device presents to INT 13h.
func (d *Disk) Geometry() (cylinders int, heads, sectorsPerTrack uint8) {
	return Cylinders, Heads, SectorsPerTrack
}
