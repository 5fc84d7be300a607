package disk

// BiosParameterBlock describes the FAT16 geometry recorded in the boot
// sector. The field shape follows the authoritative parse path exercised
// at disk construction time (total_sectors is a 16-bit field superseded by
// large_sectors for volumes that exceed 65535 sectors, and geometry fields
// extend through hidden_sectors/large_sectors as 32-bit quantities) rather
// than the narrower, inconsistent struct some duplicate parsing code used
// elsewhere — this shape is the one actually read back when the disk is
// reopened.
type BiosParameterBlock struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumberOfFATs      uint8
	RootEntries       uint16
	TotalSectors      uint16 // 0 when the volume needs LargeSectors
	MediaDescriptor   uint8
	SectorsPerFAT     uint16
	SectorsPerTrack   uint16
	NumberOfHeads     uint16
	HiddenSectors     uint32
	LargeSectors      uint32
}

const bpbOffset = 11
const bpbSize = 25

// defaultBPB is the BPB this device stamps into every freshly generated
// boot sector: the fixed 2 GiB / 1024x16x63 geometry, 64 sectors/cluster,
// dual FAT, 512-entry root directory.
func defaultBPB() BiosParameterBlock {
	totalSectors := TotalSectors
	clusters := (totalSectors - dataStartLBA) / sectorsPerCluster
	_ = clusters
	return BiosParameterBlock{
		BytesPerSector:    SectorSize,
		SectorsPerCluster: sectorsPerCluster,
		ReservedSectors:   uint16(fat1StartLBA),
		NumberOfFATs:      2,
		RootEntries:       rootDirEntries,
		TotalSectors:      0, // volume exceeds 16 bits of sectors
		MediaDescriptor:   MediaDescriptorFixedDisk,
		SectorsPerFAT:     fatSectors,
		SectorsPerTrack:   SectorsPerTrack,
		NumberOfHeads:     Heads,
		HiddenSectors:     BootSectorLBA,
		LargeSectors:      totalSectors,
	}
}

func (b BiosParameterBlock) writeTo(boot []byte) {
	putLE16(boot[11:13], b.BytesPerSector)
	boot[13] = b.SectorsPerCluster
	putLE16(boot[14:16], b.ReservedSectors)
	boot[16] = b.NumberOfFATs
	putLE16(boot[17:19], b.RootEntries)
	putLE16(boot[19:21], b.TotalSectors)
	boot[21] = b.MediaDescriptor
	putLE16(boot[22:24], b.SectorsPerFAT)
	putLE16(boot[24:26], b.SectorsPerTrack)
	putLE16(boot[26:28], b.NumberOfHeads)
	putLE32(boot[28:32], b.HiddenSectors)
	putLE32(boot[32:36], b.LargeSectors)
}

func bpbFromBootSector(data []byte) BiosParameterBlock {
	return BiosParameterBlock{
		BytesPerSector:    getLE16(data[11:13]),
		SectorsPerCluster: data[13],
		ReservedSectors:   getLE16(data[14:16]),
		NumberOfFATs:      data[16],
		RootEntries:       getLE16(data[17:19]),
		TotalSectors:      getLE16(data[19:21]),
		MediaDescriptor:   data[21],
		SectorsPerFAT:     getLE16(data[22:24]),
		SectorsPerTrack:   getLE16(data[24:26]),
		NumberOfHeads:     getLE16(data[26:28]),
		HiddenSectors:     getLE32(data[28:32]),
		LargeSectors:      getLE32(data[32:36]),
	}
}

// buildDefaultBootSector synthesizes LBA 63: the jump + OEM name, the BPB,
// zeroed boot code, and the 0x55AA signature.
func buildDefaultBootSector() [SectorSize]byte {
	var boot [SectorSize]byte
	copy(boot[0:3], []byte{0xEB, 0x3C, 0x90})
	copy(boot[3:11], []byte("XTCOREV1"))
	defaultBPB().writeTo(boot[:])
	boot[SectorSize-2] = 0x55
	boot[SectorSize-1] = 0xAA
	return boot
}
