package disk

// PartitionEntry is one 16-byte slot of the MBR partition table.
type PartitionEntry struct {
	Bootable       bool
	StartHead      uint8
	StartSector    uint8
	StartCylinder  uint16
	SystemID       uint8
	EndHead        uint8
	EndSector      uint8
	EndCylinder    uint16
	StartLBA       uint32
	TotalSectors   uint32
}

func (p PartitionEntry) bytes() [partitionEntrySize]byte {
	var b [partitionEntrySize]byte
	if p.Bootable {
		b[0] = 0x80
	}
	b[1] = p.StartHead
	b[2] = (p.StartSector & 0x3F) | uint8((p.StartCylinder>>8)&0x03)<<6
	b[3] = uint8(p.StartCylinder)
	b[4] = p.SystemID
	b[5] = p.EndHead
	b[6] = (p.EndSector & 0x3F) | uint8((p.EndCylinder>>8)&0x03)<<6
	b[7] = uint8(p.EndCylinder)
	putLE32(b[8:12], p.StartLBA)
	putLE32(b[12:16], p.TotalSectors)
	return b
}

func partitionFromBytes(b []byte) PartitionEntry {
	return PartitionEntry{
		Bootable:      b[0] == 0x80,
		StartHead:     b[1],
		StartSector:   b[2] & 0x3F,
		StartCylinder: (uint16(b[2]&0xC0) << 2) | uint16(b[3]),
		SystemID:      b[4],
		EndHead:       b[5],
		EndSector:     b[6] & 0x3F,
		EndCylinder:   (uint16(b[6]&0xC0) << 2) | uint16(b[7]),
		StartLBA:      getLE32(b[8:12]),
		TotalSectors:  getLE32(b[12:16]),
	}
}

func putLE16(b []byte, v uint16) { b[0] = byte(v); b[1] = byte(v >> 8) }
func getLE16(b []byte) uint16    { return uint16(b[0]) | uint16(b[1])<<8 }
func putLE32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}
func getLE32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// bootPartition returns the single bootable FAT16 partition entry every
// generated MBR carries: start LBA 63, spanning the whole logical device.
func bootPartition() PartitionEntry {
	_, endHead, endSector := 0, uint8(Heads-1), uint8(SectorsPerTrack)
	endCyl, _, _ := LBAToCHS(TotalSectors - 1)
	if endCyl > Cylinders-1 {
		endCyl = Cylinders - 1 // the volume extends past the CHS-addressable range
	}
	return PartitionEntry{
		Bootable:      true,
		StartHead:     1,
		StartSector:   1,
		StartCylinder: 0,
		SystemID:      FAT16SystemID,
		EndHead:       endHead,
		EndSector:     endSector,
		EndCylinder:   uint16(endCyl),
		StartLBA:      BootSectorLBA,
		TotalSectors:  TotalSectors,
	}
}

// buildDefaultMBR synthesizes sector 0: boot code that greets the serial
// port, scans the partition table for the active entry, loads its boot
// sector to 0000:7C00, and jumps to it — adapted from the reference
// FDISK-equivalent boot code, trimmed to the single-partition case this
// device always presents.
func buildDefaultMBR() [SectorSize]byte {
	var mbr [SectorSize]byte

	bootCode := []byte{
		0xFA,       // CLI
		0x33, 0xC0, // XOR AX, AX
		0x8E, 0xD0, // MOV SS, AX
		0xBC, 0x00, 0x7C, // MOV SP, 0x7C00
		0x8E, 0xD8, // MOV DS, AX
		0x8E, 0xC0, // MOV ES, AX
	}
	msg := "booting C:\r\n"
	for _, c := range msg {
		bootCode = append(bootCode,
			0xB4, 0x01, // MOV AH, 1
			0xB0, byte(c), // MOV AL, c
			0xCD, 0x14, // INT 0x14
		)
	}
	bootCode = append(bootCode,
		0xBE, 0xBE, 0x7C, // MOV SI, 0x7CBE
		0xB9, 0x04, 0x00, // MOV CX, 4
		// search_loop:
		0x8A, 0x04, // MOV AL, [SI]
		0x3C, 0x80, // CMP AL, 0x80
		0x74, 0x06, // JE found_active
		0x83, 0xC6, 0x10, // ADD SI, 16
		0xE2, 0xF5, // LOOP search_loop
		0xF4, // HLT (no active partition)
		// found_active:
		0x8B, 0x44, 0x08, // MOV AX, [SI+8]
		0xB4, 0x02, // MOV AH, 2
		0xB0, 0x01, // MOV AL, 1
		0xBB, 0x00, 0x7C, // MOV BX, 0x7C00
		0x8A, 0x74, 0x01, // MOV DH, [SI+1]
		0x8A, 0x54, 0x02, // MOV DL, [SI+2]
		0xCD, 0x13, // INT 0x13
		0x73, 0x01, // JNC success
		0xF4, // HLT (read error)
		// success:
		0xEA, 0x00, 0x7C, 0x00, 0x00, // JMP 0000:7C00
	)
	copy(mbr[:PartitionTableOffset], bootCode)

	entryBytes := bootPartition().bytes()
	copy(mbr[PartitionTableOffset:PartitionTableOffset+partitionEntrySize], entryBytes[:])

	mbr[SectorSize-2] = 0x55
	mbr[SectorSize-1] = 0xAA
	return mbr
}

func parsePartitions(mbr []byte) [numPartitions]PartitionEntry {
	var out [numPartitions]PartitionEntry
	for i := 0; i < numPartitions; i++ {
		off := PartitionTableOffset + i*partitionEntrySize
		out[i] = partitionFromBytes(mbr[off : off+partitionEntrySize])
	}
	return out
}
