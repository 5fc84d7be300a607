package disk

import (
	"strings"
)

// Directory entry attribute bits.
const (
	AttrReadOnly = 0x01
	AttrHidden   = 0x02
	AttrSystem   = 0x04
	AttrVolumeID = 0x08
	AttrDirectory = 0x10
	AttrArchive  = 0x20

	// DeletedMarker is the first byte of a directory slot that has been
	// freed (DEL / FORMAT-equivalent deletion).
	DeletedMarker = 0xE5
	// FreeMarker is the first byte of a slot that has never been used.
	FreeMarker = 0x00
)

// DirEntry is one 32-byte FAT16 root directory slot.
type DirEntry struct {
	Name         [8]byte
	Ext          [3]byte
	Attr         byte
	Reserved     [10]byte
	Time         uint16
	Date         uint16
	StartCluster uint16
	FileSize     uint32
}

func newDirEntry() DirEntry {
	var e DirEntry
	for i := range e.Name {
		e.Name[i] = ' '
	}
	for i := range e.Ext {
		e.Ext[i] = ' '
	}
	return e
}

// dirEntryFromHostName builds a directory entry's name/extension fields
// from a host filename, upper-cased and truncated to 8.3.
func dirEntryFromHostName(filename string, size uint32) DirEntry {
	e := newDirEntry()
	name, ext := filename, ""
	if idx := strings.LastIndexByte(filename, '.'); idx >= 0 {
		name, ext = filename[:idx], filename[idx+1:]
	}
	name = strings.ToUpper(name)
	ext = strings.ToUpper(ext)
	copy(e.Name[:], padTrunc(name, 8))
	copy(e.Ext[:], padTrunc(ext, 3))
	e.Attr = AttrArchive
	e.FileSize = size
	return e
}

func padTrunc(s string, n int) []byte {
	b := []byte(s)
	if len(b) > n {
		b = b[:n]
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	copy(out, b)
	return out
}

func (e DirEntry) bytes() [dirEntrySize]byte {
	var b [dirEntrySize]byte
	copy(b[0:8], e.Name[:])
	copy(b[8:11], e.Ext[:])
	b[11] = e.Attr
	copy(b[12:22], e.Reserved[:])
	putLE16(b[22:24], e.Time)
	putLE16(b[24:26], e.Date)
	putLE16(b[26:28], e.StartCluster)
	putLE32(b[28:32], e.FileSize)
	return b
}

func dirEntryFromBytes(b []byte) DirEntry {
	var e DirEntry
	copy(e.Name[:], b[0:8])
	copy(e.Ext[:], b[8:11])
	e.Attr = b[11]
	copy(e.Reserved[:], b[12:22])
	e.Time = getLE16(b[22:24])
	e.Date = getLE16(b[24:26])
	e.StartCluster = getLE16(b[26:28])
	e.FileSize = getLE32(b[28:32])
	return e
}

// hostFilename reconstructs a DOS 8.3 name as a host filename, trimming
// the space padding and re-inserting the dot separator when there's an
// extension.
func (e DirEntry) hostFilename() string {
	name := strings.TrimRight(string(e.Name[:]), " ")
	ext := strings.TrimRight(string(e.Ext[:]), " ")
	if ext == "" {
		return name
	}
	return name + "." + ext
}
