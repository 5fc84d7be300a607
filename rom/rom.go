// Package rom builds the 64KiB BIOS ROM image placed at physical F0000 and
// exposes the handful of fixed offsets the CPU core and BIOS service layer
// rely on: the power-on reset vector, the initialization stub it jumps to,
// and a minimal INT 14h handler kept for machines that boot with interrupt
// hooking disabled and fall through to the ROM's own code instead of the
// host-intercepted BIOS layer.
package rom

const (
	// Size is the total size of the ROM aperture.
	Size = 0x10000

	// SerialHandlerOffset is where the INT 14h stub lives, F000:E000.
	SerialHandlerOffset = 0xE000

	// EntryPointOffset is the initialization sequence the reset vector
	// jumps to, F000:E05B.
	EntryPointOffset = 0xE05B

	// ResetVectorOffset is the power-on CS:IP target, F000:FFF0.
	ResetVectorOffset = 0xFFF0

	// BootSectorLoadAddress is where the initialization sequence's far
	// jump hands control: 0000:7C00. The sequence loads nothing itself;
	// the machine places the MBR there before the CPU runs.
	BootSectorLoadAddress = 0x7C00
)

var serialHandler = []byte{
	0x50,             // PUSH AX
	0x53,             // PUSH BX
	0x51,             // PUSH CX
	0x52,             // PUSH DX
	0x80, 0xFC, 0x00, // CMP AH, 0x00 (initialize port)
	0x75, 0x09, // JNE not_init
	0xB4, 0x00, // MOV AH, 0 (success)
	0xB0, 0x03, // MOV AL, 0x03 (port initialized)
	0x5A, // POP DX
	0x59, // POP CX
	0x5B, // POP BX
	0x58, // POP AX
	0xCF, // IRET
	// not_init:
	0x80, 0xFC, 0x01, // CMP AH, 0x01 (write character)
	0x75, 0x0B, // JNE skip_write
	0xBA, 0xF8, 0x03, // MOV DX, 0x3F8 (COM1)
	0xEE,       // OUT DX, AL
	0xB4, 0x00, // MOV AH, 0 (success)
	0x5A, // POP DX
	0x59, // POP CX
	0x5B, // POP BX
	0x58, // POP AX
	0xCF, // IRET
	// skip_write:
	0xB4, 0x01, // MOV AH, 1 (error - unsupported function)
	0x5A, // POP DX
	0x59, // POP CX
	0x5B, // POP BX
	0x58, // POP AX
	0xCF, // IRET
}

var initSequence = []byte{
	0xFA,       // CLI
	0x31, 0xC0, // XOR AX, AX
	0x8E, 0xD8, // MOV DS, AX
	0x8E, 0xC0, // MOV ES, AX
	0x8E, 0xD0, // MOV SS, AX
	0xBC, 0x00, 0x7C, // MOV SP, 0x7C00
	0xFB, // STI
	0xEA, // Far JMP 0000:7C00
	0x00, 0x7C,
	0x00, 0x00,
}

// Build returns a freshly allocated 64KiB ROM image with the serial stub,
// initialization sequence, and reset vector burned in at their fixed
// offsets. If base is non-empty it seeds the image before the fixed
// offsets are stamped, letting a caller supply a larger custom payload
// (e.g. a disassembled vendor BIOS) while keeping the entry points this
// emulator depends on intact.
func Build(base []byte) []byte {
	data := make([]byte, Size)
	copy(data, base)

	copy(data[SerialHandlerOffset:], serialHandler)
	copy(data[EntryPointOffset:], initSequence)

	data[ResetVectorOffset+0] = 0xEA // Far JMP
	data[ResetVectorOffset+1] = 0x5B // IP = E05B
	data[ResetVectorOffset+2] = 0xE0
	data[ResetVectorOffset+3] = 0x00 // CS = F000
	data[ResetVectorOffset+4] = 0xF0

	return data
}
