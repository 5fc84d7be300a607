package devices

import "sync"

// fifoDepth bounds the UART's ingress and egress queues; bytes offered to a
// full ingress queue are dropped, matching a real 16550-class FIFO under
// sustained overrun rather than blocking the producer.
const fifoDepth = 16

// byteFIFO is a small fixed-capacity ring buffer of pending bytes.
type byteFIFO struct {
	buf        [fifoDepth]byte
	head, size int
}

func (f *byteFIFO) push(b byte) bool {
	if f.size == fifoDepth {
		return false
	}
	f.buf[(f.head+f.size)%fifoDepth] = b
	f.size++
	return true
}

func (f *byteFIFO) pop() (byte, bool) {
	if f.size == 0 {
		return 0, false
	}
	b := f.buf[f.head]
	f.head = (f.head + 1) % fifoDepth
	f.size--
	return b, true
}

func (f *byteFIFO) peek() (byte, bool) {
	if f.size == 0 {
		return 0, false
	}
	return f.buf[f.head], true
}

func (f *byteFIFO) empty() bool { return f.size == 0 }
func (f *byteFIFO) full() bool  { return f.size == fifoDepth }

// SerialUART implements the 8250-class register set at COM1 (0x3F8-0x3FF)
// described by the port-offset table: RBR/THR/DLL at offset 0, IER/DLM at
// 1, IIR(read)/FCR(write) at 2, LCR at 3, MCR at 4, LSR at 5, MSR at 6,
// SCR at 7. Unlike the register-only model it is adapted from, it carries
// an actual bounded ingress FIFO so that guest reads of RBR and the BIOS's
// blocking keyboard-read path can observe host-supplied bytes rather than
// always reading back zero.
type SerialUART struct {
	lock sync.Mutex

	ingress byteFIFO
	egress  byteFIFO

	dll, dlm byte
	ier      byte
	fcr      byte
	lcr      byte
	mcr      byte
	msr      byte
	scr      byte
}

// NewSerialUART constructs a UART with both FIFOs empty.
func NewSerialUART() *SerialUART {
	return &SerialUART{}
}

func (s *SerialUART) dlabActive() bool { return s.lcr&LCR_DLAB != 0 }

func (s *SerialUART) lsr() byte {
	var v byte
	if !s.ingress.empty() {
		v |= LSR_DR
	}
	if !s.egress.full() {
		v |= LSR_THRE
	}
	if s.egress.empty() {
		v |= LSR_TEMT
	}
	return v
}

// HandleIO satisfies devices.PioDevice, dispatching on the COM1 port
// offset and transfer direction exactly as the table in the port-offset
// specification requires.
func (s *SerialUART) HandleIO(port uint16, direction uint8, size uint8, data []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	offset := port - COM1_PORT_BASE
	if direction == IODirectionOut {
		val := data[0]
		switch offset {
		case RHR_THR_DLL:
			if s.dlabActive() {
				s.dll = val
			} else {
				s.egress.push(val)
			}
		case IER_DLH:
			if s.dlabActive() {
				s.dlm = val
			} else {
				s.ier = val
			}
		case IIR_FCR:
			s.fcr = val
			if val&0x02 != 0 {
				s.ingress = byteFIFO{}
			}
			if val&0x04 != 0 {
				s.egress = byteFIFO{}
			}
		case LCR:
			s.lcr = val
		case MCR:
			s.mcr = val
		case SCR:
			s.scr = val
		}
		return nil
	}

	var readVal byte
	switch offset {
	case RHR_THR_DLL:
		if s.dlabActive() {
			readVal = s.dll
		} else {
			readVal, _ = s.ingress.pop()
		}
	case IER_DLH:
		if s.dlabActive() {
			readVal = s.dlm
		} else {
			readVal = s.ier
		}
	case IIR_FCR:
		if !s.ingress.empty() {
			readVal = IIR_RDA
		} else if !s.egress.full() {
			readVal = IIR_THRE
		} else {
			readVal = IIR_NO_INT_PENDING
		}
	case LCR:
		readVal = s.lcr
	case MCR:
		readVal = s.mcr
	case LSR:
		readVal = s.lsr()
	case MSR:
		readVal = s.msr
	case SCR:
		readVal = s.scr
	}
	data[0] = readVal
	return nil
}

// PushIngress offers a host-originated byte to the ingress FIFO, dropping
// it silently if the FIFO is already full.
func (s *SerialUART) PushIngress(b byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.ingress.push(b)
}

// PopEgress drains one byte the guest has written to THR, for the host
// driver to forward to its terminal.
func (s *SerialUART) PopEgress() (byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.egress.pop()
}

// IngressEmpty reports whether the receive FIFO currently holds no bytes,
// the condition INT 16h/AH=01 polls.
func (s *SerialUART) IngressEmpty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ingress.empty()
}

// PeekIngress returns the next pending ingress byte without consuming it.
func (s *SerialUART) PeekIngress() (byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ingress.peek()
}

// PopIngress consumes and returns the next pending ingress byte.
func (s *SerialUART) PopIngress() (byte, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.ingress.pop()
}
