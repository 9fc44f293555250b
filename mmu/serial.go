package mmu

import "github.com/mereth-labs/dmgcore/interrupts"

// Serial is a register shell for SB (0xFF01) and SC (0xFF02): actual
// serial-link transfer is a non-goal, but SB/SC still need to exist as
// storage so link-cable-probing test ROMs (Blargg's cpu_instrs writes its
// pass/fail text through this register) don't stall waiting on a real
// transfer. Writes to SC with both the transfer-start bit and the
// internal-clock bit set (0x81) capture the
// written SB byte into an output log a test harness can inspect, then
// immediately clear the start bit and raise IF.serial as if the (absent)
// peer acknowledged it after its 8 T-cycles' worth of shift.
type Serial struct {
	sb  byte
	sc  byte
	out []byte

	ic *interrupts.Registers
}

func NewSerial(ic *interrupts.Registers) *Serial { return &Serial{ic: ic} }

func (s *Serial) Read(address uint16) byte {
	if address == 0xFF01 {
		return s.sb
	}
	return s.sc | 0x7E
}

func (s *Serial) Write(address uint16, value byte) {
	if address == 0xFF01 {
		s.sb = value
		return
	}
	s.sc = value & 0x81
	if s.sc&0x81 == 0x81 {
		s.out = append(s.out, s.sb)
		s.sc &^= 0x80
		s.ic.RequestSerial()
	}
}

// Captured returns every byte written through a completed serial transfer
// since the last call, for a host to surface Blargg-style test output.
func (s *Serial) Captured() []byte {
	out := s.out
	s.out = nil
	return out
}
