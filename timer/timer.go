// Package timer implements the DMG DIV/TIMA/TMA/TAC divider chain.
package timer

import "github.com/mereth-labs/dmgcore/interrupts"

// falling-edge bit selected by TAC's clock-select field (0..3), per
// original_source/src/timer.rs and spec.md's TAC table (1024/16/64/256
// T-cycle periods correspond to bits 9/3/5/7 of the 16-bit system counter).
var fallingEdgeBit = [4]uint{9, 3, 5, 7}

// Timer owns the 16-bit internal system counter, exposing its upper byte as
// DIV, and the TIMA/TMA/TAC registers with the 4-T-cycle overflow reload.
type Timer struct {
	counter uint16
	prevBit uint8

	tima byte
	tma  byte
	tac  byte

	reloadPending bool
	reloadTicks   int
}

func New() *Timer {
	return &Timer{}
}

func (t *Timer) enabled() bool { return t.tac&0x04 != 0 }

func (t *Timer) selectedBit() uint {
	return fallingEdgeBit[t.tac&0x03]
}

func (t *Timer) bitAt(counter uint16) uint8 {
	return uint8((counter >> t.selectedBit()) & 1)
}

// Tick advances the timer by one T-cycle. It must be called once per
// T-cycle so the reload delay and edge detection stay bus-accurate; callers
// stepping in whole M-cycles call it four times per M-cycle.
func (t *Timer) Tick(ic *interrupts.Registers) {
	if t.reloadPending {
		t.reloadTicks++
		if t.reloadTicks == 4 {
			t.tima = t.tma
			ic.RequestTimer()
			t.reloadPending = false
		}
	}

	t.counter++
	curBit := t.bitAt(t.counter)

	if t.enabled() && t.prevBit == 1 && curBit == 0 {
		t.tima++
		if t.tima == 0 {
			t.reloadPending = true
			t.reloadTicks = 0
		}
	}

	t.prevBit = curBit
}

func (t *Timer) DIV() byte { return byte(t.counter >> 8) }

func (t *Timer) ReadTIMA() byte { return t.tima }
func (t *Timer) ReadTMA() byte  { return t.tma }
func (t *Timer) ReadTAC() byte  { return t.tac | 0xF8 }

// WriteDIV resets the internal counter to 0. If the previously selected
// counter bit was 1, the falling edge this produces spuriously increments
// TIMA (the well known "TIMA obscure behavior").
func (t *Timer) WriteDIV(ic *interrupts.Registers) {
	oldBit := t.bitAt(t.counter)
	t.counter = 0
	if t.enabled() && oldBit == 1 {
		t.tima++
		if t.tima == 0 {
			t.reloadPending = true
			t.reloadTicks = 0
		}
	}
	t.prevBit = t.bitAt(t.counter)
}

// WriteTIMA sets TIMA and cancels a pending overflow reload if one is in
// flight.
func (t *Timer) WriteTIMA(v byte) {
	t.reloadPending = false
	t.tima = v
}

func (t *Timer) WriteTMA(v byte) { t.tma = v }

func (t *Timer) WriteTAC(v byte) { t.tac = v & 0x07 }

// DivAPUBit reports the current state of the system counter's bit 12 (bit 4
// of DIV), whose falling edges come every 8192 T-cycles and serve as the
// APU's 512 Hz frame sequencer clock on DMG hardware.
func (t *Timer) DivAPUBit() bool {
	return (t.counter>>12)&1 != 0
}
