package timer_test

import (
	"testing"

	"github.com/mereth-labs/dmgcore/interrupts"
	"github.com/mereth-labs/dmgcore/timer"
)

func TestTIMAIncrementsOnFallingEdge(t *testing.T) {
	tmr := timer.New()
	ic := interrupts.New()
	tmr.WriteTAC(0x05) // enabled, clock select 01 -> 16 T-cycle period

	for i := 0; i < 16; i++ {
		tmr.Tick(ic)
	}
	if got := tmr.ReadTIMA(); got != 1 {
		t.Errorf("TIMA = %d, want 1", got)
	}
}

func TestTIMAOverflowReloadsFromTMAAfterFourCycles(t *testing.T) {
	tmr := timer.New()
	ic := interrupts.New()
	tmr.WriteTAC(0x05)
	tmr.WriteTMA(0x12)
	tmr.WriteTIMA(0xFF)

	for i := 0; i < 16; i++ {
		tmr.Tick(ic)
	}
	if got := tmr.ReadTIMA(); got != 0 {
		t.Fatalf("TIMA immediately after overflow = %d, want 0 (reload pending)", got)
	}
	if ic.ReadIF()&(1<<interrupts.TimerBit) != 0 {
		t.Fatal("timer interrupt requested before the reload delay elapsed")
	}

	for i := 0; i < 3; i++ {
		tmr.Tick(ic)
	}
	if got := tmr.ReadTIMA(); got != 0 {
		t.Fatalf("TIMA = %d, want still 0 one tick before reload completes", got)
	}

	tmr.Tick(ic)
	if got := tmr.ReadTIMA(); got != 0x12 {
		t.Errorf("TIMA = %#x, want TMA (0x12)", got)
	}
	if ic.ReadIF()&(1<<interrupts.TimerBit) == 0 {
		t.Error("timer interrupt should be requested once the reload completes")
	}
}

func TestWriteTIMACancelsPendingReload(t *testing.T) {
	tmr := timer.New()
	ic := interrupts.New()
	tmr.WriteTAC(0x05)
	tmr.WriteTMA(0x12)
	tmr.WriteTIMA(0xFF)

	for i := 0; i < 16; i++ {
		tmr.Tick(ic)
	}
	tmr.WriteTIMA(0x05) // cancel the reload TMA would otherwise install

	for i := 0; i < 4; i++ {
		tmr.Tick(ic)
	}
	if got := tmr.ReadTIMA(); got != 0x05 {
		t.Errorf("TIMA = %#x, want 0x05 (write cancelled the pending TMA reload)", got)
	}
}

func TestWriteDIVGlitchIncrementsTIMAOnHighBit(t *testing.T) {
	tmr := timer.New()
	ic := interrupts.New()
	tmr.WriteTAC(0x05) // enabled, selected bit 3

	for i := 0; i < 8; i++ { // counter=8 (0b1000): selected bit currently 1
		tmr.Tick(ic)
	}
	before := tmr.ReadTIMA()

	tmr.WriteDIV(ic)
	if got := tmr.ReadTIMA(); got != before+1 {
		t.Errorf("TIMA = %d, want %d (DIV write's falling-edge glitch)", got, before+1)
	}
	if tmr.DIV() != 0 {
		t.Errorf("DIV = %d, want 0 right after a DIV write", tmr.DIV())
	}
}

func TestReadTACMasksUnusedBits(t *testing.T) {
	tmr := timer.New()
	tmr.WriteTAC(0xFF)
	if got := tmr.ReadTAC(); got != 0xFF {
		t.Errorf("ReadTAC() = %#02x, want 0xFF (unused bits read back as 1)", got)
	}
}

func TestDivAPUBitTracksCounterBit12(t *testing.T) {
	tmr := timer.New()
	ic := interrupts.New()

	for i := 0; i < 4095; i++ {
		tmr.Tick(ic)
	}
	if tmr.DivAPUBit() {
		t.Fatal("DivAPUBit should be false before the counter reaches 4096")
	}

	tmr.Tick(ic)
	if !tmr.DivAPUBit() {
		t.Error("DivAPUBit should be true once the counter reaches 4096 (bit 12 set)")
	}
}
