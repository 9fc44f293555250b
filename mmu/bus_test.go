package mmu_test

import (
	"testing"

	"github.com/mereth-labs/dmgcore/apu"
	"github.com/mereth-labs/dmgcore/cartridge"
	"github.com/mereth-labs/dmgcore/dma"
	"github.com/mereth-labs/dmgcore/interrupts"
	"github.com/mereth-labs/dmgcore/joypad"
	"github.com/mereth-labs/dmgcore/mmu"
	"github.com/mereth-labs/dmgcore/ppu"
	"github.com/mereth-labs/dmgcore/timer"
)

func newBus(t *testing.T, postBootPPU bool) *mmu.Bus {
	t.Helper()
	rom := make([]byte, 32*1024)
	rom[0x0147], rom[0x0148], rom[0x0149] = 0x00, 0x00, 0x00 // NoMBC, 32 KiB, no RAM
	cart, err := cartridge.New(rom, nil, nil)
	if err != nil {
		t.Fatalf("cartridge.New: %v", err)
	}
	p := ppu.New(postBootPPU, true, nil)
	a := apu.New(44100, nil)
	tmr := timer.New()
	joy := joypad.New()
	d := dma.New()
	ic := interrupts.New()
	return mmu.New(cart, p, a, tmr, joy, d, ic)
}

func TestWRAMAndEchoRAMMirror(t *testing.T) {
	bus := newBus(t, false)

	bus.Write(0xC010, 0x7A)
	if got := bus.Read(0xE010); got != 0x7A {
		t.Errorf("Read(0xE010) = %#02x, want 0x7A (echo mirrors WRAM)", got)
	}

	bus.Write(0xE020, 0x33)
	if got := bus.Read(0xC020); got != 0x33 {
		t.Errorf("Read(0xC020) = %#02x, want 0x33 (WRAM mirrors echo writes)", got)
	}
}

func TestHRAMReadWrite(t *testing.T) {
	bus := newBus(t, false)
	bus.Write(0xFF90, 0x99)
	if got := bus.Read(0xFF90); got != 0x99 {
		t.Errorf("Read(0xFF90) = %#02x, want 0x99", got)
	}
}

func TestProhibitedRegionReadsFFAndIgnoresWrites(t *testing.T) {
	bus := newBus(t, false)
	bus.Write(0xFEB0, 0x11) // ignored
	if got := bus.Read(0xFEB0); got != 0xFF {
		t.Errorf("Read(0xFEB0) = %#02x, want 0xFF (prohibited region)", got)
	}
}

func TestOAMBlockedDuringModeOAM(t *testing.T) {
	bus := newBus(t, true) // postBoot PPU starts in ModeOAM
	if got := bus.Read(0xFE00); got != 0xFF {
		t.Errorf("Read(0xFE00) = %#02x, want 0xFF during ModeOAM", got)
	}
}

func TestVRAMBlockedDuringModeVRAM(t *testing.T) {
	bus := newBus(t, true)
	ic := interrupts.New()
	for i := 0; i < 80; i++ { // OAM search lasts 80 dots, then mode becomes VRAM
		bus.PPU.Tick(ic)
	}
	if got := bus.PPU.Mode(); got != ppu.ModeVRAM {
		t.Fatalf("PPU.Mode() = %d, want ModeVRAM after 80 dots", got)
	}
	if got := bus.Read(0x8000); got != 0xFF {
		t.Errorf("Read(0x8000) = %#02x, want 0xFF during ModeVRAM", got)
	}
}

func TestDMAIsolationBlocksEverythingButHRAM(t *testing.T) {
	bus := newBus(t, false)
	bus.Write(0xC000, 0x42)
	bus.Write(0xFF80, 0x11)

	bus.DMA.Start(0x00)

	if got := bus.Read(0xC000); got != 0xFF {
		t.Errorf("Read(0xC000) during DMA = %#02x, want 0xFF", got)
	}
	if got := bus.Read(0xFF80); got != 0x11 {
		t.Errorf("Read(0xFF80) during DMA = %#02x, want 0x11 (HRAM stays visible)", got)
	}
}

func TestSerialRegistersRoundTrip(t *testing.T) {
	bus := newBus(t, false)
	bus.Write(0xFF01, 'Q')
	if got := bus.Read(0xFF01); got != 'Q' {
		t.Errorf("Read(0xFF01) = %q, want 'Q'", got)
	}
}

func TestSerialTransferRequestsInterrupt(t *testing.T) {
	bus := newBus(t, false)
	bus.Write(0xFF01, 'Q')
	bus.Write(0xFF02, 0x81) // start internal-clock transfer

	if got := bus.Read(0xFF0F); got&(1<<interrupts.SerialBit) == 0 {
		t.Error("IF.serial should be set once the transfer completes")
	}
	if got := bus.Read(0xFF02); got&0x80 != 0 {
		t.Error("SC bit 7 should clear once the transfer completes")
	}
}

func TestInterruptRegistersRoundTrip(t *testing.T) {
	bus := newBus(t, false)
	bus.Write(0xFFFF, 0x1F)
	if got := bus.Read(0xFFFF); got != 0x1F {
		t.Errorf("Read(0xFFFF) = %#02x, want 0x1F", got)
	}
	bus.Write(0xFF0F, 0x05)
	if got := bus.Read(0xFF0F); got != 0xE5 { // unused top three IF bits read as 1
		t.Errorf("Read(0xFF0F) = %#02x, want 0xE5", got)
	}
}
