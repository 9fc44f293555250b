// Package mmu implements the address bus: routing CPU and DMA reads/writes
// to the owning device by region, echo RAM mirroring, and the read-blocking
// windows PPU rendering and OAM DMA impose on VRAM/OAM.
package mmu

import (
	"github.com/mereth-labs/dmgcore/apu"
	"github.com/mereth-labs/dmgcore/cartridge"
	"github.com/mereth-labs/dmgcore/dma"
	"github.com/mereth-labs/dmgcore/interrupts"
	"github.com/mereth-labs/dmgcore/joypad"
	"github.com/mereth-labs/dmgcore/ppu"
	"github.com/mereth-labs/dmgcore/timer"
)

// Bus composes every addressable device and implements the region-decode
// table spec.md §4.2 describes.
type Bus struct {
	Cart   *cartridge.Cartridge
	PPU    *ppu.PPU
	APU    *apu.APU
	Timer  *timer.Timer
	Joypad *joypad.Joypad
	DMA    *dma.DMA
	IC     *interrupts.Registers
	Serial *Serial

	wram [0x2000]byte
	hram [0x7F]byte
}

func New(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU, t *timer.Timer, j *joypad.Joypad, d *dma.DMA, ic *interrupts.Registers) *Bus {
	return &Bus{Cart: cart, PPU: p, APU: a, Timer: t, Joypad: j, DMA: d, IC: ic, Serial: NewSerial(ic)}
}

// Read services a CPU-visible read. During an active OAM DMA transfer,
// only HRAM returns true values and everything else reads 0xFF, per
// spec.md §4.7's DMA isolation invariant; otherwise it applies the VRAM
// mode-3 and OAM mode-2/3 lockouts.
func (b *Bus) Read(address uint16) byte {
	if b.DMA.Active() && !(address >= 0xFF80 && address <= 0xFFFE) {
		return 0xFF
	}
	return b.readRaw(address)
}

func (b *Bus) readRaw(address uint16) byte {
	switch {
	case address <= 0x7FFF, address >= 0xA000 && address <= 0xBFFF, address == 0xFF50:
		return b.Cart.Read(address)

	case address >= 0x8000 && address <= 0x9FFF:
		if b.PPU.Mode() == ppu.ModeVRAM {
			return 0xFF
		}
		return b.PPU.ReadVRAM(address)

	case address >= 0xC000 && address <= 0xDFFF:
		return b.wram[address-0xC000]
	case address >= 0xE000 && address <= 0xFDFF:
		return b.wram[address-0xE000]

	case address >= 0xFE00 && address <= 0xFE9F:
		if b.PPU.Mode() == ppu.ModeOAM || b.PPU.Mode() == ppu.ModeVRAM {
			return 0xFF
		}
		return b.PPU.ReadOAM(address)

	case address == 0xFEA0, address >= 0xFEA0 && address <= 0xFEFF:
		return 0xFF

	case address == 0xFF00:
		return b.Joypad.Read()
	case address == 0xFF01, address == 0xFF02:
		return b.Serial.Read(address)
	case address >= 0xFF04 && address <= 0xFF07:
		return b.readTimer(address)
	case address == 0xFF0F:
		return b.IC.ReadIF()
	case address >= 0xFF10 && address <= 0xFF3F:
		return b.APU.Read(address)
	case address >= 0xFF40 && address <= 0xFF4B:
		return b.PPU.ReadRegister(address)

	case address >= 0xFF80 && address <= 0xFFFE:
		return b.hram[address-0xFF80]
	case address == 0xFFFF:
		return b.IC.ReadIE()

	default:
		return 0xFF
	}
}

// ReadForDMA is the raw read DMA uses as its copy source: unlike Read, it
// is exempt from the isolation lockout it itself causes, and it reads OAM
// directly rather than through the mode-2/3 lockout.
func (b *Bus) ReadForDMA(address uint16) byte {
	if address >= 0xFE00 && address <= 0xFE9F {
		return b.PPU.ReadOAM(address)
	}
	return b.readRaw(address)
}

func (b *Bus) WriteOAM(offset byte, value byte) { b.PPU.WriteOAM(offset, value) }

func (b *Bus) readTimer(address uint16) byte {
	switch address {
	case 0xFF04:
		return b.Timer.DIV()
	case 0xFF05:
		return b.Timer.ReadTIMA()
	case 0xFF06:
		return b.Timer.ReadTMA()
	default:
		return b.Timer.ReadTAC()
	}
}

// Write services a CPU-visible write, including the side effects of
// writing DIV (reset) and 0xFF46 (start OAM DMA).
func (b *Bus) Write(address uint16, value byte) {
	switch {
	case address <= 0x7FFF, address >= 0xA000 && address <= 0xBFFF, address == 0xFF50:
		b.Cart.Write(address, value)

	case address >= 0x8000 && address <= 0x9FFF:
		if b.PPU.Mode() != ppu.ModeVRAM {
			b.PPU.WriteVRAM(address, value)
		}

	case address >= 0xC000 && address <= 0xDFFF:
		b.wram[address-0xC000] = value
	case address >= 0xE000 && address <= 0xFDFF:
		b.wram[address-0xE000] = value

	case address >= 0xFE00 && address <= 0xFE9F:
		if !b.DMA.Active() && b.PPU.Mode() != ppu.ModeOAM && b.PPU.Mode() != ppu.ModeVRAM {
			b.PPU.WriteOAM(byte(address-0xFE00), value)
		}

	case address >= 0xFEA0 && address <= 0xFEFF:
		// prohibited region, writes ignored

	case address == 0xFF00:
		b.Joypad.Write(value)
	case address == 0xFF01, address == 0xFF02:
		b.Serial.Write(address, value)
	case address == 0xFF04:
		b.Timer.WriteDIV(b.IC)
	case address == 0xFF05:
		b.Timer.WriteTIMA(value)
	case address == 0xFF06:
		b.Timer.WriteTMA(value)
	case address == 0xFF07:
		b.Timer.WriteTAC(value)
	case address == 0xFF0F:
		b.IC.WriteIF(value)
	case address >= 0xFF10 && address <= 0xFF3F:
		b.APU.Write(address, value)
	case address == 0xFF46:
		b.PPU.WriteRegister(address, value)
	case address >= 0xFF40 && address <= 0xFF4B:
		b.PPU.WriteRegister(address, value)

	case address >= 0xFF80 && address <= 0xFFFE:
		b.hram[address-0xFF80] = value
	case address == 0xFFFF:
		b.IC.WriteIE(value)

	default:
		// unmapped I/O, ignored
	}
}
