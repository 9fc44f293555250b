// Package gbc composes every dmgcore component into a single driver that
// steps one CPU instruction and its cycle-coupled peripherals at a time,
// per spec.md §5's single-threaded, host-driven step model.
package gbc

import (
	"io"
	"log/slog"
	"os"

	"github.com/mereth-labs/dmgcore/apu"
	"github.com/mereth-labs/dmgcore/cartridge"
	"github.com/mereth-labs/dmgcore/cpu"
	"github.com/mereth-labs/dmgcore/dma"
	"github.com/mereth-labs/dmgcore/interrupts"
	"github.com/mereth-labs/dmgcore/joypad"
	"github.com/mereth-labs/dmgcore/mmu"
	"github.com/mereth-labs/dmgcore/ppu"
	"github.com/mereth-labs/dmgcore/timer"
)

const (
	defaultSampleRate = 44100
	dotsPerFrame      = 70224
)

// GameBoy is the assembled machine: CPU, bus, and every peripheral the bus
// routes to, plus the host sinks and logger.
type GameBoy struct {
	cpu *cpu.CPU
	bus *mmu.Bus

	ic   *interrupts.Registers
	tmr  *timer.Timer
	ppu  *ppu.PPU
	apu  *apu.APU
	joy  *joypad.Joypad
	dma  *dma.DMA
	cart *cartridge.Cartridge

	events joypad.EventQueue
	log    *slog.Logger

	dotsSinceFlush int
	crashed        error
}

// New parses the ROM, wires every component and sink, and returns a
// machine ready to Step. Persisted cartridge RAM is loaded from the save
// sink during construction (spec.md §3's lifecycle).
func New(cfg Config, sinks Sinks) (*GameBoy, error) {
	if cfg.BootROM != nil && len(cfg.BootROM) != 256 {
		return nil, ErrBootromSize
	}

	var w io.Writer = os.Stderr
	if cfg.LogFilePath != "" {
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		w = io.MultiWriter(os.Stderr, f)
	}
	logger := slog.New(slog.NewTextHandler(w, nil))

	cart, err := cartridge.New(cfg.ROM, cfg.BootROM, sinks.Save)
	if err != nil {
		return nil, err
	}
	if cart.LoadError() != nil {
		logger.Warn("save sink load failed or size mismatch, starting with zeroed cartridge RAM",
			"title", cart.Title(), "error", cart.LoadError())
	}

	sampleRate := cfg.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}
	audioSink := sinks.Audio
	if cfg.HeadlessMode {
		audioSink = nil
	}

	postBoot := cfg.BootROM == nil

	ic := interrupts.New()
	tmr := timer.New()
	p := ppu.New(postBoot, cfg.HeadlessMode, sinks.LCD)
	a := apu.New(sampleRate, audioSink)
	joy := joypad.New()
	d := dma.New()

	gb := &GameBoy{
		cpu:    cpu.New(postBoot),
		ic:     ic,
		tmr:    tmr,
		ppu:    p,
		apu:    a,
		joy:    joy,
		dma:    d,
		cart:   cart,
		events: sinks.Events,
		log:    logger,
	}
	gb.bus = mmu.New(cart, p, a, tmr, joy, d, ic)
	return gb, nil
}

// Step drains host joypad events, executes one CPU instruction, ticks
// every peripheral for the M-cycles it consumed, and periodically flushes
// dirty cartridge RAM. It returns the same error on every call once the
// CPU has decoded an illegal opcode (spec.md §7's diagnostic-halt state).
func (gb *GameBoy) Step() error {
	if gb.crashed != nil {
		return gb.crashed
	}

	gb.joy.DrainEvents(gb.events)
	gb.joy.Check(gb.ic)

	mcycles, err := gb.cpu.Step(gb.bus, gb.ic)
	if err != nil {
		gb.crashed = err
		gb.log.Error("illegal opcode, machine halted", "error", err)
		return err
	}

	if bank, ok := gb.ppu.TakeDMARequest(); ok {
		gb.dma.Start(bank)
	}

	for i := 0; i < mcycles; i++ {
		gb.tickMCycle()
	}

	gb.dotsSinceFlush += mcycles * 4
	if gb.dotsSinceFlush >= dotsPerFrame {
		gb.dotsSinceFlush -= dotsPerFrame
		if err := gb.cart.FlushIfDirty(); err != nil {
			gb.log.Warn("save sink flush failed", "title", gb.cart.Title(), "error", err)
		}
	}

	return nil
}

// tickMCycle advances every cycle-coupled peripheral by one M-cycle, in
// the fixed order spec.md §5's ordering guarantee 3 requires: timer, then
// one DMA byte, then four PPU dots, then four APU ticks.
func (gb *GameBoy) tickMCycle() {
	for i := 0; i < 4; i++ {
		gb.tmr.Tick(gb.ic)
	}
	gb.dma.Tick(gb.bus)
	for i := 0; i < 4; i++ {
		gb.ppu.Tick(gb.ic)
	}
	for i := 0; i < 4; i++ {
		gb.apu.Tick(gb.tmr.DivAPUBit())
	}
}

// SerialOutput drains and returns every byte captured through a completed
// serial transfer since the last call, for hosts that want to surface
// Blargg-style test-ROM text output (spec.md §8).
func (gb *GameBoy) SerialOutput() []byte {
	return gb.bus.Serial.Captured()
}

// Title returns the cartridge's header title.
func (gb *GameBoy) Title() string { return gb.cart.Title() }
