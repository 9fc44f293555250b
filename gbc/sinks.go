package gbc

import (
	"github.com/mereth-labs/dmgcore/apu"
	"github.com/mereth-labs/dmgcore/cartridge"
	"github.com/mereth-labs/dmgcore/joypad"
	"github.com/mereth-labs/dmgcore/ppu"
)

// Sinks bundles the four host-supplied capabilities spec.md §6 names. Any
// field may be nil; LCD/Audio simply stop being called, Events leaves the
// joypad unchanged, and Save falls back to an in-memory no-op.
type Sinks struct {
	LCD    ppu.Sink
	Audio  apu.Sink
	Events joypad.EventQueue
	Save   cartridge.SaveSink
}
