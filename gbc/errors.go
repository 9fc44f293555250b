package gbc

import (
	"errors"

	"github.com/mereth-labs/dmgcore/cartridge"
)

// ErrBootromSize is returned by New when a non-nil BootROM isn't exactly
// 256 bytes.
var ErrBootromSize = errors.New("dmgcore: boot rom must be exactly 256 bytes")

// Re-exported so callers importing only gbc can still match these with
// errors.Is.
var (
	ErrInvalidRom = cartridge.ErrInvalidRom
	ErrSaveLoad   = cartridge.ErrSaveLoad
)
