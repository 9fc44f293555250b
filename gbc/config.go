package gbc

// Config is the plain-data option set a GameBoy is constructed from
// (spec.md §6). No CLI-parsing library sits in front of it; the reference
// host (cmd/dmgcore-host) uses the standard flag package to fill one in.
type Config struct {
	// ROM is the cartridge image; required.
	ROM []byte
	// BootROM, if present, must be exactly 256 bytes and is mapped over
	// 0x0000-0x00FF until the CPU writes 0xFF50. If nil, the machine
	// starts with post-boot CPU/IO register state already installed.
	BootROM []byte
	// HeadlessMode skips PPU frame emission and APU sample emission,
	// for running test ROMs without a display or audio device.
	HeadlessMode bool
	// LogFilePath, if set, additionally writes the driver's slog output
	// to this file (appended), alongside stderr.
	LogFilePath string
	// SampleRate is the host stereo sink's sample rate in Hz. Zero
	// selects the default of 44100.
	SampleRate int
}
