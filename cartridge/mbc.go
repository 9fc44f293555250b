package cartridge

// mbc is the common read/write surface every memory-bank controller
// implements. Grounded on original_source/src/mbc.rs's MemReadWriter impls
// for NoMBC/MBC1/MBC2/MBC5.
type mbc interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
	// RAM returns the live cartridge-RAM buffer for save-sink flushing.
	RAM() []byte
	Dirty() bool
	ClearDirty()
}

// noMBC is a fixed 32 KiB ROM mapping with no bank switching.
type noMBC struct {
	rom []byte
	ram []byte
}

func newNoMBC(rom []byte, ramSize int) *noMBC {
	return &noMBC{rom: rom, ram: make([]byte, ramSize)}
}

func (m *noMBC) Read(address uint16) byte {
	if address <= 0x7FFF {
		if int(address) < len(m.rom) {
			return m.rom[address]
		}
		return 0xFF
	}
	idx := address - 0xA000
	if len(m.ram) == 0 || int(idx) >= len(m.ram) {
		return 0xFF
	}
	return m.ram[idx]
}

func (m *noMBC) Write(address uint16, value byte) {
	if address <= 0x7FFF || len(m.ram) == 0 {
		return
	}
	idx := address - 0xA000
	if int(idx) < len(m.ram) {
		m.ram[idx] = value
	}
}

func (m *noMBC) RAM() []byte    { return m.ram }
func (m *noMBC) Dirty() bool    { return false }
func (m *noMBC) ClearDirty()    {}

// mbc1 implements the classic 5-bit ROM bank / 2-bit RAM-or-upper-ROM-bank
// controller with simple/advanced banking modes, per spec.md §4.3 and
// original_source/src/mbc.rs's MBC1.
type mbc1 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBankLo  byte // 5 bits, 0 treated as 1
	bank2      byte // 2 bits: RAM bank, or high ROM bank bits in advanced mode
	advanced   bool

	dirty bool
}

func newMBC1(rom []byte, ramSize int) *mbc1 {
	return &mbc1{rom: rom, ram: make([]byte, ramSize), romBankLo: 1}
}

func (m *mbc1) romBank() int {
	return int(m.bank2)<<5 | int(m.romBankLo)
}

func (m *mbc1) Read(address uint16) byte {
	switch {
	case address <= 0x3FFF:
		bank := 0
		if m.advanced {
			bank = int(m.bank2) << 5
		}
		idx := bank*0x4000 + int(address)
		return m.romByte(idx)
	case address <= 0x7FFF:
		idx := m.romBank()*0x4000 + int(address-0x4000)
		return m.romByte(idx)
	default: // 0xA000-0xBFFF
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.ramAddress(address)]
	}
}

func (m *mbc1) romByte(idx int) byte {
	if len(m.rom) == 0 {
		return 0xFF
	}
	return m.rom[idx&(len(m.rom)-1)]
}

func (m *mbc1) ramAddress(address uint16) int {
	base := int(address - 0xA000)
	if m.advanced {
		base += int(m.bank2) * 0x2000
	}
	return base & (len(m.ram) - 1)
}

func (m *mbc1) Write(address uint16, value byte) {
	switch {
	case address <= 0x1FFF:
		enabled := value&0x0F == 0x0A
		if m.ramEnabled && !enabled {
			m.dirty = true
		}
		m.ramEnabled = enabled
	case address <= 0x3FFF:
		bank := value & 0x1F
		if bank == 0 {
			bank = 1
		}
		m.romBankLo = bank
	case address <= 0x5FFF:
		m.bank2 = value & 0x03
	case address <= 0x7FFF:
		m.advanced = value&1 != 0
	default: // 0xA000-0xBFFF
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[m.ramAddress(address)] = value
			m.dirty = true
		}
	}
}

func (m *mbc1) RAM() []byte { return m.ram }
func (m *mbc1) Dirty() bool { return m.dirty }
func (m *mbc1) ClearDirty() { m.dirty = false }

// mbc2 has at most 16 ROM banks (a 4-bit bank number) and 512 nibbles of built-in RAM,
// stored one nibble per byte with the high nibble forced to 0xF.
type mbc2 struct {
	rom []byte
	ram []byte // len 512

	ramEnabled bool
	romBank    byte

	dirty bool
}

func newMBC2(rom []byte) *mbc2 {
	ram := make([]byte, 512)
	for i := range ram {
		ram[i] = 0xF0
	}
	return &mbc2{rom: rom, ram: ram, romBank: 1}
}

func (m *mbc2) Read(address uint16) byte {
	switch {
	case address <= 0x3FFF:
		return m.romByte(int(address))
	case address <= 0x7FFF:
		idx := int(m.romBank)*0x4000 + int(address-0x4000)
		return m.romByte(idx)
	default: // 0xA000-0xBFFF
		if !m.ramEnabled {
			return 0xFF
		}
		return m.ram[int(address-0xA000)%512]
	}
}

func (m *mbc2) romByte(idx int) byte {
	if len(m.rom) == 0 {
		return 0xFF
	}
	return m.rom[idx&(len(m.rom)-1)]
}

func (m *mbc2) Write(address uint16, value byte) {
	switch {
	case address <= 0x3FFF:
		if address&0x0100 == 0 {
			enabled := value&0x0F == 0x0A
			if m.ramEnabled && !enabled {
				m.dirty = true
			}
			m.ramEnabled = enabled
		} else {
			bank := value & 0x0F
			if bank == 0 {
				bank = 1
			}
			m.romBank = bank
		}
	case address <= 0x7FFF:
		// ignored
	default: // 0xA000-0xBFFF
		if m.ramEnabled {
			m.ram[int(address-0xA000)%512] = 0xF0 | (value & 0x0F)
			m.dirty = true
		}
	}
}

func (m *mbc2) RAM() []byte { return m.ram }
func (m *mbc2) Dirty() bool { return m.dirty }
func (m *mbc2) ClearDirty() { m.dirty = false }

// mbc5 supports a 9-bit ROM bank split across two write windows and a
// 4-bit RAM bank; unlike MBC1, ROM bank 0 is addressable at 0x4000-0x7FFF.
type mbc5 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBankLo  byte
	romBankHi  bool
	ramBank    byte

	dirty bool
}

func newMBC5(rom []byte, ramSize int) *mbc5 {
	return &mbc5{rom: rom, ram: make([]byte, ramSize), romBankLo: 1}
}

func (m *mbc5) romBank() int {
	bank := int(m.romBankLo)
	if m.romBankHi {
		bank |= 0x100
	}
	return bank
}

func (m *mbc5) Read(address uint16) byte {
	switch {
	case address <= 0x3FFF:
		return m.romByte(int(address))
	case address <= 0x7FFF:
		idx := m.romBank()*0x4000 + int(address-0x4000)
		return m.romByte(idx)
	default: // 0xA000-0xBFFF
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[m.ramAddress(address)]
	}
}

func (m *mbc5) romByte(idx int) byte {
	if len(m.rom) == 0 {
		return 0xFF
	}
	return m.rom[idx&(len(m.rom)-1)]
}

func (m *mbc5) ramAddress(address uint16) int {
	idx := int(address-0xA000) + int(m.ramBank)*0x2000
	return idx & (len(m.ram) - 1)
}

func (m *mbc5) Write(address uint16, value byte) {
	switch {
	case address <= 0x1FFF:
		enabled := value&0x0F == 0x0A
		if m.ramEnabled && !enabled {
			m.dirty = true
		}
		m.ramEnabled = enabled
	case address <= 0x2FFF:
		m.romBankLo = value
	case address <= 0x3FFF:
		m.romBankHi = value&1 != 0
	case address <= 0x5FFF:
		m.ramBank = value & 0x0F
	case address <= 0x7FFF:
		// unused
	default: // 0xA000-0xBFFF
		if m.ramEnabled && len(m.ram) > 0 {
			m.ram[m.ramAddress(address)] = value
			m.dirty = true
		}
	}
}

func (m *mbc5) RAM() []byte { return m.ram }
func (m *mbc5) Dirty() bool { return m.dirty }
func (m *mbc5) ClearDirty() { m.dirty = false }

func newMBC(kind mbcKind, rom []byte, ramSize int) mbc {
	switch kind {
	case kindMBC1:
		return newMBC1(rom, ramSize)
	case kindMBC2:
		return newMBC2(rom)
	case kindMBC5:
		return newMBC5(rom, ramSize)
	default:
		return newNoMBC(rom, ramSize)
	}
}
