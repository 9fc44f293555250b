// Package ppu implements the DMG picture processing unit: OAM scan,
// background/window/sprite pixel composition, the mode timing state
// machine, and STAT interrupt sources.
package ppu

import "github.com/mereth-labs/dmgcore/interrupts"

const (
	oamDots      = 80
	vramDots     = 172
	scanlineDots = 456
	dotsPerFrame = 70224

	Width  = 160
	Height = 144
)

// Sink receives one completed frame buffer per spec.md §6's LCD sink. The
// slice is owned by the PPU and only valid for the duration of the call.
type Sink interface {
	Draw(frame []byte)
}

type spriteAttr struct {
	y, x, tile, flags byte
}

// PPU owns VRAM, OAM, the LCD registers, and the scanline renderer.
type PPU struct {
	headless bool

	lcdc           byte
	statIntSelect  byte
	statLine       bool
	ly, lyc        byte
	mode           byte
	scy, scx       byte
	wy, wx         byte
	bgPalette      palette
	objPalette     [2]palette

	vram [0x2000]byte
	oam  [0xA0]byte

	dots         uint32
	frameCycles  uint32
	lineSprites  []spriteAttr

	dmaPending  byte
	dmaRequested bool

	frameBuffer [Width * Height]byte

	sink Sink
}

// New creates a PPU. If postBoot is true, LCDC/STAT are set to the values
// the DMG boot ROM leaves behind (spec.md §3's boot-skip parity).
func New(postBoot bool, headless bool, sink Sink) *PPU {
	p := &PPU{headless: headless, sink: sink, bgPalette: palette{0, 1, 2, 3}}
	p.objPalette[0] = palette{0, 1, 2, 3}
	p.objPalette[1] = palette{0, 1, 2, 3}
	if postBoot {
		p.writeLCDC(0x91)
		p.statIntSelect = 0x85 & 0x78
	}
	return p
}

func (p *PPU) enabled() bool { return p.lcdc&lcdcEnable != 0 }

// Mode reports the current STAT mode (0-3), used by the bus to decide
// whether VRAM/OAM reads are blocked.
func (p *PPU) Mode() byte { return p.mode }

func (p *PPU) ReadVRAM(address uint16) byte { return p.vram[address-0x8000] }
func (p *PPU) WriteVRAM(address uint16, value byte) { p.vram[address-0x8000] = value }

func (p *PPU) ReadOAM(address uint16) byte { return p.oam[address-0xFE00] }
func (p *PPU) WriteOAM(offset byte, value byte) { p.oam[offset] = value }

// TakeDMARequest returns and clears a pending OAM DMA source byte written
// to 0xFF46, if any.
func (p *PPU) TakeDMARequest() (byte, bool) {
	if !p.dmaRequested {
		return 0, false
	}
	p.dmaRequested = false
	return p.dmaPending, true
}

func (p *PPU) ReadRegister(address uint16) byte {
	switch address {
	case 0xFF40:
		return p.readLCDC()
	case 0xFF41:
		return p.readStat()
	case 0xFF42:
		return p.scy
	case 0xFF43:
		return p.scx
	case 0xFF44:
		return p.ly
	case 0xFF45:
		return p.lyc
	case 0xFF46:
		return 0xFF
	case 0xFF47:
		return p.bgPalette.read()
	case 0xFF48:
		return p.objPalette[0].read()
	case 0xFF49:
		return p.objPalette[1].read()
	case 0xFF4A:
		return p.wy
	case 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

func (p *PPU) WriteRegister(address uint16, value byte) {
	switch address {
	case 0xFF40:
		p.writeLCDC(value)
	case 0xFF41:
		p.writeStat(value)
	case 0xFF42:
		p.scy = value
	case 0xFF43:
		p.scx = value
	case 0xFF44:
		// read-only; writes reset nothing on real hardware for LY
	case 0xFF45:
		p.lyc = value
	case 0xFF46:
		p.dmaPending = value
		p.dmaRequested = true
	case 0xFF47:
		p.bgPalette.write(value)
	case 0xFF48:
		p.objPalette[0].write(value)
	case 0xFF49:
		p.objPalette[1].write(value)
	case 0xFF4A:
		p.wy = value
	case 0xFF4B:
		p.wx = value
	}
}

// Tick advances the PPU by one T-cycle (dot). Callers invoke it four times
// per M-cycle, per spec.md §5's peripheral tick ordering.
func (p *PPU) Tick(ic *interrupts.Registers) {
	if !p.enabled() {
		return
	}

	p.dots++

	switch p.mode {
	case ModeOAM:
		if p.dots >= oamDots {
			p.searchLineSprites()
			p.mode = ModeVRAM
		}
	case ModeVRAM:
		if p.dots >= oamDots+vramDots {
			p.renderLine()
			p.mode = ModeHBlank
		}
	case ModeHBlank:
		if p.dots >= scanlineDots {
			p.dots -= scanlineDots
			p.ly++
			if p.ly == Height {
				p.mode = ModeVBlank
				ic.RequestVBlank()
			} else {
				p.mode = ModeOAM
			}
		}
	case ModeVBlank:
		if p.dots >= scanlineDots {
			p.dots -= scanlineDots
			if p.ly == 153 {
				p.ly = 0
				p.mode = ModeOAM
			} else {
				p.ly++
			}
		}
	}

	p.updateStatLine(ic)

	p.frameCycles++
	if p.frameCycles >= dotsPerFrame {
		p.frameCycles -= dotsPerFrame
		if !p.headless && p.sink != nil {
			p.sink.Draw(p.frameBuffer[:])
		}
	}
}

func (p *PPU) updateStatLine(ic *interrupts.Registers) {
	line := (p.mode == ModeHBlank && p.statIntSelect&statHBlankIntSelect != 0) ||
		(p.mode == ModeOAM && p.statIntSelect&statOAMIntSelect != 0) ||
		(p.mode == ModeVBlank && p.statIntSelect&statVBlankIntSelect != 0) ||
		(p.ly == p.lyc && p.statIntSelect&statLYCIntSelect != 0)

	if line && !p.statLine {
		ic.RequestStat()
	}
	p.statLine = line
}

func (p *PPU) objHeight() byte {
	if p.lcdc&lcdcObjSize != 0 {
		return 16
	}
	return 8
}

// searchLineSprites scans all 40 OAM entries for up to 10 sprites
// intersecting the current scanline, ordered by X for priority, per
// spec.md §4.4 and original_source/src/ppu.rs's search_line_objects.
func (p *PPU) searchLineSprites() {
	p.lineSprites = p.lineSprites[:0]
	height := p.objHeight()

	for i := 0; i < 40; i++ {
		base := i * 4
		y := p.oam[base]
		if p.ly+16 < y {
			continue
		}
		if p.ly+16-y >= height {
			continue
		}
		p.lineSprites = append(p.lineSprites, spriteAttr{
			y: y, x: p.oam[base+1], tile: p.oam[base+2], flags: p.oam[base+3],
		})
		if len(p.lineSprites) == 40 {
			break
		}
	}

	// stable insertion sort by X keeps OAM order as the tiebreak, matching
	// DMG's OAM-index priority for equal X.
	for i := 1; i < len(p.lineSprites); i++ {
		for j := i; j > 0 && p.lineSprites[j].x < p.lineSprites[j-1].x; j-- {
			p.lineSprites[j], p.lineSprites[j-1] = p.lineSprites[j-1], p.lineSprites[j]
		}
	}
	if len(p.lineSprites) > 10 {
		p.lineSprites = p.lineSprites[:10]
	}
}

func (p *PPU) bgTileAddress(index byte) uint16 {
	if p.lcdc&lcdcBGWinTiles != 0 {
		return 0x8000 + uint16(index)*16
	}
	return uint16(int32(0x9000) + int32(int8(index))*16)
}

func (p *PPU) bgPixel(x byte) (color byte, id byte) {
	if p.lcdc&lcdcBGWinEnable == 0 {
		return p.bgPalette[0], 0
	}
	scrollY := p.scy + p.ly
	tileRow := uint16(scrollY/8) * 32
	scrollX := p.scx + x
	tileCol := uint16(scrollX / 8)

	mapBase := uint16(0x9800)
	if p.lcdc&lcdcBGTileMap != 0 {
		mapBase = 0x9C00
	}
	tileIndex := p.vram[mapBase+tileRow+tileCol-0x8000]
	tileAddr := p.bgTileAddress(tileIndex)
	rowOffset := uint16(scrollY%8) * 2
	low := p.vram[tileAddr+rowOffset-0x8000]
	high := p.vram[tileAddr+rowOffset+1-0x8000]
	id = colorIDFromTileRow(low, high, uint(scrollX%8))
	return p.bgPalette[id], id
}

func (p *PPU) winEnabled() bool {
	return p.lcdc&lcdcWinEnable != 0 && p.ly >= p.wy
}

func (p *PPU) winPixel(x byte) (color byte, id byte, drawn bool) {
	if p.lcdc&lcdcBGWinEnable == 0 || !p.winEnabled() {
		return 0, 0, false
	}
	wx := byte(0)
	if p.wx >= 7 {
		wx = p.wx - 7
	}
	if x < wx {
		return 0, 0, false
	}
	winY := p.ly - p.wy
	winX := x - wx
	tileRow := uint16(winY/8) * 32
	tileCol := uint16(winX / 8)

	mapBase := uint16(0x9800)
	if p.lcdc&lcdcWinTileMap != 0 {
		mapBase = 0x9C00
	}
	tileIndex := p.vram[mapBase+tileRow+tileCol-0x8000]
	tileAddr := p.bgTileAddress(tileIndex)
	rowOffset := uint16(winY%8) * 2
	low := p.vram[tileAddr+rowOffset-0x8000]
	high := p.vram[tileAddr+rowOffset+1-0x8000]
	id = colorIDFromTileRow(low, high, uint(winX%8))
	return p.bgPalette[id], id, true
}

func (p *PPU) spritePixel(x byte, bgID byte) (color byte, drawn bool) {
	if p.lcdc&lcdcObjEnable == 0 {
		return 0, false
	}
	height := p.objHeight()
	for _, s := range p.lineSprites {
		bgPriority := s.flags&0x80 != 0
		if bgPriority && bgID != 0 {
			continue
		}
		if int(x) < int(s.x)-8 || x >= s.x {
			continue
		}

		objY := p.ly + 16 - s.y
		if s.flags&0x40 != 0 { // Y flip
			objY = height - 1 - objY
		}

		tile := s.tile
		if height == 16 {
			if objY < 8 {
				tile &^= 1
			} else {
				tile |= 1
			}
		}

		rowOffset := uint16(objY%8) * 2
		tileAddr := 0x8000 + uint16(tile)*16 + rowOffset
		low := p.vram[tileAddr-0x8000]
		high := p.vram[tileAddr+1-0x8000]

		objX := x + 8 - s.x
		if s.flags&0x20 != 0 { // X flip
			objX = 7 - objX
		}

		id := colorIDFromTileRow(low, high, uint(objX))
		if id == 0 {
			continue
		}

		pal := (s.flags >> 4) & 1
		return p.objPalette[pal][id], true
	}
	return 0, false
}

// renderLine composites the background, window, and sprite layers for the
// current LY into the frame buffer.
func (p *PPU) renderLine() {
	if !p.enabled() {
		return
	}
	row := int(p.ly) * Width
	for x := byte(0); x < Width; x++ {
		bg, bgID := p.bgPixel(x)
		if winColor, winID, drawn := p.winPixel(x); drawn {
			bg, bgID = winColor, winID
		}
		if spriteColor, drawn := p.spritePixel(x, bgID); drawn {
			bg = spriteColor
		}
		p.frameBuffer[row+int(x)] = bg
	}
}
