package main

import (
	"fmt"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/mereth-labs/dmgcore/ppu"
)

const windowScale = 4

// shadeARGB maps the PPU's 2-bit shade indices to the classic four-tone
// DMG green palette, packed as the ARGB8888 bytes the streaming texture
// wants.
var shadeARGB = [4]uint32{
	0xFFE0F8D0,
	0xFF88C070,
	0xFF346856,
	0xFF081820,
}

// display is a ppu.Sink backed by an SDL2 window, renderer, and a
// streaming texture updated one frame at a time.
type display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   [ppu.Width * ppu.Height]uint32
}

func newDisplay(title string) (*display, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl init video: %w", err)
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		ppu.Width*windowScale, ppu.Height*windowScale, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl create window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl create renderer: %w", err)
	}
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0") // nearest-neighbor, keep pixels sharp

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING,
		ppu.Width, ppu.Height)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl create texture: %w", err)
	}

	return &display{window: window, renderer: renderer, texture: texture}, nil
}

// Draw implements ppu.Sink. frame holds one byte per pixel, values 0-3.
func (d *display) Draw(frame []byte) {
	for i, shade := range frame {
		d.pixels[i] = shadeARGB[shade&0x03]
	}

	const pitch = ppu.Width * 4
	if err := d.texture.Update(nil, unsafe.Pointer(&d.pixels[0]), pitch); err != nil {
		return
	}
	d.renderer.Clear()
	d.renderer.Copy(d.texture, nil, nil)
	d.renderer.Present()
}

func (d *display) Close() {
	if d.texture != nil {
		d.texture.Destroy()
		d.texture = nil
	}
	if d.renderer != nil {
		d.renderer.Destroy()
		d.renderer = nil
	}
	if d.window != nil {
		d.window.Destroy()
		d.window = nil
	}
	sdl.Quit()
}
