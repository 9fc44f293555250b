// Package joypad implements the P1 (0xFF00) button matrix.
package joypad

import "github.com/mereth-labs/dmgcore/interrupts"

// Button identifies one of the eight DMG inputs, matching the enumeration
// in spec.md §6.
type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// EventQueue is the caller-provided, non-blocking read end the driver
// drains once per Step (spec.md §5, ordering guarantee 1).
type EventQueue interface {
	// Poll returns the next queued event and true, or ok=false if the
	// queue is currently empty. It must not block.
	Poll() (button Button, pressed bool, ok bool)
}

// Joypad holds the current and previous button state and the row-select
// bits written to P1.
type Joypad struct {
	selectButtons bool
	selectDpad    bool

	buttons  [4]bool // A, B, Select, Start
	dpad     [4]bool // Right, Left, Up, Down
	prevBtn  [4]bool
	prevDpad [4]bool
}

func New() *Joypad {
	return &Joypad{}
}

// Update sets a single button's pressed state, called once per drained
// host event.
func (j *Joypad) Update(b Button, pressed bool) {
	switch {
	case b <= ButtonStart:
		j.buttons[b] = pressed
	default:
		j.dpad[b-ButtonRight] = pressed
	}
}

// DrainEvents pulls every currently queued event and applies it.
func (j *Joypad) DrainEvents(q EventQueue) {
	if q == nil {
		return
	}
	for {
		button, pressed, ok := q.Poll()
		if !ok {
			return
		}
		j.Update(button, pressed)
	}
}

func readRow(state [4]bool) byte {
	var v byte
	for bit, pressed := range state {
		if !pressed {
			v |= 1 << uint(bit)
		}
	}
	return v
}

// Read returns the P1 register value: bits 0-3 report the selected row
// (active low), bits 4-5 echo the selection, bits 6-7 are unused (read 1).
func (j *Joypad) Read() byte {
	v := byte(0xC0)
	if !j.selectDpad {
		v |= 0x10
	}
	if !j.selectButtons {
		v |= 0x20
	}
	switch {
	case j.selectButtons:
		v |= readRow(j.buttons)
	case j.selectDpad:
		v |= readRow(j.dpad)
	default:
		v |= 0x0F
	}
	return v
}

func (j *Joypad) Write(v byte) {
	j.selectDpad = v&0x10 == 0
	j.selectButtons = v&0x20 == 0
}

// Check raises IF.joypad on any unpressed-to-pressed edge within a
// currently selected row, then latches the new state as previous. When
// neither row is selected it does nothing, and the previous state is kept.
func (j *Joypad) Check(ic *interrupts.Registers) {
	if !j.selectButtons && !j.selectDpad {
		return
	}
	if j.selectButtons {
		for bit := range j.buttons {
			if j.buttons[bit] && !j.prevBtn[bit] {
				ic.RequestJoypad()
				break
			}
		}
	}
	if j.selectDpad {
		for bit := range j.dpad {
			if j.dpad[bit] && !j.prevDpad[bit] {
				ic.RequestJoypad()
				break
			}
		}
	}
	j.prevBtn = j.buttons
	j.prevDpad = j.dpad
}
