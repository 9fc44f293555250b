package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/mereth-labs/dmgcore/joypad"
)

// keymap mirrors the teacher's mapKeyToPadBit, adapted to dmgcore's
// Button enum.
var keymap = map[string]joypad.Button{
	"Z":      joypad.ButtonA,
	"X":      joypad.ButtonB,
	"Space":  joypad.ButtonSelect,
	"Return": joypad.ButtonStart,
	"Up":     joypad.ButtonUp,
	"Down":   joypad.ButtonDown,
	"Left":   joypad.ButtonLeft,
	"Right":  joypad.ButtonRight,
}

// keyEvent is one queued button transition.
type keyEvent struct {
	button  joypad.Button
	pressed bool
}

// inputQueue is a joypad.EventQueue fed by SDL keyboard events pumped on
// the main thread once per frame. keyStates dedups SDL's key-repeat
// events the same way the teacher's input handler does, so a held key
// doesn't requeue a press every frame.
type inputQueue struct {
	pending   []keyEvent
	keyStates map[string]bool
	quit      bool
}

func newInputQueue() *inputQueue {
	return &inputQueue{keyStates: make(map[string]bool)}
}

// Poll implements joypad.EventQueue.
func (q *inputQueue) Poll() (button joypad.Button, pressed bool, ok bool) {
	if len(q.pending) == 0 {
		return 0, false, false
	}
	ev := q.pending[0]
	q.pending = q.pending[1:]
	return ev.button, ev.pressed, true
}

// pump drains every SDL event since the last call, queuing joypad
// transitions and noting whether the window asked to quit.
func (q *inputQueue) pump() {
	for {
		event := sdl.PollEvent()
		if event == nil {
			return
		}
		switch e := event.(type) {
		case *sdl.QuitEvent:
			q.quit = true
		case *sdl.KeyboardEvent:
			keyName := sdl.GetKeyName(e.Keysym.Sym)
			if keyName == "Escape" && e.State == sdl.PRESSED {
				q.quit = true
				continue
			}
			isPressed := e.State == sdl.PRESSED
			if current, tracked := q.keyStates[keyName]; tracked && current == isPressed {
				continue
			}
			q.keyStates[keyName] = isPressed
			if button, ok := keymap[keyName]; ok {
				q.pending = append(q.pending, keyEvent{button: button, pressed: isPressed})
			}
		}
	}
}
