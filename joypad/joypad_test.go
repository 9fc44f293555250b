package joypad_test

import (
	"testing"

	"github.com/mereth-labs/dmgcore/interrupts"
	"github.com/mereth-labs/dmgcore/joypad"
)

// fakeQueue is a fixed slice of events consumed front-to-back, enough to
// exercise DrainEvents without a real host input backend.
type fakeQueue struct {
	events []event
}

type event struct {
	button  joypad.Button
	pressed bool
}

func (q *fakeQueue) Poll() (joypad.Button, bool, bool) {
	if len(q.events) == 0 {
		return 0, false, false
	}
	e := q.events[0]
	q.events = q.events[1:]
	return e.button, e.pressed, true
}

func TestReadWithNoRowSelectedReturnsAllOnes(t *testing.T) {
	j := joypad.New()
	if got := j.Read(); got != 0xFF {
		t.Errorf("Read() = %#02x, want 0xFF", got)
	}
}

func TestReadReflectsPressedButtonsInSelectedRow(t *testing.T) {
	j := joypad.New()
	j.Write(0x10) // select buttons (bit 5 low), dpad deselected
	j.Update(joypad.ButtonA, true)

	got := j.Read()
	if got&0x01 != 0 {
		t.Error("Read() bit 0 (A) = 1, want 0 (pressed reads low)")
	}
	if got&0x02 == 0 {
		t.Errorf("Read() bit 1 (B) = 0, want 1 (released reads high)")
	}
	if got&0x20 != 0 {
		t.Errorf("Read() bit 5 should echo selection as 0 (buttons selected)")
	}
}

func TestReadReflectsDpadRowWhenSelected(t *testing.T) {
	j := joypad.New()
	j.Write(0x20) // select dpad (bit 4 low)
	j.Update(joypad.ButtonUp, true)

	got := j.Read()
	if got&0x04 != 0 { // Up is dpad index 2
		t.Error("Read() bit 2 (Up) = 1, want 0 (pressed)")
	}
}

func TestDrainEventsAppliesQueuedPressesAndReleases(t *testing.T) {
	j := joypad.New()
	j.Write(0x10) // select buttons
	q := &fakeQueue{events: []event{
		{joypad.ButtonStart, true},
		{joypad.ButtonA, true},
		{joypad.ButtonA, false},
	}}

	j.DrainEvents(q)

	got := j.Read()
	if got&0x08 != 0 { // Start is button index 3
		t.Errorf("Start should read pressed after drain")
	}
	if got&0x01 == 0 { // A pressed then released nets to released
		t.Errorf("A should read released after press-then-release drain")
	}
}

func TestDrainEventsWithNilQueueIsNoop(t *testing.T) {
	j := joypad.New()
	j.DrainEvents(nil) // must not panic
}

func TestCheckRaisesJoypadInterruptOnPressEdge(t *testing.T) {
	j := joypad.New()
	ic := interrupts.New()
	j.Write(0x10) // select buttons

	j.Check(ic) // no edges yet
	if ic.ReadIF()&(1<<interrupts.JoypadBit) != 0 {
		t.Fatal("no interrupt expected before any press")
	}

	j.Update(joypad.ButtonB, true)
	j.Check(ic)
	if ic.ReadIF()&(1<<interrupts.JoypadBit) == 0 {
		t.Error("expected IF.joypad to be raised on the press edge")
	}
}

func TestCheckIgnoresUnselectedRow(t *testing.T) {
	j := joypad.New()
	ic := interrupts.New()
	j.Write(0x20) // select dpad only
	j.Update(joypad.ButtonA, true) // A is in the buttons row, not selected

	j.Check(ic)
	if ic.ReadIF()&(1<<interrupts.JoypadBit) != 0 {
		t.Error("a press in a row that isn't selected must not raise IF.joypad")
	}
}
