package apu

// waveOutputShift maps NR32's two-bit output level to a right-shift amount
// applied to each 4-bit wave sample.
var waveOutputShift = [4]byte{4, 0, 1, 2}

// waveRam is CH3's 32-nibble sample table, packed two nibbles per byte.
type waveRam struct {
	data         [16]byte
	sampleIndex  byte
	sampleBuffer byte
}

func newWaveRam() waveRam {
	return waveRam{data: [16]byte{
		0x84, 0x40, 0x43, 0xAA, 0x2D, 0x78, 0x92, 0x3C,
		0x60, 0x59, 0x59, 0xB0, 0x34, 0xB5, 0xCA, 0x6E,
	}}
}

func (w *waveRam) reset() { w.sampleIndex = 0 }

func (w *waveRam) handlePeriod() {
	w.sampleIndex = (w.sampleIndex + 1) % 32
	b := w.data[w.sampleIndex/2]
	if w.sampleIndex%2 == 0 {
		w.sampleBuffer = b >> 4
	} else {
		w.sampleBuffer = b & 0x0F
	}
}

// waveChannel implements CH3.
type waveChannel struct {
	on    bool
	dacOn bool

	pan panning

	length lengthCounter

	initialOutputLevel byte
	outputLevel        byte

	per period
	ram waveRam

	startedSampling bool
}

func newWaveChannel() waveChannel {
	return waveChannel{length: newLengthCounter(256), ram: newWaveRam()}
}

func (c *waveChannel) enabled() bool { return c.on && c.dacOn }

func (c *waveChannel) writeDACEnable(value byte) {
	c.dacOn = value&0x80 != 0
	if !c.dacOn {
		c.on = false
	}
}

func (c *waveChannel) readOutputLevel() byte {
	return 0x80 | (c.initialOutputLevel<<5)&0x60 | 0x1F
}

func (c *waveChannel) writeOutputLevel(value byte) {
	c.initialOutputLevel = (value >> 5) & 0x03
}

func (c *waveChannel) readDACEnable() byte {
	var e byte
	if c.dacOn {
		e = 0x80
	}
	return e | 0x7F
}

func (c *waveChannel) periodTimer() uint16 {
	return (2048 - c.per.value()) * (masterClockHz / wavePeriodHz)
}

// readRAM implements DMG's "wave read while on" behavior: RAM is only
// visible through the address bus while the channel is off; while it's
// on, only the byte currently being sampled is readable.
func (c *waveChannel) readRAM(address uint16, base uint16) byte {
	if !c.enabled() {
		return c.ram.data[address-base]
	}
	if c.startedSampling && c.per.timer == c.periodTimer() {
		return c.ram.data[c.ram.sampleIndex/2]
	}
	return 0xFF
}

func (c *waveChannel) writeRAM(address uint16, base uint16, value byte) {
	if !c.enabled() {
		c.ram.data[address-base] = value
		return
	}
	if c.startedSampling && c.per.timer == c.periodTimer() {
		c.ram.data[c.ram.sampleIndex/2] = value
	}
}

func (c *waveChannel) trigger(step byte) {
	c.on = true
	c.length.reset(step)
	c.outputLevel = c.initialOutputLevel
	c.per.timer = c.periodTimer() + 6
	c.ram.reset()
	c.startedSampling = false
}

func (c *waveChannel) step(tCycles uint16) {
	if !c.on {
		return
	}
	for tCycles >= c.per.timer {
		tCycles -= c.per.timer
		c.per.timer = c.periodTimer()
		c.ram.handlePeriod()
		c.startedSampling = true
	}
	c.per.timer -= tCycles
}

func (c *waveChannel) tickLength() {
	c.on = c.length.tick() && c.on
}

func (c *waveChannel) output() float32 {
	if !c.dacOn {
		return 0
	}
	return dacConvert(c.ram.sampleBuffer >> waveOutputShift[c.outputLevel])
}
