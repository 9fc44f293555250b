package main

import "sync/atomic"

// ringBuf is a lock-free single-producer/single-consumer float32 ring,
// grounded on the teacher's apu ring buffer: the emulation goroutine
// (producer, via audioSink.Play) and PortAudio's callback goroutine
// (consumer) never share a mutex, only atomically-updated indices.
type ringBuf struct {
	data []float32
	mask uint32

	writeIdx atomic.Uint32
	readIdx  atomic.Uint32
}

// newRing rounds size up to the next power of two so the mask trick
// works for wraparound.
func newRing(minSize int) *ringBuf {
	size := 1
	for size < minSize {
		size <<= 1
	}
	return &ringBuf{data: make([]float32, size), mask: uint32(size - 1)}
}

// write copies every sample in without blocking the emulation thread; if
// the reader has fallen a full ring behind, the oldest unread samples are
// overwritten.
func (r *ringBuf) write(samples []float32) {
	for _, s := range samples {
		w := r.writeIdx.Load()
		r.data[w&r.mask] = s
		r.writeIdx.Store(w + 1)
	}
}

// read fills out with buffered samples, padding with silence once the
// buffer runs dry (an audio underrun, not a crash).
func (r *ringBuf) read(out []float32) {
	for i := range out {
		rIdx := r.readIdx.Load()
		if rIdx == r.writeIdx.Load() {
			out[i] = 0
			continue
		}
		out[i] = r.data[rIdx&r.mask]
		r.readIdx.Store(rIdx + 1)
	}
}
