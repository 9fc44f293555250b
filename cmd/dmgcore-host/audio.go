package main

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// ringBufferSize is rounded up to the next power of two by newRing; a
// few audio blocks of headroom absorbs scheduling jitter between the
// emulation goroutine and PortAudio's callback.
const ringBufferSize = 1 << 14

// audioSink is an apu.Sink backed by a PortAudio output stream. Play is
// called synchronously from the emulation loop with a ready block of
// interleaved (L, R) samples; it only has to copy into the ring, so it
// never blocks on the audio device.
type audioSink struct {
	ring   *ringBuf
	stream *portaudio.Stream
}

func newAudioSink(sampleRate int) (*audioSink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	s := &audioSink{ring: newRing(ringBufferSize)}
	stream, err := portaudio.OpenDefaultStream(
		0, // no input channels
		2, // stereo output
		float64(sampleRate),
		0, // let PortAudio pick the callback buffer size
		s.callback,
	)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("portaudio start stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

// callback is invoked on PortAudio's own thread whenever it needs more
// frames; out is interleaved (L, R) just like the ring it drains.
func (s *audioSink) callback(out []float32) {
	s.ring.read(out)
}

// Play implements apu.Sink.
func (s *audioSink) Play(samples []float32) {
	s.ring.write(samples)
}

func (s *audioSink) Close() {
	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
		s.stream = nil
	}
	portaudio.Terminate()
}
