// Command dmgcore-host is a reference SDL2/PortAudio front end for
// dmgcore: it wires a window, an audio stream, a keyboard, and a save
// file to a gbc.GameBoy and drives it in real time.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/mereth-labs/dmgcore/gbc"
)

const (
	masterClockHz  = 4194304
	framesPerSec   = 59.7275 // DMG's actual refresh rate, not a rounded 60
	cyclesPerFrame = float64(masterClockHz) / framesPerSec
	frameInterval  = time.Duration(float64(time.Second) / framesPerSec)
	sampleRate     = 44100
)

func main() {
	bootromPath := flag.String("bootroom", "", "path to a 256-byte DMG boot ROM (optional)")
	headless := flag.Bool("headless", false, "run without a window or audio device (for test ROMs)")
	logFile := flag.String("logfile", "", "additionally write driver log output to this file")
	saveDir := flag.String("savedir", "save", "directory holding <title>.sav battery-RAM files")
	flag.Parse()

	romPath := flag.Arg(0)
	if romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: dmgcore-host [flags] <rom-file>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(romPath, *bootromPath, *saveDir, *logFile, *headless); err != nil {
		log.Fatal(err)
	}
}

func run(romPath, bootromPath, saveDir, logFile string, headless bool) error {
	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}

	var bootrom []byte
	if bootromPath != "" {
		bootrom, err = os.ReadFile(bootromPath)
		if err != nil {
			return fmt.Errorf("read boot rom: %w", err)
		}
	}

	saveSink, err := newFileSaveSink(saveDir)
	if err != nil {
		return err
	}

	sinks := gbc.Sinks{Save: saveSink}

	var lcd *display
	var input *inputQueue
	var audio *audioSink
	if !headless {
		lcd, err = newDisplay("dmgcore")
		if err != nil {
			return err
		}
		defer lcd.Close()
		sinks.LCD = lcd

		input = newInputQueue()
		sinks.Events = input

		audio, err = newAudioSink(sampleRate)
		if err != nil {
			return err
		}
		defer audio.Close()
		sinks.Audio = audio
	}

	cfg := gbc.Config{
		ROM:          rom,
		BootROM:      bootrom,
		HeadlessMode: headless,
		LogFilePath:  logFile,
		SampleRate:   sampleRate,
	}

	gb, err := gbc.New(cfg, sinks)
	if err != nil {
		return fmt.Errorf("construct machine: %w", err)
	}

	fmt.Printf("running %q\n", gb.Title())

	if headless {
		return runHeadless(gb)
	}
	return runInteractive(gb, input)
}

// runHeadless steps the machine as fast as possible with no pacing, for
// driving test ROMs to completion.
func runHeadless(gb *gbc.GameBoy) error {
	for {
		if err := gb.Step(); err != nil {
			return err
		}
	}
}

// runInteractive paces execution to real time using a leftover-cycle
// budget, the same shape as the teacher's emulate() loop: each frame
// period we compute how many CPU cycles should have elapsed and step
// the machine one instruction at a time until that budget is spent.
func runInteractive(gb *gbc.GameBoy, input *inputQueue) error {
	lastFrame := time.Now()
	leftover := 0.0

	for {
		now := time.Now()
		elapsed := now.Sub(lastFrame)
		if elapsed < frameInterval {
			time.Sleep(frameInterval - elapsed)
			continue
		}
		lastFrame = now

		budget := cyclesPerFrame + leftover
		cycleGoal := int(budget)
		leftover = budget - float64(cycleGoal)

		spent := 0
		for spent < cycleGoal {
			if err := gb.Step(); err != nil {
				return err
			}
			spent++
		}

		sdl.PumpEvents()
		input.pump()
		if input.quit {
			return nil
		}
	}
}
