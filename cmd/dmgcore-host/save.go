package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// fileSaveSink is a cartridge.SaveSink storing one <title>.sav file per
// cartridge under a "save" directory, grounded on original_source's
// FileSaver.
type fileSaveSink struct {
	dir  string
	path string
}

func newFileSaveSink(dir string) (*fileSaveSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &fileSaveSink{dir: dir}, nil
}

// SetTitle implements cartridge.SaveSink.
func (s *fileSaveSink) SetTitle(title string) {
	if title == "" {
		title = "untitled"
	}
	s.path = filepath.Join(s.dir, title+".sav")
}

// Load implements cartridge.SaveSink. A missing file is not an error;
// the cartridge starts with zeroed RAM.
func (s *fileSaveSink) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

// Save implements cartridge.SaveSink.
func (s *fileSaveSink) Save(ram []byte) error {
	return os.WriteFile(s.path, ram, 0o644)
}
