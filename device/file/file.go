/*
DESCRIPTION
  file.go provides an implementation of the FrameSource interface backed
  by a file containing a sequence of fixed-size raw 32-bit BGRX frames.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package file provides an implementation of device.FrameSource for raw
// pixel files.
package file

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/qtc/codec/qtc"
	"github.com/ausocean/qtc/stream/config"
)

// File is an implementation of device.FrameSource for a file containing a
// sequence of raw, fixed-size 32-bit BGRX frames with no framing between
// them (width*height*4 bytes per frame).
type File struct {
	f             *os.File
	path          string
	loop          bool
	width, height int
	isRunning     bool
	log           logging.Logger
	set           bool
	mu            sync.Mutex
	buf           []byte
}

// New returns a new File.
func New(l logging.Logger) *File { return &File{log: l} }

// NewWith returns a new File with required params provided i.e. the Set
// method does not need to be called.
func NewWith(l logging.Logger, path string, width, height int, loop bool) *File {
	return &File{log: l, path: path, width: width, height: height, loop: loop, set: true}
}

// Name returns the name of the device.
func (f *File) Name() string { return "File" }

// Set sets the File's config to the passed config.
func (f *File) Set(c config.Config) error {
	f.path = c.InputPath
	f.width = c.FrameWidth
	f.height = c.FrameHeight
	f.loop = c.Loop
	f.set = true
	return nil
}

// Start will open the file at the location of the InputPath field of the
// config struct.
func (f *File) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.set {
		return errors.New("file device has not been set with config")
	}
	var err error
	f.f, err = os.Open(f.path)
	if err != nil {
		return fmt.Errorf("could not open pixel file: %w", err)
	}
	f.buf = make([]byte, f.width*f.height*4)
	f.isRunning = true
	return nil
}

// Stop will close the file such that any further reads will fail.
func (f *File) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := f.f.Close()
	if err == nil {
		f.isRunning = false
		return nil
	}
	return err
}

// ReadFrame reads one frame's worth of raw BGRX bytes and decodes them
// into im, which must be sized to the File's configured width/height. If
// end of file is reached and Loop is set, ReadFrame seeks back to the
// start of the file and continues.
func (f *File) ReadFrame(im *qtc.Image) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.f == nil {
		return errors.New("file device is closed, not started")
	}

	_, err := io.ReadFull(f.f, f.buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		if !f.loop {
			return err
		}
		f.log.Info("looping input file")
		if _, err := f.f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("could not seek to start of file for input loop: %w", err)
		}
		if _, err := io.ReadFull(f.f, f.buf); err != nil {
			return fmt.Errorf("could not read after start seek: %w", err)
		}
	} else if err != nil {
		return err
	}

	for i := 0; i < f.width*f.height; i++ {
		o := i * 4
		im.Pix[i] = qtc.Pixel{X: f.buf[o+2], Y: f.buf[o+1], Z: f.buf[o], A: f.buf[o+3]}
	}
	return nil
}

// IsRunning is used to determine if the File device is running.
func (f *File) IsRunning() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f != nil && f.isRunning
}
