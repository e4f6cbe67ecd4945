/*
DESCRIPTION
  device.go provides FrameSource, an interface that describes a
  configurable video source that can be started and stopped, from which
  decoded pixel frames may be obtained.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package device provides an interface and implementations for frame
// sources that can be started and stopped, from which decoded pixel
// frames can be obtained.
package device

import (
	"errors"
	"fmt"
	"io"

	"github.com/ausocean/qtc/codec/qtc"
	"github.com/ausocean/qtc/stream/config"
)

// FrameSource describes a configurable video source from which decoded
// pixel frames can be read. A frame's dimensions and BGRX-vs-masked-alpha
// layout are fixed for the lifetime of a given source.
type FrameSource interface {
	// Name returns the name of the FrameSource.
	Name() string

	// Set allows for configuration of the FrameSource using a Config
	// struct. All, some or none of the fields of the Config struct may be
	// used for configuration by an implementation.
	Set(c config.Config) error

	// Start will start the FrameSource capturing frames; after which
	// ReadFrame may be called to obtain them.
	Start() error

	// Stop will stop the FrameSource from capturing frames. From this
	// point ReadFrame will no longer be successful.
	Stop() error

	// IsRunning is used to determine if the FrameSource is running.
	IsRunning() bool

	// ReadFrame reads and decodes the next frame's raw pixel bytes into
	// im, which must already be sized to the source's frame dimensions.
	ReadFrame(im *qtc.Image) error
}

// MultiError implements the built in error interface. MultiError is used here
// to collect multi errors during validation of configruation parameters for
// FrameSources.
type MultiError []error

func (me MultiError) Error() string {
	if len(me) == 0 {
		panic("device: invalid use of MultiError")
	}
	return fmt.Sprintf("%v", []error(me))
}

// ManualInput is a FrameSource implementation that represents a manual
// input mechanism, i.e. frame bytes are written to this input manually
// through software (ManualInput also implements io.Writer, unlike other
// FrameSources). ManualInput employs an io.Pipe, so every Write of one
// frame's raw BGRX bytes must be accompanied by a full ReadFrame (or vice
// versa), otherwise blocking will occur.
type ManualInput struct {
	isRunning     bool
	width, height int
	hasAlpha      bool
	reader        *io.PipeReader
	writer        *io.PipeWriter
}

// NewManualInput returns a new ManualInput for frames of the given
// dimensions.
func NewManualInput(width, height int, hasAlpha bool) *ManualInput {
	return &ManualInput{width: width, height: height, hasAlpha: hasAlpha}
}

// Name returns the name of ManualInput i.e. "ManualInput".
func (m *ManualInput) Name() string { return "ManualInput" }

// Set is a stub to satisfy the FrameSource interface; no configuration
// fields are required by ManualInput.
func (m *ManualInput) Set(c config.Config) error { return nil }

// Start sets the ManualInput isRunning flag to true and opens its pipe.
func (m *ManualInput) Start() error {
	m.isRunning = true
	m.reader, m.writer = io.Pipe()
	return nil
}

// Stop closes the pipe and sets the isRunning flag to false.
func (m *ManualInput) Stop() error {
	if m.reader != nil {
		m.reader.Close()
	}
	m.isRunning = false
	return nil
}

// IsRunning returns the value of the isRunning flag to indicate if Start has
// been called (and Stop has not been called after).
func (m *ManualInput) IsRunning() bool { return m.isRunning }

// Write writes one frame's raw 32-bit BGRX pixel bytes to the
// ManualInput's writer side of its pipe.
func (m *ManualInput) Write(p []byte) (int, error) {
	if !m.isRunning {
		return 0, errors.New("manual input has not been started, can't write")
	}
	return m.writer.Write(p)
}

// ReadFrame reads one frame's worth of raw 32-bit BGRX pixel bytes from
// the pipe and decodes them into im.
func (m *ManualInput) ReadFrame(im *qtc.Image) error {
	if !m.isRunning {
		return errors.New("manual input has not been started, can't read")
	}
	buf := make([]byte, m.width*m.height*4)
	if _, err := io.ReadFull(m.reader, buf); err != nil {
		return fmt.Errorf("could not read frame: %w", err)
	}
	return decodeBGRX(im, buf)
}

// decodeBGRX unpacks raw little-endian 32-bit BGRX pixel bytes into im.
func decodeBGRX(im *qtc.Image, buf []byte) error {
	n := im.Width * im.Height
	if len(buf) < n*4 {
		return fmt.Errorf("device: frame buffer too short: got %d bytes, want %d", len(buf), n*4)
	}
	for i := 0; i < n; i++ {
		o := i * 4
		im.Pix[i] = qtc.Pixel{X: buf[o+2], Y: buf[o+1], Z: buf[o], A: buf[o+3]}
	}
	return nil
}
