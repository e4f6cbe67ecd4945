/*
NAME
  stream_test.go

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package stream

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ausocean/qtc/codec/qtc"
	"github.com/ausocean/qtc/stream/config"
)

// fakeSource is a device.FrameSource backed by a fixed slice of frames,
// used so tests don't need to synchronize with device.ManualInput's pipe.
type fakeSource struct {
	frames []*qtc.Image
	next   int
	run    bool
}

func (f *fakeSource) Name() string                 { return "fakeSource" }
func (f *fakeSource) Set(c config.Config) error     { return nil }
func (f *fakeSource) Start() error                  { f.run = true; return nil }
func (f *fakeSource) Stop() error                   { f.run = false; return nil }
func (f *fakeSource) IsRunning() bool               { return f.run }
func (f *fakeSource) ReadFrame(im *qtc.Image) error {
	if f.next >= len(f.frames) {
		return io.EOF
	}
	src := f.frames[f.next]
	copy(im.Pix, src.Pix)
	f.next++
	return nil
}

func solidFrame(w, h int, fill qtc.Pixel) *qtc.Image {
	im, err := qtc.NewImage(w, h, false)
	if err != nil {
		panic(err)
	}
	for i := range im.Pix {
		im.Pix[i] = fill
	}
	return im
}

func perturb(im *qtc.Image, idx int, d byte) *qtc.Image {
	out, err := qtc.NewImage(im.Width, im.Height, im.HasAlpha)
	if err != nil {
		panic(err)
	}
	copy(out.Pix, im.Pix)
	out.Pix[idx].X += d
	return out
}

func baseConfig() config.Config {
	return config.Config{
		FrameWidth:       8,
		FrameHeight:      8,
		MaxError:         0,
		MinSize:          1,
		MaxDepth:         -1,
		Lazyness:         0,
		CacheSize:        0,
		KeyFrameInterval: 3,
	}
}

func TestStreamRoundTripMultipleFrames(t *testing.T) {
	cfg := baseConfig()
	f0 := solidFrame(8, 8, qtc.Pixel{X: 10, Y: 20, Z: 30})
	frames := []*qtc.Image{
		f0,
		perturb(f0, 5, 1),
		perturb(f0, 9, 2),
		solidFrame(8, 8, qtc.Pixel{X: 200, Y: 1, Z: 2}),
		perturb(f0, 12, 3),
	}

	src := &fakeSource{frames: frames}
	if err := src.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(cfg, src, &buf)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	for range frames {
		if err := enc.EncodeFrame(); err != nil {
			t.Fatalf("EncodeFrame: %v", err)
		}
	}

	dec, err := NewDecoder(cfg, &buf)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	for i, want := range frames {
		got, err := dec.DecodeFrame()
		if err != nil {
			t.Fatalf("DecodeFrame %d: %v", i, err)
		}
		for j := range want.Pix {
			if got.Pix[j] != want.Pix[j] {
				t.Fatalf("frame %d pixel %d: got %+v, want %+v", i, j, got.Pix[j], want.Pix[j])
			}
		}
	}

	if _, err := dec.DecodeFrame(); !errors.Is(err, io.EOF) {
		t.Errorf("DecodeFrame after last frame: got err %v, want io.EOF", err)
	}
}

func TestStreamKeyFrameIntervalResetsCache(t *testing.T) {
	cfg := baseConfig()
	cfg.CacheSize = 16
	cfg.MinSize = 2
	cfg.KeyFrameInterval = 2

	f0 := solidFrame(8, 8, qtc.Pixel{X: 5, Y: 5, Z: 5})
	frames := []*qtc.Image{f0, f0, f0, f0}

	src := &fakeSource{frames: frames}
	src.Start()

	var buf bytes.Buffer
	enc, err := NewEncoder(cfg, src, &buf)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	for range frames {
		if err := enc.EncodeFrame(); err != nil {
			t.Fatalf("EncodeFrame: %v", err)
		}
	}
	if enc.frame != len(frames) {
		t.Fatalf("frame counter: got %d, want %d", enc.frame, len(frames))
	}

	dec, err := NewDecoder(cfg, &buf)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	for i := range frames {
		if _, err := dec.DecodeFrame(); err != nil {
			t.Fatalf("DecodeFrame %d: %v", i, err)
		}
	}
}

func TestStreamEncoderCloseRejectsFurtherFrames(t *testing.T) {
	cfg := baseConfig()
	src := &fakeSource{frames: []*qtc.Image{solidFrame(8, 8, qtc.Pixel{})}}
	src.Start()

	var buf bytes.Buffer
	enc, err := NewEncoder(cfg, src, &buf)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	enc.Close()
	if err := enc.EncodeFrame(); err == nil {
		t.Errorf("EncodeFrame after Close: got nil error, want non-nil")
	}
}

func TestStreamUseTransformRoundTrip(t *testing.T) {
	cfg := baseConfig()
	cfg.UseTransform = true
	f0 := solidFrame(8, 8, qtc.Pixel{X: 123, Y: 45, Z: 6})
	frames := []*qtc.Image{f0, perturb(f0, 0, 7)}

	src := &fakeSource{frames: frames}
	src.Start()

	var buf bytes.Buffer
	enc, err := NewEncoder(cfg, src, &buf)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	for range frames {
		if err := enc.EncodeFrame(); err != nil {
			t.Fatalf("EncodeFrame: %v", err)
		}
	}

	dec, err := NewDecoder(cfg, &buf)
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	for i, want := range frames {
		got, err := dec.DecodeFrame()
		if err != nil {
			t.Fatalf("DecodeFrame %d: %v", i, err)
		}
		for j := range want.Pix {
			if got.Pix[j] != want.Pix[j] {
				t.Fatalf("frame %d pixel %d: got %+v, want %+v", i, j, got.Pix[j], want.Pix[j])
			}
		}
	}
}
