/*
NAME
  qtc_test.go

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package qtc

import (
	"math/rand"
	"testing"
)

func fillImage(im *Image, p Pixel) {
	for i := range im.Pix {
		im.Pix[i] = p
	}
}

func assertImagesEqual(t *testing.T, got, want *Image) {
	t.Helper()
	if got.Width != want.Width || got.Height != want.Height {
		t.Fatalf("dimensions: got %dx%d, want %dx%d", got.Width, got.Height, want.Width, want.Height)
	}
	for i := range want.Pix {
		if got.Pix[i] != want.Pix[i] {
			t.Fatalf("pixel %d: got %v, want %v", i, got.Pix[i], want.Pix[i])
		}
	}
}

// TestCompressSolidColor checks that a uniform image compresses to a
// single leaf, whose only command bit is the root's split=0 decision,
// and exactly one pixel of color data.
func TestCompressSolidColor(t *testing.T) {
	im, err := NewImage(64, 64, false)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	fillImage(im, Pixel{X: 10, Y: 20, Z: 30})

	qti, err := Compress(im, nil, 0, 1, -1, 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if n := qti.Commands.Size(); n != 1 {
		t.Errorf("commands: got %d bits, want 1 (a single root split=0 decision)", n)
	}
	if n := qti.Colors.Size(); n != 32 {
		t.Errorf("colors: got %d bits, want 32 (one pixel)", n)
	}

	out, err := Decompress(qti, nil)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	assertImagesEqual(t, out, im)
}

// TestCompressCheckerboardLossless checks exact round-trip reconstruction
// of a non-uniform image under lossless settings (maxerror=0).
func TestCompressCheckerboardLossless(t *testing.T) {
	im, err := NewImage(4, 4, false)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x+y)%2 == 0 {
				im.SetPixel(x, y, Pixel{X: 255, Y: 255, Z: 255})
			} else {
				im.SetPixel(x, y, Pixel{})
			}
		}
	}

	qti, err := Compress(im, nil, 0, 1, -1, 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	out, err := Decompress(qti, nil)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	assertImagesEqual(t, out, im)
}

// TestCompressDeltaFrame checks that encoding a frame identical to its
// reference produces a single zero-pixel leaf.
func TestCompressDeltaFrame(t *testing.T) {
	ref, err := NewImage(32, 32, false)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	r := rand.New(rand.NewSource(11))
	for i := range ref.Pix {
		ref.Pix[i] = Pixel{X: byte(r.Intn(256)), Y: byte(r.Intn(256)), Z: byte(r.Intn(256))}
	}
	cur := ref.Clone()

	qti, err := Compress(cur, ref, 0, 1, -1, 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !qti.HasReference {
		t.Fatalf("HasReference: got false, want true")
	}
	if n := qti.Colors.Size(); n != 32 {
		t.Errorf("colors: got %d bits, want 32 (single zero-delta pixel)", n)
	}

	out, err := Decompress(qti, ref)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	assertImagesEqual(t, out, cur)
}

// TestCompressMaxErrorTolerance checks that a small per-channel deviation
// within maxerror still collapses to a single leaf, and that the
// reconstructed image differs from the original by no more than maxerror
// per channel.
func TestCompressMaxErrorTolerance(t *testing.T) {
	im, err := NewImage(16, 16, false)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	r := rand.New(rand.NewSource(5))
	base := byte(100)
	for i := range im.Pix {
		im.Pix[i] = Pixel{X: base + byte(r.Intn(5)), Y: base, Z: base}
	}

	const maxerror = 4
	qti, err := Compress(im, nil, maxerror, 1, -1, 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if n := qti.Colors.Size(); n != 32 {
		t.Errorf("colors: got %d bits, want 32 (one representative pixel for the whole tolerant image)", n)
	}

	out, err := Decompress(qti, nil)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	for i := range im.Pix {
		dx, dy, dz, _ := im.Pix[i].AbsDiff(out.Pix[i])
		if dx > maxerror || dy > maxerror || dz > maxerror {
			t.Fatalf("pixel %d: (%d,%d,%d) exceeds maxerror %d", i, dx, dy, dz, maxerror)
		}
	}
}

// TestCompressWithCacheHits checks that four identical 16x16 tiles
// arranged into a 32x32 image produce one cache miss followed by three
// cache hits.
func TestCompressWithCacheHits(t *testing.T) {
	im, err := NewImage(32, 32, false)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	r := rand.New(rand.NewSource(9))
	tile := make([]Pixel, 16*16)
	for i := range tile {
		tile[i] = Pixel{X: byte(r.Intn(256)), Y: byte(r.Intn(256)), Z: byte(r.Intn(256))}
	}
	for qy := 0; qy < 2; qy++ {
		for qx := 0; qx < 2; qx++ {
			for y := 0; y < 16; y++ {
				for x := 0; x < 16; x++ {
					im.SetPixel(qx*16+x, qy*16+y, tile[y*16+x])
				}
			}
		}
	}

	cache, err := NewTileCache(4, 16)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	codec, err := NewCodec(0, 16, -1, 0, cache)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	qti, err := codec.Compress(im, nil)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if got := cache.Hits(); got != 3 {
		t.Errorf("cache hits: got %d, want 3", got)
	}

	decodeCache, err := NewTileCache(4, 16)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	decodeCodec, err := NewCodec(0, 16, -1, 0, decodeCache)
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	out, err := decodeCodec.Decompress(qti, nil)
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	assertImagesEqual(t, out, im)
}

// TestDecompressTruncated checks that decoding a QTI whose bitstreams
// have been cut short surfaces a truncation error rather than panicking
// or silently returning a corrupt image.
func TestDecompressTruncated(t *testing.T) {
	im, err := NewImage(8, 8, false)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			im.SetPixel(x, y, Pixel{X: byte(x * y)})
		}
	}

	qti, err := Compress(im, nil, 0, 1, -1, 0)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	truncated := NewQTI(qti.Width, qti.Height, qti.MinSize, qti.MaxDepth, qti.Lazyness, qti.CacheSize)
	cmdBytes, err := qti.Commands.Bytes()
	if err != nil {
		t.Fatalf("Commands.Bytes: %v", err)
	}
	if len(cmdBytes) > 0 {
		cmdBytes = cmdBytes[:len(cmdBytes)-1]
	}
	for _, b := range cmdBytes {
		if err := truncated.Commands.AppendByte(b); err != nil {
			t.Fatalf("AppendByte: %v", err)
		}
	}

	if _, err := Decompress(truncated, nil); err == nil {
		t.Fatalf("Decompress of truncated stream: got nil error, want an error")
	}
}
