/*
DESCRIPTION
  codec.go defines Codec, the quadtree compressor/decompressor
  configuration shared by encode.go and decode.go, along with the
  package-level Compress/Decompress entry points matching the external
  interface in spec section 6.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package qtc

import "github.com/pkg/errors"

// Codec holds the quadtree codec's tuning parameters and, optionally, a
// tile cache shared across the frames it encodes or decodes.
//
// maxerror: 0 for lossless coding, otherwise the maximum per-channel
// error a leaf's uniform fill may introduce.
//
// minsize: smallest allowed leaf edge; must be a power of two.
//
// maxdepth: recursion cap; -1 means unlimited.
//
// lazyness: 0-7, the number of low bits masked off each channel before
// coding.
type Codec struct {
	MaxError int
	MinSize  int
	MaxDepth int
	Lazyness int

	// Cache, if non-nil, is used to deduplicate leaves larger than 1x1
	// pixel via back-references instead of raw pixel data. A Codec used
	// for encoding and one used for decoding the same stream must share
	// cache state that is mutated identically (see stream.go), or pass
	// their own independent but identically-sized/blocksized caches that
	// are reset in lockstep.
	Cache *TileCache
}

// NewCodec validates and returns a new Codec. cache may be nil to disable
// tile-cache based deduplication.
func NewCodec(maxerror, minsize, maxdepth, lazyness int, cache *TileCache) (*Codec, error) {
	if maxerror < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "codec: maxerror %d < 0", maxerror)
	}
	if minsize <= 0 || minsize&(minsize-1) != 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "codec: minsize %d is not a power of two", minsize)
	}
	if maxdepth < -1 {
		return nil, errors.Wrapf(ErrInvalidParameter, "codec: maxdepth %d < -1", maxdepth)
	}
	if lazyness < 0 || lazyness > 7 {
		return nil, errors.Wrapf(ErrInvalidParameter, "codec: lazyness %d out of [0,7]", lazyness)
	}
	return &Codec{
		MaxError: maxerror,
		MinSize:  minsize,
		MaxDepth: maxdepth,
		Lazyness: lazyness,
		Cache:    cache,
	}, nil
}

// Compress is the package-level compressor entry point: it builds a
// one-shot Codec with no tile cache and compresses input (optionally
// against refimage) into a QTI.
func Compress(input, refimage *Image, maxerror, minsize, maxdepth, lazyness int) (*QTI, error) {
	c, err := NewCodec(maxerror, minsize, maxdepth, lazyness, nil)
	if err != nil {
		return nil, err
	}
	return c.Compress(input, refimage)
}

// Decompress is the package-level decompressor entry point, the inverse
// of Compress.
func Decompress(in *QTI, refimage *Image) (*Image, error) {
	c, err := NewCodec(0, in.MinSize, in.MaxDepth, in.Lazyness, nil)
	if err != nil {
		return nil, err
	}
	return c.Decompress(in, refimage)
}

// canvasEdge returns the power-of-two square edge length the quadtree
// root must be padded to for the given frame dimensions.
func canvasEdge(width, height int) int {
	edge := width
	if height > edge {
		edge = height
	}
	return nextPowerOfTwo(edge)
}
