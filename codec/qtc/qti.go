/*
DESCRIPTION
  qti.go defines the Quadtree Intermediate (QTI): the compressor's output
  and the decompressor's input. A QTI bundles the two bitstreams the
  quadtree codec produces (commands, colors) with the parameters needed
  to interpret them.

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

// QTI is the quadtree codec's intermediate representation: a command
// bitstream encoding the recursion structure and per-node decisions, and
// a color bitstream carrying leaf pixel values, together with the
// parameters the decoder needs to walk the command stream the same way
// the encoder produced it.
type QTI struct {
	Commands *BitBuffer
	Colors   *BitBuffer

	Width, Height int

	MinSize  int
	MaxDepth int
	Lazyness int

	// CacheSize is the tile cache capacity used while producing this QTI,
	// zero if the tile cache was not used (cache hits are only emitted
	// for leaves larger than 1x1, see encode.go).
	CacheSize int

	// HasReference records whether this QTI encodes a delta against a
	// reference image rather than an absolute image.
	HasReference bool

	// HasAlpha records whether the source image's fourth channel carries
	// semantically meaningful alpha data, the same flag Image.HasAlpha
	// carries. It is recorded here (rather than inferred from a reference
	// image, which is absent on every key frame) so Decompress can restore
	// it on the reconstructed Image regardless of whether a reference was
	// supplied.
	HasAlpha bool

	// Transform records whether the image was passed through the
	// reversible RGB<->YCoCg colorspace transform (Image.Forward) before
	// being quadtree-coded. The codec itself never applies or inverts
	// this transform; the flag is carried on the QTI purely so a
	// container/stream reading only the coded bytes can tell whether
	// Image.Inverse must be applied after Decompress, without needing
	// the original caller's configuration out-of-band.
	Transform bool
}

// NewQTI returns an empty QTI configured with the given parameters.
func NewQTI(width, height, minsize, maxdepth, lazyness, cacheSize int) *QTI {
	return &QTI{
		Commands:  NewBitBuffer(),
		Colors:    NewBitBuffer(),
		Width:     width,
		Height:    height,
		MinSize:   minsize,
		MaxDepth:  maxdepth,
		Lazyness:  lazyness,
		CacheSize: cacheSize,
	}
}
