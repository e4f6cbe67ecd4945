/*
DESCRIPTION
  encode.go implements the quadtree compressor: a recursive descent over
  power-of-two aligned square regions that decides, at each node, whether
  the region is uniform enough (exactly, or within maxerror) to terminate
  as a leaf, or must be split into four equally-sized children. The
  resulting command/leaf decisions and leaf pixel data are appended to a
  QTI's Commands and Colors bitstreams.

  The recursive walk mirrors codec/h264/h264dec/slice.go's recursive
  macroblock/NAL structure traversal: a tree shape driven by a stream of
  structural decisions, with payload bytes interleaved at the leaves.

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

// Compress encodes input into a QTI. If refimage is non-nil, input must
// have the same dimensions as refimage and the QTI encodes the per-pixel
// delta (input - refimage) rather than input's absolute pixel values;
// HasReference is set accordingly so Decompress knows to reconstruct
// against a reference image of its own.
func (c *Codec) Compress(input, refimage *Image) (*QTI, error) {
	if input == nil {
		return nil, errors.Wrap(ErrInvalidParameter, "codec: nil input image")
	}
	if refimage != nil && (refimage.Width != input.Width || refimage.Height != input.Height) {
		return nil, errors.Wrapf(ErrInvalidParameter, "codec: reference image %dx%d does not match input %dx%d",
			refimage.Width, refimage.Height, input.Width, input.Height)
	}

	work := input.Clone()
	if refimage != nil {
		for i, p := range work.Pix {
			work.Pix[i] = p.Sub(refimage.Pix[i])
		}
	}

	edge := canvasEdge(input.Width, input.Height)
	padded, err := padToSquare(work, edge)
	if err != nil {
		return nil, err
	}

	cacheSize := 0
	if c.Cache != nil {
		cacheSize = c.Cache.Size()
	}
	qti := NewQTI(input.Width, input.Height, c.MinSize, c.MaxDepth, c.Lazyness, cacheSize)
	qti.HasReference = refimage != nil
	qti.HasAlpha = input.HasAlpha

	mask := channelMask(c.Lazyness)
	if err := c.encodeNode(padded, qti, mask, 0, 0, edge, 0); err != nil {
		return nil, err
	}
	return qti, nil
}

// encodeNode encodes the size*size square region at (x0, y0) of work,
// rooted at recursion depth depth.
func (c *Codec) encodeNode(work *Image, qti *QTI, mask Pixel, x0, y0, size, depth int) error {
	fill, leaf := c.splitTest(work, qti.Width, qti.Height, mask, x0, y0, size)

	canSplit := size > c.MinSize && (c.MaxDepth < 0 || depth <= c.MaxDepth)
	split := canSplit && !leaf

	if canSplit {
		if err := qti.Commands.AppendBit(split); err != nil {
			return err
		}
	}

	if split {
		half := size / 2
		if err := c.encodeNode(work, qti, mask, x0, y0, half, depth+1); err != nil {
			return err
		}
		if err := c.encodeNode(work, qti, mask, x0+half, y0, half, depth+1); err != nil {
			return err
		}
		if err := c.encodeNode(work, qti, mask, x0, y0+half, half, depth+1); err != nil {
			return err
		}
		if err := c.encodeNode(work, qti, mask, x0+half, y0+half, half, depth+1); err != nil {
			return err
		}
		return nil
	}

	return c.encodeLeaf(work, qti, mask, x0, y0, size, fill)
}

// splitTest reports whether the size*size region at (x0, y0) of work can
// terminate as a leaf: either every masked pixel in it is identical, or
// the maximum per-channel distance from the masked top-left pixel is
// within MaxError. Only pixels inside the original w*h frame are
// measured; the padding beyond it is ignored. It returns the masked
// top-left pixel as the candidate uniform fill value regardless of the
// region's actual uniformity, since callers only use it when leaf is true.
func (c *Codec) splitTest(work *Image, w, h int, mask Pixel, x0, y0, size int) (fill Pixel, leaf bool) {
	fill = work.At(x0, y0).Mask(mask)
	if size == 1 {
		return fill, true
	}

	maxErr := 0
	for y := y0; y < y0+size && y < h; y++ {
		for x := x0; x < x0+size && x < w; x++ {
			p := work.At(x, y).Mask(mask)
			dx, dy, dz, da := p.AbsDiff(fill)
			if dx > maxErr {
				maxErr = dx
			}
			if dy > maxErr {
				maxErr = dy
			}
			if dz > maxErr {
				maxErr = dz
			}
			if work.HasAlpha && da > maxErr {
				maxErr = da
			}
		}
	}
	return fill, maxErr <= c.MaxError
}

// encodeLeaf emits a decided leaf's content. A leaf of size 1, or any
// leaf when the tile cache is disabled, is coded as a single masked fill
// pixel (the region is, by construction, uniform or within tolerance of
// it). A leaf larger than 1x1 with the tile cache enabled instead goes
// through the cache: a cache-hit bit, followed by either a back-reference
// index or the full tile in row-major scan order.
func (c *Codec) encodeLeaf(work *Image, qti *QTI, mask Pixel, x0, y0, size int, fill Pixel) error {
	if c.Cache == nil || size == 1 {
		return emitPixel(qti.Colors, fill)
	}

	idx := c.Cache.Write(work.Pix, x0, y0, size, size, work.Width, mask)
	if idx != noEntry {
		if err := qti.Commands.AppendBit(true); err != nil {
			return err
		}
		return qti.Commands.AppendBits(uint32(idx), c.Cache.IndexBits())
	}

	if err := qti.Commands.AppendBit(false); err != nil {
		return err
	}
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			if err := emitPixel(qti.Colors, work.At(x, y).Mask(mask)); err != nil {
				return err
			}
		}
	}
	return nil
}

// emitPixel writes a pixel's four channels to a colors stream, one byte
// each, in (X, Y, Z, A) order.
func emitPixel(colors *BitBuffer, p Pixel) error {
	if err := colors.AppendByte(p.X); err != nil {
		return err
	}
	if err := colors.AppendByte(p.Y); err != nil {
		return err
	}
	if err := colors.AppendByte(p.Z); err != nil {
		return err
	}
	return colors.AppendByte(p.A)
}

// readPixel reads a pixel's four channels back from a colors stream.
func readPixel(colors *BitBuffer) (Pixel, error) {
	x, err := colors.ReadByte()
	if err != nil {
		return Pixel{}, err
	}
	y, err := colors.ReadByte()
	if err != nil {
		return Pixel{}, err
	}
	z, err := colors.ReadByte()
	if err != nil {
		return Pixel{}, err
	}
	a, err := colors.ReadByte()
	if err != nil {
		return Pixel{}, err
	}
	return Pixel{X: x, Y: y, Z: z, A: a}, nil
}
