/*
DESCRIPTION
  decode.go implements the quadtree decompressor, the exact mirror of
  encode.go's recursive descent: it reads the same sequence of
  split/leaf/cache-hit decisions back from a QTI's Commands stream,
  driven purely by the stream's own content plus the Codec's MinSize,
  MaxDepth and tile cache, which must match those the QTI was encoded
  with (never by re-deriving anything from pixel data, of which the
  decoder has none until it reconstructs it).

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

// Decompress reconstructs the Image a QTI was produced from. If the QTI
// was encoded against a reference frame (HasReference), refimage must be
// supplied and have the QTI's Width/Height; the decoded delta is added to
// it to recover absolute pixel values. If the QTI carries no reference,
// refimage is ignored and may be nil.
func (c *Codec) Decompress(in *QTI, refimage *Image) (*Image, error) {
	if in == nil {
		return nil, errors.Wrap(ErrInvalidParameter, "codec: nil QTI")
	}
	if in.HasReference && (refimage == nil || refimage.Width != in.Width || refimage.Height != in.Height) {
		return nil, errors.Wrap(ErrInvalidParameter, "codec: reference image required and must match QTI dimensions")
	}

	edge := canvasEdge(in.Width, in.Height)
	padded, err := NewImage(edge, edge, in.HasAlpha)
	if err != nil {
		return nil, err
	}

	d := &decoder{c: c, qti: in, out: padded}
	if err := d.decodeNode(0, 0, edge, 0); err != nil {
		return nil, err
	}

	out, err := cropToSize(padded, in.Width, in.Height)
	if err != nil {
		return nil, err
	}

	if in.HasReference {
		for i, p := range out.Pix {
			out.Pix[i] = refimage.Pix[i].Add(p)
		}
	}
	return out, nil
}

// decoder holds the mutable state threaded through the recursive decode
// walk.
type decoder struct {
	c   *Codec
	qti *QTI
	out *Image
}

// decodeNode reconstructs the size*size square region at (x0, y0) of
// d.out, the exact inverse of encodeNode.
func (d *decoder) decodeNode(x0, y0, size, depth int) error {
	canSplit := size > d.c.MinSize && (d.c.MaxDepth < 0 || depth <= d.c.MaxDepth)

	split := false
	if canSplit {
		b, err := d.qti.Commands.ReadBit()
		if err != nil {
			return err
		}
		split = b
	}

	if split {
		half := size / 2
		if err := d.decodeNode(x0, y0, half, depth+1); err != nil {
			return err
		}
		if err := d.decodeNode(x0+half, y0, half, depth+1); err != nil {
			return err
		}
		if err := d.decodeNode(x0, y0+half, half, depth+1); err != nil {
			return err
		}
		if err := d.decodeNode(x0+half, y0+half, half, depth+1); err != nil {
			return err
		}
		return nil
	}

	return d.decodeLeaf(x0, y0, size)
}

// decodeLeaf reconstructs a decided leaf's content, the exact inverse of
// encodeLeaf.
func (d *decoder) decodeLeaf(x0, y0, size int) error {
	if d.c.Cache == nil || size == 1 {
		p, err := readPixel(d.qti.Colors)
		if err != nil {
			return err
		}
		d.fill(x0, y0, size, p)
		return nil
	}

	hit, err := d.qti.Commands.ReadBit()
	if err != nil {
		return err
	}

	if hit {
		idx, err := d.qti.Commands.ReadBits(d.c.Cache.IndexBits())
		if err != nil {
			return err
		}
		tile, err := d.c.Cache.Tile(int(idx))
		if err != nil {
			return err
		}
		d.blit(x0, y0, size, tile)
		return nil
	}

	tile := make([]Pixel, size*size)
	j := 0
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			p, err := readPixel(d.qti.Colors)
			if err != nil {
				return err
			}
			d.out.SetPixel(x, y, p)
			tile[j] = p
			j++
		}
	}
	d.c.Cache.Install(tile)
	return nil
}

// fill writes a single pixel value to every position in the size*size
// region at (x0, y0).
func (d *decoder) fill(x0, y0, size int, p Pixel) {
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			d.out.SetPixel(x, y, p)
		}
	}
}

// blit writes a row-major size*size tile to the region at (x0, y0).
func (d *decoder) blit(x0, y0, size int, tile []Pixel) {
	j := 0
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			d.out.SetPixel(x, y, tile[j])
			j++
		}
	}
}
