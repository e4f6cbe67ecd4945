/*
DESCRIPTION
  padding.go pads a frame up to the next power-of-two width and height
  before quadtree partitioning starts (the root node must be able to
  halve evenly down to minsize at every level). Padding is done with
  golang.org/x/image/draw so that the copy goes through the same
  stdlib-compatible drawing path the rest of the Go image ecosystem uses,
  rather than a hand-rolled nested loop.

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

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// imageAdapter presents an *Image as a standard image.Image/draw.Image so
// that golang.org/x/image/draw can operate on it.
type imageAdapter struct{ im *Image }

func (a imageAdapter) Bounds() image.Rectangle {
	return image.Rect(0, 0, a.im.Width, a.im.Height)
}

func (a imageAdapter) ColorModel() color.Model { return colorModel }

func (a imageAdapter) At(x, y int) color.Color {
	return pixelColor{a.im.At(x, y)}
}

func (a imageAdapter) Set(x, y int, c color.Color) {
	a.im.SetPixel(x, y, pixelColorFrom(c).p)
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// padToSquare returns im unchanged if it is already edge*edge; otherwise
// it returns a new edge*edge Image with im drawn into its top-left
// corner and the remainder zero-filled. The quadtree root must be square
// and power-of-two sized so that every level can halve evenly down to
// MinSize; padded pixels are ignored by the split-decision metric.
func padToSquare(im *Image, edge int) (*Image, error) {
	if im.Width == edge && im.Height == edge {
		return im, nil
	}
	out, err := NewImage(edge, edge, im.HasAlpha)
	if err != nil {
		return nil, err
	}
	draw.Draw(imageAdapter{out}, imageAdapter{im}.Bounds(), imageAdapter{im}, image.Point{}, draw.Src)
	return out, nil
}

// cropToSize returns a new width*height Image containing im's top-left
// width*height pixels, the inverse of the padding applied before
// quadtree encoding.
func cropToSize(im *Image, width, height int) (*Image, error) {
	if im.Width == width && im.Height == height {
		return im, nil
	}
	out, err := NewImage(width, height, im.HasAlpha)
	if err != nil {
		return nil, err
	}
	draw.Draw(imageAdapter{out}, imageAdapter{out}.Bounds(), imageAdapter{im}, image.Point{}, draw.Src)
	return out, nil
}
