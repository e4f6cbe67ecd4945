/*
DESCRIPTION
  image.go provides the codec's pixel and image types: a packed 4-channel
  pixel, a row-major image buffer, channel masking, and a reversible
  RGB<->YCoCg colorspace transform. See padding.go for the
  image.Image/draw.Image adapter used to pad a frame to a power-of-two
  size via golang.org/x/image/draw.

  Raw frames follow the 32-bit little-endian BGRX convention the
  original capture path (x11grab.c, now out of scope) assumed; frame
  sources unpack those bytes into (R, G, B, A) order. Channel names are
  generic (X, Y, Z, A) because the same storage holds either (R, G, B, A)
  from a frame source or (Y, Co, Cg, A) after the colorspace transform
  is applied.

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
	"image/color"

	"github.com/pkg/errors"
)

// Pixel is a 32-bit record of four 8-bit channels. In RGB space these are
// (R, G, B, A); after Forward/Inverse they are (Y, Co, Cg, A).
type Pixel struct {
	X, Y, Z, A byte
}

// Mask returns p with every channel ANDed against the corresponding
// channel of mask.
func (p Pixel) Mask(mask Pixel) Pixel {
	return Pixel{
		X: p.X & mask.X,
		Y: p.Y & mask.Y,
		Z: p.Z & mask.Z,
		A: p.A & mask.A,
	}
}

// channelMask returns the per-channel mask corresponding to a lazyness
// value (0-7): the number of low bits cleared in every channel.
func channelMask(lazyness int) Pixel {
	m := byte(0xFF << uint(lazyness))
	return Pixel{X: m, Y: m, Z: m, A: m}
}

// Sub returns the per-channel modular (wraparound) difference a - b,
// used to encode a delta frame against a reference image.
func (p Pixel) Sub(q Pixel) Pixel {
	return Pixel{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z, A: p.A - q.A}
}

// Add returns the per-channel modular sum p + q, the inverse of Sub; used
// to reconstruct a frame from its reference and a decoded delta.
func (p Pixel) Add(q Pixel) Pixel {
	return Pixel{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z, A: p.A + q.A}
}

// AbsDiff returns, per channel, |p.c - q.c| treating each channel as an
// unsigned byte (i.e. widened to avoid wraparound before subtracting).
func (p Pixel) AbsDiff(q Pixel) (x, y, z, a int) {
	abs := func(u, v byte) int {
		d := int(u) - int(v)
		if d < 0 {
			return -d
		}
		return d
	}
	return abs(p.X, q.X), abs(p.Y, q.Y), abs(p.Z, q.Z), abs(p.A, q.A)
}

// Forward applies the reversible RGB->YCoCg-like transform to an RGB(A)
// pixel, producing (Y, Co, Cg, A). The transform is the standard
// reversible "lifting" construction (as used by lossless JPEG2000's RCT
// and similar codecs): it implements the same Y ~ (R+2G+B)/4,
// Co ~ R-B, Cg ~ G-(R+B)/2 relationship, computed in an order that makes
// it exactly invertible over mod-256 byte arithmetic, which the naive
// averaged formulas are not.
func (p Pixel) Forward() Pixel {
	r, g, b := p.X, p.Y, p.Z
	co := r - b
	t := b + byte(int8(co)>>1)
	cg := g - t
	y := t + byte(int8(cg)>>1)
	return Pixel{X: y, Y: co, Z: cg, A: p.A}
}

// Inverse is the exact inverse of Forward: given (Y, Co, Cg, A) it
// reconstructs the original (R, G, B, A).
func (p Pixel) Inverse() Pixel {
	y, co, cg := p.X, p.Y, p.Z
	t := y - byte(int8(cg)>>1)
	g := cg + t
	b := t - byte(int8(co)>>1)
	r := b + co
	return Pixel{X: r, Y: g, Z: b, A: p.A}
}

// Image is a rectangular, row-major buffer of Pixels.
type Image struct {
	Width, Height int
	Pix           []Pixel

	// HasAlpha records whether the fourth channel carries meaningful
	// alpha data, as opposed to being unused padding.
	HasAlpha bool
}

// NewImage returns a new width*height Image with all pixels zeroed.
func NewImage(width, height int, hasAlpha bool) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "image: invalid dimensions %dx%d", width, height)
	}
	return &Image{
		Width:    width,
		Height:   height,
		Pix:      make([]Pixel, width*height),
		HasAlpha: hasAlpha,
	}, nil
}

// At returns the pixel at (x, y).
func (im *Image) At(x, y int) Pixel { return im.Pix[y*im.Width+x] }

// SetPixel sets the pixel at (x, y).
func (im *Image) SetPixel(x, y int, p Pixel) { im.Pix[y*im.Width+x] = p }

// Forward applies the RGB->YCoCg-like transform to every pixel in place.
func (im *Image) Forward() {
	for i, p := range im.Pix {
		im.Pix[i] = p.Forward()
	}
}

// Inverse applies the inverse transform to every pixel in place.
func (im *Image) Inverse() {
	for i, p := range im.Pix {
		im.Pix[i] = p.Inverse()
	}
}

// Mask applies the channel mask derived from lazyness to every pixel in
// place.
func (im *Image) Mask(lazyness int) {
	mask := channelMask(lazyness)
	for i, p := range im.Pix {
		im.Pix[i] = p.Mask(mask)
	}
}

// Clone returns a deep copy of im.
func (im *Image) Clone() *Image {
	out := &Image{Width: im.Width, Height: im.Height, HasAlpha: im.HasAlpha}
	out.Pix = make([]Pixel, len(im.Pix))
	copy(out.Pix, im.Pix)
	return out
}

// pixelColor is a color.Color view of a Pixel, used only by the
// image.Image/draw.Image adapter in padding.go so that
// golang.org/x/image/draw can operate on an Image's pixels directly.
// It is a mechanical bit-repacking, never a display-intended color
// conversion: an Image's channels may hold RGB or transformed YCoCg
// values depending on where in the pipeline it sits.
type pixelColor struct{ p Pixel }

func (c pixelColor) RGBA() (r, g, b, a uint32) {
	r = uint32(c.p.X) * 0x101
	g = uint32(c.p.Y) * 0x101
	b = uint32(c.p.Z) * 0x101
	a = uint32(c.p.A) * 0x101
	return
}

func pixelColorFrom(c color.Color) pixelColor {
	if pc, ok := c.(pixelColor); ok {
		return pc
	}
	r, g, b, a := c.RGBA()
	return pixelColor{Pixel{X: byte(r >> 8), Y: byte(g >> 8), Z: byte(b >> 8), A: byte(a >> 8)}}
}

type pixelModel struct{}

func (pixelModel) Convert(c color.Color) color.Color { return pixelColorFrom(c) }

var colorModel color.Model = pixelModel{}
