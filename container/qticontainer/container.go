/*
NAME
  container.go

DESCRIPTION
  Package qticontainer implements the on-disk/on-wire framing for a
  quadtree-coded frame: a fixed header carrying the frame's dimensions,
  codec parameters and the bit length of its two command/color streams,
  followed by the two streams range-coded through an order-1 RangeCoder
  (bits=1 for commands, bits=8 for colors) per spec section 6. The coded
  payloads are not themselves length-prefixed: RangeCoder.Decode consumes
  exactly as many bytes as the matching Encode call produced for a given
  symbol count, so the header's bit-length fields are enough to frame
  both the decode call and the following stream's start.

  Framing follows container/flv's single-io.Writer Encoder / byte-stream
  Decoder split, generalized from FLV's fixed tag header to a format
  suited to the quadtree codec's two-stream, parameterized output.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package qticontainer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/ausocean/qtc/codec/qtc"
)

// magic identifies a qticontainer stream; version allows the header
// layout to change without breaking the ability to detect a mismatch.
const (
	magic   = 0x51544331 // "QTC1"
	version = 1
)

// headerSize is the fixed byte size of a frame header: magic, version,
// width, height, transform flag, minsize, maxdepth, lazyness, cache
// size, has-reference flag, has-alpha flag, and the bit length of each
// of the two range-coded streams that follow.
const headerSize = 4 + 1 + 4 + 4 + 1 + 4 + 4 + 4 + 4 + 1 + 1 + 4 + 4

// commandsOrder, commandsBits, colorsOrder and colorsBits fix the range
// coder configuration for the two streams per spec section 6: commands
// are coded bits=1 order=1, colors bits=8 order=1.
const (
	commandsOrder, commandsBits = 1, 1
	colorsOrder, colorsBits     = 1, 8
)

// Encoder writes quadtree-coded frames (QTIs) to an underlying
// io.Writer, one frame at a time, in the order Write is called.
type Encoder struct {
	dst io.Writer
}

// NewEncoder returns a new Encoder writing to dst.
func NewEncoder(dst io.Writer) *Encoder {
	return &Encoder{dst: dst}
}

// Write range-codes a single QTI's command and color streams and writes
// the framed result to the Encoder's destination. It codes copies of the
// two streams, so q's own read cursors are left where they were.
func (e *Encoder) Write(q *qtc.QTI) (int, error) {
	cmdCoder, err := qtc.NewRangeCoder(commandsOrder, commandsBits)
	if err != nil {
		return 0, errors.Wrap(err, "qticontainer: commands range coder")
	}
	colorCoder, err := qtc.NewRangeCoder(colorsOrder, colorsBits)
	if err != nil {
		return 0, errors.Wrap(err, "qticontainer: colors range coder")
	}

	cmdStreamBits := q.Commands.Size()
	colorStreamBits := q.Colors.Size()

	var streams [2]*qtc.BitBuffer
	for i, bb := range []*qtc.BitBuffer{q.Commands, q.Colors} {
		raw, _ := bb.Bytes()
		streams[i] = qtc.NewBitBuffer()
		for p := 0; p < bb.Size(); p++ {
			if err := streams[i].AppendBit(raw[p/8]&(0x80>>uint(p%8)) != 0); err != nil {
				return 0, errors.Wrap(err, "qticontainer: copy stream")
			}
		}
	}

	cmdCoded, err := cmdCoder.Encode(streams[0], cmdStreamBits)
	if err != nil {
		return 0, errors.Wrap(err, "qticontainer: encode commands")
	}
	colorCoded, err := colorCoder.Encode(streams[1], colorStreamBits/colorsBits)
	if err != nil {
		return 0, errors.Wrap(err, "qticontainer: encode colors")
	}

	buf := make([]byte, 0, headerSize+len(cmdCoded)+len(colorCoded))
	buf = appendUint32(buf, magic)
	buf = append(buf, version)
	buf = appendUint32(buf, uint32(q.Width))
	buf = appendUint32(buf, uint32(q.Height))
	if q.Transform {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendUint32(buf, uint32(q.MinSize))
	buf = appendUint32(buf, uint32(int32(q.MaxDepth)))
	buf = appendUint32(buf, uint32(q.Lazyness))
	buf = appendUint32(buf, uint32(q.CacheSize))
	if q.HasReference {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	if q.HasAlpha {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = appendUint32(buf, uint32(cmdStreamBits))
	buf = appendUint32(buf, uint32(colorStreamBits))
	buf = append(buf, cmdCoded...)
	buf = append(buf, colorCoded...)

	return e.dst.Write(buf)
}

func appendUint32(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// Decoder reads quadtree-coded frames (QTIs) from an underlying
// io.Reader, one frame at a time.
type Decoder struct {
	src io.Reader
}

// NewDecoder returns a new Decoder reading from src.
func NewDecoder(src io.Reader) *Decoder {
	return &Decoder{src: src}
}

// Read reads and returns the next framed QTI. It returns io.EOF (possibly
// wrapped) if src is exhausted exactly at a frame boundary.
func (d *Decoder) Read() (*qtc.QTI, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(d.src, hdr[:]); err != nil {
		return nil, err
	}

	if got := binary.BigEndian.Uint32(hdr[0:4]); got != magic {
		return nil, errors.Wrapf(qtc.ErrDecodeError, "qticontainer: bad magic %#x", got)
	}
	if hdr[4] != version {
		return nil, errors.Wrapf(qtc.ErrDecodeError, "qticontainer: unsupported version %d", hdr[4])
	}

	width := int(binary.BigEndian.Uint32(hdr[5:9]))
	height := int(binary.BigEndian.Uint32(hdr[9:13]))
	transform := hdr[13] != 0
	minsize := int(binary.BigEndian.Uint32(hdr[14:18]))
	maxdepth := int(int32(binary.BigEndian.Uint32(hdr[18:22])))
	lazyness := int(binary.BigEndian.Uint32(hdr[22:26]))
	cacheSize := int(binary.BigEndian.Uint32(hdr[26:30]))
	hasReference := hdr[30] != 0
	hasAlpha := hdr[31] != 0
	cmdStreamBits := int(binary.BigEndian.Uint32(hdr[32:36]))
	colorStreamBits := int(binary.BigEndian.Uint32(hdr[36:40]))

	cmdCoder, err := qtc.NewRangeCoder(commandsOrder, commandsBits)
	if err != nil {
		return nil, errors.Wrap(err, "qticontainer: commands range coder")
	}
	colorCoder, err := qtc.NewRangeCoder(colorsOrder, colorsBits)
	if err != nil {
		return nil, errors.Wrap(err, "qticontainer: colors range coder")
	}

	commands, err := cmdCoder.Decode(d.src, cmdStreamBits)
	if err != nil {
		return nil, errors.Wrap(err, "qticontainer: decode commands")
	}
	colors, err := colorCoder.Decode(d.src, colorStreamBits/colorsBits)
	if err != nil {
		return nil, errors.Wrap(err, "qticontainer: decode colors")
	}

	q := qtc.NewQTI(width, height, minsize, maxdepth, lazyness, cacheSize)
	q.HasReference = hasReference
	q.HasAlpha = hasAlpha
	q.Transform = transform
	q.Commands = commands
	q.Colors = colors
	return q, nil
}
