/*
DESCRIPTION
  bitbuffer.go provides BitBuffer, a growable byte buffer addressable at
  bit granularity with independent append and read cursors.

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

// BitBuffer is a growable, bit-addressable byte buffer. Appends and reads
// are MSB-first within each byte and operate at independent cursor
// positions: a BitBuffer can be partially read while more data is still
// being appended to it, with every appended bit immediately visible to
// the read cursor.
//
// The underlying storage is a plain growable byte slice addressed
// directly at the bit level, rather than layered on a stream-oriented bit
// I/O library (e.g. github.com/icza/bitio): those libraries buffer
// sub-byte writes internally and only flush to their backing io.Writer
// once a full byte has accumulated (or Close/Align is called), so a
// second, independent reader over the same backing store cannot observe
// bits appended since the last byte boundary. That breaks this type's
// core guarantee (spec: append and read cursors are independent, and
// interleaving is expected), so BitBuffer packs bits directly into its
// slice instead.
type BitBuffer struct {
	buf  []byte
	wpos int // next bit position to write, 0 = MSB of buf[0]
	rpos int // next bit position to read
}

// NewBitBuffer returns a new, empty BitBuffer.
func NewBitBuffer() *BitBuffer { return &BitBuffer{} }

// growFor ensures buf has enough bytes to hold a write ending at bit
// position wpos+n.
func (bb *BitBuffer) growFor(n int) {
	need := (bb.wpos + n + 7) / 8
	if need <= len(bb.buf) {
		return
	}
	grown := make([]byte, need, growCap(need))
	copy(grown, bb.buf)
	bb.buf = grown
}

// growCap returns an amortized-doubling capacity for at least need bytes.
func growCap(need int) int {
	c := 16
	for c < need {
		c *= 2
	}
	return c
}

// AppendBit appends a single bit.
func (bb *BitBuffer) AppendBit(b bool) error {
	bb.growFor(1)
	byteIdx := bb.wpos / 8
	bitIdx := uint(7 - bb.wpos%8)
	if b {
		bb.buf[byteIdx] |= 1 << bitIdx
	} else {
		bb.buf[byteIdx] &^= 1 << bitIdx
	}
	bb.wpos++
	return nil
}

// AppendBits appends the low n bits of v, n in [0, 32], MSB-first.
func (bb *BitBuffer) AppendBits(v uint32, n int) error {
	if n < 0 || n > 32 {
		return errors.Wrapf(ErrInvalidParameter, "append bits: n=%d out of range", n)
	}
	bb.growFor(n)
	for i := n - 1; i >= 0; i-- {
		if err := bb.AppendBit((v>>uint(i))&1 != 0); err != nil {
			return err
		}
	}
	return nil
}

// AppendByte appends a whole byte, first flushing any partial bit to a
// byte boundary (padding with zero bits).
func (bb *BitBuffer) AppendByte(b byte) error {
	if off := bb.wpos % 8; off != 0 {
		if err := bb.AppendBits(0, 8-off); err != nil {
			return err
		}
	}
	return bb.AppendBits(uint32(b), 8)
}

// ReadBit reads a single bit from the read cursor. If the cursor has
// reached the end of the written data, ReadBit returns false and
// ErrTruncated.
func (bb *BitBuffer) ReadBit() (bool, error) {
	if bb.rpos >= bb.wpos {
		return false, errors.Wrap(ErrTruncated, "qtc: read bit")
	}
	byteIdx := bb.rpos / 8
	bitIdx := uint(7 - bb.rpos%8)
	b := bb.buf[byteIdx]&(1<<bitIdx) != 0
	bb.rpos++
	return b, nil
}

// ReadBits reads n bits, n in [0, 32], from the read cursor and returns
// them in the low bits of the result. If the stream is exhausted before n
// bits are available, ReadBits returns 0 and ErrTruncated; bits already
// consumed before the failure are not un-read.
func (bb *BitBuffer) ReadBits(n int) (uint32, error) {
	if n < 0 || n > 32 {
		return 0, errors.Wrapf(ErrInvalidParameter, "read bits: n=%d out of range", n)
	}
	var v uint32
	for i := 0; i < n; i++ {
		b, err := bb.ReadBit()
		if err != nil {
			return 0, err
		}
		v <<= 1
		if b {
			v |= 1
		}
	}
	return v, nil
}

// ReadByte first skips the read cursor forward to the next byte boundary
// (the mirror of AppendByte's padding), then reads the next 8 bits as a
// byte.
func (bb *BitBuffer) ReadByte() (byte, error) {
	if off := bb.rpos % 8; off != 0 {
		if _, err := bb.ReadBits(8 - off); err != nil {
			return 0, err
		}
	}
	v, err := bb.ReadBits(8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// Size returns the number of bits appended to the buffer so far.
func (bb *BitBuffer) Size() int { return bb.wpos }

// BitsRead returns the number of bits consumed from the read cursor so
// far.
func (bb *BitBuffer) BitsRead() int { return bb.rpos }

// Bytes returns the buffer's backing bytes, any trailing partial byte
// zero-padded. It is intended for serialization once all appends are
// complete.
func (bb *BitBuffer) Bytes() ([]byte, error) {
	bb.growFor(0)
	return bb.buf, nil
}

// Reset discards all written and read state, returning the BitBuffer to
// its zero value.
func (bb *BitBuffer) Reset() {
	*bb = BitBuffer{}
}
