/*
DESCRIPTION
  rangecoder.go implements the adaptive, context-modeled carry-less range
  coder used to entropy code the quadtree codec's command and color
  streams. It is a direct, bit-exact Go port of the range coder found in
  the original QTC C sources (rangecode.c), based on the carry-less range
  coder design by Dmitry Subbotin.

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
	"io"

	"github.com/pkg/errors"
)

// Renormalization thresholds.
const (
	rcTop    = 1 << 24
	rcBottom = 1 << 16
)

// frequencyIncrement is added to a symbol's frequency (and to its
// context's total) every time the symbol is coded.
const frequencyIncrement = 32

// totalsLimit triggers a halving rebuild of a context's frequency table
// once its total reaches this value, bounding frequency magnitudes and
// letting the model adapt to drift in the input.
const totalsLimit = 0xFFFF

// RangeCoder is an adaptive range coder with an order-0 or order-1
// context model over a 1-bit or 8-bit symbol alphabet.
//
// The context index used for both the frequency-table lookup and the
// post-symbol update is computed once per symbol and reused for both
// purposes (c below); the original C implementation's decoder diverged
// between an `idx<<bits` and `idx>>bits` indexing of totals, which this
// port resolves by always deriving the context index as `idx>>bits` from
// the combined freqs-table index `idx`, mirroring the (correct) encoder
// behaviour on both sides.
type RangeCoder struct {
	order, bits     int
	symbols         int
	fsize, tsize    int
	freqs, totals   []uint32
}

// NewRangeCoder returns a new range coder with a fresh (reset) model.
// order must be 0 or 1; bits must be 1 or 8.
func NewRangeCoder(order, bits int) (*RangeCoder, error) {
	if order < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "range coder: order %d < 0", order)
	}
	if bits != 1 && bits != 8 {
		return nil, errors.Wrapf(ErrInvalidParameter, "range coder: bits %d not in {1, 8}", bits)
	}
	rc := &RangeCoder{
		order:   order,
		bits:    bits,
		symbols: 1 << uint(bits),
		fsize:   1 << uint(bits*(order+1)),
		tsize:   1 << uint(bits*order),
	}
	rc.freqs = make([]uint32, rc.fsize)
	rc.totals = make([]uint32, rc.tsize)
	rc.Reset()
	return rc, nil
}

// Reset restores the coder's frequency model to its initial state:
// every symbol frequency is 1 and every context total is `symbols`.
func (rc *RangeCoder) Reset() {
	for i := range rc.freqs {
		rc.freqs[i] = 1
	}
	for i := range rc.totals {
		rc.totals[i] = uint32(rc.symbols)
	}
}

// rebuild halves every frequency of context c (floored to a minimum of
// 1) and recomputes its total.
// Called once a context's total has grown to saturate the 16-bit range
// the coder's arithmetic assumes.
func (rc *RangeCoder) rebuild(c int) {
	base := c << uint(rc.bits)
	var total uint32
	for i := 0; i < rc.symbols; i++ {
		rc.freqs[base+i] /= 2
		if rc.freqs[base+i] == 0 {
			rc.freqs[base+i] = 1
		}
		total += rc.freqs[base+i]
	}
	rc.totals[c] = total
}

// update applies the post-symbol frequency-increment and, if needed,
// rebuild step for context c, symbol s at freqs-table index idx.
func (rc *RangeCoder) update(idx, c, s int) {
	rc.freqs[idx+s] += frequencyIncrement
	rc.totals[c] += frequencyIncrement
	if rc.totals[c] >= totalsLimit {
		rc.rebuild(c)
	}
}

// Encode reads count symbols (of the coder's configured bit width) from
// in and returns the range-coded byte stream.
func (rc *RangeCoder) Encode(in *BitBuffer, count int) ([]byte, error) {
	out := make([]byte, 0, count/2+8)

	mask := rc.fsize - 1
	idx := 0

	var low, rng uint32 = 0, 0xFFFFFFFF

	for i := 0; i < count; i++ {
		symbol, err := in.ReadBits(rc.bits)
		if err != nil {
			return nil, errors.Wrapf(err, "qtc: range encode: symbol %d", i)
		}
		s := int(symbol)
		c := idx >> uint(rc.bits)

		var start uint32
		for j := 0; j < s; j++ {
			start += rc.freqs[idx+j]
		}
		size := rc.freqs[idx+s]
		total := rc.totals[c]

		rng /= total
		low += start * rng
		rng *= size

		for (low^(low+rng)) < rcTop || rng < rcBottom {
			if rng < rcBottom && (low^(low+rng)) >= rcTop {
				rng = (-low) & (rcBottom - 1)
			}
			out = append(out, byte(low>>24))
			low <<= 8
			rng <<= 8
		}

		rc.update(idx, c, s)
		idx = ((idx + s) << uint(rc.bits)) & mask
	}

	for i := 0; i < 4; i++ {
		out = append(out, byte(low>>24))
		low <<= 8
	}

	return out, nil
}

// Decode range-decodes count symbols read from src and returns them as a
// BitBuffer of the coder's configured bit width. Decode reads exactly as
// many coded bytes as the matching Encode call wrote for the same count
// and initial model state, and no more: it is self-terminating on count,
// so callers needn't frame the coded payload's byte length on the wire,
// only the original symbol count (see container/qticontainer, which
// stores this as the stream's bit length). Decode returns ErrTruncated if
// src is exhausted before the declared number of coded bytes have been
// consumed, and ErrDecodeError if the frequency-table search for a symbol
// runs off the end of the table (model mismatch or corruption).
func (rc *RangeCoder) Decode(src io.Reader, count int) (*BitBuffer, error) {
	out := NewBitBuffer()

	mask := rc.fsize - 1
	idx := 0

	var low, rng uint32 = 0, 0xFFFFFFFF
	var code uint32

	nextByte := func() (byte, error) {
		var b [1]byte
		if _, err := io.ReadFull(src, b[:]); err != nil {
			return 0, errors.Wrap(ErrTruncated, "qtc: range decode: input exhausted")
		}
		return b[0], nil
	}

	for i := 0; i < 4; i++ {
		b, err := nextByte()
		if err != nil {
			return nil, err
		}
		code = (code << 8) | uint32(b)
	}

	for i := 0; i < count; i++ {
		c := idx >> uint(rc.bits)
		total := rc.totals[c]

		value := int((code - low) / (rng / total))

		s := 0
		v := value
		for v >= 0 && s < rc.symbols {
			v -= int(rc.freqs[idx+s])
			s++
		}
		if v >= 0 {
			return nil, errors.Wrapf(ErrDecodeError, "qtc: range decode: symbol %d", i)
		}
		symbol := s - 1

		var start uint32
		for j := 0; j < symbol; j++ {
			start += rc.freqs[idx+j]
		}
		size := rc.freqs[idx+symbol]

		if err := out.AppendBits(uint32(symbol), rc.bits); err != nil {
			return nil, errors.Wrap(err, "qtc: range decode: append symbol")
		}

		rng /= total
		low += start * rng
		rng *= size

		for (low^(low+rng)) < rcTop || rng < rcBottom {
			if rng < rcBottom && (low^(low+rng)) >= rcTop {
				rng = (-low) & (rcBottom - 1)
			}
			b, err := nextByte()
			if err != nil {
				return nil, err
			}
			code = (code << 8) | uint32(b)
			low <<= 8
			rng <<= 8
		}

		rc.update(idx, c, symbol)
		idx = ((idx + symbol) << uint(rc.bits)) & mask
	}

	return out, nil
}
