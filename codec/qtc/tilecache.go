/*
DESCRIPTION
  tilecache.go implements a bounded, content-addressed cache of recently
  emitted leaf tiles, used by the quadtree codec to emit a back-reference
  instead of re-coding identical tile contents. Lookup uses Fletcher-16
  hashed bucket chains with FIFO slot reuse, a direct port of
  tilecache.c's tilecache_write, except that the hashed chain-walk path
  is the live lookup path rather than the brute-force linear scan the
  original left enabled.

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

// bucketTableSize is the number of Fletcher-16 hash buckets; the hash is
// 16 bits wide so every value has exactly one bucket.
const bucketTableSize = 1 << 16

// noEntry is the sentinel used for "no entry"/"end of chain" in bucket
// heads and chain links.
const noEntry = -1

// tileEntry is one slot of the tile cache's fixed-size entry arena.
type tileEntry struct {
	present bool
	size    int
	hash    uint16
	next    int // index of the next entry in this hash bucket's chain, or noEntry
	data    []Pixel
}

// TileCache is a bounded, content-addressed cache of fixed-size pixel
// tiles. Tiles are looked up by a Fletcher-16 hash of their masked pixel
// data, with collisions resolved by a chained bucket table; on a miss the
// cache evicts its oldest entry (FIFO) to make room for the new tile.
type TileCache struct {
	blocksize int
	entries   []tileEntry
	buckets   []int // hash -> head entry index, or noEntry
	cursor    int   // next entry index to (possibly) evict on a miss

	numBlocks int
	hits      int

	scratch []Pixel
}

// NewTileCache returns a new TileCache holding up to size tiles. Buffers
// are sized for blocksize*blocksize pixels and grown when a larger tile
// is stored.
func NewTileCache(size, blocksize int) (*TileCache, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "tile cache: size %d <= 0", size)
	}
	if blocksize <= 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "tile cache: blocksize %d <= 0", blocksize)
	}
	tc := &TileCache{
		blocksize: blocksize,
		entries:   make([]tileEntry, size),
		buckets:   make([]int, bucketTableSize),
		scratch:   make([]Pixel, blocksize*blocksize),
	}
	tc.Reset()
	return tc, nil
}

// Reset empties the cache: every entry becomes absent, every bucket
// chain becomes empty, and the FIFO cursor restarts. Used on video key
// frames, where the cache must not reference tiles from before the key
// frame.
func (tc *TileCache) Reset() {
	tc.cursor = 0
	for i := range tc.entries {
		tc.entries[i].present = false
		tc.entries[i].next = noEntry
	}
	for i := range tc.buckets {
		tc.buckets[i] = noEntry
	}
}

// Size returns the number of slots in the cache's entry arena.
func (tc *TileCache) Size() int { return len(tc.entries) }

// fletcher16 computes a two-accumulator Fletcher-16 style checksum over
// the given pixel tile, each pixel contributing its four packed bytes.
// Both byte accumulators wrap modulo 256 (not the modulo 255 of the
// classic Fletcher-16).
func fletcher16(tile []Pixel) uint16 {
	var s1, s2 byte
	for _, p := range tile {
		for _, b := range [4]byte{p.X, p.Y, p.Z, p.A} {
			s1 += b
			s2 += s1
		}
	}
	return uint16(s2)<<8 | uint16(s1)
}

// Write looks up the w*h tile of pixels (from the given rect of a larger
// row-major pixel buffer of the given stride width) in the cache after
// applying mask to every channel. If a present entry with identical
// (size, masked pixel data) already exists, Write returns its index
// without modifying the cache. Otherwise the tile is installed into the
// next FIFO slot (evicting and unlinking whatever tile currently
// occupies that slot) and Write returns -1.
func (tc *TileCache) Write(pixels []Pixel, x0, y0, w, h, stride int, mask Pixel) int {
	tc.numBlocks++

	size := w * h
	if size > len(tc.scratch) {
		tc.scratch = make([]Pixel, size)
	}
	tile := tc.scratch[:size]
	j := 0
	for y := y0; y < y0+h; y++ {
		row := y*stride + x0
		for x := 0; x < w; x++ {
			tile[j] = pixels[row+x].Mask(mask)
			j++
		}
	}

	hash := fletcher16(tile)

	for i := tc.buckets[hash]; i != noEntry; i = tc.entries[i].next {
		e := &tc.entries[i]
		if e.present && e.size == size && pixelsEqual(e.data[:size], tile) {
			tc.hits++
			return i
		}
	}

	tc.cursor = (tc.cursor + 1) % len(tc.entries)
	idx := tc.cursor

	if tc.entries[idx].present {
		tc.unlink(idx)
	}

	if n := max(size, tc.blocksize*tc.blocksize); cap(tc.entries[idx].data) < n {
		tc.entries[idx].data = make([]Pixel, n)
	}
	data := tc.entries[idx].data[:size]
	copy(data, tile)

	tc.entries[idx] = tileEntry{
		present: true,
		size:    size,
		hash:    hash,
		next:    tc.buckets[hash],
		data:    tc.entries[idx].data,
	}
	tc.buckets[hash] = idx

	return noEntry
}

// unlink removes entry idx from its hash bucket's chain by walking the
// chain and stitching around it. It must be called before idx is reused
// for a new tile.
func (tc *TileCache) unlink(idx int) {
	hash := tc.entries[idx].hash
	head := tc.buckets[hash]
	if head == idx {
		tc.buckets[hash] = tc.entries[idx].next
		return
	}
	prev := head
	for prev != noEntry {
		next := tc.entries[prev].next
		if next == idx {
			tc.entries[prev].next = tc.entries[idx].next
			return
		}
		prev = next
	}
}

// Install writes a decoder-known tile directly into the cache's next
// FIFO slot without performing a lookup, mirroring the encoder's slot
// selection so that a cache index emitted by the encoder resolves to the
// same slot on the decode side. It returns the installed slot's index.
func (tc *TileCache) Install(tile []Pixel) int {
	tc.cursor = (tc.cursor + 1) % len(tc.entries)
	idx := tc.cursor

	if tc.entries[idx].present {
		tc.unlink(idx)
	}

	if n := max(len(tile), tc.blocksize*tc.blocksize); cap(tc.entries[idx].data) < n {
		tc.entries[idx].data = make([]Pixel, n)
	}
	data := tc.entries[idx].data[:len(tile)]
	copy(data, tile)

	hash := fletcher16(tile)
	tc.entries[idx] = tileEntry{
		present: true,
		size:    len(tile),
		hash:    hash,
		next:    tc.buckets[hash],
		data:    tc.entries[idx].data,
	}
	tc.buckets[hash] = idx

	return idx
}

// Tile returns the pixel data stored at cache index idx. It returns
// ErrInvalidIndex if idx is out of range or the slot is not present.
func (tc *TileCache) Tile(idx int) ([]Pixel, error) {
	if idx < 0 || idx >= len(tc.entries) || !tc.entries[idx].present {
		return nil, errors.Wrapf(ErrInvalidIndex, "tile cache: index %d", idx)
	}
	return tc.entries[idx].data[:tc.entries[idx].size], nil
}

// Hits returns the number of Write calls that resolved to an existing
// entry.
func (tc *TileCache) Hits() int { return tc.hits }

// IndexBits returns the number of bits required to address any slot in
// the cache, i.e. ceil(log2(size)), and at least 1.
func (tc *TileCache) IndexBits() int {
	n := len(tc.entries)
	bits := 0
	for (1 << uint(bits)) < n {
		bits++
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}

func pixelsEqual(a, b []Pixel) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
