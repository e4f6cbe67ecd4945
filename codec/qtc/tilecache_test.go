/*
NAME
  tilecache_test.go

AUTHOR
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package qtc

import "testing"

func solidTile(n int, p Pixel) []Pixel {
	tile := make([]Pixel, n*n)
	for i := range tile {
		tile[i] = p
	}
	return tile
}

func TestTileCacheMissThenHit(t *testing.T) {
	tc, err := NewTileCache(8, 4)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	identity := Pixel{X: 0xFF, Y: 0xFF, Z: 0xFF, A: 0xFF}

	tile := solidTile(4, Pixel{X: 1, Y: 2, Z: 3, A: 4})
	buf := make([]Pixel, 16*16)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			buf[i*16+j] = tile[i*4+j]
		}
	}

	idx1 := tc.Write(buf, 0, 0, 4, 4, 16, identity)
	if idx1 != noEntry {
		t.Fatalf("first Write: got index %d, want miss (-1)", idx1)
	}
	if tc.Hits() != 0 {
		t.Errorf("Hits after miss: got %d, want 0", tc.Hits())
	}

	idx2 := tc.Write(buf, 0, 0, 4, 4, 16, identity)
	if idx2 == noEntry {
		t.Fatalf("second Write: got miss, want hit")
	}
	if tc.Hits() != 1 {
		t.Errorf("Hits after hit: got %d, want 1", tc.Hits())
	}

	got, err := tc.Tile(idx2)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}
	if len(got) != len(tile) {
		t.Fatalf("Tile length: got %d, want %d", len(got), len(tile))
	}
	for i := range tile {
		if got[i] != tile[i] {
			t.Errorf("pixel %d: got %v, want %v", i, got[i], tile[i])
		}
	}
}

func TestTileCacheFIFOEvictionUnlinks(t *testing.T) {
	const size = 4
	tc, err := NewTileCache(size, 2)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	identity := Pixel{X: 0xFF, Y: 0xFF, Z: 0xFF, A: 0xFF}

	stride := 2
	buf := func(v byte) []Pixel {
		return solidTile(2, Pixel{X: v, Y: v, Z: v, A: v})
	}

	var firstIdx int
	for i := 0; i < size; i++ {
		idx := tc.Write(buf(byte(i)), 0, 0, 2, 2, stride, identity)
		if idx != noEntry {
			t.Fatalf("Write %d: got hit %d, want miss", i, idx)
		}
		if i == 0 {
			firstIdx = tc.cursor
		}
	}

	// Cache is now full with tiles 0..size-1. Writing one more distinct
	// tile must evict the oldest (tile 0's slot) via FIFO.
	idx := tc.Write(buf(byte(size)), 0, 0, 2, 2, stride, identity)
	if idx != noEntry {
		t.Fatalf("eviction Write: got hit %d, want miss", idx)
	}
	if tc.cursor != firstIdx {
		t.Errorf("FIFO cursor: got %d, want %d (wrapped back to first slot)", tc.cursor, firstIdx)
	}

	// Tile 0's content must no longer be reachable via lookup: a Write of
	// the same content now misses again rather than hitting a stale
	// chain entry.
	idx = tc.Write(buf(0), 0, 0, 2, 2, stride, identity)
	if idx != noEntry {
		t.Errorf("Write of evicted tile 0: got hit %d, want miss (evicted)", idx)
	}
}

func TestTileCacheMaskApplied(t *testing.T) {
	tc, err := NewTileCache(4, 2)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	mask := channelMask(4) // clears low 4 bits

	a := solidTile(2, Pixel{X: 0x10, Y: 0x10, Z: 0x10, A: 0x10})
	b := solidTile(2, Pixel{X: 0x1F, Y: 0x1F, Z: 0x1F, A: 0x1F}) // masks to the same value as a

	idxA := tc.Write(a, 0, 0, 2, 2, 2, mask)
	if idxA != noEntry {
		t.Fatalf("Write a: got hit, want miss")
	}
	idxB := tc.Write(b, 0, 0, 2, 2, 2, mask)
	if idxB == noEntry {
		t.Errorf("Write b: got miss, want hit (masks to identical content as a)")
	}
}

func TestTileCacheInstallMirrorsWrite(t *testing.T) {
	tc, err := NewTileCache(4, 2)
	if err != nil {
		t.Fatalf("NewTileCache: %v", err)
	}
	tile := solidTile(2, Pixel{X: 7, Y: 7, Z: 7, A: 7})
	idx := tc.Install(tile)

	got, err := tc.Tile(idx)
	if err != nil {
		t.Fatalf("Tile: %v", err)
	}
	for i := range tile {
		if got[i] != tile[i] {
			t.Errorf("pixel %d: got %v, want %v", i, got[i], tile[i])
		}
	}

	// A subsequent Write of identical masked content should now hit the
	// installed slot.
	buf := make([]Pixel, 2*2)
	copy(buf, tile)
	identity := Pixel{X: 0xFF, Y: 0xFF, Z: 0xFF, A: 0xFF}
	hit := tc.Write(buf, 0, 0, 2, 2, 2, identity)
	if hit != idx {
		t.Errorf("Write after Install: got index %d, want %d", hit, idx)
	}
}

func TestTileCacheIndexBits(t *testing.T) {
	cases := []struct {
		size int
		want int
	}{
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{256, 8},
	}
	for _, tc := range cases {
		c, err := NewTileCache(tc.size, 2)
		if err != nil {
			t.Fatalf("NewTileCache(%d): %v", tc.size, err)
		}
		if got := c.IndexBits(); got != tc.want {
			t.Errorf("IndexBits for size %d: got %d, want %d", tc.size, got, tc.want)
		}
	}
}
