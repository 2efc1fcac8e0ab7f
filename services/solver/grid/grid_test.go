// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package grid

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFromRows_Ragged verifies ragged input is rejected.
func TestFromRows_Ragged(t *testing.T) {
	_, err := FromRows([][]int{{1, 2}, {3}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRagged))
}

// TestFromRows_CellRange verifies negative or oversized cells are rejected.
func TestFromRows_CellRange(t *testing.T) {
	_, err := FromRows([][]int{{1, -1}})
	assert.ErrorIs(t, err, ErrCellRange)

	_, err = FromRows([][]int{{256}})
	assert.ErrorIs(t, err, ErrCellRange)
}

// TestFromRows_CopiesInput verifies later mutation of the input does not leak.
func TestFromRows_CopiesInput(t *testing.T) {
	rows := [][]int{{1, 2}, {3, 4}}
	g := MustFromRows(rows)
	rows[0][0] = 9

	assert.Equal(t, uint8(1), g.At(0, 0))
}

// TestEmptyGrids verifies every empty construction compares equal.
func TestEmptyGrids(t *testing.T) {
	a := Empty()
	b := MustFromRows(nil)
	c := MustFromRows([][]int{{}})
	d := New(0, 5, 3)

	assert.True(t, a.Equal(b))
	assert.True(t, a.Equal(c))
	assert.True(t, a.Equal(d))
	assert.True(t, a.IsEmpty())
	assert.Equal(t, "<empty>", a.String())
}

// TestGrid_Accessors covers At, Row, ToRows and String.
func TestGrid_Accessors(t *testing.T) {
	g := MustFromRows([][]int{{1, 2, 3}, {4, 5, 6}})

	r, c := g.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, uint8(6), g.At(1, 2))
	assert.Equal(t, uint8(0), g.At(5, 5), "out of bounds reads are zero")
	assert.Equal(t, []uint8{4, 5, 6}, g.Row(1))
	assert.Nil(t, g.Row(2))
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}}, g.ToRows())
	assert.Equal(t, "1 2 3\n4 5 6", g.String())
}

// TestGrid_Colors verifies colour listing and ordering by count.
func TestGrid_Colors(t *testing.T) {
	g := MustFromRows([][]int{{0, 3, 3}, {1, 3, 0}})

	assert.Equal(t, []uint8{0, 1, 3}, g.Colors())
	assert.Equal(t, []uint8{1, 3}, g.NonZeroColors())
	assert.Equal(t, []uint8{3, 0, 1}, g.SortedColorsByCount())
	assert.Equal(t, 4, g.CountNonZero())
}

// TestBuilder verifies builder writes and that Build freezes.
func TestBuilder(t *testing.T) {
	b := NewBuilder(2, 2)
	b.Set(0, 1, 7)
	b.Set(5, 5, 9)
	g := b.Build()

	assert.Equal(t, [][]int{{0, 7}, {0, 0}}, g.ToRows())
	assert.Equal(t, 0, b.Rows(), "builder is reset after Build")

	derived := BuilderFrom(g)
	derived.Set(0, 0, 1)
	assert.Equal(t, uint8(0), g.At(0, 0), "BuilderFrom must copy")
}

// TestObjects verifies 4-connected same-colour components in scan order.
func TestObjects(t *testing.T) {
	g := MustFromRows([][]int{
		{1, 1, 0, 2},
		{0, 1, 0, 2},
		{3, 0, 1, 0},
	})

	objs := g.Objects()
	require.Len(t, objs, 4)
	assert.Equal(t, uint8(1), objs[0].Color)
	assert.Equal(t, 3, objs[0].Area())
	assert.Equal(t, uint8(2), objs[1].Color)
	assert.Equal(t, 2, objs[1].Height())
	assert.Equal(t, uint8(3), objs[2].Color)
	assert.Equal(t, uint8(1), objs[3].Color, "diagonal cells are separate objects")
}

// TestBoundingBoxAndSubGrid verifies non-zero bounds and window clipping.
func TestBoundingBoxAndSubGrid(t *testing.T) {
	g := MustFromRows([][]int{
		{0, 0, 0},
		{0, 5, 6},
		{0, 0, 7},
	})
	minR, minC, maxR, maxC, ok := g.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, []int{1, 1, 2, 2}, []int{minR, minC, maxR, maxC})

	assert.Equal(t, [][]int{{5, 6}, {0, 7}}, g.SubGrid(1, 1, 5, 5).ToRows())
	assert.True(t, g.SubGrid(10, 10, 2, 2).IsEmpty())

	_, _, _, _, ok = New(2, 2, 0).BoundingBox()
	assert.False(t, ok)
}

// TestSymmetryAndPeriod verifies mirror flags and period detection.
func TestSymmetryAndPeriod(t *testing.T) {
	g := MustFromRows([][]int{
		{1, 2, 1, 2},
		{3, 4, 3, 4},
		{1, 2, 1, 2},
	})
	assert.False(t, g.SymmetricH())
	assert.True(t, g.SymmetricV())
	assert.Equal(t, 2, g.PeriodH())
	assert.Equal(t, 0, g.PeriodV())

	mirror := MustFromRows([][]int{{1, 2, 1}})
	assert.True(t, mirror.SymmetricH())
}

// TestFingerprint verifies equal grids share fingerprints and shape packing.
func TestFingerprint(t *testing.T) {
	a := MustFromRows([][]int{{1, 2}, {3, 4}})
	b := MustFromRows([][]int{{1, 2}, {3, 4}})
	c := MustFromRows([][]int{{1, 2, 3, 4}})

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Equal(t, uint32(2<<16|2), a.Fingerprint().Shape)

	set := NewFingerprintSet(4)
	assert.True(t, set.InsertGrid(a))
	assert.False(t, set.InsertGrid(b))
	assert.True(t, set.InsertGrid(c))
	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(c.Fingerprint()))
}

// TestCodec_RoundTrip covers packed, unpacked, odd-length and empty grids.
func TestCodec_RoundTrip(t *testing.T) {
	grids := []Grid{
		MustFromRows([][]int{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}),
		MustFromRows([][]int{{200, 3}}),
		Empty(),
		MustFromRows([][]int{{15}}),
	}

	data, err := MarshalGrids(grids...)
	require.NoError(t, err)
	assert.Equal(t, []byte("ARCG"), data[:4])
	assert.Equal(t, CodecVersion, data[4])

	decoded, err := UnmarshalGrids(data)
	require.NoError(t, err)
	require.Len(t, decoded, len(grids))
	for i := range grids {
		assert.True(t, grids[i].Equal(decoded[i]), "grid %d differs", i)
	}
}

// TestCodec_PackedLayout verifies nibble order: low nibble first.
func TestCodec_PackedLayout(t *testing.T) {
	data, err := MarshalGrids(MustFromRows([][]int{{1, 2, 3}}))
	require.NoError(t, err)

	body := data[5:]
	assert.Equal(t, []byte{1, 0, 3, 0, 1, 0x21, 0x03}, body)
}

// TestCodec_Corrupt verifies truncated and foreign data are rejected.
func TestCodec_Corrupt(t *testing.T) {
	data, err := MarshalGrids(MustFromRows([][]int{{1, 2}, {3, 4}}))
	require.NoError(t, err)

	_, err = UnmarshalGrids(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = UnmarshalGrids(data[:3])
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = UnmarshalGrids([]byte("NOPE\x01"))
	assert.ErrorIs(t, err, ErrBadMagic)

	bad := bytes.Clone(data)
	bad[4] = 9
	_, err = UnmarshalGrids(bad)
	assert.ErrorIs(t, err, ErrVersion)
}

// TestCodec_HeaderLimits verifies oversized grids and hostile headers are
// rejected without large allocations.
func TestCodec_HeaderLimits(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, New(1, 0x10000, 1))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.Zero(t, buf.Len(), "nothing written")

	_, err = MarshalGrids(New(0xFFFF, 1, 2))
	assert.NoError(t, err)

	stream := func(grid ...byte) []byte {
		return append([]byte("ARCG\x01"), grid...)
	}

	// 65535x65535 unpacked claims about 4 GiB but carries three bytes.
	_, err = UnmarshalGrids(stream(0xFF, 0xFF, 0xFF, 0xFF, 0, 1, 2, 3))
	assert.ErrorIs(t, err, ErrCorrupt)

	tests := []struct {
		name string
		flag byte
		want error
	}{
		{"unpacked", 0, nil},
		{"packed", 1, nil},
		{"unknown flag", 2, ErrCorrupt},
		{"high flag", 0xFF, ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			grids, err := UnmarshalGrids(stream(1, 0, 1, 0, tt.flag, 7))
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				return
			}
			require.NoError(t, err)
			require.Len(t, grids, 1)
			assert.Equal(t, uint8(7), grids[0].At(0, 0))
		})
	}
}

// TestGrid_BinaryMarshaler verifies the single grid helpers.
func TestGrid_BinaryMarshaler(t *testing.T) {
	g := MustFromRows([][]int{{0, 9}, {9, 0}})
	data, err := g.MarshalBinary()
	require.NoError(t, err)

	var out Grid
	require.NoError(t, out.UnmarshalBinary(data))
	assert.True(t, g.Equal(out))
}
