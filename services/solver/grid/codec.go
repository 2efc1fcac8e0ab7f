// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package grid

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Binary layout
//
//	header : "ARCG" (4 bytes) | version (1 byte)
//	grid*  : rows u16 LE | cols u16 LE | packed u8 | payload
//
// When packed is 1 every cell is below 16 and two cells share a byte, low
// nibble first. Otherwise each cell takes one byte. Cells are row-major.
// Grids follow each other until end of stream.

const (
	// CodecVersion is the only version Decode accepts.
	CodecVersion byte = 1

	gridHeaderLen = 5

	// maxCodecDim is the largest row or column count a u16 header holds.
	maxCodecDim = 0xFFFF
)

var codecMagic = [4]byte{'A', 'R', 'C', 'G'}

var (
	// ErrCorrupt is returned for truncated or malformed binary data.
	ErrCorrupt = errors.New("corrupt grid data")

	// ErrBadMagic is returned when the stream does not start with the magic.
	ErrBadMagic = errors.New("not a grid stream")

	// ErrVersion is returned for an unsupported codec version.
	ErrVersion = errors.New("unsupported grid codec version")

	// ErrTooLarge is returned by Encode for a grid side above 65535.
	ErrTooLarge = errors.New("grid too large for the binary codec")
)

// Encode writes the stream header followed by every grid.
//
// Nothing is written when a grid has more than 65535 rows or columns.
func Encode(w io.Writer, grids ...Grid) error {
	for i, g := range grids {
		if g.rows > maxCodecDim || g.cols > maxCodecDim {
			return fmt.Errorf("grid %d is %dx%d: %w", i, g.rows, g.cols, ErrTooLarge)
		}
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(codecMagic[:]); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := bw.WriteByte(CodecVersion); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	for i, g := range grids {
		if _, err := bw.Write(appendGrid(nil, g)); err != nil {
			return fmt.Errorf("write grid %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// Decode reads a stream produced by Encode.
//
// Outputs:
//
//	[]Grid - Decoded grids in stream order.
//	error - ErrBadMagic, ErrVersion or ErrCorrupt (wrapped) on bad input,
//	        including a truncated payload or an unknown packing flag.
func Decode(r io.Reader) ([]Grid, error) {
	br := bufio.NewReader(r)
	var header [5]byte
	if _, err := io.ReadFull(br, header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", ErrCorrupt)
	}
	if !bytes.Equal(header[:4], codecMagic[:]) {
		return nil, ErrBadMagic
	}
	if header[4] != CodecVersion {
		return nil, fmt.Errorf("version %d: %w", header[4], ErrVersion)
	}

	var grids []Grid
	for {
		var gh [gridHeaderLen]byte
		n, err := io.ReadFull(br, gh[:])
		if err == io.EOF && n == 0 {
			return grids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("grid %d header: %w", len(grids), ErrCorrupt)
		}
		rows := int(binary.LittleEndian.Uint16(gh[0:2]))
		cols := int(binary.LittleEndian.Uint16(gh[2:4]))
		if gh[4] > 1 {
			return nil, fmt.Errorf("grid %d packing flag %d: %w", len(grids), gh[4], ErrCorrupt)
		}
		packed := gh[4] == 1
		if (rows == 0) != (cols == 0) {
			return nil, fmt.Errorf("grid %d is %dx%d: %w", len(grids), rows, cols, ErrCorrupt)
		}
		// The header is untrusted, so the payload buffer grows with the
		// bytes actually read instead of being sized from rows*cols.
		want := int64(payloadLen(rows*cols, packed))
		var payload bytes.Buffer
		if n, err := io.CopyN(&payload, br, want); err != nil || n != want {
			return nil, fmt.Errorf("grid %d payload: %w", len(grids), ErrCorrupt)
		}
		grids = append(grids, decodeCells(rows, cols, packed, payload.Bytes()))
	}
}

// MarshalGrids encodes grids into a byte slice.
func MarshalGrids(grids ...Grid) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, grids...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalGrids decodes a byte slice produced by MarshalGrids.
func UnmarshalGrids(data []byte) ([]Grid, error) {
	return Decode(bytes.NewReader(data))
}

// MarshalBinary encodes a single grid as a one-element stream.
func (g Grid) MarshalBinary() ([]byte, error) {
	return MarshalGrids(g)
}

// UnmarshalBinary decodes a one-element stream into g.
func (g *Grid) UnmarshalBinary(data []byte) error {
	grids, err := UnmarshalGrids(data)
	if err != nil {
		return err
	}
	if len(grids) != 1 {
		return fmt.Errorf("expected 1 grid, found %d: %w", len(grids), ErrCorrupt)
	}
	*g = grids[0]
	return nil
}

func appendGrid(dst []byte, g Grid) []byte {
	packed := true
	for _, v := range g.cells {
		if v >= 16 {
			packed = false
			break
		}
	}
	dst = binary.LittleEndian.AppendUint16(dst, uint16(g.rows))
	dst = binary.LittleEndian.AppendUint16(dst, uint16(g.cols))
	if !packed {
		dst = append(dst, 0)
		return append(dst, g.cells...)
	}
	dst = append(dst, 1)
	for i := 0; i < len(g.cells); i += 2 {
		b := g.cells[i] & 0x0F
		if i+1 < len(g.cells) {
			b |= g.cells[i+1] << 4
		}
		dst = append(dst, b)
	}
	return dst
}

func payloadLen(cells int, packed bool) int {
	if packed {
		return (cells + 1) / 2
	}
	return cells
}

func decodeCells(rows, cols int, packed bool, payload []byte) Grid {
	if rows == 0 {
		return Grid{}
	}
	cells := make([]uint8, rows*cols)
	if !packed {
		copy(cells, payload)
	} else {
		for i := range cells {
			b := payload[i/2]
			if i%2 == 0 {
				cells[i] = b & 0x0F
			} else {
				cells[i] = b >> 4
			}
		}
	}
	return Grid{rows: rows, cols: cols, cells: cells}
}
