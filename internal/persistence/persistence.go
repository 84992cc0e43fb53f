// Package persistence reads and writes circle lists as a small
// CSV-like tabular format, preserving insertion order.
package persistence

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/cwbudde/sediment/internal/raster"
)

var header = []string{"x", "y", "radius", "r", "g", "b"}

// Save writes circles to path as a headered CSV file, one row per
// circle in input order.
func Save(circles []raster.Circle, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return &raster.EncodeError{Path: path, Err: err}
	}
	defer f.Close()

	if err := Write(f, circles); err != nil {
		return &raster.EncodeError{Path: path, Err: err}
	}
	return nil
}

// Write encodes circles as CSV to w.
func Write(w io.Writer, circles []raster.Circle) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, c := range circles {
		row := []string{
			strconv.FormatUint(uint64(c.X), 10),
			strconv.FormatUint(uint64(c.Y), 10),
			strconv.FormatUint(uint64(c.Radius), 10),
			strconv.FormatUint(uint64(c.R), 10),
			strconv.FormatUint(uint64(c.G), 10),
			strconv.FormatUint(uint64(c.B), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load reads a circle list previously written by Save.
func Load(path string) ([]raster.Circle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &raster.DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	circles, err := Read(f)
	if err != nil {
		return nil, &raster.DecodeError{Path: path, Err: err}
	}
	return circles, nil
}

// Read decodes a circle list from r, in the order the rows appear.
func Read(r io.Reader) ([]raster.Circle, error) {
	cr := csv.NewReader(r)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("persistence: empty file, missing header")
	}

	got := rows[0]
	if len(got) != len(header) {
		return nil, fmt.Errorf("persistence: header has %d columns, want %d", len(got), len(header))
	}
	for i, name := range header {
		if got[i] != name {
			return nil, fmt.Errorf("persistence: header column %d is %q, want %q", i, got[i], name)
		}
	}

	circles := make([]raster.Circle, 0, len(rows)-1)
	for i, row := range rows[1:] {
		c, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("persistence: row %d: %w", i+1, err)
		}
		circles = append(circles, c)
	}
	return circles, nil
}

func parseRow(row []string) (raster.Circle, error) {
	if len(row) != 6 {
		return raster.Circle{}, fmt.Errorf("want 6 fields, got %d", len(row))
	}
	x, err := strconv.ParseUint(row[0], 10, 32)
	if err != nil {
		return raster.Circle{}, fmt.Errorf("x: %w", err)
	}
	y, err := strconv.ParseUint(row[1], 10, 32)
	if err != nil {
		return raster.Circle{}, fmt.Errorf("y: %w", err)
	}
	radius, err := strconv.ParseUint(row[2], 10, 32)
	if err != nil {
		return raster.Circle{}, fmt.Errorf("radius: %w", err)
	}
	r, err := strconv.ParseUint(row[3], 10, 8)
	if err != nil {
		return raster.Circle{}, fmt.Errorf("r: %w", err)
	}
	g, err := strconv.ParseUint(row[4], 10, 8)
	if err != nil {
		return raster.Circle{}, fmt.Errorf("g: %w", err)
	}
	b, err := strconv.ParseUint(row[5], 10, 8)
	if err != nil {
		return raster.Circle{}, fmt.Errorf("b: %w", err)
	}
	return raster.Circle{
		X: uint32(x), Y: uint32(y), Radius: uint32(radius),
		R: uint8(r), G: uint8(g), B: uint8(b),
	}, nil
}
