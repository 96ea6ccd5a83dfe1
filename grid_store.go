package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/andybalholm/brotli"

	"fiber-planner/planner"
)

// gridSnapshot is the on-disk form of a grid
type gridSnapshot struct {
	Rows  int      `json:"rows"`
	Cols  int      `json:"cols"`
	Cells []string `json:"cells"` // one string per row, '.' free, '#' blocked
}

func isBrotli(filename string) bool {
	return strings.HasSuffix(filename, ".br")
}

// SaveGrid serializes the grid to a JSON file, brotli-compressed when the
// name ends in ".br". Returns the number of bytes written.
func SaveGrid(g *planner.Grid, filename string) (int, error) {
	log.Printf("💾 Saving grid to %s...\n", filename)

	data, err := json.MarshalIndent(gridSnapshot{
		Rows:  g.Rows(),
		Cols:  g.Cols(),
		Cells: g.Lines(),
	}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal grid: %w", err)
	}

	if isBrotli(filename) {
		var buf bytes.Buffer
		w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
		if _, err := w.Write(data); err != nil {
			return 0, fmt.Errorf("failed to compress grid: %w", err)
		}
		if err := w.Close(); err != nil {
			return 0, fmt.Errorf("failed to compress grid: %w", err)
		}
		data = buf.Bytes()
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	log.Printf("   ✅ Grid saved (%d bytes)\n", len(data))
	return len(data), nil
}

// LoadGrid deserializes a grid written by SaveGrid
func LoadGrid(filename string) (*planner.Grid, error) {
	log.Printf("📂 Loading grid from %s...\n", filename)

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if isBrotli(filename) {
		r = brotli.NewReader(f)
	}

	var snap gridSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal grid: %w", err)
	}

	g, err := planner.ParseGrid(snap.Cells)
	if err != nil {
		return nil, fmt.Errorf("invalid grid in %s: %w", filename, err)
	}
	if g.Rows() != snap.Rows || g.Cols() != snap.Cols {
		return nil, fmt.Errorf("grid in %s is %dx%d, header says %dx%d",
			filename, g.Rows(), g.Cols(), snap.Rows, snap.Cols)
	}

	log.Printf("   ✅ Grid loaded: %dx%d, %d blocked\n", g.Rows(), g.Cols(), g.BlockedCount())
	return g, nil
}
