package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the server settings. Values come from defaults, then the TOML
// file, then environment variables.
type Config struct {
	Addr          string `toml:"addr"`
	CanvasWidth   int    `toml:"canvas_width"`  // pixels
	CanvasHeight  int    `toml:"canvas_height"` // pixels
	CellSize      int    `toml:"cell_size"`     // pixels per grid cell
	GridFile      string `toml:"grid_file"`     // snapshot loaded on startup and written by /save
	ObstaclesDir  string `toml:"obstacles_dir"` // *.geojson rasterised on startup
	MaxExpansions int    `toml:"max_expansions"`
	AllowOrigin   string `toml:"allow_origin"`
}

// DefaultConfig is an 800x600 canvas with 10px cells, served on :8080
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		CanvasWidth:  800,
		CanvasHeight: 600,
		CellSize:     10,
		GridFile:     "grid.json",
		AllowOrigin:  "*",
	}
}

// LoadConfig reads the TOML file at path, if any, and applies environment
// overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Printf("ℹ️  No config file at %s, using defaults\n", path)
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
			if err := dec.Decode(&cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		c.Addr = ":" + port
	}
	if addr, ok := lookup("FIBER_PLANNER_ADDR"); ok && addr != "" {
		c.Addr = addr
	}
	if file, ok := lookup("FIBER_PLANNER_GRID_FILE"); ok {
		c.GridFile = file
	}
	if dir, ok := lookup("FIBER_PLANNER_OBSTACLES_DIR"); ok {
		c.ObstaclesDir = dir
	}
	if v, ok := lookup("FIBER_PLANNER_MAX_EXPANSIONS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FIBER_PLANNER_MAX_EXPANSIONS: %w", err)
		}
		c.MaxExpansions = n
	}
	return nil
}

// Validate checks that the canvas yields at least one cell
func (c Config) Validate() error {
	if c.CellSize <= 0 {
		return fmt.Errorf("cell_size must be positive, got %d", c.CellSize)
	}
	if c.CanvasWidth < c.CellSize || c.CanvasHeight < c.CellSize {
		return fmt.Errorf("canvas %dx%d is smaller than one %dpx cell", c.CanvasWidth, c.CanvasHeight, c.CellSize)
	}
	if c.MaxExpansions < 0 {
		return fmt.Errorf("max_expansions must not be negative, got %d", c.MaxExpansions)
	}
	return nil
}
