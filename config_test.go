package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    func(Config) bool
		wantErr bool
	}{
		{
			name: "port",
			env:  map[string]string{"PORT": "9000"},
			want: func(c Config) bool { return c.Addr == ":9000" },
		},
		{
			name: "addr wins over port",
			env:  map[string]string{"PORT": "9000", "FIBER_PLANNER_ADDR": "127.0.0.1:7000"},
			want: func(c Config) bool { return c.Addr == "127.0.0.1:7000" },
		},
		{
			name: "empty grid file disables persistence",
			env:  map[string]string{"FIBER_PLANNER_GRID_FILE": ""},
			want: func(c Config) bool { return c.GridFile == "" },
		},
		{
			name: "obstacles dir",
			env:  map[string]string{"FIBER_PLANNER_OBSTACLES_DIR": "walls"},
			want: func(c Config) bool { return c.ObstaclesDir == "walls" },
		},
		{
			name: "max expansions",
			env:  map[string]string{"FIBER_PLANNER_MAX_EXPANSIONS": "500"},
			want: func(c Config) bool { return c.MaxExpansions == 500 },
		},
		{
			name:    "bad max expansions",
			env:     map[string]string{"FIBER_PLANNER_MAX_EXPANSIONS": "lots"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.applyEnv(fakeEnv(tt.env))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.want(cfg) {
				t.Errorf("unexpected config %+v", cfg)
			}
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fiber-planner.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FIBER_PLANNER_ADDR", "")

	path := writeConfig(t, `
addr = ":9090"
canvas_width = 400
canvas_height = 300
cell_size = 20
grid_file = "walls.json.br"
max_expansions = 1000
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.CanvasWidth != 400 || cfg.CanvasHeight != 300 || cfg.CellSize != 20 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.GridFile != "walls.json.br" || cfg.MaxExpansions != 1000 {
		t.Errorf("unexpected config %+v", cfg)
	}
	// unset keys keep their defaults
	if cfg.AllowOrigin != "*" {
		t.Errorf("AllowOrigin = %q, want *", cfg.AllowOrigin)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("FIBER_PLANNER_ADDR", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CellSize != 10 || cfg.CanvasWidth != 800 || cfg.CanvasHeight != 600 {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "colour = \"red\"\n", "failed to parse"},
		{"bad syntax", "cell_size = \n", "failed to parse"},
		{"zero cell size", "cell_size = 0\n", "cell_size"},
		{"canvas below one cell", "canvas_width = 5\n", "smaller than one"},
		{"negative cap", "max_expansions = -1\n", "max_expansions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
