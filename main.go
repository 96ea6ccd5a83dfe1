package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"fiber-planner/planner"
)

// loadInitialGrid restores the saved grid when one exists, otherwise starts
// from an empty canvas.
func loadInitialGrid(cfg Config) (*planner.Grid, error) {
	if cfg.GridFile != "" {
		grid, err := LoadGrid(cfg.GridFile)
		if err == nil {
			if grid.Rows() != cfg.CanvasHeight/cfg.CellSize || grid.Cols() != cfg.CanvasWidth/cfg.CellSize {
				log.Printf("⚠️  Saved grid is %dx%d, canvas config is %dx%d cells\n",
					grid.Rows(), grid.Cols(), cfg.CanvasHeight/cfg.CellSize, cfg.CanvasWidth/cfg.CellSize)
			}
			return grid, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		log.Println("ℹ️  No existing grid found (this is normal on first run)")
	}
	return planner.NewCanvasGrid(cfg.CanvasWidth, cfg.CanvasHeight, cfg.CellSize)
}

func main() {
	configPath := flag.String("config", "fiber-planner.toml", "path to the TOML config file")
	flag.Parse()

	log.Println("========================================")
	log.Println("🚀 Fiber Route Planner Server (grid A*)")
	log.Println("========================================")

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	grid, err := loadInitialGrid(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.ObstaclesDir != "" {
		obs, err := LoadObstacleFiles(cfg.ObstaclesDir)
		if err != nil {
			log.Fatal(err)
		}
		blocked, err := Rasterize(grid, obs, cfg.CellSize)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("✅ Rasterised %d obstacles, %d new cells blocked\n", obs.Len(), blocked)
	}

	log.Printf("   Grid: %dx%d cells of %dpx, %d blocked\n",
		grid.Rows(), grid.Cols(), cfg.CellSize, grid.BlockedCount())
	if cfg.MaxExpansions > 0 {
		log.Printf("   Search limited to %d expansions\n", cfg.MaxExpansions)
	}
	log.Println("")

	if os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	session := NewSession(grid, cfg.CellSize, cfg.MaxExpansions)
	router := NewRouter(NewServer(session, cfg.GridFile), cfg.AllowOrigin)

	log.Printf("Server starting on %s\n", cfg.Addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  GET  /health      - Check server status")
	log.Println("  POST /grid        - Reset the grid")
	log.Println("  POST /walls       - Draw a wall line")
	log.Println("  POST /obstacles   - Rasterise a GeoJSON FeatureCollection")
	log.Println("  POST /endpoints   - Place the start and end fiber")
	log.Println("  POST /route       - Compute a route (?format=geojson)")
	log.Println("  POST /routes      - Compute one route per policy")
	log.Println("  POST /save        - Save the grid")
	log.Println("")
	log.Printf("CORS enabled for %s\n", cfg.AllowOrigin)
	log.Println("========================================")
	log.Println("")

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
