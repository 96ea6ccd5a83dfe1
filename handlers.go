package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"fiber-planner/planner"
)

// Server holds the handler dependencies
type Server struct {
	session  *Session
	gridFile string
}

func NewServer(session *Session, gridFile string) *Server {
	return &Server{session: session, gridFile: gridFile}
}

// PixelPoint is a canvas position in pixels
type PixelPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type GridRequest struct {
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Width  int      `json:"width"`  // canvas pixels, used when rows/cols are not given
	Height int      `json:"height"` // canvas pixels
	Cells  []string `json:"cells,omitempty"`
}

type WallRequest struct {
	From     *PixelPoint   `json:"from"`
	To       *PixelPoint   `json:"to"`
	FromCell *planner.Cell `json:"fromCell"`
	ToCell   *planner.Cell `json:"toCell"`
}

type EndpointsRequest struct {
	Start      *planner.Cell `json:"start"`
	End        *planner.Cell `json:"end"`
	StartPoint *PixelPoint   `json:"startPoint"`
	EndPoint   *PixelPoint   `json:"endPoint"`
}

type RouteRequest struct {
	Policy string        `json:"policy"`
	Start  *planner.Cell `json:"start,omitempty"` // both or neither; overrides the session endpoints
	End    *planner.Cell `json:"end,omitempty"`
}

type RouteResponse struct {
	Path         []planner.Cell `json:"path"`
	Waypoints    []planner.Cell `json:"waypoints,omitempty"`
	Success      bool           `json:"success"`
	Message      string         `json:"message,omitempty"`
	Policy       string         `json:"policy"`
	Length       int            `json:"length"` // moves
	Expanded     int            `json:"expanded"`
	Truncated    bool           `json:"truncated,omitempty"`
	WallContacts int            `json:"wallContacts"`
}

type RoutesRequest struct {
	Policies []string `json:"policies"`
}

type SaveRequest struct {
	Filename string `json:"filename"`
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowOrigin)
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// NewRouter registers every endpoint on a fresh gin engine
func NewRouter(s *Server, allowOrigin string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), corsMiddleware(allowOrigin))

	router.GET("/health", s.healthHandler)
	router.POST("/grid", s.gridHandler)
	router.POST("/walls", s.wallHandler)
	router.POST("/obstacles", s.obstaclesHandler)
	router.POST("/endpoints", s.endpointsHandler)
	router.POST("/route", s.routeHandler)
	router.POST("/routes", s.routesHandler)
	router.POST("/save", s.saveHandler)

	return router
}

// statusFor maps planner and session errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrInvalidEndpoint):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrEndpointsNotSet):
		return http.StatusConflict
	case errors.Is(err, planner.ErrOutOfBounds), errors.Is(err, planner.ErrUnknownPolicy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondWithError(c *gin.Context, status int, err error) {
	log.Printf("❌ %v\n", err)
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(c *gin.Context) {
	st := s.session.Status()

	status := "ready"
	if !st.EndpointsSet {
		status = "waiting for endpoints"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"rows":         st.Rows,
		"cols":         st.Cols,
		"blocked":      st.Blocked,
		"cellSize":     s.session.CellSize(),
		"endpointsSet": st.EndpointsSet,
	})
}

// POST /grid - Replace the grid
func (s *Server) gridHandler(c *gin.Context) {
	log.Println("========================================")
	log.Println("🗺️  New grid request received")

	var req GridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var (
		grid *planner.Grid
		err  error
	)
	switch {
	case len(req.Cells) > 0:
		grid, err = planner.ParseGrid(req.Cells)
	case req.Rows > 0 || req.Cols > 0:
		grid, err = planner.NewGrid(req.Rows, req.Cols)
	default:
		grid, err = planner.NewCanvasGrid(req.Width, req.Height, s.session.CellSize())
	}
	if err != nil {
		respondWithError(c, http.StatusBadRequest, err)
		return
	}

	s.session.Reset(grid)

	log.Printf("✅ Grid reset to %dx%d (%d blocked)\n", grid.Rows(), grid.Cols(), grid.BlockedCount())
	log.Println("========================================")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"rows":    grid.Rows(),
		"cols":    grid.Cols(),
		"blocked": grid.BlockedCount(),
	})
}

// POST /walls - Draw a wall line
func (s *Server) wallHandler(c *gin.Context) {
	var req WallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	var (
		blocked int
		err     error
	)
	switch {
	case req.FromCell != nil && req.ToCell != nil:
		blocked, err = s.session.AddWall(*req.FromCell, *req.ToCell)
	case req.From != nil && req.To != nil:
		blocked, err = s.session.AddWallPixels(req.From.X, req.From.Y, req.To.X, req.To.Y)
	default:
		respondWithError(c, http.StatusBadRequest, errors.New("wall needs from/to points or fromCell/toCell"))
		return
	}
	if err != nil {
		respondWithError(c, statusFor(err), err)
		return
	}

	log.Printf("🧱 Wall added, %d cells blocked\n", blocked)
	c.JSON(http.StatusOK, gin.H{"success": true, "blocked": blocked})
}

// POST /obstacles - Rasterise a GeoJSON FeatureCollection onto the grid
func (s *Server) obstaclesHandler(c *gin.Context) {
	log.Println("========================================")
	log.Println("🧱 Obstacles request received")

	data, err := c.GetRawData()
	if err != nil {
		respondWithError(c, http.StatusBadRequest, err)
		return
	}

	obs, err := ParseObstacles(data)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, err)
		return
	}

	log.Printf("   Polygons: %d, lines: %d, points: %d\n", len(obs.Polygons), len(obs.Lines), len(obs.Points))

	blocked, err := s.session.ApplyObstacles(obs)
	if err != nil {
		respondWithError(c, statusFor(err), err)
		return
	}

	log.Printf("✅ Obstacles applied, %d cells blocked\n", blocked)
	log.Println("========================================")

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"geometries": obs.Len(),
		"blocked":    blocked,
	})
}

// POST /endpoints - Place the start and end fiber
func (s *Server) endpointsHandler(c *gin.Context) {
	var req EndpointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	start, ok := pickCell(req.Start, req.StartPoint, s.session.CellSize())
	if !ok {
		respondWithError(c, http.StatusBadRequest, errors.New("missing start"))
		return
	}
	end, ok := pickCell(req.End, req.EndPoint, s.session.CellSize())
	if !ok {
		respondWithError(c, http.StatusBadRequest, errors.New("missing end"))
		return
	}

	if err := s.session.SetEndpoints(start, end); err != nil {
		respondWithError(c, statusFor(err), err)
		return
	}

	log.Printf("📍 Endpoints set: start %v, end %v\n", start, end)
	c.JSON(http.StatusOK, gin.H{"success": true, "start": start, "end": end})
}

func pickCell(cell *planner.Cell, point *PixelPoint, cellSize int) (planner.Cell, bool) {
	if cell != nil {
		return *cell, true
	}
	if point != nil {
		return planner.CellAt(point.X, point.Y, cellSize), true
	}
	return planner.Cell{}, false
}

// POST /route - Plan one route
func (s *Server) routeHandler(c *gin.Context) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Policy == "" {
		req.Policy = planner.PolicyShortest
	}
	if (req.Start == nil) != (req.End == nil) {
		respondWithError(c, http.StatusBadRequest, errors.New("start and end must be given together"))
		log.Println("========================================")
		return
	}

	var (
		plan RoutePlan
		err  error
	)
	if req.Start != nil && req.End != nil {
		plan, err = s.session.PlanBetween(req.Policy, *req.Start, *req.End)
	} else {
		plan, err = s.session.Plan(req.Policy)
	}
	if err != nil {
		respondWithError(c, statusFor(err), err)
		log.Println("========================================")
		return
	}

	logPlan(plan)
	log.Println("========================================")

	if c.Query("format") == "geojson" && plan.Result.Found {
		c.JSON(http.StatusOK, routeFeatureCollection(plan, s.session.CellSize()))
		return
	}
	c.JSON(http.StatusOK, newRouteResponse(plan))
}

// POST /routes - Plan every requested policy concurrently
func (s *Server) routesHandler(c *gin.Context) {
	log.Println("========================================")
	log.Println("📍 Multi-policy route request received")

	var req RoutesRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	plans, err := s.session.PlanAll(c.Request.Context(), req.Policies)
	if err != nil {
		respondWithError(c, statusFor(err), err)
		log.Println("========================================")
		return
	}

	routes := make(map[string]RouteResponse, len(plans))
	for name, plan := range plans {
		logPlan(plan)
		routes[name] = newRouteResponse(plan)
	}
	log.Println("========================================")

	c.JSON(http.StatusOK, gin.H{"success": true, "routes": routes})
}

// POST /save - Write the grid snapshot
func (s *Server) saveHandler(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	filename := req.Filename
	if filename == "" {
		filename = s.gridFile
	}
	if filename == "" {
		respondWithError(c, http.StatusBadRequest, errors.New("no filename given and no grid_file configured"))
		return
	}

	n, err := SaveGrid(s.session.Snapshot(), filename)
	if err != nil {
		respondWithError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "filename": filename, "bytes": n})
}

func newRouteResponse(plan RoutePlan) RouteResponse {
	resp := RouteResponse{
		Path:         plan.Result.Path,
		Waypoints:    plan.Waypoints,
		Success:      plan.Result.Found,
		Policy:       plan.Policy,
		Length:       plan.Result.Path.Edges(),
		Expanded:     plan.Result.Expanded,
		Truncated:    plan.Result.Truncated,
		WallContacts: plan.WallContacts,
	}
	switch {
	case plan.Result.Truncated:
		resp.Message = "Search stopped after the expansion limit without reaching the end fiber"
	case !plan.Result.Found:
		resp.Message = "No route found between start and end fiber"
	}
	return resp
}

func logPlan(plan RoutePlan) {
	log.Printf("   Policy: %s, start %v, end %v\n", plan.Policy, plan.Start, plan.End)
	if !plan.Result.Found {
		log.Printf("❌ No route found (%d cells expanded)\n", plan.Result.Expanded)
		return
	}
	log.Printf("✅ Route found: %d cells, %d waypoints, %d along walls\n",
		plan.Result.Path.Len(), len(plan.Waypoints), plan.WallContacts)
	log.Printf("   Expanded %d cells\n", plan.Result.Expanded)
}

// routeFeatureCollection renders the route as a LineString through the cell
// centres, in canvas pixels.
func routeFeatureCollection(plan RoutePlan, cellSize int) *geojson.FeatureCollection {
	size := float64(cellSize)
	line := make(orb.LineString, 0, len(plan.Waypoints))
	for _, cell := range plan.Waypoints {
		line = append(line, orb.Point{
			float64(cell.Col)*size + size/2,
			float64(cell.Row)*size + size/2,
		})
	}

	feature := geojson.NewFeature(line)
	feature.Properties["policy"] = plan.Policy
	feature.Properties["length"] = plan.Result.Path.Edges()
	feature.Properties["wallContacts"] = plan.WallContacts

	fc := geojson.NewFeatureCollection()
	fc.Append(feature)
	return fc
}
