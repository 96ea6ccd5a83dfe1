package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"fiber-planner/planner"
)

// ErrEndpointsNotSet is returned when planning before both fiber ends are placed
var ErrEndpointsNotSet = errors.New("start and end fiber are not set")

// RoutePlan is the result of planning one route
type RoutePlan struct {
	Policy       string
	Start, End   planner.Cell
	Result       planner.Result
	Waypoints    planner.Path
	WallContacts int // path cells running alongside a wall
}

// Session owns the occupancy grid and the fiber endpoints. Walls and
// endpoints change under the write lock; searches hold the read lock for
// their whole run, so the grid never changes under a search.
type Session struct {
	mu            sync.RWMutex
	grid          *planner.Grid
	walls         *WallIndex
	start, end    *planner.Cell
	cellSize      int
	maxExpansions int
}

// NewSession wraps g. maxExpansions <= 0 disables the search cap.
func NewSession(g *planner.Grid, cellSize, maxExpansions int) *Session {
	return &Session{
		grid:          g,
		walls:         NewWallIndex(g),
		cellSize:      cellSize,
		maxExpansions: maxExpansions,
	}
}

// CellSize returns the pixel size of one cell
func (s *Session) CellSize() int {
	return s.cellSize
}

// Reset replaces the grid and clears both endpoints
func (s *Session) Reset(g *planner.Grid) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grid = g
	s.walls = NewWallIndex(g)
	s.start, s.end = nil, nil
}

// Snapshot returns a copy of the current grid
func (s *Session) Snapshot() *planner.Grid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid.Clone()
}

// Status describes the session for health checks
type Status struct {
	Rows, Cols   int
	Blocked      int
	EndpointsSet bool
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Rows:         s.grid.Rows(),
		Cols:         s.grid.Cols(),
		Blocked:      s.grid.BlockedCount(),
		EndpointsSet: s.start != nil && s.end != nil,
	}
}

// mutate runs fn under the write lock and refreshes the wall index.
// Returns the blocked cell count afterwards.
func (s *Session) mutate(fn func(g *planner.Grid) error) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := fn(s.grid)
	// fn may have blocked cells before failing
	s.walls = NewWallIndex(s.grid)
	return s.grid.BlockedCount(), err
}

// AddWall blocks the cells on the line between two cells
func (s *Session) AddWall(from, to planner.Cell) (int, error) {
	return s.mutate(func(g *planner.Grid) error {
		return g.AddWall(from, to)
	})
}

// AddWallPixels blocks the line between two canvas positions, snapping each
// to the cell under it.
func (s *Session) AddWallPixels(x1, y1, x2, y2 float64) (int, error) {
	return s.AddWall(
		planner.CellAt(x1, y1, s.cellSize),
		planner.CellAt(x2, y2, s.cellSize),
	)
}

// SetBlocked marks a single cell
func (s *Session) SetBlocked(c planner.Cell, blocked bool) (int, error) {
	return s.mutate(func(g *planner.Grid) error {
		return g.SetBlocked(c, blocked)
	})
}

// ApplyObstacles rasterises obs onto the grid
func (s *Session) ApplyObstacles(obs *Obstacles) (int, error) {
	return s.mutate(func(g *planner.Grid) error {
		_, err := Rasterize(g, obs, s.cellSize)
		return err
	})
}

// SetEndpoints places the start and end fiber. Both must be on the grid;
// placing one on a wall is allowed and reported when planning.
func (s *Session) SetEndpoints(start, end planner.Cell) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range []planner.Cell{start, end} {
		if !s.grid.InBounds(c) {
			return fmt.Errorf("endpoint %v in %dx%d grid: %w", c, s.grid.Rows(), s.grid.Cols(), planner.ErrOutOfBounds)
		}
	}
	s.start, s.end = &start, &end
	return nil
}

// Endpoints returns the fiber ends, ok is false until both are set
func (s *Session) Endpoints() (start, end planner.Cell, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.start == nil || s.end == nil {
		return planner.Cell{}, planner.Cell{}, false
	}
	return *s.start, *s.end, true
}

// Plan finds a route between the session endpoints
func (s *Session) Plan(policy string) (RoutePlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.start == nil || s.end == nil {
		return RoutePlan{}, ErrEndpointsNotSet
	}
	return s.planLocked(policy, *s.start, *s.end)
}

// PlanBetween finds a route between explicit endpoints
func (s *Session) PlanBetween(policy string, start, end planner.Cell) (RoutePlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planLocked(policy, start, end)
}

// PlanAll plans one route per policy over the same grid snapshot, running the
// searches concurrently. Nil or empty policies means every known policy.
func (s *Session) PlanAll(ctx context.Context, policies []string) (map[string]RoutePlan, error) {
	if len(policies) == 0 {
		policies = planner.PolicyNames
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.start == nil || s.end == nil {
		return nil, ErrEndpointsNotSet
	}
	start, end := *s.start, *s.end

	plans := make([]RoutePlan, len(policies))
	group, ctx := errgroup.WithContext(ctx)
	for i, policy := range policies {
		i, policy := i, policy
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			plan, err := s.planLocked(policy, start, end)
			if err != nil {
				return fmt.Errorf("%s: %w", policy, err)
			}
			plans[i] = plan
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]RoutePlan, len(plans))
	for i, plan := range plans {
		result[policies[i]] = plan
	}
	return result, nil
}

// planLocked requires s.mu to be held for reading
func (s *Session) planLocked(policyName string, start, end planner.Cell) (RoutePlan, error) {
	policy, err := planner.PolicyFor(policyName, s.grid)
	if err != nil {
		return RoutePlan{}, err
	}

	res, err := planner.FindPath(s.grid, start, end, policy, planner.WithMaxExpansions(s.maxExpansions))
	if err != nil {
		return RoutePlan{}, err
	}

	plan := RoutePlan{
		Policy: policyName,
		Start:  start,
		End:    end,
		Result: res,
	}
	if res.Found {
		plan.Waypoints = res.Path.Waypoints()
		plan.WallContacts = s.walls.Contacts(res.Path)
	}
	return plan, nil
}
