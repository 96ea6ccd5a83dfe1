// Package planner finds fiber routes across a rectangular occupancy grid.
//
// The grid is a fixed-size map of free and blocked cells. FindPath runs an A*
// search with 4-connected unit-cost moves and a pluggable CostPolicy:
//
//   - ManhattanDistance: admissible, returns a shortest path in cell count.
//   - WallBiased: Manhattan plus a penalty for blocked endpoints. See its doc
//     comment for why the penalty does not change the result today.
//
// A search never mutates the grid and holds no locks. Callers that mutate a
// grid while searches may be running must serialise access themselves.
package planner
