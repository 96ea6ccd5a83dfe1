package planner

import (
	"container/heap"
	"errors"
	"fmt"
)

// node is the per-search state of a discovered cell
type node struct {
	cell   Cell
	g      float64 // cost from start
	f      float64 // g + heuristic to end
	parent *node
	seq    int // insertion order into the open set, breaks f ties
	index  int // index in the heap, -1 once popped
}

// openSet is a min-heap on (f, seq). A relaxed node keeps its seq, so among
// equal f the cell discovered first is expanded first.
type openSet []*node

func (pq openSet) Len() int { return len(pq) }

func (pq openSet) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *openSet) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// Result is the outcome of a search. Found is false when no path exists,
// which is a normal outcome rather than an error.
type Result struct {
	Path      Path
	Found     bool
	Expanded  int  // cells taken off the open set and closed
	Truncated bool // the expansion cap stopped the search
}

type options struct {
	maxExpansions int
	onExpand      func(Cell)
}

// Option configures FindPath
type Option func(*options)

// WithMaxExpansions stops the search after n expansions and reports the path
// as not found. n <= 0 means no cap.
func WithMaxExpansions(n int) Option {
	return func(o *options) { o.maxExpansions = n }
}

// WithExpandHook calls fn with every cell as it is closed, in expansion
// order. Used to animate or inspect a search.
func WithExpandHook(fn func(Cell)) Option {
	return func(o *options) { o.onExpand = fn }
}

// FindPath runs A* from start to end over the free cells of g, moving in the
// four cardinal directions at unit cost.
//
// Closed cells are never reopened. With uniform non-negative step costs and
// ManhattanDistance this keeps the result optimal; with an inadmissible
// policy such as WallBiased it may not be.
func FindPath(g *Grid, start, end Cell, policy CostPolicy, opts ...Option) (Result, error) {
	if g == nil {
		return Result{}, errors.New("nil grid")
	}
	if policy == nil {
		return Result{}, errors.New("nil cost policy")
	}
	if err := checkEndpoint(g, "start", start); err != nil {
		return Result{}, err
	}
	if err := checkEndpoint(g, "end", end); err != nil {
		return Result{}, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	open := &openSet{}
	heap.Init(open)

	startNode := &node{
		cell: start,
		g:    0,
		f:    policy.Heuristic(start, end),
	}
	heap.Push(open, startNode)

	discovered := map[Cell]*node{start: startNode}
	closed := make(map[Cell]bool)
	seq := 1

	var res Result
	for open.Len() > 0 {
		if o.maxExpansions > 0 && res.Expanded >= o.maxExpansions {
			res.Truncated = true
			return res, nil
		}

		current := heap.Pop(open).(*node)

		if current.cell == end {
			res.Path = reconstructPath(current)
			res.Found = true
			return res, nil
		}

		closed[current.cell] = true
		res.Expanded++
		if o.onExpand != nil {
			o.onExpand(current.cell)
		}

		for _, cell := range g.Neighbors(current.cell) {
			if closed[cell] {
				continue
			}

			tentativeG := current.g + 1

			neighbor, exists := discovered[cell]
			if !exists {
				neighbor = &node{
					cell:   cell,
					g:      tentativeG,
					f:      tentativeG + policy.Heuristic(cell, end),
					parent: current,
					seq:    seq,
				}
				seq++
				heap.Push(open, neighbor)
				discovered[cell] = neighbor
			} else if tentativeG < neighbor.g {
				neighbor.g = tentativeG
				neighbor.f = tentativeG + policy.Heuristic(cell, end)
				neighbor.parent = current
				heap.Fix(open, neighbor.index)
			}
		}
	}

	return res, nil
}

func checkEndpoint(g *Grid, name string, c Cell) error {
	blocked, err := g.IsBlocked(c)
	if err != nil {
		return fmt.Errorf("%w: %s %v: %w", ErrInvalidEndpoint, name, c, err)
	}
	if blocked {
		return fmt.Errorf("%w: %s %v is blocked", ErrInvalidEndpoint, name, c)
	}
	return nil
}

// reconstructPath follows parent links back to the start and reverses them
func reconstructPath(end *node) Path {
	path := Path{}
	for n := end; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
