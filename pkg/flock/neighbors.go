package flock

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
)

// Neighbors returns every agent of population strictly closer than radius
// to self, self excluded. It is the reference scan every index must match.
func Neighbors(self *Agent, radius float64, population []*Agent) []*Agent {
	return appendNeighbors(nil, self, radius, population)
}

func appendNeighbors(out []*Agent, self *Agent, radius float64, candidates []*Agent) []*Agent {
	radiusSq := radius * radius
	for _, other := range candidates {
		if other == self {
			continue
		}
		if self.Position.DistanceSquaredTo(other.Position) < radiusSq {
			out = append(out, other)
		}
	}
	return out
}

// NeighborIndex answers radius queries over a frozen population snapshot.
// Rebuild must be called once per frame before any Query.
type NeighborIndex interface {
	Rebuild(agents []*Agent)
	// Query appends the neighbors of self within radius (strict) to out.
	Query(out []*Agent, self *Agent, radius float64) []*Agent
}

// NewNeighborIndex builds the index selected by kind. cellSize only matters
// for the grid.
func NewNeighborIndex(kind IndexKind, cellSize float64) (NeighborIndex, error) {
	switch kind {
	case IndexNaive, "":
		return &naiveIndex{}, nil
	case IndexGrid:
		return newGridIndex(cellSize), nil
	case IndexRTree:
		return &rtreeIndex{}, nil
	}
	return nil, fmt.Errorf("unknown neighbor index %q", kind)
}

// naiveIndex scans the whole population: O(n) per query.
type naiveIndex struct {
	agents []*Agent
}

func (n *naiveIndex) Rebuild(agents []*Agent) { n.agents = agents }

func (n *naiveIndex) Query(out []*Agent, self *Agent, radius float64) []*Agent {
	return appendNeighbors(out, self, radius, n.agents)
}

type gridKey struct {
	x, y int
}

// gridIndex is a uniform spatial hash. Cells are as large as the biggest
// query radius so that a query touches few cells.
type gridIndex struct {
	cellSize float64
	grid     map[gridKey][]*Agent
}

func newGridIndex(cellSize float64) *gridIndex {
	return &gridIndex{
		// a minimum of 10 avoids tiny cells and division by zero
		cellSize: math.Max(cellSize, 10.0),
		grid:     make(map[gridKey][]*Agent),
	}
}

// SetCellSize changes the cell size used by the next Rebuild.
func (g *gridIndex) SetCellSize(cellSize float64) {
	g.cellSize = math.Max(cellSize, 10.0)
}

func (g *gridIndex) cell(x, y float64) gridKey {
	return gridKey{x: int(math.Floor(x / g.cellSize)), y: int(math.Floor(y / g.cellSize))}
}

func (g *gridIndex) Rebuild(agents []*Agent) {
	// keep slice capacity between frames
	for k := range g.grid {
		g.grid[k] = g.grid[k][:0]
	}
	for _, a := range agents {
		key := g.cell(a.Position.X, a.Position.Y)
		g.grid[key] = append(g.grid[key], a)
	}
}

func (g *gridIndex) Query(out []*Agent, self *Agent, radius float64) []*Agent {
	if radius <= 0 {
		return out
	}
	lo := g.cell(self.Position.X-radius, self.Position.Y-radius)
	hi := g.cell(self.Position.X+radius, self.Position.Y+radius)
	for gx := lo.x; gx <= hi.x; gx++ {
		for gy := lo.y; gy <= hi.y; gy++ {
			if agents, ok := g.grid[gridKey{x: gx, y: gy}]; ok {
				out = appendNeighbors(out, self, radius, agents)
			}
		}
	}
	return out
}

// pointTolerance is the side of the box an agent occupies in the R-tree.
const pointTolerance = 0.01

type spatialAgent struct {
	agent *Agent
	rect  rtreego.Rect
}

func (s *spatialAgent) Bounds() rtreego.Rect { return s.rect }

// rtreeIndex uses an R-tree, bulk loaded every frame.
type rtreeIndex struct {
	tree *rtreego.Rtree
}

func (r *rtreeIndex) Rebuild(agents []*Agent) {
	objs := make([]rtreego.Spatial, len(agents))
	for i, a := range agents {
		objs[i] = &spatialAgent{
			agent: a,
			rect:  rtreego.Point{a.Position.X, a.Position.Y}.ToRect(pointTolerance),
		}
	}
	r.tree = rtreego.NewTree(2, 25, 50, objs...)
}

func (r *rtreeIndex) Query(out []*Agent, self *Agent, radius float64) []*Agent {
	if r.tree == nil || radius <= 0 {
		return out
	}
	side := 2 * (radius + pointTolerance)
	bb, err := rtreego.NewRect(
		rtreego.Point{self.Position.X - radius - pointTolerance, self.Position.Y - radius - pointTolerance},
		[]float64{side, side},
	)
	if err != nil {
		return out
	}
	radiusSq := radius * radius
	for _, obj := range r.tree.SearchIntersect(bb) {
		other := obj.(*spatialAgent).agent
		if other == self {
			continue
		}
		if self.Position.DistanceSquaredTo(other.Position) < radiusSq {
			out = append(out, other)
		}
	}
	return out
}
