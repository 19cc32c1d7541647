package environmentServer

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	common "github.com/harryknee/NewsDiffusion/common"
)

// Grid is a width x height lattice of cells. Adjacency is the Moore
// neighbourhood, stored as an undirected graph so neighbourhoods of any
// radius are a bounded breadth-first walk (graph distance equals Chebyshev
// distance on this lattice).
type Grid struct {
	width    int
	height   int
	torus    bool
	capacity int

	graph     *simple.UndirectedGraph
	occupants [][]common.IExtendedAgent // by cell id, in placement order
}

func NewGrid(width, height int, torus bool, capacity int) *Grid {
	g := &Grid{
		width:     width,
		height:    height,
		torus:     torus,
		capacity:  capacity,
		graph:     simple.NewUndirectedGraph(),
		occupants: make([][]common.IExtendedAgent, width*height),
	}
	for id := 0; id < width*height; id++ {
		g.graph.AddNode(simple.Node(id))
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny, ok := g.wrap(x+dx, y+dy)
					if !ok {
						continue
					}
					from, to := g.CellID(x, y), g.CellID(nx, ny)
					// small tori fold neighbours back onto the cell itself
					if from == to || g.graph.HasEdgeBetween(int64(from), int64(to)) {
						continue
					}
					g.graph.SetEdge(g.graph.NewEdge(simple.Node(from), simple.Node(to)))
				}
			}
		}
	}
	return g
}

func (g *Grid) wrap(x, y int) (int, int, bool) {
	if g.torus {
		return (x%g.width + g.width) % g.width, (y%g.height + g.height) % g.height, true
	}
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return 0, 0, false
	}
	return x, y, true
}

func (g *Grid) CellID(x, y int) int { return y*g.width + x }

func (g *Grid) Position(cell int) (int, int) {
	if cell < 0 {
		return -1, -1
	}
	return cell % g.width, cell / g.width
}

func (g *Grid) NumCells() int { return g.width * g.height }

// Capacity is the number of agents the grid can hold.
func (g *Grid) Capacity() int { return g.NumCells() * g.capacity }

// Slots lists one cell id per free agent slot, in cell order.
func (g *Grid) Slots() []int {
	var slots []int
	for cell, occ := range g.occupants {
		for k := len(occ); k < g.capacity; k++ {
			slots = append(slots, cell)
		}
	}
	return slots
}

func (g *Grid) Place(a common.IExtendedAgent, cell int) error {
	if cell < 0 || cell >= g.NumCells() {
		return fmt.Errorf("%w: cell %d outside %dx%d grid", common.ErrInvalidConfig, cell, g.width, g.height)
	}
	if len(g.occupants[cell]) >= g.capacity {
		return fmt.Errorf("%w: cell %d already holds %d agents", common.ErrGridCapacity, cell, g.capacity)
	}
	g.occupants[cell] = append(g.occupants[cell], a)
	a.SetCell(cell)
	return nil
}

// NeighbourCells returns the cells within radius of cell, the cell itself
// included, sorted by id.
func (g *Grid) NeighbourCells(cell int, radius int) []int {
	var cells []int
	var bf traverse.BreadthFirst
	bf.Walk(g.graph, simple.Node(cell), func(n graph.Node, depth int) bool {
		if depth > radius {
			return true
		}
		cells = append(cells, int(n.ID()))
		return false
	})
	sort.Ints(cells)
	return cells
}

// Neighbours returns every other agent within radius of a, ordered by cell
// id and then by placement order.
func (g *Grid) Neighbours(a common.IExtendedAgent, radius int) []common.IExtendedAgent {
	if a.GetCell() < 0 {
		return nil
	}
	var out []common.IExtendedAgent
	for _, cell := range g.NeighbourCells(a.GetCell(), radius) {
		for _, other := range g.occupants[cell] {
			if other.GetName() == a.GetName() {
				continue
			}
			out = append(out, other)
		}
	}
	return out
}
