package autopilot

import (
	"container/heap"

	"github.com/pthm-cable/quizsnake/components"
	"github.com/pthm-cable/quizsnake/systems"
)

// CostFunc returns the cost of entering c, or a negative value if c is blocked.
type CostFunc func(c components.Coord) int

// Planner provides A* search over the board.
type Planner struct {
	// Reusable data structures (cleared between searches)
	openHeap  *nodeHeap
	closedSet map[components.Coord]struct{}
	cameFrom  map[components.Coord]step
	gScore    map[components.Coord]int
}

// step records how a cell was reached.
type step struct {
	from components.Coord
	dir  components.Direction
}

// astarNode is a node in the A* search.
type astarNode struct {
	pos   components.Coord
	g, f  int
	index int // Heap index
}

// nodeHeap implements heap.Interface for the open set. Ties on f prefer the
// deeper node so straight runs are explored first.
type nodeHeap []*astarNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g > h[j].g
}
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x any) {
	n := x.(*astarNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[0 : n-1]
	return node
}

// NewPlanner creates a planner.
func NewPlanner() *Planner {
	return &Planner{
		openHeap:  &nodeHeap{},
		closedSet: make(map[components.Coord]struct{}, 256),
		cameFrom:  make(map[components.Coord]step, 256),
		gScore:    make(map[components.Coord]int, 256),
	}
}

// FindPath computes the cheapest route from start to goal as a sequence of
// moves. The start cell itself is never checked against cost. It returns
// false if goal cannot be reached.
func (p *Planner) FindPath(grid systems.Grid, start, goal components.Coord, cost CostFunc) ([]components.Direction, bool) {
	if start == goal {
		return nil, true
	}
	if !grid.InBounds(goal) || cost(goal) < 0 {
		return nil, false
	}

	p.clear()

	p.gScore[start] = 0
	heap.Push(p.openHeap, &astarNode{pos: start, f: manhattan(start, goal)})

	maxIterations := grid.Cells() * 4
	for iterations := 0; p.openHeap.Len() > 0 && iterations < maxIterations; iterations++ {
		current := heap.Pop(p.openHeap).(*astarNode)
		if current.pos == goal {
			return p.reconstruct(start, goal), true
		}
		if _, done := p.closedSet[current.pos]; done {
			continue
		}
		p.closedSet[current.pos] = struct{}{}

		for _, d := range components.Directions() {
			next := current.pos.Add(d)
			if !grid.InBounds(next) {
				continue
			}
			if _, done := p.closedSet[next]; done {
				continue
			}
			c := cost(next)
			if c < 0 {
				continue
			}

			tentativeG := p.gScore[current.pos] + c
			if existing, ok := p.gScore[next]; ok && tentativeG >= existing {
				continue
			}
			p.gScore[next] = tentativeG
			p.cameFrom[next] = step{from: current.pos, dir: d}
			heap.Push(p.openHeap, &astarNode{pos: next, g: tentativeG, f: tentativeG + manhattan(next, goal)})
		}
	}
	return nil, false
}

func (p *Planner) reconstruct(start, goal components.Coord) []components.Direction {
	var path []components.Direction
	for at := goal; at != start; {
		s := p.cameFrom[at]
		path = append(path, s.dir)
		at = s.from
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

func (p *Planner) clear() {
	*p.openHeap = (*p.openHeap)[:0]
	clear(p.closedSet)
	clear(p.cameFrom)
	clear(p.gScore)
}

func manhattan(a, b components.Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
