package movement

import (
	"container/heap"
	"slices"

	"github.com/talgya/lookout/internal/hex"
	"github.com/talgya/lookout/internal/world"
)

// Passable reports whether a unit can stand on the cell.
func Passable(c *world.Cell) bool {
	return !c.IsUnderwater()
}

// Path is a route of cell ids including both ends.
type Path struct {
	Cells []int
	Cost  float64
}

// FindPath runs A* from one cell to another over Cost. The heuristic is the
// cube distance times MinStepCost, which never overestimates. ok is false
// when either end is impassable or no route exists.
func FindPath(g *world.Grid, from, to int) (Path, bool) {
	start, goal := g.Cell(from), g.Cell(to)
	if start == nil || goal == nil || !Passable(start) || !Passable(goal) {
		return Path{}, false
	}
	if from == to {
		return Path{Cells: []int{from}}, true
	}

	h := func(c *world.Cell) float64 {
		return float64(hex.Distance(c.Coord(), goal.Coord())) * MinStepCost
	}

	open := &nodeQueue{}
	heap.Push(open, &node{id: from, f: h(start)})
	best := map[int]float64{from: 0}
	came := map[int]int{}
	closed := map[int]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node).id
		if closed[cur] {
			continue
		}
		closed[cur] = true
		if cur == to {
			return Path{Cells: reconstruct(came, from, to), Cost: best[to]}, true
		}

		c := g.Cell(cur)
		for _, d := range hex.Directions {
			n := g.Neighbor(c, d)
			if n == nil || closed[n.ID()] || !Passable(n) {
				continue
			}
			g2 := best[cur] + Cost(n, c, d)
			if old, ok := best[n.ID()]; ok && g2 >= old {
				continue
			}
			best[n.ID()] = g2
			came[n.ID()] = cur
			heap.Push(open, &node{id: n.ID(), f: g2 + h(n)})
		}
	}
	return Path{}, false
}

func reconstruct(came map[int]int, from, to int) []int {
	path := []int{to}
	for k := to; k != from; {
		k = came[k]
		path = append(path, k)
	}
	slices.Reverse(path)
	return path
}

// Reachable returns every passable cell whose cheapest route from the
// start costs at most budget, mapped to that cost.
func Reachable(g *world.Grid, from int, budget float64) map[int]float64 {
	start := g.Cell(from)
	if start == nil || !Passable(start) {
		return nil
	}

	best := map[int]float64{from: 0}
	open := &nodeQueue{}
	heap.Push(open, &node{id: from})
	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if cur.f > best[cur.id] {
			continue
		}
		c := g.Cell(cur.id)
		for _, d := range hex.Directions {
			n := g.Neighbor(c, d)
			if n == nil || !Passable(n) {
				continue
			}
			cost := cur.f + Cost(n, c, d)
			if cost > budget {
				continue
			}
			if old, ok := best[n.ID()]; ok && cost >= old {
				continue
			}
			best[n.ID()] = cost
			heap.Push(open, &node{id: n.ID(), f: cost})
		}
	}
	return best
}

type node struct {
	id int
	f  float64
}

// nodeQueue is a min-heap on f, ties broken by id so searches are stable.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }
func (q nodeQueue) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].id < q[j].id
}
func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)   { *q = append(*q, x.(*node)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}
