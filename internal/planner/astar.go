package planner

import (
	"container/heap"
	"errors"
	"math"
)

// Cell is an index into an occupancy volume.
type Cell [3]int

// ErrNoPath is returned when the search exhausts all reachable cells.
var ErrNoPath = errors.New("failed to find path")

type searchItem struct {
	cell     Cell
	priority float64
	index    int
}

type searchQueue []*searchItem

func (q searchQueue) Len() int            { return len(q) }
func (q searchQueue) Less(i, j int) bool  { return q[i].priority < q[j].priority }
func (q searchQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *searchQueue) Push(x interface{}) { item := x.(*searchItem); item.index = len(*q); *q = append(*q, item) }
func (q *searchQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

func euclidean(a, b Cell) float64 {
	dx := float64(a[0] - b[0])
	dy := float64(a[1] - b[1])
	dz := float64(a[2] - b[2])
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

var sixConnected = [6]Cell{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// AStar finds a shortest 6-connected path from start to goal through the
// free cells of an occupancy volume. Occupied cells block traversal; edge
// costs are uniform.
func AStar(occupied [][][]bool, start, goal Cell) ([]Cell, error) {
	inBounds := func(c Cell) bool {
		return c[0] >= 0 && c[0] < len(occupied) &&
			c[1] >= 0 && c[1] < len(occupied[c[0]]) &&
			c[2] >= 0 && c[2] < len(occupied[c[0]][c[1]])
	}
	if !inBounds(start) || !inBounds(goal) {
		return nil, ErrNoPath
	}

	cameFrom := map[Cell]Cell{}
	gScore := map[Cell]float64{start: 0}
	open := &searchQueue{}
	heap.Init(open)
	heap.Push(open, &searchItem{cell: start, priority: euclidean(start, goal)})
	inOpen := map[Cell]bool{start: true}

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchItem).cell
		delete(inOpen, current)
		if current == goal {
			path := []Cell{current}
			for current != start {
				current = cameFrom[current]
				path = append(path, current)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path, nil
		}
		for _, d := range sixConnected {
			next := Cell{current[0] + d[0], current[1] + d[1], current[2] + d[2]}
			if !inBounds(next) || occupied[next[0]][next[1]][next[2]] {
				continue
			}
			tentative := gScore[current] + 1
			if prev, ok := gScore[next]; ok && tentative >= prev {
				continue
			}
			cameFrom[next] = current
			gScore[next] = tentative
			if !inOpen[next] {
				heap.Push(open, &searchItem{cell: next, priority: tentative + euclidean(next, goal)})
				inOpen[next] = true
			}
		}
	}
	return nil, ErrNoPath
}
