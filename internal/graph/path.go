package graph

import (
	"container/heap"
	"math"
	"sort"
)

// Path is an ordered node sequence and its total weight.
type Path struct {
	Nodes []string `json:"path"`
	Cost  float64  `json:"cost"`
}

// PathFinder finds a route between two nodes. ok is false when either endpoint is absent
// or the goal is unreachable; that is a final answer, not an error.
type PathFinder interface {
	FindPath(g Graph, from, to string) (p Path, ok bool)
}

// Dijkstra is the default PathFinder. Neighbors are relaxed in label order so ties resolve
// the same way on every run.
type Dijkstra struct{}

func NewDijkstra() PathFinder { return Dijkstra{} }

type pqItem struct {
	node string
	dist float64
}

type pq []pqItem

func (q pq) Len() int { return len(q) }
func (q pq) Less(i, j int) bool {
	if q[i].dist == q[j].dist {
		return q[i].node < q[j].node
	}
	return q[i].dist < q[j].dist
}
func (q pq) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pq) Push(x any) { *q = append(*q, x.(pqItem)) }
func (q *pq) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

func (Dijkstra) FindPath(g Graph, from, to string) (Path, bool) {
	if !g.HasNode(from) || !g.HasNode(to) {
		return Path{}, false
	}
	if from == to {
		return Path{Nodes: []string{from}, Cost: 0}, true
	}

	dist := map[string]float64{from: 0}
	prev := map[string]string{}
	done := map[string]bool{}

	q := &pq{{node: from, dist: 0}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(pqItem)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true
		if cur.node == to {
			break
		}
		nbrs := g[cur.node]
		keys := make([]string, 0, len(nbrs))
		for k := range nbrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, nb := range keys {
			if done[nb] {
				continue
			}
			nd := cur.dist + nbrs[nb]
			if d, ok := dist[nb]; !ok || nd < d {
				dist[nb] = nd
				prev[nb] = cur.node
				heap.Push(q, pqItem{node: nb, dist: nd})
			}
		}
	}

	total, ok := dist[to]
	if !ok || math.IsInf(total, 0) {
		return Path{}, false
	}
	nodes := []string{to}
	for n := to; n != from; {
		n = prev[n]
		nodes = append(nodes, n)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return Path{Nodes: nodes, Cost: total}, true
}
