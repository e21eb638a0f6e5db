// Package graph holds the weighted directed adjacency map shared by models, versions and
// simulations, plus the pure computations over it (cost, shortest path, smoothing, sweeps).
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Graph maps a node label to its outgoing neighbors and their weights.
type Graph map[string]map[string]float64

var (
	ErrEmptyGraph   = errors.New("graph has no nodes")
	ErrInvalidLabel = errors.New("graph contains an empty node label")
	ErrInvalidEdge  = errors.New("graph contains a non-positive or non-finite weight")
)

// Parse decodes a JSON adjacency map.
func Parse(raw []byte) (Graph, error) {
	if len(raw) == 0 {
		return Graph{}, nil
	}
	var g map[string]map[string]float64
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	if g == nil {
		return Graph{}, nil
	}
	return Graph(g), nil
}

func (g Graph) MarshalJSON() ([]byte, error) {
	if g == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]map[string]float64(g))
}

// Validate rejects empty graphs, blank labels and weights that are not positive finite numbers.
func (g Graph) Validate() error {
	if len(g) == 0 {
		return ErrEmptyGraph
	}
	for from, nbrs := range g {
		if strings.TrimSpace(from) == "" {
			return ErrInvalidLabel
		}
		for to, w := range nbrs {
			if strings.TrimSpace(to) == "" {
				return ErrInvalidLabel
			}
			if math.IsNaN(w) || math.IsInf(w, 0) || w <= 0 {
				return fmt.Errorf("%w: %s->%s", ErrInvalidEdge, from, to)
			}
		}
	}
	return nil
}

// HasNode reports whether n is a source key or a neighbor of any source key.
func (g Graph) HasNode(n string) bool {
	if _, ok := g[n]; ok {
		return true
	}
	for _, nbrs := range g {
		if _, ok := nbrs[n]; ok {
			return true
		}
	}
	return false
}

// Edge returns the weight of from->to.
func (g Graph) Edge(from, to string) (float64, bool) {
	nbrs, ok := g[from]
	if !ok {
		return 0, false
	}
	w, ok := nbrs[to]
	return w, ok
}

// Clone deep-copies g.
func (g Graph) Clone() Graph {
	out := make(Graph, len(g))
	for from, nbrs := range g {
		cp := make(map[string]float64, len(nbrs))
		for to, w := range nbrs {
			cp[to] = w
		}
		out[from] = cp
	}
	return out
}

// WithEdge returns a copy of g sharing every neighbor map except from's, where to is set to w.
// g itself is left untouched.
func (g Graph) WithEdge(from, to string, w float64) Graph {
	out := make(Graph, len(g)+1)
	for k, v := range g {
		out[k] = v
	}
	nbrs := make(map[string]float64, len(g[from])+1)
	for k, v := range g[from] {
		nbrs[k] = v
	}
	nbrs[to] = w
	out[from] = nbrs
	return out
}

// Nodes returns every node label in sorted order.
func (g Graph) Nodes() []string {
	seen := make(map[string]struct{}, len(g))
	for from, nbrs := range g {
		seen[from] = struct{}{}
		for to := range nbrs {
			seen[to] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
