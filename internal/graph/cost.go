package graph

import "github.com/shopspring/decimal"

var (
	nodePrice = decimal.RequireFromString("0.2")
	edgePrice = decimal.RequireFromString("0.01")
)

// Stats is the size and token price of a graph.
type Stats struct {
	Nodes int
	Edges int
	Cost  decimal.Decimal
}

// Measure counts source keys and neighbor entries and prices them as
// round(0.2*nodes + 0.01*edges, 2). An empty graph measures zero.
func Measure(g Graph) Stats {
	nodes := len(g)
	edges := 0
	for _, nbrs := range g {
		edges += len(nbrs)
	}
	cost := nodePrice.Mul(decimal.NewFromInt(int64(nodes))).
		Add(edgePrice.Mul(decimal.NewFromInt(int64(edges)))).
		Round(2)
	return Stats{Nodes: nodes, Edges: edges, Cost: cost}
}
