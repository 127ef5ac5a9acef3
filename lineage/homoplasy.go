// cloneforest: reconstruction of clonal lineage trees for immune repertoires.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/exascience/cloneforest/blob/master/LICENSE.txt>.

package lineage

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/exascience/cloneforest/edges"
)

type vertexPair struct{ src, dst int }

/*
TransitiveReduction removes every edge u -> x for which x is reachable
from another out-neighbor w of u. Reachability is computed with a
fresh depth-first search from every out-neighbor of every vertex.

The edges must form a directed acyclic graph. The surviving edges keep
their input order.
*/
func TransitiveReduction(input []edges.Edge) []edges.Edge {
	g := simple.NewDirectedGraph()
	present := make(map[vertexPair]bool, len(input))
	out := make(map[int][]int)
	for _, edge := range input {
		pair := vertexPair{edge.Src, edge.Dst}
		if present[pair] {
			continue
		}
		present[pair] = true
		out[edge.Src] = append(out[edge.Src], edge.Dst)
		if g.Node(int64(edge.Src)) == nil {
			g.AddNode(simple.Node(edge.Src))
		}
		if g.Node(int64(edge.Dst)) == nil {
			g.AddNode(simple.Node(edge.Dst))
		}
		g.SetEdge(simple.Edge{F: simple.Node(edge.Src), T: simple.Node(edge.Dst)})
	}

	sources := make([]int, 0, len(out))
	for u := range out {
		sources = append(sources, u)
	}
	sort.Ints(sources)

	removed := make(map[vertexPair]bool)
	for _, u := range sources {
		for _, w := range out[u] {
			start := int64(w)
			search := traverse.DepthFirst{
				Visit: func(n graph.Node) {
					if x := n.ID(); x != start {
						if pair := (vertexPair{u, int(x)}); present[pair] {
							removed[pair] = true
						}
					}
				},
			}
			search.Walk(g, simple.Node(w), nil)
		}
	}

	result := make([]edges.Edge, 0, len(input))
	for _, edge := range input {
		if !removed[vertexPair{edge.Src, edge.Dst}] {
			result = append(result, edge)
		}
	}
	return result
}

func lengthLess(e1, e2 edges.Edge) bool {
	if e1.Length != e2.Length {
		return e1.Length < e2.Length
	}
	return e1.Src < e2.Src
}

/*
Refine augments an optimum branching over graph with near-optimal
alternative parents and removes transitive edges.

The undirected edges of the branching are kept. Every vertex without
an undirected incoming edge receives all directed incoming edges that
are shorter than coef times the best length, which is the shortest of
its directed incoming edges and its incoming branching edge, or
threshold if neither exists. Transitive edges are then removed.

Of the surviving edges into a vertex, the shortest is its parent
(ties go to the smaller source) and the others are returned as
alternatives. Both results are sorted by source and destination.
*/
func Refine(g *Graph, branchingEdges []edges.Edge, coef float64, threshold int) (parents, alternatives []edges.Edge) {
	var candidates []edges.Edge
	undirectedIn := make(map[int]bool)
	branchingIn := make(map[int]int)
	for _, edge := range branchingEdges {
		branchingIn[edge.Dst] = edge.Length
		if edge.Kind == edges.Undirected {
			candidates = append(candidates, edge)
			undirectedIn[edge.Dst] = true
		}
	}

	for _, v := range g.Vertices() {
		if undirectedIn[v] {
			continue
		}
		var directed []edges.Edge
		for _, edge := range g.IncomingEdges(v) {
			if edge.Kind == edges.Directed {
				directed = append(directed, edge)
			}
		}
		sort.Slice(directed, func(i, j int) bool {
			return lengthLess(directed[i], directed[j])
		})
		best := threshold
		if len(directed) > 0 && directed[0].Length < best {
			best = directed[0].Length
		}
		if length, ok := branchingIn[v]; ok && length < best {
			best = length
		}
		for _, edge := range directed {
			if float64(edge.Length) >= float64(best)*coef {
				break
			}
			candidates = append(candidates, edge)
		}
	}

	survivors := TransitiveReduction(candidates)
	sort.Slice(survivors, func(i, j int) bool {
		if survivors[i].Dst != survivors[j].Dst {
			return survivors[i].Dst < survivors[j].Dst
		}
		return lengthLess(survivors[i], survivors[j])
	})
	for i, edge := range survivors {
		if i > 0 && survivors[i-1].Dst == edge.Dst {
			alternatives = append(alternatives, edge)
		} else {
			parents = append(parents, edge)
		}
	}
	sortBySrcDst(parents)
	sortBySrcDst(alternatives)
	return parents, alternatives
}

func sortBySrcDst(list []edges.Edge) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Src != list[j].Src {
			return list[i].Src < list[j].Src
		}
		return list[i].Dst < list[j].Dst
	})
}
