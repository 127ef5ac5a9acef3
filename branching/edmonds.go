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

// Package branching computes optimum branchings (directed spanning
// forests) with the Chu-Liu-Edmonds algorithm.
package branching

import (
	"math"
	"sort"
)

// Objective fixes the direction of optimization for one call of
// Solve.
type Objective uint8

const (
	// Maximize the total weight of the branching.
	Maximize Objective = iota

	// Minimize the total weight of the branching, for example when the
	// weights are edge lengths.
	Minimize
)

// Options configure Solve.
type Options struct {
	Objective Objective

	// AttemptToSpan makes Solve prefer branchings with fewer roots over
	// branchings with a better weight: the result is an optimum among
	// the branchings with the largest possible number of edges. Without
	// it, Solve returns an optimum among all branchings, so that with
	// Minimize and non-negative weights the empty branching is optimal.
	AttemptToSpan bool
}

// A WeightedEdge is a candidate edge for Solve.
type WeightedEdge struct {
	Src, Dst int
	Weight   float64
}

type arc struct {
	from, to int
	weight   float64
}

/*
optimumArborescence returns the indices of the arcs of a maximum
weight arborescence of the graph with n vertices rooted at root. Every
vertex other than root must have at least one incoming arc.

Ties are resolved in favor of the arc that comes first in arcs.
*/
func optimumArborescence(n, root int, arcs []arc) []int {
	best := make([]int, n)
	for v := range best {
		best[v] = -1
	}
	for i, a := range arcs {
		if a.to == root || a.from == a.to {
			continue
		}
		if b := best[a.to]; b < 0 || a.weight > arcs[b].weight {
			best[a.to] = i
		}
	}

	comp := make([]int, n)
	mark := make([]int, n)
	inCycle := make([]bool, n)
	for v := range comp {
		comp[v] = -1
		mark[v] = -1
	}
	count := 0
	for v := 0; v < n; v++ {
		if v == root {
			continue
		}
		u := v
		for u != root && mark[u] != v && comp[u] < 0 {
			mark[u] = v
			u = arcs[best[u]].from
		}
		if u != root && comp[u] < 0 && mark[u] == v {
			for x := arcs[best[u]].from; x != u; x = arcs[best[x]].from {
				comp[x] = count
				inCycle[x] = true
			}
			comp[u] = count
			inCycle[u] = true
			count++
		}
	}

	if count == 0 {
		result := make([]int, 0, n-1)
		for v := 0; v < n; v++ {
			if v != root {
				result = append(result, best[v])
			}
		}
		return result
	}

	for v := 0; v < n; v++ {
		if comp[v] < 0 {
			comp[v] = count
			count++
		}
	}

	// Contract every cycle into a single vertex. An arc entering a
	// cycle is charged for the cycle arc it replaces.
	contracted := make([]arc, 0, len(arcs))
	origin := make([]int, 0, len(arcs))
	for i, a := range arcs {
		from, to := comp[a.from], comp[a.to]
		if from == to || a.to == root {
			continue
		}
		weight := a.weight
		if inCycle[a.to] {
			weight -= arcs[best[a.to]].weight
		}
		contracted = append(contracted, arc{from: from, to: to, weight: weight})
		origin = append(origin, i)
	}

	chosen := optimumArborescence(count, comp[root], contracted)

	// Expand: keep every cycle arc except the one into the vertex where
	// the chosen arc enters the cycle.
	entered := make([]bool, n)
	result := make([]int, 0, n-1)
	for _, c := range chosen {
		i := origin[c]
		result = append(result, i)
		entered[arcs[i].to] = true
	}
	for v := 0; v < n; v++ {
		if inCycle[v] && !entered[v] {
			result = append(result, best[v])
		}
	}
	return result
}

func sortEdges(edges []WeightedEdge) {
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].Src != edges[j].Src {
			return edges[i].Src < edges[j].Src
		}
		return edges[i].Dst < edges[j].Dst
	})
}

// normalize drops self loops and keeps the better of parallel edges,
// leaving the edges sorted by source and destination.
func normalize(input []WeightedEdge, objective Objective) []WeightedEdge {
	edges := make([]WeightedEdge, 0, len(input))
	for _, edge := range input {
		if edge.Src != edge.Dst {
			edges = append(edges, edge)
		}
	}
	sortEdges(edges)
	result := edges[:0]
	for _, edge := range edges {
		if n := len(result); n > 0 && result[n-1].Src == edge.Src && result[n-1].Dst == edge.Dst {
			if (objective == Maximize && edge.Weight > result[n-1].Weight) ||
				(objective == Minimize && edge.Weight < result[n-1].Weight) {
				result[n-1] = edge
			}
			continue
		}
		result = append(result, edge)
	}
	return result
}

/*
Solve computes an optimum branching over the given candidate edges:
a subset in which every vertex has at most one incoming edge and
which contains no cycle, with optimal total weight. The vertices are
the endpoints of the candidate edges.

The result is sorted by source and destination. Solve is
deterministic: ties are resolved by the order of the candidates
sorted by source and destination. An empty candidate set yields an
empty branching.
*/
func Solve(input []WeightedEdge, options Options) []WeightedEdge {
	edges := normalize(input, options.Objective)
	if len(edges) == 0 {
		return nil
	}

	var vertices []int
	for _, edge := range edges {
		vertices = append(vertices, edge.Src, edge.Dst)
	}
	sort.Ints(vertices)
	ids := make(map[int]int, len(vertices))
	for _, v := range vertices {
		if _, ok := ids[v]; !ok {
			// 0 is reserved for the super root
			ids[v] = len(ids) + 1
		}
	}
	n := len(ids) + 1

	// The super root connects to every vertex; its arcs mark the roots
	// of the resulting branching.
	arcs := make([]arc, 0, len(edges)+n-1)
	total := 0.0
	for _, edge := range edges {
		weight := edge.Weight
		if options.Objective == Minimize {
			weight = -weight
		}
		total += math.Abs(weight)
		arcs = append(arcs, arc{from: ids[edge.Src], to: ids[edge.Dst], weight: weight})
	}
	rootWeight := 0.0
	if options.AttemptToSpan {
		rootWeight = -(2*total + 1)
	}
	for v := 1; v < n; v++ {
		arcs = append(arcs, arc{from: 0, to: v, weight: rootWeight})
	}

	var result []WeightedEdge
	for _, i := range optimumArborescence(n, 0, arcs) {
		if i < len(edges) {
			result = append(result, edges[i])
		}
	}
	sortEdges(result)
	return result
}

// TotalWeight returns the sum of the weights of the given edges.
func TotalWeight(edges []WeightedEdge) (total float64) {
	for _, edge := range edges {
		total += edge.Weight
	}
	return total
}
