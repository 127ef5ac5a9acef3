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
	"log"
	"sort"

	"github.com/exascience/cloneforest/branching"
	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/edges"
)

/*
A Graph holds the classified edges between all ordered pairs of
vertices of a connected component, NoEdge entries included.

Vertices are the component members with a non-empty CDR3, in
ascending order.
*/
type Graph struct {
	source   clones.Source
	vertices []int
	position map[int]int
	matrix   []edges.Edge
}

// FilterEmptyCDR3 returns the members with a non-empty CDR3, in
// ascending order.
func FilterEmptyCDR3(source clones.Source, members []int) []int {
	result := make([]int, 0, len(members))
	for _, member := range members {
		if !source.Clone(member).RegionIsEmpty(clones.CDR3) {
			result = append(result, member)
		}
	}
	sort.Ints(result)
	return result
}

// BuildGraph classifies every ordered pair of distinct members that
// have a non-empty CDR3.
func BuildGraph(source clones.Source, members []int) *Graph {
	vertices := FilterEmptyCDR3(source, members)
	n := len(vertices)
	graph := &Graph{
		source:   source,
		vertices: vertices,
		position: make(map[int]int, n),
		matrix:   make([]edges.Edge, n*n),
	}
	for i, v := range vertices {
		graph.position[v] = i
	}
	for i, src := range vertices {
		srcClone := source.Clone(src)
		for j, dst := range vertices {
			if i == j {
				continue
			}
			graph.matrix[i*n+j] = edges.Classify(src, dst, srcClone, source.Clone(dst))
		}
	}
	return graph
}

// Source returns the clone source of the graph.
func (graph *Graph) Source() clones.Source {
	return graph.source
}

// Vertices returns the vertices in ascending order.
func (graph *Graph) Vertices() []int {
	return graph.vertices
}

// HasVertex is true if the vertex belongs to the graph.
func (graph *Graph) HasVertex(vertex int) bool {
	_, ok := graph.position[vertex]
	return ok
}

// Edge returns the classified edge src -> dst.
func (graph *Graph) Edge(src, dst int) edges.Edge {
	i, ok1 := graph.position[src]
	j, ok2 := graph.position[dst]
	if !ok1 || !ok2 || i == j {
		log.Panicf("no edge %v -> %v in graph", src, dst)
	}
	return graph.matrix[i*len(graph.vertices)+j]
}

// IncomingEdges returns the edges into dst from every other vertex, in
// ascending source order.
func (graph *Graph) IncomingEdges(dst int) []edges.Edge {
	j, ok := graph.position[dst]
	if !ok {
		log.Panicf("vertex %v not in graph", dst)
	}
	n := len(graph.vertices)
	result := make([]edges.Edge, 0, n-1)
	for i := 0; i < n; i++ {
		if i != j {
			result = append(result, graph.matrix[i*n+j])
		}
	}
	return result
}

// Edges returns all classified edges, NoEdge entries included, sorted
// by source and destination.
func (graph *Graph) Edges() []edges.Edge {
	n := len(graph.vertices)
	result := make([]edges.Edge, 0, n*(n-1))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				result = append(result, graph.matrix[i*n+j])
			}
		}
	}
	return result
}

// Candidates returns the solver input for the directed and undirected
// edges of the graph. Without weight function, the weight of an edge
// is its length.
func (graph *Graph) Candidates(weight EdgeWeightFunc) []branching.WeightedEdge {
	var result []branching.WeightedEdge
	for _, edge := range graph.Edges() {
		if edge.Kind != edges.Directed && edge.Kind != edges.Undirected {
			continue
		}
		w := float64(edge.Length)
		if weight != nil {
			w = weight(edge, graph.source.Clone(edge.Src), graph.source.Clone(edge.Dst))
		}
		result = append(result, branching.WeightedEdge{Src: edge.Src, Dst: edge.Dst, Weight: w})
	}
	return result
}

// Branching computes the optimum branching over the candidate edges:
// minimum total length, or maximum total weight if a weight function is
// given. Branchings with fewer roots are preferred in both cases.
func (graph *Graph) Branching(weight EdgeWeightFunc) []edges.Edge {
	options := branching.Options{Objective: branching.Minimize, AttemptToSpan: true}
	if weight != nil {
		options.Objective = branching.Maximize
	}
	solution := branching.Solve(graph.Candidates(weight), options)
	result := make([]edges.Edge, len(solution))
	for i, e := range solution {
		result[i] = graph.Edge(e.Src, e.Dst)
	}
	return result
}
