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

package decompose

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// HammingGraph is the default SimilarityGraph: two CDR3 sequences are
// linked when they have the same length and differ in at most tau
// positions.
type HammingGraph struct{}

func withinHamming(s1, s2 string, tau int) bool {
	if len(s1) != len(s2) {
		return false
	}
	d := 0
	for i := 0; i < len(s1); i++ {
		if s1[i] != s2[i] {
			if d++; d > tau {
				return false
			}
		}
	}
	return true
}

// Components implements SimilarityGraph.
func (HammingGraph) Components(cdr3s []string, tau int) [][]int {
	g := simple.NewUndirectedGraph()
	for i := range cdr3s {
		g.AddNode(simple.Node(i))
	}
	for i := range cdr3s {
		for j := i + 1; j < len(cdr3s); j++ {
			if withinHamming(cdr3s[i], cdr3s[j], tau) {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}
	var result [][]int
	for _, nodes := range topo.ConnectedComponents(g) {
		component := make([]int, len(nodes))
		for k, node := range nodes {
			component[k] = int(node.ID())
		}
		result = append(result, component)
	}
	return result
}
