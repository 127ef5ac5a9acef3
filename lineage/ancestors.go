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

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/edges"
	"github.com/exascience/cloneforest/trees"
)

// joinable is true for an intersected edge between two roots that is
// well enough supported to infer their common ancestor.
func joinable(edge edges.Edge, config *Config) bool {
	return edge.Kind == edges.Intersected &&
		!edge.DoubleMutated &&
		edge.SharedVShms >= config.MinIntersectedVShms &&
		float64(edge.SharedShms) >= config.IntersectedEdgeCoeff*float64(edge.AddedShms)
}

/*
reconstructAncestors joins pairs of roots of tree under synthesized
common ancestors. Roots are considered in ascending order; each root
is paired with the unpaired root it has the shortest joinable edge to
(ties go to the smaller index). The ancestors are added to the arena
as fake clones. reconstructAncestors returns the number of fake clones
it created.
*/
func reconstructAncestors(tree *trees.Tree, g *Graph, arena *clones.Arena, config *Config) (created int) {
	roots := tree.Roots()
	paired := make(map[int]bool)
	for i, r1 := range roots {
		if paired[r1] || !g.HasVertex(r1) {
			continue
		}
		partner, best := -1, edges.Edge{}
		for _, r2 := range roots[i+1:] {
			if paired[r2] || !g.HasVertex(r2) {
				continue
			}
			if edge := g.Edge(r1, r2); joinable(edge, config) && (partner < 0 || edge.Length < best.Length) {
				partner, best = r2, edge
			}
		}
		if partner < 0 {
			continue
		}
		c1, c2 := arena.Clone(r1), arena.Clone(partner)
		ancestor := clones.CommonAncestor(c1, c2)
		f := arena.AddFake(ancestor)
		edge1 := edges.Classify(f, r1, ancestor, c1)
		edge2 := edges.Classify(f, partner, ancestor, c2)
		if edge1.Kind != edges.Directed || edge2.Kind != edges.Directed {
			log.Panicf("fake clone %v is not an ancestor of clones %v and %v", f, r1, partner)
		}
		tree.AddVertex(f)
		tree.AddEdge(edge1)
		tree.AddEdge(edge2)
		paired[r1], paired[partner] = true, true
		created++
	}
	return created
}
