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

package trees

import (
	"log"

	"github.com/exascience/cloneforest/edges"
)

/*
Split decomposes a forest into single-rooted trees, one per root in
ascending root order. Each tree gets the class and component of the
forest, and its position in the result as subtree index.

A tree with exactly one root is returned unchanged. Only directed and
undirected edges may appear in a tree that is split: any other edge
is a contract violation.
*/
func Split(tree *Tree) []*Tree {
	roots := tree.Roots()
	if len(roots) == 1 {
		return []*Tree{tree}
	}
	result := make([]*Tree, 0, len(roots))
	visited := 0
	for subtree, root := range roots {
		t := NewTree(tree.source)
		t.SetTreeIndices(tree.index.Class, tree.index.Component, subtree)
		t.AddVertex(root)
		queue := []int{root}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, alternative := range tree.alternatives[v] {
				t.AddAlternative(alternative)
			}
			for _, edge := range tree.OutgoingEdges(v) {
				if edge.Kind != edges.Directed && edge.Kind != edges.Undirected {
					log.Panicf("cannot split tree %v: edge %v -> %v is %v", tree.index, edge.Src, edge.Dst, edge.TypeString())
				}
				t.AddEdge(edge)
				queue = append(queue, edge.Dst)
			}
		}
		visited += t.NumVertices()
		result = append(result, t)
	}
	if len(result) != tree.RootCount() {
		log.Panicf("splitting tree %v produced %v trees for %v roots", tree.index, len(result), tree.RootCount())
	}
	if visited != tree.NumVertices() {
		log.Panicf("splitting tree %v covered %v of %v vertices", tree.index, visited, tree.NumVertices())
	}
	return result
}
