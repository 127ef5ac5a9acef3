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

// Package trees implements clonal lineage trees: forests over clone
// indices in which every vertex has at most one incoming evolutionary
// edge.
package trees

import (
	"fmt"
	"log"
	"sort"

	"github.com/exascience/cloneforest/clones"
	"github.com/exascience/cloneforest/edges"
)

// An Index identifies a finalized tree by the decomposition class and
// connected component it was reconstructed from, and its position
// among the trees split from that component.
type Index struct {
	Class, Component, Subtree int
}

// Less orders indices by class, component and subtree.
func (index Index) Less(other Index) bool {
	if index.Class != other.Class {
		return index.Class < other.Class
	}
	if index.Component != other.Component {
		return index.Component < other.Component
	}
	return index.Subtree < other.Subtree
}

func (index Index) String() string {
	return fmt.Sprintf("%d-%d-%d", index.Class, index.Component, index.Subtree)
}

/*
A Tree is a lineage forest. Vertices are clone indices that are
resolved through the tree's clone source, which is the arena of the
worker that built the tree.

Edges are added one at a time with AddEdge. A tree never contains a
vertex with two incoming edges, nor a cycle. Additional parents that
explain a vertex equally well can be recorded as alternatives; they
are not part of the forest structure.
*/
type Tree struct {
	source       clones.Source
	vertices     map[int]struct{}
	parent       map[int]edges.Edge
	children     map[int][]edges.Edge
	alternatives map[int][]edges.Edge
	index        Index
}

// NewTree creates an empty tree over the given clone source.
func NewTree(source clones.Source) *Tree {
	return &Tree{
		source:       source,
		vertices:     make(map[int]struct{}),
		parent:       make(map[int]edges.Edge),
		children:     make(map[int][]edges.Edge),
		alternatives: make(map[int][]edges.Edge),
	}
}

// Source returns the clone source of the tree.
func (tree *Tree) Source() clones.Source {
	return tree.source
}

// Clone returns the clone of a vertex.
func (tree *Tree) Clone(vertex int) *clones.Clone {
	return tree.source.Clone(vertex)
}

// AddVertex adds an isolated vertex. Adding a vertex twice has no
// effect.
func (tree *Tree) AddVertex(vertex int) {
	tree.vertices[vertex] = struct{}{}
}

// HasVertex is true if the vertex belongs to the tree.
func (tree *Tree) HasVertex(vertex int) bool {
	_, ok := tree.vertices[vertex]
	return ok
}

// AddEdge installs edge as the unique incoming edge of its destination.
func (tree *Tree) AddEdge(edge edges.Edge) {
	if edge.Src == edge.Dst {
		log.Panicf("self loop on vertex %v", edge.Src)
	}
	if old, ok := tree.parent[edge.Dst]; ok {
		log.Panicf("vertex %v already has incoming edge %v -> %v, cannot add %v -> %v", edge.Dst, old.Src, old.Dst, edge.Src, edge.Dst)
	}
	for v, ok := edge.Src, true; ok; {
		if v == edge.Dst {
			log.Panicf("edge %v -> %v closes a cycle", edge.Src, edge.Dst)
		}
		var e edges.Edge
		if e, ok = tree.parent[v]; ok {
			v = e.Src
		}
	}
	tree.AddVertex(edge.Src)
	tree.AddVertex(edge.Dst)
	tree.parent[edge.Dst] = edge
	tree.children[edge.Src] = append(tree.children[edge.Src], edge)
}

// AddAlternative records an additional parent edge of a vertex that
// is part of the tree.
func (tree *Tree) AddAlternative(edge edges.Edge) {
	if !tree.HasVertex(edge.Dst) {
		log.Panicf("alternative edge %v -> %v for vertex outside of the tree", edge.Src, edge.Dst)
	}
	tree.alternatives[edge.Dst] = append(tree.alternatives[edge.Dst], edge)
}

// Alternatives returns the additional parent edges of a vertex.
func (tree *Tree) Alternatives(vertex int) []edges.Edge {
	return tree.alternatives[vertex]
}

// NumAlternatives returns the number of recorded alternative edges.
func (tree *Tree) NumAlternatives() (n int) {
	for _, alternatives := range tree.alternatives {
		n += len(alternatives)
	}
	return n
}

// IsRoot is true for a vertex of the tree without incoming edge.
func (tree *Tree) IsRoot(vertex int) bool {
	if !tree.HasVertex(vertex) {
		return false
	}
	_, ok := tree.parent[vertex]
	return !ok
}

// IsLeaf is true for a vertex of the tree without outgoing edges.
func (tree *Tree) IsLeaf(vertex int) bool {
	return tree.HasVertex(vertex) && len(tree.children[vertex]) == 0
}

// OutgoingEdges returns the outgoing edges of a vertex in the order
// they were added.
func (tree *Tree) OutgoingEdges(vertex int) []edges.Edge {
	return tree.children[vertex]
}

// ParentEdge returns the incoming edge of a vertex, if any.
func (tree *Tree) ParentEdge(vertex int) (edge edges.Edge, ok bool) {
	edge, ok = tree.parent[vertex]
	return
}

// Vertices returns all vertices in ascending order.
func (tree *Tree) Vertices() []int {
	result := make([]int, 0, len(tree.vertices))
	for v := range tree.vertices {
		result = append(result, v)
	}
	sort.Ints(result)
	return result
}

// NumVertices returns the number of vertices.
func (tree *Tree) NumVertices() int {
	return len(tree.vertices)
}

// Roots returns the roots in ascending order.
func (tree *Tree) Roots() []int {
	var result []int
	for v := range tree.vertices {
		if _, ok := tree.parent[v]; !ok {
			result = append(result, v)
		}
	}
	sort.Ints(result)
	return result
}

// RootCount returns the number of roots.
func (tree *Tree) RootCount() int {
	return len(tree.vertices) - len(tree.parent)
}

// Edges returns all edges sorted by source and destination.
func (tree *Tree) Edges() []edges.Edge {
	result := make([]edges.Edge, 0, len(tree.parent))
	for _, edge := range tree.parent {
		result = append(result, edge)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Src != result[j].Src {
			return result[i].Src < result[j].Src
		}
		return result[i].Dst < result[j].Dst
	})
	return result
}

// NumEdges returns the number of edges.
func (tree *Tree) NumEdges() int {
	return len(tree.parent)
}

// Depth returns the number of edges between a vertex and its root.
func (tree *Tree) Depth(vertex int) (depth int) {
	for edge, ok := tree.parent[vertex]; ok; edge, ok = tree.parent[edge.Src] {
		depth++
	}
	return depth
}

// SetTreeIndices attaches the index of a finalized tree.
func (tree *Tree) SetTreeIndices(class, component, subtree int) {
	tree.index = Index{Class: class, Component: component, Subtree: subtree}
}

// Index returns the index attached with SetTreeIndices.
func (tree *Tree) Index() Index {
	return tree.index
}

// NumFakes returns the number of vertices that are fake clones.
func (tree *Tree) NumFakes() (n int) {
	for v := range tree.vertices {
		if tree.source.Clone(v).Fake {
			n++
		}
	}
	return n
}
